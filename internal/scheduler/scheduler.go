// Package scheduler provides cron-based alarm scheduling for the daemon.
package scheduler

import (
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/pawminder/pawminder/internal/config"
	"github.com/pawminder/pawminder/internal/logging"
	"github.com/pawminder/pawminder/internal/storage"
)

// Scheduler manages the daemon's periodic work using cron: the skip
// sweep, the alarm catch-up pass, and the daily recap.
type Scheduler struct {
	cron           *cron.Cron
	db             *storage.DB
	debug          bool
	lastCheck      time.Time
	mu             sync.Mutex
	alarmChecker   *AlarmChecker
	skipSweep      *SkipSweep
	recapGenerator *RecapGenerator
}

// NewScheduler creates a new scheduler.
func NewScheduler(db *storage.DB) *Scheduler {
	return &Scheduler{
		cron: cron.New(cron.WithSeconds()),
		db:   db,
	}
}

// SetDebug enables debug output.
func (s *Scheduler) SetDebug(debug bool) {
	s.debug = debug
	if s.alarmChecker != nil {
		s.alarmChecker.SetDebug(debug)
	}
	if s.skipSweep != nil {
		s.skipSweep.SetDebug(debug)
	}
	if s.recapGenerator != nil {
		s.recapGenerator.SetDebug(debug)
	}
}

// SetAlarmChecker sets the alarm checker.
func (s *Scheduler) SetAlarmChecker(checker *AlarmChecker) {
	s.alarmChecker = checker
	if s.debug {
		checker.SetDebug(s.debug)
	}
}

// SetSkipSweep sets the skip sweep.
func (s *Scheduler) SetSkipSweep(sweep *SkipSweep) {
	s.skipSweep = sweep
	if s.debug {
		sweep.SetDebug(s.debug)
	}
}

// SetRecapGenerator sets the recap generator.
func (s *Scheduler) SetRecapGenerator(generator *RecapGenerator) {
	s.recapGenerator = generator
	if s.debug {
		generator.SetDebug(s.debug)
	}
}

// Start starts the scheduler with all configured jobs. An initial
// sweep-and-sync runs immediately so alarms exist before the first
// tick.
func (s *Scheduler) Start() error {
	s.lastCheck = time.Now()

	_, err := s.cron.AddFunc("0 * * * * *", func() {
		s.runMinuteChecks()
	})
	if err != nil {
		return fmt.Errorf("failed to add minute checks: %w", err)
	}

	s.cron.Start()

	s.sweepSkips()
	s.syncAlarms()

	if s.debug {
		logging.DebugLog("scheduler started")
	}

	return nil
}

// Stop stops the scheduler and cancels all live alarms.
func (s *Scheduler) Stop() {
	if s.cron != nil {
		ctx := s.cron.Stop()
		<-ctx.Done()
	}
	if s.alarmChecker != nil {
		s.alarmChecker.Table().CancelAll()
	}
	if s.debug {
		logging.DebugLog("scheduler stopped")
	}
}

// runMinuteChecks runs checks that need to happen every minute.
func (s *Scheduler) runMinuteChecks() {
	s.mu.Lock()
	elapsed := time.Since(s.lastCheck)
	s.lastCheck = time.Now()
	s.mu.Unlock()

	// Skip if system was sleeping; the next tick resyncs from scratch
	if elapsed > config.Global.Scheduler.SleepThreshold {
		if s.debug {
			logging.DebugLog("skipping stale checks after sleep", "elapsed", elapsed.Round(time.Second))
		}
		return
	}

	if s.debug {
		logging.DebugLog("running minute checks", "elapsed", elapsed.Round(time.Second))
	}

	s.sweepSkips()
	s.syncAlarms()
	s.checkDailyRecap()
}

// sweepSkips reconciles stale skips against the clock and the care log.
func (s *Scheduler) sweepSkips() {
	if s.skipSweep == nil {
		return
	}
	changed, err := s.skipSweep.Run(time.Now())
	if err != nil {
		if s.debug {
			logging.DebugLog("skip sweep failed", logging.KeyError, err)
		}
		return
	}
	if s.debug && changed > 0 {
		logging.DebugLog("skip sweep reconciled reminders", logging.KeyCount, changed)
	}
}

// syncAlarms resynchronizes the alarm table with stored reminders,
// catching up alarms missed while the process was down or asleep.
func (s *Scheduler) syncAlarms() {
	if s.alarmChecker == nil {
		return
	}
	s.alarmChecker.Check()
}

// checkDailyRecap checks if it's time for the daily recap.
func (s *Scheduler) checkDailyRecap() {
	if s.recapGenerator == nil {
		return
	}
	s.recapGenerator.CheckDailyRecap()
}

// AddJob adds a custom job to the scheduler.
func (s *Scheduler) AddJob(spec string, job func()) (cron.EntryID, error) {
	return s.cron.AddFunc(spec, job)
}

// RemoveJob removes a job from the scheduler.
func (s *Scheduler) RemoveJob(id cron.EntryID) {
	s.cron.Remove(id)
}

// Entries returns all scheduled entries.
func (s *Scheduler) Entries() []cron.Entry {
	return s.cron.Entries()
}

// NextRun returns the next scheduled run time for any job.
func (s *Scheduler) NextRun() time.Time {
	entries := s.cron.Entries()
	if len(entries) == 0 {
		return time.Time{}
	}

	next := entries[0].Next
	for _, e := range entries[1:] {
		if e.Next.Before(next) {
			next = e.Next
		}
	}
	return next
}
