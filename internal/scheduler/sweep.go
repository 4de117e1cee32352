package scheduler

import (
	"time"

	"github.com/pawminder/pawminder/internal/logging"
	"github.com/pawminder/pawminder/internal/model"
	"github.com/pawminder/pawminder/internal/storage"
)

// SkipSweep reconciles pending skips with the clock and the care log.
// A skip is a promise about one future occurrence; once that occurrence
// has passed, or once the log that justified it is gone, the promise is
// stale and the sweep clears it. Safe to rerun at any frequency.
type SkipSweep struct {
	reminderRepo *storage.ReminderRepo
	logRepo      *storage.LogRepo
	debug        bool
}

// NewSkipSweep creates a skip sweep. logRepo may be nil, in which case
// only time-based reconciliation runs.
func NewSkipSweep(reminderRepo *storage.ReminderRepo, logRepo *storage.LogRepo) *SkipSweep {
	return &SkipSweep{
		reminderRepo: reminderRepo,
		logRepo:      logRepo,
	}
}

// SetDebug enables debug output.
func (s *SkipSweep) SetDebug(debug bool) {
	s.debug = debug
}

// Run sweeps every skipping reminder. A skip whose bypassed occurrence
// has passed is cleared and the reminder rebased to now; a skip whose
// referenced log no longer exists is cleared without rebasing, so the
// occurrence becomes pending again. Returns how many reminders changed.
func (s *SkipSweep) Run(now time.Time) (int, error) {
	reminders, err := s.reminderRepo.ListSkipping()
	if err != nil {
		return 0, err
	}

	changed := 0
	for _, reminder := range reminders {
		if s.sweepOne(reminder, now) {
			if err := s.reminderRepo.Update(reminder); err != nil {
				if s.debug {
					logging.DebugLog("failed to persist swept reminder",
						logging.KeyReminderID, reminder.ID, logging.KeyError, err)
				}
				continue
			}
			changed++
		}
	}
	return changed, nil
}

func (s *SkipSweep) sweepOne(reminder *model.Reminder, now time.Time) bool {
	if reminder.ReconcileSkip(now) {
		if s.debug {
			logging.DebugLog("cleared stale skip", logging.KeyReminderID, reminder.ID)
		}
		return true
	}

	if s.logRepo == nil {
		return false
	}

	logKey := reminder.SkipLogKey()
	if logKey == "" {
		return false
	}
	exists, err := s.logRepo.Exists(logKey)
	if err != nil || exists {
		return false
	}

	reminder.ClearSkip()
	if s.debug {
		logging.DebugLog("cleared orphaned skip", logging.KeyReminderID, reminder.ID)
	}
	return true
}

// ReconcileLogDeletion clears any skip that the deleted log justified
// and returns the reminders it changed (already persisted). Records
// written before skips carried a log reference are matched by time
// proximity between the log timestamp and the skip request instead.
func (s *SkipSweep) ReconcileLogDeletion(deleted *model.Log) ([]*model.Reminder, error) {
	reminders, err := s.reminderRepo.ListSkipping()
	if err != nil {
		return nil, err
	}

	var changed []*model.Reminder
	for _, reminder := range reminders {
		if !skipReferencesLog(reminder, deleted) {
			continue
		}
		reminder.ClearSkip()
		if err := s.reminderRepo.Update(reminder); err != nil {
			return changed, err
		}
		if s.debug {
			logging.DebugLog("log deletion cleared skip",
				logging.KeyReminderID, reminder.ID, "log", deleted.Key)
		}
		changed = append(changed, reminder)
	}
	return changed, nil
}

func skipReferencesLog(reminder *model.Reminder, deleted *model.Log) bool {
	if key := reminder.SkipLogKey(); key != "" {
		return key == deleted.Key
	}
	// Legacy skip without a reference: correlate by proximity, scoped
	// to the same reminder.
	if deleted.ReminderID != reminder.ID {
		return false
	}
	return deleted.MatchesSkip(reminder.SkipRequestedAt())
}
