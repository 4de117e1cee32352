package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/pawminder/pawminder/internal/config"
	"github.com/pawminder/pawminder/internal/logging"
	"github.com/pawminder/pawminder/internal/model"
	"github.com/pawminder/pawminder/internal/notify"
	"github.com/pawminder/pawminder/internal/storage"
)

// alarmJob is one scheduled fire for a reminder.
type alarmJob struct {
	timer  *time.Timer
	fireAt time.Time
}

// AlarmTable holds at most one live job per reminder ID. Upsert and
// Cancel run under a table-level critical section, so concurrent
// updates for the same reminder collapse to the last accepted one.
type AlarmTable struct {
	mu   sync.Mutex
	jobs map[int64]*alarmJob
	fire func(id int64)
}

// NewAlarmTable creates an alarm table that invokes fire on its own
// goroutine when a job comes due.
func NewAlarmTable(fire func(id int64)) *AlarmTable {
	return &AlarmTable{
		jobs: make(map[int64]*alarmJob),
		fire: fire,
	}
}

// Upsert replaces any existing job for the reminder ID with one firing
// at fireAt. A fire time at or before now schedules an immediate fire.
func (t *AlarmTable) Upsert(id int64, fireAt, now time.Time) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if existing, ok := t.jobs[id]; ok {
		existing.timer.Stop()
		delete(t.jobs, id)
	}

	delay := fireAt.Sub(now)
	if delay < 0 {
		delay = 0
	}

	job := &alarmJob{fireAt: fireAt}
	job.timer = time.AfterFunc(delay, func() {
		t.mu.Lock()
		// Only the job that is still current may fire; a stale timer
		// that lost the race to an Upsert is a no-op.
		if t.jobs[id] == job {
			delete(t.jobs, id)
			t.mu.Unlock()
			t.fire(id)
			return
		}
		t.mu.Unlock()
	})
	t.jobs[id] = job
}

// Cancel removes the job for the reminder ID, if any. It reports
// whether a job was cancelled.
func (t *AlarmTable) Cancel(id int64) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	job, ok := t.jobs[id]
	if !ok {
		return false
	}
	job.timer.Stop()
	delete(t.jobs, id)
	return true
}

// CancelAll stops every live job.
func (t *AlarmTable) CancelAll() {
	t.mu.Lock()
	defer t.mu.Unlock()

	for id, job := range t.jobs {
		job.timer.Stop()
		delete(t.jobs, id)
	}
}

// Len returns the number of live jobs.
func (t *AlarmTable) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.jobs)
}

// FireAt returns the scheduled fire time for a reminder ID.
func (t *AlarmTable) FireAt(id int64) (time.Time, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	job, ok := t.jobs[id]
	if !ok {
		return time.Time{}, false
	}
	return job.fireAt, true
}

// AlarmChecker keeps the alarm table synchronized with stored reminder
// state and handles fired alarms: notify, acknowledge, reschedule.
type AlarmChecker struct {
	reminderRepo *storage.ReminderRepo
	familyRepo   *storage.FamilyRepo
	dogRepo      *storage.DogRepo
	webhookRepo  *storage.WebhookRepo
	dispatcher   *notify.Dispatcher
	table        *AlarmTable
	debug        bool
}

// NewAlarmChecker creates a new alarm checker.
func NewAlarmChecker(
	reminderRepo *storage.ReminderRepo,
	familyRepo *storage.FamilyRepo,
	dogRepo *storage.DogRepo,
	webhookRepo *storage.WebhookRepo,
) *AlarmChecker {
	c := &AlarmChecker{
		reminderRepo: reminderRepo,
		familyRepo:   familyRepo,
		dogRepo:      dogRepo,
		webhookRepo:  webhookRepo,
		dispatcher:   notify.NewDispatcher(webhookRepo),
	}
	c.table = NewAlarmTable(c.onFire)
	return c
}

// SetDebug enables debug output.
func (c *AlarmChecker) SetDebug(debug bool) {
	c.debug = debug
}

// SetDispatcher replaces the default dispatcher. The daemon injects a
// shared one so failed deliveries land in its retry queue.
func (c *AlarmChecker) SetDispatcher(d *notify.Dispatcher) {
	c.dispatcher = d
}

// Table exposes the alarm table for cancellation on delete paths.
func (c *AlarmChecker) Table() *AlarmTable {
	return c.table
}

// schedulingContext builds the context for schedule computation from
// the stored family state.
func (c *AlarmChecker) schedulingContext(now time.Time) model.SchedulingContext {
	sctx := model.Context(now)
	if family, err := c.familyRepo.Get(); err == nil {
		sctx.FamilyPaused = family.IsPaused
	}
	return sctx
}

// Upsert recomputes the reminder's next fire and replaces its alarm
// job. Stale skips are reconciled first so a skip whose bypassed
// occurrence already passed never schedules from rotten state. When no
// fire is due (disabled, deleted, paused, spent one-time) the job is
// cancelled without replacement.
func (c *AlarmChecker) Upsert(reminder *model.Reminder) {
	now := time.Now()

	if reminder.ReconcileSkip(now) {
		if err := c.reminderRepo.Update(reminder); err != nil && c.debug {
			logging.DebugLog("failed to persist skip reconciliation",
				logging.KeyReminderID, reminder.ID, logging.KeyError, err)
		}
	}

	fireAt, ok := reminder.NextFire(c.schedulingContext(now))
	if !ok {
		c.table.Cancel(reminder.ID)
		if c.debug {
			logging.DebugLog("no fire due, alarm cancelled", logging.KeyReminderID, reminder.ID)
		}
		return
	}

	c.table.Upsert(reminder.ID, fireAt, now)
	if c.debug {
		logging.DebugLog("alarm scheduled",
			logging.KeyReminderID, reminder.ID, "fire_at", fireAt.Format(time.RFC3339))
	}
}

// Check resynchronizes every active reminder with the alarm table. The
// daemon runs it on startup and on the minute tick, which doubles as
// the missed-alarm catch-up after system sleep.
func (c *AlarmChecker) Check() {
	reminders, err := c.reminderRepo.ListActive()
	if err != nil {
		if c.debug {
			logging.DebugLog("failed to list reminders", logging.KeyError, err)
		}
		return
	}

	live := make(map[int64]bool, len(reminders))
	for _, reminder := range reminders {
		live[reminder.ID] = true
		c.Upsert(reminder)
	}

	// Drop jobs whose reminders no longer exist.
	c.table.mu.Lock()
	for id, job := range c.table.jobs {
		if !live[id] {
			job.timer.Stop()
			delete(c.table.jobs, id)
		}
	}
	c.table.mu.Unlock()
}

// onFire handles a due alarm: verify against stored state, dispatch the
// notification, then acknowledge and reschedule recurring kinds.
func (c *AlarmChecker) onFire(id int64) {
	reminder, err := c.reminderRepo.GetByID(id)
	if err != nil {
		if c.debug {
			logging.DebugLog("fired alarm for missing reminder",
				logging.KeyReminderID, id, logging.KeyError, err)
		}
		return
	}

	now := time.Now()
	fireAt, ok := reminder.NextFire(c.schedulingContext(now))
	if !ok || fireAt.After(now.Add(config.Global.Scheduler.AlarmGrace)) {
		// State moved underneath the timer; resync instead of firing.
		c.Upsert(reminder)
		return
	}

	c.sendAlarmNotification(reminder, fireAt)

	reminder.AcknowledgeFire(now)
	if err := c.reminderRepo.Update(reminder); err != nil {
		if c.debug {
			logging.DebugLog("failed to persist acknowledged fire",
				logging.KeyReminderID, id, logging.KeyError, err)
		}
		return
	}

	c.Upsert(reminder)
}

// sendAlarmNotification dispatches the care alarm to configured webhooks.
func (c *AlarmChecker) sendAlarmNotification(reminder *model.Reminder, fireAt time.Time) {
	dogName := "your dog"
	if dog, err := c.dogRepo.Get(reminder.DogKey); err == nil {
		dogName = dog.Name
	}

	notification := model.NewNotification(
		model.NotifyAlarm,
		fmt.Sprintf("Time to %s", reminder.DisplayName()),
		fmt.Sprintf("%s is due for %s.", dogName, reminder.DisplayName()),
	).WithColor(model.ColorWarning)

	notification.WithField("Dog", dogName)
	notification.WithField("Care", reminder.DisplayName())
	notification.WithField("Due", fireAt.Format("3:04 PM"))
	if reminder.Snooze.IsEnabled {
		notification.WithField("Snoozed", "yes")
	}

	ctx := context.Background()
	results := c.dispatcher.SendNotification(ctx, notification)

	if c.debug {
		for _, result := range results {
			if result.Success {
				logging.DebugLog("sent alarm notification",
					logging.KeyReminderID, reminder.ID, logging.KeyWebhook, result.WebhookName)
			} else {
				logging.DebugLog("failed to send alarm notification",
					logging.KeyReminderID, reminder.ID, logging.KeyWebhook, result.WebhookName,
					logging.KeyError, result.Error)
			}
		}
	}
}
