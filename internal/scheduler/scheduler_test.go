package scheduler

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pawminder/pawminder/internal/model"
	"github.com/pawminder/pawminder/internal/storage"
)

func setupTestDB(t *testing.T) *storage.DB {
	db, err := storage.Open(storage.Options{InMemory: true})
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func date(y int, m time.Month, d, hh, mm int) time.Time {
	return time.Date(y, m, d, hh, mm, 0, 0, time.UTC)
}

type fireRecorder struct {
	mu    sync.Mutex
	fired []int64
}

func (f *fireRecorder) fire(id int64) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.fired = append(f.fired, id)
}

func (f *fireRecorder) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.fired)
}

func TestAlarmTableUpsertReplacesJob(t *testing.T) {
	rec := &fireRecorder{}
	table := NewAlarmTable(rec.fire)
	defer table.CancelAll()

	now := time.Now()
	table.Upsert(1, now.Add(time.Hour), now)
	table.Upsert(1, now.Add(2*time.Hour), now)
	table.Upsert(1, now.Add(30*time.Minute), now)

	// One live job per ID, tracking the last accepted update.
	assert.Equal(t, 1, table.Len())
	fireAt, ok := table.FireAt(1)
	require.True(t, ok)
	assert.Equal(t, now.Add(30*time.Minute), fireAt)
}

func TestAlarmTableIndependentIDs(t *testing.T) {
	rec := &fireRecorder{}
	table := NewAlarmTable(rec.fire)
	defer table.CancelAll()

	now := time.Now()
	table.Upsert(1, now.Add(time.Hour), now)
	table.Upsert(2, now.Add(time.Hour), now)
	assert.Equal(t, 2, table.Len())

	assert.True(t, table.Cancel(1))
	assert.Equal(t, 1, table.Len())

	_, ok := table.FireAt(1)
	assert.False(t, ok)
	_, ok = table.FireAt(2)
	assert.True(t, ok)
}

func TestAlarmTableCancelMissing(t *testing.T) {
	table := NewAlarmTable(func(int64) {})
	assert.False(t, table.Cancel(99))
}

func TestAlarmTableFires(t *testing.T) {
	rec := &fireRecorder{}
	table := NewAlarmTable(rec.fire)
	defer table.CancelAll()

	now := time.Now()
	table.Upsert(7, now.Add(10*time.Millisecond), now)

	assert.Eventually(t, func() bool {
		return rec.count() == 1
	}, time.Second, 5*time.Millisecond)

	// The job consumed itself.
	assert.Equal(t, 0, table.Len())
}

func TestAlarmTableStaleTimerDoesNotFire(t *testing.T) {
	rec := &fireRecorder{}
	table := NewAlarmTable(rec.fire)
	defer table.CancelAll()

	now := time.Now()
	table.Upsert(3, now.Add(10*time.Millisecond), now)
	table.Upsert(3, now.Add(time.Hour), now)

	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, 0, rec.count())
	assert.Equal(t, 1, table.Len())
}

func TestAlarmTablePastFireTimeFiresImmediately(t *testing.T) {
	rec := &fireRecorder{}
	table := NewAlarmTable(rec.fire)
	defer table.CancelAll()

	now := time.Now()
	table.Upsert(5, now.Add(-time.Minute), now)

	assert.Eventually(t, func() bool {
		return rec.count() == 1
	}, time.Second, 5*time.Millisecond)
}

func TestAlarmTableConcurrentUpserts(t *testing.T) {
	table := NewAlarmTable(func(int64) {})
	defer table.CancelAll()

	now := time.Now()
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			table.Upsert(1, now.Add(time.Duration(n+1)*time.Hour), now)
		}(i)
	}
	wg.Wait()

	assert.Equal(t, 1, table.Len())
}

func newSkippingWeekly(t *testing.T, db *storage.DB, basis time.Time) *model.Reminder {
	t.Helper()
	repo := storage.NewReminderRepo(db)

	r := model.NewReminder("dog:abc", model.ActionWalk, model.KindWeekly, basis)
	r.Weekly.Hour = 8
	r.Weekly.Weekdays = []time.Weekday{time.Monday}
	require.NoError(t, repo.Create(r))

	_, err := r.RequestSkip(basis, "log:fulfilled")
	require.NoError(t, err)
	require.NoError(t, repo.Update(r))
	return r
}

func TestSkipSweepClearsPassedSkip(t *testing.T) {
	db := setupTestDB(t)
	repo := storage.NewReminderRepo(db)
	sweep := NewSkipSweep(repo, nil)

	// Monday Mar 2 2026; bypassed occurrence is Monday Mar 9 08:00.
	basis := date(2026, time.March, 2, 9, 0)
	r := newSkippingWeekly(t, db, basis)

	// Before the bypassed occurrence nothing changes.
	changed, err := sweep.Run(date(2026, time.March, 8, 0, 0))
	require.NoError(t, err)
	assert.Equal(t, 0, changed)

	// After it the skip is stale: cleared and rebased.
	after := date(2026, time.March, 9, 9, 0)
	changed, err = sweep.Run(after)
	require.NoError(t, err)
	assert.Equal(t, 1, changed)

	got, err := repo.GetByID(r.ID)
	require.NoError(t, err)
	assert.False(t, got.IsSkipping())
	assert.True(t, got.ExecutionBasis.Equal(after))

	// Idempotent.
	changed, err = sweep.Run(after.Add(time.Minute))
	require.NoError(t, err)
	assert.Equal(t, 0, changed)
}

func TestSkipSweepClearsOrphanedSkip(t *testing.T) {
	db := setupTestDB(t)
	repo := storage.NewReminderRepo(db)
	logRepo := storage.NewLogRepo(db)
	sweep := NewSkipSweep(repo, logRepo)

	basis := date(2026, time.March, 2, 9, 0)
	r := newSkippingWeekly(t, db, basis)

	// The referenced log was never written, so the skip is orphaned.
	changed, err := sweep.Run(basis.Add(time.Hour))
	require.NoError(t, err)
	assert.Equal(t, 1, changed)

	got, err := repo.GetByID(r.ID)
	require.NoError(t, err)
	assert.False(t, got.IsSkipping())
	// No rebase: the occurrence is simply pending again.
	assert.True(t, got.ExecutionBasis.Equal(basis))
}

func TestSkipSweepKeepsSkipWithLiveLog(t *testing.T) {
	db := setupTestDB(t)
	repo := storage.NewReminderRepo(db)
	logRepo := storage.NewLogRepo(db)
	sweep := NewSkipSweep(repo, logRepo)

	basis := date(2026, time.March, 2, 9, 0)
	r := newSkippingWeekly(t, db, basis)

	l := model.NewLog("dog:abc", model.ActionWalk, "member:me", basis)
	l.ReminderID = r.ID
	require.NoError(t, logRepo.Create(l))

	r.ClearSkip()
	_, err := r.RequestSkip(basis, l.Key)
	require.NoError(t, err)
	require.NoError(t, repo.Update(r))

	changed, err := sweep.Run(basis.Add(time.Hour))
	require.NoError(t, err)
	assert.Equal(t, 0, changed)
}

func TestReconcileLogDeletionExplicitReference(t *testing.T) {
	db := setupTestDB(t)
	repo := storage.NewReminderRepo(db)
	logRepo := storage.NewLogRepo(db)
	sweep := NewSkipSweep(repo, logRepo)

	basis := date(2026, time.March, 2, 9, 0)
	r := newSkippingWeekly(t, db, basis)

	l := model.NewLog("dog:abc", model.ActionWalk, "member:me", basis)
	l.ReminderID = r.ID
	require.NoError(t, logRepo.Create(l))

	r.ClearSkip()
	_, err := r.RequestSkip(basis, l.Key)
	require.NoError(t, err)
	require.NoError(t, repo.Update(r))

	changed, err := sweep.ReconcileLogDeletion(l)
	require.NoError(t, err)
	require.Len(t, changed, 1)

	got, err := repo.GetByID(r.ID)
	require.NoError(t, err)
	assert.False(t, got.IsSkipping())
}

func TestReconcileLogDeletionLegacyProximity(t *testing.T) {
	db := setupTestDB(t)
	repo := storage.NewReminderRepo(db)
	sweep := NewSkipSweep(repo, storage.NewLogRepo(db))

	basis := date(2026, time.March, 2, 9, 0)
	r := newSkippingWeekly(t, db, basis)

	// Legacy state: skip without a log reference.
	r.Weekly.SkipLogKey = ""
	require.NoError(t, repo.Update(r))

	near := model.NewLog("dog:abc", model.ActionWalk, "member:me", basis.Add(5*time.Millisecond))
	near.ReminderID = r.ID
	far := model.NewLog("dog:abc", model.ActionWalk, "member:me", basis.Add(time.Minute))
	far.ReminderID = r.ID

	changed, err := sweep.ReconcileLogDeletion(far)
	require.NoError(t, err)
	assert.Empty(t, changed)

	changed, err = sweep.ReconcileLogDeletion(near)
	require.NoError(t, err)
	assert.Len(t, changed, 1)
}

func TestReconcileLogDeletionOtherReminderUntouched(t *testing.T) {
	db := setupTestDB(t)
	repo := storage.NewReminderRepo(db)
	sweep := NewSkipSweep(repo, storage.NewLogRepo(db))

	basis := date(2026, time.March, 2, 9, 0)
	r := newSkippingWeekly(t, db, basis)
	r.Weekly.SkipLogKey = ""
	require.NoError(t, repo.Update(r))

	other := model.NewLog("dog:xyz", model.ActionFeed, "member:me", basis)
	other.ReminderID = r.ID + 100

	changed, err := sweep.ReconcileLogDeletion(other)
	require.NoError(t, err)
	assert.Empty(t, changed)
}

func TestAlarmCheckerUpsertAndCancel(t *testing.T) {
	db := setupTestDB(t)
	reminderRepo := storage.NewReminderRepo(db)
	checker := NewAlarmChecker(reminderRepo, storage.NewFamilyRepo(db),
		storage.NewDogRepo(db), storage.NewWebhookRepo(db))
	defer checker.Table().CancelAll()

	r := model.NewReminder("dog:abc", model.ActionFeed, model.KindCountdown, time.Now())
	r.Countdown.ExecutionInterval = time.Hour
	require.NoError(t, reminderRepo.Create(r))

	checker.Upsert(r)
	assert.Equal(t, 1, checker.Table().Len())

	// Disabling cancels without replacement.
	r.Enabled = false
	require.NoError(t, reminderRepo.Update(r))
	checker.Upsert(r)
	assert.Equal(t, 0, checker.Table().Len())
}

func TestAlarmCheckerPausedFamilySchedulesNothing(t *testing.T) {
	db := setupTestDB(t)
	reminderRepo := storage.NewReminderRepo(db)
	familyRepo := storage.NewFamilyRepo(db)
	require.NoError(t, familyRepo.SetPaused(true))

	checker := NewAlarmChecker(reminderRepo, familyRepo,
		storage.NewDogRepo(db), storage.NewWebhookRepo(db))
	defer checker.Table().CancelAll()

	r := model.NewReminder("dog:abc", model.ActionFeed, model.KindCountdown, time.Now())
	r.Countdown.ExecutionInterval = time.Hour
	require.NoError(t, reminderRepo.Create(r))

	checker.Check()
	assert.Equal(t, 0, checker.Table().Len())

	// Resuming restores the alarm on the next sync.
	require.NoError(t, familyRepo.SetPaused(false))
	checker.Check()
	assert.Equal(t, 1, checker.Table().Len())
}

func TestAlarmCheckerCheckDropsDeletedReminders(t *testing.T) {
	db := setupTestDB(t)
	reminderRepo := storage.NewReminderRepo(db)
	checker := NewAlarmChecker(reminderRepo, storage.NewFamilyRepo(db),
		storage.NewDogRepo(db), storage.NewWebhookRepo(db))
	defer checker.Table().CancelAll()

	r := model.NewReminder("dog:abc", model.ActionWalk, model.KindCountdown, time.Now())
	r.Countdown.ExecutionInterval = time.Hour
	require.NoError(t, reminderRepo.Create(r))

	checker.Check()
	require.Equal(t, 1, checker.Table().Len())

	require.NoError(t, reminderRepo.SoftDelete(r.Key, time.Now()))
	checker.Check()
	assert.Equal(t, 0, checker.Table().Len())
}

func TestSchedulerStartStop(t *testing.T) {
	db := setupTestDB(t)
	s := NewScheduler(db)
	s.SetSkipSweep(NewSkipSweep(storage.NewReminderRepo(db), storage.NewLogRepo(db)))

	require.NoError(t, s.Start())
	assert.False(t, s.NextRun().IsZero())
	s.Stop()
}
