package storage

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pawminder/pawminder/internal/model"
)

func setupTestDB(t *testing.T) *DB {
	db, err := Open(Options{InMemory: true})
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func TestNextID(t *testing.T) {
	db := setupTestDB(t)

	first, err := db.NextID(model.PrefixReminder)
	require.NoError(t, err)
	assert.Equal(t, int64(1), first)

	second, err := db.NextID(model.PrefixReminder)
	require.NoError(t, err)
	assert.Equal(t, int64(2), second)

	// Independent sequences do not interfere.
	other, err := db.NextID("other")
	require.NoError(t, err)
	assert.Equal(t, int64(1), other)
}

func TestDogRepoCRUD(t *testing.T) {
	db := setupTestDB(t)
	repo := NewDogRepo(db)

	dog := model.NewDog("Rex", model.KeyFamily)
	require.NoError(t, repo.Create(dog))
	assert.NotEmpty(t, dog.Key)

	loaded, err := repo.Get(dog.Key)
	require.NoError(t, err)
	assert.Equal(t, "Rex", loaded.Name)

	byName, err := repo.GetByName("Rex")
	require.NoError(t, err)
	assert.Equal(t, dog.Key, byName.Key)

	_, err = repo.GetByName("Bella")
	assert.ErrorIs(t, err, ErrKeyNotFound)

	require.NoError(t, repo.SoftDelete(dog.Key, time.Now()))
	active, err := repo.ListActive()
	require.NoError(t, err)
	assert.Empty(t, active)

	// Soft-deleted dogs keep their record.
	all, err := repo.List()
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestReminderRepoCreateAssignsID(t *testing.T) {
	db := setupTestDB(t)
	repo := NewReminderRepo(db)
	now := time.Date(2024, time.March, 10, 8, 0, 0, 0, time.UTC)

	r1 := model.NewReminder("dog:rex", model.ActionFeed, model.KindCountdown, now)
	require.NoError(t, repo.Create(r1))
	assert.Equal(t, int64(1), r1.ID)
	assert.Equal(t, "reminder:1", r1.Key)

	// Client placeholder IDs are replaced with server-assigned ones.
	r2 := model.NewReminder("dog:rex", model.ActionWalk, model.KindWeekly, now)
	r2.ID = -5
	require.NoError(t, repo.Create(r2))
	assert.Equal(t, int64(2), r2.ID)
	assert.False(t, r2.IsPlaceholder())
}

func TestReminderRepoRoundTrip(t *testing.T) {
	db := setupTestDB(t)
	repo := NewReminderRepo(db)
	now := time.Date(2024, time.March, 10, 8, 0, 0, 0, time.UTC)

	r := model.NewReminder("dog:rex", model.ActionWalk, model.KindWeekly, now)
	r.Weekly = model.WeeklyCalculator{
		Hour: 17, Minute: 30,
		Weekdays: []time.Weekday{time.Monday, time.Friday},
	}
	r.Weekly.RequestSkip(now, "log:abc")
	require.NoError(t, repo.Create(r))

	loaded, err := repo.GetByID(r.ID)
	require.NoError(t, err)

	// Reconstructed state reproduces identical fire-time results.
	sctx := model.Context(now)
	wantFire, wantOK := r.NextFire(sctx)
	gotFire, gotOK := loaded.NextFire(sctx)
	assert.Equal(t, wantOK, gotOK)
	assert.True(t, wantFire.Equal(gotFire))
	assert.Equal(t, "log:abc", loaded.SkipLogKey())
}

func TestReminderRepoListFilters(t *testing.T) {
	db := setupTestDB(t)
	repo := NewReminderRepo(db)
	now := time.Date(2024, time.March, 10, 8, 0, 0, 0, time.UTC)

	feed := model.NewReminder("dog:rex", model.ActionFeed, model.KindCountdown, now)
	feed.Countdown.ExecutionInterval = 8 * time.Hour
	require.NoError(t, repo.Create(feed))

	walk := model.NewReminder("dog:bella", model.ActionWalk, model.KindWeekly, now)
	walk.Weekly = model.WeeklyCalculator{Hour: 9, Minute: 0, Weekdays: []time.Weekday{time.Monday}}
	walk.Weekly.RequestSkip(now, "log:abc")
	require.NoError(t, repo.Create(walk))

	byDog, err := repo.ListByDog("dog:rex")
	require.NoError(t, err)
	require.Len(t, byDog, 1)
	assert.Equal(t, feed.ID, byDog[0].ID)

	skipping, err := repo.ListSkipping()
	require.NoError(t, err)
	require.Len(t, skipping, 1)
	assert.Equal(t, walk.ID, skipping[0].ID)

	require.NoError(t, repo.SoftDelete(walk.Key, now))
	active, err := repo.ListActive()
	require.NoError(t, err)
	assert.Len(t, active, 1)
}

func TestLogRepoOrdering(t *testing.T) {
	db := setupTestDB(t)
	repo := NewLogRepo(db)
	base := time.Date(2024, time.March, 10, 8, 0, 0, 0, time.UTC)

	older := model.NewLog("dog:rex", model.ActionFeed, "user:amy", base)
	newer := model.NewLog("dog:rex", model.ActionWalk, "user:amy", base.Add(time.Hour))
	require.NoError(t, repo.Create(older))
	require.NoError(t, repo.Create(newer))

	logs, err := repo.ListByDog("dog:rex")
	require.NoError(t, err)
	require.Len(t, logs, 2)
	assert.Equal(t, model.ActionWalk, logs[0].Action) // newest first
}

func TestFamilyRepoDefaults(t *testing.T) {
	db := setupTestDB(t)
	repo := NewFamilyRepo(db)

	family, err := repo.Get()
	require.NoError(t, err)
	assert.False(t, family.IsPaused)
	assert.Equal(t, model.DefaultSnoozeInterval, family.EffectiveSnoozeInterval())

	require.NoError(t, repo.SetPaused(true))
	family, err = repo.Get()
	require.NoError(t, err)
	assert.True(t, family.IsPaused)
}

func TestWebhookRepoLifecycle(t *testing.T) {
	db := setupTestDB(t)
	repo := NewWebhookRepo(db)

	wh := model.NewWebhook("family-discord", model.WebhookTypeDiscord,
		"https://discord.com/api/webhooks/123/abc")
	require.NoError(t, repo.Create(wh))

	enabled, err := repo.ListEnabled()
	require.NoError(t, err)
	assert.Len(t, enabled, 1)

	require.NoError(t, repo.Disable("family-discord"))
	enabled, err = repo.ListEnabled()
	require.NoError(t, err)
	assert.Empty(t, enabled)

	require.NoError(t, repo.UpdateLastUsed("family-discord", nil))
	loaded, err := repo.Get("family-discord")
	require.NoError(t, err)
	assert.False(t, loaded.LastUsed.IsZero())
	assert.Empty(t, loaded.LastError)
}
