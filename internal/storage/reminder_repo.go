package storage

import (
	"time"

	"github.com/pawminder/pawminder/internal/model"
)

// ReminderRepo provides operations for Reminder entities.
type ReminderRepo struct {
	db *DB
}

// NewReminderRepo creates a new reminder repository.
func NewReminderRepo(db *DB) *ReminderRepo {
	return &ReminderRepo{db: db}
}

// Create creates a new reminder. Placeholder IDs (negative, assigned by
// a client awaiting the server) are replaced with the next value of the
// reminder sequence.
func (r *ReminderRepo) Create(reminder *model.Reminder) error {
	if reminder.ID <= 0 {
		id, err := r.db.NextID(model.PrefixReminder)
		if err != nil {
			return err
		}
		reminder.ID = id
	}
	if reminder.Key == "" {
		reminder.Key = model.GenerateReminderKey(reminder.ID)
	}
	if reminder.CreatedAt.IsZero() {
		reminder.CreatedAt = time.Now()
	}
	if reminder.ExecutionBasis.IsZero() {
		reminder.ExecutionBasis = reminder.CreatedAt
	}
	return r.db.Set(reminder)
}

// Get retrieves a reminder by key.
func (r *ReminderRepo) Get(key string) (*model.Reminder, error) {
	reminder := &model.Reminder{}
	if err := r.db.Get(key, reminder); err != nil {
		return nil, err
	}
	return reminder, nil
}

// GetByID retrieves a reminder by its integer ID.
func (r *ReminderRepo) GetByID(id int64) (*model.Reminder, error) {
	return r.Get(model.GenerateReminderKey(id))
}

// List retrieves all reminders, including soft-deleted ones.
func (r *ReminderRepo) List() ([]*model.Reminder, error) {
	return GetAllByPrefix(r.db, model.PrefixReminder+":", func() *model.Reminder {
		return &model.Reminder{}
	})
}

// ListActive retrieves all reminders that are not soft-deleted.
func (r *ReminderRepo) ListActive() ([]*model.Reminder, error) {
	all, err := r.List()
	if err != nil {
		return nil, err
	}

	var active []*model.Reminder
	for _, rem := range all {
		if !rem.IsDeleted() {
			active = append(active, rem)
		}
	}
	return active, nil
}

// ListByDog retrieves all live reminders attached to a dog.
func (r *ReminderRepo) ListByDog(dogKey string) ([]*model.Reminder, error) {
	active, err := r.ListActive()
	if err != nil {
		return nil, err
	}

	var result []*model.Reminder
	for _, rem := range active {
		if rem.DogKey == dogKey {
			result = append(result, rem)
		}
	}
	return result, nil
}

// ListSkipping retrieves live reminders with a pending skip.
func (r *ReminderRepo) ListSkipping() ([]*model.Reminder, error) {
	active, err := r.ListActive()
	if err != nil {
		return nil, err
	}

	var result []*model.Reminder
	for _, rem := range active {
		if rem.IsSkipping() {
			result = append(result, rem)
		}
	}
	return result, nil
}

// Update updates an existing reminder.
func (r *ReminderRepo) Update(reminder *model.Reminder) error {
	return r.db.Set(reminder)
}

// SoftDelete marks a reminder as deleted without removing its record.
// The caller is responsible for cancelling any scheduled alarm job.
func (r *ReminderRepo) SoftDelete(key string, now time.Time) error {
	reminder, err := r.Get(key)
	if err != nil {
		return err
	}
	reminder.DeletedAt = now
	return r.db.Set(reminder)
}

// Delete removes a reminder record outright.
func (r *ReminderRepo) Delete(key string) error {
	return r.db.Delete(key)
}

// Exists checks if a reminder exists.
func (r *ReminderRepo) Exists(key string) (bool, error) {
	return r.db.Exists(key)
}
