package storage

import (
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/pawminder/pawminder/internal/model"
)

// LogRepo provides operations for Log entities.
type LogRepo struct {
	db *DB
}

// NewLogRepo creates a new log repository.
func NewLogRepo(db *DB) *LogRepo {
	return &LogRepo{db: db}
}

// Create creates a new log with a generated key.
func (r *LogRepo) Create(l *model.Log) error {
	if l.Key == "" {
		l.Key = model.GenerateLogKey(uuid.New().String())
	}
	if l.CreatedAt.IsZero() {
		l.CreatedAt = time.Now()
	}
	if l.Timestamp.IsZero() {
		l.Timestamp = l.CreatedAt
	}
	return r.db.Set(l)
}

// Get retrieves a log by key.
func (r *LogRepo) Get(key string) (*model.Log, error) {
	l := &model.Log{}
	if err := r.db.Get(key, l); err != nil {
		return nil, err
	}
	return l, nil
}

// List retrieves all logs sorted by timestamp descending.
func (r *LogRepo) List() ([]*model.Log, error) {
	logs, err := GetAllByPrefix(r.db, model.PrefixLog+":", func() *model.Log {
		return &model.Log{}
	})
	if err != nil {
		return nil, err
	}

	sort.Slice(logs, func(i, j int) bool {
		return logs[i].Timestamp.After(logs[j].Timestamp)
	})
	return logs, nil
}

// ListByDog retrieves all logs for a dog, newest first.
func (r *LogRepo) ListByDog(dogKey string) ([]*model.Log, error) {
	all, err := r.List()
	if err != nil {
		return nil, err
	}

	var result []*model.Log
	for _, l := range all {
		if l.DogKey == dogKey {
			result = append(result, l)
		}
	}
	return result, nil
}

// Delete removes a log by key. Skip reconciliation against the deleted
// log is handled by the caller; the repo only removes the record.
func (r *LogRepo) Delete(key string) error {
	return r.db.Delete(key)
}

// Exists checks if a log exists.
func (r *LogRepo) Exists(key string) (bool, error) {
	return r.db.Exists(key)
}
