package storage

import (
	"time"

	"github.com/google/uuid"
	"github.com/pawminder/pawminder/internal/model"
)

// DogRepo provides operations for Dog entities.
type DogRepo struct {
	db *DB
}

// NewDogRepo creates a new dog repository.
func NewDogRepo(db *DB) *DogRepo {
	return &DogRepo{db: db}
}

// Create creates a new dog with a generated key.
func (r *DogRepo) Create(dog *model.Dog) error {
	if dog.Key == "" {
		dog.Key = model.GenerateDogKey(uuid.New().String())
	}
	if dog.CreatedAt.IsZero() {
		dog.CreatedAt = time.Now()
	}
	return r.db.Set(dog)
}

// Get retrieves a dog by key.
func (r *DogRepo) Get(key string) (*model.Dog, error) {
	dog := &model.Dog{}
	if err := r.db.Get(key, dog); err != nil {
		return nil, err
	}
	return dog, nil
}

// GetByName retrieves a live dog by exact name match.
func (r *DogRepo) GetByName(name string) (*model.Dog, error) {
	dogs, err := r.ListActive()
	if err != nil {
		return nil, err
	}

	for _, dog := range dogs {
		if dog.Name == name {
			return dog, nil
		}
	}
	return nil, ErrKeyNotFound
}

// List retrieves all dogs, including soft-deleted ones.
func (r *DogRepo) List() ([]*model.Dog, error) {
	return GetAllByPrefix(r.db, model.PrefixDog+":", func() *model.Dog {
		return &model.Dog{}
	})
}

// ListActive retrieves all dogs that are not soft-deleted.
func (r *DogRepo) ListActive() ([]*model.Dog, error) {
	all, err := r.List()
	if err != nil {
		return nil, err
	}

	var active []*model.Dog
	for _, dog := range all {
		if !dog.IsDeleted() {
			active = append(active, dog)
		}
	}
	return active, nil
}

// Update updates an existing dog.
func (r *DogRepo) Update(dog *model.Dog) error {
	return r.db.Set(dog)
}

// SoftDelete marks a dog as deleted. The dog's reminders are the
// caller's responsibility (soft-delete plus alarm cancellation).
func (r *DogRepo) SoftDelete(key string, now time.Time) error {
	dog, err := r.Get(key)
	if err != nil {
		return err
	}
	dog.DeletedAt = now
	return r.db.Set(dog)
}
