package storage

import (
	"errors"

	"github.com/pawminder/pawminder/internal/model"
)

// FamilyRepo provides access to the single family settings record.
type FamilyRepo struct {
	db *DB
}

// NewFamilyRepo creates a new family repository.
func NewFamilyRepo(db *DB) *FamilyRepo {
	return &FamilyRepo{db: db}
}

// Get retrieves the family settings, falling back to defaults when no
// record has been stored yet.
func (r *FamilyRepo) Get() (*model.Family, error) {
	family := &model.Family{}
	err := r.db.Get(model.KeyFamily, family)
	if err != nil {
		if errors.Is(err, ErrKeyNotFound) {
			return model.DefaultFamily(), nil
		}
		return nil, err
	}
	return family, nil
}

// Save stores the family settings.
func (r *FamilyRepo) Save(family *model.Family) error {
	if family.Key == "" {
		family.Key = model.KeyFamily
	}
	return r.db.Set(family)
}

// SetPaused flips the family-wide pause flag.
func (r *FamilyRepo) SetPaused(paused bool) error {
	family, err := r.Get()
	if err != nil {
		return err
	}
	family.IsPaused = paused
	return r.Save(family)
}
