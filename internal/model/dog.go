package model

import (
	"fmt"
	"time"
)

// Dog is the entity reminders attach to. Dogs are soft-deleted;
// destroying a dog soft-deletes its reminders and cancels their
// scheduled alarm jobs.
type Dog struct {
	Key       string    `json:"key"`
	Name      string    `json:"name" validate:"required,max=64"`
	FamilyKey string    `json:"family_key"`
	CreatedAt time.Time `json:"created_at"`
	DeletedAt time.Time `json:"deleted_at,omitempty"`
}

// SetKey sets the database key for this dog.
func (d *Dog) SetKey(key string) {
	d.Key = key
}

// GetKey returns the database key for this dog.
func (d *Dog) GetKey() string {
	return d.Key
}

// IsDeleted reports whether the dog has been soft-deleted.
func (d *Dog) IsDeleted() bool {
	return !d.DeletedAt.IsZero()
}

// GenerateDogKey generates a database key for a dog using UUID.
func GenerateDogKey(uuid string) string {
	return fmt.Sprintf("%s:%s", PrefixDog, uuid)
}

// NewDog creates a new dog.
func NewDog(name, familyKey string) *Dog {
	return &Dog{
		Name:      name,
		FamilyKey: familyKey,
		CreatedAt: time.Now(),
	}
}
