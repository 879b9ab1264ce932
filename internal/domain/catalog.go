package domain

import (
	"context"
	"time"
)

// CatalogExercise is one entry of the static reference catalog used for
// manual correction and alternative lookups.
type CatalogExercise struct {
	ID          string    `json:"id" bson:"_id,omitempty"`
	Name        string    `json:"name" bson:"name"` // unique index
	Equipment   string    `json:"equipment" bson:"equipment"`
	MuscleGroup string    `json:"muscle_group" bson:"muscle_group"`
	CreatedAt   time.Time `json:"created_at" bson:"created_at"`
	UpdatedAt   time.Time `json:"updated_at" bson:"updated_at"`
}

// CatalogRepository persists the exercise catalog
type CatalogRepository interface {
	// Upsert inserts or refreshes an entry by name; used by the seeder
	Upsert(ctx context.Context, exercise *CatalogExercise) error
	GetByName(ctx context.Context, name string) (*CatalogExercise, error)
	// List returns entries, optionally filtered by a case-insensitive
	// name substring, ordered by name ascending
	List(ctx context.Context, nameFilter string) ([]*CatalogExercise, error)
}
