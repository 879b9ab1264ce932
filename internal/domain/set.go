package domain

import (
	"context"
	"math"
	"time"
)

// WeightUnit is the unit a set's weight was logged in
type WeightUnit string

const (
	WeightKg  WeightUnit = "kg"
	WeightLbs WeightUnit = "lbs"
)

// Valid reports whether the unit is one of the supported values
func (u WeightUnit) Valid() bool {
	return u == WeightKg || u == WeightLbs
}

// Set is one logged repetition group within an exercise. SetNumber is
// 1-based, assigned from creation order, and never renumbered: deleting a
// set leaves a gap in the sequence.
type Set struct {
	ID         string     `json:"id" bson:"_id,omitempty"`
	ExerciseID string     `json:"exercise_id" bson:"exercise_id"`
	SetNumber  int        `json:"set_number" bson:"set_number"`
	Weight     float64    `json:"weight" bson:"weight"`
	Reps       int        `json:"reps" bson:"reps"`
	WeightUnit WeightUnit `json:"weight_unit" bson:"weight_unit"`
	RPE        *float64   `json:"rpe,omitempty" bson:"rpe,omitempty"`
	Notes      string     `json:"notes,omitempty" bson:"notes,omitempty"`
	CreatedAt  time.Time  `json:"created_at" bson:"created_at"`
}

// ValidateSetInput checks set input before any persistence call.
// Weight must be a finite number > 0, reps a positive integer, and RPE,
// if present, in [1,10] at 0.5 granularity.
func ValidateSetInput(weight float64, reps int, unit WeightUnit, rpe *float64) error {
	if math.IsNaN(weight) || math.IsInf(weight, 0) || weight <= 0 {
		return NewValidationError("weight", "must be a number greater than 0")
	}
	if reps <= 0 {
		return NewValidationError("reps", "must be a positive integer")
	}
	if !unit.Valid() {
		return NewValidationError("weight_unit", `must be "kg" or "lbs"`)
	}
	if rpe != nil {
		v := *rpe
		if math.IsNaN(v) || v < 1 || v > 10 {
			return NewValidationError("rpe", "must be between 1 and 10")
		}
		if math.Mod(v*2, 1) != 0 {
			return NewValidationError("rpe", "must be in increments of 0.5")
		}
	}
	return nil
}

// SetRepository persists logged sets
type SetRepository interface {
	Create(ctx context.Context, set *Set) error
	GetByID(ctx context.Context, id string) (*Set, error)
	Delete(ctx context.Context, id string) error
	// ListByExercise returns the exercise's sets ordered by set_number ascending
	ListByExercise(ctx context.Context, exerciseID string) ([]*Set, error)
}
