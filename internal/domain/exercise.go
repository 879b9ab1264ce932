package domain

import (
	"context"
	"time"
)

// Exercise is one movement/equipment instance performed within a workout.
// It belongs to exactly one workout and is immutable after creation.
type Exercise struct {
	ID             string    `json:"id" bson:"_id,omitempty"`
	WorkoutID      string    `json:"workout_id" bson:"workout_id"`
	Name           string    `json:"name" bson:"name"`
	Equipment      string    `json:"equipment,omitempty" bson:"equipment,omitempty"`
	MuscleGroup    string    `json:"muscle_group,omitempty" bson:"muscle_group,omitempty"`
	PhotoURL       string    `json:"photo_url,omitempty" bson:"photo_url,omitempty"`
	IdentifiedByAI bool      `json:"identified_by_ai" bson:"identified_by_ai"`
	CreatedAt      time.Time `json:"created_at" bson:"created_at"`
}

// ExerciseRepository persists workout exercises
type ExerciseRepository interface {
	Create(ctx context.Context, exercise *Exercise) error
	GetByID(ctx context.Context, id string) (*Exercise, error)
	// ListByWorkout returns the workout's exercises ordered by creation time ascending
	ListByWorkout(ctx context.Context, workoutID string) ([]*Exercise, error)
}
