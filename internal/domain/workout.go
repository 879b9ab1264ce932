package domain

import (
	"context"
	"time"
)

// Workout is one exercise session for a user, bounded by a start and an
// optional end timestamp. A workout with nil EndedAt is "active"; at most
// one active workout exists per user, enforced by a partial unique index.
// EndedAt is stored as an explicit null while active so the index's partial
// filter can target it.
type Workout struct {
	ID        string     `json:"id" bson:"_id,omitempty"`
	UserID    string     `json:"user_id" bson:"user_id"`
	StartedAt time.Time  `json:"started_at" bson:"started_at"`
	EndedAt   *time.Time `json:"ended_at,omitempty" bson:"ended_at"`
	Notes     string     `json:"notes,omitempty" bson:"notes,omitempty"`
	CreatedAt time.Time  `json:"created_at" bson:"created_at"`
}

// Active reports whether the workout has not been ended yet
func (w *Workout) Active() bool {
	return w.EndedAt == nil
}

// ExerciseWithSets pairs a logged exercise with its sets, ordered by
// set_number ascending.
type ExerciseWithSets struct {
	Exercise `bson:",inline"`
	Sets     []*Set `json:"sets" bson:"sets"`
}

// WorkoutWithExercises is the full aggregate tree for one workout.
// Exercises are ordered by creation time ascending.
type WorkoutWithExercises struct {
	Workout   `bson:",inline"`
	Exercises []*ExerciseWithSets `json:"exercises" bson:"exercises"`
}

// TotalSets returns the number of sets across all exercises
func (w *WorkoutWithExercises) TotalSets() int {
	n := 0
	for _, ex := range w.Exercises {
		n += len(ex.Sets)
	}
	return n
}

// FindExercise returns the exercise with the given id, or nil
func (w *WorkoutWithExercises) FindExercise(exerciseID string) *ExerciseWithSets {
	for _, ex := range w.Exercises {
		if ex.ID == exerciseID {
			return ex
		}
	}
	return nil
}

// WorkoutRepository persists workouts
type WorkoutRepository interface {
	Create(ctx context.Context, workout *Workout) error
	GetByID(ctx context.Context, id string) (*Workout, error)
	// GetActiveByUser returns the most recent workout with null ended_at
	// for the user, or ErrNoActiveWorkout
	GetActiveByUser(ctx context.Context, userID string) (*Workout, error)
	// End sets ended_at on the workout
	End(ctx context.Context, id string, endedAt time.Time) error
	// AppendNotes updates the free-text notes of the workout
	AppendNotes(ctx context.Context, id string, notes string) error
	// ListByUser returns the user's workouts, most recent first
	ListByUser(ctx context.Context, userID string, limit int64) ([]*Workout, error)
}
