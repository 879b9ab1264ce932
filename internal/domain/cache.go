package domain

import (
	"context"
	"time"
)

// CacheRepository caches derived read models; currently the active-workout
// snapshot served to clients on resume.
type CacheRepository interface {
	SetActiveWorkout(ctx context.Context, userID string, workout *WorkoutWithExercises, ttl time.Duration) error
	// GetActiveWorkout returns nil, nil on cache miss
	GetActiveWorkout(ctx context.Context, userID string) (*WorkoutWithExercises, error)
	InvalidateActiveWorkout(ctx context.Context, userID string) error
}
