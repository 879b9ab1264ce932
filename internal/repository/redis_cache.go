package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/gymsnap/gymsnap/internal/domain"
	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

const (
	activeWorkoutKeyPrefix = "user:active_workout:"
)

// ErrCacheMiss is returned by Get when the key is absent or expired
var ErrCacheMiss = fmt.Errorf("cache miss")

// RedisCacheRepository implements domain.CacheRepository using Redis
type RedisCacheRepository struct {
	client *redis.Client
}

// NewRedisCacheRepository creates a new Redis cache repository
func NewRedisCacheRepository(client *redis.Client) *RedisCacheRepository {
	return &RedisCacheRepository{
		client: client,
	}
}

// SetActiveWorkout caches the user's active workout snapshot with TTL
func (r *RedisCacheRepository) SetActiveWorkout(ctx context.Context, userID string, workout *domain.WorkoutWithExercises, ttl time.Duration) error {
	return r.Set(ctx, activeWorkoutKeyPrefix+userID, workout, ttl)
}

// GetActiveWorkout retrieves the cached active workout snapshot.
// Returns nil, nil on cache miss.
func (r *RedisCacheRepository) GetActiveWorkout(ctx context.Context, userID string) (*domain.WorkoutWithExercises, error) {
	var workout domain.WorkoutWithExercises
	err := r.Get(ctx, activeWorkoutKeyPrefix+userID, &workout)
	if err != nil {
		if err == ErrCacheMiss {
			return nil, nil
		}
		return nil, err
	}
	return &workout, nil
}

// InvalidateActiveWorkout removes the cached snapshot for a user
func (r *RedisCacheRepository) InvalidateActiveWorkout(ctx context.Context, userID string) error {
	return r.Delete(ctx, activeWorkoutKeyPrefix+userID)
}

// Get retrieves a value from cache by key with OTel tracing
func (r *RedisCacheRepository) Get(ctx context.Context, key string, dest interface{}) error {
	tracer := otel.Tracer("redis")
	ctx, span := tracer.Start(ctx, "redis.Get",
		trace.WithAttributes(attribute.String("cache.key", key)),
	)
	defer span.End()

	data, err := r.client.Get(ctx, key).Bytes()
	if err != nil {
		if err == redis.Nil {
			span.SetAttributes(attribute.String("cache.result", "miss"))
			return ErrCacheMiss
		}
		span.RecordError(err)
		return fmt.Errorf("redis get error: %w", err)
	}

	span.SetAttributes(attribute.String("cache.result", "hit"))
	if err := json.Unmarshal(data, dest); err != nil {
		span.RecordError(err)
		return fmt.Errorf("unmarshal error: %w", err)
	}

	return nil
}

// Set stores a value in cache with TTL and OTel tracing
func (r *RedisCacheRepository) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	tracer := otel.Tracer("redis")
	ctx, span := tracer.Start(ctx, "redis.Set",
		trace.WithAttributes(
			attribute.String("cache.key", key),
			attribute.Int64("cache.ttl_seconds", int64(ttl.Seconds())),
		),
	)
	defer span.End()

	data, err := json.Marshal(value)
	if err != nil {
		span.RecordError(err)
		return fmt.Errorf("marshal error: %w", err)
	}

	if err := r.client.Set(ctx, key, data, ttl).Err(); err != nil {
		span.RecordError(err)
		return fmt.Errorf("redis set error: %w", err)
	}

	return nil
}

// Delete removes keys from cache with OTel tracing
func (r *RedisCacheRepository) Delete(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}

	tracer := otel.Tracer("redis")
	ctx, span := tracer.Start(ctx, "redis.Delete",
		trace.WithAttributes(attribute.Int("cache.key_count", len(keys))),
	)
	defer span.End()

	if err := r.client.Del(ctx, keys...).Err(); err != nil {
		span.RecordError(err)
		return fmt.Errorf("redis delete error: %w", err)
	}

	return nil
}
