package repository

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/gymsnap/gymsnap/internal/domain"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type MongoWorkoutRepository struct {
	collection *mongo.Collection
}

func NewMongoWorkoutRepository(db *mongo.Database) *MongoWorkoutRepository {
	coll := db.Collection("workouts")

	// Partial unique index: at most one workout per user with null ended_at.
	// A second concurrent start trips a duplicate-key error instead of
	// silently creating two active workouts. Active workouts store ended_at
	// as an explicit null because partial filters cannot express
	// "$exists: false".
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	mod := mongo.IndexModel{
		Keys: bson.D{{Key: "user_id", Value: 1}},
		Options: options.Index().
			SetUnique(true).
			SetPartialFilterExpression(bson.M{"ended_at": bson.M{"$type": "null"}}),
	}
	if _, err := coll.Indexes().CreateOne(ctx, mod); err != nil {
		log.Printf("Warning: failed to create active-workout unique index: %v", err)
	}

	return &MongoWorkoutRepository{
		collection: coll,
	}
}

func (r *MongoWorkoutRepository) Create(ctx context.Context, workout *domain.Workout) error {
	now := time.Now()
	if workout.StartedAt.IsZero() {
		workout.StartedAt = now
	}
	workout.CreatedAt = now
	// Ids are stored as hex strings so documents round-trip straight into
	// the domain structs
	workout.ID = primitive.NewObjectID().Hex()

	_, err := r.collection.InsertOne(ctx, workout)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return domain.ErrWorkoutInProgress
		}
		return fmt.Errorf("failed to create workout: %w", err)
	}
	return nil
}

func (r *MongoWorkoutRepository) GetByID(ctx context.Context, id string) (*domain.Workout, error) {
	if _, err := primitive.ObjectIDFromHex(id); err != nil {
		return nil, domain.ErrInvalidID
	}

	var workout domain.Workout
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&workout)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, domain.ErrWorkoutNotFound
		}
		return nil, err
	}
	return &workout, nil
}

func (r *MongoWorkoutRepository) GetActiveByUser(ctx context.Context, userID string) (*domain.Workout, error) {
	filter := bson.M{
		"user_id":  userID,
		"ended_at": nil,
	}
	opts := options.FindOne().SetSort(bson.D{{Key: "started_at", Value: -1}})

	var workout domain.Workout
	err := r.collection.FindOne(ctx, filter, opts).Decode(&workout)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, domain.ErrNoActiveWorkout
		}
		return nil, err
	}
	return &workout, nil
}

func (r *MongoWorkoutRepository) End(ctx context.Context, id string, endedAt time.Time) error {
	update := bson.M{
		"$set": bson.M{"ended_at": endedAt},
	}
	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": id}, update)
	if err != nil {
		return fmt.Errorf("failed to end workout: %w", err)
	}
	if result.MatchedCount == 0 {
		return domain.ErrWorkoutNotFound
	}
	return nil
}

func (r *MongoWorkoutRepository) AppendNotes(ctx context.Context, id string, notes string) error {
	update := bson.M{
		"$set": bson.M{"notes": notes},
	}
	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": id}, update)
	if err != nil {
		return fmt.Errorf("failed to update workout notes: %w", err)
	}
	if result.MatchedCount == 0 {
		return domain.ErrWorkoutNotFound
	}
	return nil
}

func (r *MongoWorkoutRepository) ListByUser(ctx context.Context, userID string, limit int64) ([]*domain.Workout, error) {
	opts := options.Find().SetSort(bson.D{{Key: "started_at", Value: -1}})
	if limit > 0 {
		opts.SetLimit(limit)
	}

	cursor, err := r.collection.Find(ctx, bson.M{"user_id": userID}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var workouts []*domain.Workout
	if err := cursor.All(ctx, &workouts); err != nil {
		return nil, err
	}
	return workouts, nil
}
