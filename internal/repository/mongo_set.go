package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/gymsnap/gymsnap/internal/domain"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type MongoSetRepository struct {
	collection *mongo.Collection
}

func NewMongoSetRepository(db *mongo.Database) *MongoSetRepository {
	coll := db.Collection("sets")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	mod := mongo.IndexModel{
		Keys: bson.D{{Key: "exercise_id", Value: 1}, {Key: "set_number", Value: 1}},
	}
	coll.Indexes().CreateOne(ctx, mod)

	return &MongoSetRepository{
		collection: coll,
	}
}

func (r *MongoSetRepository) Create(ctx context.Context, set *domain.Set) error {
	set.CreatedAt = time.Now()
	set.ID = primitive.NewObjectID().Hex()

	_, err := r.collection.InsertOne(ctx, set)
	if err != nil {
		return fmt.Errorf("failed to create set: %w", err)
	}
	return nil
}

func (r *MongoSetRepository) GetByID(ctx context.Context, id string) (*domain.Set, error) {
	if _, err := primitive.ObjectIDFromHex(id); err != nil {
		return nil, domain.ErrInvalidID
	}

	var set domain.Set
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&set)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, domain.ErrSetNotFound
		}
		return nil, err
	}
	return &set, nil
}

func (r *MongoSetRepository) Delete(ctx context.Context, id string) error {
	if _, err := primitive.ObjectIDFromHex(id); err != nil {
		return domain.ErrInvalidID
	}

	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("failed to delete set: %w", err)
	}
	if result.DeletedCount == 0 {
		return domain.ErrSetNotFound
	}
	return nil
}

func (r *MongoSetRepository) ListByExercise(ctx context.Context, exerciseID string) ([]*domain.Set, error) {
	opts := options.Find().SetSort(bson.D{{Key: "set_number", Value: 1}})

	cursor, err := r.collection.Find(ctx, bson.M{"exercise_id": exerciseID}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var sets []*domain.Set
	if err := cursor.All(ctx, &sets); err != nil {
		return nil, err
	}
	return sets, nil
}
