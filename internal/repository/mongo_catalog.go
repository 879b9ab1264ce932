package repository

import (
	"context"
	"fmt"
	"regexp"
	"time"

	"github.com/gymsnap/gymsnap/internal/domain"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type MongoCatalogRepository struct {
	collection *mongo.Collection
}

func NewMongoCatalogRepository(db *mongo.Database) *MongoCatalogRepository {
	coll := db.Collection("catalog_exercises")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	mod := mongo.IndexModel{
		Keys:    bson.D{{Key: "name", Value: 1}},
		Options: options.Index().SetUnique(true),
	}
	coll.Indexes().CreateOne(ctx, mod)

	return &MongoCatalogRepository{
		collection: coll,
	}
}

func (r *MongoCatalogRepository) Upsert(ctx context.Context, ex *domain.CatalogExercise) error {
	now := time.Now()
	ex.UpdatedAt = now

	update := bson.M{
		"$set": bson.M{
			"equipment":    ex.Equipment,
			"muscle_group": ex.MuscleGroup,
			"updated_at":   now,
		},
		"$setOnInsert": bson.M{
			"_id":        primitive.NewObjectID().Hex(),
			"name":       ex.Name,
			"created_at": now,
		},
	}
	opts := options.Update().SetUpsert(true)

	_, err := r.collection.UpdateOne(ctx, bson.M{"name": ex.Name}, update, opts)
	if err != nil {
		return fmt.Errorf("failed to upsert catalog exercise %q: %w", ex.Name, err)
	}
	return nil
}

func (r *MongoCatalogRepository) GetByName(ctx context.Context, name string) (*domain.CatalogExercise, error) {
	var ex domain.CatalogExercise
	err := r.collection.FindOne(ctx, bson.M{"name": name}).Decode(&ex)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &ex, nil
}

func (r *MongoCatalogRepository) List(ctx context.Context, nameFilter string) ([]*domain.CatalogExercise, error) {
	query := bson.M{}
	if nameFilter != "" {
		// The filter is a literal substring, not a user-supplied pattern
		query["name"] = bson.M{"$regex": regexp.QuoteMeta(nameFilter), "$options": "i"}
	}
	opts := options.Find().SetSort(bson.D{{Key: "name", Value: 1}})

	cursor, err := r.collection.Find(ctx, query, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var exercises []*domain.CatalogExercise
	if err := cursor.All(ctx, &exercises); err != nil {
		return nil, err
	}
	return exercises, nil
}
