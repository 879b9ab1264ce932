package main

import (
	"context"
	"log"
	"time"

	"github.com/gymsnap/gymsnap/internal/catalog"
	"github.com/gymsnap/gymsnap/internal/config"
	"github.com/gymsnap/gymsnap/internal/repository"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.MongoDB.URI))
	if err != nil {
		log.Fatalf("Failed to connect to Mongo: %v", err)
	}
	defer client.Disconnect(ctx)

	db := client.Database(cfg.MongoDB.Database)
	repo := repository.NewMongoCatalogRepository(db)

	count := 0
	for i := range catalog.Builtin {
		entry := catalog.Builtin[i]
		if err := repo.Upsert(ctx, &entry); err != nil {
			log.Printf("Failed to seed %q: %v", entry.Name, err)
			continue
		}
		count++
	}

	log.Printf("✓ Seeded %d catalog exercises", count)
}
