package repository

import (
	"context"
	"fmt"
	"time"

	"hotelbook/pkg/config"
	mongotx "hotelbook/pkg/db/mongo"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const GuardsCollection = "Booking_guards"

// GuardRepository serializes booking transactions per room type. Every
// transaction that reads and then changes a room type's capacity first
// writes that room type's guard document, so two such transactions cannot
// both commit.
type GuardRepository interface {
	Bump(ctx context.Context, roomTypeID string) error
}

type mongoGuardRepository struct {
	cfg        *config.Config
	collection *mongo.Collection
}

func NewMongoGuardRepository(cfg *config.Config) GuardRepository {
	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	return &mongoGuardRepository{
		cfg:        cfg,
		collection: db.Collection(GuardsCollection),
	}
}

func (r *mongoGuardRepository) Bump(ctx context.Context, roomTypeID string) error {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	update := bson.M{
		"$inc": bson.M{"version": 1},
		"$set": bson.M{"updated_at": time.Now().UTC()},
	}
	_, err := r.collection.UpdateOne(ctx, bson.M{"_id": roomTypeID}, update, options.Update().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("failed to bump booking guard: %w", err)
	}
	return nil
}
