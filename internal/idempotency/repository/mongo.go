package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	idempotencyerrors "hotelbook/internal/idempotency/errors"
	"hotelbook/pkg/config"
	mongotx "hotelbook/pkg/db/mongo"
	"hotelbook/pkg/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

type mongoIdempotencyRepository struct {
	cfg        *config.Config
	collection *mongo.Collection
}

func NewMongoIdempotencyRepository(cfg *config.Config) IdempotencyRepository {
	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	return &mongoIdempotencyRepository{
		cfg:        cfg,
		collection: db.Collection(CollectionName),
	}
}

func (r *mongoIdempotencyRepository) Insert(ctx context.Context, rec *model.IdempotencyRecord) error {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	if _, err := r.collection.InsertOne(ctx, rec); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return fmt.Errorf("%w: %s", idempotencyerrors.ErrDuplicateKey, rec.Key)
		}
		return fmt.Errorf("failed to insert idempotency record: %w", err)
	}
	return nil
}

func (r *mongoIdempotencyRepository) FindByKey(ctx context.Context, key string) (*model.IdempotencyRecord, error) {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	var rec model.IdempotencyRecord
	if err := r.collection.FindOne(ctx, bson.M{"key": key}).Decode(&rec); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, idempotencyerrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find idempotency record: %w", err)
	}
	return &rec, nil
}

func (r *mongoIdempotencyRepository) Finish(ctx context.Context, key, status string, responseStatus int, body []byte, now time.Time) error {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	filter := bson.M{"key": key, "status": model.IdempotencyStatusPending}
	update := bson.M{"$set": bson.M{
		"status":          status,
		"response_status": responseStatus,
		"response_data":   body,
		"updated_at":      now,
	}}

	result, err := r.collection.UpdateOne(ctx, filter, update)
	if err != nil {
		return fmt.Errorf("failed to finish idempotency record: %w", err)
	}
	if result.MatchedCount == 0 {
		return idempotencyerrors.ErrNotFound
	}
	return nil
}

func (r *mongoIdempotencyRepository) Delete(ctx context.Context, key string) error {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	if _, err := r.collection.DeleteOne(ctx, bson.M{"key": key}); err != nil {
		return fmt.Errorf("failed to delete idempotency record: %w", err)
	}
	return nil
}

func (r *mongoIdempotencyRepository) Replace(ctx context.Context, current, next *model.IdempotencyRecord) (bool, error) {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	next.ID = current.ID
	filter := bson.M{"key": current.Key, "updated_at": current.UpdatedAt}

	result, err := r.collection.ReplaceOne(ctx, filter, next)
	if err != nil {
		return false, fmt.Errorf("failed to replace idempotency record: %w", err)
	}
	return result.MatchedCount > 0, nil
}

func (r *mongoIdempotencyRepository) PurgeExpired(ctx context.Context, now time.Time) (int64, error) {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	result, err := r.collection.DeleteMany(ctx, bson.M{"expires_at": bson.M{"$lte": now}})
	if err != nil {
		return 0, fmt.Errorf("failed to purge idempotency records: %w", err)
	}
	return result.DeletedCount, nil
}
