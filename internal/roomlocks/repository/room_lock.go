package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	roomlockerrors "hotelbook/internal/roomlocks/errors"
	"hotelbook/pkg/config"
	mongotx "hotelbook/pkg/db/mongo"
	"hotelbook/pkg/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

const CollectionName = "Room_locks"

type RoomLockRepository interface {
	// Insert fails with ErrLockHeld when the room already has an ACTIVE lock.
	Insert(ctx context.Context, lock *model.RoomLock) error
	FindByID(ctx context.Context, id string) (*model.RoomLock, error)
	// LockedRoomIDs returns the subset of roomIDs that hold an ACTIVE lock.
	LockedRoomIDs(ctx context.Context, roomIDs []string) ([]string, error)
	// ExpireStale flips ACTIVE locks past locked_until to EXPIRED. An empty
	// roomIDs sweeps every room.
	ExpireStale(ctx context.Context, roomIDs []string, now time.Time) (int64, error)
	Release(ctx context.Context, id, userID string, now time.Time) (bool, error)
}

type mongoRoomLockRepository struct {
	cfg        *config.Config
	collection *mongo.Collection
}

func NewMongoRoomLockRepository(cfg *config.Config) RoomLockRepository {
	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	return &mongoRoomLockRepository{
		cfg:        cfg,
		collection: db.Collection(CollectionName),
	}
}

func (r *mongoRoomLockRepository) Insert(ctx context.Context, lock *model.RoomLock) error {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	if _, err := r.collection.InsertOne(ctx, lock); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return fmt.Errorf("%w: %s", roomlockerrors.ErrLockHeld, lock.RoomID)
		}
		return fmt.Errorf("failed to insert room lock: %w", err)
	}
	return nil
}

func (r *mongoRoomLockRepository) FindByID(ctx context.Context, id string) (*model.RoomLock, error) {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	var lock model.RoomLock
	if err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&lock); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, roomlockerrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find room lock: %w", err)
	}
	return &lock, nil
}

func (r *mongoRoomLockRepository) LockedRoomIDs(ctx context.Context, roomIDs []string) ([]string, error) {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	filter := bson.M{
		"room_id": bson.M{"$in": roomIDs},
		"status":  model.LockStatusActive,
	}
	values, err := r.collection.Distinct(ctx, "room_id", filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list locked rooms: %w", err)
	}

	locked := make([]string, 0, len(values))
	for _, v := range values {
		if id, ok := v.(string); ok {
			locked = append(locked, id)
		}
	}
	return locked, nil
}

func (r *mongoRoomLockRepository) ExpireStale(ctx context.Context, roomIDs []string, now time.Time) (int64, error) {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	filter := bson.M{
		"status":       model.LockStatusActive,
		"locked_until": bson.M{"$lte": now},
	}
	if len(roomIDs) > 0 {
		filter["room_id"] = bson.M{"$in": roomIDs}
	}
	update := bson.M{"$set": bson.M{"status": model.LockStatusExpired, "released_at": now}}

	result, err := r.collection.UpdateMany(ctx, filter, update)
	if err != nil {
		return 0, fmt.Errorf("failed to expire room locks: %w", err)
	}
	return result.ModifiedCount, nil
}

func (r *mongoRoomLockRepository) Release(ctx context.Context, id, userID string, now time.Time) (bool, error) {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	filter := bson.M{
		"_id":               id,
		"locked_by_user_id": userID,
		"status":            model.LockStatusActive,
	}
	update := bson.M{"$set": bson.M{"status": model.LockStatusReleased, "released_at": now}}

	result, err := r.collection.UpdateOne(ctx, filter, update)
	if err != nil {
		return false, fmt.Errorf("failed to release room lock: %w", err)
	}
	return result.MatchedCount > 0, nil
}
