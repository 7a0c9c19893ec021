package repository

import (
	"context"
	"fmt"
	"time"

	"hotelbook/pkg/config"
	mongotx "hotelbook/pkg/db/mongo"
	"hotelbook/pkg/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const CollectionName = "Room_availability"

// AvailabilityRepository manages the per-night counters of a room type.
// Dates are stored as UTC midnight.
type AvailabilityRepository interface {
	FindRange(ctx context.Context, roomTypeID string, from, to time.Time) ([]*model.RoomAvailability, error)
	// Decrement takes n rooms off every listed night that still has n free and
	// returns how many nights matched. Callers run it inside a transaction and
	// abort when fewer than len(dates) matched.
	Decrement(ctx context.Context, roomTypeID string, dates []time.Time, n int) (int64, error)
	// Increment returns n rooms to each night, capped at total_rooms.
	Increment(ctx context.Context, roomTypeID string, dates []time.Time, n int) error
	UpsertRange(ctx context.Context, hotelID, roomTypeID string, dates []time.Time, totalRooms int) error
}

type mongoAvailabilityRepository struct {
	cfg        *config.Config
	collection *mongo.Collection
}

func NewMongoAvailabilityRepository(cfg *config.Config) AvailabilityRepository {
	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	return &mongoAvailabilityRepository{
		cfg:        cfg,
		collection: db.Collection(CollectionName),
	}
}

func (r *mongoAvailabilityRepository) FindRange(ctx context.Context, roomTypeID string, from, to time.Time) ([]*model.RoomAvailability, error) {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	filter := bson.M{
		"room_type_id": roomTypeID,
		"date":         bson.M{"$gte": from, "$lt": to},
	}
	opts := options.Find().SetSort(bson.D{{Key: "date", Value: 1}})

	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to find availability: %w", err)
	}
	defer cursor.Close(ctx)

	var rows []*model.RoomAvailability
	if err = cursor.All(ctx, &rows); err != nil {
		return nil, fmt.Errorf("failed to decode availability: %w", err)
	}
	return rows, nil
}

func (r *mongoAvailabilityRepository) Decrement(ctx context.Context, roomTypeID string, dates []time.Time, n int) (int64, error) {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	filter := bson.M{
		"room_type_id":    roomTypeID,
		"date":            bson.M{"$in": dates},
		"available_rooms": bson.M{"$gte": n},
	}
	update := bson.M{
		"$inc": bson.M{"available_rooms": -n},
		"$set": bson.M{"updated_at": time.Now().UTC()},
	}

	result, err := r.collection.UpdateMany(ctx, filter, update)
	if err != nil {
		return 0, fmt.Errorf("failed to decrement availability: %w", err)
	}
	return result.MatchedCount, nil
}

func (r *mongoAvailabilityRepository) Increment(ctx context.Context, roomTypeID string, dates []time.Time, n int) error {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	filter := bson.M{
		"room_type_id": roomTypeID,
		"date":         bson.M{"$in": dates},
	}
	update := mongo.Pipeline{
		{{Key: "$set", Value: bson.M{
			"available_rooms": bson.M{"$min": bson.A{"$total_rooms", bson.M{"$add": bson.A{"$available_rooms", n}}}},
			"updated_at":      time.Now().UTC(),
		}}},
	}

	if _, err := r.collection.UpdateMany(ctx, filter, update); err != nil {
		return fmt.Errorf("failed to increment availability: %w", err)
	}
	return nil
}

// UpsertRange sets total_rooms for each night. Existing nights keep the rooms
// already booked: available_rooms moves by the change in total and never
// drops below zero.
func (r *mongoAvailabilityRepository) UpsertRange(ctx context.Context, hotelID, roomTypeID string, dates []time.Time, totalRooms int) error {
	if len(dates) == 0 {
		return nil
	}

	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	now := time.Now().UTC()
	models := make([]mongo.WriteModel, 0, len(dates))
	for _, date := range dates {
		oldTotal := bson.M{"$ifNull": bson.A{"$total_rooms", totalRooms}}
		oldAvailable := bson.M{"$ifNull": bson.A{"$available_rooms", totalRooms}}
		available := bson.M{"$max": bson.A{0, bson.M{"$min": bson.A{
			totalRooms,
			bson.M{"$add": bson.A{oldAvailable, bson.M{"$subtract": bson.A{totalRooms, oldTotal}}}},
		}}}}

		models = append(models, mongo.NewUpdateOneModel().
			SetFilter(bson.M{"room_type_id": roomTypeID, "date": date}).
			SetUpdate(mongo.Pipeline{
				{{Key: "$set", Value: bson.M{
					"hotel_id":        hotelID,
					"total_rooms":     totalRooms,
					"available_rooms": available,
					"updated_at":      now,
				}}},
			}).
			SetUpsert(true))
	}

	if _, err := r.collection.BulkWrite(ctx, models, options.BulkWrite().SetOrdered(false)); err != nil {
		return fmt.Errorf("failed to upsert availability range: %w", err)
	}
	return nil
}
