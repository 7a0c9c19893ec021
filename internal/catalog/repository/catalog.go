package repository

import (
	"context"
	"errors"
	"fmt"

	catalogerrors "hotelbook/internal/catalog/errors"
	"hotelbook/pkg/config"
	mongotx "hotelbook/pkg/db/mongo"
	"hotelbook/pkg/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	RoomTypesCollection = "RoomTypes"
	RoomsCollection     = "Rooms"
)

// CatalogRepository reads the hotel catalog. The catalog is owned by hotel
// administration; the booking core never writes to it.
type CatalogRepository interface {
	FindRoomType(ctx context.Context, id string) (*model.RoomType, error)
	ListRoomIDs(ctx context.Context, roomTypeID string, status string) ([]string, error)
	CountRooms(ctx context.Context, roomTypeID string, status string) (int64, error)
}

type mongoCatalogRepository struct {
	cfg       *config.Config
	roomTypes *mongo.Collection
	rooms     *mongo.Collection
}

func NewMongoCatalogRepository(cfg *config.Config) CatalogRepository {
	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	return &mongoCatalogRepository{
		cfg:       cfg,
		roomTypes: db.Collection(RoomTypesCollection),
		rooms:     db.Collection(RoomsCollection),
	}
}

func (r *mongoCatalogRepository) FindRoomType(ctx context.Context, id string) (*model.RoomType, error) {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", catalogerrors.ErrInvalidID, id)
	}

	var roomType model.RoomType
	err = r.roomTypes.FindOne(ctx, bson.M{"_id": objectID}).Decode(&roomType)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, catalogerrors.ErrRoomTypeNotFound
		}
		return nil, fmt.Errorf("failed to find room type: %w", err)
	}

	return &roomType, nil
}

func (r *mongoCatalogRepository) ListRoomIDs(ctx context.Context, roomTypeID string, status string) ([]string, error) {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	opts := options.Find().
		SetProjection(bson.M{"_id": 1}).
		SetSort(bson.D{{Key: "number", Value: 1}})

	cursor, err := r.rooms.Find(ctx, roomFilter(roomTypeID, status), opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list rooms: %w", err)
	}
	defer cursor.Close(ctx)

	var rows []struct {
		ID string `bson:"_id"`
	}
	if err = cursor.All(ctx, &rows); err != nil {
		return nil, fmt.Errorf("failed to decode rooms: %w", err)
	}

	ids := make([]string, 0, len(rows))
	for _, row := range rows {
		ids = append(ids, row.ID)
	}
	return ids, nil
}

func (r *mongoCatalogRepository) CountRooms(ctx context.Context, roomTypeID string, status string) (int64, error) {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	count, err := r.rooms.CountDocuments(ctx, roomFilter(roomTypeID, status))
	if err != nil {
		return 0, fmt.Errorf("failed to count rooms: %w", err)
	}
	return count, nil
}

func roomFilter(roomTypeID, status string) bson.M {
	filter := bson.M{"room_type_id": roomTypeID}
	if status != "" {
		filter["status"] = status
	}
	return filter
}
