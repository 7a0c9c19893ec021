package repository

import (
	"context"
	"fmt"

	"hotelbook/pkg/config"
	mongotx "hotelbook/pkg/db/mongo"
	"hotelbook/pkg/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const LineItemsCollection = "BookingLineItems"

// LineItemRepository stores the tax and fee rows charged on a booking.
type LineItemRepository interface {
	InsertMany(ctx context.Context, bookingID string, items []*model.LineItem) error
	FindByBooking(ctx context.Context, bookingID string) ([]*model.LineItem, error)
}

type mongoLineItemRepository struct {
	cfg        *config.Config
	collection *mongo.Collection
}

func NewMongoLineItemRepository(cfg *config.Config) LineItemRepository {
	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	return &mongoLineItemRepository{
		cfg:        cfg,
		collection: db.Collection(LineItemsCollection),
	}
}

func (r *mongoLineItemRepository) InsertMany(ctx context.Context, bookingID string, items []*model.LineItem) error {
	if len(items) == 0 {
		return nil
	}

	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	docs := make([]any, 0, len(items))
	for _, item := range items {
		item.BookingID = bookingID
		docs = append(docs, item)
	}

	if _, err := r.collection.InsertMany(ctx, docs); err != nil {
		return fmt.Errorf("failed to insert booking line items: %w", err)
	}
	return nil
}

func (r *mongoLineItemRepository) FindByBooking(ctx context.Context, bookingID string) ([]*model.LineItem, error) {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "kind", Value: -1}, {Key: "_id", Value: 1}})
	cursor, err := r.collection.Find(ctx, bson.M{"booking_id": bookingID}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to find booking line items: %w", err)
	}
	defer cursor.Close(ctx)

	var items []*model.LineItem
	if err = cursor.All(ctx, &items); err != nil {
		return nil, fmt.Errorf("failed to decode booking line items: %w", err)
	}
	return items, nil
}
