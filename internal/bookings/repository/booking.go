package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	bookingserrors "hotelbook/internal/bookings/errors"
	"hotelbook/pkg/config"
	mongotx "hotelbook/pkg/db/mongo"
	"hotelbook/pkg/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const CollectionName = "Bookings"

// BookingRepository persists bookings. Writes made through a session context
// take part in the caller's transaction.
type BookingRepository interface {
	Create(ctx context.Context, booking *model.Booking) error
	FindByID(ctx context.Context, id string) (*model.Booking, error)
	FindByUser(ctx context.Context, userID string, limit int, offset int64) ([]*model.Booking, error)
	CountByUser(ctx context.Context, userID string) (int64, error)
	// MarkCancelled flips a confirmed booking to cancelled and reports whether
	// this call made the transition.
	MarkCancelled(ctx context.Context, id string, now time.Time) (bool, error)
	CountOverlapping(ctx context.Context, roomTypeID string, checkIn, checkOut time.Time) (int64, error)
	ExecuteTransaction(ctx context.Context, fn mongotx.TransactionFunc) error
}

type mongoBookingRepository struct {
	bookings     *mongo.Collection
	tx           mongotx.TransactionManager
	readTimeout  time.Duration
	writeTimeout time.Duration
}

func NewMongoBookingRepository(cfg *config.Config) BookingRepository {
	return &mongoBookingRepository{
		bookings:     cfg.Client.Mongo.Database(cfg.MongoDatabaseName).Collection(CollectionName),
		tx:           mongotx.NewTransactionManager(cfg.Client.Mongo),
		readTimeout:  cfg.ReadTimeout,
		writeTimeout: cfg.WriteTimeout,
	}
}

func objectID(id string) (primitive.ObjectID, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return oid, fmt.Errorf("%w: %s", bookingserrors.ErrInvalidID, id)
	}
	return oid, nil
}

func (r *mongoBookingRepository) Create(ctx context.Context, booking *model.Booking) error {
	ctx, cancel := mongotx.WithTimeout(ctx, r.writeTimeout)
	defer cancel()

	booking.CreatedAt = time.Now().UTC().Truncate(time.Millisecond)
	booking.UpdatedAt = booking.CreatedAt

	res, err := r.bookings.InsertOne(ctx, booking)
	if err != nil {
		return fmt.Errorf("insert booking: %w", err)
	}
	if oid, ok := res.InsertedID.(primitive.ObjectID); ok {
		booking.ID = oid.Hex()
	}
	return nil
}

func (r *mongoBookingRepository) FindByID(ctx context.Context, id string) (*model.Booking, error) {
	oid, err := objectID(id)
	if err != nil {
		return nil, err
	}

	ctx, cancel := mongotx.WithTimeout(ctx, r.readTimeout)
	defer cancel()

	booking := new(model.Booking)
	switch err := r.bookings.FindOne(ctx, bson.M{"_id": oid}).Decode(booking); {
	case errors.Is(err, mongo.ErrNoDocuments):
		return nil, bookingserrors.ErrNotFound
	case err != nil:
		return nil, fmt.Errorf("find booking %s: %w", id, err)
	}
	return booking, nil
}

// FindByUser returns the caller's bookings, latest stay first.
func (r *mongoBookingRepository) FindByUser(ctx context.Context, userID string, limit int, offset int64) ([]*model.Booking, error) {
	ctx, cancel := mongotx.WithTimeout(ctx, r.readTimeout)
	defer cancel()

	cursor, err := r.bookings.Find(ctx, bson.M{"user_id": userID}, options.Find().
		SetSort(bson.D{{Key: "check_in", Value: -1}, {Key: "_id", Value: -1}}).
		SetSkip(offset).
		SetLimit(int64(limit)))
	if err != nil {
		return nil, fmt.Errorf("list bookings: %w", err)
	}
	defer cursor.Close(ctx)

	bookings := make([]*model.Booking, 0, limit)
	if err := cursor.All(ctx, &bookings); err != nil {
		return nil, fmt.Errorf("decode bookings: %w", err)
	}
	return bookings, nil
}

func (r *mongoBookingRepository) CountByUser(ctx context.Context, userID string) (int64, error) {
	ctx, cancel := mongotx.WithTimeout(ctx, r.readTimeout)
	defer cancel()

	n, err := r.bookings.CountDocuments(ctx, bson.M{"user_id": userID})
	if err != nil {
		return 0, fmt.Errorf("count bookings: %w", err)
	}
	return n, nil
}

// MarkCancelled only matches confirmed bookings, so two concurrent cancels
// see exactly one transition.
func (r *mongoBookingRepository) MarkCancelled(ctx context.Context, id string, now time.Time) (bool, error) {
	oid, err := objectID(id)
	if err != nil {
		return false, err
	}

	ctx, cancel := mongotx.WithTimeout(ctx, r.writeTimeout)
	defer cancel()

	res, err := r.bookings.UpdateOne(ctx,
		bson.M{"_id": oid, "status": model.BookingStatusConfirmed},
		bson.M{"$set": bson.M{
			"status":       model.BookingStatusCancelled,
			"cancelled_at": now,
			"updated_at":   now,
		}},
	)
	if err != nil {
		return false, fmt.Errorf("cancel booking %s: %w", id, err)
	}
	return res.ModifiedCount == 1, nil
}

// CountOverlapping counts live bookings sharing at least one night with
// [checkIn, checkOut). Stays are half-open, so back-to-back stays do not
// overlap.
func (r *mongoBookingRepository) CountOverlapping(ctx context.Context, roomTypeID string, checkIn, checkOut time.Time) (int64, error) {
	ctx, cancel := mongotx.WithTimeout(ctx, r.readTimeout)
	defer cancel()

	n, err := r.bookings.CountDocuments(ctx, bson.M{
		"room_type_id": roomTypeID,
		"status":       bson.M{"$ne": model.BookingStatusCancelled},
		"check_in":     bson.M{"$lt": checkOut},
		"check_out":    bson.M{"$gt": checkIn},
	})
	if err != nil {
		return 0, fmt.Errorf("count overlapping bookings: %w", err)
	}
	return n, nil
}

func (r *mongoBookingRepository) ExecuteTransaction(ctx context.Context, fn mongotx.TransactionFunc) error {
	return r.tx.ExecuteTransaction(ctx, fn)
}
