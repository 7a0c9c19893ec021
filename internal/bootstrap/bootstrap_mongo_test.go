package bootstrap_test

import (
	"context"
	"fmt"
	"os"
	"sync"
	"testing"
	"time"

	"hotelbook/internal/bookings/events"
	bookingsrepo "hotelbook/internal/bookings/repository"
	bookingservice "hotelbook/internal/bookings/service"
	"hotelbook/internal/bootstrap"
	catalogrepo "hotelbook/internal/catalog/repository"
	migrations "hotelbook/internal/migrations/mongo"
	"hotelbook/pkg/client"
	"hotelbook/pkg/config"
	apperrors "hotelbook/pkg/errors"
	"hotelbook/pkg/logger"
	"hotelbook/pkg/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const connectionTimeout = 10 * time.Second

type mongoWorld struct {
	cfg        *config.Config
	db         *mongo.Database
	hotelID    string
	roomTypeID string
}

// newMongoWorld migrates a throwaway database and seeds one room type with
// the given number of rooms. Transactions need a replica set or mongos, so
// a standalone server skips the test like a missing MONGO_URI does.
func newMongoWorld(t *testing.T, rooms int) *mongoWorld {
	t.Helper()

	uri := os.Getenv(config.EnvMongoURI)
	if uri == "" {
		t.Skip("MONGO_URI not set, skipping Mongo-backed test")
	}

	ctx, cancel := context.WithTimeout(context.Background(), connectionTimeout)
	defer cancel()

	mc, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		t.Fatalf("failed to connect to MongoDB: %v", err)
	}
	if err := mc.Ping(ctx, nil); err != nil {
		t.Fatalf("failed to ping MongoDB: %v", err)
	}

	var hello bson.M
	if err := mc.Database("admin").RunCommand(ctx, bson.D{{Key: "hello", Value: 1}}).Decode(&hello); err != nil {
		t.Fatalf("hello failed: %v", err)
	}
	if _, ok := hello["setName"]; !ok && hello["msg"] != "isdbgrid" {
		_ = mc.Disconnect(ctx)
		t.Skip("MongoDB is standalone, transactions need a replica set")
	}

	dbName := fmt.Sprintf("hotelbook_test_%d", time.Now().UnixNano())
	db := mc.Database(dbName)
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), connectionTimeout)
		defer cancel()
		if err := db.Drop(ctx); err != nil {
			t.Logf("warning: failed to drop %s: %v", dbName, err)
		}
		if err := mc.Disconnect(ctx); err != nil {
			t.Logf("warning: failed to disconnect from MongoDB: %v", err)
		}
	})

	log := logger.NewNop()
	if err := migrations.RunMigration(ctx, db, log); err != nil {
		t.Fatalf("migration failed: %v", err)
	}

	w := &mongoWorld{
		cfg: &config.Config{
			Log:                       log,
			Client:                    &client.Client{Mongo: mc},
			MongoURI:                  uri,
			MongoDatabaseName:         dbName,
			ReadTimeout:               5 * time.Second,
			WriteTimeout:              5 * time.Second,
			RequestTimeout:            config.DefaultRequestTimeout,
			IdempotencyTTL:            config.DefaultIdempotencyTTL,
			IdempotencyPendingTimeout: config.DefaultIdempotencyPendingTimeout,
			IdempotencyStore:          config.IdempotencyStoreMongo,
			RoomLockTTL:               time.Minute,
			Currency:                  "USD",
		},
		db:      db,
		hotelID: primitive.NewObjectID().Hex(),
	}

	roomTypeID := primitive.NewObjectID()
	w.roomTypeID = roomTypeID.Hex()
	now := time.Now().UTC()
	if _, err := db.Collection(catalogrepo.RoomTypesCollection).InsertOne(ctx, bson.M{
		"_id":        roomTypeID,
		"hotel_id":   w.hotelID,
		"name":       "Deluxe King",
		"base_price": 100.0,
		"max_guests": 2,
		"created_at": now,
	}); err != nil {
		t.Fatalf("failed to seed room type: %v", err)
	}

	for i := 0; i < rooms; i++ {
		if _, err := db.Collection(catalogrepo.RoomsCollection).InsertOne(ctx, bson.M{
			"_id":          primitive.NewObjectID(),
			"hotel_id":     w.hotelID,
			"room_type_id": w.roomTypeID,
			"number":       fmt.Sprintf("%d", 101+i),
			"status":       model.RoomStatusAvailable,
			"created_at":   now,
		}); err != nil {
			t.Fatalf("failed to seed room: %v", err)
		}
	}
	return w
}

func (w *mongoWorld) stay(checkIn time.Time, nights int) *model.CreateBookingRequest {
	return &model.CreateBookingRequest{
		HotelID:    w.hotelID,
		RoomTypeID: w.roomTypeID,
		CheckIn:    checkIn.Format(time.DateOnly),
		CheckOut:   checkIn.AddDate(0, 0, nights).Format(time.DateOnly),
		Guests:     2,
	}
}

func (w *mongoWorld) activeBookings(t *testing.T) int64 {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	n, err := w.db.Collection(bookingsrepo.CollectionName).CountDocuments(ctx, bson.M{
		"room_type_id": w.roomTypeID,
		"status":       bson.M{"$ne": model.BookingStatusCancelled},
	})
	if err != nil {
		t.Fatalf("failed to count bookings: %v", err)
	}
	return n
}

func startOfDay(days int) time.Time {
	now := time.Now().UTC()
	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC).AddDate(0, 0, days)
}

func TestMongoCreate_ConcurrentCallersBookOneRoomOnce(t *testing.T) {
	w := newMongoWorld(t, 1)
	services := bootstrap.New(w.cfg, events.NewNopPublisher(w.cfg.Log))
	defer services.Close()

	checkIn := startOfDay(45)
	const callers = 8
	var wg sync.WaitGroup
	errs := make([]error, callers)
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			user := fmt.Sprintf("user-%d", i)
			_, errs[i] = services.Bookings.Create(context.Background(), user, w.stay(checkIn, 2), bookingservice.RequestMeta{})
		}(i)
	}
	wg.Wait()

	succeeded := 0
	for _, err := range errs {
		switch {
		case err == nil:
			succeeded++
		case apperrors.HasCode(err, apperrors.CodeConflict), apperrors.HasCode(err, apperrors.CodeUnavailable):
		default:
			t.Errorf("unexpected error: %v", err)
		}
	}
	if succeeded != 1 {
		t.Errorf("succeeded = %d, want exactly 1", succeeded)
	}
	if n := w.activeBookings(t); n != 1 {
		t.Errorf("stored bookings = %d, want 1", n)
	}

	// With the lock released, an overlapping stay is refused on capacity.
	_, err := services.Bookings.Create(context.Background(), "user-late", w.stay(checkIn.AddDate(0, 0, 1), 2), bookingservice.RequestMeta{})
	if !apperrors.HasCode(err, apperrors.CodeConflict) {
		t.Errorf("overlapping Create() error = %v, want CONFLICT", err)
	}
}

func TestMongoCreate_ConcurrentCallersFillEveryRoom(t *testing.T) {
	w := newMongoWorld(t, 3)
	services := bootstrap.New(w.cfg, events.NewNopPublisher(w.cfg.Log))
	defer services.Close()

	checkIn := startOfDay(60)
	const callers = 6
	var wg sync.WaitGroup
	errs := make([]error, callers)
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			user := fmt.Sprintf("user-%d", i)
			_, errs[i] = services.Bookings.Create(context.Background(), user, w.stay(checkIn, 3), bookingservice.RequestMeta{})
		}(i)
	}
	wg.Wait()

	for _, err := range errs {
		if err != nil && !apperrors.HasCode(err, apperrors.CodeConflict) && !apperrors.HasCode(err, apperrors.CodeUnavailable) {
			t.Errorf("unexpected error: %v", err)
		}
	}
	if n := w.activeBookings(t); n > 3 {
		t.Errorf("stored bookings = %d, capacity is 3", n)
	}
}
