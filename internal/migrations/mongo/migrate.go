package mongo

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	availabilityrepo "hotelbook/internal/availability/repository"
	bookingsrepo "hotelbook/internal/bookings/repository"
	catalogrepo "hotelbook/internal/catalog/repository"
	idempotencyrepo "hotelbook/internal/idempotency/repository"
	"hotelbook/internal/migrations/mongo/validators"
	pricingrepo "hotelbook/internal/pricing/repository"
	roomlockrepo "hotelbook/internal/roomlocks/repository"
	taxrepo "hotelbook/internal/taxes/repository"
	"hotelbook/pkg/logger"
	"hotelbook/pkg/model"
)

type Collection struct {
	Name      string
	Indexes   []mongo.IndexModel
	Validator bson.M
}

var (
	BookingsIndexes = []mongo.IndexModel{
		{Keys: bson.D{
			{Key: "room_type_id", Value: 1},
			{Key: "status", Value: 1},
			{Key: "check_in", Value: 1},
			{Key: "check_out", Value: 1},
		}},
		{Keys: bson.D{
			{Key: "user_id", Value: 1},
			{Key: "check_in", Value: -1},
		}},
		{
			Keys:    bson.D{{Key: "idempotency_key", Value: 1}},
			Options: options.Index().SetSparse(true),
		},
	}

	LineItemsIndexes = []mongo.IndexModel{
		{Keys: bson.D{{Key: "booking_id", Value: 1}, {Key: "kind", Value: -1}}},
	}

	// At most one ACTIVE lock per room. Released and expired locks stay for
	// auditing and are outside the partial index.
	RoomLocksIndexes = []mongo.IndexModel{
		{
			Keys: bson.D{{Key: "room_id", Value: 1}},
			Options: options.Index().
				SetName("room_id_active_unique").
				SetUnique(true).
				SetPartialFilterExpression(bson.M{"status": model.LockStatusActive}),
		},
		{Keys: bson.D{{Key: "status", Value: 1}, {Key: "locked_until", Value: 1}}},
	}

	IdempotencyIndexes = []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "key", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys:    bson.D{{Key: "expires_at", Value: 1}},
			Options: options.Index().SetExpireAfterSeconds(0),
		},
	}

	AvailabilityIndexes = []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "room_type_id", Value: 1}, {Key: "date", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
	}

	PricingRulesIndexes = []mongo.IndexModel{
		{Keys: bson.D{
			{Key: "hotel_id", Value: 1},
			{Key: "is_active", Value: 1},
			{Key: "priority", Value: -1},
			{Key: "created_at", Value: -1},
		}},
	}

	TaxesIndexes = []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "hotel_id", Value: 1}, {Key: "name", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{Keys: bson.D{{Key: "is_active", Value: 1}, {Key: "created_at", Value: 1}}},
	}

	RoomTypesIndexes = []mongo.IndexModel{
		{Keys: bson.D{{Key: "hotel_id", Value: 1}}},
	}

	RoomsIndexes = []mongo.IndexModel{
		{Keys: bson.D{{Key: "room_type_id", Value: 1}, {Key: "status", Value: 1}}},
	}
)

// Collections lists every collection the booking core uses. Booking_guards
// has no schema but must exist before the first booking transaction since
// older servers cannot create collections inside a transaction.
func Collections() []Collection {
	return []Collection{
		{Name: catalogrepo.RoomTypesCollection, Indexes: RoomTypesIndexes, Validator: validators.RoomTypeValidator},
		{Name: catalogrepo.RoomsCollection, Indexes: RoomsIndexes, Validator: validators.RoomValidator},
		{Name: availabilityrepo.CollectionName, Indexes: AvailabilityIndexes, Validator: validators.AvailabilityValidator},
		{Name: pricingrepo.CollectionName, Indexes: PricingRulesIndexes, Validator: validators.PricingRuleValidator},
		{Name: taxrepo.TaxesCollection, Indexes: TaxesIndexes, Validator: validators.TaxValidator},
		{Name: taxrepo.FeesCollection, Indexes: TaxesIndexes, Validator: validators.FeeValidator},
		{Name: bookingsrepo.CollectionName, Indexes: BookingsIndexes, Validator: validators.BookingValidator},
		{Name: bookingsrepo.LineItemsCollection, Indexes: LineItemsIndexes, Validator: validators.LineItemValidator},
		{Name: bookingsrepo.GuardsCollection},
		{Name: roomlockrepo.CollectionName, Indexes: RoomLocksIndexes, Validator: validators.RoomLockValidator},
		{Name: idempotencyrepo.CollectionName, Indexes: IdempotencyIndexes, Validator: validators.IdempotencyValidator},
	}
}

func RunMigration(ctx context.Context, db *mongo.Database, log *logger.Logger) error {
	log.Info("Running Mongo migrations", "database", db.Name())

	for _, def := range Collections() {
		if err := ensureCollection(ctx, db, def.Name, def.Validator, log); err != nil {
			return fmt.Errorf("failed to ensure collection %s: %w", def.Name, err)
		}
		if err := ensureIndexes(ctx, db, def.Name, def.Indexes, log); err != nil {
			return fmt.Errorf("failed to ensure indexes for %s: %w", def.Name, err)
		}
	}

	log.Info("All migrations applied successfully")
	return nil
}

func ensureCollection(ctx context.Context, db *mongo.Database, name string, validator bson.M, log *logger.Logger) error {
	existing, err := db.ListCollectionNames(ctx, bson.D{{Key: "name", Value: name}})
	if err != nil {
		return err
	}

	if len(existing) == 0 {
		log.Info("Creating collection", "collection", name)
		opts := options.CreateCollection()
		if validator != nil {
			opts.SetValidator(validator)
		}
		if err := db.CreateCollection(ctx, name, opts); err != nil {
			return fmt.Errorf("failed creating %s: %w", name, err)
		}
		return nil
	}

	if validator == nil {
		return nil
	}
	log.Debug("Collection exists, updating validator", "collection", name)
	command := bson.D{
		{Key: "collMod", Value: name},
		{Key: "validator", Value: validator},
	}
	if err := db.RunCommand(ctx, command).Err(); err != nil {
		log.Warn("Failed updating validator", "collection", name, "error", err)
	}
	return nil
}

func ensureIndexes(ctx context.Context, db *mongo.Database, name string, models []mongo.IndexModel, log *logger.Logger) error {
	if len(models) == 0 {
		return nil
	}
	if _, err := db.Collection(name).Indexes().CreateMany(ctx, models); err != nil {
		return err
	}
	log.Info("Ensured indexes", "collection", name, "count", len(models))
	return nil
}
