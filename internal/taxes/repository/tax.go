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

const (
	TaxesCollection = "Taxes"
	FeesCollection  = "Fees"
)

type TaxRepository interface {
	FindActiveTaxes(ctx context.Context) ([]*model.Tax, error)
	FindActiveFees(ctx context.Context) ([]*model.Fee, error)
	// UpsertTax and UpsertFee are keyed by hotel and name, so reseeding a
	// hotel overwrites its configuration instead of duplicating it.
	UpsertTax(ctx context.Context, tax *model.Tax) error
	UpsertFee(ctx context.Context, fee *model.Fee) error
}

type mongoTaxRepository struct {
	cfg   *config.Config
	taxes *mongo.Collection
	fees  *mongo.Collection
}

func NewMongoTaxRepository(cfg *config.Config) TaxRepository {
	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	return &mongoTaxRepository{
		cfg:   cfg,
		taxes: db.Collection(TaxesCollection),
		fees:  db.Collection(FeesCollection),
	}
}

func (r *mongoTaxRepository) FindActiveTaxes(ctx context.Context) ([]*model.Tax, error) {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}, {Key: "_id", Value: 1}})
	cursor, err := r.taxes.Find(ctx, bson.M{"is_active": true}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to find taxes: %w", err)
	}
	defer cursor.Close(ctx)

	var taxes []*model.Tax
	if err = cursor.All(ctx, &taxes); err != nil {
		return nil, fmt.Errorf("failed to decode taxes: %w", err)
	}
	return taxes, nil
}

func (r *mongoTaxRepository) FindActiveFees(ctx context.Context) ([]*model.Fee, error) {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}, {Key: "_id", Value: 1}})
	cursor, err := r.fees.Find(ctx, bson.M{"is_active": true}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to find fees: %w", err)
	}
	defer cursor.Close(ctx)

	var fees []*model.Fee
	if err = cursor.All(ctx, &fees); err != nil {
		return nil, fmt.Errorf("failed to decode fees: %w", err)
	}
	return fees, nil
}

func (r *mongoTaxRepository) UpsertTax(ctx context.Context, tax *model.Tax) error {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	filter := bson.M{"hotel_id": tax.HotelID, "name": tax.Name}
	update := bson.M{
		"$set": bson.M{
			"country":      tax.Country,
			"percentage":   tax.Percentage,
			"is_inclusive": tax.IsInclusive,
			"is_active":    tax.IsActive,
		},
		"$setOnInsert": bson.M{"created_at": time.Now().UTC().Truncate(time.Millisecond)},
	}

	if _, err := r.taxes.UpdateOne(ctx, filter, update, options.Update().SetUpsert(true)); err != nil {
		return fmt.Errorf("failed to upsert tax %q: %w", tax.Name, err)
	}
	return nil
}

func (r *mongoTaxRepository) UpsertFee(ctx context.Context, fee *model.Fee) error {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	filter := bson.M{"hotel_id": fee.HotelID, "name": fee.Name}
	update := bson.M{
		"$set": bson.M{
			"fee_type":    fee.FeeType,
			"amount_type": fee.AmountType,
			"amount":      fee.Amount,
			"is_active":   fee.IsActive,
		},
		"$setOnInsert": bson.M{"created_at": time.Now().UTC().Truncate(time.Millisecond)},
	}

	if _, err := r.fees.UpdateOne(ctx, filter, update, options.Update().SetUpsert(true)); err != nil {
		return fmt.Errorf("failed to upsert fee %q: %w", fee.Name, err)
	}
	return nil
}
