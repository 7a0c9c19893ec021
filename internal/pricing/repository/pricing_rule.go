package repository

import (
	"context"
	"fmt"
	"time"

	"hotelbook/pkg/config"
	mongotx "hotelbook/pkg/db/mongo"
	"hotelbook/pkg/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const CollectionName = "Pricing_rules"

type PricingRuleRepository interface {
	Create(ctx context.Context, rule *model.PricingRule) error
	// FindActive returns active rules of the hotel that are either hotel-wide
	// or scoped to roomTypeID, ordered by priority then recency.
	FindActive(ctx context.Context, hotelID, roomTypeID string) ([]*model.PricingRule, error)
}

type mongoPricingRuleRepository struct {
	cfg        *config.Config
	collection *mongo.Collection
}

func NewMongoPricingRuleRepository(cfg *config.Config) PricingRuleRepository {
	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	return &mongoPricingRuleRepository{
		cfg:        cfg,
		collection: db.Collection(CollectionName),
	}
}

func (r *mongoPricingRuleRepository) Create(ctx context.Context, rule *model.PricingRule) error {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	rule.CreatedAt = time.Now().UTC().Truncate(time.Millisecond)
	result, err := r.collection.InsertOne(ctx, rule)
	if err != nil {
		return fmt.Errorf("failed to create pricing rule: %w", err)
	}

	if oid, ok := result.InsertedID.(primitive.ObjectID); ok {
		rule.ID = oid.Hex()
	}
	return nil
}

func (r *mongoPricingRuleRepository) FindActive(ctx context.Context, hotelID, roomTypeID string) ([]*model.PricingRule, error) {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	filter := bson.M{
		"hotel_id":  hotelID,
		"is_active": true,
		"$or": bson.A{
			bson.M{"room_type_id": roomTypeID},
			bson.M{"room_type_id": bson.M{"$exists": false}},
			bson.M{"room_type_id": ""},
		},
	}
	opts := options.Find().SetSort(bson.D{
		{Key: "priority", Value: -1},
		{Key: "created_at", Value: -1},
	})

	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to find pricing rules: %w", err)
	}
	defer cursor.Close(ctx)

	var rules []*model.PricingRule
	if err = cursor.All(ctx, &rules); err != nil {
		return nil, fmt.Errorf("failed to decode pricing rules: %w", err)
	}
	return rules, nil
}
