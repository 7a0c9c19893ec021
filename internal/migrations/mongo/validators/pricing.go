package validators

import "go.mongodb.org/mongo-driver/bson"

var PricingRuleValidator = bson.M{
	"$jsonSchema": bson.M{
		"bsonType": "object",
		"required": []string{"hotel_id", "name", "rule_type", "percentage_change", "priority", "is_active"},
		"properties": bson.M{
			"hotel_id": bson.M{
				"bsonType":  "string",
				"minLength": 24,
				"maxLength": 24,
			},
			"rule_type": bson.M{
				"bsonType": "string",
				"enum":     []string{"SURGE", "DISCOUNT", "DATE_RANGE", "WEEKEND", "SEASON", "SEASONAL"},
			},
			"percentage_change": bson.M{
				"bsonType": []string{"double", "int", "long"},
				"minimum":  -100,
			},
			"priority": bson.M{
				"bsonType": []string{"int", "long"},
			},
			"is_active": bson.M{
				"bsonType": "bool",
			},
			"start_date": bson.M{
				"bsonType": "date",
			},
			"end_date": bson.M{
				"bsonType": "date",
			},
		},
	},
}

var TaxValidator = bson.M{
	"$jsonSchema": bson.M{
		"bsonType": "object",
		"required": []string{"name", "percentage", "is_active"},
		"properties": bson.M{
			"name": bson.M{
				"bsonType":  "string",
				"minLength": 1,
				"maxLength": 100,
			},
			"percentage": bson.M{
				"bsonType": []string{"double", "int", "long"},
				"minimum":  0,
				"maximum":  100,
			},
			"is_active": bson.M{
				"bsonType": "bool",
			},
		},
	},
}

var FeeValidator = bson.M{
	"$jsonSchema": bson.M{
		"bsonType": "object",
		"required": []string{"name", "fee_type", "amount_type", "amount", "is_active"},
		"properties": bson.M{
			"name": bson.M{
				"bsonType":  "string",
				"minLength": 1,
				"maxLength": 100,
			},
			"amount_type": bson.M{
				"bsonType": "string",
				"enum":     []string{"PERCENTAGE", "FIXED", "PER_NIGHT"},
			},
			"amount": money,
			"is_active": bson.M{
				"bsonType": "bool",
			},
		},
	},
}
