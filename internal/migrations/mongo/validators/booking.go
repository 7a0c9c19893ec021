package validators

import "go.mongodb.org/mongo-driver/bson"

var BookingValidator = bson.M{
	"$jsonSchema": bson.M{
		"bsonType": "object",
		"required": []string{
			"user_id",
			"hotel_id",
			"room_type_id",
			"check_in",
			"check_out",
			"guests",
			"nights",
			"total_amount",
			"currency",
			"status",
			"availability_mode",
			"created_at",
		},
		"additionalProperties": true,

		"properties": bson.M{
			"_id": bson.M{
				"bsonType": "objectId",
			},

			"user_id": bson.M{
				"bsonType":  "string",
				"minLength": 1,
				"maxLength": 128,
			},

			"hotel_id": bson.M{
				"bsonType":  "string",
				"minLength": 24,
				"maxLength": 24,
			},

			"room_type_id": bson.M{
				"bsonType":  "string",
				"minLength": 24,
				"maxLength": 24,
			},

			"check_in": bson.M{
				"bsonType": "date",
			},

			"check_out": bson.M{
				"bsonType": "date",
			},

			"guests": bson.M{
				"bsonType": []string{"int", "long"},
				"minimum":  1,
			},

			"nights": bson.M{
				"bsonType": []string{"int", "long"},
				"minimum":  1,
			},

			"room_rate":    money,
			"subtotal":     money,
			"total_taxes":  money,
			"total_fees":   money,
			"total_amount": money,

			"currency": bson.M{
				"bsonType":  "string",
				"minLength": 3,
				"maxLength": 3,
			},

			"status": bson.M{
				"bsonType": "string",
				"enum": []string{
					"confirmed",
					"cancelled",
				},
			},

			"availability_mode": bson.M{
				"bsonType": "string",
				"enum": []string{
					"counters",
					"rooms",
				},
			},

			"created_at": bson.M{
				"bsonType": "date",
			},

			"cancelled_at": bson.M{
				"bsonType": "date",
			},
		},
	},
}

var LineItemValidator = bson.M{
	"$jsonSchema": bson.M{
		"bsonType": "object",
		"required": []string{"booking_id", "kind", "name", "amount"},
		"properties": bson.M{
			"booking_id": bson.M{
				"bsonType":  "string",
				"minLength": 1,
			},
			"kind": bson.M{
				"bsonType": "string",
				"enum":     []string{"tax", "fee"},
			},
			"name": bson.M{
				"bsonType": "string",
			},
			"amount": money,
		},
	},
}

var money = bson.M{
	"bsonType": []string{"double", "int", "long"},
	"minimum":  0,
}
