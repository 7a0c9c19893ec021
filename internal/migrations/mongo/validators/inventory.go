package validators

import "go.mongodb.org/mongo-driver/bson"

var RoomTypeValidator = bson.M{
	"$jsonSchema": bson.M{
		"bsonType": "object",
		"required": []string{"hotel_id", "name", "base_price", "max_guests"},
		"properties": bson.M{
			"hotel_id": bson.M{
				"bsonType":  "string",
				"minLength": 24,
				"maxLength": 24,
			},
			"name": bson.M{
				"bsonType":  "string",
				"minLength": 2,
				"maxLength": 100,
			},
			"base_price": money,
			"max_guests": bson.M{
				"bsonType": []string{"int", "long"},
				"minimum":  1,
			},
		},
	},
}

var RoomValidator = bson.M{
	"$jsonSchema": bson.M{
		"bsonType": "object",
		"required": []string{"hotel_id", "room_type_id", "number", "status"},
		"properties": bson.M{
			"room_type_id": bson.M{
				"bsonType":  "string",
				"minLength": 24,
				"maxLength": 24,
			},
			"status": bson.M{
				"bsonType": "string",
				"enum":     []string{"available", "maintenance", "out_of_service"},
			},
		},
	},
}

// AvailabilityValidator mirrors the 0 <= available_rooms <= total_rooms rule
// the counters rely on.
var AvailabilityValidator = bson.M{
	"$jsonSchema": bson.M{
		"bsonType": "object",
		"required": []string{"room_type_id", "date", "total_rooms", "available_rooms"},
		"properties": bson.M{
			"room_type_id": bson.M{
				"bsonType": "string",
			},
			"date": bson.M{
				"bsonType": "date",
			},
			"total_rooms": bson.M{
				"bsonType": []string{"int", "long"},
				"minimum":  0,
			},
			"available_rooms": bson.M{
				"bsonType": []string{"int", "long"},
				"minimum":  0,
			},
		},
	},
	"$expr": bson.M{"$lte": bson.A{"$available_rooms", "$total_rooms"}},
}
