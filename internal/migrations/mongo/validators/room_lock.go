package validators

import "go.mongodb.org/mongo-driver/bson"

var RoomLockValidator = bson.M{
	"$jsonSchema": bson.M{
		"bsonType": "object",
		"required": []string{
			"hotel_id",
			"room_id",
			"locked_by_user_id",
			"lock_type",
			"locked_until",
			"status",
		},
		"properties": bson.M{
			"_id": bson.M{
				"bsonType": "string",
			},
			"room_id": bson.M{
				"bsonType":  "string",
				"minLength": 1,
			},
			"locked_by_user_id": bson.M{
				"bsonType":  "string",
				"minLength": 1,
			},
			"lock_type": bson.M{
				"bsonType": "string",
				"enum":     []string{"BOOKING", "MANUAL"},
			},
			"locked_until": bson.M{
				"bsonType": "date",
			},
			"status": bson.M{
				"bsonType": "string",
				"enum":     []string{"ACTIVE", "RELEASED", "EXPIRED"},
			},
		},
	},
}
