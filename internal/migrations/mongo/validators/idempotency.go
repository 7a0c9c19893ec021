package validators

import "go.mongodb.org/mongo-driver/bson"

var IdempotencyValidator = bson.M{
	"$jsonSchema": bson.M{
		"bsonType": "object",
		"required": []string{"key", "endpoint", "request_hash", "status", "expires_at"},
		"properties": bson.M{
			"key": bson.M{
				"bsonType":  "string",
				"minLength": 1,
				"maxLength": 255,
			},
			"request_hash": bson.M{
				"bsonType": "string",
			},
			"status": bson.M{
				"bsonType": "string",
				"enum":     []string{"pending", "completed", "failed"},
			},
			"response_status": bson.M{
				"bsonType": []string{"int", "long"},
			},
			"response_data": bson.M{
				"bsonType": "binData",
			},
			"expires_at": bson.M{
				"bsonType": "date",
			},
		},
	},
}
