package validators

import "go.mongodb.org/mongo-driver/bson"

var ConversationValidator = bson.M{
	"$jsonSchema": bson.M{
		"bsonType": "object",
		"required": []string{
			"_id",
			"session_id",
			"summary",
			"appointments_discussed",
			"preferences_mentioned",
			"cost_breakdown",
			"created_at",
		},
		"additionalProperties": true,

		"properties": bson.M{
			"_id": bson.M{
				"bsonType":  "string",
				"minLength": 36,
				"maxLength": 36,
			},

			"user_id": bson.M{
				"bsonType":  "string",
				"minLength": 36,
				"maxLength": 36,
			},

			"session_id": bson.M{
				"bsonType":  "string",
				"minLength": 1,
			},

			"summary": bson.M{
				"bsonType":  "string",
				"minLength": 1,
			},

			"appointments_discussed": bson.M{
				"bsonType": "array",
				"items": bson.M{
					"bsonType": "object",
					"required": []string{"action"},
					"properties": bson.M{
						"action": bson.M{
							"bsonType": "string",
							"enum":     []string{"booked", "cancelled", "modified"},
						},
					},
				},
			},

			"preferences_mentioned": bson.M{
				"bsonType": "array",
				"items": bson.M{
					"bsonType": "string",
				},
			},

			"transcript": bson.M{
				"bsonType": "array",
			},

			"cost_breakdown": bson.M{
				"bsonType": "object",
			},

			"duration_seconds": bson.M{
				"bsonType": []string{"int", "long"},
				"minimum":  0,
			},

			"created_at": bson.M{
				"bsonType": "date",
			},
		},
	},
}
