package validators

import "go.mongodb.org/mongo-driver/bson"

var CallerValidator = bson.M{
	"$jsonSchema": bson.M{
		"bsonType": "object",
		"required": []string{
			"_id",
			"contact_number",
			"created_at",
		},
		"additionalProperties": true,

		"properties": bson.M{
			"_id": bson.M{
				"bsonType":  "string",
				"minLength": 36,
				"maxLength": 36,
			},

			// digits only, stored without formatting
			"contact_number": bson.M{
				"bsonType": "string",
				"pattern":  `^\d{10,15}$`,
			},

			"name": bson.M{
				"bsonType":  "string",
				"maxLength": 100,
			},

			"created_at": bson.M{
				"bsonType": "date",
			},
		},
	},
}
