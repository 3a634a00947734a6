package validators

import "go.mongodb.org/mongo-driver/bson"

var FacilityValidator = bson.M{
	"$jsonSchema": bson.M{
		"bsonType": "object",
		"required": []string{
			"name", "type", "capacity", "hourly_rate",
			"operating_hours_start", "operating_hours_end",
			"min_booking_hours", "max_booking_hours", "is_active", "created_at",
		},
		"additionalProperties": true,
		"properties": bson.M{
			"_id":                   bson.M{"bsonType": "string"},
			"name":                  bson.M{"bsonType": "string", "minLength": 2, "maxLength": 100},
			"type":                  bson.M{"bsonType": "string"},
			"amenities":             bson.M{"bsonType": "array", "items": bson.M{"bsonType": "string"}},
			"capacity":              bson.M{"bsonType": integer, "minimum": 1},
			"hourly_rate":           bson.M{"bsonType": "double", "minimum": 0},
			"operating_hours_start": bson.M{"bsonType": "string", "pattern": "^[0-9]{2}:00$"},
			"operating_hours_end":   bson.M{"bsonType": "string", "pattern": "^[0-9]{2}:00$"},
			"min_booking_hours":     bson.M{"bsonType": integer, "minimum": 1},
			"max_booking_hours":     bson.M{"bsonType": integer, "minimum": 1},
			"advance_booking_days":  bson.M{"bsonType": integer, "minimum": 0},
			"is_active":             bson.M{"bsonType": "bool"},
			"created_at":            bson.M{"bsonType": "date"},
		},
	},
}
