package validators

import "go.mongodb.org/mongo-driver/bson"

var SlotClaimValidator = bson.M{
	"$jsonSchema": bson.M{
		"bsonType":             "object",
		"required":             []string{"facility_id", "booking_date", "hour", "booking_id"},
		"additionalProperties": true,
		"properties": bson.M{
			"_id":          bson.M{"bsonType": "string"},
			"facility_id":  bson.M{"bsonType": "string"},
			"booking_date": bson.M{"bsonType": "string"},
			"hour":         bson.M{"bsonType": integer, "minimum": 0, "maximum": 23},
			"booking_id":   bson.M{"bsonType": "string"},
		},
	},
}
