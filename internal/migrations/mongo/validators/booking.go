package validators

import "go.mongodb.org/mongo-driver/bson"

var integer = []string{"int", "long"}

var BookingValidator = bson.M{
	"$jsonSchema": bson.M{
		"bsonType": "object",
		"required": []string{
			"booking_number",
			"facility_id",
			"user_id",
			"booking_date",
			"start_time",
			"end_time",
			"expected_attendees",
			"total_amount",
			"status",
			"created_at",
		},
		"additionalProperties": true,

		"properties": bson.M{
			"_id": bson.M{
				"bsonType":  "string",
				"minLength": 36,
				"maxLength": 36,
			},

			"booking_number": bson.M{
				"bsonType": "string",
				"pattern":  "^BK[0-9]{10}$",
			},

			"facility_id": bson.M{
				"bsonType":  "string",
				"minLength": 36,
				"maxLength": 36,
			},

			"user_id": bson.M{
				"bsonType":  "string",
				"minLength": 1,
			},

			"booking_date": bson.M{
				"bsonType": "string",
				"pattern":  "^[0-9]{4}-[0-9]{2}-[0-9]{2}$",
			},

			"start_time": bson.M{
				"bsonType": "string",
				"pattern":  "^[0-9]{2}:[0-9]{2}$",
			},

			"end_time": bson.M{
				"bsonType": "string",
				"pattern":  "^[0-9]{2}:[0-9]{2}$",
			},

			"expected_attendees": bson.M{
				"bsonType": integer,
				"minimum":  1,
			},

			"total_amount": bson.M{
				"bsonType": "double",
				"minimum":  0,
			},

			"status": bson.M{
				"bsonType": "string",
				"enum": []string{
					"pending",
					"confirmed",
					"cancelled",
					"completed",
				},
			},

			"created_at": bson.M{
				"bsonType": "date",
			},
		},
	},
}
