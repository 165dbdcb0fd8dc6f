package validators

import "go.mongodb.org/mongo-driver/bson"

var ReservationValidator = bson.M{
	"$jsonSchema": bson.M{
		"bsonType": "object",
		"required": []string{
			"booking_code",
			"vehicle_id",
			"user_id",
			"origin",
			"destination",
			"booking_type",
			"start_time",
			"total_price",
			"status",
			"payment",
			"created_at",
		},
		"additionalProperties": true,

		"properties": bson.M{
			"_id": bson.M{
				"bsonType": "objectId",
			},

			"booking_code": bson.M{
				"bsonType":  "string",
				"minLength": 8,
				"maxLength": 40,
			},

			"vehicle_id": bson.M{
				"bsonType":  "string",
				"minLength": 24,
				"maxLength": 24,
			},

			"user_id": bson.M{
				"bsonType":  "string",
				"minLength": 1,
				"maxLength": 64,
			},

			"origin": bson.M{
				"bsonType":  "string",
				"minLength": 2,
				"maxLength": 100,
			},

			"destination": bson.M{
				"bsonType":  "string",
				"minLength": 2,
				"maxLength": 100,
			},

			"round_trip": bson.M{
				"bsonType": "bool",
			},

			"booking_type": bson.M{
				"enum": []string{"immediate", "scheduled"},
			},

			"start_time": bson.M{
				"bsonType": "date",
			},

			"end_time": bson.M{
				"bsonType": []string{"date", "null"},
			},

			"total_price": bson.M{
				"bsonType": []string{"double", "int", "long", "decimal"},
				"minimum":  0,
			},

			"status": bson.M{
				"enum": []string{"pending", "confirmed", "cancelled", "completed"},
			},

			"payment": bson.M{
				"bsonType": "object",
				"required": []string{"provider", "order_id", "amount", "currency", "status"},
				"properties": bson.M{
					"provider": bson.M{
						"enum": []string{"razorpay", "stripe"},
					},
					"order_id": bson.M{
						"bsonType":  "string",
						"minLength": 1,
					},
					"payment_id": bson.M{
						"bsonType": "string",
					},
					"amount": bson.M{
						"bsonType": []string{"double", "int", "long", "decimal"},
						"minimum":  0,
					},
					"currency": bson.M{
						"bsonType":  "string",
						"minLength": 3,
						"maxLength": 3,
					},
					"status": bson.M{
						"enum": []string{"pending", "paid", "failed", "refunded", "no_refund", "refund_unknown"},
					},
					"refund_id": bson.M{
						"bsonType": "string",
					},
					"is_refunded": bson.M{
						"bsonType": "bool",
					},
				},
			},

			"created_at": bson.M{
				"bsonType": "date",
			},

			"updated_at": bson.M{
				"bsonType": "date",
			},
		},
	},
}
