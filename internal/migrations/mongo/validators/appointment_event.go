package validators

import "go.mongodb.org/mongo-driver/bson"

// AppointmentEventValidator guards the append-only audit log written by the events consumer.
var AppointmentEventValidator = bson.M{
	"$jsonSchema": bson.M{
		"bsonType":             "object",
		"required":             []string{"type", "appointment_id", "occurred_at", "received_at"},
		"additionalProperties": true,
		"properties": bson.M{
			"_id":            bson.M{"bsonType": "string"},
			"type":           bson.M{"bsonType": "string"},
			"appointment_id": bson.M{"bsonType": "string"},
			"actor_id":       bson.M{"bsonType": "string"},
			"status":         bson.M{"bsonType": "string"},
			"payload":        bson.M{"bsonType": "object"},
			"occurred_at":    bson.M{"bsonType": "date"},
			"received_at":    bson.M{"bsonType": "date"},
		},
	},
}
