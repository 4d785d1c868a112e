package validators

import "go.mongodb.org/mongo-driver/bson"

var CaregiverValidator = bson.M{
	"$jsonSchema": bson.M{
		"bsonType":             "object",
		"required":             []string{"email", "given_name", "surname", "city", "caregiving_type", "hourly_rate"},
		"additionalProperties": true,
		"properties": bson.M{
			"_id":          bson.M{"bsonType": "objectId"},
			"email":        bson.M{"bsonType": "string"},
			"given_name":   bson.M{"bsonType": "string"},
			"surname":      bson.M{"bsonType": "string"},
			"city":         bson.M{"bsonType": "string"},
			"phone_number": bson.M{"bsonType": "string"},
			"photo":        bson.M{"bsonType": "string"},
			"gender":       bson.M{"bsonType": "string"},
			"caregiving_type": bson.M{
				"bsonType": "string",
				"enum":     []string{"babysitter", "caregiver for elderly", "playmate for children"},
			},
			"hourly_rate": bson.M{"bsonType": "decimal", "minimum": 0},
			"created_at":  bson.M{"bsonType": "date"},
			"updated_at":  bson.M{"bsonType": "date"},
		},
	},
}

var MemberValidator = bson.M{
	"$jsonSchema": bson.M{
		"bsonType":             "object",
		"required":             []string{"email", "given_name", "surname", "city"},
		"additionalProperties": true,
		"properties": bson.M{
			"_id":                   bson.M{"bsonType": "objectId"},
			"email":                 bson.M{"bsonType": "string"},
			"given_name":            bson.M{"bsonType": "string"},
			"surname":               bson.M{"bsonType": "string"},
			"city":                  bson.M{"bsonType": "string"},
			"phone_number":          bson.M{"bsonType": "string"},
			"house_rules":           bson.M{"bsonType": "string"},
			"dependent_description": bson.M{"bsonType": "string"},
			"primary_address": bson.M{
				"bsonType": "object",
				"required": []string{"house_number", "street", "town"},
				"properties": bson.M{
					"house_number": bson.M{"bsonType": "string", "maxLength": 10},
					"street":       bson.M{"bsonType": "string", "maxLength": 200},
					"town":         bson.M{"bsonType": "string", "maxLength": 100},
					"updated_at":   bson.M{"bsonType": "date"},
				},
			},
			"created_at": bson.M{"bsonType": "date"},
			"updated_at": bson.M{"bsonType": "date"},
		},
	},
}
