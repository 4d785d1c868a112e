package model

import "time"

const (
	EventAppointmentCreated   = "appointment.created"
	EventAppointmentUpdated   = "appointment.updated"
	EventAppointmentConfirmed = "appointment.confirmed"
	EventAppointmentDeclined  = "appointment.declined"
	EventAppointmentCancelled = "appointment.cancelled"
	EventAppointmentCompleted = "appointment.completed"
)

// AppointmentEvent is the payload published after a lifecycle change commits.
type AppointmentEvent struct {
	Type        string      `json:"type" bson:"type"`
	ActorID     string      `json:"actor_id" bson:"actor_id"`
	Appointment Appointment `json:"appointment" bson:"appointment"`
	OccurredAt  time.Time   `json:"occurred_at" bson:"occurred_at"`
}

// AuditRecord is one consumed event as stored in the audit collection.
type AuditRecord struct {
	EventID       string           `bson:"_id"`
	Type          string           `bson:"type"`
	AppointmentID string           `bson:"appointment_id"`
	ActorID       string           `bson:"actor_id"`
	Status        string           `bson:"status"`
	Payload       AppointmentEvent `bson:"payload"`
	OccurredAt    time.Time        `bson:"occurred_at"`
	ReceivedAt    time.Time        `bson:"received_at"`
}
