package events

import (
	"context"
	"fmt"
	"time"

	"carematch/pkg/kafka"
	"carematch/pkg/logger"
	"carematch/pkg/model"
)

const (
	SchemaVersion = "1"
	Source        = "appointments"

	publishTimeout = 5 * time.Second
)

type messagePublisher interface {
	Publish(ctx context.Context, msg kafka.Message) error
}

// KafkaPublisher sends lifecycle events keyed by appointment id so every change to one
// appointment lands on the same partition in order.
type KafkaPublisher struct {
	producer messagePublisher
	log      *logger.Logger
}

func NewKafkaPublisher(producer messagePublisher, log *logger.Logger) *KafkaPublisher {
	return &KafkaPublisher{
		producer: producer,
		log:      log,
	}
}

func (p *KafkaPublisher) Publish(ctx context.Context, event model.AppointmentEvent) error {
	msg, err := NewEventMessage(ctx, event)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, publishTimeout)
	defer cancel()

	if err := p.producer.Publish(ctx, msg); err != nil {
		return fmt.Errorf("failed to publish %s: %w", event.Type, err)
	}

	p.log.Debug("Appointment event published",
		"type", event.Type,
		"appointment_id", event.Appointment.ID,
		"event_id", msg.GetEventID(),
	)
	return nil
}

func NewEventMessage(ctx context.Context, event model.AppointmentEvent) (kafka.Message, error) {
	msg, err := kafka.NewMessage().
		WithKey(event.Appointment.ID).
		WithValue(event).
		WithEventType(event.Type).
		WithCorrelationID(logger.RequestIDFromContext(ctx)).
		WithSchemaVersion(SchemaVersion).
		WithSource(Source).
		Build()
	if err != nil {
		return kafka.Message{}, fmt.Errorf("failed to encode %s: %w", event.Type, err)
	}
	return msg, nil
}

// NoopPublisher drops events. Used when EVENTS_ENABLED is false.
type NoopPublisher struct{}

func (NoopPublisher) Publish(context.Context, model.AppointmentEvent) error {
	return nil
}
