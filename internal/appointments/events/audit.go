package events

import (
	"context"
	"errors"
	"time"

	"carematch/internal/appointments/repository"
	"carematch/pkg/kafka"
	"carematch/pkg/logger"
	"carematch/pkg/model"
)

var errMissingEventID = errors.New("message has no event id")

// AuditHandler persists every consumed lifecycle event. The event id is the record key, so
// redelivery after a rebalance does not duplicate history.
type AuditHandler struct {
	store repository.AuditRepository
	log   *logger.Logger
	now   func() time.Time
}

func NewAuditHandler(store repository.AuditRepository, log *logger.Logger) *AuditHandler {
	return &AuditHandler{
		store: store,
		log:   log,
		now:   time.Now,
	}
}

func (h *AuditHandler) Handle(ctx context.Context, msg kafka.Message) error {
	eventID := msg.GetEventID()
	if eventID == "" {
		return kafka.NewPermanentError("cannot audit event", errMissingEventID)
	}

	var event model.AppointmentEvent
	if err := msg.DecodeValue(&event); err != nil {
		return kafka.NewPermanentError("failed to decode appointment event", err)
	}

	eventType := event.Type
	if eventType == "" {
		eventType = msg.GetEventType()
	}

	record := &model.AuditRecord{
		EventID:       eventID,
		Type:          eventType,
		AppointmentID: event.Appointment.ID,
		ActorID:       event.ActorID,
		Status:        event.Appointment.Status,
		Payload:       event,
		OccurredAt:    event.OccurredAt,
		ReceivedAt:    h.now().UTC(),
	}

	if err := h.store.Insert(ctx, record); err != nil {
		// Store failures are retried by the consumer before the message is dead-lettered.
		return kafka.NewTransientError("failed to store audit record", err)
	}

	h.log.Debug("Audited appointment event",
		"event_id", eventID,
		"event_type", eventType,
		"appointment_id", record.AppointmentID,
		"correlation_id", msg.GetCorrelationID(),
	)
	return nil
}
