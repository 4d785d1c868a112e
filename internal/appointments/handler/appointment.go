package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"carematch/internal/appointments/service"
	apperrors "carematch/pkg/errors"
	httputil "carematch/pkg/http"
	"carematch/pkg/logger"
	"carematch/pkg/model"

	"github.com/julienschmidt/httprouter"
)

type AppointmentHandler struct {
	service service.AppointmentService
	log     *logger.Logger
}

func NewAppointmentHandler(service service.AppointmentService, log *logger.Logger) *AppointmentHandler {
	return &AppointmentHandler{
		service: service,
		log:     log,
	}
}

func (h *AppointmentHandler) Create(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var appt model.Appointment
	if err := json.NewDecoder(r.Body).Decode(&appt); err != nil {
		h.writeBadBody(w, "Create")
		return
	}

	if err := h.service.Create(r.Context(), &appt); err != nil {
		h.writeError(w, "Create", err)
		return
	}

	if err := httputil.WriteCreated(w, appt); err != nil {
		h.log.Error("failed to write created response", "handler", "Create", "operation", "WriteCreated", "error", err)
	}
}

// Get serves every GET below /api/v1/appointments: a single appointment by id and the
// per-member and per-caregiver listings.
func (h *AppointmentHandler) Get(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	parts := strings.Split(strings.Trim(ps.ByName("path"), "/"), "/")

	switch {
	case len(parts) == 1 && parts[0] != "":
		h.GetByID(w, r, parts[0])
	case len(parts) == 2 && parts[0] == "member" && parts[1] != "":
		h.list(w, r, "ListByMember", parts[1], h.service.ListByMember)
	case len(parts) == 2 && parts[0] == "caregiver" && parts[1] != "":
		h.list(w, r, "ListByCaregiver", parts[1], h.service.ListByCaregiver)
	default:
		http.NotFound(w, r)
	}
}

func (h *AppointmentHandler) GetByID(w http.ResponseWriter, r *http.Request, id string) {
	appt, err := h.service.GetByID(r.Context(), id)
	if err != nil {
		h.writeError(w, "GetByID", err)
		return
	}

	if err := httputil.WriteSuccess(w, appt); err != nil {
		h.log.Error("failed to write success response", "handler", "GetByID", "operation", "WriteSuccess", "error", err)
	}
}

type listFunc func(ctx context.Context, partyID string, filter model.AppointmentFilter, limit int, offset int64) ([]*model.Appointment, int64, error)

func (h *AppointmentHandler) list(w http.ResponseWriter, r *http.Request, name, partyID string, fn listFunc) {
	limit, offset, err := httputil.ExtractLimitOffset(r)
	if err != nil {
		h.writeError(w, name, err)
		return
	}

	query := r.URL.Query()
	filter := model.AppointmentFilter{
		Status: query.Get("status"),
		From:   query.Get("from"),
		To:     query.Get("to"),
	}

	appointments, total, err := fn(r.Context(), partyID, filter, limit, offset)
	if err != nil {
		h.writeError(w, name, err)
		return
	}

	if err := httputil.WritePaginated(w, appointments, total, limit, offset); err != nil {
		h.log.Error("failed to write paginated response", "handler", name, "operation", "WritePaginated", "error", err)
	}
}

func (h *AppointmentHandler) Update(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	var updates model.AppointmentUpdate
	if err := json.NewDecoder(r.Body).Decode(&updates); err != nil {
		h.writeBadBody(w, "Update")
		return
	}

	actorID := updates.MemberID
	if actorID == "" {
		actorID = httputil.ActorID(r)
	}

	appt, err := h.service.Update(r.Context(), ps.ByName("id"), actorID, &updates)
	if err != nil {
		h.writeError(w, "Update", err)
		return
	}

	if err := httputil.WriteSuccess(w, appt); err != nil {
		h.log.Error("failed to write success response", "handler", "Update", "operation", "WriteSuccess", "error", err)
	}
}

func (h *AppointmentHandler) Cancel(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	actorID, err := httputil.RequireActorID(r)
	if err != nil {
		h.writeError(w, "Cancel", err)
		return
	}

	if _, err := h.service.Cancel(r.Context(), ps.ByName("id"), actorID); err != nil {
		h.writeError(w, "Cancel", err)
		return
	}

	httputil.WriteNoContent(w)
}

func (h *AppointmentHandler) Confirm(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	h.transition(w, r, ps, "Confirm", h.service.Confirm)
}

func (h *AppointmentHandler) Decline(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	h.transition(w, r, ps, "Decline", h.service.Decline)
}

func (h *AppointmentHandler) Complete(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	h.transition(w, r, ps, "Complete", h.service.Complete)
}

type transitionFunc func(ctx context.Context, id string, actorID string) (*model.Appointment, error)

func (h *AppointmentHandler) transition(w http.ResponseWriter, r *http.Request, ps httprouter.Params, name string, fn transitionFunc) {
	actorID, err := httputil.RequireActorID(r)
	if err != nil {
		h.writeError(w, name, err)
		return
	}

	appt, err := fn(r.Context(), ps.ByName("id"), actorID)
	if err != nil {
		h.writeError(w, name, err)
		return
	}

	if err := httputil.WriteSuccess(w, appt); err != nil {
		h.log.Error("failed to write success response", "handler", name, "operation", "WriteSuccess", "error", err)
	}
}

func (h *AppointmentHandler) writeError(w http.ResponseWriter, name string, err error) {
	if appErr := apperrors.AsAppError(err); appErr.Code == apperrors.CodeInternal {
		h.log.Error("request failed", "handler", name, "error", err)
	}
	if writeErr := httputil.WriteError(w, err); writeErr != nil {
		h.log.Error("failed to write error response", "handler", name, "operation", "WriteError", "error", writeErr)
	}
}

func (h *AppointmentHandler) writeBadBody(w http.ResponseWriter, name string) {
	h.writeError(w, name, apperrors.InvalidInput("Invalid request body"))
}
