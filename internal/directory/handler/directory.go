package handler

import (
	"encoding/json"
	"net/http"

	"carematch/internal/directory/service"
	apperrors "carematch/pkg/errors"
	httputil "carematch/pkg/http"
	"carematch/pkg/logger"
	"carematch/pkg/model"

	"github.com/julienschmidt/httprouter"
	"github.com/shopspring/decimal"
)

type DirectoryHandler struct {
	service service.DirectoryService
	log     *logger.Logger
}

func NewDirectoryHandler(service service.DirectoryService, log *logger.Logger) *DirectoryHandler {
	return &DirectoryHandler{
		service: service,
		log:     log,
	}
}

func (h *DirectoryHandler) SearchCaregivers(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	limit, offset, err := httputil.ExtractLimitOffset(r)
	if err != nil {
		h.writeError(w, "SearchCaregivers", err)
		return
	}

	query := r.URL.Query()
	filter := model.CaregiverFilter{
		CaregivingType: query.Get("caregiving_type"),
		City:           query.Get("city"),
		Gender:         query.Get("gender"),
		SortBy:         query.Get("sort_by"),
	}
	if filter.MinRate, err = parseRate(query.Get("min_rate"), "min_rate"); err != nil {
		h.writeError(w, "SearchCaregivers", err)
		return
	}
	if filter.MaxRate, err = parseRate(query.Get("max_rate"), "max_rate"); err != nil {
		h.writeError(w, "SearchCaregivers", err)
		return
	}

	caregivers, total, err := h.service.SearchCaregivers(r.Context(), filter, limit, offset)
	if err != nil {
		h.writeError(w, "SearchCaregivers", err)
		return
	}

	if err := httputil.WritePaginated(w, caregivers, total, limit, offset); err != nil {
		h.log.Error("failed to write paginated response", "handler", "SearchCaregivers", "operation", "WritePaginated", "error", err)
	}
}

func parseRate(raw, name string) (*decimal.Decimal, error) {
	if raw == "" {
		return nil, nil
	}
	rate, err := decimal.NewFromString(raw)
	if err != nil {
		return nil, apperrors.InvalidInput("invalid " + name + " parameter: " + raw)
	}
	return &rate, nil
}

// profileID resolves the "me" alias to the caller's own id.
func profileID(r *http.Request, ps httprouter.Params) (string, error) {
	id := ps.ByName("id")
	if id != meAlias {
		return id, nil
	}
	return httputil.RequireActorID(r)
}

func (h *DirectoryHandler) GetCaregiver(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	id, err := profileID(r, ps)
	if err != nil {
		h.writeError(w, "GetCaregiver", err)
		return
	}

	caregiver, err := h.service.GetCaregiver(r.Context(), id)
	if err != nil {
		h.writeError(w, "GetCaregiver", err)
		return
	}

	if err := httputil.WriteSuccess(w, caregiver); err != nil {
		h.log.Error("failed to write success response", "handler", "GetCaregiver", "operation", "WriteSuccess", "error", err)
	}
}

func (h *DirectoryHandler) UpdateCaregiver(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	id, err := profileID(r, ps)
	if err != nil {
		h.writeError(w, "UpdateCaregiver", err)
		return
	}

	var update model.CaregiverUpdate
	if err := json.NewDecoder(r.Body).Decode(&update); err != nil {
		h.writeError(w, "UpdateCaregiver", apperrors.InvalidInput("Invalid request body"))
		return
	}

	caregiver, err := h.service.UpdateCaregiver(r.Context(), id, httputil.ActorID(r), &update)
	if err != nil {
		h.writeError(w, "UpdateCaregiver", err)
		return
	}

	if err := httputil.WriteSuccess(w, caregiver); err != nil {
		h.log.Error("failed to write success response", "handler", "UpdateCaregiver", "operation", "WriteSuccess", "error", err)
	}
}

func (h *DirectoryHandler) GetMember(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	id, err := profileID(r, ps)
	if err != nil {
		h.writeError(w, "GetMember", err)
		return
	}

	member, err := h.service.GetMember(r.Context(), id)
	if err != nil {
		h.writeError(w, "GetMember", err)
		return
	}

	if err := httputil.WriteSuccess(w, member); err != nil {
		h.log.Error("failed to write success response", "handler", "GetMember", "operation", "WriteSuccess", "error", err)
	}
}

func (h *DirectoryHandler) UpdateMember(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	id, err := profileID(r, ps)
	if err != nil {
		h.writeError(w, "UpdateMember", err)
		return
	}

	var update model.MemberUpdate
	if err := json.NewDecoder(r.Body).Decode(&update); err != nil {
		h.writeError(w, "UpdateMember", apperrors.InvalidInput("Invalid request body"))
		return
	}

	member, err := h.service.UpdateMember(r.Context(), id, httputil.ActorID(r), &update)
	if err != nil {
		h.writeError(w, "UpdateMember", err)
		return
	}

	if err := httputil.WriteSuccess(w, member); err != nil {
		h.log.Error("failed to write success response", "handler", "UpdateMember", "operation", "WriteSuccess", "error", err)
	}
}

func (h *DirectoryHandler) GetPrimaryAddress(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	id, err := profileID(r, ps)
	if err != nil {
		h.writeError(w, "GetPrimaryAddress", err)
		return
	}

	address, err := h.service.GetPrimaryAddress(r.Context(), id, httputil.ActorID(r))
	if err != nil {
		h.writeError(w, "GetPrimaryAddress", err)
		return
	}

	if err := httputil.WriteSuccess(w, address); err != nil {
		h.log.Error("failed to write success response", "handler", "GetPrimaryAddress", "operation", "WriteSuccess", "error", err)
	}
}

func (h *DirectoryHandler) PutPrimaryAddress(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	id, err := profileID(r, ps)
	if err != nil {
		h.writeError(w, "PutPrimaryAddress", err)
		return
	}

	var address model.Address
	if err := json.NewDecoder(r.Body).Decode(&address); err != nil {
		h.writeError(w, "PutPrimaryAddress", apperrors.InvalidInput("Invalid request body"))
		return
	}

	saved, err := h.service.UpsertPrimaryAddress(r.Context(), id, httputil.ActorID(r), &address)
	if err != nil {
		h.writeError(w, "PutPrimaryAddress", err)
		return
	}

	if err := httputil.WriteSuccess(w, saved); err != nil {
		h.log.Error("failed to write success response", "handler", "PutPrimaryAddress", "operation", "WriteSuccess", "error", err)
	}
}

func (h *DirectoryHandler) DeletePrimaryAddress(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	id, err := profileID(r, ps)
	if err != nil {
		h.writeError(w, "DeletePrimaryAddress", err)
		return
	}

	if err := h.service.DeletePrimaryAddress(r.Context(), id, httputil.ActorID(r)); err != nil {
		h.writeError(w, "DeletePrimaryAddress", err)
		return
	}

	httputil.WriteNoContent(w)
}

func (h *DirectoryHandler) writeError(w http.ResponseWriter, name string, err error) {
	if writeErr := httputil.WriteError(w, err); writeErr != nil {
		h.log.Error("failed to write error response", "handler", name, "operation", "WriteError", "error", writeErr)
	}
}
