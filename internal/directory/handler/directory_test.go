package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	apperrors "carematch/pkg/errors"
	httputil "carematch/pkg/http"
	"carematch/pkg/logger"
	"carematch/pkg/model"

	"github.com/julienschmidt/httprouter"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockDirectoryService struct {
	searchFunc       func(filter model.CaregiverFilter, limit int, offset int64) ([]*model.Caregiver, int64, error)
	updateMemberFunc func(id, actorID string, update *model.MemberUpdate) (*model.Member, error)
	address          *model.Address
}

func (m *mockDirectoryService) GetCaregiver(ctx context.Context, id string) (*model.Caregiver, error) {
	if id == "c1" {
		return &model.Caregiver{ID: id, HourlyRate: decimal.RequireFromString("20")}, nil
	}
	return nil, apperrors.NotFoundWithID("Caregiver", id)
}

func (m *mockDirectoryService) GetMember(ctx context.Context, id string) (*model.Member, error) {
	if id == "m1" {
		return &model.Member{ID: id}, nil
	}
	return nil, apperrors.NotFoundWithID("Member", id)
}

func (m *mockDirectoryService) CaregiverExists(ctx context.Context, id string) (bool, error) {
	return id == "c1", nil
}

func (m *mockDirectoryService) MemberExists(ctx context.Context, id string) (bool, error) {
	return id == "m1", nil
}

func (m *mockDirectoryService) SearchCaregivers(ctx context.Context, filter model.CaregiverFilter, limit int, offset int64) ([]*model.Caregiver, int64, error) {
	if m.searchFunc != nil {
		return m.searchFunc(filter, limit, offset)
	}
	return []*model.Caregiver{}, 0, nil
}

func (m *mockDirectoryService) UpdateCaregiver(ctx context.Context, id, actorID string, update *model.CaregiverUpdate) (*model.Caregiver, error) {
	if actorID != id {
		return nil, apperrors.Forbidden("only the caregiver can change this profile")
	}
	caregiver := &model.Caregiver{ID: id}
	if update.City != nil {
		caregiver.City = *update.City
	}
	if update.HourlyRate != nil {
		caregiver.HourlyRate = *update.HourlyRate
	}
	return caregiver, nil
}

func (m *mockDirectoryService) UpdateMember(ctx context.Context, id, actorID string, update *model.MemberUpdate) (*model.Member, error) {
	if m.updateMemberFunc != nil {
		return m.updateMemberFunc(id, actorID, update)
	}
	return &model.Member{ID: id}, nil
}

func (m *mockDirectoryService) GetPrimaryAddress(ctx context.Context, memberID, actorID string) (*model.Address, error) {
	if m.address == nil {
		return nil, apperrors.NotFound("Primary address")
	}
	return m.address, nil
}

func (m *mockDirectoryService) UpsertPrimaryAddress(ctx context.Context, memberID, actorID string, address *model.Address) (*model.Address, error) {
	m.address = address
	return address, nil
}

func (m *mockDirectoryService) DeletePrimaryAddress(ctx context.Context, memberID, actorID string) error {
	m.address = nil
	return nil
}

func newRouter(svc *mockDirectoryService) *httprouter.Router {
	router := httprouter.New()
	NewDirectoryHandler(svc, logger.Discard()).RegisterRoutes(router)
	return router
}

func get(router http.Handler, target string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, target, nil))
	return w
}

func send(router http.Handler, method, target, actorID, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if actorID != "" {
		req.Header.Set(httputil.HeaderUserID, actorID)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestSearchCaregivers(t *testing.T) {
	var received model.CaregiverFilter
	svc := &mockDirectoryService{
		searchFunc: func(filter model.CaregiverFilter, limit int, offset int64) ([]*model.Caregiver, int64, error) {
			received = filter
			return []*model.Caregiver{{ID: "c1"}}, 1, nil
		},
	}

	w := get(newRouter(svc), "/api/v1/caregivers?caregiving_type=babysitter&city=Astana&min_rate=10.5&max_rate=40&sort_by=given_name")

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, model.SortByGivenName, received.SortBy)
	assert.Equal(t, model.CaregivingBabysitter, received.CaregivingType)
	assert.Equal(t, "Astana", received.City)
	require.NotNil(t, received.MinRate)
	assert.Equal(t, "10.5", received.MinRate.String())
	require.NotNil(t, received.MaxRate)

	var page httputil.PaginatedResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &page))
	assert.Equal(t, int64(1), page.TotalCount)
}

func TestSearchCaregivers_BadRate(t *testing.T) {
	called := false
	svc := &mockDirectoryService{
		searchFunc: func(filter model.CaregiverFilter, limit int, offset int64) ([]*model.Caregiver, int64, error) {
			called = true
			return nil, 0, nil
		},
	}

	w := get(newRouter(svc), "/api/v1/caregivers?min_rate=cheap")

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.False(t, called)
}

func TestGetCaregiverAndMember(t *testing.T) {
	router := newRouter(&mockDirectoryService{})

	assert.Equal(t, http.StatusOK, get(router, "/api/v1/caregivers/c1").Code)
	assert.Equal(t, http.StatusNotFound, get(router, "/api/v1/caregivers/c9").Code)
	assert.Equal(t, http.StatusOK, get(router, "/api/v1/members/m1").Code)
	assert.Equal(t, http.StatusNotFound, get(router, "/api/v1/members/m9").Code)
}

func TestMeAlias(t *testing.T) {
	router := newRouter(&mockDirectoryService{})

	w := send(router, http.MethodGet, "/api/v1/members/me", "m1", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"id":"m1"`)

	w = send(router, http.MethodGet, "/api/v1/caregivers/me", "", "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestUpdateCaregiver(t *testing.T) {
	router := newRouter(&mockDirectoryService{})

	w := send(router, http.MethodPut, "/api/v1/caregivers/me", "c1", `{"city":"Almaty","hourly_rate":"32.5"}`)
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Data model.Caregiver `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "c1", resp.Data.ID)
	assert.Equal(t, "Almaty", resp.Data.City)
	assert.Equal(t, "32.5", resp.Data.HourlyRate.String())

	w = send(router, http.MethodPut, "/api/v1/caregivers/c1", "c2", `{"city":"Almaty"}`)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = send(router, http.MethodPut, "/api/v1/caregivers/c1", "c1", `{"city":`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestUpdateMember_PassesActorAndFields(t *testing.T) {
	var gotID, gotActor string
	var got *model.MemberUpdate
	router := newRouter(&mockDirectoryService{
		updateMemberFunc: func(id, actorID string, update *model.MemberUpdate) (*model.Member, error) {
			gotID, gotActor, got = id, actorID, update
			return &model.Member{ID: id, HouseRules: *update.HouseRules}, nil
		},
	})

	w := send(router, http.MethodPut, "/api/v1/members/me", "m1", `{"house_rules":"No pets"}`)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "m1", gotID)
	assert.Equal(t, "m1", gotActor)
	require.NotNil(t, got.HouseRules)
	assert.Nil(t, got.City)
}

func TestPrimaryAddressRoutes(t *testing.T) {
	router := newRouter(&mockDirectoryService{})

	assert.Equal(t, http.StatusNotFound, send(router, http.MethodGet, "/api/v1/members/me/address", "m1", "").Code)

	w := send(router, http.MethodPut, "/api/v1/members/me/address", "m1", `{"house_number":"12A","street":"Abay","town":"Almaty"}`)
	require.Equal(t, http.StatusOK, w.Code)

	w = send(router, http.MethodGet, "/api/v1/members/m1/address", "m1", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"street":"Abay"`)

	assert.Equal(t, http.StatusNoContent, send(router, http.MethodDelete, "/api/v1/members/me/address", "m1", "").Code)
	assert.Equal(t, http.StatusNoContent, send(router, http.MethodDelete, "/api/v1/members/me/address", "m1", "").Code)
	assert.Equal(t, http.StatusNotFound, send(router, http.MethodGet, "/api/v1/members/me/address", "m1", "").Code)
}
