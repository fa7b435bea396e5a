package transport

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/opencivic/govcontacts/internal/domain/agency"
	"github.com/opencivic/govcontacts/internal/domain/contact"
	"github.com/stretchr/testify/require"
)

type stubContactService struct {
	listResult *contact.ListResult
	listErr    error
	resetErr   error
	lastUser   string
	lastReq    contact.ListRequest
	resetCalls int
}

func (s *stubContactService) List(_ context.Context, userID string, req contact.ListRequest) (*contact.ListResult, error) {
	s.lastUser = userID
	s.lastReq = req
	if s.listErr != nil {
		return nil, s.listErr
	}
	return s.listResult, nil
}

func (s *stubContactService) ResetLimit(_ context.Context, userID string) error {
	s.lastUser = userID
	s.resetCalls++
	return s.resetErr
}

type stubAgencyService struct {
	listResult *agency.ListResult
	listErr    error
	getResult  *agency.Agency
	getErr     error
}

func (s *stubAgencyService) List(_ context.Context, req agency.ListRequest) (*agency.ListResult, error) {
	if s.listErr != nil {
		return nil, s.listErr
	}
	return s.listResult, nil
}

func (s *stubAgencyService) Get(_ context.Context, id string) (*agency.Agency, error) {
	if s.getErr != nil {
		return nil, s.getErr
	}
	return s.getResult, nil
}

func newTestServer(contacts *stubContactService, agencies *stubAgencyService) http.Handler {
	resolver := &testResolver{tokenToUser: map[string]string{"valid": "user1"}}
	return NewServer(contacts, agencies, nil, AuthMiddleware(resolver), nil)
}

func doRequest(t *testing.T, handler http.Handler, method, target, token string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func TestHealthBypassesAuth(t *testing.T) {
	handler := newTestServer(&stubContactService{}, &stubAgencyService{})
	rec := doRequest(t, handler, http.MethodGet, "/health", "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "ok", rec.Body.String())
}

func TestListContacts_RequiresAuth(t *testing.T) {
	handler := newTestServer(&stubContactService{}, &stubAgencyService{})
	rec := doRequest(t, handler, http.MethodGet, "/contacts", "")
	require.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestListContacts_InvalidPagination(t *testing.T) {
	contacts := &stubContactService{}
	handler := newTestServer(contacts, &stubAgencyService{})

	for _, target := range []string{
		"/contacts?page=0",
		"/contacts?limit=0",
		"/contacts?limit=51",
		"/contacts?page=abc",
		"/contacts?limit=abc",
	} {
		rec := doRequest(t, handler, http.MethodGet, target, "valid")
		require.Equal(t, http.StatusBadRequest, rec.Code, "target %s", target)
	}

	// Rejected before the service runs: no state mutated.
	require.Empty(t, contacts.lastUser)
}

func TestListContacts_ResponseShape(t *testing.T) {
	contacts := &stubContactService{
		listResult: &contact.ListResult{
			Contacts:    []contact.Contact{{ID: "c1", FirstName: "Alice", LastName: "Nguyen"}},
			Total:       37,
			Page:        2,
			Limit:       10,
			ViewedToday: 11,
			Remaining:   39,
		},
	}
	handler := newTestServer(contacts, &stubAgencyService{})

	rec := doRequest(t, handler, http.MethodGet,
		"/contacts?page=2&limit=10&agencyName=Austin&search=ngu&sortBy=last_name&sortOrder=desc", "valid")
	require.Equal(t, http.StatusOK, rec.Code)

	require.Equal(t, "user1", contacts.lastUser)
	require.Equal(t, 2, contacts.lastReq.Page)
	require.Equal(t, 10, contacts.lastReq.Limit)
	require.Equal(t, "Austin", contacts.lastReq.AgencyName)
	require.Equal(t, "ngu", contacts.lastReq.Search)

	var body struct {
		Success       bool              `json:"success"`
		LimitExceeded bool              `json:"limitExceeded"`
		ViewedToday   int               `json:"viewedToday"`
		Remaining     int               `json:"remaining"`
		Data          []contact.Contact `json:"data"`
		Pagination    Pagination        `json:"pagination"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.True(t, body.Success)
	require.False(t, body.LimitExceeded)
	require.Equal(t, 11, body.ViewedToday)
	require.Equal(t, 39, body.Remaining)
	require.Len(t, body.Data, 1)
	require.Equal(t, 37, body.Pagination.Total)
	require.Equal(t, 4, body.Pagination.TotalPages)
	require.True(t, body.Pagination.HasNextPage)
	require.True(t, body.Pagination.HasPreviousPage)
}

func TestListContacts_LimitExceededIsStillOK(t *testing.T) {
	contacts := &stubContactService{
		listResult: &contact.ListResult{
			Contacts:      []contact.Contact{},
			Total:         100,
			Page:          1,
			Limit:         10,
			ViewedToday:   50,
			Remaining:     0,
			LimitExceeded: true,
			Message:       "You have reached your daily limit of 50 contacts. Upgrade your plan to view more.",
		},
	}
	handler := newTestServer(contacts, &stubAgencyService{})

	rec := doRequest(t, handler, http.MethodGet, "/contacts", "valid")
	require.Equal(t, http.StatusOK, rec.Code)

	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Equal(t, true, body["success"])
	require.Equal(t, true, body["limitExceeded"])
	require.Contains(t, body["message"], "daily limit")

	pagination, ok := body["pagination"].(map[string]any)
	require.True(t, ok)
	require.Equal(t, false, pagination["hasNextPage"])
}

func TestInternalErrorsAreGeneric(t *testing.T) {
	contacts := &stubContactService{listErr: errors.New("SQL logic error near line 3")}
	agencies := &stubAgencyService{listErr: errors.New("dial tcp: connection refused")}
	handler := newTestServer(contacts, agencies)

	for _, target := range []string{"/contacts", "/agencies"} {
		rec := doRequest(t, handler, http.MethodGet, target, "valid")
		require.Equal(t, http.StatusInternalServerError, rec.Code, "target %s", target)
		// The storage detail must never reach the client.
		require.NotContains(t, rec.Body.String(), "SQL logic error")
		require.NotContains(t, rec.Body.String(), "connection refused")
		require.Contains(t, rec.Body.String(), "Internal server error")
	}
}

func TestResetLimit(t *testing.T) {
	contacts := &stubContactService{}
	handler := newTestServer(contacts, &stubAgencyService{})

	rec := doRequest(t, handler, http.MethodPost, "/contacts/reset-limit", "valid")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, 1, contacts.resetCalls)
	require.Equal(t, "user1", contacts.lastUser)

	var body resetLimitResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.True(t, body.Success)
	require.NotEmpty(t, body.Message)
}

func TestListAgencies(t *testing.T) {
	agencies := &stubAgencyService{
		listResult: &agency.ListResult{
			Agencies: []agency.Agency{{ID: "a1", Name: "Austin Police Department"}},
			Total:    1,
			Page:     1,
			Limit:    10,
		},
	}
	handler := newTestServer(&stubContactService{}, agencies)

	rec := doRequest(t, handler, http.MethodGet, "/agencies?state=TX", "valid")
	require.Equal(t, http.StatusOK, rec.Code)

	var body agencyListResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.True(t, body.Success)
	require.Len(t, body.Data, 1)
	require.Equal(t, 1, body.Pagination.TotalPages)
	require.False(t, body.Pagination.HasNextPage)
}

func TestListAgencies_LimitBound(t *testing.T) {
	agencies := &stubAgencyService{listResult: &agency.ListResult{Page: 1, Limit: 100}}
	handler := newTestServer(&stubContactService{}, agencies)

	rec := doRequest(t, handler, http.MethodGet, "/agencies?limit=101", "valid")
	require.Equal(t, http.StatusBadRequest, rec.Code)

	// The agencies endpoint allows up to 100 per page.
	rec = doRequest(t, handler, http.MethodGet, "/agencies?limit=100", "valid")
	require.Equal(t, http.StatusOK, rec.Code)
}

func TestGetAgency_NotFound(t *testing.T) {
	agencies := &stubAgencyService{getErr: agency.ErrAgencyNotFound}
	handler := newTestServer(&stubContactService{}, agencies)

	rec := doRequest(t, handler, http.MethodGet, "/agencies/missing", "valid")
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestGetAgency(t *testing.T) {
	agencies := &stubAgencyService{getResult: &agency.Agency{ID: "a1", Name: "Austin Police Department"}}
	handler := newTestServer(&stubContactService{}, agencies)

	rec := doRequest(t, handler, http.MethodGet, "/agencies/a1", "valid")
	require.Equal(t, http.StatusOK, rec.Code)

	var body agencyResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.True(t, body.Success)
	require.Equal(t, "a1", body.Data.ID)
}
