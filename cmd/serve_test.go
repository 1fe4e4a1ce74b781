package main

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tribly-hq/dashboard-cli/internal/apierr"
	"github.com/tribly-hq/dashboard-cli/internal/model"
	"github.com/tribly-hq/dashboard-cli/internal/report"
	"github.com/tribly-hq/dashboard-cli/internal/store"
	"github.com/tribly-hq/dashboard-cli/pkg/tribly"
)

// fakeTribly scripts backend responses for router tests.
type fakeTribly struct {
	sessionID  string
	createErr  error
	status     *model.AuthSession
	statusErr  error
	page       *model.BusinessPage
	pageErr    error
	snap       *tribly.HealthSnapshot
	snapErr    error
	lastFilter model.BusinessFilter
}

func (f *fakeTribly) CreateAuthSession(_ context.Context, _ tribly.CreateAuthSessionRequest) (string, error) {
	return f.sessionID, f.createErr
}

func (f *fakeTribly) AuthSessionStatus(_ context.Context, _ string) (*model.AuthSession, error) {
	return f.status, f.statusErr
}

func (f *fakeTribly) OnboardedBusinesses(_ context.Context, filter model.BusinessFilter) (*model.BusinessPage, error) {
	f.lastFilter = filter
	return f.page, f.pageErr
}

func (f *fakeTribly) Login(_ context.Context, _, _ string) (*model.Credentials, error) {
	return nil, nil
}

func (f *fakeTribly) ResetPassword(_ context.Context, _ tribly.ResetPasswordRequest) error {
	return nil
}

func (f *fakeTribly) NearbyRank(_ context.Context, _ tribly.NearbyRankQuery) (*model.Top3InRadiusResult, error) {
	return &model.Top3InRadiusResult{InTop3: true, Rank: 1, TotalInRadius: 5, RadiusKm: 2}, nil
}

func (f *fakeTribly) HealthSnapshot(_ context.Context, _ string) (*tribly.HealthSnapshot, error) {
	return f.snap, f.snapErr
}

func testRouter(t *testing.T, client *fakeTribly) (http.Handler, store.Store) {
	t.Helper()
	st := store.NewMemory()
	return newRouter(client, st, report.NewBuilder(client, 0), "https://app.tribly.ai"), st
}

func TestServeHealth(t *testing.T) {
	router, _ := testRouter(t, &fakeTribly{})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))
}

func TestServeReport(t *testing.T) {
	client := &fakeTribly{
		snap: &tribly.HealthSnapshot{
			Metrics: model.Metrics{FetchedAt: time.Now()},
			Scores:  model.ScoreMap{model.MetricSEOScore: 85},
		},
	}
	router, _ := testRouter(t, client)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/report/place-1", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	var rep model.HealthReport
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &rep))
	assert.Equal(t, "place-1", rep.PlaceID)
	assert.Len(t, rep.Cards, len(model.AllMetricKeys))
}

func TestServeCreateAuthSession(t *testing.T) {
	client := &fakeTribly{sessionID: "abc123"}
	router, st := testRouter(t, client)

	body := bytes.NewBufferString(`{"business_name":"Cafe Noir","business_phone":"+911234567890"}`)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/v1/auth-sessions", body))

	require.Equal(t, http.StatusCreated, rec.Code)
	var resp map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "abc123", resp["session_id"])
	assert.Contains(t, resp["whatsapp_link"], "https://wa.me/911234567890?text=")
	link, err := url.Parse(resp["whatsapp_link"])
	require.NoError(t, err)
	text := link.Query().Get("text")
	assert.Contains(t, text, "session_id=abc123")
	assert.Contains(t, text, "business=Cafe%20Noir")

	// Session id persisted for resume.
	id, ok, err := st.AuthSessionID(context.Background(), "Cafe Noir")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "abc123", id)
}

func TestServeCreateAuthSessionValidation(t *testing.T) {
	router, _ := testRouter(t, &fakeTribly{sessionID: "abc123"})

	body := bytes.NewBufferString(`{"business_name":"Cafe Noir"}`)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/v1/auth-sessions", body))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "business_phone")
}

func TestServeSessionStatus(t *testing.T) {
	client := &fakeTribly{
		status: &model.AuthSession{SessionID: "abc123", Status: model.SessionCompleted},
	}
	router, _ := testRouter(t, client)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/auth-sessions/abc123/status", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	var session model.AuthSession
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &session))
	assert.Equal(t, model.SessionCompleted, session.Status)
}

func TestServeBackendErrorPassthrough(t *testing.T) {
	client := &fakeTribly{
		statusErr: &apierr.APIError{StatusCode: http.StatusNotFound, Message: "session not found"},
	}
	router, _ := testRouter(t, client)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/auth-sessions/missing/status", nil))

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), "session not found")
}

func TestServeBusinessesForwardsFilters(t *testing.T) {
	client := &fakeTribly{page: &model.BusinessPage{Total: 1, TotalPages: 1}}
	router, _ := testRouter(t, client)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/businesses?search=cafe&city=Mumbai&page=2", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "cafe", client.lastFilter.Search)
	assert.Equal(t, "Mumbai", client.lastFilter.City)
	assert.Equal(t, 2, client.lastFilter.Page)
	assert.Equal(t, 50, client.lastFilter.PageSize)
}

func TestServeActionItemDoneRoundtrip(t *testing.T) {
	router, st := testRouter(t, &fakeTribly{})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/v1/businesses/place-1/action-items/a1/done", nil))
	assert.Equal(t, http.StatusNoContent, rec.Code)

	done, err := st.DoneActionItems(context.Background(), "place-1")
	require.NoError(t, err)
	assert.Equal(t, []string{"a1"}, done)

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/api/v1/businesses/place-1/action-items/a1/done", nil))
	assert.Equal(t, http.StatusNoContent, rec.Code)

	done, err = st.DoneActionItems(context.Background(), "place-1")
	require.NoError(t, err)
	assert.Empty(t, done)
}

func TestServeRequestIDPreserved(t *testing.T) {
	router, _ := testRouter(t, &fakeTribly{})

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set("X-Request-ID", "req-42")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, "req-42", rec.Header().Get("X-Request-ID"))
}
