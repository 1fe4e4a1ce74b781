package tribly

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tribly-hq/dashboard-cli/internal/apierr"
	"github.com/tribly-hq/dashboard-cli/internal/model"
)

func TestCreateAuthSession_Success(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/dashboard/v1/gbp/auth-sessions", r.URL.Path)
		assert.Equal(t, "Bearer tok-1", r.Header.Get("Authorization"))

		var body CreateAuthSessionRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "Cafe Noir", body.BusinessName)
		assert.Equal(t, "+911234567890", body.BusinessPhone)

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"data":{"session_id":"abc123"}}`))
	}))
	defer srv.Close()

	client := NewClient(WithBaseURL(srv.URL), WithToken("tok-1"))
	id, err := client.CreateAuthSession(context.Background(), CreateAuthSessionRequest{
		BusinessName:  "Cafe Noir",
		BusinessPhone: "+911234567890",
	})

	require.NoError(t, err)
	assert.Equal(t, "abc123", id)
}

func TestCreateAuthSession_MissingID(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"data":{}}`))
	}))
	defer srv.Close()

	client := NewClient(WithBaseURL(srv.URL))
	_, err := client.CreateAuthSession(context.Background(), CreateAuthSessionRequest{BusinessName: "x"})

	require.Error(t, err)
	assert.True(t, apierr.IsDecode(err))
}

func TestAuthSessionStatus_CacheBusting(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/dashboard/v1/gbp/auth-sessions/abc123/status", r.URL.Path)
		assert.Equal(t, "no-cache", r.Header.Get("Cache-Control"))
		assert.NotEmpty(t, r.URL.Query().Get("_t"))

		_, _ = w.Write([]byte(`{"data":{"status":"  Completed ","business_review_url":"https://g.page/r/x","business_email":"owner@cafenoir.in"}}`))
	}))
	defer srv.Close()

	client := NewClient(WithBaseURL(srv.URL))
	session, err := client.AuthSessionStatus(context.Background(), "abc123")

	require.NoError(t, err)
	assert.Equal(t, model.SessionCompleted, session.Status)
	assert.Equal(t, "https://g.page/r/x", session.BusinessReviewURL)
	assert.Equal(t, "owner@cafenoir.in", session.BusinessEmail)
	assert.True(t, session.Status.Terminal())
}

func TestAuthSessionStatus_UnknownStatusMapsToError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"data":{"status":"weird","error_message":"backend hiccup"}}`))
	}))
	defer srv.Close()

	client := NewClient(WithBaseURL(srv.URL))
	session, err := client.AuthSessionStatus(context.Background(), "abc123")

	require.NoError(t, err)
	assert.Equal(t, model.SessionError, session.Status)
	assert.Equal(t, "backend hiccup", session.ErrorMessage)
}

func TestAuthSessionStatus_APIErrorVerbatimMessage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"message":"session not found"}`))
	}))
	defer srv.Close()

	client := NewClient(WithBaseURL(srv.URL))
	_, err := client.AuthSessionStatus(context.Background(), "nope")

	require.Error(t, err)
	ae, ok := apierr.AsAPIError(err)
	require.True(t, ok)
	assert.Equal(t, http.StatusNotFound, ae.StatusCode)
	assert.Equal(t, "session not found", ae.Message)
	assert.False(t, apierr.IsTransient(err))
}

func TestOnboardedBusinesses_ForwardsFilters(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		assert.Equal(t, "cafe", q.Get("search"))
		assert.Equal(t, "Restaurants", q.Get("category"))
		assert.Equal(t, "active", q.Get("status_filter"))
		assert.Equal(t, "Pune", q.Get("city"))
		assert.Equal(t, "2", q.Get("page"))
		assert.Equal(t, "25", q.Get("page_size"))

		_, _ = w.Write([]byte(`{
			"status": "success",
			"data": [{"id":"b1","name":"Cafe Noir","city":"Pune","category":"Restaurants"}],
			"total": 51,
			"total_pages": 3,
			"filter_options": {"categories":["Restaurants"],"cities":["Pune"],"areas":["Koregaon Park"],"onboarded_by":["ravi"]}
		}`))
	}))
	defer srv.Close()

	client := NewClient(WithBaseURL(srv.URL))
	page, err := client.OnboardedBusinesses(context.Background(), model.BusinessFilter{
		Search:       "cafe",
		Category:     "Restaurants",
		StatusFilter: "active",
		City:         "Pune",
		Page:         2,
		PageSize:     25,
	})

	require.NoError(t, err)
	require.Len(t, page.Businesses, 1)
	assert.Equal(t, "Cafe Noir", page.Businesses[0].Name)
	assert.Equal(t, 51, page.Total)
	assert.Equal(t, 3, page.TotalPages)
	assert.Equal(t, []string{"Pune"}, page.FilterOptions.Cities)
}

func TestLogin_Success(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/dashboard/v1/business_qr/login", r.URL.Path)
		var body loginRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "sales@tribly.ai", body.Email)

		_, _ = w.Write([]byte(`{"data":{"token":"jwt-1","email":"sales@tribly.ai","role":"sales"}}`))
	}))
	defer srv.Close()

	client := NewClient(WithBaseURL(srv.URL))
	creds, err := client.Login(context.Background(), "sales@tribly.ai", "s3cret")

	require.NoError(t, err)
	assert.Equal(t, "jwt-1", creds.Token)
	assert.Equal(t, "sales", creds.Role)
}

func TestResetPassword_BadPINSurfacedVerbatim(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"message":"invalid PIN"}`))
	}))
	defer srv.Close()

	client := NewClient(WithBaseURL(srv.URL))
	err := client.ResetPassword(context.Background(), ResetPasswordRequest{Email: "x@y.z", PIN: "0000", NewPassword: "pw"})

	require.Error(t, err)
	ae, ok := apierr.AsAPIError(err)
	require.True(t, ok)
	assert.Equal(t, "invalid PIN", ae.Message)
}

func TestNearbyRank_Fallback(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		assert.Equal(t, "place-1", q.Get("place_id"))
		assert.Equal(t, "2000", q.Get("radius_m"))
		assert.Equal(t, "4", q.Get("search_rank"))

		_, _ = w.Write([]byte(`{"in_top_3":false,"rank":4,"total_in_radius":0,"radius_km":2,"message":"estimated from search rank","fallback":true}`))
	}))
	defer srv.Close()

	client := NewClient(WithBaseURL(srv.URL))
	res, err := client.NearbyRank(context.Background(), NearbyRankQuery{PlaceID: "place-1", RadiusM: 2000, SearchRank: 4})

	require.NoError(t, err)
	assert.False(t, res.InTop3)
	assert.Equal(t, 4, res.Rank)
	assert.True(t, res.Fallback)
}

func TestHealthSnapshot_Success(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/dashboard/v1/gbp/businesses/place-1/health", r.URL.Path)
		_, _ = w.Write([]byte(`{"data":{
			"metrics": {"search_rank": 3, "profile_completion_percent": 85},
			"metric_scores": {"searchRank": 88},
			"action_items": [
				{"id":"a1","priority":"high","title":"Reply to reviews","description":"12 reviews unanswered"},
				{"id":"a2","priority":"low","title":"Add photos","description":"Only 4 photos"}
			]
		}}`))
	}))
	defer srv.Close()

	client := NewClient(WithBaseURL(srv.URL))
	snap, err := client.HealthSnapshot(context.Background(), "place-1")

	require.NoError(t, err)
	require.NotNil(t, snap.Metrics.SearchRank)
	assert.InDelta(t, 3, *snap.Metrics.SearchRank, 0.001)
	assert.InDelta(t, 88, snap.Scores[model.MetricSearchRank], 0.001)
	// Insertion order preserved.
	require.Len(t, snap.ActionItems, 2)
	assert.Equal(t, "a1", snap.ActionItems[0].ID)
	assert.Equal(t, "a2", snap.ActionItems[1].ID)
}

func TestHealthSnapshot_DecodeError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"data":{}}`))
	}))
	defer srv.Close()

	client := NewClient(WithBaseURL(srv.URL))
	_, err := client.HealthSnapshot(context.Background(), "place-1")

	require.Error(t, err)
	assert.True(t, apierr.IsDecode(err))
}

func TestTransportErrorIsTransient(t *testing.T) {
	client := NewClient(WithBaseURL("http://127.0.0.1:1")) // nothing listening
	_, err := client.AuthSessionStatus(context.Background(), "abc123")

	require.Error(t, err)
	assert.True(t, apierr.IsTransient(err))
}

func TestWithRateLimit_BurstAllowance(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"data":{"status":"pending"}}`))
	}))
	defer srv.Close()

	// 1 token per 1000s: only the configured burst is available up front.
	client := NewClient(WithBaseURL(srv.URL), WithRateLimit(0.001, 2))

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	for i := 0; i < 2; i++ {
		_, err := client.AuthSessionStatus(ctx, "abc123")
		require.NoError(t, err, "request %d should ride the burst", i+1)
	}

	// The third request needs a fresh token; the limiter reports the
	// wait would outlive the deadline without sleeping it out.
	_, err := client.AuthSessionStatus(ctx, "abc123")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "rate limit")
}
