package tribly

import (
	"context"
	"net/http"

	"github.com/tribly-hq/dashboard-cli/internal/apierr"
	"github.com/tribly-hq/dashboard-cli/internal/model"
)

// CreateAuthSessionRequest starts a GBP authorization session. The server
// mints the session id and opens a 30-minute validity window.
type CreateAuthSessionRequest struct {
	BusinessName  string `json:"business_name"`
	BusinessPhone string `json:"business_phone"`
	PlaceID       string `json:"place_id,omitempty"`
}

type createSessionEnvelope struct {
	Data struct {
		SessionID string `json:"session_id"`
	} `json:"data"`
}

// CreateAuthSession mints a new authorization session and returns its id.
func (c *httpClient) CreateAuthSession(ctx context.Context, req CreateAuthSessionRequest) (string, error) {
	var envelope createSessionEnvelope
	if err := c.do(ctx, http.MethodPost, "/dashboard/v1/gbp/auth-sessions", nil, req, false, &envelope); err != nil {
		return "", err
	}
	if envelope.Data.SessionID == "" {
		return "", &apierr.DecodeError{
			Endpoint: "/dashboard/v1/gbp/auth-sessions",
			Reason:   "missing data.session_id",
		}
	}
	return envelope.Data.SessionID, nil
}

type sessionStatusEnvelope struct {
	Data struct {
		Status            string `json:"status"`
		BusinessReviewURL string `json:"business_review_url"`
		BusinessEmail     string `json:"business_email"`
		ErrorMessage      string `json:"error_message"`
	} `json:"data"`
}

// AuthSessionStatus reads the current session state. The request is sent
// with cache-busting semantics so every poll reflects live server state.
func (c *httpClient) AuthSessionStatus(ctx context.Context, sessionID string) (*model.AuthSession, error) {
	path := "/dashboard/v1/gbp/auth-sessions/" + sessionID + "/status"
	var envelope sessionStatusEnvelope
	if err := c.do(ctx, http.MethodGet, path, nil, nil, true, &envelope); err != nil {
		return nil, err
	}
	if envelope.Data.Status == "" {
		return nil, &apierr.DecodeError{Endpoint: path, Reason: "missing data.status"}
	}
	return &model.AuthSession{
		SessionID:         sessionID,
		Status:            model.ParseSessionStatus(envelope.Data.Status),
		BusinessReviewURL: envelope.Data.BusinessReviewURL,
		BusinessEmail:     envelope.Data.BusinessEmail,
		ErrorMessage:      envelope.Data.ErrorMessage,
	}, nil
}
