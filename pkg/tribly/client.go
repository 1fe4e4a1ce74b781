// Package tribly provides REST access to the tribly dashboard backend.
package tribly

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/rotisserie/eris"
	"golang.org/x/time/rate"

	"github.com/tribly-hq/dashboard-cli/internal/apierr"
	"github.com/tribly-hq/dashboard-cli/internal/model"
)

const defaultBaseURL = "https://api.tribly.ai"

// Client performs tribly dashboard API operations.
type Client interface {
	CreateAuthSession(ctx context.Context, req CreateAuthSessionRequest) (string, error)
	AuthSessionStatus(ctx context.Context, sessionID string) (*model.AuthSession, error)
	OnboardedBusinesses(ctx context.Context, filter model.BusinessFilter) (*model.BusinessPage, error)
	Login(ctx context.Context, email, password string) (*model.Credentials, error)
	ResetPassword(ctx context.Context, req ResetPasswordRequest) error
	NearbyRank(ctx context.Context, q NearbyRankQuery) (*model.Top3InRadiusResult, error)
	HealthSnapshot(ctx context.Context, placeID string) (*HealthSnapshot, error)
}

// Option configures the client.
type Option func(*httpClient)

// WithBaseURL overrides the default API base URL.
func WithBaseURL(u string) Option {
	return func(c *httpClient) {
		c.baseURL = u
	}
}

// WithHTTPClient overrides the default http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *httpClient) {
		c.http = hc
	}
}

// WithToken sets the bearer token sent on every request.
func WithToken(token string) Option {
	return func(c *httpClient) {
		c.token = token
	}
}

// WithRateLimit sets a per-second rate limit for backend calls with
// the given burst allowance. A burst below 1 is raised to 1.
func WithRateLimit(rps float64, burst int) Option {
	return func(c *httpClient) {
		if rps > 0 {
			c.limiter = rate.NewLimiter(rate.Limit(rps), max(burst, 1))
		}
	}
}

// WithClock overrides the time source used for cache-buster params.
func WithClock(now func() time.Time) Option {
	return func(c *httpClient) {
		c.now = now
	}
}

type httpClient struct {
	baseURL string
	token   string
	http    *http.Client
	limiter *rate.Limiter
	now     func() time.Time
}

// NewClient creates a tribly dashboard API client.
func NewClient(opts ...Option) Client {
	c := &httpClient{
		baseURL: defaultBaseURL,
		http: &http.Client{
			Timeout: 15 * time.Second,
		},
		now: time.Now,
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

func (c *httpClient) wait(ctx context.Context) error {
	if c.limiter == nil {
		return nil
	}
	return c.limiter.Wait(ctx)
}

// do issues one request and decodes a 2xx JSON body into out (when out is
// non-nil). Non-2xx responses with a structured {message} body become
// *apierr.APIError carrying the backend message verbatim.
func (c *httpClient) do(ctx context.Context, method, path string, query url.Values, body any, noCache bool, out any) error {
	if err := c.wait(ctx); err != nil {
		return eris.Wrap(err, "tribly: rate limit")
	}

	u := c.baseURL + path
	if noCache {
		// Cache-busting: each poll must reflect current server state.
		if query == nil {
			query = url.Values{}
		}
		query.Set("_t", strconv.FormatInt(c.now().UnixNano(), 10))
	}
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return eris.Wrap(err, "tribly: marshal request")
		}
		reader = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, reader)
	if err != nil {
		return eris.Wrap(err, "tribly: create request")
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	if noCache {
		req.Header.Set("Cache-Control", "no-cache")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return eris.Wrap(err, "tribly: send request")
	}
	defer resp.Body.Close() //nolint:errcheck

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return eris.Wrap(err, "tribly: read response")
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &apierr.APIError{
			StatusCode: resp.StatusCode,
			Message:    errorMessage(respBody),
		}
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(respBody, out); err != nil {
		return &apierr.DecodeError{Endpoint: path, Reason: err.Error()}
	}
	return nil
}

// errorMessage extracts the structured {message} field from an error
// body, falling back to the raw body when the shape is unexpected.
func errorMessage(body []byte) string {
	var envelope struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(body, &envelope); err == nil && envelope.Message != "" {
		return envelope.Message
	}
	return string(bytes.TrimSpace(body))
}
