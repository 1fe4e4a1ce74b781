package tribly

import (
	"context"
	"net/http"

	"github.com/tribly-hq/dashboard-cli/internal/apierr"
	"github.com/tribly-hq/dashboard-cli/internal/model"
)

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginEnvelope struct {
	Data struct {
		Token string `json:"token"`
		Email string `json:"email"`
		Name  string `json:"name"`
		Role  string `json:"role"`
	} `json:"data"`
}

// Login exchanges credentials for a bearer token.
func (c *httpClient) Login(ctx context.Context, email, password string) (*model.Credentials, error) {
	path := "/dashboard/v1/business_qr/login"
	var envelope loginEnvelope
	if err := c.do(ctx, http.MethodPost, path, nil, loginRequest{Email: email, Password: password}, false, &envelope); err != nil {
		return nil, err
	}
	if envelope.Data.Token == "" {
		return nil, &apierr.DecodeError{Endpoint: path, Reason: "missing data.token"}
	}
	return &model.Credentials{
		Token: envelope.Data.Token,
		Email: envelope.Data.Email,
		Name:  envelope.Data.Name,
		Role:  envelope.Data.Role,
	}, nil
}

// ResetPasswordRequest carries a password reset. NewPassword must already
// be validated client-side; the confirmation never leaves the client.
type ResetPasswordRequest struct {
	Email       string `json:"email"`
	PIN         string `json:"pin"`
	NewPassword string `json:"new_password"`
}

// ResetPassword completes a PIN-based password reset.
func (c *httpClient) ResetPassword(ctx context.Context, req ResetPasswordRequest) error {
	return c.do(ctx, http.MethodPost, "/dashboard/v1/business_qr/reset-password", nil, req, false, nil)
}
