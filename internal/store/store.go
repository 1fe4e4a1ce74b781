// Package store persists the dashboard's durable client state: pending
// authorization session ids, per-business connected flags, completed
// action items, and the signed-in user's credentials. It replaces the
// browser-storage approach with an injected repository so state is never
// canonical on the client beyond resume hints.
package store

import (
	"context"
	"time"

	"github.com/tribly-hq/dashboard-cli/internal/model"
)

// ConnectedInfo records a completed GBP connection for a business,
// keyed by place id or business name.
type ConnectedInfo struct {
	ReviewURL   string    `json:"review_url,omitempty"`
	Email       string    `json:"email,omitempty"`
	ConnectedAt time.Time `json:"connected_at"`
}

// Store defines the persistence interface for dashboard client state.
type Store interface {
	// Authorization sessions (resume hints, cleared on terminal failure).
	SaveAuthSession(ctx context.Context, businessKey, sessionID string) error
	AuthSessionID(ctx context.Context, businessKey string) (string, bool, error)
	ClearAuthSession(ctx context.Context, businessKey string) error

	// Connected flags.
	SetConnected(ctx context.Context, businessKey string, info ConnectedInfo) error
	Connected(ctx context.Context, businessKey string) (*ConnectedInfo, bool, error)

	// Action-item done checklist.
	MarkActionItemDone(ctx context.Context, businessKey, itemID string) error
	UndoActionItemDone(ctx context.Context, businessKey, itemID string) error
	DoneActionItems(ctx context.Context, businessKey string) ([]string, error)

	// Stored user session.
	SaveCredentials(ctx context.Context, creds model.Credentials) error
	Credentials(ctx context.Context) (*model.Credentials, bool, error)
	ClearCredentials(ctx context.Context) error

	// Lifecycle
	Migrate(ctx context.Context) error
	Close() error
}
