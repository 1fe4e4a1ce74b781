package main

import (
	"context"
	"net/http"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/tribly-hq/dashboard-cli/internal/report"
	"github.com/tribly-hq/dashboard-cli/internal/store"
	"github.com/tribly-hq/dashboard-cli/pkg/tribly"
)

// appEnv bundles the wired store, backend client, and report builder
// shared by every command.
type appEnv struct {
	Store   store.Store
	Client  tribly.Client
	Builder *report.Builder
}

func initApp(ctx context.Context, mode string) (*appEnv, error) {
	if err := cfg.Validate(mode); err != nil {
		return nil, err
	}

	st, err := initStore(ctx)
	if err != nil {
		return nil, err
	}
	if err := st.Migrate(ctx); err != nil {
		st.Close() //nolint:errcheck
		return nil, eris.Wrap(err, "migrate store")
	}

	token := cfg.Tribly.Token
	if token == "" {
		// Fall back to the stored login session.
		if creds, ok, err := st.Credentials(ctx); err != nil {
			zap.L().Warn("read stored credentials", zap.Error(err))
		} else if ok {
			token = creds.Token
		}
	}

	client := tribly.NewClient(
		tribly.WithBaseURL(cfg.Tribly.BaseURL),
		tribly.WithToken(token),
		tribly.WithRateLimit(cfg.Tribly.RequestsPerSec, cfg.Tribly.Burst),
		tribly.WithHTTPClient(&http.Client{Timeout: time.Duration(cfg.Tribly.TimeoutSecs) * time.Second}),
	)

	return &appEnv{
		Store:   st,
		Client:  client,
		Builder: report.NewBuilder(client, cfg.App.NearbyRadiusM),
	}, nil
}

func (e *appEnv) Close() {
	if err := e.Store.Close(); err != nil {
		zap.L().Warn("close store", zap.Error(err))
	}
}

func initStore(ctx context.Context) (store.Store, error) {
	switch cfg.Store.Driver {
	case "sqlite":
		return store.NewSQLite(cfg.Store.Path)
	case "postgres":
		return store.NewPostgres(ctx, cfg.Store.DatabaseURL, nil)
	default:
		return nil, eris.Errorf("unsupported store driver: %s", cfg.Store.Driver)
	}
}
