package store

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rotisserie/eris"

	"github.com/tribly-hq/dashboard-cli/internal/model"
)

// Pool is the subset of pgxpool.Pool the store uses; pgxmock satisfies
// it for unit tests.
type Pool interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Ping(ctx context.Context) error
	Close()
}

// PostgresStore implements Store using pgxpool, for shared team
// deployments where several salespeople work against one state database.
type PostgresStore struct {
	pool Pool
}

// PoolConfig holds optional connection pool tuning parameters.
type PoolConfig struct {
	MaxConns int32 `yaml:"max_conns" mapstructure:"max_conns"`
	MinConns int32 `yaml:"min_conns" mapstructure:"min_conns"`
}

// NewPostgres creates a PostgresStore with a connection pool.
func NewPostgres(ctx context.Context, connString string, poolCfg *PoolConfig) (*PostgresStore, error) {
	pgxCfg, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: parse config")
	}

	maxConns := int32(5)
	minConns := int32(1)
	if poolCfg != nil {
		if poolCfg.MaxConns > 0 {
			maxConns = poolCfg.MaxConns
		}
		if poolCfg.MinConns > 0 {
			minConns = poolCfg.MinConns
		}
	}
	pgxCfg.MaxConns = maxConns
	pgxCfg.MinConns = minConns
	pgxCfg.MaxConnLifetime = 30 * time.Minute
	pgxCfg.MaxConnIdleTime = 5 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, pgxCfg)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: create pool")
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, eris.Wrap(err, "postgres: ping")
	}
	return &PostgresStore{pool: pool}, nil
}

const postgresMigration = `
CREATE TABLE IF NOT EXISTS auth_sessions (
	business_key TEXT PRIMARY KEY,
	session_id   TEXT NOT NULL,
	created_at   TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS connections (
	business_key TEXT PRIMARY KEY,
	review_url   TEXT NOT NULL DEFAULT '',
	email        TEXT NOT NULL DEFAULT '',
	connected_at TIMESTAMPTZ NOT NULL
);

CREATE TABLE IF NOT EXISTS done_action_items (
	business_key TEXT NOT NULL,
	item_id      TEXT NOT NULL,
	done_at      TIMESTAMPTZ NOT NULL DEFAULT now(),
	PRIMARY KEY (business_key, item_id)
);

CREATE TABLE IF NOT EXISTS credentials (
	singleton  INT PRIMARY KEY CHECK (singleton = 1),
	token      TEXT NOT NULL,
	email      TEXT NOT NULL,
	name       TEXT NOT NULL DEFAULT '',
	role       TEXT NOT NULL DEFAULT '',
	saved_at   TIMESTAMPTZ NOT NULL
);
`

// Migrate applies the schema.
func (s *PostgresStore) Migrate(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, postgresMigration); err != nil {
		return eris.Wrap(err, "postgres: migrate")
	}
	return nil
}

func (s *PostgresStore) SaveAuthSession(ctx context.Context, businessKey, sessionID string) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO auth_sessions (business_key, session_id) VALUES ($1, $2)
		 ON CONFLICT (business_key) DO UPDATE SET session_id = EXCLUDED.session_id, created_at = now()`,
		businessKey, sessionID)
	if err != nil {
		return eris.Wrap(err, "postgres: save auth session")
	}
	return nil
}

func (s *PostgresStore) AuthSessionID(ctx context.Context, businessKey string) (string, bool, error) {
	var id string
	err := s.pool.QueryRow(ctx,
		`SELECT session_id FROM auth_sessions WHERE business_key = $1`, businessKey).Scan(&id)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, eris.Wrap(err, "postgres: get auth session")
	}
	return id, true, nil
}

func (s *PostgresStore) ClearAuthSession(ctx context.Context, businessKey string) error {
	if _, err := s.pool.Exec(ctx,
		`DELETE FROM auth_sessions WHERE business_key = $1`, businessKey); err != nil {
		return eris.Wrap(err, "postgres: clear auth session")
	}
	return nil
}

func (s *PostgresStore) SetConnected(ctx context.Context, businessKey string, info ConnectedInfo) error {
	connectedAt := info.ConnectedAt
	if connectedAt.IsZero() {
		connectedAt = time.Now().UTC()
	}
	_, err := s.pool.Exec(ctx,
		`INSERT INTO connections (business_key, review_url, email, connected_at) VALUES ($1, $2, $3, $4)
		 ON CONFLICT (business_key) DO UPDATE SET review_url = EXCLUDED.review_url, email = EXCLUDED.email, connected_at = EXCLUDED.connected_at`,
		businessKey, info.ReviewURL, info.Email, connectedAt)
	if err != nil {
		return eris.Wrap(err, "postgres: set connected")
	}
	return nil
}

func (s *PostgresStore) Connected(ctx context.Context, businessKey string) (*ConnectedInfo, bool, error) {
	var info ConnectedInfo
	err := s.pool.QueryRow(ctx,
		`SELECT review_url, email, connected_at FROM connections WHERE business_key = $1`,
		businessKey).Scan(&info.ReviewURL, &info.Email, &info.ConnectedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, eris.Wrap(err, "postgres: get connected")
	}
	return &info, true, nil
}

func (s *PostgresStore) MarkActionItemDone(ctx context.Context, businessKey, itemID string) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO done_action_items (business_key, item_id) VALUES ($1, $2)
		 ON CONFLICT (business_key, item_id) DO NOTHING`,
		businessKey, itemID)
	if err != nil {
		return eris.Wrap(err, "postgres: mark action item done")
	}
	return nil
}

func (s *PostgresStore) UndoActionItemDone(ctx context.Context, businessKey, itemID string) error {
	if _, err := s.pool.Exec(ctx,
		`DELETE FROM done_action_items WHERE business_key = $1 AND item_id = $2`,
		businessKey, itemID); err != nil {
		return eris.Wrap(err, "postgres: undo action item")
	}
	return nil
}

func (s *PostgresStore) DoneActionItems(ctx context.Context, businessKey string) ([]string, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT item_id FROM done_action_items WHERE business_key = $1 ORDER BY done_at`, businessKey)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list done action items")
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, eris.Wrap(err, "postgres: scan done action item")
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func (s *PostgresStore) SaveCredentials(ctx context.Context, creds model.Credentials) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO credentials (singleton, token, email, name, role, saved_at) VALUES (1, $1, $2, $3, $4, $5)
		 ON CONFLICT (singleton) DO UPDATE SET token = EXCLUDED.token, email = EXCLUDED.email, name = EXCLUDED.name, role = EXCLUDED.role, saved_at = EXCLUDED.saved_at`,
		creds.Token, creds.Email, creds.Name, creds.Role, time.Now().UTC())
	if err != nil {
		return eris.Wrap(err, "postgres: save credentials")
	}
	return nil
}

func (s *PostgresStore) Credentials(ctx context.Context) (*model.Credentials, bool, error) {
	var creds model.Credentials
	err := s.pool.QueryRow(ctx,
		`SELECT token, email, name, role FROM credentials WHERE singleton = 1`).
		Scan(&creds.Token, &creds.Email, &creds.Name, &creds.Role)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, eris.Wrap(err, "postgres: get credentials")
	}
	return &creds, true, nil
}

func (s *PostgresStore) ClearCredentials(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, `DELETE FROM credentials WHERE singleton = 1`); err != nil {
		return eris.Wrap(err, "postgres: clear credentials")
	}
	return nil
}

// Close releases the connection pool.
func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}
