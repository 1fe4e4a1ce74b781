package store

import (
	"context"
	"database/sql"
	"time"

	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"

	"github.com/tribly-hq/dashboard-cli/internal/model"
)

// SQLiteStore implements Store using modernc.org/sqlite. It is the
// default driver for single-user installs.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLite opens a SQLite database at the given path and configures WAL mode.
func NewSQLite(dsn string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: open")
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, eris.Wrapf(err, "sqlite: exec %s", pragma)
		}
	}
	return &SQLiteStore{db: db}, nil
}

const sqliteMigration = `
CREATE TABLE IF NOT EXISTS auth_sessions (
	business_key TEXT PRIMARY KEY,
	session_id   TEXT NOT NULL,
	created_at   DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE TABLE IF NOT EXISTS connections (
	business_key TEXT PRIMARY KEY,
	review_url   TEXT NOT NULL DEFAULT '',
	email        TEXT NOT NULL DEFAULT '',
	connected_at DATETIME NOT NULL
);

CREATE TABLE IF NOT EXISTS done_action_items (
	business_key TEXT NOT NULL,
	item_id      TEXT NOT NULL,
	done_at      DATETIME NOT NULL DEFAULT (datetime('now')),
	PRIMARY KEY (business_key, item_id)
);

CREATE TABLE IF NOT EXISTS credentials (
	singleton  INTEGER PRIMARY KEY CHECK (singleton = 1),
	token      TEXT NOT NULL,
	email      TEXT NOT NULL,
	name       TEXT NOT NULL DEFAULT '',
	role       TEXT NOT NULL DEFAULT '',
	saved_at   DATETIME NOT NULL
);
`

// Migrate applies the schema.
func (s *SQLiteStore) Migrate(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, sqliteMigration); err != nil {
		return eris.Wrap(err, "sqlite: migrate")
	}
	return nil
}

func (s *SQLiteStore) SaveAuthSession(ctx context.Context, businessKey, sessionID string) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO auth_sessions (business_key, session_id) VALUES (?, ?)
		 ON CONFLICT(business_key) DO UPDATE SET session_id = excluded.session_id, created_at = datetime('now')`,
		businessKey, sessionID)
	if err != nil {
		return eris.Wrap(err, "sqlite: save auth session")
	}
	return nil
}

func (s *SQLiteStore) AuthSessionID(ctx context.Context, businessKey string) (string, bool, error) {
	var id string
	err := s.db.QueryRowContext(ctx,
		`SELECT session_id FROM auth_sessions WHERE business_key = ?`, businessKey).Scan(&id)
	if err == sql.ErrNoRows {
		return "", false, nil
	}
	if err != nil {
		return "", false, eris.Wrap(err, "sqlite: get auth session")
	}
	return id, true, nil
}

func (s *SQLiteStore) ClearAuthSession(ctx context.Context, businessKey string) error {
	if _, err := s.db.ExecContext(ctx,
		`DELETE FROM auth_sessions WHERE business_key = ?`, businessKey); err != nil {
		return eris.Wrap(err, "sqlite: clear auth session")
	}
	return nil
}

func (s *SQLiteStore) SetConnected(ctx context.Context, businessKey string, info ConnectedInfo) error {
	connectedAt := info.ConnectedAt
	if connectedAt.IsZero() {
		connectedAt = time.Now().UTC()
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO connections (business_key, review_url, email, connected_at) VALUES (?, ?, ?, ?)
		 ON CONFLICT(business_key) DO UPDATE SET review_url = excluded.review_url, email = excluded.email, connected_at = excluded.connected_at`,
		businessKey, info.ReviewURL, info.Email, connectedAt)
	if err != nil {
		return eris.Wrap(err, "sqlite: set connected")
	}
	return nil
}

func (s *SQLiteStore) Connected(ctx context.Context, businessKey string) (*ConnectedInfo, bool, error) {
	var info ConnectedInfo
	err := s.db.QueryRowContext(ctx,
		`SELECT review_url, email, connected_at FROM connections WHERE business_key = ?`,
		businessKey).Scan(&info.ReviewURL, &info.Email, &info.ConnectedAt)
	if err == sql.ErrNoRows {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, eris.Wrap(err, "sqlite: get connected")
	}
	return &info, true, nil
}

func (s *SQLiteStore) MarkActionItemDone(ctx context.Context, businessKey, itemID string) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO done_action_items (business_key, item_id) VALUES (?, ?)
		 ON CONFLICT(business_key, item_id) DO NOTHING`,
		businessKey, itemID)
	if err != nil {
		return eris.Wrap(err, "sqlite: mark action item done")
	}
	return nil
}

func (s *SQLiteStore) UndoActionItemDone(ctx context.Context, businessKey, itemID string) error {
	if _, err := s.db.ExecContext(ctx,
		`DELETE FROM done_action_items WHERE business_key = ? AND item_id = ?`,
		businessKey, itemID); err != nil {
		return eris.Wrap(err, "sqlite: undo action item")
	}
	return nil
}

func (s *SQLiteStore) DoneActionItems(ctx context.Context, businessKey string) ([]string, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT item_id FROM done_action_items WHERE business_key = ? ORDER BY done_at`, businessKey)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list done action items")
	}
	defer rows.Close() //nolint:errcheck

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan done action item")
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func (s *SQLiteStore) SaveCredentials(ctx context.Context, creds model.Credentials) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO credentials (singleton, token, email, name, role, saved_at) VALUES (1, ?, ?, ?, ?, ?)
		 ON CONFLICT(singleton) DO UPDATE SET token = excluded.token, email = excluded.email, name = excluded.name, role = excluded.role, saved_at = excluded.saved_at`,
		creds.Token, creds.Email, creds.Name, creds.Role, time.Now().UTC())
	if err != nil {
		return eris.Wrap(err, "sqlite: save credentials")
	}
	return nil
}

func (s *SQLiteStore) Credentials(ctx context.Context) (*model.Credentials, bool, error) {
	var creds model.Credentials
	err := s.db.QueryRowContext(ctx,
		`SELECT token, email, name, role FROM credentials WHERE singleton = 1`).
		Scan(&creds.Token, &creds.Email, &creds.Name, &creds.Role)
	if err == sql.ErrNoRows {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, eris.Wrap(err, "sqlite: get credentials")
	}
	return &creds, true, nil
}

func (s *SQLiteStore) ClearCredentials(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM credentials WHERE singleton = 1`); err != nil {
		return eris.Wrap(err, "sqlite: clear credentials")
	}
	return nil
}

// Close closes the underlying database.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
