package state

import (
	"context"
	"database/sql"

	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"
)

// SQLiteTracker implements Tracker using modernc.org/sqlite. Useful when the
// extractor runs on a box with local disk and the state file churn in the
// blob store is unwanted.
type SQLiteTracker struct {
	db *sql.DB
}

// NewSQLite opens a SQLite database at the given path and configures WAL mode.
func NewSQLite(dsn string) (*SQLiteTracker, error) {
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
	t := &SQLiteTracker{db: db}
	if err := t.migrate(); err != nil {
		db.Close()
		return nil, err
	}
	return t, nil
}

const sqliteMigration = `
CREATE TABLE IF NOT EXISTS processed_keys (
	run_id       TEXT NOT NULL,
	key          TEXT NOT NULL,
	processed_at DATETIME NOT NULL DEFAULT (datetime('now')),
	PRIMARY KEY (run_id, key)
);

CREATE INDEX IF NOT EXISTS idx_processed_keys_run_id ON processed_keys(run_id);
`

func (t *SQLiteTracker) migrate() error {
	_, err := t.db.Exec(sqliteMigration)
	return eris.Wrap(err, "sqlite: migrate")
}

func (t *SQLiteTracker) Load(ctx context.Context, runID string) (map[string]struct{}, error) {
	keys := make(map[string]struct{})

	rows, err := t.db.QueryContext(ctx,
		`SELECT key FROM processed_keys WHERE run_id = ?`, runID,
	)
	if err != nil {
		// Unreadable state means start fresh; the caller reprocesses,
		// which is safe because output writes are idempotent.
		return keys, nil
	}
	defer rows.Close()

	for rows.Next() {
		var key string
		if err := rows.Scan(&key); err != nil {
			return keys, nil
		}
		keys[key] = struct{}{}
	}
	if err := rows.Err(); err != nil {
		return keys, nil
	}
	return keys, nil
}

func (t *SQLiteTracker) Save(ctx context.Context, runID string, keys map[string]struct{}) error {
	tx, err := t.db.BeginTx(ctx, nil)
	if err != nil {
		return eris.Wrap(err, "sqlite: begin save")
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		`DELETE FROM processed_keys WHERE run_id = ?`, runID,
	); err != nil {
		return eris.Wrapf(err, "sqlite: clear state %s", runID)
	}

	for key := range keys {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO processed_keys (run_id, key) VALUES (?, ?)`, runID, key,
		); err != nil {
			return eris.Wrapf(err, "sqlite: insert key %s", key)
		}
	}

	return eris.Wrapf(tx.Commit(), "sqlite: commit state %s", runID)
}

func (t *SQLiteTracker) Close() error {
	return t.db.Close()
}
