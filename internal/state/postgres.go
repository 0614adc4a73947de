package state

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rotisserie/eris"
)

// pgPool is the subset of pgxpool.Pool the tracker needs. Declared as an
// interface so tests can substitute a mock pool.
type pgPool interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	Begin(ctx context.Context) (pgx.Tx, error)
	Ping(ctx context.Context) error
	Close()
}

// PostgresTracker implements Tracker backed by a PostgreSQL table, for
// deployments where several extractor hosts share one database.
type PostgresTracker struct {
	pool pgPool
}

const postgresMigration = `
CREATE TABLE IF NOT EXISTS processed_keys (
	run_id       TEXT NOT NULL,
	key          TEXT NOT NULL,
	processed_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	PRIMARY KEY (run_id, key)
);
`

// NewPostgres creates a PostgresTracker with a connection pool.
func NewPostgres(ctx context.Context, connString string) (*PostgresTracker, error) {
	pgxCfg, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: parse config")
	}
	pgxCfg.MaxConns = 4
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

	t := &PostgresTracker{pool: pool}
	if err := t.migrate(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return t, nil
}

func (t *PostgresTracker) migrate(ctx context.Context) error {
	_, err := t.pool.Exec(ctx, postgresMigration)
	return eris.Wrap(err, "postgres: migrate")
}

func (t *PostgresTracker) Load(ctx context.Context, runID string) (map[string]struct{}, error) {
	keys := make(map[string]struct{})

	rows, err := t.pool.Query(ctx,
		`SELECT key FROM processed_keys WHERE run_id = $1`, runID,
	)
	if err != nil {
		// Unreadable state means start fresh; reprocessing is safe
		// because output writes are idempotent.
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

func (t *PostgresTracker) Save(ctx context.Context, runID string, keys map[string]struct{}) error {
	tx, err := t.pool.Begin(ctx)
	if err != nil {
		return eris.Wrap(err, "postgres: begin save")
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx,
		`DELETE FROM processed_keys WHERE run_id = $1`, runID,
	); err != nil {
		return eris.Wrapf(err, "postgres: clear state %s", runID)
	}

	for key := range keys {
		if _, err := tx.Exec(ctx,
			`INSERT INTO processed_keys (run_id, key) VALUES ($1, $2)`, runID, key,
		); err != nil {
			return eris.Wrapf(err, "postgres: insert key %s", key)
		}
	}

	return eris.Wrapf(tx.Commit(ctx), "postgres: commit state %s", runID)
}

func (t *PostgresTracker) Close() error {
	t.pool.Close()
	return nil
}
