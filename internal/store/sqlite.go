package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"

	"github.com/barzel-group/market-cli/internal/listing"
)

// SQLiteStore implements Store using modernc.org/sqlite.
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
CREATE TABLE IF NOT EXISTS datasets (
	id         TEXT PRIMARY KEY,
	name       TEXT NOT NULL UNIQUE,
	source     TEXT NOT NULL,
	n_rows     INTEGER NOT NULL,
	facts      TEXT NOT NULL,
	created_at DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE INDEX IF NOT EXISTS idx_datasets_created_at ON datasets(created_at);
`

func (s *SQLiteStore) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, sqliteMigration)
	return eris.Wrap(err, "sqlite: migrate")
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) SaveDataset(ctx context.Context, name, source string, facts listing.FactTable) (*Dataset, error) {
	id := uuid.New().String()
	now := time.Now().UTC()

	factsJSON, err := json.Marshal(facts)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: marshal facts")
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO datasets (id, name, source, n_rows, facts, created_at) VALUES (?, ?, ?, ?, ?, ?)
		 ON CONFLICT(name) DO UPDATE SET
			id = excluded.id,
			source = excluded.source,
			n_rows = excluded.n_rows,
			facts = excluded.facts,
			created_at = excluded.created_at`,
		id, name, source, len(facts), string(factsJSON), now,
	)
	if err != nil {
		return nil, eris.Wrapf(err, "sqlite: insert dataset %s", name)
	}

	return &Dataset{
		ID:        id,
		Name:      name,
		Source:    source,
		Rows:      len(facts),
		CreatedAt: now,
		Facts:     facts,
	}, nil
}

func (s *SQLiteStore) GetDataset(ctx context.Context, name string) (*Dataset, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, name, source, n_rows, facts, created_at FROM datasets WHERE name = ?`,
		name,
	)

	var d Dataset
	var factsJSON string
	if err := row.Scan(&d.ID, &d.Name, &d.Source, &d.Rows, &factsJSON, &d.CreatedAt); err != nil {
		if err == sql.ErrNoRows {
			return nil, eris.Errorf("sqlite: dataset %q not found", name)
		}
		return nil, eris.Wrapf(err, "sqlite: get dataset %s", name)
	}
	if err := json.Unmarshal([]byte(factsJSON), &d.Facts); err != nil {
		return nil, eris.Wrapf(err, "sqlite: unmarshal facts for %s", name)
	}
	return &d, nil
}

func (s *SQLiteStore) ListDatasets(ctx context.Context) ([]Dataset, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name, source, n_rows, created_at FROM datasets ORDER BY created_at DESC, name`,
	)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list datasets")
	}
	defer rows.Close() //nolint:errcheck

	var out []Dataset
	for rows.Next() {
		var d Dataset
		if err := rows.Scan(&d.ID, &d.Name, &d.Source, &d.Rows, &d.CreatedAt); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan dataset")
		}
		out = append(out, d)
	}
	return out, eris.Wrap(rows.Err(), "sqlite: iterate datasets")
}

func (s *SQLiteStore) DeleteDataset(ctx context.Context, name string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM datasets WHERE name = ?`, name)
	if err != nil {
		return eris.Wrapf(err, "sqlite: delete dataset %s", name)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return eris.Wrap(err, "sqlite: rows affected")
	}
	if n == 0 {
		return eris.Errorf("sqlite: dataset %q not found", name)
	}
	return nil
}
