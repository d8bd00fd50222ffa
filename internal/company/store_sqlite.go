package company

import (
	"context"
	"database/sql"
	"errors"

	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"
)

// SQLiteStore implements Store using modernc.org/sqlite. Meant for local
// development against a copy of the company table.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens a SQLite database at dsn.
func NewSQLiteStore(dsn string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: open")
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close() //nolint:errcheck
			return nil, eris.Wrapf(err, "sqlite: exec %s", pragma)
		}
	}
	return &SQLiteStore{db: db}, nil
}

const sqliteMigration = `
CREATE TABLE IF NOT EXISTS company (
	company_id          INTEGER PRIMARY KEY AUTOINCREMENT,
	company_name        TEXT NOT NULL,
	company_rnc         TEXT,
	mercantil_registry  TEXT,
	nationality         TEXT,
	email               TEXT,
	phone               TEXT,
	website             TEXT,
	company_type        TEXT,
	company_description TEXT,
	is_active           BOOLEAN NOT NULL DEFAULT 1,
	created_at          DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
	updated_at          DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);
CREATE INDEX IF NOT EXISTS idx_company_rnc ON company(company_rnc);
`

// Migrate creates the company table if it does not exist.
func (s *SQLiteStore) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, sqliteMigration)
	return eris.Wrap(err, "sqlite: migrate")
}

// FindByRNC fetches the active company with the given RNC.
func (s *SQLiteStore) FindByRNC(ctx context.Context, rnc string) (*Company, error) {
	c := &Company{}
	err := s.db.QueryRowContext(ctx, `SELECT `+companyColumns+`
		FROM company
		WHERE company_rnc = ? AND is_active = 1
		ORDER BY company_id
		LIMIT 1`, rnc).
		Scan(companyDests(c)...)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, eris.Wrapf(err, "sqlite: find company by rnc %s", rnc)
	}
	return c, nil
}

// Close closes the database.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
