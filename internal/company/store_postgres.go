package company

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/rotisserie/eris"

	"github.com/sells-group/rnc-cli/internal/db"
)

// PostgresStore implements Store using pgx.
type PostgresStore struct {
	pool db.Pool
}

// NewPostgresStore creates a new PostgresStore. The store owns pool.
func NewPostgresStore(pool db.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

// FindByRNC fetches the active company with the given RNC.
func (s *PostgresStore) FindByRNC(ctx context.Context, rnc string) (*Company, error) {
	c := &Company{}
	err := s.pool.QueryRow(ctx, `SELECT `+companyColumns+`
		FROM company
		WHERE company_rnc = $1 AND is_active = true
		ORDER BY company_id
		LIMIT 1`, rnc).
		Scan(companyDests(c)...)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, eris.Wrapf(err, "company: find by rnc %s", rnc)
	}
	return c, nil
}

const postgresMigration = `
CREATE TABLE IF NOT EXISTS company (
	company_id          SERIAL PRIMARY KEY,
	company_name        VARCHAR(200) NOT NULL,
	company_rnc         VARCHAR(20),
	mercantil_registry  VARCHAR(20),
	nationality         VARCHAR(100),
	email               VARCHAR(100),
	phone               VARCHAR(20),
	website             VARCHAR(100),
	company_type        VARCHAR(30),
	company_description TEXT,
	is_active           BOOLEAN NOT NULL DEFAULT true,
	created_at          TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
	updated_at          TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
);
CREATE INDEX IF NOT EXISTS idx_company_rnc ON company(company_rnc);
`

// Migrate creates the company table if it does not exist.
func (s *PostgresStore) Migrate(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, postgresMigration); err != nil {
		return eris.Wrap(err, "company: migrate")
	}
	return nil
}

// Close releases the pool.
func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}
