package main

import (
	"context"

	"github.com/rotisserie/eris"

	"github.com/sells-group/rnc-cli/internal/company"
	"github.com/sells-group/rnc-cli/internal/db"
)

func initStore(ctx context.Context) (company.Store, error) {
	switch cfg.Store.Driver {
	case "sqlite":
		dsn := cfg.Store.DatabaseURL
		if dsn == "" {
			dsn = "company.db"
		}
		return company.NewSQLiteStore(dsn)
	case "postgres":
		pool, err := db.Open(ctx, cfg.Store.DatabaseURL)
		if err != nil {
			return nil, err
		}
		return company.NewPostgresStore(pool), nil
	default:
		return nil, eris.Errorf("unsupported store driver: %s", cfg.Store.Driver)
	}
}
