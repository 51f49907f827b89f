package persistence

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "github.com/duckdb/duckdb-go/v2"
	_ "modernc.org/sqlite"
)

// OpenSQL opens an embedded database through database/sql. driver is
// "duckdb" or "sqlite"; dsn is the database file path (empty for an
// in-memory DuckDB).
func OpenSQL(ctx context.Context, driver, dsn string) (*sql.DB, error) {
	switch driver {
	case "duckdb":
	case "sqlite":
		if strings.TrimSpace(dsn) == "" {
			return nil, fmt.Errorf("sqlite: DSN must not be empty")
		}
	default:
		return nil, fmt.Errorf("unsupported sql driver %q", driver)
	}

	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("%s: open: %w", driver, err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		db.Close()
		return nil, fmt.Errorf("%s: ping: %w", driver, err)
	}

	if driver == "sqlite" {
		// one writer at a time, readers wait instead of failing
		db.SetMaxOpenConns(1)
		_, _ = db.ExecContext(ctx, "PRAGMA busy_timeout = 5000;")
	}
	return db, nil
}
