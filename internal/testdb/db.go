package testdb

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"log/slog"
	"net/url"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/walletstats/internal/config"
	"github.com/phrazzld/walletstats/internal/platform/database"
	"github.com/phrazzld/walletstats/internal/redact"
)

// URLEnv names the PostgreSQL connection string used instead of SQLite.
const URLEnv = "WALLETSTATS_TEST_DB_URL"

const setupTimeout = 30 * time.Second

// Driver reports which driver Open will use.
func Driver() string {
	if postgresURL() != "" {
		return database.DriverPostgres
	}
	return database.DriverSQLite
}

func postgresURL() string {
	return strings.TrimSpace(os.Getenv(URLEnv))
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// Open returns a migrated database that is closed when the test ends.
func Open(t *testing.T) *sql.DB {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), setupTimeout)
	defer cancel()

	cfg := config.DatabaseConfig{Driver: database.DriverSQLite, URL: ":memory:"}
	if base := postgresURL(); base != "" {
		schema := createSchema(ctx, t, base)
		dsn, err := withSearchPath(base, schema)
		if err != nil {
			t.Fatalf("invalid %s: %v", URLEnv, err)
		}
		cfg = config.DatabaseConfig{Driver: database.DriverPostgres, URL: dsn, MaxOpenConns: 4}
	}

	db, err := database.Open(ctx, cfg, discardLogger())
	if err != nil {
		t.Fatalf("failed to open %s test database: %s", cfg.Driver, redact.Error(err))
	}
	t.Cleanup(func() { _ = db.Close() })

	if err := database.Migrate(ctx, db, cfg.Driver, database.MigrateUp, discardLogger()); err != nil {
		t.Fatalf("failed to migrate %s test database: %v", cfg.Driver, err)
	}
	return db
}

// createSchema creates a uniquely named schema and registers its removal.
func createSchema(ctx context.Context, t *testing.T, base string) string {
	t.Helper()

	admin, err := database.Open(ctx, config.DatabaseConfig{Driver: database.DriverPostgres, URL: base}, discardLogger())
	if err != nil {
		t.Fatalf("failed to connect to %s: %s", URLEnv, redact.Error(err))
	}

	schema := "test_" + strings.ReplaceAll(uuid.NewString(), "-", "")[:12]

	if _, err := admin.ExecContext(ctx, "CREATE SCHEMA "+schema); err != nil {
		_ = admin.Close()
		t.Fatalf("failed to create schema %s: %v", schema, err)
	}

	// Registered before Open's close so it runs after the test's pool is gone.
	t.Cleanup(func() {
		defer admin.Close()
		dropCtx, cancel := context.WithTimeout(context.Background(), setupTimeout)
		defer cancel()
		if _, err := admin.ExecContext(dropCtx, "DROP SCHEMA "+schema+" CASCADE"); err != nil {
			t.Logf("failed to drop schema %s: %v", schema, err)
		}
	})
	return schema
}

// withSearchPath points a connection string at schema. Both URL and
// key=value forms are accepted.
func withSearchPath(dsn, schema string) (string, error) {
	if !strings.Contains(dsn, "://") {
		return dsn + " search_path=" + schema, nil
	}
	u, err := url.Parse(dsn)
	if err != nil {
		return "", fmt.Errorf("failed to parse database URL: %w", err)
	}
	q := u.Query()
	q.Set("search_path", schema)
	u.RawQuery = q.Encode()
	return u.String(), nil
}

// WithTx runs fn inside a transaction that is always rolled back.
func WithTx(t *testing.T, db *sql.DB, fn func(t *testing.T, tx *sql.Tx)) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), setupTimeout)
	defer cancel()

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		t.Fatalf("failed to begin transaction: %v", err)
	}
	defer func() {
		if err := tx.Rollback(); err != nil && err != sql.ErrTxDone {
			t.Logf("failed to roll back transaction: %v", err)
		}
	}()

	fn(t, tx)
}
