package postgres_test

import (
	"database/sql"
	"io"
	"log/slog"
	"testing"

	"github.com/phrazzld/walletstats/internal/domain"
	"github.com/phrazzld/walletstats/internal/testdb"
	"github.com/stretchr/testify/require"
)

const testAddress = "7xKXtg2CW87d97TXJSDpbD5jBkheTqA83TZRuJosgAsU"

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// newTestDB returns a migrated database, SQLite in memory unless
// testdb.URLEnv points at PostgreSQL.
func newTestDB(t *testing.T) *sql.DB {
	t.Helper()
	return testdb.Open(t)
}

func newWallet(t *testing.T, address string) *domain.Wallet {
	t.Helper()
	w, err := domain.NewWallet(address)
	require.NoError(t, err)
	return w
}
