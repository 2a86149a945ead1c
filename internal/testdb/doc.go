// Package testdb provides migrated databases for store tests.
//
// By default every call to Open returns a private in-memory SQLite database.
// When WALLETSTATS_TEST_DB_URL is set the tests run against PostgreSQL
// instead; each test then gets its own schema, which is dropped when the
// test ends, so parallel tests never see each other's rows.
//
// Usage:
//
//	db := testdb.Open(t)
//	store := postgres.NewPostgresWalletStore(db)
//
//	testdb.WithTx(t, db, func(t *testing.T, tx *sql.Tx) {
//		// changes made through tx are rolled back
//	})
package testdb
