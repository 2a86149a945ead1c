// Package database opens the SQL connection pool for the configured driver
// and applies the embedded schema migrations with goose.
package database
