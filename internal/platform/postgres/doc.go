// Package postgres implements the storage interfaces defined in
// internal/store and internal/task on top of database/sql.
//
// Queries use PostgreSQL-style $N placeholders and standard SQL only, so the
// same stores run against the embedded SQLite driver used for local
// development and tests.
package postgres
