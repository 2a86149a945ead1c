// Package store defines the persistence interfaces and errors shared by
// the service layer and the SQL implementations in platform/postgres.
package store
