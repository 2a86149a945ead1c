// Package domain contains the wallet entities, their validation rules and
// the errors shared by the service and store layers. It has no knowledge of
// HTTP or SQL.
package domain
