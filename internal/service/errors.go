package service

import "errors"

// Sentinel errors returned by the service layer. Callers check them with
// errors.Is and the API layer maps them to HTTP status codes.
var (
	// ErrWalletNotFound indicates the wallet address is not tracked.
	// API layer should map this to HTTP 404 Not Found.
	ErrWalletNotFound = errors.New("wallet not found")

	// ErrTaskNotFound indicates no refresh task has the requested ID.
	// API layer should map this to HTTP 404 Not Found.
	ErrTaskNotFound = errors.New("task not found")

	// ErrRefreshUnavailable indicates the refresh could not be queued, for
	// example because the task queue is full or shutting down.
	// API layer should map this to HTTP 503 Service Unavailable.
	ErrRefreshUnavailable = errors.New("refresh temporarily unavailable")
)
