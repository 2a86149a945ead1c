package api

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/phrazzld/walletstats/internal/domain"
	"github.com/phrazzld/walletstats/internal/service"
)

// Accepted values of the sort query parameter of wallet listings.
const (
	sortCreatedAtAsc  = "created_at"
	sortCreatedAtDesc = "-created_at"
)

// getPathUUID extracts a UUID from the URL path parameters.
// A missing parameter and a malformed UUID both yield validation errors.
func getPathUUID(r *http.Request, paramName string) (uuid.UUID, error) {
	pathParam := strings.TrimSpace(chi.URLParam(r, paramName))
	if pathParam == "" {
		return uuid.Nil, domain.NewValidationError(paramName, "is required", domain.ErrValidation)
	}

	id, err := uuid.Parse(pathParam)
	if err != nil {
		return uuid.Nil, domain.NewValidationError(paramName, "has invalid format", domain.ErrInvalidID)
	}

	return id, nil
}

// getPathAddress extracts and validates a wallet address path parameter.
func getPathAddress(r *http.Request, paramName string) (string, error) {
	address := strings.TrimSpace(chi.URLParam(r, paramName))
	if err := domain.ValidateWalletAddress(address); err != nil {
		return "", err
	}
	return address, nil
}

// getQueryInt returns def when the query parameter is absent.
func getQueryInt(r *http.Request, name string, def int) (int, error) {
	raw := strings.TrimSpace(r.URL.Query().Get(name))
	if raw == "" {
		return def, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, domain.NewValidationError(name, "must be an integer", domain.ErrValidation)
	}
	return v, nil
}

// getQueryBool returns nil when the query parameter is absent.
func getQueryBool(r *http.Request, name string) (*bool, error) {
	raw := strings.TrimSpace(r.URL.Query().Get(name))
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return nil, domain.NewValidationError(name, "must be true or false", domain.ErrValidation)
	}
	return &v, nil
}

// getPagination reads page and page_size. Range checks are left to the
// service.
func getPagination(r *http.Request) (service.Pagination, error) {
	page, err := getQueryInt(r, "page", 1)
	if err != nil {
		return service.Pagination{}, err
	}
	size, err := getQueryInt(r, "page_size", service.DefaultPageSize)
	if err != nil {
		return service.Pagination{}, err
	}
	return service.Pagination{Page: page, PageSize: size}, nil
}

// getWalletListFilter reads is_bot, is_scammer and sort.
func getWalletListFilter(r *http.Request) (service.WalletListFilter, error) {
	var (
		filter service.WalletListFilter
		err    error
	)
	if filter.IsBot, err = getQueryBool(r, "is_bot"); err != nil {
		return filter, err
	}
	if filter.IsScammer, err = getQueryBool(r, "is_scammer"); err != nil {
		return filter, err
	}
	switch strings.TrimSpace(r.URL.Query().Get("sort")) {
	case "", sortCreatedAtAsc:
	case sortCreatedAtDesc:
		filter.NewestFirst = true
	default:
		return filter, domain.NewValidationError("sort", "must be created_at or -created_at", domain.ErrValidation)
	}
	return filter, nil
}
