package mocks

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"github.com/phrazzld/walletstats/internal/domain"
	"github.com/phrazzld/walletstats/internal/service"
)

// MockWalletStatsService implements service.WalletStatsService for testing
type MockWalletStatsService struct {
	RequestRefreshFn   func(ctx context.Context, address string) (uuid.UUID, error)
	GetRefreshStatusFn func(ctx context.Context, taskID uuid.UUID) (*service.RefreshStatus, error)
	GetWalletStatsFn   func(ctx context.Context, address string) (*domain.Wallet, []domain.WalletStats, error)
	ListWalletsFn      func(ctx context.Context, filter service.WalletListFilter, page service.Pagination) (*service.WalletPage, error)
	ListWalletTokensFn func(ctx context.Context, address string, page service.Pagination) (*service.TokenPage, error)

	// Default values used when functions aren't explicitly defined
	TaskID     uuid.UUID
	RefreshErr error
	Status     *service.RefreshStatus
	StatusErr  error
	Wallet     *domain.Wallet
	Stats      []domain.WalletStats
	StatsErr   error
	WalletPage *service.WalletPage
	TokenPage  *service.TokenPage
	ListErr    error

	mu          sync.Mutex
	refreshed   []string
	listFilters []service.WalletListFilter
	pages       []service.Pagination
}

var _ service.WalletStatsService = (*MockWalletStatsService)(nil)

// RequestRefresh implements the service.WalletStatsService interface
func (m *MockWalletStatsService) RequestRefresh(ctx context.Context, address string) (uuid.UUID, error) {
	m.mu.Lock()
	m.refreshed = append(m.refreshed, address)
	m.mu.Unlock()

	if m.RequestRefreshFn != nil {
		return m.RequestRefreshFn(ctx, address)
	}
	return m.TaskID, m.RefreshErr
}

// GetRefreshStatus implements the service.WalletStatsService interface
func (m *MockWalletStatsService) GetRefreshStatus(
	ctx context.Context,
	taskID uuid.UUID,
) (*service.RefreshStatus, error) {
	if m.GetRefreshStatusFn != nil {
		return m.GetRefreshStatusFn(ctx, taskID)
	}
	return m.Status, m.StatusErr
}

// GetWalletStats implements the service.WalletStatsService interface
func (m *MockWalletStatsService) GetWalletStats(
	ctx context.Context,
	address string,
) (*domain.Wallet, []domain.WalletStats, error) {
	if m.GetWalletStatsFn != nil {
		return m.GetWalletStatsFn(ctx, address)
	}
	return m.Wallet, m.Stats, m.StatsErr
}

// ListWallets implements the service.WalletStatsService interface
func (m *MockWalletStatsService) ListWallets(
	ctx context.Context,
	filter service.WalletListFilter,
	page service.Pagination,
) (*service.WalletPage, error) {
	m.mu.Lock()
	m.listFilters = append(m.listFilters, filter)
	m.pages = append(m.pages, page)
	m.mu.Unlock()

	if m.ListWalletsFn != nil {
		return m.ListWalletsFn(ctx, filter, page)
	}
	return m.WalletPage, m.ListErr
}

// ListWalletTokens implements the service.WalletStatsService interface
func (m *MockWalletStatsService) ListWalletTokens(
	ctx context.Context,
	address string,
	page service.Pagination,
) (*service.TokenPage, error) {
	m.mu.Lock()
	m.pages = append(m.pages, page)
	m.mu.Unlock()

	if m.ListWalletTokensFn != nil {
		return m.ListWalletTokensFn(ctx, address, page)
	}
	return m.TokenPage, m.ListErr
}

// ListFilters returns the filters passed to ListWallets, in order.
func (m *MockWalletStatsService) ListFilters() []service.WalletListFilter {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]service.WalletListFilter(nil), m.listFilters...)
}

// Pages returns the pagination passed to either listing, in order.
func (m *MockWalletStatsService) Pages() []service.Pagination {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]service.Pagination(nil), m.pages...)
}

// RefreshedAddresses returns the addresses passed to RequestRefresh, in order.
func (m *MockWalletStatsService) RefreshedAddresses() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.refreshed...)
}
