package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/walletstats/internal/domain"
	"github.com/phrazzld/walletstats/internal/events"
	"github.com/phrazzld/walletstats/internal/store"
	"github.com/phrazzld/walletstats/internal/task"
)

// WalletRepository is the part of store.WalletStore the service needs.
type WalletRepository interface {
	// Create inserts a wallet, returning store.ErrWalletExists for a duplicate address
	Create(ctx context.Context, wallet *domain.Wallet) error

	// GetByAddress retrieves a wallet by its on-chain address
	GetByAddress(ctx context.Context, address string) (*domain.Wallet, error)

	// GetStats returns the stored per-period statistics of a wallet
	GetStats(ctx context.Context, walletID uuid.UUID) ([]domain.WalletStats, error)

	// ListWallets returns one page of wallets and the total match count
	ListWallets(ctx context.Context, filter store.WalletFilter) ([]domain.Wallet, int, error)

	// PageTokenStats returns one page of token aggregates and the total count
	PageTokenStats(ctx context.Context, walletID uuid.UUID, limit, offset int) ([]domain.TokenStat, int, error)
}

// TaskReader looks up persisted tasks.
type TaskReader interface {
	// GetTask returns store.ErrTaskNotFound when no task matches
	GetTask(ctx context.Context, id uuid.UUID) (*task.Record, error)
}

// RefreshStatus is the client-facing view of a refresh task.
type RefreshStatus struct {
	TaskID uuid.UUID
	// Status is one of task.PublicStatusPending, task.PublicStatusSuccess
	// or task.PublicStatusFailure.
	Status string
	// Result carries the failure reason of a failed task.
	Result    string
	UpdatedAt time.Time
}

// WalletListFilter narrows ListWallets. Nil flags match any wallet.
type WalletListFilter struct {
	IsBot       *bool
	IsScammer   *bool
	NewestFirst bool
}

// WalletPage is one page of tracked wallets.
type WalletPage struct {
	Wallets []domain.Wallet
	Page    PageInfo
}

// TokenPage is one page of a wallet's token aggregates.
type TokenPage struct {
	Wallet *domain.Wallet
	Tokens []domain.TokenStat
	Page   PageInfo
}

// WalletStatsService provides the wallet statistics refresh operations
type WalletStatsService interface {
	// RequestRefresh queues a recalculation of the wallet's statistics and
	// returns the ID of the task doing it. Unknown wallets are tracked first.
	RequestRefresh(ctx context.Context, address string) (uuid.UUID, error)

	// GetRefreshStatus reports the public status of a refresh task
	GetRefreshStatus(ctx context.Context, taskID uuid.UUID) (*RefreshStatus, error)

	// GetWalletStats returns the wallet and its stored statistics in
	// 7d, 30d, all order
	GetWalletStats(ctx context.Context, address string) (*domain.Wallet, []domain.WalletStats, error)

	// ListWallets returns one page of tracked wallets ordered by creation
	// time
	ListWallets(ctx context.Context, filter WalletListFilter, page Pagination) (*WalletPage, error)

	// ListWalletTokens returns one page of the wallet's token aggregates
	// ordered by token address
	ListWalletTokens(ctx context.Context, address string, page Pagination) (*TokenPage, error)
}

// WalletStatsServiceError wraps errors from the wallet stats service with context.
type WalletStatsServiceError struct {
	// Operation is the operation that failed (e.g., "request_refresh")
	Operation string
	// Message is a human-readable description of the error
	Message string
	// Err is the underlying error that caused the failure
	Err error
}

// Error implements the error interface for WalletStatsServiceError.
func (e *WalletStatsServiceError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("wallet stats service %s failed: %s: %v", e.Operation, e.Message, e.Err)
	}
	return fmt.Sprintf("wallet stats service %s failed: %s", e.Operation, e.Message)
}

// Unwrap returns the wrapped error to support errors.Is/errors.As.
func (e *WalletStatsServiceError) Unwrap() error {
	return e.Err
}

// NewWalletStatsServiceError creates a new WalletStatsServiceError.
// Known conditions are returned as the matching service sentinel and
// validation errors are returned unchanged.
func NewWalletStatsServiceError(operation, message string, err error) error {
	if err == nil {
		return nil
	}

	switch {
	case errors.Is(err, ErrWalletNotFound), errors.Is(err, store.ErrWalletNotFound):
		return ErrWalletNotFound
	case errors.Is(err, ErrTaskNotFound), errors.Is(err, store.ErrTaskNotFound):
		return ErrTaskNotFound
	case errors.Is(err, ErrRefreshUnavailable),
		errors.Is(err, task.ErrQueueFull),
		errors.Is(err, task.ErrQueueClosed),
		errors.Is(err, events.ErrNoHandlers):
		return fmt.Errorf("%w: %w", ErrRefreshUnavailable, err)
	case errors.Is(err, domain.ErrValidation):
		return err
	}

	return &WalletStatsServiceError{
		Operation: operation,
		Message:   message,
		Err:       err,
	}
}

type walletStatsServiceImpl struct {
	wallets      WalletRepository
	tasks        TaskReader
	eventEmitter events.EventEmitter
	logger       *slog.Logger
}

// NewWalletStatsService creates a new WalletStatsService.
// It returns an error if any of the required dependencies are nil.
func NewWalletStatsService(
	wallets WalletRepository,
	tasks TaskReader,
	eventEmitter events.EventEmitter,
	logger *slog.Logger,
) (WalletStatsService, error) {
	if wallets == nil {
		return nil, &WalletStatsServiceError{Operation: "create_service", Message: "wallets cannot be nil"}
	}
	if tasks == nil {
		return nil, &WalletStatsServiceError{Operation: "create_service", Message: "tasks cannot be nil"}
	}
	if eventEmitter == nil {
		return nil, &WalletStatsServiceError{Operation: "create_service", Message: "eventEmitter cannot be nil"}
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &walletStatsServiceImpl{
		wallets:      wallets,
		tasks:        tasks,
		eventEmitter: eventEmitter,
		logger:       logger.With("component", "wallet_stats_service"),
	}, nil
}

// RequestRefresh validates the address, tracks the wallet if needed and
// emits a refresh_wallet_stats task request.
func (s *walletStatsServiceImpl) RequestRefresh(ctx context.Context, address string) (uuid.UUID, error) {
	address = strings.TrimSpace(address)
	if err := domain.ValidateWalletAddress(address); err != nil {
		return uuid.Nil, err
	}

	wallet, err := s.ensureWallet(ctx, address)
	if err != nil {
		return uuid.Nil, NewWalletStatsServiceError("request_refresh", "failed to load wallet", err)
	}

	taskID := uuid.New()
	event, err := events.NewTaskRequestEvent(task.TaskTypeWalletStats, taskID, task.WalletStatsPayload{
		WalletID: wallet.ID,
		Address:  wallet.Address,
	})
	if err != nil {
		s.logger.Error("failed to create task request event",
			"error", err,
			"wallet_id", wallet.ID)
		return uuid.Nil, NewWalletStatsServiceError("request_refresh", "failed to create event", err)
	}

	if err := s.eventEmitter.EmitEvent(ctx, event); err != nil {
		s.logger.Error("failed to emit task request event",
			"error", err,
			"wallet_id", wallet.ID,
			"task_id", taskID)
		return uuid.Nil, NewWalletStatsServiceError("request_refresh", "failed to queue refresh", err)
	}

	s.logger.Info("wallet stats refresh requested",
		"wallet_id", wallet.ID,
		"task_id", taskID)
	return taskID, nil
}

// ensureWallet returns the tracked wallet for address, creating it on first
// use. A concurrent creation of the same address is resolved by re-reading.
func (s *walletStatsServiceImpl) ensureWallet(ctx context.Context, address string) (*domain.Wallet, error) {
	wallet, err := s.wallets.GetByAddress(ctx, address)
	if err == nil {
		return wallet, nil
	}
	if !errors.Is(err, store.ErrWalletNotFound) {
		return nil, err
	}

	wallet, err = domain.NewWallet(address)
	if err != nil {
		return nil, err
	}
	if err := s.wallets.Create(ctx, wallet); err != nil {
		if errors.Is(err, store.ErrWalletExists) {
			return s.wallets.GetByAddress(ctx, address)
		}
		return nil, err
	}

	s.logger.Info("tracking new wallet", "wallet_id", wallet.ID)
	return wallet, nil
}

// GetRefreshStatus loads the task and maps its internal status.
func (s *walletStatsServiceImpl) GetRefreshStatus(ctx context.Context, taskID uuid.UUID) (*RefreshStatus, error) {
	if taskID == uuid.Nil {
		return nil, ErrTaskNotFound
	}

	record, err := s.tasks.GetTask(ctx, taskID)
	if err != nil {
		if !errors.Is(err, store.ErrTaskNotFound) {
			s.logger.Error("failed to load task",
				"error", err,
				"task_id", taskID)
		}
		return nil, NewWalletStatsServiceError("get_refresh_status", "failed to load task", err)
	}

	status := &RefreshStatus{
		TaskID:    record.TaskID,
		Status:    task.PublicStatus(record.TaskStatus),
		UpdatedAt: record.UpdatedAt,
	}
	if record.TaskStatus == task.TaskStatusFailed {
		status.Result = record.ErrorMessage
	}
	return status, nil
}

// GetWalletStats returns the wallet and its stored statistics.
func (s *walletStatsServiceImpl) GetWalletStats(
	ctx context.Context,
	address string,
) (*domain.Wallet, []domain.WalletStats, error) {
	address = strings.TrimSpace(address)
	if err := domain.ValidateWalletAddress(address); err != nil {
		return nil, nil, err
	}

	wallet, err := s.wallets.GetByAddress(ctx, address)
	if err != nil {
		return nil, nil, NewWalletStatsServiceError("get_wallet_stats", "failed to load wallet", err)
	}

	stats, err := s.wallets.GetStats(ctx, wallet.ID)
	if err != nil {
		s.logger.Error("failed to load wallet stats",
			"error", err,
			"wallet_id", wallet.ID)
		return nil, nil, NewWalletStatsServiceError("get_wallet_stats", "failed to load stats", err)
	}

	return wallet, stats, nil
}

// ListWallets returns one page of wallets matching filter.
func (s *walletStatsServiceImpl) ListWallets(
	ctx context.Context,
	filter WalletListFilter,
	page Pagination,
) (*WalletPage, error) {
	if err := page.Validate(); err != nil {
		return nil, err
	}

	wallets, total, err := s.wallets.ListWallets(ctx, store.WalletFilter{
		IsBot:       filter.IsBot,
		IsScammer:   filter.IsScammer,
		NewestFirst: filter.NewestFirst,
		Limit:       page.PageSize,
		Offset:      page.offset(),
	})
	if err != nil {
		s.logger.Error("failed to list wallets", "error", err)
		return nil, NewWalletStatsServiceError("list_wallets", "failed to list wallets", err)
	}

	return &WalletPage{
		Wallets: wallets,
		Page:    newPageInfo(page, len(wallets), total),
	}, nil
}

// ListWalletTokens returns one page of the wallet's token aggregates.
func (s *walletStatsServiceImpl) ListWalletTokens(
	ctx context.Context,
	address string,
	page Pagination,
) (*TokenPage, error) {
	address = strings.TrimSpace(address)
	if err := domain.ValidateWalletAddress(address); err != nil {
		return nil, err
	}
	if err := page.Validate(); err != nil {
		return nil, err
	}

	wallet, err := s.wallets.GetByAddress(ctx, address)
	if err != nil {
		return nil, NewWalletStatsServiceError("list_wallet_tokens", "failed to load wallet", err)
	}

	tokens, total, err := s.wallets.PageTokenStats(ctx, wallet.ID, page.PageSize, page.offset())
	if err != nil {
		s.logger.Error("failed to list wallet tokens",
			"error", err,
			"wallet_id", wallet.ID)
		return nil, NewWalletStatsServiceError("list_wallet_tokens", "failed to list tokens", err)
	}

	return &TokenPage{
		Wallet: wallet,
		Tokens: tokens,
		Page:   newPageInfo(page, len(tokens), total),
	}, nil
}
