package task

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/walletstats/internal/domain"
	"github.com/phrazzld/walletstats/internal/domain/walletstats"
)

// Common errors
var (
	ErrNilRepository = errors.New("wallet stats repository cannot be nil")
	ErrNilCalculator = errors.New("stats calculator cannot be nil")
	ErrNilLogger     = errors.New("logger cannot be nil")
	ErrEmptyWalletID = errors.New("wallet ID cannot be empty")
)

// WalletStatsRepository is the persistence a recalculation needs.
type WalletStatsRepository interface {
	// GetWallet loads the wallet being refreshed
	GetWallet(ctx context.Context, walletID uuid.UUID) (*domain.Wallet, error)

	// ListTokenStats returns the per-token trade aggregates of the wallet
	ListTokenStats(ctx context.Context, walletID uuid.UUID) ([]domain.TokenStat, error)

	// ApplyRecalculation stores the new period stats and the updated wallet
	// atomically
	ApplyRecalculation(ctx context.Context, wallet *domain.Wallet, stats []domain.WalletStats) error
}

// WalletStatsPayload is the serialized form of a WalletStatsTask.
type WalletStatsPayload struct {
	WalletID uuid.UUID `json:"wallet_id"`
	Address  string    `json:"address"`
}

// WalletStatsTask recalculates the 7d, 30d and all-time statistics of one
// wallet and refreshes its scammer flag.
type WalletStatsTask struct {
	id         uuid.UUID
	payload    WalletStatsPayload
	repo       WalletStatsRepository
	calculator walletstats.Service
	now        func() time.Time
	logger     *slog.Logger

	mu     sync.RWMutex
	status TaskStatus
}

// NewWalletStatsTask creates a task with a caller-chosen id so the id can
// be handed to the client before the task is persisted.
func NewWalletStatsTask(
	id uuid.UUID,
	payload WalletStatsPayload,
	repo WalletStatsRepository,
	calculator walletstats.Service,
	logger *slog.Logger,
) (*WalletStatsTask, error) {
	if repo == nil {
		return nil, ErrNilRepository
	}
	if calculator == nil {
		return nil, ErrNilCalculator
	}
	if logger == nil {
		return nil, ErrNilLogger
	}
	if payload.WalletID == uuid.Nil {
		return nil, ErrEmptyWalletID
	}
	if id == uuid.Nil {
		id = uuid.New()
	}

	return &WalletStatsTask{
		id:         id,
		payload:    payload,
		repo:       repo,
		calculator: calculator,
		now:        time.Now,
		logger: logger.With(
			"task_type", TaskTypeWalletStats,
			"task_id", id,
			"wallet_id", payload.WalletID,
		),
		status: TaskStatusPending,
	}, nil
}

// ID returns the task's unique identifier
func (t *WalletStatsTask) ID() uuid.UUID {
	return t.id
}

// Type returns the task type identifier
func (t *WalletStatsTask) Type() string {
	return TaskTypeWalletStats
}

// Payload returns the task data as a byte slice
func (t *WalletStatsTask) Payload() []byte {
	data, err := json.Marshal(t.payload)
	if err != nil {
		t.logger.Error("failed to marshal task payload", "error", err)
		return []byte{}
	}
	return data
}

// Status returns the current task status
func (t *WalletStatsTask) Status() TaskStatus {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.status
}

func (t *WalletStatsTask) setStatus(status TaskStatus) {
	t.mu.Lock()
	t.status = status
	t.mu.Unlock()
}

// Execute loads the wallet's token aggregates, recalculates every period
// and stores the result together with the new last-check time.
func (t *WalletStatsTask) Execute(ctx context.Context) error {
	t.setStatus(TaskStatusProcessing)
	t.logger.Info("starting wallet stats task")

	if err := ctx.Err(); err != nil {
		return t.fail("task cancelled by context", err)
	}

	wallet, err := t.repo.GetWallet(ctx, t.payload.WalletID)
	if err != nil {
		return t.fail("failed to retrieve wallet", err)
	}

	tokens, err := t.repo.ListTokenStats(ctx, wallet.ID)
	if err != nil {
		return t.fail("failed to list token stats", err)
	}
	t.logger.Debug("loaded token stats", "count", len(tokens))

	now := t.now().UTC()
	result, err := t.calculator.Recalculate(wallet.ID, tokens, now)
	if err != nil {
		return t.fail("failed to calculate stats", err)
	}

	wallet.MarkStatsChecked(result.IsScammer, result.IsBot, now)
	if err := t.repo.ApplyRecalculation(ctx, wallet, result.Stats); err != nil {
		return t.fail("failed to save stats", err)
	}

	t.setStatus(TaskStatusCompleted)
	t.logger.Info("wallet stats task completed",
		"token_count", len(tokens),
		"is_scammer", result.IsScammer,
		"is_bot", result.IsBot)
	return nil
}

func (t *WalletStatsTask) fail(msg string, err error) error {
	t.setStatus(TaskStatusFailed)
	t.logger.Error(msg, "error", err)
	return fmt.Errorf("%s: %w", msg, err)
}

// WalletStatsTaskFactory creates WalletStatsTask instances
type WalletStatsTaskFactory struct {
	repo       WalletStatsRepository
	calculator walletstats.Service
	logger     *slog.Logger
}

// NewWalletStatsTaskFactory creates a new factory for WalletStatsTasks
func NewWalletStatsTaskFactory(
	repo WalletStatsRepository,
	calculator walletstats.Service,
	logger *slog.Logger,
) *WalletStatsTaskFactory {
	return &WalletStatsTaskFactory{
		repo:       repo,
		calculator: calculator,
		logger:     logger.With("component", "wallet_stats_task_factory"),
	}
}

// CreateTask decodes a WalletStatsPayload and builds the task.
func (f *WalletStatsTaskFactory) CreateTask(id uuid.UUID, payload []byte) (Task, error) {
	var p WalletStatsPayload
	if err := json.Unmarshal(payload, &p); err != nil {
		return nil, fmt.Errorf("failed to decode wallet stats payload: %w", err)
	}
	return NewWalletStatsTask(id, p, f.repo, f.calculator, f.logger)
}

var _ Factory = (*WalletStatsTaskFactory)(nil)
