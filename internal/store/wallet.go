package store

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/phrazzld/walletstats/internal/domain"
)

// WalletFilter selects and pages wallets for ListWallets. Nil flags match
// any wallet.
type WalletFilter struct {
	IsBot     *bool
	IsScammer *bool
	// NewestFirst orders by creation time descending instead of ascending.
	NewestFirst bool
	Limit       int
	Offset      int
}

// WalletStore persists wallets, their per-token aggregates and the derived
// per-period statistics.
type WalletStore interface {
	// Create inserts a wallet. Returns ErrWalletExists for a duplicate address.
	Create(ctx context.Context, wallet *domain.Wallet) error

	// GetByID returns ErrWalletNotFound when no wallet matches.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Wallet, error)

	// GetByAddress returns ErrWalletNotFound when no wallet matches.
	GetByAddress(ctx context.Context, address string) (*domain.Wallet, error)

	// ListWallets returns one page of wallets matching filter and the
	// number of matching wallets across all pages.
	ListWallets(ctx context.Context, filter WalletFilter) ([]domain.Wallet, int, error)

	// Update writes IsScammer, IsBot, LastStatsCheck and UpdatedAt.
	// Returns ErrWalletNotFound when no wallet matches.
	Update(ctx context.Context, wallet *domain.Wallet) error

	// UpsertTokenStat inserts or replaces the aggregate for
	// (WalletID, TokenAddress).
	UpsertTokenStat(ctx context.Context, stat *domain.TokenStat) error

	// ListTokenStats returns every token aggregate for the wallet.
	ListTokenStats(ctx context.Context, walletID uuid.UUID) ([]domain.TokenStat, error)

	// PageTokenStats returns limit token aggregates starting at offset,
	// ordered by token address, and the wallet's total token count.
	PageTokenStats(ctx context.Context, walletID uuid.UUID, limit, offset int) ([]domain.TokenStat, int, error)

	// SaveStats inserts or replaces one row per (WalletID, Period).
	SaveStats(ctx context.Context, stats []domain.WalletStats) error

	// GetStats returns the stored periods for the wallet in 7d, 30d, all order.
	// A wallet that was never recalculated yields an empty slice.
	GetStats(ctx context.Context, walletID uuid.UUID) ([]domain.WalletStats, error)

	// WithTx returns a WalletStore bound to tx.
	WithTx(tx *sql.Tx) WalletStore
}
