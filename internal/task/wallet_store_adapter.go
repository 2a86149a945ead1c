package task

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"
	"github.com/phrazzld/walletstats/internal/domain"
	"github.com/phrazzld/walletstats/internal/store"
)

// WalletStoreAdapter adapts a store.WalletStore to WalletStatsRepository,
// writing each recalculation in a single transaction.
type WalletStoreAdapter struct {
	wallets store.WalletStore
	db      *sql.DB
}

// NewWalletStoreAdapter creates an adapter. db is the connection the
// transaction is opened on; wallets is rebound to it with WithTx.
func NewWalletStoreAdapter(wallets store.WalletStore, db *sql.DB) *WalletStoreAdapter {
	return &WalletStoreAdapter{wallets: wallets, db: db}
}

// GetWallet retrieves a wallet by its ID (simple pass-through to the store)
func (a *WalletStoreAdapter) GetWallet(ctx context.Context, walletID uuid.UUID) (*domain.Wallet, error) {
	return a.wallets.GetByID(ctx, walletID)
}

// ListTokenStats is a pass-through to the store
func (a *WalletStoreAdapter) ListTokenStats(ctx context.Context, walletID uuid.UUID) ([]domain.TokenStat, error) {
	return a.wallets.ListTokenStats(ctx, walletID)
}

// ApplyRecalculation saves stats and the wallet together.
func (a *WalletStoreAdapter) ApplyRecalculation(
	ctx context.Context,
	wallet *domain.Wallet,
	stats []domain.WalletStats,
) error {
	return store.RunInTransaction(ctx, a.db, func(ctx context.Context, tx *sql.Tx) error {
		txWallets := a.wallets.WithTx(tx)
		if err := txWallets.SaveStats(ctx, stats); err != nil {
			return fmt.Errorf("failed to save wallet stats: %w", err)
		}
		if err := txWallets.Update(ctx, wallet); err != nil {
			return fmt.Errorf("failed to update wallet: %w", err)
		}
		return nil
	})
}

var _ WalletStatsRepository = (*WalletStoreAdapter)(nil)
