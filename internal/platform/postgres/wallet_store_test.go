package postgres_test

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/walletstats/internal/domain"
	"github.com/phrazzld/walletstats/internal/platform/postgres"
	"github.com/phrazzld/walletstats/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWalletStore_CreateAndGet(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	s := postgres.NewPostgresWalletStore(newTestDB(t))
	w := newWallet(t, testAddress)

	require.NoError(t, s.Create(ctx, w))

	byID, err := s.GetByID(ctx, w.ID)
	require.NoError(t, err)
	assert.Equal(t, w.Address, byID.Address)
	assert.False(t, byID.IsScammer)
	assert.Nil(t, byID.LastStatsCheck)
	assert.True(t, w.CreatedAt.Equal(byID.CreatedAt))

	byAddress, err := s.GetByAddress(ctx, testAddress)
	require.NoError(t, err)
	assert.Equal(t, w.ID, byAddress.ID)
}

func TestWalletStore_CreateErrors(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	s := postgres.NewPostgresWalletStore(newTestDB(t))

	require.NoError(t, s.Create(ctx, newWallet(t, testAddress)))

	err := s.Create(ctx, newWallet(t, testAddress))
	assert.ErrorIs(t, err, store.ErrWalletExists)
	assert.ErrorIs(t, err, store.ErrDuplicate)

	err = s.Create(ctx, &domain.Wallet{ID: uuid.New(), Address: "0xnot-base58"})
	assert.ErrorIs(t, err, store.ErrInvalidEntity)
}

func TestWalletStore_NotFound(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	s := postgres.NewPostgresWalletStore(newTestDB(t))

	_, err := s.GetByID(ctx, uuid.New())
	assert.ErrorIs(t, err, store.ErrWalletNotFound)

	_, err = s.GetByAddress(ctx, testAddress)
	assert.ErrorIs(t, err, store.ErrWalletNotFound)

	err = s.Update(ctx, newWallet(t, testAddress))
	assert.ErrorIs(t, err, store.ErrWalletNotFound)
}

func TestWalletStore_Update(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	s := postgres.NewPostgresWalletStore(newTestDB(t))
	w := newWallet(t, testAddress)
	require.NoError(t, s.Create(ctx, w))

	checked := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	w.MarkStatsChecked(true, true, checked)
	require.NoError(t, s.Update(ctx, w))

	got, err := s.GetByID(ctx, w.ID)
	require.NoError(t, err)
	assert.True(t, got.IsScammer)
	assert.True(t, got.IsBot)
	require.NotNil(t, got.LastStatsCheck)
	assert.True(t, checked.Equal(*got.LastStatsCheck))
}

func TestWalletStore_TokenStats(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	s := postgres.NewPostgresWalletStore(newTestDB(t))
	w := newWallet(t, testAddress)
	require.NoError(t, s.Create(ctx, w))

	bought := time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC)
	percent := 150.0
	price := 0.002
	held := int64(90)
	stat := &domain.TokenStat{
		WalletID:            w.ID,
		TokenAddress:        "tokenB",
		TotalBuys:           2,
		TotalBuyAmountUSD:   100,
		TotalSellAmountUSD:  250,
		TotalProfitUSD:      150,
		TotalProfitPercent:  &percent,
		FirstBuyAt:          &bought,
		FirstBuyPriceUSD:    &price,
		FirstBuySellSeconds: &held,
		ArbitrageSwaps:      4,
	}
	require.NoError(t, s.UpsertTokenStat(ctx, stat))
	require.NoError(t, s.UpsertTokenStat(ctx, &domain.TokenStat{WalletID: w.ID, TokenAddress: "tokenA", TotalSales: 1}))

	stat.TotalSales = 3
	require.NoError(t, s.UpsertTokenStat(ctx, stat))

	stats, err := s.ListTokenStats(ctx, w.ID)
	require.NoError(t, err)
	require.Len(t, stats, 2)

	assert.Equal(t, "tokenA", stats[0].TokenAddress)
	assert.Nil(t, stats[0].TotalProfitPercent)
	assert.Nil(t, stats[0].FirstBuyAt)
	assert.Nil(t, stats[0].FirstBuyPriceUSD)
	assert.Nil(t, stats[0].FirstBuySellSeconds)

	assert.Equal(t, "tokenB", stats[1].TokenAddress)
	assert.Equal(t, 3, stats[1].TotalSales)
	require.NotNil(t, stats[1].TotalProfitPercent)
	assert.InDelta(t, 150.0, *stats[1].TotalProfitPercent, 1e-9)
	require.NotNil(t, stats[1].FirstBuyAt)
	assert.True(t, bought.Equal(*stats[1].FirstBuyAt))
	require.NotNil(t, stats[1].FirstBuyPriceUSD)
	assert.InDelta(t, 0.002, *stats[1].FirstBuyPriceUSD, 1e-12)
	require.NotNil(t, stats[1].FirstBuySellSeconds)
	assert.Equal(t, int64(90), *stats[1].FirstBuySellSeconds)
	assert.Equal(t, 4, stats[1].ArbitrageSwaps)

	empty, err := s.ListTokenStats(ctx, uuid.New())
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestWalletStore_Stats(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	s := postgres.NewPostgresWalletStore(newTestDB(t))
	w := newWallet(t, testAddress)
	require.NoError(t, s.Create(ctx, w))

	none, err := s.GetStats(ctx, w.ID)
	require.NoError(t, err)
	assert.Empty(t, none)

	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	winrate := 50.0
	median := 12.5
	share := 25.0
	stats := []domain.WalletStats{
		{
			WalletID: w.ID, Period: domain.StatsPeriodAll, TotalToken: 4, Winrate: &winrate, PnLGt5x: 1,
			TokenBuySellDurationMedian: &median, PnLGt5xPercent: &share, ArbitrageSwaps: 2, UpdatedAt: now,
		},
		{WalletID: w.ID, Period: domain.StatsPeriod7d, TotalToken: 1, UpdatedAt: now},
		{WalletID: w.ID, Period: domain.StatsPeriod30d, TotalToken: 2, UpdatedAt: now},
	}
	require.NoError(t, s.SaveStats(ctx, stats))

	stats[0].TotalToken = 5
	require.NoError(t, s.SaveStats(ctx, stats[:1]))

	got, err := s.GetStats(ctx, w.ID)
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, domain.StatsPeriod7d, got[0].Period)
	assert.Equal(t, domain.StatsPeriod30d, got[1].Period)
	assert.Equal(t, domain.StatsPeriodAll, got[2].Period)

	assert.Equal(t, 5, got[2].TotalToken)
	assert.Equal(t, 1, got[2].PnLGt5x)
	require.NotNil(t, got[2].Winrate)
	assert.InDelta(t, 50.0, *got[2].Winrate, 1e-9)
	require.NotNil(t, got[2].TokenBuySellDurationMedian)
	assert.InDelta(t, 12.5, *got[2].TokenBuySellDurationMedian, 1e-9)
	require.NotNil(t, got[2].PnLGt5xPercent)
	assert.InDelta(t, 25.0, *got[2].PnLGt5xPercent, 1e-9)
	assert.Equal(t, 2, got[2].ArbitrageSwaps)
	assert.Nil(t, got[2].TokenBuySellDurationAvg)
	assert.Nil(t, got[0].Winrate)
	assert.True(t, now.Equal(got[0].UpdatedAt))
}

func TestWalletStore_WithTxRollback(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	db := newTestDB(t)
	s := postgres.NewPostgresWalletStore(db)
	w := newWallet(t, testAddress)

	err := store.RunInTransaction(ctx, db, func(ctx context.Context, tx *sql.Tx) error {
		require.NoError(t, s.WithTx(tx).Create(ctx, w))
		return assert.AnError
	})
	require.ErrorIs(t, err, assert.AnError)

	_, err = s.GetByID(ctx, w.ID)
	assert.ErrorIs(t, err, store.ErrWalletNotFound)
}

func TestWalletStore_ListWallets(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	s := postgres.NewPostgresWalletStore(newTestDB(t))

	addresses := []string{
		"7xKXtg2CW87d97TXJSDpbD5jBkheTqA83TZRuJosgAs1",
		"7xKXtg2CW87d97TXJSDpbD5jBkheTqA83TZRuJosgAs2",
		"7xKXtg2CW87d97TXJSDpbD5jBkheTqA83TZRuJosgAs3",
	}
	base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	for i, address := range addresses {
		w := newWallet(t, address)
		w.CreatedAt = base.Add(time.Duration(i) * time.Hour)
		w.IsBot = i == 1
		require.NoError(t, s.Create(ctx, w))
	}

	page, total, err := s.ListWallets(ctx, store.WalletFilter{Limit: 2})
	require.NoError(t, err)
	assert.Equal(t, 3, total)
	require.Len(t, page, 2)
	assert.Equal(t, addresses[0], page[0].Address)
	assert.Equal(t, addresses[1], page[1].Address)
	assert.True(t, page[1].IsBot)

	page, total, err = s.ListWallets(ctx, store.WalletFilter{Limit: 2, Offset: 2})
	require.NoError(t, err)
	assert.Equal(t, 3, total)
	require.Len(t, page, 1)
	assert.Equal(t, addresses[2], page[0].Address)

	page, _, err = s.ListWallets(ctx, store.WalletFilter{Limit: 10, NewestFirst: true})
	require.NoError(t, err)
	require.Len(t, page, 3)
	assert.Equal(t, addresses[2], page[0].Address)

	notBot := false
	page, total, err = s.ListWallets(ctx, store.WalletFilter{Limit: 10, IsBot: &notBot})
	require.NoError(t, err)
	assert.Equal(t, 2, total)
	require.Len(t, page, 2)
	for _, w := range page {
		assert.False(t, w.IsBot)
	}

	scammer := true
	page, total, err = s.ListWallets(ctx, store.WalletFilter{Limit: 10, IsBot: &notBot, IsScammer: &scammer})
	require.NoError(t, err)
	assert.Zero(t, total)
	assert.Empty(t, page)
}

func TestWalletStore_PageTokenStats(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	s := postgres.NewPostgresWalletStore(newTestDB(t))
	w := newWallet(t, testAddress)
	require.NoError(t, s.Create(ctx, w))

	for _, token := range []string{"tokenC", "tokenA", "tokenB"} {
		require.NoError(t, s.UpsertTokenStat(ctx, &domain.TokenStat{WalletID: w.ID, TokenAddress: token, TotalBuys: 1}))
	}

	page, total, err := s.PageTokenStats(ctx, w.ID, 2, 1)
	require.NoError(t, err)
	assert.Equal(t, 3, total)
	require.Len(t, page, 2)
	assert.Equal(t, "tokenB", page[0].TokenAddress)
	assert.Equal(t, "tokenC", page[1].TokenAddress)

	page, total, err = s.PageTokenStats(ctx, uuid.New(), 10, 0)
	require.NoError(t, err)
	assert.Zero(t, total)
	assert.Empty(t, page)
}
