package postgres_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/walletstats/internal/domain"
	"github.com/phrazzld/walletstats/internal/domain/walletstats"
	"github.com/phrazzld/walletstats/internal/platform/postgres"
	"github.com/phrazzld/walletstats/internal/store"
	"github.com/phrazzld/walletstats/internal/task"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWalletStatsTask_AgainstStores(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	db := newTestDB(t)
	wallets := postgres.NewPostgresWalletStore(db)
	tasks := postgres.NewPostgresTaskStore(db)

	w := newWallet(t, testAddress)
	require.NoError(t, wallets.Create(ctx, w))

	recent := time.Now().UTC().Add(-24 * time.Hour)
	for i, token := range []string{"t1", "t2", "t3", "t4", "t5"} {
		stat := &domain.TokenStat{WalletID: w.ID, TokenAddress: token}
		if i < 3 {
			stat.TotalSales = 1 // sold without buying
		} else {
			stat.TotalBuys = 1
			stat.TotalBuyAmountUSD = 10
			stat.FirstBuyAt = &recent
		}
		require.NoError(t, wallets.UpsertTokenStat(ctx, stat))
	}

	factory := task.NewWalletStatsTaskFactory(
		task.NewWalletStoreAdapter(wallets, db),
		walletstats.NewDefaultService(),
		discardLogger(),
	)
	runner := task.NewTaskRunner(tasks, task.DefaultTaskRunnerConfig(), discardLogger())
	runner.RegisterFactory(task.TaskTypeWalletStats, factory)
	require.NoError(t, runner.Start(ctx))
	t.Cleanup(runner.Stop)

	taskID := uuid.New()
	tk, err := factory.CreateTask(taskID, []byte(`{"wallet_id":"`+w.ID.String()+`","address":"`+testAddress+`"}`))
	require.NoError(t, err)
	require.NoError(t, runner.Submit(ctx, tk))

	require.Eventually(t, func() bool {
		rec, err := tasks.GetTask(ctx, taskID)
		return err == nil && rec.Status() == task.TaskStatusCompleted
	}, 5*time.Second, 20*time.Millisecond)

	got, err := wallets.GetByID(ctx, w.ID)
	require.NoError(t, err)
	assert.True(t, got.IsScammer)
	assert.NotNil(t, got.LastStatsCheck)

	stats, err := wallets.GetStats(ctx, w.ID)
	require.NoError(t, err)
	require.Len(t, stats, 3)
	assert.Equal(t, 5, stats[2].TotalToken)
	assert.Equal(t, 3, stats[2].TokenSellWithoutBuy)
}

func TestWalletStoreAdapter_RollsBackOnMissingWallet(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	db := newTestDB(t)
	wallets := postgres.NewPostgresWalletStore(db)
	adapter := task.NewWalletStoreAdapter(wallets, db)

	// The wallet row is never created, so the update fails after the
	// stats insert and the whole recalculation must roll back.
	ghost := newWallet(t, testAddress)
	stats := []domain.WalletStats{{WalletID: ghost.ID, Period: domain.StatsPeriodAll, UpdatedAt: time.Now()}}

	err := adapter.ApplyRecalculation(ctx, ghost, stats)
	assert.ErrorIs(t, err, store.ErrWalletNotFound)

	saved, err := wallets.GetStats(ctx, ghost.ID)
	require.NoError(t, err)
	assert.Empty(t, saved)
}
