package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/walletstats/internal/domain"
	"github.com/phrazzld/walletstats/internal/platform/logger"
	"github.com/phrazzld/walletstats/internal/redact"
	"github.com/phrazzld/walletstats/internal/store"
)

const walletColumns = `id, address, is_scammer, is_bot, last_stats_check, created_at, updated_at`

const tokenStatColumns = `wallet_id, token_address, total_buys, total_sales,
	total_buy_amount_usd, total_sell_amount_usd, total_buy_amount_token, total_sell_amount_token,
	total_profit_usd, total_profit_percent, first_buy_at, first_sell_at,
	first_buy_price_usd, first_buy_sell_seconds, multi_trader_swaps, arbitrage_swaps`

const walletStatsColumns = `wallet_id, period, total_token, total_buys, total_sales,
	total_buy_amount_usd, total_sell_amount_usd, total_profit_usd,
	total_profit_multiplier, winrate, token_avg_buy_amount_usd, token_avg_profit_usd,
	token_median_buy_amount_usd, token_first_buy_avg_price_usd, token_first_buy_median_price_usd,
	token_buy_sell_duration_avg, token_buy_sell_duration_median,
	token_with_buy, token_with_buy_and_sell, token_buy_without_sell, token_sell_without_buy,
	token_sell_gt_buy_amount, multi_trader_swaps, arbitrage_swaps,
	pnl_gt_5x, pnl_2x_5x, pnl_lt_2x, pnl_minus_dot5_0x, pnl_lt_minus_dot5,
	pnl_gt_5x_percent, pnl_2x_5x_percent, pnl_lt_2x_percent, pnl_minus_dot5_0x_percent,
	pnl_lt_minus_dot5_percent, updated_at`

const walletStatsColumnCount = 35

// PostgresWalletStore implements the store.WalletStore interface
type PostgresWalletStore struct {
	db store.DBTX
}

// NewPostgresWalletStore creates a new PostgresWalletStore
func NewPostgresWalletStore(db store.DBTX) *PostgresWalletStore {
	return &PostgresWalletStore{db: db}
}

func logFailure(ctx context.Context, msg string, err error, args ...any) {
	logger.FromContext(ctx).Error(msg, append(args, slog.String("error", redact.Error(err)))...)
}

// Create inserts a wallet after validating it
func (s *PostgresWalletStore) Create(ctx context.Context, wallet *domain.Wallet) error {
	if err := wallet.Validate(); err != nil {
		return fmt.Errorf("%w: %v", store.ErrInvalidEntity, err)
	}

	query := `INSERT INTO wallets (` + walletColumns + `) VALUES ($1, $2, $3, $4, $5, $6, $7)`
	_, err := s.db.ExecContext(ctx, query,
		wallet.ID,
		wallet.Address,
		wallet.IsScammer,
		wallet.IsBot,
		nullTime(wallet.LastStatsCheck),
		wallet.CreatedAt.UTC(),
		wallet.UpdatedAt.UTC(),
	)
	if err != nil {
		logFailure(ctx, "failed to create wallet", err, "wallet_id", wallet.ID)
		return MapUniqueViolation(err, store.ErrWalletExists)
	}
	return nil
}

// GetByID returns store.ErrWalletNotFound when no wallet matches
func (s *PostgresWalletStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Wallet, error) {
	query := `SELECT ` + walletColumns + ` FROM wallets WHERE id = $1`
	return s.getWallet(ctx, query, id)
}

// GetByAddress returns store.ErrWalletNotFound when no wallet matches
func (s *PostgresWalletStore) GetByAddress(ctx context.Context, address string) (*domain.Wallet, error) {
	query := `SELECT ` + walletColumns + ` FROM wallets WHERE address = $1`
	return s.getWallet(ctx, query, address)
}

func (s *PostgresWalletStore) getWallet(ctx context.Context, query string, arg any) (*domain.Wallet, error) {
	w, err := scanWallet(s.db.QueryRowContext(ctx, query, arg))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrWalletNotFound
		}
		logFailure(ctx, "failed to get wallet", err)
		return nil, fmt.Errorf("failed to get wallet: %w", MapError(err))
	}
	return w, nil
}

func scanWallet(row rowScanner) (*domain.Wallet, error) {
	var (
		w         domain.Wallet
		lastCheck sql.NullTime
	)
	if err := row.Scan(
		&w.ID,
		&w.Address,
		&w.IsScammer,
		&w.IsBot,
		&lastCheck,
		&w.CreatedAt,
		&w.UpdatedAt,
	); err != nil {
		return nil, err
	}
	w.LastStatsCheck = timePtr(lastCheck)
	w.CreatedAt = w.CreatedAt.UTC()
	w.UpdatedAt = w.UpdatedAt.UTC()
	return &w, nil
}

// ListWallets pages through wallets ordered by creation time
func (s *PostgresWalletStore) ListWallets(ctx context.Context, filter store.WalletFilter) ([]domain.Wallet, int, error) {
	var (
		conds []string
		args  []any
	)
	if filter.IsBot != nil {
		args = append(args, *filter.IsBot)
		conds = append(conds, "is_bot = $"+strconv.Itoa(len(args)))
	}
	if filter.IsScammer != nil {
		args = append(args, *filter.IsScammer)
		conds = append(conds, "is_scammer = $"+strconv.Itoa(len(args)))
	}
	where := ""
	if len(conds) > 0 {
		where = " WHERE " + strings.Join(conds, " AND ")
	}

	var total int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM wallets`+where, args...).Scan(&total); err != nil {
		logFailure(ctx, "failed to count wallets", err)
		return nil, 0, fmt.Errorf("failed to count wallets: %w", MapError(err))
	}

	order := "ASC"
	if filter.NewestFirst {
		order = "DESC"
	}
	query := `SELECT ` + walletColumns + ` FROM wallets` + where +
		` ORDER BY created_at ` + order + `, id ` + order +
		` LIMIT $` + strconv.Itoa(len(args)+1) + ` OFFSET $` + strconv.Itoa(len(args)+2)

	rows, err := s.db.QueryContext(ctx, query, append(args, filter.Limit, filter.Offset)...)
	if err != nil {
		logFailure(ctx, "failed to list wallets", err)
		return nil, 0, fmt.Errorf("failed to list wallets: %w", MapError(err))
	}
	defer func() { _ = rows.Close() }()

	wallets := []domain.Wallet{}
	for rows.Next() {
		w, err := scanWallet(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan wallet: %w", err)
		}
		wallets = append(wallets, *w)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("error iterating wallets: %w", err)
	}
	return wallets, total, nil
}

// Update writes the mutable wallet fields
func (s *PostgresWalletStore) Update(ctx context.Context, wallet *domain.Wallet) error {
	query := `
		UPDATE wallets
		SET is_scammer = $1, is_bot = $2, last_stats_check = $3, updated_at = $4
		WHERE id = $5
	`
	result, err := s.db.ExecContext(ctx, query,
		wallet.IsScammer,
		wallet.IsBot,
		nullTime(wallet.LastStatsCheck),
		wallet.UpdatedAt.UTC(),
		wallet.ID,
	)
	if err != nil {
		logFailure(ctx, "failed to update wallet", err, "wallet_id", wallet.ID)
		return fmt.Errorf("failed to update wallet: %w", MapError(err))
	}
	return CheckRowsAffected(result, store.ErrWalletNotFound)
}

// UpsertTokenStat inserts or replaces the aggregate for one token
func (s *PostgresWalletStore) UpsertTokenStat(ctx context.Context, stat *domain.TokenStat) error {
	query := `
		INSERT INTO token_stats (` + tokenStatColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)
		ON CONFLICT (wallet_id, token_address) DO UPDATE SET
			total_buys = excluded.total_buys,
			total_sales = excluded.total_sales,
			total_buy_amount_usd = excluded.total_buy_amount_usd,
			total_sell_amount_usd = excluded.total_sell_amount_usd,
			total_buy_amount_token = excluded.total_buy_amount_token,
			total_sell_amount_token = excluded.total_sell_amount_token,
			total_profit_usd = excluded.total_profit_usd,
			total_profit_percent = excluded.total_profit_percent,
			first_buy_at = excluded.first_buy_at,
			first_sell_at = excluded.first_sell_at,
			first_buy_price_usd = excluded.first_buy_price_usd,
			first_buy_sell_seconds = excluded.first_buy_sell_seconds,
			multi_trader_swaps = excluded.multi_trader_swaps,
			arbitrage_swaps = excluded.arbitrage_swaps
	`
	_, err := s.db.ExecContext(ctx, query,
		stat.WalletID,
		stat.TokenAddress,
		stat.TotalBuys,
		stat.TotalSales,
		stat.TotalBuyAmountUSD,
		stat.TotalSellAmountUSD,
		stat.TotalBuyAmountToken,
		stat.TotalSellAmountToken,
		stat.TotalProfitUSD,
		nullFloat(stat.TotalProfitPercent),
		nullTime(stat.FirstBuyAt),
		nullTime(stat.FirstSellAt),
		nullFloat(stat.FirstBuyPriceUSD),
		nullInt64(stat.FirstBuySellSeconds),
		stat.MultiTraderSwaps,
		stat.ArbitrageSwaps,
	)
	if err != nil {
		logFailure(ctx, "failed to upsert token stat", err,
			"wallet_id", stat.WalletID,
			"token_address", stat.TokenAddress)
		return fmt.Errorf("failed to upsert token stat: %w", MapError(err))
	}
	return nil
}

// ListTokenStats returns every token aggregate for the wallet
func (s *PostgresWalletStore) ListTokenStats(ctx context.Context, walletID uuid.UUID) ([]domain.TokenStat, error) {
	query := `SELECT ` + tokenStatColumns + ` FROM token_stats WHERE wallet_id = $1 ORDER BY token_address`

	rows, err := s.db.QueryContext(ctx, query, walletID)
	if err != nil {
		logFailure(ctx, "failed to list token stats", err, "wallet_id", walletID)
		return nil, fmt.Errorf("failed to list token stats: %w", MapError(err))
	}
	return scanTokenStats(rows)
}

// PageTokenStats returns one page of token aggregates and the total count
func (s *PostgresWalletStore) PageTokenStats(
	ctx context.Context,
	walletID uuid.UUID,
	limit, offset int,
) ([]domain.TokenStat, int, error) {
	var total int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM token_stats WHERE wallet_id = $1`, walletID).Scan(&total)
	if err != nil {
		logFailure(ctx, "failed to count token stats", err, "wallet_id", walletID)
		return nil, 0, fmt.Errorf("failed to count token stats: %w", MapError(err))
	}

	query := `SELECT ` + tokenStatColumns + ` FROM token_stats WHERE wallet_id = $1
		ORDER BY token_address LIMIT $2 OFFSET $3`
	rows, err := s.db.QueryContext(ctx, query, walletID, limit, offset)
	if err != nil {
		logFailure(ctx, "failed to page token stats", err, "wallet_id", walletID)
		return nil, 0, fmt.Errorf("failed to page token stats: %w", MapError(err))
	}
	stats, err := scanTokenStats(rows)
	if err != nil {
		return nil, 0, err
	}
	return stats, total, nil
}

func scanTokenStats(rows *sql.Rows) ([]domain.TokenStat, error) {
	defer func() { _ = rows.Close() }()

	stats := []domain.TokenStat{}
	for rows.Next() {
		var (
			t                         domain.TokenStat
			profitPercent, firstPrice sql.NullFloat64
			firstBuy, firstSell       sql.NullTime
			buySellSeconds            sql.NullInt64
		)
		if err := rows.Scan(
			&t.WalletID,
			&t.TokenAddress,
			&t.TotalBuys,
			&t.TotalSales,
			&t.TotalBuyAmountUSD,
			&t.TotalSellAmountUSD,
			&t.TotalBuyAmountToken,
			&t.TotalSellAmountToken,
			&t.TotalProfitUSD,
			&profitPercent,
			&firstBuy,
			&firstSell,
			&firstPrice,
			&buySellSeconds,
			&t.MultiTraderSwaps,
			&t.ArbitrageSwaps,
		); err != nil {
			return nil, fmt.Errorf("failed to scan token stat: %w", err)
		}
		t.TotalProfitPercent = floatPtr(profitPercent)
		t.FirstBuyAt = timePtr(firstBuy)
		t.FirstSellAt = timePtr(firstSell)
		t.FirstBuyPriceUSD = floatPtr(firstPrice)
		t.FirstBuySellSeconds = int64Ptr(buySellSeconds)
		stats = append(stats, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating token stats: %w", err)
	}
	return stats, nil
}

// SaveStats inserts or replaces one row per (wallet, period)
func (s *PostgresWalletStore) SaveStats(ctx context.Context, stats []domain.WalletStats) error {
	query := `
		INSERT INTO wallet_stats (` + walletStatsColumns + `)
		VALUES (` + placeholders(walletStatsColumnCount) + `)
		ON CONFLICT (wallet_id, period) DO UPDATE SET
			total_token = excluded.total_token,
			total_buys = excluded.total_buys,
			total_sales = excluded.total_sales,
			total_buy_amount_usd = excluded.total_buy_amount_usd,
			total_sell_amount_usd = excluded.total_sell_amount_usd,
			total_profit_usd = excluded.total_profit_usd,
			total_profit_multiplier = excluded.total_profit_multiplier,
			winrate = excluded.winrate,
			token_avg_buy_amount_usd = excluded.token_avg_buy_amount_usd,
			token_avg_profit_usd = excluded.token_avg_profit_usd,
			token_median_buy_amount_usd = excluded.token_median_buy_amount_usd,
			token_first_buy_avg_price_usd = excluded.token_first_buy_avg_price_usd,
			token_first_buy_median_price_usd = excluded.token_first_buy_median_price_usd,
			token_buy_sell_duration_avg = excluded.token_buy_sell_duration_avg,
			token_buy_sell_duration_median = excluded.token_buy_sell_duration_median,
			token_with_buy = excluded.token_with_buy,
			token_with_buy_and_sell = excluded.token_with_buy_and_sell,
			token_buy_without_sell = excluded.token_buy_without_sell,
			token_sell_without_buy = excluded.token_sell_without_buy,
			token_sell_gt_buy_amount = excluded.token_sell_gt_buy_amount,
			multi_trader_swaps = excluded.multi_trader_swaps,
			arbitrage_swaps = excluded.arbitrage_swaps,
			pnl_gt_5x = excluded.pnl_gt_5x,
			pnl_2x_5x = excluded.pnl_2x_5x,
			pnl_lt_2x = excluded.pnl_lt_2x,
			pnl_minus_dot5_0x = excluded.pnl_minus_dot5_0x,
			pnl_lt_minus_dot5 = excluded.pnl_lt_minus_dot5,
			pnl_gt_5x_percent = excluded.pnl_gt_5x_percent,
			pnl_2x_5x_percent = excluded.pnl_2x_5x_percent,
			pnl_lt_2x_percent = excluded.pnl_lt_2x_percent,
			pnl_minus_dot5_0x_percent = excluded.pnl_minus_dot5_0x_percent,
			pnl_lt_minus_dot5_percent = excluded.pnl_lt_minus_dot5_percent,
			updated_at = excluded.updated_at
	`
	for _, st := range stats {
		_, err := s.db.ExecContext(ctx, query,
			st.WalletID,
			string(st.Period),
			st.TotalToken,
			st.TotalBuys,
			st.TotalSales,
			st.TotalBuyAmountUSD,
			st.TotalSellAmountUSD,
			st.TotalProfitUSD,
			nullFloat(st.TotalProfitMultiplier),
			nullFloat(st.Winrate),
			nullFloat(st.TokenAvgBuyAmountUSD),
			nullFloat(st.TokenAvgProfitUSD),
			nullFloat(st.TokenMedianBuyAmountUSD),
			nullFloat(st.TokenFirstBuyAvgPriceUSD),
			nullFloat(st.TokenFirstBuyMedianPriceUSD),
			nullFloat(st.TokenBuySellDurationAvg),
			nullFloat(st.TokenBuySellDurationMedian),
			st.TokenWithBuy,
			st.TokenWithBuyAndSell,
			st.TokenBuyWithoutSell,
			st.TokenSellWithoutBuy,
			st.TokenSellGtBuyAmount,
			st.MultiTraderSwaps,
			st.ArbitrageSwaps,
			st.PnLGt5x,
			st.PnL2x5x,
			st.PnLLt2x,
			st.PnLMinusDot5To0x,
			st.PnLLtMinusDot5,
			nullFloat(st.PnLGt5xPercent),
			nullFloat(st.PnL2x5xPercent),
			nullFloat(st.PnLLt2xPercent),
			nullFloat(st.PnLMinusDot5To0xPercent),
			nullFloat(st.PnLLtMinusDot5Percent),
			st.UpdatedAt.UTC(),
		)
		if err != nil {
			logFailure(ctx, "failed to save wallet stats", err,
				"wallet_id", st.WalletID,
				"period", st.Period)
			return fmt.Errorf("failed to save wallet stats: %w", MapError(err))
		}
	}
	return nil
}

// GetStats returns the stored periods in 7d, 30d, all order
func (s *PostgresWalletStore) GetStats(ctx context.Context, walletID uuid.UUID) ([]domain.WalletStats, error) {
	query := `SELECT ` + walletStatsColumns + ` FROM wallet_stats WHERE wallet_id = $1`

	rows, err := s.db.QueryContext(ctx, query, walletID)
	if err != nil {
		logFailure(ctx, "failed to get wallet stats", err, "wallet_id", walletID)
		return nil, fmt.Errorf("failed to get wallet stats: %w", MapError(err))
	}
	defer func() { _ = rows.Close() }()

	byPeriod := make(map[domain.StatsPeriod]domain.WalletStats, len(domain.AllStatsPeriods))
	for rows.Next() {
		var (
			st     domain.WalletStats
			period string
			// Nullable ratios, in column order.
			ratios [14]sql.NullFloat64
		)
		if err := rows.Scan(
			&st.WalletID,
			&period,
			&st.TotalToken,
			&st.TotalBuys,
			&st.TotalSales,
			&st.TotalBuyAmountUSD,
			&st.TotalSellAmountUSD,
			&st.TotalProfitUSD,
			&ratios[0],
			&ratios[1],
			&ratios[2],
			&ratios[3],
			&ratios[4],
			&ratios[5],
			&ratios[6],
			&ratios[7],
			&ratios[8],
			&st.TokenWithBuy,
			&st.TokenWithBuyAndSell,
			&st.TokenBuyWithoutSell,
			&st.TokenSellWithoutBuy,
			&st.TokenSellGtBuyAmount,
			&st.MultiTraderSwaps,
			&st.ArbitrageSwaps,
			&st.PnLGt5x,
			&st.PnL2x5x,
			&st.PnLLt2x,
			&st.PnLMinusDot5To0x,
			&st.PnLLtMinusDot5,
			&ratios[9],
			&ratios[10],
			&ratios[11],
			&ratios[12],
			&ratios[13],
			&st.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan wallet stats: %w", err)
		}
		st.Period = domain.StatsPeriod(period)
		st.UpdatedAt = st.UpdatedAt.UTC()
		for i, dst := range []**float64{
			&st.TotalProfitMultiplier,
			&st.Winrate,
			&st.TokenAvgBuyAmountUSD,
			&st.TokenAvgProfitUSD,
			&st.TokenMedianBuyAmountUSD,
			&st.TokenFirstBuyAvgPriceUSD,
			&st.TokenFirstBuyMedianPriceUSD,
			&st.TokenBuySellDurationAvg,
			&st.TokenBuySellDurationMedian,
			&st.PnLGt5xPercent,
			&st.PnL2x5xPercent,
			&st.PnLLt2xPercent,
			&st.PnLMinusDot5To0xPercent,
			&st.PnLLtMinusDot5Percent,
		} {
			*dst = floatPtr(ratios[i])
		}
		byPeriod[st.Period] = st
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating wallet stats: %w", err)
	}

	out := make([]domain.WalletStats, 0, len(byPeriod))
	for _, p := range domain.AllStatsPeriods {
		if st, ok := byPeriod[p]; ok {
			out = append(out, st)
		}
	}
	return out, nil
}

// WithTx returns a store that runs its queries in tx
func (s *PostgresWalletStore) WithTx(tx *sql.Tx) store.WalletStore {
	return &PostgresWalletStore{db: tx}
}

func nullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: t.UTC(), Valid: true}
}

func timePtr(t sql.NullTime) *time.Time {
	if !t.Valid {
		return nil
	}
	v := t.Time.UTC()
	return &v
}

func nullFloat(f *float64) sql.NullFloat64 {
	if f == nil {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: *f, Valid: true}
}

func nullInt64(i *int64) sql.NullInt64 {
	if i == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: *i, Valid: true}
}

func int64Ptr(i sql.NullInt64) *int64 {
	if !i.Valid {
		return nil
	}
	v := i.Int64
	return &v
}

// placeholders returns "$1, $2, ..., $n".
func placeholders(n int) string {
	parts := make([]string, n)
	for i := range parts {
		parts[i] = "$" + strconv.Itoa(i+1)
	}
	return strings.Join(parts, ", ")
}

func floatPtr(f sql.NullFloat64) *float64 {
	if !f.Valid {
		return nil
	}
	v := f.Float64
	return &v
}

var _ store.WalletStore = (*PostgresWalletStore)(nil)
