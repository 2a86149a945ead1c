package shared

// Envelope statuses. Any value other than StatusOK is a rejection.
const (
	StatusOK    = "ok"
	StatusError = "error"
)

// Envelope is the body shape of every JSON response served under /api.
// Result is only populated when Status is StatusOK.
type Envelope[T any] struct {
	Status  string `json:"status"`
	Result  *T     `json:"result,omitempty"`
	Message string `json:"message,omitempty"`
	TraceID string `json:"trace_id,omitempty"`
}

// RefreshStatsRequest is the body of POST /api/wallets/refresh_stats.
type RefreshStatsRequest struct {
	Address string `json:"address" validate:"required,min=32,max=44"`
}

// RefreshTaskResult is returned once a refresh job has been accepted.
type RefreshTaskResult struct {
	TaskID string `json:"task_id"`
}

// RefreshStatusResult is returned by GET /api/wallets/refresh_stats/{task_id}/status.
// Status is one of "pending", "success" or "failure".
type RefreshStatusResult struct {
	TaskID     string `json:"task_id"`
	Status     string `json:"status"`
	TaskResult string `json:"task_result,omitempty"`
}

// WalletStatsResult is returned by GET /api/wallets/{address}/stats.
type WalletStatsResult struct {
	Address        string             `json:"address" yaml:"address"`
	LastStatsCheck string             `json:"last_stats_check,omitempty" yaml:"last_stats_check,omitempty"`
	IsScammer      bool               `json:"is_scammer" yaml:"is_scammer"`
	IsBot          bool               `json:"is_bot" yaml:"is_bot"`
	Periods        []PeriodStatsEntry `json:"periods" yaml:"periods"`
}

// WalletResult is returned by GET /api/wallets/{address}. Periods that were
// never calculated are omitted.
type WalletResult struct {
	Address        string            `json:"address" yaml:"address"`
	IsBot          bool              `json:"is_bot" yaml:"is_bot"`
	IsScammer      bool              `json:"is_scammer" yaml:"is_scammer"`
	LastStatsCheck string            `json:"last_stats_check,omitempty" yaml:"last_stats_check,omitempty"`
	CreatedAt      string            `json:"created_at" yaml:"created_at"`
	Stats7d        *PeriodStatsEntry `json:"stats_7d,omitempty" yaml:"stats_7d,omitempty"`
	Stats30d       *PeriodStatsEntry `json:"stats_30d,omitempty" yaml:"stats_30d,omitempty"`
	StatsAll       *PeriodStatsEntry `json:"stats_all,omitempty" yaml:"stats_all,omitempty"`
}

// WalletSummary is one row of GET /api/wallets.
type WalletSummary struct {
	Address        string `json:"address" yaml:"address"`
	IsBot          bool   `json:"is_bot" yaml:"is_bot"`
	IsScammer      bool   `json:"is_scammer" yaml:"is_scammer"`
	LastStatsCheck string `json:"last_stats_check,omitempty" yaml:"last_stats_check,omitempty"`
	CreatedAt      string `json:"created_at" yaml:"created_at"`
}

// PaginationResult describes the page a listing returned.
type PaginationResult struct {
	Page       int `json:"page" yaml:"page"`
	PageSize   int `json:"page_size" yaml:"page_size"`
	Count      int `json:"count" yaml:"count"`
	TotalCount int `json:"total_count" yaml:"total_count"`
	TotalPages int `json:"total_pages" yaml:"total_pages"`
}

// WalletsPageResult is returned by GET /api/wallets.
type WalletsPageResult struct {
	Wallets    []WalletSummary  `json:"wallets" yaml:"wallets"`
	Pagination PaginationResult `json:"pagination" yaml:"pagination"`
}

// WalletTokensPageResult is returned by GET /api/wallets/{address}/tokens.
type WalletTokensPageResult struct {
	Address    string           `json:"address" yaml:"address"`
	Tokens     []TokenStatEntry `json:"wallet_tokens" yaml:"wallet_tokens"`
	Pagination PaginationResult `json:"pagination" yaml:"pagination"`
}

// TokenStatEntry is a flattened view of domain.TokenStat.
type TokenStatEntry struct {
	TokenAddress         string   `json:"token_address" yaml:"token_address"`
	TotalBuys            int      `json:"total_buys" yaml:"total_buys"`
	TotalSales           int      `json:"total_sales" yaml:"total_sales"`
	TotalBuyAmountUSD    float64  `json:"total_buy_amount_usd" yaml:"total_buy_amount_usd"`
	TotalSellAmountUSD   float64  `json:"total_sell_amount_usd" yaml:"total_sell_amount_usd"`
	TotalBuyAmountToken  float64  `json:"total_buy_amount_token" yaml:"total_buy_amount_token"`
	TotalSellAmountToken float64  `json:"total_sell_amount_token" yaml:"total_sell_amount_token"`
	TotalProfitUSD       float64  `json:"total_profit_usd" yaml:"total_profit_usd"`
	TotalProfitPercent   *float64 `json:"total_profit_percent" yaml:"total_profit_percent"`
	FirstBuyPriceUSD     *float64 `json:"first_buy_price_usd" yaml:"first_buy_price_usd"`
	FirstBuyAt           string   `json:"first_buy_at,omitempty" yaml:"first_buy_at,omitempty"`
	FirstSellAt          string   `json:"first_sell_at,omitempty" yaml:"first_sell_at,omitempty"`
	FirstBuySellSeconds  *int64   `json:"first_buy_sell_duration" yaml:"first_buy_sell_duration"`
	MultiTraderSwaps     int      `json:"multi_trader_swaps" yaml:"multi_trader_swaps"`
	ArbitrageSwaps       int      `json:"arbitrage_swaps" yaml:"arbitrage_swaps"`
}

// PeriodStatsEntry is a flattened view of domain.WalletStats for one period.
type PeriodStatsEntry struct {
	Period                      string   `json:"period" yaml:"period"`
	TotalToken                  int      `json:"total_token" yaml:"total_token"`
	TotalBuys                   int      `json:"total_buys" yaml:"total_buys"`
	TotalSales                  int      `json:"total_sales" yaml:"total_sales"`
	TotalBuyAmountUSD           float64  `json:"total_buy_amount_usd" yaml:"total_buy_amount_usd"`
	TotalSellAmountUSD          float64  `json:"total_sell_amount_usd" yaml:"total_sell_amount_usd"`
	TotalProfitUSD              float64  `json:"total_profit_usd" yaml:"total_profit_usd"`
	TotalProfitMultiplier       *float64 `json:"total_profit_multiplier" yaml:"total_profit_multiplier"`
	Winrate                     *float64 `json:"winrate" yaml:"winrate"`
	TokenAvgBuyAmountUSD        *float64 `json:"token_avg_buy_amount" yaml:"token_avg_buy_amount"`
	TokenAvgProfitUSD           *float64 `json:"token_avg_profit_usd" yaml:"token_avg_profit_usd"`
	TokenMedianBuyAmountUSD     *float64 `json:"token_median_buy_amount" yaml:"token_median_buy_amount"`
	TokenFirstBuyAvgPriceUSD    *float64 `json:"token_first_buy_avg_price_usd" yaml:"token_first_buy_avg_price_usd"`
	TokenFirstBuyMedianPriceUSD *float64 `json:"token_first_buy_median_price_usd" yaml:"token_first_buy_median_price_usd"`
	TokenBuySellDurationAvg     *float64 `json:"token_buy_sell_duration_avg" yaml:"token_buy_sell_duration_avg"`
	TokenBuySellDurationMedian  *float64 `json:"token_buy_sell_duration_median" yaml:"token_buy_sell_duration_median"`
	TokenWithBuy                int      `json:"token_with_buy" yaml:"token_with_buy"`
	TokenWithBuyAndSell         int      `json:"token_with_buy_and_sell" yaml:"token_with_buy_and_sell"`
	TokenBuyWithoutSell         int      `json:"token_buy_without_sell" yaml:"token_buy_without_sell"`
	TokenSellWithoutBuy         int      `json:"token_sell_without_buy" yaml:"token_sell_without_buy"`
	TokenSellGtBuyAmount        int      `json:"token_with_sell_amount_gt_buy_amount" yaml:"token_with_sell_amount_gt_buy_amount"`
	MultiTraderSwaps            int      `json:"total_swaps_from_txs_with_mt_3_swappers" yaml:"total_swaps_from_txs_with_mt_3_swappers"`
	ArbitrageSwaps              int      `json:"total_swaps_from_arbitrage_swap_events" yaml:"total_swaps_from_arbitrage_swap_events"`
	PnLGt5x                     int      `json:"pnl_gt_5x" yaml:"pnl_gt_5x"`
	PnL2x5x                     int      `json:"pnl_2x_5x" yaml:"pnl_2x_5x"`
	PnLLt2x                     int      `json:"pnl_lt_2x" yaml:"pnl_lt_2x"`
	PnLMinusDot5To0x            int      `json:"pnl_minus_dot5_0x" yaml:"pnl_minus_dot5_0x"`
	PnLLtMinusDot5              int      `json:"pnl_lt_minus_dot5" yaml:"pnl_lt_minus_dot5"`
	PnLGt5xPercent              *float64 `json:"pnl_gt_5x_percent" yaml:"pnl_gt_5x_percent"`
	PnL2x5xPercent              *float64 `json:"pnl_2x_5x_percent" yaml:"pnl_2x_5x_percent"`
	PnLLt2xPercent              *float64 `json:"pnl_lt_2x_percent" yaml:"pnl_lt_2x_percent"`
	PnLMinusDot5To0xPercent     *float64 `json:"pnl_minus_dot5_0x_percent" yaml:"pnl_minus_dot5_0x_percent"`
	PnLLtMinusDot5Percent       *float64 `json:"pnl_lt_minus_dot5_percent" yaml:"pnl_lt_minus_dot5_percent"`
}
