package domain

import (
	"time"

	"github.com/google/uuid"
)

// StatsPeriod is the window a WalletStats row covers.
type StatsPeriod string

const (
	StatsPeriod7d  StatsPeriod = "7d"
	StatsPeriod30d StatsPeriod = "30d"
	StatsPeriodAll StatsPeriod = "all"
)

// AllStatsPeriods lists periods in display order.
var AllStatsPeriods = []StatsPeriod{StatsPeriod7d, StatsPeriod30d, StatsPeriodAll}

// Days returns the window length, or 0 for StatsPeriodAll.
func (p StatsPeriod) Days() int {
	switch p {
	case StatsPeriod7d:
		return 7
	case StatsPeriod30d:
		return 30
	default:
		return 0
	}
}

// ParseStatsPeriod validates a period name.
func ParseStatsPeriod(s string) (StatsPeriod, error) {
	p := StatsPeriod(s)
	switch p {
	case StatsPeriod7d, StatsPeriod30d, StatsPeriodAll:
		return p, nil
	default:
		return "", NewValidationError("period", "must be one of 7d, 30d, all", ErrInvalidStatsPeriod)
	}
}

// WalletStats is the aggregate over a wallet's tokens for one period.
type WalletStats struct {
	WalletID uuid.UUID   `json:"wallet_id"`
	Period   StatsPeriod `json:"period"`

	TotalToken         int     `json:"total_token"`
	TotalBuys          int     `json:"total_buys"`
	TotalSales         int     `json:"total_sales"`
	TotalBuyAmountUSD  float64 `json:"total_buy_amount_usd"`
	TotalSellAmountUSD float64 `json:"total_sell_amount_usd"`
	TotalProfitUSD     float64 `json:"total_profit_usd"`

	// Ratios are nil when no token in the period was bought.
	TotalProfitMultiplier *float64 `json:"total_profit_multiplier,omitempty"`
	Winrate               *float64 `json:"winrate,omitempty"`
	TokenAvgBuyAmountUSD  *float64 `json:"token_avg_buy_amount_usd,omitempty"`
	TokenAvgProfitUSD     *float64 `json:"token_avg_profit_usd,omitempty"`

	TokenMedianBuyAmountUSD     *float64 `json:"token_median_buy_amount_usd,omitempty"`
	TokenFirstBuyAvgPriceUSD    *float64 `json:"token_first_buy_avg_price_usd,omitempty"`
	TokenFirstBuyMedianPriceUSD *float64 `json:"token_first_buy_median_price_usd,omitempty"`

	// Buy to sell durations in seconds. Nil without a sold token.
	TokenBuySellDurationAvg    *float64 `json:"token_buy_sell_duration_avg,omitempty"`
	TokenBuySellDurationMedian *float64 `json:"token_buy_sell_duration_median,omitempty"`

	TokenWithBuy         int `json:"token_with_buy"`
	TokenWithBuyAndSell  int `json:"token_with_buy_and_sell"`
	TokenBuyWithoutSell  int `json:"token_buy_without_sell"`
	TokenSellWithoutBuy  int `json:"token_sell_without_buy"`
	TokenSellGtBuyAmount int `json:"token_sell_gt_buy_amount"`
	MultiTraderSwaps     int `json:"multi_trader_swaps"`
	ArbitrageSwaps       int `json:"arbitrage_swaps"`

	PnLGt5x          int `json:"pnl_gt_5x"`
	PnL2x5x          int `json:"pnl_2x_5x"`
	PnLLt2x          int `json:"pnl_lt_2x"`
	PnLMinusDot5To0x int `json:"pnl_minus_dot5_0x"`
	PnLLtMinusDot5   int `json:"pnl_lt_minus_dot5"`

	// Bucket shares of TokenWithBuy, in percent.
	PnLGt5xPercent          *float64 `json:"pnl_gt_5x_percent,omitempty"`
	PnL2x5xPercent          *float64 `json:"pnl_2x_5x_percent,omitempty"`
	PnLLt2xPercent          *float64 `json:"pnl_lt_2x_percent,omitempty"`
	PnLMinusDot5To0xPercent *float64 `json:"pnl_minus_dot5_0x_percent,omitempty"`
	PnLLtMinusDot5Percent   *float64 `json:"pnl_lt_minus_dot5_percent,omitempty"`

	UpdatedAt time.Time `json:"updated_at"`
}
