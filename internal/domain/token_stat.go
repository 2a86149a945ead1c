package domain

import (
	"time"

	"github.com/google/uuid"
)

// TokenStat aggregates one wallet's trades in one token.
type TokenStat struct {
	WalletID     uuid.UUID `json:"wallet_id"`
	TokenAddress string    `json:"token_address"`

	TotalBuys  int `json:"total_buys"`
	TotalSales int `json:"total_sales"`

	TotalBuyAmountUSD    float64 `json:"total_buy_amount_usd"`
	TotalSellAmountUSD   float64 `json:"total_sell_amount_usd"`
	TotalBuyAmountToken  float64 `json:"total_buy_amount_token"`
	TotalSellAmountToken float64 `json:"total_sell_amount_token"`
	TotalProfitUSD       float64 `json:"total_profit_usd"`
	// TotalProfitPercent is nil when there is nothing to compare against.
	TotalProfitPercent *float64 `json:"total_profit_percent,omitempty"`

	FirstBuyAt       *time.Time `json:"first_buy_at,omitempty"`
	FirstSellAt      *time.Time `json:"first_sell_at,omitempty"`
	FirstBuyPriceUSD *float64   `json:"first_buy_price_usd,omitempty"`

	// FirstBuySellSeconds is the time from first buy to first sale.
	FirstBuySellSeconds *int64 `json:"first_buy_sell_seconds,omitempty"`

	// MultiTraderSwaps counts swaps from transactions with three or more traders.
	MultiTraderSwaps int `json:"multi_trader_swaps"`
	// ArbitrageSwaps counts swaps that came from arbitrage swap events.
	ArbitrageSwaps int `json:"arbitrage_swaps"`
}

// HasBuy reports whether the wallet ever bought the token.
func (t TokenStat) HasBuy() bool {
	return t.TotalBuys > 0
}
