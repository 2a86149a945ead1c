package walletstats

// Params holds the thresholds used when aggregating token statistics.
type Params struct {
	// PnL bucket lower bounds, in percent of profit over buy amount.
	Gt5xPercent        float64
	Gt2xPercent        float64
	GtZeroPercent      float64
	GtMinusDot5Percent float64

	// Scammer flagging.
	ScammerMinTokens int
	ScammerRatio     float64

	// Arbitrage bot flagging. A wallet is a bot when the share of its
	// trades that came from arbitrage events reaches BotArbitrageRatio,
	// when it holds BotFastMinTokens tokens and sells within
	// BotFastTradeSeconds on average, or when it holds BotBulkMinTokens
	// tokens and either buys below BotBulkBuyUSD on average or trades more
	// than BotBulkTradesPerToken times per token.
	BotArbitrageRatio     float64
	BotFastMinTokens      int
	BotFastTradeSeconds   float64
	BotBulkMinTokens      int
	BotBulkBuyUSD         float64
	BotBulkTradesPerToken float64
}

// NewDefaultParams returns the production thresholds.
func NewDefaultParams() *Params {
	return &Params{
		Gt5xPercent:           500,
		Gt2xPercent:           200,
		GtZeroPercent:         0,
		GtMinusDot5Percent:    -50,
		ScammerMinTokens:      5,
		ScammerRatio:          0.21,
		BotArbitrageRatio:     0.5,
		BotFastMinTokens:      500,
		BotFastTradeSeconds:   2,
		BotBulkMinTokens:      1000,
		BotBulkBuyUSD:         30,
		BotBulkTradesPerToken: 10,
	}
}
