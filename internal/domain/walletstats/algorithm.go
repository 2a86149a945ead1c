package walletstats

import (
	"slices"
	"time"

	"github.com/phrazzld/walletstats/internal/domain"
)

// FilterPeriod returns the tokens whose activity falls in period, measured
// back from now. A token qualifies when its first buy is inside the window
// and it was not sold before the window, or when its first sale is inside
// the window. StatsPeriodAll returns tokens unchanged.
func FilterPeriod(tokens []domain.TokenStat, period domain.StatsPeriod, now time.Time) []domain.TokenStat {
	days := period.Days()
	if days == 0 {
		return tokens
	}
	threshold := now.AddDate(0, 0, -days)

	out := make([]domain.TokenStat, 0, len(tokens))
	for _, t := range tokens {
		boughtInWindow := t.FirstBuyAt != nil && !t.FirstBuyAt.Before(threshold)
		soldInWindow := t.FirstSellAt != nil && !t.FirstSellAt.Before(threshold)
		if boughtInWindow && (t.FirstSellAt == nil || soldInWindow) {
			out = append(out, t)
		} else if soldInWindow {
			out = append(out, t)
		}
	}
	return out
}

// calculate aggregates tokens into a WalletStats without identity fields.
func calculate(tokens []domain.TokenStat, params *Params) domain.WalletStats {
	var (
		s          domain.WalletStats
		profitable int
		durations  []float64
		buyAmounts []float64
		buyPrices  []float64
	)

	for _, t := range tokens {
		s.TotalToken++
		s.TotalBuys += t.TotalBuys
		s.TotalSales += t.TotalSales
		s.TotalBuyAmountUSD += t.TotalBuyAmountUSD
		s.TotalSellAmountUSD += t.TotalSellAmountUSD
		s.TotalProfitUSD += t.TotalProfitUSD
		s.MultiTraderSwaps += t.MultiTraderSwaps
		s.ArbitrageSwaps += t.ArbitrageSwaps

		if t.TotalBuys > 0 && t.TotalSales == 0 {
			s.TokenBuyWithoutSell++
		}
		if t.TotalSales > 0 && t.TotalBuys == 0 {
			s.TokenSellWithoutBuy++
		}
		if t.FirstBuySellSeconds != nil {
			durations = append(durations, float64(*t.FirstBuySellSeconds))
		}

		if !t.HasBuy() {
			continue
		}

		s.TokenWithBuy++
		buyAmounts = append(buyAmounts, t.TotalBuyAmountUSD)
		if t.FirstBuyPriceUSD != nil && *t.FirstBuyPriceUSD != 0 {
			buyPrices = append(buyPrices, *t.FirstBuyPriceUSD)
		}
		if t.TotalSales > 0 {
			s.TokenWithBuyAndSell++
		}
		if t.TotalSellAmountToken > t.TotalBuyAmountToken {
			s.TokenSellGtBuyAmount++
		}
		if t.TotalProfitUSD >= 0 {
			profitable++
		}
		if t.TotalProfitPercent != nil {
			bucket(&s, *t.TotalProfitPercent, params)
		}
	}

	if s.TotalBuyAmountUSD != 0 {
		s.TotalProfitMultiplier = ptr(s.TotalProfitUSD / s.TotalBuyAmountUSD * 100)
	}
	if s.TokenWithBuy > 0 {
		n := float64(s.TokenWithBuy)
		s.Winrate = ptr(float64(profitable) / n * 100)
		s.TokenAvgBuyAmountUSD = ptr(s.TotalBuyAmountUSD / n)
		s.TokenAvgProfitUSD = ptr(s.TotalProfitUSD / n)
		// Tokens bought without a recorded price still count in the divisor.
		s.TokenFirstBuyAvgPriceUSD = ptr(sum(buyPrices) / n)

		s.PnLGt5xPercent = ptr(float64(s.PnLGt5x) / n * 100)
		s.PnL2x5xPercent = ptr(float64(s.PnL2x5x) / n * 100)
		s.PnLLt2xPercent = ptr(float64(s.PnLLt2x) / n * 100)
		s.PnLMinusDot5To0xPercent = ptr(float64(s.PnLMinusDot5To0x) / n * 100)
		s.PnLLtMinusDot5Percent = ptr(float64(s.PnLLtMinusDot5) / n * 100)
	}
	if s.TokenWithBuyAndSell > 0 {
		s.TokenBuySellDurationAvg = ptr(sum(durations) / float64(s.TokenWithBuyAndSell))
	}
	s.TokenBuySellDurationMedian = median(durations)
	s.TokenMedianBuyAmountUSD = median(buyAmounts)
	s.TokenFirstBuyMedianPriceUSD = median(buyPrices)
	return s
}

func bucket(s *domain.WalletStats, percent float64, params *Params) {
	switch {
	case percent > params.Gt5xPercent:
		s.PnLGt5x++
	case percent > params.Gt2xPercent:
		s.PnL2x5x++
	case percent > params.GtZeroPercent:
		s.PnLLt2x++
	case percent > params.GtMinusDot5Percent:
		s.PnLMinusDot5To0x++
	default:
		s.PnLLtMinusDot5++
	}
}

// isScammer applies the flagging rules to all-time stats.
func isScammer(all domain.WalletStats, params *Params) bool {
	if all.MultiTraderSwaps > 0 {
		return true
	}
	if all.TotalToken < params.ScammerMinTokens {
		return false
	}
	total := float64(all.TotalToken)
	return float64(all.TokenSellWithoutBuy)/total >= params.ScammerRatio ||
		float64(all.TokenSellGtBuyAmount)/total >= params.ScammerRatio
}

// isBot applies the arbitrage bot rules to all-time stats.
func isBot(all domain.WalletStats, params *Params) bool {
	trades := all.TotalBuys + all.TotalSales
	if trades > 0 && float64(all.ArbitrageSwaps)/float64(trades) >= params.BotArbitrageRatio {
		return true
	}
	if all.TotalToken >= params.BotFastMinTokens &&
		all.TokenBuySellDurationAvg != nil && *all.TokenBuySellDurationAvg <= params.BotFastTradeSeconds {
		return true
	}
	if all.TotalToken >= params.BotBulkMinTokens {
		if all.TokenAvgBuyAmountUSD != nil && *all.TokenAvgBuyAmountUSD < params.BotBulkBuyUSD {
			return true
		}
		if float64(trades)/float64(all.TotalToken) > params.BotBulkTradesPerToken {
			return true
		}
	}
	return false
}

func sum(values []float64) float64 {
	var total float64
	for _, v := range values {
		total += v
	}
	return total
}

// median returns nil for no values. values is sorted in place.
func median(values []float64) *float64 {
	n := len(values)
	if n == 0 {
		return nil
	}
	slices.Sort(values)
	if n%2 == 1 {
		return ptr(values[n/2])
	}
	return ptr((values[n/2-1] + values[n/2]) / 2)
}

func ptr(v float64) *float64 {
	return &v
}
