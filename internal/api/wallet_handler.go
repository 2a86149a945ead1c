package api

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/phrazzld/walletstats/internal/api/shared"
	"github.com/phrazzld/walletstats/internal/domain"
	"github.com/phrazzld/walletstats/internal/platform/logger"
	"github.com/phrazzld/walletstats/internal/service"
)

// WalletHandler serves the wallet endpoints: stats refreshes and the wallet,
// token and statistics reads.
type WalletHandler struct {
	walletStatsService service.WalletStatsService
	logger             *slog.Logger
}

// NewWalletHandler creates a new WalletHandler
func NewWalletHandler(walletStatsService service.WalletStatsService, logger *slog.Logger) *WalletHandler {
	if logger == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("logger cannot be nil for WalletHandler")
	}

	return &WalletHandler{
		walletStatsService: walletStatsService,
		logger:             logger.With(slog.String("component", "wallet_handler")),
	}
}

// RefreshStats handles POST /api/wallets/refresh_stats.
// The refresh runs in the background; the response carries its task ID.
func (h *WalletHandler) RefreshStats(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	var req shared.RefreshStatsRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		log.Debug("invalid refresh request body", slog.String("error", err.Error()))
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}

	if err := shared.ValidateRequest(&req); err != nil {
		shared.RespondWithErrorAndLog(w, r, http.StatusBadRequest, SanitizeValidationError(err), err)
		return
	}

	taskID, err := h.walletStatsService.RequestRefresh(r.Context(), req.Address)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to queue wallet stats refresh")
		return
	}

	log.Debug("wallet stats refresh accepted", slog.String("task_id", taskID.String()))
	shared.RespondWithResult(w, r, http.StatusAccepted, shared.RefreshTaskResult{
		TaskID: taskID.String(),
	})
}

// GetRefreshStatus handles GET /api/wallets/refresh_stats/{task_id}/status.
func (h *WalletHandler) GetRefreshStatus(w http.ResponseWriter, r *http.Request) {
	taskID, err := getPathUUID(r, "task_id")
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	status, err := h.walletStatsService.GetRefreshStatus(r.Context(), taskID)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to get refresh status")
		return
	}

	shared.RespondWithResult(w, r, http.StatusOK, shared.RefreshStatusResult{
		TaskID:     status.TaskID.String(),
		Status:     status.Status,
		TaskResult: status.Result,
	})
}

// GetWalletStats handles GET /api/wallets/{address}/stats.
func (h *WalletHandler) GetWalletStats(w http.ResponseWriter, r *http.Request) {
	address, err := getPathAddress(r, "address")
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	wallet, stats, err := h.walletStatsService.GetWalletStats(r.Context(), address)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to get wallet stats")
		return
	}

	shared.RespondWithResult(w, r, http.StatusOK, walletStatsToResult(wallet, stats))
}

// GetWallet handles GET /api/wallets/{address}.
func (h *WalletHandler) GetWallet(w http.ResponseWriter, r *http.Request) {
	address, err := getPathAddress(r, "address")
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	wallet, stats, err := h.walletStatsService.GetWalletStats(r.Context(), address)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to get wallet")
		return
	}

	result := shared.WalletResult{
		Address:        wallet.Address,
		IsBot:          wallet.IsBot,
		IsScammer:      wallet.IsScammer,
		LastStatsCheck: formatTime(wallet.LastStatsCheck),
		CreatedAt:      formatTime(&wallet.CreatedAt),
	}
	for _, s := range stats {
		entry := periodStatsToEntry(s)
		switch s.Period {
		case domain.StatsPeriod7d:
			result.Stats7d = &entry
		case domain.StatsPeriod30d:
			result.Stats30d = &entry
		case domain.StatsPeriodAll:
			result.StatsAll = &entry
		}
	}
	shared.RespondWithResult(w, r, http.StatusOK, result)
}

// ListWallets handles GET /api/wallets.
// Query: page, page_size, is_bot, is_scammer, sort (created_at or -created_at).
func (h *WalletHandler) ListWallets(w http.ResponseWriter, r *http.Request) {
	page, err := getPagination(r)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}
	filter, err := getWalletListFilter(r)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	wallets, err := h.walletStatsService.ListWallets(r.Context(), filter, page)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to list wallets")
		return
	}

	result := shared.WalletsPageResult{
		Wallets:    make([]shared.WalletSummary, 0, len(wallets.Wallets)),
		Pagination: pageInfoToResult(wallets.Page),
	}
	for _, wallet := range wallets.Wallets {
		result.Wallets = append(result.Wallets, shared.WalletSummary{
			Address:        wallet.Address,
			IsBot:          wallet.IsBot,
			IsScammer:      wallet.IsScammer,
			LastStatsCheck: formatTime(wallet.LastStatsCheck),
			CreatedAt:      formatTime(&wallet.CreatedAt),
		})
	}
	shared.RespondWithResult(w, r, http.StatusOK, result)
}

// ListWalletTokens handles GET /api/wallets/{address}/tokens.
// Query: page, page_size.
func (h *WalletHandler) ListWalletTokens(w http.ResponseWriter, r *http.Request) {
	address, err := getPathAddress(r, "address")
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}
	page, err := getPagination(r)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	tokens, err := h.walletStatsService.ListWalletTokens(r.Context(), address, page)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to list wallet tokens")
		return
	}

	result := shared.WalletTokensPageResult{
		Address:    tokens.Wallet.Address,
		Tokens:     make([]shared.TokenStatEntry, 0, len(tokens.Tokens)),
		Pagination: pageInfoToResult(tokens.Page),
	}
	for _, t := range tokens.Tokens {
		result.Tokens = append(result.Tokens, shared.TokenStatEntry{
			TokenAddress:         t.TokenAddress,
			TotalBuys:            t.TotalBuys,
			TotalSales:           t.TotalSales,
			TotalBuyAmountUSD:    t.TotalBuyAmountUSD,
			TotalSellAmountUSD:   t.TotalSellAmountUSD,
			TotalBuyAmountToken:  t.TotalBuyAmountToken,
			TotalSellAmountToken: t.TotalSellAmountToken,
			TotalProfitUSD:       t.TotalProfitUSD,
			TotalProfitPercent:   t.TotalProfitPercent,
			FirstBuyPriceUSD:     t.FirstBuyPriceUSD,
			FirstBuyAt:           formatTime(t.FirstBuyAt),
			FirstSellAt:          formatTime(t.FirstSellAt),
			FirstBuySellSeconds:  t.FirstBuySellSeconds,
			MultiTraderSwaps:     t.MultiTraderSwaps,
			ArbitrageSwaps:       t.ArbitrageSwaps,
		})
	}
	shared.RespondWithResult(w, r, http.StatusOK, result)
}

// Health handles GET /health.
func (h *WalletHandler) Health(w http.ResponseWriter, r *http.Request) {
	shared.RespondWithJSON(w, r, http.StatusOK, map[string]string{"status": shared.StatusOK})
}

func walletStatsToResult(wallet *domain.Wallet, stats []domain.WalletStats) shared.WalletStatsResult {
	result := shared.WalletStatsResult{
		Address:        wallet.Address,
		LastStatsCheck: formatTime(wallet.LastStatsCheck),
		IsScammer:      wallet.IsScammer,
		IsBot:          wallet.IsBot,
		Periods:        make([]shared.PeriodStatsEntry, 0, len(stats)),
	}
	for _, s := range stats {
		result.Periods = append(result.Periods, periodStatsToEntry(s))
	}
	return result
}

func periodStatsToEntry(s domain.WalletStats) shared.PeriodStatsEntry {
	return shared.PeriodStatsEntry{
		Period:                      string(s.Period),
		TotalToken:                  s.TotalToken,
		TotalBuys:                   s.TotalBuys,
		TotalSales:                  s.TotalSales,
		TotalBuyAmountUSD:           s.TotalBuyAmountUSD,
		TotalSellAmountUSD:          s.TotalSellAmountUSD,
		TotalProfitUSD:              s.TotalProfitUSD,
		TotalProfitMultiplier:       s.TotalProfitMultiplier,
		Winrate:                     s.Winrate,
		TokenAvgBuyAmountUSD:        s.TokenAvgBuyAmountUSD,
		TokenAvgProfitUSD:           s.TokenAvgProfitUSD,
		TokenMedianBuyAmountUSD:     s.TokenMedianBuyAmountUSD,
		TokenFirstBuyAvgPriceUSD:    s.TokenFirstBuyAvgPriceUSD,
		TokenFirstBuyMedianPriceUSD: s.TokenFirstBuyMedianPriceUSD,
		TokenBuySellDurationAvg:     s.TokenBuySellDurationAvg,
		TokenBuySellDurationMedian:  s.TokenBuySellDurationMedian,
		TokenWithBuy:                s.TokenWithBuy,
		TokenWithBuyAndSell:         s.TokenWithBuyAndSell,
		TokenBuyWithoutSell:         s.TokenBuyWithoutSell,
		TokenSellWithoutBuy:         s.TokenSellWithoutBuy,
		TokenSellGtBuyAmount:        s.TokenSellGtBuyAmount,
		MultiTraderSwaps:            s.MultiTraderSwaps,
		ArbitrageSwaps:              s.ArbitrageSwaps,
		PnLGt5x:                     s.PnLGt5x,
		PnL2x5x:                     s.PnL2x5x,
		PnLLt2x:                     s.PnLLt2x,
		PnLMinusDot5To0x:            s.PnLMinusDot5To0x,
		PnLLtMinusDot5:              s.PnLLtMinusDot5,
		PnLGt5xPercent:              s.PnLGt5xPercent,
		PnL2x5xPercent:              s.PnL2x5xPercent,
		PnLLt2xPercent:              s.PnLLt2xPercent,
		PnLMinusDot5To0xPercent:     s.PnLMinusDot5To0xPercent,
		PnLLtMinusDot5Percent:       s.PnLLtMinusDot5Percent,
	}
}

func pageInfoToResult(p service.PageInfo) shared.PaginationResult {
	return shared.PaginationResult{
		Page:       p.Page,
		PageSize:   p.PageSize,
		Count:      p.Count,
		TotalCount: p.TotalCount,
		TotalPages: p.TotalPages,
	}
}

// formatTime renders t as RFC 3339 in UTC, or "" for nil.
func formatTime(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}
