package main

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/phrazzld/walletstats/internal/api"
	apiMiddleware "github.com/phrazzld/walletstats/internal/api/middleware"
)

// setupRouter creates the application router with all routes and middleware.
func (app *application) setupRouter() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(apiMiddleware.TraceMiddleware(app.logger))

	walletHandler := api.NewWalletHandler(app.walletStatsService, app.logger)
	authMiddleware := apiMiddleware.NewAuthMiddleware(app.jwtService)

	r.Route("/api", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			r.Use(authMiddleware.Authenticate)

			r.Post("/wallets/refresh_stats", walletHandler.RefreshStats)
			r.Get("/wallets/refresh_stats/{task_id}/status", walletHandler.GetRefreshStatus)
			r.Get("/wallets", walletHandler.ListWallets)
			r.Get("/wallets/{address}", walletHandler.GetWallet)
			r.Get("/wallets/{address}/stats", walletHandler.GetWalletStats)
			r.Get("/wallets/{address}/tokens", walletHandler.ListWalletTokens)
		})
	})

	r.Get("/health", walletHandler.Health)

	return r
}
