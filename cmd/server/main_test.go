package main

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/phrazzld/walletstats/internal/api/shared"
	"github.com/phrazzld/walletstats/internal/config"
	"github.com/phrazzld/walletstats/internal/domain"
	"github.com/phrazzld/walletstats/internal/jobclient"
	"github.com/phrazzld/walletstats/internal/platform/database"
	"github.com/phrazzld/walletstats/internal/service/auth"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testSecret  = "server-test-secret-that-is-long-enough"
	testAddress = "7xKXtg2CW87d97TXJSDpbD5jBkheTqA83TZRuJosgAsU"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testConfig() *config.Config {
	return &config.Config{
		Server: config.ServerConfig{
			Port:            8080,
			LogLevel:        "debug",
			ShutdownTimeout: 5 * time.Second,
		},
		Database: config.DatabaseConfig{
			Driver: database.DriverSQLite,
			URL:    ":memory:",
		},
		Auth: config.AuthConfig{
			JWTSecret:            testSecret,
			TokenLifetimeMinutes: 60,
		},
		Task: config.TaskConfig{
			WorkerCount:         1,
			QueueSize:           10,
			StuckTaskAgeMinutes: 30,
		},
	}
}

// newTestApp builds the application on a migrated in-memory database with
// the task runner running.
func newTestApp(t *testing.T) *application {
	t.Helper()
	ctx := context.Background()
	cfg := testConfig()

	db, err := database.Open(ctx, cfg.Database, discardLogger())
	require.NoError(t, err)
	require.NoError(t, database.Migrate(ctx, db, cfg.Database.Driver, database.MigrateUp, discardLogger()))

	app, err := newApplication(cfg, discardLogger(), db)
	require.NoError(t, err)

	runCtx, cancel := context.WithCancel(ctx)
	require.NoError(t, app.taskRunner.Start(runCtx))
	t.Cleanup(func() {
		cancel()
		app.cleanup()
	})
	return app
}

func issueTestToken(t *testing.T, app *application) string {
	t.Helper()
	token, err := app.jwtService.GenerateToken(context.Background(), "e2e")
	require.NoError(t, err)
	return token
}

func TestParseFlags(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		args    []string
		want    cliFlags
		wantErr bool
	}{
		{name: "serve", args: nil},
		{name: "migrate up", args: []string{"-migrate", "up"}, want: cliFlags{migrate: "up"}},
		{name: "issue token", args: []string{"-issue-token", "ops"}, want: cliFlags{issueToken: "ops"}},
		{name: "unknown migrate command", args: []string{"-migrate", "sideways"}, wantErr: true},
		{name: "both operations", args: []string{"-migrate", "up", "-issue-token", "ops"}, wantErr: true},
		{name: "stray argument", args: []string{"serve"}, wantErr: true},
		{name: "unknown flag", args: []string{"-port", "1"}, wantErr: true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			got, err := parseFlags(tc.args, io.Discard)
			if tc.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestIssueToken(t *testing.T) {
	t.Parallel()

	var out bytes.Buffer
	cfg := testConfig().Auth
	require.NoError(t, issueToken(context.Background(), cfg, "refreshctl", &out))

	jwtService, err := auth.NewJWTService(cfg)
	require.NoError(t, err)
	claims, err := jwtService.ValidateToken(context.Background(), strings.TrimSpace(out.String()))
	require.NoError(t, err)
	assert.Equal(t, "refreshctl", claims.Subject)

	assert.ErrorIs(t, issueToken(context.Background(), cfg, " ", io.Discard), auth.ErrEmptySubject)
}

func TestServer_RefreshLifecycle(t *testing.T) {
	t.Parallel()

	app := newTestApp(t)
	ctx := context.Background()

	wallet, err := domain.NewWallet(testAddress)
	require.NoError(t, err)
	require.NoError(t, app.walletStore.Create(ctx, wallet))
	boughtAt := time.Now().UTC().Add(-48 * time.Hour)
	require.NoError(t, app.walletStore.UpsertTokenStat(ctx, &domain.TokenStat{
		WalletID:           wallet.ID,
		TokenAddress:       "So11111111111111111111111111111111111111112",
		TotalBuys:          2,
		TotalSales:         1,
		TotalBuyAmountUSD:  100,
		TotalSellAmountUSD: 250,
		TotalProfitUSD:     150,
		FirstBuyAt:         &boughtAt,
	}))

	srv := httptest.NewServer(app.setupRouter())
	t.Cleanup(srv.Close)
	credential := jobclient.StaticCredential(issueTestToken(t, app))

	submitter, err := jobclient.NewSubmissionClient(srv.URL, credential, srv.Client(), discardLogger())
	require.NoError(t, err)
	querier, err := jobclient.NewStatusClient(srv.URL, credential, srv.Client(), discardLogger())
	require.NoError(t, err)

	var refreshed int
	var notifications []jobclient.NotificationKind
	notifier := jobclient.NotifyFunc(func(_ string, kind jobclient.NotificationKind) {
		notifications = append(notifications, kind)
	})
	poller, err := jobclient.NewPoller(querier, notifier, jobclient.RefreshFunc(func() { refreshed++ }),
		jobclient.PollerConfig{Interval: 20 * time.Millisecond, MaxAttempts: 250, SerializeTicks: true},
		discardLogger())
	require.NoError(t, err)
	refresher, err := jobclient.NewRefresher(submitter, poller, notifier, discardLogger())
	require.NoError(t, err)

	runCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	state, err := refresher.Run(runCtx, jobclient.JobRequest{Address: testAddress})
	require.NoError(t, err)
	assert.Equal(t, jobclient.StateSucceeded, state)
	assert.Equal(t, 1, refreshed)
	assert.Equal(t, []jobclient.NotificationKind{jobclient.NotificationSuccess}, notifications)

	req, err := http.NewRequest(http.MethodGet, srv.URL+"/api/wallets/"+testAddress+"/stats", nil)
	require.NoError(t, err)
	req.Header.Set("Authorization", "Bearer "+credential.Credential())
	resp, err := srv.Client().Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body shared.Envelope[shared.WalletStatsResult]
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	require.NotNil(t, body.Result)
	assert.Equal(t, testAddress, body.Result.Address)
	assert.NotEmpty(t, body.Result.LastStatsCheck)
	require.Len(t, body.Result.Periods, 3)
	for _, p := range body.Result.Periods {
		assert.Equal(t, 1, p.TotalToken, "period %s", p.Period)
		assert.InDelta(t, 150, p.TotalProfitUSD, 0.001)
	}

	reader, err := jobclient.NewStatsClient(srv.URL, credential, srv.Client(), discardLogger())
	require.NoError(t, err)

	wallets, err := reader.ListWallets(ctx, jobclient.WalletQuery{Page: 1, PageSize: 10})
	require.NoError(t, err)
	require.Len(t, wallets.Wallets, 1)
	assert.Equal(t, testAddress, wallets.Wallets[0].Address)
	assert.Equal(t, 1, wallets.Pagination.TotalCount)

	detail, err := reader.FetchWallet(ctx, testAddress)
	require.NoError(t, err)
	require.NotNil(t, detail.StatsAll)
	assert.Equal(t, 1, detail.StatsAll.TotalToken)
	assert.False(t, detail.IsBot)

	tokens, err := reader.ListTokens(ctx, testAddress, 1, 10)
	require.NoError(t, err)
	require.Len(t, tokens.Tokens, 1)
	assert.Equal(t, 2, tokens.Tokens[0].TotalBuys)
}

func TestServer_Errors(t *testing.T) {
	t.Parallel()

	app := newTestApp(t)
	srv := httptest.NewServer(app.setupRouter())
	t.Cleanup(srv.Close)
	token := issueTestToken(t, app)

	tests := []struct {
		name       string
		method     string
		path       string
		body       string
		token      string
		wantStatus int
	}{
		{name: "health is public", method: http.MethodGet, path: "/health", wantStatus: http.StatusOK},
		{
			name:   "refresh without token",
			method: http.MethodPost, path: "/api/wallets/refresh_stats",
			body:       `{"address":"` + testAddress + `"}`,
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:   "refresh with bad token",
			method: http.MethodPost, path: "/api/wallets/refresh_stats",
			body: `{"address":"` + testAddress + `"}`, token: "garbage",
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:   "refresh with invalid address",
			method: http.MethodPost, path: "/api/wallets/refresh_stats",
			body: `{"address":"0OIl0OIl0OIl0OIl0OIl0OIl0OIl0OIl"}`, token: token,
			wantStatus: http.StatusBadRequest,
		},
		{
			name:   "refresh with unknown field",
			method: http.MethodPost, path: "/api/wallets/refresh_stats",
			body: `{"wallet":"` + testAddress + `"}`, token: token,
			wantStatus: http.StatusBadRequest,
		},
		{
			name:   "status of unknown task",
			method: http.MethodGet, path: "/api/wallets/refresh_stats/0b9c7a4e-8f8e-4c55-9a53-2f6b1c3d2e10/status",
			token:      token,
			wantStatus: http.StatusNotFound,
		},
		{
			name:   "status with malformed id",
			method: http.MethodGet, path: "/api/wallets/refresh_stats/not-a-uuid/status",
			token:      token,
			wantStatus: http.StatusBadRequest,
		},
		{
			name:   "stats of untracked wallet",
			method: http.MethodGet, path: "/api/wallets/" + testAddress + "/stats",
			token:      token,
			wantStatus: http.StatusNotFound,
		},
		{
			name:   "untracked wallet",
			method: http.MethodGet, path: "/api/wallets/" + testAddress,
			token:      token,
			wantStatus: http.StatusNotFound,
		},
		{
			name:   "tokens of untracked wallet",
			method: http.MethodGet, path: "/api/wallets/" + testAddress + "/tokens",
			token:      token,
			wantStatus: http.StatusNotFound,
		},
		{
			name:       "wallet list without token",
			method:     http.MethodGet,
			path:       "/api/wallets",
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:       "wallet list with oversized page",
			method:     http.MethodGet,
			path:       "/api/wallets?page_size=101",
			token:      token,
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "empty wallet list",
			method:     http.MethodGet,
			path:       "/api/wallets",
			token:      token,
			wantStatus: http.StatusOK,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			var body io.Reader
			if tc.body != "" {
				body = strings.NewReader(tc.body)
			}
			req, err := http.NewRequest(tc.method, srv.URL+tc.path, body)
			require.NoError(t, err)
			if tc.token != "" {
				req.Header.Set("Authorization", "Bearer "+tc.token)
			}

			resp, err := srv.Client().Do(req)
			require.NoError(t, err)
			defer resp.Body.Close()
			assert.Equal(t, tc.wantStatus, resp.StatusCode)

			if tc.wantStatus >= http.StatusBadRequest {
				var env shared.Envelope[struct{}]
				require.NoError(t, json.NewDecoder(resp.Body).Decode(&env))
				assert.Equal(t, shared.StatusError, env.Status)
				assert.NotEmpty(t, env.Message)
				assert.NotEmpty(t, env.TraceID)
			}
		})
	}
}

func TestServe_GracefulShutdown(t *testing.T) {
	t.Parallel()

	app := &application{config: testConfig(), logger: discardLogger()}
	listener, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- app.serve(ctx, listener, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusTeapot)
		}))
	}()

	require.Eventually(t, func() bool {
		resp, err := http.Get("http://" + listener.Addr().String())
		if err != nil {
			return false
		}
		_ = resp.Body.Close()
		return resp.StatusCode == http.StatusTeapot
	}, 2*time.Second, 10*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not shut down")
	}
}
