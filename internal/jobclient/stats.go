package jobclient

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/phrazzld/walletstats/internal/api/shared"
)

// Wallet read resources.
const (
	walletsPath      = "/api/wallets"
	walletPathFormat = "/api/wallets/%s"
	statsPathFormat  = "/api/wallets/%s/stats"
	tokensPathFormat = "/api/wallets/%s/tokens"
)

// StatsError describes a failed wallet read. Address is empty for listings.
type StatsError struct {
	Address    string
	StatusCode int
	Message    string
	Err        error
}

func (e *StatsError) Error() string {
	subject := "wallets"
	if e.Address != "" {
		subject = e.Address
	}
	if e.Message != "" {
		return fmt.Sprintf("read of %s failed (HTTP %d): %s", subject, e.StatusCode, e.Message)
	}
	return fmt.Sprintf("read of %s failed: %v", subject, e.Err)
}

func (e *StatsError) Unwrap() error {
	return e.Err
}

// StatsClient reads wallets, their token aggregates and their statistics.
type StatsClient struct {
	transport apiTransport
	logger    *slog.Logger
}

// NewStatsClient creates a StatsClient for the API at baseURL.
func NewStatsClient(
	baseURL string,
	credentials CredentialProvider,
	httpClient *http.Client,
	logger *slog.Logger,
) (*StatsClient, error) {
	if logger == nil {
		return nil, fmt.Errorf("logger cannot be nil")
	}
	transport, err := newAPITransport(baseURL, credentials, httpClient)
	if err != nil {
		return nil, err
	}
	return &StatsClient{
		transport: transport,
		logger:    logger.With("component", "stats_client"),
	}, nil
}

// FetchStats returns the wallet's statistics as served by the API.
func (c *StatsClient) FetchStats(ctx context.Context, address string) (*shared.WalletStatsResult, error) {
	address = strings.TrimSpace(address)
	if address == "" {
		return nil, &StatsError{Err: errors.New("address is empty")}
	}
	return getResult[shared.WalletStatsResult](ctx, c, address,
		fmt.Sprintf(statsPathFormat, url.PathEscape(address)))
}

// FetchWallet returns the wallet with its per-period statistics.
func (c *StatsClient) FetchWallet(ctx context.Context, address string) (*shared.WalletResult, error) {
	address = strings.TrimSpace(address)
	if address == "" {
		return nil, &StatsError{Err: errors.New("address is empty")}
	}
	return getResult[shared.WalletResult](ctx, c, address,
		fmt.Sprintf(walletPathFormat, url.PathEscape(address)))
}

// WalletQuery selects a page of ListWallets. Zero Page and PageSize leave
// the server defaults; nil flags do not filter.
type WalletQuery struct {
	Page        int
	PageSize    int
	IsBot       *bool
	IsScammer   *bool
	NewestFirst bool
}

func (q WalletQuery) encode() string {
	v := url.Values{}
	if q.Page > 0 {
		v.Set("page", strconv.Itoa(q.Page))
	}
	if q.PageSize > 0 {
		v.Set("page_size", strconv.Itoa(q.PageSize))
	}
	if q.IsBot != nil {
		v.Set("is_bot", strconv.FormatBool(*q.IsBot))
	}
	if q.IsScammer != nil {
		v.Set("is_scammer", strconv.FormatBool(*q.IsScammer))
	}
	if q.NewestFirst {
		v.Set("sort", "-created_at")
	}
	if len(v) == 0 {
		return ""
	}
	return "?" + v.Encode()
}

// ListWallets returns one page of tracked wallets.
func (c *StatsClient) ListWallets(ctx context.Context, q WalletQuery) (*shared.WalletsPageResult, error) {
	return getResult[shared.WalletsPageResult](ctx, c, "", walletsPath+q.encode())
}

// ListTokens returns one page of the wallet's token aggregates. Zero page
// or pageSize leave the server defaults.
func (c *StatsClient) ListTokens(
	ctx context.Context,
	address string,
	page, pageSize int,
) (*shared.WalletTokensPageResult, error) {
	address = strings.TrimSpace(address)
	if address == "" {
		return nil, &StatsError{Err: errors.New("address is empty")}
	}
	q := WalletQuery{Page: page, PageSize: pageSize}
	return getResult[shared.WalletTokensPageResult](ctx, c, address,
		fmt.Sprintf(tokensPathFormat, url.PathEscape(address))+q.encode())
}

// getResult performs a GET of path and unwraps the envelope's result.
func getResult[T any](ctx context.Context, c *StatsClient, address, path string) (*T, error) {
	code, data, err := c.transport.do(ctx, http.MethodGet, c.transport.baseURL+path, nil)
	if err != nil {
		return nil, &StatsError{Address: address, StatusCode: code, Err: err}
	}

	var env shared.Envelope[T]
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, &StatsError{
			Address:    address,
			StatusCode: code,
			Err:        fmt.Errorf("failed to decode response: %w", err),
		}
	}

	if !isSuccessStatus(code) || env.Status != shared.StatusOK || env.Result == nil {
		c.logger.Debug("read rejected", "path", path, "status_code", code, "message", env.Message)
		return nil, &StatsError{
			Address:    address,
			StatusCode: code,
			Message:    env.Message,
			Err:        errors.New("unexpected response"),
		}
	}

	return env.Result, nil
}
