package jobclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const (
	// SubmitPath is the job-creation resource.
	SubmitPath = "/api/wallets/refresh_stats"

	// statusPathFormat is the per-job status resource.
	statusPathFormat = "/api/wallets/refresh_stats/%s/status"

	// maxResponseBytes bounds how much of a response body is read.
	maxResponseBytes = 1 << 20

	// DefaultRequestTimeout applies when NewHTTPClient gets a zero timeout.
	DefaultRequestTimeout = 30 * time.Second
)

// NewHTTPClient returns an *http.Client with the given per-request timeout.
func NewHTTPClient(timeout time.Duration) *http.Client {
	if timeout <= 0 {
		timeout = DefaultRequestTimeout
	}
	return &http.Client{Timeout: timeout}
}

// apiTransport holds what the submission and status clients share: the
// base URL, the HTTP client and the credential source.
type apiTransport struct {
	baseURL     string
	httpClient  *http.Client
	credentials CredentialProvider
}

func newAPITransport(baseURL string, credentials CredentialProvider, httpClient *http.Client) (apiTransport, error) {
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	u, err := url.Parse(baseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return apiTransport{}, fmt.Errorf("invalid base URL %q", baseURL)
	}
	if httpClient == nil {
		httpClient = NewHTTPClient(0)
	}
	if credentials == nil {
		credentials = StaticCredential("")
	}
	return apiTransport{
		baseURL:     baseURL,
		httpClient:  httpClient,
		credentials: credentials,
	}, nil
}

func (t apiTransport) statusURL(handle JobHandle) string {
	return t.baseURL + fmt.Sprintf(statusPathFormat, url.PathEscape(string(handle)))
}

// do sends one request and returns the status code and the (bounded) body.
func (t apiTransport) do(ctx context.Context, method, target string, payload interface{}) (int, []byte, error) {
	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return 0, nil, fmt.Errorf("failed to encode request: %w", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, target, body)
	if err != nil {
		return 0, nil, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token := t.credentials.Credential(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := t.httpClient.Do(req)
	if err != nil {
		return 0, nil, err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return resp.StatusCode, nil, fmt.Errorf("failed to read response body: %w", err)
	}
	return resp.StatusCode, data, nil
}

func isSuccessStatus(code int) bool {
	return code >= 200 && code < 300
}
