package jobclient

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/phrazzld/walletstats/internal/api/shared"
)

// StatusReport is one decoded status response.
type StatusReport struct {
	Handle JobHandle
	Status JobStatus
	// Known is false when Status is not one of the recognised values.
	Known  bool
	Result string
}

// StatusClient queries the per-job status resource.
type StatusClient struct {
	transport apiTransport
	logger    *slog.Logger
}

// NewStatusClient creates a StatusClient for the API at baseURL.
func NewStatusClient(
	baseURL string,
	credentials CredentialProvider,
	httpClient *http.Client,
	logger *slog.Logger,
) (*StatusClient, error) {
	if logger == nil {
		return nil, fmt.Errorf("logger cannot be nil")
	}
	transport, err := newAPITransport(baseURL, credentials, httpClient)
	if err != nil {
		return nil, err
	}
	return &StatusClient{
		transport: transport,
		logger:    logger.With("component", "status_client"),
	}, nil
}

// Describe performs one status query and returns the full report.
// Transport, HTTP and decoding failures are returned as *PollTransportError.
func (c *StatusClient) Describe(ctx context.Context, handle JobHandle) (*StatusReport, error) {
	if !handle.Valid() {
		return nil, ErrEmptyHandle
	}

	code, data, err := c.transport.do(ctx, http.MethodGet, c.transport.statusURL(handle), nil)
	if err != nil {
		return nil, &PollTransportError{Handle: handle, StatusCode: code, Err: err}
	}

	var env shared.Envelope[shared.RefreshStatusResult]
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, &PollTransportError{
			Handle:     handle,
			StatusCode: code,
			Err:        fmt.Errorf("failed to decode status response: %w", err),
		}
	}

	if !isSuccessStatus(code) || env.Status != shared.StatusOK {
		msg := env.Message
		if msg == "" {
			msg = "unexpected response"
		}
		return nil, &PollTransportError{Handle: handle, StatusCode: code, Err: errors.New(msg)}
	}

	if env.Result == nil {
		return nil, &PollTransportError{
			Handle:     handle,
			StatusCode: code,
			Err:        errors.New("status response has no result"),
		}
	}

	status, known := ParseJobStatus(env.Result.Status)
	return &StatusReport{
		Handle: handle,
		Status: status,
		Known:  known,
		Result: env.Result.TaskResult,
	}, nil
}

// QueryStatus implements StatusQuerier.
func (c *StatusClient) QueryStatus(ctx context.Context, handle JobHandle) (JobStatus, error) {
	report, err := c.Describe(ctx, handle)
	if err != nil {
		return "", err
	}
	return report.Status, nil
}
