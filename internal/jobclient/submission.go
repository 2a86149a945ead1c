package jobclient

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/phrazzld/walletstats/internal/api/shared"
	"github.com/phrazzld/walletstats/internal/redact"
)

// SubmissionClient creates refresh jobs. It keeps no state between calls.
type SubmissionClient struct {
	transport apiTransport
	logger    *slog.Logger
}

// NewSubmissionClient creates a SubmissionClient for the API at baseURL.
// A nil httpClient gets a client with DefaultRequestTimeout.
func NewSubmissionClient(
	baseURL string,
	credentials CredentialProvider,
	httpClient *http.Client,
	logger *slog.Logger,
) (*SubmissionClient, error) {
	if logger == nil {
		return nil, fmt.Errorf("logger cannot be nil")
	}
	transport, err := newAPITransport(baseURL, credentials, httpClient)
	if err != nil {
		return nil, err
	}
	return &SubmissionClient{
		transport: transport,
		logger:    logger.With("component", "submission_client"),
	}, nil
}

// Submit sends exactly one job-creation request. Every failure, including an
// accepted response without a job id, is returned as a *SubmissionError.
func (c *SubmissionClient) Submit(ctx context.Context, req JobRequest) (JobHandle, error) {
	target := c.transport.baseURL + SubmitPath
	body := shared.RefreshStatsRequest{Address: req.Address}

	code, data, err := c.transport.do(ctx, http.MethodPost, target, body)
	if err != nil {
		c.logger.Warn("job submission request failed", "error", redact.Error(err))
		return "", &SubmissionError{StatusCode: code, Err: err}
	}

	var env shared.Envelope[shared.RefreshTaskResult]
	decodeErr := json.Unmarshal(data, &env)

	if !isSuccessStatus(code) {
		subErr := &SubmissionError{StatusCode: code, Err: fmt.Errorf("unexpected HTTP status")}
		if decodeErr == nil {
			subErr.Message = env.Message
		}
		c.logger.Warn("job submission rejected", "status_code", code, "message", subErr.Message)
		return "", subErr
	}

	if decodeErr != nil {
		c.logger.Warn("job submission response could not be decoded",
			"status_code", code,
			"error", decodeErr)
		return "", &SubmissionError{
			StatusCode: code,
			Err:        fmt.Errorf("%w: %v", ErrMalformedResponse, decodeErr),
		}
	}

	if env.Status != shared.StatusOK {
		c.logger.Warn("job submission rejected",
			"status_code", code,
			"status", env.Status,
			"message", env.Message)
		return "", &SubmissionError{
			StatusCode: code,
			Message:    env.Message,
			Err:        fmt.Errorf("rejected with status %q", env.Status),
		}
	}

	if env.Result == nil || strings.TrimSpace(env.Result.TaskID) == "" {
		c.logger.Warn("job submission response missing task id", "status_code", code)
		return "", &SubmissionError{
			StatusCode: code,
			Err:        fmt.Errorf("%w: missing task_id", ErrMalformedResponse),
		}
	}

	handle := JobHandle(strings.TrimSpace(env.Result.TaskID))
	c.logger.Info("job submitted", "task_id", handle)
	return handle, nil
}
