package jobclient

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeJobServer serves the submission endpoint with a fixed body and the
// status endpoint from a script, repeating the last entry.
func fakeJobServer(t *testing.T, submitBody string, statusSeq ...string) (*httptest.Server, *atomic.Int32) {
	t.Helper()
	var polls atomic.Int32
	mux := http.NewServeMux()
	mux.HandleFunc("POST "+SubmitPath, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusAccepted)
		_, _ = w.Write([]byte(submitBody))
	})
	mux.HandleFunc("GET /api/wallets/refresh_stats/{id}/status", func(w http.ResponseWriter, r *http.Request) {
		i := int(polls.Add(1)) - 1
		if i >= len(statusSeq) {
			i = len(statusSeq) - 1
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"status":"ok","result":{"task_id":"` + r.PathValue("id") +
			`","status":"` + statusSeq[i] + `"}}`))
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv, &polls
}

func newRefresherHarness(t *testing.T, srv *httptest.Server) (*Refresher, *pollerHarness) {
	t.Helper()
	logger := discardLogger()

	submitter, err := NewSubmissionClient(srv.URL, StaticCredential("tok"), srv.Client(), logger)
	require.NoError(t, err)
	querier, err := NewStatusClient(srv.URL, StaticCredential("tok"), srv.Client(), logger)
	require.NoError(t, err)

	h := newPollerHarness(t, querier, PollerConfig{SerializeTicks: true})
	r, err := NewRefresher(submitter, h.poller, h.sink, logger)
	require.NoError(t, err)
	return r, h
}

type runResult struct {
	state State
	err   error
}

func runAsync(r *Refresher, ctx context.Context, req JobRequest) <-chan runResult {
	out := make(chan runResult, 1)
	go func() {
		state, err := r.Run(ctx, req)
		out <- runResult{state: state, err: err}
	}()
	return out
}

func awaitRun(t *testing.T, ch <-chan runResult) runResult {
	t.Helper()
	select {
	case res := <-ch:
		return res
	case <-time.After(2 * time.Second):
		t.Fatal("refresh did not finish")
		return runResult{}
	}
}

func TestRefresher_PendingPendingSuccess(t *testing.T) {
	t.Parallel()

	srv, polls := fakeJobServer(t, `{"status":"ok","result":{"task_id":"T1"}}`,
		"pending", "pending", "success")
	r, h := newRefresherHarness(t, srv)

	done := runAsync(r, context.Background(), JobRequest{Address: "ABC"})
	h.ticker.fire(t)
	h.ticker.fire(t)
	h.ticker.fire(t)

	res := awaitRun(t, done)
	require.NoError(t, res.err)
	assert.Equal(t, StateSucceeded, res.state)
	assert.Equal(t, int32(3), polls.Load())
	assert.Equal(t, []notification{{h.messages.JobSucceeded, NotificationSuccess}}, h.sink.all())
	assert.Equal(t, int32(1), h.refresh.n.Load())
	assert.Equal(t, int32(1), h.ticker.stops.Load())
}

func TestRefresher_SubmissionRejected(t *testing.T) {
	t.Parallel()

	srv, polls := fakeJobServer(t, `{"status":"error"}`, "pending")
	r, h := newRefresherHarness(t, srv)

	state, err := r.Run(context.Background(), JobRequest{Address: "ABC"})
	assert.ErrorIs(t, err, ErrSubmission)
	assert.Equal(t, StateFailed, state)
	assert.Equal(t, []notification{{h.messages.SubmissionFailed, NotificationError}}, h.sink.all())
	assert.Equal(t, int32(0), h.tickers.Load(), "no polling timer may be created")
	assert.Equal(t, int32(0), polls.Load())
	assert.Equal(t, int32(0), h.refresh.n.Load())
}

func TestRefresher_FailureOnFirstTick(t *testing.T) {
	t.Parallel()

	srv, _ := fakeJobServer(t, `{"status":"ok","result":{"task_id":"T1"}}`, "failure")
	r, h := newRefresherHarness(t, srv)

	done := runAsync(r, context.Background(), JobRequest{Address: "ABC"})
	h.ticker.fire(t)

	res := awaitRun(t, done)
	assert.ErrorIs(t, res.err, ErrJobFailed)
	assert.Equal(t, StateFailed, res.state)
	assert.Equal(t, []notification{{h.messages.JobFailed, NotificationError}}, h.sink.all())
	assert.Equal(t, int32(1), h.ticker.stops.Load())
	assert.Equal(t, int32(0), h.refresh.n.Load())
}

func TestRefresher_ContextCancelled(t *testing.T) {
	t.Parallel()

	srv, _ := fakeJobServer(t, `{"status":"ok","result":{"task_id":"T1"}}`, "pending")
	r, h := newRefresherHarness(t, srv)

	ctx, cancel := context.WithCancel(context.Background())
	done := runAsync(r, ctx, JobRequest{Address: "ABC"})
	h.ticker.fire(t)
	cancel()

	res := awaitRun(t, done)
	assert.ErrorIs(t, res.err, ErrCancelled)
	assert.Equal(t, StateCancelled, res.state)
	assert.Empty(t, h.sink.all())
}

type emptyHandleSubmitter struct{}

func (emptyHandleSubmitter) Submit(context.Context, JobRequest) (JobHandle, error) {
	return "", nil
}

func TestRefresher_EmptyHandleNeverPolls(t *testing.T) {
	t.Parallel()

	h := newPollerHarness(t, statuses(JobStatusSuccess), PollerConfig{})
	r, err := NewRefresher(emptyHandleSubmitter{}, h.poller, h.sink, discardLogger())
	require.NoError(t, err)

	state, err := r.Run(context.Background(), JobRequest{})
	assert.Equal(t, StateFailed, state)
	assert.ErrorIs(t, err, ErrSubmission)
	assert.True(t, errors.Is(err, ErrMalformedResponse))
	assert.Equal(t, int32(0), h.tickers.Load())
	assert.Len(t, h.sink.all(), 1)
}

func TestNewRefresher_Validation(t *testing.T) {
	t.Parallel()

	h := newPollerHarness(t, statuses(JobStatusSuccess), PollerConfig{})
	logger := discardLogger()

	_, err := NewRefresher(nil, h.poller, h.sink, logger)
	assert.Error(t, err)
	_, err = NewRefresher(emptyHandleSubmitter{}, nil, h.sink, logger)
	assert.Error(t, err)
	_, err = NewRefresher(emptyHandleSubmitter{}, h.poller, nil, logger)
	assert.Error(t, err)
	_, err = NewRefresher(emptyHandleSubmitter{}, h.poller, h.sink, nil)
	assert.Error(t, err)
}
