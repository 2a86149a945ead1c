package jobclient

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newStatusServer(t *testing.T, status int, body string) (*httptest.Server, <-chan string) {
	t.Helper()
	paths := make(chan string, 1)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		paths <- r.Method + " " + r.URL.EscapedPath()
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv, paths
}

func TestStatusClient_Describe(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		raw       string
		wantState JobStatus
		wantKnown bool
	}{
		{name: "pending", raw: "pending", wantState: JobStatusPending, wantKnown: true},
		{name: "success", raw: "success", wantState: JobStatusSuccess, wantKnown: true},
		{name: "failure upper case", raw: "FAILURE", wantState: JobStatusFailure, wantKnown: true},
		{name: "unknown", raw: "retrying", wantState: "retrying", wantKnown: false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			srv, paths := newStatusServer(t, http.StatusOK,
				`{"status":"ok","result":{"task_id":"T1","status":"`+tc.raw+`","task_result":"done"}}`)
			c, err := NewStatusClient(srv.URL, StaticCredential("tok"), srv.Client(), discardLogger())
			require.NoError(t, err)

			report, err := c.Describe(context.Background(), "T1")
			require.NoError(t, err)
			assert.Equal(t, tc.wantState, report.Status)
			assert.Equal(t, tc.wantKnown, report.Known)
			assert.Equal(t, "done", report.Result)
			assert.Equal(t, "GET /api/wallets/refresh_stats/T1/status", <-paths)
		})
	}
}

func TestStatusClient_EscapesHandle(t *testing.T) {
	t.Parallel()

	srv, paths := newStatusServer(t, http.StatusOK,
		`{"status":"ok","result":{"task_id":"a/b","status":"pending"}}`)
	c, err := NewStatusClient(srv.URL, nil, srv.Client(), discardLogger())
	require.NoError(t, err)

	status, err := c.QueryStatus(context.Background(), "a/b")
	require.NoError(t, err)
	assert.Equal(t, JobStatusPending, status)
	assert.Equal(t, "GET /api/wallets/refresh_stats/a%2Fb/status", <-paths)
}

func TestStatusClient_Errors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		status     int
		body       string
		wantStatus int
	}{
		{name: "server error", status: http.StatusInternalServerError, body: `{"status":"error","message":"boom"}`, wantStatus: 500},
		{name: "not found", status: http.StatusNotFound, body: `{"status":"error","message":"task not found"}`, wantStatus: 404},
		{name: "bad json", status: http.StatusOK, body: `{`, wantStatus: 200},
		{name: "missing result", status: http.StatusOK, body: `{"status":"ok"}`, wantStatus: 200},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			srv, _ := newStatusServer(t, tc.status, tc.body)
			c, err := NewStatusClient(srv.URL, nil, srv.Client(), discardLogger())
			require.NoError(t, err)

			_, err = c.QueryStatus(context.Background(), "T1")
			var transportErr *PollTransportError
			require.True(t, errors.As(err, &transportErr))
			assert.Equal(t, tc.wantStatus, transportErr.StatusCode)
			assert.Equal(t, JobHandle("T1"), transportErr.Handle)
		})
	}
}

func TestStatusClient_EmptyHandle(t *testing.T) {
	t.Parallel()

	c, err := NewStatusClient("http://localhost", nil, nil, discardLogger())
	require.NoError(t, err)

	_, err = c.Describe(context.Background(), " ")
	assert.ErrorIs(t, err, ErrEmptyHandle)
}

func TestNewHTTPClient(t *testing.T) {
	t.Parallel()

	assert.Equal(t, DefaultRequestTimeout, NewHTTPClient(0).Timeout)
	assert.Equal(t, DefaultRequestTimeout, NewHTTPClient(-time.Second).Timeout)
	assert.Equal(t, 5*time.Second, NewHTTPClient(5*time.Second).Timeout)
}
