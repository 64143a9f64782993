package client

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	internalhttp "github.com/illumio-labs/pce-go/internal/http"
	"github.com/illumio-labs/pce-go/pkg/pce"
)

func newTestPoller(t *testing.T, handler http.Handler) *JobPoller {
	t.Helper()

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	transport := internalhttp.NewClient(server.URL+"/api/v2",
		internalhttp.WithRetryConfig(1, time.Millisecond, 5*time.Millisecond))

	poller := NewJobPoller(transport)
	poller.initialBackoff = time.Millisecond

	return poller
}

func TestGetCollectionPollsUntilDone(t *testing.T) {
	var polls atomic.Int32

	mux := http.NewServeMux()
	mux.HandleFunc("/api/v2/orgs/1/workloads", func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "respond-async", r.Header.Get("Prefer"))

		w.Header().Set("Location", "/orgs/1/jobs/9")
		w.Header().Set("Retry-After", "0")
		w.WriteHeader(http.StatusAccepted)
	})
	mux.HandleFunc("/api/v2/orgs/1/jobs/9", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")

		if polls.Add(1) < 3 {
			_, _ = w.Write([]byte(`{"status": "running"}`))

			return
		}

		_, _ = w.Write([]byte(`{"status": "done", "result": {"href": "/orgs/1/datafiles/42"}}`))
	})
	mux.HandleFunc("/api/v2/orgs/1/datafiles/42", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[{"hostname": "web-01"}]`))
	})

	poller := newTestPoller(t, mux)

	body, err := poller.GetCollection(context.Background(), "/orgs/1/workloads", nil)
	require.NoError(t, err)
	assert.JSONEq(t, `[{"hostname": "web-01"}]`, string(body))
	assert.Equal(t, int32(3), polls.Load())
}

func TestGetCollectionWithoutLocationHeader(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusAccepted)
	})

	poller := newTestPoller(t, handler)

	_, err := poller.GetCollection(context.Background(), "/orgs/1/workloads", nil)
	require.ErrorIs(t, err, pce.ErrUnexpectedBody)
}

func TestGetCollectionJobFailure(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/v2/orgs/1/workloads", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Location", "/orgs/1/jobs/9")
		w.WriteHeader(http.StatusAccepted)
	})
	mux.HandleFunc("/api/v2/orgs/1/jobs/9", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"status": "failed", "result": {"message": "internal error"}}`))
	})

	poller := newTestPoller(t, mux)

	_, err := poller.GetCollection(context.Background(), "/orgs/1/workloads", nil)
	require.ErrorIs(t, err, pce.ErrJobFailed)
	assert.Contains(t, err.Error(), "internal error")
}

func TestGetCollectionHonorsContextCancellation(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/v2/orgs/1/workloads", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Location", "/orgs/1/jobs/9")
		w.WriteHeader(http.StatusAccepted)
	})
	mux.HandleFunc("/api/v2/orgs/1/jobs/9", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"status": "running"}`))
	})

	poller := newTestPoller(t, mux)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := poller.GetCollection(ctx, "/orgs/1/workloads", nil)
	require.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestRunQueryPollsUntilCompleted(t *testing.T) {
	var polls atomic.Int32

	mux := http.NewServeMux()
	mux.HandleFunc("/api/v2/orgs/1/traffic_flows/async_queries", func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"href": "/orgs/1/traffic_flows/async_queries/7"}`))
	})
	mux.HandleFunc("/api/v2/orgs/1/traffic_flows/async_queries/7", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")

		if polls.Add(1) < 2 {
			_, _ = w.Write([]byte(`{"status": "queued"}`))

			return
		}

		_, _ = w.Write([]byte(`{"status": "completed", "result": "/orgs/1/traffic_flows/async_queries/7/download"}`))
	})
	mux.HandleFunc("/api/v2/orgs/1/traffic_flows/async_queries/7/download", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[{"num_connections": 12}]`))
	})

	poller := newTestPoller(t, mux)

	body, err := poller.RunQuery(context.Background(), "/orgs/1/traffic_flows/async_queries", map[string]any{})
	require.NoError(t, err)
	assert.JSONEq(t, `[{"num_connections": 12}]`, string(body))
	assert.Equal(t, int32(2), polls.Load())
}

func TestRunQueryWithoutJobHref(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{}`))
	})

	poller := newTestPoller(t, handler)

	_, err := poller.RunQuery(context.Background(), "/orgs/1/traffic_flows/async_queries", map[string]any{})
	require.ErrorIs(t, err, pce.ErrUnexpectedBody)
}
