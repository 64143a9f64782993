package client

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	internalhttp "github.com/illumio-labs/pce-go/internal/http"
	"github.com/illumio-labs/pce-go/pkg/pce"
)

func newTestTransport(t *testing.T, handler http.Handler) *internalhttp.Client {
	t.Helper()

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	return internalhttp.NewClient(server.URL+"/api/v2",
		internalhttp.WithRetryConfig(2, time.Millisecond, 5*time.Millisecond))
}

func newTestResource(t *testing.T, name string, transport *internalhttp.Client) *ResourceClient {
	t.Helper()

	desc, err := pce.Lookup(name)
	require.NoError(t, err)

	jobs := NewJobPoller(transport)
	jobs.initialBackoff = time.Millisecond

	return NewResourceClient(transport, desc, 1, jobs)
}

func TestEndpoint(t *testing.T) {
	tests := []struct {
		name     string
		resource string
		version  pce.PolicyVersion
		parent   pce.Referable
		want     string
		wantErr  error
	}{
		{
			name:     "plain org resource",
			resource: pce.ResourceWorkloads,
			want:     "/orgs/1/workloads",
		},
		{
			name:     "policy resource defaults to draft",
			resource: pce.ResourceIPLists,
			want:     "/orgs/1/sec_policy/draft/ip_lists",
		},
		{
			name:     "policy resource active",
			resource: pce.ResourceIPLists,
			version:  pce.PolicyActive,
			want:     "/orgs/1/sec_policy/active/ip_lists",
		},
		{
			name:     "invalid policy version",
			resource: pce.ResourceIPLists,
			version:  pce.PolicyVersion("staged"),
			wantErr:  pce.ErrInvalidPolicyVersion,
		},
		{
			name:     "global resource skips org prefix",
			resource: pce.ResourceUsers,
			want:     "/users",
		},
		{
			name:     "parented resource under parent draft href",
			resource: pce.ResourceRules,
			parent:   &pce.Reference{Href: "/orgs/1/sec_policy/active/rule_sets/5"},
			want:     "/orgs/1/sec_policy/draft/rule_sets/5/sec_rules",
		},
		{
			name:     "parented resource requires parent",
			resource: pce.ResourceRules,
			wantErr:  pce.ErrMissingHref,
		},
	}

	transport := newTestTransport(t, http.NotFoundHandler())

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resource := newTestResource(t, tt.resource, transport)

			endpoint, err := resource.Endpoint(tt.version, tt.parent)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)

				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.want, endpoint)
		})
	}
}

func TestListAllProbesTotalCount(t *testing.T) {
	var maxResults []string

	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/v2/orgs/1/workloads", r.URL.Path)
		maxResults = append(maxResults, r.URL.Query().Get("max_results"))

		w.Header().Set("X-Total-Count", "37")
		w.Header().Set("Content-Type", "application/json")

		if r.URL.Query().Get("max_results") == "0" {
			_, _ = w.Write([]byte(`[]`))

			return
		}

		_, _ = w.Write([]byte(`[{"hostname": "web-01"}, {"hostname": "web-02"}]`))
	})

	resource := newTestResource(t, pce.ResourceWorkloads, newTestTransport(t, handler))

	items, err := resource.ListAll(context.Background(), pce.ListOptions{})
	require.NoError(t, err)
	assert.Len(t, items, 2)

	// One zero-result probe, then a fetch sized to the reported total.
	assert.Equal(t, []string{"0", "37"}, maxResults)
}

func TestListAllEmptyCollectionSkipsFetch(t *testing.T) {
	var calls int

	handler := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls++

		w.Header().Set("X-Total-Count", "0")
		_, _ = w.Write([]byte(`[]`))
	})

	resource := newTestResource(t, pce.ResourceWorkloads, newTestTransport(t, handler))

	items, err := resource.ListAll(context.Background(), pce.ListOptions{})
	require.NoError(t, err)
	require.NotNil(t, items)
	assert.Empty(t, items)
	assert.Equal(t, 1, calls)
}

func TestListAllKeepsProbeItemsWhenLimitIgnored(t *testing.T) {
	var calls int

	// Some endpoints ignore max_results and answer the probe with the
	// full collection, without a count header.
	handler := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls++

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[{"hostname": "web-01"}, {"hostname": "web-02"}]`))
	})

	resource := newTestResource(t, pce.ResourceWorkloads, newTestTransport(t, handler))

	items, err := resource.ListAll(context.Background(), pce.ListOptions{})
	require.NoError(t, err)
	assert.Len(t, items, 2)
	assert.Equal(t, 1, calls)
}

func TestListAllRequiresTotalCountHeader(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[]`))
	})

	resource := newTestResource(t, pce.ResourceWorkloads, newTestTransport(t, handler))

	_, err := resource.ListAll(context.Background(), pce.ListOptions{})
	require.ErrorIs(t, err, pce.ErrUnexpectedBody)
	assert.Contains(t, err.Error(), "X-Total-Count")
}

func TestCountRequiresTotalCountHeader(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[]`))
	})

	resource := newTestResource(t, pce.ResourceWorkloads, newTestTransport(t, handler))

	_, err := resource.Count(context.Background(), pce.ListOptions{})
	require.ErrorIs(t, err, pce.ErrUnexpectedBody)
}

func TestListAllHonorsCallerMaxResults(t *testing.T) {
	var queries []string

	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		queries = append(queries, r.URL.Query().Get("max_results"))
		_, _ = w.Write([]byte(`[{"hostname": "web-01"}]`))
	})

	resource := newTestResource(t, pce.ResourceWorkloads, newTestTransport(t, handler))

	items, err := resource.ListAll(context.Background(), pce.ListOptions{
		Params: pce.Params{"max_results": "5"},
	})
	require.NoError(t, err)
	assert.Len(t, items, 1)

	// No probe: the caller's limit goes straight through.
	assert.Equal(t, []string{"5"}, queries)
}

func TestUpdateTargetsDraftHref(t *testing.T) {
	var path, method string

	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path = r.URL.Path
		method = r.Method
		w.WriteHeader(http.StatusNoContent)
	})

	resource := newTestResource(t, pce.ResourceIPLists, newTestTransport(t, handler))

	err := resource.Update(context.Background(),
		"/orgs/1/sec_policy/active/ip_lists/22",
		map[string]any{"name": "internal"})
	require.NoError(t, err)

	assert.Equal(t, http.MethodPut, method)
	assert.Equal(t, "/api/v2/orgs/1/sec_policy/draft/ip_lists/22", path)
}

func TestUpdateWithoutHref(t *testing.T) {
	resource := newTestResource(t, pce.ResourceIPLists, newTestTransport(t, http.NotFoundHandler()))

	err := resource.Update(context.Background(), "", map[string]any{"name": "x"})
	require.ErrorIs(t, err, pce.ErrMissingHref)
}

func TestBulkReportsPartialFailures(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/v2/orgs/1/workloads/bulk_update", r.URL.Path)
		require.Equal(t, http.MethodPut, r.Method)

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[
			{"href": "/orgs/1/workloads/a1", "status": "updated"},
			{"href": "/orgs/1/workloads/a2", "errors": [{"token": "not_found", "message": "workload not found"}]},
			{"href": "/orgs/1/workloads/a3", "status": "updated"}
		]`))
	})

	resource := newTestResource(t, pce.ResourceWorkloads, newTestTransport(t, handler))

	items := []any{
		map[string]any{"href": "/orgs/1/workloads/a1"},
		map[string]any{"href": "/orgs/1/workloads/a2"},
		map[string]any{"href": "/orgs/1/workloads/a3"},
	}

	results, err := resource.Bulk(context.Background(), "update", items)
	require.NoError(t, err)
	require.Len(t, results, 3)

	assert.True(t, results[0].OK())
	assert.False(t, results[1].OK())
	assert.Equal(t, "not_found", results[1].Errors[0].Token)
	assert.True(t, results[2].OK())
}

func TestBulkClassifiesFailureStatus(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[
			{"href": "/orgs/1/workloads/a1", "status": "updated"},
			{"href": "/orgs/1/workloads/a2", "status": "validation_failure", "token": "invalid_enforcement_mode", "message": "bad mode"}
		]`))
	})

	resource := newTestResource(t, pce.ResourceWorkloads, newTestTransport(t, handler))

	items := []any{
		map[string]any{"href": "/orgs/1/workloads/a1"},
		map[string]any{"href": "/orgs/1/workloads/a2"},
	}

	results, err := resource.Bulk(context.Background(), "update", items)
	require.NoError(t, err)
	require.Len(t, results, 2)

	assert.True(t, results[0].OK())

	// The failed item's top-level token/message pair surfaces in Errors.
	assert.False(t, results[1].OK())
	require.Len(t, results[1].Errors, 1)
	assert.Equal(t, "invalid_enforcement_mode", results[1].Errors[0].Token)
	assert.Equal(t, "bad mode", results[1].Errors[0].Message)
}

func TestBulkSplitsIntoBatches(t *testing.T) {
	var batchSizes []int

	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, err := io.ReadAll(r.Body)
		require.NoError(t, err)

		var batch []json.RawMessage
		require.NoError(t, json.Unmarshal(body, &batch))
		batchSizes = append(batchSizes, len(batch))

		results := make([]pce.BulkResult, len(batch))
		for i := range results {
			results[i] = pce.BulkResult{Href: fmt.Sprintf("/orgs/1/workloads/%d", i), Status: "updated"}
		}

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(results)
	})

	resource := newTestResource(t, pce.ResourceWorkloads, newTestTransport(t, handler))

	items := make([]any, 1001)
	for i := range items {
		items[i] = map[string]any{"href": fmt.Sprintf("/orgs/1/workloads/%d", i)}
	}

	results, err := resource.Bulk(context.Background(), "update", items)
	require.NoError(t, err)
	assert.Len(t, results, 1001)
	assert.Equal(t, []int{1000, 1}, batchSizes)
}

func TestTypedAPICreate(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/v2/orgs/1/labels", r.URL.Path)
		require.Equal(t, http.MethodPost, r.Method)

		body, err := io.ReadAll(r.Body)
		require.NoError(t, err)
		assert.JSONEq(t, `{"key": "env", "value": "prod"}`, string(body))

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"href": "/orgs/1/labels/77", "key": "env", "value": "prod", "created_at": "2024-01-01T00:00:00Z"}`))
	})

	api := NewAPI[pce.Label](newTestResource(t, pce.ResourceLabels, newTestTransport(t, handler)))

	created, err := api.Create(context.Background(), &pce.Label{Key: "env", Value: "prod"})
	require.NoError(t, err)
	require.NotNil(t, created.Object)
	assert.True(t, created.OK())
	assert.Equal(t, "/orgs/1/labels/77", created.Object.Href)
	assert.Equal(t, "env", created.First().Key)
}

func TestTypedAPICreateSplitsArrayResponse(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/v2/orgs/1/service_bindings", r.URL.Path)
		require.Equal(t, http.MethodPost, r.Method)

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`[
			{"href": "/orgs/1/service_bindings/b1", "status": "created"},
			{"token": "invalid_binding", "message": "workload already bound"}
		]`))
	})

	api := NewAPI[pce.ServiceBinding](newTestResource(t, pce.ResourceServiceBindings, newTestTransport(t, handler)))

	created, err := api.Create(context.Background(), &pce.ServiceBinding{
		VirtualService: &pce.Reference{Href: "/orgs/1/sec_policy/draft/virtual_services/v1"},
		Workload:       &pce.Reference{Href: "/orgs/1/workloads/w1"},
	})
	require.NoError(t, err)

	assert.Nil(t, created.Object)
	require.Len(t, created.Created, 1)
	assert.Equal(t, "/orgs/1/service_bindings/b1", created.Created[0].Href)
	assert.Equal(t, "/orgs/1/service_bindings/b1", created.First().Href)

	assert.False(t, created.OK())
	require.Len(t, created.Errors, 1)
	require.Len(t, created.Errors[0].Errors, 1)
	assert.Equal(t, "invalid_binding", created.Errors[0].Errors[0].Token)
	assert.Equal(t, "workload already bound", created.Errors[0].Errors[0].Message)
}

func TestTypedAPIUpdateUsesObjectHref(t *testing.T) {
	var path string

	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path = r.URL.Path
		w.WriteHeader(http.StatusNoContent)
	})

	api := NewAPI[pce.Label](newTestResource(t, pce.ResourceLabels, newTestTransport(t, handler)))

	label := &pce.Label{Value: "staging"}
	label.Href = "/orgs/1/labels/77"

	require.NoError(t, api.Update(context.Background(), label))
	assert.Equal(t, "/api/v2/orgs/1/labels/77", path)
}
