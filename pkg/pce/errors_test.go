package pce_test

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/illumio-labs/pce-go/pkg/pce"
)

func TestParseAPIErrorTokenMessage(t *testing.T) {
	body := []byte(`[
		{"token": "name_taken", "message": "Name is already in use"},
		{"token": "invalid_key", "message": "Key must be one of role, app, env, loc"}
	]`)

	err := pce.ParseAPIError(http.StatusNotAcceptable, "application/json", body, "406 Not Acceptable")
	require.Len(t, err.Errors, 2)

	// Every reported error appears in the message, not just the first.
	message := err.Error()
	assert.Contains(t, message, "406")
	assert.Contains(t, message, "name_taken: Name is already in use")
	assert.Contains(t, message, "invalid_key: Key must be one of role, app, env, loc")
}

func TestParseAPIErrorBareError(t *testing.T) {
	err := pce.ParseAPIError(http.StatusForbidden, "application/json", []byte(`[{"error": "forbidden"}]`), "403 Forbidden")
	require.Len(t, err.Errors, 1)
	assert.Contains(t, err.Error(), "forbidden")
}

func TestParseAPIErrorNonJSONFallsBack(t *testing.T) {
	err := pce.ParseAPIError(http.StatusBadGateway, "text/html", []byte("<html>oops</html>"), "502 Bad Gateway")
	assert.Empty(t, err.Errors)
	assert.Contains(t, err.Error(), "502 Bad Gateway")
}

func TestErrorPredicates(t *testing.T) {
	notFound := pce.ParseAPIError(http.StatusNotFound, "application/json", nil, "404 Not Found")
	assert.True(t, pce.IsNotFound(notFound))
	assert.False(t, pce.IsUnauthorized(notFound))

	unauthorized := pce.ParseAPIError(http.StatusUnauthorized, "application/json", nil, "401 Unauthorized")
	assert.True(t, pce.IsUnauthorized(unauthorized))
	assert.False(t, pce.IsNotFound(unauthorized))
}

func TestBulkResultOK(t *testing.T) {
	tests := []struct {
		name   string
		result pce.BulkResult
		want   bool
	}{
		{
			name:   "created status",
			result: pce.BulkResult{Href: "/orgs/1/workloads/1", Status: "created"},
			want:   true,
		},
		{
			name:   "updated status",
			result: pce.BulkResult{Href: "/orgs/1/workloads/1", Status: "updated"},
			want:   true,
		},
		{
			name:   "deleted status",
			result: pce.BulkResult{Href: "/orgs/1/workloads/1", Status: "deleted"},
			want:   true,
		},
		{
			name: "failure status overrides clean error list",
			result: pce.BulkResult{
				Href:    "/orgs/1/workloads/2",
				Status:  "validation_failure",
				Token:   "invalid_enforcement_mode",
				Message: "bad mode",
			},
			want: false,
		},
		{
			name: "error list without status",
			result: pce.BulkResult{
				Href:   "/orgs/1/workloads/2",
				Errors: []pce.APIErrorDetail{{Token: "not_found", Message: "workload not found"}},
			},
			want: false,
		},
		{
			name:   "token without status",
			result: pce.BulkResult{Token: "invalid_binding", Message: "workload already bound"},
			want:   false,
		},
		{
			name:   "bare href echo",
			result: pce.BulkResult{Href: "/orgs/1/service_bindings/b1"},
			want:   true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.result.OK())
		})
	}
}
