package pceclient

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/illumio-labs/pce-go/pkg/pce"
)

func TestBaseURLNormalization(t *testing.T) {
	tests := []struct {
		name   string
		config pce.Config
		want   string
	}{
		{
			name:   "bare hostname defaults",
			config: pce.Config{Host: "pce.example.com"},
			want:   "https://pce.example.com:443/api/v2",
		},
		{
			name:   "explicit port and version",
			config: pce.Config{Host: "pce.example.com", Port: 8443, APIVersion: "v3"},
			want:   "https://pce.example.com:8443/api/v3",
		},
		{
			name:   "url with path is stripped",
			config: pce.Config{Host: "https://pce.example.com/some/path"},
			want:   "https://pce.example.com:443/api/v2",
		},
		{
			name:   "http scheme preserved",
			config: pce.Config{Host: "http://pce.internal", Port: 8080},
			want:   "http://pce.internal:8080/api/v2",
		},
		{
			name:   "port embedded in host url",
			config: pce.Config{Host: "https://pce.example.com:9443"},
			want:   "https://pce.example.com:9443/api/v2",
		},
		{
			name:   "config port wins over url port",
			config: pce.Config{Host: "https://pce.example.com:9443", Port: 8443},
			want:   "https://pce.example.com:8443/api/v2",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := baseURL(&tt.config)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestBaseURLErrors(t *testing.T) {
	_, err := baseURL(&pce.Config{})
	require.ErrorIs(t, err, pce.ErrHostRequired)

	_, err = baseURL(&pce.Config{Host: "ftp://pce.example.com"})
	require.ErrorIs(t, err, pce.ErrHostRequired)
}

func TestNewRequiresConfig(t *testing.T) {
	_, err := New(nil)
	require.ErrorIs(t, err, pce.ErrConfigRequired)

	_, err = New(&pce.Config{})
	require.ErrorIs(t, err, pce.ErrHostRequired)
}

func TestNewWithKey(t *testing.T) {
	client, err := NewWithKey("pce.example.com", "api_1234", "secret")
	require.NoError(t, err)
	assert.Equal(t, 1, client.OrgID())
}
