// Package pceclient constructs PCE API clients from connection
// settings.
package pceclient

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/illumio-labs/pce-go/internal/client"
	"github.com/illumio-labs/pce-go/internal/constants"
	internalhttp "github.com/illumio-labs/pce-go/internal/http"
	"github.com/illumio-labs/pce-go/pkg/pce"
)

// New creates a PCE client from config. The host may be a bare
// hostname (https assumed) or a URL, whose path component is
// discarded; port, API version, and org ID default to 443, v2, and 1.
func New(config *pce.Config) (pce.Client, error) {
	if config == nil {
		return nil, pce.ErrConfigRequired
	}

	baseURL, err := baseURL(config)
	if err != nil {
		return nil, err
	}

	opts := []internalhttp.Option{
		internalhttp.WithBasicAuth(config.APIKey, config.APISecret),
	}

	if config.RetryMax > 0 || config.RetryWaitMin > 0 || config.RetryWaitMax > 0 {
		retryMax := config.RetryMax
		if retryMax == 0 {
			retryMax = constants.DefaultRetryMax
		}

		retryWaitMin := config.RetryWaitMin
		if retryWaitMin == 0 {
			retryWaitMin = constants.DefaultRetryWaitMin
		}

		retryWaitMax := config.RetryWaitMax
		if retryWaitMax == 0 {
			retryWaitMax = constants.DefaultRetryWaitMax
		}

		opts = append(opts, internalhttp.WithRetryConfig(retryMax, retryWaitMin, retryWaitMax))
	}

	if config.HTTPTimeout > 0 {
		opts = append(opts, internalhttp.WithTimeout(config.HTTPTimeout))
	}

	if config.UserAgent != "" {
		opts = append(opts, internalhttp.WithUserAgent(config.UserAgent))
	}

	if config.Logger != nil {
		opts = append(opts, internalhttp.WithLogger(config.Logger))
	}

	if config.Debug {
		opts = append(opts, internalhttp.WithDebug(true))
	}

	orgID := config.OrgID
	if orgID == 0 {
		orgID = constants.DefaultOrgID
	}

	c, err := client.New(internalhttp.NewClient(baseURL, opts...), orgID)
	if err != nil {
		return nil, err
	}

	return c, nil
}

// NewWithKey is a convenience constructor for the common case of host
// plus API key credentials, with every other setting defaulted.
func NewWithKey(host, apiKey, apiSecret string) (pce.Client, error) {
	return New(&pce.Config{
		Host:      host,
		APIKey:    apiKey,
		APISecret: apiSecret,
	})
}

// baseURL normalizes the configured host into the API root:
// {scheme}://{host}:{port}/api/{version}.
func baseURL(config *pce.Config) (string, error) {
	host := strings.TrimSpace(config.Host)
	if host == "" {
		return "", pce.ErrHostRequired
	}

	// Bare hostnames get the default scheme; any path is discarded.
	if !strings.Contains(host, "://") {
		host = "https://" + host
	}

	parsed, err := url.Parse(host)
	if err != nil {
		return "", fmt.Errorf("parsing PCE host %q: %w", config.Host, err)
	}

	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return "", fmt.Errorf("parsing PCE host %q: scheme %q: %w", config.Host, parsed.Scheme, pce.ErrHostRequired)
	}

	hostname := parsed.Hostname()
	if hostname == "" {
		return "", pce.ErrHostRequired
	}

	port := config.Port
	if port == 0 && parsed.Port() != "" {
		// A port embedded in the host URL wins over the default.
		port, err = strconv.Atoi(parsed.Port())
		if err != nil {
			return "", fmt.Errorf("parsing PCE host %q: %w", config.Host, err)
		}
	}

	if port == 0 {
		port = constants.DefaultPort
	}

	version := config.APIVersion
	if version == "" {
		version = constants.DefaultAPIVersion
	}

	return fmt.Sprintf("%s://%s:%d/api/%s", parsed.Scheme, hostname, port, version), nil
}
