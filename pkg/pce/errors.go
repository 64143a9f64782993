package pce

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/illumio-labs/pce-go/internal/constants"
)

// Static errors for err113 compliance.
var (
	ErrJobFailed            = errors.New("async job failed")
	ErrInvalidPolicyVersion = errors.New("policy version must be \"draft\" or \"active\"")
	ErrMissingHref          = errors.New("object has no href")
	ErrInvalidHref          = errors.New("invalid href")
	ErrConfigRequired       = errors.New("config is required")
	ErrHostRequired         = errors.New("PCE host is required")
	ErrUnexpectedBody       = errors.New("unexpected response body")
	ErrObjectNotFound       = errors.New("object not found")
)

// APIErrorDetail is a single entry of a structured PCE error response.
// The PCE returns either {token, message} pairs or bare {error} strings.
type APIErrorDetail struct {
	Token   string `json:"token,omitempty"   yaml:"token,omitempty"`
	Message string `json:"message,omitempty" yaml:"message,omitempty"`
	Err     string `json:"error,omitempty"   yaml:"error,omitempty"`
}

func (d APIErrorDetail) String() string {
	if d.Token != "" {
		return d.Token + ": " + d.Message
	}

	if d.Err != "" {
		return d.Err
	}

	return d.Message
}

// APIError represents a non-2xx response from the PCE. When the response
// carried a structured JSON error body, Errors holds every reported
// entry; otherwise Raw holds the status text or raw body.
type APIError struct {
	StatusCode int
	Errors     []APIErrorDetail
	Raw        string
}

// Error implements the error interface. Every token/message pair is
// included so multi-error responses are not truncated.
func (e *APIError) Error() string {
	if len(e.Errors) == 0 {
		return fmt.Sprintf("API call returned error code %d: %s", e.StatusCode, e.Raw)
	}

	var builder strings.Builder
	fmt.Fprintf(&builder, "API call returned error code %d. Errors:", e.StatusCode)

	for _, detail := range e.Errors {
		builder.WriteString("\n")
		builder.WriteString(detail.String())
	}

	return builder.String()
}

// ParseAPIError builds an APIError from a non-2xx response. A JSON array
// body of {token, message} or {error} entries is decoded; anything else
// falls back to the raw status text.
func ParseAPIError(statusCode int, contentType string, body []byte, statusText string) *APIError {
	apiErr := &APIError{StatusCode: statusCode, Raw: statusText}

	if !strings.HasPrefix(contentType, "application/json") {
		return apiErr
	}

	var details []APIErrorDetail

	err := json.Unmarshal(body, &details)
	if err != nil {
		return apiErr
	}

	apiErr.Errors = details

	return apiErr
}

// IsNotFound checks if the error is a 404 from the PCE.
func IsNotFound(err error) bool {
	apiErr := &APIError{}

	return errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusNotFound
}

// IsUnauthorized checks if the error is a 401 from the PCE.
func IsUnauthorized(err error) bool {
	apiErr := &APIError{}

	return errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusUnauthorized
}

// ValidationError reports a field value that does not match its declared
// descriptor kind. It is raised at object construction, never at encode
// time.
type ValidationError struct {
	Type  string
	Field string
	Value any
	Want  string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s.%s: value %v does not match declared kind %s", e.Type, e.Field, e.Value, e.Want)
}

// NotRegisteredError reports a resource name with no registered
// descriptor.
type NotRegisteredError struct {
	Name string
}

func (e *NotRegisteredError) Error() string {
	return "resource type not registered: " + e.Name
}

// BulkResult is the per-item outcome of a bulk or multi-create
// operation. The PCE reports each item as {href, status} with a
// top-level token/message pair on failures. Items are classified off
// Status; bulk operations never fail merely because some items did.
type BulkResult struct {
	Href    string           `json:"href,omitempty"    yaml:"href,omitempty"`
	Status  string           `json:"status,omitempty"  yaml:"status,omitempty"`
	Token   string           `json:"token,omitempty"   yaml:"token,omitempty"`
	Message string           `json:"message,omitempty" yaml:"message,omitempty"`
	Errors  []APIErrorDetail `json:"errors,omitempty"  yaml:"errors,omitempty"`
}

// OK reports whether the item was applied successfully: its status is
// one of the success statuses and it carries no error payload.
func (r BulkResult) OK() bool {
	switch r.Status {
	case constants.ItemStatusCreated, constants.ItemStatusUpdated, constants.ItemStatusDeleted:
		return true
	case "":
		return len(r.Errors) == 0 && r.Token == "" && r.Message == ""
	default:
		return false
	}
}
