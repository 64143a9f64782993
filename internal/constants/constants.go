package constants

import "time"

// HTTP and network timeouts.
const (
	// DefaultHTTPTimeout is the default timeout for HTTP requests.
	DefaultHTTPTimeout = 30 * time.Second

	// ShortHTTPTimeout is used for quick operations such as health checks.
	ShortHTTPTimeout = 10 * time.Second
)

// Retry limits for the transport layer.
const (
	// DefaultRetryMax is the default maximum number of retries.
	DefaultRetryMax = 5

	// DefaultRetryWaitMin is the minimum wait time between retries.
	DefaultRetryWaitMin = 1 * time.Second

	// DefaultRetryWaitMax is the maximum wait time between retries.
	DefaultRetryWaitMax = 30 * time.Second
)

// Async job polling.
const (
	// DefaultPollBackoff is the starting wait between job status polls,
	// used when the PCE does not supply a Retry-After value.
	DefaultPollBackoff = 1 * time.Second

	// PollBackoffFactor is the multiplier applied to the poll backoff
	// after every non-terminal status response.
	PollBackoffFactor = 1.5
)

// Bulk operation limits.
const (
	// BulkMaxSize is the maximum number of items sent per bulk request.
	BulkMaxSize = 1000
)

// Collection limits.
const (
	// SyncMaxResults is the largest collection the PCE returns from a
	// synchronous GET; larger collections require an async job.
	SyncMaxResults = 500
)

// PCE connection defaults.
const (
	// DefaultPort is the default PCE HTTPS port.
	DefaultPort = 443

	// DefaultAPIVersion is the default PCE API version segment.
	DefaultAPIVersion = "v2"

	// DefaultOrgID is the default PCE organization ID.
	DefaultOrgID = 1
)

// Well-known object names.
const (
	// AnyIPListName is the name of the default global IP list present in
	// every PCE organization.
	AnyIPListName = "Any (0.0.0.0/0 and ::/0)"
)

// Async job statuses reported by the PCE.
const (
	// JobStatusPending indicates a job that has not finished yet.
	JobStatusPending = "pending"

	// JobStatusRunning indicates a job that is currently executing.
	JobStatusRunning = "running"

	// JobStatusDone is the terminal success status of collection jobs.
	JobStatusDone = "done"

	// JobStatusCompleted is the terminal success status of query jobs.
	JobStatusCompleted = "completed"

	// JobStatusFailed is the terminal failure status of both job kinds.
	JobStatusFailed = "failed"
)

// Per-item statuses reported by bulk and multi-create endpoints.
const (
	// ItemStatusCreated indicates a successfully created item.
	ItemStatusCreated = "created"

	// ItemStatusUpdated indicates a successfully updated item.
	ItemStatusUpdated = "updated"

	// ItemStatusDeleted indicates a successfully deleted item.
	ItemStatusDeleted = "deleted"
)

// Query parameter names understood by the PCE.
const (
	// ParamMaxResults limits the number of results in a collection GET.
	ParamMaxResults = "max_results"
)

// Response header names.
const (
	// HeaderTotalCount carries the total number of objects matching a
	// collection query, regardless of the max_results limit.
	HeaderTotalCount = "X-Total-Count"

	// HeaderRetryAfter carries the suggested poll delay in seconds for
	// async collection jobs.
	HeaderRetryAfter = "Retry-After"
)
