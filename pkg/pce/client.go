package pce

import (
	"context"
	"encoding/json"
	"time"
)

// Logger is the minimal structured logging interface accepted by the
// client. Any logger with leveled, field-carrying methods can adapt to
// it.
type Logger interface {
	Debug(msg string, fields map[string]any)
	Info(msg string, fields map[string]any)
	Warn(msg string, fields map[string]any)
	Error(msg string, fields map[string]any)
}

// Config holds the connection settings for a PCE.
type Config struct {
	// Host is the PCE hostname or a full URL. A bare host defaults to
	// https; any path component of a URL is discarded.
	Host string `json:"host" yaml:"host"`

	// Port is the PCE HTTPS port (default 443).
	Port int `json:"port,omitempty" yaml:"port,omitempty"`

	// APIVersion is the API version path segment (default "v2").
	APIVersion string `json:"api_version,omitempty" yaml:"api_version,omitempty"`

	// OrgID is the PCE organization ID (default 1).
	OrgID int `json:"org_id,omitempty" yaml:"org_id,omitempty"`

	// APIKey and APISecret authenticate every request via HTTP basic
	// auth. The key may be an API key username or a user session token.
	APIKey    string `json:"api_key,omitempty" yaml:"api_key,omitempty"`
	APISecret string `json:"-"                 yaml:"-"`

	// RetryMax caps transport-level retries of retryable status codes.
	RetryMax     int           `json:"retry_max,omitempty"      yaml:"retry_max,omitempty"`
	RetryWaitMin time.Duration `json:"retry_wait_min,omitempty" yaml:"retry_wait_min,omitempty"`
	RetryWaitMax time.Duration `json:"retry_wait_max,omitempty" yaml:"retry_wait_max,omitempty"`

	// HTTPTimeout bounds each individual request attempt.
	HTTPTimeout time.Duration `json:"http_timeout,omitempty" yaml:"http_timeout,omitempty"`

	// UserAgent overrides the default User-Agent header.
	UserAgent string `json:"user_agent,omitempty" yaml:"user_agent,omitempty"`

	// Debug enables request/response logging through Logger.
	Debug  bool   `json:"debug,omitempty" yaml:"debug,omitempty"`
	Logger Logger `json:"-"               yaml:"-"`
}

// ListOptions scope a collection operation.
type ListOptions struct {
	// Version selects draft or active for security policy resources.
	// Empty defaults to draft.
	Version PolicyVersion

	// Parent addresses nested collections, such as rules under their
	// rule set. Required for parented resources, ignored otherwise.
	Parent Referable

	// Params are passed to the PCE verbatim as query parameters.
	Params Params
}

// CreateResult is the outcome of a create. Most resources echo the
// created object back and Object holds it. A few collection endpoints,
// such as service bindings, answer with a per-item array; those
// successes land in Created and failures in Errors.
type CreateResult[T any] struct {
	Object  *T
	Created []*T
	Errors  []BulkResult
}

// First returns the single created object, or the first of an array
// response. Nil when nothing was created.
func (r *CreateResult[T]) First() *T {
	if r.Object != nil {
		return r.Object
	}

	if len(r.Created) > 0 {
		return r.Created[0]
	}

	return nil
}

// OK reports whether every item was created.
func (r *CreateResult[T]) OK() bool {
	return len(r.Errors) == 0
}

// ResourceAPI is the typed CRUD surface of one registered resource.
type ResourceAPI[T any] interface {
	// Get fetches a single object by HREF.
	Get(ctx context.Context, href string) (*T, error)

	// List fetches a collection synchronously. The PCE caps synchronous
	// results at 500 objects; use ListAll for complete collections.
	List(ctx context.Context, opts ListOptions) ([]*T, error)

	// ListAll fetches a complete collection. Small collections are
	// returned directly; larger ones transparently go through an async
	// collection job.
	ListAll(ctx context.Context, opts ListOptions) ([]*T, error)

	// Count returns the total number of objects matching the options
	// without transferring them.
	Count(ctx context.Context, opts ListOptions) (int, error)

	// Create posts a new object to the collection. Single-object echoes
	// land in the result's Object; array responses are split into
	// Created and Errors.
	Create(ctx context.Context, obj *T) (*CreateResult[T], error)

	// CreateIn creates an object inside a parent-scoped collection.
	CreateIn(ctx context.Context, parent Referable, obj *T) (*CreateResult[T], error)

	// Update puts changed fields to the object's draft HREF. The PCE
	// responds with no body on success.
	Update(ctx context.Context, obj *T) error

	// Delete removes the object at href.
	Delete(ctx context.Context, href string) error

	// BulkCreate creates items in batches, returning a per-item result
	// in input order. Individual item failures do not fail the call.
	BulkCreate(ctx context.Context, items []*T) ([]BulkResult, error)

	// BulkUpdate updates items in batches with per-item results.
	BulkUpdate(ctx context.Context, items []*T) ([]BulkResult, error)

	// BulkDelete deletes the referenced objects in batches with
	// per-item results.
	BulkDelete(ctx context.Context, refs []Referable) ([]BulkResult, error)
}

// GenericAPI is the untyped counterpart of ResourceAPI, addressed by
// registered resource name. Bodies are raw JSON.
type GenericAPI interface {
	Get(ctx context.Context, href string) (json.RawMessage, error)
	List(ctx context.Context, opts ListOptions) ([]json.RawMessage, error)
	ListAll(ctx context.Context, opts ListOptions) ([]json.RawMessage, error)
	Create(ctx context.Context, body any) (json.RawMessage, error)
	Update(ctx context.Context, href string, body any) error
	Delete(ctx context.Context, href string) error
}

// Client is the full PCE API surface.
type Client interface {
	Labels() ResourceAPI[Label]
	LabelGroups() ResourceAPI[LabelGroup]
	IPLists() ResourceAPI[IPList]
	Services() ResourceAPI[Service]
	VirtualServices() ResourceAPI[VirtualService]
	ServiceBindings() ResourceAPI[ServiceBinding]
	Rulesets() ResourceAPI[Ruleset]
	Rules() ResourceAPI[Rule]
	EnforcementBoundaries() ResourceAPI[EnforcementBoundary]
	FirewallSettings() ResourceAPI[FirewallSettings]
	Workloads() ResourceAPI[Workload]
	PairingProfiles() ResourceAPI[PairingProfile]
	VENs() ResourceAPI[VEN]
	Events() ResourceAPI[Event]
	Users() ResourceAPI[User]

	// Resource returns the untyped API for any registered resource name.
	Resource(name string) (GenericAPI, error)

	// OrgID returns the organization the client is scoped to.
	OrgID() int

	// CheckConnection verifies the PCE is reachable and the credentials
	// are accepted.
	CheckConnection(ctx context.Context) error

	// ProvisionPolicyChanges promotes the draft objects named by hrefs
	// to the active policy version.
	ProvisionPolicyChanges(ctx context.Context, commitMessage string, hrefs []string) (*SecurityPolicy, error)

	// GetTrafficFlows runs a traffic analysis query synchronously.
	GetTrafficFlows(ctx context.Context, query *TrafficQuery) ([]*TrafficFlow, error)

	// GetTrafficFlowsAsync submits the query as an async job and polls
	// until the result is ready.
	GetTrafficFlowsAsync(ctx context.Context, query *TrafficQuery) ([]*TrafficFlow, error)

	// GeneratePairingKey mints an activation code from a pairing
	// profile.
	GeneratePairingKey(ctx context.Context, profile Referable) (string, error)

	// UpdateWorkloadEnforcement bulk-moves workloads to an enforcement
	// mode, returning per-workload results.
	UpdateWorkloadEnforcement(ctx context.Context, mode EnforcementMode, workloads ...Referable) ([]BulkResult, error)

	// DefaultIPList fetches the built-in global "any" IP list.
	DefaultIPList(ctx context.Context) (*IPList, error)
}
