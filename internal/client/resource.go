// Package client implements the PCE API client over the shared
// transport.
package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/illumio-labs/pce-go/internal/constants"
	internalhttp "github.com/illumio-labs/pce-go/internal/http"
	"github.com/illumio-labs/pce-go/pkg/pce"
)

// ResourceClient is the untyped CRUD engine for one registered
// resource. The typed API facade and the generic name-addressed API
// both delegate here.
type ResourceClient struct {
	httpClient *internalhttp.Client
	desc       *pce.Descriptor
	orgID      int
	jobs       *JobPoller
}

// NewResourceClient builds a resource client from a registered
// descriptor.
func NewResourceClient(httpClient *internalhttp.Client, desc *pce.Descriptor, orgID int, jobs *JobPoller) *ResourceClient {
	return &ResourceClient{
		httpClient: httpClient,
		desc:       desc,
		orgID:      orgID,
		jobs:       jobs,
	}
}

// Endpoint resolves the collection URL for this resource. Security
// policy resources get a /sec_policy/{version}/ segment, defaulting to
// draft. Parented resources are addressed under the parent's draft
// HREF. Global resources take no org prefix.
func (r *ResourceClient) Endpoint(version pce.PolicyVersion, parent pce.Referable) (string, error) {
	if r.desc.SecPolicy {
		switch version {
		case "":
			version = pce.PolicyDraft
		case pce.PolicyDraft, pce.PolicyActive:
		default:
			return "", fmt.Errorf("resolving %s endpoint: %q: %w", r.desc.Name, version, pce.ErrInvalidPolicyVersion)
		}
	}

	if r.desc.Parented {
		if parent == nil || parent.Ref() == nil || parent.Ref().Href == "" {
			return "", fmt.Errorf("resolving %s endpoint: parent reference: %w", r.desc.Name, pce.ErrMissingHref)
		}
	}

	if parent != nil {
		// Writes only land on draft objects, so a parent given by its
		// active HREF is coerced to the draft form.
		parentHref := pce.DraftHref(parent.Ref().Href)

		return collapseSlashes(parentHref + "/" + r.desc.Path), nil
	}

	if r.desc.Global {
		return collapseSlashes("/" + r.desc.Path), nil
	}

	prefix := fmt.Sprintf("/orgs/%d", r.orgID)
	if r.desc.SecPolicy {
		prefix += "/sec_policy/" + string(version)
	}

	return collapseSlashes(prefix + "/" + r.desc.Path), nil
}

func collapseSlashes(path string) string {
	for strings.Contains(path, "//") {
		path = strings.ReplaceAll(path, "//", "/")
	}

	return path
}

// GetByHref fetches a single object by its HREF.
func (r *ResourceClient) GetByHref(ctx context.Context, href string) (json.RawMessage, error) {
	resp, err := r.httpClient.Get(ctx, href, nil)
	if err != nil {
		return nil, fmt.Errorf("getting %s: %w", href, err)
	}

	return resp.Body, nil
}

// List fetches one synchronous page of the collection. The PCE caps
// synchronous collection GETs at 500 objects.
func (r *ResourceClient) List(ctx context.Context, opts pce.ListOptions) ([]json.RawMessage, error) {
	endpoint, err := r.Endpoint(opts.Version, opts.Parent)
	if err != nil {
		return nil, err
	}

	resp, err := r.httpClient.Get(ctx, endpoint, opts.Params.Values())
	if err != nil {
		return nil, fmt.Errorf("listing %s: %w", r.desc.Name, err)
	}

	return decodeCollection(r.desc.Name, resp.Body)
}

// Count returns the total number of matching objects without
// transferring them, using a zero-result probe and the X-Total-Count
// header.
func (r *ResourceClient) Count(ctx context.Context, opts pce.ListOptions) (int, error) {
	endpoint, err := r.Endpoint(opts.Version, opts.Parent)
	if err != nil {
		return 0, err
	}

	query := opts.Params.Values()
	if query == nil {
		query = url.Values{}
	}

	query.Set(constants.ParamMaxResults, "0")

	resp, err := r.httpClient.Get(ctx, endpoint, query)
	if err != nil {
		return 0, fmt.Errorf("counting %s: %w", r.desc.Name, err)
	}

	return totalCount(resp)
}

// totalCount reads the X-Total-Count header. A missing header is an
// error, never a count of zero.
func totalCount(resp *internalhttp.Response) (int, error) {
	header := resp.Headers.Get(constants.HeaderTotalCount)
	if header == "" {
		return 0, fmt.Errorf("missing %s header: %w", constants.HeaderTotalCount, pce.ErrUnexpectedBody)
	}

	count, err := strconv.Atoi(header)
	if err != nil {
		return 0, fmt.Errorf("parsing %s header %q: %w", constants.HeaderTotalCount, header, err)
	}

	return count, nil
}

// ListAll fetches the complete collection. When the caller already set
// max_results the request goes through unchanged. Otherwise a
// zero-result probe determines the total: collections within the
// synchronous cap are fetched directly, larger ones go through an
// async collection job. Endpoints that ignore the limit parameter
// answer the probe with the full collection, which is used as-is.
func (r *ResourceClient) ListAll(ctx context.Context, opts pce.ListOptions) ([]json.RawMessage, error) {
	if _, capped := opts.Params[constants.ParamMaxResults]; capped {
		return r.List(ctx, opts)
	}

	endpoint, err := r.Endpoint(opts.Version, opts.Parent)
	if err != nil {
		return nil, err
	}

	probeQuery := opts.Params.Values()
	if probeQuery == nil {
		probeQuery = url.Values{}
	}

	probeQuery.Set(constants.ParamMaxResults, "0")

	probe, err := r.httpClient.Get(ctx, endpoint, probeQuery)
	if err != nil {
		return nil, fmt.Errorf("listing %s: %w", r.desc.Name, err)
	}

	items, err := decodeCollection(r.desc.Name, probe.Body)
	if err != nil {
		return nil, err
	}

	if len(items) > 0 {
		return items, nil
	}

	total, err := totalCount(probe)
	if err != nil {
		return nil, fmt.Errorf("listing %s: %w", r.desc.Name, err)
	}

	if total == 0 {
		return []json.RawMessage{}, nil
	}

	if total <= constants.SyncMaxResults {
		query := opts.Params.Values()
		if query == nil {
			query = url.Values{}
		}

		query.Set(constants.ParamMaxResults, strconv.Itoa(total))

		resp, err := r.httpClient.Get(ctx, endpoint, query)
		if err != nil {
			return nil, fmt.Errorf("listing %s: %w", r.desc.Name, err)
		}

		return decodeCollection(r.desc.Name, resp.Body)
	}

	body, err := r.jobs.GetCollection(ctx, endpoint, opts.Params.Values())
	if err != nil {
		return nil, fmt.Errorf("listing %s: %w", r.desc.Name, err)
	}

	return decodeCollection(r.desc.Name, body)
}

func decodeCollection(name string, body []byte) ([]json.RawMessage, error) {
	var items []json.RawMessage

	err := json.Unmarshal(body, &items)
	if err != nil {
		return nil, fmt.Errorf("decoding %s collection: %w", name, err)
	}

	return items, nil
}

// Create posts a new object to the collection and returns the created
// object as echoed by the PCE.
func (r *ResourceClient) Create(ctx context.Context, parent pce.Referable, body any) (json.RawMessage, error) {
	endpoint, err := r.Endpoint(pce.PolicyDraft, parent)
	if err != nil {
		return nil, err
	}

	encoded, err := encodeBody(body)
	if err != nil {
		return nil, fmt.Errorf("creating %s: %w", r.desc.Name, err)
	}

	resp, err := r.httpClient.Post(ctx, endpoint, encoded)
	if err != nil {
		return nil, fmt.Errorf("creating %s: %w", r.desc.Name, err)
	}

	return resp.Body, nil
}

// Update puts the object's changed fields to its draft HREF. The PCE
// answers 204 on success.
func (r *ResourceClient) Update(ctx context.Context, href string, body any) error {
	if href == "" {
		return fmt.Errorf("updating %s: %w", r.desc.Name, pce.ErrMissingHref)
	}

	encoded, err := encodeBody(body)
	if err != nil {
		return fmt.Errorf("updating %s: %w", href, err)
	}

	resp, err := r.httpClient.Put(ctx, pce.DraftHref(href), encoded)
	if err != nil {
		return fmt.Errorf("updating %s: %w", href, err)
	}

	if resp.StatusCode != http.StatusNoContent && resp.StatusCode != http.StatusOK {
		return fmt.Errorf("updating %s: status %d: %w", href, resp.StatusCode, pce.ErrUnexpectedBody)
	}

	return nil
}

// Delete removes the object at href.
func (r *ResourceClient) Delete(ctx context.Context, href string) error {
	if href == "" {
		return fmt.Errorf("deleting %s: %w", r.desc.Name, pce.ErrMissingHref)
	}

	_, err := r.httpClient.Delete(ctx, pce.DraftHref(href))
	if err != nil {
		return fmt.Errorf("deleting %s: %w", href, err)
	}

	return nil
}

// Bulk applies op ("create", "update", or "delete") to items in batches
// of at most 1000, concatenating the per-item results in input order.
// Item-level failures are reported in the results, never as a call
// error.
func (r *ResourceClient) Bulk(ctx context.Context, op string, items []any) ([]pce.BulkResult, error) {
	endpoint, err := r.Endpoint(pce.PolicyDraft, nil)
	if err != nil {
		return nil, err
	}

	endpoint += "/bulk_" + op

	results := make([]pce.BulkResult, 0, len(items))

	for start := 0; start < len(items); start += constants.BulkMaxSize {
		end := min(start+constants.BulkMaxSize, len(items))

		batch := make([]any, 0, end-start)

		for _, item := range items[start:end] {
			encoded, err := encodeBody(item)
			if err != nil {
				return nil, fmt.Errorf("bulk %s %s: %w", op, r.desc.Name, err)
			}

			batch = append(batch, encoded)
		}

		resp, err := r.httpClient.Put(ctx, endpoint, batch)
		if err != nil {
			return nil, fmt.Errorf("bulk %s %s: %w", op, r.desc.Name, err)
		}

		var batchResults []pce.BulkResult

		err = json.Unmarshal(resp.Body, &batchResults)
		if err != nil {
			return nil, fmt.Errorf("bulk %s %s: decoding results: %w", op, r.desc.Name, err)
		}

		for i := range batchResults {
			normalizeBulkResult(&batchResults[i])
		}

		results = append(results, batchResults...)
	}

	return results, nil
}

// normalizeBulkResult folds the top-level token/message pair of a
// failed item into its error list, so callers read one error surface
// regardless of which shape the PCE used.
func normalizeBulkResult(result *pce.BulkResult) {
	if result.OK() || len(result.Errors) > 0 {
		return
	}

	if result.Token == "" && result.Message == "" {
		return
	}

	result.Errors = append(result.Errors, pce.APIErrorDetail{
		Token:   result.Token,
		Message: result.Message,
	})
}

// encodeBody runs typed objects through the object codec; raw JSON and
// plain maps pass through for the transport to marshal.
func encodeBody(body any) (any, error) {
	switch body.(type) {
	case nil, []byte, json.RawMessage, map[string]any:
		return body, nil
	default:
		return pce.Encode(body)
	}
}
