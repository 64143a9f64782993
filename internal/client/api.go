package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"

	"github.com/illumio-labs/pce-go/pkg/pce"
)

// API is the typed facade over a ResourceClient. It decodes raw bodies
// into T through the object codec, so unknown fields survive in Extra
// and references are validated on the way in.
type API[T any] struct {
	resource *ResourceClient
}

// NewAPI wraps a resource client with typed decoding.
func NewAPI[T any](resource *ResourceClient) *API[T] {
	return &API[T]{resource: resource}
}

func (a *API[T]) decode(raw json.RawMessage) (*T, error) {
	out := new(T)

	err := pce.Decode(raw, out)
	if err != nil {
		return nil, err
	}

	return out, nil
}

func (a *API[T]) decodeAll(items []json.RawMessage) ([]*T, error) {
	out := make([]*T, 0, len(items))

	for _, item := range items {
		decoded, err := a.decode(item)
		if err != nil {
			return nil, err
		}

		out = append(out, decoded)
	}

	return out, nil
}

// Get fetches a single object by HREF.
func (a *API[T]) Get(ctx context.Context, href string) (*T, error) {
	raw, err := a.resource.GetByHref(ctx, href)
	if err != nil {
		return nil, err
	}

	return a.decode(raw)
}

// List fetches one synchronous page of the collection.
func (a *API[T]) List(ctx context.Context, opts pce.ListOptions) ([]*T, error) {
	items, err := a.resource.List(ctx, opts)
	if err != nil {
		return nil, err
	}

	return a.decodeAll(items)
}

// ListAll fetches the complete collection, transparently using an
// async job for large ones.
func (a *API[T]) ListAll(ctx context.Context, opts pce.ListOptions) ([]*T, error) {
	items, err := a.resource.ListAll(ctx, opts)
	if err != nil {
		return nil, err
	}

	return a.decodeAll(items)
}

// Count returns the total number of matching objects.
func (a *API[T]) Count(ctx context.Context, opts pce.ListOptions) (int, error) {
	return a.resource.Count(ctx, opts)
}

// Create posts a new object and returns the PCE's echo of it.
func (a *API[T]) Create(ctx context.Context, obj *T) (*pce.CreateResult[T], error) {
	return a.CreateIn(ctx, nil, obj)
}

// CreateIn creates an object inside a parent-scoped collection.
func (a *API[T]) CreateIn(ctx context.Context, parent pce.Referable, obj *T) (*pce.CreateResult[T], error) {
	raw, err := a.resource.Create(ctx, parent, obj)
	if err != nil {
		return nil, err
	}

	return a.splitCreateResponse(raw)
}

// splitCreateResponse handles the two create response shapes: a single
// echoed object, or a per-item array where each element is either a
// created object or a {token, message} failure without an href.
func (a *API[T]) splitCreateResponse(raw json.RawMessage) (*pce.CreateResult[T], error) {
	result := &pce.CreateResult[T]{}

	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || trimmed[0] != '[' {
		obj, err := a.decode(raw)
		if err != nil {
			return nil, err
		}

		result.Object = obj

		return result, nil
	}

	var items []json.RawMessage

	err := json.Unmarshal(trimmed, &items)
	if err != nil {
		return nil, fmt.Errorf("decoding create response: %w", err)
	}

	for _, item := range items {
		var outcome pce.BulkResult

		err := json.Unmarshal(item, &outcome)
		if err != nil {
			return nil, fmt.Errorf("decoding create response: %w", err)
		}

		if outcome.Href == "" || !outcome.OK() {
			normalizeBulkResult(&outcome)
			result.Errors = append(result.Errors, outcome)

			continue
		}

		obj, err := a.decode(item)
		if err != nil {
			return nil, err
		}

		result.Created = append(result.Created, obj)
	}

	return result, nil
}

// Update puts the object to its draft HREF.
func (a *API[T]) Update(ctx context.Context, obj *T) error {
	referable, ok := any(obj).(pce.Referable)
	if !ok || referable.Ref() == nil {
		return fmt.Errorf("updating %T: %w", obj, pce.ErrMissingHref)
	}

	return a.resource.Update(ctx, referable.Ref().Href, obj)
}

// Delete removes the object at href.
func (a *API[T]) Delete(ctx context.Context, href string) error {
	return a.resource.Delete(ctx, href)
}

// BulkCreate creates items in batches with per-item results.
func (a *API[T]) BulkCreate(ctx context.Context, items []*T) ([]pce.BulkResult, error) {
	return a.resource.Bulk(ctx, "create", anySlice(items))
}

// BulkUpdate updates items in batches with per-item results.
func (a *API[T]) BulkUpdate(ctx context.Context, items []*T) ([]pce.BulkResult, error) {
	return a.resource.Bulk(ctx, "update", anySlice(items))
}

// BulkDelete deletes the referenced objects in batches with per-item
// results.
func (a *API[T]) BulkDelete(ctx context.Context, refs []pce.Referable) ([]pce.BulkResult, error) {
	items := make([]any, 0, len(refs))
	for _, ref := range refs {
		items = append(items, map[string]any{"href": ref.Ref().Href})
	}

	return a.resource.Bulk(ctx, "delete", items)
}

func anySlice[T any](items []*T) []any {
	out := make([]any, 0, len(items))
	for _, item := range items {
		out = append(out, item)
	}

	return out
}

// genericAPI implements pce.GenericAPI over a ResourceClient, leaving
// bodies as raw JSON.
type genericAPI struct {
	resource *ResourceClient
}

func (g *genericAPI) Get(ctx context.Context, href string) (json.RawMessage, error) {
	return g.resource.GetByHref(ctx, href)
}

func (g *genericAPI) List(ctx context.Context, opts pce.ListOptions) ([]json.RawMessage, error) {
	return g.resource.List(ctx, opts)
}

func (g *genericAPI) ListAll(ctx context.Context, opts pce.ListOptions) ([]json.RawMessage, error) {
	return g.resource.ListAll(ctx, opts)
}

func (g *genericAPI) Create(ctx context.Context, body any) (json.RawMessage, error) {
	return g.resource.Create(ctx, nil, body)
}

func (g *genericAPI) Update(ctx context.Context, href string, body any) error {
	return g.resource.Update(ctx, href, body)
}

func (g *genericAPI) Delete(ctx context.Context, href string) error {
	return g.resource.Delete(ctx, href)
}
