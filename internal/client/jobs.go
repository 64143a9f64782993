package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/illumio-labs/pce-go/internal/constants"
	internalhttp "github.com/illumio-labs/pce-go/internal/http"
	"github.com/illumio-labs/pce-go/pkg/pce"
)

// JobPoller drives the PCE's two async job flavors.
//
// Collection jobs are started by a GET with "Prefer: respond-async";
// the job HREF arrives in the Location header and the job is terminal
// at status "done", with the result at result.href. Query jobs are
// started by a POST whose response body carries the job HREF; they are
// terminal at status "completed", with the result path in the
// top-level result field.
type JobPoller struct {
	httpClient *internalhttp.Client

	// initialBackoff is the first poll delay when the PCE supplies no
	// Retry-After value. Overridable in tests.
	initialBackoff time.Duration
}

// NewJobPoller builds a poller over the shared transport.
func NewJobPoller(httpClient *internalhttp.Client) *JobPoller {
	return &JobPoller{
		httpClient:     httpClient,
		initialBackoff: constants.DefaultPollBackoff,
	}
}

type jobStatus struct {
	Status string          `json:"status"`
	Result json.RawMessage `json:"result"`
}

// GetCollection fetches a large collection through an async collection
// job and returns the raw result body.
func (p *JobPoller) GetCollection(ctx context.Context, endpoint string, query url.Values) ([]byte, error) {
	resp, err := p.httpClient.Do(ctx, &internalhttp.Request{
		Method:  http.MethodGet,
		Path:    endpoint,
		Query:   query,
		Headers: http.Header{"Prefer": []string{"respond-async"}},
	})
	if err != nil {
		return nil, fmt.Errorf("starting collection job: %w", err)
	}

	jobHref := resp.Headers.Get("Location")
	if jobHref == "" {
		return nil, fmt.Errorf("starting collection job: no Location header: %w", pce.ErrUnexpectedBody)
	}

	backoff := p.initialBackoff
	if retryAfter := resp.Headers.Get(constants.HeaderRetryAfter); retryAfter != "" {
		if seconds, err := strconv.Atoi(retryAfter); err == nil && seconds > 0 {
			backoff = time.Duration(seconds) * time.Second
		}
	}

	resultHref, err := p.poll(ctx, jobHref, backoff, constants.JobStatusDone, collectionResultHref)
	if err != nil {
		return nil, err
	}

	result, err := p.httpClient.Get(ctx, resultHref, nil)
	if err != nil {
		return nil, fmt.Errorf("fetching collection job result: %w", err)
	}

	return result.Body, nil
}

// RunQuery submits an async query job and returns the raw result body
// once the job completes.
func (p *JobPoller) RunQuery(ctx context.Context, endpoint string, body any) ([]byte, error) {
	resp, err := p.httpClient.Post(ctx, endpoint, body)
	if err != nil {
		return nil, fmt.Errorf("starting query job: %w", err)
	}

	var job pce.Reference

	err = json.Unmarshal(resp.Body, &job)
	if err != nil || job.Href == "" {
		return nil, fmt.Errorf("starting query job: no job href in response: %w", pce.ErrUnexpectedBody)
	}

	resultHref, err := p.poll(ctx, job.Href, p.initialBackoff, constants.JobStatusCompleted, queryResultHref(job.Href))
	if err != nil {
		return nil, err
	}

	result, err := p.httpClient.Get(ctx, resultHref, nil)
	if err != nil {
		return nil, fmt.Errorf("fetching query job result: %w", err)
	}

	return result.Body, nil
}

// poll re-reads the job until it reaches the terminal status, backing
// off by a factor of 1.5 between polls. A "failed" status surfaces the
// job's error payload.
func (p *JobPoller) poll(
	ctx context.Context,
	jobHref string,
	backoff time.Duration,
	terminal string,
	resultHref func(jobStatus) (string, error),
) (string, error) {
	for {
		err := sleep(ctx, backoff)
		if err != nil {
			return "", fmt.Errorf("polling job %s: %w", jobHref, err)
		}

		backoff = time.Duration(float64(backoff) * constants.PollBackoffFactor)

		resp, err := p.httpClient.Get(ctx, jobHref, nil)
		if err != nil {
			return "", fmt.Errorf("polling job %s: %w", jobHref, err)
		}

		var status jobStatus

		err = json.Unmarshal(resp.Body, &status)
		if err != nil {
			return "", fmt.Errorf("polling job %s: %w", jobHref, err)
		}

		switch status.Status {
		case terminal:
			return resultHref(status)
		case constants.JobStatusFailed:
			return "", fmt.Errorf("job %s: %s: %w", jobHref, string(status.Result), pce.ErrJobFailed)
		}
	}
}

// collectionResultHref reads result.href from a finished collection
// job.
func collectionResultHref(status jobStatus) (string, error) {
	var result pce.Reference

	err := json.Unmarshal(status.Result, &result)
	if err != nil || result.Href == "" {
		return "", fmt.Errorf("collection job result missing href: %w", pce.ErrUnexpectedBody)
	}

	return result.Href, nil
}

// queryResultHref reads the top-level result path from a finished
// query job, falling back to the job's download endpoint.
func queryResultHref(jobHref string) func(jobStatus) (string, error) {
	return func(status jobStatus) (string, error) {
		var path string
		if err := json.Unmarshal(status.Result, &path); err == nil && path != "" {
			return path, nil
		}

		return jobHref + "/download", nil
	}
}

func sleep(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
