// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package api implements the HTTP client for the sequence analysis service.
//
// The service exposes four endpoints: submit an analysis job, poll job state,
// fetch similarity results for a completed job, and download the reference
// collection. All requests authenticate with an X-API-Key header.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/pdiddy/seqatlas/internal/httputil"
	"github.com/pdiddy/seqatlas/pkg/types"
)

// Client talks to the analysis service. The zero value is not usable; build
// one with NewClient or set BaseURL explicitly (tests point it at an
// httptest server).
type Client struct {
	HTTP      *http.Client
	BaseURL   string
	Key       string
	UserAgent string
}

// NewClient builds a client from configuration.
func NewClient(cfg types.APIConfig) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		HTTP:      &http.Client{Timeout: timeout},
		BaseURL:   strings.TrimRight(cfg.BaseURL, "/"),
		Key:       cfg.Key,
		UserAgent: cfg.UserAgent,
	}
}

// Submit posts a sequence for analysis and returns the service job ID.
// Submission is not idempotent, so it is never retried here; a 429 surfaces
// as a NetworkError for the caller to handle.
func (c *Client) Submit(ctx context.Context, submissionID, sequence, model string) (string, error) {
	body, err := json.Marshal(analyzeRequest{
		SubmissionID: submissionID,
		Sequence:     sequence,
		Model:        model,
	})
	if err != nil {
		return "", fmt.Errorf("encoding analyze request: %w", err)
	}

	req, err := c.newRequest(ctx, http.MethodPost, c.BaseURL+"/analyze", bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return "", &types.NetworkError{Op: "submit", Err: err}
	}
	defer resp.Body.Close()

	if err := c.classify("submit", resp, ""); err != nil {
		return "", err
	}

	var ar analyzeResponse
	if err := json.NewDecoder(resp.Body).Decode(&ar); err != nil {
		return "", fmt.Errorf("parsing analyze response: %w", err)
	}
	if ar.JobID == "" {
		return "", fmt.Errorf("analyze response missing job id")
	}
	return ar.JobID, nil
}

// JobState is one observation of a job from the poll endpoint.
type JobState struct {
	Status     types.JobStatus
	Error      string
	Projection *types.Coordinates
}

// Poll fetches the current state of a job. Unknown job IDs map to
// NotFoundError.
func (c *Client) Poll(ctx context.Context, jobID string) (JobState, error) {
	req, err := c.newRequest(ctx, http.MethodGet, c.BaseURL+"/jobs/"+jobID, nil)
	if err != nil {
		return JobState{}, err
	}

	resp, err := httputil.DoWithRetry(ctx, c.HTTP, req, 0)
	if err != nil {
		return JobState{}, &types.NetworkError{Op: "poll", Err: err}
	}
	defer resp.Body.Close()

	if err := c.classify("poll", resp, jobID); err != nil {
		return JobState{}, err
	}

	var js jobStateResponse
	if err := json.NewDecoder(resp.Body).Decode(&js); err != nil {
		return JobState{}, fmt.Errorf("parsing job state: %w", err)
	}
	return JobState{
		Status:     types.JobStatus(js.Status),
		Error:      js.Error,
		Projection: js.Projection.coordinates(),
	}, nil
}

// Similar fetches the top-n similarity results for a completed job.
func (c *Client) Similar(ctx context.Context, jobID string, n int) (types.JobResult, error) {
	u := c.BaseURL + "/jobs/" + jobID + "/similar"
	if n > 0 {
		u = fmt.Sprintf("%s?n=%d", u, n)
	}
	req, err := c.newRequest(ctx, http.MethodGet, u, nil)
	if err != nil {
		return types.JobResult{}, err
	}

	resp, err := httputil.DoWithRetry(ctx, c.HTTP, req, 0)
	if err != nil {
		return types.JobResult{}, &types.NetworkError{Op: "similar", Err: err}
	}
	defer resp.Body.Close()

	if err := c.classify("similar", resp, jobID); err != nil {
		return types.JobResult{}, err
	}

	var sr similarResponse
	if err := json.NewDecoder(resp.Body).Decode(&sr); err != nil {
		return types.JobResult{}, fmt.Errorf("parsing similarity results: %w", err)
	}

	result := types.JobResult{Projection: sr.Projection.coordinates()}
	for _, hit := range sr.Results {
		result.Results = append(result.Results, types.SimilarityResult{
			ID:          hit.ID,
			Accession:   hit.Accession,
			Similarity:  hit.Similarity,
			Distance:    hit.Distance,
			Coordinates: hit.Coordinates.coordinates(),
			Metadata: types.PointMetadata{
				Country: hit.Country,
				Year:    hit.Year,
				Host:    hit.Host,
				Lineage: hit.Lineage,
			},
		})
	}
	return result, nil
}

// Reference downloads the full reference collection with projection
// coordinates and metadata for every entry.
func (c *Client) Reference(ctx context.Context) ([]types.ReferenceEntry, error) {
	req, err := c.newRequest(ctx, http.MethodGet, c.BaseURL+"/reference", nil)
	if err != nil {
		return nil, err
	}

	resp, err := httputil.DoWithRetry(ctx, c.HTTP, req, 0)
	if err != nil {
		return nil, &types.NetworkError{Op: "reference", Err: err}
	}
	defer resp.Body.Close()

	if err := c.classify("reference", resp, ""); err != nil {
		return nil, err
	}

	var rr referenceResponse
	if err := json.NewDecoder(resp.Body).Decode(&rr); err != nil {
		return nil, fmt.Errorf("parsing reference collection: %w", err)
	}

	entries := make([]types.ReferenceEntry, 0, len(rr.Entries))
	for _, e := range rr.Entries {
		entries = append(entries, types.ReferenceEntry{
			Accession:   e.Accession,
			Coordinates: types.Coordinates{X: e.X, Y: e.Y},
			Metadata: types.PointMetadata{
				Country: e.Country,
				Year:    e.Year,
				Host:    e.Host,
				Lineage: e.Lineage,
			},
		})
	}
	return entries, nil
}

func (c *Client) newRequest(ctx context.Context, method, url string, body *bytes.Reader) (*http.Request, error) {
	var req *http.Request
	var err error
	if body != nil {
		req, err = http.NewRequestWithContext(ctx, method, url, body)
	} else {
		req, err = http.NewRequestWithContext(ctx, method, url, nil)
	}
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if c.Key != "" {
		req.Header.Set("X-API-Key", c.Key)
	}
	if c.UserAgent != "" {
		req.Header.Set("User-Agent", c.UserAgent)
	}
	return req, nil
}

// classify maps a non-2xx response to the error taxonomy. Rejected
// credentials become AuthError so callers can discard the stored key;
// unknown identifiers become NotFoundError.
func (c *Client) classify(op string, resp *http.Response, identifier string) error {
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}
	switch resp.StatusCode {
	case http.StatusUnauthorized, http.StatusForbidden:
		return &types.AuthError{StatusCode: resp.StatusCode}
	case http.StatusNotFound:
		if identifier != "" {
			return &types.NotFoundError{Identifier: identifier}
		}
	}
	return &types.NetworkError{Op: op, StatusCode: resp.StatusCode}
}

// Analysis service JSON structures.
type analyzeRequest struct {
	SubmissionID string `json:"submission_id"`
	Sequence     string `json:"sequence"`
	Model        string `json:"model,omitempty"`
}

type analyzeResponse struct {
	JobID string `json:"job_id"`
}

type jobStateResponse struct {
	Status     string           `json:"status"`
	Error      string           `json:"error,omitempty"`
	Projection *wireCoordinates `json:"projection,omitempty"`
}

type similarResponse struct {
	Results    []wireResult     `json:"results"`
	Projection *wireCoordinates `json:"projection,omitempty"`
}

type wireResult struct {
	ID          string           `json:"id"`
	Accession   string           `json:"accession"`
	Similarity  float64          `json:"similarity"`
	Distance    float64          `json:"distance"`
	Coordinates *wireCoordinates `json:"coordinates,omitempty"`
	Country     string           `json:"country,omitempty"`
	Year        int              `json:"year,omitempty"`
	Host        string           `json:"host,omitempty"`
	Lineage     string           `json:"lineage,omitempty"`
}

type referenceResponse struct {
	Entries []wireEntry `json:"entries"`
}

type wireEntry struct {
	Accession string  `json:"accession"`
	X         float64 `json:"x"`
	Y         float64 `json:"y"`
	Country   string  `json:"country,omitempty"`
	Year      int     `json:"year,omitempty"`
	Host      string  `json:"host,omitempty"`
	Lineage   string  `json:"lineage,omitempty"`
}

type wireCoordinates struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

func (w *wireCoordinates) coordinates() *types.Coordinates {
	if w == nil {
		return nil
	}
	return &types.Coordinates{X: w.X, Y: w.Y}
}
