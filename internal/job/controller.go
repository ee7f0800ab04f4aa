// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package job drives the submit-then-poll lifecycle of one analysis job.
//
// A Controller owns a single job at a time: it submits the sequence, polls
// the service at a fixed interval until the job reaches a terminal state or
// the attempt budget runs out, and fetches the similarity results exactly
// once when the service reports completion. Polls are strictly sequential;
// the next request is only issued after the previous response arrived.
package job

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"

	"github.com/pdiddy/seqatlas/internal/api"
	"github.com/pdiddy/seqatlas/pkg/types"
)

// Service is the slice of the analysis client the controller needs.
// *api.Client satisfies it.
type Service interface {
	Submit(ctx context.Context, submissionID, sequence, model string) (string, error)
	Poll(ctx context.Context, jobID string) (api.JobState, error)
	Similar(ctx context.Context, jobID string, n int) (types.JobResult, error)
}

// Controller runs one job to completion. Fields may be adjusted between
// NewController and Run; OnUpdate, when set, observes the job after every
// state change and never fires after Run returns.
type Controller struct {
	Service     Service
	Interval    time.Duration
	MaxAttempts int
	ResultCount int
	OnUpdate    func(types.Job)
}

// NewController builds a controller from configuration, applying the
// defaults for unset values (5s interval, 60 attempts, 50 results).
func NewController(svc Service, cfg types.JobConfig) *Controller {
	interval := cfg.PollInterval
	if interval <= 0 {
		interval = 5 * time.Second
	}
	maxAttempts := cfg.MaxAttempts
	if maxAttempts <= 0 {
		maxAttempts = 60
	}
	resultCount := cfg.ResultCount
	if resultCount <= 0 {
		resultCount = 50
	}
	return &Controller{
		Service:     svc,
		Interval:    interval,
		MaxAttempts: maxAttempts,
		ResultCount: resultCount,
	}
}

// Run submits sequence and blocks until the job terminates, the attempt
// budget is exhausted, or ctx is cancelled. The returned Job always carries
// the last observed state, also when err is non-nil.
//
// Terminal outcomes: remote completion fetches results exactly once and
// returns a Completed job; remote failure returns JobFailedError with the
// service-reported reason; budget exhaustion returns JobTimeoutError.
// Transient network errors during polling consume attempts but do not
// abort; credential rejections and unknown-job responses abort immediately.
// Cancellation returns ctx.Err() with the job in its last observed state.
func (c *Controller) Run(ctx context.Context, sequence, model string) (types.Job, error) {
	j := types.Job{
		SubmissionID: uuid.NewString(),
		Model:        model,
		Status:       types.JobSubmitted,
		SubmittedAt:  time.Now(),
	}

	jobID, err := c.Service.Submit(ctx, j.SubmissionID, sequence, model)
	if err != nil {
		return j, err
	}
	j.ID = jobID
	c.notify(j)

	var lastPollErr error
	for attempt := 1; attempt <= c.MaxAttempts; attempt++ {
		select {
		case <-ctx.Done():
			return j, ctx.Err()
		case <-time.After(c.Interval):
		}

		state, err := c.Service.Poll(ctx, jobID)
		j.Attempts = attempt
		if err != nil {
			var authErr *types.AuthError
			var notFound *types.NotFoundError
			if errors.As(err, &authErr) || errors.As(err, &notFound) {
				return j, err
			}
			if ctx.Err() != nil {
				return j, ctx.Err()
			}
			lastPollErr = err
			continue
		}
		lastPollErr = nil

		j.Progress = progressEstimate(attempt)

		switch state.Status {
		case types.JobCompleted:
			j.Status = types.JobCompleted
			j.Progress = 1
			result, err := c.Service.Similar(ctx, jobID, c.ResultCount)
			if err != nil {
				return j, err
			}
			if result.Projection == nil {
				result.Projection = state.Projection
			}
			j.Result = &result
			c.notify(j)
			return j, nil

		case types.JobFailed:
			j.Status = types.JobFailed
			j.Error = state.Error
			c.notify(j)
			return j, &types.JobFailedError{JobID: jobID, Reason: state.Error}

		case types.JobSubmitted:
			j.Status = types.JobSubmitted
		default:
			// Unknown remote states count as still running.
			j.Status = types.JobRunning
		}
		c.notify(j)
	}

	j.Status = types.JobTimedOut
	c.notify(j)
	err = &types.JobTimeoutError{JobID: jobID, Attempts: c.MaxAttempts}
	if lastPollErr != nil {
		return j, fmt.Errorf("%w (last poll error: %v)", err, lastPollErr)
	}
	return j, err
}

func (c *Controller) notify(j types.Job) {
	if c.OnUpdate != nil {
		c.OnUpdate(j)
	}
}

// progressEstimate maps elapsed attempts onto a display fraction that
// rises quickly at first and flattens out, capped below 1 until the job
// actually terminates.
func progressEstimate(attempts int) float64 {
	p := 1 - math.Exp(-float64(attempts)/12)
	return math.Min(p, 0.99)
}
