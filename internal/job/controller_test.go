// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package job

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/seqatlas/internal/api"
	"github.com/pdiddy/seqatlas/pkg/types"
)

type pollStep struct {
	state api.JobState
	err   error
}

type fakeService struct {
	mu            sync.Mutex
	submitErr     error
	submittedID   string
	submittedSeq  string
	polls         []pollStep
	pollCount     int
	similarResult types.JobResult
	similarErr    error
	similarCalls  int
	similarN      int
}

func (f *fakeService) Submit(_ context.Context, submissionID, sequence, _ string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.submitErr != nil {
		return "", f.submitErr
	}
	f.submittedID = submissionID
	f.submittedSeq = sequence
	return "job-1", nil
}

func (f *fakeService) Poll(context.Context, string) (api.JobState, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	i := f.pollCount
	f.pollCount++
	if i >= len(f.polls) {
		i = len(f.polls) - 1
	}
	step := f.polls[i]
	return step.state, step.err
}

func (f *fakeService) Similar(_ context.Context, _ string, n int) (types.JobResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.similarCalls++
	f.similarN = n
	return f.similarResult, f.similarErr
}

func (f *fakeService) pollsMade() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.pollCount
}

func testController(svc Service) *Controller {
	c := NewController(svc, types.JobConfig{})
	c.Interval = time.Millisecond
	return c
}

func TestRunCompletes(t *testing.T) {
	svc := &fakeService{
		polls: []pollStep{
			{state: api.JobState{Status: types.JobRunning}},
			{state: api.JobState{Status: types.JobRunning}},
			{state: api.JobState{Status: types.JobCompleted, Projection: &types.Coordinates{X: 1, Y: 2}}},
		},
		similarResult: types.JobResult{
			Results: []types.SimilarityResult{{ID: "r1", Accession: "NZ_A.1", Similarity: 0.98}},
		},
	}
	c := testController(svc)

	j, err := c.Run(context.Background(), "ACGT", "umap-v2")
	require.NoError(t, err)

	assert.Equal(t, types.JobCompleted, j.Status)
	assert.Equal(t, "job-1", j.ID)
	assert.Equal(t, 3, j.Attempts)
	assert.Equal(t, 1.0, j.Progress)

	// Completion stops polling immediately: no fourth poll.
	assert.Equal(t, 3, svc.pollsMade())
	// Results fetched exactly once, with the configured count.
	assert.Equal(t, 1, svc.similarCalls)
	assert.Equal(t, 50, svc.similarN)

	require.NotNil(t, j.Result)
	require.Len(t, j.Result.Results, 1)
	// Projection falls back to the poll-reported one when the results
	// payload omits it.
	require.NotNil(t, j.Result.Projection)
	assert.Equal(t, 1.0, j.Result.Projection.X)
}

func TestRunRemoteFailure(t *testing.T) {
	svc := &fakeService{
		polls: []pollStep{
			{state: api.JobState{Status: types.JobRunning}},
			{state: api.JobState{Status: types.JobFailed, Error: "sequence too short"}},
		},
	}
	c := testController(svc)

	j, err := c.Run(context.Background(), "ACGT", "")
	var failed *types.JobFailedError
	require.True(t, errors.As(err, &failed))
	assert.Equal(t, "sequence too short", failed.Reason)
	assert.Equal(t, "job-1", failed.JobID)

	assert.Equal(t, types.JobFailed, j.Status)
	assert.Equal(t, "sequence too short", j.Error)
	assert.Equal(t, 0, svc.similarCalls, "no result fetch for a failed job")
}

func TestRunTimeout(t *testing.T) {
	svc := &fakeService{
		polls: []pollStep{{state: api.JobState{Status: types.JobRunning}}},
	}
	c := testController(svc)
	c.MaxAttempts = 5

	j, err := c.Run(context.Background(), "ACGT", "")
	var timeout *types.JobTimeoutError
	require.True(t, errors.As(err, &timeout))
	assert.Equal(t, 5, timeout.Attempts)

	assert.Equal(t, types.JobTimedOut, j.Status)
	assert.Equal(t, 5, j.Attempts)
	// The budget bounds the polls; nothing runs past it.
	assert.Equal(t, 5, svc.pollsMade())
	assert.Equal(t, 0, svc.similarCalls)
}

func TestRunToleratesTransientPollErrors(t *testing.T) {
	svc := &fakeService{
		polls: []pollStep{
			{err: &types.NetworkError{Op: "poll", StatusCode: 502}},
			{err: &types.NetworkError{Op: "poll", Err: errors.New("connection reset")}},
			{state: api.JobState{Status: types.JobCompleted}},
		},
		similarResult: types.JobResult{Projection: &types.Coordinates{}},
	}
	c := testController(svc)

	j, err := c.Run(context.Background(), "ACGT", "")
	require.NoError(t, err)
	assert.Equal(t, types.JobCompleted, j.Status)
	assert.Equal(t, 3, j.Attempts)
}

func TestRunTimeoutMentionsLastPollError(t *testing.T) {
	svc := &fakeService{
		polls: []pollStep{{err: &types.NetworkError{Op: "poll", StatusCode: 503}}},
	}
	c := testController(svc)
	c.MaxAttempts = 3

	_, err := c.Run(context.Background(), "ACGT", "")
	var timeout *types.JobTimeoutError
	require.True(t, errors.As(err, &timeout))
	assert.Contains(t, err.Error(), "HTTP 503")
}

func TestRunAbortsOnAuthError(t *testing.T) {
	svc := &fakeService{
		polls: []pollStep{{err: &types.AuthError{StatusCode: 403}}},
	}
	c := testController(svc)

	j, err := c.Run(context.Background(), "ACGT", "")
	var authErr *types.AuthError
	require.True(t, errors.As(err, &authErr))
	assert.Equal(t, 1, svc.pollsMade(), "credential rejection stops polling")
	assert.False(t, j.Status.Terminal())
}

func TestRunAbortsOnUnknownJob(t *testing.T) {
	svc := &fakeService{
		polls: []pollStep{{err: &types.NotFoundError{Identifier: "job-1"}}},
	}
	c := testController(svc)

	_, err := c.Run(context.Background(), "ACGT", "")
	var nf *types.NotFoundError
	require.True(t, errors.As(err, &nf))
	assert.Equal(t, 1, svc.pollsMade())
}

func TestRunSubmitError(t *testing.T) {
	svc := &fakeService{submitErr: errors.New("boom")}
	c := testController(svc)

	j, err := c.Run(context.Background(), "ACGT", "")
	require.Error(t, err)
	assert.Empty(t, j.ID)
	assert.Equal(t, 0, svc.pollsMade())
}

func TestRunResultFetchError(t *testing.T) {
	svc := &fakeService{
		polls:      []pollStep{{state: api.JobState{Status: types.JobCompleted}}},
		similarErr: &types.NetworkError{Op: "similar", StatusCode: 500},
	}
	c := testController(svc)

	j, err := c.Run(context.Background(), "ACGT", "")
	var netErr *types.NetworkError
	require.True(t, errors.As(err, &netErr))
	assert.Equal(t, types.JobCompleted, j.Status)
	assert.Nil(t, j.Result)
	assert.Equal(t, 1, svc.similarCalls)
}

func TestRunCancellation(t *testing.T) {
	svc := &fakeService{
		polls: []pollStep{{state: api.JobState{Status: types.JobRunning}}},
	}
	c := testController(svc)
	c.Interval = 5 * time.Millisecond

	var mu sync.Mutex
	var updates int
	c.OnUpdate = func(types.Job) {
		mu.Lock()
		updates++
		mu.Unlock()
	}

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(12 * time.Millisecond)
		cancel()
	}()

	j, err := c.Run(ctx, "ACGT", "")
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, types.JobRunning, j.Status, "job keeps its last observed state")

	mu.Lock()
	seen := updates
	mu.Unlock()
	time.Sleep(20 * time.Millisecond)
	mu.Lock()
	assert.Equal(t, seen, updates, "no callbacks after Run returns")
	mu.Unlock()
}

func TestRunUnknownRemoteStatusTreatedAsRunning(t *testing.T) {
	svc := &fakeService{
		polls: []pollStep{
			{state: api.JobState{Status: types.JobStatus("reticulating")}},
			{state: api.JobState{Status: types.JobCompleted}},
		},
		similarResult: types.JobResult{Projection: &types.Coordinates{}},
	}
	c := testController(svc)

	var statuses []types.JobStatus
	c.OnUpdate = func(j types.Job) { statuses = append(statuses, j.Status) }

	_, err := c.Run(context.Background(), "ACGT", "")
	require.NoError(t, err)
	assert.Contains(t, statuses, types.JobRunning)
}

func TestRunGeneratesSubmissionID(t *testing.T) {
	svc := &fakeService{
		polls:         []pollStep{{state: api.JobState{Status: types.JobCompleted}}},
		similarResult: types.JobResult{Projection: &types.Coordinates{}},
	}
	c := testController(svc)

	j1, err := c.Run(context.Background(), "ACGT", "")
	require.NoError(t, err)
	assert.NotEmpty(t, j1.SubmissionID)
	assert.Equal(t, j1.SubmissionID, svc.submittedID)
	assert.Equal(t, "ACGT", svc.submittedSeq)

	j2, err := c.Run(context.Background(), "ACGT", "")
	require.NoError(t, err)
	assert.NotEqual(t, j1.SubmissionID, j2.SubmissionID)
}

func TestProgressEstimate(t *testing.T) {
	prev := 0.0
	for attempts := 1; attempts <= 120; attempts++ {
		p := progressEstimate(attempts)
		if p < prev {
			t.Fatalf("progress decreased at attempt %d: %v < %v", attempts, p, prev)
		}
		if p >= 1 {
			t.Fatalf("progress reached 1 before terminal state at attempt %d", attempts)
		}
		prev = p
	}
	if prev < 0.9 {
		t.Fatalf("progress should approach 1, got %v after 120 attempts", prev)
	}
}
