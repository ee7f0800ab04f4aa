// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// JobStatus is the lifecycle state of an analysis job.
type JobStatus string

const (
	JobSubmitted JobStatus = "submitted"
	JobRunning   JobStatus = "running"
	JobCompleted JobStatus = "completed"
	JobFailed    JobStatus = "failed"
	JobTimedOut  JobStatus = "timed_out"
)

// Terminal reports whether the status is final: once a job reaches a
// terminal status it is never polled again.
func (s JobStatus) Terminal() bool {
	switch s {
	case JobCompleted, JobFailed, JobTimedOut:
		return true
	}
	return false
}

// JobResult is the terminal payload of a completed job.
type JobResult struct {
	// Projection is the embedding position computed for the user's own
	// sequence. Nil when the service did not return one.
	Projection *Coordinates `json:"projection,omitempty" yaml:"projection,omitempty"`

	// Results is the ranked similarity hit list.
	Results []SimilarityResult `json:"results" yaml:"results"`
}

// Job tracks one asynchronous analysis request. A job is created on upload,
// mutated only by the lifecycle controller, and discarded when a new
// sequence is submitted.
type Job struct {
	// ID is the server-assigned job identifier returned by the upload.
	ID string `json:"id" yaml:"id"`

	// SubmissionID is the client-generated UUID attached to the upload for
	// idempotency and log correlation.
	SubmissionID string `json:"submission_id" yaml:"submission_id"`

	// Model names the analysis model the sequence was submitted against.
	Model string `json:"model" yaml:"model"`

	Status      JobStatus `json:"status" yaml:"status"`
	SubmittedAt time.Time `json:"submitted_at" yaml:"submitted_at"`

	// Attempts counts status polls issued so far.
	Attempts int `json:"attempts" yaml:"attempts"`

	// Progress is a smoothed display estimate in [0,1] derived from the
	// elapsed poll attempts. It never drives state transitions.
	Progress float64 `json:"progress" yaml:"progress"`

	// Error holds the failure or timeout reason for terminal error states.
	Error string `json:"error,omitempty" yaml:"error,omitempty"`

	// Result is set exactly once, when the job completes.
	Result *JobResult `json:"result,omitempty" yaml:"result,omitempty"`
}
