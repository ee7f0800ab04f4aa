// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "fmt"

// NetworkError is a transport failure or an unexpected HTTP status from the
// analysis service. It is terminal for the operation that produced it.
type NetworkError struct {
	// Op names the failed operation ("submit", "poll", "similar",
	// "reference").
	Op string

	// StatusCode is the HTTP status, 0 for transport-level failures.
	StatusCode int

	// Err is the underlying transport error, nil for status failures.
	Err error
}

func (e *NetworkError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("%s: analysis service returned HTTP %d", e.Op, e.StatusCode)
}

func (e *NetworkError) Unwrap() error { return e.Err }

// AuthError means the API key was missing or rejected. Callers must discard
// the stored credential so the next run forces re-entry.
type AuthError struct {
	StatusCode int
}

func (e *AuthError) Error() string {
	return fmt.Sprintf("analysis service rejected the API key (HTTP %d)", e.StatusCode)
}

// NotFoundError means an identifier was not found: an accession missing
// from the reference collection, or an unknown job ID. For accessions it is
// non-fatal: the pipeline records the point as unresolved and continues.
type NotFoundError struct {
	Identifier string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("accession %q not found in reference dataset", e.Identifier)
}

// JobFailedError means the remote job reported failure.
type JobFailedError struct {
	JobID  string
	Reason string
}

func (e *JobFailedError) Error() string {
	if e.Reason == "" {
		return fmt.Sprintf("job %s failed", e.JobID)
	}
	return fmt.Sprintf("job %s failed: %s", e.JobID, e.Reason)
}

// JobTimeoutError means the poll budget was exhausted before the job
// reached a terminal remote status.
type JobTimeoutError struct {
	JobID    string
	Attempts int
}

func (e *JobTimeoutError) Error() string {
	return fmt.Sprintf("job %s still running after %d status polls", e.JobID, e.Attempts)
}

// CacheLoadError means the reference dataset could not be loaded. It blocks
// coordinate resolution for the whole batch; callers retry explicitly
// rather than substituting synthetic coordinates.
type CacheLoadError struct {
	Err error
}

func (e *CacheLoadError) Error() string {
	return fmt.Sprintf("loading reference dataset: %v", e.Err)
}

func (e *CacheLoadError) Unwrap() error { return e.Err }
