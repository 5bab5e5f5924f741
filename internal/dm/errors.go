package dm

import "errors"

// Domain errors for the dm package.
var (
	// ErrEmptyWorkflow is returned when StartWorkflow is called without a
	// workflow name.
	ErrEmptyWorkflow = errors.New("dm: empty workflow name")

	// ErrJobActive is returned when a workflow is started while the
	// connector is still monitoring another job.
	ErrJobActive = errors.New("dm: a job is already being monitored")

	// ErrRequestFailed is returned when the DM API rejects a request or is
	// unreachable.
	ErrRequestFailed = errors.New("dm: request failed")

	// ErrJobNotFound is returned when a job ID is unknown to the service
	// or the local audit store.
	ErrJobNotFound = errors.New("dm: job not found")
)
