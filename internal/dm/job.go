package dm

import "time"

// Job statuses reported by the DM workflow service.
const (
	StatusPending = "pending"
	StatusRunning = "running"
	StatusDone    = "done"
	StatusFailed  = "failed"
	StatusTimeout = "timeout"
	StatusAborted = "aborted"
)

// IsTerminal reports whether a job status means monitoring can stop.
func IsTerminal(status string) bool {
	switch status {
	case StatusDone, StatusFailed, StatusTimeout, StatusAborted:
		return true
	}
	return false
}

// Job is one submitted workflow execution.
type Job struct {
	ID       string `json:"id"`
	Workflow string `json:"workflowName"`
	Owner    string `json:"owner"`

	// Stage is the workflow step the job is currently in.
	Stage  string `json:"stage"`
	Status string `json:"status"`

	SubmittedAt time.Time `json:"submittedAt"`
	FinishedAt  time.Time `json:"finishedAt,omitzero"`
}

// Terminal reports whether the job has finished.
func (j *Job) Terminal() bool { return IsTerminal(j.Status) }
