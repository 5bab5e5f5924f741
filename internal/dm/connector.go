package dm

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/BCDA-APS/beamtools/internal/infrastructure/config"
)

// Logger is the subset of logging used by the connector.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

// noopLogger is a logger that does nothing.
type noopLogger struct{}

func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Warn(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}

// ProgressFunc receives job snapshots on the reporting cadence and once
// on the terminal transition.
type ProgressFunc func(job Job)

// Connector submits DM workflows and monitors one job at a time.
//
// Thread Safety: all methods are safe for concurrent use; the monitor
// runs on its own goroutine.
type Connector struct {
	client   *Client
	store    JobStore
	logger   Logger
	progress ProgressFunc

	pollPeriod   time.Duration
	reportPeriod time.Duration
	timeout      time.Duration

	mu     sync.Mutex
	job    *Job
	active bool
	cancel context.CancelFunc
	done   chan struct{}
}

// NewConnector creates a connector with timings from the DM configuration.
func NewConnector(client *Client, cfg config.DMConfig) *Connector {
	poll := time.Duration(cfg.PollPeriod) * time.Second
	if poll <= 0 {
		poll = 10 * time.Second
	}
	report := time.Duration(cfg.ReportPeriod) * time.Second
	if report <= 0 {
		report = 60 * time.Second
	}
	return &Connector{
		client:       client,
		logger:       noopLogger{},
		pollPeriod:   poll,
		reportPeriod: report,
		timeout:      time.Duration(cfg.Timeout) * time.Second,
	}
}

// SetLogger sets the connector's logger.
func (c *Connector) SetLogger(logger Logger) {
	if logger != nil {
		c.logger = logger
	}
}

// SetStore routes job records to an audit store.
func (c *Connector) SetStore(store JobStore) { c.store = store }

// OnProgress registers the progress callback.
func (c *Connector) OnProgress(fn ProgressFunc) { c.progress = fn }

// StartWorkflow submits a workflow and begins monitoring the job.
//
// The monitor outlives ctx: the submitting caller's deadline applies to
// the submission only. Monitoring stops when the job reaches a terminal
// status or, with a configured job timeout, when the deadline passes; the
// deadline stops the watching, not the remote workflow.
func (c *Connector) StartWorkflow(ctx context.Context, workflow string, args map[string]any) (*Job, error) {
	if workflow == "" {
		return nil, ErrEmptyWorkflow
	}

	c.mu.Lock()
	if c.active {
		c.mu.Unlock()
		return nil, fmt.Errorf("%w: %s", ErrJobActive, c.job.ID)
	}
	c.active = true
	c.mu.Unlock()

	job, err := c.client.SubmitJob(ctx, workflow, args)
	if err != nil {
		c.mu.Lock()
		c.active = false
		c.mu.Unlock()
		return nil, err
	}
	if job.Workflow == "" {
		job.Workflow = workflow
	}
	if job.Owner == "" {
		job.Owner = c.client.Owner()
	}
	if job.SubmittedAt.IsZero() {
		job.SubmittedAt = time.Now().UTC()
	}

	if c.store != nil {
		if err := c.store.RecordJob(ctx, job); err != nil {
			c.logger.Warn("recording workflow job failed", "job_id", job.ID, "error", err)
		}
	}

	monitorCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	c.mu.Lock()
	c.job = job
	c.cancel = cancel
	c.done = make(chan struct{})
	c.mu.Unlock()

	c.logger.Info("workflow submitted",
		"workflow", workflow, "job_id", job.ID, "status", job.Status)

	go c.monitor(monitorCtx, *job)

	snapshot := *job
	return &snapshot, nil
}

// Job returns a snapshot of the most recent job. ok is false before the
// first submission.
func (c *Connector) Job() (Job, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.job == nil {
		return Job{}, false
	}
	return *c.job, true
}

// Active reports whether a job is currently being monitored.
func (c *Connector) Active() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.active
}

// Stop cancels monitoring of the current job, if any. The remote workflow
// keeps running.
func (c *Connector) Stop() {
	c.mu.Lock()
	cancel := c.cancel
	c.mu.Unlock()
	if cancel != nil {
		cancel()
	}
}

// Wait blocks until the monitor goroutine exits or ctx is done.
func (c *Connector) Wait(ctx context.Context) error {
	c.mu.Lock()
	done := c.done
	c.mu.Unlock()
	if done == nil {
		return nil
	}
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// monitor polls job status until terminal, deadline or cancellation.
func (c *Connector) monitor(ctx context.Context, job Job) {
	defer func() {
		c.mu.Lock()
		c.active = false
		close(c.done)
		c.mu.Unlock()
	}()

	var deadline <-chan time.Time
	if c.timeout > 0 {
		t := time.NewTimer(c.timeout)
		defer t.Stop()
		deadline = t.C
	}

	ticker := time.NewTicker(c.pollPeriod)
	defer ticker.Stop()

	lastReport := time.Now()
	for {
		select {
		case <-ctx.Done():
			c.logger.Info("workflow monitoring cancelled", "job_id", job.ID)
			return

		case <-deadline:
			job.Status = StatusTimeout
			job.FinishedAt = time.Now().UTC()
			c.publish(ctx, &job)
			c.logger.Warn("workflow deadline passed, monitoring stopped",
				"job_id", job.ID, "timeout", c.timeout)
			return

		case <-ticker.C:
			fresh, err := c.client.JobStatus(ctx, job.ID)
			if err != nil {
				// Transient API failures do not end monitoring.
				c.logger.Warn("workflow status poll failed", "job_id", job.ID, "error", err)
				continue
			}
			fresh.Workflow = job.Workflow
			fresh.Owner = job.Owner
			fresh.SubmittedAt = job.SubmittedAt
			job = *fresh

			if job.Terminal() {
				if job.FinishedAt.IsZero() {
					job.FinishedAt = time.Now().UTC()
				}
				c.publish(ctx, &job)
				c.logger.Info("workflow finished",
					"job_id", job.ID, "status", job.Status, "stage", job.Stage)
				return
			}

			c.setJob(job)
			if time.Since(lastReport) >= c.reportPeriod {
				lastReport = time.Now()
				c.publish(ctx, &job)
				c.logger.Info("workflow progress",
					"job_id", job.ID, "status", job.Status, "stage", job.Stage)
			}
		}
	}
}

// publish pushes a snapshot to the status surface, audit store and
// progress callback.
func (c *Connector) publish(ctx context.Context, job *Job) {
	c.setJob(*job)
	if c.store != nil {
		if err := c.store.UpdateJob(ctx, job); err != nil {
			c.logger.Warn("updating workflow job failed", "job_id", job.ID, "error", err)
		}
	}
	if c.progress != nil {
		c.progress(*job)
	}
}

func (c *Connector) setJob(job Job) {
	c.mu.Lock()
	c.job = &job
	c.mu.Unlock()
}
