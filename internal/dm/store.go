package dm

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// JobStore is the audit trail of submitted workflow jobs.
type JobStore interface {
	// RecordJob persists a newly submitted job.
	RecordJob(ctx context.Context, job *Job) error

	// UpdateJob updates a job's status and stage. FinishedAt is written
	// when the job is terminal.
	UpdateJob(ctx context.Context, job *Job) error

	// ListJobs returns jobs most recent first, at most limit entries.
	ListJobs(ctx context.Context, limit int) ([]Job, error)

	// ActiveJobs returns jobs whose status is not terminal.
	ActiveJobs(ctx context.Context) ([]Job, error)
}

// SQLiteStore implements JobStore on the shared SQLite database.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore creates a job store on an open connection.
// The workflow_jobs schema must already be migrated.
func NewSQLiteStore(db *sql.DB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

// RecordJob persists a newly submitted job.
func (s *SQLiteStore) RecordJob(ctx context.Context, job *Job) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO workflow_jobs (id, workflow, owner, status, stage)
		 VALUES (?, ?, ?, ?, ?)`,
		job.ID, job.Workflow, job.Owner, job.Status, job.Stage,
	)
	if err != nil {
		return fmt.Errorf("recording job: %w", err)
	}
	return nil
}

// UpdateJob updates a job's status and stage.
func (s *SQLiteStore) UpdateJob(ctx context.Context, job *Job) error {
	var finished any
	if job.Terminal() {
		finished = time.Now().UTC().Format("2006-01-02T15:04:05.000Z")
	}
	res, err := s.db.ExecContext(ctx,
		`UPDATE workflow_jobs
		 SET status = ?, stage = ?, finished_at = COALESCE(?, finished_at)
		 WHERE id = ?`,
		job.Status, job.Stage, finished, job.ID,
	)
	if err != nil {
		return fmt.Errorf("updating job: %w", err)
	}
	n, err := res.RowsAffected()
	if err == nil && n == 0 {
		return fmt.Errorf("%w: %s", ErrJobNotFound, job.ID)
	}
	return nil
}

// ListJobs returns jobs most recent first.
func (s *SQLiteStore) ListJobs(ctx context.Context, limit int) ([]Job, error) {
	if limit <= 0 {
		limit = 50
	}
	return s.queryJobs(ctx,
		`SELECT id, workflow, owner, status, stage, submitted_at, COALESCE(finished_at, '')
		 FROM workflow_jobs ORDER BY submitted_at DESC LIMIT ?`, limit)
}

// ActiveJobs returns jobs that have not reached a terminal status.
func (s *SQLiteStore) ActiveJobs(ctx context.Context) ([]Job, error) {
	return s.queryJobs(ctx,
		`SELECT id, workflow, owner, status, stage, submitted_at, COALESCE(finished_at, '')
		 FROM workflow_jobs
		 WHERE status NOT IN (?, ?, ?, ?)
		 ORDER BY submitted_at DESC`,
		StatusDone, StatusFailed, StatusTimeout, StatusAborted)
}

func (s *SQLiteStore) queryJobs(ctx context.Context, query string, args ...any) ([]Job, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying jobs: %w", err)
	}
	defer rows.Close()

	var jobs []Job
	for rows.Next() {
		var j Job
		var submitted, finished string
		if err := rows.Scan(&j.ID, &j.Workflow, &j.Owner, &j.Status, &j.Stage, &submitted, &finished); err != nil {
			return nil, fmt.Errorf("scanning job: %w", err)
		}
		j.SubmittedAt = parseTimestamp(submitted)
		if finished != "" {
			j.FinishedAt = parseTimestamp(finished)
		}
		jobs = append(jobs, j)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating jobs: %w", err)
	}
	return jobs, nil
}

// GetJob returns one job by ID.
func (s *SQLiteStore) GetJob(ctx context.Context, id string) (*Job, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, workflow, owner, status, stage, submitted_at, COALESCE(finished_at, '')
		 FROM workflow_jobs WHERE id = ?`, id)

	var j Job
	var submitted, finished string
	err := row.Scan(&j.ID, &j.Workflow, &j.Owner, &j.Status, &j.Stage, &submitted, &finished)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrJobNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("querying job: %w", err)
	}
	j.SubmittedAt = parseTimestamp(submitted)
	if finished != "" {
		j.FinishedAt = parseTimestamp(finished)
	}
	return &j, nil
}

// parseTimestamp reads the ISO-8601 timestamps the schema's defaults emit.
func parseTimestamp(s string) time.Time {
	for _, layout := range []string{"2006-01-02T15:04:05.999Z", time.RFC3339Nano, "2006-01-02 15:04:05"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return time.Time{}
}
