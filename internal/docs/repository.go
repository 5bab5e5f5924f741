package docs

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// Repository stores and retrieves resource/datum documents.
type Repository interface {
	// InsertResource persists a resource document.
	InsertResource(ctx context.Context, r *Resource) error

	// InsertDatum persists a datum document.
	InsertDatum(ctx context.Context, d *Datum) error

	// GetResource returns a resource by ID.
	GetResource(ctx context.Context, id string) (*Resource, error)

	// ListDatums returns a resource's datums ordered by frame index.
	ListDatums(ctx context.Context, resourceID string) ([]Datum, error)
}

// SQLiteRepository implements Repository on the shared SQLite database.
type SQLiteRepository struct {
	db *sql.DB
}

// NewSQLiteRepository creates a repository on an open connection.
// The documents schema must already be migrated.
func NewSQLiteRepository(db *sql.DB) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

// InsertResource persists a resource document.
func (r *SQLiteRepository) InsertResource(ctx context.Context, res *Resource) error {
	if err := res.Validate(); err != nil {
		return err
	}

	kwargs := res.ResourceKwargs
	if kwargs == nil {
		kwargs = map[string]any{}
	}
	kwargsJSON, err := json.Marshal(kwargs)
	if err != nil {
		return fmt.Errorf("marshalling resource kwargs: %w", err)
	}

	_, err = r.db.ExecContext(ctx,
		`INSERT INTO resources (id, spec, root, resource_path, resource_kwargs, run_uid)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		res.ID, res.Spec, res.Root, res.ResourcePath, string(kwargsJSON), nullable(res.RunUID),
	)
	if err != nil {
		return fmt.Errorf("inserting resource: %w", err)
	}
	return nil
}

// InsertDatum persists a datum document.
func (r *SQLiteRepository) InsertDatum(ctx context.Context, d *Datum) error {
	if d.ID == "" || d.ResourceID == "" {
		return fmt.Errorf("%w: datum needs id and resource id", ErrInvalidResource)
	}

	_, err := r.db.ExecContext(ctx,
		`INSERT INTO datums (id, resource_id, frame_index) VALUES (?, ?, ?)`,
		d.ID, d.ResourceID, d.FrameIndex,
	)
	if err != nil {
		return fmt.Errorf("inserting datum: %w", err)
	}
	return nil
}

// GetResource returns a resource by ID.
func (r *SQLiteRepository) GetResource(ctx context.Context, id string) (*Resource, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT id, spec, root, resource_path, resource_kwargs, COALESCE(run_uid, ''), created_at
		 FROM resources WHERE id = ?`, id)

	var res Resource
	var kwargsJSON, createdAt string
	err := row.Scan(&res.ID, &res.Spec, &res.Root, &res.ResourcePath, &kwargsJSON, &res.RunUID, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrResourceNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("querying resource: %w", err)
	}

	if err := json.Unmarshal([]byte(kwargsJSON), &res.ResourceKwargs); err != nil {
		return nil, fmt.Errorf("unmarshalling resource kwargs: %w", err)
	}
	res.CreatedAt = parseTimestamp(createdAt)

	return &res, nil
}

// ListDatums returns a resource's datums ordered by frame index.
func (r *SQLiteRepository) ListDatums(ctx context.Context, resourceID string) ([]Datum, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, resource_id, frame_index, created_at
		 FROM datums WHERE resource_id = ? ORDER BY frame_index`, resourceID)
	if err != nil {
		return nil, fmt.Errorf("querying datums: %w", err)
	}
	defer rows.Close()

	var datums []Datum
	for rows.Next() {
		var d Datum
		var createdAt string
		if err := rows.Scan(&d.ID, &d.ResourceID, &d.FrameIndex, &createdAt); err != nil {
			return nil, fmt.Errorf("scanning datum: %w", err)
		}
		d.CreatedAt = parseTimestamp(createdAt)
		datums = append(datums, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating datums: %w", err)
	}
	return datums, nil
}

// nullable maps an empty string to NULL.
func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
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
