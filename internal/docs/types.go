package docs

import (
	"errors"
	"fmt"
	"time"
)

// Spec strings for area-detector file formats.
const (
	SpecHDF5 = "AD_HDF5"
	SpecTIFF = "AD_TIFF"
	SpecJPEG = "AD_JPEG"
)

// Domain errors for the docs package.
var (
	// ErrResourceNotFound is returned when a resource ID does not exist.
	ErrResourceNotFound = errors.New("docs: resource not found")

	// ErrInvalidResource is returned when a resource fails validation.
	ErrInvalidResource = errors.New("docs: invalid resource")
)

// Resource describes one file produced by a file-writer plugin.
type Resource struct {
	// ID is a UUID assigned at stage time.
	ID string `json:"uid"`

	// Spec names the file format for downstream readers.
	Spec string `json:"spec"`

	// Root is the filesystem root on the IOC host.
	Root string `json:"root"`

	// ResourcePath is the file path relative to Root.
	ResourcePath string `json:"resource_path"`

	// ResourceKwargs carries reader arguments, e.g. {"frame_per_point": 1}.
	ResourceKwargs map[string]any `json:"resource_kwargs"`

	// RunUID is the owning run, when known.
	RunUID string `json:"run_start,omitempty"`

	CreatedAt time.Time `json:"-"`
}

// Validate checks required resource fields.
func (r *Resource) Validate() error {
	if r.ID == "" {
		return fmt.Errorf("%w: empty id", ErrInvalidResource)
	}
	if r.Spec == "" {
		return fmt.Errorf("%w: empty spec", ErrInvalidResource)
	}
	if r.ResourcePath == "" {
		return fmt.Errorf("%w: empty resource path", ErrInvalidResource)
	}
	return nil
}

// Datum points at one frame within a resource.
type Datum struct {
	// ID is "<resource_id>/<frame_index>".
	ID string `json:"datum_id"`

	ResourceID string `json:"resource"`
	FrameIndex int    `json:"frame_index"`

	CreatedAt time.Time `json:"-"`
}

// DatumID composes the conventional datum ID.
func DatumID(resourceID string, frame int) string {
	return fmt.Sprintf("%s/%d", resourceID, frame)
}
