package areadetector

import "errors"

// Domain errors for the areadetector package.
var (
	// ErrFilePath is returned when the file-writer's target directory does
	// not exist on the IOC host. Staging against a missing path would let
	// the IOC silently drop every frame, so this is fatal to staging.
	ErrFilePath = errors.New("areadetector: invalid file path")

	// ErrBadTemplate is returned when a file template has an unexpected
	// number of format verbs.
	ErrBadTemplate = errors.New("areadetector: bad file template")
)
