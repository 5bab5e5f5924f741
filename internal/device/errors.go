package device

import "errors"

// Domain errors for the device package.
//
// These errors can be checked using errors.Is() for error handling:
//
//	if errors.Is(err, device.ErrInvalidTarget) {
//	    // handle bad shutter target
//	}
var (
	// ErrInvalidTarget is returned when a shutter target is not "open" or "close".
	ErrInvalidTarget = errors.New("device: invalid shutter target")

	// ErrLimitViolation is returned when a requested motor position is
	// outside the soft limits.
	ErrLimitViolation = errors.New("device: position outside soft limits")

	// ErrNotSettled is returned when a readback fails to reach its target
	// within the caller's deadline.
	ErrNotSettled = errors.New("device: readback did not settle")

	// ErrBadSlot is returned when a filter slot index is out of range.
	ErrBadSlot = errors.New("device: filter slot out of range")

	// ErrDeviceNotFound is returned when a registry lookup misses.
	ErrDeviceNotFound = errors.New("device: not found")

	// ErrDeviceExists is returned when registering a duplicate device name.
	ErrDeviceExists = errors.New("device: already registered")
)
