package epics

import "errors"

// Domain errors for the epics package.
//
// These errors can be checked using errors.Is() for error handling:
//
//	if errors.Is(err, epics.ErrTimeout) {
//	    // handle channel access timeout
//	}
var (
	// ErrTimeout is returned when a PV round trip exceeds its deadline.
	ErrTimeout = errors.New("epics: timeout")

	// ErrDisconnected is returned when the transport has no connection to the IOC.
	ErrDisconnected = errors.New("epics: disconnected")

	// ErrUnknownPV is returned when the IOC does not serve the requested PV.
	ErrUnknownPV = errors.New("epics: unknown pv")

	// ErrBadValue is returned when a reading cannot be converted to the requested type.
	ErrBadValue = errors.New("epics: bad value")

	// ErrNoEnum is returned when enum-string access is used on a signal
	// without enum states.
	ErrNoEnum = errors.New("epics: no enum states")
)
