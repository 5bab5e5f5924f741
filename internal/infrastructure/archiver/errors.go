package archiver

import "errors"

// Sentinel errors for archiver operations.
//
// These errors can be checked using errors.Is() for specific handling:
//
//	if errors.Is(err, archiver.ErrNotConnected) {
//	    // Handle disconnected state
//	}
var (
	// ErrNotConnected indicates the client is not connected to InfluxDB.
	ErrNotConnected = errors.New("archiver: not connected")

	// ErrConnectionFailed indicates the initial connection attempt failed.
	ErrConnectionFailed = errors.New("archiver: connection failed")

	// ErrDisabled indicates archiving is disabled in config.
	ErrDisabled = errors.New("archiver: disabled in configuration")
)
