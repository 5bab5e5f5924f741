package epics

import "context"

// Conn is the transport seam between signals and an IOC.
//
// Channel Access is deliberately not implemented in this repository; a CA
// client library, a PV gateway, or the SoftIOC test fake satisfies this
// interface. All methods block until the IOC acknowledges or the context
// expires.
type Conn interface {
	// Get reads the current value of a PV.
	Get(ctx context.Context, pv string) (Value, error)

	// Put writes a value to a PV and returns once the write is accepted.
	Put(ctx context.Context, pv string, value any) error

	// PutWait writes a value and blocks until the record reports
	// completion (Channel Access "put callback" semantics). Use this for
	// writes that start hardware actions.
	PutWait(ctx context.Context, pv string, value any) error

	// Monitor subscribes to value updates for a PV. The returned cancel
	// function stops the subscription. The callback runs on the
	// transport's goroutine and must not block.
	Monitor(ctx context.Context, pv string, fn func(Value)) (cancel func(), err error)
}
