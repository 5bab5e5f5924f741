package epics

import (
	"context"
	"fmt"
	"sync"
)

// SoftIOC is an in-memory Conn implementation for tests.
//
// It behaves like a soft IOC: a flat PV table with immediate processing.
// Writes are recorded in order, so tests can assert on write sequencing
// (the primer's apply/restore ordering depends on this). An optional put
// hook lets a test emulate record processing side effects, such as a
// capture PV spinning up a file writer.
//
// Thread Safety: all methods are safe for concurrent use.
type SoftIOC struct {
	mu       sync.RWMutex
	pvs      map[string]any
	writes   []PutRecord
	hook     func(pv string, value any)
	monitors map[string][]func(Value)
}

// PutRecord is one recorded write.
type PutRecord struct {
	PV    string
	Value any
}

// NewSoftIOC creates an empty soft IOC.
func NewSoftIOC() *SoftIOC {
	return &SoftIOC{
		pvs:      make(map[string]any),
		monitors: make(map[string][]func(Value)),
	}
}

// Set loads a PV value without recording a write. Use this to seed
// initial IOC state.
func (s *SoftIOC) Set(pv string, value any) {
	s.mu.Lock()
	s.pvs[pv] = value
	s.mu.Unlock()
}

// Value returns the current value of a PV, or nil if unset.
func (s *SoftIOC) Value(pv string) any {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.pvs[pv]
}

// Writes returns a copy of all recorded writes, in order.
func (s *SoftIOC) Writes() []PutRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]PutRecord, len(s.writes))
	copy(out, s.writes)
	return out
}

// ClearWrites discards the write log.
func (s *SoftIOC) ClearWrites() {
	s.mu.Lock()
	s.writes = nil
	s.mu.Unlock()
}

// SetPutHook installs a callback invoked after every Put/PutWait, with the
// IOC lock released. Hooks emulate record processing side effects.
func (s *SoftIOC) SetPutHook(fn func(pv string, value any)) {
	s.mu.Lock()
	s.hook = fn
	s.mu.Unlock()
}

// Get implements Conn.
func (s *SoftIOC) Get(ctx context.Context, pv string) (Value, error) {
	if err := ctx.Err(); err != nil {
		return Value{}, err
	}
	s.mu.RLock()
	v, ok := s.pvs[pv]
	s.mu.RUnlock()
	if !ok {
		return Value{}, fmt.Errorf("%w: %s", ErrUnknownPV, pv)
	}
	return NewValue(v), nil
}

// Put implements Conn.
func (s *SoftIOC) Put(ctx context.Context, pv string, value any) error {
	return s.put(ctx, pv, value)
}

// PutWait implements Conn. Processing is immediate in a soft IOC, so this
// is identical to Put.
func (s *SoftIOC) PutWait(ctx context.Context, pv string, value any) error {
	return s.put(ctx, pv, value)
}

func (s *SoftIOC) put(ctx context.Context, pv string, value any) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	s.pvs[pv] = value
	s.writes = append(s.writes, PutRecord{PV: pv, Value: value})
	hook := s.hook
	subs := append([]func(Value){}, s.monitors[pv]...)
	s.mu.Unlock()

	if hook != nil {
		hook(pv, value)
	}
	for _, fn := range subs {
		fn(NewValue(value))
	}
	return nil
}

// Monitor implements Conn. The initial value, if set, is delivered
// immediately, matching Channel Access subscription behaviour.
func (s *SoftIOC) Monitor(_ context.Context, pv string, fn func(Value)) (func(), error) {
	s.mu.Lock()
	s.monitors[pv] = append(s.monitors[pv], fn)
	v, ok := s.pvs[pv]
	s.mu.Unlock()

	if ok {
		fn(NewValue(v))
	}

	// Cancellation removes all subscriptions for the PV added by this
	// caller; per-subscription identity is not needed in tests.
	return func() {
		s.mu.Lock()
		delete(s.monitors, pv)
		s.mu.Unlock()
	}, nil
}
