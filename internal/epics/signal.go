package epics

import (
	"context"
	"fmt"
)

// Signal is a named PV bound to a Conn.
//
// Signals carry an optional list of enum states so integer readings from
// mbbo/bo-style records can be read back as their string labels, the way
// the IOC presents them.
type Signal struct {
	conn Conn
	name string
	pv   string
	enum []string
}

// NewSignal creates a signal for the given PV.
// The name is a local identifier used in logs and error messages; the pv
// is the full channel name on the IOC.
func NewSignal(conn Conn, name, pv string) *Signal {
	return &Signal{conn: conn, name: name, pv: pv}
}

// WithEnum attaches enum state labels, index-ordered, and returns the signal.
func (s *Signal) WithEnum(states ...string) *Signal {
	s.enum = states
	return s
}

// Name returns the signal's local identifier.
func (s *Signal) Name() string { return s.name }

// PV returns the full channel name.
func (s *Signal) PV() string { return s.pv }

// EnumStates returns the attached enum labels, or nil.
func (s *Signal) EnumStates() []string { return s.enum }

// Get reads the signal's current value.
func (s *Signal) Get(ctx context.Context) (Value, error) {
	v, err := s.conn.Get(ctx, s.pv)
	if err != nil {
		return Value{}, fmt.Errorf("get %s (%s): %w", s.name, s.pv, err)
	}
	return v, nil
}

// GetFloat reads the signal as a float64.
func (s *Signal) GetFloat(ctx context.Context) (float64, error) {
	v, err := s.Get(ctx)
	if err != nil {
		return 0, err
	}
	return v.Float64()
}

// GetInt reads the signal as an int.
func (s *Signal) GetInt(ctx context.Context) (int, error) {
	v, err := s.Get(ctx)
	if err != nil {
		return 0, err
	}
	return v.Int()
}

// GetString reads the signal as a string.
//
// If enum states are attached and the reading is an integer index, the
// corresponding label is returned; a string reading passes through either
// way. An out-of-range index is an ErrBadValue.
func (s *Signal) GetString(ctx context.Context) (string, error) {
	v, err := s.Get(ctx)
	if err != nil {
		return "", err
	}
	if _, ok := v.Raw().(string); ok || s.enum == nil {
		return v.String(), nil
	}
	i, err := v.Int()
	if err != nil {
		return "", err
	}
	if i < 0 || i >= len(s.enum) {
		return "", fmt.Errorf("%w: enum index %d out of range for %s", ErrBadValue, i, s.name)
	}
	return s.enum[i], nil
}

// Put writes a value to the signal.
func (s *Signal) Put(ctx context.Context, value any) error {
	if err := s.conn.Put(ctx, s.pv, value); err != nil {
		return fmt.Errorf("put %s (%s): %w", s.name, s.pv, err)
	}
	return nil
}

// PutWait writes a value and blocks until the record reports completion.
func (s *Signal) PutWait(ctx context.Context, value any) error {
	if err := s.conn.PutWait(ctx, s.pv, value); err != nil {
		return fmt.Errorf("put %s (%s): %w", s.name, s.pv, err)
	}
	return nil
}

// Monitor subscribes to updates on the signal.
func (s *Signal) Monitor(ctx context.Context, fn func(Value)) (func(), error) {
	cancel, err := s.conn.Monitor(ctx, s.pv, fn)
	if err != nil {
		return nil, fmt.Errorf("monitor %s (%s): %w", s.name, s.pv, err)
	}
	return cancel, nil
}
