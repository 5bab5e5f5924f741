package device

import (
	"context"
	"fmt"
	"strings"

	"github.com/BCDA-APS/beamtools/internal/epics"
)

// Shutter targets accepted by Set.
const (
	TargetOpen  = "open"
	TargetClose = "close"
)

// Shutter controls a station shutter through separate open/close command
// PVs and a state readback, the PSS wiring used at APS beamlines.
//
// The command PVs are momentary (write 1 to actuate); the PSS reports the
// beam state back on a separate enum PV after the hardware has moved.
type Shutter struct {
	Device

	openCmd  *epics.Signal // e.g. pss:FES_OPEN_EPICS.VAL
	closeCmd *epics.Signal // e.g. pss:FES_CLOSE_EPICS.VAL
	state    *epics.Signal // enum: "close", "open"
}

// NewShutter creates a shutter from its three PV names (not a common
// prefix; PSS PVs rarely share one).
func NewShutter(conn epics.Conn, name, openPV, closePV, statePV string, labels ...string) *Shutter {
	return &Shutter{
		Device:   newDevice(name, "", labels...),
		openCmd:  epics.NewSignal(conn, "open", openPV),
		closeCmd: epics.NewSignal(conn, "close", closePV),
		state:    epics.NewSignal(conn, "state", statePV).WithEnum(TargetClose, TargetOpen),
	}
}

// Kind implements Reader.
func (s *Shutter) Kind() string { return "shutter" }

// State reads the current shutter state ("open" or "close").
func (s *Shutter) State(ctx context.Context) (string, error) {
	return s.state.GetString(ctx)
}

// IsOpen reports whether the shutter is open.
func (s *Shutter) IsOpen(ctx context.Context) (bool, error) {
	st, err := s.State(ctx)
	if err != nil {
		return false, err
	}
	return st == TargetOpen, nil
}

// Set moves the shutter to the named target and waits for the state
// readback to confirm.
//
// target must be "open" or "close" (case-insensitive); anything else is an
// ErrInvalidTarget with the offending value in the message, raised before
// any PV is touched.
func (s *Shutter) Set(ctx context.Context, target string) error {
	t := strings.ToLower(strings.TrimSpace(target))
	switch t {
	case TargetOpen, TargetClose:
	default:
		return fmt.Errorf("%w: %q (must be %q or %q)", ErrInvalidTarget, target, TargetOpen, TargetClose)
	}

	current, err := s.State(ctx)
	if err != nil {
		return err
	}
	if current == t {
		return nil
	}

	cmd := s.openCmd
	if t == TargetClose {
		cmd = s.closeCmd
	}
	if err := cmd.Put(ctx, 1); err != nil {
		return err
	}

	s.logger.Debug("shutter command", "device", s.Name(), "target", t)

	err = waitFor(ctx, func(ctx context.Context) (bool, error) {
		st, err := s.State(ctx)
		if err != nil {
			return false, err
		}
		return st == t, nil
	})
	if err != nil && ctx.Err() != nil {
		return fmt.Errorf("%w: %s did not reach %q", ErrNotSettled, s.Name(), t)
	}
	return err
}

// Open opens the shutter.
func (s *Shutter) Open(ctx context.Context) error { return s.Set(ctx, TargetOpen) }

// Close closes the shutter.
func (s *Shutter) Close(ctx context.Context) error { return s.Set(ctx, TargetClose) }

// Read implements Reader.
func (s *Shutter) Read(ctx context.Context) (map[string]any, error) {
	st, err := s.State(ctx)
	if err != nil {
		return nil, err
	}
	return map[string]any{"state": st}, nil
}
