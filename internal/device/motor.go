package device

import (
	"context"
	"fmt"
	"math"

	"github.com/BCDA-APS/beamtools/internal/epics"
)

// defaultMotorTolerance is the settle tolerance when the record's .RDBD
// is unavailable.
const defaultMotorTolerance = 1e-3

// Motor wraps the EPICS motor record.
//
// The record owns the motion control loop; Motor only writes the setpoint
// and watches the done-moving flag. Soft limits are validated client-side
// before a move is started so an out-of-range request fails fast rather
// than being clipped by the IOC.
type Motor struct {
	Device

	setpoint   *epics.Signal // .VAL
	readback   *epics.Signal // .RBV
	doneMoving *epics.Signal // .DMOV (1 = stationary)
	stop       *epics.Signal // .STOP
	velocity   *epics.Signal // .VELO
	lowLimit   *epics.Signal // .LLM
	highLimit  *epics.Signal // .HLM

	tolerance float64
}

// NewMotor creates a motor for the given record prefix (e.g., "8idi:m1").
func NewMotor(conn epics.Conn, name, prefix string, labels ...string) *Motor {
	return &Motor{
		Device:     newDevice(name, prefix, labels...),
		setpoint:   epics.NewSignal(conn, "setpoint", epics.Join(prefix, ".VAL")),
		readback:   epics.NewSignal(conn, "readback", epics.Join(prefix, ".RBV")),
		doneMoving: epics.NewSignal(conn, "done_moving", epics.Join(prefix, ".DMOV")),
		stop:       epics.NewSignal(conn, "stop", epics.Join(prefix, ".STOP")),
		velocity:   epics.NewSignal(conn, "velocity", epics.Join(prefix, ".VELO")),
		lowLimit:   epics.NewSignal(conn, "low_limit", epics.Join(prefix, ".LLM")),
		highLimit:  epics.NewSignal(conn, "high_limit", epics.Join(prefix, ".HLM")),
		tolerance:  defaultMotorTolerance,
	}
}

// SetTolerance overrides the settle tolerance (engineering units).
func (m *Motor) SetTolerance(tol float64) {
	if tol > 0 {
		m.tolerance = tol
	}
}

// Kind implements Reader.
func (m *Motor) Kind() string { return "motor" }

// Position reads the current readback value.
func (m *Motor) Position(ctx context.Context) (float64, error) {
	return m.readback.GetFloat(ctx)
}

// Limits reads the soft limits (low, high).
func (m *Motor) Limits(ctx context.Context) (float64, float64, error) {
	lo, err := m.lowLimit.GetFloat(ctx)
	if err != nil {
		return 0, 0, err
	}
	hi, err := m.highLimit.GetFloat(ctx)
	if err != nil {
		return 0, 0, err
	}
	return lo, hi, nil
}

// Move drives the motor to position and blocks until the record reports
// done-moving and the readback is within tolerance, or the context expires.
//
// A position outside the soft limits returns ErrLimitViolation without
// touching the setpoint. Limits of (0, 0) mean the record has limits
// disabled, per motor record convention, and skip the check.
func (m *Motor) Move(ctx context.Context, position float64) error {
	lo, hi, err := m.Limits(ctx)
	if err != nil {
		return err
	}
	if !(lo == 0 && hi == 0) && (position < lo || position > hi) {
		return fmt.Errorf("%w: %s: %g not in [%g, %g]", ErrLimitViolation, m.Name(), position, lo, hi)
	}

	m.logger.Debug("motor move", "device", m.Name(), "position", position)

	if err := m.setpoint.PutWait(ctx, position); err != nil {
		return err
	}

	err = waitFor(ctx, func(ctx context.Context) (bool, error) {
		done, err := m.doneMoving.GetInt(ctx)
		if err != nil {
			return false, err
		}
		if done != 1 {
			return false, nil
		}
		rbv, err := m.readback.GetFloat(ctx)
		if err != nil {
			return false, err
		}
		return math.Abs(rbv-position) <= m.tolerance, nil
	})
	if err != nil {
		if ctx.Err() != nil {
			return fmt.Errorf("%w: %s moving to %g: %v", ErrNotSettled, m.Name(), position, ctx.Err())
		}
		return err
	}
	return nil
}

// Stop commands an immediate stop.
func (m *Motor) Stop(ctx context.Context) error {
	return m.stop.Put(ctx, 1)
}

// Velocity reads the slew velocity.
func (m *Motor) Velocity(ctx context.Context) (float64, error) {
	return m.velocity.GetFloat(ctx)
}

// Read implements Reader.
func (m *Motor) Read(ctx context.Context) (map[string]any, error) {
	pos, err := m.Position(ctx)
	if err != nil {
		return nil, err
	}
	sp, err := m.setpoint.GetFloat(ctx)
	if err != nil {
		return nil, err
	}
	done, err := m.doneMoving.GetInt(ctx)
	if err != nil {
		return nil, err
	}
	return map[string]any{
		"position":    pos,
		"setpoint":    sp,
		"done_moving": done == 1,
	}, nil
}
