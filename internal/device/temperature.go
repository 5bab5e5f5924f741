package device

import (
	"context"
	"fmt"
	"math"

	"github.com/BCDA-APS/beamtools/internal/epics"
)

// TemperatureController wraps a setpoint/readback temperature loop
// (Lakeshore, Linkam and similar controllers present this shape).
//
// The controller firmware runs the loop; this type writes the setpoint and
// reports when the readback has settled inside the tolerance band.
type TemperatureController struct {
	Device

	setpoint  *epics.Signal
	readback  *epics.Signal
	tolerance float64
}

// NewTemperatureController creates a controller from its PV prefix.
// tolerance is the settle band in the controller's units.
func NewTemperatureController(conn epics.Conn, name, prefix string, tolerance float64, labels ...string) *TemperatureController {
	if tolerance <= 0 {
		tolerance = 1.0
	}
	return &TemperatureController{
		Device:    newDevice(name, prefix, labels...),
		setpoint:  epics.NewSignal(conn, "setpoint", epics.Join(prefix, "SetPoint")),
		readback:  epics.NewSignal(conn, "readback", epics.Join(prefix, "Temperature")),
		tolerance: tolerance,
	}
}

// Kind implements Reader.
func (t *TemperatureController) Kind() string { return "temperature" }

// Temperature reads the current readback.
func (t *TemperatureController) Temperature(ctx context.Context) (float64, error) {
	return t.readback.GetFloat(ctx)
}

// Setpoint reads the current setpoint.
func (t *TemperatureController) Setpoint(ctx context.Context) (float64, error) {
	return t.setpoint.GetFloat(ctx)
}

// Settled reports whether the readback is within tolerance of the setpoint.
func (t *TemperatureController) Settled(ctx context.Context) (bool, error) {
	sp, err := t.Setpoint(ctx)
	if err != nil {
		return false, err
	}
	rb, err := t.Temperature(ctx)
	if err != nil {
		return false, err
	}
	return math.Abs(rb-sp) <= t.tolerance, nil
}

// Set writes a new setpoint without waiting.
func (t *TemperatureController) Set(ctx context.Context, value float64) error {
	t.logger.Debug("temperature setpoint", "device", t.Name(), "value", value)
	return t.setpoint.PutWait(ctx, value)
}

// SetAndWait writes a new setpoint and blocks until the readback settles
// or the context expires.
func (t *TemperatureController) SetAndWait(ctx context.Context, value float64) error {
	if err := t.Set(ctx, value); err != nil {
		return err
	}
	err := waitFor(ctx, func(ctx context.Context) (bool, error) {
		return t.Settled(ctx)
	})
	if err != nil && ctx.Err() != nil {
		return fmt.Errorf("%w: %s at setpoint %g", ErrNotSettled, t.Name(), value)
	}
	return err
}

// Read implements Reader.
func (t *TemperatureController) Read(ctx context.Context) (map[string]any, error) {
	sp, err := t.Setpoint(ctx)
	if err != nil {
		return nil, err
	}
	rb, err := t.Temperature(ctx)
	if err != nil {
		return nil, err
	}
	return map[string]any{
		"setpoint":    sp,
		"temperature": rb,
		"settled":     math.Abs(rb-sp) <= t.tolerance,
	}, nil
}
