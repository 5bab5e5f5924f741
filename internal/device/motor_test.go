package device

import (
	"context"
	"errors"
	"testing"

	"github.com/BCDA-APS/beamtools/internal/epics"
)

// simMotor seeds a soft IOC with a motor record that completes any move
// instantly: writing .VAL updates .RBV and leaves .DMOV at 1.
func simMotor(prefix string) *epics.SoftIOC {
	ioc := epics.NewSoftIOC()
	ioc.Set(prefix+".VAL", 0.0)
	ioc.Set(prefix+".RBV", 0.0)
	ioc.Set(prefix+".DMOV", 1)
	ioc.Set(prefix+".STOP", 0)
	ioc.Set(prefix+".VELO", 1.0)
	ioc.Set(prefix+".LLM", -10.0)
	ioc.Set(prefix+".HLM", 10.0)
	ioc.SetPutHook(func(pv string, value any) {
		if pv == prefix+".VAL" {
			ioc.Set(prefix+".RBV", value)
		}
	})
	return ioc
}

func TestMotor_Move(t *testing.T) {
	ioc := simMotor("sim:m1")
	m := NewMotor(ioc, "m1", "sim:m1")

	if err := m.Move(context.Background(), 3.5); err != nil {
		t.Fatalf("Move() error = %v", err)
	}

	pos, err := m.Position(context.Background())
	if err != nil {
		t.Fatalf("Position() error = %v", err)
	}
	if pos != 3.5 {
		t.Errorf("Position() = %v, want 3.5", pos)
	}
}

func TestMotor_Move_LimitViolation(t *testing.T) {
	ioc := simMotor("sim:m1")
	m := NewMotor(ioc, "m1", "sim:m1")

	err := m.Move(context.Background(), 42.0)
	if !errors.Is(err, ErrLimitViolation) {
		t.Fatalf("Move() error = %v, want ErrLimitViolation", err)
	}

	// The setpoint must be untouched after a rejected move.
	if ioc.Value("sim:m1.VAL") != 0.0 {
		t.Errorf(".VAL = %v, want 0.0", ioc.Value("sim:m1.VAL"))
	}
}

func TestMotor_Move_LimitsDisabled(t *testing.T) {
	ioc := simMotor("sim:m1")
	ioc.Set("sim:m1.LLM", 0.0)
	ioc.Set("sim:m1.HLM", 0.0)
	m := NewMotor(ioc, "m1", "sim:m1")

	// Limits of (0, 0) mean disabled; a large move is allowed.
	if err := m.Move(context.Background(), 42.0); err != nil {
		t.Fatalf("Move() error = %v", err)
	}
}

func TestMotor_Read(t *testing.T) {
	ioc := simMotor("sim:m1")
	m := NewMotor(ioc, "m1", "sim:m1")

	state, err := m.Read(context.Background())
	if err != nil {
		t.Fatalf("Read() error = %v", err)
	}
	if state["done_moving"] != true {
		t.Errorf("done_moving = %v, want true", state["done_moving"])
	}
	if state["position"] != 0.0 {
		t.Errorf("position = %v, want 0.0", state["position"])
	}
}

func TestMotor_Stop(t *testing.T) {
	ioc := simMotor("sim:m1")
	m := NewMotor(ioc, "m1", "sim:m1")

	if err := m.Stop(context.Background()); err != nil {
		t.Fatalf("Stop() error = %v", err)
	}
	if ioc.Value("sim:m1.STOP") != 1 {
		t.Errorf(".STOP = %v, want 1", ioc.Value("sim:m1.STOP"))
	}
}
