package device

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/BCDA-APS/beamtools/internal/epics"
)

func simController(prefix string, settleExact bool) *epics.SoftIOC {
	ioc := epics.NewSoftIOC()
	ioc.Set(prefix+":SetPoint", 25.0)
	ioc.Set(prefix+":Temperature", 25.0)
	if settleExact {
		ioc.SetPutHook(func(pv string, value any) {
			if pv == prefix+":SetPoint" {
				ioc.Set(prefix+":Temperature", value)
			}
		})
	}
	return ioc
}

func TestTemperatureController_SetAndWait(t *testing.T) {
	ioc := simController("sim:ls336", true)
	tc := NewTemperatureController(ioc, "ls336", "sim:ls336", 0.5)

	if err := tc.SetAndWait(context.Background(), 80.0); err != nil {
		t.Fatalf("SetAndWait() error = %v", err)
	}

	temp, err := tc.Temperature(context.Background())
	if err != nil {
		t.Fatalf("Temperature() error = %v", err)
	}
	if temp != 80.0 {
		t.Errorf("Temperature() = %v, want 80.0", temp)
	}
}

func TestTemperatureController_SetAndWait_Timeout(t *testing.T) {
	// No hook: readback never follows the setpoint.
	ioc := simController("sim:ls336", false)
	tc := NewTemperatureController(ioc, "ls336", "sim:ls336", 0.5)

	ctx, cancel := context.WithTimeout(context.Background(), 250*time.Millisecond)
	defer cancel()

	err := tc.SetAndWait(ctx, 80.0)
	if !errors.Is(err, ErrNotSettled) {
		t.Fatalf("SetAndWait() error = %v, want ErrNotSettled", err)
	}
}

func TestTemperatureController_Settled(t *testing.T) {
	ioc := simController("sim:ls336", false)
	ioc.Set("sim:ls336:Temperature", 25.3)
	tc := NewTemperatureController(ioc, "ls336", "sim:ls336", 0.5)

	ok, err := tc.Settled(context.Background())
	if err != nil {
		t.Fatalf("Settled() error = %v", err)
	}
	if !ok {
		t.Error("Settled() = false, want true within 0.5 tolerance")
	}

	ioc.Set("sim:ls336:Temperature", 30.0)
	ok, err = tc.Settled(context.Background())
	if err != nil {
		t.Fatalf("Settled() error = %v", err)
	}
	if ok {
		t.Error("Settled() = true, want false at 5 degrees off")
	}
}
