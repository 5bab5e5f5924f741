package areadetector

import (
	"context"
	"testing"
	"time"

	"github.com/BCDA-APS/beamtools/internal/epics"
)

const (
	camPrefix  = "det:cam1:"
	hdf5Prefix = "det:HDF1:"
)

// seedCamera loads the camera metadata PVs a primed check reads.
func seedCamera(ioc *epics.SoftIOC) {
	ioc.Set(camPrefix+"ArraySizeX_RBV", 1024)
	ioc.Set(camPrefix+"ArraySizeY_RBV", 1024)
	ioc.Set(camPrefix+"ArraySizeZ_RBV", 0)
	ioc.Set(camPrefix+"ColorMode_RBV", "Mono")
	ioc.Set(camPrefix+"DataType_RBV", "UInt8")
}

// seedPluginMeta loads the plugin's last-frame metadata.
func seedPluginMeta(ioc *epics.SoftIOC, x, y, z int, color, dtype string) {
	ioc.Set(hdf5Prefix+"ArraySize0_RBV", x)
	ioc.Set(hdf5Prefix+"ArraySize1_RBV", y)
	ioc.Set(hdf5Prefix+"ArraySize2_RBV", z)
	ioc.Set(hdf5Prefix+"ColorMode_RBV", color)
	ioc.Set(hdf5Prefix+"DataType_RBV", dtype)
}

// seedPrimeSigs loads current values for every PV the primer snapshots.
func seedPrimeSigs(ioc *epics.SoftIOC) {
	ioc.Set(hdf5Prefix+"EnableCallbacks", 0)
	ioc.Set(camPrefix+"ArrayCallbacks", 0)
	ioc.Set(camPrefix+"ImageMode", 2)
	ioc.Set(camPrefix+"TriggerMode", 1)
	ioc.Set(camPrefix+"AcquireTime", 0.25)
	ioc.Set(camPrefix+"AcquirePeriod", 0.3)
	ioc.Set(camPrefix+"Acquire", 0)
}

func fastPrimeTimings(t *testing.T) {
	t.Helper()
	savedThrottle, savedSettle := primeThrottle, primeSettle
	primeThrottle, primeSettle = 0, time.Millisecond
	t.Cleanup(func() { primeThrottle, primeSettle = savedThrottle, savedSettle })
}

func TestPrimed(t *testing.T) {
	tests := []struct {
		name  string
		seed  func(*epics.SoftIOC)
		wantP bool
	}{
		{
			name:  "matching metadata",
			seed:  func(ioc *epics.SoftIOC) { seedPluginMeta(ioc, 1024, 1024, 0, "Mono", "UInt8") },
			wantP: true,
		},
		{
			name:  "never received a frame",
			seed:  func(ioc *epics.SoftIOC) { seedPluginMeta(ioc, 0, 0, 0, "Mono", "UInt8") },
			wantP: false,
		},
		{
			name:  "size mismatch",
			seed:  func(ioc *epics.SoftIOC) { seedPluginMeta(ioc, 512, 512, 0, "Mono", "UInt8") },
			wantP: false,
		},
		{
			name:  "color mode mismatch",
			seed:  func(ioc *epics.SoftIOC) { seedPluginMeta(ioc, 1024, 1024, 0, "RGB1", "UInt8") },
			wantP: false,
		},
		{
			name:  "data type mismatch",
			seed:  func(ioc *epics.SoftIOC) { seedPluginMeta(ioc, 1024, 1024, 0, "Mono", "UInt16") },
			wantP: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ioc := epics.NewSoftIOC()
			seedCamera(ioc)
			tt.seed(ioc)

			cam := NewCamera(ioc, camPrefix)
			fs := NewHDF5Plugin(ioc, "h5", hdf5Prefix, cam)

			got, err := fs.Primed(context.Background())
			if err != nil {
				t.Fatalf("Primed: %v", err)
			}
			if got != tt.wantP {
				t.Errorf("Primed = %v, want %v", got, tt.wantP)
			}
		})
	}
}

func TestPrime_WriteOrderAndRestore(t *testing.T) {
	fastPrimeTimings(t)

	ioc := epics.NewSoftIOC()
	seedCamera(ioc)
	seedPluginMeta(ioc, 0, 0, 0, "", "")
	seedPrimeSigs(ioc)

	// Writing Acquire=1 pushes one frame through the chain.
	ioc.SetPutHook(func(pv string, value any) {
		if pv == camPrefix+"Acquire" && value == 1 {
			seedPluginMeta(ioc, 1024, 1024, 0, "Mono", "UInt8")
		}
	})

	cam := NewCamera(ioc, camPrefix)
	fs := NewHDF5Plugin(ioc, "h5", hdf5Prefix, cam)

	if err := fs.Prime(context.Background()); err != nil {
		t.Fatalf("Prime: %v", err)
	}

	forward := []string{
		hdf5Prefix + "EnableCallbacks",
		camPrefix + "ArrayCallbacks",
		camPrefix + "ImageMode",
		camPrefix + "TriggerMode",
		camPrefix + "AcquireTime",
		camPrefix + "AcquirePeriod",
		camPrefix + "Acquire",
	}

	writes := ioc.Writes()
	if len(writes) != 2*len(forward) {
		t.Fatalf("got %d writes, want %d", len(writes), 2*len(forward))
	}
	for i, pv := range forward {
		if writes[i].PV != pv {
			t.Errorf("forward write %d = %s, want %s", i, writes[i].PV, pv)
		}
	}
	// Restore replays the snapshot in reverse order.
	for i, pv := range forward {
		j := len(writes) - 1 - i
		if writes[j].PV != pv {
			t.Errorf("restore write %d = %s, want %s", j, writes[j].PV, pv)
		}
	}

	// Every touched PV is back at its pre-prime value.
	restored := map[string]any{
		hdf5Prefix + "EnableCallbacks": 0,
		camPrefix + "ArrayCallbacks":   0,
		camPrefix + "ImageMode":        2,
		camPrefix + "TriggerMode":      1,
		camPrefix + "AcquireTime":      0.25,
		camPrefix + "AcquirePeriod":    0.3,
		camPrefix + "Acquire":          0,
	}
	for pv, want := range restored {
		if got := ioc.Value(pv); got != want {
			t.Errorf("%s = %v after prime, want %v", pv, got, want)
		}
	}

	// The frame left the plugin primed.
	primed, err := fs.Primed(context.Background())
	if err != nil {
		t.Fatalf("Primed: %v", err)
	}
	if !primed {
		t.Error("plugin not primed after Prime")
	}
}

func TestPrime_NoopWhenPrimed(t *testing.T) {
	fastPrimeTimings(t)

	ioc := epics.NewSoftIOC()
	seedCamera(ioc)
	seedPluginMeta(ioc, 1024, 1024, 0, "Mono", "UInt8")

	cam := NewCamera(ioc, camPrefix)
	fs := NewHDF5Plugin(ioc, "h5", hdf5Prefix, cam)

	if err := fs.Prime(context.Background()); err != nil {
		t.Fatalf("Prime: %v", err)
	}
	if n := len(ioc.Writes()); n != 0 {
		t.Errorf("primed plugin wrote %d PVs, want 0", n)
	}
}
