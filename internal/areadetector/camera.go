package areadetector

import (
	"context"

	"github.com/BCDA-APS/beamtools/internal/epics"
)

// Camera wraps the ADCore camera driver PVs (conventionally "cam1:").
//
// Only the signals the priming and staging sequences touch are modelled;
// exposure programming beyond that stays with the IOC's own screens.
type Camera struct {
	prefix string

	Acquire        *epics.Signal // Acquire (1 = expose)
	AcquireTime    *epics.Signal // AcquireTime (s)
	AcquirePeriod  *epics.Signal // AcquirePeriod (s)
	ImageMode      *epics.Signal // ImageMode enum
	TriggerMode    *epics.Signal // TriggerMode enum
	ArrayCallbacks *epics.Signal // ArrayCallbacks (1 = enabled)

	arraySizeX *epics.Signal
	arraySizeY *epics.Signal
	arraySizeZ *epics.Signal
	colorMode  *epics.Signal
	dataType   *epics.Signal
}

// NewCamera creates a camera for the given driver prefix
// (e.g., "8idi:cam1:").
func NewCamera(conn epics.Conn, prefix string) *Camera {
	sig := func(name, suffix string) *epics.Signal {
		return epics.NewSignal(conn, name, epics.Join(prefix, suffix))
	}
	return &Camera{
		prefix:         prefix,
		Acquire:        sig("acquire", "Acquire"),
		AcquireTime:    sig("acquire_time", "AcquireTime"),
		AcquirePeriod:  sig("acquire_period", "AcquirePeriod"),
		ImageMode:      sig("image_mode", "ImageMode"),
		TriggerMode:    sig("trigger_mode", "TriggerMode"),
		ArrayCallbacks: sig("array_callbacks", "ArrayCallbacks"),
		arraySizeX:     sig("array_size_x", "ArraySizeX_RBV"),
		arraySizeY:     sig("array_size_y", "ArraySizeY_RBV"),
		arraySizeZ:     sig("array_size_z", "ArraySizeZ_RBV"),
		colorMode:      sig("color_mode", "ColorMode_RBV"),
		dataType:       sig("data_type", "DataType_RBV"),
	}
}

// Prefix returns the camera's PV prefix.
func (c *Camera) Prefix() string { return c.prefix }

// ArraySize reads the (x, y, z) frame dimensions.
func (c *Camera) ArraySize(ctx context.Context) ([3]int, error) {
	var size [3]int
	for i, sig := range []*epics.Signal{c.arraySizeX, c.arraySizeY, c.arraySizeZ} {
		n, err := sig.GetInt(ctx)
		if err != nil {
			return size, err
		}
		size[i] = n
	}
	return size, nil
}

// ColorMode reads the color mode enum string.
func (c *Camera) ColorMode(ctx context.Context) (string, error) {
	return c.colorMode.GetString(ctx)
}

// DataType reads the pixel data type enum string.
func (c *Camera) DataType(ctx context.Context) (string, error) {
	return c.dataType.GetString(ctx)
}
