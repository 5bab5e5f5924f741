package areadetector

import (
	"context"

	"github.com/BCDA-APS/beamtools/internal/device"
	"github.com/BCDA-APS/beamtools/internal/epics"
)

// FilePlugin wraps the PVs common to ADCore file-writer plugins
// ("HDF1:", "TIFF1:", "JPEG1:").
type FilePlugin struct {
	name   string
	prefix string
	cam    *Camera
	logger device.Logger

	EnableCallbacks *epics.Signal

	arraySize0 *epics.Signal
	arraySize1 *epics.Signal
	arraySize2 *epics.Signal
	colorMode  *epics.Signal
	dataType   *epics.Signal
}

// newFilePlugin builds the plugin base for the given plugin prefix
// (e.g., "8idi:HDF1:"). The camera is the plugin's upstream port.
func newFilePlugin(conn epics.Conn, name, prefix string, cam *Camera) FilePlugin {
	sig := func(sname, suffix string) *epics.Signal {
		return epics.NewSignal(conn, sname, epics.Join(prefix, suffix))
	}
	return FilePlugin{
		name:            name,
		prefix:          prefix,
		cam:             cam,
		logger:          noopLogger{},
		EnableCallbacks: sig("enable", "EnableCallbacks"),
		arraySize0:      sig("array_size0", "ArraySize0_RBV"),
		arraySize1:      sig("array_size1", "ArraySize1_RBV"),
		arraySize2:      sig("array_size2", "ArraySize2_RBV"),
		colorMode:       sig("color_mode", "ColorMode_RBV"),
		dataType:        sig("data_type", "DataType_RBV"),
	}
}

// noopLogger is a logger that does nothing.
type noopLogger struct{}

func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Warn(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}

// Name returns the plugin's configured name.
func (p *FilePlugin) Name() string { return p.name }

// Prefix returns the plugin's PV prefix.
func (p *FilePlugin) Prefix() string { return p.prefix }

// Camera returns the plugin's upstream camera.
func (p *FilePlugin) Camera() *Camera { return p.cam }

// SetLogger sets the logger for the plugin.
func (p *FilePlugin) SetLogger(logger device.Logger) {
	if logger != nil {
		p.logger = logger
	}
}

// ArraySize reads the plugin's last-frame dimensions.
func (p *FilePlugin) ArraySize(ctx context.Context) ([3]int, error) {
	var size [3]int
	for i, sig := range []*epics.Signal{p.arraySize0, p.arraySize1, p.arraySize2} {
		n, err := sig.GetInt(ctx)
		if err != nil {
			return size, err
		}
		size[i] = n
	}
	return size, nil
}

// ColorMode reads the plugin's last-frame color mode enum string.
func (p *FilePlugin) ColorMode(ctx context.Context) (string, error) {
	return p.colorMode.GetString(ctx)
}

// DataType reads the plugin's last-frame data type enum string.
func (p *FilePlugin) DataType(ctx context.Context) (string, error) {
	return p.dataType.GetString(ctx)
}
