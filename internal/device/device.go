package device

import (
	"context"
	"time"
)

// Logger defines the logging interface used by devices.
// This allows different logging implementations to be used.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

// noopLogger is a logger that does nothing.
type noopLogger struct{}

func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Warn(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}

// pollInterval is the readback polling period for settle waits.
const pollInterval = 100 * time.Millisecond

// Device is the common identity carried by every device type.
type Device struct {
	name   string
	prefix string
	labels []string
	logger Logger
}

// newDevice builds the embedded base.
func newDevice(name, prefix string, labels ...string) Device {
	return Device{
		name:   name,
		prefix: prefix,
		labels: labels,
		logger: noopLogger{},
	}
}

// Name returns the device's configured name.
func (d *Device) Name() string { return d.name }

// Prefix returns the device's PV prefix.
func (d *Device) Prefix() string { return d.prefix }

// Labels returns free-form labels used for filtering in the status API.
func (d *Device) Labels() []string { return d.labels }

// SetLogger sets the logger for the device.
func (d *Device) SetLogger(logger Logger) {
	if logger != nil {
		d.logger = logger
	}
}

// Reader exposes a device's current state as a flat map for the status
// API and the archiver. Keys are stable per device type.
type Reader interface {
	Name() string
	Kind() string
	Read(ctx context.Context) (map[string]any, error)
}

// waitFor polls cond on pollInterval until it reports true, returns an
// error, or the context expires. The condition is checked once immediately.
func waitFor(ctx context.Context, cond func(context.Context) (bool, error)) error {
	for {
		ok, err := cond(ctx)
		if err != nil {
			return err
		}
		if ok {
			return nil
		}
		if err := sleepCtx(ctx, pollInterval); err != nil {
			return err
		}
	}
}
