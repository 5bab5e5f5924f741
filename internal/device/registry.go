package device

import (
	"context"
	"fmt"
	"sort"
	"sync"
)

// Registry holds the live device objects for one station.
//
// It backs the status API's device listing and the archiver's periodic
// sweep. Unlike a configuration database, the registry holds constructed
// devices, not descriptions of them.
//
// All public methods are thread-safe.
type Registry struct {
	mu      sync.RWMutex
	devices map[string]Reader
	logger  Logger
}

// Snapshot is one device's state as reported by the registry.
type Snapshot struct {
	Name  string         `json:"name"`
	Kind  string         `json:"kind"`
	State map[string]any `json:"state,omitempty"`
	Error string         `json:"error,omitempty"`
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		devices: make(map[string]Reader),
		logger:  noopLogger{},
	}
}

// SetLogger sets the logger for the registry.
func (r *Registry) SetLogger(logger Logger) {
	if logger != nil {
		r.logger = logger
	}
}

// Register adds a device under its own name.
func (r *Registry) Register(dev Reader) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	name := dev.Name()
	if _, ok := r.devices[name]; ok {
		return fmt.Errorf("%w: %s", ErrDeviceExists, name)
	}
	r.devices[name] = dev
	r.logger.Debug("device registered", "device", name)
	return nil
}

// Get returns the device with the given name.
func (r *Registry) Get(name string) (Reader, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	dev, ok := r.devices[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrDeviceNotFound, name)
	}
	return dev, nil
}

// Names returns all registered device names, sorted.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.devices))
	for n := range r.devices {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// SnapshotAll reads every registered device. A device that fails to read
// appears in the result with its error recorded; one faulted IOC must not
// hide the rest of the station.
func (r *Registry) SnapshotAll(ctx context.Context) []Snapshot {
	r.mu.RLock()
	devices := make([]Reader, 0, len(r.devices))
	for _, d := range r.devices {
		devices = append(devices, d)
	}
	r.mu.RUnlock()

	sort.Slice(devices, func(i, j int) bool { return devices[i].Name() < devices[j].Name() })

	out := make([]Snapshot, 0, len(devices))
	for _, d := range devices {
		snap := Snapshot{Name: d.Name(), Kind: d.Kind()}
		state, err := d.Read(ctx)
		if err != nil {
			snap.Error = err.Error()
			r.logger.Warn("device read failed", "device", d.Name(), "error", err)
		} else {
			snap.State = state
		}
		out = append(out, snap)
	}
	return out
}

// SnapshotOne reads a single device by name.
func (r *Registry) SnapshotOne(ctx context.Context, name string) (Snapshot, error) {
	dev, err := r.Get(name)
	if err != nil {
		return Snapshot{}, err
	}
	snap := Snapshot{Name: dev.Name(), Kind: dev.Kind()}
	state, err := dev.Read(ctx)
	if err != nil {
		return Snapshot{}, err
	}
	snap.State = state
	return snap, nil
}
