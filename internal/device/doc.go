// Package device maps EPICS PV hierarchies onto beamline device objects.
//
// Each device type composes epics.Signal values from a PV prefix plus the
// conventional record suffixes for that hardware class:
//
//   - Motor: EPICS motor record (.VAL/.RBV/.DMOV/.STOP and limits)
//   - Shutter: open/close command PVs with a state readback
//   - TemperatureController: setpoint/readback with a settle tolerance
//   - FilterBank: per-slot insert/remove PVs and an IOC-computed transmission
//   - Scaler: EPICS scaler record (.CNT/.TP and channel counts)
//
// Devices share the Stage/Unstage lifecycle: Stage pushes a device's
// configuration to the IOC immediately before a run, snapshotting prior
// values; Unstage restores them in reverse order. The StageList/Restorer
// pair in staging.go implements that ordered snapshot-and-restore
// discipline.
//
// All blocking calls take a context.Context; transport failures from the
// underlying Conn propagate unchanged, validation failures are returned as
// package sentinel errors.
package device
