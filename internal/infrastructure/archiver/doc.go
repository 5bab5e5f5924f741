// Package archiver records beamline telemetry to InfluxDB.
//
// It wraps the official influxdb-client-go v2 library and plays the role
// a site archiver appliance plays for a beamline: signal readings, device
// state snapshots and DM workflow transitions are written as time-series
// points for dashboards and post-mortem queries.
//
// # Usage
//
//	arch, err := archiver.Connect(cfg.InfluxDB, cfg.Station.ID)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer arch.Close()
//
//	arch.WriteReading("sample_x.RBV", 12.5)
//	arch.WriteDeviceState("sample_x", map[string]interface{}{"moving": 0})
//
// # Thread Safety
//
// All methods are safe for concurrent use from multiple goroutines.
// The underlying write API uses non-blocking batched writes.
//
// # Error Handling
//
// Write operations are non-blocking; batch errors are delivered via the
// SetOnError callback. Connection and health check errors are returned
// directly.
package archiver
