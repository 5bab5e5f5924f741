package archiver

import (
	"time"

	"github.com/influxdata/influxdb-client-go/v2/api/write"
)

// WriteReading archives one signal reading.
//
// This is the primary method for recording PV telemetry. The write is
// non-blocking; data is batched and sent asynchronously.
//
// Parameters:
//   - signal: signal name, conventionally "<device>.<field>"
//   - value: the reading
//
// Example:
//
//	arch.WriteReading("sample_x.RBV", 12.5)
//	arch.WriteReading("lakeshore.Temperature", 295.2)
func (c *Client) WriteReading(signal string, value float64) {
	if !c.IsConnected() {
		return
	}

	point := write.NewPoint(
		"signal_readings",
		map[string]string{
			"station": c.station,
			"signal":  signal,
		},
		map[string]interface{}{
			"value": value,
		},
		time.Now(),
	)

	c.writeAPI.WritePoint(point)
}

// WriteDeviceState archives a device's read snapshot.
//
// Non-numeric snapshot values are stored as strings; InfluxDB fields are
// typed per series, so a device should keep each field's type stable.
//
// Parameters:
//   - device: registry name of the device
//   - fields: the snapshot from the device's Read
func (c *Client) WriteDeviceState(device string, fields map[string]interface{}) {
	if !c.IsConnected() || len(fields) == 0 {
		return
	}

	point := write.NewPoint(
		"device_state",
		map[string]string{
			"station": c.station,
			"device":  device,
		},
		fields,
		time.Now(),
	)

	c.writeAPI.WritePoint(point)
}

// WriteWorkflowEvent archives a DM job status transition.
//
// Parameters:
//   - jobID: DM job identifier
//   - workflow: workflow name
//   - status: job status at this transition
//   - stage: workflow stage at this transition
func (c *Client) WriteWorkflowEvent(jobID, workflow, status, stage string) {
	if !c.IsConnected() {
		return
	}

	point := write.NewPoint(
		"workflow_events",
		map[string]string{
			"station":  c.station,
			"workflow": workflow,
		},
		map[string]interface{}{
			"job_id": jobID,
			"status": status,
			"stage":  stage,
		},
		time.Now(),
	)

	c.writeAPI.WritePoint(point)
}

// WritePoint writes a custom point with full control over tags and fields.
//
// Use this for measurements that don't fit the helper methods. The
// station tag is added automatically.
func (c *Client) WritePoint(measurement string, tags map[string]string, fields map[string]interface{}) {
	if !c.IsConnected() {
		return
	}

	merged := map[string]string{"station": c.station}
	for k, v := range tags {
		merged[k] = v
	}

	point := write.NewPoint(measurement, merged, fields, time.Now())
	c.writeAPI.WritePoint(point)
}
