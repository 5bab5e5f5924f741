package mqtt

import "fmt"

// Topic prefixes for the beamline status bus.
//
// Station topics are scoped under beamtools/{station} so several stations
// can share one broker. System topics are broker-wide.
const (
	// TopicPrefix is the base for all beamtools topics.
	TopicPrefix = "beamtools"

	// TopicPrefixSystem is the base for broker-wide system topics.
	TopicPrefixSystem = "beamtools/system"
)

// Topics builds station-scoped topic strings. Using these helpers keeps
// topic naming consistent across publishers and subscribers.
//
//	topics := mqtt.NewTopics("8idi")
//	topics.DeviceState("sample_x")  // beamtools/8idi/device/sample_x/state
type Topics struct {
	station string
}

// NewTopics creates a topic builder for one station.
func NewTopics(station string) Topics {
	return Topics{station: station}
}

// Station returns the station ID the builder is scoped to.
func (t Topics) Station() string { return t.station }

// DeviceState returns the topic carrying a device's state snapshots.
//
// Example: beamtools/8idi/device/sample_x/state
func (t Topics) DeviceState(device string) string {
	return fmt.Sprintf("%s/%s/device/%s/state", TopicPrefix, t.station, device)
}

// AllDeviceStates returns a pattern matching every device state on this
// station.
//
// Pattern: beamtools/8idi/device/+/state
func (t Topics) AllDeviceStates() string {
	return fmt.Sprintf("%s/%s/device/+/state", TopicPrefix, t.station)
}

// SignalReading returns the topic carrying one signal's readings.
//
// Example: beamtools/8idi/signal/sample_x.RBV
func (t Topics) SignalReading(signal string) string {
	return fmt.Sprintf("%s/%s/signal/%s", TopicPrefix, t.station, signal)
}

// WorkflowStatus returns the topic carrying DM job progress reports.
//
// Example: beamtools/8idi/dm/job-42/status
func (t Topics) WorkflowStatus(jobID string) string {
	return fmt.Sprintf("%s/%s/dm/%s/status", TopicPrefix, t.station, jobID)
}

// AllWorkflowStatuses returns a pattern matching every DM job status on
// this station.
//
// Pattern: beamtools/8idi/dm/+/status
func (t Topics) AllWorkflowStatuses() string {
	return fmt.Sprintf("%s/%s/dm/+/status", TopicPrefix, t.station)
}

// StationStatus returns this station's lifecycle topic. The daemon
// publishes online/offline retained messages here; the broker's LWT
// covers unclean exits.
//
// Example: beamtools/8idi/status
func (t Topics) StationStatus() string {
	return fmt.Sprintf("%s/%s/status", TopicPrefix, t.station)
}

// SystemStatus returns the broker-wide system status topic.
//
// Example: beamtools/system/status
func (Topics) SystemStatus() string {
	return fmt.Sprintf("%s/status", TopicPrefixSystem)
}

// AllStationTopics returns a pattern matching all traffic for this
// station. Use with caution on busy brokers.
//
// Pattern: beamtools/8idi/#
func (t Topics) AllStationTopics() string {
	return fmt.Sprintf("%s/%s/#", TopicPrefix, t.station)
}
