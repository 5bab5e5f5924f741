// Package mqtt provides the beamline status bus client.
//
// This package manages:
//   - Connection to the broker with auto-reconnect
//   - Message publishing with QoS guarantees
//   - Topic subscriptions with wildcard support
//   - Last Will and Testament (LWT) for offline detection
//   - Connection health monitoring
//
// # Architecture
//
// The daemon uses MQTT as a one-way status surface: device state
// snapshots, signal readings and DM workflow progress reports are
// published for dashboards and downstream consumers. Nothing on the bus
// commands hardware; EPICS is the only control path.
//
//	beamtoold -> MQTT Broker -> dashboards / loggers / other stations
//
// # Security Considerations
//
//   - TLS is required for brokers outside the beamline subnet
//   - Credentials are validated against broker ACL
//   - Anonymous access is only for local development
//   - Message payloads are not encrypted beyond TLS transport
//
// # Usage
//
//	topics := mqtt.NewTopics(cfg.Station.ID)
//	client, err := mqtt.Connect(cfg.MQTT, topics)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer client.Close()
//
//	// Watch every device's state on this station
//	err = client.Subscribe(topics.AllDeviceStates(), 1,
//	    func(topic string, payload []byte) error {
//	        log.Printf("Received: %s = %s", topic, payload)
//	        return nil
//	    })
//
//	// Publish a state snapshot
//	client.Publish(topics.DeviceState("sample_x"), payload, 1, true)
package mqtt
