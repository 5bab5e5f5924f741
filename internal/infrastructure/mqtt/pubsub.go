package mqtt

import "fmt"

// maxPayloadSize caps outgoing messages at 1 MiB. Device snapshots and
// workflow events are a few hundred bytes; anything near this limit is a
// bug upstream, and most brokers would refuse it anyway.
const maxPayloadSize = 1 << 20

// Publish sends payload to topic. Retained messages replace the broker's
// stored copy for that topic, so new subscribers see the latest state
// immediately; use retained for state topics, not for events.
//
// Input validation runs before the connection check, so a disconnected or
// zero Client still rejects bad arguments with the precise sentinel.
func (c *Client) Publish(topic string, payload []byte, qos byte, retained bool) error {
	if topic == "" {
		return ErrInvalidTopic
	}
	if qos > maxQoS {
		return ErrInvalidQoS
	}
	if len(payload) > maxPayloadSize {
		return fmt.Errorf("%w: payload size %d exceeds maximum %d bytes", ErrPublishFailed, len(payload), maxPayloadSize)
	}
	if !c.IsConnected() {
		return ErrNotConnected
	}

	token := c.paho.Publish(topic, qos, retained, payload)
	if !token.WaitTimeout(ackWait) {
		return fmt.Errorf("%w: timeout after %v", ErrPublishFailed, ackWait)
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("%w: %w", ErrPublishFailed, err)
	}
	return nil
}

// PublishString publishes a string payload.
func (c *Client) PublishString(topic, payload string, qos byte, retained bool) error {
	return c.Publish(topic, []byte(payload), qos, retained)
}

// PublishRetained publishes a retained state update at the configured
// default QoS. This is the usual call for device state and workflow status.
func (c *Client) PublishRetained(topic string, payload []byte) error {
	return c.Publish(topic, payload, byte(c.cfg.QoS), true)
}

// Subscribe registers handler for topic and adds it to the replay set, so
// the subscription survives reconnects. Topic may carry MQTT wildcards:
// + for one level ("beamtools/8idi/device/+/state"), # for the rest of the
// tree ("beamtools/8idi/#").
//
// Subscribing twice to the same topic replaces the handler.
func (c *Client) Subscribe(topic string, qos byte, handler MessageHandler) error {
	if topic == "" {
		return ErrInvalidTopic
	}
	if qos > maxQoS {
		return ErrInvalidQoS
	}
	if handler == nil {
		return fmt.Errorf("%w: handler cannot be nil", ErrSubscribeFailed)
	}
	if !c.IsConnected() {
		return ErrNotConnected
	}

	// Track first. If the broker drops the link mid-subscribe, the replay
	// on reconnect picks this topic up; an outright rejection below
	// removes it again.
	c.subsMu.Lock()
	c.subs[topic] = subscription{topic: topic, qos: qos, handler: handler}
	c.subsMu.Unlock()

	token := c.paho.Subscribe(topic, qos, c.dispatch(handler))
	ok := token.WaitTimeout(ackWait)
	if !ok || token.Error() != nil {
		c.subsMu.Lock()
		delete(c.subs, topic)
		c.subsMu.Unlock()
	}
	if !ok {
		return fmt.Errorf("%w: timeout after %v", ErrSubscribeFailed, ackWait)
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("%w: %w", ErrSubscribeFailed, err)
	}
	return nil
}

// Unsubscribe drops the subscription for the exact topic string used at
// Subscribe time. Messages already in flight may still reach the handler.
func (c *Client) Unsubscribe(topic string) error {
	if topic == "" {
		return ErrInvalidTopic
	}
	if !c.IsConnected() {
		return ErrNotConnected
	}

	c.subsMu.Lock()
	delete(c.subs, topic)
	c.subsMu.Unlock()

	token := c.paho.Unsubscribe(topic)
	if !token.WaitTimeout(ackWait) {
		return fmt.Errorf("%w: timeout after %v", ErrUnsubscribeFailed, ackWait)
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("%w: %w", ErrUnsubscribeFailed, err)
	}
	return nil
}

// SubscriptionCount reports the size of the replay set.
func (c *Client) SubscriptionCount() int {
	c.subsMu.RLock()
	defer c.subsMu.RUnlock()
	return len(c.subs)
}

// HasSubscription reports whether the exact topic string is tracked.
// No wildcard matching is attempted.
func (c *Client) HasSubscription(topic string) bool {
	c.subsMu.RLock()
	defer c.subsMu.RUnlock()
	_, ok := c.subs[topic]
	return ok
}
