package mqtt

import "errors"

// Sentinel errors for status bus operations. Callers match with errors.Is;
// wrapped variants carry the broker detail.
var (
	// ErrNotConnected means the broker link is down. Publishes and
	// subscribes fail fast rather than queueing.
	ErrNotConnected = errors.New("mqtt: client not connected")

	// ErrConnectionFailed means the initial broker handshake did not
	// complete within the connect window.
	ErrConnectionFailed = errors.New("mqtt: connection failed")

	// ErrPublishFailed wraps broker-side publish rejections and
	// oversized payloads.
	ErrPublishFailed = errors.New("mqtt: publish failed")

	// ErrSubscribeFailed wraps broker-side subscribe rejections and
	// nil handlers.
	ErrSubscribeFailed = errors.New("mqtt: subscribe failed")

	// ErrUnsubscribeFailed wraps broker-side unsubscribe rejections.
	ErrUnsubscribeFailed = errors.New("mqtt: unsubscribe failed")

	// ErrInvalidQoS rejects QoS levels outside 0..2.
	ErrInvalidQoS = errors.New("mqtt: invalid QoS level (must be 0, 1, or 2)")

	// ErrInvalidTopic rejects empty topic strings.
	ErrInvalidTopic = errors.New("mqtt: topic cannot be empty")
)
