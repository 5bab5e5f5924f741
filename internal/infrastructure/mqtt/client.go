package mqtt

import (
	"context"
	"fmt"
	"sync"

	pahomqtt "github.com/eclipse/paho.mqtt.golang"

	"github.com/BCDA-APS/beamtools/internal/infrastructure/config"
)

// Client is the station's link to the status bus. It wraps a paho MQTT
// connection with station presence (retained online/offline messages plus a
// Last Will), fail-fast validation, and subscription replay after reconnect.
//
// All methods are safe for concurrent use. A zero Client behaves as
// disconnected.
type Client struct {
	paho   pahomqtt.Client
	cfg    config.MQTTConfig
	topics Topics

	// subs is the replay set: every live subscription, re-issued to the
	// broker each time the connection comes back.
	subs   map[string]subscription
	subsMu sync.RWMutex

	// mu guards connection state and the optional hooks.
	mu           sync.RWMutex
	connected    bool
	onConnect    func()
	onDisconnect func(err error)
	logger       Logger
}

// Logger receives handler failures and recovered panics. Satisfied by
// logging.Logger and slog.Logger.
type Logger interface {
	Error(msg string, args ...any)
	Warn(msg string, args ...any)
}

type subscription struct {
	topic   string
	qos     byte
	handler MessageHandler
}

// MessageHandler consumes one message. Paho invokes handlers on its own
// goroutines; long-running work belongs elsewhere. A returned error is
// logged, not redelivered.
type MessageHandler func(topic string, payload []byte) error

// Connect dials the broker and returns a live client.
//
// The will is armed before the handshake, so even a connection that dies
// moments after Connect returns leaves a retained offline record behind.
// Once connected, the client publishes its retained online presence and
// keeps doing so after every reconnect.
func Connect(cfg config.MQTTConfig, topics Topics) (*Client, error) {
	opts := brokerOptions(cfg)
	armWill(opts, topics, cfg.Broker.ClientID)

	c := &Client{
		cfg:    cfg,
		topics: topics,
		subs:   make(map[string]subscription),
	}

	opts.SetOnConnectHandler(func(_ pahomqtt.Client) { c.connectionUp() })
	opts.SetConnectionLostHandler(func(_ pahomqtt.Client, err error) { c.connectionDown(err) })

	c.paho = pahomqtt.NewClient(opts)
	token := c.paho.Connect()
	if !token.WaitTimeout(connectWait) {
		return nil, fmt.Errorf("%w: timeout after %v", ErrConnectionFailed, connectWait)
	}
	if err := token.Error(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrConnectionFailed, err)
	}

	// The OnConnect handler runs asynchronously; mark the link up here so
	// IsConnected is already true when Connect returns.
	c.mu.Lock()
	c.connected = true
	c.mu.Unlock()

	return c, nil
}

// connectionUp runs on initial connect and every reconnect.
func (c *Client) connectionUp() {
	c.mu.Lock()
	c.connected = true
	hook := c.onConnect
	c.mu.Unlock()

	c.replaySubscriptions()
	c.publishPresence("online", "")

	if hook != nil {
		hook()
	}
}

func (c *Client) connectionDown(err error) {
	c.mu.Lock()
	c.connected = false
	hook := c.onDisconnect
	c.mu.Unlock()

	if hook != nil {
		hook(err)
	}
}

// replaySubscriptions re-issues every tracked subscription. Failures are
// swallowed; the next reconnect retries the full set.
func (c *Client) replaySubscriptions() {
	c.subsMu.RLock()
	defer c.subsMu.RUnlock()

	for _, sub := range c.subs {
		c.paho.Subscribe(sub.topic, sub.qos, c.dispatch(sub.handler))
	}
}

func (c *Client) publishPresence(status, reason string) {
	payload := presenceJSON(status, c.cfg.Broker.ClientID, reason)
	c.paho.Publish(c.topics.StationStatus(), byte(c.cfg.QoS), true, payload)
}

// Close announces a graceful shutdown and disconnects. The retained offline
// presence it publishes carries a different reason than the will, so
// operators can tell a clean stop from a crash. Safe on a zero Client.
func (c *Client) Close() error {
	if c.paho == nil {
		return nil
	}

	if c.IsConnected() {
		c.publishPresence("offline", "graceful_shutdown")
	}

	c.paho.Disconnect(disconnectQuiesceMS)

	c.mu.Lock()
	c.connected = false
	c.mu.Unlock()

	return nil
}

// HealthCheck reports whether the broker link is up.
func (c *Client) HealthCheck(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return fmt.Errorf("mqtt health check: %w", ctx.Err())
	default:
	}

	if !c.IsConnected() {
		return ErrNotConnected
	}
	return nil
}

// IsConnected reflects both our view of the link and paho's. The order
// matters: a zero Client has no paho handle, and the short-circuit keeps
// that case safe.
func (c *Client) IsConnected() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.connected && c.paho.IsConnected()
}

// SetOnConnect registers a hook invoked on initial connect and every
// reconnect.
func (c *Client) SetOnConnect(hook func()) {
	c.mu.Lock()
	c.onConnect = hook
	c.mu.Unlock()
}

// SetOnDisconnect registers a hook invoked when the broker link drops,
// with the cause.
func (c *Client) SetOnDisconnect(hook func(err error)) {
	c.mu.Lock()
	c.onDisconnect = hook
	c.mu.Unlock()
}

// SetLogger routes handler errors and recovered panics. Without one they
// are dropped.
func (c *Client) SetLogger(logger Logger) {
	c.mu.Lock()
	c.logger = logger
	c.mu.Unlock()
}

func (c *Client) getLogger() Logger {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.logger
}

// dispatch adapts a MessageHandler to paho's callback shape. A panicking
// handler must not take down the paho router, so it is recovered and
// logged here.
func (c *Client) dispatch(handler MessageHandler) pahomqtt.MessageHandler {
	return func(_ pahomqtt.Client, msg pahomqtt.Message) {
		defer func() {
			if r := recover(); r != nil {
				if log := c.getLogger(); log != nil {
					log.Error("status bus handler panic recovered",
						"topic", msg.Topic(),
						"panic", r,
					)
				}
			}
		}()

		if err := handler(msg.Topic(), msg.Payload()); err != nil {
			if log := c.getLogger(); log != nil {
				log.Warn("status bus handler error",
					"topic", msg.Topic(),
					"error", err,
				)
			}
		}
	}
}
