package mqtt

import (
	"crypto/tls"
	"encoding/json"
	"fmt"
	"time"

	pahomqtt "github.com/eclipse/paho.mqtt.golang"

	"github.com/BCDA-APS/beamtools/internal/infrastructure/config"
)

const (
	// connectWait bounds the initial broker handshake.
	connectWait = 10 * time.Second

	// ackWait bounds publish, subscribe, and unsubscribe acknowledgments.
	ackWait = 5 * time.Second

	// disconnectQuiesceMS gives in-flight messages time to drain on Close.
	disconnectQuiesceMS = 1000

	// keepAliveInterval drives broker-level dead connection detection.
	keepAliveInterval = 60 * time.Second

	maxQoS = 2
)

// presence is the station liveness record published retained on the station
// status topic. Dashboards and peer stations key off Status; Reason separates
// a clean shutdown from a dropped connection.
type presence struct {
	Status    string `json:"status"`
	ClientID  string `json:"client_id"`
	Reason    string `json:"reason,omitempty"`
	Timestamp string `json:"timestamp"`
}

func presenceJSON(status, clientID, reason string) []byte {
	p := presence{
		Status:    status,
		ClientID:  clientID,
		Reason:    reason,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	}
	out, err := json.Marshal(p)
	if err != nil {
		// A flat struct of strings cannot fail to marshal.
		return []byte(`{"status":"` + status + `"}`)
	}
	return out
}

// brokerOptions translates the station config into paho client options:
// broker URL, client identity, optional credentials, TLS floor, and
// reconnect backoff. Sessions are always clean; subscription state lives
// in the Client, not on the broker.
func brokerOptions(cfg config.MQTTConfig) *pahomqtt.ClientOptions {
	scheme := "tcp"
	if cfg.Broker.TLS {
		scheme = "ssl"
	}

	opts := pahomqtt.NewClientOptions().
		AddBroker(fmt.Sprintf("%s://%s:%d", scheme, cfg.Broker.Host, cfg.Broker.Port)).
		SetClientID(cfg.Broker.ClientID).
		SetCleanSession(true).
		SetConnectTimeout(connectWait).
		SetKeepAlive(keepAliveInterval)

	if cfg.Auth.Username != "" {
		opts.SetUsername(cfg.Auth.Username)
		opts.SetPassword(cfg.Auth.Password)
	}

	opts.SetAutoReconnect(true)
	opts.SetConnectRetry(true)
	opts.SetConnectRetryInterval(time.Duration(cfg.Reconnect.InitialDelay) * time.Second)
	opts.SetMaxReconnectInterval(time.Duration(cfg.Reconnect.MaxDelay) * time.Second)

	if cfg.Broker.TLS {
		opts.SetTLSConfig(&tls.Config{MinVersion: tls.VersionTLS12})
	}

	return opts
}

// armWill registers the Last Will so the broker announces this station as
// offline if the connection drops without a clean Close. Retained at QoS 1,
// so late subscribers still see the stale state.
func armWill(opts *pahomqtt.ClientOptions, topics Topics, clientID string) {
	payload := presenceJSON("offline", clientID, "unexpected_disconnect")
	opts.SetWill(topics.StationStatus(), string(payload), 1, true)
}
