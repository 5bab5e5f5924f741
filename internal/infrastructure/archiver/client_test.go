package archiver_test

import (
	"context"
	"errors"
	"testing"

	"github.com/BCDA-APS/beamtools/internal/infrastructure/archiver"
	"github.com/BCDA-APS/beamtools/internal/infrastructure/config"
)

// testConfig returns a configuration for a local dev InfluxDB.
func testConfig() config.InfluxDBConfig {
	return config.InfluxDBConfig{
		Enabled:       true,
		URL:           "http://127.0.0.1:8086",
		Token:         "beamtools-dev-token",
		Org:           "beamtools",
		Bucket:        "telemetry",
		BatchSize:     100,
		FlushInterval: 1,
	}
}

func TestConnect_Disabled(t *testing.T) {
	cfg := testConfig()
	cfg.Enabled = false

	_, err := archiver.Connect(cfg, "8idi")
	if !errors.Is(err, archiver.ErrDisabled) {
		t.Errorf("Connect() error = %v, want ErrDisabled", err)
	}
}

func TestConnect_InvalidURL(t *testing.T) {
	cfg := testConfig()
	cfg.URL = "http://127.0.0.1:59999" // nothing listens here

	_, err := archiver.Connect(cfg, "8idi")
	if !errors.Is(err, archiver.ErrConnectionFailed) {
		t.Errorf("Connect() error = %v, want ErrConnectionFailed", err)
	}
}

func TestDisconnectedWritesAreNoops(t *testing.T) {
	// A zero client reports disconnected; writes must not panic or block.
	var c archiver.Client

	c.WriteReading("sample_x.RBV", 12.5)
	c.WriteDeviceState("sample_x", map[string]interface{}{"position": 12.5})
	c.WriteWorkflowEvent("job-1", "xpcs-boost", "running", "reduce")
	c.WritePoint("custom", nil, map[string]interface{}{"v": 1})

	if err := c.HealthCheck(context.Background()); !errors.Is(err, archiver.ErrNotConnected) {
		t.Errorf("HealthCheck() error = %v, want ErrNotConnected", err)
	}
	if err := c.Close(); err != nil {
		t.Errorf("Close() on zero client error = %v", err)
	}
}
