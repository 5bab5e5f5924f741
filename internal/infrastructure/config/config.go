package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the root configuration structure for beamtools.
// All configuration is loaded from YAML and can be overridden by environment variables.
type Config struct {
	Station   StationConfig   `yaml:"station"`
	EPICS     EPICSConfig     `yaml:"epics"`
	Database  DatabaseConfig  `yaml:"database"`
	MQTT      MQTTConfig      `yaml:"mqtt"`
	InfluxDB  InfluxDBConfig  `yaml:"influxdb"`
	DM        DMConfig        `yaml:"dm"`
	API       APIConfig       `yaml:"api"`
	WebSocket WebSocketConfig `yaml:"websocket"`
	RunCycle  RunCycleConfig  `yaml:"run_cycle"`
	Logging   LoggingConfig   `yaml:"logging"`
}

// StationConfig identifies the beamline station this process serves.
type StationConfig struct {
	ID       string `yaml:"id"`
	Name     string `yaml:"name"`
	Sector   string `yaml:"sector"`
	Timezone string `yaml:"timezone"`
}

// EPICSConfig contains Channel Access client settings.
//
// The transport itself lives behind the epics.Conn interface; these values
// tune whichever implementation is wired in.
type EPICSConfig struct {
	// Prefix is the station-wide PV prefix prepended to device prefixes
	// when non-empty (e.g., "8idi:").
	Prefix string `yaml:"prefix"`

	// GetTimeout is the timeout for a single PV read (seconds).
	GetTimeout int `yaml:"get_timeout"`

	// PutTimeout is the timeout for a put-with-completion (seconds).
	PutTimeout int `yaml:"put_timeout"`
}

// DatabaseConfig contains SQLite document-store settings.
type DatabaseConfig struct {
	Path        string `yaml:"path"`
	WALMode     bool   `yaml:"wal_mode"`
	BusyTimeout int    `yaml:"busy_timeout"`
}

// MQTTConfig contains status-bus broker connection settings.
type MQTTConfig struct {
	Enabled   bool                `yaml:"enabled"`
	Broker    MQTTBrokerConfig    `yaml:"broker"`
	Auth      MQTTAuthConfig      `yaml:"auth"`
	QoS       int                 `yaml:"qos"`
	Reconnect MQTTReconnectConfig `yaml:"reconnect"`
}

// MQTTBrokerConfig contains MQTT broker connection details.
type MQTTBrokerConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	TLS      bool   `yaml:"tls"`
	ClientID string `yaml:"client_id"`
}

// MQTTAuthConfig contains MQTT authentication credentials.
type MQTTAuthConfig struct {
	Username string `yaml:"username"`
	Password string `yaml:"password"`
}

// MQTTReconnectConfig contains MQTT reconnection settings.
type MQTTReconnectConfig struct {
	InitialDelay int `yaml:"initial_delay"`
	MaxDelay     int `yaml:"max_delay"`
	MaxAttempts  int `yaml:"max_attempts"`
}

// InfluxDBConfig contains PV-archiver sink settings.
type InfluxDBConfig struct {
	Enabled       bool   `yaml:"enabled"`
	URL           string `yaml:"url"`
	Token         string `yaml:"token"`
	Org           string `yaml:"org"`
	Bucket        string `yaml:"bucket"`
	BatchSize     int    `yaml:"batch_size"`
	FlushInterval int    `yaml:"flush_interval"`
}

// DMConfig contains APS Data Management workflow API settings.
type DMConfig struct {
	// URL is the base URL of the DM workflow owner API.
	URL string `yaml:"url"`

	// StationKey authenticates this station to the DM API.
	// Always set via BEAMTOOLS_DM_STATION_KEY in production.
	StationKey string `yaml:"station_key"`

	// WorkflowOwner is the DM account that owns submitted workflows.
	WorkflowOwner string `yaml:"workflow_owner"`

	// PollPeriod is the job status polling period (seconds).
	PollPeriod int `yaml:"poll_period"`

	// ReportPeriod is how often progress is reported while a job runs (seconds).
	ReportPeriod int `yaml:"report_period"`

	// Timeout is the per-job deadline after which monitoring stops (seconds).
	// Zero means no deadline.
	Timeout int `yaml:"timeout"`
}

// APIConfig contains HTTP status API server settings.
type APIConfig struct {
	Host     string           `yaml:"host"`
	Port     int              `yaml:"port"`
	TLS      TLSConfig        `yaml:"tls"`
	Timeouts APITimeoutConfig `yaml:"timeouts"`
}

// TLSConfig contains TLS certificate settings.
type TLSConfig struct {
	Enabled  bool   `yaml:"enabled"`
	CertFile string `yaml:"cert_file"`
	KeyFile  string `yaml:"key_file"`
}

// APITimeoutConfig contains HTTP timeout settings.
type APITimeoutConfig struct {
	Read  int `yaml:"read"`
	Write int `yaml:"write"`
	Idle  int `yaml:"idle"`
}

// WebSocketConfig contains WebSocket event-stream settings.
type WebSocketConfig struct {
	Path           string `yaml:"path"`
	MaxMessageSize int    `yaml:"max_message_size"`
	PingInterval   int    `yaml:"ping_interval"`
	PongTimeout    int    `yaml:"pong_timeout"`
}

// RunCycleConfig locates the facility run-cycle table.
type RunCycleConfig struct {
	// Path is the YAML file holding named run cycles with date ranges.
	Path string `yaml:"path"`
}

// LoggingConfig contains logging settings.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	Output string `yaml:"output"`
}

// Load reads configuration from a YAML file and applies environment variable overrides.
//
// The configuration loading order is:
//  1. Default values (hardcoded)
//  2. YAML file values (override defaults)
//  3. Environment variables (override file values)
//
// Environment variables follow the pattern: BEAMTOOLS_SECTION_KEY
// For example: BEAMTOOLS_DATABASE_PATH, BEAMTOOLS_DM_STATION_KEY
//
// Parameters:
//   - path: Path to the YAML configuration file
//
// Returns:
//   - *Config: Loaded and validated configuration
//   - error: If file cannot be read, parsed, or validation fails
func Load(path string) (*Config, error) {
	// Start with defaults
	cfg := defaultConfig()

	// Read and parse YAML file
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	// Apply environment variable overrides
	applyEnvOverrides(cfg)

	// Validate configuration
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

// defaultConfig returns a Config with sensible defaults.
func defaultConfig() *Config {
	return &Config{
		Station: StationConfig{
			ID:       "station-001",
			Name:     "beamtools",
			Timezone: "America/Chicago",
		},
		EPICS: EPICSConfig{
			GetTimeout: 5,
			PutTimeout: 10,
		},
		Database: DatabaseConfig{
			Path:        "./data/beamtools.db",
			WALMode:     true,
			BusyTimeout: 5,
		},
		MQTT: MQTTConfig{
			Broker: MQTTBrokerConfig{
				Host:     "localhost",
				Port:     1883,
				ClientID: "beamtools-core",
			},
			QoS: 1,
			Reconnect: MQTTReconnectConfig{
				InitialDelay: 1,
				MaxDelay:     60,
				MaxAttempts:  0,
			},
		},
		DM: DMConfig{
			PollPeriod:   10,
			ReportPeriod: 60,
			Timeout:      0,
		},
		API: APIConfig{
			Host: "0.0.0.0",
			Port: 8080,
			Timeouts: APITimeoutConfig{
				Read:  30,
				Write: 30,
				Idle:  60,
			},
		},
		WebSocket: WebSocketConfig{
			Path:           "/ws",
			MaxMessageSize: 8192,
			PingInterval:   30,
			PongTimeout:    10,
		},
		RunCycle: RunCycleConfig{
			Path: "./data/run_cycles.yml",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Output: "stdout",
		},
	}
}

// applyEnvOverrides applies environment variable overrides to the configuration.
// Environment variables follow the pattern: BEAMTOOLS_SECTION_KEY
func applyEnvOverrides(cfg *Config) {
	// Database
	if v := os.Getenv("BEAMTOOLS_DATABASE_PATH"); v != "" {
		cfg.Database.Path = v
	}

	// MQTT
	if v := os.Getenv("BEAMTOOLS_MQTT_HOST"); v != "" {
		cfg.MQTT.Broker.Host = v
	}
	if v := os.Getenv("BEAMTOOLS_MQTT_USERNAME"); v != "" {
		cfg.MQTT.Auth.Username = v
	}
	if v := os.Getenv("BEAMTOOLS_MQTT_PASSWORD"); v != "" {
		cfg.MQTT.Auth.Password = v
	}

	// API
	if v := os.Getenv("BEAMTOOLS_API_HOST"); v != "" {
		cfg.API.Host = v
	}

	// InfluxDB
	if v := os.Getenv("BEAMTOOLS_INFLUXDB_TOKEN"); v != "" {
		cfg.InfluxDB.Token = v
	}

	// DM station key (never commit this to a config file)
	if v := os.Getenv("BEAMTOOLS_DM_STATION_KEY"); v != "" {
		cfg.DM.StationKey = v
	}
}

// Validate checks the configuration for errors.
//
// Returns:
//   - error: Description of validation failure, or nil if valid
func (c *Config) Validate() error {
	var errs []string

	// Station validation
	if c.Station.ID == "" {
		errs = append(errs, "station.id is required")
	}

	// EPICS validation
	if c.EPICS.GetTimeout <= 0 {
		errs = append(errs, "epics.get_timeout must be positive")
	}
	if c.EPICS.PutTimeout <= 0 {
		errs = append(errs, "epics.put_timeout must be positive")
	}

	// Database validation
	if c.Database.Path == "" {
		errs = append(errs, "database.path is required")
	}

	// MQTT validation
	if c.MQTT.QoS < 0 || c.MQTT.QoS > 2 {
		errs = append(errs, "mqtt.qos must be 0, 1, or 2")
	}

	// DM validation
	if c.DM.URL != "" && c.DM.PollPeriod <= 0 {
		errs = append(errs, "dm.poll_period must be positive when dm.url is set")
	}

	// API validation
	if c.API.Port < 1 || c.API.Port > 65535 {
		errs = append(errs, "api.port must be between 1 and 65535")
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration errors: %s", strings.Join(errs, "; "))
	}

	return nil
}

// Timeout returns the EPICS read timeout as a Duration.
func (c *EPICSConfig) Timeout() time.Duration {
	return time.Duration(c.GetTimeout) * time.Second
}

// PutCompletionTimeout returns the EPICS put-with-completion timeout as a Duration.
func (c *EPICSConfig) PutCompletionTimeout() time.Duration {
	return time.Duration(c.PutTimeout) * time.Second
}

// GetReadTimeout returns the API read timeout as a Duration.
func (c *Config) GetReadTimeout() time.Duration {
	return time.Duration(c.API.Timeouts.Read) * time.Second
}

// GetWriteTimeout returns the API write timeout as a Duration.
func (c *Config) GetWriteTimeout() time.Duration {
	return time.Duration(c.API.Timeouts.Write) * time.Second
}

// GetIdleTimeout returns the API idle timeout as a Duration.
func (c *Config) GetIdleTimeout() time.Duration {
	return time.Duration(c.API.Timeouts.Idle) * time.Second
}
