// beamtoold - Beamline status and document daemon
//
// This is the station-side companion process for the beamtools library.
// It owns the shared infrastructure that in-process acquisition code and
// external dashboards both rely on:
//   - SQLite document store (resources, datums, workflow audit trail)
//   - MQTT status bus (device state, DM progress, station lifecycle)
//   - InfluxDB archiver (telemetry history)
//   - Read-only HTTP/WebSocket status API
//
// It never commands hardware. EPICS Channel Access is the only control
// path, and that lives in the acquisition processes that link beamtools
// directly.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/BCDA-APS/beamtools/migrations"

	"github.com/BCDA-APS/beamtools/internal/api"
	"github.com/BCDA-APS/beamtools/internal/device"
	"github.com/BCDA-APS/beamtools/internal/dm"
	"github.com/BCDA-APS/beamtools/internal/infrastructure/archiver"
	"github.com/BCDA-APS/beamtools/internal/infrastructure/config"
	"github.com/BCDA-APS/beamtools/internal/infrastructure/database"
	"github.com/BCDA-APS/beamtools/internal/infrastructure/logging"
	"github.com/BCDA-APS/beamtools/internal/infrastructure/mqtt"
	"github.com/BCDA-APS/beamtools/internal/runcycle"
)

// Version information - set at build time via ldflags
// Example: go build -ldflags "-X main.version=1.0.0 -X main.commit=abc123"
var (
	version = "dev"     // Semantic version (e.g., "1.0.0")
	commit  = "unknown" // Git commit hash
	date    = "unknown" // Build date
)

// Default configuration file path
const defaultConfigPath = "configs/config.yaml"

// deviceSweepInterval is how often registered devices are read and their
// state published to the status bus and archiver.
const deviceSweepInterval = 30 * time.Second

func main() {
	// Create a context that cancels on interrupt signals (Ctrl+C, SIGTERM)
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// run is the actual application logic, separated from main for testability.
// Returning an error allows main to handle exit codes consistently.
func run(ctx context.Context) error {
	// Use default logger until config is loaded
	log := logging.Default()
	log.Info("starting beamtoold",
		"version", version,
		"commit", commit,
		"build_date", date,
	)

	// Load configuration
	configPath := getConfigPath()
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	log.Info("configuration loaded", "path", configPath, "station", cfg.Station.ID)

	// Reinitialise logger with config settings
	log = logging.New(cfg.Logging, version)
	log.Info("logger initialised",
		"level", cfg.Logging.Level,
		"format", cfg.Logging.Format,
	)

	// Open document store
	db, err := database.Open(database.Config{
		Path:        cfg.Database.Path,
		WALMode:     cfg.Database.WALMode,
		BusyTimeout: cfg.Database.BusyTimeout,
	})
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer func() {
		log.Info("closing database")
		if closeErr := db.Close(); closeErr != nil {
			log.Error("error closing database", "error", closeErr)
		}
	}()
	log.Info("database connected", "path", cfg.Database.Path)

	if migrateErr := db.Migrate(ctx); migrateErr != nil {
		return fmt.Errorf("running migrations: %w", migrateErr)
	}
	log.Info("database migrations complete")

	// Workflow audit store backs the /workflows API route and receives
	// updates from any in-process DM connector sharing this database.
	jobStore := dm.NewSQLiteStore(db.DB)

	// Device registry. Acquisition code linking beamtools registers its
	// devices here; the daemon itself constructs none.
	registry := device.NewRegistry()
	registry.SetLogger(log)

	// Status bus topics for this station
	topics := mqtt.NewTopics(cfg.Station.ID)

	// Connect to MQTT broker (optional)
	var mqttClient *mqtt.Client
	if cfg.MQTT.Enabled {
		mqttClient, err = mqtt.Connect(cfg.MQTT, topics)
		if err != nil {
			return fmt.Errorf("connecting to MQTT: %w", err)
		}
		defer func() {
			log.Info("disconnecting from MQTT")
			if closeErr := mqttClient.Close(); closeErr != nil {
				log.Error("error closing MQTT", "error", closeErr)
			}
		}()
		log.Info("MQTT connected",
			"broker", fmt.Sprintf("%s:%d", cfg.MQTT.Broker.Host, cfg.MQTT.Broker.Port),
			"client_id", cfg.MQTT.Broker.ClientID,
		)

		mqttClient.SetOnConnect(func() {
			log.Info("MQTT reconnected")
		})
		mqttClient.SetOnDisconnect(func(err error) {
			log.Warn("MQTT disconnected", "error", err)
		})
	} else {
		log.Info("MQTT disabled")
	}

	// Connect to the archiver (optional)
	var archive *archiver.Client
	if cfg.InfluxDB.Enabled {
		archive, err = archiver.Connect(cfg.InfluxDB, cfg.Station.ID)
		if err != nil {
			return fmt.Errorf("connecting to archiver: %w", err)
		}
		defer func() {
			log.Info("closing archiver connection")
			if closeErr := archive.Close(); closeErr != nil {
				log.Error("error closing archiver", "error", closeErr)
			}
		}()
		log.Info("archiver connected",
			"url", cfg.InfluxDB.URL,
			"org", cfg.InfluxDB.Org,
			"bucket", cfg.InfluxDB.Bucket,
		)

		archive.SetOnError(func(err error) {
			log.Error("archiver write error", "error", err)
		})
	} else {
		log.Info("archiver disabled")
	}

	// DM workflow connector (optional). Acquisition code retrieves it to
	// submit jobs; progress fans out to the status bus and archiver.
	if cfg.DM.URL != "" {
		connector := dm.NewConnector(dm.NewClient(cfg.DM), cfg.DM)
		connector.SetLogger(log)
		connector.SetStore(jobStore)
		connector.OnProgress(func(job dm.Job) {
			if mqttClient != nil {
				payload, err := json.Marshal(job)
				if err != nil {
					log.Error("marshalling workflow job", "job_id", job.ID, "error", err)
					return
				}
				if err := mqttClient.Publish(topics.WorkflowStatus(job.ID), payload, byte(cfg.MQTT.QoS), false); err != nil {
					log.Warn("publishing workflow status", "job_id", job.ID, "error", err)
				}
			}
			if archive != nil {
				archive.WriteWorkflowEvent(job.ID, job.Workflow, job.Status, job.Stage)
			}
		})
		defer func() {
			connector.Stop()
			waitCtx, waitCancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer waitCancel()
			if waitErr := connector.Wait(waitCtx); waitErr != nil {
				log.Warn("DM connector did not stop cleanly", "error", waitErr)
			}
		}()
		log.Info("DM connector ready", "url", cfg.DM.URL, "owner", cfg.DM.WorkflowOwner)
	} else {
		log.Info("DM connector disabled")
	}

	// Load the run-cycle table. Missing table is not fatal; the API
	// reports it as unconfigured.
	var cycles *runcycle.Table
	if cfg.RunCycle.Path != "" {
		cycles, err = runcycle.Load(cfg.RunCycle.Path)
		if err != nil {
			log.Warn("run-cycle table unavailable", "path", cfg.RunCycle.Path, "error", err)
			cycles = nil
		} else {
			log.Info("run-cycle table loaded", "path", cfg.RunCycle.Path, "cycles", len(cycles.Cycles()))
		}
	}

	// Start the status API
	server, err := api.New(api.Deps{
		Config:    cfg.API,
		WS:        cfg.WebSocket,
		Logger:    log,
		Registry:  registry,
		RunCycles: cycles,
		Jobs:      jobStore,
		MQTT:      mqttClient,
		Topics:    topics,
		Version:   version,
	})
	if err != nil {
		return fmt.Errorf("creating API server: %w", err)
	}
	if err := server.Start(ctx); err != nil {
		return fmt.Errorf("starting API server: %w", err)
	}
	defer func() {
		log.Info("stopping API server")
		if closeErr := server.Close(); closeErr != nil {
			log.Error("error closing API server", "error", closeErr)
		}
	}()
	log.Info("API server started", "address", fmt.Sprintf("%s:%d", cfg.API.Host, cfg.API.Port))

	// Periodic device state sweep
	go sweepDevices(ctx, registry, topics, mqttClient, archive, log)

	// Verify all connections are healthy
	if err := healthCheck(ctx, db, mqttClient, archive); err != nil {
		return fmt.Errorf("health check failed: %w", err)
	}
	log.Info("all health checks passed")

	log.Info("initialisation complete, waiting for shutdown signal")

	// Wait for shutdown signal
	<-ctx.Done()

	log.Info("shutdown signal received, cleaning up")

	// Deferred Close() calls run in reverse order:
	// 1. API server
	// 2. Archiver (if enabled)
	// 3. MQTT
	// 4. Database

	log.Info("beamtoold stopped")
	return nil
}

// getConfigPath returns the configuration file path.
// Uses BEAMTOOLS_CONFIG environment variable if set, otherwise default.
func getConfigPath() string {
	if path := os.Getenv("BEAMTOOLS_CONFIG"); path != "" {
		return path
	}
	return defaultConfigPath
}

// sweepDevices periodically reads every registered device and fans the
// snapshots out to the status bus and the archiver. One slow or faulted
// device delays but never aborts the sweep.
func sweepDevices(ctx context.Context, registry *device.Registry, topics mqtt.Topics,
	mqttClient *mqtt.Client, archive *archiver.Client, log *logging.Logger,
) {
	ticker := time.NewTicker(deviceSweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}

		snapshots := registry.SnapshotAll(ctx)
		for _, snap := range snapshots {
			if mqttClient != nil {
				payload, err := json.Marshal(snap)
				if err != nil {
					log.Error("marshalling device snapshot", "device", snap.Name, "error", err)
					continue
				}
				if err := mqttClient.PublishRetained(topics.DeviceState(snap.Name), payload); err != nil {
					log.Warn("publishing device state", "device", snap.Name, "error", err)
				}
			}
			if archive != nil && snap.Error == "" {
				archive.WriteDeviceState(snap.Name, snap.State)
			}
		}
		if len(snapshots) > 0 {
			log.Debug("device sweep complete", "devices", len(snapshots))
		}
	}
}

// healthCheck verifies all infrastructure connections are healthy.
// Optional clients may be nil when disabled.
func healthCheck(ctx context.Context, db *database.DB, mqttClient *mqtt.Client, archive *archiver.Client) error {
	if err := db.HealthCheck(ctx); err != nil {
		return fmt.Errorf("database: %w", err)
	}

	if mqttClient != nil {
		if err := mqttClient.HealthCheck(ctx); err != nil {
			return fmt.Errorf("mqtt: %w", err)
		}
	}

	if archive != nil {
		if err := archive.HealthCheck(ctx); err != nil {
			return fmt.Errorf("archiver: %w", err)
		}
	}

	return nil
}
