// MeshLink Core - LoRa Mesh Network Management
//
// This is the main entry point for the MeshLink Core service. MeshLink
// manages the persisted configuration of mesh radio nodes and the
// telemetry they report through LoRa gateways:
//   - Per-node configuration with serialised, atomic mutations
//   - Retained MQTT publication of configuration for gateway pickup
//   - Dual-sink logging (live console + durable SQLite debug log)
//   - Time-series telemetry recording in InfluxDB
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/dmweir/meshlink-core/migrations"

	"github.com/dmweir/meshlink-core/internal/api"
	"github.com/dmweir/meshlink-core/internal/debuglog"
	"github.com/dmweir/meshlink-core/internal/infrastructure/config"
	"github.com/dmweir/meshlink-core/internal/infrastructure/database"
	"github.com/dmweir/meshlink-core/internal/infrastructure/influxdb"
	"github.com/dmweir/meshlink-core/internal/infrastructure/logging"
	"github.com/dmweir/meshlink-core/internal/infrastructure/mqtt"
	"github.com/dmweir/meshlink-core/internal/node"
	"github.com/dmweir/meshlink-core/internal/telemetry"
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

// prunePeriod is how often the debug log retention check runs.
const prunePeriod = time.Hour

func main() {
	// Create a context that cancels on interrupt signals (Ctrl+C, SIGTERM)
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// configObserver fans a successful configuration mutation out to the
// WebSocket hub and the retained MQTT config topic. Registered as the
// mutator's observer.
type configObserver struct {
	hub  *api.Hub
	mqtt *mqtt.Client
	log  *debuglog.Logger
}

func (o *configObserver) ConfigUpdated(cfg *node.Config) {
	if o.hub != nil {
		o.hub.ConfigUpdated(cfg)
	}
	if o.mqtt != nil {
		if err := o.mqtt.PublishNodeConfig(cfg); err != nil {
			o.log.Warning("failed to publish node config", "node_id", cfg.ID, "error", err)
		}
	}
}

// run is the actual application logic, separated from main for testability.
// Returning an error allows main to handle exit codes consistently.
//
// Parameters:
//   - ctx: Context for cancellation and shutdown signals
//
// Returns:
//   - error: nil on clean shutdown, or error describing failure
func run(ctx context.Context) error { //nolint:gocognit // Linear startup wiring
	// Use default logger until config is loaded
	log := logging.Default()
	log.Info("starting MeshLink Core",
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
	log.Info("configuration loaded", "path", configPath)

	// Reinitialise logger with config settings
	log = logging.New(cfg.Logging, version)
	log.Info("logger initialised",
		"level", cfg.Logging.Level,
		"format", cfg.Logging.Format,
	)

	// Open database
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

	// Run migrations
	if migrateErr := db.Migrate(ctx); migrateErr != nil {
		return fmt.Errorf("running migrations: %w", migrateErr)
	}
	log.Info("database migrations complete")

	// Connect to MQTT broker (optional)
	var mqttClient *mqtt.Client
	if cfg.MQTT.Enabled {
		mqttClient, err = mqtt.Connect(cfg.MQTT)
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

		mqttClient.SetLogger(log)
		mqttClient.SetOnConnect(func() {
			log.Info("MQTT reconnected")
		})
		mqttClient.SetOnDisconnect(func(err error) {
			log.Warn("MQTT disconnected", "error", err)
		})
	} else {
		log.Info("MQTT disabled")
	}

	// Connect to InfluxDB (optional)
	var influxClient *influxdb.Client
	if cfg.InfluxDB.Enabled {
		influxClient, err = influxdb.Connect(cfg.InfluxDB)
		if err != nil {
			return fmt.Errorf("connecting to InfluxDB: %w", err)
		}
		defer func() {
			log.Info("closing InfluxDB connection")
			if closeErr := influxClient.Close(); closeErr != nil {
				log.Error("error closing InfluxDB", "error", closeErr)
			}
		}()
		log.Info("InfluxDB connected",
			"url", cfg.InfluxDB.URL,
			"org", cfg.InfluxDB.Org,
			"bucket", cfg.InfluxDB.Bucket,
		)

		influxClient.SetOnError(func(err error) {
			log.Error("InfluxDB write error", "error", err)
		})
	} else {
		log.Info("InfluxDB disabled")
	}

	// Start the durable debug log buffer and bind it process-wide so
	// every debuglog.Logger gains the durable sink.
	logRepo := debuglog.NewSQLiteRepository(db.DB)

	var logSink debuglog.TelemetrySink
	if influxClient != nil {
		logSink = influxClient
	}
	buffer := debuglog.NewBuffer(logRepo, debuglog.Options{
		FlushInterval: cfg.GetDebugLogFlushInterval(),
		BatchSize:     cfg.DebugLog.BatchSize,
		Sink:          logSink,
		Logger:        log,
	})
	debuglog.Bind(buffer)
	// The buffer gets its own cancellable context: on an error return
	// the parent signal context is still live, and Close waits for the
	// Run loop, which only exits once its context is cancelled.
	bufCtx, bufCancel := context.WithCancel(ctx)
	go buffer.Run(bufCtx)
	defer func() {
		log.Info("draining debug log buffer")
		bufCancel()
		buffer.Close()
	}()
	log.Info("debug log buffer started",
		"flush_interval", cfg.GetDebugLogFlushInterval(),
		"batch_size", cfg.DebugLog.BatchSize,
	)

	// Prune old debug log events on a slow cycle
	if retention := cfg.GetDebugLogRetention(); retention > 0 {
		go pruneLoop(ctx, logRepo, retention, log)
	}

	// Initialise node store and mutator
	store := node.NewSQLiteStore(db.DB)
	mutator := node.NewMutator(store, cfg.Nodes.StrictBatteryCurve)
	mutator.SetLogger(debuglog.New(log.Logger, "node", "mutator"))
	log.Info("node mutator initialised", "strict_battery_curve", cfg.Nodes.StrictBatteryCurve)

	// WebSocket hub is created up front so it can observe config updates
	hub := api.NewHub(cfg.WebSocket, log)
	go hub.Run(ctx)

	mutator.SetObserver(&configObserver{
		hub:  hub,
		mqtt: mqttClient,
		log:  debuglog.New(log.Logger, "node", "observer"),
	})

	// Start telemetry collector (requires MQTT)
	if mqttClient != nil {
		var writer telemetry.Writer
		if influxClient != nil {
			writer = influxClient
		}
		collector := telemetry.New(mqttClient, writer,
			debuglog.New(log.Logger, "telemetry", "collector"),
			byte(cfg.MQTT.QoS), //nolint:gosec // QoS validated to 0..2 by config
		)
		if startErr := collector.Start(); startErr != nil {
			return fmt.Errorf("starting telemetry collector: %w", startErr)
		}
		defer func() {
			log.Info("stopping telemetry collector")
			if stopErr := collector.Stop(); stopErr != nil {
				log.Warn("error stopping telemetry collector", "error", stopErr)
			}
		}()
	}

	// Start API server
	server, err := api.New(api.Deps{
		Config:      cfg.API,
		WS:          cfg.WebSocket,
		Logger:      log,
		Store:       store,
		Mutator:     mutator,
		Logs:        logRepo,
		DB:          db,
		ExternalHub: hub,
		Version:     version,
	})
	if err != nil {
		return fmt.Errorf("creating API server: %w", err)
	}
	if startErr := server.Start(ctx); startErr != nil {
		return fmt.Errorf("starting API server: %w", startErr)
	}
	defer func() {
		if closeErr := server.Close(); closeErr != nil {
			log.Error("error closing API server", "error", closeErr)
		}
	}()

	// Verify all connections are healthy
	if err := healthCheck(ctx, db, mqttClient, influxClient); err != nil {
		return fmt.Errorf("health check failed: %w", err)
	}
	log.Info("all health checks passed")

	log.Info("initialisation complete, waiting for shutdown signal")

	// Wait for shutdown signal
	<-ctx.Done()

	log.Info("shutdown signal received, cleaning up")

	// Deferred Close() calls run in reverse order:
	// API server, telemetry collector, debug log buffer, InfluxDB,
	// MQTT, database.

	log.Info("MeshLink Core stopped")
	return nil
}

// getConfigPath returns the configuration file path.
// Uses MESHLINK_CONFIG environment variable if set, otherwise default.
func getConfigPath() string {
	if path := os.Getenv("MESHLINK_CONFIG"); path != "" {
		return path
	}
	return defaultConfigPath
}

// pruneLoop deletes debug log events older than the retention period.
func pruneLoop(ctx context.Context, repo debuglog.Repository, retention time.Duration, log *logging.Logger) {
	ticker := time.NewTicker(prunePeriod)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			deleted, err := repo.Prune(ctx, retention)
			if err != nil {
				log.Warn("debug log prune failed", "error", err)
				continue
			}
			if deleted > 0 {
				log.Debug("debug log pruned", "deleted", deleted)
			}
		}
	}
}

// healthCheck verifies all infrastructure connections are healthy.
//
// Parameters:
//   - ctx: Context for timeout/cancellation
//   - db: Database connection to check
//   - mqttClient: MQTT client to check (may be nil if disabled)
//   - influxClient: InfluxDB client to check (may be nil if disabled)
//
// Returns:
//   - error: First health check failure, or nil if all healthy
func healthCheck(ctx context.Context, db *database.DB, mqttClient *mqtt.Client, influxClient *influxdb.Client) error {
	if err := db.HealthCheck(ctx); err != nil {
		return fmt.Errorf("database: %w", err)
	}

	if mqttClient != nil {
		if err := mqttClient.HealthCheck(ctx); err != nil {
			return fmt.Errorf("mqtt: %w", err)
		}
	}

	if influxClient != nil {
		if err := influxClient.HealthCheck(ctx); err != nil {
			return fmt.Errorf("influxdb: %w", err)
		}
	}

	return nil
}
