// daikinthing - Daikin climate appliance synchronization service
//
// daikinthing mirrors the local state of Daikin air conditioning units
// into MQTT things: each appliance is polled over its WiFi adapter's
// HTTP API and exposed as observable properties (temperatures, mode,
// power) that consumers can watch and write.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/KaiRo-at/daikinthing/internal/api"
	"github.com/KaiRo-at/daikinthing/internal/daikin"
	"github.com/KaiRo-at/daikinthing/internal/history"
	"github.com/KaiRo-at/daikinthing/internal/infrastructure/config"
	"github.com/KaiRo-at/daikinthing/internal/infrastructure/database"
	"github.com/KaiRo-at/daikinthing/internal/infrastructure/influxdb"
	"github.com/KaiRo-at/daikinthing/internal/infrastructure/logging"
	"github.com/KaiRo-at/daikinthing/internal/infrastructure/mqtt"
	"github.com/KaiRo-at/daikinthing/internal/sink"
	"github.com/KaiRo-at/daikinthing/internal/telemetry"
	"github.com/KaiRo-at/daikinthing/internal/thing"
)

// Version information - set at build time via ldflags
// Example: go build -ldflags "-X main.version=1.0.0 -X main.commit=abc123"
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

// Default configuration file path
const defaultConfigPath = "configs/config.yaml"

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// run is the actual application logic, separated from main for
// testability. Returning an error lets main handle exit codes
// consistently.
func run(ctx context.Context) error {
	// Use default logger until config is loaded
	log := logging.Default()
	log.Info("starting daikinthing",
		"version", version,
		"commit", commit,
		"build_date", date,
	)

	configPath := getConfigPath()
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	log.Info("configuration loaded", "path", configPath, "appliances", len(cfg.Appliances))

	// Reinitialise logger with config settings
	log = logging.New(cfg.Logging, version)

	// Open database for reading history
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

	readings := history.NewRepository(db.DB)
	if err := readings.Init(ctx); err != nil {
		return fmt.Errorf("initialising readings schema: %w", err)
	}
	if retention := cfg.GetRetention(); retention > 0 {
		go readings.RunPruner(ctx, retention, log)
		log.Info("reading history retention enabled",
			"retention_days", cfg.Database.RetentionDays)
	}

	// Connect to MQTT broker
	mqttClient, err := mqtt.Connect(cfg.MQTT)
	if err != nil {
		return fmt.Errorf("connecting to MQTT: %w", err)
	}
	defer func() {
		log.Info("disconnecting from MQTT")
		if closeErr := mqttClient.Close(); closeErr != nil {
			log.Error("error closing MQTT", "error", closeErr)
		}
	}()
	mqttClient.SetLogger(log)
	mqttClient.SetOnConnect(func() {
		log.Info("MQTT reconnected")
	})
	mqttClient.SetOnDisconnect(func(err error) {
		log.Warn("MQTT disconnected", "error", err)
	})
	log.Info("MQTT connected",
		"broker", fmt.Sprintf("%s:%d", cfg.MQTT.Broker.Host, cfg.MQTT.Broker.Port),
		"client_id", cfg.MQTT.Broker.ClientID,
	)

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
		influxClient.SetOnError(func(err error) {
			log.Error("InfluxDB write error", "error", err)
		})
		log.Info("InfluxDB connected",
			"url", cfg.InfluxDB.URL,
			"org", cfg.InfluxDB.Org,
			"bucket", cfg.InfluxDB.Bucket,
		)
	} else {
		log.Info("InfluxDB disabled")
	}

	// Build the property sink and the fleet of sync loops
	propertySink := sink.New(mqttClient, byte(cfg.MQTT.QoS), log)
	recorder := telemetry.NewRecorder(readings, influxClient, log)
	fleet := thing.NewFleet(propertySink, log)

	factory := func(address string) thing.Client {
		return daikin.NewClient(address)
	}

	for _, appliance := range cfg.Appliances {
		roles := []thing.Role{thing.RoleIndoorUnit}
		if appliance.Condenser {
			roles = append(roles, thing.RoleCondenser)
		}
		for _, role := range roles {
			loop, loopErr := thing.NewSyncLoop(ctx, thing.LoopOptions{
				Address:  appliance.Address,
				Role:     role,
				Interval: cfg.GetPollInterval(),
				Factory:  factory,
				Sink:     propertySink,
				Recorder: recorder,
				Logger:   log,
			})
			if loopErr != nil {
				// Fatal to this loop only; siblings still run.
				log.Error("skipping appliance",
					"address", appliance.Address,
					"role", string(role),
					"error", loopErr)
				continue
			}
			fleet.Register(loop)
		}
	}

	if len(fleet.Loops()) == 0 {
		return fmt.Errorf("no configured appliance could be identified")
	}

	if err := fleet.StartAll(); err != nil {
		fleet.Shutdown()
		return fmt.Errorf("starting sync loops: %w", err)
	}
	defer func() {
		log.Info("stopping sync loops")
		fleet.Shutdown()
	}()

	// Start the status API (optional)
	if cfg.API.Enabled {
		server, apiErr := api.New(api.Deps{
			Config:   cfg.API,
			Logger:   log,
			Fleet:    fleet,
			Readings: readings,
			Version:  version,
		})
		if apiErr != nil {
			return fmt.Errorf("creating API server: %w", apiErr)
		}
		if apiErr := server.Start(); apiErr != nil {
			return fmt.Errorf("starting API server: %w", apiErr)
		}
		defer func() {
			if closeErr := server.Close(); closeErr != nil {
				log.Error("error closing API server", "error", closeErr)
			}
		}()
	} else {
		log.Info("status API disabled")
	}

	log.Info("initialisation complete, waiting for shutdown signal")

	<-ctx.Done()

	log.Info("shutdown signal received, cleaning up")

	// Deferred cleanup runs in reverse order:
	// 1. API server
	// 2. Sync loops, then the property sink
	// 3. InfluxDB (if enabled)
	// 4. MQTT
	// 5. Database

	log.Info("daikinthing stopped")
	return nil
}

// getConfigPath returns the configuration file path.
// Uses the DAIKINTHING_CONFIG environment variable if set, otherwise
// the default.
func getConfigPath() string {
	if path := os.Getenv("DAIKINTHING_CONFIG"); path != "" {
		return path
	}
	return defaultConfigPath
}
