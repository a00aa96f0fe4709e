package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the root configuration structure for daikinthing.
// All configuration is loaded from YAML and can be overridden by environment variables.
type Config struct {
	Site       SiteConfig        `yaml:"site"`
	Appliances []ApplianceConfig `yaml:"appliances"`
	Sync       SyncConfig        `yaml:"sync"`
	Database   DatabaseConfig    `yaml:"database"`
	MQTT       MQTTConfig        `yaml:"mqtt"`
	InfluxDB   InfluxDBConfig    `yaml:"influxdb"`
	API        APIConfig         `yaml:"api"`
	Logging    LoggingConfig     `yaml:"logging"`
}

// SiteConfig contains site-specific information.
type SiteConfig struct {
	ID   string `yaml:"id"`
	Name string `yaml:"name"`
}

// ApplianceConfig describes one physical Daikin unit to synchronise.
//
// Each appliance always gets an indoor-unit sync loop. At most one
// appliance per site should set Condenser, which adds a second loop
// mirroring the outside temperature reported through that unit.
type ApplianceConfig struct {
	// Address is the IP address or hostname of the unit's WiFi adapter.
	Address string `yaml:"address"`

	// Condenser adds a condenser-unit loop for this address.
	Condenser bool `yaml:"condenser"`
}

// SyncConfig contains device polling settings.
type SyncConfig struct {
	// PollInterval is the time between polls of each appliance, in seconds.
	PollInterval int `yaml:"poll_interval"`
}

// DatabaseConfig contains SQLite database settings.
type DatabaseConfig struct {
	Path        string `yaml:"path"`
	WALMode     bool   `yaml:"wal_mode"`
	BusyTimeout int    `yaml:"busy_timeout"`

	// RetentionDays is how long poll readings are kept before the
	// daily prune removes them. Zero disables pruning.
	RetentionDays int `yaml:"retention_days"`
}

// MQTTConfig contains MQTT broker connection settings.
type MQTTConfig struct {
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

// InfluxDBConfig contains InfluxDB connection settings.
type InfluxDBConfig struct {
	Enabled       bool   `yaml:"enabled"`
	URL           string `yaml:"url"`
	Token         string `yaml:"token"`
	Org           string `yaml:"org"`
	Bucket        string `yaml:"bucket"`
	BatchSize     int    `yaml:"batch_size"`
	FlushInterval int    `yaml:"flush_interval"`
}

// APIConfig contains HTTP status API settings.
type APIConfig struct {
	Enabled  bool             `yaml:"enabled"`
	Host     string           `yaml:"host"`
	Port     int              `yaml:"port"`
	Timeouts APITimeoutConfig `yaml:"timeouts"`
}

// APITimeoutConfig contains HTTP timeout settings.
type APITimeoutConfig struct {
	Read  int `yaml:"read"`
	Write int `yaml:"write"`
	Idle  int `yaml:"idle"`
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
// Environment variables follow the pattern: DAIKINTHING_SECTION_KEY
// For example: DAIKINTHING_DATABASE_PATH, DAIKINTHING_MQTT_HOST
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
		Site: SiteConfig{
			ID:   "site-001",
			Name: "Daikin Things",
		},
		Sync: SyncConfig{
			PollInterval: 15,
		},
		Database: DatabaseConfig{
			Path:          "./data/daikinthing.db",
			WALMode:       true,
			BusyTimeout:   5,
			RetentionDays: 30,
		},
		MQTT: MQTTConfig{
			Broker: MQTTBrokerConfig{
				Host:     "localhost",
				Port:     1883,
				ClientID: "daikinthing",
			},
			QoS: 1,
			Reconnect: MQTTReconnectConfig{
				InitialDelay: 1,
				MaxDelay:     60,
				MaxAttempts:  0,
			},
		},
		API: APIConfig{
			Enabled: true,
			Host:    "0.0.0.0",
			Port:    8889,
			Timeouts: APITimeoutConfig{
				Read:  30,
				Write: 30,
				Idle:  60,
			},
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Output: "stdout",
		},
	}
}

// applyEnvOverrides applies environment variable overrides to the configuration.
// Environment variables follow the pattern: DAIKINTHING_SECTION_KEY
func applyEnvOverrides(cfg *Config) {
	// Database
	if v := os.Getenv("DAIKINTHING_DATABASE_PATH"); v != "" {
		cfg.Database.Path = v
	}

	// Sync
	if v := os.Getenv("DAIKINTHING_SYNC_POLL_INTERVAL"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Sync.PollInterval = n
		}
	}

	// MQTT
	if v := os.Getenv("DAIKINTHING_MQTT_HOST"); v != "" {
		cfg.MQTT.Broker.Host = v
	}
	if v := os.Getenv("DAIKINTHING_MQTT_USERNAME"); v != "" {
		cfg.MQTT.Auth.Username = v
	}
	if v := os.Getenv("DAIKINTHING_MQTT_PASSWORD"); v != "" {
		cfg.MQTT.Auth.Password = v
	}

	// API
	if v := os.Getenv("DAIKINTHING_API_HOST"); v != "" {
		cfg.API.Host = v
	}

	// InfluxDB
	if v := os.Getenv("DAIKINTHING_INFLUXDB_TOKEN"); v != "" {
		cfg.InfluxDB.Token = v
	}

	// Logging
	if v := os.Getenv("DAIKINTHING_LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
}

// Validate checks the configuration for errors.
//
// Returns:
//   - error: Description of validation failure, or nil if valid
func (c *Config) Validate() error {
	var errs []string

	// Site validation
	if c.Site.ID == "" {
		errs = append(errs, "site.id is required")
	}

	// Appliance validation
	if len(c.Appliances) == 0 {
		errs = append(errs, "at least one appliance is required")
	}
	seen := make(map[string]bool, len(c.Appliances))
	condensers := 0
	for i, a := range c.Appliances {
		if a.Address == "" {
			errs = append(errs, fmt.Sprintf("appliances[%d].address is required", i))
			continue
		}
		if seen[a.Address] {
			errs = append(errs, fmt.Sprintf("appliances[%d].address %q is duplicated", i, a.Address))
		}
		seen[a.Address] = true
		if a.Condenser {
			condensers++
		}
	}
	if condensers > 1 {
		errs = append(errs, "at most one appliance may set condenser: true")
	}

	// Sync validation
	if c.Sync.PollInterval < 1 {
		errs = append(errs, "sync.poll_interval must be at least 1 second")
	}

	// Database validation
	if c.Database.Path == "" {
		errs = append(errs, "database.path is required")
	}
	if c.Database.RetentionDays < 0 {
		errs = append(errs, "database.retention_days must not be negative")
	}

	// MQTT validation
	if c.MQTT.QoS < 0 || c.MQTT.QoS > 2 {
		errs = append(errs, "mqtt.qos must be 0, 1, or 2")
	}

	// API validation
	if c.API.Enabled && (c.API.Port < 1 || c.API.Port > 65535) {
		errs = append(errs, "api.port must be between 1 and 65535")
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration errors: %s", strings.Join(errs, "; "))
	}

	return nil
}

// GetPollInterval returns the appliance poll interval as a Duration.
func (c *Config) GetPollInterval() time.Duration {
	return time.Duration(c.Sync.PollInterval) * time.Second
}

// GetRetention returns the reading-history retention period as a
// Duration. Zero means readings are kept forever.
func (c *Config) GetRetention() time.Duration {
	return time.Duration(c.Database.RetentionDays) * 24 * time.Hour
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

// Verbose reports whether debug-level logging is configured.
//
// Components that vary their output detail receive this explicitly;
// nothing reads the process environment at point of use.
func (c *Config) Verbose() bool {
	return strings.EqualFold(c.Logging.Level, "debug")
}
