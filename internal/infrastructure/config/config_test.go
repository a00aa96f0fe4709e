package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("writing config: %v", err)
	}
	return path
}

const minimalConfig = `
appliances:
  - address: 192.168.13.30
`

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load(writeConfig(t, minimalConfig))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Sync.PollInterval != 15 {
		t.Errorf("PollInterval = %d, want 15", cfg.Sync.PollInterval)
	}
	if cfg.MQTT.Broker.Host != "localhost" || cfg.MQTT.Broker.Port != 1883 {
		t.Errorf("MQTT broker = %s:%d, want localhost:1883", cfg.MQTT.Broker.Host, cfg.MQTT.Broker.Port)
	}
	if cfg.MQTT.Broker.ClientID != "daikinthing" {
		t.Errorf("ClientID = %q, want daikinthing", cfg.MQTT.Broker.ClientID)
	}
	if cfg.InfluxDB.Enabled {
		t.Error("InfluxDB enabled by default")
	}
	if !cfg.API.Enabled || cfg.API.Port != 8889 {
		t.Errorf("API = enabled=%v port=%d, want enabled on 8889", cfg.API.Enabled, cfg.API.Port)
	}
	if cfg.GetPollInterval() != 15*time.Second {
		t.Errorf("GetPollInterval() = %v, want 15s", cfg.GetPollInterval())
	}
	if cfg.Database.RetentionDays != 30 || cfg.GetRetention() != 30*24*time.Hour {
		t.Errorf("retention = %d days (%v), want 30 days", cfg.Database.RetentionDays, cfg.GetRetention())
	}
	if cfg.Verbose() {
		t.Error("Verbose() = true at default info level")
	}
}

func TestLoad_FileValues(t *testing.T) {
	cfg, err := Load(writeConfig(t, `
appliances:
  - address: 192.168.13.30
    condenser: true
  - address: 192.168.13.31
sync:
  poll_interval: 30
mqtt:
  broker:
    host: broker.local
    port: 8883
logging:
  level: debug
`))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if len(cfg.Appliances) != 2 {
		t.Fatalf("appliances = %d, want 2", len(cfg.Appliances))
	}
	if !cfg.Appliances[0].Condenser || cfg.Appliances[1].Condenser {
		t.Errorf("condenser flags = %v, %v", cfg.Appliances[0].Condenser, cfg.Appliances[1].Condenser)
	}
	if cfg.Sync.PollInterval != 30 {
		t.Errorf("PollInterval = %d, want 30", cfg.Sync.PollInterval)
	}
	if cfg.MQTT.Broker.Host != "broker.local" {
		t.Errorf("Host = %q, want broker.local", cfg.MQTT.Broker.Host)
	}
	if !cfg.Verbose() {
		t.Error("Verbose() = false with debug level")
	}
}

func TestVerbose(t *testing.T) {
	tests := []struct {
		level string
		want  bool
	}{
		{"debug", true},
		{"DEBUG", true},
		{"Debug", true},
		{"info", false},
		{"warn", false},
		{"error", false},
		{"", false},
	}

	for _, tt := range tests {
		t.Run("level_"+tt.level, func(t *testing.T) {
			cfg := Config{Logging: LoggingConfig{Level: tt.level}}
			if got := cfg.Verbose(); got != tt.want {
				t.Errorf("Verbose() = %v with level %q, want %v", got, tt.level, tt.want)
			}
		})
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("DAIKINTHING_SYNC_POLL_INTERVAL", "5")
	t.Setenv("DAIKINTHING_MQTT_HOST", "override.local")
	t.Setenv("DAIKINTHING_LOG_LEVEL", "debug")

	cfg, err := Load(writeConfig(t, minimalConfig))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Sync.PollInterval != 5 {
		t.Errorf("PollInterval = %d, want 5", cfg.Sync.PollInterval)
	}
	if cfg.MQTT.Broker.Host != "override.local" {
		t.Errorf("Host = %q, want override.local", cfg.MQTT.Broker.Host)
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("Level = %q, want debug", cfg.Logging.Level)
	}
}

func TestLoad_MissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Error("Load() error = nil for missing file")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		yaml    string
		wantErr string
	}{
		{
			name:    "no appliances",
			yaml:    "site:\n  id: s1\n",
			wantErr: "at least one appliance",
		},
		{
			name: "duplicate addresses",
			yaml: `
appliances:
  - address: 192.168.13.30
  - address: 192.168.13.30
`,
			wantErr: "duplicated",
		},
		{
			name: "two condensers",
			yaml: `
appliances:
  - address: 192.168.13.30
    condenser: true
  - address: 192.168.13.31
    condenser: true
`,
			wantErr: "at most one appliance",
		},
		{
			name: "poll interval too small",
			yaml: minimalConfig + `
sync:
  poll_interval: 0
`,
			wantErr: "poll_interval",
		},
		{
			name: "bad qos",
			yaml: minimalConfig + `
mqtt:
  qos: 3
`,
			wantErr: "mqtt.qos",
		},
		{
			name: "negative retention",
			yaml: minimalConfig + `
database:
  path: ./data/daikinthing.db
  retention_days: -1
`,
			wantErr: "retention_days",
		},
		{
			name: "bad api port",
			yaml: minimalConfig + `
api:
  enabled: true
  port: 99999
`,
			wantErr: "api.port",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tt.yaml))
			if err == nil {
				t.Fatal("Load() error = nil, want validation error")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Load() error = %v, want mention of %q", err, tt.wantErr)
			}
		})
	}
}
