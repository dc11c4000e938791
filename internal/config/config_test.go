package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestSpeedDelay(t *testing.T) {
	cfg := defaultConfig()

	tests := []struct {
		speed string
		want  time.Duration
	}{
		{"slow", time.Second},
		{"medium", 500 * time.Millisecond},
		{"fast", 100 * time.Millisecond},
		{"", 500 * time.Millisecond},
		{"ludicrous", 500 * time.Millisecond}, // falls through to "default" key
	}

	for _, tt := range tests {
		got := cfg.SpeedDelay(tt.speed)
		if got != tt.want {
			t.Errorf("SpeedDelay(%q) = %v, want %v", tt.speed, got, tt.want)
		}
	}
}

func TestSpeedDelayEmptyTable(t *testing.T) {
	cfg := &Config{}

	// Should fall back to the hardcoded delay.
	if got := cfg.SpeedDelay("fast"); got != 500*time.Millisecond {
		t.Errorf("SpeedDelay with nil map = %v, want 500ms", got)
	}
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "config.yaml")

	yaml := `
server:
  port: 9090
  host: "127.0.0.1"
  max_connections: 4
  allowed_origins:
    - "http://localhost:5173"
sort:
  max_array_length: 50
  speeds:
    fast: 20ms
transport:
  send_buffer: 16
log:
  level: debug
  format: json
`
	if err := os.WriteFile(cfgPath, []byte(yaml), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(cfgPath)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	if cfg.Server.Port != 9090 {
		t.Errorf("Server.Port = %d, want 9090", cfg.Server.Port)
	}
	if cfg.Server.Host != "127.0.0.1" {
		t.Errorf("Server.Host = %q, want %q", cfg.Server.Host, "127.0.0.1")
	}
	if cfg.Server.MaxConnections != 4 {
		t.Errorf("Server.MaxConnections = %d, want 4", cfg.Server.MaxConnections)
	}
	if len(cfg.Server.AllowedOrigins) != 1 {
		t.Errorf("Server.AllowedOrigins = %v, want one entry", cfg.Server.AllowedOrigins)
	}
	if cfg.Sort.MaxArrayLength != 50 {
		t.Errorf("Sort.MaxArrayLength = %d, want 50", cfg.Sort.MaxArrayLength)
	}
	if got := cfg.SpeedDelay("fast"); got != 20*time.Millisecond {
		t.Errorf("SpeedDelay(fast) = %v, want 20ms", got)
	}
	if cfg.Transport.SendBuffer != 16 {
		t.Errorf("Transport.SendBuffer = %d, want 16", cfg.Transport.SendBuffer)
	}
	if cfg.Log.Level != "debug" || cfg.Log.Format != "json" {
		t.Errorf("Log = %+v, want debug/json", cfg.Log)
	}

	// Defaults should still be applied for unspecified fields.
	if got := cfg.SpeedDelay("slow"); got != time.Second {
		t.Errorf("SpeedDelay(slow) = %v, want default 1s", got)
	}
	if cfg.Transport.PingInterval != 30*time.Second {
		t.Errorf("Transport.PingInterval = %v, want default 30s", cfg.Transport.PingInterval)
	}
	if !cfg.Stats.Enabled {
		t.Error("Stats.Enabled should default to true")
	}
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.Server.Port != 3000 {
		t.Errorf("Server.Port = %d, want default 3000", cfg.Server.Port)
	}
}

func TestLoadInvalidYAML(t *testing.T) {
	cfgPath := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(cfgPath, []byte("server: [unterminated"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(cfgPath); err == nil {
		t.Fatal("Load() should fail on malformed YAML")
	}
}
