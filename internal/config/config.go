package config

import (
	"errors"
	"io/fs"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// fallbackDelay applies when neither the requested speed nor a "default"
// entry is configured.
const fallbackDelay = 500 * time.Millisecond

type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Sort      SortConfig      `yaml:"sort"`
	Transport TransportConfig `yaml:"transport"`
	Stats     StatsConfig     `yaml:"stats"`
	Log       LogConfig       `yaml:"log"`
}

type ServerConfig struct {
	Port           int      `yaml:"port"`
	Host           string   `yaml:"host"`
	AuthToken      string   `yaml:"auth_token"`
	AllowedOrigins []string `yaml:"allowed_origins"`
	MaxConnections int      `yaml:"max_connections"`
}

type SortConfig struct {
	MaxArrayLength int                      `yaml:"max_array_length"`
	Speeds         map[string]time.Duration `yaml:"speeds"`
}

type TransportConfig struct {
	SendBuffer   int           `yaml:"send_buffer"`
	WriteTimeout time.Duration `yaml:"write_timeout"`
	PongTimeout  time.Duration `yaml:"pong_timeout"`
	PingInterval time.Duration `yaml:"ping_interval"`
}

type StatsConfig struct {
	Enabled      bool          `yaml:"enabled"`
	Dir          string        `yaml:"dir"`
	SaveInterval time.Duration `yaml:"save_interval"`
}

type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

func defaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Port: 3000,
			Host: "0.0.0.0",
		},
		Sort: SortConfig{
			MaxArrayLength: 1000,
			Speeds: map[string]time.Duration{
				"slow":    1000 * time.Millisecond,
				"medium":  500 * time.Millisecond,
				"fast":    100 * time.Millisecond,
				"default": fallbackDelay,
			},
		},
		Transport: TransportConfig{
			SendBuffer:   256,
			WriteTimeout: 10 * time.Second,
			PongTimeout:  60 * time.Second,
			PingInterval: 30 * time.Second,
		},
		Stats: StatsConfig{
			Enabled:      true,
			SaveInterval: 30 * time.Second,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "console",
		},
	}
}

// Default returns the configuration used when no file is present.
func Default() *Config {
	return defaultConfig()
}

// Load reads the YAML file at path over the defaults. A missing file yields
// the defaults.
func Load(path string) (*Config, error) {
	cfg := defaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return cfg, nil
		}
		return nil, err
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// SpeedDelay maps a speed preset to its per-step delay. Unknown presets use
// the "default" entry.
func (c *Config) SpeedDelay(speed string) time.Duration {
	if d, ok := c.Sort.Speeds[speed]; ok {
		return d
	}
	if d, ok := c.Sort.Speeds["default"]; ok {
		return d
	}
	return fallbackDelay
}
