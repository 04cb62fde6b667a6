package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Serial SerialConfig `yaml:"serial"`
	Feed   FeedConfig   `yaml:"feed"`
	UI     UIConfig     `yaml:"ui"`
}

type SerialConfig struct {
	Port       string        `yaml:"port"`
	Baud       int           `yaml:"baud"`
	LineEnding string        `yaml:"line_ending"` // lf, cr or crlf
	StatsTick  time.Duration `yaml:"stats_tick"`
}

type FeedConfig struct {
	Enabled           bool          `yaml:"enabled"`
	Host              string        `yaml:"host"`
	Port              int           `yaml:"port"`
	BroadcastThrottle time.Duration `yaml:"broadcast_throttle"`
	SnapshotInterval  time.Duration `yaml:"snapshot_interval"`
}

type UIConfig struct {
	Scrollback int    `yaml:"scrollback"`
	LogFile    string `yaml:"log_file"`
}

// Default returns the configuration used when no file is present.
func Default() *Config {
	return &Config{
		Serial: SerialConfig{
			Baud:       115200,
			LineEnding: "lf",
			StatsTick:  time.Second,
		},
		Feed: FeedConfig{
			Host:              "127.0.0.1",
			Port:              8844,
			BroadcastThrottle: 100 * time.Millisecond,
			SnapshotInterval:  5 * time.Second,
		},
		UI: UIConfig{
			Scrollback: 2000,
		},
	}
}

// Load reads a yaml config file, layering it over the defaults. A missing
// file is not an error; the defaults are returned as-is.
func Load(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, err
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if c.Serial.Baud <= 0 {
		return fmt.Errorf("baud must be positive, got %d", c.Serial.Baud)
	}
	switch c.Serial.LineEnding {
	case "lf", "cr", "crlf":
	default:
		return fmt.Errorf("line_ending must be lf, cr or crlf, got %q", c.Serial.LineEnding)
	}
	if c.Serial.StatsTick <= 0 {
		c.Serial.StatsTick = time.Second
	}
	if c.UI.Scrollback <= 0 {
		c.UI.Scrollback = 2000
	}
	return nil
}
