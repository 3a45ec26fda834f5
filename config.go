package main

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v2"

	"servogate/indicator"
	"servogate/mqtt"
	"servogate/reader"
)

// Config is the node configuration: which devices this gateway talks to
// and how. Access policy (authorized cards, servo positions, LED pins)
// lives in the separate JSON access configuration, which the console can
// mutate and save at runtime.
type Config struct {
	// MQTT connection settings
	MQTT mqtt.Config `yaml:"mqtt"`

	// Reader configuration
	Reader reader.Config `yaml:"reader"`

	// Local panel LED configuration
	Indicator indicator.Config `yaml:"indicator"`

	// Serial device for the actuator controller; empty = autodetect
	SerialDevice string `yaml:"serial_device"`

	// General settings
	ClientID   string `yaml:"client_id"`
	AccessFile string `yaml:"access_file"`
	DwellSecs  int    `yaml:"dwell_secs"`
	StatusSecs int    `yaml:"status_secs"`
	PingSecs   int    `yaml:"ping_secs"`
}

// DefaultNodeConfig returns the node settings used when no config file is
// present.
func DefaultNodeConfig() Config {
	return Config{
		ClientID:   "servogate",
		AccessFile: "config.json",
		DwellSecs:  1,
		StatusSecs: 2,
		PingSecs:   120,
	}
}

// LoadNodeConfig reads the YAML node configuration, overlaying defaults.
func LoadNodeConfig(path string) (Config, error) {
	cfg := DefaultNodeConfig()

	f, err := os.Open(path)
	if err != nil {
		return cfg, fmt.Errorf("open config: %w", err)
	}
	defer f.Close()

	if err := yaml.NewDecoder(f).Decode(&cfg); err != nil {
		return cfg, fmt.Errorf("decode config: %w", err)
	}
	return cfg, nil
}

// Dwell returns the LED feedback duration.
func (c Config) Dwell() time.Duration {
	return time.Duration(c.DwellSecs) * time.Second
}

// StatusInterval returns the status snapshot period.
func (c Config) StatusInterval() time.Duration {
	return time.Duration(c.StatusSecs) * time.Second
}

// PingInterval returns the MQTT liveness period.
func (c Config) PingInterval() time.Duration {
	return time.Duration(c.PingSecs) * time.Second
}
