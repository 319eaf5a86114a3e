// Package config provides configuration for the go-duo server.
// Values come from an optional YAML file, overridden by environment
// variables where a deployment needs to differ per machine.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the top-level application configuration.
type Config struct {
	LogLevel string `yaml:"log_level"`

	Web         WebConfig         `yaml:"web"`
	Kachaka     KachakaConfig     `yaml:"kachaka"`
	Serial      SerialConfig      `yaml:"serial"`
	Rig         RigConfig         `yaml:"rig"`
	Negotiation NegotiationConfig `yaml:"negotiation"`
	EventLog    EventLogConfig    `yaml:"event_log"`
}

// WebConfig defines the web server settings.
type WebConfig struct {
	Host string `yaml:"host"`
	Port string `yaml:"port"`
}

// KachakaConfig defines the robot connection.
type KachakaConfig struct {
	Host     string        `yaml:"host"`
	Port     string        `yaml:"port"`
	PollRate time.Duration `yaml:"poll_rate"`
}

// URL returns the robot HTTP API base URL.
func (k KachakaConfig) URL() string {
	return fmt.Sprintf("http://%s:%s", k.Host, k.Port)
}

// SerialConfig defines the ICS servo serial port.
type SerialConfig struct {
	Port     string `yaml:"port"`
	BaudRate int    `yaml:"baud_rate"`
}

// AxisConfig maps one operator axis to a physical servo.
type AxisConfig struct {
	User     string `yaml:"user"`
	Axis     string `yaml:"axis"` // "horizontal" or "vertical"
	ServoID  int    `yaml:"servo_id"`
	Inverted bool   `yaml:"inverted"`
}

// RigConfig defines the shared pan/tilt rig.
type RigConfig struct {
	Rate     time.Duration `yaml:"rate"`
	Step     float64       `yaml:"step"`
	MinAngle float64       `yaml:"min_angle"`
	MaxAngle float64       `yaml:"max_angle"`
	Axes     []AxisConfig  `yaml:"axes"`
}

// NegotiationConfig defines the turn-taking rules.
type NegotiationConfig struct {
	InitialLocation string        `yaml:"initial_location"`
	Hubs            []string      `yaml:"hubs"`
	Cooldown        time.Duration `yaml:"cooldown"`
	RouteTable      string        `yaml:"route_table"` // path to a YAML route file, empty = builtin
}

// EventLogConfig defines the optional session event log.
type EventLogConfig struct {
	Enabled bool   `yaml:"enabled"`
	Path    string `yaml:"path"`
}

// Default returns the configuration used when no file is present.
func Default() *Config {
	return &Config{
		LogLevel: "info",
		Web: WebConfig{
			Host: "0.0.0.0",
			Port: "8000",
		},
		Kachaka: KachakaConfig{
			Host:     "10.40.5.108",
			Port:     "26502",
			PollRate: 500 * time.Millisecond,
		},
		Serial: SerialConfig{
			Port:     "/dev/ttyUSB0",
			BaudRate: 1250000,
		},
		Rig: RigConfig{
			Rate:     10 * time.Millisecond,
			Step:     1.0,
			MinAngle: -40,
			MaxAngle: 40,
			Axes: []AxisConfig{
				{User: "user_1", Axis: "horizontal", ServoID: 7},
				{User: "user_1", Axis: "vertical", ServoID: 8, Inverted: true},
				{User: "user_2", Axis: "horizontal", ServoID: 5},
				{User: "user_2", Axis: "vertical", ServoID: 6, Inverted: true},
			},
		},
		Negotiation: NegotiationConfig{
			InitialLocation: "充電ドック",
			Hubs:            []string{"1", "2", "3", "4", "5", "6", "7", "8", "9", "10", "11"},
			Cooldown:        30 * time.Second,
		},
		EventLog: EventLogConfig{
			Enabled: true,
			Path:    "duo_events.db",
		},
	}
}

// Load reads the YAML config at path on top of the defaults,
// then applies environment overrides. A missing file is not an error.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			if !os.IsNotExist(err) {
				return nil, fmt.Errorf("read config: %w", err)
			}
		} else if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	cfg.applyEnv()
	return cfg, nil
}

// applyEnv applies per-machine environment overrides.
func (c *Config) applyEnv() {
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		c.LogLevel = v
	}
	if v := os.Getenv("PORT"); v != "" {
		c.Web.Port = v
	}
	if v := os.Getenv("KACHAKA_HOST"); v != "" {
		c.Kachaka.Host = v
	}
	if v := os.Getenv("KACHAKA_PORT"); v != "" {
		c.Kachaka.Port = v
	}
	if v := os.Getenv("SERIAL_PORT"); v != "" {
		c.Serial.Port = v
	}
	if v := os.Getenv("SERIAL_BAUD"); v != "" {
		if baud, err := strconv.Atoi(v); err == nil {
			c.Serial.BaudRate = baud
		}
	}
	if v := os.Getenv("ROUTE_TABLE"); v != "" {
		c.Negotiation.RouteTable = v
	}
	if v := os.Getenv("EVENT_LOG"); v != "" {
		c.EventLog.Path = v
	}
}
