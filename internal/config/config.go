// Package config loads the board and service configuration from YAML.
// The control timing (1 s tick, sampling every other tick, power-on setpoint)
// is fixed and deliberately absent here.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/sweeney/thermostat/internal/gpio"
	"github.com/sweeney/thermostat/internal/logic"
	"github.com/sweeney/thermostat/internal/serial"
)

// Config represents the application configuration.
type Config struct {
	Serial SerialConfig `yaml:"serial"`
	Sensor SensorConfig `yaml:"sensor"`
	GPIO   GPIOConfig   `yaml:"gpio"`
	MQTT   MQTTConfig   `yaml:"mqtt"`
	HTTP   HTTPConfig   `yaml:"http"`
	Log    LogConfig    `yaml:"log"`
}

// SerialConfig contains the status frame port.
type SerialConfig struct {
	Port string `yaml:"port"`
	Baud int    `yaml:"baud"`
}

// SensorConfig selects the I²C bus and the fitted sensor part.
type SensorConfig struct {
	Bus     string `yaml:"bus"`     // periph bus name; empty = first bus
	Profile string `yaml:"profile"` // one of logic.Profiles IDs
}

// GPIOConfig contains the line assignments.
type GPIOConfig struct {
	Chip        string        `yaml:"chip"`
	HeatPin     int           `yaml:"heat_pin"`
	IncreasePin int           `yaml:"increase_pin"`
	DecreasePin int           `yaml:"decrease_pin"`
	Debounce    time.Duration `yaml:"debounce"`
}

// MQTTConfig contains the optional event publisher settings.
type MQTTConfig struct {
	Broker     string        `yaml:"broker"` // empty disables MQTT
	ClientID   string        `yaml:"client_id"`
	Heartbeat  time.Duration `yaml:"heartbeat"` // 0 disables heartbeats
	BufferSize int           `yaml:"buffer_size"`
}

// HTTPConfig contains the status server settings.
type HTTPConfig struct {
	Addr string `yaml:"addr"` // empty disables the server
}

// LogConfig contains logger settings.
type LogConfig struct {
	Level       string `yaml:"level"`
	Development bool   `yaml:"development"`
}

// Default returns the configuration of the reference board.
func Default() *Config {
	return &Config{
		Serial: SerialConfig{
			Port: "/dev/serial0",
			Baud: serial.DefaultBaudRate,
		},
		Sensor: SensorConfig{
			Bus:     "",
			Profile: logic.DefaultProfile,
		},
		GPIO: GPIOConfig{
			Chip:        gpio.DefaultChip,
			HeatPin:     gpio.DefaultPinHeat,
			IncreasePin: gpio.DefaultPinIncrease,
			DecreasePin: gpio.DefaultPinDecrease,
			Debounce:    10 * time.Millisecond,
		},
		MQTT: MQTTConfig{
			Broker:     "",
			ClientID:   "thermostat",
			Heartbeat:  15 * time.Minute,
			BufferSize: 100,
		},
		HTTP: HTTPConfig{
			Addr: ":80",
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// Load loads configuration from a YAML file over the defaults. A missing
// file yields the defaults.
func Load(filename string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(filename)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config file %s: %w", filename, err)
	}
	return cfg, nil
}

// Save writes the configuration to a YAML file.
func (c *Config) Save(filename string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(filename, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// Validate checks values that would otherwise fail at bring-up.
func (c *Config) Validate() error {
	if c.Serial.Port == "" {
		return fmt.Errorf("serial.port is required")
	}
	if c.Serial.Baud <= 0 {
		return fmt.Errorf("serial.baud must be positive, got %d", c.Serial.Baud)
	}
	if _, ok := logic.LookupProfile(c.Sensor.Profile); !ok {
		return fmt.Errorf("sensor.profile %q is not a supported part", c.Sensor.Profile)
	}
	if c.GPIO.Chip == "" {
		return fmt.Errorf("gpio.chip is required")
	}
	pins := map[string]int{
		"heat_pin":     c.GPIO.HeatPin,
		"increase_pin": c.GPIO.IncreasePin,
		"decrease_pin": c.GPIO.DecreasePin,
	}
	seen := make(map[int]string, len(pins))
	for _, name := range []string{"heat_pin", "increase_pin", "decrease_pin"} {
		pin := pins[name]
		if pin < 0 {
			return fmt.Errorf("gpio.%s must not be negative, got %d", name, pin)
		}
		if other, dup := seen[pin]; dup {
			return fmt.Errorf("gpio.%s and gpio.%s share pin %d", other, name, pin)
		}
		seen[pin] = name
	}
	if c.GPIO.Debounce < 0 {
		return fmt.Errorf("gpio.debounce must not be negative")
	}
	if c.MQTT.Heartbeat < 0 {
		return fmt.Errorf("mqtt.heartbeat must not be negative")
	}
	if c.MQTT.Broker != "" && c.MQTT.BufferSize <= 0 {
		return fmt.Errorf("mqtt.buffer_size must be positive, got %d", c.MQTT.BufferSize)
	}
	switch c.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("log.level %q must be one of debug, info, warn, error", c.Log.Level)
	}
	return nil
}

// Profile returns the configured sensor profile. Call after Validate.
func (c *Config) Profile() logic.SensorProfile {
	p, _ := logic.LookupProfile(c.Sensor.Profile)
	return p
}
