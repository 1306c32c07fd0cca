package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "thermostat.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestDefault(t *testing.T) {
	cfg := Default()

	assert.NotNil(t, cfg)
	assert.Equal(t, "/dev/serial0", cfg.Serial.Port)
	assert.Equal(t, 115200, cfg.Serial.Baud)
	assert.Equal(t, "11X", cfg.Sensor.Profile)
	assert.Equal(t, "gpiochip0", cfg.GPIO.Chip)
	assert.Equal(t, 17, cfg.GPIO.HeatPin)
	assert.Equal(t, 23, cfg.GPIO.IncreasePin)
	assert.Equal(t, 24, cfg.GPIO.DecreasePin)
	assert.Equal(t, 10*time.Millisecond, cfg.GPIO.Debounce)
	assert.Empty(t, cfg.MQTT.Broker)
	assert.Equal(t, 15*time.Minute, cfg.MQTT.Heartbeat)
	assert.Equal(t, ":80", cfg.HTTP.Addr)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.NoError(t, cfg.Validate())

	p := cfg.Profile()
	assert.Equal(t, uint16(0x48), p.Address)
}

func TestLoad_FileNotExists(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nonexistent.yaml"))
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoad_ValidYAML(t *testing.T) {
	path := writeConfig(t, `
serial:
  port: "/dev/ttyUSB0"
  baud: 9600

sensor:
  bus: "I2C1"
  profile: "006"

gpio:
  chip: "gpiochip4"
  heat_pin: 5
  increase_pin: 6
  decrease_pin: 13
  debounce: 25ms

mqtt:
  broker: "tcp://192.168.1.200:1883"
  client_id: "lounge"
  heartbeat: 5m
  buffer_size: 10

http:
  addr: ":8080"

log:
  level: debug
  development: true
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "/dev/ttyUSB0", cfg.Serial.Port)
	assert.Equal(t, 9600, cfg.Serial.Baud)
	assert.Equal(t, "I2C1", cfg.Sensor.Bus)
	assert.Equal(t, "006", cfg.Profile().ID)
	assert.Equal(t, "gpiochip4", cfg.GPIO.Chip)
	assert.Equal(t, 5, cfg.GPIO.HeatPin)
	assert.Equal(t, 6, cfg.GPIO.IncreasePin)
	assert.Equal(t, 13, cfg.GPIO.DecreasePin)
	assert.Equal(t, 25*time.Millisecond, cfg.GPIO.Debounce)
	assert.Equal(t, "tcp://192.168.1.200:1883", cfg.MQTT.Broker)
	assert.Equal(t, "lounge", cfg.MQTT.ClientID)
	assert.Equal(t, 5*time.Minute, cfg.MQTT.Heartbeat)
	assert.Equal(t, 10, cfg.MQTT.BufferSize)
	assert.Equal(t, ":8080", cfg.HTTP.Addr)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.True(t, cfg.Log.Development)
}

func TestLoad_PartialYAML(t *testing.T) {
	path := writeConfig(t, `
serial:
  port: "/dev/ttyAMA0"
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "/dev/ttyAMA0", cfg.Serial.Port)
	assert.Equal(t, 115200, cfg.Serial.Baud)  // default
	assert.Equal(t, "11X", cfg.Sensor.Profile) // default
	assert.Equal(t, 17, cfg.GPIO.HeatPin)      // default
}

func TestLoad_DisableHTTP(t *testing.T) {
	path := writeConfig(t, `
http:
  addr: ""
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Empty(t, cfg.HTTP.Addr)
}

func TestLoad_InvalidYAML(t *testing.T) {
	path := writeConfig(t, "invalid: yaml: content: [")

	cfg, err := Load(path)
	assert.Error(t, err)
	assert.Nil(t, cfg)
}

func TestLoad_InvalidValues(t *testing.T) {
	path := writeConfig(t, `
sensor:
  profile: "9808"
`)

	cfg, err := Load(path)
	assert.ErrorContains(t, err, `sensor.profile "9808"`)
	assert.Nil(t, cfg)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		want   string
	}{
		{"no serial port", func(c *Config) { c.Serial.Port = "" }, "serial.port"},
		{"zero baud", func(c *Config) { c.Serial.Baud = 0 }, "serial.baud"},
		{"unknown profile", func(c *Config) { c.Sensor.Profile = "" }, "sensor.profile"},
		{"no chip", func(c *Config) { c.GPIO.Chip = "" }, "gpio.chip"},
		{"negative pin", func(c *Config) { c.GPIO.HeatPin = -1 }, "gpio.heat_pin"},
		{"shared pin", func(c *Config) { c.GPIO.DecreasePin = c.GPIO.IncreasePin }, "share pin"},
		{"negative debounce", func(c *Config) { c.GPIO.Debounce = -time.Millisecond }, "gpio.debounce"},
		{"negative heartbeat", func(c *Config) { c.MQTT.Heartbeat = -time.Second }, "mqtt.heartbeat"},
		{"no buffer", func(c *Config) { c.MQTT.Broker = "tcp://x:1883"; c.MQTT.BufferSize = 0 }, "mqtt.buffer_size"},
		{"bad level", func(c *Config) { c.Log.Level = "trace" }, "log.level"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestSave(t *testing.T) {
	cfg := Default()
	cfg.Serial.Port = "/dev/ttyUSB0"
	cfg.Sensor.Profile = "116"
	cfg.MQTT.Heartbeat = time.Minute

	path := filepath.Join(t.TempDir(), "saved.yaml")
	require.NoError(t, cfg.Save(path))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "/dev/ttyUSB0", loaded.Serial.Port)
	assert.Equal(t, "116", loaded.Sensor.Profile)
	assert.Equal(t, time.Minute, loaded.MQTT.Heartbeat)
}
