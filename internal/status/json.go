package status

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/sweeney/thermostat/internal/logic"
)

// StatusJSON is the top-level JSON envelope for status output.
type StatusJSON struct {
	Status StatusInner `json:"status"`
}

// StatusInner contains the status details.
type StatusInner struct {
	Event          string       `json:"event,omitempty"`
	Reason         string       `json:"reason,omitempty"`
	Temperature    *float64     `json:"temperature"`
	TemperatureRaw int16        `json:"temperature_raw"`
	SetPoint       int          `json:"setpoint"`
	Heat           bool         `json:"heat"`
	Elapsed        int          `json:"elapsed"`
	Frame          string       `json:"frame"`
	SensorFailures int          `json:"sensor_failures"`
	DroppedCycles  int          `json:"dropped_cycles"`
	Ready          bool         `json:"ready"`
	UptimeSeconds  int64        `json:"uptime_seconds"`
	StartTime      string       `json:"start_time"`
	Timestamp      string       `json:"timestamp"`
	MQTT           MQTTStatus   `json:"mqtt"`
	Counts         CountsJSON   `json:"event_counts"`
	Network        *NetworkJSON `json:"network,omitempty"`
	Config         ConfigJSON   `json:"config"`
}

// MQTTStatus reports MQTT connection state.
type MQTTStatus struct {
	Connected bool   `json:"connected"`
	Broker    string `json:"broker"`
}

// CountsJSON is the JSON representation of event counts.
type CountsJSON struct {
	HeatOn          int `json:"heat_on"`
	HeatOff         int `json:"heat_off"`
	SetPointChanges int `json:"setpoint_changes"`
}

// NetworkJSON is the JSON representation of network info.
type NetworkJSON struct {
	Type       string `json:"type"`
	IP         string `json:"ip"`
	Status     string `json:"status"`
	Gateway    string `json:"gateway"`
	WifiStatus string `json:"wifi_status"`
	SSID       string `json:"ssid"`
}

// ConfigJSON is the JSON representation of daemon config.
type ConfigJSON struct {
	Profile       string `json:"sensor_profile"`
	SensorAddress string `json:"sensor_address"`
	SerialPort    string `json:"serial_port"`
	Baud          int    `json:"baud"`
	TickMs        int64  `json:"tick_ms"`
	SampleEvery   int    `json:"sample_every"`
	HeartbeatMs   int64  `json:"heartbeat_ms"`
	Broker        string `json:"broker"`
	HTTPPort      string `json:"http_port"`
}

func buildInner(snap Snapshot) StatusInner {
	inner := StatusInner{
		SetPoint:       snap.Last.SetPoint,
		Heat:           snap.Last.Heat,
		Elapsed:        snap.Last.Elapsed,
		SensorFailures: snap.Last.SensorFailures,
		DroppedCycles:  snap.DroppedCycles,
		Ready:          snap.Baselined,
		UptimeSeconds:  int64(snap.Uptime().Truncate(time.Second).Seconds()),
		StartTime:      snap.StartTime.UTC().Format(time.RFC3339),
		Timestamp:      snap.Now.UTC().Format(time.RFC3339),
		MQTT:           MQTTStatus{Connected: snap.MQTTConnected, Broker: snap.Config.Broker},
		Counts: CountsJSON{
			HeatOn:          snap.Counts.HeatOn,
			HeatOff:         snap.Counts.HeatOff,
			SetPointChanges: snap.Counts.SetPointChanges,
		},
		Config: ConfigJSON{
			Profile:       snap.Config.Profile,
			SensorAddress: fmt.Sprintf("%#02x", snap.Config.SensorAddress),
			SerialPort:    snap.Config.SerialPort,
			Baud:          snap.Config.Baud,
			TickMs:        snap.Config.TickMs,
			SampleEvery:   snap.Config.SampleEvery,
			HeartbeatMs:   snap.Config.HeartbeatMs,
			Broker:        snap.Config.Broker,
			HTTPPort:      snap.Config.HTTPPort,
		},
	}

	// Until the first cycle there is no reading; report null rather than 0°C.
	if snap.Baselined {
		c := snap.Last.Temperature.Celsius()
		inner.Temperature = &c
		inner.TemperatureRaw = int16(snap.Last.Temperature)
		inner.Frame = logic.FormatFrame(snap.Last)
	}

	if snap.Network != nil {
		inner.Network = &NetworkJSON{
			Type:       snap.Network.Type,
			IP:         snap.Network.IP,
			Status:     snap.Network.Status,
			Gateway:    snap.Network.Gateway,
			WifiStatus: snap.Network.WifiStatus,
			SSID:       snap.Network.SSID,
		}
	}
	return inner
}

// FormatJSON returns the JSON status for the web endpoint (no event/reason).
func FormatJSON(snap Snapshot) []byte {
	data, _ := json.MarshalIndent(StatusJSON{Status: buildInner(snap)}, "", "  ")
	return data
}

// FormatStatusEvent returns the JSON status for an MQTT system event.
func FormatStatusEvent(snap Snapshot, event, reason string) []byte {
	inner := buildInner(snap)
	inner.Event = event
	inner.Reason = reason

	data, _ := json.Marshal(StatusJSON{Status: inner})
	return data
}
