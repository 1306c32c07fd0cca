// Package mqtt provides MQTT publishing with abstraction for testing.
package mqtt

import (
	"encoding/json"
	"time"

	"github.com/sweeney/thermostat/internal/logic"
)

// Topic is the MQTT topic for thermostat transition events.
const Topic = "thermostat/controller/events"

// TopicSystem is the MQTT topic for system lifecycle events.
const TopicSystem = "thermostat/controller/system"

// Publisher publishes events to MQTT.
type Publisher interface {
	// Publish sends a thermostat event to the broker.
	// Returns error if publishing fails (should not crash the process).
	Publish(event logic.Event) error

	// PublishSystem sends a system lifecycle event to the broker.
	PublishSystem(event SystemEvent) error

	// Close disconnects from the broker.
	Close() error
}

// ConnectionStatus reports whether the MQTT connection is active.
type ConnectionStatus interface {
	IsConnected() bool
}

// SystemEvent represents a system lifecycle event (e.g., startup, shutdown, heartbeat).
type SystemEvent struct {
	Timestamp  time.Time
	Event      string // e.g., "STARTUP", "SHUTDOWN", "HEARTBEAT"
	Reason     string // e.g., "SIGTERM", "SIGINT" (shutdown only)
	RawPayload []byte // Pre-formatted JSON payload; if set, FormatSystemPayload returns it directly
	Retained   bool   // Whether the message should be retained by the broker
}

// Payload represents the MQTT message payload structure.
type Payload struct {
	Thermostat ThermostatPayload `json:"thermostat"`
}

// ThermostatPayload contains the event details.
type ThermostatPayload struct {
	Timestamp        string  `json:"timestamp"`
	Event            string  `json:"event"`
	Temperature      float64 `json:"temperature"`
	SetPoint         int     `json:"setpoint"`
	PreviousSetPoint *int    `json:"previous_setpoint,omitempty"`
	Heat             bool    `json:"heat"`
	Elapsed          int     `json:"elapsed"`
}

// FormatPayload creates the JSON payload for a thermostat event.
func FormatPayload(event logic.Event) ([]byte, error) {
	p := ThermostatPayload{
		Timestamp:   event.Timestamp.UTC().Format(time.RFC3339),
		Event:       string(event.Type),
		Temperature: event.Cycle.Temperature.Celsius(),
		SetPoint:    event.Cycle.SetPoint,
		Heat:        event.Cycle.Heat,
		Elapsed:     event.Cycle.Elapsed,
	}
	if event.Type == logic.EventSetPointChanged {
		prev := event.PrevSetPoint
		p.PreviousSetPoint = &prev
	}
	return json.Marshal(Payload{Thermostat: p})
}

// SystemPayload represents the MQTT message payload for system events.
// Used for simple events (LWT) that don't carry a full status snapshot.
type SystemPayload struct {
	System SystemPayloadInner `json:"system"`
}

// SystemPayloadInner contains the system event details.
type SystemPayloadInner struct {
	Timestamp string `json:"timestamp,omitempty"`
	Event     string `json:"event"`
	Reason    string `json:"reason,omitempty"`
}

// FormatSystemPayload creates the JSON payload for a system event.
// If event.RawPayload is set, it is returned directly (used for full status snapshots).
func FormatSystemPayload(event SystemEvent) ([]byte, error) {
	if event.RawPayload != nil {
		return event.RawPayload, nil
	}
	inner := SystemPayloadInner{
		Event:  event.Event,
		Reason: event.Reason,
	}
	if !event.Timestamp.IsZero() {
		inner.Timestamp = event.Timestamp.UTC().Format(time.RFC3339)
	}
	return json.Marshal(SystemPayload{System: inner})
}

// Discard is a Publisher that drops every message. It stands in when no
// broker is configured.
type Discard struct{}

func (Discard) Publish(logic.Event) error       { return nil }
func (Discard) PublishSystem(SystemEvent) error { return nil }
func (Discard) Close() error                    { return nil }
func (Discard) IsConnected() bool               { return false }
