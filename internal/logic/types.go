// Package logic contains the pure thermostat rules: temperature decoding,
// the heat decision, status frame encoding and transition tracking.
// This package has NO external dependencies (no GPIO, I2C, serial, MQTT or time.Sleep).
// Time is always injectable via time.Time parameters.
package logic

import "time"

const (
	// InitialSetPoint is the target temperature at power-on, in whole degrees.
	InitialSetPoint = 25

	// TickPeriod is the control loop cadence.
	TickPeriod = time.Second

	// SampleEvery is the tick count between sensor reads.
	SampleEvery = 2
)

// EventKind identifies an asynchronous input to the control loop.
type EventKind uint8

const (
	EventTick EventKind = iota
	EventButtonIncrease
	EventButtonDecrease
)

func (k EventKind) String() string {
	switch k {
	case EventTick:
		return "tick"
	case EventButtonIncrease:
		return "button-increase"
	case EventButtonDecrease:
		return "button-decrease"
	default:
		return "unknown"
	}
}

// Cycle is the observable result of one control-loop iteration.
type Cycle struct {
	Elapsed     int
	Temperature Temperature
	SetPoint    int
	Heat        bool

	// Sampled is true when the sensor was read this cycle, SampleFailed when
	// that read failed and Temperature is the previous sample.
	Sampled      bool
	SampleFailed bool

	// SensorFailures counts failed reads since start.
	SensorFailures int
}

// ShouldSample reports whether the sensor is read at the given elapsed count.
func ShouldSample(elapsed int) bool {
	return elapsed%SampleEvery == 0
}

// HeatOn returns the actuator command for a sample and setpoint.
// Equal values leave the heat off. The fractional sample is compared, so a
// frame may show TT equal to SS with heat on (-0.5°C against 0 prints 00).
func HeatOn(t Temperature, setPoint int) bool {
	return int(t) < setPoint*TemperatureScale
}

// EventType represents a state transition event.
type EventType string

const (
	EventHeatOn          EventType = "HEAT_ON"
	EventHeatOff         EventType = "HEAT_OFF"
	EventSetPointChanged EventType = "SETPOINT_CHANGED"
)

// Event represents a state transition to be published.
type Event struct {
	Timestamp    time.Time
	Type         EventType
	Cycle        Cycle
	PrevSetPoint int // set for EventSetPointChanged
}

// EventCounts tracks the number of each event type since startup.
type EventCounts struct {
	HeatOn          int
	HeatOff         int
	SetPointChanges int
}

// HeartbeatData contains information for a heartbeat event.
type HeartbeatData struct {
	Timestamp time.Time
	Uptime    time.Duration
	Counts    EventCounts
	Last      Cycle
}
