// Package status provides a thread-safe status tracker for the thermostat daemon.
// It is read by the HTTP handlers and by MQTT lifecycle events.
package status

import (
	"sync"
	"time"

	"github.com/sweeney/thermostat/internal/logic"
)

// NetworkInfo contains network state. This is a local copy to avoid
// importing the daemon's environment helpers from status.
type NetworkInfo struct {
	Type       string
	IP         string
	Status     string
	Gateway    string
	WifiStatus string
	SSID       string
}

// Config contains daemon configuration for display.
type Config struct {
	Profile       string
	SensorAddress uint16
	SerialPort    string
	Baud          int
	TickMs        int64
	SampleEvery   int
	HeartbeatMs   int64
	Broker        string
	HTTPPort      string
}

// Snapshot is a point-in-time view of daemon state.
// It is a value type, safe to use after the lock is released.
type Snapshot struct {
	Last          logic.Cycle
	Baselined     bool
	Counts        logic.EventCounts
	DroppedCycles int
	StartTime     time.Time
	Now           time.Time
	MQTTConnected bool
	Network       *NetworkInfo
	Config        Config
}

// Uptime returns the duration since the daemon started.
func (s Snapshot) Uptime() time.Duration {
	return s.Now.Sub(s.StartTime)
}

// Tracker holds mutable daemon state behind an RWMutex.
type Tracker struct {
	mu   sync.RWMutex
	snap Snapshot
}

// NewTracker creates a Tracker with the given start time and config.
func NewTracker(startTime time.Time, cfg Config) *Tracker {
	return &Tracker{
		snap: Snapshot{
			StartTime: startTime,
			Config:    cfg,
		},
	}
}

// Update records the latest cycle and the event counters.
// Called from the reporting loop for every cycle it receives.
func (t *Tracker) Update(c logic.Cycle, counts logic.EventCounts) {
	t.mu.Lock()
	t.snap.Last = c
	t.snap.Baselined = true
	t.snap.Counts = counts
	t.mu.Unlock()
}

// AddDroppedCycle counts a cycle the reporting loop was too busy to take.
func (t *Tracker) AddDroppedCycle() {
	t.mu.Lock()
	t.snap.DroppedCycles++
	t.mu.Unlock()
}

// SetMQTTConnected sets the MQTT connection status.
func (t *Tracker) SetMQTTConnected(connected bool) {
	t.mu.Lock()
	t.snap.MQTTConnected = connected
	t.mu.Unlock()
}

// SetNetwork sets the network info.
func (t *Tracker) SetNetwork(info *NetworkInfo) {
	t.mu.Lock()
	t.snap.Network = info
	t.mu.Unlock()
}

// Snapshot returns a point-in-time copy of the daemon state.
// The Now field is set to the current time at the moment of the call.
func (t *Tracker) Snapshot() Snapshot {
	t.mu.RLock()
	s := t.snap
	t.mu.RUnlock()
	s.Now = time.Now()
	return s
}
