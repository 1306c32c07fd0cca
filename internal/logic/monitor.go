package logic

import "time"

// Monitor watches successive cycles and reports heat and setpoint transitions.
type Monitor struct {
	baselined     bool
	last          Cycle
	startTime     time.Time
	eventCounts   EventCounts
	lastHeartbeat time.Time
}

// NewMonitor creates a transition monitor.
// The startTime is used for calculating uptime in heartbeat events.
func NewMonitor(startTime time.Time) *Monitor {
	return &Monitor{
		startTime:     startTime,
		lastHeartbeat: startTime,
	}
}

// Process takes the result of a control cycle and returns any events that
// should be emitted. The first cycle establishes the baseline and emits nothing.
func (m *Monitor) Process(c Cycle, now time.Time) []Event {
	prev := m.last
	m.last = c

	if !m.baselined {
		m.baselined = true
		return nil
	}

	var events []Event

	// Setpoint first: a button press is the cause when both change together.
	if c.SetPoint != prev.SetPoint {
		events = append(events, Event{
			Timestamp:    now,
			Type:         EventSetPointChanged,
			Cycle:        c,
			PrevSetPoint: prev.SetPoint,
		})
		m.eventCounts.SetPointChanges++
	}

	if c.Heat != prev.Heat {
		typ := EventHeatOff
		if c.Heat {
			typ = EventHeatOn
			m.eventCounts.HeatOn++
		} else {
			m.eventCounts.HeatOff++
		}
		events = append(events, Event{
			Timestamp: now,
			Type:      typ,
			Cycle:     c,
		})
	}

	return events
}

// IsBaselined returns whether the monitor has seen at least one cycle.
func (m *Monitor) IsBaselined() bool {
	return m.baselined
}

// Last returns the most recent cycle.
func (m *Monitor) Last() Cycle {
	return m.last
}

// Counts returns a copy of the event counters.
func (m *Monitor) Counts() EventCounts {
	return m.eventCounts
}

// CheckHeartbeat returns heartbeat data if the interval has elapsed since the
// last heartbeat (or startup). Returns nil if not yet baselined, if the
// interval has not elapsed, or if interval is <= 0 (disabled).
func (m *Monitor) CheckHeartbeat(now time.Time, interval time.Duration) *HeartbeatData {
	if interval <= 0 {
		return nil
	}

	if !m.baselined {
		return nil
	}

	if now.Sub(m.lastHeartbeat) < interval {
		return nil
	}

	m.lastHeartbeat = now
	return &HeartbeatData{
		Timestamp: now,
		Uptime:    now.Sub(m.startTime),
		Counts:    m.eventCounts,
		Last:      m.last,
	}
}
