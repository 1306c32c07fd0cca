package logic

import (
	"testing"
	"time"
)

var monitorStart = time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)

func cycleAt(elapsed, setPoint int, heat bool) Cycle {
	return Cycle{Elapsed: elapsed, SetPoint: setPoint, Heat: heat, Temperature: FromWhole(22)}
}

func TestNewMonitor(t *testing.T) {
	m := NewMonitor(monitorStart)
	if m.IsBaselined() {
		t.Error("new monitor should not be baselined")
	}
	if !m.startTime.Equal(monitorStart) {
		t.Errorf("expected startTime %v, got %v", monitorStart, m.startTime)
	}
	if !m.lastHeartbeat.Equal(monitorStart) {
		t.Errorf("expected lastHeartbeat %v, got %v", monitorStart, m.lastHeartbeat)
	}
}

func TestMonitorBaselineEmitsNothing(t *testing.T) {
	m := NewMonitor(monitorStart)

	events := m.Process(cycleAt(1, 25, true), monitorStart.Add(time.Second))
	if len(events) != 0 {
		t.Errorf("expected no events on baseline cycle, got %d", len(events))
	}
	if !m.IsBaselined() {
		t.Error("should be baselined after first cycle")
	}
	if m.Last().Elapsed != 1 {
		t.Errorf("Last().Elapsed: got %d, want 1", m.Last().Elapsed)
	}
}

func TestMonitorNoEventsForStableState(t *testing.T) {
	m := NewMonitor(monitorStart)
	m.Process(cycleAt(1, 25, true), monitorStart)

	for i := 2; i < 12; i++ {
		events := m.Process(cycleAt(i, 25, true), monitorStart.Add(time.Duration(i)*time.Second))
		if len(events) != 0 {
			t.Errorf("cycle %d: expected no events for stable state, got %d", i, len(events))
		}
	}
}

func TestMonitorHeatTransitions(t *testing.T) {
	m := NewMonitor(monitorStart)
	m.Process(cycleAt(1, 25, false), monitorStart)

	now := monitorStart.Add(2 * time.Second)
	events := m.Process(cycleAt(2, 25, true), now)
	if len(events) != 1 {
		t.Fatalf("expected 1 event, got %d", len(events))
	}
	if events[0].Type != EventHeatOn {
		t.Errorf("expected HEAT_ON, got %s", events[0].Type)
	}
	if !events[0].Timestamp.Equal(now) {
		t.Errorf("timestamp: got %v, want %v", events[0].Timestamp, now)
	}

	events = m.Process(cycleAt(3, 25, false), now.Add(time.Second))
	if len(events) != 1 || events[0].Type != EventHeatOff {
		t.Fatalf("expected HEAT_OFF, got %+v", events)
	}

	counts := m.Counts()
	if counts.HeatOn != 1 || counts.HeatOff != 1 {
		t.Errorf("unexpected counts: %+v", counts)
	}
}

func TestMonitorSetPointBeforeHeat(t *testing.T) {
	m := NewMonitor(monitorStart)
	m.Process(cycleAt(1, 25, false), monitorStart)

	events := m.Process(cycleAt(2, 27, true), monitorStart.Add(2*time.Second))
	if len(events) != 2 {
		t.Fatalf("expected 2 events, got %d", len(events))
	}
	if events[0].Type != EventSetPointChanged {
		t.Errorf("first event: got %s, want SETPOINT_CHANGED", events[0].Type)
	}
	if events[0].PrevSetPoint != 25 || events[0].Cycle.SetPoint != 27 {
		t.Errorf("setpoint change: got %d -> %d, want 25 -> 27", events[0].PrevSetPoint, events[0].Cycle.SetPoint)
	}
	if events[1].Type != EventHeatOn {
		t.Errorf("second event: got %s, want HEAT_ON", events[1].Type)
	}
	if m.Counts().SetPointChanges != 1 {
		t.Errorf("SetPointChanges: got %d, want 1", m.Counts().SetPointChanges)
	}
}

func TestMonitorHeartbeat(t *testing.T) {
	m := NewMonitor(monitorStart)
	interval := 15 * time.Minute

	if hb := m.CheckHeartbeat(monitorStart.Add(interval), interval); hb != nil {
		t.Error("expected no heartbeat before baseline")
	}

	m.Process(cycleAt(1, 25, true), monitorStart.Add(time.Second))

	if hb := m.CheckHeartbeat(monitorStart.Add(interval-time.Second), interval); hb != nil {
		t.Error("expected no heartbeat before interval elapsed")
	}

	at := monitorStart.Add(interval)
	hb := m.CheckHeartbeat(at, interval)
	if hb == nil {
		t.Fatal("expected heartbeat after interval")
	}
	if hb.Uptime != interval {
		t.Errorf("uptime: got %v, want %v", hb.Uptime, interval)
	}
	if hb.Last.Elapsed != 1 {
		t.Errorf("Last.Elapsed: got %d, want 1", hb.Last.Elapsed)
	}

	if hb := m.CheckHeartbeat(at.Add(time.Minute), interval); hb != nil {
		t.Error("expected heartbeat interval to restart")
	}
}

func TestMonitorHeartbeatDisabled(t *testing.T) {
	m := NewMonitor(monitorStart)
	m.Process(cycleAt(1, 25, true), monitorStart)

	if hb := m.CheckHeartbeat(monitorStart.Add(24*time.Hour), 0); hb != nil {
		t.Error("expected no heartbeat when disabled")
	}
}
