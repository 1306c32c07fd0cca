package control

import "sync/atomic"

// TickFlag records that at least one tick is pending. Several ticks before
// the loop observes the flag collapse into one.
type TickFlag struct {
	set  atomic.Bool
	wake chan struct{}
}

// NewTickFlag returns a cleared flag.
func NewTickFlag() *TickFlag {
	return &TickFlag{wake: make(chan struct{}, 1)}
}

// Set marks a tick as pending and wakes a waiting loop. It never blocks.
func (f *TickFlag) Set() {
	f.set.Store(true)
	select {
	case f.wake <- struct{}{}:
	default:
	}
}

// Observe clears the flag and reports whether it was set, in one atomic step.
func (f *TickFlag) Observe() bool {
	return f.set.Swap(false)
}

// Wait returns a channel that receives after a Set. A receive does not imply
// the flag is still set; callers must Observe.
func (f *TickFlag) Wait() <-chan struct{} {
	return f.wake
}

// SetPoint is the target temperature in whole degrees. Adjustments from
// concurrent sources are never lost.
type SetPoint struct {
	v atomic.Int32
}

// NewSetPoint returns a store holding initial.
func NewSetPoint(initial int) *SetPoint {
	s := &SetPoint{}
	s.v.Store(int32(initial))
	return s
}

// Add adjusts the setpoint by delta and returns the new value.
func (s *SetPoint) Add(delta int) int {
	return int(s.v.Add(int32(delta)))
}

// Load returns the current setpoint.
func (s *SetPoint) Load() int {
	return int(s.v.Load())
}
