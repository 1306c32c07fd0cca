package control

import (
	"context"

	"github.com/sweeney/thermostat/internal/logic"
)

// Option configures a Loop.
type Option func(*Loop)

// WithLogger sets a logger.
func WithLogger(logger Logger) Option {
	return func(l *Loop) {
		if logger != nil {
			l.logger = logger
		}
	}
}

// WithCycleHook adds a function called with every completed cycle, on the
// loop goroutine. Hooks must not block. A nil fn is ignored.
func WithCycleHook(fn func(logic.Cycle)) Option {
	return func(l *Loop) {
		if fn != nil {
			l.hooks = append(l.hooks, fn)
		}
	}
}

// Loop is the thermostat control loop.
type Loop struct {
	tick     *TickFlag
	setPoint *SetPoint

	sensor   TemperatureReader
	heater   Actuator
	reporter Reporter
	logger   Logger
	hooks    []func(logic.Cycle)

	// Owned by the goroutine calling Step/Run.
	elapsed     int
	temperature logic.Temperature
	failures    int
}

// New creates a loop in its initial state: nothing elapsed, a zero sample
// and the power-on setpoint.
func New(sensor TemperatureReader, heater Actuator, reporter Reporter, opts ...Option) *Loop {
	l := &Loop{
		tick:     NewTickFlag(),
		setPoint: NewSetPoint(logic.InitialSetPoint),
		sensor:   sensor,
		heater:   heater,
		reporter: reporter,
		logger:   nopLogger{},
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Dispatch delivers an event from a tick or button source. It is safe to
// call from any goroutine and never blocks.
func (l *Loop) Dispatch(ev logic.EventKind) {
	switch ev {
	case logic.EventTick:
		l.tick.Set()
	case logic.EventButtonIncrease:
		l.setPoint.Add(1)
	case logic.EventButtonDecrease:
		l.setPoint.Add(-1)
	}
}

// SetPoint returns the current setpoint.
func (l *Loop) SetPoint() int {
	return l.setPoint.Load()
}

// Step runs one cycle if a tick is pending. It reports whether it did.
func (l *Loop) Step() (logic.Cycle, bool) {
	if !l.tick.Observe() {
		return logic.Cycle{}, false
	}
	return l.cycle(), true
}

// Run steps the loop until ctx is done, sleeping between ticks.
func (l *Loop) Run(ctx context.Context) error {
	for {
		if _, ran := l.Step(); ran {
			continue
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-l.tick.Wait():
		}
	}
}

func (l *Loop) cycle() logic.Cycle {
	l.elapsed++
	c := logic.Cycle{Elapsed: l.elapsed}

	if logic.ShouldSample(l.elapsed) {
		c.Sampled = true
		t, err := l.sensor.Read()
		if err != nil {
			l.failures++
			c.SampleFailed = true
			l.logger.Debugf("sensor read failed, keeping %v: %v", l.temperature, err)
		} else {
			l.temperature = t
		}
	}

	c.Temperature = l.temperature
	c.SetPoint = l.setPoint.Load()
	c.Heat = logic.HeatOn(c.Temperature, c.SetPoint)
	c.SensorFailures = l.failures

	if err := l.heater.Set(c.Heat); err != nil {
		l.logger.Warnf("set heat output %v: %v", c.Heat, err)
	}

	if err := l.reporter.Report(c); err != nil {
		l.logger.Warnf("report cycle %d: %v", c.Elapsed, err)
	}

	for _, fn := range l.hooks {
		fn(c)
	}
	return c
}
