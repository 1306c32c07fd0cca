// Package control runs the thermostat loop: it observes timer ticks, samples
// the sensor every other tick, drives the heat output and reports each cycle.
//
// Interrupt-like sources (timer, buttons) only ever call Loop.Dispatch, which
// touches lock-free shared state. Everything else is owned by the goroutine
// calling Loop.Run.
package control

import "github.com/sweeney/thermostat/internal/logic"

// TemperatureReader performs one sensor read.
type TemperatureReader interface {
	Read() (logic.Temperature, error)
}

// Actuator drives the binary heat output.
type Actuator interface {
	Set(on bool) error
}

// Reporter emits the status of a cycle.
type Reporter interface {
	Report(c logic.Cycle) error
}

// TickSource calls fire once per period, from its own context, until the
// process exits.
type TickSource interface {
	Start(fire func()) error
}

// ButtonSource calls increase or decrease once per qualifying edge.
type ButtonSource interface {
	Watch(increase, decrease func()) error
}

// Logger is the subset of *zap.SugaredLogger used by the loop.
type Logger interface {
	Debugf(template string, args ...interface{})
	Infof(template string, args ...interface{})
	Warnf(template string, args ...interface{})
	Errorf(template string, args ...interface{})
}

type nopLogger struct{}

func (nopLogger) Debugf(string, ...interface{}) {}
func (nopLogger) Infof(string, ...interface{})  {}
func (nopLogger) Warnf(string, ...interface{})  {}
func (nopLogger) Errorf(string, ...interface{}) {}
