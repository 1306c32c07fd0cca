package control

import (
	"errors"
	"fmt"

	"github.com/sweeney/thermostat/internal/logic"
)

// Resources named in an InitError.
const (
	ResourceSerial = "serial"
	ResourceI2C    = "i2c"
	ResourceGPIO   = "gpio"
	ResourceTimer  = "timer"
)

// InitError is returned when a resource the loop depends on cannot be
// brought up. The process must not run the loop after one.
type InitError struct {
	Resource string
	Err      error
}

func (e *InitError) Error() string {
	return fmt.Sprintf("init %s: %v", e.Resource, e.Err)
}

func (e *InitError) Unwrap() error {
	return e.Err
}

// Fatal wraps err as an InitError for resource. A nil err stays nil.
func Fatal(resource string, err error) error {
	if err == nil {
		return nil
	}
	return &InitError{Resource: resource, Err: err}
}

// IsFatal reports whether err carries an InitError.
func IsFatal(err error) bool {
	var ie *InitError
	return errors.As(err, &ie)
}

// Board is the set of opened peripherals the loop runs against.
type Board struct {
	Sensor   TemperatureReader
	Heater   Actuator
	Reporter Reporter
	Buttons  ButtonSource
	Ticker   TickSource
}

// Start builds the loop for b, drives the heat output off, registers the
// button handlers and starts the tick source, in that order. On failure it
// returns an *InitError and the loop must not be run.
func Start(b Board, opts ...Option) (*Loop, error) {
	if b.Sensor == nil || b.Heater == nil || b.Reporter == nil || b.Buttons == nil || b.Ticker == nil {
		return nil, &InitError{Resource: "board", Err: errors.New("missing peripheral")}
	}

	l := New(b.Sensor, b.Heater, b.Reporter, opts...)

	if err := b.Heater.Set(false); err != nil {
		return nil, Fatal(ResourceGPIO, fmt.Errorf("heat output off: %w", err))
	}

	err := b.Buttons.Watch(
		func() { l.Dispatch(logic.EventButtonIncrease) },
		func() { l.Dispatch(logic.EventButtonDecrease) },
	)
	if err != nil {
		return nil, Fatal(ResourceGPIO, fmt.Errorf("watch buttons: %w", err))
	}

	if err := b.Ticker.Start(func() { l.Dispatch(logic.EventTick) }); err != nil {
		return nil, Fatal(ResourceTimer, err)
	}

	l.logger.Infof("control loop ready: setpoint=%d period=%v", l.SetPoint(), logic.TickPeriod)
	return l, nil
}
