//go:build tinygo

// Command thermostat-mcu is the bare-metal build of the thermostat for
// RP2040 boards: I²C0 for the sensor, UART0 for the status frames, one
// output pin for the heater and two pull-up inputs for the setpoint buttons.
//
//	tinygo flash -target=pico ./cmd/thermostat-mcu
package main

import (
	"context"
	"machine"

	"github.com/sweeney/thermostat/internal/control"
	"github.com/sweeney/thermostat/internal/logic"
	"github.com/sweeney/thermostat/internal/sensor"
	"github.com/sweeney/thermostat/internal/serial"
	"github.com/sweeney/thermostat/internal/timer"
)

var (
	uart = machine.UART0
	bus  = machine.I2C0

	pinHeat     = machine.LED
	pinIncrease = machine.GP14
	pinDecrease = machine.GP15
)

func main() {
	loop, err := start()
	if err != nil {
		halt(err)
	}
	// Run only returns when its context ends, which never happens here.
	loop.Run(context.Background())
}

// start brings the board up in order: UART, I²C, GPIO, timer.
func start() (*control.Loop, error) {
	if err := uart.Configure(machine.UARTConfig{BaudRate: serial.DefaultBaudRate}); err != nil {
		return nil, control.Fatal(control.ResourceSerial, err)
	}

	if err := bus.Configure(machine.I2CConfig{
		Frequency: 400 * machine.KHz,
		SDA:       machine.I2C0_SDA_PIN,
		SCL:       machine.I2C0_SCL_PIN,
	}); err != nil {
		return nil, control.Fatal(control.ResourceI2C, err)
	}

	profile, _ := logic.LookupProfile(logic.DefaultProfile)

	return control.Start(control.Board{
		Sensor:   sensor.NewReader(bus, profile),
		Heater:   newPinOutput(pinHeat),
		Reporter: serial.NewReporter(uart),
		Buttons:  pinButtons{increase: pinIncrease, decrease: pinDecrease},
		Ticker:   timer.NewPeriodic(logic.TickPeriod),
	})
}

// halt reports err on the console and parks the core. Nothing else runs.
func halt(err error) {
	println("thermostat:", err.Error())
	select {}
}

// pinOutput drives the heat output from a GPIO pin.
type pinOutput struct {
	pin machine.Pin
}

func newPinOutput(pin machine.Pin) pinOutput {
	pin.Configure(machine.PinConfig{Mode: machine.PinOutput})
	return pinOutput{pin: pin}
}

func (o pinOutput) Set(on bool) error {
	o.pin.Set(on)
	return nil
}

// pinButtons calls its handlers from the pin interrupt on each falling edge.
type pinButtons struct {
	increase, decrease machine.Pin
}

func (b pinButtons) Watch(increase, decrease func()) error {
	for _, w := range []struct {
		pin machine.Pin
		fn  func()
	}{
		{b.increase, increase},
		{b.decrease, decrease},
	} {
		fn := w.fn
		w.pin.Configure(machine.PinConfig{Mode: machine.PinInputPullup})
		if err := w.pin.SetInterrupt(machine.PinFalling, func(machine.Pin) { fn() }); err != nil {
			return err
		}
	}
	return nil
}
