// Package sensor reads ambient temperature from an I²C sensor.
// Buses are anything implementing tinygo.org/x/drivers.I2C: machine.I2C on
// a microcontroller, a periph.io bus on Linux, or FakeBus in tests.
package sensor

import (
	"fmt"

	"tinygo.org/x/drivers"

	"github.com/sweeney/thermostat/internal/logic"
)

// Reader reads the result register of one sensor profile.
type Reader struct {
	bus     drivers.I2C
	profile logic.SensorProfile

	w [1]byte
	r [2]byte
}

// NewReader returns a Reader for profile on bus.
func NewReader(bus drivers.I2C, profile logic.SensorProfile) *Reader {
	return &Reader{bus: bus, profile: profile}
}

// Profile returns the sensor profile being read.
func (s *Reader) Profile() logic.SensorProfile {
	return s.profile
}

// Read performs one bus transaction and decodes the result.
// Not safe for concurrent use.
func (s *Reader) Read() (logic.Temperature, error) {
	s.w[0] = s.profile.ResultReg
	if err := s.bus.Tx(s.profile.Address, s.w[:], s.r[:]); err != nil {
		return 0, fmt.Errorf("sensor %s at %#02x: %w", s.profile.ID, s.profile.Address, err)
	}
	return logic.DecodeTemperature(s.r[0], s.r[1]), nil
}
