package logic

import "fmt"

// TemperatureScale is the number of raw steps per degree Celsius.
const TemperatureScale = 128

// Temperature is a signed fixed-point reading in 1/128 °C steps.
type Temperature int16

// DecodeTemperature converts the two result-register bytes, most significant
// first, into a Temperature. A set top bit in hi yields a negative value; the
// word is interpreted as two's complement so the upper nibble is sign-extended.
func DecodeTemperature(hi, lo byte) Temperature {
	return Temperature(int16(uint16(hi)<<8 | uint16(lo)))
}

// FromWhole returns the Temperature for a whole number of degrees.
func FromWhole(deg int) Temperature {
	return Temperature(deg * TemperatureScale)
}

// Celsius returns the reading in degrees Celsius.
func (t Temperature) Celsius() float64 {
	return float64(t) / TemperatureScale
}

// Whole returns whole degrees, truncated toward zero.
func (t Temperature) Whole() int {
	return int(t) / TemperatureScale
}

func (t Temperature) String() string {
	return fmt.Sprintf("%.2f°C", t.Celsius())
}
