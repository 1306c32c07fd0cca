// Package gpio provides the heat output and the setpoint buttons with
// hardware abstraction.
// The real implementation uses Linux GPIO character device.
// The fake implementation allows testing without hardware.
package gpio

// Output drives a single digital output line.
type Output interface {
	// Set drives the line high (on) or low.
	Set(on bool) error

	// Close releases GPIO resources.
	Close() error
}

// Buttons watches the increase and decrease inputs.
type Buttons interface {
	// Watch registers the handlers. Each falling edge on an input calls its
	// handler exactly once, from the GPIO event goroutine.
	Watch(increase, decrease func()) error

	// Close releases GPIO resources.
	Close() error
}

// Default pin definitions (BCM numbering)
const (
	DefaultChip        = "gpiochip0"
	DefaultPinHeat     = 17 // Heat relay / indicator LED
	DefaultPinIncrease = 23 // Setpoint up button, to ground
	DefaultPinDecrease = 24 // Setpoint down button, to ground
)
