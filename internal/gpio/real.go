//go:build linux

package gpio

import (
	"errors"
	"fmt"
	"time"

	"github.com/warthog618/go-gpiocdev"
)

const consumer = "thermostat"

// RealOutput drives a GPIO line using the Linux GPIO character device.
type RealOutput struct {
	chip *gpiocdev.Chip
	line *gpiocdev.Line
}

// NewRealOutput requests pin on chip as an output, initially low.
func NewRealOutput(chipName string, pin int) (*RealOutput, error) {
	chip, err := gpiocdev.NewChip(chipName, gpiocdev.WithConsumer(consumer))
	if err != nil {
		return nil, fmt.Errorf("open gpio chip: %w", err)
	}

	line, err := chip.RequestLine(pin, gpiocdev.AsOutput(0))
	if err != nil {
		chip.Close()
		return nil, fmt.Errorf("request heat pin %d: %w", pin, err)
	}

	return &RealOutput{chip: chip, line: line}, nil
}

// Set drives the line high when on.
func (o *RealOutput) Set(on bool) error {
	v := 0
	if on {
		v = 1
	}
	if err := o.line.SetValue(v); err != nil {
		return fmt.Errorf("set heat pin: %w", err)
	}
	return nil
}

// Close drives the line low, then reconfigures it as an input (matching Pi
// boot defaults) before releasing it, so the heater is never left on.
func (o *RealOutput) Close() error {
	var errs []error

	if o.line != nil {
		if err := o.line.SetValue(0); err != nil {
			errs = append(errs, fmt.Errorf("drive heat pin low: %w", err))
		}
		if err := o.line.Reconfigure(gpiocdev.AsInput, gpiocdev.WithPullDown); err != nil {
			errs = append(errs, fmt.Errorf("reconfigure heat pin: %w", err))
		}
		if err := o.line.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close heat pin: %w", err))
		}
	}
	if o.chip != nil {
		if err := o.chip.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close chip: %w", err))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("close errors: %v", errs)
	}
	return nil
}

// RealButtons watches two pulled-up inputs for falling edges.
type RealButtons struct {
	chip     *gpiocdev.Chip
	pinInc   int
	pinDec   int
	debounce time.Duration

	inc *gpiocdev.Line
	dec *gpiocdev.Line
}

// NewRealButtons opens chip for the two button pins. Lines are requested by
// Watch. A zero debounce disables kernel debouncing.
func NewRealButtons(chipName string, pinInc, pinDec int, debounce time.Duration) (*RealButtons, error) {
	chip, err := gpiocdev.NewChip(chipName, gpiocdev.WithConsumer(consumer))
	if err != nil {
		return nil, fmt.Errorf("open gpio chip: %w", err)
	}
	return &RealButtons{
		chip:     chip,
		pinInc:   pinInc,
		pinDec:   pinDec,
		debounce: debounce,
	}, nil
}

// Watch requests both lines as pulled-up inputs with falling edge detection.
func (b *RealButtons) Watch(increase, decrease func()) error {
	if b.inc != nil || b.dec != nil {
		return errors.New("buttons already watched")
	}

	inc, err := b.chip.RequestLine(b.pinInc, b.inputOptions(increase)...)
	if err != nil {
		return fmt.Errorf("request increase pin %d: %w", b.pinInc, err)
	}

	dec, err := b.chip.RequestLine(b.pinDec, b.inputOptions(decrease)...)
	if err != nil {
		inc.Close()
		return fmt.Errorf("request decrease pin %d: %w", b.pinDec, err)
	}

	b.inc, b.dec = inc, dec
	return nil
}

func (b *RealButtons) inputOptions(handler func()) []gpiocdev.LineReqOption {
	opts := []gpiocdev.LineReqOption{
		gpiocdev.AsInput,
		gpiocdev.WithPullUp,
		gpiocdev.WithFallingEdge,
		gpiocdev.WithEventHandler(func(evt gpiocdev.LineEvent) {
			if evt.Type == gpiocdev.LineEventFallingEdge {
				handler()
			}
		}),
	}
	if b.debounce > 0 {
		opts = append(opts, gpiocdev.WithDebounce(b.debounce))
	}
	return opts
}

// Close releases the button lines and the chip.
func (b *RealButtons) Close() error {
	var errs []error

	for _, l := range []*gpiocdev.Line{b.inc, b.dec} {
		if l == nil {
			continue
		}
		if err := l.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close button pin: %w", err))
		}
	}
	if b.chip != nil {
		if err := b.chip.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close chip: %w", err))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("close errors: %v", errs)
	}
	return nil
}
