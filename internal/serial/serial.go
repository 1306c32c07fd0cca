// Package serial emits the status frame stream.
package serial

import (
	"fmt"
	"io"

	"github.com/sweeney/thermostat/internal/logic"
)

// DefaultBaudRate matches the reference board's UART.
const DefaultBaudRate = 115200

// Config holds serial port configuration.
type Config struct {
	// Device path (e.g., "/dev/ttyUSB0", "/dev/serial0")
	Port string
	Baud int
}

// Reporter writes one status frame per cycle.
type Reporter struct {
	w   io.Writer
	buf []byte
}

// NewReporter returns a Reporter writing to w.
func NewReporter(w io.Writer) *Reporter {
	return &Reporter{w: w, buf: make([]byte, 0, logic.MaxFrameLen)}
}

// Report writes the frame for c. Not safe for concurrent use.
func (r *Reporter) Report(c logic.Cycle) error {
	r.buf = logic.AppendFrame(r.buf[:0], c)
	n, err := r.w.Write(r.buf)
	if err != nil {
		return fmt.Errorf("write frame: %w", err)
	}
	if n != len(r.buf) {
		return fmt.Errorf("write frame: short write %d/%d", n, len(r.buf))
	}
	return nil
}
