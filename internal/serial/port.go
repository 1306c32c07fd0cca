//go:build !tinygo

package serial

import (
	"fmt"
	"io"

	bugserial "go.bug.st/serial"
)

// Port is an open serial device.
type Port interface {
	io.WriteCloser
}

// Open opens the configured serial device at 8N1.
func Open(cfg Config) (Port, error) {
	if cfg.Port == "" {
		return nil, fmt.Errorf("serial: no port configured")
	}
	baud := cfg.Baud
	if baud == 0 {
		baud = DefaultBaudRate
	}

	port, err := bugserial.Open(cfg.Port, &bugserial.Mode{
		BaudRate: baud,
		DataBits: 8,
		Parity:   bugserial.NoParity,
		StopBits: bugserial.OneStopBit,
	})
	if err != nil {
		return nil, fmt.Errorf("open serial port %s: %w", cfg.Port, err)
	}
	return port, nil
}

// Ports lists the serial devices present on the host.
func Ports() ([]string, error) {
	ports, err := bugserial.GetPortsList()
	if err != nil {
		return nil, fmt.Errorf("list serial ports: %w", err)
	}
	return ports, nil
}
