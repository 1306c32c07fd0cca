//go:build !linux || tinygo

package sensor

import "errors"

// OpenBus is not available on this platform.
func OpenBus(name string) (Bus, error) {
	return nil, errors.New("sensor: i2c bus not supported on this platform (requires Linux)")
}
