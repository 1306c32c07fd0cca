package sensor

import (
	"io"

	"tinygo.org/x/drivers"
)

// Bus is an I²C bus that must be released when done.
type Bus interface {
	drivers.I2C
	io.Closer
}
