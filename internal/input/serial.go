package input

import (
	"fmt"
	"io"

	"github.com/tarm/serial"
)

// OpenSerial opens a serial device such as /dev/ttyUSB0 for blocking reads;
// wrap it in NewBytes or NewIRLines to poll it.
func OpenSerial(name string, baud int) (io.ReadWriteCloser, error) {
	port, err := serial.OpenPort(&serial.Config{Name: name, Baud: baud})
	if err != nil {
		return nil, fmt.Errorf("open serial %s: %w", name, err)
	}
	return port, nil
}
