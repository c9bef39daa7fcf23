package serial

import (
	"io"
)

// Port is a host serial connection.
// Implementations: NativePort over github.com/tarm/serial for real
// adapters, and any io.ReadWriteCloser wrapped with Wrap for tests.
type Port interface {
	io.ReadWriteCloser

	// Flush discards data received but not yet read
	Flush() error
}

// Parity of the host side line settings
type Parity byte

const (
	ParityNone Parity = 'N'
	ParityOdd  Parity = 'O'
	ParityEven Parity = 'E'
)

// Config holds serial port configuration
type Config struct {
	// Device path (e.g., "/dev/ttyUSB0", "COM3")
	Device string

	// Baud rate; must match the SCI instance on the other end
	Baud int

	// Data bits per character (5-8, 0 means 8)
	Size byte

	Parity   Parity
	StopBits int // 1 or 2

	// Read timeout in milliseconds (0 = blocking)
	ReadTimeout int
}

// DefaultConfig returns 115200 8N1 with a short read timeout
func DefaultConfig(device string) *Config {
	return &Config{
		Device:      device,
		Baud:        115200,
		Size:        8,
		Parity:      ParityNone,
		StopBits:    1,
		ReadTimeout: 100,
	}
}

type wrapped struct {
	io.ReadWriteCloser
}

func (wrapped) Flush() error { return nil }

// Wrap adapts rwc to Port with a no-op Flush
func Wrap(rwc io.ReadWriteCloser) Port {
	return wrapped{rwc}
}
