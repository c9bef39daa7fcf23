// Package console runs a line echo and a debug sink over any drivers.UART.
package console

import (
	"tinygo.org/x/drivers"
)

var crlf = []byte("\r\n")

// Console echoes received bytes back to the sender
type Console struct {
	uart  drivers.UART
	rx    [16]byte
	lines uint32
}

// New wraps an already configured UART
func New(uart drivers.UART) *Console {
	return &Console{uart: uart}
}

// Poll echoes every byte the UART holds and returns how many line
// terminators went past. It returns 0, nil when nothing is waiting.
func (c *Console) Poll() (int, error) {
	lines := 0
	for c.uart.Buffered() > 0 {
		n, err := c.uart.Read(c.rx[:])
		if err != nil {
			return lines, err
		}
		if n == 0 {
			break
		}
		if _, err := c.uart.Write(c.rx[:n]); err != nil {
			return lines, err
		}
		for _, b := range c.rx[:n] {
			if b == '\r' || b == '\n' {
				lines++
			}
		}
	}
	c.lines += uint32(lines)
	return lines, nil
}

// Lines returns the number of line terminators echoed so far
func (c *Console) Lines() uint32 {
	return c.lines
}

// Println writes msg and CRLF. It matches core.SetDebugWriter.
func (c *Console) Println(msg string) {
	c.uart.Write([]byte(msg))
	c.uart.Write(crlf)
}
