package sci

import (
	"tinygo.org/x/drivers"
)

// Port adapts one instance to a byte stream. Writes are polled regardless of
// the TX transfer mode; reads never block.
type Port struct {
	d    *Driver
	inst Instance
}

var _ drivers.UART = (*Port)(nil)

// Port returns a byte stream view of inst
func (d *Driver) Port(inst Instance) (*Port, error) {
	if inst >= NumInstances {
		return nil, ErrInvalidInstance
	}
	return &Port{d: d, inst: inst}, nil
}

// Instance returns the SCI instance behind the port
func (p *Port) Instance() Instance {
	return p.inst
}

// Write sends b byte by byte, waiting for TXRDY before each
func (p *Port) Write(b []byte) (int, error) {
	for i, c := range b {
		if err := p.d.SendByte(p.inst, c); err != nil {
			return i, err
		}
	}
	return len(b), nil
}

// WriteByte sends one byte
func (p *Port) WriteByte(c byte) error {
	return p.d.SendByte(p.inst, c)
}

// Read copies the bytes that are ready now; it returns 0, nil when none are
func (p *Port) Read(b []byte) (int, error) {
	n := 0
	for n < len(b) {
		ready, err := p.d.IsRxReady(p.inst)
		if err != nil {
			return n, err
		}
		if !ready {
			break
		}
		c, err := p.d.ReadData(p.inst)
		if err != nil {
			return n, err
		}
		b[n] = c
		n++
	}
	return n, nil
}

// ReadByte waits for one byte, bounded by the driver's poll budget if set
func (p *Port) ReadByte() (byte, error) {
	return p.d.ReceiveByte(p.inst)
}

// Buffered returns 1 when a received byte is waiting in RD.
// The module has a single receive buffer.
func (p *Port) Buffered() int {
	if p.d.DataAvailable(p.inst) {
		return 1
	}
	return 0
}
