// Package gio drives the TMS570 general-purpose I/O module: two 8-pin
// ports with per-pin direction, pull, open drain and edge interrupts on two
// priority lines.
package gio

import (
	"errors"

	"tms570hal/core"
	"tms570hal/reg"
)

var (
	ErrInvalidPort      = errors.New("gio: invalid port")
	ErrInvalidPin       = errors.New("gio: invalid pin")
	ErrInvalidParameter = errors.New("gio: invalid parameter")
)

// Port selects a GIO port
type Port uint8

const (
	PortA Port = iota
	PortB

	NumPorts = 2
)

func (p Port) String() string {
	switch p {
	case PortA:
		return "A"
	case PortB:
		return "B"
	default:
		return "?"
	}
}

// Pin is a pin number within a port
type Pin uint8

// PinsPerPort is the number of pins on each port
const PinsPerPort = 8

// Mode is the module reset state
type Mode uint8

const (
	ModeReset Mode = iota
	ModeNormal
)

// Pull configures an input's pull resistor
type Pull uint8

const (
	NoPull Pull = iota
	PullDown
	PullUp
)

// Drive configures an output driver
type Drive uint8

const (
	PushPull Drive = iota
	OpenDrain
)

// Level is a pin logic level
type Level uint8

const (
	Low Level = iota
	High
)

// Edge selects which transitions raise the pin's interrupt flag
type Edge uint8

const (
	FallingEdge Edge = iota
	RisingEdge
	BothEdges
)

// Priority selects the interrupt line of a pin
type Priority uint8

const (
	LowPriority  Priority = iota // Reported through GIOOFF2
	HighPriority                 // Reported through GIOOFF1
)

// Enable is a two-state switch
type Enable uint8

const (
	Disabled Enable = iota
	Enabled
)

// Driver is the GIO driver context
type Driver struct {
	bus  reg.Bus
	base uint32
	regs reg.Block[Register]
}

// Option configures a Driver
type Option func(*Driver)

// WithBase relocates the GIO register block
func WithBase(base uint32) Option {
	return func(d *Driver) {
		d.base = base
	}
}

// New creates a GIO driver on bus
func New(bus reg.Bus, opts ...Option) *Driver {
	d := &Driver{bus: bus, base: DefaultBase}
	for _, opt := range opts {
		opt(d)
	}
	d.regs = reg.NewBlock[Register](d.base, registerDefs[:])
	return d
}

// Base returns the register block address
func (d *Driver) Base() uint32 {
	return d.base
}

func (d *Driver) reg(r Register) reg.Register {
	rr, _ := d.regs.At(r)
	return rr
}

func (d *Driver) portReg(p Port, r PortRegister) reg.Register {
	return reg.Register{Addr: d.base + r.Offset(p), Mask: r.Mask()}
}

func check(p Port, pin Pin) error {
	if p >= NumPorts {
		return ErrInvalidPort
	}
	if pin >= PinsPerPort {
		return ErrInvalidPin
	}
	return nil
}

// intBit returns the pin's bit in the interrupt registers
func intBit(p Port, pin Pin) uint32 {
	return 1 << (uint32(p)*PinsPerPort + uint32(pin))
}

// setBit commits one bit of a read/write register
func (d *Driver) setBit(r reg.Register, bit uint32, on bool) error {
	v := r.Read(d.bus)
	if on {
		v |= bit
	} else {
		v &^= bit
	}
	return r.Commit(d.bus, v)
}

// setClear writes bit to the set or clear register of a pair and checks
// the result through the set register
func (d *Driver) setClear(set, clr reg.Register, bit uint32, on bool) error {
	if on {
		set.Write(d.bus, bit)
	} else {
		clr.Write(d.bus, bit)
	}
	got := set.Read(d.bus) & bit
	if (got != 0) != on {
		var want uint32
		if on {
			want = bit
		}
		return &reg.CommitError{Addr: set.Addr, Want: want, Got: got}
	}
	return nil
}

// SetMode puts the module in reset or releases it
func (d *Driver) SetMode(m Mode) error {
	if m > ModeNormal {
		return ErrInvalidParameter
	}
	return d.reg(GCR0).Update(d.bus, fieldReset, uint32(m))
}

// ConfigureInput makes pin an input with the given pull
func (d *Driver) ConfigureInput(p Port, pin Pin, pull Pull) error {
	if err := check(p, pin); err != nil {
		return err
	}
	if pull > PullUp {
		return ErrInvalidParameter
	}
	bit := uint32(1) << pin
	if err := d.setBit(d.portReg(p, DIR), bit, false); err != nil {
		return err
	}
	if pull == NoPull {
		return d.setBit(d.portReg(p, PULDIS), bit, true)
	}
	if err := d.setBit(d.portReg(p, PSL), bit, pull == PullUp); err != nil {
		return err
	}
	return d.setBit(d.portReg(p, PULDIS), bit, false)
}

// ConfigureOutput makes pin an output with the given driver
func (d *Driver) ConfigureOutput(p Port, pin Pin, drive Drive) error {
	if err := check(p, pin); err != nil {
		return err
	}
	if drive > OpenDrain {
		return ErrInvalidParameter
	}
	bit := uint32(1) << pin
	if err := d.setBit(d.portReg(p, PDR), bit, drive == OpenDrain); err != nil {
		return err
	}
	return d.setBit(d.portReg(p, DIR), bit, true)
}

// SetPin drives an output through DSET or DCLR and verifies DOUT
func (d *Driver) SetPin(p Port, pin Pin, l Level) error {
	if err := check(p, pin); err != nil {
		return err
	}
	if l > High {
		return ErrInvalidParameter
	}
	bit := uint32(1) << pin
	if l == High {
		d.portReg(p, DSET).Write(d.bus, bit)
	} else {
		d.portReg(p, DCLR).Write(d.bus, bit)
	}
	dout := d.portReg(p, DOUT)
	got := dout.Read(d.bus) & bit
	if (got != 0) != (l == High) {
		return &reg.CommitError{Addr: dout.Addr, Want: bit * uint32(l), Got: got}
	}
	return nil
}

// GetPin reads the pin level from DIN
func (d *Driver) GetPin(p Port, pin Pin) (Level, error) {
	if err := check(p, pin); err != nil {
		return Low, err
	}
	if d.portReg(p, DIN).Read(d.bus)&(1<<pin) != 0 {
		return High, nil
	}
	return Low, nil
}

// TogglePin inverts the output latch of pin
func (d *Driver) TogglePin(p Port, pin Pin) error {
	if err := check(p, pin); err != nil {
		return err
	}
	l := High
	if d.portReg(p, DOUT).Read(d.bus)&(1<<pin) != 0 {
		l = Low
	}
	return d.SetPin(p, pin, l)
}

// ConfigureInterrupt sets the edge detection and priority line of pin.
// The interrupt itself stays as it was; see EnableInterrupt.
func (d *Driver) ConfigureInterrupt(p Port, pin Pin, edge Edge, prio Priority) error {
	if err := check(p, pin); err != nil {
		return err
	}
	if edge > BothEdges || prio > HighPriority {
		return ErrInvalidParameter
	}
	bit := intBit(p, pin)
	if err := d.setBit(d.reg(INTDET), bit, edge == BothEdges); err != nil {
		return err
	}
	if err := d.setBit(d.reg(POL), bit, edge == RisingEdge); err != nil {
		return err
	}
	return d.setClear(d.reg(LVLSET), d.reg(LVLCLR), bit, prio == HighPriority)
}

// EnableInterrupt enables or disables the pin interrupt. A stale flag is
// cleared before enabling.
func (d *Driver) EnableInterrupt(p Port, pin Pin, e Enable) error {
	if err := check(p, pin); err != nil {
		return err
	}
	if e > Enabled {
		return ErrInvalidParameter
	}
	bit := intBit(p, pin)
	if e == Enabled {
		d.reg(FLG).Write(d.bus, bit)
	}
	return d.setClear(d.reg(ENASET), d.reg(ENACLR), bit, e == Enabled)
}

// ClearFlag clears the interrupt flag of pin
func (d *Driver) ClearFlag(p Port, pin Pin) error {
	if err := check(p, pin); err != nil {
		return err
	}
	d.reg(FLG).Write(d.bus, intBit(p, pin))
	return nil
}

// Flag reports whether the pin's interrupt flag is set
func (d *Driver) Flag(p Port, pin Pin) (bool, error) {
	if err := check(p, pin); err != nil {
		return false, err
	}
	return d.reg(FLG).Read(d.bus)&intBit(p, pin) != 0, nil
}

// PendingInterrupt identifies a pin with a pending interrupt
type PendingInterrupt struct {
	Port Port
	Pin  Pin
}

// Decode turns a 1-based GIOOFFx/GIOEMUx index into a port and pin.
// Zero means nothing is pending; indexes past the last pin of PortB are
// reported as nothing pending too.
func Decode(raw uint32) (PendingInterrupt, bool) {
	raw = fieldOffset.Extract(raw)
	if raw == 0 || raw > NumPorts*PinsPerPort {
		return PendingInterrupt{}, false
	}
	idx := raw - 1
	return PendingInterrupt{Port: Port(idx / PinsPerPort), Pin: Pin(idx % PinsPerPort)}, true
}

// PendingInterrupt reads the highest priority pending pin on the selected
// line. Reading GIOOFF1/2 clears that pin's flag in hardware, so each call
// reports the next source; callers loop until it returns false.
func (d *Driver) PendingInterrupt(prio Priority) (PendingInterrupt, bool, error) {
	var r reg.Register
	switch prio {
	case HighPriority:
		r = d.reg(OFF1)
	case LowPriority:
		r = d.reg(OFF2)
	default:
		return PendingInterrupt{}, false, ErrInvalidParameter
	}
	raw := r.Read(d.bus)
	pi, ok := Decode(raw)
	if ok {
		core.Record(core.EvtGIOPending, uint8(prio), r.Addr, raw, 0)
	}
	return pi, ok, nil
}

// PeekPendingInterrupt is PendingInterrupt through GIOEMU1/2, which leaves the flag set
func (d *Driver) PeekPendingInterrupt(prio Priority) (PendingInterrupt, bool, error) {
	var r reg.Register
	switch prio {
	case HighPriority:
		r = d.reg(EMU1)
	case LowPriority:
		r = d.reg(EMU2)
	default:
		return PendingInterrupt{}, false, ErrInvalidParameter
	}
	pi, ok := Decode(r.Read(d.bus))
	return pi, ok, nil
}
