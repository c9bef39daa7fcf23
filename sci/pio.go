package sci

import "tms570hal/reg"

// Pin is one of the module's two pins in PIO mode
type Pin uint8

const (
	PinRX Pin = 1 // Bit 1 of the PIO registers
	PinTX Pin = 2 // Bit 2 of the PIO registers
)

// PinFunction selects GIO or SCI function for a pin
type PinFunction uint8

const (
	PinGIO PinFunction = iota
	PinFunctional
)

// Direction of a pin in GIO mode
type Direction uint8

const (
	Input Direction = iota
	Output
)

// Pull configures the pin pull resistor
type Pull uint8

const (
	PullDown Pull = iota
	PullUp
	PullDisabled
)

func (p Pin) mask() uint32 {
	return 1 << p
}

func (p Pin) valid() bool {
	return p == PinRX || p == PinTX
}

// setPIOBit commits one pin bit of a PIO register
func (d *Driver) setPIOBit(inst Instance, r Register, p Pin, on bool) error {
	if !p.valid() {
		return ErrInvalidParameter
	}
	rr, err := d.reg(inst, r)
	if err != nil {
		return err
	}
	v := rr.Read(d.bus)
	if on {
		v |= p.mask()
	} else {
		v &^= p.mask()
	}
	return rr.Commit(d.bus, v)
}

// SetPinFunction selects SCI function or GIO for pin (PIO0)
func (d *Driver) SetPinFunction(inst Instance, p Pin, f PinFunction) error {
	if f > PinFunctional {
		return ErrInvalidParameter
	}
	return d.setPIOBit(inst, PIO0, p, f == PinFunctional)
}

// SetPinDirection sets the GIO direction of pin (PIO1)
func (d *Driver) SetPinDirection(inst Instance, p Pin, dir Direction) error {
	if dir > Output {
		return ErrInvalidParameter
	}
	return d.setPIOBit(inst, PIO1, p, dir == Output)
}

// PinInput reads the pin level (PIO2)
func (d *Driver) PinInput(inst Instance, p Pin) (bool, error) {
	if !p.valid() {
		return false, ErrInvalidParameter
	}
	rr, err := d.reg(inst, PIO2)
	if err != nil {
		return false, err
	}
	return rr.Read(d.bus)&p.mask() != 0, nil
}

// SetPinOutput drives the pin through PIO4 (set) or PIO5 (clear) and
// verifies the result in PIO3
func (d *Driver) SetPinOutput(inst Instance, p Pin, high bool) error {
	if !p.valid() {
		return ErrInvalidParameter
	}
	r := PIO5
	if high {
		r = PIO4
	}
	rr, err := d.reg(inst, r)
	if err != nil {
		return err
	}
	rr.Write(d.bus, p.mask())
	dout, _ := d.reg(inst, PIO3)
	got := dout.Read(d.bus) & p.mask()
	if (got != 0) != high {
		var want uint32
		if high {
			want = p.mask()
		}
		return &reg.CommitError{Addr: dout.Addr, Want: want, Got: got}
	}
	return nil
}

// PinOutput returns the output latch of pin (PIO3)
func (d *Driver) PinOutput(inst Instance, p Pin) (bool, error) {
	if !p.valid() {
		return false, ErrInvalidParameter
	}
	rr, err := d.reg(inst, PIO3)
	if err != nil {
		return false, err
	}
	return rr.Read(d.bus)&p.mask() != 0, nil
}

// SetPinOpenDrain enables open drain output on pin (PIO6)
func (d *Driver) SetPinOpenDrain(inst Instance, p Pin, e Enable) error {
	if e > Enabled {
		return ErrInvalidParameter
	}
	return d.setPIOBit(inst, PIO6, p, e == Enabled)
}

// SetPinPull configures the pull resistor of pin (PIO7 disable, PIO8 select)
func (d *Driver) SetPinPull(inst Instance, p Pin, pull Pull) error {
	switch pull {
	case PullDisabled:
		return d.setPIOBit(inst, PIO7, p, true)
	case PullDown, PullUp:
		if err := d.setPIOBit(inst, PIO8, p, pull == PullUp); err != nil {
			return err
		}
		return d.setPIOBit(inst, PIO7, p, false)
	default:
		return ErrInvalidParameter
	}
}
