package sci

import "tms570hal/core"

// LoopbackType selects the IODFT loopback path
type LoopbackType uint8

const (
	DigitalLoopback LoopbackType = iota // TX shift register to RX shift register
	AnalogLoopback                      // Through the pin input buffers
)

// ErrorForce selects IODFTCTRL error generation enables
type ErrorForce uint32

const (
	ForceBreak       ErrorForce = 1 << 24 // BRKDT ENA
	ForceParity      ErrorForce = 1 << 25 // PEN
	ForceFraming     ErrorForce = 1 << 26 // FEN
	ForceSyncField   ErrorForce = 1 << 28 // ISFE
	ForceChecksum    ErrorForce = 1 << 29 // CEN
	ForcePhysicalBus ErrorForce = 1 << 30 // PBEN
	ForceBit         ErrorForce = 1 << 31 // BEN

	forceMask = ForceBreak | ForceParity | ForceFraming | ForceSyncField |
		ForceChecksum | ForcePhysicalBus | ForceBit
)

// EnableLoopback clears IODFTCTRL, then enables IODFT with the requested
// loopback path
func (d *Driver) EnableLoopback(inst Instance, t LoopbackType) error {
	if t > AnalogLoopback {
		return ErrInvalidParameter
	}
	r, err := d.reg(inst, IODFTCTRL)
	if err != nil {
		return err
	}
	r.Write(d.bus, 0)
	v := fieldIODFTEna.Insert(0, iodftKeyEnable)
	v = fieldLpbEna.Insert(v, uint32(t))
	if err := r.Commit(d.bus, v); err != nil {
		return err
	}
	core.Record(core.EvtLoopback, uint8(inst), r.Addr, v, 1)
	return nil
}

// DisableLoopback restores IODFTCTRL to its reset value
func (d *Driver) DisableLoopback(inst Instance) error {
	r, err := d.reg(inst, IODFTCTRL)
	if err != nil {
		return err
	}
	if err := r.Commit(d.bus, IODFTCTRLReset); err != nil {
		return err
	}
	core.Record(core.EvtLoopback, uint8(inst), r.Addr, IODFTCTRLReset, 0)
	return nil
}

// Loopback reports whether IODFT loopback is enabled and its path
func (d *Driver) Loopback(inst Instance) (bool, LoopbackType, error) {
	r, err := d.reg(inst, IODFTCTRL)
	if err != nil {
		return false, 0, err
	}
	v := r.Read(d.bus)
	return fieldIODFTEna.Extract(v) == iodftKeyEnable, LoopbackType(fieldLpbEna.Extract(v)), nil
}

// SetRxPinPath enables the RX pin input path while in loopback (RXP ENA)
func (d *Driver) SetRxPinPath(inst Instance, e Enable) error {
	if e > Enabled {
		return ErrInvalidParameter
	}
	return d.update(inst, IODFTCTRL, fieldRxPEna, uint32(e))
}

// SetTxShift delays the TX data by shift SCICLK periods (0-7)
func (d *Driver) SetTxShift(inst Instance, shift uint8) error {
	if shift > 7 {
		return ErrInvalidParameter
	}
	return d.update(inst, IODFTCTRL, fieldTxShift, uint32(shift))
}

// TxShift returns the TX shift delay
func (d *Driver) TxShift(inst Instance) (uint8, error) {
	v, err := d.get(inst, IODFTCTRL, fieldTxShift)
	return uint8(v), err
}

// SetPinSampleMask selects the RX sample point inversion (0-3)
func (d *Driver) SetPinSampleMask(inst Instance, mask uint8) error {
	if mask > 3 {
		return ErrInvalidParameter
	}
	return d.update(inst, IODFTCTRL, fieldPinSampleMask, uint32(mask))
}

// PinSampleMask returns the RX sample point inversion
func (d *Driver) PinSampleMask(inst Instance) (uint8, error) {
	v, err := d.get(inst, IODFTCTRL, fieldPinSampleMask)
	return uint8(v), err
}

// SetErrorForcing enables or disables forced error generation for the sources in f
func (d *Driver) SetErrorForcing(inst Instance, f ErrorForce, e Enable) error {
	if f&^forceMask != 0 || e > Enabled {
		return ErrInvalidParameter
	}
	r, err := d.reg(inst, IODFTCTRL)
	if err != nil {
		return err
	}
	v := r.Read(d.bus)
	if e == Enabled {
		v |= uint32(f)
	} else {
		v &^= uint32(f)
	}
	return r.Commit(d.bus, v)
}

// ErrorForcing returns the enabled error generation sources
func (d *Driver) ErrorForcing(inst Instance) (ErrorForce, error) {
	r, err := d.reg(inst, IODFTCTRL)
	if err != nil {
		return 0, err
	}
	return ErrorForce(r.Read(d.bus)) & forceMask, nil
}
