package sci

// Oversampling is the number of SCICLK periods per bit
type Oversampling uint32

const (
	Oversample1  Oversampling = 1  // Synchronous / isosynchronous timing
	Oversample16 Oversampling = 16 // Asynchronous timing
)

// BaudConfig is the content of the BRS register
type BaudConfig struct {
	Prescaler uint32 // 24-bit integer divider P
	M         uint8  // 4-bit fractional divider
	U         uint8  // 3-bit super-fractional divider
}

// Prescaler computes round(clockHz / (os*baud)) - 1, rounding half up.
// A zero baud, zero clock, unsupported oversampling or a quotient that
// rounds to zero is rejected. Results wider than 24 bits are not clamped;
// the field write truncates them and the caller must avoid such ratios.
func Prescaler(clockHz, baud uint32, os Oversampling) (uint32, error) {
	if baud == 0 || clockHz == 0 {
		return 0, ErrInvalidParameter
	}
	if os != Oversample1 && os != Oversample16 {
		return 0, ErrInvalidParameter
	}
	div := uint64(os) * uint64(baud)
	q := (2*uint64(clockHz) + div) / (2 * div)
	if q == 0 {
		return 0, ErrInvalidParameter
	}
	return uint32(q - 1), nil
}

// oversampling follows the GCR1 timing mode
func (d *Driver) oversampling(inst Instance) (Oversampling, error) {
	t, err := d.get(inst, GCR1, fieldTiming)
	if err != nil {
		return 0, err
	}
	if TimingMode(t) == Asynchronous {
		return Oversample16, nil
	}
	return Oversample1, nil
}

// SetBaudRate derives the prescaler from clockHz and baud and writes only
// the prescaler sub-field of BRS. M and U are left unchanged.
func (d *Driver) SetBaudRate(inst Instance, clockHz, baud uint32) error {
	os, err := d.oversampling(inst)
	if err != nil {
		return err
	}
	p, err := Prescaler(clockHz, baud, os)
	if err != nil {
		return err
	}
	return d.update(inst, BRS, fieldPrescaler, p)
}

// SetBaudConfig writes P, M and U in one verified write
func (d *Driver) SetBaudConfig(inst Instance, bc BaudConfig) error {
	if bc.M > 0xF || bc.U > 0x7 {
		return ErrInvalidParameter
	}
	rr, err := d.reg(inst, BRS)
	if err != nil {
		return err
	}
	v := fieldPrescaler.Insert(0, bc.Prescaler)
	v = fieldM.Insert(v, uint32(bc.M))
	v = fieldU.Insert(v, uint32(bc.U))
	return rr.Commit(d.bus, v)
}

// BaudConfig reads back the BRS register
func (d *Driver) BaudConfig(inst Instance) (BaudConfig, error) {
	rr, err := d.reg(inst, BRS)
	if err != nil {
		return BaudConfig{}, err
	}
	v := rr.Read(d.bus)
	return BaudConfig{
		Prescaler: fieldPrescaler.Extract(v),
		M:         uint8(fieldM.Extract(v)),
		U:         uint8(fieldU.Extract(v)),
	}, nil
}

// BaudRate computes the configured bit rate from clockHz.
// Asynchronous: clock / (16*(P+1) + M). Synchronous: clock / (P+1).
// The super-fractional U adjustment is ignored.
func (d *Driver) BaudRate(inst Instance, clockHz uint32) (uint32, error) {
	os, err := d.oversampling(inst)
	if err != nil {
		return 0, err
	}
	bc, err := d.BaudConfig(inst)
	if err != nil {
		return 0, err
	}
	div := uint64(os) * (uint64(bc.Prescaler) + 1)
	if os == Oversample16 {
		div += uint64(bc.M)
	}
	return uint32(uint64(clockHz) / div), nil
}
