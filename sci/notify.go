package sci

import "tms570hal/reg"

// IntLine selects one of the two interrupt lines of a module
type IntLine uint8

const (
	Line0 IntLine = iota // High priority line (INT0)
	Line1                // Low priority line (INT1)
)

// Vector is the pending interrupt offset read from INTVECT0/1
type Vector uint8

const (
	VectorNone               Vector = 0
	VectorWakeup             Vector = 1
	VectorSyncField          Vector = 2
	VectorParity             Vector = 3
	VectorID                 Vector = 4
	VectorPhysicalBus        Vector = 5
	VectorFraming            Vector = 6
	VectorBreak              Vector = 7
	VectorChecksum           Vector = 8
	VectorOverrun            Vector = 9
	VectorBit                Vector = 10
	VectorRx                 Vector = 11
	VectorTx                 Vector = 12
	VectorNoResponse         Vector = 13
	VectorTimeoutAfterWakeup Vector = 14
	VectorTimeoutAfter3Wake  Vector = 15
	VectorTimeout            Vector = 16
)

// vectorFlags maps each vector to the flag that raises it
var vectorFlags = [...]Flag{
	VectorWakeup:             FlagWakeup,
	VectorSyncField:          FlagSyncField,
	VectorParity:             FlagParity,
	VectorID:                 FlagID,
	VectorPhysicalBus:        FlagPhysicalBus,
	VectorFraming:            FlagFraming,
	VectorBreak:              FlagBreak,
	VectorChecksum:           FlagChecksum,
	VectorOverrun:            FlagOverrun,
	VectorBit:                FlagBit,
	VectorRx:                 FlagRx,
	VectorTx:                 FlagTx,
	VectorNoResponse:         FlagNoResponse,
	VectorTimeoutAfterWakeup: FlagTimeoutAfterWakeup,
	VectorTimeoutAfter3Wake:  FlagTimeoutAfter3Wakeup,
	VectorTimeout:            FlagTimeout,
}

// Flag returns the flag that raises v, or 0
func (v Vector) Flag() Flag {
	if int(v) >= len(vectorFlags) {
		return 0
	}
	return vectorFlags[v]
}

func (v Vector) String() string {
	if v == VectorNone {
		return "none"
	}
	if f := v.Flag(); f != 0 {
		return f.String()
	}
	return "reserved"
}

// VectorFor returns the vector of the highest priority flag in pending
func VectorFor(pending Flag) Vector {
	for v := VectorWakeup; v <= VectorTimeout; v++ {
		if pending&vectorFlags[v] != 0 {
			return v
		}
	}
	return VectorNone
}

// EnableNotification enables interrupt sources on inst.
// FlagTx is only recorded in the transfer mode; Send enables the TX
// interrupt when it arms a transfer. FlagRx is recorded in the transfer mode
// and enabled in SETINT. Every other flag goes to SETINT. The transfer mode
// changes only once SETINT verifies.
func (d *Driver) EnableNotification(inst Instance, flags Flag) error {
	if flags&^notificationFlags != 0 {
		return ErrInvalidParameter
	}
	setint, err := d.reg(inst, SETINT)
	if err != nil {
		return err
	}
	hw := flags &^ FlagTx
	if hw != 0 {
		if err := reg.CommitMasked(d.bus, setint.Addr, uint32(hw), uint32(hw)); err != nil {
			return err
		}
	}
	d.state[inst].Mode |= flags & modeFlags
	return nil
}

// DisableNotification mirrors EnableNotification: every flag other than
// FlagTx is written to CLEARINT and SETINT is read back to verify the sources
// are off. The mode bits are cleared only after that check.
func (d *Driver) DisableNotification(inst Instance, flags Flag) error {
	if flags&^notificationFlags != 0 {
		return ErrInvalidParameter
	}
	clr, err := d.reg(inst, CLEARINT)
	if err != nil {
		return err
	}
	setint, _ := d.reg(inst, SETINT)
	hw := flags &^ FlagTx
	if hw != 0 {
		clr.Write(d.bus, uint32(hw))
		if got := setint.Read(d.bus) & uint32(hw); got != 0 {
			return &reg.CommitError{Addr: setint.Addr, Want: 0, Got: got}
		}
	}
	d.state[inst].Mode &^= flags & modeFlags
	return nil
}

// EnabledNotifications returns the sources enabled in SETINT plus the mode bits
func (d *Driver) EnabledNotifications(inst Instance) (Flag, error) {
	setint, err := d.reg(inst, SETINT)
	if err != nil {
		return 0, err
	}
	return Flag(setint.Read(d.bus)&setint.Mask) | d.state[inst].Mode, nil
}

// SetTxMode selects poll or interrupt driven sends.
// Switching to poll also disables a TX interrupt left armed.
func (d *Driver) SetTxMode(inst Instance, m TransferMode) error {
	if m > Interrupt {
		return ErrInvalidParameter
	}
	if inst >= NumInstances {
		return ErrInvalidInstance
	}
	if m == Interrupt {
		return d.EnableNotification(inst, FlagTx)
	}
	if err := d.DisableNotification(inst, FlagTx); err != nil {
		return err
	}
	return d.DisarmTx(inst)
}

// SetRxMode selects poll or interrupt driven receives
func (d *Driver) SetRxMode(inst Instance, m TransferMode) error {
	switch m {
	case Interrupt:
		return d.EnableNotification(inst, FlagRx)
	case Poll:
		return d.DisableNotification(inst, FlagRx)
	default:
		return ErrInvalidParameter
	}
}

// SetInterruptLevel routes the sources in flags to line
func (d *Driver) SetInterruptLevel(inst Instance, flags Flag, line IntLine) error {
	if flags&^levelFlags != 0 || line > Line1 {
		return ErrInvalidParameter
	}
	set, err := d.reg(inst, SETINTLVL)
	if err != nil {
		return err
	}
	if line == Line1 {
		return reg.CommitMasked(d.bus, set.Addr, uint32(flags), uint32(flags))
	}
	clr, _ := d.reg(inst, CLEARINTLVL)
	clr.Write(d.bus, uint32(flags))
	if got := set.Read(d.bus) & uint32(flags); got != 0 {
		return &reg.CommitError{Addr: set.Addr, Want: 0, Got: got}
	}
	return nil
}

// InterruptLevels returns the sources routed to Line1
func (d *Driver) InterruptLevels(inst Instance) (Flag, error) {
	set, err := d.reg(inst, SETINTLVL)
	if err != nil {
		return 0, err
	}
	return Flag(set.Read(d.bus) & set.Mask), nil
}

// InterruptVector reads the highest priority pending vector of line
func (d *Driver) InterruptVector(inst Instance, line IntLine) (Vector, error) {
	r := INTVECT0
	switch line {
	case Line0:
	case Line1:
		r = INTVECT1
	default:
		return VectorNone, ErrInvalidParameter
	}
	v, err := d.get(inst, r, fieldIntVect)
	return Vector(v), err
}
