package sci

import (
	"tms570hal/core"
	"tms570hal/reg"
)

// Enable is a two-state switch for single-bit features
type Enable uint8

const (
	Disabled Enable = iota
	Enabled
)

// ResetState is the GCR0 module reset
type ResetState uint8

const (
	InReset ResetState = iota // Module held in reset, registers at reset values
	OutOfReset
)

// SoftwareReset is the GCR1 SWnRST state
type SoftwareReset uint8

const (
	HoldReset SoftwareReset = iota // State machines held, configuration allowed
	Ready                          // Ready for communication
)

// CommMode selects the multiprocessor protocol
type CommMode uint8

const (
	IdleLine CommMode = iota
	AddressBit
)

// TimingMode selects asynchronous or isosynchronous timing
type TimingMode uint8

const (
	Synchronous TimingMode = iota
	Asynchronous
)

// Parity of SCI frames
type Parity uint8

const (
	ParityNone Parity = iota
	ParityOdd
	ParityEven
)

// StopBits per frame
type StopBits uint8

const (
	OneStop StopBits = iota
	TwoStop
)

// ClockSource selects the SCICLK source
type ClockSource uint8

const (
	ExternalClock ClockSource = iota
	InternalClock
)

// ProtocolMode selects SCI or LIN operation
type ProtocolMode uint8

const (
	SCIMode ProtocolMode = iota
	LINMode
)

// ChecksumType selects the LIN checksum
type ChecksumType uint8

const (
	ClassicChecksum ChecksumType = iota
	EnhancedChecksum
)

// setGCR1 validates an enum against its value count and commits one GCR1 bit
func (d *Driver) setGCR1(inst Instance, f reg.Field, v, count uint8) error {
	if v >= count {
		return ErrInvalidParameter
	}
	return d.update(inst, GCR1, f, uint32(v))
}

// SetResetState writes the GCR0 RESET bit
func (d *Driver) SetResetState(inst Instance, s ResetState) error {
	if s > OutOfReset {
		return ErrInvalidParameter
	}
	return d.update(inst, GCR0, fieldReset, uint32(s))
}

// SetSoftwareReset writes SWnRST
func (d *Driver) SetSoftwareReset(inst Instance, s SoftwareReset) error {
	return d.setGCR1(inst, fieldSWnRST, uint8(s), 2)
}

func (d *Driver) SetCommMode(inst Instance, m CommMode) error {
	return d.setGCR1(inst, fieldComm, uint8(m), 2)
}

func (d *Driver) SetTimingMode(inst Instance, m TimingMode) error {
	return d.setGCR1(inst, fieldTiming, uint8(m), 2)
}

// SetParity writes PARITY ENA and PARITY together
func (d *Driver) SetParity(inst Instance, p Parity) error {
	if p > ParityEven {
		return ErrInvalidParameter
	}
	rr, err := d.reg(inst, GCR1)
	if err != nil {
		return err
	}
	v := rr.Read(d.bus)
	switch p {
	case ParityNone:
		v = fieldParityEna.Insert(v, 0)
	case ParityOdd:
		v = fieldParity.Insert(fieldParityEna.Insert(v, 1), 0)
	case ParityEven:
		v = fieldParity.Insert(fieldParityEna.Insert(v, 1), 1)
	}
	return rr.Commit(d.bus, v)
}

func (d *Driver) SetStopBits(inst Instance, s StopBits) error {
	return d.setGCR1(inst, fieldStop, uint8(s), 2)
}

func (d *Driver) SetClockSource(inst Instance, c ClockSource) error {
	return d.setGCR1(inst, fieldClock, uint8(c), 2)
}

func (d *Driver) SetProtocolMode(inst Instance, m ProtocolMode) error {
	return d.setGCR1(inst, fieldLINMode, uint8(m), 2)
}

func (d *Driver) SetSleep(inst Instance, e Enable) error {
	return d.setGCR1(inst, fieldSleep, uint8(e), 2)
}

// SetAdaptMode enables LIN automatic baud rate adjustment
func (d *Driver) SetAdaptMode(inst Instance, e Enable) error {
	return d.setGCR1(inst, fieldAdapt, uint8(e), 2)
}

// SetMultiBuffer enables the LIN multi-buffer mode (RD0/RD1, TD0/TD1)
func (d *Driver) SetMultiBuffer(inst Instance, e Enable) error {
	return d.setGCR1(inst, fieldMBufMode, uint8(e), 2)
}

func (d *Driver) SetChecksumType(inst Instance, c ChecksumType) error {
	return d.setGCR1(inst, fieldCType, uint8(c), 2)
}

// SetHGENControl selects ID filtering against ID-SlaveTask (Enabled) or the ID byte
func (d *Driver) SetHGENControl(inst Instance, e Enable) error {
	return d.setGCR1(inst, fieldHGenCtrl, uint8(e), 2)
}

func (d *Driver) SetStopExtFrame(inst Instance, e Enable) error {
	return d.setGCR1(inst, fieldStopExtFrame, uint8(e), 2)
}

// SetSelfTestLoopback connects TX to RX internally (GCR1 LOOP BACK)
func (d *Driver) SetSelfTestLoopback(inst Instance, e Enable) error {
	return d.setGCR1(inst, fieldLoopBack, uint8(e), 2)
}

// SetContinueOnSuspend keeps the module running while the CPU is halted by a debugger
func (d *Driver) SetContinueOnSuspend(inst Instance, e Enable) error {
	return d.setGCR1(inst, fieldCont, uint8(e), 2)
}

func (d *Driver) SetReceiver(inst Instance, e Enable) error {
	return d.setGCR1(inst, fieldRxEna, uint8(e), 2)
}

func (d *Driver) SetTransmitter(inst Instance, e Enable) error {
	return d.setGCR1(inst, fieldTxEna, uint8(e), 2)
}

// SetPowerDown writes GCR2 POWERDOWN
func (d *Driver) SetPowerDown(inst Instance, e Enable) error {
	if e > Enabled {
		return ErrInvalidParameter
	}
	return d.update(inst, GCR2, fieldPowerDown, uint32(e))
}

// GenerateWakeup requests a LIN wakeup signal. The bit clears itself.
func (d *Driver) GenerateWakeup(inst Instance) error {
	return d.pulse(inst, GCR2, fieldGenWU, 1)
}

// SendChecksum requests the checksum byte in LIN multi-buffer mode. The bit clears itself.
func (d *Driver) SendChecksum(inst Instance) error {
	return d.pulse(inst, GCR2, fieldSC, 1)
}

// CompareChecksum requests a checksum compare on the next frame. The bit clears itself.
func (d *Driver) CompareChecksum(inst Instance) error {
	return d.pulse(inst, GCR2, fieldCC, 1)
}

// SetCharLength sets the character length in bits (1-8)
func (d *Driver) SetCharLength(inst Instance, bits uint8) error {
	if bits < 1 || bits > 8 {
		return ErrInvalidParameter
	}
	return d.update(inst, FORMAT, fieldChar, uint32(bits-1))
}

// CharLength returns the character length in bits
func (d *Driver) CharLength(inst Instance) (uint8, error) {
	v, err := d.get(inst, FORMAT, fieldChar)
	return uint8(v) + 1, err
}

// SetFrameLength sets the number of characters per frame (1-8)
func (d *Driver) SetFrameLength(inst Instance, chars uint8) error {
	if chars < 1 || chars > 8 {
		return ErrInvalidParameter
	}
	return d.update(inst, FORMAT, fieldLength, uint32(chars-1))
}

// FrameLength returns the number of characters per frame
func (d *Driver) FrameLength(inst Instance) (uint8, error) {
	v, err := d.get(inst, FORMAT, fieldLength)
	return uint8(v) + 1, err
}

// Config is a complete SCI setup applied by Init
type Config struct {
	ClockHz    uint32 // VCLK feeding the module
	Baud       uint32
	Timing     TimingMode
	Parity     Parity
	StopBits   StopBits
	CharBits   uint8 // 1-8
	FrameChars uint8 // 1-8
	Clock      ClockSource
	Protocol   ProtocolMode
	Comm       CommMode
	TxMode     TransferMode
	RxMode     TransferMode
	Continue   Enable // Keep running on debug suspend
}

// DefaultConfig returns 115200 8N1, asynchronous, internal clock, polled
func DefaultConfig() Config {
	return Config{
		ClockHz:    80000000,
		Baud:       115200,
		Timing:     Asynchronous,
		Parity:     ParityNone,
		StopBits:   OneStop,
		CharBits:   8,
		FrameChars: 8,
		Clock:      InternalClock,
		Protocol:   SCIMode,
		Comm:       IdleLine,
		TxMode:     Poll,
		RxMode:     Poll,
		Continue:   Disabled,
	}
}

func (c Config) validate() error {
	if c.Timing > Asynchronous || c.Parity > ParityEven || c.StopBits > TwoStop ||
		c.Clock > InternalClock || c.Protocol > LINMode || c.Comm > AddressBit ||
		c.TxMode > Interrupt || c.RxMode > Interrupt || c.Continue > Enabled {
		return ErrInvalidParameter
	}
	if c.CharBits < 1 || c.CharBits > 8 || c.FrameChars < 1 || c.FrameChars > 8 {
		return ErrInvalidParameter
	}
	if c.Baud == 0 || c.ClockHz == 0 {
		return ErrInvalidParameter
	}
	return nil
}

// gcr1 composes the GCR1 value for cfg with SWnRST low
func (c Config) gcr1() uint32 {
	var v uint32
	v = fieldComm.Insert(v, uint32(c.Comm))
	v = fieldTiming.Insert(v, uint32(c.Timing))
	if c.Parity != ParityNone {
		v = fieldParityEna.Insert(v, 1)
		if c.Parity == ParityEven {
			v = fieldParity.Insert(v, 1)
		}
	}
	v = fieldStop.Insert(v, uint32(c.StopBits))
	v = fieldClock.Insert(v, uint32(c.Clock))
	v = fieldLINMode.Insert(v, uint32(c.Protocol))
	v = fieldCont.Insert(v, uint32(c.Continue))
	v = fieldRxEna.Insert(v, 1)
	v = fieldTxEna.Insert(v, 1)
	return v
}

// Init resets inst and applies cfg: module reset, GCR1, baud, format,
// transfer modes, then release from software reset. Interrupts are masked
// for the whole sequence.
func (d *Driver) Init(inst Instance, cfg Config) error {
	if inst >= NumInstances {
		return ErrInvalidInstance
	}
	if err := cfg.validate(); err != nil {
		return err
	}

	state := core.DisableInterrupts()
	defer core.RestoreInterrupts(state)

	if err := d.SetResetState(inst, InReset); err != nil {
		return err
	}
	if err := d.SetResetState(inst, OutOfReset); err != nil {
		return err
	}
	d.state[inst] = TransferState{}

	gcr1, _ := d.reg(inst, GCR1)
	if err := gcr1.Commit(d.bus, cfg.gcr1()); err != nil {
		return err
	}
	if err := d.SetBaudRate(inst, cfg.ClockHz, cfg.Baud); err != nil {
		return err
	}
	format, _ := d.reg(inst, FORMAT)
	fv := fieldChar.Insert(0, uint32(cfg.CharBits-1))
	fv = fieldLength.Insert(fv, uint32(cfg.FrameChars-1))
	if err := format.Commit(d.bus, fv); err != nil {
		return err
	}
	if err := d.SetTxMode(inst, cfg.TxMode); err != nil {
		return err
	}
	if err := d.SetRxMode(inst, cfg.RxMode); err != nil {
		return err
	}
	if err := d.SetSoftwareReset(inst, Ready); err != nil {
		return err
	}

	core.Record(core.EvtInit, uint8(inst), gcr1.Addr, cfg.gcr1(), cfg.Baud)
	if core.IsDebugEnabled() {
		core.DebugPrintln("[SCI] " + inst.String() + " init baud=" + core.Utoa(cfg.Baud))
	}
	return nil
}
