package sci

import "tms570hal/reg"

// Instance selects one of the SCI/LIN modules
type Instance uint8

const (
	SCI1 Instance = iota
	SCI2
	SCI3
	SCI4

	NumInstances = 4
)

// LIN1 and LIN2 share their register blocks with SCI1 and SCI2
const (
	LIN1 = SCI1
	LIN2 = SCI2
)

// Register block base addresses (TMS570LC43x)
var bases = [NumInstances]uint32{
	0xFFF7E400, // SCI1/LIN1
	0xFFF7E500, // SCI2/LIN2
	0xFFF7E600, // SCI3
	0xFFF7E700, // SCI4
}

// Base returns the default register block base of inst, or 0 if invalid
func Base(inst Instance) uint32 {
	if inst >= NumInstances {
		return 0
	}
	return bases[inst]
}

func (i Instance) String() string {
	switch i {
	case SCI1:
		return "SCI1"
	case SCI2:
		return "SCI2"
	case SCI3:
		return "SCI3"
	case SCI4:
		return "SCI4"
	default:
		return "SCI?"
	}
}

// Register names one register of an SCI/LIN block
type Register uint8

const (
	GCR0 Register = iota
	GCR1
	GCR2
	SETINT
	CLEARINT
	SETINTLVL
	CLEARINTLVL
	FLR
	INTVECT0
	INTVECT1
	FORMAT
	BRS
	ED
	RD
	TD
	PIO0
	PIO1
	PIO2
	PIO3
	PIO4
	PIO5
	PIO6
	PIO7
	PIO8
	COMPARE
	RD0
	RD1
	MASK
	ID
	TD0
	TD1
	MBRS
	IODFTCTRL

	NumRegisters
)

var registerDefs = [NumRegisters]reg.Def{
	GCR0:        {Offset: 0x00, Mask: 0x00000001},
	GCR1:        {Offset: 0x04, Mask: 0x03033FFF},
	GCR2:        {Offset: 0x08, Mask: 0x00030101},
	SETINT:      {Offset: 0x0C, Mask: 0xFF0723D3},
	CLEARINT:    {Offset: 0x10, Mask: 0xFF0723D3},
	SETINTLVL:   {Offset: 0x14, Mask: 0xFF0423D3},
	CLEARINTLVL: {Offset: 0x18, Mask: 0xFF0423D3},
	FLR:         {Offset: 0x1C, Mask: 0xFF007FDF},
	INTVECT0:    {Offset: 0x20, Mask: 0x0000001F},
	INTVECT1:    {Offset: 0x24, Mask: 0x0000001F},
	FORMAT:      {Offset: 0x28, Mask: 0x00070007},
	BRS:         {Offset: 0x2C, Mask: 0x7FFFFFFF},
	ED:          {Offset: 0x30, Mask: 0x000000FF},
	RD:          {Offset: 0x34, Mask: 0x000000FF},
	TD:          {Offset: 0x38, Mask: 0x000000FF},
	PIO0:        {Offset: 0x3C, Mask: 0x00000006},
	PIO1:        {Offset: 0x40, Mask: 0x00000006},
	PIO2:        {Offset: 0x44, Mask: 0x00000006},
	PIO3:        {Offset: 0x48, Mask: 0x00000006},
	PIO4:        {Offset: 0x4C, Mask: 0x00000006},
	PIO5:        {Offset: 0x50, Mask: 0x00000006},
	PIO6:        {Offset: 0x54, Mask: 0x00000006},
	PIO7:        {Offset: 0x58, Mask: 0x00000006},
	PIO8:        {Offset: 0x5C, Mask: 0x00000006},
	COMPARE:     {Offset: 0x60, Mask: 0x00000307},
	RD0:         {Offset: 0x64, Mask: 0xFFFFFFFF},
	RD1:         {Offset: 0x68, Mask: 0xFFFFFFFF},
	MASK:        {Offset: 0x6C, Mask: 0x00FF00FF},
	ID:          {Offset: 0x70, Mask: 0x0000FFFF},
	TD0:         {Offset: 0x74, Mask: 0xFFFFFFFF},
	TD1:         {Offset: 0x78, Mask: 0xFFFFFFFF},
	MBRS:        {Offset: 0x7C, Mask: 0x00001FFF},
	IODFTCTRL:   {Offset: 0x90, Mask: 0xF71F0F03},
}

// Offset returns the byte offset of r inside the block
func (r Register) Offset() uint32 {
	if r >= NumRegisters {
		return 0
	}
	return registerDefs[r].Offset
}

// Mask returns the implemented bits of r
func (r Register) Mask() uint32 {
	if r >= NumRegisters {
		return 0
	}
	return registerDefs[r].Mask
}

// Reset values that differ from zero
const (
	FLRReset       = 0x00000900 // TXRDY | TXEMPTY
	IODFTCTRLReset = 0x00000500 // IODFTENA disabled key
)

// GCR0
var fieldReset = reg.Bit(0)

// GCR1
var (
	fieldComm         = reg.Bit(0)
	fieldTiming       = reg.Bit(1)
	fieldParityEna    = reg.Bit(2)
	fieldParity       = reg.Bit(3)
	fieldStop         = reg.Bit(4)
	fieldClock        = reg.Bit(5)
	fieldLINMode      = reg.Bit(6)
	fieldSWnRST       = reg.Bit(7)
	fieldSleep        = reg.Bit(8)
	fieldAdapt        = reg.Bit(9)
	fieldMBufMode     = reg.Bit(10)
	fieldCType        = reg.Bit(11)
	fieldHGenCtrl     = reg.Bit(12)
	fieldStopExtFrame = reg.Bit(13)
	fieldLoopBack     = reg.Bit(16)
	fieldCont         = reg.Bit(17)
	fieldRxEna        = reg.Bit(24)
	fieldTxEna        = reg.Bit(25)
)

// GCR2
var (
	fieldPowerDown = reg.Bit(0)
	fieldGenWU     = reg.Bit(8)
	fieldSC        = reg.Bit(16)
	fieldCC        = reg.Bit(17)
)

// FORMAT
var (
	fieldChar   = reg.Field{Offset: 0, Length: 3}
	fieldLength = reg.Field{Offset: 16, Length: 3}
)

// BRS
var (
	fieldPrescaler = reg.Field{Offset: 0, Length: 24}
	fieldM         = reg.Field{Offset: 24, Length: 4}
	fieldU         = reg.Field{Offset: 28, Length: 3}
)

// INTVECT0/1
var fieldIntVect = reg.Field{Offset: 0, Length: 5}

// COMPARE
var (
	fieldSBreak = reg.Field{Offset: 0, Length: 3}
	fieldSDel   = reg.Field{Offset: 8, Length: 2}
)

// MASK
var (
	fieldTxIDMask = reg.Field{Offset: 0, Length: 8}
	fieldRxIDMask = reg.Field{Offset: 16, Length: 8}
)

// ID
var (
	fieldIDByte     = reg.Field{Offset: 0, Length: 8}
	fieldIDSlave    = reg.Field{Offset: 8, Length: 8}
	fieldReceivedID = reg.Field{Offset: 16, Length: 8}
)

// MBRS
var fieldMBR = reg.Field{Offset: 0, Length: 13}

// IODFTCTRL
var (
	fieldRxPEna        = reg.Bit(0)
	fieldLpbEna        = reg.Bit(1)
	fieldIODFTEna      = reg.Field{Offset: 8, Length: 4}
	fieldTxShift       = reg.Field{Offset: 16, Length: 3}
	fieldPinSampleMask = reg.Field{Offset: 19, Length: 2}
)

// IODFTENA keys
const (
	iodftKeyEnable  = 0xA
	iodftKeyDisable = 0x5
)
