package gio

import "tms570hal/reg"

// DefaultBase is the GIO register block address (TMS570LC43x)
const DefaultBase = 0xFFF7BC00

// Register names a module-wide GIO register
type Register uint8

const (
	GCR0 Register = iota
	INTDET
	POL
	ENASET
	ENACLR
	LVLSET
	LVLCLR
	FLG
	OFF1
	OFF2
	EMU1
	EMU2

	NumRegisters
)

var registerDefs = [NumRegisters]reg.Def{
	GCR0:   {Offset: 0x00, Mask: 0x00000001},
	INTDET: {Offset: 0x08, Mask: 0xFFFFFFFF},
	POL:    {Offset: 0x0C, Mask: 0xFFFFFFFF},
	ENASET: {Offset: 0x10, Mask: 0xFFFFFFFF},
	ENACLR: {Offset: 0x14, Mask: 0xFFFFFFFF},
	LVLSET: {Offset: 0x18, Mask: 0xFFFFFFFF},
	LVLCLR: {Offset: 0x1C, Mask: 0xFFFFFFFF},
	FLG:    {Offset: 0x20, Mask: 0xFFFFFFFF},
	OFF1:   {Offset: 0x24, Mask: 0x0000003F},
	OFF2:   {Offset: 0x28, Mask: 0x0000003F},
	EMU1:   {Offset: 0x2C, Mask: 0x0000003F},
	EMU2:   {Offset: 0x30, Mask: 0x0000003F},
}

// PortRegister names a per-port GIO register
type PortRegister uint8

const (
	DIR PortRegister = iota
	DIN
	DOUT
	DSET
	DCLR
	PDR
	PULDIS
	PSL

	NumPortRegisters
)

// Port register offsets are relative to the port's block
var portRegisterDefs = [NumPortRegisters]reg.Def{
	DIR:    {Offset: 0x00, Mask: 0xFF},
	DIN:    {Offset: 0x04, Mask: 0xFF},
	DOUT:   {Offset: 0x08, Mask: 0xFF},
	DSET:   {Offset: 0x0C, Mask: 0xFF},
	DCLR:   {Offset: 0x10, Mask: 0xFF},
	PDR:    {Offset: 0x14, Mask: 0xFF},
	PULDIS: {Offset: 0x18, Mask: 0xFF},
	PSL:    {Offset: 0x1C, Mask: 0xFF},
}

const (
	portBlockOffset = 0x34 // Port A
	portBlockStride = 0x20
)

// Offset returns the byte offset of r from the GIO base
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

// Offset returns the byte offset of r for port p from the GIO base
func (r PortRegister) Offset(p Port) uint32 {
	if r >= NumPortRegisters {
		return 0
	}
	return portBlockOffset + uint32(p)*portBlockStride + portRegisterDefs[r].Offset
}

// Mask returns the implemented bits of r
func (r PortRegister) Mask() uint32 {
	if r >= NumPortRegisters {
		return 0
	}
	return portRegisterDefs[r].Mask
}

var (
	fieldReset  = reg.Bit(0)
	fieldOffset = reg.Field{Offset: 0, Length: 6}
)
