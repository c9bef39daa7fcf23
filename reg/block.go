package reg

// Def is one entry of a peripheral register table
type Def struct {
	Offset uint32 // Byte offset from the block base
	Mask   uint32 // Implemented bits
}

// Block is a peripheral register block: a base address and an offset table
// indexed by a closed register enum.
type Block[R ~uint8] struct {
	Base uint32
	Defs []Def
}

// NewBlock creates a block at base using a shared offset table
func NewBlock[R ~uint8](base uint32, defs []Def) Block[R] {
	return Block[R]{Base: base, Defs: defs}
}

// Len returns the number of registers in the table
func (b Block[R]) Len() int {
	return len(b.Defs)
}

// At returns the register for r, or false when r is outside the table
func (b Block[R]) At(r R) (Register, bool) {
	if int(r) >= len(b.Defs) {
		return Register{}, false
	}
	d := b.Defs[r]
	return Register{Addr: b.Base + d.Offset, Mask: d.Mask}, true
}

// Addr returns the absolute address of r, or 0 when r is outside the table
func (b Block[R]) Addr(r R) uint32 {
	reg, ok := b.At(r)
	if !ok {
		return 0
	}
	return reg.Addr
}
