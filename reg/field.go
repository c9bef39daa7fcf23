// Package reg provides bitfield access to 32-bit memory-mapped registers.
//
// Field math is pure. Hardware access goes through a Bus so the same
// driver code runs against real MMIO on target and against Sim on the host.
package reg

// Field is a contiguous bit span inside a 32-bit register
type Field struct {
	Offset uint8 // Lowest bit of the span
	Length uint8 // Width in bits (1-32)
}

// Bit returns a single-bit field
func Bit(n uint8) Field {
	return Field{Offset: n, Length: 1}
}

// widthMask returns length low bits set
func widthMask(length uint8) uint32 {
	if length >= 32 {
		return 0xFFFFFFFF
	}
	return (1 << length) - 1
}

// Valid reports whether the span fits in 32 bits
func (f Field) Valid() bool {
	return f.Length > 0 && uint16(f.Offset)+uint16(f.Length) <= 32
}

// Mask returns the in-place mask of the field
func (f Field) Mask() uint32 {
	return widthMask(f.Length) << f.Offset
}

// Insert returns regValue with the field replaced by v
func (f Field) Insert(regValue, v uint32) uint32 {
	return UpdateField(regValue, v, f.Offset, f.Length)
}

// Extract returns the right-aligned field value
func (f Field) Extract(regValue uint32) uint32 {
	return GetField(regValue, f.Offset, f.Length)
}

// UpdateField clears the span [offset, offset+length) in regValue and ORs in
// fieldValue truncated to length bits. Bits outside the span are preserved.
// The caller is responsible for a valid offset/length pair.
func UpdateField(regValue, fieldValue uint32, offset, length uint8) uint32 {
	m := widthMask(length)
	return (regValue &^ (m << offset)) | ((fieldValue & m) << offset)
}

// GetField extracts the right-aligned value of [offset, offset+length)
func GetField(regValue uint32, offset, length uint8) uint32 {
	return (regValue >> offset) & widthMask(length)
}
