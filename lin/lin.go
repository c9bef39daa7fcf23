// Package lin implements LIN 2.x frame arithmetic: protected identifiers and checksums.
package lin

import "errors"

var (
	ErrInvalidID     = errors.New("lin: identifier out of range")
	ErrInvalidLength = errors.New("lin: frame data must be 1-8 bytes")
	ErrParity        = errors.New("lin: protected identifier parity mismatch")
	ErrChecksum      = errors.New("lin: checksum mismatch")
)

// MaxID is the largest 6-bit frame identifier
const MaxID = 0x3F

// Diagnostic frame identifiers; these always use the classic checksum
const (
	MasterRequestID = 0x3C
	SlaveResponseID = 0x3D
)

// ChecksumKind selects the LIN checksum model
type ChecksumKind uint8

const (
	Classic  ChecksumKind = iota // Data bytes only (LIN 1.x)
	Enhanced                     // Protected identifier and data bytes (LIN 2.x)
)

// ProtectedID adds the parity bits to a 6-bit identifier:
// P0 = ID0^ID1^ID2^ID4, P1 = !(ID1^ID3^ID4^ID5)
func ProtectedID(id uint8) uint8 {
	id &= MaxID
	bit := func(n uint) uint8 { return (id >> n) & 1 }
	p0 := bit(0) ^ bit(1) ^ bit(2) ^ bit(4)
	p1 := ^(bit(1) ^ bit(3) ^ bit(4) ^ bit(5)) & 1
	return id | p0<<6 | p1<<7
}

// ParsePID checks the parity bits of pid and returns the 6-bit identifier
func ParsePID(pid uint8) (uint8, error) {
	id := pid & MaxID
	if ProtectedID(id) != pid {
		return id, ErrParity
	}
	return id, nil
}

// Checksum returns the inverted eight-bit sum with carry of data, seeded
// with pid for the enhanced model
func Checksum(kind ChecksumKind, pid uint8, data []byte) uint8 {
	var sum uint16
	if kind == Enhanced {
		sum = uint16(pid)
	}
	for _, b := range data {
		sum += uint16(b)
		if sum > 0xFF {
			sum -= 0xFF
		}
	}
	return ^uint8(sum)
}

// FrameChecksum computes the checksum of a frame with the given 6-bit id,
// using the classic model for diagnostic frames regardless of kind
func FrameChecksum(kind ChecksumKind, id uint8, data []byte) uint8 {
	if id == MasterRequestID || id == SlaveResponseID {
		kind = Classic
	}
	return Checksum(kind, ProtectedID(id), data)
}

// Frame is one LIN frame
type Frame struct {
	ID       uint8 // 6-bit identifier
	Data     []byte
	Checksum uint8
}

// NewFrame builds a frame and computes its checksum
func NewFrame(kind ChecksumKind, id uint8, data []byte) (Frame, error) {
	if id > MaxID {
		return Frame{}, ErrInvalidID
	}
	if len(data) < 1 || len(data) > 8 {
		return Frame{}, ErrInvalidLength
	}
	return Frame{ID: id, Data: data, Checksum: FrameChecksum(kind, id, data)}, nil
}

// PID returns the protected identifier of the frame
func (f Frame) PID() uint8 {
	return ProtectedID(f.ID)
}

// Verify recomputes the checksum with kind
func (f Frame) Verify(kind ChecksumKind) error {
	if FrameChecksum(kind, f.ID, f.Data) != f.Checksum {
		return ErrChecksum
	}
	return nil
}
