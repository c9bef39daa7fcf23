package reg

import (
	"errors"

	"tms570hal/core"
)

// Bus is 32-bit register access
type Bus interface {
	Read32(addr uint32) uint32
	Write32(addr, value uint32)
}

var (
	// ErrCommitMismatch is returned when a readback differs from the written value
	ErrCommitMismatch = errors.New("register commit mismatch")

	// ErrTimeout is returned when a poll budget is exhausted
	ErrTimeout = errors.New("register poll timeout")

	// ErrInvalidField is returned for a field that does not fit in 32 bits
	ErrInvalidField = errors.New("invalid register field")
)

// CommitError records a failed verified write
type CommitError struct {
	Addr uint32
	Want uint32
	Got  uint32
}

func (e *CommitError) Error() string {
	return "register commit mismatch at " + core.Hex32(e.Addr) +
		": want " + core.Hex32(e.Want) + " got " + core.Hex32(e.Got)
}

func (e *CommitError) Unwrap() error {
	return ErrCommitMismatch
}

// Commit writes value&mask to addr, reads it back and reports whether the
// masked readback equals the masked value. There is no retry.
func Commit(bus Bus, addr, value, mask uint32) bool {
	return commit(bus, addr, value, mask) == nil
}

func commit(bus Bus, addr, value, mask uint32) error {
	want := value & mask
	bus.Write32(addr, want)
	got := bus.Read32(addr) & mask
	if got != want {
		core.Record(core.EvtCommitMismatch, 0, addr, want, got)
		if core.IsDebugEnabled() {
			core.DebugPrintln("[REG] commit mismatch at " + core.Hex32(addr) +
				" want=" + core.Hex32(want) + " got=" + core.Hex32(got))
		}
		return &CommitError{Addr: addr, Want: want, Got: got}
	}
	return nil
}

// CommitMasked is Commit returning a *CommitError on mismatch
func CommitMasked(bus Bus, addr, value, mask uint32) error {
	return commit(bus, addr, value, mask)
}

// Register is a register address with the mask of its implemented bits
type Register struct {
	Addr uint32
	Mask uint32
}

// Read returns the raw register value
func (r Register) Read(bus Bus) uint32 {
	return bus.Read32(r.Addr)
}

// Write stores value&Mask without verification.
// Used for data, set/clear and write-one-to-clear registers.
func (r Register) Write(bus Bus, value uint32) {
	bus.Write32(r.Addr, value&r.Mask)
}

// Commit writes value and verifies it against the register mask
func (r Register) Commit(bus Bus, value uint32) error {
	return commit(bus, r.Addr, value, r.Mask)
}

// Get extracts a field from the current register value
func (r Register) Get(bus Bus, f Field) uint32 {
	return f.Extract(bus.Read32(r.Addr))
}

// Update performs a verified read-modify-write of one field
func (r Register) Update(bus Bus, f Field, v uint32) error {
	if !f.Valid() {
		return ErrInvalidField
	}
	cur := bus.Read32(r.Addr)
	return commit(bus, r.Addr, f.Insert(cur, v), r.Mask)
}
