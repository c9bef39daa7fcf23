package reg

import "sync"

// Spec describes how a simulated register reacts to writes
type Spec struct {
	Reset    uint32 // Value after construction and Reset
	Writable uint32 // Bits a plain write stores; others read back unchanged
	W1C      uint32 // Bits cleared by writing one (subset of Writable)
}

// AliasKind selects how a write through an alias address affects its target
type AliasKind uint8

const (
	AliasSet   AliasKind = iota + 1 // Written ones are ORed into the target
	AliasClear                      // Written ones are cleared in the target
)

// Access is one entry of the bus trace
type Access struct {
	Write bool
	Addr  uint32
	Value uint32
}

// Hook observes an access after the register bank has been updated.
// Hooks run without the bank lock held and may call back into the Sim.
type Hook func(addr, value uint32)

type cell struct {
	value uint32
	spec  Spec
}

type entry struct {
	cell *cell
	kind AliasKind // 0 for the register itself
}

// Sim is an in-memory register bank implementing Bus.
// Undefined addresses read as zero; writing one creates a fully writable register.
type Sim struct {
	mu      sync.Mutex
	regs    map[uint32]entry
	onRead  map[uint32][]Hook
	onWrite map[uint32][]Hook
	tracing bool
	trace   []Access
}

// NewSim creates an empty register bank
func NewSim() *Sim {
	return &Sim{
		regs:    make(map[uint32]entry),
		onRead:  make(map[uint32][]Hook),
		onWrite: make(map[uint32][]Hook),
	}
}

// Define adds a register at addr
func (s *Sim) Define(addr uint32, spec Spec) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.regs[addr] = entry{cell: &cell{value: spec.Reset, spec: spec}}
}

// DefineSetClear adds a register readable at both addresses, where writes to
// setAddr set bits and writes to clrAddr clear them
func (s *Sim) DefineSetClear(setAddr, clrAddr uint32, spec Spec) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c := &cell{value: spec.Reset, spec: spec}
	s.regs[setAddr] = entry{cell: c, kind: AliasSet}
	s.regs[clrAddr] = entry{cell: c, kind: AliasClear}
}

// Alias maps addr onto an already defined target register
func (s *Sim) Alias(addr, target uint32, kind AliasKind) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.regs[target]
	if !ok {
		t = entry{cell: &cell{spec: Spec{Writable: 0xFFFFFFFF}}}
		s.regs[target] = t
	}
	s.regs[addr] = entry{cell: t.cell, kind: kind}
}

// OnRead registers a hook called after each read of addr
func (s *Sim) OnRead(addr uint32, h Hook) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onRead[addr] = append(s.onRead[addr], h)
}

// OnWrite registers a hook called after each write to addr with the raw written value
func (s *Sim) OnWrite(addr uint32, h Hook) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onWrite[addr] = append(s.onWrite[addr], h)
}

// Read32 implements Bus
func (s *Sim) Read32(addr uint32) uint32 {
	s.mu.Lock()
	var v uint32
	if e, ok := s.regs[addr]; ok {
		v = e.cell.value
	}
	if s.tracing {
		s.trace = append(s.trace, Access{Addr: addr, Value: v})
	}
	hooks := s.onRead[addr]
	s.mu.Unlock()

	for _, h := range hooks {
		h(addr, v)
	}
	return v
}

// Write32 implements Bus
func (s *Sim) Write32(addr, value uint32) {
	s.mu.Lock()
	e, ok := s.regs[addr]
	if !ok {
		e = entry{cell: &cell{spec: Spec{Writable: 0xFFFFFFFF}}}
		s.regs[addr] = e
	}
	c := e.cell
	switch e.kind {
	case AliasSet:
		c.value |= value & c.spec.Writable
	case AliasClear:
		c.value &^= value & c.spec.Writable
	default:
		plain := c.spec.Writable &^ c.spec.W1C
		c.value = (c.value &^ plain) | (value & plain)
		c.value &^= value & c.spec.W1C
	}
	if s.tracing {
		s.trace = append(s.trace, Access{Write: true, Addr: addr, Value: value})
	}
	hooks := s.onWrite[addr]
	s.mu.Unlock()

	for _, h := range hooks {
		h(addr, value)
	}
}

// Peek returns the stored value without tracing or hooks
func (s *Sim) Peek(addr uint32) uint32 {
	s.mu.Lock()
	defer s.mu.Unlock()
	if e, ok := s.regs[addr]; ok {
		return e.cell.value
	}
	return 0
}

// Poke stores a raw value, bypassing write semantics
func (s *Sim) Poke(addr, value uint32) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cellLocked(addr).value = value
}

// SetBits sets bits in the stored value as hardware would
func (s *Sim) SetBits(addr, bits uint32) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cellLocked(addr).value |= bits
}

// ClearBits clears bits in the stored value as hardware would
func (s *Sim) ClearBits(addr, bits uint32) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cellLocked(addr).value &^= bits
}

func (s *Sim) cellLocked(addr uint32) *cell {
	e, ok := s.regs[addr]
	if !ok {
		e = entry{cell: &cell{spec: Spec{Writable: 0xFFFFFFFF}}}
		s.regs[addr] = e
	}
	return e.cell
}

// Reset restores every defined register to its reset value
func (s *Sim) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, e := range s.regs {
		e.cell.value = e.cell.spec.Reset
	}
}

// SetTrace enables or disables access tracing; enabling clears the trace
func (s *Sim) SetTrace(enabled bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tracing = enabled
	s.trace = nil
}

// Trace returns a copy of the recorded accesses
func (s *Sim) Trace() []Access {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Access, len(s.trace))
	copy(out, s.trace)
	return out
}

// Writes returns the values written to addr, in order
func (s *Sim) Writes(addr uint32) []uint32 {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []uint32
	for _, a := range s.trace {
		if a.Write && a.Addr == addr {
			out = append(out, a.Value)
		}
	}
	return out
}
