// Package giosim models the GIO module on a reg.Sim register bank.
//
// DSET/DCLR act on DOUT, output pins read back through DIN, input edges
// set GIOFLG according to INTDET and POL, and GIOOFF1/2 report the lowest
// numbered enabled flag on each line. Reading an OFF register clears the
// flag it reported; the EMU registers do not.
package giosim

import (
	"sync"

	"tms570hal/gio"
	"tms570hal/reg"
)

// Model is one simulated GIO module
type Model struct {
	sim  *reg.Sim
	base uint32

	mu sync.Mutex
}

// New defines a GIO module at its default base address in sim
func New(sim *reg.Sim) *Model {
	return NewAt(sim, gio.DefaultBase)
}

// NewAt defines a GIO module at base in sim
func NewAt(sim *reg.Sim, base uint32) *Model {
	m := &Model{sim: sim, base: base}
	m.define()

	for _, r := range []gio.Register{gio.ENASET, gio.ENACLR, gio.LVLSET, gio.LVLCLR, gio.FLG} {
		m.sim.OnWrite(m.addr(r), func(_, _ uint32) { m.refresh() })
	}
	m.sim.OnRead(m.addr(gio.OFF1), func(_, v uint32) { m.acknowledge(v) })
	m.sim.OnRead(m.addr(gio.OFF2), func(_, v uint32) { m.acknowledge(v) })
	m.sim.OnWrite(m.addr(gio.GCR0), func(_, v uint32) {
		if v&1 == 0 {
			m.reset()
		}
	})
	for p := gio.Port(0); p < gio.NumPorts; p++ {
		p := p
		for _, r := range []gio.PortRegister{gio.DIR, gio.DOUT, gio.DSET, gio.DCLR} {
			m.sim.OnWrite(m.portAddr(p, r), func(_, _ uint32) { m.echo(p) })
		}
	}
	return m
}

func (m *Model) addr(r gio.Register) uint32 {
	return m.base + r.Offset()
}

func (m *Model) portAddr(p gio.Port, r gio.PortRegister) uint32 {
	return m.base + r.Offset(p)
}

func (m *Model) define() {
	m.sim.Define(m.addr(gio.GCR0), reg.Spec{Writable: gio.GCR0.Mask()})
	m.sim.Define(m.addr(gio.INTDET), reg.Spec{Writable: gio.INTDET.Mask()})
	m.sim.Define(m.addr(gio.POL), reg.Spec{Writable: gio.POL.Mask()})
	m.sim.DefineSetClear(m.addr(gio.ENASET), m.addr(gio.ENACLR), reg.Spec{Writable: gio.ENASET.Mask()})
	m.sim.DefineSetClear(m.addr(gio.LVLSET), m.addr(gio.LVLCLR), reg.Spec{Writable: gio.LVLSET.Mask()})
	m.sim.Define(m.addr(gio.FLG), reg.Spec{Writable: gio.FLG.Mask(), W1C: gio.FLG.Mask()})
	for _, r := range []gio.Register{gio.OFF1, gio.OFF2, gio.EMU1, gio.EMU2} {
		m.sim.Define(m.addr(r), reg.Spec{})
	}
	for p := gio.Port(0); p < gio.NumPorts; p++ {
		for _, r := range []gio.PortRegister{gio.DIR, gio.DOUT, gio.PDR, gio.PULDIS, gio.PSL} {
			m.sim.Define(m.portAddr(p, r), reg.Spec{Writable: r.Mask()})
		}
		m.sim.Define(m.portAddr(p, gio.DIN), reg.Spec{})
		m.sim.Alias(m.portAddr(p, gio.DSET), m.portAddr(p, gio.DOUT), reg.AliasSet)
		m.sim.Alias(m.portAddr(p, gio.DCLR), m.portAddr(p, gio.DOUT), reg.AliasClear)
	}
}

// reset clears every register but GCR0
func (m *Model) reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	for r := gio.INTDET; r < gio.NumRegisters; r++ {
		m.sim.Poke(m.addr(r), 0)
	}
	for p := gio.Port(0); p < gio.NumPorts; p++ {
		for r := gio.PortRegister(0); r < gio.NumPortRegisters; r++ {
			m.sim.Poke(m.portAddr(p, r), 0)
		}
	}
}

// echo copies the output latch of output pins into DIN
func (m *Model) echo(p gio.Port) {
	m.mu.Lock()
	defer m.mu.Unlock()
	dir := m.sim.Peek(m.portAddr(p, gio.DIR))
	dout := m.sim.Peek(m.portAddr(p, gio.DOUT))
	dinAddr := m.portAddr(p, gio.DIN)
	din := m.sim.Peek(dinAddr)
	m.sim.Poke(dinAddr, din&^dir|dout&dir)
}

// SetInput drives an external level onto an input pin. A transition that
// matches the pin's edge configuration sets its flag.
func (m *Model) SetInput(p gio.Port, pin gio.Pin, l gio.Level) {
	m.mu.Lock()
	bit := uint32(1) << pin
	dinAddr := m.portAddr(p, gio.DIN)
	din := m.sim.Peek(dinAddr)
	old := din&bit != 0
	high := l == gio.High
	if high {
		din |= bit
	} else {
		din &^= bit
	}
	m.sim.Poke(dinAddr, din)

	if old != high {
		ibit := uint32(1) << (uint32(p)*gio.PinsPerPort + uint32(pin))
		both := m.sim.Peek(m.addr(gio.INTDET))&ibit != 0
		rising := m.sim.Peek(m.addr(gio.POL))&ibit != 0
		if both || rising == high {
			m.sim.SetBits(m.addr(gio.FLG), ibit)
		}
	}
	m.mu.Unlock()
	m.refresh()
}

// Trigger sets the flag of pin as if its edge had been detected
func (m *Model) Trigger(p gio.Port, pin gio.Pin) {
	m.sim.SetBits(m.addr(gio.FLG), 1<<(uint32(p)*gio.PinsPerPort+uint32(pin)))
	m.refresh()
}

// acknowledge clears the flag reported by an OFF read
func (m *Model) acknowledge(v uint32) {
	if v == 0 {
		return
	}
	m.sim.ClearBits(m.addr(gio.FLG), 1<<(v-1))
	m.refresh()
}

// refresh recomputes the offset registers from FLG, ENA and LVL
func (m *Model) refresh() {
	m.mu.Lock()
	defer m.mu.Unlock()
	pending := m.sim.Peek(m.addr(gio.FLG)) & m.sim.Peek(m.addr(gio.ENASET))
	lvl := m.sim.Peek(m.addr(gio.LVLSET))
	high := lowest(pending & lvl)
	low := lowest(pending &^ lvl)
	m.sim.Poke(m.addr(gio.OFF1), high)
	m.sim.Poke(m.addr(gio.EMU1), high)
	m.sim.Poke(m.addr(gio.OFF2), low)
	m.sim.Poke(m.addr(gio.EMU2), low)
}

// lowest returns the 1-based index of the lowest set bit, or 0
func lowest(v uint32) uint32 {
	for i := uint32(0); i < 32; i++ {
		if v&(1<<i) != 0 {
			return i + 1
		}
	}
	return 0
}

// Pending returns the raw flag register
func (m *Model) Pending() uint32 {
	return m.sim.Peek(m.addr(gio.FLG))
}
