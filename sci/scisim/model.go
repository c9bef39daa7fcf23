// Package scisim models an SCI/LIN module on a reg.Sim register bank.
//
// The model covers what the driver observes: TXRDY/TXEMPTY drop on a TD
// write and come back on the next FLR read, RD reads clear RXRDY and load
// the next queued byte, IODFT or GCR1 loopback feeds transmitted bytes back
// into the receiver, a GCR0 reset restores reset values, and INTVECT0/1
// track the highest priority enabled flag.
package scisim

import (
	"sync"

	"tms570hal/reg"
	"tms570hal/sci"
)

// flrW1C are the FLR bits cleared by writing one
const flrW1C = 0xFF0062D3

// Model is one simulated SCI/LIN module
type Model struct {
	sim  *reg.Sim
	inst sci.Instance
	base uint32

	mu        sync.Mutex
	resets    map[uint32]uint32
	rxQueue   []byte
	tx        []byte
	txPending bool
	onTx      func(byte)
	headers   []uint8
	frames    [][]byte
}

// New defines inst at its default base address in sim
func New(sim *reg.Sim, inst sci.Instance) *Model {
	return NewAt(sim, inst, sci.Base(inst))
}

// NewAt defines inst at base in sim
func NewAt(sim *reg.Sim, inst sci.Instance, base uint32) *Model {
	m := &Model{
		sim:    sim,
		inst:   inst,
		base:   base,
		resets: make(map[uint32]uint32),
	}
	m.define()
	m.sim.OnWrite(m.addr(sci.TD), func(_, v uint32) { m.transmit(byte(v)) })
	m.sim.OnRead(m.addr(sci.FLR), func(_, _ uint32) { m.Step() })
	m.sim.OnRead(m.addr(sci.RD), func(_, _ uint32) { m.consume() })
	m.sim.OnWrite(m.addr(sci.GCR0), func(_, v uint32) {
		if v&1 == 0 {
			m.reset()
		}
	})
	m.sim.OnWrite(m.addr(sci.GCR2), func(addr, _ uint32) {
		// SC, CC and GEN WU clear themselves once the request is taken
		m.sim.ClearBits(addr, 1<<16|1<<17|1<<8)
	})
	m.sim.OnWrite(m.addr(sci.ID), func(_, v uint32) { m.header(uint8(v)) })
	m.sim.OnWrite(m.addr(sci.TD0), func(_, _ uint32) { m.frame() })
	for _, r := range []sci.Register{sci.FLR, sci.SETINT, sci.CLEARINT, sci.SETINTLVL, sci.CLEARINTLVL} {
		m.sim.OnWrite(m.addr(r), func(_, _ uint32) { m.refreshVectors() })
	}
	return m
}

func (m *Model) addr(r sci.Register) uint32 {
	return m.base + r.Offset()
}

func (m *Model) define() {
	for r := sci.Register(0); r < sci.NumRegisters; r++ {
		var spec reg.Spec
		switch r {
		case sci.SETINT, sci.CLEARINT, sci.SETINTLVL, sci.CLEARINTLVL, sci.PIO4, sci.PIO5:
			continue
		case sci.FLR:
			spec = reg.Spec{Reset: sci.FLRReset, Writable: flrW1C | uint32(sci.FlagTxWake), W1C: flrW1C}
		case sci.IODFTCTRL:
			spec = reg.Spec{Reset: sci.IODFTCTRLReset, Writable: r.Mask()}
		case sci.INTVECT0, sci.INTVECT1, sci.RD, sci.ED, sci.RD0, sci.RD1, sci.PIO2:
			spec = reg.Spec{}
		default:
			spec = reg.Spec{Writable: r.Mask()}
		}
		m.sim.Define(m.addr(r), spec)
		m.resets[m.addr(r)] = spec.Reset
	}
	m.sim.DefineSetClear(m.addr(sci.SETINT), m.addr(sci.CLEARINT), reg.Spec{Writable: sci.SETINT.Mask()})
	m.sim.DefineSetClear(m.addr(sci.SETINTLVL), m.addr(sci.CLEARINTLVL), reg.Spec{Writable: sci.SETINTLVL.Mask()})
	m.resets[m.addr(sci.SETINT)] = 0
	m.resets[m.addr(sci.SETINTLVL)] = 0
	m.sim.Alias(m.addr(sci.PIO4), m.addr(sci.PIO3), reg.AliasSet)
	m.sim.Alias(m.addr(sci.PIO5), m.addr(sci.PIO3), reg.AliasClear)
}

// reset restores every register but GCR0 and drops queued data
func (m *Model) reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rxQueue = nil
	m.txPending = false
	gcr0 := m.addr(sci.GCR0)
	for addr, v := range m.resets {
		if addr != gcr0 {
			m.sim.Poke(addr, v)
		}
	}
}

func (m *Model) loopbackLocked() bool {
	iodft := m.sim.Peek(m.addr(sci.IODFTCTRL))
	gcr1 := m.sim.Peek(m.addr(sci.GCR1))
	return (iodft>>8)&0xF == 0xA || gcr1&(1<<16) != 0
}

func (m *Model) transmit(b byte) {
	m.mu.Lock()
	m.tx = append(m.tx, b)
	m.txPending = true
	hook := m.onTx
	loop := m.loopbackLocked()
	m.sim.ClearBits(m.addr(sci.FLR), uint32(sci.FlagTx|sci.FlagTxEmpty))
	if loop {
		m.deliverLocked(b)
	}
	m.mu.Unlock()

	m.refreshVectors()
	if hook != nil {
		hook(b)
	}
}

// Step completes a pending transmission: TXRDY and TXEMPTY come back
func (m *Model) Step() {
	m.mu.Lock()
	pending := m.txPending
	m.txPending = false
	m.mu.Unlock()
	if pending {
		m.sim.SetBits(m.addr(sci.FLR), uint32(sci.FlagTx|sci.FlagTxEmpty))
		m.refreshVectors()
	}
}

func (m *Model) deliverLocked(b byte) {
	flr := m.addr(sci.FLR)
	if m.sim.Peek(flr)&uint32(sci.FlagRx) != 0 {
		m.rxQueue = append(m.rxQueue, b)
		return
	}
	m.sim.Poke(m.addr(sci.RD), uint32(b))
	m.sim.Poke(m.addr(sci.ED), uint32(b))
	m.sim.SetBits(flr, uint32(sci.FlagRx))
}

func (m *Model) consume() {
	m.mu.Lock()
	m.sim.ClearBits(m.addr(sci.FLR), uint32(sci.FlagRx))
	if len(m.rxQueue) > 0 {
		b := m.rxQueue[0]
		m.rxQueue = m.rxQueue[1:]
		m.deliverLocked(b)
	}
	m.mu.Unlock()
	m.refreshVectors()
}

func (m *Model) header(id uint8) {
	m.mu.Lock()
	if m.sim.Peek(m.addr(sci.GCR1))&(1<<6) != 0 {
		m.headers = append(m.headers, id)
	}
	if m.loopbackLocked() {
		idAddr := m.addr(sci.ID)
		m.sim.Poke(idAddr, m.sim.Peek(idAddr)&^0x00FF0000|uint32(id)<<16)
	}
	m.mu.Unlock()
}

func (m *Model) frame() {
	m.mu.Lock()
	n := int((m.sim.Peek(m.addr(sci.FORMAT))>>16)&0x7) + 1
	words := [2]uint32{m.sim.Peek(m.addr(sci.TD0)), m.sim.Peek(m.addr(sci.TD1))}
	data := make([]byte, n)
	for i := range data {
		data[i] = byte(words[i/4] >> (24 - 8*uint(i%4)))
	}
	m.frames = append(m.frames, data)
	if m.loopbackLocked() {
		m.sim.Poke(m.addr(sci.RD0), words[0])
		m.sim.Poke(m.addr(sci.RD1), words[1])
		m.sim.SetBits(m.addr(sci.FLR), uint32(sci.FlagRx))
	}
	m.mu.Unlock()
	m.refreshVectors()
}

func (m *Model) refreshVectors() {
	flr := m.sim.Peek(m.addr(sci.FLR))
	enabled := m.sim.Peek(m.addr(sci.SETINT))
	level := m.sim.Peek(m.addr(sci.SETINTLVL))
	pending := sci.Flag(flr & enabled)
	m.sim.Poke(m.addr(sci.INTVECT0), uint32(sci.VectorFor(pending&^sci.Flag(level))))
	m.sim.Poke(m.addr(sci.INTVECT1), uint32(sci.VectorFor(pending&sci.Flag(level))))
}

// Inject queues bytes arriving on the RX pin
func (m *Model) Inject(data ...byte) {
	m.mu.Lock()
	for _, b := range data {
		m.deliverLocked(b)
	}
	m.mu.Unlock()
	m.refreshVectors()
}

// Pending returns the number of received bytes not yet read, including RD
func (m *Model) Pending() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := len(m.rxQueue)
	if m.sim.Peek(m.addr(sci.FLR))&uint32(sci.FlagRx) != 0 {
		n++
	}
	return n
}

// Raise sets FLR flags as the hardware would
func (m *Model) Raise(f sci.Flag) {
	m.sim.SetBits(m.addr(sci.FLR), uint32(f))
	m.refreshVectors()
}

// SetIdle sets or clears the receiver IDLE flag
func (m *Model) SetIdle(idle bool) {
	if idle {
		m.sim.SetBits(m.addr(sci.FLR), uint32(sci.FlagIdle))
	} else {
		m.sim.ClearBits(m.addr(sci.FLR), uint32(sci.FlagIdle))
	}
}

// SetPinInput drives the PIO2 input level of pin
func (m *Model) SetPinInput(p sci.Pin, high bool) {
	if high {
		m.sim.SetBits(m.addr(sci.PIO2), 1<<p)
	} else {
		m.sim.ClearBits(m.addr(sci.PIO2), 1<<p)
	}
}

// SetTransmitHook registers fn to receive every byte written to TD.
// fn runs on the writer's goroutine.
func (m *Model) SetTransmitHook(fn func(byte)) {
	m.mu.Lock()
	m.onTx = fn
	m.mu.Unlock()
}

// Transmitted returns a copy of every byte written to TD
func (m *Model) Transmitted() []byte {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]byte, len(m.tx))
	copy(out, m.tx)
	return out
}

// TakeTransmitted returns and forgets the transmitted bytes
func (m *Model) TakeTransmitted() []byte {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := m.tx
	m.tx = nil
	return out
}

// Headers returns the identifiers written in LIN mode
func (m *Model) Headers() []uint8 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]uint8(nil), m.headers...)
}

// Frames returns the LIN responses started through TD0
func (m *Model) Frames() [][]byte {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([][]byte(nil), m.frames...)
}
