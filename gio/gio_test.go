package gio_test

import (
	"errors"
	"testing"

	"tms570hal/gio"
	"tms570hal/gio/giosim"
	"tms570hal/reg"
)

func newTestDriver(t *testing.T) (*gio.Driver, *giosim.Model, *reg.Sim) {
	t.Helper()
	sim := reg.NewSim()
	model := giosim.New(sim)
	d := gio.New(sim)
	if err := d.SetMode(gio.ModeNormal); err != nil {
		t.Fatalf("SetMode failed: %v", err)
	}
	return d, model, sim
}

func TestPortRegisterOffsets(t *testing.T) {
	tests := []struct {
		r    gio.PortRegister
		p    gio.Port
		want uint32
	}{
		{gio.DIR, gio.PortA, 0x34},
		{gio.DIN, gio.PortA, 0x38},
		{gio.DOUT, gio.PortA, 0x3C},
		{gio.DSET, gio.PortA, 0x40},
		{gio.DCLR, gio.PortA, 0x44},
		{gio.PDR, gio.PortA, 0x48},
		{gio.PULDIS, gio.PortA, 0x4C},
		{gio.PSL, gio.PortA, 0x50},
		{gio.DIR, gio.PortB, 0x54},
		{gio.PSL, gio.PortB, 0x70},
	}
	for _, tt := range tests {
		if got := tt.r.Offset(tt.p); got != tt.want {
			t.Errorf("Expected offset 0x%X for register %d port %s, got 0x%X", tt.want, tt.r, tt.p, got)
		}
	}
	if gio.OFF1.Offset() != 0x24 || gio.EMU2.Offset() != 0x30 {
		t.Error("Expected OFF1 at 0x24 and EMU2 at 0x30")
	}
}

func TestDecode(t *testing.T) {
	tests := []struct {
		raw  uint32
		ok   bool
		port gio.Port
		pin  gio.Pin
	}{
		{0, false, 0, 0},
		{1, true, gio.PortA, 0},
		{8, true, gio.PortA, 7},
		{9, true, gio.PortB, 0},
		{16, true, gio.PortB, 7},
		{17, false, 0, 0}, // No port past B
		{63, false, 0, 0},
		{0xFFFFFF40, false, 0, 0}, // Only the 6-bit index counts
	}
	for _, tt := range tests {
		pi, ok := gio.Decode(tt.raw)
		if ok != tt.ok {
			t.Errorf("Decode(%d): expected ok=%v, got %v", tt.raw, tt.ok, ok)
			continue
		}
		if ok && (pi.Port != tt.port || pi.Pin != tt.pin) {
			t.Errorf("Decode(%d): expected port %s pin %d, got port %s pin %d",
				tt.raw, tt.port, tt.pin, pi.Port, pi.Pin)
		}
	}
}

func TestSetMode(t *testing.T) {
	d, _, sim := newTestDriver(t)
	if got := sim.Peek(gio.DefaultBase); got != 1 {
		t.Errorf("Expected GCR0 1, got %d", got)
	}
	if err := d.SetMode(gio.Mode(2)); !errors.Is(err, gio.ErrInvalidParameter) {
		t.Errorf("Expected ErrInvalidParameter, got %v", err)
	}
	if err := d.SetMode(gio.ModeReset); err != nil {
		t.Fatalf("SetMode failed: %v", err)
	}
	if got := sim.Peek(gio.DefaultBase); got != 0 {
		t.Errorf("Expected GCR0 0, got %d", got)
	}
}

func TestConfigureInput(t *testing.T) {
	d, _, sim := newTestDriver(t)
	base := uint32(gio.DefaultBase)

	if err := d.ConfigureInput(gio.PortB, 3, gio.PullUp); err != nil {
		t.Fatalf("ConfigureInput failed: %v", err)
	}
	if sim.Peek(base+gio.PSL.Offset(gio.PortB)) != 1<<3 {
		t.Error("Expected pull-up selected on B3")
	}
	if sim.Peek(base+gio.PULDIS.Offset(gio.PortB)) != 0 {
		t.Error("Expected pull enabled on B3")
	}

	if err := d.ConfigureInput(gio.PortB, 3, gio.PullDown); err != nil {
		t.Fatalf("ConfigureInput failed: %v", err)
	}
	if sim.Peek(base+gio.PSL.Offset(gio.PortB)) != 0 {
		t.Error("Expected pull-down selected on B3")
	}

	if err := d.ConfigureInput(gio.PortB, 3, gio.NoPull); err != nil {
		t.Fatalf("ConfigureInput failed: %v", err)
	}
	if sim.Peek(base+gio.PULDIS.Offset(gio.PortB)) != 1<<3 {
		t.Error("Expected pull disabled on B3")
	}
	// Port A must be untouched
	if sim.Peek(base+gio.PULDIS.Offset(gio.PortA)) != 0 {
		t.Error("Expected port A PULDIS untouched")
	}
}

func TestOutputPins(t *testing.T) {
	d, _, sim := newTestDriver(t)
	base := uint32(gio.DefaultBase)

	if err := d.ConfigureOutput(gio.PortA, 5, gio.OpenDrain); err != nil {
		t.Fatalf("ConfigureOutput failed: %v", err)
	}
	if sim.Peek(base+gio.DIR.Offset(gio.PortA)) != 1<<5 {
		t.Error("Expected A5 configured as output")
	}
	if sim.Peek(base+gio.PDR.Offset(gio.PortA)) != 1<<5 {
		t.Error("Expected A5 open drain")
	}

	sim.SetTrace(true)
	if err := d.SetPin(gio.PortA, 5, gio.High); err != nil {
		t.Fatalf("SetPin failed: %v", err)
	}
	if w := sim.Writes(base + gio.DSET.Offset(gio.PortA)); len(w) != 1 || w[0] != 1<<5 {
		t.Errorf("Expected one DSET write of 0x20, got %v", w)
	}
	if w := sim.Writes(base + gio.DOUT.Offset(gio.PortA)); len(w) != 0 {
		t.Errorf("Expected no DOUT writes, got %v", w)
	}
	if l, _ := d.GetPin(gio.PortA, 5); l != gio.High {
		t.Error("Expected A5 to read high")
	}

	if err := d.TogglePin(gio.PortA, 5); err != nil {
		t.Fatalf("TogglePin failed: %v", err)
	}
	if w := sim.Writes(base + gio.DCLR.Offset(gio.PortA)); len(w) != 1 || w[0] != 1<<5 {
		t.Errorf("Expected one DCLR write of 0x20, got %v", w)
	}
	if l, _ := d.GetPin(gio.PortA, 5); l != gio.Low {
		t.Error("Expected A5 to read low after toggle")
	}
}

func TestSetPinDetectsStuckLatch(t *testing.T) {
	sim := reg.NewSim()
	d := gio.New(sim)
	// DOUT without a DSET alias never changes
	sim.Define(gio.DefaultBase+gio.DOUT.Offset(gio.PortA), reg.Spec{})

	err := d.SetPin(gio.PortA, 0, gio.High)
	if !errors.Is(err, reg.ErrCommitMismatch) {
		t.Errorf("Expected ErrCommitMismatch, got %v", err)
	}
}

func TestInvalidArguments(t *testing.T) {
	d, _, _ := newTestDriver(t)

	if err := d.SetPin(gio.Port(2), 0, gio.High); !errors.Is(err, gio.ErrInvalidPort) {
		t.Errorf("Expected ErrInvalidPort, got %v", err)
	}
	if err := d.SetPin(gio.PortA, 8, gio.High); !errors.Is(err, gio.ErrInvalidPin) {
		t.Errorf("Expected ErrInvalidPin, got %v", err)
	}
	if err := d.ConfigureInput(gio.PortA, 0, gio.Pull(3)); !errors.Is(err, gio.ErrInvalidParameter) {
		t.Errorf("Expected ErrInvalidParameter, got %v", err)
	}
	if err := d.ConfigureInterrupt(gio.PortA, 0, gio.Edge(3), gio.LowPriority); !errors.Is(err, gio.ErrInvalidParameter) {
		t.Errorf("Expected ErrInvalidParameter, got %v", err)
	}
	if _, _, err := d.PendingInterrupt(gio.Priority(2)); !errors.Is(err, gio.ErrInvalidParameter) {
		t.Errorf("Expected ErrInvalidParameter, got %v", err)
	}
}

func TestConfigureInterrupt(t *testing.T) {
	d, _, sim := newTestDriver(t)
	base := uint32(gio.DefaultBase)

	if err := d.ConfigureInterrupt(gio.PortB, 1, gio.RisingEdge, gio.HighPriority); err != nil {
		t.Fatalf("ConfigureInterrupt failed: %v", err)
	}
	bit := uint32(1) << 9
	if sim.Peek(base+gio.POL.Offset()) != bit {
		t.Error("Expected rising polarity for B1")
	}
	if sim.Peek(base+gio.INTDET.Offset()) != 0 {
		t.Error("Expected single edge detection for B1")
	}
	if sim.Peek(base+gio.LVLSET.Offset()) != bit {
		t.Error("Expected B1 on the high priority line")
	}

	if err := d.ConfigureInterrupt(gio.PortB, 1, gio.BothEdges, gio.LowPriority); err != nil {
		t.Fatalf("ConfigureInterrupt failed: %v", err)
	}
	if sim.Peek(base+gio.INTDET.Offset()) != bit {
		t.Error("Expected both edge detection for B1")
	}
	if sim.Peek(base+gio.LVLSET.Offset()) != 0 {
		t.Error("Expected B1 on the low priority line")
	}
}

func TestEnableInterruptClearsStaleFlag(t *testing.T) {
	d, model, _ := newTestDriver(t)

	model.Trigger(gio.PortA, 2)
	if set, _ := d.Flag(gio.PortA, 2); !set {
		t.Fatal("Expected flag set by trigger")
	}
	if err := d.EnableInterrupt(gio.PortA, 2, gio.Enabled); err != nil {
		t.Fatalf("EnableInterrupt failed: %v", err)
	}
	if set, _ := d.Flag(gio.PortA, 2); set {
		t.Error("Expected stale flag cleared on enable")
	}
	if err := d.EnableInterrupt(gio.PortA, 2, gio.Disabled); err != nil {
		t.Fatalf("EnableInterrupt failed: %v", err)
	}
}

func TestPendingInterrupts(t *testing.T) {
	d, model, _ := newTestDriver(t)

	for _, pin := range []gio.Pin{0, 6} {
		if err := d.ConfigureInput(gio.PortB, pin, gio.PullDown); err != nil {
			t.Fatalf("ConfigureInput failed: %v", err)
		}
		if err := d.ConfigureInterrupt(gio.PortB, pin, gio.RisingEdge, gio.LowPriority); err != nil {
			t.Fatalf("ConfigureInterrupt failed: %v", err)
		}
		if err := d.EnableInterrupt(gio.PortB, pin, gio.Enabled); err != nil {
			t.Fatalf("EnableInterrupt failed: %v", err)
		}
	}

	// Falling edge on a rising-edge pin is ignored
	model.SetInput(gio.PortB, 6, gio.High)
	model.SetInput(gio.PortB, 6, gio.Low)
	model.SetInput(gio.PortB, 6, gio.High)
	model.SetInput(gio.PortB, 0, gio.High)

	if _, ok, _ := d.PendingInterrupt(gio.HighPriority); ok {
		t.Error("Expected nothing pending on the high priority line")
	}
	if pi, ok, _ := d.PeekPendingInterrupt(gio.LowPriority); !ok || pi.Pin != 0 {
		t.Errorf("Expected peek to report B0, got %+v ok=%v", pi, ok)
	}

	var got []gio.PendingInterrupt
	for {
		pi, ok, err := d.PendingInterrupt(gio.LowPriority)
		if err != nil {
			t.Fatalf("PendingInterrupt failed: %v", err)
		}
		if !ok {
			break
		}
		got = append(got, pi)
		if len(got) > 4 {
			t.Fatal("Expected pending interrupts to drain")
		}
	}
	want := []gio.PendingInterrupt{{Port: gio.PortB, Pin: 0}, {Port: gio.PortB, Pin: 6}}
	if len(got) != len(want) {
		t.Fatalf("Expected %d interrupts, got %d", len(want), len(got))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Interrupt %d: expected %+v, got %+v", i, want[i], got[i])
		}
	}
	if model.Pending() != 0 {
		t.Errorf("Expected all flags cleared, got 0x%X", model.Pending())
	}
}
