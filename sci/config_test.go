package sci_test

import (
	"errors"
	"testing"

	"tms570hal/core"
	"tms570hal/reg"
	"tms570hal/sci"
	"tms570hal/sci/scisim"
)

func TestInitSequence(t *testing.T) {
	sim := reg.NewSim()
	scisim.New(sim, sci.SCI1)
	d := sci.New(sim)

	masked := false
	sim.OnWrite(addr(sci.GCR1), func(_, _ uint32) {
		masked = masked || core.InterruptsMasked()
	})

	if err := d.Init(sci.SCI1, sci.DefaultConfig()); err != nil {
		t.Fatalf("Init failed: %v", err)
	}
	if !masked {
		t.Error("Expected GCR1 to be written with interrupts masked")
	}
	if core.InterruptsMasked() {
		t.Error("Expected interrupts restored after Init")
	}

	if got := sim.Peek(addr(sci.GCR0)); got != 1 {
		t.Errorf("Expected GCR0 out of reset, got 0x%X", got)
	}
	// async, internal clock, SWnRST, RXENA, TXENA
	if got := sim.Peek(addr(sci.GCR1)); got != 0x030000A2 {
		t.Errorf("Expected GCR1 0x030000A2, got 0x%08X", got)
	}
	if got := sim.Peek(addr(sci.FORMAT)); got != 0x00070007 {
		t.Errorf("Expected FORMAT 0x00070007, got 0x%08X", got)
	}
	if got := sim.Peek(addr(sci.BRS)); got != 42 {
		t.Errorf("Expected BRS 42, got %d", got)
	}
}

func TestInitRejectsBadConfig(t *testing.T) {
	d, _, _ := newTestDriver(t)

	cfg := sci.DefaultConfig()
	cfg.CharBits = 9
	if err := d.Init(sci.SCI1, cfg); !errors.Is(err, sci.ErrInvalidParameter) {
		t.Errorf("Expected ErrInvalidParameter, got %v", err)
	}

	cfg = sci.DefaultConfig()
	cfg.Baud = 0
	if err := d.Init(sci.SCI1, cfg); !errors.Is(err, sci.ErrInvalidParameter) {
		t.Errorf("Expected ErrInvalidParameter, got %v", err)
	}

	if err := d.Init(sci.Instance(4), sci.DefaultConfig()); !errors.Is(err, sci.ErrInvalidInstance) {
		t.Errorf("Expected ErrInvalidInstance, got %v", err)
	}
}

func TestInitInterruptModes(t *testing.T) {
	d, _, sim := newTestDriver(t)

	cfg := sci.DefaultConfig()
	cfg.TxMode = sci.Interrupt
	cfg.RxMode = sci.Interrupt
	if err := d.Init(sci.SCI1, cfg); err != nil {
		t.Fatalf("Init failed: %v", err)
	}
	st, _ := d.State(sci.SCI1)
	if !st.TxInterrupt() || !st.RxInterrupt() {
		t.Errorf("Expected both directions in interrupt mode, got mode %v", st.Mode)
	}
	if sim.Peek(addr(sci.SETINT)) != uint32(sci.FlagRx) {
		t.Errorf("Expected only RX enabled in SETINT, got 0x%08X", sim.Peek(addr(sci.SETINT)))
	}
}

func TestGCR1Setters(t *testing.T) {
	d, _, sim := newTestDriver(t)

	steps := []struct {
		name string
		fn   func() error
		bit  uint32
		set  bool
	}{
		{"address bit", func() error { return d.SetCommMode(sci.SCI1, sci.AddressBit) }, 1 << 0, true},
		{"parity even", func() error { return d.SetParity(sci.SCI1, sci.ParityEven) }, 1<<2 | 1<<3, true},
		{"two stop", func() error { return d.SetStopBits(sci.SCI1, sci.TwoStop) }, 1 << 4, true},
		{"lin mode", func() error { return d.SetProtocolMode(sci.SCI1, sci.LINMode) }, 1 << 6, true},
		{"multi buffer", func() error { return d.SetMultiBuffer(sci.SCI1, sci.Enabled) }, 1 << 10, true},
		{"enhanced checksum", func() error { return d.SetChecksumType(sci.SCI1, sci.EnhancedChecksum) }, 1 << 11, true},
		{"continue", func() error { return d.SetContinueOnSuspend(sci.SCI1, sci.Enabled) }, 1 << 17, true},
		{"rx off", func() error { return d.SetReceiver(sci.SCI1, sci.Disabled) }, 1 << 24, false},
		{"hold reset", func() error { return d.SetSoftwareReset(sci.SCI1, sci.HoldReset) }, 1 << 7, false},
	}

	for _, s := range steps {
		if err := s.fn(); err != nil {
			t.Fatalf("%s: %v", s.name, err)
		}
		got := sim.Peek(addr(sci.GCR1)) & s.bit
		if (got == s.bit) != s.set {
			t.Errorf("%s: unexpected GCR1 0x%08X", s.name, sim.Peek(addr(sci.GCR1)))
		}
	}

	if err := d.SetParity(sci.SCI1, sci.ParityOdd); err != nil {
		t.Fatalf("SetParity failed: %v", err)
	}
	if got := sim.Peek(addr(sci.GCR1)) & (1<<2 | 1<<3); got != 1<<2 {
		t.Errorf("Expected odd parity bits, got 0x%X", got)
	}

	if err := d.SetStopBits(sci.SCI1, sci.StopBits(2)); !errors.Is(err, sci.ErrInvalidParameter) {
		t.Errorf("Expected ErrInvalidParameter, got %v", err)
	}
}

func TestCommitMismatchPropagates(t *testing.T) {
	sim := reg.NewSim()
	// GCR1 implemented as read-only
	sim.Define(addr(sci.GCR1), reg.Spec{})
	d := sci.New(sim)

	err := d.SetCommMode(sci.SCI1, sci.AddressBit)
	if !errors.Is(err, reg.ErrCommitMismatch) {
		t.Errorf("Expected ErrCommitMismatch, got %v", err)
	}
}

func TestFormatAndGCR2(t *testing.T) {
	d, _, sim := newTestDriver(t)

	if err := d.SetCharLength(sci.SCI1, 7); err != nil {
		t.Fatalf("SetCharLength failed: %v", err)
	}
	if n, _ := d.CharLength(sci.SCI1); n != 7 {
		t.Errorf("Expected 7 bit characters, got %d", n)
	}
	if err := d.SetFrameLength(sci.SCI1, 3); err != nil {
		t.Fatalf("SetFrameLength failed: %v", err)
	}
	if n, _ := d.FrameLength(sci.SCI1); n != 3 {
		t.Errorf("Expected 3 characters per frame, got %d", n)
	}
	if err := d.SetCharLength(sci.SCI1, 0); !errors.Is(err, sci.ErrInvalidParameter) {
		t.Errorf("Expected ErrInvalidParameter, got %v", err)
	}

	if err := d.SetPowerDown(sci.SCI1, sci.Enabled); err != nil {
		t.Fatalf("SetPowerDown failed: %v", err)
	}
	if err := d.SendChecksum(sci.SCI1); err != nil {
		t.Fatalf("SendChecksum failed: %v", err)
	}
	// SC clears itself, POWERDOWN stays
	if got := sim.Peek(addr(sci.GCR2)); got != 0x1 {
		t.Errorf("Expected GCR2 0x1, got 0x%08X", got)
	}
}
