package reg

import (
	"context"
	"errors"
	"testing"
)

func TestWaitSetReady(t *testing.T) {
	sim := NewSim()
	sim.Define(testAddr, Spec{Reset: 0x100})

	if err := WaitSet(context.Background(), sim, testAddr, 0x100, 1); err != nil {
		t.Errorf("Expected immediate success, got %v", err)
	}
}

func TestWaitSetTimeout(t *testing.T) {
	sim := NewSim()
	sim.Define(testAddr, Spec{})
	sim.SetTrace(true)

	err := WaitSet(context.Background(), sim, testAddr, 0x100, 10)
	if !errors.Is(err, ErrTimeout) {
		t.Fatalf("Expected ErrTimeout, got %v", err)
	}
	if n := len(sim.Trace()); n != 10 {
		t.Errorf("Expected 10 reads, got %d", n)
	}
}

func TestWaitSetBecomesReady(t *testing.T) {
	sim := NewSim()
	sim.Define(testAddr, Spec{})
	reads := 0
	sim.OnRead(testAddr, func(addr, value uint32) {
		reads++
		if reads == 3 {
			sim.SetBits(addr, 0x200)
		}
	})

	if err := WaitSet(nil, sim, testAddr, 0x200, 100); err != nil {
		t.Fatalf("WaitSet failed: %v", err)
	}
	if reads != 4 {
		t.Errorf("Expected 4 reads, got %d", reads)
	}
}

func TestWaitSetContextCanceled(t *testing.T) {
	sim := NewSim()
	sim.Define(testAddr, Spec{})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := WaitSet(ctx, sim, testAddr, 0x1, Unbounded)
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Expected context.Canceled, got %v", err)
	}
}

func TestWaitClear(t *testing.T) {
	sim := NewSim()
	sim.Define(testAddr, Spec{Reset: 0x8})
	sim.OnRead(testAddr, func(addr, value uint32) {
		sim.ClearBits(addr, 0x8)
	})

	if err := WaitClear(context.Background(), sim, testAddr, 0x8, 5); err != nil {
		t.Errorf("WaitClear failed: %v", err)
	}
}
