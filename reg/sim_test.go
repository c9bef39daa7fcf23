package reg

import "testing"

func TestSimWriteOneToClear(t *testing.T) {
	sim := NewSim()
	sim.Define(testAddr, Spec{Reset: 0x07000900, Writable: 0xFF0000FF, W1C: 0xFF0000FF})

	sim.Write32(testAddr, 0x03000000)
	if got := sim.Peek(testAddr); got != 0x04000900 {
		t.Errorf("Expected 0x04000900, got 0x%08X", got)
	}
}

func TestSimSetClearPair(t *testing.T) {
	sim := NewSim()
	sim.DefineSetClear(0x10, 0x14, Spec{Writable: 0xFF})

	sim.Write32(0x10, 0x0F)
	sim.Write32(0x10, 0x30)
	sim.Write32(0x14, 0x03)
	if got := sim.Read32(0x14); got != 0x3C {
		t.Errorf("Expected 0x3C, got 0x%02X", got)
	}
	if sim.Read32(0x10) != sim.Read32(0x14) {
		t.Error("Set and clear addresses should read the same register")
	}
}

func TestSimAlias(t *testing.T) {
	sim := NewSim()
	sim.Define(0x3C, Spec{Writable: 0xFF})
	sim.Alias(0x40, 0x3C, AliasSet)
	sim.Alias(0x44, 0x3C, AliasClear)

	sim.Write32(0x40, 0x81)
	sim.Write32(0x44, 0x01)
	if got := sim.Peek(0x3C); got != 0x80 {
		t.Errorf("Expected 0x80, got 0x%02X", got)
	}
}

func TestSimUndefinedAndReset(t *testing.T) {
	sim := NewSim()
	if sim.Read32(0x1234) != 0 {
		t.Error("Undefined register should read zero")
	}
	sim.Write32(0x1234, 0xDEADBEEF)
	if got := sim.Read32(0x1234); got != 0xDEADBEEF {
		t.Errorf("Expected 0xDEADBEEF, got 0x%08X", got)
	}

	sim.Define(testAddr, Spec{Reset: 0x500, Writable: 0xFFFFFFFF})
	sim.Write32(testAddr, 0)
	sim.Reset()
	if got := sim.Peek(testAddr); got != 0x500 {
		t.Errorf("Expected reset value 0x500, got 0x%08X", got)
	}
}

func TestSimTraceAndHooks(t *testing.T) {
	sim := NewSim()
	var written []uint32
	sim.OnWrite(0x38, func(addr, value uint32) {
		written = append(written, value)
	})
	sim.SetTrace(true)

	sim.Write32(0x38, 0xAA)
	sim.Read32(0x38)
	sim.Write32(0x38, 0xBB)

	if len(written) != 2 || written[0] != 0xAA || written[1] != 0xBB {
		t.Errorf("Unexpected hook values: %v", written)
	}
	tr := sim.Trace()
	if len(tr) != 3 || !tr[0].Write || tr[1].Write {
		t.Errorf("Unexpected trace: %+v", tr)
	}
	w := sim.Writes(0x38)
	if len(w) != 2 || w[1] != 0xBB {
		t.Errorf("Unexpected writes: %v", w)
	}
}
