package core

import (
	"strings"
	"testing"
)

func TestEventRingOrder(t *testing.T) {
	ClearEventRing()
	defer ClearEventRing()

	Record(EvtInit, 0, 0x100, 1, 0)
	Record(EvtPollTimeout, 1, 0x200, 2, 0)

	events := Events()
	if len(events) != 2 {
		t.Fatalf("Expected 2 events, got %d", len(events))
	}
	if events[0].Type != EvtInit || events[1].Type != EvtPollTimeout {
		t.Errorf("Expected INIT then POLL_TIMEOUT, got %s then %s",
			EventName(events[0].Type), EventName(events[1].Type))
	}
	if events[1].Unit != 1 || events[1].Addr != 0x200 {
		t.Errorf("Unexpected event contents: %+v", events[1])
	}
}

func TestEventRingWraps(t *testing.T) {
	ClearEventRing()
	defer ClearEventRing()

	for i := 0; i < EventRingSize+5; i++ {
		Record(EvtTxArmed, 0, 0, uint32(i), 0)
	}
	events := Events()
	if len(events) != EventRingSize {
		t.Fatalf("Expected %d events, got %d", EventRingSize, len(events))
	}
	if events[0].Value1 != 5 {
		t.Errorf("Expected oldest event 5, got %d", events[0].Value1)
	}
	if last := events[len(events)-1].Value1; last != EventRingSize+4 {
		t.Errorf("Expected newest event %d, got %d", EventRingSize+4, last)
	}
}

func TestEventCaptureDisabled(t *testing.T) {
	ClearEventRing()
	SetEventCapture(false)
	defer SetEventCapture(true)

	Record(EvtLoopback, 0, 0, 0, 0)
	if n := len(Events()); n != 0 {
		t.Errorf("Expected no events while capture is off, got %d", n)
	}
}

func TestDumpEventRing(t *testing.T) {
	ClearEventRing()
	defer ClearEventRing()

	var lines []string
	SetDebugWriter(func(s string) { lines = append(lines, s) })
	defer SetDebugWriter(func(string) {})

	Record(EvtCommitMismatch, 2, 0xFFF7E404, 0x20, 0)
	DumpEventRing()

	if len(lines) != 3 {
		t.Fatalf("Expected 3 lines, got %d: %v", len(lines), lines)
	}
	want := "[EVENT] COMMIT_MISMATCH! unit=2 addr=0xFFF7E404 v1=0x00000020 v2=0x00000000"
	if lines[1] != want {
		t.Errorf("Expected %q, got %q", want, lines[1])
	}
}

func TestDebugPrintlnGated(t *testing.T) {
	var out []string
	SetDebugWriter(func(s string) { out = append(out, s) })
	defer SetDebugWriter(func(string) {})

	SetDebugEnabled(false)
	DebugPrintln("hidden")
	SetDebugEnabled(true)
	DebugPrintln("shown")
	SetDebugEnabled(false)

	if len(out) != 1 || !strings.Contains(out[0], "shown") {
		t.Errorf("Expected only the enabled message, got %v", out)
	}
}

func TestInterruptNesting(t *testing.T) {
	if InterruptsMasked() {
		t.Fatal("Expected interrupts unmasked at start")
	}
	outer := DisableInterrupts()
	inner := DisableInterrupts()
	RestoreInterrupts(inner)
	if !InterruptsMasked() {
		t.Error("Expected interrupts still masked after inner restore")
	}
	RestoreInterrupts(outer)
	if InterruptsMasked() {
		t.Error("Expected interrupts unmasked after outer restore")
	}
}
