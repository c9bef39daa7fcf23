package main

import (
	"bytes"
	"strings"
	"testing"

	"tms570hal/config"
	"tms570hal/sci"
)

func newTestSession(t *testing.T) (*session, *bytes.Buffer) {
	t.Helper()
	var out bytes.Buffer
	s, err := newSession(&out, config.DefaultBoard())
	if err != nil {
		t.Fatalf("newSession failed: %v", err)
	}
	return s, &out
}

func run(t *testing.T, s *session, out *bytes.Buffer, line string) string {
	t.Helper()
	out.Reset()
	if err := s.exec(line); err != nil {
		t.Fatalf("%q failed: %v", line, err)
	}
	return out.String()
}

func TestLoopbackEcho(t *testing.T) {
	s, out := newTestSession(t)

	// SCI1 comes up in digital loopback on the default board
	run(t, s, out, `send "hello world"`)
	got := run(t, s, out, "recv")
	if !strings.Contains(got, `"hello world"`) {
		t.Errorf("Expected looped back text, got %q", got)
	}

	run(t, s, out, "inject abc")
	got = run(t, s, out, "recv")
	if !strings.Contains(got, `"abc"`) {
		t.Errorf("Expected injected bytes back, got %q", got)
	}
}

func TestBaudCommand(t *testing.T) {
	s, out := newTestSession(t)
	got := run(t, s, out, "baud 9600")
	if !strings.Contains(got, "baud") {
		t.Errorf("Unexpected baud output: %q", got)
	}
	rate, err := s.sci.BaudRate(sci.SCI1, s.board.ClockHz)
	if err != nil {
		t.Fatalf("BaudRate failed: %v", err)
	}
	if rate < 9500 || rate > 9700 {
		t.Errorf("Expected about 9600 baud, got %d", rate)
	}
}

func TestInterruptModeService(t *testing.T) {
	s, out := newTestSession(t)
	run(t, s, out, "loopback off")
	run(t, s, out, "mode tx interrupt")

	got := run(t, s, out, "send abc")
	if !strings.Contains(got, "Armed 3 bytes") {
		t.Errorf("Expected armed send, got %q", got)
	}
	run(t, s, out, "service")
	got = run(t, s, out, "tx")
	if !strings.Contains(got, `"abc"`) {
		t.Errorf("Expected abc transmitted, got %q", got)
	}
}

func TestGIOCommands(t *testing.T) {
	s, out := newTestSession(t)

	run(t, s, out, "gio set led high")
	if got := run(t, s, out, "gio get led"); !strings.Contains(got, "A0: high") {
		t.Errorf("Expected led high, got %q", got)
	}
	run(t, s, out, "gio toggle A0")
	if got := run(t, s, out, "gio get A0"); !strings.Contains(got, "A0: low") {
		t.Errorf("Expected led low, got %q", got)
	}

	// button is pulled up with a falling edge interrupt on the high line
	run(t, s, out, "gio input button high")
	run(t, s, out, "gio input button low")
	if got := run(t, s, out, "gio pending"); !strings.Contains(got, "high: B0") {
		t.Errorf("Expected B0 pending on the high line, got %q", got)
	}
	if got := run(t, s, out, "gio pending"); got != "" {
		t.Errorf("Expected nothing left pending, got %q", got)
	}
}

func TestLINChecksum(t *testing.T) {
	s, out := newTestSession(t)
	// ID 0x0A carries parity bits P0=1 and P1=1
	got := run(t, s, out, "lin checksum 0x0A 0x55 0x93 0xE5")
	if !strings.Contains(got, "pid=0xCA") || !strings.Contains(got, "classic=0x31") || !strings.Contains(got, "enhanced=0x66") {
		t.Errorf("Unexpected checksum output: %q", got)
	}
}

func TestFlagsAndClear(t *testing.T) {
	s, out := newTestSession(t)
	s.model().Raise(sci.FlagOverrun | sci.FlagFraming)

	if got := run(t, s, out, "flags"); !strings.Contains(got, "OE") {
		t.Errorf("Expected OE in flags, got %q", got)
	}
	run(t, s, out, "clear errors")
	if has, _ := s.sci.HasFlag(sci.SCI1, sci.FlagOverrun); has {
		t.Error("Expected OE cleared")
	}
}

func TestExecErrors(t *testing.T) {
	s, _ := newTestSession(t)
	if err := s.exec("bogus"); err == nil {
		t.Error("Expected error for unknown command")
	}
	if err := s.exec("inst 9"); err == nil {
		t.Error("Expected error for instance 9")
	}
	if err := s.exec("clear NOPE"); err == nil {
		t.Error("Expected error for unknown flag")
	}
	if err := s.exec(`send "unterminated`); err == nil {
		t.Error("Expected tokenizer error")
	}
	if err := s.exec("quit"); err != errQuit {
		t.Errorf("Expected errQuit, got %v", err)
	}
}
