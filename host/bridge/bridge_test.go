package bridge

import (
	"context"
	"errors"
	"io"
	"net"
	"testing"
	"time"

	"tms570hal/reg"
	"tms570hal/sci"
	"tms570hal/sci/scisim"
)

func newDevice(t *testing.T) (*sci.Driver, *scisim.Model) {
	t.Helper()
	sim := reg.NewSim()
	model := scisim.New(sim, sci.SCI1)
	d := sci.New(sim)
	if err := d.Init(sci.SCI1, sci.DefaultConfig()); err != nil {
		t.Fatalf("Init failed: %v", err)
	}
	return d, model
}

func waitFor(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatalf("Timed out waiting for %s", what)
		}
		time.Sleep(time.Millisecond)
	}
}

func TestBridgeBothDirections(t *testing.T) {
	d, model := newDevice(t)
	host, dev := net.Pipe()
	defer host.Close()

	b := New(model, dev)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- b.Run(ctx) }()

	go host.Write([]byte("ping"))
	waitFor(t, "host bytes", func() bool { return b.Stats().ToDevice == 4 })

	buf := make([]byte, 4)
	if err := d.Receive(sci.SCI1, buf); err != nil {
		t.Fatalf("Receive failed: %v", err)
	}
	if string(buf) != "ping" {
		t.Errorf("Expected \"ping\", got %q", buf)
	}

	if err := d.Send(sci.SCI1, []byte("pong")); err != nil {
		t.Fatalf("Send failed: %v", err)
	}
	host.SetReadDeadline(time.Now().Add(2 * time.Second))
	got := make([]byte, 4)
	if _, err := io.ReadFull(host, got); err != nil {
		t.Fatalf("Host read failed: %v", err)
	}
	if string(got) != "pong" {
		t.Errorf("Expected \"pong\", got %q", got)
	}
	waitFor(t, "tx count", func() bool { return b.Stats().ToHost == 4 })

	cancel()
	if err := <-done; !errors.Is(err, context.Canceled) {
		t.Errorf("Expected context.Canceled, got %v", err)
	}
}

func TestBridgeEndOfStream(t *testing.T) {
	_, model := newDevice(t)
	host, dev := net.Pipe()

	b := New(model, dev)
	done := make(chan error, 1)
	go func() { done <- b.Run(context.Background()) }()

	host.Close()
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Expected nil on end of stream, got %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Expected Run to return after the host closed")
	}
}

func TestPumpRespectsWindow(t *testing.T) {
	_, model := newDevice(t)
	b := New(model, nil)

	data := make([]byte, injectWindow*2)
	b.queue.push(data)
	b.pump()
	if n := model.Pending(); n != injectWindow {
		t.Errorf("Expected %d bytes injected, got %d", injectWindow, n)
	}
	b.pump()
	if n := model.Pending(); n != injectWindow {
		t.Errorf("Expected window to hold at %d, got %d", injectWindow, n)
	}
}

func TestFifo(t *testing.T) {
	f := newFifo(4)
	if n := f.push([]byte{1, 2, 3, 4, 5}); n != 4 {
		t.Errorf("Expected 4 bytes pushed, got %d", n)
	}
	if got := f.pop(2); len(got) != 2 || got[0] != 1 || got[1] != 2 {
		t.Errorf("Expected [1 2], got %v", got)
	}
	f.push([]byte{6, 7})
	if f.available() != 4 {
		t.Errorf("Expected 4 available, got %d", f.available())
	}
	if got := f.pop(10); len(got) != 4 || got[0] != 3 || got[3] != 7 {
		t.Errorf("Expected [3 4 6 7], got %v", got)
	}
}
