// Package bridge connects a simulated SCI instance to a host byte stream:
// bytes the driver transmits are written to the stream, bytes read from the
// stream are injected into the simulated receiver.
package bridge

import (
	"context"
	"errors"
	"io"
	"sync"
	"sync/atomic"
	"time"

	"tms570hal/sci/scisim"
)

const (
	// DefaultQueue is the host to device buffer size
	DefaultQueue = 4096

	// Bytes handed to the model at once; the rest waits in the queue
	injectWindow = 16

	pumpInterval = time.Millisecond
)

// Stats counts bridged traffic
type Stats struct {
	ToHost   uint64 // Bytes transmitted by the driver
	ToDevice uint64 // Bytes injected into the receiver
	Dropped  uint64 // Host bytes lost to a full queue
}

// Bridge pumps bytes between a scisim.Model and an io.ReadWriter
type Bridge struct {
	model *scisim.Model
	rw    io.ReadWriter

	mu    sync.Mutex
	queue *fifo

	toHost   atomic.Uint64
	toDevice atomic.Uint64
	dropped  atomic.Uint64

	txChan chan byte
}

// New creates a bridge with a DefaultQueue sized receive queue
func New(model *scisim.Model, rw io.ReadWriter) *Bridge {
	return &Bridge{
		model:  model,
		rw:     rw,
		queue:  newFifo(DefaultQueue),
		txChan: make(chan byte, 256),
	}
}

// Stats returns a snapshot of the traffic counters
func (b *Bridge) Stats() Stats {
	return Stats{
		ToHost:   b.toHost.Load(),
		ToDevice: b.toDevice.Load(),
		Dropped:  b.dropped.Load(),
	}
}

// Run bridges until ctx is cancelled or the stream ends. A clean end of
// stream returns nil.
func (b *Bridge) Run(ctx context.Context) error {
	b.model.SetTransmitHook(func(c byte) {
		select {
		case b.txChan <- c:
		case <-ctx.Done():
		}
	})
	defer b.model.SetTransmitHook(nil)

	readErr := make(chan error, 1)
	go b.readLoop(readErr)

	writeErr := make(chan error, 1)
	writeCtx, stopWriter := context.WithCancel(ctx)
	defer stopWriter()
	go b.writeLoop(writeCtx, writeErr)

	ticker := time.NewTicker(pumpInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case err := <-readErr:
			b.pump()
			if errors.Is(err, io.EOF) {
				return nil
			}
			return err
		case err := <-writeErr:
			return err
		case <-ticker.C:
			b.pump()
		}
	}
}

// readLoop copies host bytes into the queue until the stream fails
func (b *Bridge) readLoop(errc chan<- error) {
	buffer := make([]byte, 256)
	for {
		n, err := b.rw.Read(buffer)
		if n > 0 {
			b.mu.Lock()
			pushed := b.queue.push(buffer[:n])
			b.mu.Unlock()
			if pushed < n {
				b.dropped.Add(uint64(n - pushed))
			}
		}
		if err != nil {
			errc <- err
			return
		}
	}
}

// writeLoop forwards transmitted bytes to the host
func (b *Bridge) writeLoop(ctx context.Context, errc chan<- error) {
	for {
		select {
		case <-ctx.Done():
			return
		case c := <-b.txChan:
			if _, err := b.rw.Write([]byte{c}); err != nil {
				errc <- err
				return
			}
			b.toHost.Add(1)
		}
	}
}

// pump moves queued bytes into the model while its receiver keeps up
func (b *Bridge) pump() {
	room := injectWindow - b.model.Pending()
	if room <= 0 {
		return
	}
	b.mu.Lock()
	data := b.queue.pop(room)
	b.mu.Unlock()
	if len(data) > 0 {
		b.model.Inject(data...)
		b.toDevice.Add(uint64(len(data)))
	}
}
