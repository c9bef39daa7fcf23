package core

// DebugWriter is a function type for writing debug messages
type DebugWriter func(string)

// Event captures a driver event for post-mortem analysis
type Event struct {
	Type   uint8  // Event type code
	Unit   uint8  // Peripheral instance (SCI index, GIO level)
	Addr   uint32 // Register address involved
	Value1 uint32 // Context-dependent value
	Value2 uint32 // Context-dependent value
}

// Event type codes
const (
	EvtCommitMismatch = 1 // Register readback differed from the written value
	EvtPollTimeout    = 2 // Busy-wait budget exhausted
	EvtTxArmed        = 3 // Interrupt-mode send started
	EvtRxArmed        = 4 // Interrupt-mode receive started
	EvtPollDone       = 5 // Poll-mode transfer finished
	EvtLoopback       = 6 // Diagnostic loopback changed
	EvtGIOPending     = 7 // GIO pending interrupt decoded
	EvtInit           = 8 // Peripheral init sequence finished
)

const (
	EventRingSize = 32 // Keep last 32 events for post-mortem
)

var (
	// debugPrintln is the global debug print function (can be set by platform code)
	debugPrintln DebugWriter = func(s string) {} // No-op by default

	// debugEnabled controls whether debug output is active
	debugEnabled bool = false

	// Event capture ring buffer (non-blocking, for post-mortem)
	eventRing     [EventRingSize]Event
	eventRingHead uint8
	eventEnabled  bool = true

	// Async debug output channel
	debugChan chan string
)

// SetDebugWriter sets the platform-specific debug output function
// This allows platforms to redirect debug output to a spare SCI, semihosting, stderr, etc.
func SetDebugWriter(writer DebugWriter) {
	debugPrintln = writer
}

// SetDebugEnabled enables or disables debug output
func SetDebugEnabled(enabled bool) {
	debugEnabled = enabled
}

// IsDebugEnabled returns whether debug output is enabled
func IsDebugEnabled() bool {
	return debugEnabled
}

// SetEventCapture enables or disables the event ring
func SetEventCapture(enabled bool) {
	eventEnabled = enabled
}

// InitAsyncDebug starts the async debug output goroutine
// Call this from main() after SetDebugWriter
func InitAsyncDebug() {
	debugChan = make(chan string, 16)
	go debugOutputWorker()
}

func debugOutputWorker() {
	for msg := range debugChan {
		if debugPrintln != nil {
			debugPrintln(msg)
		}
	}
}

// DebugPrintln writes a debug message using the platform-specific writer
// Blocks if debug is enabled (use DebugAsync for non-blocking)
func DebugPrintln(msg string) {
	if debugEnabled && debugPrintln != nil {
		debugPrintln(msg)
	}
}

// DebugAsync queues a debug message for async output (non-blocking)
// Drops the message when the channel is full or async output was never started
func DebugAsync(msg string) {
	if !debugEnabled || debugChan == nil {
		return
	}
	select {
	case debugChan <- msg:
	default:
	}
}

// Record captures an event in the ring buffer.
// Never blocks and never allocates, so it is safe on the transfer path.
func Record(eventType, unit uint8, addr, value1, value2 uint32) {
	if !eventEnabled {
		return
	}
	idx := eventRingHead
	eventRing[idx] = Event{
		Type:   eventType,
		Unit:   unit,
		Addr:   addr,
		Value1: value1,
		Value2: value2,
	}
	eventRingHead = (idx + 1) % EventRingSize
}

// Events returns the captured events from oldest to newest
func Events() []Event {
	out := make([]Event, 0, EventRingSize)
	start := eventRingHead
	for i := uint8(0); i < EventRingSize; i++ {
		evt := eventRing[(start+i)%EventRingSize]
		if evt.Type == 0 {
			continue
		}
		out = append(out, evt)
	}
	return out
}

// EventName returns a short tag for an event type code
func EventName(eventType uint8) string {
	switch eventType {
	case EvtCommitMismatch:
		return "COMMIT_MISMATCH!"
	case EvtPollTimeout:
		return "POLL_TIMEOUT!"
	case EvtTxArmed:
		return "TX_ARMED"
	case EvtRxArmed:
		return "RX_ARMED"
	case EvtPollDone:
		return "POLL_DONE"
	case EvtLoopback:
		return "LOOPBACK"
	case EvtGIOPending:
		return "GIO_PENDING"
	case EvtInit:
		return "INIT"
	default:
		return "UNKNOWN"
	}
}

// DumpEventRing outputs the event ring buffer (call on shutdown/error)
func DumpEventRing() {
	if debugPrintln == nil {
		return
	}

	debugPrintln("[EVENT] === Event Ring Dump ===")
	for _, evt := range Events() {
		debugPrintln("[EVENT] " + EventName(evt.Type) +
			" unit=" + itoa(int(evt.Unit)) +
			" addr=" + Hex32(evt.Addr) +
			" v1=" + Hex32(evt.Value1) +
			" v2=" + Hex32(evt.Value2))
	}
	debugPrintln("[EVENT] === End Dump ===")
}

// ClearEventRing clears the event buffer
func ClearEventRing() {
	for i := range eventRing {
		eventRing[i] = Event{}
	}
	eventRingHead = 0
}
