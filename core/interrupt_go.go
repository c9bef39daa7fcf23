//go:build !tinygo

package core

// State is a placeholder for interrupt state on regular Go
type State uintptr

// maskDepth counts nested critical sections so host tests can observe them
var maskDepth int

// DisableInterrupts masks interrupts and returns the previous state.
// On regular Go there is no interrupt controller; only the nesting is tracked.
func DisableInterrupts() State {
	maskDepth++
	return State(maskDepth - 1)
}

// RestoreInterrupts restores the interrupt state
func RestoreInterrupts(state State) {
	maskDepth = int(state)
}

// InterruptsMasked reports whether a critical section is open
func InterruptsMasked() bool {
	return maskDepth > 0
}
