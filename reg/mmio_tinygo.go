//go:build tinygo

package reg

import (
	"runtime/volatile"
	"unsafe"
)

// MMIO is the target bus: volatile 32-bit loads and stores
type MMIO struct{}

func (MMIO) Read32(addr uint32) uint32 {
	return (*volatile.Register32)(unsafe.Pointer(uintptr(addr))).Get()
}

func (MMIO) Write32(addr, value uint32) {
	(*volatile.Register32)(unsafe.Pointer(uintptr(addr))).Set(value)
}
