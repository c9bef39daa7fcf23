//go:build tinygo && tms570

// Firmware for a TMS570LC43x LaunchPad: SCI1 echoes every byte back, SCI4
// carries debug output, the GIOA0 LED toggles on each echoed line and the
// GIOB0 button dumps the event ring.
package main

import (
	"time"

	"tms570hal/config"
	"tms570hal/console"
	"tms570hal/core"
	"tms570hal/gio"
	"tms570hal/reg"
	"tms570hal/sci"
)

const (
	vclkHz   = 75000000
	echoInst = sci.SCI1
	dbgInst  = sci.SCI4
)

func main() {
	bus := reg.MMIO{}
	// A stuck transmitter must not stop the button being polled
	s := sci.New(bus, sci.WithPollBudget(reg.DefaultBudget))

	board := config.DefaultBoard()
	board.ClockHz = vclkHz
	board.SCI = []config.SCIPort{
		{Instance: int(echoInst) + 1},
		{Instance: int(dbgInst) + 1},
	}
	if err := config.ApplySCI(s, board); err != nil {
		halt()
	}

	dbg, _ := s.Port(dbgInst)
	core.SetDebugWriter(console.New(dbg).Println)
	core.SetDebugEnabled(true)
	core.InitAsyncDebug()

	g := gio.New(bus)
	if err := config.ApplyGIO(g, board); err != nil {
		core.DebugPrintln("[GIO] setup failed: " + err.Error())
	}
	ledPort, ledPin, _ := board.PinByName("led")

	port, _ := s.Port(echoInst)
	echo := console.New(port)
	core.DebugAsync("[MAIN] echo on " + echoInst.String())

	for {
		if lines, err := echo.Poll(); err == nil {
			if lines%2 == 1 {
				g.TogglePin(ledPort, ledPin)
			}
		} else {
			core.DebugAsync("[SCI] " + err.Error())
			if flags, ferr := s.Flags(echoInst); ferr == nil && flags&sci.StickyErrors != 0 {
				s.ClearFlags(echoInst, flags&sci.StickyErrors)
			}
		}

		if _, ok, _ := g.PendingInterrupt(gio.HighPriority); ok {
			core.DumpEventRing()
		}
	}
}

func halt() {
	for {
		time.Sleep(time.Second)
	}
}
