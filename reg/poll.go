package reg

import (
	"context"

	"tms570hal/core"
)

// Budget is the maximum number of register reads a poll may perform
type Budget uint32

// Unbounded polls forever
const Unbounded Budget = 0

// DefaultBudget is a bound for callers that opt in to timeouts. It covers
// roughly one character time at low baud rates on a 300 MHz core.
const DefaultBudget Budget = 200000

// How often the context is consulted while spinning
const ctxCheckInterval = 64

// WaitSet spins until any bit of mask reads as set at addr.
// Returns ErrTimeout when the budget runs out, or the context error once
// ctx is done. A nil ctx is never consulted.
func WaitSet(ctx context.Context, bus Bus, addr, mask uint32, budget Budget) error {
	return wait(ctx, bus, addr, mask, budget, true)
}

// WaitClear spins until all bits of mask read as clear at addr
func WaitClear(ctx context.Context, bus Bus, addr, mask uint32, budget Budget) error {
	return wait(ctx, bus, addr, mask, budget, false)
}

func wait(ctx context.Context, bus Bus, addr, mask uint32, budget Budget, set bool) error {
	for i := uint32(1); ; i++ {
		v := bus.Read32(addr) & mask
		if (set && v != 0) || (!set && v == 0) {
			return nil
		}
		if budget != Unbounded && i >= uint32(budget) {
			core.Record(core.EvtPollTimeout, 0, addr, mask, i)
			return ErrTimeout
		}
		if ctx != nil && i%ctxCheckInterval == 0 {
			if err := ctx.Err(); err != nil {
				return err
			}
		}
	}
}
