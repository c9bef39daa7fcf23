// Package sci drives the TMS570 SCI/LIN modules.
//
// A Driver owns the register blocks and the per-instance transfer state of
// all four modules. Configuration functions must be called while the module
// is held in software reset (SetSoftwareReset(inst, HoldReset)); transfer
// functions only after configuration committed successfully.
//
// The driver does not lock. The only expected concurrency is mainline code
// against an interrupt handler, which the caller serializes by masking
// interrupts or by keeping poll and interrupt paths on different directions.
package sci

import (
	"errors"

	"tms570hal/core"
	"tms570hal/reg"
)

var (
	// ErrInvalidInstance is returned for an instance outside SCI1..SCI4
	ErrInvalidInstance = errors.New("sci: invalid instance")

	// ErrInvalidParameter is returned for out-of-range arguments, before any register access
	ErrInvalidParameter = errors.New("sci: invalid parameter")
)

// PartialError reports a transfer that stopped before completion
type PartialError struct {
	Done int   // Bytes transferred before the failure
	Err  error // Underlying cause (reg.ErrTimeout or a context error)
}

func (e *PartialError) Error() string {
	return "sci: transfer stopped after " + core.Itoa(e.Done) + " bytes: " + e.Err.Error()
}

func (e *PartialError) Unwrap() error {
	return e.Err
}

// Driver is the SCI/LIN driver context
type Driver struct {
	bus    reg.Bus
	blocks [NumInstances]reg.Block[Register]
	state  [NumInstances]TransferState
	budget reg.Budget
}

// Option configures a Driver
type Option func(*Driver)

// WithPollBudget bounds the number of flag reads a poll-mode transfer waits
// per byte; a transfer that runs out returns a PartialError wrapping
// reg.ErrTimeout
func WithPollBudget(b reg.Budget) Option {
	return func(d *Driver) {
		d.budget = b
	}
}

// WithUnboundedPolling restores the default: poll-mode transfers wait
// forever for an unresponsive peripheral
func WithUnboundedPolling() Option {
	return WithPollBudget(reg.Unbounded)
}

// WithBase relocates the register block of inst
func WithBase(inst Instance, base uint32) Option {
	return func(d *Driver) {
		if inst < NumInstances {
			d.blocks[inst].Base = base
		}
	}
}

// New creates a driver on bus. All transfer state starts idle and poll-mode
// waits are unbounded unless WithPollBudget is given.
func New(bus reg.Bus, opts ...Option) *Driver {
	d := &Driver{
		bus:    bus,
		budget: reg.Unbounded,
	}
	for i := range d.blocks {
		d.blocks[i] = reg.NewBlock[Register](bases[i], registerDefs[:])
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Bus returns the register bus the driver was created with
func (d *Driver) Bus() reg.Bus {
	return d.bus
}

// PollBudget returns the per-byte poll budget
func (d *Driver) PollBudget() reg.Budget {
	return d.budget
}

// State returns the transfer state of inst for use by interrupt handlers
func (d *Driver) State(inst Instance) (*TransferState, error) {
	if inst >= NumInstances {
		return nil, ErrInvalidInstance
	}
	return &d.state[inst], nil
}

// Register returns the address and mask of r on inst
func (d *Driver) Register(inst Instance, r Register) (reg.Register, error) {
	return d.reg(inst, r)
}

func (d *Driver) reg(inst Instance, r Register) (reg.Register, error) {
	if inst >= NumInstances {
		return reg.Register{}, ErrInvalidInstance
	}
	rr, ok := d.blocks[inst].At(r)
	if !ok {
		return reg.Register{}, ErrInvalidParameter
	}
	return rr, nil
}

// update performs a verified read-modify-write of one field
func (d *Driver) update(inst Instance, r Register, f reg.Field, v uint32) error {
	rr, err := d.reg(inst, r)
	if err != nil {
		return err
	}
	return rr.Update(d.bus, f, v)
}

// pulse sets a self-clearing bit; the readback would not match so it is not verified
func (d *Driver) pulse(inst Instance, r Register, f reg.Field, v uint32) error {
	rr, err := d.reg(inst, r)
	if err != nil {
		return err
	}
	rr.Write(d.bus, f.Insert(rr.Read(d.bus), v))
	return nil
}

func (d *Driver) get(inst Instance, r Register, f reg.Field) (uint32, error) {
	rr, err := d.reg(inst, r)
	if err != nil {
		return 0, err
	}
	return rr.Get(d.bus, f), nil
}
