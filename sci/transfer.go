package sci

import (
	"context"

	"tms570hal/core"
	"tms570hal/reg"
)

// TransferMode selects how a direction moves bytes
type TransferMode uint8

const (
	Poll      TransferMode = iota // Caller busy-waits on the ready flag
	Interrupt                     // Transfer is armed and completed by the interrupt handler
)

// TransferState is the per-instance transfer record.
//
// Mode holds FlagTx and FlagRx when the respective direction runs in
// interrupt mode. The data slices are the caller's buffers; the driver keeps
// them until the transfer completes and never copies them. Cursors never
// exceed their lengths.
type TransferState struct {
	Mode     Flag
	TxData   []byte
	TxLength int
	TxCursor int
	RxData   []byte
	RxLength int
	RxCursor int
}

// TxInterrupt reports whether sends are interrupt driven
func (s *TransferState) TxInterrupt() bool {
	return s.Mode&FlagTx != 0
}

// RxInterrupt reports whether receives are interrupt driven
func (s *TransferState) RxInterrupt() bool {
	return s.Mode&FlagRx != 0
}

// NextTx returns the next byte to transmit and advances the cursor
func (s *TransferState) NextTx() (byte, bool) {
	if s.TxCursor >= s.TxLength {
		return 0, false
	}
	b := s.TxData[s.TxCursor]
	s.TxCursor++
	return b, true
}

// PutRx stores a received byte and advances the cursor.
// Returns false when no receive is armed or the buffer is full.
func (s *TransferState) PutRx(b byte) bool {
	if s.RxCursor >= s.RxLength {
		return false
	}
	s.RxData[s.RxCursor] = b
	s.RxCursor++
	return true
}

// TxDone reports whether every byte of the current send has been written
func (s *TransferState) TxDone() bool {
	return s.TxCursor >= s.TxLength
}

// RxDone reports whether the receive buffer has been filled
func (s *TransferState) RxDone() bool {
	return s.RxCursor >= s.RxLength
}

// TxRemaining returns the number of bytes not yet written
func (s *TransferState) TxRemaining() int {
	return s.TxLength - s.TxCursor
}

// RxRemaining returns the number of bytes not yet received
func (s *TransferState) RxRemaining() int {
	return s.RxLength - s.RxCursor
}

func (s *TransferState) resetTx() {
	s.TxData = nil
	s.TxLength = 0
	s.TxCursor = 0
}

func (s *TransferState) resetRx() {
	s.RxData = nil
	s.RxLength = 0
	s.RxCursor = 0
}

// Send transmits data on inst.
//
// In interrupt mode the buffer is recorded, the first byte is written, the
// TX interrupt is enabled and Send returns; the interrupt handler writes the
// rest through TransferState.NextTx. In poll mode every byte waits for TXRDY;
// the wait is unbounded unless the driver was built WithPollBudget.
func (d *Driver) Send(inst Instance, data []byte) error {
	return d.SendContext(context.Background(), inst, data)
}

// SendContext is Send with cancellation of the poll-mode wait
func (d *Driver) SendContext(ctx context.Context, inst Instance, data []byte) error {
	if inst >= NumInstances {
		return ErrInvalidInstance
	}
	if data == nil {
		return ErrInvalidParameter
	}
	flr, _ := d.reg(inst, FLR)
	td, _ := d.reg(inst, TD)
	st := &d.state[inst]

	if st.TxInterrupt() {
		if len(data) == 0 {
			return nil
		}
		setint, _ := d.reg(inst, SETINT)
		st.TxData = data
		st.TxLength = len(data)
		st.TxCursor = 0
		td.Write(d.bus, uint32(data[0]))
		st.TxCursor = 1
		setint.Write(d.bus, uint32(FlagTx))
		core.Record(core.EvtTxArmed, uint8(inst), td.Addr, uint32(len(data)), 0)
		return nil
	}

	if err := ctx.Err(); err != nil {
		return err
	}
	st.TxData = data
	st.TxLength = len(data)
	st.TxCursor = 0
	defer st.resetTx()

	for st.TxCursor < st.TxLength {
		if err := reg.WaitSet(ctx, d.bus, flr.Addr, uint32(FlagTxReady), d.budget); err != nil {
			return &PartialError{Done: st.TxCursor, Err: err}
		}
		td.Write(d.bus, uint32(data[st.TxCursor]))
		st.TxCursor++
	}
	core.Record(core.EvtPollDone, uint8(inst), td.Addr, uint32(len(data)), 0)
	return nil
}

// Receive reads len(buf) bytes from inst.
//
// In interrupt mode the parity, overrun and framing flags are cleared, the
// buffer is recorded and Receive returns; the interrupt handler fills it
// through TransferState.PutRx. In poll mode every byte waits for RXRDY, bounded
// only by WithPollBudget or ctx.
func (d *Driver) Receive(inst Instance, buf []byte) error {
	return d.ReceiveContext(context.Background(), inst, buf)
}

// ReceiveContext is Receive with cancellation of the poll-mode wait
func (d *Driver) ReceiveContext(ctx context.Context, inst Instance, buf []byte) error {
	if inst >= NumInstances {
		return ErrInvalidInstance
	}
	if buf == nil {
		return ErrInvalidParameter
	}
	flr, _ := d.reg(inst, FLR)
	rd, _ := d.reg(inst, RD)
	st := &d.state[inst]

	if st.RxInterrupt() {
		flr.Write(d.bus, uint32(RxErrors))
		st.RxData = buf
		st.RxLength = len(buf)
		st.RxCursor = 0
		core.Record(core.EvtRxArmed, uint8(inst), rd.Addr, uint32(len(buf)), 0)
		return nil
	}

	if err := ctx.Err(); err != nil {
		return err
	}
	st.RxData = buf
	st.RxLength = len(buf)
	st.RxCursor = 0
	defer st.resetRx()

	for st.RxCursor < st.RxLength {
		if err := reg.WaitSet(ctx, d.bus, flr.Addr, uint32(FlagRxReady), d.budget); err != nil {
			return &PartialError{Done: st.RxCursor, Err: err}
		}
		buf[st.RxCursor] = byte(rd.Read(d.bus))
		st.RxCursor++
	}
	core.Record(core.EvtPollDone, uint8(inst), rd.Addr, 0, uint32(len(buf)))
	return nil
}

// IsTxReady reports TXRDY
func (d *Driver) IsTxReady(inst Instance) (bool, error) {
	return d.HasFlag(inst, FlagTxReady)
}

// IsRxReady reports RXRDY
func (d *Driver) IsRxReady(inst Instance) (bool, error) {
	return d.HasFlag(inst, FlagRxReady)
}

// IsIdleDetected reports the receiver IDLE flag
func (d *Driver) IsIdleDetected(inst Instance) (bool, error) {
	return d.HasFlag(inst, FlagIdle)
}

// DataAvailable is IsRxReady without the error
func (d *Driver) DataAvailable(inst Instance) bool {
	ok, _ := d.IsRxReady(inst)
	return ok
}

// WriteData writes one byte to TD without waiting
func (d *Driver) WriteData(inst Instance, b byte) error {
	td, err := d.reg(inst, TD)
	if err != nil {
		return err
	}
	td.Write(d.bus, uint32(b))
	return nil
}

// ReadData reads RD, which clears RXRDY
func (d *Driver) ReadData(inst Instance) (byte, error) {
	rd, err := d.reg(inst, RD)
	if err != nil {
		return 0, err
	}
	return byte(rd.Read(d.bus)), nil
}

// ReadEmulationData reads ED without clearing RXRDY
func (d *Driver) ReadEmulationData(inst Instance) (byte, error) {
	ed, err := d.reg(inst, ED)
	if err != nil {
		return 0, err
	}
	return byte(ed.Read(d.bus)), nil
}

// DisarmTx disables the TX interrupt once the handler has written the last byte
func (d *Driver) DisarmTx(inst Instance) error {
	clr, err := d.reg(inst, CLEARINT)
	if err != nil {
		return err
	}
	clr.Write(d.bus, uint32(FlagTx))
	return nil
}

// SendByte waits for TXRDY and writes b, regardless of the TX transfer mode
func (d *Driver) SendByte(inst Instance, b byte) error {
	flr, err := d.reg(inst, FLR)
	if err != nil {
		return err
	}
	if err := reg.WaitSet(context.Background(), d.bus, flr.Addr, uint32(FlagTxReady), d.budget); err != nil {
		return err
	}
	return d.WriteData(inst, b)
}

// SendString writes s byte by byte with SendByte
func (d *Driver) SendString(inst Instance, s string) error {
	for i := 0; i < len(s); i++ {
		if err := d.SendByte(inst, s[i]); err != nil {
			return &PartialError{Done: i, Err: err}
		}
	}
	return nil
}

// ReceiveByte waits for RXRDY and reads one byte, regardless of the RX transfer mode
func (d *Driver) ReceiveByte(inst Instance) (byte, error) {
	flr, err := d.reg(inst, FLR)
	if err != nil {
		return 0, err
	}
	if err := reg.WaitSet(context.Background(), d.bus, flr.Addr, uint32(FlagRxReady), d.budget); err != nil {
		return 0, err
	}
	return d.ReadData(inst)
}
