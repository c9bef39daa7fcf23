package scisim

import "tms570hal/sci"

// maxPasses bounds Drain so a misconfigured test cannot spin forever
const maxPasses = 4096

// Service runs one pass of an SCI interrupt handler for the model's
// instance: a ready receive byte goes into an armed receive, a ready
// transmitter gets the next byte of an armed send, and the TX interrupt is
// disabled once the send is exhausted. Reports whether anything was done.
func (m *Model) Service(d *sci.Driver) (bool, error) {
	m.Step()

	st, err := d.State(m.inst)
	if err != nil {
		return false, err
	}
	flags, err := d.Flags(m.inst)
	if err != nil {
		return false, err
	}
	setint, err := d.Register(m.inst, sci.SETINT)
	if err != nil {
		return false, err
	}
	enabled := sci.Flag(setint.Read(d.Bus()))
	worked := false

	if flags&sci.FlagRx != 0 && enabled&sci.FlagRx != 0 && st.RxInterrupt() {
		b, err := d.ReadData(m.inst)
		if err != nil {
			return worked, err
		}
		// Bytes with no armed receive are dropped
		st.PutRx(b)
		worked = true
	}

	if flags&sci.FlagTx != 0 && enabled&sci.FlagTx != 0 {
		if b, ok := st.NextTx(); ok {
			if err := d.WriteData(m.inst, b); err != nil {
				return worked, err
			}
		} else if err := d.DisarmTx(m.inst); err != nil {
			return worked, err
		}
		worked = true
	}

	return worked, nil
}

// Drain calls Service until a pass does nothing and returns the number of
// passes that did work
func (m *Model) Drain(d *sci.Driver) (int, error) {
	n := 0
	for n < maxPasses {
		worked, err := m.Service(d)
		if err != nil {
			return n, err
		}
		if !worked {
			break
		}
		n++
	}
	return n, nil
}
