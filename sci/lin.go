package sci

import (
	"tms570hal/core"
	"tms570hal/lin"
)

// SetCompare sets the sync delimiter (1-4 bits) and the extra sync break
// length (0-7 bits beyond the minimum 13)
func (d *Driver) SetCompare(inst Instance, syncDelimiter, syncBreak uint8) error {
	if syncDelimiter < 1 || syncDelimiter > 4 || syncBreak > 7 {
		return ErrInvalidParameter
	}
	r, err := d.reg(inst, COMPARE)
	if err != nil {
		return err
	}
	v := fieldSDel.Insert(0, uint32(syncDelimiter-1))
	v = fieldSBreak.Insert(v, uint32(syncBreak))
	return r.Commit(d.bus, v)
}

// Compare returns the sync delimiter and sync break settings
func (d *Driver) Compare(inst Instance) (syncDelimiter, syncBreak uint8, err error) {
	r, err := d.reg(inst, COMPARE)
	if err != nil {
		return 0, 0, err
	}
	v := r.Read(d.bus)
	return uint8(fieldSDel.Extract(v)) + 1, uint8(fieldSBreak.Extract(v)), nil
}

// SetIDMasks writes the RX and TX identifier filter masks
func (d *Driver) SetIDMasks(inst Instance, rxMask, txMask uint8) error {
	r, err := d.reg(inst, MASK)
	if err != nil {
		return err
	}
	v := fieldRxIDMask.Insert(0, uint32(rxMask))
	v = fieldTxIDMask.Insert(v, uint32(txMask))
	return r.Commit(d.bus, v)
}

// IDMasks returns the RX and TX identifier filter masks
func (d *Driver) IDMasks(inst Instance) (rxMask, txMask uint8, err error) {
	r, err := d.reg(inst, MASK)
	if err != nil {
		return 0, 0, err
	}
	v := r.Read(d.bus)
	return uint8(fieldRxIDMask.Extract(v)), uint8(fieldTxIDMask.Extract(v)), nil
}

// SetID writes the ID byte. In LIN master mode this starts a header.
func (d *Driver) SetID(inst Instance, id uint8) error {
	return d.update(inst, ID, fieldIDByte, uint32(id))
}

// SetSlaveTaskID writes the ID-SlaveTask byte used for response filtering
func (d *Driver) SetSlaveTaskID(inst Instance, id uint8) error {
	return d.update(inst, ID, fieldIDSlave, uint32(id))
}

// ReceivedID returns the identifier of the last received header
func (d *Driver) ReceivedID(inst Instance) (uint8, error) {
	v, err := d.get(inst, ID, fieldReceivedID)
	return uint8(v), err
}

// SendHeader starts a LIN header for the 6-bit id with its protected identifier
func (d *Driver) SendHeader(inst Instance, id uint8) error {
	if id > lin.MaxID {
		return ErrInvalidParameter
	}
	pid := lin.ProtectedID(id)
	if err := d.SetID(inst, pid); err != nil {
		return err
	}
	if core.IsDebugEnabled() {
		core.DebugPrintln("[SCI] " + inst.String() + " header pid=" + core.Hex32(uint32(pid)))
	}
	return nil
}

// ReadLINData copies the received frame bytes from RD0/RD1 into buf and
// returns the count. The first byte sits in the top byte of RD0.
func (d *Driver) ReadLINData(inst Instance, buf []byte) (int, error) {
	if buf == nil {
		return 0, ErrInvalidParameter
	}
	n, err := d.FrameLength(inst)
	if err != nil {
		return 0, err
	}
	rd0, _ := d.reg(inst, RD0)
	rd1, _ := d.reg(inst, RD1)
	words := [2]uint32{rd0.Read(d.bus), rd1.Read(d.bus)}
	count := int(n)
	if len(buf) < count {
		count = len(buf)
	}
	for i := 0; i < count; i++ {
		buf[i] = byte(words[i/4] >> (24 - 8*uint(i%4)))
	}
	return count, nil
}

// WriteLINData sets the frame length to len(data) and loads TD1 then TD0.
// The write to TD0 starts the response transmission.
func (d *Driver) WriteLINData(inst Instance, data []byte) error {
	if len(data) < 1 || len(data) > 8 {
		return ErrInvalidParameter
	}
	if err := d.SetFrameLength(inst, uint8(len(data))); err != nil {
		return err
	}
	var words [2]uint32
	for i, b := range data {
		words[i/4] |= uint32(b) << (24 - 8*uint(i%4))
	}
	td0, _ := d.reg(inst, TD0)
	td1, _ := d.reg(inst, TD1)
	td1.Write(d.bus, words[1])
	td0.Write(d.bus, words[0])
	return nil
}

// SetMaxBaud sets the MBRS prescaler used for wakeup and auto-baud detection
func (d *Driver) SetMaxBaud(inst Instance, mbr uint16) error {
	if mbr > 0x1FFF {
		return ErrInvalidParameter
	}
	return d.update(inst, MBRS, fieldMBR, uint32(mbr))
}

// MaxBaud returns the MBRS prescaler
func (d *Driver) MaxBaud(inst Instance) (uint16, error) {
	v, err := d.get(inst, MBRS, fieldMBR)
	return uint16(v), err
}

// ExpectedChecksum computes the checksum the module should see for data on
// the last received identifier, using the configured checksum type
func (d *Driver) ExpectedChecksum(inst Instance, data []byte) (uint8, error) {
	pid, err := d.ReceivedID(inst)
	if err != nil {
		return 0, err
	}
	ct, err := d.get(inst, GCR1, fieldCType)
	if err != nil {
		return 0, err
	}
	kind := lin.Classic
	if ChecksumType(ct) == EnhancedChecksum {
		kind = lin.Enhanced
	}
	return lin.FrameChecksum(kind, pid&lin.MaxID, data), nil
}
