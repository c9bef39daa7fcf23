package sci

import (
	"strings"

	"tms570hal/core"
)

// Flag is a bitmask over the SCI flag and interrupt registers.
// The same bit positions are used by FLR, SETINT/CLEARINT and SETINTLVL/CLEARINTLVL.
type Flag uint32

const (
	FlagBreak               Flag = 1 << 0  // BRKDT
	FlagWakeup              Flag = 1 << 1  // WAKEUP
	FlagIdle                Flag = 1 << 2  // IDLE (FLR only)
	FlagBusy                Flag = 1 << 3  // BUSY (FLR only)
	FlagTimeout             Flag = 1 << 4  // LIN bus idle timeout
	FlagTimeoutAfterWakeup  Flag = 1 << 6  // TOAWUS
	FlagTimeoutAfter3Wakeup Flag = 1 << 7  // TOA3WUS
	FlagTx                  Flag = 1 << 8  // TXRDY / TX interrupt
	FlagRx                  Flag = 1 << 9  // RXRDY / RX interrupt
	FlagTxWake              Flag = 1 << 10 // TXWAKE (FLR only)
	FlagTxEmpty             Flag = 1 << 11 // TXEMPTY (FLR only)
	FlagRxWake              Flag = 1 << 12 // RXWAKE (FLR only)
	FlagID                  Flag = 1 << 13 // ID transmit flag / ID interrupt
	FlagIDRx                Flag = 1 << 14 // ID receive flag (FLR only)
	FlagTxDMA               Flag = 1 << 16 // SETINT only
	FlagRxDMA               Flag = 1 << 17 // SETINT only
	FlagRxDMAAll            Flag = 1 << 18 // SETINT only
	FlagParity              Flag = 1 << 24 // PE
	FlagOverrun             Flag = 1 << 25 // OE
	FlagFraming             Flag = 1 << 26 // FE
	FlagNoResponse          Flag = 1 << 27 // NRE
	FlagSyncField           Flag = 1 << 28 // ISFE
	FlagChecksum            Flag = 1 << 29 // CE
	FlagPhysicalBus         Flag = 1 << 30 // PBE
	FlagBit                 Flag = 1 << 31 // BE

	FlagTxReady = FlagTx
	FlagRxReady = FlagRx
)

// Flag groups
const (
	// RxErrors are cleared when an interrupt-mode receive is armed
	RxErrors = FlagParity | FlagOverrun | FlagFraming

	// StickyErrors stay set until software clears them
	StickyErrors = FlagParity | FlagOverrun | FlagFraming | FlagNoResponse |
		FlagSyncField | FlagChecksum | FlagPhysicalBus | FlagBit

	// clearableFlags are the write-one-to-clear bits of FLR
	clearableFlags = FlagBreak | FlagWakeup | FlagTimeout | FlagTimeoutAfterWakeup |
		FlagTimeoutAfter3Wakeup | FlagRx | FlagID | FlagIDRx | StickyErrors

	// notificationFlags are the sources accepted by SETINT/CLEARINT
	notificationFlags = Flag(0xFF0723D3)

	// levelFlags are the sources accepted by SETINTLVL/CLEARINTLVL
	levelFlags = Flag(0xFF0423D3)

	// modeFlags are kept in TransferState.Mode
	modeFlags = FlagTx | FlagRx
)

var flagNames = [32]string{
	0: "BRKDT", 1: "WAKEUP", 2: "IDLE", 3: "BUSY", 4: "TIMEOUT",
	6: "TOAWUS", 7: "TOA3WUS", 8: "TX", 9: "RX", 10: "TXWAKE",
	11: "TXEMPTY", 12: "RXWAKE", 13: "ID", 14: "IDRX",
	16: "TXDMA", 17: "RXDMA", 18: "RXDMAALL",
	24: "PE", 25: "OE", 26: "FE", 27: "NRE", 28: "ISFE",
	29: "CE", 30: "PBE", 31: "BE",
}

func (f Flag) String() string {
	if f == 0 {
		return "0"
	}
	var names []string
	for i := 0; i < 32; i++ {
		if f&(1<<i) == 0 {
			continue
		}
		if flagNames[i] == "" {
			names = append(names, "BIT"+core.Itoa(i))
			continue
		}
		names = append(names, flagNames[i])
	}
	return strings.Join(names, "|")
}

// Flags returns the FLR status flags of inst
func (d *Driver) Flags(inst Instance) (Flag, error) {
	r, err := d.reg(inst, FLR)
	if err != nil {
		return 0, err
	}
	return Flag(r.Read(d.bus) & r.Mask), nil
}

// HasFlag reports whether every bit of f is set in FLR
func (d *Driver) HasFlag(inst Instance, f Flag) (bool, error) {
	flags, err := d.Flags(inst)
	if err != nil {
		return false, err
	}
	return flags&f == f, nil
}

// ClearFlags clears the write-one-to-clear flags in f.
// Read-only status bits in f are rejected.
func (d *Driver) ClearFlags(inst Instance, f Flag) error {
	if f&^clearableFlags != 0 {
		return ErrInvalidParameter
	}
	r, err := d.reg(inst, FLR)
	if err != nil {
		return err
	}
	r.Write(d.bus, uint32(f))
	return nil
}

// SetTxWake sets or clears TXWAKE without touching any other flag
func (d *Driver) SetTxWake(inst Instance, e Enable) error {
	if e > Enabled {
		return ErrInvalidParameter
	}
	r, err := d.reg(inst, FLR)
	if err != nil {
		return err
	}
	r.Write(d.bus, uint32(FlagTxWake)*uint32(e))
	return nil
}
