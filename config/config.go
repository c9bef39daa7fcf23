// Package config loads JSON board descriptions and applies them to the SCI
// and GIO drivers.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"

	"tms570hal/gio"
	"tms570hal/sci"
)

var ErrInvalidConfig = errors.New("config: invalid value")

// Board describes the clocking, SCI ports and GIO pins of one board
type Board struct {
	Name    string    `json:"name"`
	ClockHz uint32    `json:"clock_hz"` // VCLK
	SCI     []SCIPort `json:"sci"`
	GIO     []GIOPin  `json:"gio"`
}

// SCIPort configures one SCI/LIN instance
type SCIPort struct {
	Instance   int    `json:"instance"` // 1-4
	Baud       uint32 `json:"baud"`
	Timing     string `json:"timing"`    // "async" or "sync"
	Parity     string `json:"parity"`    // "none", "odd" or "even"
	StopBits   int    `json:"stop_bits"` // 1 or 2
	CharBits   uint8  `json:"char_bits"`
	FrameChars uint8  `json:"frame_chars"`
	Protocol   string `json:"protocol"` // "sci" or "lin"
	TxMode     string `json:"tx_mode"`  // "poll" or "interrupt"
	RxMode     string `json:"rx_mode"`
	Loopback   string `json:"loopback"` // "", "digital" or "analog"
}

// GIOPin configures one GIO pin
type GIOPin struct {
	Name      string `json:"name"`
	Port      string `json:"port"` // "A" or "B"
	Pin       uint8  `json:"pin"`
	Direction string `json:"direction"` // "input" or "output"
	Pull      string `json:"pull"`      // "none", "up" or "down"
	OpenDrain bool   `json:"open_drain"`
	Initial   string `json:"initial"`  // "low" or "high", outputs only
	Edge      string `json:"edge"`     // "", "rising", "falling" or "both"
	Priority  string `json:"priority"` // "low" or "high"
}

// Load parses a JSON board description and applies defaults
func Load(jsonData []byte) (*Board, error) {
	var board Board

	err := json.Unmarshal(jsonData, &board)
	if err != nil {
		return nil, err
	}

	applyDefaults(&board)

	return &board, nil
}

// LoadFile reads and parses a board description from path
func LoadFile(path string) (*Board, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	board, err := Load(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return board, nil
}

// applyDefaults fills in missing values with the driver defaults
func applyDefaults(board *Board) {
	def := sci.DefaultConfig()

	if board.ClockHz == 0 {
		board.ClockHz = def.ClockHz
	}

	for i := range board.SCI {
		port := &board.SCI[i]
		if port.Instance == 0 {
			port.Instance = i + 1
		}
		if port.Baud == 0 {
			port.Baud = def.Baud
		}
		if port.Timing == "" {
			port.Timing = "async"
		}
		if port.Parity == "" {
			port.Parity = "none"
		}
		if port.StopBits == 0 {
			port.StopBits = 1
		}
		if port.CharBits == 0 {
			port.CharBits = def.CharBits
		}
		if port.FrameChars == 0 {
			port.FrameChars = def.FrameChars
		}
		if port.Protocol == "" {
			port.Protocol = "sci"
		}
		if port.TxMode == "" {
			port.TxMode = "poll"
		}
		if port.RxMode == "" {
			port.RxMode = "poll"
		}
	}

	for i := range board.GIO {
		pin := &board.GIO[i]
		if pin.Port == "" {
			pin.Port = "A"
		}
		if pin.Direction == "" {
			pin.Direction = "input"
		}
		if pin.Pull == "" {
			pin.Pull = "down"
		}
		if pin.Initial == "" {
			pin.Initial = "low"
		}
		if pin.Priority == "" {
			pin.Priority = "low"
		}
	}
}

// DefaultBoard returns a board with SCI1 in loopback at 115200 and two GIO
// pins: an LED on A0 and a button on B0
func DefaultBoard() *Board {
	board := &Board{
		Name: "default",
		SCI: []SCIPort{
			{Instance: 1, Loopback: "digital"},
			{Instance: 2, Protocol: "lin", Baud: 19200},
		},
		GIO: []GIOPin{
			{Name: "led", Port: "A", Pin: 0, Direction: "output"},
			{Name: "button", Port: "B", Pin: 0, Pull: "up", Edge: "falling", Priority: "high"},
		},
	}
	applyDefaults(board)
	return board
}

func invalid(field, value string) error {
	return fmt.Errorf("%w: %s %q", ErrInvalidConfig, field, value)
}

// SCIConfig converts entry i of the SCI list into a driver configuration
func (b *Board) SCIConfig(i int) (sci.Instance, sci.Config, error) {
	if i < 0 || i >= len(b.SCI) {
		return 0, sci.Config{}, fmt.Errorf("%w: sci index %d", ErrInvalidConfig, i)
	}
	p := b.SCI[i]
	cfg := sci.DefaultConfig()
	cfg.ClockHz = b.ClockHz
	cfg.Baud = p.Baud
	cfg.CharBits = p.CharBits
	cfg.FrameChars = p.FrameChars

	if p.Instance < 1 || p.Instance > sci.NumInstances {
		return 0, cfg, fmt.Errorf("%w: sci instance %d", ErrInvalidConfig, p.Instance)
	}
	inst := sci.Instance(p.Instance - 1)

	switch strings.ToLower(p.Timing) {
	case "async":
		cfg.Timing = sci.Asynchronous
	case "sync":
		cfg.Timing = sci.Synchronous
	default:
		return inst, cfg, invalid("timing", p.Timing)
	}

	switch strings.ToLower(p.Parity) {
	case "none":
		cfg.Parity = sci.ParityNone
	case "odd":
		cfg.Parity = sci.ParityOdd
	case "even":
		cfg.Parity = sci.ParityEven
	default:
		return inst, cfg, invalid("parity", p.Parity)
	}

	switch p.StopBits {
	case 1:
		cfg.StopBits = sci.OneStop
	case 2:
		cfg.StopBits = sci.TwoStop
	default:
		return inst, cfg, fmt.Errorf("%w: stop_bits %d", ErrInvalidConfig, p.StopBits)
	}

	switch strings.ToLower(p.Protocol) {
	case "sci":
		cfg.Protocol = sci.SCIMode
	case "lin":
		cfg.Protocol = sci.LINMode
	default:
		return inst, cfg, invalid("protocol", p.Protocol)
	}

	var err error
	if cfg.TxMode, err = transferMode(p.TxMode); err != nil {
		return inst, cfg, err
	}
	if cfg.RxMode, err = transferMode(p.RxMode); err != nil {
		return inst, cfg, err
	}

	return inst, cfg, nil
}

func transferMode(s string) (sci.TransferMode, error) {
	switch strings.ToLower(s) {
	case "poll":
		return sci.Poll, nil
	case "interrupt":
		return sci.Interrupt, nil
	}
	return sci.Poll, invalid("transfer mode", s)
}

// ApplySCI initializes every configured SCI instance and its loopback
func ApplySCI(d *sci.Driver, b *Board) error {
	for i, p := range b.SCI {
		inst, cfg, err := b.SCIConfig(i)
		if err != nil {
			return err
		}
		if err := d.Init(inst, cfg); err != nil {
			return fmt.Errorf("init %s: %w", inst, err)
		}

		switch strings.ToLower(p.Loopback) {
		case "":
		case "digital":
			err = d.EnableLoopback(inst, sci.DigitalLoopback)
		case "analog":
			err = d.EnableLoopback(inst, sci.AnalogLoopback)
		default:
			return invalid("loopback", p.Loopback)
		}
		if err != nil {
			return fmt.Errorf("loopback %s: %w", inst, err)
		}
	}
	return nil
}

// ApplyGIO releases the GIO module from reset and configures every pin
func ApplyGIO(d *gio.Driver, b *Board) error {
	if err := d.SetMode(gio.ModeNormal); err != nil {
		return err
	}
	for _, p := range b.GIO {
		if err := applyPin(d, p); err != nil {
			name := p.Name
			if name == "" {
				name = p.Port + string(rune('0'+p.Pin))
			}
			return fmt.Errorf("gio pin %s: %w", name, err)
		}
	}
	return nil
}

// PinByName returns the port and pin of a named GIO pin
func (b *Board) PinByName(name string) (gio.Port, gio.Pin, bool) {
	for _, p := range b.GIO {
		if p.Name == name {
			port, err := parsePort(p.Port)
			if err != nil {
				return 0, 0, false
			}
			return port, gio.Pin(p.Pin), true
		}
	}
	return 0, 0, false
}

func parsePort(s string) (gio.Port, error) {
	switch strings.ToUpper(s) {
	case "A":
		return gio.PortA, nil
	case "B":
		return gio.PortB, nil
	}
	return 0, invalid("port", s)
}

func applyPin(d *gio.Driver, p GIOPin) error {
	port, err := parsePort(p.Port)
	if err != nil {
		return err
	}
	pin := gio.Pin(p.Pin)

	switch strings.ToLower(p.Direction) {
	case "output":
		drive := gio.PushPull
		if p.OpenDrain {
			drive = gio.OpenDrain
		}
		level := gio.Low
		switch strings.ToLower(p.Initial) {
		case "low":
		case "high":
			level = gio.High
		default:
			return invalid("initial", p.Initial)
		}
		// Latch the level before the driver turns on
		if err := d.SetPin(port, pin, level); err != nil {
			return err
		}
		if err := d.ConfigureOutput(port, pin, drive); err != nil {
			return err
		}
	case "input":
		var pull gio.Pull
		switch strings.ToLower(p.Pull) {
		case "none":
			pull = gio.NoPull
		case "up":
			pull = gio.PullUp
		case "down":
			pull = gio.PullDown
		default:
			return invalid("pull", p.Pull)
		}
		if err := d.ConfigureInput(port, pin, pull); err != nil {
			return err
		}
	default:
		return invalid("direction", p.Direction)
	}

	if p.Edge == "" {
		return nil
	}
	var edge gio.Edge
	switch strings.ToLower(p.Edge) {
	case "rising":
		edge = gio.RisingEdge
	case "falling":
		edge = gio.FallingEdge
	case "both":
		edge = gio.BothEdges
	default:
		return invalid("edge", p.Edge)
	}
	prio := gio.LowPriority
	switch strings.ToLower(p.Priority) {
	case "low":
	case "high":
		prio = gio.HighPriority
	default:
		return invalid("priority", p.Priority)
	}
	if err := d.ConfigureInterrupt(port, pin, edge, prio); err != nil {
		return err
	}
	return d.EnableInterrupt(port, pin, gio.Enabled)
}
