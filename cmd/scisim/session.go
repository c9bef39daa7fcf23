package main

import (
	"errors"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"

	"github.com/google/shlex"

	"tms570hal/config"
	"tms570hal/core"
	"tms570hal/gio"
	"tms570hal/gio/giosim"
	"tms570hal/host/bridge"
	"tms570hal/lin"
	"tms570hal/reg"
	"tms570hal/sci"
	"tms570hal/sci/scisim"
)

var errQuit = errors.New("quit")

// session is the simulated board behind the console
type session struct {
	out    io.Writer
	board  *config.Board
	sim    *reg.Sim
	sci    *sci.Driver
	gio    *gio.Driver
	models [sci.NumInstances]*scisim.Model
	gmodel *giosim.Model
	inst   sci.Instance
	bridge *bridge.Bridge
}

func newSession(out io.Writer, board *config.Board) (*session, error) {
	s := &session{
		out:   out,
		board: board,
		sim:   reg.NewSim(),
	}
	for i := range s.models {
		s.models[i] = scisim.New(s.sim, sci.Instance(i))
	}
	s.gmodel = giosim.New(s.sim)
	s.sci = sci.New(s.sim)
	s.gio = gio.New(s.sim)

	// Instances the board leaves out still come up with driver defaults
	def := sci.DefaultConfig()
	def.ClockHz = board.ClockHz
	for i := range s.models {
		if err := s.sci.Init(sci.Instance(i), def); err != nil {
			return nil, err
		}
	}
	if err := config.ApplySCI(s.sci, board); err != nil {
		return nil, err
	}
	if err := config.ApplyGIO(s.gio, board); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *session) model() *scisim.Model {
	return s.models[s.inst]
}

func (s *session) selectInstance(n int) error {
	if n < 1 || n > sci.NumInstances {
		return fmt.Errorf("instance must be 1-%d, got %d", sci.NumInstances, n)
	}
	s.inst = sci.Instance(n - 1)
	return nil
}

func (s *session) printf(format string, args ...interface{}) {
	fmt.Fprintf(s.out, format, args...)
}

// command is one console command
type command struct {
	usage string
	help  string
	run   func(s *session, args []string) error
}

var commands map[string]command

func init() {
	commands = map[string]command{
		"help":     {"help", "Show this help message", cmdHelp},
		"inst":     {"inst <1-4>", "Select the SCI instance", cmdInst},
		"send":     {"send <text>", "Transmit text on the selected SCI", cmdSend},
		"recv":     {"recv", "Read every received byte that is ready", cmdRecv},
		"inject":   {"inject <text>", "Feed text into the receiver as if it arrived on RX", cmdInject},
		"tx":       {"tx", "Show and forget bytes transmitted so far", cmdTx},
		"baud":     {"baud [rate]", "Show or set the baud rate", cmdBaud},
		"loopback": {"loopback [digital|analog|off]", "Show or change the IODFT loopback", cmdLoopback},
		"flags":    {"flags", "Show FLR flags and interrupt vectors", cmdFlags},
		"clear":    {"clear <flag>...", "Clear flags (names as shown by flags, or 'errors')", cmdClear},
		"notify":   {"notify <on|off> <flag>...", "Enable or disable notifications", cmdNotify},
		"mode":     {"mode <tx|rx> <poll|interrupt>", "Set the transfer mode", cmdMode},
		"service":  {"service", "Run the interrupt handler until it is idle", cmdService},
		"gio":      {"gio <set|get|toggle|input|trigger|pending> ...", "Drive and inspect GIO pins", cmdGIO},
		"lin":      {"lin <header|frame|checksum> <id> [bytes...]", "LIN header, response and checksum", cmdLIN},
		"events":   {"events", "Dump the driver event ring", cmdEvents},
		"stats":    {"stats", "Show serial bridge counters", cmdStats},
		"term":     {"term", "Raw terminal on the selected SCI (Ctrl-] leaves)", cmdTerm},
	}
}

// exec tokenizes and runs one console line
func (s *session) exec(line string) error {
	args, err := shlex.Split(line)
	if err != nil {
		return err
	}
	if len(args) == 0 {
		return nil
	}
	switch args[0] {
	case "quit", "exit", "q":
		return errQuit
	case "?":
		args[0] = "help"
	}
	cmd, ok := commands[args[0]]
	if !ok {
		return fmt.Errorf("unknown command: %s (type 'help' for available commands)", args[0])
	}
	return cmd.run(s, args[1:])
}

func cmdHelp(s *session, _ []string) error {
	names := make([]string, 0, len(commands))
	for name := range commands {
		names = append(names, name)
	}
	sort.Strings(names)

	s.printf("\nAvailable commands:\n")
	for _, name := range names {
		c := commands[name]
		s.printf("  %-46s - %s\n", c.usage, c.help)
	}
	s.printf("  %-46s - %s\n\n", "quit/exit/q", "Exit the program")
	return nil
}

func cmdInst(s *session, args []string) error {
	if len(args) != 1 {
		s.printf("Selected %s\n", s.inst)
		return nil
	}
	n, err := strconv.Atoi(args[0])
	if err != nil {
		return err
	}
	return s.selectInstance(n)
}

func cmdSend(s *session, args []string) error {
	data := []byte(strings.Join(args, " "))
	if err := s.sci.Send(s.inst, data); err != nil {
		return err
	}
	if st, _ := s.sci.State(s.inst); st.TxInterrupt() {
		s.printf("Armed %d bytes (run 'service')\n", len(data))
		return nil
	}
	s.printf("Sent %d bytes\n", len(data))
	return nil
}

func cmdRecv(s *session, _ []string) error {
	port, err := s.sci.Port(s.inst)
	if err != nil {
		return err
	}
	var got []byte
	buf := make([]byte, 64)
	for {
		n, err := port.Read(buf)
		got = append(got, buf[:n]...)
		if err != nil {
			return err
		}
		if n == 0 {
			break
		}
	}
	s.printf("Received %d bytes: %q\n", len(got), got)
	return nil
}

func cmdInject(s *session, args []string) error {
	data := []byte(strings.Join(args, " "))
	s.model().Inject(data...)
	s.printf("Injected %d bytes, %d pending\n", len(data), s.model().Pending())
	return nil
}

func cmdTx(s *session, _ []string) error {
	tx := s.model().TakeTransmitted()
	s.printf("Transmitted %d bytes: %q\n", len(tx), tx)
	return nil
}

func cmdBaud(s *session, args []string) error {
	if len(args) == 1 {
		rate, err := strconv.ParseUint(args[0], 10, 32)
		if err != nil {
			return err
		}
		if err := s.sci.SetBaudRate(s.inst, s.board.ClockHz, uint32(rate)); err != nil {
			return err
		}
	}
	rate, err := s.sci.BaudRate(s.inst, s.board.ClockHz)
	if err != nil {
		return err
	}
	bc, err := s.sci.BaudConfig(s.inst)
	if err != nil {
		return err
	}
	s.printf("%s: %d baud (P=%d M=%d U=%d, VCLK %d Hz)\n", s.inst, rate, bc.Prescaler, bc.M, bc.U, s.board.ClockHz)
	return nil
}

func cmdLoopback(s *session, args []string) error {
	if len(args) == 1 {
		var err error
		switch args[0] {
		case "digital":
			err = s.sci.EnableLoopback(s.inst, sci.DigitalLoopback)
		case "analog":
			err = s.sci.EnableLoopback(s.inst, sci.AnalogLoopback)
		case "off":
			err = s.sci.DisableLoopback(s.inst)
		default:
			err = fmt.Errorf("unknown loopback %q", args[0])
		}
		if err != nil {
			return err
		}
	}
	on, typ, err := s.sci.Loopback(s.inst)
	if err != nil {
		return err
	}
	switch {
	case !on:
		s.printf("Loopback off\n")
	case typ == sci.AnalogLoopback:
		s.printf("Loopback analog\n")
	default:
		s.printf("Loopback digital\n")
	}
	return nil
}

func cmdFlags(s *session, _ []string) error {
	flags, err := s.sci.Flags(s.inst)
	if err != nil {
		return err
	}
	enabled, err := s.sci.EnabledNotifications(s.inst)
	if err != nil {
		return err
	}
	v0, _ := s.sci.InterruptVector(s.inst, sci.Line0)
	v1, _ := s.sci.InterruptVector(s.inst, sci.Line1)
	s.printf("FLR:     %s\n", flags)
	s.printf("SETINT:  %s\n", enabled)
	s.printf("VECT0:   %s\nVECT1:   %s\n", v0, v1)
	return nil
}

// parseFlags maps flag names as printed by sci.Flag.String to a mask
func parseFlags(names []string) (sci.Flag, error) {
	var mask sci.Flag
	for _, name := range names {
		name = strings.ToUpper(name)
		if name == "ERRORS" {
			mask |= sci.StickyErrors
			continue
		}
		found := false
		for i := 0; i < 32; i++ {
			f := sci.Flag(1) << i
			if f.String() == name {
				mask |= f
				found = true
				break
			}
		}
		if !found {
			return 0, fmt.Errorf("unknown flag %q", name)
		}
	}
	if mask == 0 {
		return 0, errors.New("no flags given")
	}
	return mask, nil
}

func cmdClear(s *session, args []string) error {
	mask, err := parseFlags(args)
	if err != nil {
		return err
	}
	return s.sci.ClearFlags(s.inst, mask)
}

func cmdNotify(s *session, args []string) error {
	if len(args) < 2 {
		return errors.New("usage: notify <on|off> <flag>...")
	}
	mask, err := parseFlags(args[1:])
	if err != nil {
		return err
	}
	switch args[0] {
	case "on":
		return s.sci.EnableNotification(s.inst, mask)
	case "off":
		return s.sci.DisableNotification(s.inst, mask)
	}
	return fmt.Errorf("expected on or off, got %q", args[0])
}

func cmdMode(s *session, args []string) error {
	if len(args) != 2 {
		return errors.New("usage: mode <tx|rx> <poll|interrupt>")
	}
	var m sci.TransferMode
	switch args[1] {
	case "poll":
		m = sci.Poll
	case "interrupt":
		m = sci.Interrupt
	default:
		return fmt.Errorf("unknown transfer mode %q", args[1])
	}
	switch args[0] {
	case "tx":
		return s.sci.SetTxMode(s.inst, m)
	case "rx":
		return s.sci.SetRxMode(s.inst, m)
	}
	return fmt.Errorf("expected tx or rx, got %q", args[0])
}

func cmdService(s *session, _ []string) error {
	passes, err := s.model().Drain(s.sci)
	if err != nil {
		return err
	}
	st, _ := s.sci.State(s.inst)
	s.printf("%d passes; tx %d/%d, rx %d/%d\n", passes,
		st.TxCursor, st.TxLength, st.RxCursor, st.RxLength)
	if st.RxLength > 0 && st.RxDone() {
		s.printf("Received %q\n", st.RxData[:st.RxLength])
	}
	return nil
}

// parsePin accepts "A3", "B0" or a pin name from the board
func (s *session) parsePin(arg string) (gio.Port, gio.Pin, error) {
	if port, pin, ok := s.board.PinByName(arg); ok {
		return port, pin, nil
	}
	if len(arg) == 2 {
		var port gio.Port
		switch arg[0] {
		case 'A', 'a':
			port = gio.PortA
		case 'B', 'b':
			port = gio.PortB
		default:
			return 0, 0, gio.ErrInvalidPort
		}
		if arg[1] < '0' || arg[1] > '7' {
			return 0, 0, gio.ErrInvalidPin
		}
		return port, gio.Pin(arg[1] - '0'), nil
	}
	return 0, 0, fmt.Errorf("unknown pin %q", arg)
}

func parseLevel(arg string) (gio.Level, error) {
	switch arg {
	case "0", "low":
		return gio.Low, nil
	case "1", "high":
		return gio.High, nil
	}
	return gio.Low, fmt.Errorf("unknown level %q", arg)
}

func levelName(l gio.Level) string {
	if l == gio.High {
		return "high"
	}
	return "low"
}

func cmdGIO(s *session, args []string) error {
	if len(args) == 0 {
		return errors.New("usage: " + commands["gio"].usage)
	}
	sub := args[0]
	if sub == "pending" {
		for _, prio := range []gio.Priority{gio.HighPriority, gio.LowPriority} {
			name := "low"
			if prio == gio.HighPriority {
				name = "high"
			}
			for {
				pi, ok, err := s.gio.PendingInterrupt(prio)
				if err != nil {
					return err
				}
				if !ok {
					break
				}
				s.printf("%s: %s%d\n", name, pi.Port, pi.Pin)
			}
		}
		return nil
	}
	if len(args) < 2 {
		return errors.New("usage: " + commands["gio"].usage)
	}
	port, pin, err := s.parsePin(args[1])
	if err != nil {
		return err
	}

	switch sub {
	case "get":
		l, err := s.gio.GetPin(port, pin)
		if err != nil {
			return err
		}
		flag, _ := s.gio.Flag(port, pin)
		s.printf("%s%d: %s flag=%v\n", port, pin, levelName(l), flag)
	case "set":
		if len(args) != 3 {
			return errors.New("usage: gio set <pin> <low|high>")
		}
		l, err := parseLevel(args[2])
		if err != nil {
			return err
		}
		return s.gio.SetPin(port, pin, l)
	case "toggle":
		return s.gio.TogglePin(port, pin)
	case "input":
		if len(args) != 3 {
			return errors.New("usage: gio input <pin> <low|high>")
		}
		l, err := parseLevel(args[2])
		if err != nil {
			return err
		}
		s.gmodel.SetInput(port, pin, l)
	case "trigger":
		s.gmodel.Trigger(port, pin)
	default:
		return fmt.Errorf("unknown gio command %q", sub)
	}
	return nil
}

func parseBytes(args []string) ([]byte, error) {
	out := make([]byte, 0, len(args))
	for _, a := range args {
		v, err := strconv.ParseUint(a, 0, 8)
		if err != nil {
			return nil, err
		}
		out = append(out, byte(v))
	}
	return out, nil
}

func cmdLIN(s *session, args []string) error {
	if len(args) < 2 {
		return errors.New("usage: " + commands["lin"].usage)
	}
	id64, err := strconv.ParseUint(args[1], 0, 8)
	if err != nil {
		return err
	}
	id := uint8(id64)
	data, err := parseBytes(args[2:])
	if err != nil {
		return err
	}

	switch args[0] {
	case "header":
		if err := s.sci.SendHeader(s.inst, id); err != nil {
			return err
		}
		s.printf("Header id=0x%02X pid=0x%02X\n", id, lin.ProtectedID(id))
	case "frame":
		if err := s.sci.WriteLINData(s.inst, data); err != nil {
			return err
		}
		s.printf("Response %d bytes, checksum 0x%02X\n", len(data),
			lin.FrameChecksum(lin.Enhanced, id, data))
	case "checksum":
		f, err := lin.NewFrame(lin.Enhanced, id, data)
		if err != nil {
			return err
		}
		s.printf("pid=0x%02X classic=0x%02X enhanced=0x%02X\n", f.PID(),
			lin.FrameChecksum(lin.Classic, id, data), f.Checksum)
	default:
		return fmt.Errorf("unknown lin command %q", args[0])
	}
	return nil
}

func cmdEvents(s *session, _ []string) error {
	events := core.Events()
	if len(events) == 0 {
		s.printf("No events\n")
		return nil
	}
	for _, evt := range events {
		s.printf("%-18s unit=%d addr=%s v1=%s v2=%s\n", core.EventName(evt.Type), evt.Unit,
			core.Hex32(evt.Addr), core.Hex32(evt.Value1), core.Hex32(evt.Value2))
	}
	return nil
}

func cmdStats(s *session, _ []string) error {
	if s.bridge == nil {
		s.printf("No serial bridge (start with -device)\n")
		return nil
	}
	st := s.bridge.Stats()
	s.printf("to host %d, to device %d, dropped %d\n", st.ToHost, st.ToDevice, st.Dropped)
	return nil
}
