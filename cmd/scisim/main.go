package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"tms570hal/config"
	"tms570hal/core"
	"tms570hal/host/bridge"
	"tms570hal/host/serial"
)

var (
	configPath = flag.String("config", "", "Board configuration (JSON); built-in default when empty")
	device     = flag.String("device", "", "Serial device to bridge to the selected SCI")
	baud       = flag.Int("baud", 115200, "Baud rate of the serial device")
	instance   = flag.Int("inst", 1, "SCI instance selected at start (1-4)")
	debug      = flag.Bool("debug", false, "Print driver debug output")
)

func main() {
	flag.Parse()

	fmt.Println("scisim - simulated TMS570 SCI/LIN and GIO")
	fmt.Println("==========================================")
	fmt.Println()

	core.SetDebugWriter(func(s string) { fmt.Fprintln(os.Stderr, s) })
	core.SetDebugEnabled(*debug)

	board := config.DefaultBoard()
	if *configPath != "" {
		var err error
		board, err = config.LoadFile(*configPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	}

	s, err := newSession(os.Stdout, board)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	if err := s.selectInstance(*instance); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Board %q: %d SCI port(s), %d GIO pin(s)\n", board.Name, len(board.SCI), len(board.GIO))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if *device != "" {
		cfg := serial.DefaultConfig(*device)
		cfg.Baud = *baud
		port, err := serial.Open(cfg)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		defer port.Close()

		b := bridge.New(s.model(), port)
		s.bridge = b
		go func() {
			if err := b.Run(ctx); err != nil && ctx.Err() == nil {
				fmt.Fprintf(os.Stderr, "Bridge stopped: %v\n", err)
			}
		}()
		fmt.Printf("Bridging %s to %s at %d baud\n", s.inst, *device, *baud)
	}

	fmt.Println("Enter commands (type 'help' for available commands, 'quit' to exit):")
	scanner := bufio.NewScanner(os.Stdin)

	for {
		fmt.Printf("%s> ", s.inst)
		if !scanner.Scan() {
			break
		}

		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		if err := s.exec(line); err != nil {
			if err == errQuit {
				fmt.Println("Goodbye!")
				break
			}
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
	}

	if err := scanner.Err(); err != nil {
		fmt.Fprintf(os.Stderr, "Error reading input: %v\n", err)
		os.Exit(1)
	}
	if *debug {
		core.DumpEventRing()
	}
}
