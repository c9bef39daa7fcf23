package main

import (
	tty "github.com/mattn/go-tty"
)

// termEscape leaves the raw terminal (Ctrl-])
const termEscape = 0x1D

// cmdTerm turns the console into a raw terminal on the selected SCI: typed
// keys are transmitted, received bytes are printed
func cmdTerm(s *session, _ []string) error {
	t, err := tty.Open()
	if err != nil {
		return err
	}
	defer t.Close()

	restore, err := t.Raw()
	if err != nil {
		return err
	}
	defer restore()

	port, err := s.sci.Port(s.inst)
	if err != nil {
		return err
	}
	out := t.Output()
	out.WriteString("[" + s.inst.String() + " terminal, Ctrl-] to leave]\r\n")

	buf := make([]byte, 64)
	for {
		r, err := t.ReadRune()
		if err != nil {
			return err
		}
		if r == termEscape {
			out.WriteString("\r\n")
			return nil
		}
		if r > 0xFF {
			continue
		}
		if err := port.WriteByte(byte(r)); err != nil {
			return err
		}
		for {
			n, err := port.Read(buf)
			if err != nil {
				return err
			}
			if n == 0 {
				break
			}
			out.Write(buf[:n])
		}
	}
}
