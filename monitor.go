// monitor.go - Interactive raw-mode register monitor

/*
 ██▓ ███▄    █ ▄▄▄█████▓ █    ██  ██▓▄▄▄█████▓ ██▓ ▒█████   ███▄    █    ▓█████  ███▄    █   ▄████  ██▓ ███▄    █ ▓█████
▓██▒ ██ ▀█   █ ▓  ██▒ ▓▒ ██  ▓██▒▓██▒▓  ██▒ ▓▒▓██▒▒██▒  ██▒ ██ ▀█   █    ▓█   ▀  ██ ▀█   █  ██▒ ▀█▒▓██▒ ██ ▀█   █ ▓█   ▀
▒██▒▓██  ▀█ ██▒▒ ▓██░ ▒░▓██  ▒██░▒██▒▒ ▓██░ ▒░▒██▒▒██░  ██▒▓██  ▀█ ██▒   ▒███   ▓██  ▀█ ██▒▒██░▄▄▄░▒██▒▓██  ▀█ ██▒▒███
░██░▓██▒  ▐▌██▒░ ▓██▓ ░ ▓▓█  ░██░░██░░ ▓██▓ ░ ░██░▒██   ██░▓██▒  ▐▌██▒   ▒▓█  ▄ ▓██▒  ▐▌██▒░▓█  ██▓░██░▓██▒  ▐▌██▒▒▓█  ▄
░██░▒██░   ▓██░  ▒██▒ ░ ▒▒█████▓ ░██░  ▒██▒ ░ ░██░░ ████▓▒░▒██░   ▓██░   ░▒████▒▒██░   ▓██░░▒▓███▀▒░██░▒██░   ▓██░░▒████▒
░▓  ░ ▒░   ▒ ▒   ▒ ░░   ░▒▓▒ ▒ ▒ ░▓    ▒ ░░   ░▓  ░ ▒░▒░▒░ ░ ▒░   ▒ ▒    ░░ ▒░ ░░ ▒░   ▒ ▒  ░▒   ▒ ░▓  ░ ▒░   ▒ ▒ ░░ ▒░ ░
 ▒ ░░ ░░   ░ ▒░    ░    ░░▒░ ░ ░  ▒ ░    ░     ▒ ░  ░ ▒ ▒░ ░ ░░   ░ ▒░    ░ ░  ░░ ░░   ░ ▒░  ░   ░  ▒ ░░ ░░   ░ ▒░ ░ ░  ░
 ▒ ░   ░   ░ ░   ░       ░░░ ░ ░  ▒ ░  ░       ▒ ░░ ░ ░ ▒     ░   ░ ░       ░      ░   ░ ░ ░ ░   ░  ▒ ░   ░   ░ ░    ░
 ░           ░             ░      ░            ░      ░ ░           ░       ░  ░         ░       ░  ░           ░    ░  ░

(c) 2024 - 2026 Zayn Otley
https://github.com/IntuitionAmiga/IntuitionRegs
Buy me a coffee: https://ko-fi.com/intuition/tip

License: GPLv3 or later
*/

/*
monitor.go - Register Monitor

An interactive monitor over a register file and its bus controller,
driven from a raw-mode terminal. Only instantiated in main.go for
interactive use — never in tests.

Commands:

    r <addr>           read through the bus
    w <addr> <data>    write through the bus
    t [n]              advance n idle ticks (default 1)
    x                  one tick with reset asserted
    l                  list registers with mode and current storage
    f <name>           decode a register's bitfields
    s                  show write strobes from the latest tick
    q                  quit

Addresses and data accept decimal or 0x-prefixed hex.
*/

package main

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"golang.org/x/term"
)

// RegisterMonitor is the interactive command loop state.
type RegisterMonitor struct {
	rf  *RegisterFile
	bus *BusController
}

// NewRegisterMonitor creates a monitor over the given register file and
// controller.
func NewRegisterMonitor(rf *RegisterFile, bus *BusController) *RegisterMonitor {
	return &RegisterMonitor{rf: rf, bus: bus}
}

// Run puts stdin in raw mode and services commands until q or EOF.
// The terminal state is restored on return.
func (m *RegisterMonitor) Run() error {
	fd := int(os.Stdin.Fd())
	oldState, err := term.MakeRaw(fd)
	if err != nil {
		return fmt.Errorf("Monitor: failed to set raw mode: %w", err)
	}
	defer term.Restore(fd, oldState)

	t := term.NewTerminal(struct {
		io.Reader
		io.Writer
	}{os.Stdin, os.Stdout}, "regs> ")

	fmt.Fprintf(t, "%d registers, word width %d. ? for help.\r\n",
		m.rf.NRegisters(), m.rf.WordWidth())

	for {
		line, err := t.ReadLine()
		if err != nil {
			if err == io.EOF {
				return nil
			}
			return fmt.Errorf("Monitor: %w", err)
		}
		quit, err := m.dispatch(t, line)
		if err != nil {
			fmt.Fprintf(t, "error: %v\r\n", err)
		}
		if quit {
			return nil
		}
	}
}

func (m *RegisterMonitor) dispatch(w io.Writer, line string) (quit bool, err error) {
	args := strings.Fields(line)
	if len(args) == 0 {
		return false, nil
	}

	switch args[0] {
	case "q", "quit":
		return true, nil
	case "?", "h", "help":
		m.cmdHelp(w)
	case "r":
		err = m.cmdRead(w, args[1:])
	case "w":
		err = m.cmdWrite(w, args[1:])
	case "t":
		err = m.cmdTick(w, args[1:])
	case "x":
		m.bus.Tick(BusInputs{Reset: true})
		fmt.Fprintf(w, "reset asserted for one tick\r\n")
	case "l":
		err = m.cmdList(w)
	case "f":
		err = m.cmdFields(w, args[1:])
	case "s":
		err = m.cmdStrobes(w)
	default:
		fmt.Fprintf(w, "unknown command %q, ? for help\r\n", args[0])
	}
	return false, err
}

func (m *RegisterMonitor) cmdHelp(w io.Writer) {
	fmt.Fprintf(w, "r <addr>         bus read\r\n")
	fmt.Fprintf(w, "w <addr> <data>  bus write\r\n")
	fmt.Fprintf(w, "t [n]            advance n idle ticks\r\n")
	fmt.Fprintf(w, "x                reset for one tick\r\n")
	fmt.Fprintf(w, "l                list registers\r\n")
	fmt.Fprintf(w, "f <name>         decode bitfields\r\n")
	fmt.Fprintf(w, "s                show write strobes\r\n")
	fmt.Fprintf(w, "q                quit\r\n")
}

// parseUnsigned parses a decimal or 0x-prefixed argument, mapping a
// leading minus sign to the negative-value error instead of a generic
// syntax error.
func parseUnsigned(arg string) (uint64, error) {
	if strings.HasPrefix(arg, "-") {
		return 0, fmt.Errorf("Monitor: %q: %w", arg, ErrNegativeValue)
	}
	v, err := strconv.ParseUint(arg, 0, 64)
	if err != nil {
		return 0, fmt.Errorf("Monitor: %q is not a number", arg)
	}
	return v, nil
}

func (m *RegisterMonitor) cmdRead(w io.Writer, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("Monitor: usage: r <addr>")
	}
	addr, err := parseUnsigned(args[0])
	if err != nil {
		return err
	}
	m.bus.Tick(BusInputs{})
	out := m.bus.Tick(BusInputs{ReadAddrValid: true, ReadAddr: uint32(addr)})
	m.bus.Tick(BusInputs{ReadRespReady: true})
	fmt.Fprintf(w, "[%#04x] = %#x (%s)\r\n", addr, out.ReadData, out.ReadResp)
	return nil
}

func (m *RegisterMonitor) cmdWrite(w io.Writer, args []string) error {
	if len(args) != 2 {
		return fmt.Errorf("Monitor: usage: w <addr> <data>")
	}
	addr, err := parseUnsigned(args[0])
	if err != nil {
		return err
	}
	data, err := parseUnsigned(args[1])
	if err != nil {
		return err
	}
	m.bus.Tick(BusInputs{})
	out := m.bus.Tick(BusInputs{
		WriteAddrValid: true,
		WriteAddr:      uint32(addr),
		WriteDataValid: true,
		WriteData:      data,
	})
	fmt.Fprintf(w, "[%#04x] <- %#x (%s)\r\n", addr, data, out.WriteResp)
	m.bus.Tick(BusInputs{WriteRespReady: true})
	return nil
}

func (m *RegisterMonitor) cmdTick(w io.Writer, args []string) error {
	n := uint64(1)
	if len(args) == 1 {
		var err error
		n, err = parseUnsigned(args[0])
		if err != nil {
			return err
		}
	}
	for i := uint64(0); i < n; i++ {
		m.bus.Tick(BusInputs{})
	}
	fmt.Fprintf(w, "cycle %d\r\n", m.bus.Cycles())
	return nil
}

func (m *RegisterMonitor) cmdList(w io.Writer) error {
	for _, name := range m.rf.Names() {
		mode, err := m.rf.Mode(name)
		if err != nil {
			return err
		}
		value, err := m.rf.Value(name)
		if err != nil {
			return err
		}
		fmt.Fprintf(w, "%-16s %-10s %#x\r\n", name, mode, value)
	}
	return nil
}

func (m *RegisterMonitor) cmdFields(w io.Writer, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("Monitor: usage: f <name>")
	}
	name := args[0]
	fields, err := m.rf.Fields(name)
	if err != nil {
		return err
	}
	if fields == nil {
		fmt.Fprintf(w, "%s is a bare word\r\n", name)
		return nil
	}
	value, err := m.rf.Value(name)
	if err != nil {
		return err
	}
	decoded := fields.Unpack(value)
	for _, fieldName := range fields.BitfieldNames() {
		field, err := fields.Bitfield(fieldName)
		if err != nil {
			return err
		}
		tag := ""
		if field.IsConstant() {
			tag = " const"
		}
		fmt.Fprintf(w, "%-16s [%2d..%2d)%s = %#x\r\n",
			fieldName, field.Offset(), field.IndexUpperBound(), tag, decoded[fieldName])
	}
	return nil
}

func (m *RegisterMonitor) cmdStrobes(w io.Writer) error {
	any := false
	for _, name := range m.rf.Names() {
		hit, err := m.rf.WriteStrobe(name)
		if err != nil {
			return err
		}
		if hit {
			fmt.Fprintf(w, "%s\r\n", name)
			any = true
		}
	}
	if !any {
		fmt.Fprintf(w, "no strobes\r\n")
	}
	return nil
}
