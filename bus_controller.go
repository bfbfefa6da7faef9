// bus_controller.go - Synchronous bus transaction controller for IntuitionRegs

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
bus_controller.go - Bus Register Controller

The BusController exposes a RegisterFile over a synchronous
request/response bus. Each call to Tick is one clock tick: the caller
presents that tick's input signal levels, the controller advances its
two state machines and returns the registered output levels for the
next tick.

The write side runs a five-state machine. From IDLE it advertises
readiness one tick later (READY); a tick offering both address and data
decodes and responds directly, while a tick offering only one phase
buffers it (ADDR_RECEIVED or DATA_RECEIVED) and waits for the other.
RESPOND holds the response valid until the requester acknowledges it,
then returns to IDLE. The read side is the same machine minus the
buffering states: IDLE, READY, RESPOND.

Address decode strips the low bits that encode sub-word unit addressing
and compares the word index against the register count. A miss yields an
ERROR response, zero read data, and no register mutation. A map with
exactly one register collapses its address space to a single slot, so
only a raw address of zero decodes.

Reset is level-sensitive and wins over everything: both machines return
to IDLE with all readiness and response indications cleared, abandoning
any transaction in flight without completing its response.

All per-tick state transitions are computed from the state at the start
of the tick. The read fetch happens before the write application, so a
read never observes the same tick's write.
*/

package main

import (
	"fmt"
	"math/bits"
)

// RespStatus is the status half of a bus response.
type RespStatus int

const (
	RespOkay RespStatus = iota
	RespError
)

func (s RespStatus) String() string {
	switch s {
	case RespOkay:
		return "OK"
	case RespError:
		return "ERROR"
	default:
		return fmt.Sprintf("RespStatus(%d)", int(s))
	}
}

// BusInputs are the signal levels the requester presents for one tick.
type BusInputs struct {
	Reset bool

	WriteAddrValid bool
	WriteAddr      uint32
	WriteDataValid bool
	WriteData      uint64
	WriteRespReady bool

	ReadAddrValid bool
	ReadAddr      uint32
	ReadRespReady bool
}

// BusOutputs are the registered signal levels the controller drives
// after one tick.
type BusOutputs struct {
	WriteAddrReady bool
	WriteDataReady bool
	WriteRespValid bool
	WriteResp      RespStatus

	ReadAddrReady bool
	ReadRespValid bool
	ReadData      uint64
	ReadResp      RespStatus
}

type writeState int

const (
	writeIdle writeState = iota
	writeReady
	writeAddrReceived
	writeDataReceived
	writeRespond
)

type readState int

const (
	readIdle readState = iota
	readReady
	readRespond
)

// BusConfig is the construction-time bus geometry. DataWidth must match
// the register file's word width; UnitWidth defaults to 8 when zero.
type BusConfig struct {
	DataWidth int // 32 or 64
	AddrWidth int // 1..32
	UnitWidth int // addressable unit width in bits, default 8
}

// BusController drives a RegisterFile from bus transactions.
type BusController struct {
	regs *RegisterFile

	byteToWordShift int

	wrState  writeState
	wrAddr   uint32
	wrData   uint64
	rdState  readState
	out      BusOutputs
	cycles   uint64
}

// NewBusController validates cfg against regs and builds the
// controller. Both machines start in IDLE with all outputs deasserted.
func NewBusController(regs *RegisterFile, cfg BusConfig) (*BusController, error) {
	if cfg.DataWidth != 32 && cfg.DataWidth != 64 {
		return nil, fmt.Errorf("BusController: data width must be 32 or 64, not %d: %w",
			cfg.DataWidth, ErrInvalidWidth)
	}
	if cfg.DataWidth != regs.WordWidth() {
		return nil, fmt.Errorf("BusController: data width %d does not match the register file word width %d: %w",
			cfg.DataWidth, regs.WordWidth(), ErrInvalidWidth)
	}
	if cfg.AddrWidth < 1 || cfg.AddrWidth > 32 {
		return nil, fmt.Errorf("BusController: address width must be in 1..32, not %d: %w",
			cfg.AddrWidth, ErrInvalidWidth)
	}
	unitWidth := cfg.UnitWidth
	if unitWidth == 0 {
		unitWidth = 8
	}
	if unitWidth < 8 || !powerOfTwo(unitWidth) {
		return nil, fmt.Errorf("BusController: addressable unit width must be a power of 2 of at least 8, not %d: %w",
			unitWidth, ErrInvalidWidth)
	}
	if unitWidth > cfg.DataWidth {
		return nil, fmt.Errorf("BusController: addressable unit width %d exceeds the data width %d: %w",
			unitWidth, cfg.DataWidth, ErrInvalidWidth)
	}

	// Low address bits select units within one word and carry no
	// register index information.
	shift := bits.Len(uint(cfg.DataWidth/unitWidth)) - 1

	if regs.NRegisters() > 1 {
		indexBits := cfg.AddrWidth - shift
		if indexBits < 1 || regs.NRegisters() > 1<<uint(indexBits) {
			return nil, fmt.Errorf("BusController: %d registers do not fit a %d bit address space with a %d bit unit shift: %w",
				regs.NRegisters(), cfg.AddrWidth, shift, ErrAddressSpace)
		}
	}

	return &BusController{
		regs:            regs,
		byteToWordShift: shift,
	}, nil
}

// Cycles returns the number of ticks evaluated since construction.
// Ticks with the reset input asserted count too; only the hard Reset
// method zeroes the counter.
func (c *BusController) Cycles() uint64 { return c.cycles }

// Tick evaluates one clock tick. The returned outputs are the levels
// the controller drives until the next call.
func (c *BusController) Tick(in BusInputs) BusOutputs {
	c.cycles++

	if in.Reset {
		c.wrState = writeIdle
		c.rdState = readIdle
		c.out = BusOutputs{}
		c.regs.retireStrobes()
		return c.out
	}

	// Strobes and write-only pulses from the previous tick expire
	// before this tick's transaction can land.
	c.regs.retireStrobes()

	// Read before write: a read never observes this tick's write.
	c.stepRead(in)
	c.stepWrite(in)

	return c.out
}

// decode strips the unit-select bits from addr and resolves the word
// index. A single-register map collapses to raw address zero.
func (c *BusController) decode(addr uint32) (int, bool) {
	if c.regs.NRegisters() == 1 {
		return 0, addr == 0
	}
	index := int(addr >> uint(c.byteToWordShift))
	return index, index < c.regs.NRegisters()
}

func (c *BusController) stepWrite(in BusInputs) {
	switch c.wrState {
	case writeIdle:
		c.out.WriteAddrReady = true
		c.out.WriteDataReady = true
		c.wrState = writeReady

	case writeReady:
		switch {
		case in.WriteAddrValid && in.WriteDataValid:
			c.completeWrite(in.WriteAddr, in.WriteData)
		case in.WriteAddrValid:
			c.wrAddr = in.WriteAddr
			c.out.WriteAddrReady = false
			c.wrState = writeAddrReceived
		case in.WriteDataValid:
			c.wrData = in.WriteData
			c.out.WriteDataReady = false
			c.wrState = writeDataReceived
		}

	case writeAddrReceived:
		if in.WriteDataValid {
			c.completeWrite(c.wrAddr, in.WriteData)
		}

	case writeDataReceived:
		if in.WriteAddrValid {
			c.completeWrite(in.WriteAddr, c.wrData)
		}

	case writeRespond:
		if in.WriteRespReady {
			c.out.WriteRespValid = false
			c.wrState = writeIdle
		}
	}
}

// completeWrite decodes addr, applies or discards data, latches the
// response and enters RESPOND.
func (c *BusController) completeWrite(addr uint32, data uint64) {
	index, ok := c.decode(addr)
	if ok {
		c.regs.busWrite(index, data)
		c.out.WriteResp = RespOkay
	} else {
		c.out.WriteResp = RespError
	}
	c.out.WriteAddrReady = false
	c.out.WriteDataReady = false
	c.out.WriteRespValid = true
	c.wrState = writeRespond
}

func (c *BusController) stepRead(in BusInputs) {
	switch c.rdState {
	case readIdle:
		c.out.ReadAddrReady = true
		c.rdState = readReady

	case readReady:
		if !in.ReadAddrValid {
			return
		}
		index, ok := c.decode(in.ReadAddr)
		if ok {
			c.out.ReadData = c.regs.busRead(index)
			c.out.ReadResp = RespOkay
		} else {
			c.out.ReadData = 0
			c.out.ReadResp = RespError
		}
		c.out.ReadAddrReady = false
		c.out.ReadRespValid = true
		c.rdState = readRespond

	case readRespond:
		if in.ReadRespReady {
			c.out.ReadRespValid = false
			c.rdState = readIdle
		}
	}
}
