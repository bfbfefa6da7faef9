// script_bench.go - Lua-scriptable test bench for bus transactions

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
script_bench.go - Script Bench

A ScriptBench exposes a register file and its bus controller to Lua, so
bring-up and regression sequences can be written as scripts instead of
Go code. The scripting surface is deliberately small:

    poke(addr, data) -> status   full write transaction, "OK"/"ERROR"
    peek(addr) -> data, status   full read transaction
    tick(n)                      advance n idle ticks (default 1)
    reset()                      one tick with reset asserted
    get(name) -> value           register storage, outside the bus
    set(name, value)             external write to a read-only register
    strobe(name) -> bool         write strobe from the latest tick
    cycles() -> n                controller tick count

Each poke/peek runs a full transaction up to the response; the
acknowledgement tick is deferred to the start of the next transaction.
Deferring it keeps write strobes and write-only pulses, whose lifetime
is exactly one tick, observable to get() and strobe() immediately after
the poke that caused them.

Register words cross into Lua as numbers, which are float64 under
gopher-lua. A 64-bit value the float64 mantissa cannot hold exactly
raises a script error rather than silently losing low bits.
*/

package main

import (
	"fmt"

	lua "github.com/yuin/gopher-lua"
)

// ScriptBench drives a BusController from Lua scripts.
type ScriptBench struct {
	rf  *RegisterFile
	bus *BusController
}

// NewScriptBench creates a bench over the given register file and
// controller.
func NewScriptBench(rf *RegisterFile, bus *BusController) *ScriptBench {
	return &ScriptBench{rf: rf, bus: bus}
}

// RunFile executes the Lua script at path against the bench.
func (b *ScriptBench) RunFile(path string) error {
	L := lua.NewState()
	defer L.Close()
	b.register(L)
	if err := L.DoFile(path); err != nil {
		return fmt.Errorf("ScriptBench: %w", err)
	}
	return nil
}

// RunString executes src as a Lua chunk against the bench.
func (b *ScriptBench) RunString(src string) error {
	L := lua.NewState()
	defer L.Close()
	b.register(L)
	if err := L.DoString(src); err != nil {
		return fmt.Errorf("ScriptBench: %w", err)
	}
	return nil
}

func (b *ScriptBench) register(L *lua.LState) {
	L.SetGlobal("poke", L.NewFunction(b.luaPoke))
	L.SetGlobal("peek", L.NewFunction(b.luaPeek))
	L.SetGlobal("tick", L.NewFunction(b.luaTick))
	L.SetGlobal("reset", L.NewFunction(b.luaReset))
	L.SetGlobal("get", L.NewFunction(b.luaGet))
	L.SetGlobal("set", L.NewFunction(b.luaSet))
	L.SetGlobal("strobe", L.NewFunction(b.luaStrobe))
	L.SetGlobal("cycles", L.NewFunction(b.luaCycles))
}

// checkUnsigned converts a Lua integer argument, rejecting negatives at
// the boundary where signed script values meet the unsigned register
// model.
func checkUnsigned(L *lua.LState, n int) (uint64, bool) {
	v := L.CheckInt64(n)
	if v < 0 {
		L.RaiseError("argument %d: %d: %v", n, v, ErrNegativeValue)
		return 0, false
	}
	return uint64(v), true
}

// pushWord surfaces a register word as a Lua number, rejecting values
// that float64 cannot represent exactly.
func pushWord(L *lua.LState, v uint64) {
	f := float64(v)
	if f >= 1<<64 || uint64(f) != v {
		L.RaiseError("value %#x does not fit a Lua number exactly", v)
		return
	}
	L.Push(lua.LNumber(f))
}

// settle acknowledges any pending response and ticks both machines
// back to READY. Bounded: IDLE is at most two ticks away from any
// state.
func (b *ScriptBench) settle() BusOutputs {
	ack := BusInputs{WriteRespReady: true, ReadRespReady: true}
	out := b.bus.Tick(ack)
	for i := 0; i < 2 && !(out.WriteAddrReady && out.WriteDataReady && out.ReadAddrReady); i++ {
		out = b.bus.Tick(ack)
	}
	return out
}

// writeTxn runs one write transaction, leaving the response pending.
func (b *ScriptBench) writeTxn(addr uint32, data uint64) RespStatus {
	b.settle()
	out := b.bus.Tick(BusInputs{
		WriteAddrValid: true,
		WriteAddr:      addr,
		WriteDataValid: true,
		WriteData:      data,
	})
	return out.WriteResp
}

// readTxn runs one read transaction, leaving the response pending.
func (b *ScriptBench) readTxn(addr uint32) (uint64, RespStatus) {
	b.settle()
	out := b.bus.Tick(BusInputs{ReadAddrValid: true, ReadAddr: addr})
	return out.ReadData, out.ReadResp
}

func (b *ScriptBench) luaPoke(L *lua.LState) int {
	addr, ok := checkUnsigned(L, 1)
	if !ok {
		return 0
	}
	data, ok := checkUnsigned(L, 2)
	if !ok {
		return 0
	}
	status := b.writeTxn(uint32(addr), data)
	L.Push(lua.LString(status.String()))
	return 1
}

func (b *ScriptBench) luaPeek(L *lua.LState) int {
	addr, ok := checkUnsigned(L, 1)
	if !ok {
		return 0
	}
	data, status := b.readTxn(uint32(addr))
	pushWord(L, data)
	L.Push(lua.LString(status.String()))
	return 2
}

func (b *ScriptBench) luaTick(L *lua.LState) int {
	n := int(L.OptInt64(1, 1))
	for i := 0; i < n; i++ {
		b.bus.Tick(BusInputs{})
	}
	return 0
}

func (b *ScriptBench) luaReset(L *lua.LState) int {
	b.bus.Tick(BusInputs{Reset: true})
	return 0
}

func (b *ScriptBench) luaGet(L *lua.LState) int {
	name := L.CheckString(1)
	value, err := b.rf.Value(name)
	if err != nil {
		L.RaiseError("%v", err)
		return 0
	}
	pushWord(L, value)
	return 1
}

func (b *ScriptBench) luaSet(L *lua.LState) int {
	name := L.CheckString(1)
	value, ok := checkUnsigned(L, 2)
	if !ok {
		return 0
	}
	if err := b.rf.SetValue(name, value); err != nil {
		L.RaiseError("%v", err)
	}
	return 0
}

func (b *ScriptBench) luaStrobe(L *lua.LState) int {
	name := L.CheckString(1)
	hit, err := b.rf.WriteStrobe(name)
	if err != nil {
		L.RaiseError("%v", err)
		return 0
	}
	L.Push(lua.LBool(hit))
	return 1
}

func (b *ScriptBench) luaCycles(L *lua.LState) int {
	L.Push(lua.LNumber(b.bus.Cycles()))
	return 1
}
