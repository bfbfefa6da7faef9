package main

import (
	"errors"
	"testing"
)

func newTestBus(t *testing.T) (*RegisterFile, *BusController) {
	t.Helper()
	rf, err := NewRegisterFile(RegisterFileConfig{
		WordWidth: 32,
		Names:     []string{"ctrl", "status", "trigger"},
		Modes: map[string]AccessMode{
			"status":  RegReadOnly,
			"trigger": RegWriteOnly,
		},
	})
	if err != nil {
		t.Fatalf("NewRegisterFile failed: %v", err)
	}
	bus, err := NewBusController(rf, BusConfig{DataWidth: 32, AddrWidth: 4})
	if err != nil {
		t.Fatalf("NewBusController failed: %v", err)
	}
	return rf, bus
}

// writeWord runs one complete write transaction: readiness tick,
// simultaneous request tick, acknowledgement tick.
func writeWord(t *testing.T, bus *BusController, addr uint32, data uint64) RespStatus {
	t.Helper()
	bus.Tick(BusInputs{})
	out := bus.Tick(BusInputs{
		WriteAddrValid: true,
		WriteAddr:      addr,
		WriteDataValid: true,
		WriteData:      data,
	})
	if !out.WriteRespValid {
		t.Fatalf("write to %#x: no response valid after request tick", addr)
	}
	bus.Tick(BusInputs{WriteRespReady: true})
	return out.WriteResp
}

// readWord runs one complete read transaction.
func readWord(t *testing.T, bus *BusController, addr uint32) (uint64, RespStatus) {
	t.Helper()
	bus.Tick(BusInputs{})
	out := bus.Tick(BusInputs{ReadAddrValid: true, ReadAddr: addr})
	if !out.ReadRespValid {
		t.Fatalf("read of %#x: no response valid after request tick", addr)
	}
	bus.Tick(BusInputs{ReadRespReady: true})
	return out.ReadData, out.ReadResp
}

// TestBusConfigValidation verifies every construction error of the
// controller geometry.
func TestBusConfigValidation(t *testing.T) {
	rf, err := NewRegisterFile(RegisterFileConfig{WordWidth: 32, Names: []string{"a"}})
	if err != nil {
		t.Fatalf("NewRegisterFile failed: %v", err)
	}

	if _, err := NewBusController(rf, BusConfig{DataWidth: 16, AddrWidth: 4}); !errors.Is(err, ErrInvalidWidth) {
		t.Fatalf("data width 16: got %v, expected ErrInvalidWidth", err)
	}
	if _, err := NewBusController(rf, BusConfig{DataWidth: 64, AddrWidth: 4}); !errors.Is(err, ErrInvalidWidth) {
		t.Fatalf("data width mismatching word width: got %v, expected ErrInvalidWidth", err)
	}
	if _, err := NewBusController(rf, BusConfig{DataWidth: 32, AddrWidth: 0}); !errors.Is(err, ErrInvalidWidth) {
		t.Fatalf("address width 0: got %v, expected ErrInvalidWidth", err)
	}
	if _, err := NewBusController(rf, BusConfig{DataWidth: 32, AddrWidth: 33}); !errors.Is(err, ErrInvalidWidth) {
		t.Fatalf("address width 33: got %v, expected ErrInvalidWidth", err)
	}
	if _, err := NewBusController(rf, BusConfig{DataWidth: 32, AddrWidth: 4, UnitWidth: 4}); !errors.Is(err, ErrInvalidWidth) {
		t.Fatalf("unit width 4: got %v, expected ErrInvalidWidth", err)
	}
	if _, err := NewBusController(rf, BusConfig{DataWidth: 32, AddrWidth: 4, UnitWidth: 64}); !errors.Is(err, ErrInvalidWidth) {
		t.Fatalf("unit width beyond data width: got %v, expected ErrInvalidWidth", err)
	}

	// 8 registers need 3 index bits; a 4 bit address with a 2 bit unit
	// shift leaves only 2.
	names := []string{"r0", "r1", "r2", "r3", "r4", "r5", "r6", "r7"}
	big, err := NewRegisterFile(RegisterFileConfig{WordWidth: 32, Names: names})
	if err != nil {
		t.Fatalf("NewRegisterFile failed: %v", err)
	}
	if _, err := NewBusController(big, BusConfig{DataWidth: 32, AddrWidth: 4}); !errors.Is(err, ErrAddressSpace) {
		t.Fatalf("8 registers in 4 address bits: got %v, expected ErrAddressSpace", err)
	}
	if _, err := NewBusController(big, BusConfig{DataWidth: 32, AddrWidth: 5}); err != nil {
		t.Fatalf("8 registers in 5 address bits failed: %v", err)
	}
}

// TestBusReadinessTiming verifies that readiness is advertised one tick
// after IDLE, not at construction.
func TestBusReadinessTiming(t *testing.T) {
	_, bus := newTestBus(t)

	out := bus.Tick(BusInputs{})
	if !out.WriteAddrReady || !out.WriteDataReady || !out.ReadAddrReady {
		t.Fatalf("readiness not advertised after first tick: %+v", out)
	}
	if out.WriteRespValid || out.ReadRespValid {
		t.Fatalf("response valid with no transaction: %+v", out)
	}
}

// TestBusWriteReadRoundTrip verifies a simultaneous write followed by a
// read of the same register.
func TestBusWriteReadRoundTrip(t *testing.T) {
	_, bus := newTestBus(t)

	if status := writeWord(t, bus, 0x0, 0x12345678); status != RespOkay {
		t.Fatalf("write status %s, expected OK", status)
	}
	data, status := readWord(t, bus, 0x0)
	if status != RespOkay {
		t.Fatalf("read status %s, expected OK", status)
	}
	if data != 0x12345678 {
		t.Fatalf("read data %#x, expected 0x12345678", data)
	}
}

// TestBusOutOfOrderArrival verifies that address-then-data and
// data-then-address sequences produce the same final state and status
// as simultaneous delivery.
func TestBusOutOfOrderArrival(t *testing.T) {
	// Address first, data two ticks later.
	rf, bus := newTestBus(t)
	bus.Tick(BusInputs{})
	out := bus.Tick(BusInputs{WriteAddrValid: true, WriteAddr: 0x0})
	if out.WriteAddrReady {
		t.Fatal("address ready still asserted after address was accepted")
	}
	if !out.WriteDataReady {
		t.Fatal("data ready deasserted while waiting for data")
	}
	if out.WriteRespValid {
		t.Fatal("response valid before data arrived")
	}
	bus.Tick(BusInputs{}) // idle tick between the phases
	out = bus.Tick(BusInputs{WriteDataValid: true, WriteData: 0xCAFE})
	if !out.WriteRespValid || out.WriteResp != RespOkay {
		t.Fatalf("addr-first completion: %+v, expected OK response", out)
	}
	bus.Tick(BusInputs{WriteRespReady: true})
	addrFirst, err := rf.Value("ctrl")
	if err != nil {
		t.Fatalf("Value failed: %v", err)
	}

	// Data first, address two ticks later.
	rf, bus = newTestBus(t)
	bus.Tick(BusInputs{})
	out = bus.Tick(BusInputs{WriteDataValid: true, WriteData: 0xCAFE})
	if out.WriteDataReady {
		t.Fatal("data ready still asserted after data was accepted")
	}
	if out.WriteRespValid {
		t.Fatal("response valid before address arrived")
	}
	bus.Tick(BusInputs{})
	out = bus.Tick(BusInputs{WriteAddrValid: true, WriteAddr: 0x0})
	if !out.WriteRespValid || out.WriteResp != RespOkay {
		t.Fatalf("data-first completion: %+v, expected OK response", out)
	}
	bus.Tick(BusInputs{WriteRespReady: true})
	dataFirst, err := rf.Value("ctrl")
	if err != nil {
		t.Fatalf("Value failed: %v", err)
	}

	// Simultaneous.
	rf, bus = newTestBus(t)
	if status := writeWord(t, bus, 0x0, 0xCAFE); status != RespOkay {
		t.Fatalf("simultaneous write status %s, expected OK", status)
	}
	simultaneous, err := rf.Value("ctrl")
	if err != nil {
		t.Fatalf("Value failed: %v", err)
	}

	if addrFirst != 0xCAFE || dataFirst != 0xCAFE || simultaneous != 0xCAFE {
		t.Fatalf("arrival orders disagree: addr-first %#x, data-first %#x, simultaneous %#x",
			addrFirst, dataFirst, simultaneous)
	}
}

// TestBusInvalidAddressIsolation verifies that a decode miss returns
// ERROR, mutates nothing, and leaves later transactions unaffected.
func TestBusInvalidAddressIsolation(t *testing.T) {
	rf, bus := newTestBus(t)

	if status := writeWord(t, bus, 0x0, 0x11); status != RespOkay {
		t.Fatalf("setup write status %s, expected OK", status)
	}

	// Word index 3 is past the 3 registers.
	if status := writeWord(t, bus, 0xC, 0xFF); status != RespError {
		t.Fatalf("out-of-range write status %s, expected ERROR", status)
	}
	value, err := rf.Value("ctrl")
	if err != nil || value != 0x11 {
		t.Fatalf("ctrl = %#x, %v after invalid write, expected 0x11 untouched", value, err)
	}

	data, status := readWord(t, bus, 0xC)
	if status != RespError {
		t.Fatalf("out-of-range read status %s, expected ERROR", status)
	}
	if data != 0 {
		t.Fatalf("out-of-range read data %#x, expected 0", data)
	}

	// The miss is local to its transaction.
	data, status = readWord(t, bus, 0x0)
	if status != RespOkay || data != 0x11 {
		t.Fatalf("follow-up read = %#x (%s), expected 0x11 OK", data, status)
	}
}

// TestBusSingleRegisterMap verifies the collapsed address space: only a
// raw address of zero decodes.
func TestBusSingleRegisterMap(t *testing.T) {
	rf, err := NewRegisterFile(RegisterFileConfig{WordWidth: 32, Names: []string{"only"}})
	if err != nil {
		t.Fatalf("NewRegisterFile failed: %v", err)
	}
	bus, err := NewBusController(rf, BusConfig{DataWidth: 32, AddrWidth: 1})
	if err != nil {
		t.Fatalf("NewBusController failed: %v", err)
	}

	if status := writeWord(t, bus, 0x0, 0x5A); status != RespOkay {
		t.Fatalf("write to 0: status %s, expected OK", status)
	}
	data, status := readWord(t, bus, 0x0)
	if status != RespOkay || data != 0x5A {
		t.Fatalf("read of 0 = %#x (%s), expected 0x5A OK", data, status)
	}

	for _, addr := range []uint32{0x1, 0x4} {
		if status := writeWord(t, bus, addr, 0xFF); status != RespError {
			t.Fatalf("write to %#x: status %s, expected ERROR", addr, status)
		}
	}
	value, err := rf.Value("only")
	if err != nil || value != 0x5A {
		t.Fatalf("only = %#x, %v, expected 0x5A untouched", value, err)
	}
}

// TestBusWriteOnlyPulse verifies the one-tick pulse: the written value
// and strobe are visible to external logic on the write tick and gone
// one tick later.
func TestBusWriteOnlyPulse(t *testing.T) {
	rf, bus := newTestBus(t)

	bus.Tick(BusInputs{})
	out := bus.Tick(BusInputs{
		WriteAddrValid: true,
		WriteAddr:      0x8, // trigger
		WriteDataValid: true,
		WriteData:      0xA5,
	})
	if out.WriteResp != RespOkay {
		t.Fatalf("trigger write status %s, expected OK", out.WriteResp)
	}

	value, err := rf.Value("trigger")
	if err != nil || value != 0xA5 {
		t.Fatalf("pulse value = %#x, %v, expected 0xA5 on the write tick", value, err)
	}
	strobe, err := rf.WriteStrobe("trigger")
	if err != nil || !strobe {
		t.Fatalf("strobe = %v, %v, expected true on the write tick", strobe, err)
	}

	bus.Tick(BusInputs{WriteRespReady: true})

	value, err = rf.Value("trigger")
	if err != nil || value != 0 {
		t.Fatalf("pulse value = %#x, %v one tick later, expected auto-clear to 0", value, err)
	}
	strobe, err = rf.WriteStrobe("trigger")
	if err != nil || strobe {
		t.Fatalf("strobe = %v, %v one tick later, expected false", strobe, err)
	}
}

// TestBusWriteOnlyReadsZero verifies that a bus read of a write-only
// register returns zero with OK status, even while a pulse is live.
func TestBusWriteOnlyReadsZero(t *testing.T) {
	_, bus := newTestBus(t)

	// Both machines reach READY, then write and read trigger in the
	// same tick.
	bus.Tick(BusInputs{})
	out := bus.Tick(BusInputs{
		WriteAddrValid: true,
		WriteAddr:      0x8,
		WriteDataValid: true,
		WriteData:      0xA5,
		ReadAddrValid:  true,
		ReadAddr:       0x8,
	})
	if out.ReadResp != RespOkay {
		t.Fatalf("read status %s, expected OK", out.ReadResp)
	}
	if out.ReadData != 0 {
		t.Fatalf("read of write-only register = %#x, expected 0", out.ReadData)
	}

	bus.Tick(BusInputs{WriteRespReady: true, ReadRespReady: true})
	data, status := readWord(t, bus, 0x8)
	if status != RespOkay || data != 0 {
		t.Fatalf("later read of write-only register = %#x (%s), expected 0 OK", data, status)
	}
}

// TestBusReadOnlyWriteDiscarded verifies that a write to a read-only
// register is accepted at the protocol level but changes nothing, and
// that reads return whatever external logic last stored.
func TestBusReadOnlyWriteDiscarded(t *testing.T) {
	rf, bus := newTestBus(t)

	if err := rf.SetValue("status", 0x77); err != nil {
		t.Fatalf("SetValue failed: %v", err)
	}

	if status := writeWord(t, bus, 0x4, 0x1); status != RespOkay {
		t.Fatalf("read-only write status %s, expected OK", status)
	}
	data, status := readWord(t, bus, 0x4)
	if status != RespOkay || data != 0x77 {
		t.Fatalf("status register = %#x (%s), expected 0x77 OK", data, status)
	}
}

// TestBusReadObservesExternalUpdates verifies that an external SetValue
// is visible to the very next bus read.
func TestBusReadObservesExternalUpdates(t *testing.T) {
	rf, bus := newTestBus(t)

	if err := rf.SetValue("status", 0x1); err != nil {
		t.Fatalf("SetValue failed: %v", err)
	}
	data, _ := readWord(t, bus, 0x4)
	if data != 0x1 {
		t.Fatalf("read = %#x, expected 0x1", data)
	}

	if err := rf.SetValue("status", 0x2); err != nil {
		t.Fatalf("SetValue failed: %v", err)
	}
	data, _ = readWord(t, bus, 0x4)
	if data != 0x2 {
		t.Fatalf("read = %#x, expected 0x2 without delay", data)
	}
}

// TestBusRespondHoldsNewRequest verifies that a request arriving while
// the previous response is unacknowledged is not sampled until IDLE is
// re-entered.
func TestBusRespondHoldsNewRequest(t *testing.T) {
	rf, bus := newTestBus(t)

	bus.Tick(BusInputs{})
	bus.Tick(BusInputs{
		WriteAddrValid: true,
		WriteAddr:      0x0,
		WriteDataValid: true,
		WriteData:      0x11,
	})

	// Response pending, acknowledgement withheld, new request offered.
	out := bus.Tick(BusInputs{
		WriteAddrValid: true,
		WriteAddr:      0x0,
		WriteDataValid: true,
		WriteData:      0x22,
	})
	if !out.WriteRespValid {
		t.Fatal("pending response dropped while unacknowledged")
	}
	value, err := rf.Value("ctrl")
	if err != nil || value != 0x11 {
		t.Fatalf("ctrl = %#x, %v, expected 0x11: request sampled during RESPOND", value, err)
	}

	// After acknowledgement the same request goes through normally.
	bus.Tick(BusInputs{WriteRespReady: true})
	if status := writeWord(t, bus, 0x0, 0x22); status != RespOkay {
		t.Fatalf("retry status %s, expected OK", status)
	}
	value, err = rf.Value("ctrl")
	if err != nil || value != 0x22 {
		t.Fatalf("ctrl = %#x, %v after retry, expected 0x22", value, err)
	}
}

// TestBusReadNeverSeesSameTickWrite verifies the synchronous-update
// rule: a read decoded on the same tick as a write to the same register
// returns the pre-write value.
func TestBusReadNeverSeesSameTickWrite(t *testing.T) {
	rf, bus := newTestBus(t)

	if status := writeWord(t, bus, 0x0, 0x11); status != RespOkay {
		t.Fatalf("setup write status %s, expected OK", status)
	}

	bus.Tick(BusInputs{})
	out := bus.Tick(BusInputs{
		WriteAddrValid: true,
		WriteAddr:      0x0,
		WriteDataValid: true,
		WriteData:      0x22,
		ReadAddrValid:  true,
		ReadAddr:       0x0,
	})
	if out.ReadData != 0x11 {
		t.Fatalf("same-tick read = %#x, expected pre-write 0x11", out.ReadData)
	}

	bus.Tick(BusInputs{WriteRespReady: true, ReadRespReady: true})
	value, err := rf.Value("ctrl")
	if err != nil || value != 0x22 {
		t.Fatalf("ctrl = %#x, %v, expected 0x22 after the tick", value, err)
	}
}

// TestBusWriteStrobeTargets verifies that exactly the written register
// strobes, for every access mode.
func TestBusWriteStrobeTargets(t *testing.T) {
	rf, bus := newTestBus(t)

	for _, c := range []struct {
		addr uint32
		name string
	}{
		{0x0, "ctrl"},
		{0x4, "status"},
		{0x8, "trigger"},
	} {
		bus.Tick(BusInputs{})
		bus.Tick(BusInputs{
			WriteAddrValid: true,
			WriteAddr:      c.addr,
			WriteDataValid: true,
			WriteData:      0x1,
		})
		for _, name := range rf.Names() {
			strobe, err := rf.WriteStrobe(name)
			if err != nil {
				t.Fatalf("WriteStrobe(%s) failed: %v", name, err)
			}
			if strobe != (name == c.name) {
				t.Fatalf("after writing %s: strobe(%s) = %v", c.name, name, strobe)
			}
		}
		bus.Tick(BusInputs{WriteRespReady: true})
	}
}

// TestBusCycles verifies the tick counter, including that ticks with
// the reset input asserted count and only the hard Reset method zeroes
// it.
func TestBusCycles(t *testing.T) {
	_, bus := newTestBus(t)
	if bus.Cycles() != 0 {
		t.Fatalf("Cycles() = %d at construction, expected 0", bus.Cycles())
	}
	for i := 0; i < 5; i++ {
		bus.Tick(BusInputs{})
	}
	if bus.Cycles() != 5 {
		t.Fatalf("Cycles() = %d after 5 ticks, expected 5", bus.Cycles())
	}
	bus.Tick(BusInputs{Reset: true})
	if bus.Cycles() != 6 {
		t.Fatalf("Cycles() = %d after a reset tick, expected 6", bus.Cycles())
	}
	bus.Reset()
	if bus.Cycles() != 0 {
		t.Fatalf("Cycles() = %d after hard Reset, expected 0", bus.Cycles())
	}
}

// TestBusSubWordAddressDecode verifies that non-zero unit-select bits
// are stripped: an address inside a word's span resolves to that word.
func TestBusSubWordAddressDecode(t *testing.T) {
	rf, bus := newTestBus(t)

	if status := writeWord(t, bus, 0x2, 0x9); status != RespOkay {
		t.Fatalf("write at 0x2 status %s, expected OK", status)
	}
	value, err := rf.Value("ctrl")
	if err != nil || value != 0x9 {
		t.Fatalf("ctrl = %#x, %v, expected 0x9", value, err)
	}

	if err := rf.SetValue("status", 0x40); err != nil {
		t.Fatalf("SetValue failed: %v", err)
	}
	data, status := readWord(t, bus, 0x6)
	if status != RespOkay {
		t.Fatalf("read at 0x6 status %s, expected OK", status)
	}
	if data != 0x40 {
		t.Fatalf("read at 0x6 = %#x, expected status value 0x40", data)
	}
}
