package main

import (
	"errors"
	"testing"
)

// TestDemoRegisterFileShape verifies the demo set's registers, modes
// and bitfield layouts.
func TestDemoRegisterFileShape(t *testing.T) {
	rf, err := DemoRegisterFile()
	if err != nil {
		t.Fatalf("DemoRegisterFile failed: %v", err)
	}

	if rf.WordWidth() != DEMO_WORD_WIDTH {
		t.Fatalf("WordWidth() = %d, expected %d", rf.WordWidth(), DEMO_WORD_WIDTH)
	}
	for name, expected := range map[string]AccessMode{
		"ctrl":    RegReadWrite,
		"status":  RegReadOnly,
		"trigger": RegWriteOnly,
		"version": RegReadOnly,
	} {
		mode, err := rf.Mode(name)
		if err != nil {
			t.Fatalf("Mode(%s) failed: %v", name, err)
		}
		if mode != expected {
			t.Fatalf("Mode(%s) = %s, expected %s", name, mode, expected)
		}
	}

	ctrl, err := rf.Fields("ctrl")
	if err != nil {
		t.Fatalf("Fields(ctrl) failed: %v", err)
	}
	names := ctrl.BitfieldNames()
	if len(names) != 3 || names[0] != "enable" || names[1] != "mode" || names[2] != "irq_en" {
		t.Fatalf("ctrl fields = %v, expected [enable mode irq_en]", names)
	}

	// mode is restricted to {0, 1, 2, 5}.
	field, err := ctrl.Bitfield("mode")
	if err != nil {
		t.Fatalf("Bitfield(mode) failed: %v", err)
	}
	if _, err := field.(*UintBitfield).Pack(3); !errors.Is(err, ErrNotInRestrictedSet) {
		t.Fatalf("mode Pack(3): got %v, expected ErrNotInRestrictedSet", err)
	}
}

// TestDemoVersionConstants verifies the constant version fields seen
// through the bus.
func TestDemoVersionConstants(t *testing.T) {
	rf, bus, err := DemoBus()
	if err != nil {
		t.Fatalf("DemoBus failed: %v", err)
	}

	data, status := readWord(t, bus, DEMO_VERSION_ADDR)
	if status != RespOkay {
		t.Fatalf("version read status %s, expected OK", status)
	}
	expected := uint64(DEMO_VERSION_MAJOR<<4 | DEMO_VERSION_MINOR)
	if data != expected {
		t.Fatalf("version = %#x, expected %#x", data, expected)
	}

	fields, err := rf.Fields("version")
	if err != nil {
		t.Fatalf("Fields(version) failed: %v", err)
	}
	decoded := fields.Unpack(data)
	if decoded["major"] != DEMO_VERSION_MAJOR || decoded["minor"] != DEMO_VERSION_MINOR {
		t.Fatalf("decoded version = %v, expected major %d minor %d",
			decoded, DEMO_VERSION_MAJOR, DEMO_VERSION_MINOR)
	}
}

// TestDemoScenario walks the documented demo sequence: a trigger write
// pulses for one tick, and a status write is discarded in favour of
// what external logic last stored.
func TestDemoScenario(t *testing.T) {
	rf, bus, err := DemoBus()
	if err != nil {
		t.Fatalf("DemoBus failed: %v", err)
	}

	// Write 0xA5 to trigger; the pulse is visible on the write tick.
	bus.Tick(BusInputs{})
	out := bus.Tick(BusInputs{
		WriteAddrValid: true,
		WriteAddr:      DEMO_TRIGGER_ADDR,
		WriteDataValid: true,
		WriteData:      0xA5,
	})
	if out.WriteResp != RespOkay {
		t.Fatalf("trigger write status %s, expected OK", out.WriteResp)
	}
	value, err := rf.Value("trigger")
	if err != nil || value != 0xA5 {
		t.Fatalf("trigger = %#x, %v on the write tick, expected 0xA5", value, err)
	}
	bus.Tick(BusInputs{WriteRespReady: true})
	value, err = rf.Value("trigger")
	if err != nil || value != 0 {
		t.Fatalf("trigger = %#x, %v one tick later, expected 0", value, err)
	}

	// External logic owns status; a bus write is OK but discarded.
	if err := rf.SetValue("status", 0x40); err != nil {
		t.Fatalf("SetValue failed: %v", err)
	}
	if status := writeWord(t, bus, DEMO_STATUS_ADDR, 0x1); status != RespOkay {
		t.Fatalf("status write status %s, expected OK", status)
	}
	data, status := readWord(t, bus, DEMO_STATUS_ADDR)
	if status != RespOkay || data != 0x40 {
		t.Fatalf("status = %#x (%s), expected external 0x40 OK", data, status)
	}
}

// TestDemoRegisterMapLayout verifies the address-space view of the demo
// set.
func TestDemoRegisterMapLayout(t *testing.T) {
	rm, err := DemoRegisterMap()
	if err != nil {
		t.Fatalf("DemoRegisterMap failed: %v", err)
	}

	if rm.NRegisters() != 4 {
		t.Fatalf("NRegisters() = %d, expected 4", rm.NRegisters())
	}
	if rm.UnitsPerRegister() != 4 {
		t.Fatalf("UnitsPerRegister() = %d, expected 4", rm.UnitsPerRegister())
	}
	for name, offset := range map[string]int{
		"ctrl":    DEMO_CTRL_ADDR,
		"status":  DEMO_STATUS_ADDR,
		"trigger": DEMO_TRIGGER_ADDR,
		"version": DEMO_VERSION_ADDR,
	} {
		def, err := rm.Register(name)
		if err != nil {
			t.Fatalf("Register(%s) failed: %v", name, err)
		}
		if def.Offset() != offset {
			t.Fatalf("Register(%s).Offset() = %d, expected %d", name, def.Offset(), offset)
		}
	}
}

// TestDemoCtrlBitfields packs a control word through the bitfield map
// and reads it back through the bus.
func TestDemoCtrlBitfields(t *testing.T) {
	rf, bus, err := DemoBus()
	if err != nil {
		t.Fatalf("DemoBus failed: %v", err)
	}

	fields, err := rf.Fields("ctrl")
	if err != nil {
		t.Fatalf("Fields(ctrl) failed: %v", err)
	}
	word, err := fields.Pack(map[string]uint64{"enable": 1, "mode": 5, "irq_en": 1})
	if err != nil {
		t.Fatalf("Pack failed: %v", err)
	}

	if status := writeWord(t, bus, DEMO_CTRL_ADDR, word); status != RespOkay {
		t.Fatalf("ctrl write status %s, expected OK", status)
	}
	data, status := readWord(t, bus, DEMO_CTRL_ADDR)
	if status != RespOkay {
		t.Fatalf("ctrl read status %s, expected OK", status)
	}
	decoded := fields.Unpack(data)
	if decoded["enable"] != 1 || decoded["mode"] != 5 || decoded["irq_en"] != 1 {
		t.Fatalf("decoded ctrl = %v, expected enable 1 mode 5 irq_en 1", decoded)
	}
}
