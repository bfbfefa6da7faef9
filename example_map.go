// example_map.go - Canonical demo register set used by the CLI and tests

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
example_map.go - Demo Register Set

A small but representative register layout exercising every access mode
and bitfield variant. The CLI boots this set when no other map is
supplied, and the test-bench examples are written against it.

Layout (word width 32, byte addressable):

    offset  register  mode        contents
    0x00    ctrl      read-write  enable(bool@0), mode(uint@1..3,
                                  restricted {0,1,2,5}), irq_en(bool@4)
    0x04    status    read-only   bare word, written by device logic
    0x08    trigger   write-only  bare word, one-tick pulse
    0x0C    version   read-only   major(const 2 @4..11),
                                  minor(const 7 @0..3)
*/

package main

// Demo register addresses, in bytes.
const (
	DEMO_CTRL_ADDR    = 0x00
	DEMO_STATUS_ADDR  = 0x04
	DEMO_TRIGGER_ADDR = 0x08
	DEMO_VERSION_ADDR = 0x0C
)

// Demo bus geometry.
const (
	DEMO_WORD_WIDTH = 32
	DEMO_ADDR_WIDTH = 4
)

const (
	DEMO_VERSION_MAJOR = 2
	DEMO_VERSION_MINOR = 7
)

// DemoRegisterFile builds the canonical demo register set.
func DemoRegisterFile() (*RegisterFile, error) {
	ctrl := NewBitfieldMap()
	enable, err := NewBoolBitfield(0, false)
	if err != nil {
		return nil, err
	}
	if err := ctrl.Insert("enable", enable); err != nil {
		return nil, err
	}
	mode, err := NewRestrictedUintBitfield(1, 3, 0, []uint64{0, 1, 2, 5})
	if err != nil {
		return nil, err
	}
	if err := ctrl.Insert("mode", mode); err != nil {
		return nil, err
	}
	irqEn, err := NewBoolBitfield(4, false)
	if err != nil {
		return nil, err
	}
	if err := ctrl.Insert("irq_en", irqEn); err != nil {
		return nil, err
	}

	version := NewBitfieldMap()
	minor, err := NewConstantUintBitfield(0, 4, DEMO_VERSION_MINOR)
	if err != nil {
		return nil, err
	}
	if err := version.Insert("minor", minor); err != nil {
		return nil, err
	}
	major, err := NewConstantUintBitfield(4, 8, DEMO_VERSION_MAJOR)
	if err != nil {
		return nil, err
	}
	if err := version.Insert("major", major); err != nil {
		return nil, err
	}

	return NewRegisterFile(RegisterFileConfig{
		WordWidth: DEMO_WORD_WIDTH,
		Names:     []string{"ctrl", "status", "trigger", "version"},
		Modes: map[string]AccessMode{
			"status":  RegReadOnly,
			"trigger": RegWriteOnly,
			"version": RegReadOnly,
		},
		Initial: map[string]uint64{"ctrl": 0},
		Fields: map[string]*BitfieldMap{
			"ctrl":    ctrl,
			"version": version,
		},
	})
}

// DemoRegisterMap builds the address-space view of the demo set.
func DemoRegisterMap() (*RegisterMap, error) {
	rf, err := DemoRegisterFile()
	if err != nil {
		return nil, err
	}

	rm, err := NewRegisterMap(DEMO_WORD_WIDTH, 8)
	if err != nil {
		return nil, err
	}
	offsets := map[string]int{
		"ctrl":    DEMO_CTRL_ADDR,
		"status":  DEMO_STATUS_ADDR,
		"trigger": DEMO_TRIGGER_ADDR,
		"version": DEMO_VERSION_ADDR,
	}
	for _, name := range rf.Names() {
		fields, err := rf.Fields(name)
		if err != nil {
			return nil, err
		}
		def, err := NewRegisterDefinition(offsets[name], fields)
		if err != nil {
			return nil, err
		}
		if err := rm.Insert(name, def); err != nil {
			return nil, err
		}
	}
	return rm, nil
}

// DemoBus builds the demo register file wired to a bus controller with
// the demo geometry.
func DemoBus() (*RegisterFile, *BusController, error) {
	rf, err := DemoRegisterFile()
	if err != nil {
		return nil, nil, err
	}
	bus, err := NewBusController(rf, BusConfig{
		DataWidth: DEMO_WORD_WIDTH,
		AddrWidth: DEMO_ADDR_WIDTH,
	})
	if err != nil {
		return nil, nil, err
	}
	return rf, bus, nil
}
