// register_file.go - Named register collection with access modes for IntuitionRegs

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
register_file.go - Register File

The RegisterFile owns the storage for an ordered, named collection of
register words. Each register is either a bare word or a word with a
BitfieldMap layout, and carries one of three access modes:

    RegReadWrite - stored on bus writes, returned on bus reads.
    RegReadOnly  - bus writes are accepted at the protocol level but
                   discarded; external logic owns the storage and
                   updates it through SetValue.
    RegWriteOnly - bus writes pulse the storage for exactly one tick,
                   after which it auto-clears; bus reads always return
                   zero. The controller is the only writer.

Construction validates every name, mode and initial value in a single
pass; an invalid configuration yields an error and no register file.
Register contents are then mutated continuously during operation: by the
bus controller on writes, and by external device logic on read-only
registers.

Ownership is split deliberately. The controller never writes read-only
storage, and external logic never writes write-only storage; the
write-strobe and pulse bookkeeping would otherwise be meaningless.
*/

package main

import (
	"fmt"
	"math/bits"
	"sync"
)

// AccessMode is the bus-visible behaviour policy of one register.
type AccessMode int

const (
	RegReadWrite AccessMode = iota
	RegReadOnly
	RegWriteOnly
)

func (m AccessMode) String() string {
	switch m {
	case RegReadWrite:
		return "read-write"
	case RegReadOnly:
		return "read-only"
	case RegWriteOnly:
		return "write-only"
	default:
		return fmt.Sprintf("AccessMode(%d)", int(m))
	}
}

// RegisterFileConfig describes a register file. Names is the register
// order, which is also the bus address order. Registers not named in
// Modes default to RegReadWrite. Initial values are only legal for
// read-write registers. Fields optionally attaches a bitfield layout to
// a register.
type RegisterFileConfig struct {
	WordWidth int // 32 or 64
	Names     []string
	Modes     map[string]AccessMode
	Initial   map[string]uint64
	Fields    map[string]*BitfieldMap
}

type register struct {
	name    string
	mode    AccessMode
	value   uint64
	initial uint64
	fields  *BitfieldMap

	// strobe is set when a bus write targets this register and cleared
	// on the following tick. For write-only registers the value shares
	// the strobe's one-tick lifetime.
	strobe bool
}

// RegisterFile is the runtime register storage. The zero value is not
// usable; construct with NewRegisterFile.
type RegisterFile struct {
	mu        sync.RWMutex
	wordWidth int
	regs      []*register
	index     map[string]int
}

// NewRegisterFile validates cfg and builds the register file. All
// validation happens here; the returned file is fully usable or the
// error describes why not.
func NewRegisterFile(cfg RegisterFileConfig) (*RegisterFile, error) {
	if cfg.WordWidth != 32 && cfg.WordWidth != 64 {
		return nil, fmt.Errorf("RegisterFile: word width must be 32 or 64, not %d: %w",
			cfg.WordWidth, ErrInvalidWidth)
	}
	if len(cfg.Names) == 0 {
		return nil, fmt.Errorf("RegisterFile: at least one register is required: %w", ErrInvalidName)
	}

	rf := &RegisterFile{
		wordWidth: cfg.WordWidth,
		index:     make(map[string]int, len(cfg.Names)),
	}

	for _, name := range cfg.Names {
		if !validName(name) {
			return nil, fmt.Errorf("RegisterFile: register name %q is not a legal identifier: %w",
				name, ErrInvalidName)
		}
		if _, ok := rf.index[name]; ok {
			return nil, fmt.Errorf("RegisterFile: register %q already exists: %w", name, ErrDuplicateName)
		}
		rf.index[name] = len(rf.regs)
		rf.regs = append(rf.regs, &register{name: name, mode: RegReadWrite})
	}

	for name, mode := range cfg.Modes {
		i, ok := rf.index[name]
		if !ok {
			return nil, fmt.Errorf("RegisterFile: modes names register %q which is not declared: %w",
				name, ErrUnknownRegister)
		}
		switch mode {
		case RegReadWrite, RegReadOnly, RegWriteOnly:
			rf.regs[i].mode = mode
		default:
			return nil, fmt.Errorf("RegisterFile: register %q has unknown access mode %d: %w",
				name, int(mode), ErrAccessMode)
		}
	}

	for name, value := range cfg.Initial {
		i, ok := rf.index[name]
		if !ok {
			return nil, fmt.Errorf("RegisterFile: initial values name register %q which is not declared: %w",
				name, ErrUnknownRegister)
		}
		if rf.regs[i].mode != RegReadWrite {
			return nil, fmt.Errorf("RegisterFile: only read-write registers can take initial values, %q is %s: %w",
				name, rf.regs[i].mode, ErrInvalidInitialValue)
		}
		if bits.Len64(value) > cfg.WordWidth {
			return nil, fmt.Errorf("RegisterFile: initial value for %q requires too many bits for word width %d: %w",
				name, cfg.WordWidth, ErrValueTooWide)
		}
		rf.regs[i].initial = value
		rf.regs[i].value = value
	}

	for name, fields := range cfg.Fields {
		i, ok := rf.index[name]
		if !ok {
			return nil, fmt.Errorf("RegisterFile: fields name register %q which is not declared: %w",
				name, ErrUnknownRegister)
		}
		if fields.BitLength() > cfg.WordWidth {
			return nil, fmt.Errorf("RegisterFile: bitfield map for %q is %d bits wide, word width is %d: %w",
				name, fields.BitLength(), cfg.WordWidth, ErrInvalidWidth)
		}
		if len(fields.ConstantBitfieldNames()) > 0 && rf.regs[i].mode != RegReadOnly {
			return nil, fmt.Errorf("RegisterFile: constant bitfields are only legal on read-only registers, %q is %s: %w",
				name, rf.regs[i].mode, ErrConstantBitfield)
		}
		rf.regs[i].fields = fields
	}

	// Read-only registers with constant fields expose those constants
	// from power-on; seed the storage with the constant contribution.
	for _, r := range rf.regs {
		if r.fields != nil && len(r.fields.ConstantBitfieldNames()) > 0 {
			word, err := r.fields.Pack(nil)
			if err != nil {
				return nil, fmt.Errorf("RegisterFile: seeding register %q: %w", r.name, err)
			}
			r.value = word
			r.initial = word
		}
	}

	return rf, nil
}

// WordWidth returns the configured register width in bits.
func (rf *RegisterFile) WordWidth() int { return rf.wordWidth }

// NRegisters returns the number of registers.
func (rf *RegisterFile) NRegisters() int { return len(rf.regs) }

// Names returns the register names in declaration (address) order.
func (rf *RegisterFile) Names() []string {
	names := make([]string, len(rf.regs))
	for i, r := range rf.regs {
		names[i] = r.name
	}
	return names
}

// Mode returns the access mode of the named register.
func (rf *RegisterFile) Mode(name string) (AccessMode, error) {
	r, err := rf.lookup(name)
	if err != nil {
		return 0, err
	}
	return r.mode, nil
}

// Fields returns the bitfield map of the named register, or nil if the
// register is a bare word.
func (rf *RegisterFile) Fields(name string) (*BitfieldMap, error) {
	r, err := rf.lookup(name)
	if err != nil {
		return nil, err
	}
	return r.fields, nil
}

// Value returns the current storage of the named register. For a
// write-only register this is the pulse view: the written value between
// the write tick and the next tick, zero otherwise.
func (rf *RegisterFile) Value(name string) (uint64, error) {
	rf.mu.RLock()
	defer rf.mu.RUnlock()
	r, err := rf.lookup(name)
	if err != nil {
		return 0, err
	}
	return r.value, nil
}

// SetValue updates a read-only register's storage. This is the external
// collaborator path: device logic publishing status for the bus side to
// read. Read-write storage is owned by the bus and write-only storage
// is owned exclusively by the controller, so both are rejected.
func (rf *RegisterFile) SetValue(name string, value uint64) error {
	rf.mu.Lock()
	defer rf.mu.Unlock()
	r, err := rf.lookup(name)
	if err != nil {
		return err
	}
	if r.mode != RegReadOnly {
		return fmt.Errorf("RegisterFile: SetValue targets %q which is %s, not read-only: %w",
			name, r.mode, ErrAccessMode)
	}
	if bits.Len64(value) > rf.wordWidth {
		return fmt.Errorf("RegisterFile: value for %q requires too many bits for word width %d: %w",
			name, rf.wordWidth, ErrValueTooWide)
	}
	r.value = value
	return nil
}

// WriteStrobe reports whether a bus write targeted the named register
// on the most recent tick. The strobe holds for exactly one tick, the
// same lifetime as a write-only pulse.
func (rf *RegisterFile) WriteStrobe(name string) (bool, error) {
	rf.mu.RLock()
	defer rf.mu.RUnlock()
	r, err := rf.lookup(name)
	if err != nil {
		return false, err
	}
	return r.strobe, nil
}

func (rf *RegisterFile) lookup(name string) (*register, error) {
	i, ok := rf.index[name]
	if !ok {
		return nil, fmt.Errorf("RegisterFile: register %q is not included in this file: %w",
			name, ErrUnknownRegister)
	}
	return rf.regs[i], nil
}

// busRead fetches register i for a bus read. Write-only registers never
// reflect a write in flight.
func (rf *RegisterFile) busRead(i int) uint64 {
	rf.mu.RLock()
	defer rf.mu.RUnlock()
	r := rf.regs[i]
	if r.mode == RegWriteOnly {
		return 0
	}
	return r.value
}

// busWrite applies a bus write to register i under the register's
// access-mode policy. The strobe is raised for any protocol-accepted
// write, including the discarded read-only case.
func (rf *RegisterFile) busWrite(i int, value uint64) {
	rf.mu.Lock()
	defer rf.mu.Unlock()
	r := rf.regs[i]
	switch r.mode {
	case RegReadWrite, RegWriteOnly:
		r.value = value & maskBits(rf.wordWidth)
	case RegReadOnly:
		// Accepted on the bus, discarded here.
	}
	r.strobe = true
}

// retireStrobes ends the one-tick lifetime of every pending strobe,
// clearing write-only pulse storage back to zero. Called at the start
// of each controller tick, before any new write can land.
func (rf *RegisterFile) retireStrobes() {
	rf.mu.Lock()
	defer rf.mu.Unlock()
	for _, r := range rf.regs {
		if !r.strobe {
			continue
		}
		r.strobe = false
		if r.mode == RegWriteOnly {
			r.value = 0
		}
	}
}
