// register_map.go - Address-space register map for IntuitionRegs

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
register_map.go - Register Map

A RegisterMap lays named registers out over a byte-addressable (or more
generally unit-addressable) address space. The map is configured with a
register bit width and an addressable-unit width, from which the number
of units per register follows; every register offset must be a multiple
of that span and no two registers may share an offset.

The map is pure bookkeeping: it validates a layout and answers layout
queries. It holds no storage and no protocol state; those live in
RegisterFile and BusController.
*/

package main

import "fmt"

// RegisterDefinition is one register's slot in a register map: an
// address offset plus an optional bitfield layout.
type RegisterDefinition struct {
	offset int
	fields *BitfieldMap
}

// NewRegisterDefinition creates a register definition at the given
// offset, in addressable units. fields may be nil for a bare word.
func NewRegisterDefinition(offset int, fields *BitfieldMap) (*RegisterDefinition, error) {
	if offset < 0 {
		return nil, fmt.Errorf("RegisterDefinition: offset cannot be negative: %w", ErrInvalidOffset)
	}
	return &RegisterDefinition{offset: offset, fields: fields}, nil
}

// Offset returns the register's offset in addressable units.
func (d *RegisterDefinition) Offset() int { return d.offset }

// Fields returns the register's bitfield map, or nil for a bare word.
func (d *RegisterDefinition) Fields() *BitfieldMap { return d.fields }

// RegisterMap lays registers out over an address space.
type RegisterMap struct {
	registerBitWidth int
	unitWidth        int

	names []string // insertion order
	regs  map[string]*RegisterDefinition
}

// NewRegisterMap creates an empty register map. registerBitWidth must be
// a power of two; unitWidth must be a power of two of at least 8 bits.
func NewRegisterMap(registerBitWidth, unitWidth int) (*RegisterMap, error) {
	if !powerOfTwo(registerBitWidth) {
		return nil, fmt.Errorf("RegisterMap: register bit width must be a power of 2, not %d: %w",
			registerBitWidth, ErrInvalidWidth)
	}
	if unitWidth < 8 || !powerOfTwo(unitWidth) {
		return nil, fmt.Errorf("RegisterMap: addressable unit width must be a power of 2 of at least 8, not %d: %w",
			unitWidth, ErrInvalidWidth)
	}
	return &RegisterMap{
		registerBitWidth: registerBitWidth,
		unitWidth:        unitWidth,
		regs:             make(map[string]*RegisterDefinition),
	}, nil
}

// Insert adds a named register definition to the map. The offset must be
// aligned to the register span, unique within the map, and any bitfield
// layout must fit the register width.
func (m *RegisterMap) Insert(name string, def *RegisterDefinition) error {
	if !validName(name) {
		return fmt.Errorf("RegisterMap: register name %q is not a legal identifier: %w", name, ErrInvalidName)
	}
	if _, ok := m.regs[name]; ok {
		return fmt.Errorf("RegisterMap: register %q already exists: %w", name, ErrDuplicateName)
	}
	if def.offset%m.UnitsPerRegister() != 0 {
		return fmt.Errorf("RegisterMap: register %q at offset %d is not aligned to the %d unit register span: %w",
			name, def.offset, m.UnitsPerRegister(), ErrMisaligned)
	}
	if def.fields != nil && def.fields.BitLength() > m.registerBitWidth {
		return fmt.Errorf("RegisterMap: bitfield map for %q is %d bits wide, register width is %d: %w",
			name, def.fields.BitLength(), m.registerBitWidth, ErrInvalidWidth)
	}
	for _, existingName := range m.names {
		if m.regs[existingName].offset == def.offset {
			return fmt.Errorf("RegisterMap: registers %q and %q share offset %d: %w",
				name, existingName, def.offset, ErrDuplicateOffset)
		}
	}

	m.names = append(m.names, name)
	m.regs[name] = def
	return nil
}

// Register returns the named register definition.
func (m *RegisterMap) Register(name string) (*RegisterDefinition, error) {
	def, ok := m.regs[name]
	if !ok {
		return nil, fmt.Errorf("RegisterMap: register %q is not included in this map: %w", name, ErrUnknownRegister)
	}
	return def, nil
}

// NRegisters returns the number of registers in the map.
func (m *RegisterMap) NRegisters() int { return len(m.names) }

// RegisterNames returns the register names in insertion order.
func (m *RegisterMap) RegisterNames() []string {
	return append([]string(nil), m.names...)
}

// RegisterBitWidth returns the register width in bits.
func (m *RegisterMap) RegisterBitWidth() int { return m.registerBitWidth }

// UnitWidth returns the addressable unit width in bits.
func (m *RegisterMap) UnitWidth() int { return m.unitWidth }

// UnitsPerRegister returns the number of addressable units one register
// spans. Offsets must be multiples of this.
func (m *RegisterMap) UnitsPerRegister() int {
	return (m.registerBitWidth + m.unitWidth - 1) / m.unitWidth
}
