// bitfield_map.go - Bitfield map over one data word for IntuitionRegs

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
bitfield_map.go - Bitfield Map

A BitfieldMap layers named bitfields onto a single data word. Insertion
validates each new field against every existing one: names must be
unique identifiers and bit ranges must not intersect. Abutting fields
are legal. Once a map has been handed to a RegisterFile its layout is
fixed; only the word it decodes changes at runtime.

Pack composes a fully determined word from a possibly partial value set:
unspecified variable fields contribute their defaults and constant
fields always contribute their fixed value. Unpack is total and returns
one entry per field.
*/

package main

import "fmt"

// BitfieldMap is an ordered collection of named bitfields over one data
// word.
type BitfieldMap struct {
	names  []string // insertion order
	fields map[string]Bitfield

	bitLength     int
	nAssignedBits int
}

// NewBitfieldMap creates an empty bitfield map.
func NewBitfieldMap() *BitfieldMap {
	return &BitfieldMap{fields: make(map[string]Bitfield)}
}

// Insert adds a named bitfield to the map. It fails if the name is not a
// legal identifier, duplicates an existing field, or if the field's bit
// range intersects any existing field's range.
func (m *BitfieldMap) Insert(name string, field Bitfield) error {
	if !validName(name) {
		return fmt.Errorf("BitfieldMap: bitfield name %q is not a legal identifier: %w", name, ErrInvalidName)
	}
	if _, ok := m.fields[name]; ok {
		return fmt.Errorf("BitfieldMap: bitfield %q already exists: %w", name, ErrDuplicateName)
	}
	for _, existingName := range m.names {
		existing := m.fields[existingName]
		if rangesOverlap(
			field.Offset(), field.IndexUpperBound(),
			existing.Offset(), existing.IndexUpperBound()) {
			return fmt.Errorf("BitfieldMap: overlapping bitfields %q and %q: %w",
				name, existingName, ErrOverlap)
		}
	}

	m.names = append(m.names, name)
	m.fields[name] = field
	if field.IndexUpperBound() > m.bitLength {
		m.bitLength = field.IndexUpperBound()
	}
	m.nAssignedBits += field.BitLength()
	return nil
}

// Bitfield returns the named bitfield.
func (m *BitfieldMap) Bitfield(name string) (Bitfield, error) {
	field, ok := m.fields[name]
	if !ok {
		return nil, fmt.Errorf("BitfieldMap: bitfield %q is not included in this map: %w", name, ErrUnknownBitfield)
	}
	return field, nil
}

// Pack composes a data word from values. Every variable field not named
// in values contributes its default; constant fields always contribute
// their fixed value. Naming an unknown field or a constant field is an
// error, as is any value that fails the field's own validation.
func (m *BitfieldMap) Pack(values map[string]uint64) (uint64, error) {
	for name := range values {
		field, ok := m.fields[name]
		if !ok {
			return 0, fmt.Errorf("BitfieldMap: values contains an entry for bitfield %q which is not included in this map: %w",
				name, ErrUnknownBitfield)
		}
		if field.IsConstant() {
			return 0, fmt.Errorf("BitfieldMap: values contains an entry for bitfield %q which is a constant and so cannot be set: %w",
				name, ErrConstantBitfield)
		}
	}

	var word uint64
	for _, name := range m.names {
		field := m.fields[name]
		if field.IsConstant() {
			word |= field.(constPacker).Pack()
			continue
		}
		if value, ok := values[name]; ok {
			packed, err := field.(wordPacker).packWord(value)
			if err != nil {
				return 0, fmt.Errorf("BitfieldMap: packing bitfield %q: %w", name, err)
			}
			word |= packed
		} else {
			word |= field.(wordPacker).packDefault()
		}
	}
	return word, nil
}

// Unpack extracts every field's value from word. It is total; constant
// fields are unpacked like any other.
func (m *BitfieldMap) Unpack(word uint64) map[string]uint64 {
	values := make(map[string]uint64, len(m.names))
	for _, name := range m.names {
		values[name] = m.fields[name].Unpack(word)
	}
	return values
}

// NBitfields returns the number of bitfields in the map.
func (m *BitfieldMap) NBitfields() int { return len(m.names) }

// BitfieldNames returns the field names in insertion order.
func (m *BitfieldMap) BitfieldNames() []string {
	return append([]string(nil), m.names...)
}

// ConstantBitfieldNames returns the names of the constant fields, in
// insertion order.
func (m *BitfieldMap) ConstantBitfieldNames() []string {
	var names []string
	for _, name := range m.names {
		if m.fields[name].IsConstant() {
			names = append(names, name)
		}
	}
	return names
}

// VariableBitfieldNames returns the names of the non-constant fields, in
// insertion order.
func (m *BitfieldMap) VariableBitfieldNames() []string {
	var names []string
	for _, name := range m.names {
		if !m.fields[name].IsConstant() {
			names = append(names, name)
		}
	}
	return names
}

// BitLength returns the total bit length of the map: the highest upper
// bound over all fields.
func (m *BitfieldMap) BitLength() int { return m.bitLength }

// NAssignedBits returns the number of bits assigned to fields. When it
// equals BitLength the word is fully packed with no gaps between
// fields.
func (m *BitfieldMap) NAssignedBits() int { return m.nAssignedBits }
