// bitfield.go - Bitfield definitions for IntuitionRegs

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
bitfield.go - Bitfield Definitions

This module implements the bitfield definitions that describe one named
sub-range of bits within a register word. Four variants are provided: an
unsigned integer field of arbitrary width (optionally restricted to an
explicit set of legal values), a single-bit boolean field, and constant
counterparts of both whose value is fixed at construction and cannot be
packed into.

All variants are pure value transforms. Pack shifts a validated value to
the field's offset; Unpack extracts and masks the field from a word.
Unpack is total and never fails, which keeps the read path of the bus
controller free of error handling.
*/

package main

import (
	"fmt"
	"math/bits"
)

// Bitfield is the surface shared by variable and constant bitfield
// definitions. A bitfield occupies the half-open bit range
// [Offset(), IndexUpperBound()) within its data word.
type Bitfield interface {
	Offset() int
	BitLength() int
	IndexUpperBound() int
	Unpack(word uint64) uint64
	IsConstant() bool
}

// wordPacker is implemented by the variable bitfield types so that
// BitfieldMap can pack raw word values and defaults uniformly.
type wordPacker interface {
	packWord(value uint64) (uint64, error)
	packDefault() uint64
}

// constPacker is implemented by the constant bitfield types.
type constPacker interface {
	Pack() uint64
}

// ----------------------------------------------------------------------------
// UintBitfield
// ----------------------------------------------------------------------------

// UintBitfield is an unsigned integer bitfield definition. If a
// restricted value set is configured, only members of that set pack
// successfully.
type UintBitfield struct {
	offset       int
	bitLength    int
	defaultValue uint64
	restricted   []uint64 // nil means unrestricted
}

// NewUintBitfield creates an unrestricted uint bitfield.
func NewUintBitfield(offset, bitLength int, defaultValue uint64) (*UintBitfield, error) {
	return NewRestrictedUintBitfield(offset, bitLength, defaultValue, nil)
}

// NewRestrictedUintBitfield creates a uint bitfield whose legal values
// are limited to restrictedValues. A nil set means unrestricted. The
// default value must be legal for the field.
func NewRestrictedUintBitfield(offset, bitLength int, defaultValue uint64, restrictedValues []uint64) (*UintBitfield, error) {
	if offset < 0 {
		return nil, fmt.Errorf("UintBitfield: offset cannot be negative: %w", ErrInvalidOffset)
	}
	if bitLength <= 0 {
		return nil, fmt.Errorf("UintBitfield: bit length should be greater than 0: %w", ErrInvalidWidth)
	}
	if offset+bitLength > 64 {
		return nil, fmt.Errorf("UintBitfield: field exceeds the 64 bit word limit: %w", ErrInvalidWidth)
	}
	if bits.Len64(defaultValue) > bitLength {
		return nil, fmt.Errorf("UintBitfield: default value %d requires too many bits for bit length %d: %w",
			defaultValue, bitLength, ErrValueTooWide)
	}
	for _, v := range restrictedValues {
		if bits.Len64(v) > bitLength {
			return nil, fmt.Errorf("UintBitfield: restricted value %d requires too many bits for bit length %d: %w",
				v, bitLength, ErrValueTooWide)
		}
	}
	if restrictedValues != nil && !containsValue(restrictedValues, defaultValue) {
		return nil, fmt.Errorf("UintBitfield: default value %d is not in the restricted value set: %w",
			defaultValue, ErrNotInRestrictedSet)
	}

	b := &UintBitfield{
		offset:       offset,
		bitLength:    bitLength,
		defaultValue: defaultValue,
	}
	if restrictedValues != nil {
		b.restricted = append([]uint64(nil), restrictedValues...)
	}
	return b, nil
}

func (b *UintBitfield) Offset() int          { return b.offset }
func (b *UintBitfield) BitLength() int       { return b.bitLength }
func (b *UintBitfield) IndexUpperBound() int { return b.offset + b.bitLength }
func (b *UintBitfield) IsConstant() bool     { return false }

// DefaultValue returns the value used when a pack does not name this field.
func (b *UintBitfield) DefaultValue() uint64 { return b.defaultValue }

// RestrictedValues returns a copy of the restricted value set, or nil if
// the field is unrestricted.
func (b *UintBitfield) RestrictedValues() []uint64 {
	if b.restricted == nil {
		return nil
	}
	return append([]uint64(nil), b.restricted...)
}

// Pack validates value against the field width (and the restricted set,
// when one is configured) and returns it shifted to the field offset.
func (b *UintBitfield) Pack(value uint64) (uint64, error) {
	return b.packWord(value)
}

// PackDefault returns the default value shifted to the field offset.
func (b *UintBitfield) PackDefault() uint64 {
	return b.defaultValue << uint(b.offset)
}

// Unpack extracts this field's value from word.
func (b *UintBitfield) Unpack(word uint64) uint64 {
	return (word >> uint(b.offset)) & maskBits(b.bitLength)
}

func (b *UintBitfield) packWord(value uint64) (uint64, error) {
	if bits.Len64(value) > b.bitLength {
		return 0, fmt.Errorf("UintBitfield: value %d requires too many bits, this bitfield has a bit length of %d: %w",
			value, b.bitLength, ErrValueTooWide)
	}
	if b.restricted != nil && !containsValue(b.restricted, value) {
		return 0, fmt.Errorf("UintBitfield: value %d is not in the restricted value set: %w",
			value, ErrNotInRestrictedSet)
	}
	return value << uint(b.offset), nil
}

func (b *UintBitfield) packDefault() uint64 { return b.PackDefault() }

func containsValue(set []uint64, value uint64) bool {
	for _, v := range set {
		if v == value {
			return true
		}
	}
	return false
}

// ----------------------------------------------------------------------------
// BoolBitfield
// ----------------------------------------------------------------------------

// BoolBitfield is a single-bit boolean bitfield definition.
type BoolBitfield struct {
	offset       int
	defaultValue bool
}

// NewBoolBitfield creates a boolean bitfield at the given offset.
func NewBoolBitfield(offset int, defaultValue bool) (*BoolBitfield, error) {
	if offset < 0 {
		return nil, fmt.Errorf("BoolBitfield: offset cannot be negative: %w", ErrInvalidOffset)
	}
	if offset >= 64 {
		return nil, fmt.Errorf("BoolBitfield: field exceeds the 64 bit word limit: %w", ErrInvalidWidth)
	}
	return &BoolBitfield{offset: offset, defaultValue: defaultValue}, nil
}

func (b *BoolBitfield) Offset() int          { return b.offset }
func (b *BoolBitfield) BitLength() int       { return 1 }
func (b *BoolBitfield) IndexUpperBound() int { return b.offset + 1 }
func (b *BoolBitfield) IsConstant() bool     { return false }

// DefaultValue returns the value used when a pack does not name this field.
func (b *BoolBitfield) DefaultValue() bool { return b.defaultValue }

// Pack returns value shifted to the field offset.
func (b *BoolBitfield) Pack(value bool) uint64 {
	if value {
		return 1 << uint(b.offset)
	}
	return 0
}

// Unpack extracts this field's bit from word, as 0 or 1.
func (b *BoolBitfield) Unpack(word uint64) uint64 {
	return (word >> uint(b.offset)) & 1
}

// packWord accepts the 0/1 integer equivalents of the two booleans.
func (b *BoolBitfield) packWord(value uint64) (uint64, error) {
	if value > 1 {
		return 0, fmt.Errorf("BoolBitfield: value %d requires too many bits, this bitfield has a bit length of 1: %w",
			value, ErrValueTooWide)
	}
	return value << uint(b.offset), nil
}

func (b *BoolBitfield) packDefault() uint64 { return b.Pack(b.defaultValue) }

// ----------------------------------------------------------------------------
// Constant variants
// ----------------------------------------------------------------------------

// ConstantUintBitfield is a uint bitfield whose value is fixed at
// construction. Constant bitfields are only legal on read-only
// registers; they have no settable input.
type ConstantUintBitfield struct {
	offset    int
	bitLength int
	value     uint64
}

// NewConstantUintBitfield creates a constant uint bitfield. The value
// must fit in bitLength bits.
func NewConstantUintBitfield(offset, bitLength int, value uint64) (*ConstantUintBitfield, error) {
	if offset < 0 {
		return nil, fmt.Errorf("ConstantUintBitfield: offset cannot be negative: %w", ErrInvalidOffset)
	}
	if bitLength <= 0 {
		return nil, fmt.Errorf("ConstantUintBitfield: bit length should be greater than 0: %w", ErrInvalidWidth)
	}
	if offset+bitLength > 64 {
		return nil, fmt.Errorf("ConstantUintBitfield: field exceeds the 64 bit word limit: %w", ErrInvalidWidth)
	}
	if bits.Len64(value) > bitLength {
		return nil, fmt.Errorf("ConstantUintBitfield: value %d requires too many bits for bit length %d: %w",
			value, bitLength, ErrValueTooWide)
	}
	return &ConstantUintBitfield{offset: offset, bitLength: bitLength, value: value}, nil
}

func (b *ConstantUintBitfield) Offset() int          { return b.offset }
func (b *ConstantUintBitfield) BitLength() int       { return b.bitLength }
func (b *ConstantUintBitfield) IndexUpperBound() int { return b.offset + b.bitLength }
func (b *ConstantUintBitfield) IsConstant() bool     { return true }

// Value returns the constant value of the field.
func (b *ConstantUintBitfield) Value() uint64 { return b.value }

// Pack returns the constant value shifted to the field offset.
func (b *ConstantUintBitfield) Pack() uint64 { return b.value << uint(b.offset) }

// Unpack extracts this field's value from word.
func (b *ConstantUintBitfield) Unpack(word uint64) uint64 {
	return (word >> uint(b.offset)) & maskBits(b.bitLength)
}

// ConstantBoolBitfield is a single-bit constant bitfield.
type ConstantBoolBitfield struct {
	offset int
	value  bool
}

// NewConstantBoolBitfield creates a constant boolean bitfield.
func NewConstantBoolBitfield(offset int, value bool) (*ConstantBoolBitfield, error) {
	if offset < 0 {
		return nil, fmt.Errorf("ConstantBoolBitfield: offset cannot be negative: %w", ErrInvalidOffset)
	}
	if offset >= 64 {
		return nil, fmt.Errorf("ConstantBoolBitfield: field exceeds the 64 bit word limit: %w", ErrInvalidWidth)
	}
	return &ConstantBoolBitfield{offset: offset, value: value}, nil
}

func (b *ConstantBoolBitfield) Offset() int          { return b.offset }
func (b *ConstantBoolBitfield) BitLength() int       { return 1 }
func (b *ConstantBoolBitfield) IndexUpperBound() int { return b.offset + 1 }
func (b *ConstantBoolBitfield) IsConstant() bool     { return true }

// Value returns the constant value of the field.
func (b *ConstantBoolBitfield) Value() bool { return b.value }

// Pack returns the constant value shifted to the field offset.
func (b *ConstantBoolBitfield) Pack() uint64 {
	if b.value {
		return 1 << uint(b.offset)
	}
	return 0
}

// Unpack extracts this field's bit from word, as 0 or 1.
func (b *ConstantBoolBitfield) Unpack(word uint64) uint64 {
	return (word >> uint(b.offset)) & 1
}
