// validate.go - Shared validation helpers for IntuitionRegs

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

package main

import (
	"errors"
	"go/token"
)

// Construction-time errors. These abort initialization entirely; no
// partially-built bitfield map, register file or register map is ever
// observable.
var (
	ErrInvalidOffset       = errors.New("invalid offset")
	ErrInvalidWidth        = errors.New("invalid width")
	ErrInvalidName         = errors.New("invalid name")
	ErrDuplicateName       = errors.New("duplicate name")
	ErrOverlap             = errors.New("overlapping bitfields")
	ErrUnknownBitfield     = errors.New("unknown bitfield")
	ErrUnknownRegister     = errors.New("unknown register")
	ErrConstantBitfield    = errors.New("bitfield is constant")
	ErrInvalidInitialValue = errors.New("initial value requires a read-write register")
	ErrMisaligned          = errors.New("misaligned register offset")
	ErrDuplicateOffset     = errors.New("duplicate register offset")
	ErrAddressSpace        = errors.New("register count exceeds address space")
)

// Pack-time and access errors. These are caller errors reported
// synchronously; they never corrupt the structure they were called on.
var (
	ErrNegativeValue      = errors.New("value is negative")
	ErrValueTooWide       = errors.New("value requires too many bits")
	ErrNotInRestrictedSet = errors.New("value is not in the restricted set")
	ErrAccessMode         = errors.New("operation not permitted by access mode")
)

// validName reports whether name is usable as a register or bitfield
// name: identifier syntax, keywords rejected.
func validName(name string) bool {
	return token.IsIdentifier(name)
}

// powerOfTwo reports whether value is a power of 2.
func powerOfTwo(value int) bool {
	return value > 0 && value&(value-1) == 0
}

// rangesOverlap reports whether the half-open bit ranges [start0, stop0)
// and [start1, stop1) intersect. Abutting ranges do not overlap.
func rangesOverlap(start0, stop0, start1, stop1 int) bool {
	lo := start0
	if start1 > lo {
		lo = start1
	}
	hi := stop0
	if stop1 < hi {
		hi = stop1
	}
	return lo < hi
}

// maskBits returns a mask with the low n bits set. n must be in 1..64.
func maskBits(n int) uint64 {
	return ^uint64(0) >> (64 - uint(n))
}
