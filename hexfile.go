// hexfile.go - Intel HEX bring-up image loading and replay

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
hexfile.go - Intel HEX Images

Register bring-up images are plain Intel HEX files: each data segment is
a run of little-endian register words starting at a bus address. Loading
an image turns it into an ordered list of bus write transactions;
replaying drives those transactions through a BusController tick by
tick, so the image passes through the same state machine and access-mode
policy as any other bus master.

The reverse direction dumps the current bus-visible register state back
out as an Intel HEX file, reading every register through the bus so
write-only registers dump as zero.
*/

package main

import (
	"fmt"
	"os"

	"github.com/marcinbor85/gohex"
)

// BusWrite is one write transaction of a bring-up image.
type BusWrite struct {
	Addr uint32
	Data uint64
}

// LoadHexImage parses the Intel HEX file at path into bus write
// transactions of wordWidth-bit words. Segment data is consumed little
// endian; a trailing partial word is zero padded.
func LoadHexImage(path string, wordWidth int) ([]BusWrite, error) {
	if wordWidth != 32 && wordWidth != 64 {
		return nil, fmt.Errorf("HexImage: word width must be 32 or 64, not %d: %w", wordWidth, ErrInvalidWidth)
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("HexImage: %w", err)
	}
	defer f.Close()

	mem := gohex.NewMemory()
	if err := mem.ParseIntelHex(f); err != nil {
		return nil, fmt.Errorf("HexImage: parsing %s: %w", path, err)
	}

	wordBytes := wordWidth / 8
	var writes []BusWrite
	for _, segment := range mem.GetDataSegments() {
		if segment.Address%uint32(wordBytes) != 0 {
			return nil, fmt.Errorf("HexImage: segment at %#x is not aligned to the %d byte word size: %w",
				segment.Address, wordBytes, ErrMisaligned)
		}
		for i := 0; i < len(segment.Data); i += wordBytes {
			var word uint64
			for j := 0; j < wordBytes; j++ {
				if i+j >= len(segment.Data) {
					break
				}
				word |= uint64(segment.Data[i+j]) << uint(8*j)
			}
			writes = append(writes, BusWrite{
				Addr: segment.Address + uint32(i),
				Data: word,
			})
		}
	}
	return writes, nil
}

// ReplayImage drives every write through the controller. Each
// transaction presents address and data simultaneously, then
// acknowledges the response. Decode misses abort the replay; a bad
// image address should not silently skip part of a bring-up sequence.
// Returns the number of writes applied.
func ReplayImage(bus *BusController, writes []BusWrite) (int, error) {
	for n, wr := range writes {
		out := bus.Tick(BusInputs{}) // IDLE -> READY
		if !out.WriteAddrReady || !out.WriteDataReady {
			return n, fmt.Errorf("HexImage: controller not ready for write %d at %#x", n, wr.Addr)
		}
		out = bus.Tick(BusInputs{
			WriteAddrValid: true,
			WriteAddr:      wr.Addr,
			WriteDataValid: true,
			WriteData:      wr.Data,
		})
		if !out.WriteRespValid {
			return n, fmt.Errorf("HexImage: no response for write %d at %#x", n, wr.Addr)
		}
		if out.WriteResp != RespOkay {
			return n, fmt.Errorf("HexImage: write %d at %#x rejected with status %s", n, wr.Addr, out.WriteResp)
		}
		bus.Tick(BusInputs{WriteRespReady: true}) // RESPOND -> IDLE
	}
	return len(writes), nil
}

// SaveHexImage dumps the bus-visible register state to an Intel HEX
// file. Every register is read through the controller, one transaction
// per word, so access-mode policy applies. A response still pending
// from an earlier master, such as a bench script's last transaction, is
// acknowledged before the first read.
func SaveHexImage(path string, rf *RegisterFile, bus *BusController) error {
	wordBytes := rf.WordWidth() / 8
	mem := gohex.NewMemory()

	for i := 0; i < rf.NRegisters(); i++ {
		addr := uint32(i * wordBytes)
		ack := BusInputs{WriteRespReady: true, ReadRespReady: true}
		out := bus.Tick(ack) // RESPOND -> IDLE -> READY
		for j := 0; j < 2 && !out.ReadAddrReady; j++ {
			out = bus.Tick(ack)
		}
		if !out.ReadAddrReady {
			return fmt.Errorf("HexImage: controller not ready for read at %#x", addr)
		}
		out = bus.Tick(BusInputs{ReadAddrValid: true, ReadAddr: addr})
		if !out.ReadRespValid || out.ReadResp != RespOkay {
			return fmt.Errorf("HexImage: read at %#x rejected with status %s", addr, out.ReadResp)
		}
		word := out.ReadData
		bus.Tick(BusInputs{ReadRespReady: true}) // RESPOND -> IDLE

		data := make([]byte, wordBytes)
		for j := range data {
			data[j] = byte(word >> uint(8*j))
		}
		if err := mem.AddBinary(addr, data); err != nil {
			return fmt.Errorf("HexImage: %w", err)
		}
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("HexImage: %w", err)
	}
	defer f.Close()
	if err := mem.DumpIntelHex(f, 16); err != nil {
		return fmt.Errorf("HexImage: dumping %s: %w", path, err)
	}
	return nil
}
