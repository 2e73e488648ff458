// Package state aggregates every component's Snapshot/Restore pair into
// a single self-describing save-state blob. The reference implementation
// serializes to a flat binary stream with an explicit read/write cursor
// (internal/types.State); this core instead leans on the JSON each
// component already produces for its own Snapshot type and nests those
// together, matching the "self-describing text record" contract rather
// than the reference's positional binary layout.
package state

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/dmgo-project/dmgo/internal/apu"
	"github.com/dmgo-project/dmgo/internal/cartridge"
	"github.com/dmgo-project/dmgo/internal/cpu"
	"github.com/dmgo-project/dmgo/internal/interrupts"
	"github.com/dmgo-project/dmgo/internal/joypad"
	"github.com/dmgo-project/dmgo/internal/mmu"
	"github.com/dmgo-project/dmgo/internal/ppu"
	"github.com/dmgo-project/dmgo/internal/serial"
	"github.com/dmgo-project/dmgo/internal/timer"
	"github.com/google/brotli/go/cbrotli"
)

// CurrentVersion is incremented whenever a field is added or changed in
// a way that an older loader could not tolerate. Loaders reject a blob
// whose Version is newer than CurrentVersion; they accept an older one
// and let the zero-valued new fields take their defaults.
const CurrentVersion = 1

var (
	// ErrSaveStateVersion is returned when a blob's Version is newer than
	// this build understands.
	ErrSaveStateVersion = errors.New("state: unsupported save-state version")

	// ErrCartridgeMismatch is returned when a blob's cartridge digest does
	// not match the cartridge currently loaded. Recoverable: the caller
	// may choose to load anyway.
	ErrCartridgeMismatch = errors.New("state: save state does not match loaded cartridge")
)

// Blob is the complete, portable runtime state of one emulator instance.
// Every field round-trips through JSON; transient host handles (the
// audio sink, the presented frame buffer) are never part of it.
type Blob struct {
	Version int `json:"version"`

	// CartridgeDigest is the xxhash fingerprint of the ROM image the
	// state was captured against (cartridge.Header.Digest). Loading a
	// blob against a different ROM is recoverable but almost always a
	// mistake; Apply compares it after restoring every component and
	// reports a mismatch as ErrCartridgeMismatch.
	CartridgeDigest uint64 `json:"cartridge_digest"`

	CPU        cpu.Snapshot     `json:"cpu"`
	Interrupts interrupts.State `json:"interrupts"`
	Timer      timer.Snapshot   `json:"timer"`
	Joypad     joypad.Snapshot  `json:"joypad"`
	Serial     serial.Snapshot  `json:"serial"`
	PPU        ppu.Snapshot     `json:"ppu"`
	APU        apu.Snapshot     `json:"apu"`
	MMU        mmu.Snapshot     `json:"mmu"`

	// Mapper carries the cartridge's mapper-specific banking state as a
	// nested JSON string, rather than a nested object, so that a future
	// mapper's private fields never collide with the outer Blob schema.
	Mapper string `json:"mapper"`
}

// Components bundles references to every stateful component the façade
// owns, so Capture/Apply take one argument instead of nine.
type Components struct {
	CPU        *cpu.CPU
	Interrupts *interrupts.Service
	Timer      *timer.Controller
	Joypad     *joypad.State
	Serial     *serial.Controller
	PPU        *ppu.PPU
	APU        *apu.APU
	MMU        *mmu.MMU
	Cartridge  *cartridge.Cartridge
}

// Capture snapshots every component into a Blob.
func Capture(c Components) (Blob, error) {
	mapperState, err := json.Marshal(c.Cartridge.Snapshot())
	if err != nil {
		return Blob{}, fmt.Errorf("state: marshal mapper state: %w", err)
	}
	return Blob{
		Version:         CurrentVersion,
		CartridgeDigest: c.Cartridge.Header.Digest,
		CPU:             c.CPU.Snapshot(),
		Interrupts:      c.Interrupts.Snapshot(),
		Timer:           c.Timer.Snapshot(),
		Joypad:          c.Joypad.Snapshot(),
		Serial:          c.Serial.Snapshot(),
		PPU:             c.PPU.Snapshot(),
		APU:             c.APU.Snapshot(),
		MMU:             c.MMU.Snapshot(),
		Mapper:          string(mapperState),
	}, nil
}

// Apply restores every component from a Blob previously produced by
// Capture. It returns ErrCartridgeMismatch if the blob's cartridge
// digest does not match c.Cartridge, but restores anyway: the caller
// decides whether a mismatch is fatal.
func Apply(b Blob, c Components) error {
	if b.Version > CurrentVersion {
		return fmt.Errorf("state: blob version %d: %w", b.Version, ErrSaveStateVersion)
	}

	var mapperState cartridge.MapperState
	if err := json.Unmarshal([]byte(b.Mapper), &mapperState); err != nil {
		return fmt.Errorf("state: unmarshal mapper state: %w", err)
	}

	c.CPU.Restore(b.CPU)
	c.Interrupts.Restore(b.Interrupts)
	c.Timer.Restore(b.Timer)
	c.Joypad.Restore(b.Joypad)
	c.Serial.Restore(b.Serial)
	c.PPU.Restore(b.PPU)
	c.APU.Restore(b.APU)
	c.MMU.Restore(b.MMU)
	c.Cartridge.Restore(mapperState)

	if b.CartridgeDigest != c.Cartridge.Header.Digest {
		return ErrCartridgeMismatch
	}
	return nil
}

// Encode marshals a Blob to its text form. When compress is true the
// JSON is additionally brotli-compressed, suitable for writing straight
// to a .state file on disk; Decode transparently undoes either form.
func Encode(b Blob, compress bool) ([]byte, error) {
	raw, err := json.Marshal(b)
	if err != nil {
		return nil, fmt.Errorf("state: marshal blob: %w", err)
	}
	if !compress {
		return raw, nil
	}
	return cbrotli.Encode(raw, cbrotli.WriterOptions{Quality: 9})
}

// Decode parses bytes previously produced by Encode, transparently
// detecting brotli compression by its stream header.
func Decode(data []byte) (Blob, error) {
	if isBrotli(data) {
		raw, err := cbrotli.Decode(data)
		if err != nil {
			return Blob{}, fmt.Errorf("state: brotli decode: %w", err)
		}
		data = raw
	}
	var b Blob
	if err := json.Unmarshal(data, &b); err != nil {
		return Blob{}, fmt.Errorf("state: unmarshal blob: %w", err)
	}
	if b.Version > CurrentVersion {
		return Blob{}, fmt.Errorf("state: blob version %d: %w", b.Version, ErrSaveStateVersion)
	}
	return b, nil
}

// isBrotli reports whether data looks like JSON (starts with '{' after
// whitespace) as a cheap way to tell the two Encode outputs apart; any
// non-JSON-looking byte is treated as a brotli stream.
func isBrotli(data []byte) bool {
	trimmed := bytes.TrimLeft(data, " \t\r\n")
	return len(trimmed) == 0 || trimmed[0] != '{'
}
