// Package cartridge implements the Game Boy cartridge address space:
// header parsing, the five memory-bank-controller variants, battery-RAM
// persistence, and the MBC3 real-time clock.
package cartridge

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/sirupsen/logrus"
)

// Sentinel errors surfaced through the cartridge and bank-controller
// constructors, per the error taxonomy in §7: a bad header or unknown
// mapper is fatal at load time.
var (
	ErrBadHeader     = errors.New("cartridge: bad header")
	ErrUnknownMapper = errors.New("cartridge: unknown mapper type")
)

// MapperController is the interface every bank-controller variant
// implements. It replaces the trait-object dispatch of the reference
// implementation with a Go interface backed by exactly one concrete
// struct per mapper variant (§9 design note).
type MapperController interface {
	Read(addr uint16) uint8
	Write(addr uint16, value uint8)

	// RAM returns the external RAM contents for persistence, or nil if
	// the mapper has none.
	RAM() []byte
	LoadRAM(data []byte)

	// TickClock brings the mapper's real-time clock up to date with the
	// wall-clock time elapsed since its base, a no-op for every mapper
	// but MBC3.
	TickClock()

	// Snapshot/Restore carry the mapper's banking state (but not the ROM
	// image itself, which is re-supplied on load) through a save state.
	Snapshot() MapperState
	Restore(MapperState)
}

// MapperState is the serializable union of every mapper's private
// banking registers. Exactly one branch is populated, matching the
// cartridge's CartridgeType at capture time.
type MapperState struct {
	RAM []byte `json:"ram,omitempty"`

	MBC1 *mbc1State `json:"mbc1,omitempty"`
	MBC2 *mbc2State `json:"mbc2,omitempty"`
	MBC3 *mbc3State `json:"mbc3,omitempty"`
	MBC5 *mbc5State `json:"mbc5,omitempty"`
}

// Cartridge owns the parsed header, the concrete mapper, and the
// side-car file paths used for battery RAM and RTC persistence.
type Cartridge struct {
	MapperController
	Header Header

	romPath string
	log     logrus.FieldLogger
}

// New constructs a Cartridge from a raw ROM image. romPath is used only
// to derive the `.sav`/`.rtc` side-car paths; pass "" to disable
// persistence (e.g. in tests).
func New(rom []byte, romPath string, log logrus.FieldLogger) (*Cartridge, error) {
	if log == nil {
		log = logrus.StandardLogger()
	}
	header, err := ParseHeader(rom)
	if err != nil {
		return nil, err
	}

	c := &Cartridge{Header: header, romPath: romPath, log: log.WithField("component", "cartridge")}

	mapper, err := newMapper(header, rom)
	if err != nil {
		return nil, err
	}
	c.MapperController = mapper

	if savedRAM, err := os.ReadFile(c.savPath()); err == nil {
		mapper.LoadRAM(savedRAM)
	} else if !os.IsNotExist(err) {
		c.log.Warnf("could not read battery save: %v", err)
	}

	if rtc, ok := mapper.(*MBC3); ok && header.HasRTC() {
		if raw, err := os.ReadFile(c.rtcPath()); err == nil {
			rtc.LoadClockBase(raw)
		} else if !os.IsNotExist(err) {
			c.log.Warnf("could not read RTC file: %v", err)
		}
	}

	c.log.Infof("loaded cartridge %s", header.String())
	return c, nil
}

func newMapper(h Header, rom []byte) (MapperController, error) {
	switch h.CartridgeType {
	case TypeROM, TypeROMRAM, TypeROMRAMBattery:
		return newROMOnly(rom), nil
	case TypeMBC1, TypeMBC1RAM, TypeMBC1RAMBattery:
		return newMBC1(h, rom), nil
	case TypeMBC2, TypeMBC2Battery:
		return newMBC2(h, rom), nil
	case TypeMBC3, TypeMBC3RAM, TypeMBC3RAMBattery, TypeMBC3TimerBattery, TypeMBC3TimerRAMBatt:
		return newMBC3(h, rom), nil
	case TypeMBC5, TypeMBC5RAM, TypeMBC5RAMBattery, TypeMBC5Rumble, TypeMBC5RumbleRAM, TypeMBC5RumbleRAMBatt:
		return newMBC5(h, rom), nil
	default:
		return nil, fmt.Errorf("%w: 0x%02X", ErrUnknownMapper, h.CartridgeType)
	}
}

func (c *Cartridge) savPath() string {
	return replaceExt(c.romPath, ".sav")
}

func (c *Cartridge) rtcPath() string {
	return replaceExt(c.romPath, ".rtc")
}

func replaceExt(path, ext string) string {
	if path == "" {
		return ""
	}
	return strings.TrimSuffix(path, filepath.Ext(path)) + ext
}

// Save persists external RAM (and, for MBC3 with RTC, the clock base) to
// their side-car files. I/O failures are logged, not fatal (§7).
func (c *Cartridge) Save() {
	if c.romPath == "" {
		return
	}
	if ram := c.RAM(); ram != nil {
		if err := os.WriteFile(c.savPath(), ram, 0o644); err != nil {
			c.log.Warnf("could not write battery save: %v", err)
		}
	}
	if rtc, ok := c.MapperController.(*MBC3); ok && c.Header.HasRTC() {
		if err := os.WriteFile(c.rtcPath(), rtc.SaveClockBase(), 0o644); err != nil {
			c.log.Warnf("could not write RTC file: %v", err)
		}
	}
}

// Snapshot captures the cartridge's mapper state for a save-state blob.
func (c *Cartridge) Snapshot() MapperState {
	return c.MapperController.Snapshot()
}

// Restore reloads previously captured mapper state.
func (c *Cartridge) Restore(s MapperState) {
	c.MapperController.Restore(s)
}
