package cartridge

import (
	"fmt"

	"github.com/cespare/xxhash"
)

// Mode reports a cartridge's Game Boy Color compatibility, parsed from
// the header byte at 0x0143.
type Mode uint8

const (
	ModeDMGOnly Mode = iota
	ModeCGBSupported
	ModeCGBOnly
)

// Type identifies the mapper variant a cartridge declares in its header
// byte at 0x0147.
type Type uint8

const (
	TypeROM               Type = 0x00
	TypeMBC1              Type = 0x01
	TypeMBC1RAM           Type = 0x02
	TypeMBC1RAMBattery    Type = 0x03
	TypeMBC2              Type = 0x05
	TypeMBC2Battery       Type = 0x06
	TypeROMRAM            Type = 0x08
	TypeROMRAMBattery     Type = 0x09
	TypeMBC3TimerBattery  Type = 0x0F
	TypeMBC3TimerRAMBatt  Type = 0x10
	TypeMBC3              Type = 0x11
	TypeMBC3RAM           Type = 0x12
	TypeMBC3RAMBattery    Type = 0x13
	TypeMBC5              Type = 0x19
	TypeMBC5RAM           Type = 0x1A
	TypeMBC5RAMBattery    Type = 0x1B
	TypeMBC5Rumble        Type = 0x1C
	TypeMBC5RumbleRAM     Type = 0x1D
	TypeMBC5RumbleRAMBatt Type = 0x1E
)

// ramSizeTable maps the header's RAM-size code (0x0149) to a byte count,
// per §6: codes 0,0,1,4,16,8 banks of 8 KiB (code 1 is unused on real
// cartridges but reserved by the hardware).
var ramSizeTable = [6]uint{0, 0, 8 * 1024, 32 * 1024, 128 * 1024, 64 * 1024}

// Header describes the parsed contents of a cartridge's 0x0100-0x014F
// header block.
type Header struct {
	Title           string
	ManufacturerCode string
	Mode            Mode
	SGBFlag         bool
	CartridgeType   Type
	ROMSize         uint
	ROMBanks        uint
	RAMSize         uint
	OldLicenseeCode uint8
	HeaderChecksum  uint8
	GlobalChecksum  uint16

	// Digest is an xxhash fingerprint of the raw ROM image, used for log
	// lines and as the save-state blob's cartridge-identity field so a
	// load can refuse to apply a state captured against a different ROM.
	Digest uint64
}

// ParseHeader parses the header embedded in a full ROM image. rom must
// be at least 0x150 bytes long.
func ParseHeader(rom []byte) (Header, error) {
	if len(rom) < 0x150 {
		return Header{}, fmt.Errorf("%w: rom is only %d bytes", ErrBadHeader, len(rom))
	}

	h := Header{}
	switch rom[0x143] {
	case 0x80:
		h.Mode = ModeCGBSupported
	case 0xC0:
		h.Mode = ModeCGBOnly
	default:
		h.Mode = ModeDMGOnly
	}

	if h.Mode == ModeDMGOnly {
		h.Title = trimTitle(rom[0x134:0x144])
	} else {
		h.Title = trimTitle(rom[0x134:0x143])
	}
	h.ManufacturerCode = string(rom[0x13F:0x143])
	h.SGBFlag = rom[0x146] == 0x03
	h.CartridgeType = Type(rom[0x147])

	romCode := rom[0x148]
	h.ROMSize = (32 * 1024) << romCode
	h.ROMBanks = h.ROMSize / (16 * 1024)

	ramCode := int(rom[0x149])
	if ramCode >= len(ramSizeTable) {
		return Header{}, fmt.Errorf("%w: unknown RAM size code 0x%02X", ErrBadHeader, ramCode)
	}
	h.RAMSize = ramSizeTable[ramCode]

	h.OldLicenseeCode = rom[0x14B]
	h.HeaderChecksum = rom[0x14D]
	h.GlobalChecksum = uint16(rom[0x14E])<<8 | uint16(rom[0x14F])
	h.Digest = xxhash.Sum64(rom)

	return h, nil
}

func trimTitle(b []byte) string {
	n := len(b)
	for n > 0 && b[n-1] == 0 {
		n--
	}
	return string(b[:n])
}

// CGBCapable reports whether the cartridge declares any CGB support.
func (h Header) CGBCapable() bool {
	return h.Mode == ModeCGBSupported || h.Mode == ModeCGBOnly
}

// HasBattery reports whether the mapper type persists RAM across power
// cycles.
func (h Header) HasBattery() bool {
	switch h.CartridgeType {
	case TypeMBC1RAMBattery, TypeMBC2Battery, TypeROMRAMBattery,
		TypeMBC3TimerBattery, TypeMBC3TimerRAMBatt, TypeMBC3RAMBattery,
		TypeMBC5RAMBattery, TypeMBC5RumbleRAMBatt:
		return true
	}
	return false
}

// HasRTC reports whether the mapper exposes the MBC3 real-time clock.
func (h Header) HasRTC() bool {
	return h.CartridgeType == TypeMBC3TimerBattery || h.CartridgeType == TypeMBC3TimerRAMBatt
}

func (h Header) String() string {
	return fmt.Sprintf("%s (type=0x%02X rom=%dKiB ram=%dKiB digest=%x)",
		h.Title, h.CartridgeType, h.ROMSize/1024, h.RAMSize/1024, h.Digest)
}

// romBankMask returns the address-line aliasing mask for a cartridge's
// bank count: (1 << ceil(log2(banks))) - 1.
func romBankMask(banks uint) uint16 {
	if banks <= 1 {
		return 0
	}
	bits := uint(0)
	for (uint(1) << bits) < banks {
		bits++
	}
	return uint16(1<<bits) - 1
}
