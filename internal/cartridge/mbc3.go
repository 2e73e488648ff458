package cartridge

import (
	"encoding/binary"
	"time"
)

// MBC3 implements cartridge types 0x0F-0x13: up to 2 MiB ROM, 32 KiB RAM,
// and for the 0x0F/0x10 variants a battery-backed real-time clock latched
// into RAM-bank-select space 0x08-0x0C.
type MBC3 struct {
	rom []byte
	ram []byte

	romBankMask uint16
	ramEnabled  bool
	romBank     uint8
	ramBank     uint8 // 0x00-0x03 selects RAM, 0x08-0x0C selects an RTC register

	rtc        rtcRegisters
	latched    rtcRegisters
	latchState uint8 // tracks the 0x00-then-0x01 write sequence
	base       time.Time
}

type rtcRegisters struct {
	Seconds, Minutes, Hours uint8
	DayLow                  uint8
	DayHigh                 uint8 // bit0 = day bit 8, bit6 = halt, bit7 = day carry
}

type mbc3State struct {
	RAMEnabled bool         `json:"ram_enabled"`
	ROMBank    uint8        `json:"rom_bank"`
	RAMBank    uint8        `json:"ram_bank"`
	Latched    rtcRegisters `json:"latched"`
	LatchState uint8        `json:"latch_state"`
	BaseUnix   int64        `json:"base_unix"`
}

func newMBC3(h Header, rom []byte) *MBC3 {
	return &MBC3{
		rom: rom, ram: make([]byte, h.RAMSize),
		romBankMask: romBankMask(h.ROMBanks), romBank: 1,
		base: timeNow(),
	}
}

// timeNow is a seam so tests can avoid depending on wall-clock time; the
// clock itself only needs a monotonically increasing base to derive
// elapsed seconds from.
var timeNow = time.Now

func (m *MBC3) Read(addr uint16) uint8 {
	switch {
	case addr < 0x4000:
		if int(addr) < len(m.rom) {
			return m.rom[addr]
		}
		return 0xFF
	case addr < 0x8000:
		off := int(m.romBank&uint8(m.romBankMask))*0x4000 + int(addr-0x4000)
		if off < len(m.rom) {
			return m.rom[off]
		}
		return 0xFF
	case addr >= 0xA000 && addr < 0xC000:
		if !m.ramEnabled {
			return 0xFF
		}
		if m.ramBank <= 0x03 {
			off := int(m.ramBank)*0x2000 + int(addr-0xA000)
			if off < len(m.ram) {
				return m.ram[off]
			}
			return 0xFF
		}
		return m.readRTC()
	}
	return 0xFF
}

func (m *MBC3) readRTC() uint8 {
	switch m.ramBank {
	case 0x08:
		return m.latched.Seconds
	case 0x09:
		return m.latched.Minutes
	case 0x0A:
		return m.latched.Hours
	case 0x0B:
		return m.latched.DayLow
	case 0x0C:
		return m.latched.DayHigh
	}
	return 0xFF
}

func (m *MBC3) Write(addr uint16, value uint8) {
	switch {
	case addr < 0x2000:
		m.ramEnabled = value&0x0F == 0x0A
	case addr < 0x4000:
		bank := value & 0x7F
		if bank == 0 {
			bank = 1
		}
		m.romBank = bank
	case addr < 0x6000:
		m.ramBank = value
	case addr < 0x8000:
		if m.latchState == 0x00 && value == 0x01 {
			m.advanceClock()
			m.latched = m.rtc
		}
		m.latchState = value
	case addr >= 0xA000 && addr < 0xC000:
		if !m.ramEnabled {
			return
		}
		if m.ramBank <= 0x03 {
			off := int(m.ramBank)*0x2000 + int(addr-0xA000)
			if off < len(m.ram) {
				m.ram[off] = value
			}
			return
		}
		m.writeRTC(value)
	}
}

func (m *MBC3) writeRTC(value uint8) {
	m.advanceClock()
	switch m.ramBank {
	case 0x08:
		m.rtc.Seconds = value
	case 0x09:
		m.rtc.Minutes = value
	case 0x0A:
		m.rtc.Hours = value
	case 0x0B:
		m.rtc.DayLow = value
	case 0x0C:
		m.rtc.DayHigh = value & 0xC1
	}
}

// advanceClock folds elapsed wall-clock time into the RTC registers. It
// is a no-op while the clock is halted (DayHigh bit 6).
func (m *MBC3) advanceClock() {
	if m.rtc.DayHigh&0x40 != 0 {
		return
	}
	now := timeNow()
	elapsed := int64(now.Sub(m.base).Seconds())
	if elapsed <= 0 {
		return
	}
	m.base = now

	total := int64(m.rtc.Seconds) + int64(m.rtc.Minutes)*60 + int64(m.rtc.Hours)*3600 +
		(int64(m.rtc.DayLow)|int64(m.rtc.DayHigh&0x01)<<8)*86400 + elapsed

	day := total / 86400
	rem := total % 86400
	m.rtc.Seconds = uint8(rem % 60)
	m.rtc.Minutes = uint8((rem / 60) % 60)
	m.rtc.Hours = uint8(rem / 3600)
	if day > 511 {
		m.rtc.DayHigh |= 0x80 // day counter carry
		day %= 512
	}
	m.rtc.DayLow = uint8(day & 0xFF)
	m.rtc.DayHigh = m.rtc.DayHigh&0xFE | uint8((day>>8)&0x01)
}

// TickClock is called once per emulated second by the host to keep the
// RTC advancing even while nothing reads or writes it.
func (m *MBC3) TickClock() {
	m.advanceClock()
}

func (m *MBC3) RAM() []byte      { return m.ram }
func (m *MBC3) LoadRAM(d []byte) { copy(m.ram, d) }

// SaveClockBase serializes the RTC registers and base timestamp, in the
// same 4-byte-little-endian-per-field layout used by common desktop
// emulators' `.rtc` side-car files.
func (m *MBC3) SaveClockBase() []byte {
	m.advanceClock()
	buf := make([]byte, 8*4+8)
	binary.LittleEndian.PutUint32(buf[0:], uint32(m.rtc.Seconds))
	binary.LittleEndian.PutUint32(buf[4:], uint32(m.rtc.Minutes))
	binary.LittleEndian.PutUint32(buf[8:], uint32(m.rtc.Hours))
	binary.LittleEndian.PutUint32(buf[12:], uint32(m.rtc.DayLow))
	binary.LittleEndian.PutUint32(buf[16:], uint32(m.rtc.DayHigh))
	binary.LittleEndian.PutUint64(buf[32:], uint64(m.base.Unix()))
	return buf
}

// LoadClockBase restores a previously saved RTC blob, ignoring malformed
// or short data so a missing/corrupt `.rtc` file just starts the clock
// from zero rather than failing cartridge load.
func (m *MBC3) LoadClockBase(data []byte) {
	if len(data) < 40 {
		return
	}
	m.rtc.Seconds = uint8(binary.LittleEndian.Uint32(data[0:]))
	m.rtc.Minutes = uint8(binary.LittleEndian.Uint32(data[4:]))
	m.rtc.Hours = uint8(binary.LittleEndian.Uint32(data[8:]))
	m.rtc.DayLow = uint8(binary.LittleEndian.Uint32(data[12:]))
	m.rtc.DayHigh = uint8(binary.LittleEndian.Uint32(data[16:]))
	m.base = time.Unix(int64(binary.LittleEndian.Uint64(data[32:])), 0)
	m.latched = m.rtc
}

func (m *MBC3) Snapshot() MapperState {
	return MapperState{
		RAM: append([]byte(nil), m.ram...),
		MBC3: &mbc3State{
			RAMEnabled: m.ramEnabled, ROMBank: m.romBank, RAMBank: m.ramBank,
			Latched: m.latched, LatchState: m.latchState, BaseUnix: m.base.Unix(),
		},
	}
}

func (m *MBC3) Restore(s MapperState) {
	if s.RAM != nil {
		copy(m.ram, s.RAM)
	}
	if s.MBC3 != nil {
		m.ramEnabled = s.MBC3.RAMEnabled
		m.romBank = s.MBC3.ROMBank
		m.ramBank = s.MBC3.RAMBank
		m.latched = s.MBC3.Latched
		m.rtc = s.MBC3.Latched
		m.latchState = s.MBC3.LatchState
		m.base = time.Unix(s.MBC3.BaseUnix, 0)
	}
}
