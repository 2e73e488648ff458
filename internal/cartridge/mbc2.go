package cartridge

// MBC2 implements cartridge types 0x05-0x06: up to 256 KiB ROM and a
// built-in 512x4-bit RAM, addressed as a byte array where only the low
// nibble of each byte is meaningful.
type MBC2 struct {
	rom []byte
	ram [512]byte // only the low nibble of each entry is used

	romBankMask uint16
	ramEnabled  bool
	romBank     uint8
}

type mbc2State struct {
	RAMEnabled bool  `json:"ram_enabled"`
	ROMBank    uint8 `json:"rom_bank"`
}

func newMBC2(h Header, rom []byte) *MBC2 {
	return &MBC2{rom: rom, romBankMask: romBankMask(h.ROMBanks), romBank: 1}
}

func (m *MBC2) Read(addr uint16) uint8 {
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
	case addr >= 0xA000 && addr < 0xA200:
		if !m.ramEnabled {
			return 0xFF
		}
		return m.ram[addr-0xA000] | 0xF0
	}
	return 0xFF
}

func (m *MBC2) Write(addr uint16, value uint8) {
	switch {
	case addr < 0x4000:
		// bit 8 of the address selects RAM-enable vs ROM-bank-select
		if addr&0x0100 == 0 {
			m.ramEnabled = value&0x0F == 0x0A
		} else {
			bank := value & 0x0F
			if bank == 0 {
				bank = 1
			}
			m.romBank = bank
		}
	case addr >= 0xA000 && addr < 0xA200:
		if m.ramEnabled {
			m.ram[addr-0xA000] = value & 0x0F
		}
	}
}

func (m *MBC2) RAM() []byte       { return m.ram[:] }
func (m *MBC2) LoadRAM(d []byte)  { copy(m.ram[:], d) }
func (m *MBC2) TickClock()        {}

func (m *MBC2) Snapshot() MapperState {
	return MapperState{
		RAM:  append([]byte(nil), m.ram[:]...),
		MBC2: &mbc2State{RAMEnabled: m.ramEnabled, ROMBank: m.romBank},
	}
}

func (m *MBC2) Restore(s MapperState) {
	if s.RAM != nil {
		copy(m.ram[:], s.RAM)
	}
	if s.MBC2 != nil {
		m.ramEnabled = s.MBC2.RAMEnabled
		m.romBank = s.MBC2.ROMBank
	}
}
