package mmu

// Snapshot is the JSON-serializable state owned directly by the MMU:
// work RAM, high RAM, and the CGB banking/speed registers. The
// cartridge, PPU, APU, timer, joypad and serial components are
// snapshotted independently and combined by internal/state.
type Snapshot struct {
	WRAM     [8][]byte `json:"wram"`
	WRAMBank uint8     `json:"wram_bank"`
	HRAM     []byte    `json:"hram"`
	Key0     uint8     `json:"key0"`
	Key1     uint8     `json:"key1"`
	BootDone bool      `json:"boot_done"`
}

func (m *MMU) Snapshot() Snapshot {
	s := Snapshot{WRAMBank: m.wramBank, HRAM: append([]byte(nil), m.hram.Bytes()...), Key0: m.key0, Key1: m.key1, BootDone: m.bootDisabled}
	for i, bank := range m.wram {
		if bank != nil {
			s.WRAM[i] = append([]byte(nil), bank.Bytes()...)
		}
	}
	return s
}

func (m *MMU) Restore(s Snapshot) {
	m.wramBank = s.WRAMBank
	m.key0, m.key1 = s.Key0, s.Key1
	m.bootDisabled = s.BootDone
	m.hram.Load(s.HRAM)
	for i, raw := range s.WRAM {
		if raw != nil && m.wram[i] != nil {
			m.wram[i].Load(raw)
		}
	}
}
