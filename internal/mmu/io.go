package mmu

// readIO and writeIO dispatch the 0xFF00-0xFF7F I/O register file,
// which is split between the MMU itself (joypad, serial, timer, IF,
// CGB-only banking) and the PPU/APU components it owns.
func (m *MMU) readIO(addr uint16) uint8 {
	switch {
	case addr == 0xFF00:
		return m.Joy.Read()
	case addr == 0xFF01:
		return m.Serial.ReadSB()
	case addr == 0xFF02:
		return m.Serial.ReadSC()
	case addr == 0xFF04:
		return m.Timer.ReadDIV()
	case addr == 0xFF05:
		return m.Timer.ReadTIMA()
	case addr == 0xFF06:
		return m.Timer.ReadTMA()
	case addr == 0xFF07:
		return m.Timer.ReadTAC()
	case addr == 0xFF0F:
		return m.IRQ.ReadIF()
	case addr >= 0xFF10 && addr <= 0xFF3F:
		return m.APU.ReadRegister(addr)
	case addr == 0xFF40:
		return m.PPU.ReadLCDC()
	case addr == 0xFF41:
		return m.PPU.ReadSTAT()
	case addr == 0xFF42:
		return m.PPU.SCY
	case addr == 0xFF43:
		return m.PPU.SCX
	case addr == 0xFF44:
		return m.PPU.ReadLY()
	case addr == 0xFF45:
		return m.PPU.ReadLYC()
	case addr == 0xFF46:
		return 0xFF // DMA source register is write-only
	case addr == 0xFF47:
		return m.PPU.BGP
	case addr == 0xFF48:
		return m.PPU.OBP0
	case addr == 0xFF49:
		return m.PPU.OBP1
	case addr == 0xFF4A:
		return m.PPU.WY
	case addr == 0xFF4B:
		return m.PPU.WX
	case addr == 0xFF4C:
		return m.key0
	case addr == 0xFF4D:
		b := m.key1 & 0x81
		return b | 0x7E
	case addr == 0xFF4F:
		return m.PPU.ReadVBK()
	case addr == 0xFF68:
		return m.PPU.BGPalette.ReadSpec()
	case addr == 0xFF69:
		return m.PPU.BGPalette.ReadData()
	case addr == 0xFF6A:
		return m.PPU.OBJPalette.ReadSpec()
	case addr == 0xFF6B:
		return m.PPU.OBJPalette.ReadData()
	case addr == 0xFF6C:
		return m.PPU.ReadOPRI()
	case addr == 0xFF70:
		return 0xF8 | m.wramBank
	}
	return 0xFF
}

func (m *MMU) writeIO(addr uint16, v uint8) {
	switch {
	case addr == 0xFF00:
		m.Joy.Write(v)
	case addr == 0xFF01:
		m.Serial.WriteSB(v)
	case addr == 0xFF02:
		m.Serial.WriteSC(v)
	case addr == 0xFF04:
		m.Timer.WriteDIV(v)
	case addr == 0xFF05:
		m.Timer.WriteTIMA(v)
	case addr == 0xFF06:
		m.Timer.WriteTMA(v)
	case addr == 0xFF07:
		m.Timer.WriteTAC(v)
	case addr == 0xFF0F:
		m.IRQ.WriteIF(v)
	case addr >= 0xFF10 && addr <= 0xFF3F:
		m.APU.WriteRegister(addr, v)
	case addr == 0xFF40:
		m.PPU.WriteLCDC(v)
	case addr == 0xFF41:
		m.PPU.WriteSTAT(v)
	case addr == 0xFF42:
		m.PPU.SCY = v
	case addr == 0xFF43:
		m.PPU.SCX = v
	case addr == 0xFF44:
		m.PPU.WriteLY(v)
	case addr == 0xFF45:
		m.PPU.WriteLYC(v)
	case addr == 0xFF46:
		m.PPU.StartDMA(v)
	case addr == 0xFF47:
		m.PPU.BGP = v
	case addr == 0xFF48:
		m.PPU.OBP0 = v
	case addr == 0xFF49:
		m.PPU.OBP1 = v
	case addr == 0xFF4A:
		m.PPU.WY = v
	case addr == 0xFF4B:
		m.PPU.WX = v
	case addr == 0xFF4C:
		if m.cgbMode {
			m.key0 = v & 0x0F
		}
	case addr == 0xFF4D:
		if m.cgbMode {
			m.key1 = (m.key1 & 0x80) | (v & 0x01)
		}
	case addr == 0xFF4F:
		m.PPU.WriteVBK(v)
	case addr == 0xFF50:
		m.bootDisabled = true
	case addr == 0xFF68:
		m.PPU.BGPalette.WriteSpec(v)
	case addr == 0xFF69:
		m.PPU.BGPalette.WriteData(v)
	case addr == 0xFF6A:
		m.PPU.OBJPalette.WriteSpec(v)
	case addr == 0xFF6B:
		m.PPU.OBJPalette.WriteData(v)
	case addr == 0xFF6C:
		m.PPU.WriteOPRI(v)
	case addr == 0xFF70:
		if m.cgbMode {
			bank := v & 0x07
			if bank == 0 {
				bank = 1
			}
			m.wramBank = bank
		}
	}
}
