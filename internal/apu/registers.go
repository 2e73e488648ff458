package apu

// WriteRegister dispatches a write to an APU register in 0xFF10-0xFF3F.
// While the master-enable bit is clear, every register except NR52 and
// wave RAM ignores writes.
func (a *APU) WriteRegister(addr uint16, v uint8) {
	if addr >= 0xFF30 && addr <= 0xFF3F {
		a.ch3.WriteRAM(addr, v)
		return
	}
	if !a.enabled && addr != 0xFF26 {
		return
	}

	switch addr {
	case 0xFF10:
		a.ch1.WriteNR10(v)
	case 0xFF11:
		a.ch1.WriteNR11(v)
	case 0xFF12:
		a.ch1.WriteNR12(v)
	case 0xFF13:
		a.ch1.WriteNR13(v)
	case 0xFF14:
		a.ch1.WriteNR14(v)

	case 0xFF16:
		a.ch2.WriteNR11(v)
	case 0xFF17:
		a.ch2.WriteNR12(v)
	case 0xFF18:
		a.ch2.WriteNR13(v)
	case 0xFF19:
		a.ch2.WriteNR14(v)

	case 0xFF1A:
		a.ch3.WriteNR30(v)
	case 0xFF1B:
		a.ch3.WriteNR31(v)
	case 0xFF1C:
		a.ch3.WriteNR32(v)
	case 0xFF1D:
		a.ch3.WriteNR33(v)
	case 0xFF1E:
		a.ch3.WriteNR34(v)

	case 0xFF20:
		a.ch4.WriteNR41(v)
	case 0xFF21:
		a.ch4.WriteNR42(v)
	case 0xFF22:
		a.ch4.WriteNR43(v)
	case 0xFF23:
		a.ch4.WriteNR44(v)

	case 0xFF24:
		a.volumeRight = v & 0x07
		a.volumeLeft = (v >> 4) & 0x07
		a.vinRight = v&0x08 != 0
		a.vinLeft = v&0x80 != 0
	case 0xFF25:
		for i := 0; i < 4; i++ {
			a.panning[i][1] = v&(1<<uint(i)) != 0
			a.panning[i][0] = v&(1<<uint(i+4)) != 0
		}
	case 0xFF26:
		wasEnabled := a.enabled
		a.enabled = v&0x80 != 0
		if wasEnabled && !a.enabled {
			a.powerOff()
		} else if !wasEnabled && a.enabled {
			a.frameSeqStep = 0
		}
	}
}

// ReadRegister dispatches a read from an APU register in 0xFF10-0xFF3F.
func (a *APU) ReadRegister(addr uint16) uint8 {
	if addr >= 0xFF30 && addr <= 0xFF3F {
		return a.ch3.ReadRAM(addr)
	}

	switch addr {
	case 0xFF10:
		return a.ch1.ReadNR10()
	case 0xFF11:
		return a.ch1.ReadNR11()
	case 0xFF12:
		return a.ch1.ReadNR12()
	case 0xFF13:
		return a.ch1.ReadNR13()
	case 0xFF14:
		return a.ch1.ReadNR14()

	case 0xFF16:
		return a.ch2.ReadNR11()
	case 0xFF17:
		return a.ch2.ReadNR12()
	case 0xFF18:
		return a.ch2.ReadNR13()
	case 0xFF19:
		return a.ch2.ReadNR14()

	case 0xFF1A:
		return a.ch3.ReadNR30()
	case 0xFF1B:
		return a.ch3.ReadNR31()
	case 0xFF1C:
		return a.ch3.ReadNR32()
	case 0xFF1D:
		return a.ch3.ReadNR33()
	case 0xFF1E:
		return a.ch3.ReadNR34()

	case 0xFF20:
		return a.ch4.ReadNR41()
	case 0xFF21:
		return a.ch4.ReadNR42()
	case 0xFF22:
		return a.ch4.ReadNR43()
	case 0xFF23:
		return a.ch4.ReadNR44()

	case 0xFF24:
		b := a.volumeRight | (a.volumeLeft << 4)
		if a.vinRight {
			b |= 0x08
		}
		if a.vinLeft {
			b |= 0x80
		}
		return b
	case 0xFF25:
		b := uint8(0)
		for i := 0; i < 4; i++ {
			if a.panning[i][1] {
				b |= 1 << uint(i)
			}
			if a.panning[i][0] {
				b |= 1 << uint(i+4)
			}
		}
		return b
	case 0xFF26:
		b := uint8(0x70)
		if a.enabled {
			b |= 0x80
		}
		if a.ch1.isEnabled() {
			b |= 0x01
		}
		if a.ch2.isEnabled() {
			b |= 0x02
		}
		if a.ch3.isEnabled() {
			b |= 0x04
		}
		if a.ch4.isEnabled() {
			b |= 0x08
		}
		return b
	}
	return 0xFF
}

// powerOff clears all channel registers and NR50/NR51, matching real
// hardware's behavior when NR52's master-enable bit is cleared.
func (a *APU) powerOff() {
	waveRAM := a.ch3.waveRAM
	a.ch1 = newPulse(true, &a.timing)
	a.ch2 = newPulse(false, &a.timing)
	a.ch3 = newWave(&a.timing)
	a.ch3.waveRAM = waveRAM
	a.ch4 = newNoise(&a.timing)
	a.volumeLeft, a.volumeRight = 0, 0
	a.vinLeft, a.vinRight = false, false
	a.panning = [4][2]bool{}
}
