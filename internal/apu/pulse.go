package apu

// pulseDuty holds the four selectable 8-step duty waveforms, indexed by
// NRx1 bits 6-7.
var pulseDuty = [4][8]uint8{
	{0, 0, 0, 0, 0, 0, 0, 1},
	{1, 0, 0, 0, 0, 0, 0, 1},
	{1, 0, 0, 0, 0, 1, 1, 1},
	{0, 1, 1, 1, 1, 1, 1, 0},
}

// Pulse implements channels 1 and 2. Channel 1 additionally exposes the
// frequency sweep (NR10); channel 2 leaves hasSweep false and ignores
// NR10-shaped writes.
type Pulse struct {
	*volumeChannel

	hasSweep bool
	timing   *frameTiming

	sweepPeriod            uint8
	sweepNegate            bool
	sweepShift             uint8
	sweepTimer             uint8
	sweepFrequencyShadow   uint16
	sweepEnabled           bool
	sweepNegateHasHappened bool

	duty             uint8
	frequency        uint16
	waveDutyPosition uint8
}

func newPulse(hasSweep bool, timing *frameTiming) *Pulse {
	p := &Pulse{volumeChannel: newVolumeChannel(), hasSweep: hasSweep, timing: timing}
	p.channel.reload = func() int32 { return (2048 - int32(p.frequency)) * 4 }
	p.channel.step = func() { p.waveDutyPosition = (p.waveDutyPosition + 1) & 0x07 }
	return p
}

func (p *Pulse) WriteNR10(v uint8) {
	if !p.hasSweep {
		return
	}
	p.sweepPeriod = (v & 0x70) >> 4
	p.sweepNegate = v&0x08 != 0
	p.sweepShift = v & 0x07
	if !p.sweepNegate && p.sweepNegateHasHappened {
		p.enabled = false
	}
}

func (p *Pulse) ReadNR10() uint8 {
	if !p.hasSweep {
		return 0xFF
	}
	b := (p.sweepPeriod << 4) | p.sweepShift
	if p.sweepNegate {
		b |= 0x08
	}
	return b | 0x80
}

func (p *Pulse) WriteNR11(v uint8) {
	p.duty = (v & 0xC0) >> 6
	p.lengthCounter = 64 - uint(v&0x3F)
}

func (p *Pulse) ReadNR11() uint8 { return (p.duty << 6) | 0x3F }

func (p *Pulse) WriteNR12(v uint8) { p.writeNRx2(v) }
func (p *Pulse) ReadNR12() uint8   { return p.readNRx2() }

func (p *Pulse) WriteNR13(v uint8) { p.frequency = (p.frequency & 0x0700) | uint16(v) }
func (p *Pulse) ReadNR13() uint8   { return 0xFF }

func (p *Pulse) WriteNR14(v uint8) {
	p.frequency = (p.frequency & 0x00FF) | (uint16(v&0x07) << 8)
	writeLengthEnable(p.channel, v&0x40 != 0, p.timing)

	if v&0x80 != 0 {
		p.enabled = p.dacEnabled
		triggerLength(p.channel, 64, p.timing)
		p.triggerEnvelope()

		p.sweepFrequencyShadow = p.frequency
		if p.sweepPeriod > 0 {
			p.sweepTimer = p.sweepPeriod
		} else {
			p.sweepTimer = 8
		}
		p.sweepEnabled = p.sweepPeriod > 0 || p.sweepShift > 0
		p.sweepNegateHasHappened = false
		if p.sweepShift > 0 {
			p.frequencyCalculation()
		}
	}
}

func (p *Pulse) ReadNR14() uint8 {
	b := uint8(0)
	if p.lengthCounterEnabled {
		b |= 0x40
	}
	return b | 0xBF
}

// sweepClock runs every 2nd and 6th frame-sequencer step (128 Hz).
func (p *Pulse) sweepClock() {
	if !p.hasSweep {
		return
	}
	if p.sweepTimer > 0 {
		p.sweepTimer--
	}
	if p.sweepTimer == 0 {
		if p.sweepPeriod > 0 {
			p.sweepTimer = p.sweepPeriod
		} else {
			p.sweepTimer = 8
		}
		if p.sweepEnabled && p.sweepPeriod > 0 {
			calculated := p.frequencyCalculation()
			if calculated <= 0x07FF && p.sweepShift > 0 {
				p.sweepFrequencyShadow = calculated
				p.frequency = calculated
				p.frequencyCalculation()
			}
		}
	}
}

func (p *Pulse) frequencyCalculation() uint16 {
	calculated := p.sweepFrequencyShadow >> p.sweepShift
	if p.sweepNegate {
		calculated = p.sweepFrequencyShadow - calculated
	} else {
		calculated = p.sweepFrequencyShadow + calculated
	}
	if calculated > 0x07FF {
		p.enabled = false
	}
	p.sweepNegateHasHappened = p.sweepNegate
	return calculated
}

func (p *Pulse) amplitude() float32 {
	if !p.isEnabled() {
		return 0
	}
	return dacAnalog(pulseDuty[p.duty][p.waveDutyPosition] * p.currentVolume)
}
