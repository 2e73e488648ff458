// Package apu implements the Game Boy's audio processing unit: four
// sound generators, the frame sequencer that paces their length/sweep/
// envelope steps, and a mixer with a 44.1 kHz resampling DC-blocking
// filter.
package apu

// frameTiming is shared mutable state set by the frame sequencer and
// read by the length-counter trigger logic, which behaves differently
// depending on which half of the current length period the trigger
// lands in.
type frameTiming struct {
	firstHalf bool
}

// channel holds the state common to all four sound generators: a
// frequency timer that paces the waveform generator, and the DAC/length
// gating that determines whether the channel contributes to the mix.
type channel struct {
	enabled    bool
	dacEnabled bool

	lengthCounter        uint
	lengthCounterEnabled bool

	frequencyTimer int32
	reload         func() int32
	step           func()
}

func (c *channel) tick(mCycles int32) {
	if c.reload == nil {
		return
	}
	c.frequencyTimer -= mCycles
	for c.frequencyTimer <= 0 {
		c.frequencyTimer += c.reload()
		c.step()
	}
}

func (c *channel) isEnabled() bool { return c.enabled && c.dacEnabled }

// lengthStep decrements the length counter once per frame-sequencer
// length step, disabling the channel when it reaches zero.
func (c *channel) lengthStep() {
	if c.lengthCounterEnabled && c.lengthCounter > 0 {
		c.lengthCounter--
		if c.lengthCounter == 0 {
			c.enabled = false
		}
	}
}

// volumeChannel adds the envelope (NRx2-style) logic shared by channels
// 1, 2 and 4. Channel 3 has no envelope and does not embed this.
type volumeChannel struct {
	*channel

	startingVolume  uint8
	envelopeAddMode bool
	period          uint8

	volumeEnvelopeTimer      uint8
	currentVolume            uint8
	volumeEnvelopeIsUpdating bool
}

func newVolumeChannel() *volumeChannel {
	return &volumeChannel{channel: &channel{}}
}

// volumeStep adjusts currentVolume by one step every envelope period,
// saturating at the [0, 15] boundary instead of wrapping.
func (v *volumeChannel) volumeStep() {
	if v.period == 0 {
		return
	}
	if v.volumeEnvelopeTimer > 0 {
		v.volumeEnvelopeTimer--
		if v.volumeEnvelopeTimer == 0 {
			v.volumeEnvelopeTimer = v.period
			if v.currentVolume < 0xF && v.envelopeAddMode || v.currentVolume > 0 && !v.envelopeAddMode {
				if v.envelopeAddMode {
					v.currentVolume++
				} else {
					v.currentVolume--
				}
			} else {
				v.volumeEnvelopeIsUpdating = false
			}
		}
	}
}

// writeNRx2 handles the envelope-control register shared by channels 1,
// 2 and 4 (NR12/NR22/NR42), including the documented "zombie mode"
// glitch where writing NRx2 while the channel is running nudges the
// current volume rather than only taking effect on the next trigger.
func (v *volumeChannel) writeNRx2(val uint8) {
	envelopeAddMode := val&0x08 != 0
	if v.enabled {
		if v.period == 0 && v.volumeEnvelopeIsUpdating || !v.envelopeAddMode {
			v.currentVolume++
		}
		if envelopeAddMode != v.envelopeAddMode {
			v.currentVolume = 0x10 - v.currentVolume
		}
		v.currentVolume &= 0x0F
	}
	v.startingVolume = val >> 4
	v.envelopeAddMode = envelopeAddMode
	v.period = val & 0x07
	v.dacEnabled = val&0xF8 != 0
	if !v.dacEnabled {
		v.enabled = false
	}
}

func (v *volumeChannel) readNRx2() uint8 {
	b := v.startingVolume<<4 | v.period
	if v.envelopeAddMode {
		b |= 0x08
	}
	return b
}

func (v *volumeChannel) triggerEnvelope() {
	v.volumeEnvelopeTimer = v.period
	v.currentVolume = v.startingVolume
	v.volumeEnvelopeIsUpdating = true
}

// triggerLength reloads the length counter to max on a zero-length
// trigger, applying the obscure "extra clock if triggered in the first
// half of the current length period" behavior real hardware exhibits.
func triggerLength(c *channel, max uint, timing *frameTiming) {
	if c.lengthCounter == 0 {
		c.lengthCounter = max
		if c.lengthCounterEnabled && timing.firstHalf {
			c.lengthCounter--
		}
	}
}

// writeLengthEnable applies the same obscure behavior when the
// length-enable bit transitions low-to-high outside of a trigger.
func writeLengthEnable(c *channel, enable bool, timing *frameTiming) {
	if timing.firstHalf && !c.lengthCounterEnabled && enable && c.lengthCounter > 0 {
		c.lengthCounter--
		if c.lengthCounter == 0 {
			c.enabled = false
		}
	}
	c.lengthCounterEnabled = enable
}

func dacAnalog(amplitude4bit uint8) float32 {
	return float32(amplitude4bit)/7.5 - 1
}
