package apu

// pulseSnapshot captures one of the two pulse channels.
type pulseSnapshot struct {
	Enabled    bool   `json:"enabled"`
	DACEnabled bool   `json:"dac_enabled"`
	Length     uint   `json:"length"`
	LengthOn   bool   `json:"length_on"`
	FreqTimer  int32  `json:"freq_timer"`
	Volume     uint8  `json:"volume"`
	AddMode    bool   `json:"add_mode"`
	Period     uint8  `json:"period"`
	EnvTimer   uint8  `json:"env_timer"`
	EnvUpdate  bool   `json:"env_update"`
	SweepTimer uint8  `json:"sweep_timer"`
	SweepShad  uint16 `json:"sweep_shadow"`
	SweepOn    bool   `json:"sweep_on"`
	SweepNeg   bool   `json:"sweep_negated"`
	Duty       uint8  `json:"duty"`
	Frequency  uint16 `json:"frequency"`
	DutyPos    uint8  `json:"duty_pos"`
}

func (p *Pulse) snapshot() pulseSnapshot {
	return pulseSnapshot{
		Enabled: p.enabled, DACEnabled: p.dacEnabled,
		Length: p.lengthCounter, LengthOn: p.lengthCounterEnabled,
		FreqTimer: p.frequencyTimer,
		Volume:    p.currentVolume, AddMode: p.envelopeAddMode, Period: p.period,
		EnvTimer: p.volumeEnvelopeTimer, EnvUpdate: p.volumeEnvelopeIsUpdating,
		SweepTimer: p.sweepTimer, SweepShad: p.sweepFrequencyShadow,
		SweepOn: p.sweepEnabled, SweepNeg: p.sweepNegateHasHappened,
		Duty: p.duty, Frequency: p.frequency, DutyPos: p.waveDutyPosition,
	}
}

func (p *Pulse) restore(s pulseSnapshot) {
	p.enabled, p.dacEnabled = s.Enabled, s.DACEnabled
	p.lengthCounter, p.lengthCounterEnabled = s.Length, s.LengthOn
	p.frequencyTimer = s.FreqTimer
	p.currentVolume, p.envelopeAddMode, p.period = s.Volume, s.AddMode, s.Period
	p.volumeEnvelopeTimer, p.volumeEnvelopeIsUpdating = s.EnvTimer, s.EnvUpdate
	p.sweepTimer, p.sweepFrequencyShadow = s.SweepTimer, s.SweepShad
	p.sweepEnabled, p.sweepNegateHasHappened = s.SweepOn, s.SweepNeg
	p.duty, p.frequency, p.waveDutyPosition = s.Duty, s.Frequency, s.DutyPos
}

type waveSnapshot struct {
	Enabled   bool    `json:"enabled"`
	DAC       bool    `json:"dac_enabled"`
	Length    uint    `json:"length"`
	LengthOn  bool    `json:"length_on"`
	FreqTimer int32   `json:"freq_timer"`
	RAM       [16]byte `json:"ram"`
	Position  uint8   `json:"position"`
	Buffer    uint8   `json:"buffer"`
	VolCode   uint8   `json:"volume_code"`
	Frequency uint16  `json:"frequency"`
}

func (w *Wave) snapshot() waveSnapshot {
	return waveSnapshot{
		Enabled: w.enabled, DAC: w.dacEnabled,
		Length: w.lengthCounter, LengthOn: w.lengthCounterEnabled,
		FreqTimer: w.frequencyTimer, RAM: w.waveRAM,
		Position: w.position, Buffer: w.sampleBuffer,
		VolCode: w.volumeCode, Frequency: w.frequency,
	}
}

func (w *Wave) restore(s waveSnapshot) {
	w.enabled, w.dacEnabled = s.Enabled, s.DAC
	w.lengthCounter, w.lengthCounterEnabled = s.Length, s.LengthOn
	w.frequencyTimer = s.FreqTimer
	w.waveRAM = s.RAM
	w.position, w.sampleBuffer = s.Position, s.Buffer
	w.WriteNR32(s.VolCode << 5)
	w.frequency = s.Frequency
}

type noiseSnapshot struct {
	Enabled    bool  `json:"enabled"`
	DACEnabled bool  `json:"dac_enabled"`
	Length     uint  `json:"length"`
	LengthOn   bool  `json:"length_on"`
	FreqTimer  int32 `json:"freq_timer"`
	Volume     uint8 `json:"volume"`
	AddMode    bool  `json:"add_mode"`
	Period     uint8 `json:"period"`
	EnvTimer   uint8 `json:"env_timer"`
	EnvUpdate  bool  `json:"env_update"`
	LFSR       uint16 `json:"lfsr"`
	ClockShift uint8  `json:"clock_shift"`
	WidthMode  bool   `json:"width_mode"`
	Divisor    uint8  `json:"divisor_code"`
}

func (n *Noise) snapshot() noiseSnapshot {
	return noiseSnapshot{
		Enabled: n.enabled, DACEnabled: n.dacEnabled,
		Length: n.lengthCounter, LengthOn: n.lengthCounterEnabled,
		FreqTimer: n.frequencyTimer,
		Volume:    n.currentVolume, AddMode: n.envelopeAddMode, Period: n.period,
		EnvTimer: n.volumeEnvelopeTimer, EnvUpdate: n.volumeEnvelopeIsUpdating,
		LFSR: n.lfsr, ClockShift: n.clockShift, WidthMode: n.widthMode, Divisor: n.divisorCode,
	}
}

func (n *Noise) restore(s noiseSnapshot) {
	n.enabled, n.dacEnabled = s.Enabled, s.DACEnabled
	n.lengthCounter, n.lengthCounterEnabled = s.Length, s.LengthOn
	n.frequencyTimer = s.FreqTimer
	n.currentVolume, n.envelopeAddMode, n.period = s.Volume, s.AddMode, s.Period
	n.volumeEnvelopeTimer, n.volumeEnvelopeIsUpdating = s.EnvTimer, s.EnvUpdate
	n.lfsr, n.clockShift, n.widthMode, n.divisorCode = s.LFSR, s.ClockShift, s.WidthMode, s.Divisor
}

// Snapshot is the JSON-serializable state of the whole APU.
type Snapshot struct {
	Enabled bool `json:"enabled"`

	Channel1 pulseSnapshot `json:"channel1"`
	Channel2 pulseSnapshot `json:"channel2"`
	Channel3 waveSnapshot  `json:"channel3"`
	Channel4 noiseSnapshot `json:"channel4"`

	FrameSeqStep uint8 `json:"frame_seq_step"`

	VolumeLeft  uint8      `json:"volume_left"`
	VolumeRight uint8      `json:"volume_right"`
	VinLeft     bool       `json:"vin_left"`
	VinRight    bool       `json:"vin_right"`
	Panning     [4][2]bool `json:"panning"`
}

func (a *APU) Snapshot() Snapshot {
	return Snapshot{
		Enabled:      a.enabled,
		Channel1:     a.ch1.snapshot(),
		Channel2:     a.ch2.snapshot(),
		Channel3:     a.ch3.snapshot(),
		Channel4:     a.ch4.snapshot(),
		FrameSeqStep: a.frameSeqStep,
		VolumeLeft:   a.volumeLeft, VolumeRight: a.volumeRight,
		VinLeft: a.vinLeft, VinRight: a.vinRight,
		Panning: a.panning,
	}
}

func (a *APU) Restore(s Snapshot) {
	a.enabled = s.Enabled
	a.ch1.restore(s.Channel1)
	a.ch2.restore(s.Channel2)
	a.ch3.restore(s.Channel3)
	a.ch4.restore(s.Channel4)
	a.frameSeqStep = s.FrameSeqStep
	a.volumeLeft, a.volumeRight = s.VolumeLeft, s.VolumeRight
	a.vinLeft, a.vinRight = s.VinLeft, s.VinRight
	a.panning = s.Panning
}
