package apu

const (
	// samplesPerOutput is the number of T-cycles (four per machine
	// cycle) between mixer output samples: 4194304 / 95 ~= 44150 Hz, close enough to the
	// nominal 44.1 kHz CD rate that no further resampling is needed.
	samplesPerOutput = 95

	highPassCharge = 0.996

	// bufferSamples bounds how many stereo samples accumulate before
	// being handed to the sink, roughly 46ms of audio.
	bufferSamples = 2048
)

// Sample is one resampled, high-pass filtered stereo output frame.
type Sample struct {
	Left, Right int16
}

// Sink receives completed audio buffers. Submit may block briefly to
// apply back-pressure against a host audio device; that is the only
// synchronization point in an otherwise single-threaded emulator.
type Sink interface {
	Submit(samples []Sample)
}

// APU is the Game Boy's audio processing unit: four channels, an 8-step
// frame sequencer, and a mixer that resamples down to a sink-friendly
// output rate.
type APU struct {
	enabled bool

	ch1 *Pulse
	ch2 *Pulse
	ch3 *Wave
	ch4 *Noise

	timing frameTiming

	frameSeqCounter int32
	frameSeqStep    uint8
	lastDivBit4     bool

	vinLeft, vinRight       bool
	volumeLeft, volumeRight uint8

	// NR51 panning: [channel][0]=left, [channel][1]=right
	panning [4][2]bool

	sampleCounter int

	hpLeftIn, hpLeftOut   float32
	hpRightIn, hpRightOut float32

	buffer []Sample
	sink   Sink

	// ChannelMute and MasterMute are host controls applied only at the
	// mixer; they never alter channel register state.
	ChannelMute [4]bool
	MasterMute  bool
}

// New returns a powered-on APU with no sink attached.
func New() *APU {
	a := &APU{enabled: true}
	a.ch1 = newPulse(true, &a.timing)
	a.ch2 = newPulse(false, &a.timing)
	a.ch3 = newWave(&a.timing)
	a.ch4 = newNoise(&a.timing)
	a.buffer = make([]Sample, 0, bufferSamples)
	return a
}

// AttachSink installs the callback that receives completed sample
// buffers. A nil sink simply drops output, which is useful for
// headless/test use.
func (a *APU) AttachSink(sink Sink) { a.sink = sink }

// Tick advances the APU by one machine cycle. div is the timer's
// current 8-bit DIV register value, used to derive the frame
// sequencer's falling-edge clock exactly as real hardware does.
func (a *APU) Tick(div uint8) {
	bit4 := div&0x10 != 0
	if a.lastDivBit4 && !bit4 {
		a.stepFrameSequencer()
	}
	a.lastDivBit4 = bit4

	if a.enabled {
		a.ch1.tick(4)
		a.ch2.tick(4)
		a.ch3.tickRead()
		a.ch3.tickRead()
		a.ch3.tickRead()
		a.ch3.tickRead()
		a.ch3.channel.tick(4)
		a.ch4.tick(4)
	}

	a.mixCycle()
}

func (a *APU) stepFrameSequencer() {
	switch a.frameSeqStep {
	case 0:
		a.lengthStep()
	case 1:
	case 2:
		a.lengthStep()
		a.sweepStep()
	case 3:
	case 4:
		a.lengthStep()
	case 5:
	case 6:
		a.lengthStep()
		a.sweepStep()
	case 7:
		a.envelopeStep()
	}
	a.timing.firstHalf = a.frameSeqStep%2 == 0
	a.frameSeqStep = (a.frameSeqStep + 1) & 0x07
}

func (a *APU) lengthStep() {
	a.ch1.lengthStep()
	a.ch2.lengthStep()
	a.ch3.lengthStep()
	a.ch4.lengthStep()
}

func (a *APU) sweepStep() { a.ch1.sweepClock() }

func (a *APU) envelopeStep() {
	a.ch1.volumeStep()
	a.ch2.volumeStep()
	a.ch4.volumeStep()
}

// mixCycle sums the active, unmuted channels into a left/right analog
// pair, applies the DC-blocking high-pass filter, and every
// samplesPerOutput T-cycles appends the filtered pair to the output
// buffer, flushing it to the sink when full.
func (a *APU) mixCycle() {
	var left, right float32

	add := func(idx int, amp float32) {
		if a.ChannelMute[idx] {
			return
		}
		if a.panning[idx][0] {
			left += amp
		}
		if a.panning[idx][1] {
			right += amp
		}
	}
	add(0, a.ch1.amplitude())
	add(1, a.ch2.amplitude())
	add(2, a.ch3.amplitude())
	add(3, a.ch4.amplitude())

	left /= 4
	right /= 4

	left *= float32(a.volumeLeft+1) / 8
	right *= float32(a.volumeRight+1) / 8

	if a.MasterMute || !a.enabled {
		left, right = 0, 0
	}

	a.hpLeftOut = (left - a.hpLeftIn) + highPassCharge*a.hpLeftOut
	a.hpLeftIn = left
	a.hpRightOut = (right - a.hpRightIn) + highPassCharge*a.hpRightOut
	a.hpRightIn = right

	a.sampleCounter += 4
	if a.sampleCounter < samplesPerOutput {
		return
	}
	a.sampleCounter -= samplesPerOutput

	a.buffer = append(a.buffer, Sample{
		Left:  clampSample(a.hpLeftOut),
		Right: clampSample(a.hpRightOut),
	})
	if len(a.buffer) >= bufferSamples {
		if a.sink != nil {
			a.sink.Submit(a.buffer)
		}
		a.buffer = make([]Sample, 0, bufferSamples)
	}
}

func clampSample(v float32) int16 {
	s := v * 32767
	if s > 32767 {
		return 32767
	}
	if s < -32768 {
		return -32768
	}
	return int16(s)
}
