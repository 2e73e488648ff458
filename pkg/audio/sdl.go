//go:build !test

// Package audio adapts the APU's Sink interface to a queued SDL2 audio
// device, so a host only has to construct a Device and AttachSink it;
// everything downstream of that is driven by the emulator core itself.
package audio

import (
	"encoding/binary"

	"github.com/dmgo-project/dmgo/internal/apu"
	"github.com/sirupsen/logrus"
	"github.com/veandco/go-sdl2/sdl"
)

// Device is an apu.Sink backed by an SDL2 queued audio device. Submit
// is called from the emulator's goroutine and only encodes + enqueues,
// so it never blocks on playback itself; SDL applies its own back
// pressure once the queue grows past a few frames.
type Device struct {
	id  sdl.AudioDeviceID
	log logrus.FieldLogger
}

const sampleRate = 44100

// Open initializes SDL's audio subsystem and opens a stereo, signed
// 16-bit playback device at the APU's native resample rate.
func Open(log logrus.FieldLogger) (*Device, error) {
	if err := sdl.InitSubSystem(sdl.INIT_AUDIO); err != nil {
		return nil, err
	}

	id, err := sdl.OpenAudioDevice("", false, &sdl.AudioSpec{
		Freq:     sampleRate,
		Format:   sdl.AUDIO_S16LSB,
		Channels: 2,
		Samples:  1024,
	}, nil, 0)
	if err != nil {
		return nil, err
	}

	sdl.PauseAudioDevice(id, false)
	return &Device{id: id, log: log}, nil
}

// Submit implements apu.Sink by interleaving and queuing the buffer.
func (d *Device) Submit(samples []apu.Sample) {
	buf := make([]byte, len(samples)*4)
	for i, s := range samples {
		binary.LittleEndian.PutUint16(buf[i*4:], uint16(s.Left))
		binary.LittleEndian.PutUint16(buf[i*4+2:], uint16(s.Right))
	}
	if err := sdl.QueueAudio(d.id, buf); err != nil {
		d.log.Warnf("could not queue audio: %v", err)
	}
}

// Close stops and releases the audio device.
func (d *Device) Close() {
	sdl.CloseAudioDevice(d.id)
}
