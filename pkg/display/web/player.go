package web

import (
	"bytes"
	"image"
	"image/png"

	"github.com/cespare/xxhash"
	"github.com/dmgo-project/dmgo/internal/apu"
	"github.com/dmgo-project/dmgo/internal/ppu"
	"github.com/google/brotli/go/cbrotli"
)

// Player turns a stream of completed PPU frames and APU audio buffers
// into hub broadcasts: PNG-encode + brotli-compress each frame, skip
// broadcasting frames identical to the last one (by xxhash), and
// forward audio buffers as little-endian PCM.
type Player struct {
	hub *Hub

	lastHash uint64
	hasLast  bool
}

// NewPlayer returns a Player broadcasting through hub.
func NewPlayer(hub *Hub) *Player { return &Player{hub: hub} }

// PushFrame encodes and broadcasts frame, skipping the broadcast
// entirely if it's byte-identical to the previous one (a still image,
// e.g. a paused emulator or a title screen).
func (p *Player) PushFrame(frame ppu.Frame) error {
	img := image.NewRGBA(image.Rect(0, 0, ppu.ScreenWidth, ppu.ScreenHeight))
	for y := 0; y < ppu.ScreenHeight; y++ {
		for x := 0; x < ppu.ScreenWidth; x++ {
			px := frame[y][x]
			i := img.PixOffset(x, y)
			img.Pix[i+0], img.Pix[i+1], img.Pix[i+2], img.Pix[i+3] = px[0], px[1], px[2], 0xFF
		}
	}

	var raw bytes.Buffer
	if err := png.Encode(&raw, img); err != nil {
		return err
	}

	hash := xxhash.Sum64(raw.Bytes())
	if p.hasLast && hash == p.lastHash {
		return nil
	}
	p.lastHash, p.hasLast = hash, true

	compressed, err := cbrotli.Encode(raw.Bytes(), cbrotli.WriterOptions{Quality: 6})
	if err != nil {
		return err
	}

	p.hub.broadcast <- append([]byte{byte(msgFrame)}, compressed...)
	return nil
}

// Submit implements apu.Sink, broadcasting each completed audio buffer
// as little-endian int16 PCM, left/right interleaved.
func (p *Player) Submit(samples []apu.Sample) {
	buf := make([]byte, 1+len(samples)*4)
	buf[0] = byte(msgAudio)
	for i, s := range samples {
		off := 1 + i*4
		buf[off], buf[off+1] = byte(s.Left), byte(s.Left>>8)
		buf[off+2], buf[off+3] = byte(s.Right), byte(s.Right>>8)
	}
	p.hub.broadcast <- buf
}

var _ apu.Sink = (*Player)(nil)
