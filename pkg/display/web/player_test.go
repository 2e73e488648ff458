package web

import (
	"testing"

	"github.com/dmgo-project/dmgo/internal/apu"
	"github.com/dmgo-project/dmgo/internal/ppu"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"
)

func newTestHub() *Hub {
	log := logrus.New()
	log.SetOutput(discard{})
	return NewHub(log)
}

type discard struct{}

func (discard) Write(p []byte) (int, error) { return len(p), nil }

func TestPushFrameBroadcastsFrameMessage(t *testing.T) {
	hub := newTestHub()
	p := NewPlayer(hub)

	var frame ppu.Frame
	frame[0][0] = [3]uint8{255, 0, 0}

	require.NoError(t, p.PushFrame(frame))

	msg := <-hub.broadcast
	require.Equal(t, byte(msgFrame), msg[0])
}

func TestPushFrameSkipsIdenticalConsecutiveFrames(t *testing.T) {
	hub := newTestHub()
	p := NewPlayer(hub)

	var frame ppu.Frame
	require.NoError(t, p.PushFrame(frame))
	<-hub.broadcast

	require.NoError(t, p.PushFrame(frame))
	select {
	case <-hub.broadcast:
		t.Fatal("expected no broadcast for an identical consecutive frame")
	default:
	}
}

func TestSubmitBroadcastsAudioMessage(t *testing.T) {
	hub := newTestHub()
	p := NewPlayer(hub)

	p.Submit([]apu.Sample{{Left: 100, Right: -100}})

	msg := <-hub.broadcast
	require.Equal(t, byte(msgAudio), msg[0])
	require.Len(t, msg, 1+4)
}
