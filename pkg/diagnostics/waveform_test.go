package diagnostics

import (
	"path/filepath"
	"testing"

	"github.com/dmgo-project/dmgo/internal/apu"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/plot/vg"
)

type captureSink struct {
	got []apu.Sample
}

func (c *captureSink) Submit(samples []apu.Sample) { c.got = append(c.got, samples...) }

func TestWaveformRecorderForwardsAndRecords(t *testing.T) {
	next := &captureSink{}
	rec := NewWaveformRecorder(next)

	samples := []apu.Sample{{Left: 100, Right: -100}, {Left: 200, Right: -200}}
	rec.Submit(samples)

	require.Equal(t, samples, next.got)
	require.Equal(t, samples, rec.last)
}

func TestDumpPNGWritesFile(t *testing.T) {
	rec := NewWaveformRecorder(nil)
	rec.Submit([]apu.Sample{{Left: 1, Right: -1}, {Left: 2, Right: -2}, {Left: 3, Right: -3}})

	path := filepath.Join(t.TempDir(), "waveform.png")
	require.NoError(t, rec.DumpPNG(path, 4*vg.Inch, 3*vg.Inch))
}

func TestDumpPNGHandlesEmptyBuffer(t *testing.T) {
	rec := NewWaveformRecorder(nil)
	path := filepath.Join(t.TempDir(), "empty.png")
	require.NoError(t, rec.DumpPNG(path, 4*vg.Inch, 3*vg.Inch))
}
