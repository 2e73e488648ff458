// Package diagnostics renders debugging artifacts from emulator output
// that don't belong in any front end: currently a waveform dump of the
// audio mixer's most recent output buffer.
package diagnostics

import (
	"image/color"
	"sync"

	"github.com/dmgo-project/dmgo/internal/apu"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
)

// WaveformRecorder wraps an apu.Sink, forwarding every buffer
// unmodified while keeping the most recent one around for DumpPNG.
// Attach it between the APU and the real sink:
//
//	rec := diagnostics.NewWaveformRecorder(realSink)
//	a.AttachSink(rec)
type WaveformRecorder struct {
	next apu.Sink

	mu   sync.Mutex
	last []apu.Sample
}

// NewWaveformRecorder returns a recorder that forwards to next. next
// may be nil, in which case Submit only records.
func NewWaveformRecorder(next apu.Sink) *WaveformRecorder {
	return &WaveformRecorder{next: next}
}

func (w *WaveformRecorder) Submit(samples []apu.Sample) {
	w.mu.Lock()
	w.last = append(w.last[:0], samples...)
	w.mu.Unlock()

	if w.next != nil {
		w.next.Submit(samples)
	}
}

// DumpPNG renders the left and right channels of the most recently
// captured buffer as a two-line plot and writes it to path as a PNG,
// width/height given in points (96 per inch).
func (w *WaveformRecorder) DumpPNG(path string, width, height vg.Length) error {
	w.mu.Lock()
	samples := append([]apu.Sample(nil), w.last...)
	w.mu.Unlock()

	left := make(plotter.XYs, len(samples))
	right := make(plotter.XYs, len(samples))
	for i, s := range samples {
		left[i] = plotter.XY{X: float64(i), Y: float64(s.Left)}
		right[i] = plotter.XY{X: float64(i), Y: float64(s.Right)}
	}

	p := plot.New()
	p.Title.Text = "APU output buffer"
	p.X.Label.Text = "sample"
	p.Y.Label.Text = "amplitude"

	leftLine, err := plotter.NewLine(left)
	if err != nil {
		return err
	}
	leftLine.Color = color.RGBA{B: 200, A: 255}

	rightLine, err := plotter.NewLine(right)
	if err != nil {
		return err
	}
	rightLine.Color = color.RGBA{R: 200, A: 255}

	p.Add(leftLine, rightLine)
	p.Legend.Add("left", leftLine)
	p.Legend.Add("right", rightLine)

	return p.Save(width, height, path)
}
