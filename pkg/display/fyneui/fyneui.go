//go:build !test

// Package fyneui is a minimal desktop window presenter: one fyne
// window holding a raster canvas that Present redraws every frame,
// upscaled by an integer factor, plus a clipboard hotkey for grabbing
// the current frame as a PNG.
package fyneui

import (
	"bytes"
	"image"
	"image/draw"
	"image/png"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/driver/desktop"
	"github.com/dmgo-project/dmgo/internal/ppu"
	"golang.design/x/clipboard"
	xdraw "golang.org/x/image/draw"
)

// Window presents GameBoy frames in a resizable desktop window.
type Window struct {
	app    fyne.App
	win    fyne.Window
	raster *canvas.Raster
	img    *image.RGBA

	scale int
	last  *image.RGBA // kept for the clipboard hotkey
}

// New opens a window titled title, sized to the 160x144 frame buffer
// scaled by an integer factor.
func New(title string, scale int) *Window {
	if scale < 1 {
		scale = 1
	}

	a := app.NewWithID("dmgo.dmgo-project")
	w := a.NewWindow(title)
	w.SetPadded(false)
	w.Resize(fyne.NewSize(float32(ppu.ScreenWidth*scale), float32(ppu.ScreenHeight*scale)))

	win := &Window{
		app:   a,
		win:   w,
		img:   image.NewRGBA(image.Rect(0, 0, ppu.ScreenWidth*scale, ppu.ScreenHeight*scale)),
		scale: scale,
	}

	win.raster = canvas.NewRasterFromImage(win.img)
	win.raster.ScaleMode = canvas.ImageScalePixels
	w.SetContent(win.raster)

	if deskCanvas, ok := w.Canvas().(desktop.Canvas); ok {
		deskCanvas.SetOnKeyDown(win.onKeyDown)
	}

	return win
}

// Present draws frame into the window, nearest-neighbor upscaled to
// the configured integer scale, and refreshes the canvas.
func (w *Window) Present(frame ppu.Frame) {
	src := image.NewRGBA(image.Rect(0, 0, ppu.ScreenWidth, ppu.ScreenHeight))
	for y := 0; y < ppu.ScreenHeight; y++ {
		for x := 0; x < ppu.ScreenWidth; x++ {
			px := frame[y][x]
			i := src.PixOffset(x, y)
			src.Pix[i+0], src.Pix[i+1], src.Pix[i+2], src.Pix[i+3] = px[0], px[1], px[2], 0xFF
		}
	}

	xdraw.NearestNeighbor.Scale(w.img, w.img.Bounds(), src, src.Bounds(), draw.Over, nil)
	w.last = w.img
	w.raster.Refresh()
}

// ShowAndRun shows the window and blocks until it's closed, matching
// fyne's own App.Run contract.
func (w *Window) ShowAndRun() {
	w.win.ShowAndRun()
}

// onKeyDown copies the most recently presented frame to the system
// clipboard as a PNG when F9 is pressed.
func (w *Window) onKeyDown(ev *fyne.KeyEvent) {
	if ev.Name != fyne.KeyF9 || w.last == nil {
		return
	}
	if err := clipboard.Init(); err != nil {
		return
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, w.last); err != nil {
		return
	}
	clipboard.Write(clipboard.FmtImage, buf.Bytes())
}
