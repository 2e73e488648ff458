package gameboy

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/dmgo-project/dmgo/internal/ppu"
)

// Golden test-ROM harnesses. The ROM images themselves are not part of
// this repository (blargg's and mooneye's suites are redistributed
// separately under their own licenses); each test looks for them under
// testdata/roms/<suite>/ and skips itself when the file is absent, so
// CI that hasn't fetched the suites still passes. Drop the ROMs in
// place locally to exercise these.

const testROMTimeout = 30 * time.Second

// runWithSerialCapture runs rom to completion (or until timeout),
// concatenating every byte written out over the serial port, exactly
// as blargg's test ROMs report their own pass/fail status.
func runWithSerialCapture(t *testing.T, romPath string, opts ...Option) (string, error) {
	t.Helper()
	rom, err := os.ReadFile(romPath)
	if err != nil {
		t.Skipf("test ROM not present: %s", romPath)
		return "", nil
	}

	var out strings.Builder
	gb, err := New(rom, "", opts...)
	if err != nil {
		return "", err
	}
	gb.Serial.SetSink(func(b byte) { out.WriteByte(b) })

	deadline := time.Now().Add(testROMTimeout)
	for time.Now().Before(deadline) {
		if _, err := gb.RunFrame(Input{}); err != nil {
			return out.String(), err
		}
		if strings.Contains(out.String(), "Passed") || strings.Contains(out.String(), "Failed") {
			break
		}
	}
	return out.String(), nil
}

func requirePassed(t *testing.T, romPath string, opts ...Option) {
	t.Helper()
	output, err := runWithSerialCapture(t, romPath, opts...)
	if err != nil {
		t.Fatalf("%s: %v", filepath.Base(romPath), err)
	}
	if output == "" {
		return // skipped: ROM not present
	}
	if strings.Contains(output, "Failed") || !strings.Contains(output, "Passed") {
		t.Errorf("%s: expected serial output to contain \"Passed\", got %q", filepath.Base(romPath), output)
	}
}

func TestBlarggCPUInstrs(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping golden test-ROM run in -short mode")
	}
	dir := filepath.Join("testdata", "roms", "blargg", "cpu_instrs", "individual")
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Skipf("blargg cpu_instrs suite not present: %v", err)
	}
	for _, e := range entries {
		if e.IsDir() || filepath.Ext(e.Name()) != ".gb" {
			continue
		}
		e := e
		t.Run(e.Name(), func(t *testing.T) {
			requirePassed(t, filepath.Join(dir, e.Name()))
		})
	}
}

func TestBlarggInstrTiming(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping golden test-ROM run in -short mode")
	}
	requirePassed(t, filepath.Join("testdata", "roms", "blargg", "instr_timing", "instr_timing.gb"))
}

// testMooneyeROM runs a mooneye acceptance ROM to its LD B,B debug
// breakpoint opcode and checks the Fibonacci-sequence register
// convention those ROMs use to signal success: a passing run leaves
// B,C,D,E,H,L holding 3,5,8,13,21,34.
func testMooneyeROM(t *testing.T, romPath string, opts ...Option) {
	t.Helper()
	rom, err := os.ReadFile(romPath)
	if err != nil {
		t.Skipf("test ROM not present: %s", romPath)
		return
	}
	gb, err := New(rom, "", append(opts, Debug())...)
	if err != nil {
		t.Fatalf("%s: %v", filepath.Base(romPath), err)
	}

	deadline := time.Now().Add(testROMTimeout)
	for time.Now().Before(deadline) {
		if _, err := gb.RunFrame(Input{}); err != nil {
			t.Fatalf("%s: %v", filepath.Base(romPath), err)
		}
		if gb.CPU.DebugBreakpointHit() {
			break
		}
	}

	want := []uint8{3, 5, 8, 13, 21, 34}
	got := []uint8{gb.CPU.B, gb.CPU.C, gb.CPU.D, gb.CPU.E, gb.CPU.H, gb.CPU.L}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("%s: register %d = %d, want %d", filepath.Base(romPath), i, got[i], want[i])
		}
	}
}

func TestMooneyeAcceptance(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping golden test-ROM run in -short mode")
	}
	for _, dir := range []string{"bits", "instr", "interrupts", "oam_dma", "ppu", "serial", "timer"} {
		romDir := filepath.Join("testdata", "roms", "mooneye", "acceptance", dir)
		entries, err := os.ReadDir(romDir)
		if err != nil {
			t.Skipf("mooneye acceptance/%s suite not present: %v", dir, err)
			continue
		}
		for _, e := range entries {
			if e.IsDir() || filepath.Ext(e.Name()) != ".gb" {
				continue
			}
			e := e
			t.Run(filepath.Join(dir, e.Name()), func(t *testing.T) {
				testMooneyeROM(t, filepath.Join(romDir, e.Name()))
			})
		}
	}
}

// TestGoldenFrame compares a ROM's rendered frame after a fixed number
// of frames against a reference PNG, the emulator-testing equivalent of
// mooneye's image tests. Reference images are likewise external.
func TestGoldenFrame(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping golden-frame comparison in -short mode")
	}
	cases := []struct {
		rom     string
		golden  string
		frames  int
		options []Option
	}{
		{
			rom:    filepath.Join("testdata", "roms", "mooneye", "manual-only", "sprite_priority.gb"),
			golden: filepath.Join("testdata", "golden", "sprite_priority_dmg.png"),
			frames: 300,
		},
	}

	encodeFramePNG := func(t *testing.T, f ppu.Frame) []byte {
		img := image.NewRGBA(image.Rect(0, 0, ppu.ScreenWidth, ppu.ScreenHeight))
		for y := 0; y < ppu.ScreenHeight; y++ {
			for x := 0; x < ppu.ScreenWidth; x++ {
				c := f[y][x]
				img.Set(x, y, color.RGBA{R: c[0], G: c[1], B: c[2], A: 0xFF})
			}
		}
		var buf bytes.Buffer
		if err := png.Encode(&buf, img); err != nil {
			t.Fatalf("encode frame: %v", err)
		}
		return buf.Bytes()
	}

	for _, c := range cases {
		c := c
		t.Run(filepath.Base(c.golden), func(t *testing.T) {
			rom, err := os.ReadFile(c.rom)
			if err != nil {
				t.Skipf("test ROM not present: %s", c.rom)
			}
			want, err := os.ReadFile(c.golden)
			if err != nil {
				t.Skipf("golden image not present: %s", c.golden)
			}

			gb, err := New(rom, "", c.options...)
			if err != nil {
				t.Fatalf("%s: %v", c.rom, err)
			}
			var last ppu.Frame
			for i := 0; i < c.frames; i++ {
				f, err := gb.RunFrame(Input{})
				if err != nil {
					t.Fatalf("%s: %v", c.rom, err)
				}
				last = f
			}
			frame := encodeFramePNG(t, last)

			if len(want) != 0 && !bytes.Equal(frame, want) {
				t.Errorf("%s: rendered frame does not match golden image", filepath.Base(c.golden))
			}
		})
	}
}
