// Command dmgo runs a ROM to completion in a desktop window, wiring
// the gameboy façade to SDL2 audio and a fyne presenter.
package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/dmgo-project/dmgo/internal/gameboy"
	"github.com/dmgo-project/dmgo/internal/ppu/palette"
	"github.com/dmgo-project/dmgo/pkg/audio"
	"github.com/dmgo-project/dmgo/pkg/display/fyneui"
	"github.com/dmgo-project/dmgo/pkg/log"
	"github.com/dmgo-project/dmgo/pkg/romloader"
	"github.com/sqweek/dialog"
)

func main() {
	romFile := flag.String("rom", "", "ROM file to load (.gb, .gbc, .zip, .7z, .gz); prompts with a file picker if omitted")
	bootROM := flag.String("boot", "", "boot ROM file to execute before the cartridge's own entry point")
	model := flag.String("model", "auto", "hardware model to emulate: auto, dmg or cgb")
	saveInterval := flag.Duration("save-interval", 0, "autosave battery RAM on this interval (0 disables periodic autosave)")
	mute := flag.Bool("mute", false, "mute all audio output")
	paletteName := flag.String("palette", "greyscale", "DMG compatibility palette: greyscale or dmg-green")
	scale := flag.Int("scale", 4, "integer upscale factor for the display window")
	logLevel := flag.String("log-level", "info", "log level: debug, info, warn, error")
	flag.Parse()

	logger := log.New(*logLevel)

	path := *romFile
	if path == "" {
		var err error
		path, err = dialog.File().Title("Select a Game Boy ROM").Load()
		if err != nil {
			logger.Fatalf("no ROM selected: %v", err)
		}
	}

	rom, err := romloader.Load(path)
	if err != nil {
		logger.Fatalf("could not load ROM %s: %v", path, err)
	}

	var opts []gameboy.Option
	opts = append(opts, gameboy.WithLogger(logger))

	if *bootROM != "" {
		boot, err := romloader.Load(*bootROM)
		if err != nil {
			logger.Fatalf("could not load boot ROM %s: %v", *bootROM, err)
		}
		opts = append(opts, gameboy.WithBootROM(boot))
	}

	switch *model {
	case "dmg":
		opts = append(opts, gameboy.AsModel(gameboy.ModelDMG))
	case "cgb":
		opts = append(opts, gameboy.AsModel(gameboy.ModelCGB))
	case "auto":
	default:
		logger.Fatalf("unknown -model %q: must be auto, dmg or cgb", *model)
	}

	if *mute {
		opts = append(opts, gameboy.Mute())
	}

	switch *paletteName {
	case "greyscale":
	case "dmg-green":
		opts = append(opts, gameboy.WithPalette(palette.DMGGreen))
	default:
		logger.Fatalf("unknown -palette %q: must be greyscale or dmg-green", *paletteName)
	}

	if *saveInterval > 0 {
		cycles := uint32(saveInterval.Seconds() * gameboy.ClockSpeed / 4)
		opts = append(opts, gameboy.WithAutosave(cycles))
	}

	gb, err := gameboy.New(rom, path, opts...)
	if err != nil {
		logger.Fatalf("could not start emulator: %v", err)
	}
	defer gb.Close()

	device, err := audio.Open(logger)
	if err != nil {
		logger.Warnf("could not open audio device: %v", err)
	} else {
		gb.APU.AttachSink(device)
		defer device.Close()
	}

	win := fyneui.New(fmt.Sprintf("dmgo - %s", gb.Cartridge.Header.Title), *scale)

	input := gameboy.Input{}
	go func() {
		ticker := time.NewTicker(time.Second / 60)
		defer ticker.Stop()
		for range ticker.C {
			frame, err := gb.RunFrame(input)
			if err != nil {
				logger.Errorf("emulation stopped: %v", err)
				os.Exit(1)
			}
			win.Present(frame)
		}
	}()

	win.ShowAndRun()
}
