// Package gameboy is the emulator façade: it wires every component
// built by the sibling packages into one runnable unit, drives the
// CPU until a frame completes, and exposes save/load, input, and live
// configuration to a host. It is the only package a front end imports
// directly.
package gameboy

import (
	"errors"
	"fmt"

	"github.com/dmgo-project/dmgo/internal/apu"
	"github.com/dmgo-project/dmgo/internal/bus"
	"github.com/dmgo-project/dmgo/internal/cartridge"
	"github.com/dmgo-project/dmgo/internal/cpu"
	"github.com/dmgo-project/dmgo/internal/interrupts"
	"github.com/dmgo-project/dmgo/internal/joypad"
	"github.com/dmgo-project/dmgo/internal/mmu"
	"github.com/dmgo-project/dmgo/internal/ppu"
	"github.com/dmgo-project/dmgo/internal/ppu/palette"
	"github.com/dmgo-project/dmgo/internal/serial"
	"github.com/dmgo-project/dmgo/internal/state"
	"github.com/dmgo-project/dmgo/internal/timer"
	"github.com/sirupsen/logrus"
)

// ClockSpeed is the nominal single-speed Game Boy clock, in Hz (T-cycles
// per second; one machine cycle is four T-cycles), useful for a host
// converting a wall-clock autosave interval into machine cycles for
// WithAutosave.
const ClockSpeed = cpu.ClockSpeed

// Model selects which hardware variant to emulate.
type Model uint8

const (
	// ModelAuto picks DMG or CGB from the cartridge's CGB-flag byte.
	ModelAuto Model = iota
	ModelDMG
	ModelCGB
)

// Sentinel errors the façade can return, wrapped with fmt.Errorf("%w").
var (
	ErrIllegalOpcode = errors.New("gameboy: illegal opcode")

	// ErrOutOfRange would wrap a bus access outside the 64 KiB address
	// space. The MMU's Read/Write dispatch is an exhaustive switch over
	// every uint16 value, so this can never actually be produced by this
	// implementation; it is kept so the façade's error surface matches
	// the full taxonomy a host is written against.
	ErrOutOfRange = errors.New("gameboy: bus access out of range")
)

// GameBoy is one running emulator instance. Every exported component
// field is safe to read directly (for a debugger UI); mutate them only
// through GameBoy's own methods or you risk breaking an invariant a
// single component enforces internally (e.g. joypad edge detection).
type GameBoy struct {
	CPU        *cpu.CPU
	Bus        *bus.Bus
	MMU        *mmu.MMU
	PPU        *ppu.PPU
	APU        *apu.APU
	Timer      *timer.Controller
	Joypad     *joypad.State
	Serial     *serial.Controller
	Interrupts *interrupts.Service
	Cartridge  *cartridge.Cartridge

	Model Model

	log logrus.FieldLogger

	autosaveInterval    uint32 // machine cycles between autosaves, 0 = disabled
	cyclesSinceAutosave uint32

	rewind rewindBuffer
}

// New constructs a GameBoy from a raw ROM image. romPath is used only to
// derive the cartridge's `.sav`/`.rtc` side-car paths; pass "" to
// disable on-disk persistence (e.g. in tests).
func New(rom []byte, romPath string, opts ...Option) (*GameBoy, error) {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}

	log := cfg.logger
	if log == nil {
		log = logrus.StandardLogger()
	}

	cart, err := cartridge.New(rom, romPath, log.WithField("component", "cartridge"))
	if err != nil {
		return nil, err
	}

	cgbMode := resolveModel(cfg.model, cart.Header.Mode)

	irq := interrupts.New()
	p := ppu.New(irq, cgbMode)
	p.Palette = cfg.palette
	p.HideBackground = cfg.hideBackground
	p.HideWindow = cfg.hideWindow
	p.HideSprites = cfg.hideSprites
	if cgbMode && cart.Header.Mode == cartridge.ModeDMGOnly {
		p.EnableCompatibilityMode(palette.SelectCompatibilityPalette(cart.Header.Title))
	}

	a := apu.New()
	a.ChannelMute = cfg.muteChannels
	a.MasterMute = cfg.muteMaster

	t := timer.New(irq)
	j := joypad.New(irq)
	s := serial.New(irq)

	m := mmu.New(cart, p, a, t, j, s, irq, cgbMode, cfg.bootROM)
	b := bus.New(m)
	c := cpu.New(b, irq)
	c.Debug = cfg.debug
	if cfg.bootROM != nil {
		c.PC = 0x0000
		c.SP = 0x0000
	}

	model := ModelDMG
	if cgbMode {
		model = ModelCGB
	}

	gb := &GameBoy{
		CPU: c, Bus: b, MMU: m, PPU: p, APU: a, Timer: t, Joypad: j, Serial: s,
		Interrupts: irq, Cartridge: cart, Model: model, log: log,
		autosaveInterval: cfg.autosaveCycles,
		rewind:           newRewindBuffer(cfg.rewindDepth),
	}
	return gb, nil
}

// resolveModel decides whether to run in CGB mode given a forced model
// override (or ModelAuto) and the cartridge's own CGB-flag byte.
func resolveModel(forced Model, cartMode cartridge.Mode) bool {
	switch forced {
	case ModelDMG:
		return false
	case ModelCGB:
		return true
	default:
		return cartMode != cartridge.ModeDMGOnly
	}
}

// Input carries the eight physical button states for one RunFrame call.
type Input struct {
	Right, Left, Up, Down bool
	A, B, Select, Start   bool
}

// SetInput applies the given button states to the joypad. Calling this
// with the same Input every frame is harmless: State's own Press/Release
// are idempotent and only raise the joypad interrupt on an actual
// high-to-low edge.
func (gb *GameBoy) SetInput(in Input) {
	apply := func(b joypad.Button, held bool) {
		if held {
			gb.Joypad.Press(b)
		} else {
			gb.Joypad.Release(b)
		}
	}
	apply(joypad.Right, in.Right)
	apply(joypad.Left, in.Left)
	apply(joypad.Up, in.Up)
	apply(joypad.Down, in.Down)
	apply(joypad.A, in.A)
	apply(joypad.B, in.B)
	apply(joypad.Select, in.Select)
	apply(joypad.Start, in.Start)
}

// RunFrame stores the given input, then steps the CPU until the PPU's
// frame-ready latch rises, and returns that frame. It mirrors the
// reference's run(input, cfg) contract.
func (gb *GameBoy) RunFrame(in Input) (ppu.Frame, error) {
	gb.SetInput(in)
	for !gb.PPU.FrameReady {
		cycles := gb.CPU.Step()
		if gb.CPU.IllegalOpcodeHit() {
			gb.log.WithField("pc", fmt.Sprintf("0x%04X", gb.CPU.PC)).Error("illegal opcode executed")
			return ppu.Frame{}, fmt.Errorf("%w at PC=0x%04X", ErrIllegalOpcode, gb.CPU.PC)
		}
		gb.tickAutosave(uint32(cycles))
	}
	return gb.PPU.TakeFrame(), nil
}

// tickAutosave counts elapsed machine cycles and flushes battery RAM
// once the configured interval has passed. A no-op when autosave was
// never configured (the default).
func (gb *GameBoy) tickAutosave(cycles uint32) {
	if gb.autosaveInterval == 0 {
		return
	}
	gb.cyclesSinceAutosave += cycles
	if gb.cyclesSinceAutosave >= gb.autosaveInterval {
		gb.cyclesSinceAutosave = 0
		gb.Cartridge.Save()
	}
}

// Reset performs a soft reset: every component is rebuilt from scratch
// against the same cartridge, exactly as power-cycling a physical
// console would, without reloading the ROM image itself.
func (gb *GameBoy) Reset() {
	irq := interrupts.New()
	cgbMode := gb.Model == ModelCGB
	p := ppu.New(irq, cgbMode)
	p.Palette = gb.PPU.Palette
	p.HideBackground, p.HideWindow, p.HideSprites = gb.PPU.HideBackground, gb.PPU.HideWindow, gb.PPU.HideSprites
	if cgbMode && gb.Cartridge.Header.Mode == cartridge.ModeDMGOnly {
		p.EnableCompatibilityMode(palette.SelectCompatibilityPalette(gb.Cartridge.Header.Title))
	}

	a := apu.New()
	a.ChannelMute, a.MasterMute = gb.APU.ChannelMute, gb.APU.MasterMute

	t := timer.New(irq)
	j := joypad.New(irq)
	s := serial.New(irq)
	m := mmu.New(gb.Cartridge, p, a, t, j, s, irq, cgbMode, nil)
	b := bus.New(m)
	c := cpu.New(b, irq)
	c.Debug = gb.CPU.Debug

	gb.Interrupts, gb.PPU, gb.APU, gb.Timer, gb.Joypad, gb.Serial = irq, p, a, t, j, s
	gb.MMU, gb.Bus, gb.CPU = m, b, c
	gb.cyclesSinceAutosave = 0
}

// Close flushes battery RAM/RTC to disk, matching the reference's
// cooperative-exit contract: save synchronously, then return.
func (gb *GameBoy) Close() {
	gb.Cartridge.Save()
}

// SaveState captures the full runtime state as a portable Blob.
func (gb *GameBoy) SaveState() (state.Blob, error) {
	return state.Capture(gb.components())
}

// LoadState restores a previously captured Blob. A cartridge-digest
// mismatch is returned as an error but the state is still applied, per
// internal/state's documented behavior. The current state is not pushed
// onto the rewind stack first.
func (gb *GameBoy) LoadState(b state.Blob) error {
	return state.Apply(b, gb.components())
}

func (gb *GameBoy) components() state.Components {
	return state.Components{
		CPU: gb.CPU, Interrupts: gb.Interrupts, Timer: gb.Timer, Joypad: gb.Joypad,
		Serial: gb.Serial, PPU: gb.PPU, APU: gb.APU, MMU: gb.MMU, Cartridge: gb.Cartridge,
	}
}

// PushRewind captures the current state onto the rewind ring buffer. A
// host calls this once per frame (or on whatever cadence it chooses);
// the core imposes no cadence of its own (§4.10's rewind note).
func (gb *GameBoy) PushRewind() error {
	if gb.rewind.depth() == 0 {
		return nil
	}
	b, err := gb.SaveState()
	if err != nil {
		return err
	}
	gb.rewind.push(b)
	return nil
}

// Rewind pops the most recent rewind entry and loads it, reporting
// false if the rewind stack was empty.
func (gb *GameBoy) Rewind() (bool, error) {
	b, ok := gb.rewind.pop()
	if !ok {
		return false, nil
	}
	return true, gb.LoadState(b)
}
