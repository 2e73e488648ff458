// Package ppu implements the Game Boy's picture processing unit: the
// OAM-scan/pixel-transfer/HBlank/VBlank dot state machine, background,
// window and sprite compositing for both DMG and CGB, and OAM DMA.
package ppu

import (
	"github.com/dmgo-project/dmgo/internal/interrupts"
	"github.com/dmgo-project/dmgo/internal/ppu/palette"
	"github.com/dmgo-project/dmgo/internal/ram"
)

const (
	ScreenWidth  = 160
	ScreenHeight = 144

	dotsOAMScan       = 80
	dotsPixelTransfer = 172
	dotsHBlank        = 204
	dotsPerLine       = dotsOAMScan + dotsPixelTransfer + dotsHBlank
	scanlinesPerFrame = 154
)

// Frame is a fully rendered RGB888 frame, row-major, top-left origin.
type Frame [ScreenHeight][ScreenWidth][3]uint8

// PPU renders one frame every 70224 dots (456 dots/line x 154 lines).
type PPU struct {
	Control Control
	Status  Status

	LY, LYC     uint8
	SCX, SCY    uint8
	WX, WY      uint8
	windowLine  uint8
	windowDrawn bool // whether the window was drawn on the current scanline

	BGP, OBP0, OBP1 uint8

	BGPalette  palette.CGB
	OBJPalette palette.CGB

	// Palette is the DMG palette used to shade BGP/OBP0/OBP1 color
	// indices when the PPU runs in DMG mode. In CGB mode, DMG-compatibility
	// mode included, colors come from the CGB palette RAM instead and this
	// field is unused.
	// Defaults to palette.Greyscale; a host may substitute a classic
	// green-tinted palette or similar.
	Palette palette.Monochrome

	vram     [2]*ram.RAM
	vramBank uint8
	oam      [160]byte

	cgbMode  bool
	dmgPrio  bool // OPRI register: true selects DMG (x-coordinate) sprite priority

	// compatMode is set when a DMG-only cartridge is running on CGB
	// hardware: OBJ rendering then picks its CGB palette slot from each
	// sprite's legacy OBP0/OBP1 attribute bit instead of its (unused,
	// always zero) CGB palette number, matching the real boot ROM's
	// behavior. See EnableCompatibilityMode.
	compatMode bool

	// HideBackground/HideWindow/HideSprites are host debug toggles, not
	// emulated hardware state: they let a front end isolate one layer
	// without touching LCDC, and are never part of a save state.
	HideBackground bool
	HideWindow     bool
	HideSprites    bool

	dma dmaState

	dots int

	frame      Frame
	FrameReady bool

	irq *interrupts.Service
}

type dmaState struct {
	active   bool
	source   uint16
	progress int
}

// New returns a PPU with VRAM bank 1 allocated only when cgbMode is true.
func New(irq *interrupts.Service, cgbMode bool) *PPU {
	p := &PPU{Control: newControl(), irq: irq, cgbMode: cgbMode, Palette: palette.Greyscale}
	p.vram[0] = ram.New(8 * 1024)
	if cgbMode {
		p.vram[1] = ram.New(8 * 1024)
	}
	return p
}

// EnableCompatibilityMode preloads BG/OBJ CGB palette RAM with a
// built-in palette set and switches OBJ palette selection over to each
// sprite's legacy OBP0/OBP1 attribute bit, mirroring what CGB's own
// boot ROM does before handing control to a DMG-only cartridge. Call
// only when cgbMode is true.
func (p *PPU) EnableCompatibilityMode(e palette.CompatibilityEntry) {
	p.compatMode = true
	loadSlot := func(cgb *palette.CGB, mono palette.Monochrome, slot uint8) {
		cgb.WriteSpec(slot*8 | 0x80)
		for _, c := range mono.Colors {
			word := palette.BGR555(c[0], c[1], c[2])
			cgb.WriteData(uint8(word))
			cgb.WriteData(uint8(word >> 8))
		}
	}
	loadSlot(&p.BGPalette, e.BG, 0)
	loadSlot(&p.OBJPalette, e.OBJ0, 0)
	loadSlot(&p.OBJPalette, e.OBJ1, 1)
}

// Tick advances the PPU by one machine cycle (4 dots). OAM DMA is
// driven separately by the bus via StepDMA, since it needs to read the
// transfer source through the full memory map, not just VRAM/OAM.
func (p *PPU) Tick() {
	if !p.Control.Enabled {
		return
	}

	prevSignal := p.Status.signalsInterrupt()
	p.advanceDots(4)
	newSignal := p.Status.signalsInterrupt()
	if newSignal && !prevSignal {
		p.irq.Request(interrupts.LCDStat)
	}
}

func (p *PPU) advanceDots(n int) {
	p.dots += n
	switch p.Status.Mode {
	case OAMScan:
		if p.dots >= dotsOAMScan {
			p.dots -= dotsOAMScan
			p.Status.Mode = PixelTransfer
		}
	case PixelTransfer:
		if p.dots >= dotsPixelTransfer {
			p.dots -= dotsPixelTransfer
			p.renderScanline()
			p.Status.Mode = HBlank
		}
	case HBlank:
		if p.dots >= dotsHBlank {
			p.dots -= dotsHBlank
			p.nextLine()
			if p.LY == ScreenHeight {
				p.Status.Mode = VBlank
				p.irq.Request(interrupts.VBlank)
				p.FrameReady = true
			} else {
				p.Status.Mode = OAMScan
			}
		}
	case VBlank:
		if p.dots >= dotsPerLine {
			p.dots -= dotsPerLine
			p.nextLine()
			if p.LY >= scanlinesPerFrame {
				p.LY = 0
				p.windowLine = 0
				p.Status.Mode = OAMScan
				p.checkLYC()
			}
		}
	}
}

func (p *PPU) nextLine() {
	p.LY++
	p.checkLYC()
}

func (p *PPU) checkLYC() {
	p.Status.Coincidence = p.LY == p.LYC
}

// TakeFrame returns the most recently completed frame and clears the
// ready flag.
func (p *PPU) TakeFrame() Frame {
	p.FrameReady = false
	return p.frame
}

// --- register I/O ---

func (p *PPU) WriteLCDC(v uint8) {
	wasOn := p.Control.Enabled
	p.Control.Write(v)
	if wasOn && !p.Control.Enabled {
		p.frame = Frame{}
		p.Status.Mode = HBlank
		p.LY = 0
		p.dots = 0
	} else if !wasOn && p.Control.Enabled {
		p.dots = 0
		p.Status.Mode = OAMScan
		p.checkLYC()
	}
}

func (p *PPU) ReadLCDC() uint8 { return p.Control.Read() }
func (p *PPU) WriteSTAT(v uint8) { p.Status.Write(v) }
func (p *PPU) ReadSTAT() uint8   { return p.Status.Read() }

func (p *PPU) WriteLY(uint8)  {} // LY is read-only; writes are ignored
func (p *PPU) ReadLY() uint8  { return p.LY }
func (p *PPU) WriteLYC(v uint8) {
	p.LYC = v
	p.checkLYC()
}
func (p *PPU) ReadLYC() uint8 { return p.LYC }

// WriteOPRI sets the CGB sprite-priority mode register (0xFF6C). Bit 0
// set selects DMG x-coordinate priority even in CGB mode.
func (p *PPU) WriteOPRI(v uint8) { p.dmgPrio = v&0x01 != 0 }
func (p *PPU) ReadOPRI() uint8 {
	if p.dmgPrio {
		return 0x01
	}
	return 0x00
}

func (p *PPU) WriteVBK(v uint8) {
	if p.cgbMode {
		p.vramBank = v & 0x01
	}
}
func (p *PPU) ReadVBK() uint8 { return 0xFE | p.vramBank }

func (p *PPU) ReadVRAM(addr uint16) uint8 {
	return p.vram[p.vramBank].Read(addr - 0x8000)
}

func (p *PPU) WriteVRAM(addr uint16, v uint8) {
	p.vram[p.vramBank].Write(addr-0x8000, v)
}

// readVRAMBank reads from a specific bank regardless of the current VBK
// selection, used by the background/window renderer to fetch CGB tile
// attributes (always stored in bank 1).
func (p *PPU) readVRAMBank(bank uint8, addr uint16) uint8 {
	return p.vram[bank].Read(addr - 0x8000)
}

func (p *PPU) ReadOAM(addr uint16) uint8 {
	if p.dma.active {
		return 0xFF
	}
	return p.oam[addr-0xFE00]
}

func (p *PPU) WriteOAM(addr uint16, v uint8) {
	if p.dma.active {
		return
	}
	p.oam[addr-0xFE00] = v
}

// WriteOAMDMA writes directly into OAM bypassing the CPU-access lock,
// for the DMA engine's own transfer (which is the only thing allowed to
// touch OAM while it is active).
func (p *PPU) WriteOAMDMA(offset int, v uint8) {
	p.oam[offset] = v
}

// StartDMA begins a 160-cycle OAM DMA transfer from source*0x100.
func (p *PPU) StartDMA(source uint8) {
	p.dma = dmaState{active: true, source: uint16(source) << 8}
}

// StepDMA advances an active OAM DMA transfer by one machine cycle. It
// returns the source address to read and the OAM offset to write this
// cycle, and whether a copy should occur at all (false once no
// transfer is in flight). The bus performs the actual read through the
// full memory map and writes the result back via WriteOAMDMA, since the
// PPU itself has no access to cartridge/work RAM.
func (p *PPU) StepDMA() (src uint16, oamOffset int, ok bool) {
	if !p.dma.active {
		return 0, 0, false
	}
	src = p.dma.source + uint16(p.dma.progress)
	oamOffset = p.dma.progress
	p.dma.progress++
	if p.dma.progress >= 160 {
		p.dma.active = false
	}
	return src, oamOffset, true
}

func (p *PPU) DMAActive() bool  { return p.dma.active }
func (p *PPU) DMAProgress() int { return p.dma.progress }
