package ppu

import "github.com/dmgo-project/dmgo/internal/ppu/palette"

// Snapshot is the JSON-serializable state of the PPU.
type Snapshot struct {
	LCDC, STAT uint8
	LY, LYC    uint8
	SCX, SCY   uint8
	WX, WY     uint8
	WindowLine uint8 `json:"window_line"`

	BGP, OBP0, OBP1 uint8
	BGPalette       palette.Snapshot `json:"bg_palette"`
	OBJPalette      palette.Snapshot `json:"obj_palette"`

	VRAM     [2][]byte `json:"vram"`
	VRAMBank uint8     `json:"vram_bank"`
	OAM      []byte    `json:"oam"`

	DMGPriority bool `json:"dmg_priority"`
	Dots        int  `json:"dots"`
}

func (p *PPU) Snapshot() Snapshot {
	s := Snapshot{
		LCDC: p.Control.Read(), STAT: p.Status.Read(),
		LY: p.LY, LYC: p.LYC, SCX: p.SCX, SCY: p.SCY, WX: p.WX, WY: p.WY,
		WindowLine: p.windowLine,
		BGP:        p.BGP, OBP0: p.OBP0, OBP1: p.OBP1,
		BGPalette: p.BGPalette.Snapshot(), OBJPalette: p.OBJPalette.Snapshot(),
		VRAMBank: p.vramBank, OAM: append([]byte(nil), p.oam[:]...),
		DMGPriority: p.dmgPrio, Dots: p.dots,
	}
	s.VRAM[0] = append([]byte(nil), p.vram[0].Bytes()...)
	if p.vram[1] != nil {
		s.VRAM[1] = append([]byte(nil), p.vram[1].Bytes()...)
	}
	return s
}

func (p *PPU) Restore(s Snapshot) {
	p.Control.Write(s.LCDC)
	p.Status.Write(s.STAT)
	p.Status.Mode = Mode(s.STAT & 0x03)
	p.LY, p.LYC, p.SCX, p.SCY, p.WX, p.WY = s.LY, s.LYC, s.SCX, s.SCY, s.WX, s.WY
	p.windowLine = s.WindowLine
	p.BGP, p.OBP0, p.OBP1 = s.BGP, s.OBP0, s.OBP1
	p.BGPalette.Restore(s.BGPalette)
	p.OBJPalette.Restore(s.OBJPalette)
	p.vramBank = s.VRAMBank
	p.dmgPrio = s.DMGPriority
	p.dots = s.Dots
	copy(p.oam[:], s.OAM)
	if s.VRAM[0] != nil {
		p.vram[0].Load(s.VRAM[0])
	}
	if s.VRAM[1] != nil && p.vram[1] != nil {
		p.vram[1].Load(s.VRAM[1])
	}
}
