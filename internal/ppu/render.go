package ppu

import "github.com/dmgo-project/dmgo/internal/ppu/palette"

// bgAttributes decodes the CGB background/window tile-map attribute byte
// (stored in VRAM bank 1 at the same map offset as the tile index).
type bgAttributes struct {
	palette  uint8
	bank     uint8
	flipX    bool
	flipY    bool
	priority bool // true: BG/window pixel drawn over sprites regardless of OBJ priority bit
}

func decodeBGAttributes(v uint8) bgAttributes {
	return bgAttributes{
		palette:  v & 0x07,
		bank:     (v >> 3) & 0x01,
		flipX:    v&0x20 != 0,
		flipY:    v&0x40 != 0,
		priority: v&0x80 != 0,
	}
}

// renderScanline composes the current LY row of the frame from the
// background, window and sprite layers and writes it into p.frame.
func (p *PPU) renderScanline() {
	if p.LY >= ScreenHeight {
		return
	}

	var bgColorIdx [ScreenWidth]uint8
	var bgAttrs [ScreenWidth]bgAttributes
	var bgOpaque [ScreenWidth]bool

	windowActive := p.Control.WindowEnabled && !p.HideWindow && p.WY <= p.LY && p.WX <= 166
	usedWindow := false

	for x := 0; x < ScreenWidth; x++ {
		useWindow := windowActive && int(p.WX)-7 <= x
		var tileMapBase uint16
		var tileX, tileY uint8
		if useWindow {
			usedWindow = true
			tileMapBase = p.Control.WindowTileMapAddress
			wx := uint8(x - (int(p.WX) - 7))
			tileX, tileY = wx/8, p.windowLine/8
		} else {
			tileMapBase = p.Control.BackgroundTileMapAddress
			bx := uint8(int(p.SCX) + x)
			by := p.SCY + p.LY
			tileX, tileY = bx/8, by/8
		}

		mapOffset := tileMapBase + uint16(tileY)*32 + uint16(tileX)
		tileIdx := p.readVRAMBank(0, mapOffset)
		attrs := bgAttributes{}
		if p.cgbMode {
			attrs = decodeBGAttributes(p.readVRAMBank(1, mapOffset))
		}

		var rowInTile uint8
		if useWindow {
			rowInTile = p.windowLine % 8
		} else {
			rowInTile = (p.SCY + p.LY) % 8
		}
		if attrs.flipY {
			rowInTile = 7 - rowInTile
		}

		tileAddr := p.tileDataAddress(tileIdx)
		lo := p.readVRAMBank(attrs.bank, tileAddr+uint16(rowInTile)*2)
		hi := p.readVRAMBank(attrs.bank, tileAddr+uint16(rowInTile)*2+1)
		row := tileRow(lo, hi)

		var colInTile int
		if useWindow {
			colInTile = int(uint8(x-(int(p.WX)-7)) % 8)
		} else {
			colInTile = int(uint8(int(p.SCX)+x) % 8)
		}
		if attrs.flipX {
			colInTile = 7 - colInTile
		}

		idx := row[colInTile]
		if p.HideBackground && !useWindow {
			idx = 0
		}
		bgColorIdx[x] = idx
		bgAttrs[x] = attrs
		bgOpaque[x] = idx != 0 && (p.Control.BackgroundEnabled || p.cgbMode)
	}
	if usedWindow {
		p.windowLine++
	}

	var line [ScreenWidth][3]uint8
	for x := 0; x < ScreenWidth; x++ {
		line[x] = p.bgColor(bgColorIdx[x], bgAttrs[x])
	}

	if p.Control.SpriteEnabled && !p.HideSprites {
		p.renderSprites(&line, bgColorIdx, bgAttrs, bgOpaque)
	}

	p.frame[p.LY] = line
}

func (p *PPU) tileDataAddress(tileIdx uint8) uint16 {
	if p.Control.TileDataAddress == 0x8000 {
		return 0x8000 + uint16(tileIdx)*16
	}
	return uint16(0x9000 + int(int8(tileIdx))*16)
}

func (p *PPU) bgColor(idx uint8, attrs bgAttributes) [3]uint8 {
	if p.cgbMode {
		return palette.RGB888(p.BGPalette.RGB555(attrs.palette, idx))
	}
	shades := paletteToShades(p.BGP)
	return p.Palette.Colors[shades[idx]]
}

func (p *PPU) objColor(idx, dmgPal, cgbPal uint8) [3]uint8 {
	if p.cgbMode {
		pal := cgbPal
		if p.compatMode {
			pal = dmgPal
		}
		return palette.RGB888(p.OBJPalette.RGB555(pal, idx))
	}
	reg := p.OBP0
	if dmgPal == 1 {
		reg = p.OBP1
	}
	shades := paletteToShades(reg)
	return p.Palette.Colors[shades[idx]]
}

func paletteToShades(v uint8) [4]uint8 {
	return [4]uint8{v & 0x03, (v >> 2) & 0x03, (v >> 4) & 0x03, (v >> 6) & 0x03}
}

// renderSprites scans OAM for up to 10 sprites intersecting the current
// scanline, orders them by priority, and overlays any opaque pixel onto
// the already-composited background/window line.
func (p *PPU) renderSprites(line *[ScreenWidth][3]uint8, bgColorIdx [ScreenWidth]uint8, bgAttrs [ScreenWidth]bgAttributes, bgOpaque [ScreenWidth]bool) {
	height := int(p.Control.SpriteSize)
	var visible []Sprite
	for i := 0; i < 40 && len(visible) < 10; i++ {
		raw := p.oam[i*4 : i*4+4]
		s := decodeSprite(raw, i)
		y := int(s.Y) - 16
		if int(p.LY) >= y && int(p.LY) < y+height {
			visible = append(visible, s)
		}
	}

	// priority ordering: on CGB (unless OPRI selects DMG mode), lower OAM
	// index always wins; on DMG, and on CGB with OPRI set, lower X wins,
	// with OAM index breaking ties.
	useDMGPriority := !p.cgbMode || p.dmgPrio
	if useDMGPriority {
		for i := 1; i < len(visible); i++ {
			j := i
			for j > 0 && visible[j].X < visible[j-1].X {
				visible[j], visible[j-1] = visible[j-1], visible[j]
				j--
			}
		}
	}

	for x := 0; x < ScreenWidth; x++ {
		for _, s := range visible {
			spriteX := int(s.X) - 8
			if x < spriteX || x >= spriteX+8 {
				continue
			}
			row := int(p.LY) - (int(s.Y) - 16)
			if s.FlipY {
				row = height - 1 - row
			}
			tile := s.Tile
			if height == 16 {
				tile &^= 0x01
				if row >= 8 {
					tile |= 0x01
					row -= 8
				}
			}
			col := x - spriteX
			if s.FlipX {
				col = 7 - col
			}
			tileAddr := 0x8000 + uint16(tile)*16
			lo := p.readVRAMBank(s.Bank, tileAddr+uint16(row)*2)
			hi := p.readVRAMBank(s.Bank, tileAddr+uint16(row)*2+1)
			pixels := tileRow(lo, hi)
			idx := pixels[col]
			if idx == 0 {
				continue
			}

			bgWins := s.Priority && bgOpaque[x]
			if p.cgbMode && bgAttrs[x].priority && bgColorIdx[x] != 0 {
				bgWins = true
			}
			if bgWins {
				break
			}

			line[x] = p.objColor(idx, s.DMGPalette, s.CGBPalette)
			break
		}
	}
}
