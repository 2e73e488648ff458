// Package mmu unifies the Game Boy's 64 KiB address space: work RAM,
// high RAM, the I/O register file, the interrupt-enable byte, and the
// cartridge, timer and joypad ports. It delegates PPU- and APU-owned
// ranges to those components directly rather than shadowing their
// registers locally.
package mmu

import (
	"github.com/dmgo-project/dmgo/internal/apu"
	"github.com/dmgo-project/dmgo/internal/cartridge"
	"github.com/dmgo-project/dmgo/internal/interrupts"
	"github.com/dmgo-project/dmgo/internal/joypad"
	"github.com/dmgo-project/dmgo/internal/ppu"
	"github.com/dmgo-project/dmgo/internal/ram"
	"github.com/dmgo-project/dmgo/internal/serial"
	"github.com/dmgo-project/dmgo/internal/timer"
)

// MMU is the memory management unit. It is constructed once per loaded
// cartridge and wired to the other components by the bus.
type MMU struct {
	Cart *cartridge.Cartridge

	PPU   *ppu.PPU
	APU   *apu.APU
	Timer *timer.Controller
	Joy   *joypad.State
	Serial *serial.Controller
	IRQ   *interrupts.Service

	wram     [8]*ram.RAM // bank 0 fixed, banks 1-7 switchable via SVBK (CGB only)
	wramBank uint8
	hram     *ram.RAM

	cgbMode bool
	key0    uint8 // CGB compatibility-mode byte written by the boot ROM
	key1    uint8 // CGB KEY1 speed-switch register

	bootROM      []byte
	bootDisabled bool
}

// New returns an MMU wired to the given components. bootROM may be nil
// to start execution directly at the cartridge entry point.
func New(cart *cartridge.Cartridge, p *ppu.PPU, a *apu.APU, t *timer.Controller, j *joypad.State, s *serial.Controller, irq *interrupts.Service, cgbMode bool, bootROM []byte) *MMU {
	m := &MMU{
		Cart: cart, PPU: p, APU: a, Timer: t, Joy: j, Serial: s, IRQ: irq,
		cgbMode: cgbMode, bootROM: bootROM, bootDisabled: bootROM == nil,
		hram: ram.New(0x7F), wramBank: 1,
	}
	banks := 1
	if cgbMode {
		banks = 8
	}
	for i := 0; i < banks; i++ {
		m.wram[i] = ram.New(0x1000)
	}
	return m
}

func (m *MMU) wramHighBank() *ram.RAM {
	if m.cgbMode && m.wram[m.wramBank] != nil {
		return m.wram[m.wramBank]
	}
	return m.wram[1]
}

// Read implements the guest's view of the 64 KiB address space.
func (m *MMU) Read(addr uint16) uint8 {
	switch {
	case addr <= 0x00FF && !m.bootDisabled:
		return m.bootROM[addr]
	case m.cgbMode && addr >= 0x0200 && addr < 0x0900 && !m.bootDisabled:
		return m.bootROM[addr]
	case addr <= 0x7FFF:
		return m.Cart.Read(addr)
	case addr <= 0x9FFF:
		return m.PPU.ReadVRAM(addr)
	case addr <= 0xBFFF:
		return m.Cart.Read(addr)
	case addr <= 0xCFFF:
		return m.wram[0].Read(addr - 0xC000)
	case addr <= 0xDFFF:
		return m.wramHighBank().Read(addr - 0xD000)
	case addr <= 0xFDFF:
		return m.Read(addr - 0x2000) // echo of 0xC000-0xDDFF
	case addr <= 0xFE9F:
		return m.PPU.ReadOAM(addr)
	case addr <= 0xFEFF:
		return 0xFF // prohibited region
	case addr <= 0xFF7F:
		return m.readIO(addr)
	case addr <= 0xFFFE:
		return m.hram.Read(addr - 0xFF80)
	default: // 0xFFFF
		return m.IRQ.ReadIE()
	}
}

// Write implements the guest's view of the 64 KiB address space.
func (m *MMU) Write(addr uint16, v uint8) {
	switch {
	case addr <= 0x7FFF:
		m.Cart.Write(addr, v)
	case addr <= 0x9FFF:
		m.PPU.WriteVRAM(addr, v)
	case addr <= 0xBFFF:
		m.Cart.Write(addr, v)
	case addr <= 0xCFFF:
		m.wram[0].Write(addr-0xC000, v)
	case addr <= 0xDFFF:
		m.wramHighBank().Write(addr-0xD000, v)
	case addr <= 0xFDFF:
		m.Write(addr-0x2000, v)
	case addr <= 0xFE9F:
		m.PPU.WriteOAM(addr, v)
	case addr <= 0xFEFF:
		// prohibited region, writes ignored
	case addr <= 0xFF7F:
		m.writeIO(addr, v)
	case addr <= 0xFFFE:
		m.hram.Write(addr-0xFF80, v)
	default:
		m.IRQ.WriteIE(v)
	}
}

// TickDMA advances OAM DMA by one machine cycle if a transfer is
// active, copying one byte from the DMA source into OAM via the MMU's
// own Read so mirrored/banked sources resolve correctly.
func (m *MMU) TickDMA() {
	src, oamOffset, ok := m.PPU.StepDMA()
	if !ok {
		return
	}
	m.PPU.WriteOAMDMA(oamOffset, m.Read(src))
}

// IsDoubleSpeed reports whether KEY1 has the active double-speed bit
// set (bit 7), consulted by the bus to decide how many PPU/APU/timer
// advances correspond to one CPU machine cycle.
func (m *MMU) IsDoubleSpeed() bool { return m.key1&0x80 != 0 }

// ConsumeSpeedSwitch is consulted by STOP (via the bus) when KEY1 bit 0
// requested a switch; it flips the active-speed bit, clears the
// request, and reports whether a switch was actually performed.
func (m *MMU) ConsumeSpeedSwitch() bool {
	if m.key1&0x01 == 0 {
		return false
	}
	m.key1 ^= 0x80
	m.key1 &^= 0x01
	return true
}
