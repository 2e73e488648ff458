package mmu

import (
	"testing"

	"github.com/dmgo-project/dmgo/internal/apu"
	"github.com/dmgo-project/dmgo/internal/cartridge"
	"github.com/dmgo-project/dmgo/internal/interrupts"
	"github.com/dmgo-project/dmgo/internal/joypad"
	"github.com/dmgo-project/dmgo/internal/ppu"
	"github.com/dmgo-project/dmgo/internal/serial"
	"github.com/dmgo-project/dmgo/internal/timer"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"
)

func newTestMMU(t *testing.T, cgb bool) *MMU {
	t.Helper()
	rom := make([]byte, 0x8000)
	if cgb {
		rom[0x143] = 0x80
	}
	cart, err := cartridge.New(rom, "", logrus.New())
	require.NoError(t, err)

	irq := interrupts.New()
	return New(cart, ppu.New(irq, cgb), apu.New(), timer.New(irq), joypad.New(irq), serial.New(irq), irq, cgb, nil)
}

func TestWorkRAMReadWrite(t *testing.T) {
	m := newTestMMU(t, false)
	m.Write(0xC012, 0x42)
	require.Equal(t, uint8(0x42), m.Read(0xC012))
}

func TestEchoRAMMirrorsWorkRAM(t *testing.T) {
	m := newTestMMU(t, false)
	m.Write(0xC100, 0x99)
	require.Equal(t, uint8(0x99), m.Read(0xE100))
}

func TestHighRAMReadWrite(t *testing.T) {
	m := newTestMMU(t, false)
	m.Write(0xFF90, 0x7A)
	require.Equal(t, uint8(0x7A), m.Read(0xFF90))
}

func TestInterruptEnableByte(t *testing.T) {
	m := newTestMMU(t, false)
	m.Write(0xFFFF, 0x1F)
	require.Equal(t, uint8(0x1F), m.Read(0xFFFF))
}

func TestSVBKSwitchesWRAMBankOnCGB(t *testing.T) {
	m := newTestMMU(t, true)
	m.Write(0xD000, 0x01) // bank 1 (default)
	m.Write(0xFF70, 0x03) // switch to bank 3
	m.Write(0xD000, 0x03)
	require.Equal(t, uint8(0x03), m.Read(0xD000))
	m.Write(0xFF70, 0x01)
	require.Equal(t, uint8(0x01), m.Read(0xD000))
}

func TestSVBKBankZeroAliasesToOne(t *testing.T) {
	m := newTestMMU(t, true)
	m.Write(0xFF70, 0x00)
	require.Equal(t, uint8(0x01), m.Read(0xFF70)&0x07)
}

func TestProhibitedRegionReadsFF(t *testing.T) {
	m := newTestMMU(t, false)
	require.Equal(t, uint8(0xFF), m.Read(0xFEA0))
	m.Write(0xFEA0, 0x55) // ignored
	require.Equal(t, uint8(0xFF), m.Read(0xFEA0))
}

func TestLCDCRoundTripsThroughPPU(t *testing.T) {
	m := newTestMMU(t, false)
	m.Write(0xFF40, 0x91)
	require.Equal(t, uint8(0x91), m.Read(0xFF40))
}

func TestOAMDMAStaysActiveAfterFirstByte(t *testing.T) {
	m := newTestMMU(t, false)
	m.Write(0xC000, 0xAB)
	m.Write(0xFF46, 0xC0) // source 0xC000
	m.TickDMA()
	require.True(t, m.PPU.DMAActive())
}
