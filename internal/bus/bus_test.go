package bus

import (
	"testing"

	"github.com/dmgo-project/dmgo/internal/apu"
	"github.com/dmgo-project/dmgo/internal/cartridge"
	"github.com/dmgo-project/dmgo/internal/interrupts"
	"github.com/dmgo-project/dmgo/internal/joypad"
	"github.com/dmgo-project/dmgo/internal/mmu"
	"github.com/dmgo-project/dmgo/internal/ppu"
	"github.com/dmgo-project/dmgo/internal/serial"
	"github.com/dmgo-project/dmgo/internal/timer"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"
)

func newTestBus(t *testing.T) *Bus {
	t.Helper()
	return newBusWithMode(t, false)
}

func newBusWithMode(t *testing.T, cgb bool) *Bus {
	t.Helper()
	rom := make([]byte, 0x8000)
	if cgb {
		rom[0x143] = 0x80
	}
	cart, err := cartridge.New(rom, "", logrus.New())
	require.NoError(t, err)

	irq := interrupts.New()
	p := ppu.New(irq, cgb)
	p.WriteLCDC(0x91)
	m := mmu.New(cart, p, apu.New(), timer.New(irq), joypad.New(irq), serial.New(irq), irq, cgb, nil)
	return New(m)
}

func TestBusReadWriteDelegatesToMMU(t *testing.T) {
	b := newTestBus(t)
	b.Write(0xC000, 0x42)
	require.Equal(t, uint8(0x42), b.Read(0xC000))
}

func TestBusTickAdvancesPPUAndRequestsVBlank(t *testing.T) {
	b := newTestBus(t)
	for i := 0; i < 70224/4; i++ {
		b.Tick()
	}
	require.True(t, b.MMU.IRQ.Flag&(1<<interrupts.VBlank) != 0)
	require.True(t, b.MMU.PPU.FrameReady)
}

func TestConsumeSpeedSwitchFlipsKEY1(t *testing.T) {
	b := newBusWithMode(t, true)
	require.False(t, b.MMU.IsDoubleSpeed())
	b.Write(0xFF4D, 0x01) // arm a speed switch
	require.True(t, b.ConsumeSpeedSwitch())
	require.True(t, b.MMU.IsDoubleSpeed())
	require.False(t, b.ConsumeSpeedSwitch()) // already consumed
}

func TestBusTickAdvancesTimer(t *testing.T) {
	b := newTestBus(t)
	b.Write(0xFF07, 0x05) // enable, fastest clock select
	for i := 0; i < 20; i++ {
		b.Tick()
	}
	require.NotEqual(t, uint8(0), b.Read(0xFF05))
}
