package timer

import (
	"testing"

	"github.com/dmgo-project/dmgo/internal/interrupts"
	"github.com/stretchr/testify/require"
)

func TestDIVIsTopByteOfFreeRunningCounter(t *testing.T) {
	c := New(interrupts.New())
	for i := 0; i < 64; i++ { // 64 ticks * 4 = 256, DIV's one step
		c.Tick()
	}
	require.Equal(t, uint8(1), c.ReadDIV())
}

func TestWriteDIVResetsCounter(t *testing.T) {
	c := New(interrupts.New())
	for i := 0; i < 256; i++ {
		c.Tick()
	}
	c.WriteDIV(0xFF)
	require.Equal(t, uint8(0), c.ReadDIV())
}

func TestTIMAIncrementsOnSelectedBitFallingEdge(t *testing.T) {
	irq := interrupts.New()
	c := New(irq)
	c.WriteTAC(0x05) // enabled, clock select 01 -> bit 3 of the internal counter

	// bit 3 first falls after 4 ticks (counter 0->4->8->12->16, a full
	// rise-then-fall of that bit)
	for i := 0; i < 4; i++ {
		c.Tick()
	}
	require.Equal(t, uint8(1), c.ReadTIMA())
}

func TestTIMADisabledNeverIncrements(t *testing.T) {
	c := New(interrupts.New())
	c.WriteTAC(0x01) // clock select set but enable bit (0x04) clear
	for i := 0; i < 1024; i++ {
		c.Tick()
	}
	require.Equal(t, uint8(0), c.ReadTIMA())
}

func TestTIMAOverflowReloadsFromTMAAfterOneCycle(t *testing.T) {
	irq := interrupts.New()
	irq.WriteIE(1 << interrupts.Timer)
	c := New(irq)
	c.WriteTAC(0x05) // bit 3
	c.WriteTMA(0x42)
	c.WriteTIMA(0xFF)

	// the falling edge that overflows TIMA to 0
	for i := 0; i < 4; i++ {
		c.Tick()
	}
	require.Equal(t, uint8(0), c.ReadTIMA(), "TIMA should read 0 during the one-cycle reload delay")

	c.Tick()
	require.Equal(t, uint8(0x42), c.ReadTIMA())
	require.True(t, irq.HasPending())
}

func TestWriteTIMADuringReloadDelayIsAbsorbed(t *testing.T) {
	irq := interrupts.New()
	c := New(irq)
	c.WriteTAC(0x05)
	c.WriteTMA(0x10)
	c.WriteTIMA(0xFF)
	for i := 0; i < 4; i++ {
		c.Tick()
	}
	require.Equal(t, uint8(0), c.ReadTIMA())

	c.WriteTIMA(0x99) // written during the pothole cycle; must be ignored
	c.Tick()
	require.Equal(t, uint8(0x10), c.ReadTIMA())
}

func TestSnapshotRestoreRoundTrip(t *testing.T) {
	c := New(interrupts.New())
	c.WriteTAC(0x07)
	c.WriteTMA(0x55)
	for i := 0; i < 100; i++ {
		c.Tick()
	}

	snap := c.Snapshot()
	restored := New(interrupts.New())
	restored.Restore(snap)
	require.Equal(t, c.ReadDIV(), restored.ReadDIV())
	require.Equal(t, c.ReadTIMA(), restored.ReadTIMA())
	require.Equal(t, c.ReadTMA(), restored.ReadTMA())
	require.Equal(t, c.ReadTAC(), restored.ReadTAC())
}
