package cpu

import (
	"testing"

	"github.com/dmgo-project/dmgo/internal/interrupts"
	"github.com/stretchr/testify/require"
)

// fakeBus is a flat 64 KiB address space with a tick counter, standing
// in for the MMU/timer/PPU/APU wiring layer in isolation tests.
type fakeBus struct {
	mem          [0x10000]byte
	ticks        int
	speedPending bool
}

func (b *fakeBus) Read(addr uint16) uint8         { return b.mem[addr] }
func (b *fakeBus) Write(addr uint16, value uint8) { b.mem[addr] = value }
func (b *fakeBus) Tick()                          { b.ticks++ }

func (b *fakeBus) ConsumeSpeedSwitch() bool {
	if !b.speedPending {
		return false
	}
	b.speedPending = false
	return true
}

func newTestCPU() (*CPU, *fakeBus) {
	bus := &fakeBus{}
	irq := interrupts.New()
	c := New(bus, irq)
	c.PC = 0xC000
	return c, bus
}

func TestStopHaltsWithoutPendingSpeedSwitch(t *testing.T) {
	c, bus := newTestCPU()
	c.Stop()
	require.True(t, c.Halted())
	require.Equal(t, 0, bus.ticks) // ConsumeSpeedSwitch reported nothing pending
}

func TestStopPerformsArmedSpeedSwitchInsteadOfHalting(t *testing.T) {
	c, bus := newTestCPU()
	bus.speedPending = true
	c.Stop()
	require.False(t, c.Halted())
	require.False(t, bus.speedPending) // consumed
}

func TestNOPTakesOneMachineCycle(t *testing.T) {
	c, bus := newTestCPU()
	bus.mem[0xC000] = 0x00
	cycles := c.Step()
	require.Equal(t, 1, cycles)
	require.Equal(t, uint16(0xC001), c.PC)
}

func TestIncDecFlags(t *testing.T) {
	c, bus := newTestCPU()
	bus.mem[0xC000] = 0x3C // INC A
	c.A = 0xFF
	c.Step()
	require.Zero(t, c.A)
	require.True(t, c.flag(FlagZ))
	require.True(t, c.flag(FlagH))
	require.False(t, c.flag(FlagN))
}

func TestLDRRImmediateAndIndirect(t *testing.T) {
	c, bus := newTestCPU()
	bus.mem[0xC000] = 0x21 // LD HL,d16
	bus.mem[0xC001] = 0x34
	bus.mem[0xC002] = 0x12
	c.Step()
	require.Equal(t, uint16(0x1234), c.HL.Uint16())

	bus.mem[0xC003] = 0x36 // LD (HL),d8
	bus.mem[0xC004] = 0x99
	c.Step()
	require.Equal(t, uint8(0x99), bus.mem[0x1234])
}

func TestAddSetsHalfCarryWithoutCarry(t *testing.T) {
	c, bus := newTestCPU()
	c.A = 0x0F
	bus.mem[0xC000] = 0xC6 // ADD A,d8
	bus.mem[0xC001] = 0x01
	c.Step()
	require.Equal(t, uint8(0x10), c.A)
	require.True(t, c.flag(FlagH))
	require.False(t, c.flag(FlagC))
}

func TestConditionalJumpTakesExtraCycleWhenTaken(t *testing.T) {
	c, bus := newTestCPU()
	bus.mem[0xC000] = 0x20 // JR NZ,r8
	bus.mem[0xC001] = 0x05
	c.setFlag(FlagZ, false)
	cycles := c.Step()
	require.Equal(t, 3, cycles)
	require.Equal(t, uint16(0xC007), c.PC)

	c2, bus2 := newTestCPU()
	bus2.mem[0xC000] = 0x20
	bus2.mem[0xC001] = 0x05
	c2.setFlag(FlagZ, true)
	cycles2 := c2.Step()
	require.Equal(t, 2, cycles2)
	require.Equal(t, uint16(0xC002), c2.PC)
}

func TestCBBitInstructionDoesNotWriteBack(t *testing.T) {
	c, bus := newTestCPU()
	c.HL.SetUint16(0x1234)
	bus.mem[0x1234] = 0x00
	bus.mem[0xC000] = 0xCB
	bus.mem[0xC001] = 0x46 // BIT 0,(HL)
	c.Step()
	require.True(t, c.flag(FlagZ))
	require.Equal(t, uint8(0x00), bus.mem[0x1234])
}

func TestCBSetWritesBack(t *testing.T) {
	c, bus := newTestCPU()
	c.HL.SetUint16(0x1234)
	bus.mem[0x1234] = 0x00
	bus.mem[0xC000] = 0xCB
	bus.mem[0xC001] = 0xC6 // SET 0,(HL)
	c.Step()
	require.Equal(t, uint8(0x01), bus.mem[0x1234])
}

func TestHaltBugRereadsNextByteAsOpcode(t *testing.T) {
	c, bus := newTestCPU()
	irq := interrupts.New()
	irq.Enable = 0x01
	irq.Flag = 0x01
	c.irq = irq
	c.IME = false

	bus.mem[0xC000] = 0x76 // HALT
	bus.mem[0xC001] = 0x3C // INC A (will be read twice due to the bug)
	c.Step()               // executes HALT, detects the bug
	require.Equal(t, uint16(0xC001), c.PC)

	c.Step() // first INC A: PC does not advance past 0xC001
	require.Equal(t, uint8(1), c.A)
	require.Equal(t, uint16(0xC001), c.PC)
}

func TestInterruptDispatchPushesPCAndJumpsToVector(t *testing.T) {
	c, bus := newTestCPU()
	irq := interrupts.New()
	irq.Enable = 0x01
	irq.Flag = 0x01
	c.irq = irq
	c.IME = true
	c.PC = 0xC010
	c.SP = 0xFFFE

	cycles := c.Step()
	require.Equal(t, 5, cycles)
	require.Equal(t, interrupts.VBlank.Vector(), c.PC)
	require.False(t, c.IME)
	require.Equal(t, uint8(0xC0), bus.mem[0xFFFD])
	require.Equal(t, uint8(0x10), bus.mem[0xFFFC])
}
