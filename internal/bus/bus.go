// Package bus wires the MMU, PPU, APU and timer together and drives
// them in lockstep from the CPU's machine-cycle tick. It implements
// cpu.Bus.
package bus

import "github.com/dmgo-project/dmgo/internal/mmu"

// Bus is the wiring layer between the CPU and every other component.
// Within one machine cycle, in this order: OAM DMA copies one byte if a
// transfer is in flight, the PPU runs four dots, the timer advances
// once, and the APU advances once. PPU/timer/joypad interrupt requests are
// raised directly against the shared interrupt service each component
// already holds a reference to, rather than folded in here separately.
type Bus struct {
	MMU *mmu.MMU

	// speedHold tracks the sub-cycle phase while the CPU runs in CGB
	// double speed: peripherals (PPU/timer/APU) run at the original
	// 4.194 MHz regardless of CPU speed, so every other CPU machine
	// cycle is a no-op for them.
	speedHold bool
}

// New returns a bus wired to the given MMU.
func New(m *mmu.MMU) *Bus {
	return &Bus{MMU: m}
}

func (b *Bus) Read(addr uint16) uint8     { return b.MMU.Read(addr) }
func (b *Bus) Write(addr uint16, v uint8) { b.MMU.Write(addr, v) }

// ConsumeSpeedSwitch forwards to the MMU's KEY1-driven speed switch,
// satisfying cpu.Bus for STOP.
func (b *Bus) ConsumeSpeedSwitch() bool { return b.MMU.ConsumeSpeedSwitch() }

// Tick advances every peripheral by one machine cycle, called once per
// CPU bus access or internal cycle.
func (b *Bus) Tick() {
	b.MMU.TickDMA()

	if b.MMU.IsDoubleSpeed() {
		b.speedHold = !b.speedHold
		if b.speedHold {
			return
		}
	}

	for i := 0; i < 4; i++ {
		b.MMU.PPU.Tick()
	}
	b.MMU.Timer.Tick()
	b.MMU.APU.Tick(b.MMU.Timer.ReadDIV())
}
