// Package cpu implements the Sharp SM83 core: the register file, the
// interrupt-dispatch sequence, and the two 256-entry opcode tables (the
// unprefixed set and the CB-prefixed bit-instruction set).
package cpu

import "github.com/dmgo-project/dmgo/internal/interrupts"

// ClockSpeed is the nominal single-speed Game Boy clock, in Hz.
const ClockSpeed = 4194304

// Bus is everything the CPU needs from the rest of the system. Read and
// Write only access memory; the CPU follows each of them with a Tick, so
// every read/write also advances the timer, PPU, APU, and DMA controller
// by one machine cycle, which is how the emulator keeps every subsystem
// in lockstep with instruction fetch/execute (§4.7).
type Bus interface {
	Read(addr uint16) uint8
	Write(addr uint16, value uint8)
	// Tick advances every ticked component by one machine cycle without
	// touching memory. The CPU calls it once after every Read and Write
	// and once for every cycle an instruction spends on internal work.
	Tick()
	// ConsumeSpeedSwitch performs a CGB double-speed switch if KEY1 bit 0
	// had armed one, reporting whether it did. Called by STOP.
	ConsumeSpeedSwitch() bool
}

type cpuMode uint8

const (
	modeNormal cpuMode = iota
	modeHalt
	modeHaltBug
	modeStop
)

// CPU is the Sharp SM83 execution core.
type CPU struct {
	Registers
	PC uint16
	SP uint16

	IME         bool
	imeEnqueued bool // EI's enable of IME is delayed by one instruction

	mode cpuMode

	bus           Bus
	irq           *interrupts.Service
	ticks         int  // machine cycles spent in the instruction currently executing
	illegalOpcode bool // latched by disallowedOpcode, cleared at the start of the next Step

	// Debug enables the LD B,B software breakpoint convention mooneye's
	// test ROMs use to signal "stop here and check registers". Left off
	// by default so an ordinary ROM's incidental LD B,B is just a NOP.
	Debug           bool
	debugBreakpoint bool
}

// New returns a CPU reset to the post-boot-ROM state (PC=0x0100).
func New(bus Bus, irq *interrupts.Service) *CPU {
	c := &CPU{bus: bus, irq: irq}
	c.Registers.wire()
	c.PC = 0x0100
	c.SP = 0xFFFE
	return c
}

// Step either dispatches a pending interrupt, idles one machine cycle in
// HALT/STOP, or executes exactly one instruction, and returns the number
// of machine cycles it consumed.
func (c *CPU) Step() int {
	c.ticks = 0
	c.illegalOpcode = false

	if c.mode == modeStop {
		if c.irq.Flag&(1<<interrupts.Joypad) != 0 {
			c.mode = modeNormal
		} else {
			c.internalTick()
			return c.ticks
		}
	}

	if c.serviceInterrupt() {
		return c.ticks
	}

	if c.mode == modeHalt {
		if c.irq.HasPending() {
			c.mode = modeNormal
		} else {
			c.internalTick()
			return c.ticks
		}
	}

	enqueued := c.imeEnqueued
	opcode := c.fetch()
	if c.mode == modeHaltBug {
		// the halt bug fails to advance PC past the opcode it just
		// fetched, so the same byte is read again as the next opcode
		c.PC--
		c.mode = modeNormal
	}
	if enqueued {
		c.IME = true
		c.imeEnqueued = false
	}

	instructionSet[opcode].fn(c)
	return c.ticks
}

// busRead and busWrite each consume one machine cycle, exactly like
// internalTick, since a memory access is itself a machine cycle during
// which every other component advances (§4.7's ordering contract).
func (c *CPU) busRead(addr uint16) uint8 {
	v := c.bus.Read(addr)
	c.bus.Tick()
	c.ticks++
	return v
}

func (c *CPU) busWrite(addr uint16, value uint8) {
	c.bus.Write(addr, value)
	c.bus.Tick()
	c.ticks++
}

func (c *CPU) internalTick() {
	c.bus.Tick()
	c.ticks++
}

func (c *CPU) fetch() uint8 {
	v := c.busRead(c.PC)
	c.PC++
	return v
}

func (c *CPU) readOperand() uint8 {
	return c.fetch()
}

func (c *CPU) readOperand16() uint16 {
	lo := c.readOperand()
	hi := c.readOperand()
	return uint16(hi)<<8 | uint16(lo)
}

// serviceInterrupt dispatches the highest-priority pending-and-enabled
// interrupt if IME is set, pushing PC and jumping to the fixed vector. It
// reports whether an interrupt was dispatched. IME is the CPU's alone to
// own (set/cleared by EI/DI/RETI/dispatch) — interrupts.Service only
// tracks per-source request/enable state, never a master-enable copy.
func (c *CPU) serviceInterrupt() bool {
	if !c.IME || !c.irq.HasPending() {
		return false
	}
	c.IME = false
	flag := c.irq.Next()

	c.internalTick()
	c.internalTick()
	c.push16(c.PC)
	c.PC = flag.Vector()
	c.internalTick()
	return true
}

func (c *CPU) push16(value uint16) {
	c.SP--
	c.busWrite(c.SP, uint8(value>>8))
	c.SP--
	c.busWrite(c.SP, uint8(value))
}

func (c *CPU) pop16() uint16 {
	lo := c.busRead(c.SP)
	c.SP++
	hi := c.busRead(c.SP)
	c.SP++
	return uint16(hi)<<8 | uint16(lo)
}

// Halt enters HALT mode. If IME is clear and an interrupt is already
// pending, the CPU instead exhibits the halt bug: it continues running
// but fails to advance PC on the next fetch.
func (c *CPU) Halt() {
	if !c.IME && c.irq.HasPending() {
		c.mode = modeHaltBug
		return
	}
	c.mode = modeHalt
}

// Stop resets DIV and enters STOP mode, parking the CPU until a joypad
// edge sets the joypad request bit in IF (the bus keeps ticking the
// other components meanwhile), unless KEY1 bit 0 had armed a
// double-speed switch, in which case the bus performs that switch
// instead and the CPU does not park.
func (c *CPU) Stop() {
	c.bus.Write(0xFF04, 0)
	if c.bus.ConsumeSpeedSwitch() {
		return
	}
	c.mode = modeStop
}

// EnableIME schedules IME to become set after the next instruction
// completes, matching EI's one-instruction delay on real hardware.
func (c *CPU) EnableIME() {
	c.imeEnqueued = true
}

// DisableIME clears IME immediately (DI has no delay).
func (c *CPU) DisableIME() {
	c.IME = false
	c.imeEnqueued = false
}

// Halted reports whether the CPU is in HALT or STOP mode, for the
// façade's "is the core idle" queries.
func (c *CPU) Halted() bool {
	return c.mode == modeHalt || c.mode == modeStop
}

// IllegalOpcodeHit reports whether the most recent Step executed one of
// the Sharp SM83's undefined opcodes, for the façade to surface as
// ErrIllegalOpcode.
func (c *CPU) IllegalOpcodeHit() bool {
	return c.illegalOpcode
}

// DebugBreakpointHit reports whether the CPU has executed a LD B,B
// opcode while Debug was enabled.
func (c *CPU) DebugBreakpointHit() bool {
	return c.debugBreakpoint
}
