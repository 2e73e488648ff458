package cpu

// Snapshot is the JSON-serializable state of the CPU core. CGB
// double-speed state lives on the MMU's KEY1 register (internal/mmu's
// Snapshot), not here: the CPU itself holds no speed state of its own,
// only a Bus it asks to perform the switch.
type Snapshot struct {
	A, F uint8
	B, C uint8
	D, E uint8
	H, L uint8
	PC   uint16
	SP   uint16

	IME         bool
	IMEEnqueued bool `json:"ime_enqueued"`
	Mode        uint8
}

func (c *CPU) Snapshot() Snapshot {
	return Snapshot{
		A: c.A, F: c.F, B: c.B, C: c.C, D: c.D, E: c.E, H: c.H, L: c.L,
		PC: c.PC, SP: c.SP,
		IME: c.IME, IMEEnqueued: c.imeEnqueued,
		Mode: uint8(c.mode),
	}
}

func (c *CPU) Restore(s Snapshot) {
	c.A, c.F, c.B, c.C, c.D, c.E, c.H, c.L = s.A, s.F, s.B, s.C, s.D, s.E, s.H, s.L
	c.PC, c.SP = s.PC, s.SP
	c.IME, c.imeEnqueued = s.IME, s.IMEEnqueued
	c.mode = cpuMode(s.Mode)
}
