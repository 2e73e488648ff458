package cpu

// cbInstructionSet holds the 256 CB-prefixed opcodes. The set is fully
// regular — eight shift/rotate operations and BIT/RES/SET for each of
// eight bit indices, each applied to one of the same eight operand slots
// used by the main LD r,r' block (B C D E H L (HL) A) — so it is built
// programmatically rather than written out 256 times by hand.
var cbInstructionSet [256]Instruction

func init() {
	rotateOps := [8]func(c *CPU, v uint8) uint8{
		(*CPU).rlc, (*CPU).rrc, (*CPU).rl, (*CPU).rr,
		(*CPU).sla, (*CPU).sra, (*CPU).swap, (*CPU).srl,
	}
	rotateNames := [8]string{"RLC", "RRC", "RL", "RR", "SLA", "SRA", "SWAP", "SRL"}

	for op := uint8(0); op < 8; op++ {
		for slot := uint8(0); slot < 8; slot++ {
			opcode := op*8 + slot
			o, s := op, slot
			cbInstructionSet[opcode] = Instruction{
				name: rotateNames[op],
				fn: func(c *CPU) {
					result := rotateOps[o](c, c.reg8(s))
					c.setReg8(s, result)
				},
			}
		}
	}

	for bit := uint8(0); bit < 8; bit++ {
		for slot := uint8(0); slot < 8; slot++ {
			b, s := bit, slot
			cbInstructionSet[0x40+b*8+s] = Instruction{
				name: "BIT n,r",
				fn:   func(c *CPU) { c.bit(b, c.reg8(s)) },
			}
			cbInstructionSet[0x80+b*8+s] = Instruction{
				name: "RES n,r",
				fn: func(c *CPU) {
					v := c.reg8(s) &^ (1 << b)
					c.setReg8(s, v)
				},
			}
			cbInstructionSet[0xC0+b*8+s] = Instruction{
				name: "SET n,r",
				fn: func(c *CPU) {
					v := c.reg8(s) | (1 << b)
					c.setReg8(s, v)
				},
			}
		}
	}
}
