package cpu

// instructionSet holds the 256 unprefixed opcodes.
var instructionSet = [256]Instruction{
	0x00: {"NOP", func(c *CPU) {}},
	0x01: {"LD BC,d16", func(c *CPU) { c.loadReg16Imm(c.BC) }},
	0x02: {"LD (BC),A", func(c *CPU) { c.loadRegToMem(c.BC.Uint16(), c.A) }},
	0x03: {"INC BC", func(c *CPU) { c.internalTick(); c.BC.SetUint16(c.BC.Uint16() + 1) }},
	0x04: {"INC B", func(c *CPU) { c.B = c.inc8(c.B) }},
	0x05: {"DEC B", func(c *CPU) { c.B = c.dec8(c.B) }},
	0x06: {"LD B,d8", func(c *CPU) { c.loadReg8Imm(&c.B) }},
	0x07: {"RLCA", func(c *CPU) { c.A = c.rlc(c.A); c.setFlag(FlagZ, false) }},
	0x08: {"LD (a16),SP", func(c *CPU) {
		addr := c.readOperand16()
		c.busWrite(addr, uint8(c.SP))
		c.busWrite(addr+1, uint8(c.SP>>8))
	}},
	0x09: {"ADD HL,BC", func(c *CPU) { c.internalTick(); c.addHL(c.BC.Uint16()) }},
	0x0A: {"LD A,(BC)", func(c *CPU) { c.loadMemToReg(&c.A, c.BC.Uint16()) }},
	0x0B: {"DEC BC", func(c *CPU) { c.internalTick(); c.BC.SetUint16(c.BC.Uint16() - 1) }},
	0x0C: {"INC C", func(c *CPU) { c.C = c.inc8(c.C) }},
	0x0D: {"DEC C", func(c *CPU) { c.C = c.dec8(c.C) }},
	0x0E: {"LD C,d8", func(c *CPU) { c.loadReg8Imm(&c.C) }},
	0x0F: {"RRCA", func(c *CPU) { c.A = c.rrc(c.A); c.setFlag(FlagZ, false) }},

	0x10: {"STOP", func(c *CPU) { c.readOperand(); c.Stop() }},
	0x11: {"LD DE,d16", func(c *CPU) { c.loadReg16Imm(c.DE) }},
	0x12: {"LD (DE),A", func(c *CPU) { c.loadRegToMem(c.DE.Uint16(), c.A) }},
	0x13: {"INC DE", func(c *CPU) { c.internalTick(); c.DE.SetUint16(c.DE.Uint16() + 1) }},
	0x14: {"INC D", func(c *CPU) { c.D = c.inc8(c.D) }},
	0x15: {"DEC D", func(c *CPU) { c.D = c.dec8(c.D) }},
	0x16: {"LD D,d8", func(c *CPU) { c.loadReg8Imm(&c.D) }},
	0x17: {"RLA", func(c *CPU) { c.A = c.rl(c.A); c.setFlag(FlagZ, false) }},
	0x18: {"JR r8", func(c *CPU) { c.jumpRelativeIf(true) }},
	0x19: {"ADD HL,DE", func(c *CPU) { c.internalTick(); c.addHL(c.DE.Uint16()) }},
	0x1A: {"LD A,(DE)", func(c *CPU) { c.loadMemToReg(&c.A, c.DE.Uint16()) }},
	0x1B: {"DEC DE", func(c *CPU) { c.internalTick(); c.DE.SetUint16(c.DE.Uint16() - 1) }},
	0x1C: {"INC E", func(c *CPU) { c.E = c.inc8(c.E) }},
	0x1D: {"DEC E", func(c *CPU) { c.E = c.dec8(c.E) }},
	0x1E: {"LD E,d8", func(c *CPU) { c.loadReg8Imm(&c.E) }},
	0x1F: {"RRA", func(c *CPU) { c.A = c.rr(c.A); c.setFlag(FlagZ, false) }},

	0x20: {"JR NZ,r8", func(c *CPU) { c.jumpRelativeIf(!c.flag(FlagZ)) }},
	0x21: {"LD HL,d16", func(c *CPU) { c.loadReg16Imm(c.HL) }},
	0x22: {"LD (HL+),A", func(c *CPU) { c.loadRegToMem(c.HL.Uint16(), c.A); c.HL.SetUint16(c.HL.Uint16() + 1) }},
	0x23: {"INC HL", func(c *CPU) { c.internalTick(); c.HL.SetUint16(c.HL.Uint16() + 1) }},
	0x24: {"INC H", func(c *CPU) { c.H = c.inc8(c.H) }},
	0x25: {"DEC H", func(c *CPU) { c.H = c.dec8(c.H) }},
	0x26: {"LD H,d8", func(c *CPU) { c.loadReg8Imm(&c.H) }},
	0x27: {"DAA", func(c *CPU) { c.daa() }},
	0x28: {"JR Z,r8", func(c *CPU) { c.jumpRelativeIf(c.flag(FlagZ)) }},
	0x29: {"ADD HL,HL", func(c *CPU) { c.internalTick(); c.addHL(c.HL.Uint16()) }},
	0x2A: {"LD A,(HL+)", func(c *CPU) { c.loadMemToReg(&c.A, c.HL.Uint16()); c.HL.SetUint16(c.HL.Uint16() + 1) }},
	0x2B: {"DEC HL", func(c *CPU) { c.internalTick(); c.HL.SetUint16(c.HL.Uint16() - 1) }},
	0x2C: {"INC L", func(c *CPU) { c.L = c.inc8(c.L) }},
	0x2D: {"DEC L", func(c *CPU) { c.L = c.dec8(c.L) }},
	0x2E: {"LD L,d8", func(c *CPU) { c.loadReg8Imm(&c.L) }},
	0x2F: {"CPL", func(c *CPU) { c.A = ^c.A; c.setFlag(FlagN, true); c.setFlag(FlagH, true) }},

	0x30: {"JR NC,r8", func(c *CPU) { c.jumpRelativeIf(!c.flag(FlagC)) }},
	0x31: {"LD SP,d16", func(c *CPU) { c.SP = c.readOperand16() }},
	0x32: {"LD (HL-),A", func(c *CPU) { c.loadRegToMem(c.HL.Uint16(), c.A); c.HL.SetUint16(c.HL.Uint16() - 1) }},
	0x33: {"INC SP", func(c *CPU) { c.internalTick(); c.SP++ }},
	0x34: {"INC (HL)", func(c *CPU) {
		addr := c.HL.Uint16()
		c.busWrite(addr, c.inc8(c.busRead(addr)))
	}},
	0x35: {"DEC (HL)", func(c *CPU) {
		addr := c.HL.Uint16()
		c.busWrite(addr, c.dec8(c.busRead(addr)))
	}},
	0x36: {"LD (HL),d8", func(c *CPU) { c.busWrite(c.HL.Uint16(), c.readOperand()) }},
	0x37: {"SCF", func(c *CPU) { c.setFlag(FlagN, false); c.setFlag(FlagH, false); c.setFlag(FlagC, true) }},
	0x38: {"JR C,r8", func(c *CPU) { c.jumpRelativeIf(c.flag(FlagC)) }},
	0x39: {"ADD HL,SP", func(c *CPU) { c.internalTick(); c.addHL(c.SP) }},
	0x3A: {"LD A,(HL-)", func(c *CPU) { c.loadMemToReg(&c.A, c.HL.Uint16()); c.HL.SetUint16(c.HL.Uint16() - 1) }},
	0x3B: {"DEC SP", func(c *CPU) { c.internalTick(); c.SP-- }},
	0x3C: {"INC A", func(c *CPU) { c.A = c.inc8(c.A) }},
	0x3D: {"DEC A", func(c *CPU) { c.A = c.dec8(c.A) }},
	0x3E: {"LD A,d8", func(c *CPU) { c.loadReg8Imm(&c.A) }},
	0x3F: {"CCF", func(c *CPU) { c.setFlag(FlagN, false); c.setFlag(FlagH, false); c.setFlag(FlagC, !c.flag(FlagC)) }},

	0x76: {"HALT", func(c *CPU) { c.Halt() }},

	0xC0: {"RET NZ", func(c *CPU) { c.retIf(!c.flag(FlagZ)) }},
	0xC1: {"POP BC", func(c *CPU) { c.pop(c.BC) }},
	0xC2: {"JP NZ,a16", func(c *CPU) { c.jumpIf(!c.flag(FlagZ)) }},
	0xC3: {"JP a16", func(c *CPU) { c.jumpIf(true) }},
	0xC4: {"CALL NZ,a16", func(c *CPU) { c.callIf(!c.flag(FlagZ)) }},
	0xC5: {"PUSH BC", func(c *CPU) { c.push(c.BC) }},
	0xC6: {"ADD A,d8", func(c *CPU) { c.add(c.readOperand()) }},
	0xC7: {"RST 00H", func(c *CPU) { c.rst(0x00) }},
	0xC8: {"RET Z", func(c *CPU) { c.retIf(c.flag(FlagZ)) }},
	0xC9: {"RET", func(c *CPU) { c.ret() }},
	0xCA: {"JP Z,a16", func(c *CPU) { c.jumpIf(c.flag(FlagZ)) }},
	0xCB: {"PREFIX CB", func(c *CPU) {
		opcode := c.fetch()
		cbInstructionSet[opcode].fn(c)
	}},
	0xCC: {"CALL Z,a16", func(c *CPU) { c.callIf(c.flag(FlagZ)) }},
	0xCD: {"CALL a16", func(c *CPU) { c.callIf(true) }},
	0xCE: {"ADC A,d8", func(c *CPU) { c.adc(c.readOperand()) }},
	0xCF: {"RST 08H", func(c *CPU) { c.rst(0x08) }},

	0xD0: {"RET NC", func(c *CPU) { c.retIf(!c.flag(FlagC)) }},
	0xD1: {"POP DE", func(c *CPU) { c.pop(c.DE) }},
	0xD2: {"JP NC,a16", func(c *CPU) { c.jumpIf(!c.flag(FlagC)) }},
	0xD3: disallowedOpcode(0xD3),
	0xD4: {"CALL NC,a16", func(c *CPU) { c.callIf(!c.flag(FlagC)) }},
	0xD5: {"PUSH DE", func(c *CPU) { c.push(c.DE) }},
	0xD6: {"SUB d8", func(c *CPU) { c.sub(c.readOperand()) }},
	0xD7: {"RST 10H", func(c *CPU) { c.rst(0x10) }},
	0xD8: {"RET C", func(c *CPU) { c.retIf(c.flag(FlagC)) }},
	0xD9: {"RETI", func(c *CPU) { c.reti() }},
	0xDA: {"JP C,a16", func(c *CPU) { c.jumpIf(c.flag(FlagC)) }},
	0xDB: disallowedOpcode(0xDB),
	0xDC: {"CALL C,a16", func(c *CPU) { c.callIf(c.flag(FlagC)) }},
	0xDD: disallowedOpcode(0xDD),
	0xDE: {"SBC A,d8", func(c *CPU) { c.sbc(c.readOperand()) }},
	0xDF: {"RST 18H", func(c *CPU) { c.rst(0x18) }},

	0xE0: {"LDH (a8),A", func(c *CPU) { c.busWrite(0xFF00+uint16(c.readOperand()), c.A) }},
	0xE1: {"POP HL", func(c *CPU) { c.pop(c.HL) }},
	0xE2: {"LD (C),A", func(c *CPU) { c.busWrite(0xFF00+uint16(c.C), c.A) }},
	0xE3: disallowedOpcode(0xE3),
	0xE4: disallowedOpcode(0xE4),
	0xE5: {"PUSH HL", func(c *CPU) { c.push(c.HL) }},
	0xE6: {"AND d8", func(c *CPU) { c.and(c.readOperand()) }},
	0xE7: {"RST 20H", func(c *CPU) { c.rst(0x20) }},
	0xE8: {"ADD SP,r8", func(c *CPU) { c.addSPImm() }},
	0xE9: {"JP (HL)", func(c *CPU) { c.PC = c.HL.Uint16() }},
	0xEA: {"LD (a16),A", func(c *CPU) { c.busWrite(c.readOperand16(), c.A) }},
	0xEB: disallowedOpcode(0xEB),
	0xEC: disallowedOpcode(0xEC),
	0xED: disallowedOpcode(0xED),
	0xEE: {"XOR d8", func(c *CPU) { c.xor(c.readOperand()) }},
	0xEF: {"RST 28H", func(c *CPU) { c.rst(0x28) }},

	0xF0: {"LDH A,(a8)", func(c *CPU) { c.A = c.busRead(0xFF00 + uint16(c.readOperand())) }},
	0xF1: {"POP AF", func(c *CPU) { c.pop(c.AF); c.F &= 0xF0 }},
	0xF2: {"LD A,(C)", func(c *CPU) { c.A = c.busRead(0xFF00 + uint16(c.C)) }},
	0xF3: {"DI", func(c *CPU) { c.DisableIME() }},
	0xF4: disallowedOpcode(0xF4),
	0xF5: {"PUSH AF", func(c *CPU) { c.push(c.AF) }},
	0xF6: {"OR d8", func(c *CPU) { c.or(c.readOperand()) }},
	0xF7: {"RST 30H", func(c *CPU) { c.rst(0x30) }},
	0xF8: {"LD HL,SP+r8", func(c *CPU) { c.loadHLSPOffset() }},
	0xF9: {"LD SP,HL", func(c *CPU) { c.internalTick(); c.SP = c.HL.Uint16() }},
	0xFA: {"LD A,(a16)", func(c *CPU) { c.A = c.busRead(c.readOperand16()) }},
	0xFB: {"EI", func(c *CPU) { c.EnableIME() }},
	0xFC: disallowedOpcode(0xFC),
	0xFD: disallowedOpcode(0xFD),
	0xFE: {"CP d8", func(c *CPU) { c.cp(c.readOperand()) }},
	0xFF: {"RST 38H", func(c *CPU) { c.rst(0x38) }},
}

// reg8 resolves one of the eight 3-bit register-field operands shared by
// the LD r,r' block (0x40-0x7F minus 0x76) and every ALU-over-register
// opcode (0x80-0xBF): B C D E H L (HL) A.
func (c *CPU) reg8(index uint8) uint8 {
	switch index {
	case 0:
		return c.B
	case 1:
		return c.C
	case 2:
		return c.D
	case 3:
		return c.E
	case 4:
		return c.H
	case 5:
		return c.L
	case 6:
		return c.busRead(c.HL.Uint16())
	default:
		return c.A
	}
}

func (c *CPU) setReg8(index uint8, value uint8) {
	switch index {
	case 0:
		c.B = value
	case 1:
		c.C = value
	case 2:
		c.D = value
	case 3:
		c.E = value
	case 4:
		c.H = value
	case 5:
		c.L = value
	case 6:
		c.busWrite(c.HL.Uint16(), value)
	default:
		c.A = value
	}
}

func (c *CPU) daa() {
	adjust := uint8(0)
	carry := false
	if c.flag(FlagN) {
		if c.flag(FlagH) {
			adjust += 0x06
		}
		if c.flag(FlagC) {
			adjust += 0x60
			carry = true
		}
		c.A -= adjust
	} else {
		if c.flag(FlagH) || c.A&0x0F > 0x09 {
			adjust += 0x06
		}
		if c.flag(FlagC) || c.A > 0x99 {
			adjust += 0x60
			carry = true
		}
		c.A += adjust
	}
	c.setFlag(FlagZ, c.A == 0)
	c.setFlag(FlagH, false)
	c.setFlag(FlagC, carry)
}

func (c *CPU) loadHLSPOffset() {
	offset := int8(c.readOperand())
	sp := c.SP
	result := uint16(int32(sp) + int32(offset))
	c.setFlag(FlagZ, false)
	c.setFlag(FlagN, false)
	c.setFlag(FlagH, (sp&0x0F)+(uint16(uint8(offset))&0x0F) > 0x0F)
	c.setFlag(FlagC, (sp&0xFF)+(uint16(uint8(offset))&0xFF) > 0xFF)
	c.internalTick()
	c.HL.SetUint16(result)
}

func init() {
	// 0x40-0x7F: LD r,r' for every (dst, src) pair except 0x76 (HALT),
	// and 0x80-0xBF: the eight ALU operations over the same eight
	// operands. Both blocks are fully regular, so they are generated
	// instead of written out 128 times by hand.
	for dst := uint8(0); dst < 8; dst++ {
		for src := uint8(0); src < 8; src++ {
			opcode := 0x40 + dst*8 + src
			if opcode == 0x76 {
				continue
			}
			d, s := dst, src
			fn := func(c *CPU) { c.setReg8(d, c.reg8(s)) }
			if opcode == 0x40 { // LD B,B: mooneye's debug-breakpoint convention
				fn = func(c *CPU) {
					c.setReg8(d, c.reg8(s))
					if c.Debug {
						c.debugBreakpoint = true
					}
				}
			}
			instructionSet[opcode] = Instruction{name: "LD r,r'", fn: fn}
		}
	}

	aluOps := [8]func(c *CPU, v uint8){
		func(c *CPU, v uint8) { c.add(v) },
		func(c *CPU, v uint8) { c.adc(v) },
		func(c *CPU, v uint8) { c.sub(v) },
		func(c *CPU, v uint8) { c.sbc(v) },
		func(c *CPU, v uint8) { c.and(v) },
		func(c *CPU, v uint8) { c.xor(v) },
		func(c *CPU, v uint8) { c.or(v) },
		func(c *CPU, v uint8) { c.cp(v) },
	}
	names := [8]string{"ADD A,r", "ADC A,r", "SUB r", "SBC A,r", "AND r", "XOR r", "OR r", "CP r"}
	for op := uint8(0); op < 8; op++ {
		for src := uint8(0); src < 8; src++ {
			opcode := 0x80 + op*8 + src
			o, s := op, src
			instructionSet[opcode] = Instruction{
				name: names[op],
				fn:   func(c *CPU) { aluOps[o](c, c.reg8(s)) },
			}
		}
	}
}
