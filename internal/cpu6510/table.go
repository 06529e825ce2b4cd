package cpu6510

type execFunc func(*CPU, AddrMode) int

type opcodeEntry struct {
	mode   AddrMode
	cycles int
	exec   execFunc
}

// opcodeTable is the full NMOS 6510 instruction set including the
// documented illegal opcodes. A nil exec marks a "kill" (jam) opcode
// that Step treats as the halt trap. Cycle counts are the base cost;
// individual exec functions report page-cross/branch-taken deltas.
var opcodeTable = [256]opcodeEntry{
	0x00: {AddrImplied, 7, opBRK},
	0x01: {AddrIndirectX, 6, opORA},
	0x02: {},
	0x03: {AddrIndirectX, 8, opASO},
	0x04: {AddrZeroPage, 3, opNOP},
	0x05: {AddrZeroPage, 3, opORA},
	0x06: {AddrZeroPage, 5, opASL},
	0x07: {AddrZeroPage, 5, opASO},
	0x08: {AddrImplied, 3, opPHP},
	0x09: {AddrImmediate, 2, opORA},
	0x0A: {AddrAccumulator, 2, opASL},
	0x0B: {AddrImmediate, 2, opANC},
	0x0C: {AddrAbsolute, 4, opNOP},
	0x0D: {AddrAbsolute, 4, opORA},
	0x0E: {AddrAbsolute, 6, opASL},
	0x0F: {AddrAbsolute, 6, opASO},

	0x10: {AddrRelative, 2, opBPL},
	0x11: {AddrIndirectY, 5, opORA},
	0x12: {},
	0x13: {AddrIndirectY, 8, opASO},
	0x14: {AddrZeroPageX, 4, opNOP},
	0x15: {AddrZeroPageX, 4, opORA},
	0x16: {AddrZeroPageX, 6, opASL},
	0x17: {AddrZeroPageX, 6, opASO},
	0x18: {AddrImplied, 2, opCLC},
	0x19: {AddrAbsoluteY, 4, opORA},
	0x1A: {AddrImplied, 2, opNOP},
	0x1B: {AddrAbsoluteY, 7, opASO},
	0x1C: {AddrAbsoluteX, 4, opNOP},
	0x1D: {AddrAbsoluteX, 4, opORA},
	0x1E: {AddrAbsoluteX, 7, opASL},
	0x1F: {AddrAbsoluteX, 7, opASO},

	0x20: {AddrAbsolute, 6, opJSR},
	0x21: {AddrIndirectX, 6, opAND},
	0x22: {},
	0x23: {AddrIndirectX, 8, opRLA},
	0x24: {AddrZeroPage, 3, opBIT},
	0x25: {AddrZeroPage, 3, opAND},
	0x26: {AddrZeroPage, 5, opROL},
	0x27: {AddrZeroPage, 5, opRLA},
	0x28: {AddrImplied, 4, opPLP},
	0x29: {AddrImmediate, 2, opAND},
	0x2A: {AddrAccumulator, 2, opROL},
	0x2B: {AddrImmediate, 2, opANC},
	0x2C: {AddrAbsolute, 4, opBIT},
	0x2D: {AddrAbsolute, 4, opAND},
	0x2E: {AddrAbsolute, 6, opROL},
	0x2F: {AddrAbsolute, 6, opRLA},

	0x30: {AddrRelative, 2, opBMI},
	0x31: {AddrIndirectY, 5, opAND},
	0x32: {},
	0x33: {AddrIndirectY, 8, opRLA},
	0x34: {AddrZeroPageX, 4, opNOP},
	0x35: {AddrZeroPageX, 4, opAND},
	0x36: {AddrZeroPageX, 6, opROL},
	0x37: {AddrZeroPageX, 6, opRLA},
	0x38: {AddrImplied, 2, opSEC},
	0x39: {AddrAbsoluteY, 4, opAND},
	0x3A: {AddrImplied, 2, opNOP},
	0x3B: {AddrAbsoluteY, 7, opRLA},
	0x3C: {AddrAbsoluteX, 4, opNOP},
	0x3D: {AddrAbsoluteX, 4, opAND},
	0x3E: {AddrAbsoluteX, 7, opROL},
	0x3F: {AddrAbsoluteX, 7, opRLA},

	0x40: {AddrImplied, 6, opRTI},
	0x41: {AddrIndirectX, 6, opEOR},
	0x42: {},
	0x43: {AddrIndirectX, 8, opLSE},
	0x44: {AddrZeroPage, 3, opNOP},
	0x45: {AddrZeroPage, 3, opEOR},
	0x46: {AddrZeroPage, 5, opLSR},
	0x47: {AddrZeroPage, 5, opLSE},
	0x48: {AddrImplied, 3, opPHA},
	0x49: {AddrImmediate, 2, opEOR},
	0x4A: {AddrAccumulator, 2, opLSR},
	0x4B: {AddrImmediate, 2, opALR},
	0x4C: {AddrAbsolute, 3, opJMP},
	0x4D: {AddrAbsolute, 4, opEOR},
	0x4E: {AddrAbsolute, 6, opLSR},
	0x4F: {AddrAbsolute, 6, opLSE},

	0x50: {AddrRelative, 2, opBVC},
	0x51: {AddrIndirectY, 5, opEOR},
	0x52: {},
	0x53: {AddrIndirectY, 8, opLSE},
	0x54: {AddrZeroPageX, 4, opNOP},
	0x55: {AddrZeroPageX, 4, opEOR},
	0x56: {AddrZeroPageX, 6, opLSR},
	0x57: {AddrZeroPageX, 6, opLSE},
	0x58: {AddrImplied, 2, opCLI},
	0x59: {AddrAbsoluteY, 4, opEOR},
	0x5A: {AddrImplied, 2, opNOP},
	0x5B: {AddrAbsoluteY, 7, opLSE},
	0x5C: {AddrAbsoluteX, 4, opNOP},
	0x5D: {AddrAbsoluteX, 4, opEOR},
	0x5E: {AddrAbsoluteX, 7, opLSR},
	0x5F: {AddrAbsoluteX, 7, opLSE},

	0x60: {AddrImplied, 6, opRTS},
	0x61: {AddrIndirectX, 6, opADC},
	0x62: {},
	0x63: {AddrIndirectX, 8, opRRA},
	0x64: {AddrZeroPage, 3, opNOP},
	0x65: {AddrZeroPage, 3, opADC},
	0x66: {AddrZeroPage, 5, opROR},
	0x67: {AddrZeroPage, 5, opRRA},
	0x68: {AddrImplied, 4, opPLA},
	0x69: {AddrImmediate, 2, opADC},
	0x6A: {AddrAccumulator, 2, opROR},
	0x6B: {AddrImmediate, 2, opARR},
	0x6C: {AddrIndirect, 5, opJMP},
	0x6D: {AddrAbsolute, 4, opADC},
	0x6E: {AddrAbsolute, 6, opROR},
	0x6F: {AddrAbsolute, 6, opRRA},

	0x70: {AddrRelative, 2, opBVS},
	0x71: {AddrIndirectY, 5, opADC},
	0x72: {},
	0x73: {AddrIndirectY, 8, opRRA},
	0x74: {AddrZeroPageX, 4, opNOP},
	0x75: {AddrZeroPageX, 4, opADC},
	0x76: {AddrZeroPageX, 6, opROR},
	0x77: {AddrZeroPageX, 6, opRRA},
	0x78: {AddrImplied, 2, opSEI},
	0x79: {AddrAbsoluteY, 4, opADC},
	0x7A: {AddrImplied, 2, opNOP},
	0x7B: {AddrAbsoluteY, 7, opRRA},
	0x7C: {AddrAbsoluteX, 4, opNOP},
	0x7D: {AddrAbsoluteX, 4, opADC},
	0x7E: {AddrAbsoluteX, 7, opROR},
	0x7F: {AddrAbsoluteX, 7, opRRA},

	0x80: {AddrImmediate, 2, opNOP},
	0x81: {AddrIndirectX, 6, opSTA},
	0x82: {AddrImmediate, 2, opNOP},
	0x83: {AddrIndirectX, 6, opAXS},
	0x84: {AddrZeroPage, 3, opSTY},
	0x85: {AddrZeroPage, 3, opSTA},
	0x86: {AddrZeroPage, 3, opSTX},
	0x87: {AddrZeroPage, 3, opAXS},
	0x88: {AddrImplied, 2, opDEY},
	0x89: {AddrImmediate, 2, opNOP},
	0x8A: {AddrImplied, 2, opTXA},
	0x8B: {AddrImmediate, 2, opANE},
	0x8C: {AddrAbsolute, 4, opSTY},
	0x8D: {AddrAbsolute, 4, opSTA},
	0x8E: {AddrAbsolute, 4, opSTX},
	0x8F: {AddrAbsolute, 4, opAXS},

	0x90: {AddrRelative, 2, opBCC},
	0x91: {AddrIndirectY, 6, opSTA},
	0x92: {},
	0x93: {AddrIndirectY, 6, opAXA},
	0x94: {AddrZeroPageX, 4, opSTY},
	0x95: {AddrZeroPageX, 4, opSTA},
	0x96: {AddrZeroPageY, 4, opSTX},
	0x97: {AddrZeroPageY, 4, opAXS},
	0x98: {AddrImplied, 2, opTYA},
	0x99: {AddrAbsoluteY, 5, opSTA},
	0x9A: {AddrImplied, 2, opTXS},
	0x9B: {AddrAbsoluteY, 5, opSHS},
	0x9C: {AddrAbsoluteX, 5, opSAY},
	0x9D: {AddrAbsoluteX, 5, opSTA},
	0x9E: {AddrAbsoluteY, 5, opXAS},
	0x9F: {AddrAbsoluteY, 5, opAXA},

	0xA0: {AddrImmediate, 2, opLDY},
	0xA1: {AddrIndirectX, 6, opLDA},
	0xA2: {AddrImmediate, 2, opLDX},
	0xA3: {AddrIndirectX, 6, opLAX},
	0xA4: {AddrZeroPage, 3, opLDY},
	0xA5: {AddrZeroPage, 3, opLDA},
	0xA6: {AddrZeroPage, 3, opLDX},
	0xA7: {AddrZeroPage, 3, opLAX},
	0xA8: {AddrImplied, 2, opTAY},
	0xA9: {AddrImmediate, 2, opLDA},
	0xAA: {AddrImplied, 2, opTAX},
	0xAB: {AddrImmediate, 2, opOAL},
	0xAC: {AddrAbsolute, 4, opLDY},
	0xAD: {AddrAbsolute, 4, opLDA},
	0xAE: {AddrAbsolute, 4, opLDX},
	0xAF: {AddrAbsolute, 4, opLAX},

	0xB0: {AddrRelative, 2, opBCS},
	0xB1: {AddrIndirectY, 5, opLDA},
	0xB2: {},
	0xB3: {AddrIndirectY, 5, opLAX},
	0xB4: {AddrZeroPageX, 4, opLDY},
	0xB5: {AddrZeroPageX, 4, opLDA},
	0xB6: {AddrZeroPageY, 4, opLDX},
	0xB7: {AddrZeroPageY, 4, opLAX},
	0xB8: {AddrImplied, 2, opCLV},
	0xB9: {AddrAbsoluteY, 4, opLDA},
	0xBA: {AddrImplied, 2, opTSX},
	0xBB: {AddrAbsoluteY, 4, opLAS},
	0xBC: {AddrAbsoluteX, 4, opLDY},
	0xBD: {AddrAbsoluteX, 4, opLDA},
	0xBE: {AddrAbsoluteY, 4, opLDX},
	0xBF: {AddrAbsoluteY, 4, opLAX},

	0xC0: {AddrImmediate, 2, opCPY},
	0xC1: {AddrIndirectX, 6, opCMP},
	0xC2: {AddrImmediate, 2, opNOP},
	0xC3: {AddrIndirectX, 8, opDCM},
	0xC4: {AddrZeroPage, 3, opCPY},
	0xC5: {AddrZeroPage, 3, opCMP},
	0xC6: {AddrZeroPage, 5, opDEC},
	0xC7: {AddrZeroPage, 5, opDCM},
	0xC8: {AddrImplied, 2, opINY},
	0xC9: {AddrImmediate, 2, opCMP},
	0xCA: {AddrImplied, 2, opDEX},
	0xCB: {AddrImmediate, 2, opSBX},
	0xCC: {AddrAbsolute, 4, opCPY},
	0xCD: {AddrAbsolute, 4, opCMP},
	0xCE: {AddrAbsolute, 6, opDEC},
	0xCF: {AddrAbsolute, 6, opDCM},

	0xD0: {AddrRelative, 2, opBNE},
	0xD1: {AddrIndirectY, 5, opCMP},
	0xD2: {},
	0xD3: {AddrIndirectY, 8, opDCM},
	0xD4: {AddrZeroPageX, 4, opNOP},
	0xD5: {AddrZeroPageX, 4, opCMP},
	0xD6: {AddrZeroPageX, 6, opDEC},
	0xD7: {AddrZeroPageX, 6, opDCM},
	0xD8: {AddrImplied, 2, opCLD},
	0xD9: {AddrAbsoluteY, 4, opCMP},
	0xDA: {AddrImplied, 2, opNOP},
	0xDB: {AddrAbsoluteY, 7, opDCM},
	0xDC: {AddrAbsoluteX, 4, opNOP},
	0xDD: {AddrAbsoluteX, 4, opCMP},
	0xDE: {AddrAbsoluteX, 7, opDEC},
	0xDF: {AddrAbsoluteX, 7, opDCM},

	0xE0: {AddrImmediate, 2, opCPX},
	0xE1: {AddrIndirectX, 6, opSBC},
	0xE2: {AddrImmediate, 2, opNOP},
	0xE3: {AddrIndirectX, 8, opINS},
	0xE4: {AddrZeroPage, 3, opCPX},
	0xE5: {AddrZeroPage, 3, opSBC},
	0xE6: {AddrZeroPage, 5, opINC},
	0xE7: {AddrZeroPage, 5, opINS},
	0xE8: {AddrImplied, 2, opINX},
	0xE9: {AddrImmediate, 2, opSBC},
	0xEA: {AddrImplied, 2, opNOP},
	0xEB: {AddrImmediate, 2, opSBC},
	0xEC: {AddrAbsolute, 4, opCPX},
	0xED: {AddrAbsolute, 4, opSBC},
	0xEE: {AddrAbsolute, 6, opINC},
	0xEF: {AddrAbsolute, 6, opINS},

	0xF0: {AddrRelative, 2, opBEQ},
	0xF1: {AddrIndirectY, 5, opSBC},
	0xF2: {},
	0xF3: {AddrIndirectY, 8, opINS},
	0xF4: {AddrZeroPageX, 4, opNOP},
	0xF5: {AddrZeroPageX, 4, opSBC},
	0xF6: {AddrZeroPageX, 6, opINC},
	0xF7: {AddrZeroPageX, 6, opINS},
	0xF8: {AddrImplied, 2, opSED},
	0xF9: {AddrAbsoluteY, 4, opSBC},
	0xFA: {AddrImplied, 2, opNOP},
	0xFB: {AddrAbsoluteY, 7, opINS},
	0xFC: {AddrAbsoluteX, 4, opNOP},
	0xFD: {AddrAbsoluteX, 4, opSBC},
	0xFE: {AddrAbsoluteX, 7, opINC},
	0xFF: {AddrAbsoluteX, 7, opINS},
}
