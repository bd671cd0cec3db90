package vm

// operation is one entry of the instruction dispatch table, mirroring the
// operation struct core/vm's jump table keys by opcode: a name for
// diagnostics, the handler itself, and the static gas/capability metadata
// the driver loop consults before running it (§4.2, §4.7).
type operation struct {
	name string

	// execute runs the instruction against the engine's live state. Any
	// operand bits beyond the opcode byte itself are read by execute from
	// eng.cc.Code, since operand width varies per instruction (STI's n,
	// THROW's 16-bit code, PUSHCONT's ref, and so on).
	execute func(eng *Engine) *Exception

	// constGas is the fixed portion of the instruction's gas price; charged
	// by the driver loop before execute runs (§4.4 "gas accounting is
	// prefix-summed, not amortized").
	constGas int64

	// stackDepthGas marks stack-family instructions that additionally pay
	// per-slot-over-freeStackDepth gas proportional to current stack depth
	// (§4.2's PUSH/POP/XCHG-family pricing).
	stackDepthGas bool

	// requiresCap is CapNone for opcodes available unconditionally, or the
	// single capability bit that must be set in the engine's Capabilities
	// for this opcode to decode at all (§4.7 rule 3).
	requiresCap Capability
}

// table is the byte-primary dispatch table: table[b] is the operation
// selected by encountering opcode byte b as the first byte of an
// instruction. Entries covering the 0x70-0x7F inline-literal range all
// point at the same *operation, per §4.7 rule 2; its execute function
// recovers which of the sixteen literals was meant from the byte the
// driver loop already consumed (eng.lastOpcodeByte).
var table [256]*operation

func init() {
	reg := func(b byte, op *operation) {
		if table[b] != nil {
			panic("vm: duplicate opcode byte registration")
		}
		table[b] = op
	}

	// Stack manipulation, 0x00-0x0E.
	reg(0x00, &operation{name: "NOP", execute: execNop, constGas: 18})
	reg(0x01, &operation{name: "PUSH", execute: execPush, constGas: 18, stackDepthGas: true})
	reg(0x02, &operation{name: "POP", execute: execPop, constGas: 18, stackDepthGas: true})
	reg(0x03, &operation{name: "XCHG", execute: execXchg, constGas: 18, stackDepthGas: true})
	reg(0x04, &operation{name: "DUP", execute: execDup, constGas: 18})
	reg(0x05, &operation{name: "SWAP", execute: execSwap, constGas: 18})
	reg(0x06, &operation{name: "DROP", execute: execDrop, constGas: 18})
	reg(0x07, &operation{name: "NIP", execute: execNip, constGas: 18})
	reg(0x08, &operation{name: "TUCK", execute: execTuck, constGas: 18})
	reg(0x09, &operation{name: "OVER", execute: execOver, constGas: 18})
	reg(0x0A, &operation{name: "PICK", execute: execPick, constGas: 18, stackDepthGas: true})
	reg(0x0B, &operation{name: "ROLL", execute: execRoll, constGas: 18, stackDepthGas: true})
	reg(0x0C, &operation{name: "ROLLREV", execute: execRollRev, constGas: 18, stackDepthGas: true})
	reg(0x0D, &operation{name: "REVERSE", execute: execReverse, constGas: 18, stackDepthGas: true})
	reg(0x0E, &operation{name: "BLKSWAP", execute: execBlkSwap, constGas: 18, stackDepthGas: true})

	// Arithmetic / comparison / bitwise, 0x10-0x28.
	reg(0x10, &operation{name: "ADD", execute: execAdd, constGas: 18})
	reg(0x11, &operation{name: "ADDQ", execute: execAddQ, constGas: 18})
	reg(0x12, &operation{name: "SUB", execute: execSub, constGas: 18})
	reg(0x13, &operation{name: "SUBQ", execute: execSubQ, constGas: 18})
	reg(0x14, &operation{name: "NEGATE", execute: execNegate, constGas: 18})
	reg(0x15, &operation{name: "INC", execute: execInc, constGas: 18})
	reg(0x16, &operation{name: "DEC", execute: execDec, constGas: 18})
	reg(0x17, &operation{name: "MUL", execute: execMul, constGas: 18})
	reg(0x18, &operation{name: "MULQ", execute: execMulQ, constGas: 18})
	reg(0x19, &operation{name: "DIVMOD", execute: execDivMod, constGas: 26})
	reg(0x1A, &operation{name: "DIV", execute: execDiv, constGas: 26})
	reg(0x1B, &operation{name: "MOD", execute: execMod, constGas: 26})
	reg(0x1C, &operation{name: "DIVQ", execute: execDivQ, constGas: 26})
	reg(0x29, &operation{name: "DIVC", execute: execDivC, constGas: 26})
	reg(0x2A, &operation{name: "MODC", execute: execModC, constGas: 26})
	reg(0x2B, &operation{name: "DIVMODC", execute: execDivModC, constGas: 26})
	reg(0x2C, &operation{name: "DIVR", execute: execDivR, constGas: 26})
	reg(0x2D, &operation{name: "MODR", execute: execModR, constGas: 26})
	reg(0x2E, &operation{name: "DIVMODR", execute: execDivModR, constGas: 26})
	reg(0x2F, &operation{name: "DIVEUCLID", execute: execDivEuclid, constGas: 26})
	reg(0x44, &operation{name: "MODEUCLID", execute: execModEuclid, constGas: 26})
	reg(0x1D, &operation{name: "EQUAL", execute: execEqual, constGas: 18})
	reg(0x1E, &operation{name: "LESS", execute: execLess, constGas: 18})
	reg(0x1F, &operation{name: "GREATER", execute: execGreater, constGas: 18})
	reg(0x20, &operation{name: "LEQ", execute: execLeq, constGas: 18})
	reg(0x21, &operation{name: "GEQ", execute: execGeq, constGas: 18})
	reg(0x22, &operation{name: "CMP", execute: execCmp, constGas: 18})
	reg(0x23, &operation{name: "AND", execute: execAnd, constGas: 18})
	reg(0x24, &operation{name: "OR", execute: execOr, constGas: 18})
	reg(0x25, &operation{name: "XOR", execute: execXor, constGas: 18})
	reg(0x26, &operation{name: "NOT", execute: execNot, constGas: 18})
	reg(0x27, &operation{name: "ISNAN", execute: execIsNaN, constGas: 18})
	reg(0x28, &operation{name: "CHKNAN", execute: execChkNaN, constGas: 18})

	// Cell / slice / builder, 0x30-0x43.
	reg(0x30, &operation{name: "NEWC", execute: execNewc, constGas: 18})
	reg(0x31, &operation{name: "ENDC", execute: execEndc, constGas: 500})
	reg(0x32, &operation{name: "STI", execute: execSti, constGas: 26})
	reg(0x33, &operation{name: "STU", execute: execStu, constGas: 26})
	reg(0x34, &operation{name: "STREF", execute: execStref, constGas: 26})
	reg(0x35, &operation{name: "STSLICE", execute: execStslice, constGas: 26})
	reg(0x36, &operation{name: "CTOS", execute: execCtos, constGas: 118})
	reg(0x37, &operation{name: "LDI", execute: execLdi, constGas: 26})
	reg(0x38, &operation{name: "LDU", execute: execLdu, constGas: 26})
	reg(0x39, &operation{name: "LDREF", execute: execLdref, constGas: 26})
	reg(0x3A, &operation{name: "LDSLICE", execute: execLdslice, constGas: 26})
	reg(0x3B, &operation{name: "PLDI", execute: execPldi, constGas: 26})
	reg(0x3C, &operation{name: "PLDU", execute: execPldu, constGas: 26})
	reg(0x3D, &operation{name: "ENDS", execute: execEnds, constGas: 18})
	reg(0x3E, &operation{name: "SDBEGINS", execute: execSdbegins, constGas: 26})
	reg(0x3F, &operation{name: "SCHKBITSQ", execute: execSchkbitsq, constGas: 26})
	reg(0x40, &operation{name: "DATASIZE", execute: execDatasize, constGas: 18})
	reg(0x41, &operation{name: "CDATASIZE", execute: execCdatasize, constGas: 18})
	reg(0x42, &operation{name: "XLOAD", execute: execXload, constGas: 118})
	reg(0x43, &operation{name: "ENDXC", execute: execEndxc, constGas: 500})

	// Continuations / control flow, 0x50-0x62.
	reg(0x50, &operation{name: "PUSHCONT", execute: execPushcont, constGas: 18})
	reg(0x51, &operation{name: "CALLREF", execute: execCallref, constGas: 18})
	reg(0x52, &operation{name: "CALLX", execute: execCallx, constGas: 18})
	reg(0x53, &operation{name: "JMPX", execute: execJmpx, constGas: 18})
	reg(0x54, &operation{name: "JMPREF", execute: execJmpref, constGas: 18})
	reg(0x55, &operation{name: "RET", execute: execRet, constGas: 5})
	reg(0x56, &operation{name: "RETALT", execute: execRetalt, constGas: 5})
	reg(0x57, &operation{name: "IF", execute: execIf, constGas: 18})
	reg(0x58, &operation{name: "IFELSE", execute: execIfelse, constGas: 18})
	reg(0x59, &operation{name: "IFRET", execute: execIfret, constGas: 18})
	reg(0x5A, &operation{name: "TRY", execute: execTry, constGas: 18})
	reg(0x5B, &operation{name: "TRYKEEP", execute: execTrykeep, constGas: 18})
	reg(0x5C, &operation{name: "THROW", execute: execThrow, constGas: 26})
	reg(0x5D, &operation{name: "THROWARG", execute: execThrowarg, constGas: 26})
	reg(0x5E, &operation{name: "UNTIL", execute: execUntil, constGas: 18})
	reg(0x5F, &operation{name: "WHILE", execute: execWhile, constGas: 18})
	reg(0x60, &operation{name: "REPEAT", execute: execRepeat, constGas: 18})
	reg(0x61, &operation{name: "AGAIN", execute: execAgain, constGas: 18})
	reg(0x62, &operation{name: "SETCONTVARARGS", execute: execSetcontvarargs, constGas: 26})

	// Control registers, 0x80-0x82.
	reg(0x80, &operation{name: "PUSHCTR", execute: execPushctr, constGas: 26})
	reg(0x81, &operation{name: "POPCTR", execute: execPopctr, constGas: 26})
	reg(0x82, &operation{name: "SAVE", execute: execSave, constGas: 26})

	// Gas, 0x90-0x93.
	reg(0x90, &operation{name: "ACCEPT", execute: execAccept, constGas: 18})
	reg(0x91, &operation{name: "SETGASLIMIT", execute: execSetgaslimit, constGas: 26})
	reg(0x92, &operation{name: "BUYGAS", execute: execBuygas, constGas: 26})
	reg(0x93, &operation{name: "GASREMAINING", execute: execGasremaining, constGas: 26})

	// Crypto, 0xA0-0xA3.
	reg(0xA0, &operation{name: "CHKSIGNS", execute: execChksigns, constGas: 26})
	reg(0xA1, &operation{name: "CHKSIGNU", execute: execChksignu, constGas: 26})
	reg(0xA2, &operation{name: "HASHCU", execute: execHashcu, constGas: 26})
	reg(0xA3, &operation{name: "HASHSU", execute: execHashsu, constGas: 26})

	// Dictionaries, 0xB0-0xB4.
	reg(0xB0, &operation{name: "DICTGET", execute: execDictget, constGas: 26})
	reg(0xB1, &operation{name: "DICTSET", execute: execDictset, constGas: 26})
	reg(0xB2, &operation{name: "DICTDEL", execute: execDictdel, constGas: 26})
	reg(0xB3, &operation{name: "DICTMIN", execute: execDictmin, constGas: 26})
	reg(0xB4, &operation{name: "DICTMAX", execute: execDictmax, constGas: 26})

	// Tuples, 0xC0-0xC2.
	reg(0xC0, &operation{name: "TUPLE", execute: execTuple, constGas: 26, stackDepthGas: true})
	reg(0xC1, &operation{name: "UNTUPLE", execute: execUntuple, constGas: 26, stackDepthGas: true})
	reg(0xC2, &operation{name: "INDEX", execute: execIndex, constGas: 26})

	// Constants / misc, 0xD0-0xD2.
	reg(0xD0, &operation{name: "PUSHINT", execute: execPushint, constGas: 26})
	reg(0xD1, &operation{name: "PUSHNULL", execute: execPushnull, constGas: 18})
	reg(0xD2, &operation{name: "ISNULL", execute: execIsnull, constGas: 18})

	// Supplemented family, 0xE0-0xE5.
	reg(0xE0, &operation{name: "RAND", execute: execRand, constGas: 26})
	reg(0xE1, &operation{name: "SETRAND", execute: execSetrand, constGas: 26})
	reg(0xE2, &operation{name: "RANDU256", execute: execRandu256, constGas: 26})
	reg(0xE3, &operation{name: "CONFIGPARAM", execute: execConfigparam, constGas: 26})
	reg(0xE4, &operation{name: "DUMPSTK", execute: execDumpstk, constGas: 26})
	reg(0xE5, &operation{name: "COPYLEFT", execute: execCopyleft, constGas: 26, requiresCap: CapCopyleft})

	// Inline-literal group, 0x70-0x7F: all sixteen bytes share one
	// operation. execPushintInline recovers the literal from
	// eng.lastOpcodeByte, the primary byte the driver loop already
	// consumed before dispatch.
	inline := &operation{name: "PUSHINT#", execute: execPushintInline, constGas: 18}
	for b := 0x70; b <= 0x7F; b++ {
		reg(byte(b), inline)
	}
}

// decode reads one primary opcode byte from eng.cc.Code and returns its
// operation, or an invalid-opcode exception if the byte is unassigned or
// gated by a capability the engine's config lacks.
func (eng *Engine) decode() (*operation, *Exception) {
	b, err := eng.cc.Code.LoadUint(8)
	if err != nil {
		return nil, NewExceptionCode(InvalidOpcode)
	}
	eng.lastOpcodeByte = byte(b)
	op := table[b]
	if op == nil {
		return nil, NewExceptionCode(InvalidOpcode)
	}
	if op.requiresCap != CapNone && !eng.config.Capabilities.Has(op.requiresCap) {
		return nil, NewExceptionCode(InvalidOpcode)
	}
	return op, nil
}
