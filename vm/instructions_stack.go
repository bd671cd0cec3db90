package vm

// readOperandByte pulls a single unsigned byte operand from the current
// continuation's code, the common case for stack-index and small-count
// operands (§4.2).
func readOperandByte(eng *Engine) (int, *Exception) {
	v, err := eng.cc.Code.LoadUint(8)
	if err != nil {
		return 0, NewExceptionCode(InvalidOpcode)
	}
	return int(v), nil
}

func execNop(eng *Engine) *Exception { return nil }

func execPush(eng *Engine) *Exception {
	n, exc := readOperandByte(eng)
	if exc != nil {
		return exc
	}
	return eng.stack.Dup(n)
}

func execPop(eng *Engine) *Exception {
	n, exc := readOperandByte(eng)
	if exc != nil {
		return exc
	}
	return eng.stack.PopTo(n)
}

func execXchg(eng *Engine) *Exception {
	i, exc := readOperandByte(eng)
	if exc != nil {
		return exc
	}
	j, exc := readOperandByte(eng)
	if exc != nil {
		return exc
	}
	return eng.stack.Xchg(i, j)
}

func execDup(eng *Engine) *Exception  { return eng.stack.Dup(0) }
func execSwap(eng *Engine) *Exception { return eng.stack.Xchg(0, 1) }
func execDrop(eng *Engine) *Exception { return eng.stack.Drop(1) }
func execNip(eng *Engine) *Exception  { return eng.stack.Nip() }
func execTuck(eng *Engine) *Exception { return eng.stack.Tuck() }
func execOver(eng *Engine) *Exception { return eng.stack.Over() }

func execPick(eng *Engine) *Exception {
	n, exc := eng.stack.PopInt()
	if exc != nil {
		return exc
	}
	return eng.stack.Dup(int(n.Int64()))
}

func execRoll(eng *Engine) *Exception {
	n, exc := readOperandByte(eng)
	if exc != nil {
		return exc
	}
	return eng.stack.Roll(n)
}

func execRollRev(eng *Engine) *Exception {
	n, exc := readOperandByte(eng)
	if exc != nil {
		return exc
	}
	return eng.stack.RollRev(n)
}

func execReverse(eng *Engine) *Exception {
	i, exc := readOperandByte(eng)
	if exc != nil {
		return exc
	}
	j, exc := readOperandByte(eng)
	if exc != nil {
		return exc
	}
	return eng.stack.Reverse(i, j)
}

func execBlkSwap(eng *Engine) *Exception {
	i, exc := readOperandByte(eng)
	if exc != nil {
		return exc
	}
	j, exc := readOperandByte(eng)
	if exc != nil {
		return exc
	}
	return eng.stack.BlkSwap(i, j)
}
