package vm

func execPushctr(eng *Engine) *Exception {
	i, exc := readOperandByte(eng)
	if exc != nil {
		return exc
	}
	v, exc := eng.ctrls.Get(i)
	if exc != nil {
		return exc
	}
	eng.stack.Push(v)
	return nil
}

func execPopctr(eng *Engine) *Exception {
	i, exc := readOperandByte(eng)
	if exc != nil {
		return exc
	}
	v, exc := eng.stack.Pop()
	if exc != nil {
		return exc
	}
	return eng.ctrls.Set(i, v)
}

// execSave implements SAVE i: copy the live value of control register i
// into the currently executing continuation's own save-list slot, once
// (§3.5, §4.3). Since eng.cc is the live continuation object, this mutates
// exactly what a later switch away from it will preserve.
func execSave(eng *Engine) *Exception {
	i, exc := readOperandByte(eng)
	if exc != nil {
		return exc
	}
	v, exc := eng.ctrls.Get(i)
	if exc != nil {
		return exc
	}
	return eng.cc.Save.SetOnce(i, v)
}
