package vm

func popTwoInts(eng *Engine) (a, b *IntegerData, exc *Exception) {
	b, exc = eng.stack.PopInt()
	if exc != nil {
		return nil, nil, exc
	}
	a, exc = eng.stack.PopInt()
	if exc != nil {
		return nil, nil, exc
	}
	return a, b, nil
}

func pushBool(eng *Engine, v bool) {
	if v {
		eng.stack.Push(NewIntItem(NewIntFromInt64(-1)))
	} else {
		eng.stack.Push(NewIntItem(NewIntFromInt64(0)))
	}
}

func binArith(eng *Engine, quiet bool, f func(a, b *IntegerData, quiet bool) (*IntegerData, *Exception)) *Exception {
	a, b, exc := popTwoInts(eng)
	if exc != nil {
		return exc
	}
	r, exc := f(a, b, quiet)
	if exc != nil {
		return exc
	}
	eng.stack.Push(NewIntItem(r))
	return nil
}

func execAdd(eng *Engine) *Exception  { return binArith(eng, false, (*IntegerData).Add) }
func execAddQ(eng *Engine) *Exception { return binArith(eng, true, (*IntegerData).Add) }
func execSub(eng *Engine) *Exception  { return binArith(eng, false, (*IntegerData).Sub) }
func execSubQ(eng *Engine) *Exception { return binArith(eng, true, (*IntegerData).Sub) }
func execMul(eng *Engine) *Exception  { return binArith(eng, false, (*IntegerData).Mul) }
func execMulQ(eng *Engine) *Exception { return binArith(eng, true, (*IntegerData).Mul) }

func execNegate(eng *Engine) *Exception {
	a, exc := eng.stack.PopInt()
	if exc != nil {
		return exc
	}
	r, exc := a.Neg(false)
	if exc != nil {
		return exc
	}
	eng.stack.Push(NewIntItem(r))
	return nil
}

func execInc(eng *Engine) *Exception {
	a, exc := eng.stack.PopInt()
	if exc != nil {
		return exc
	}
	r, exc := a.Add(NewIntFromInt64(1), false)
	if exc != nil {
		return exc
	}
	eng.stack.Push(NewIntItem(r))
	return nil
}

func execDec(eng *Engine) *Exception {
	a, exc := eng.stack.PopInt()
	if exc != nil {
		return exc
	}
	r, exc := a.Sub(NewIntFromInt64(1), false)
	if exc != nil {
		return exc
	}
	eng.stack.Push(NewIntItem(r))
	return nil
}

func divModHandler(mode DivMode, quiet bool, pushQuot, pushRem bool) func(eng *Engine) *Exception {
	return func(eng *Engine) *Exception {
		a, b, exc := popTwoInts(eng)
		if exc != nil {
			return exc
		}
		q, r, exc := a.DivMod(b, mode, quiet)
		if exc != nil {
			return exc
		}
		if pushQuot {
			eng.stack.Push(NewIntItem(q))
		}
		if pushRem {
			eng.stack.Push(NewIntItem(r))
		}
		return nil
	}
}

var execDivMod = divModHandler(DivFloor, false, true, true)
var execDiv = divModHandler(DivFloor, false, true, false)
var execMod = divModHandler(DivFloor, false, false, true)
var execDivQ = divModHandler(DivFloor, true, true, false)

// The ceiling and round-to-nearest members of the DIVMOD family (§4.6:
// "floor, euclidean, or to-zero per opcode suffix") reuse the same
// divModHandler plumbing with a different DivMode, giving DivCeil and
// DivRound a real caller instead of sitting unreachable in IntegerData.
var execDivC = divModHandler(DivCeil, false, true, false)
var execModC = divModHandler(DivCeil, false, false, true)
var execDivModC = divModHandler(DivCeil, false, true, true)
var execDivR = divModHandler(DivRound, false, true, false)
var execModR = divModHandler(DivRound, false, false, true)
var execDivModR = divModHandler(DivRound, false, true, true)
var execDivEuclid = divModHandler(DivEuclid, false, true, false)
var execModEuclid = divModHandler(DivEuclid, false, false, true)

func cmpHandler(f func(c int) bool) func(eng *Engine) *Exception {
	return func(eng *Engine) *Exception {
		a, b, exc := popTwoInts(eng)
		if exc != nil {
			return exc
		}
		if a.IsNaN() || b.IsNaN() {
			return NewExceptionCode(IntegerOverflow)
		}
		pushBool(eng, f(a.Cmp(b)))
		return nil
	}
}

var execEqual = cmpHandler(func(c int) bool { return c == 0 })
var execLess = cmpHandler(func(c int) bool { return c < 0 })
var execGreater = cmpHandler(func(c int) bool { return c > 0 })
var execLeq = cmpHandler(func(c int) bool { return c <= 0 })
var execGeq = cmpHandler(func(c int) bool { return c >= 0 })

func execCmp(eng *Engine) *Exception {
	a, b, exc := popTwoInts(eng)
	if exc != nil {
		return exc
	}
	if a.IsNaN() || b.IsNaN() {
		return NewExceptionCode(IntegerOverflow)
	}
	eng.stack.Push(NewIntItem(NewIntFromInt64(int64(a.Cmp(b)))))
	return nil
}

func execAnd(eng *Engine) *Exception {
	a, b, exc := popTwoInts(eng)
	if exc != nil {
		return exc
	}
	r, exc := a.And(b)
	if exc != nil {
		return exc
	}
	eng.stack.Push(NewIntItem(r))
	return nil
}

func execOr(eng *Engine) *Exception {
	a, b, exc := popTwoInts(eng)
	if exc != nil {
		return exc
	}
	r, exc := a.Or(b)
	if exc != nil {
		return exc
	}
	eng.stack.Push(NewIntItem(r))
	return nil
}

func execXor(eng *Engine) *Exception {
	a, b, exc := popTwoInts(eng)
	if exc != nil {
		return exc
	}
	r, exc := a.Xor(b)
	if exc != nil {
		return exc
	}
	eng.stack.Push(NewIntItem(r))
	return nil
}

func execNot(eng *Engine) *Exception {
	a, exc := eng.stack.PopInt()
	if exc != nil {
		return exc
	}
	eng.stack.Push(NewIntItem(a.Not()))
	return nil
}

func execIsNaN(eng *Engine) *Exception {
	a, exc := eng.stack.PopInt()
	if exc != nil {
		return exc
	}
	pushBool(eng, a.IsNaN())
	return nil
}

func execChkNaN(eng *Engine) *Exception {
	a, exc := eng.stack.PopInt()
	if exc != nil {
		return exc
	}
	if a.IsNaN() {
		return NewExceptionCode(IntegerOverflow)
	}
	return nil
}
