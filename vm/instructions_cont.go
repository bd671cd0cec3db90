package vm

func execPushcont(eng *Engine) *Exception {
	ref, err := eng.cc.Code.LoadRef()
	if err != nil {
		return NewExceptionCode(InvalidOpcode)
	}
	eng.stack.Push(NewContinuationItem(NewOrdinaryContinuation(ref.BeginParse())))
	return nil
}

func execCallref(eng *Engine) *Exception {
	ref, err := eng.cc.Code.LoadRef()
	if err != nil {
		return NewExceptionCode(InvalidOpcode)
	}
	return eng.doCall(NewOrdinaryContinuation(ref.BeginParse()))
}

func execJmpref(eng *Engine) *Exception {
	ref, err := eng.cc.Code.LoadRef()
	if err != nil {
		return NewExceptionCode(InvalidOpcode)
	}
	if gexc := eng.gas.ConsumeImplicitJmp(); gexc != nil {
		return gexc
	}
	return eng.doJump(NewOrdinaryContinuation(ref.BeginParse()))
}

func execCallx(eng *Engine) *Exception {
	k, exc := popContinuation(eng)
	if exc != nil {
		return exc
	}
	return eng.doCall(k)
}

func execJmpx(eng *Engine) *Exception {
	k, exc := popContinuation(eng)
	if exc != nil {
		return exc
	}
	return eng.doJump(k)
}

func execRet(eng *Engine) *Exception    { return eng.doReturn() }
func execRetalt(eng *Engine) *Exception {
	k, exc := eng.ctrls.Continuation(RegAltReturn)
	if exc != nil {
		return exc
	}
	return eng.doJump(k)
}

func execIf(eng *Engine) *Exception {
	k, exc := popContinuation(eng)
	if exc != nil {
		return exc
	}
	flag, exc := popBool(eng)
	if exc != nil {
		return exc
	}
	if !flag {
		return nil
	}
	return eng.doCall(k)
}

func execIfelse(eng *Engine) *Exception {
	kElse, exc := popContinuation(eng)
	if exc != nil {
		return exc
	}
	kThen, exc := popContinuation(eng)
	if exc != nil {
		return exc
	}
	flag, exc := popBool(eng)
	if exc != nil {
		return exc
	}
	if flag {
		return eng.doCall(kThen)
	}
	return eng.doCall(kElse)
}

func execIfret(eng *Engine) *Exception {
	flag, exc := popBool(eng)
	if exc != nil {
		return exc
	}
	if !flag {
		return nil
	}
	return eng.doReturn()
}

func doTry(eng *Engine, keep bool) *Exception {
	handler, exc := popContinuation(eng)
	if exc != nil {
		return exc
	}
	body, exc := popContinuation(eng)
	if exc != nil {
		return exc
	}
	marker := GetContinuation()
	if keep {
		marker.Kind = ContCatchRevert
	} else {
		marker.Kind = ContTryCatch
	}
	marker.TryKeepDepth = eng.stack.Depth()
	marker.HasTryKeepDepth = true
	marker.Next = handler
	marker.Save.SetOnce(RegReturn, NewContinuationItem(eng.cc))
	if prev, exc := eng.ctrls.Get(RegExceptionHdlr); exc == nil && prev.Kind() == KindContinuation {
		marker.PrevHandler, _ = prev.Continuation()
	}
	if exc := eng.ctrls.Set(RegExceptionHdlr, NewContinuationItem(marker)); exc != nil {
		return exc
	}
	return eng.doCall(body)
}

func execTry(eng *Engine) *Exception     { return doTry(eng, false) }
func execTrykeep(eng *Engine) *Exception { return doTry(eng, true) }

func execThrow(eng *Engine) *Exception {
	code, err := eng.cc.Code.LoadUint(16)
	if err != nil {
		return NewExceptionCode(InvalidOpcode)
	}
	return NewExceptionCode(ExceptionCode(code))
}

func execThrowarg(eng *Engine) *Exception {
	code, err := eng.cc.Code.LoadUint(16)
	if err != nil {
		return NewExceptionCode(InvalidOpcode)
	}
	v, exc := eng.stack.Pop()
	if exc != nil {
		return exc
	}
	return NewException(ExceptionCode(code), v)
}

func execUntil(eng *Engine) *Exception {
	body, exc := popContinuation(eng)
	if exc != nil {
		return exc
	}
	bodyCell := body.Code.Cell()
	driver := GetContinuation()
	driver.Kind = ContUntil
	driver.BodyCell = bodyCell
	driver.Next = eng.cc
	body.Save.SetOnce(RegReturn, NewContinuationItem(driver))
	return eng.enter(body)
}

func execWhile(eng *Engine) *Exception {
	body, exc := popContinuation(eng)
	if exc != nil {
		return exc
	}
	cond, exc := popContinuation(eng)
	if exc != nil {
		return exc
	}
	driver := GetContinuation()
	driver.Kind = ContWhile
	driver.BodyCell = body.Code.Cell()
	driver.CondCell = cond.Code.Cell()
	driver.Next = eng.cc
	cond.Save.SetOnce(RegReturn, NewContinuationItem(driver))
	return eng.enter(cond)
}

func execRepeat(eng *Engine) *Exception {
	body, exc := popContinuation(eng)
	if exc != nil {
		return exc
	}
	count, exc := eng.stack.PopInt()
	if exc != nil {
		return exc
	}
	n := count.Int64()
	if n <= 0 {
		return nil
	}
	driver := GetContinuation()
	driver.Kind = ContRepeat
	driver.BodyCell = body.Code.Cell()
	driver.RepeatCount = n - 1
	driver.Next = eng.cc
	body.Save.SetOnce(RegReturn, NewContinuationItem(driver))
	return eng.enter(body)
}

func execAgain(eng *Engine) *Exception {
	body, exc := popContinuation(eng)
	if exc != nil {
		return exc
	}
	driver := GetContinuation()
	driver.Kind = ContAgain
	driver.BodyCell = body.Code.Cell()
	driver.Next = eng.cc
	body.Save.SetOnce(RegReturn, NewContinuationItem(driver))
	return eng.enter(body)
}

func execSetcontvarargs(eng *Engine) *Exception {
	n, exc := readOperandByte(eng)
	if exc != nil {
		return exc
	}
	k, exc := popContinuation(eng)
	if exc != nil {
		return exc
	}
	nargs := n
	if n == 0xFF {
		nargs = -1
	}
	take := nargs
	if nargs < 0 {
		take = eng.stack.Depth()
	}
	moved, exc := eng.stack.TakeTop(take)
	if exc != nil {
		return exc
	}
	k.Stack = moved
	k.Nargs = nargs
	eng.stack.Push(NewContinuationItem(k))
	return nil
}

func execPushintInline(eng *Engine) *Exception {
	// The 0x70-0x7F group packs a literal 0-15 into the primary byte itself;
	// no further operand bytes are read (§4.7 rule 2).
	literal := int64(eng.lastOpcodeByte) - 0x70
	eng.stack.Push(NewIntItem(NewIntFromInt64(literal)))
	return nil
}

func execPushint(eng *Engine) *Exception {
	width, err := eng.cc.Code.LoadUint(9)
	if err != nil {
		return NewExceptionCode(InvalidOpcode)
	}
	v, err := eng.cc.Code.LoadInt(int(width))
	if err != nil {
		return NewExceptionCode(InvalidOpcode)
	}
	eng.stack.Push(NewIntItem(NewIntFromBig(v)))
	return nil
}

func execPushnull(eng *Engine) *Exception {
	eng.stack.Push(Null)
	return nil
}

func execIsnull(eng *Engine) *Exception {
	v, exc := eng.stack.Pop()
	if exc != nil {
		return exc
	}
	pushBool(eng, v.IsNull())
	return nil
}
