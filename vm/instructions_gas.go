package vm

// execAccept implements ACCEPT: commit outstanding gas credit irreversibly
// (§3.7, §4.4). Contracts call this once they've validated the incoming
// message enough to be willing to pay for the rest of execution.
func execAccept(eng *Engine) *Exception {
	eng.gas.Accept()
	return nil
}

func execSetgaslimit(eng *Engine) *Exception {
	v, exc := eng.stack.PopInt()
	if exc != nil {
		return exc
	}
	return eng.gas.SetGasLimit(v.Int64())
}

func execBuygas(eng *Engine) *Exception {
	v, exc := eng.stack.PopInt()
	if exc != nil {
		return exc
	}
	return eng.gas.BuyGas(v.Int64())
}

func execGasremaining(eng *Engine) *Exception {
	eng.stack.Push(NewIntItem(NewIntFromInt64(eng.gas.Remaining())))
	return nil
}
