package vm

import (
	"github.com/ethereum/go-ethereum/log"

	"github.com/everx-labs/ever-vm/cell"
)

// Engine is the driver loop's live state, the counterpart of
// EVMInterpreter/ScopeContext: the currently executing continuation, the
// control register bank, the operand stack, gas metering, configuration,
// and the per-run smart-contract info exposed through c7.
type Engine struct {
	cc     *Continuation
	ctrls  *ControlRegs
	stack  *Stack
	gas    *Gas
	config *Config
	sci    *SmartContractInfo
	cache  *cell.LoadCache

	lastOpcodeByte byte
	steps          uint64
	randSeed       *IntegerData
}

// NewEngine builds an engine ready to execute codeRoot. If ctrls has no c0
// installed, an ExcQuit continuation is installed so falling off the top
// level halts execution instead of faulting (§3.6, §6.2).
func NewEngine(codeRoot *cell.Cell, ctrls *ControlRegs, gas *Gas, config *Config, cache *cell.LoadCache, sci *SmartContractInfo) *Engine {
	eng := &Engine{
		ctrls:  ctrls,
		gas:    gas,
		config: config,
		cache:  cache,
		sci:    sci,
		stack:  NewStack(),
	}
	quit, exc := ctrls.Get(RegReturn)
	if exc != nil {
		quit = NewContinuationItem(NewExcQuitContinuation())
		ctrls.Set(RegReturn, quit)
	}
	eng.cc = NewOrdinaryContinuation(codeRoot.BeginParse())
	// The entry continuation's own savelist must carry the c0 in effect when
	// it starts running: enter's ContOrdinary case restores ctrls from a
	// continuation's savelist on every re-entry (after a CALLX returns, or a
	// top-level loop exhausts), and an empty savelist there is a no-op, which
	// would leave ctrls.c[0] pointing at whatever last ran instead of at the
	// quit continuation.
	eng.cc.Save.SetOnce(RegReturn, quit)
	if sci != nil {
		eng.randSeed = sci.RandSeed
	}
	if eng.randSeed == nil {
		eng.randSeed = NewIntFromInt64(0)
	}
	return eng
}

// Stack exposes the live operand stack (host inspection, §6.2).
func (eng *Engine) Stack() *Stack { return eng.stack }

// Gas exposes the metering state (host inspection, §6.2).
func (eng *Engine) Gas() *Gas { return eng.gas }

// Run drives the trampoline to completion: decode, charge, execute, unwind
// on exception, until the top-level ExcQuit continuation is reached or a
// terminal (non-catchable) fault occurs. It never recurses into itself for
// CALL/JMP/loop control — those are modeled as continuation switches that
// simply reassign eng.cc, per §9's "no host-language call stack" rule.
func (eng *Engine) Run() *Exception {
	defer recordRun(eng)
	for {
		if eng.cc.Kind == ContExcQuit {
			if eng.cc.PendingCode == NormalExit {
				return nil
			}
			return NewException(eng.cc.PendingCode, eng.cc.PendingValue)
		}

		if eng.cc.Code != nil && eng.cc.Code.Empty() {
			if gexc := eng.gas.ConsumeImplicitRet(); gexc != nil {
				log.Error("tvm: out of gas on implicit return", "remaining", eng.gas.Remaining())
				return gexc
			}
			k, exc := eng.ctrls.Continuation(RegReturn)
			if exc != nil {
				return exc
			}
			if exc := eng.doJump(k); exc != nil {
				if res := eng.handleFault(exc); res != nil {
					return res
				}
			}
			continue
		}

		op, exc := eng.decode()
		if exc != nil {
			if res := eng.handleFault(exc); res != nil {
				return res
			}
			continue
		}

		opcodeDispatchCounter.Inc(1)
		if gexc := eng.gas.TryUse(op.constGas); gexc != nil {
			outOfGasCounter.Inc(1)
			log.Error("tvm: out of gas", "op", op.name, "remaining", eng.gas.Remaining())
			return gexc
		}
		if op.stackDepthGas {
			if gexc := eng.gas.ConsumeStack(eng.stack.Depth()); gexc != nil {
				return gexc
			}
		}

		if execExc := op.execute(eng); execExc != nil {
			if res := eng.handleFault(execExc); res != nil {
				return res
			}
			continue
		}

		eng.steps++
		if eng.config.MaxSteps > 0 && eng.steps >= eng.config.MaxSteps {
			return NewExceptionCode(Fatal)
		}
	}
}

// handleFault routes a raised exception to the current c2, or returns it as
// terminal if there is nothing to catch it or gas ran out doing so.
// OutOfGas itself is never routed to a handler (§4.4, §7).
func (eng *Engine) handleFault(exc *Exception) *Exception {
	exceptionCounter.Inc(1)
	if exc.Code == OutOfGas {
		outOfGasCounter.Inc(1)
		log.Error("tvm: out of gas", "remaining", eng.gas.Remaining())
		return exc
	}
	return eng.raiseException(exc)
}

// raiseException implements TRY/TRYKEEP's unwinding (§4.1.3, §7): find the
// handler installed in c2, restore the previous handler, adjust the stack,
// push (value, code), and switch into the handler continuation. Returns the
// original exception unchanged if there is no usable handler.
func (eng *Engine) raiseException(exc *Exception) *Exception {
	hdlrItem, hexc := eng.ctrls.Get(RegExceptionHdlr)
	if hexc != nil || hdlrItem.Kind() != KindContinuation {
		return exc
	}
	marker, cexc := hdlrItem.Continuation()
	if cexc != nil || (marker.Kind != ContTryCatch && marker.Kind != ContCatchRevert) || marker.Next == nil {
		return exc
	}
	if gexc := eng.gas.ConsumeException(); gexc != nil {
		log.Error("tvm: out of gas handling exception", "remaining", eng.gas.Remaining())
		return gexc
	}
	if marker.PrevHandler != nil {
		eng.ctrls.Set(RegExceptionHdlr, NewContinuationItem(marker.PrevHandler))
	} else {
		eng.ctrls.Unset(RegExceptionHdlr)
	}

	handler := marker.Next
	if marker.HasTryKeepDepth {
		truncateStack(eng.stack, marker.TryKeepDepth)
	}
	eng.stack.Push(exc.Value)
	eng.stack.Push(NewIntItem(NewIntFromInt64(int64(exc.Code))))

	if retVal, ok := marker.Save.Get(RegReturn); ok {
		handler.Save.SetOnce(RegReturn, retVal)
	}
	return eng.enter(handler)
}

// truncateStack drops slots above n, used by TRY and TRYKEEP to restore the
// pre-body stack depth before pushing exception parameters.
func truncateStack(s *Stack, n int) {
	if n < 0 {
		n = 0
	}
	if len(s.items) > n {
		s.items = s.items[:n]
	}
}

// enter runs the continuation-switch trampoline: it repeatedly resolves
// PushInt and loop-driver continuations into the next real thing to run,
// finally landing eng.cc on an ordinary continuation or ExcQuit. This is
// the mechanism that lets CALL/RET/loops compose without growing a Go call
// stack (§9).
func (eng *Engine) enter(k *Continuation) *Exception {
	for {
		if k == nil {
			return NewExceptionCode(Fatal)
		}
		switch k.Kind {
		case ContExcQuit:
			eng.cc = k
			return nil

		case ContOrdinary:
			eng.ctrls.ApplySaveList(&k.Save)
			eng.cc = k
			return nil

		case ContPushInt:
			eng.stack.Push(NewIntItem(k.PushValue))
			k = k.Next
			continue

		case ContUntil:
			v, exc := eng.stack.Pop()
			if exc != nil {
				return exc
			}
			flag, exc := v.AsBool()
			if exc != nil {
				return exc
			}
			if flag {
				k = k.Next
				continue
			}
			k = spawnBody(k.BodyCell, k)
			continue

		case ContWhile:
			v, exc := eng.stack.Pop()
			if exc != nil {
				return exc
			}
			flag, exc := v.AsBool()
			if exc != nil {
				return exc
			}
			if !flag {
				k = k.Next
				continue
			}
			body := spawnBody(k.BodyCell, k)
			k = body
			continue

		case ContRepeat:
			if k.RepeatCount <= 0 {
				k = k.Next
				continue
			}
			k.RepeatCount--
			k = spawnBody(k.BodyCell, k)
			continue

		case ContAgain:
			k = spawnBody(k.BodyCell, k)
			continue

		default:
			return NewExceptionCode(Fatal)
		}
	}
}

// spawnBody builds a fresh ordinary continuation from bodyCell, its c0
// pointing back at driver so that when it returns (implicitly or
// explicitly) control resumes inside driver's own Kind-specific handling
// in enter above.
func spawnBody(bodyCell *cell.Cell, driver *Continuation) *Continuation {
	b := GetContinuation()
	b.Kind = ContOrdinary
	b.Code = bodyCell.BeginParse()
	b.Save.SetOnce(RegReturn, NewContinuationItem(driver))
	return b
}

// doJump switches into k without recording a return point (JMPX/RET-style).
func (eng *Engine) doJump(k *Continuation) *Exception { return eng.enter(k) }

// doCall switches into k after recording eng.cc as its c0, so that when k
// eventually returns, control resumes exactly after the calling
// instruction (CALLX/IF/IFELSE-style, §4.1.1).
func (eng *Engine) doCall(k *Continuation) *Exception {
	k.Save.SetOnce(RegReturn, NewContinuationItem(eng.cc))
	return eng.enter(k)
}

// doReturn implements RET: jump to whatever c0 currently holds.
func (eng *Engine) doReturn() *Exception {
	k, exc := eng.ctrls.Continuation(RegReturn)
	if exc != nil {
		return exc
	}
	return eng.doJump(k)
}

func popContinuation(eng *Engine) (*Continuation, *Exception) {
	v, exc := eng.stack.Pop()
	if exc != nil {
		return nil, exc
	}
	return v.Continuation()
}

func popBool(eng *Engine) (bool, *Exception) {
	v, exc := eng.stack.Pop()
	if exc != nil {
		return false, exc
	}
	return v.AsBool()
}
