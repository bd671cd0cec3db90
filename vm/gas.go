package vm

// Gas pricing constants, ported verbatim from the reference implementation's
// gas_state.rs (see SPEC_FULL.md "Supplemented Features" and DESIGN.md for
// the grounding). These are consensus artifacts: nodes must agree on them
// bit-for-bit, so they are not "tunable defaults", they are the spec.
const (
	cellLoadGasPrice     int64 = 100
	cellReloadGasPrice   int64 = 25
	cellCreateGasPrice   int64 = 500
	exceptionGasPrice    int64 = 50
	tupleEntryGasPrice   int64 = 1
	implicitJmpGasPrice  int64 = 10
	implicitRetGasPrice  int64 = 5
	freeStackDepth       int64 = 32
	stackEntryGasPrice   int64 = 1
	defaultMaxGas        int64 = (1 << 63) - 1
)

// Gas is the metering state of §3.7/§4.4: limit, credit, remaining, max,
// base (charge accumulator), and price (nanograms per gas unit, the rate
// BUYGAS converts at).
type Gas struct {
	limit     int64
	limitMax  int64
	credit    int64
	remaining int64
	price     int64
	base      int64
}

// NewGas builds metering state the way gas_state.rs's Gas::new does:
// remaining starts at limit+credit, and base tracks that starting point so
// "gas used" can be computed by difference.
func NewGas(limit, credit, limitMax, price int64) *Gas {
	if limitMax <= 0 {
		limitMax = defaultMaxGas
	}
	remaining := limit + credit
	return &Gas{
		limit:     limit,
		limitMax:  limitMax,
		credit:    credit,
		remaining: remaining,
		price:     price,
		base:      remaining,
	}
}

func (g *Gas) Limit() int64     { return g.limit }
func (g *Gas) LimitMax() int64  { return g.limitMax }
func (g *Gas) Credit() int64    { return g.credit }
func (g *Gas) Remaining() int64 { return g.remaining }
func (g *Gas) Price() int64     { return g.price }

// UsedFull reports consumption even mid-overrun (may exceed base if
// remaining went negative before the driver noticed).
func (g *Gas) UsedFull() int64 { return g.base - g.remaining }

// Used reports committed consumption: clamped to base once exhausted,
// matching gas_state.rs's get_gas_used.
func (g *Gas) Used() int64 {
	if g.remaining > 0 {
		return g.base - g.remaining
	}
	return g.base
}

// Use deducts gas and returns the new remaining balance without checking
// it; callers that need the OutOfGas exception call TryUse instead.
func (g *Gas) Use(amount int64) int64 {
	g.remaining -= amount
	return g.remaining
}

// TryUse deducts gas and raises OutOfGas if the balance goes negative
// (§4.4). OutOfGas is the one exception the unwinder never routes to c2.
func (g *Gas) TryUse(amount int64) *Exception {
	g.remaining -= amount
	if g.remaining < 0 {
		return NewException(OutOfGas, NewIntItem(NewIntFromInt64(g.base-g.remaining)))
	}
	return nil
}

// BasicPrice computes an instruction's base price: a flat 10 plus its
// encoded length in bytes (§4.4).
func BasicPrice(instructionLen int) int64 { return 10 + int64(instructionLen) }

// ConsumeBasic charges an instruction's base price.
func (g *Gas) ConsumeBasic(instructionLen int) *Exception {
	return g.TryUse(BasicPrice(instructionLen))
}

// ConsumeException charges the fixed cost of invoking an exception handler.
func (g *Gas) ConsumeException() *Exception { return g.TryUse(exceptionGasPrice) }

// ConsumeFinalize charges the cost of building and finalizing a cell (ENDC).
func (g *Gas) ConsumeFinalize() *Exception { return g.TryUse(cellCreateGasPrice) }

// ConsumeImplicitJmp charges the jump surcharge the JMPREF opcode pays on
// top of its base price. The driver loop never performs an implicit jump
// into a leftover code reference, so nothing else charges it.
func (g *Gas) ConsumeImplicitJmp() *Exception { return g.TryUse(implicitJmpGasPrice) }

// ConsumeImplicitRet charges the cost of an implicit RET (§4.1.2).
func (g *Gas) ConsumeImplicitRet() *Exception { return g.TryUse(implicitRetGasPrice) }

// ConsumeLoadCell charges the first-load or repeated-load price for a cell,
// per the loaded-cell dedup cache (§4.4, §5).
func (g *Gas) ConsumeLoadCell(first bool) *Exception {
	if first {
		return g.TryUse(cellLoadGasPrice)
	}
	return g.TryUse(cellReloadGasPrice)
}

// ConsumeStack charges the per-slot fee for stack operations that move
// slots above freeStackDepth (§3.4, §4.2).
func (g *Gas) ConsumeStack(depth int) *Exception {
	d := int64(depth)
	if d < freeStackDepth {
		d = freeStackDepth
	}
	return g.TryUse(stackEntryGasPrice * (d - freeStackDepth))
}

// ConsumeTuple charges the per-entry cost of building or copying a tuple.
func (g *Gas) ConsumeTuple(length int) *Exception {
	return g.TryUse(tupleEntryGasPrice * int64(length))
}

// SetGasLimit implements SETGASLIMIT (§4.4): raising or lowering the limit
// preserves gas already spent by shifting remaining by the delta, rather
// than resetting it outright (see SPEC_FULL.md Supplemented Features #2).
// Lowering the limit below what's already consumed traps OutOfGas.
func (g *Gas) SetGasLimit(newLimit int64) *Exception {
	if newLimit < 0 {
		newLimit = 0
	}
	if newLimit > g.limitMax {
		newLimit = g.limitMax
	}
	if newLimit < g.Used() {
		return NewException(OutOfGas, NewIntItem(NewIntFromInt64(g.Used())))
	}
	g.credit = 0
	g.remaining += newLimit - g.base
	g.base = newLimit
	g.limit = newLimit
	return nil
}

// BuyGas implements BUYGAS: convert grams to gas units at the configured
// price and add them to the limit, clamping at limitMax (Open Question #1
// in DESIGN.md — plain floor integer division, no float anywhere).
func (g *Gas) BuyGas(grams int64) *Exception {
	if g.price <= 0 {
		return NewExceptionCode(RangeCheck)
	}
	units := grams / g.price
	if units < 0 {
		units = 0
	}
	newLimit := g.limit + units
	if newLimit > g.limitMax || newLimit < g.limit /* overflow */ {
		newLimit = g.limitMax
	}
	return g.SetGasLimit(newLimit)
}

// Accept implements ACCEPT: any outstanding credit becomes committed gas,
// irreversibly (§3.7, §4.4).
func (g *Gas) Accept() {
	if g.credit == 0 {
		return
	}
	g.limit += g.credit
	g.base += g.credit
	g.credit = 0
}
