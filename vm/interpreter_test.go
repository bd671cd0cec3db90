package vm

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/everx-labs/ever-vm/cell"
)

// asm is a tiny bit-level assembler for tests: it lets a test spell out an
// instruction stream as a sequence of (value, bitWidth) pairs instead of
// hand-computing byte offsets, the way cell_test.go builds cells directly
// with StoreUint/StoreInt rather than a real assembler (none exists at this
// layer, §6.1 places bytecode assembly outside THE CORE).
type asm struct {
	b *cell.Builder
}

func newAsm() *asm { return &asm{b: cell.NewBuilder()} }

func (a *asm) op(byteVal byte) *asm {
	require1(a.b.StoreUint(uint64(byteVal), 8))
	return a
}

func (a *asm) u(v uint64, n int) *asm {
	require1(a.b.StoreUint(v, n))
	return a
}

func (a *asm) i(v int64, n int) *asm {
	require1(a.b.StoreInt(big.NewInt(v), n))
	return a
}

func (a *asm) big(v *big.Int, n int) *asm {
	require1(a.b.StoreInt(v, n))
	return a
}

func require1(err error) {
	if err != nil {
		panic(err)
	}
}

func (a *asm) cell(t *testing.T) *cell.Cell {
	c, err := a.b.EndCell()
	require.NoError(t, err)
	return c
}

// pushint appends a full PUSHINT (opcode 0xD0, 9-bit width, width-bit
// signed payload), wide enough for any int64 test value.
func (a *asm) pushint(v int64) *asm {
	return a.op(0xD0).u(64, 9).i(v, 64)
}

func newTestEngine(t *testing.T, code *cell.Cell, gasLimit int64) *Engine {
	ctrls := NewControlRegs()
	gas := NewGas(gasLimit, 0, 0, 1)
	cache := cell.NewLoadCache(64)
	return NewEngine(code, ctrls, gas, &Config{}, cache, nil)
}

// testMaxInt257 is IntegerData's largest representable value, 2^256 - 1: the
// top (sign) bit clear, every other bit of a 257-bit word set.
func testMaxInt257() *big.Int {
	bound := new(big.Int).Lsh(big.NewInt(1), 256)
	return new(big.Int).Sub(bound, big.NewInt(1))
}

// TestArithmeticOverflowTraps covers spec.md §8.2 scenario 1: adding a
// value one past the representable range with checked ADD traps with
// IntegerOverflow, while the quiet ADDQ variant produces NaN and a normal
// exit instead.
func TestArithmeticOverflowTraps(t *testing.T) {
	code := newAsm().op(0xD0).u(257, 9).big(testMaxInt257(), 257).
		op(0xD0).u(9, 9).i(1, 9).
		op(0x10). // ADD
		cell(t)
	eng := newTestEngine(t, code, 1_000_000)
	exc := eng.Run()
	require.NotNil(t, exc)
	require.Equal(t, IntegerOverflow, exc.Code)
}

func TestArithmeticOverflowQuietIsNaN(t *testing.T) {
	code := newAsm().op(0xD0).u(257, 9).big(testMaxInt257(), 257).
		op(0xD0).u(9, 9).i(1, 9).
		op(0x11). // ADDQ
		cell(t)
	eng := newTestEngine(t, code, 1_000_000)
	exc := eng.Run()
	require.Nil(t, exc)
	require.Equal(t, 1, eng.Stack().Depth())
	v, xerr := eng.Stack().Peek(0)
	require.Nil(t, xerr)
	i, xerr := v.Int()
	require.Nil(t, xerr)
	require.True(t, i.IsNaN())
}

// TestCellRoundTrip covers scenario 2: PUSHINT 0xDEADBEEF; NEWC; STU 32;
// ENDC; CTOS; LDU 32; ENDS should leave exactly the original value on the
// stack with a normal exit.
func TestCellRoundTrip(t *testing.T) {
	code := newAsm().
		pushint(0xDEADBEEF). // PUSHINT 0xDEADBEEF
		op(0x30).            // NEWC
		op(0x33).u(32, 8).   // STU 32 (stack effect: x b - b')
		op(0x31).            // ENDC
		op(0x36).            // CTOS
		op(0x38).u(32, 8).   // LDU 32
		op(0x3D).            // ENDS
		cell(t)
	eng := newTestEngine(t, code, 1_000_000)
	exc := eng.Run()
	require.Nil(t, exc)
	require.Equal(t, 1, eng.Stack().Depth())
	v, xerr := eng.Stack().Pop()
	require.Nil(t, xerr)
	i, xerr := v.Int()
	require.Nil(t, xerr)
	require.EqualValues(t, 0xDEADBEEF, i.Int64())
}

// TestGasExhaustion covers scenario 3: a tight loop under a small gas
// limit must terminate with OutOfGas (exit code 13), never hang the
// driver loop or overrun into negative gas silently.
func TestGasExhaustion(t *testing.T) {
	// AGAIN wraps a single NOP forever; with a small gas limit the driver
	// must fault out well before it ever "completes".
	body := newAsm().op(0x00).cell(t) // NOP
	code := newAsm().
		op(0x50). // PUSHCONT
		mustPushRef(t, body).
		op(0x61). // AGAIN
		cell(t)
	eng := newTestEngine(t, code, 100)
	exc := eng.Run()
	require.NotNil(t, exc)
	require.Equal(t, OutOfGas, exc.Code)
}

func (a *asm) mustPushRef(t *testing.T, c *cell.Cell) *asm {
	require.NoError(t, a.b.StoreRef(c))
	return a
}

// TestDeterminism runs the same bytecode twice from identical initial
// state and requires byte-identical results: same exit code, same gas
// used, same final stack contents (spec.md §8.2 scenario 6, cut down from
// a 1000-element sort to a handful of arithmetic ops since determinism
// doesn't depend on data size).
func TestDeterminism(t *testing.T) {
	build := func() *cell.Cell {
		return newAsm().
			pushint(17).
			pushint(25).
			op(0x10). // ADD
			pushint(3).
			op(0x17). // MUL
			cell(t)
	}

	run := func() (exitCode int32, gasUsed int64, stack []string) {
		eng := newTestEngine(t, build(), 1_000_000)
		exc := eng.Run()
		if exc != nil {
			exitCode = int32(exc.Code)
		}
		gasUsed = eng.Gas().Used()
		for _, it := range eng.Stack().Items() {
			stack = append(stack, it.String())
		}
		return
	}

	c1, g1, s1 := run()
	c2, g2, s2 := run()
	require.Equal(t, c1, c2)
	require.Equal(t, g1, g2)
	require.Equal(t, s1, s2)
}

// TestCallReturnComposition checks that CALLX;RET produces the same stack
// as running the callee's body inline, verifying the continuation
// trampoline doesn't leak state across the switch (§9's "no host stack"
// requirement expressed as an observable equivalence).
func TestCallReturnComposition(t *testing.T) {
	callee := newAsm().pushint(9).op(0x10).op(0x55).cell(t) // PUSHINT 9; ADD; RET

	viaCall := newAsm().
		pushint(1).
		op(0x50).mustPushRef(t, callee). // PUSHCONT callee
		op(0x52).                        // CALLX
		cell(t)

	inline := newAsm().pushint(1).pushint(9).op(0x10).cell(t)

	engCall := newTestEngine(t, viaCall, 1_000_000)
	require.Nil(t, engCall.Run())
	engInline := newTestEngine(t, inline, 1_000_000)
	require.Nil(t, engInline.Run())

	require.Equal(t, engInline.Stack().Items(), engCall.Stack().Items())
}

// TestTryCatchStackScenario covers spec.md §8.2 scenario 4: with [5] on
// the stack, PUSHCONT{PUSHINT 1; THROW 77}; PUSHCONT{INC}; TRY leaves
// [5, 0, 78] (value=0, code=77, then the handler's INC bumps the top).
func TestTryCatchStackScenario(t *testing.T) {
	body := newAsm().pushint(1).op(0x5C).u(77, 16). // THROW 77
								cell(t)
	handler := newAsm().op(0x15).op(0x55).cell(t) // INC; RET

	code := newAsm().
		pushint(5).
		op(0x50).mustPushRef(t, body).
		op(0x50).mustPushRef(t, handler).
		op(0x5A). // TRY
		cell(t)

	eng := newTestEngine(t, code, 1_000_000)
	exc := eng.Run()
	require.Nil(t, exc)
	items := eng.Stack().Items()
	require.Len(t, items, 3)
	want := []int64{5, 0, 78}
	for idx, w := range want {
		v, xerr := items[idx].Int()
		require.Nil(t, xerr)
		require.EqualValuesf(t, w, v.Int64(), "slot %d", idx)
	}
}

// TestTrykeepPreservesStack covers the TRYKEEP invariant of spec.md §8.1:
// the stack after catching equals the pre-TRY stack with (value, code)
// pushed, regardless of what the body pushed before throwing.
func TestTrykeepPreservesStack(t *testing.T) {
	body := newAsm().
		pushint(111).
		pushint(222).
		op(0x5C).u(7, 16). // THROW 7
		cell(t)
	handler := newAsm().op(0x55).cell(t)

	code := newAsm().
		pushint(100). // pre-TRY stack: [100]
		op(0x50).mustPushRef(t, body).
		op(0x50).mustPushRef(t, handler).
		op(0x5B). // TRYKEEP
		cell(t)

	eng := newTestEngine(t, code, 1_000_000)
	exc := eng.Run()
	require.Nil(t, exc)
	items := eng.Stack().Items()
	require.Len(t, items, 3)
	first, xerr := items[0].Int()
	require.Nil(t, xerr)
	require.EqualValues(t, 100, first.Int64())
	value, xerr := items[1].Int()
	require.Nil(t, xerr)
	require.EqualValues(t, 0, value.Int64())
	excCode, xerr := items[2].Int()
	require.Nil(t, xerr)
	require.EqualValues(t, 7, excCode.Int64())
}

// TestOutOfGasNeverCaught checks that a TRY wrapping a body which runs out
// of gas does not route to the handler: OutOfGas is terminal (§4.4, §7).
func TestOutOfGasNeverCaught(t *testing.T) {
	body := newAsm().op(0x00).cell(t) // NOP, looped via AGAIN below
	loopBody := newAsm().
		op(0x50).mustPushRef(t, body).
		op(0x61). // AGAIN NOP forever
		cell(t)
	handler := newAsm().pushint(-1).op(0x55).cell(t)

	code := newAsm().
		op(0x50).mustPushRef(t, loopBody).
		op(0x50).mustPushRef(t, handler).
		op(0x5A). // TRY
		cell(t)

	eng := newTestEngine(t, code, 1000)
	exc := eng.Run()
	require.NotNil(t, exc)
	require.Equal(t, OutOfGas, exc.Code)
}

// TestTopLevelCallxTerminates checks that a CALLX at the top level returns
// control past the call and the program then halts normally, instead of
// looping forever. The entry continuation's own savelist used to be left
// empty, so re-entering it after the callee's RET never restored ctrls.c0
// away from the (by-then stale) entry continuation itself, and the next
// implicit RET jumped straight back into it, burning gas indefinitely.
func TestTopLevelCallxTerminates(t *testing.T) {
	callee := newAsm().pushint(9).op(0x10).op(0x55).cell(t) // PUSHINT 9; ADD; RET

	code := newAsm().
		pushint(1).
		op(0x50).mustPushRef(t, callee). // PUSHCONT callee
		op(0x52).                        // CALLX
		cell(t)

	eng := newTestEngine(t, code, 1_000_000)
	exc := eng.Run()
	require.Nil(t, exc)
	require.Equal(t, 1, eng.Stack().Depth())
	v, xerr := eng.Stack().Pop()
	require.Nil(t, xerr)
	i, xerr := v.Int()
	require.Nil(t, xerr)
	require.EqualValues(t, 10, i.Int64())
}

// TestTopLevelRepeatTerminates checks that REPEAT at the top level halts
// cleanly once its count is exhausted, the identical root cause as
// TestTopLevelCallxTerminates: the loop driver's exit target is the entry
// continuation, and an unpopulated entry savelist left ctrls.c0 stuck on
// the exhausted driver, causing an unconditional re-entry loop.
func TestTopLevelRepeatTerminates(t *testing.T) {
	body := newAsm().op(0x15).cell(t) // INC

	code := newAsm().
		pushint(0).
		pushint(2).
		op(0x50).mustPushRef(t, body). // PUSHCONT { INC }
		op(0x60).                      // REPEAT
		cell(t)

	eng := newTestEngine(t, code, 1_000_000)
	exc := eng.Run()
	require.Nil(t, exc)
	require.Equal(t, 1, eng.Stack().Depth())
	v, xerr := eng.Stack().Pop()
	require.Nil(t, xerr)
	i, xerr := v.Int()
	require.Nil(t, xerr)
	require.EqualValues(t, 2, i.Int64())
}
