package vm

import (
	"testing"

	"github.com/stretchr/testify/require"
)

// TestSetcontvarargsPartial checks SETCONTVARARGS n only moves the top n
// stack values into the continuation's closure, leaving the rest on the
// caller's stack. An earlier draft always moved the entire stack
// regardless of n.
func TestSetcontvarargsPartial(t *testing.T) {
	body := newAsm().op(0x00).cell(t) // NOP
	code := newAsm().
		pushint(1).
		pushint(2).
		pushint(3).
		op(0x50).mustPushRef(t, body). // PUSHCONT { NOP }
		op(0x62).u(2, 8).              // SETCONTVARARGS 2
		cell(t)

	eng := newTestEngine(t, code, 1_000_000)
	exc := eng.Run()
	require.Nil(t, exc)

	require.Equal(t, 2, eng.Stack().Depth())

	leftover, xerr := eng.Stack().Peek(1)
	require.Nil(t, xerr)
	leftoverInt, xerr := leftover.Int()
	require.Nil(t, xerr)
	require.EqualValues(t, 1, leftoverInt.Int64())

	top, xerr := eng.Stack().Peek(0)
	require.Nil(t, xerr)
	k, xerr := top.Continuation()
	require.Nil(t, xerr)
	require.Equal(t, 2, k.Nargs)
	require.NotNil(t, k.Stack)
	require.Equal(t, 2, k.Stack.Depth())
	first, xerr := k.Stack.Peek(1)
	require.Nil(t, xerr)
	firstInt, xerr := first.Int()
	require.Nil(t, xerr)
	require.EqualValues(t, 2, firstInt.Int64())
	second, xerr := k.Stack.Peek(0)
	require.Nil(t, xerr)
	secondInt, xerr := second.Int()
	require.Nil(t, xerr)
	require.EqualValues(t, 3, secondInt.Int64())
}

// TestSetcontvarargsAll checks n=-1 (encoded as 0xFF) still moves the
// entire remaining caller stack into the closure.
func TestSetcontvarargsAll(t *testing.T) {
	body := newAsm().op(0x00).cell(t) // NOP
	code := newAsm().
		pushint(1).
		pushint(2).
		op(0x50).mustPushRef(t, body). // PUSHCONT { NOP }
		op(0x62).u(0xFF, 8).           // SETCONTVARARGS -1 (all)
		cell(t)

	eng := newTestEngine(t, code, 1_000_000)
	exc := eng.Run()
	require.Nil(t, exc)

	require.Equal(t, 1, eng.Stack().Depth())
	top, xerr := eng.Stack().Peek(0)
	require.Nil(t, xerr)
	k, xerr := top.Continuation()
	require.Nil(t, xerr)
	require.Equal(t, -1, k.Nargs)
	require.NotNil(t, k.Stack)
	require.Equal(t, 2, k.Stack.Depth())
}
