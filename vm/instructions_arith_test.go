package vm

import (
	"testing"

	"github.com/stretchr/testify/require"
)

// TestDivModRounding covers the DIVMOD family's floor, ceiling, round,
// and Euclidean opcodes (§4.6) across positive and negative dividends.
// DivMod's floor/ceil/round paths used to derive their starting quotient
// from big.Int's Div/Mod (Euclidean) and then apply an adjustment meant
// for a truncated (Quo/Rem) starting point, which is wrong by one for
// most sign combinations with a negative dividend; the positive-only
// cases here previously masked that.
func TestDivModRounding(t *testing.T) {
	cases := []struct {
		name   string
		opcode byte
		a, b   int64
		wantQ  int64
	}{
		{"DIV floor positive", 0x1A, 7, 2, 3},
		{"DIV floor negative dividend, positive divisor", 0x1A, -7, 2, -4},
		{"DIV floor negative dividend, negative divisor", 0x1A, -7, -2, 3},
		{"DIV floor positive dividend, negative divisor", 0x1A, 7, -2, -4},
		{"DIVC positive", 0x29, 7, 2, 4},
		{"DIVC exact", 0x29, 6, 2, 3},
		{"DIVC negative dividend, positive divisor", 0x29, -7, 2, -3},
		{"DIVC negative dividend, negative divisor", 0x29, -7, -2, 4},
		{"DIVR half rounds away from zero", 0x2C, 7, 2, 4}, // 3.5 rounds to 4
		{"DIVR rounds to nearest", 0x2C, 9, 4, 2},          // 2.25 rounds to 2
		{"DIVR negative dividend rounds away from zero", 0x2C, -7, 2, -4},
		{"DIVR negative dividend rounds to nearest", 0x2C, -9, 4, -2},
		{"DIVEUCLID positive", 0x2F, 7, 2, 3},
		{"DIVEUCLID negative dividend, positive divisor", 0x2F, -7, 2, -4},
		{"DIVEUCLID negative dividend, negative divisor", 0x2F, -7, -2, 4},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			code := newAsm().pushint(c.a).pushint(c.b).op(c.opcode).cell(t)
			eng := newTestEngine(t, code, 1_000_000)
			exc := eng.Run()
			require.Nil(t, exc)
			require.Equal(t, 1, eng.Stack().Depth())
			v, xerr := eng.Stack().Pop()
			require.Nil(t, xerr)
			i, xerr := v.Int()
			require.Nil(t, xerr)
			require.EqualValues(t, c.wantQ, i.Int64())
		})
	}
}

// TestDivModCFullPair checks DIVMODC returns both the ceiling quotient and
// its matching remainder, remainder on top.
func TestDivModCFullPair(t *testing.T) {
	code := newAsm().pushint(7).pushint(2).op(0x2B).cell(t) // DIVMODC
	eng := newTestEngine(t, code, 1_000_000)
	exc := eng.Run()
	require.Nil(t, exc)
	items := eng.Stack().Items()
	require.Len(t, items, 2)
	rem, xerr := items[1].Int()
	require.Nil(t, xerr)
	quot, xerr := items[0].Int()
	require.Nil(t, xerr)
	require.EqualValues(t, 4, quot.Int64())
	require.EqualValues(t, -1, rem.Int64())
}

// TestDivModFloorFullPairNegative checks the plain floor DIVMOD's
// quotient and remainder both come out right for a negative dividend
// (q*b+r must equal a), the exact case the maintainer's review reported
// as broken (q=-4, not the pre-fix q=-5).
func TestDivModFloorFullPairNegative(t *testing.T) {
	code := newAsm().pushint(-7).pushint(2).op(0x19).cell(t) // DIVMOD
	eng := newTestEngine(t, code, 1_000_000)
	exc := eng.Run()
	require.Nil(t, exc)
	items := eng.Stack().Items()
	require.Len(t, items, 2)
	rem, xerr := items[1].Int()
	require.Nil(t, xerr)
	quot, xerr := items[0].Int()
	require.Nil(t, xerr)
	require.EqualValues(t, -4, quot.Int64())
	require.EqualValues(t, 1, rem.Int64())
}

// TestModFloorNegative checks the standalone MOD opcode (remainder only)
// for a negative dividend against a negative divisor.
func TestModFloorNegative(t *testing.T) {
	code := newAsm().pushint(-7).pushint(-2).op(0x1B).cell(t) // MOD
	eng := newTestEngine(t, code, 1_000_000)
	exc := eng.Run()
	require.Nil(t, exc)
	require.Equal(t, 1, eng.Stack().Depth())
	v, xerr := eng.Stack().Pop()
	require.Nil(t, xerr)
	i, xerr := v.Int()
	require.Nil(t, xerr)
	require.EqualValues(t, -1, i.Int64())
}
