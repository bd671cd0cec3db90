package vm

import (
	"math/big"

	"github.com/holiman/uint256"
)

// integerBound is 2^256, the boundary beyond which IntegerData needs the
// 257th bit that uint256.Int cannot represent (§3.2).
var integerBound = new(big.Int).Lsh(big.NewInt(1), 256)

// minInt257 and maxInt257 are the inclusive bounds of a non-NaN IntegerData
// value: [-2^256, 2^256 - 1].
var (
	minInt257 = new(big.Int).Neg(integerBound)
	maxInt257 = new(big.Int).Sub(integerBound, big.NewInt(1))
)

// IntegerData is a signed integer whose magnitude fits in 257 bits, plus a
// distinguished NaN (§3.2). The zero value is the integer zero, not NaN.
type IntegerData struct {
	val   *big.Int
	isNaN bool
}

// NewIntFromInt64 wraps a machine integer.
func NewIntFromInt64(v int64) *IntegerData {
	return &IntegerData{val: big.NewInt(v)}
}

// NewIntFromBig takes ownership of v (callers must not mutate it afterward).
func NewIntFromBig(v *big.Int) *IntegerData {
	i := &IntegerData{val: v}
	if !i.inRange() {
		return NaN()
	}
	return i
}

// NewIntFromUint256 wraps an unsigned 256-bit value.
func NewIntFromUint256(v *uint256.Int) *IntegerData {
	return &IntegerData{val: v.ToBig()}
}

// NaN returns the distinguished not-a-number value.
func NaN() *IntegerData {
	return &IntegerData{isNaN: true, val: big.NewInt(0)}
}

// IsNaN reports whether the value is the distinguished NaN.
func (i *IntegerData) IsNaN() bool { return i.isNaN }

func (i *IntegerData) inRange() bool {
	return i.val.Cmp(minInt257) >= 0 && i.val.Cmp(maxInt257) <= 0
}

// BigInt returns the underlying magnitude. The caller must not mutate the
// returned value. Undefined (returns 0) for NaN.
func (i *IntegerData) BigInt() *big.Int { return i.val }

// Int64 returns the value truncated to an int64; callers should check
// FitsInt64 first for anything not already known to be small.
func (i *IntegerData) Int64() int64 { return i.val.Int64() }

// FitsInt64 reports whether the value round-trips through int64.
func (i *IntegerData) FitsInt64() bool {
	return i.val.IsInt64()
}

// ToUint256 attempts the fast 256-bit path used by cell serialization; ok is
// false for NaN or values needing the 257th bit.
func (i *IntegerData) ToUint256() (v *uint256.Int, ok bool) {
	if i.isNaN {
		return nil, false
	}
	if i.val.Sign() < 0 {
		mod := new(big.Int).Add(i.val, integerBound)
		if mod.Sign() < 0 {
			return nil, false
		}
		u, overflow := uint256.FromBig(mod)
		return u, !overflow
	}
	if i.val.BitLen() > 256 {
		return nil, false
	}
	u, overflow := uint256.FromBig(i.val)
	return u, !overflow
}

// FitsSigned reports whether the value fits in an n-bit two's-complement
// representation (used by STI/range checks).
func (i *IntegerData) FitsSigned(n int) bool {
	if i.isNaN {
		return false
	}
	bound := new(big.Int).Lsh(big.NewInt(1), uint(n-1))
	neg := new(big.Int).Neg(bound)
	max := new(big.Int).Sub(bound, big.NewInt(1))
	return i.val.Cmp(neg) >= 0 && i.val.Cmp(max) <= 0
}

// FitsUnsigned reports whether the value fits in an n-bit unsigned
// representation.
func (i *IntegerData) FitsUnsigned(n int) bool {
	if i.isNaN || i.val.Sign() < 0 {
		return false
	}
	bound := new(big.Int).Lsh(big.NewInt(1), uint(n))
	return i.val.Cmp(bound) < 0
}

// Cmp compares two non-NaN values, returning -1, 0 or +1 as a Go int; CMP
// wraps that in an IntegerData since TVM comparisons push integers, not
// booleans (§4.6).
func (i *IntegerData) Cmp(other *IntegerData) int {
	return i.val.Cmp(other.val)
}

// arithResult clamps a computed big.Int back into IntegerData range,
// producing NaN on overflow when quiet, or reporting overflow when checked.
func arithResult(v *big.Int, quiet bool) (*IntegerData, *Exception) {
	r := &IntegerData{val: v}
	if r.inRange() {
		return r, nil
	}
	if quiet {
		return NaN(), nil
	}
	return nil, NewExceptionCode(IntegerOverflow)
}

func binOp(a, b *IntegerData, quiet bool, f func(z, x, y *big.Int) *big.Int) (*IntegerData, *Exception) {
	if a.isNaN || b.isNaN {
		if quiet {
			return NaN(), nil
		}
		return nil, NewExceptionCode(IntegerOverflow)
	}
	z := new(big.Int)
	f(z, a.val, b.val)
	return arithResult(z, quiet)
}

func (a *IntegerData) Add(b *IntegerData, quiet bool) (*IntegerData, *Exception) {
	return binOp(a, b, quiet, func(z, x, y *big.Int) *big.Int { return z.Add(x, y) })
}

func (a *IntegerData) Sub(b *IntegerData, quiet bool) (*IntegerData, *Exception) {
	return binOp(a, b, quiet, func(z, x, y *big.Int) *big.Int { return z.Sub(x, y) })
}

func (a *IntegerData) Mul(b *IntegerData, quiet bool) (*IntegerData, *Exception) {
	return binOp(a, b, quiet, func(z, x, y *big.Int) *big.Int { return z.Mul(x, y) })
}

func (a *IntegerData) Neg(quiet bool) (*IntegerData, *Exception) {
	if a.isNaN {
		if quiet {
			return NaN(), nil
		}
		return nil, NewExceptionCode(IntegerOverflow)
	}
	return arithResult(new(big.Int).Neg(a.val), quiet)
}

// DivMode selects the rounding rule for DIV/MOD/DIVMOD opcode suffixes (§4.6).
type DivMode int

const (
	DivFloor DivMode = iota
	DivCeil
	DivRound
	DivEuclid
)

// DivMod implements the DIVMOD family: floor, ceiling, nearest, or
// Euclidean division, per the opcode suffix, quiet or checked.
func (a *IntegerData) DivMod(b *IntegerData, mode DivMode, quiet bool) (q, r *IntegerData, exc *Exception) {
	if a.isNaN || b.isNaN {
		if quiet {
			return NaN(), NaN(), nil
		}
		return nil, nil, NewExceptionCode(IntegerOverflow)
	}
	if b.val.Sign() == 0 {
		if quiet {
			return NaN(), NaN(), nil
		}
		return nil, nil, NewExceptionCode(IntegerOverflow)
	}
	qq, rr := new(big.Int), new(big.Int)
	switch mode {
	case DivEuclid:
		qq.DivMod(a.val, b.val, rr) // big.Int's DivMod is Euclidean
	case DivFloor:
		qq.Quo(a.val, b.val)
		rr.Rem(a.val, b.val)
		floorDivFix(qq, rr, a.val, b.val)
	case DivCeil:
		qq.Quo(a.val, b.val)
		rr.Rem(a.val, b.val)
		ceilDivFix(qq, rr, a.val, b.val)
	case DivRound:
		qq, rr = roundDiv(a.val, b.val)
	}
	qi, exc := arithResult(qq, quiet)
	if exc != nil {
		return nil, nil, exc
	}
	ri, exc := arithResult(rr, quiet)
	if exc != nil {
		return nil, nil, exc
	}
	return qi, ri, nil
}

// floorDivFix and ceilDivFix both take q, r already set to the
// truncated-toward-zero quotient and remainder (big.Int's Quo/Rem) and
// adjust both in place by one division step when the truncated result
// lands on the wrong side of the target rounding rule. Mixing a
// truncated remainder with big.Int's Div/Mod (which is Euclidean, always
// nonnegative) here would misfire the adjustment for negative operands,
// so callers must pass Quo/Rem results, not Div/Mod.

// floorDivFix rounds toward negative infinity: the truncated quotient is
// already the floor when x and y share a sign; otherwise it overshoots
// by one whenever there is a nonzero remainder.
func floorDivFix(q, r, x, y *big.Int) {
	if r.Sign() != 0 && (x.Sign() < 0) != (y.Sign() < 0) {
		q.Sub(q, big.NewInt(1))
		r.Add(r, y)
	}
}

// ceilDivFix rounds toward positive infinity: the truncated quotient
// undershoots by one whenever x and y share a sign and there is a
// nonzero remainder.
func ceilDivFix(q, r, x, y *big.Int) {
	if r.Sign() != 0 && (x.Sign() < 0) == (y.Sign() < 0) {
		q.Add(q, big.NewInt(1))
		r.Sub(r, y)
	}
}

// roundDiv rounds to the nearest integer, ties away from zero, starting
// from the truncated quotient/remainder and stepping by one division
// step toward the far endpoint when the remainder is at least half of y.
func roundDiv(x, y *big.Int) (q, r *big.Int) {
	q = new(big.Int).Quo(x, y)
	r = new(big.Int).Rem(x, y)
	halfY := new(big.Int).Abs(y)
	twiceAbsRem := new(big.Int).Mul(new(big.Int).Abs(r), big.NewInt(2))
	if twiceAbsRem.Cmp(halfY) >= 0 {
		if (x.Sign() < 0) == (y.Sign() < 0) {
			q.Add(q, big.NewInt(1))
			r.Sub(r, y)
		} else {
			q.Sub(q, big.NewInt(1))
			r.Add(r, y)
		}
	}
	return q, r
}

// And, Or, Xor, Not treat integers as sign-extended infinite precision
// values (§4.6); big.Int's bitwise ops already implement two's-complement
// semantics for negative numbers.
func (a *IntegerData) And(b *IntegerData) (*IntegerData, *Exception) {
	return binOp(a, b, true, func(z, x, y *big.Int) *big.Int { return z.And(x, y) })
}

func (a *IntegerData) Or(b *IntegerData) (*IntegerData, *Exception) {
	return binOp(a, b, true, func(z, x, y *big.Int) *big.Int { return z.Or(x, y) })
}

func (a *IntegerData) Xor(b *IntegerData) (*IntegerData, *Exception) {
	return binOp(a, b, true, func(z, x, y *big.Int) *big.Int { return z.Xor(x, y) })
}

func (a *IntegerData) Not() *IntegerData {
	return &IntegerData{val: new(big.Int).Not(a.val)}
}
