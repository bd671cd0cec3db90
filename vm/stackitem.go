package vm

import (
	"fmt"

	"github.com/everx-labs/ever-vm/cell"
)

// Kind tags the variant a StackItem holds (§3.3).
type Kind byte

const (
	KindNull Kind = iota
	KindInt
	KindCell
	KindSlice
	KindBuilder
	KindContinuation
	KindTuple
)

func (k Kind) String() string {
	switch k {
	case KindNull:
		return "Null"
	case KindInt:
		return "Integer"
	case KindCell:
		return "Cell"
	case KindSlice:
		return "Slice"
	case KindBuilder:
		return "Builder"
	case KindContinuation:
		return "Continuation"
	case KindTuple:
		return "Tuple"
	default:
		return "?"
	}
}

// StackItem is the polymorphic value the operand stack and closures hold
// (§3.3). Cells, slices, builders, continuations and tuples are held by
// handle (pointer) and shared, never bit-copied, matching §5's "stack items
// that are Cell or Slice share the underlying cell by reference" rule.
type StackItem struct {
	kind  Kind
	i     *IntegerData
	c     *cell.Cell
	s     *cell.Slice
	b     *cell.Builder
	k     *Continuation
	tuple []StackItem
}

// Null is the singleton null value.
var Null = StackItem{kind: KindNull}

func NewIntItem(i *IntegerData) StackItem            { return StackItem{kind: KindInt, i: i} }
func NewCellItem(c *cell.Cell) StackItem             { return StackItem{kind: KindCell, c: c} }
func NewSliceItem(s *cell.Slice) StackItem           { return StackItem{kind: KindSlice, s: s} }
func NewBuilderItem(b *cell.Builder) StackItem       { return StackItem{kind: KindBuilder, b: b} }
func NewContinuationItem(k *Continuation) StackItem  { return StackItem{kind: KindContinuation, k: k} }
func NewTupleItem(items []StackItem) StackItem       { return StackItem{kind: KindTuple, tuple: items} }

func (v StackItem) Kind() Kind    { return v.kind }
func (v StackItem) IsNull() bool  { return v.kind == KindNull }

func (v StackItem) Int() (*IntegerData, *Exception) {
	if v.kind != KindInt {
		return nil, NewExceptionCode(TypeCheck)
	}
	return v.i, nil
}

func (v StackItem) Cell() (*cell.Cell, *Exception) {
	if v.kind != KindCell {
		return nil, NewExceptionCode(TypeCheck)
	}
	return v.c, nil
}

func (v StackItem) Slice() (*cell.Slice, *Exception) {
	if v.kind != KindSlice {
		return nil, NewExceptionCode(TypeCheck)
	}
	return v.s, nil
}

func (v StackItem) Builder() (*cell.Builder, *Exception) {
	if v.kind != KindBuilder {
		return nil, NewExceptionCode(TypeCheck)
	}
	return v.b, nil
}

func (v StackItem) Continuation() (*Continuation, *Exception) {
	if v.kind != KindContinuation {
		return nil, NewExceptionCode(TypeCheck)
	}
	return v.k, nil
}

func (v StackItem) Tuple() ([]StackItem, *Exception) {
	if v.kind != KindTuple {
		return nil, NewExceptionCode(TypeCheck)
	}
	return v.tuple, nil
}

// AsBool interprets an Integer as a boolean the way TVM does: zero is
// false, everything else (including negative values) is true.
func (v StackItem) AsBool() (bool, *Exception) {
	i, exc := v.Int()
	if exc != nil {
		return false, exc
	}
	if i.IsNaN() {
		return false, NewExceptionCode(IntegerOverflow)
	}
	return i.val.Sign() != 0, nil
}

// TupleDepth reports how deeply tuples are nested in items (0 when items
// holds no tuple). It only measures; it does not enforce a depth bound.
func TupleDepth(items []StackItem) int {
	max := 0
	for _, it := range items {
		if it.kind == KindTuple {
			d := 1 + TupleDepth(it.tuple)
			if d > max {
				max = d
			}
		}
	}
	return max
}

// Equal implements the by-value equality tuples require (§3.3): tuples
// compare element-wise, integers by numeric value, cells by content hash,
// and slices, builders and continuations by identity of the handle.
func (v StackItem) Equal(other StackItem) bool {
	if v.kind != other.kind {
		return false
	}
	switch v.kind {
	case KindNull:
		return true
	case KindInt:
		if v.i.IsNaN() || other.i.IsNaN() {
			return false
		}
		return v.i.Cmp(other.i) == 0
	case KindCell:
		return v.c.Equal(other.c)
	case KindSlice:
		return v.s == other.s
	case KindBuilder:
		return v.b == other.b
	case KindContinuation:
		return v.k == other.k
	case KindTuple:
		if len(v.tuple) != len(other.tuple) {
			return false
		}
		for i := range v.tuple {
			if !v.tuple[i].Equal(other.tuple[i]) {
				return false
			}
		}
		return true
	default:
		return false
	}
}

func (v StackItem) String() string {
	switch v.kind {
	case KindNull:
		return "null"
	case KindInt:
		if v.i.IsNaN() {
			return "NaN"
		}
		return v.i.val.String()
	case KindCell:
		return fmt.Sprintf("C{%s}", v.c.Hash())
	case KindSlice:
		return "CS"
	case KindBuilder:
		return "BC"
	case KindContinuation:
		return "Cont"
	case KindTuple:
		return fmt.Sprintf("Tuple(%d)", len(v.tuple))
	default:
		return "?"
	}
}
