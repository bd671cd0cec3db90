package vm

import (
	"sync"

	"github.com/everx-labs/ever-vm/cell"
)

// ContKind distinguishes the continuation type variants of §3.6, each with
// its own return/re-fire semantics.
type ContKind byte

const (
	ContOrdinary ContKind = iota
	ContTryCatch
	ContCatchRevert // TRYKEEP: preserves outer slots up to a recorded depth
	ContUntil
	ContRepeat
	ContAgain
	ContWhile
	ContExcQuit
	ContPushInt
)

// Continuation is a first-class resumable code value (§3.6): a code
// pointer, an optional saved stack, saved control registers, and a type
// variant that governs what happens when the continuation is entered or
// re-fires.
type Continuation struct {
	Kind ContKind

	Code *cell.Slice // nil for ExcQuit and PushInt

	// Stack is the continuation's own "closure stack" populated by
	// SETCONTVARARGS. Entering the continuation does not push these values
	// back: it always runs against the caller's stack.
	Stack *Stack

	// Nargs is the number of stack values this continuation expects to
	// receive on entry; -1 means "all of them" (§4.1.1).
	Nargs int

	Save SaveList

	// PushValue backs the PushInt variant (§3.6): entering it pushes a
	// constant integer and falls through to Next.
	PushValue *IntegerData

	// Next is the driver's exit target: for a loop driver, the continuation
	// to resume once the loop ends; for a PushInt continuation, what to run
	// after the value is pushed.
	Next *Continuation

	// BodyCell/CondCell hold the loop body's and (for While) the
	// condition's code, re-parsed into a fresh Slice on every iteration
	// since a Slice's cursor is consumed as it runs (§4.1.4).
	BodyCell    *cell.Cell
	CondCell    *cell.Cell
	RepeatCount int64

	// PrevHandler is the c2 continuation in effect before a TRY installed
	// this marker, restored once this handler has fired (§4.1.3).
	PrevHandler *Continuation

	// TryKeepDepth is the stack depth recorded at TRY/TRYKEEP entry, after
	// popping the body and handler continuations: on catch, the stack is
	// truncated back to this depth before (value, code) are pushed, so
	// whatever the body itself pushed before throwing is dropped (§4.1.3,
	// scenario 4 and 5).
	TryKeepDepth    int
	HasTryKeepDepth bool

	// PendingCode/PendingValue carry the exception into an ExcQuit's exit.
	PendingCode  ExceptionCode
	PendingValue StackItem
}

// contPool reuses Continuation allocations the way core/vm's contractPool
// reuses *Contract (contract_pool.go): loop openers and TRY/CATCH build a
// fresh continuation on essentially every entry.
var contPool = sync.Pool{New: func() any { return &Continuation{} }}

// GetContinuation returns a zeroed continuation from the pool.
func GetContinuation() *Continuation {
	c := contPool.Get().(*Continuation)
	*c = Continuation{Nargs: -1}
	return c
}

// ReturnContinuation returns c to the pool. Callers must not retain c or
// anything that still points into it after calling this (in particular,
// don't return a continuation another StackItem may still reference).
func ReturnContinuation(c *Continuation) {
	if c == nil {
		return
	}
	contPool.Put(c)
}

// NewOrdinaryContinuation builds a plain sequential-code continuation.
func NewOrdinaryContinuation(code *cell.Slice) *Continuation {
	c := GetContinuation()
	c.Kind = ContOrdinary
	c.Code = code
	return c
}

// NewExcQuitContinuation builds the terminal continuation that ends
// execution and surfaces the pending exception to the host (§3.6, §4.1.2).
func NewExcQuitContinuation() *Continuation {
	c := GetContinuation()
	c.Kind = ContExcQuit
	return c
}

// NewPushIntContinuation builds the optimized value-push continuation used
// by the assembler for small integer literals followed by a jump (§3.6).
func NewPushIntContinuation(v *IntegerData, next *Continuation) *Continuation {
	c := GetContinuation()
	c.Kind = ContPushInt
	c.PushValue = v
	c.Next = next
	return c
}

// Clone deep-clones a continuation only at the handle boundary needed to
// preserve a donor continuation across a switch that mutates it (§3.6
// lifecycle note, §5's copy-on-write rule). The code slice and closure
// stack items are shared; only the continuation's own scalar/struct fields
// and immediate stack slice header are copied.
func (c *Continuation) Clone() *Continuation {
	if c == nil {
		return nil
	}
	out := GetContinuation()
	*out = *c
	out.Save = *c.Save.Clone()
	if c.Stack != nil {
		out.Stack = c.Stack.Clone()
	}
	return out
}
