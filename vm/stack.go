package vm

// StackLimit is the typical maximum operand stack depth (§3.4). Deeper
// "long stack" programs are permitted; slots above freeStackDepth simply
// cost extra gas (§4.5, gas.go).
const StackLimit = 255

// Stack is the ordered operand stack. Index 0 is the bottom; the top is the
// last element, matching core/vm's Stack (push appends, pop/peek touch the
// tail) rather than a reversed slice.
type Stack struct {
	items []StackItem
}

// NewStack returns an empty stack with room for a typical invocation.
func NewStack() *Stack {
	return &Stack{items: make([]StackItem, 0, 32)}
}

func (s *Stack) Depth() int { return len(s.items) }

// Push appends a value to the top of the stack.
func (s *Stack) Push(v StackItem) {
	s.items = append(s.items, v)
}

// Pop removes and returns the top value.
func (s *Stack) Pop() (StackItem, *Exception) {
	if len(s.items) == 0 {
		return StackItem{}, NewExceptionCode(StackUnderflow)
	}
	v := s.items[len(s.items)-1]
	s.items = s.items[:len(s.items)-1]
	return v, nil
}

// PopInt pops and type-checks an Integer in one step, the common case in
// arithmetic handlers.
func (s *Stack) PopInt() (*IntegerData, *Exception) {
	v, exc := s.Pop()
	if exc != nil {
		return nil, exc
	}
	return v.Int()
}

// Peek returns the value at depth n from the top (0 = top) without removing
// it (PUSH n's source read).
func (s *Stack) Peek(n int) (StackItem, *Exception) {
	idx := len(s.items) - 1 - n
	if n < 0 || idx < 0 {
		return StackItem{}, NewExceptionCode(StackUnderflow)
	}
	return s.items[idx], nil
}

// PeekTop returns the top value without removing it.
func (s *Stack) PeekTop() (StackItem, *Exception) { return s.Peek(0) }

// Dup duplicates the slot at depth n onto the top (PUSH n).
func (s *Stack) Dup(n int) *Exception {
	v, exc := s.Peek(n)
	if exc != nil {
		return exc
	}
	s.Push(v)
	return nil
}

// PopTo replaces the slot at depth n with the current top, then drops the
// top (POP n).
func (s *Stack) PopTo(n int) *Exception {
	top, exc := s.Pop()
	if exc != nil {
		return exc
	}
	idx := len(s.items) - 1 - n
	if idx < 0 {
		return NewExceptionCode(StackUnderflow)
	}
	s.items[idx] = top
	return nil
}

// Xchg swaps the slots at depth i and depth j (XCHG i j).
func (s *Stack) Xchg(i, j int) *Exception {
	ii := len(s.items) - 1 - i
	jj := len(s.items) - 1 - j
	if ii < 0 || jj < 0 {
		return NewExceptionCode(StackUnderflow)
	}
	s.items[ii], s.items[jj] = s.items[jj], s.items[ii]
	return nil
}

// Drop removes the top n values.
func (s *Stack) Drop(n int) *Exception {
	if n < 0 || n > len(s.items) {
		return NewExceptionCode(StackUnderflow)
	}
	s.items = s.items[:len(s.items)-n]
	return nil
}

// BlkSwap rotates the top i+j slots, bringing the bottom i of that window
// above the top j (BLKSWAP i j).
func (s *Stack) BlkSwap(i, j int) *Exception {
	total := i + j
	if total > len(s.items) || i < 0 || j < 0 {
		return NewExceptionCode(StackUnderflow)
	}
	window := s.items[len(s.items)-total:]
	rotated := make([]StackItem, total)
	copy(rotated, window[i:])
	copy(rotated[j:], window[:i])
	copy(window, rotated)
	return nil
}

// Roll rotates the top n+1 slots so the bottom of the window becomes the
// new top (ROLL n); RollRev is its inverse.
func (s *Stack) Roll(n int) *Exception {
	total := n + 1
	if total > len(s.items) || n < 0 {
		return NewExceptionCode(StackUnderflow)
	}
	window := s.items[len(s.items)-total:]
	bottom := window[0]
	copy(window, window[1:])
	window[total-1] = bottom
	return nil
}

func (s *Stack) RollRev(n int) *Exception {
	total := n + 1
	if total > len(s.items) || n < 0 {
		return NewExceptionCode(StackUnderflow)
	}
	window := s.items[len(s.items)-total:]
	top := window[total-1]
	copy(window[1:], window[:total-1])
	window[0] = top
	return nil
}

// Reverse reverses i slots starting at depth j from the top (REVERSE i j).
func (s *Stack) Reverse(i, j int) *Exception {
	if i < 0 || j < 0 || j+i > len(s.items) {
		return NewExceptionCode(StackUnderflow)
	}
	lo := len(s.items) - j - i
	hi := len(s.items) - j
	for a, b := lo, hi-1; a < b; a, b = a+1, b-1 {
		s.items[a], s.items[b] = s.items[b], s.items[a]
	}
	return nil
}

// Nip drops the second-from-top value (NIP: XCHG then DROP in spirit).
func (s *Stack) Nip() *Exception {
	if len(s.items) < 2 {
		return NewExceptionCode(StackUnderflow)
	}
	s.items[len(s.items)-2] = s.items[len(s.items)-1]
	s.items = s.items[:len(s.items)-1]
	return nil
}

// Tuck duplicates the top value and inserts the copy below the second slot:
// [.., a, b] -> [.., b, a, b].
func (s *Stack) Tuck() *Exception {
	n := len(s.items)
	if n < 2 {
		return NewExceptionCode(StackUnderflow)
	}
	a, b := s.items[n-2], s.items[n-1]
	s.items = append(s.items, StackItem{})
	s.items[n-2] = b
	s.items[n-1] = a
	s.items[n] = b
	return nil
}

// Over duplicates the second-from-top slot onto the top.
func (s *Stack) Over() *Exception {
	return s.Dup(1)
}

// Clone returns a deep-enough copy for continuation saved-stack semantics:
// the slice header is copied so future pushes/pops on either stack do not
// alias, while StackItem payloads remain shared by handle (§5).
func (s *Stack) Clone() *Stack {
	items := make([]StackItem, len(s.items))
	copy(items, s.items)
	return &Stack{items: items}
}

// Items exposes the underlying slice, bottom-first, for host output (§6.2)
// and tests. Callers must not mutate it.
func (s *Stack) Items() []StackItem { return s.items }

// TakeTop moves the top n items off s into a new stack, preserving order,
// bottom-first (used by SETCONTVARARGS' closure-stack transfer).
func (s *Stack) TakeTop(n int) (*Stack, *Exception) {
	if n < 0 || n > len(s.items) {
		return nil, NewExceptionCode(StackUnderflow)
	}
	moved := make([]StackItem, n)
	copy(moved, s.items[len(s.items)-n:])
	s.items = s.items[:len(s.items)-n]
	return &Stack{items: moved}, nil
}

// PushAll appends another stack's items, bottom-first, onto the top of s.
func (s *Stack) PushAll(other *Stack) {
	s.items = append(s.items, other.items...)
}
