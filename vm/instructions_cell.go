package vm

import "github.com/everx-labs/ever-vm/cell"

func execNewc(eng *Engine) *Exception {
	eng.stack.Push(NewBuilderItem(cell.NewBuilder()))
	return nil
}

func execEndc(eng *Engine) *Exception {
	b, exc := eng.stack.Pop()
	if exc != nil {
		return exc
	}
	bld, exc := b.Builder()
	if exc != nil {
		return exc
	}
	c, err := bld.EndCell()
	if err != nil {
		return NewExceptionCode(CellOverflow)
	}
	eng.stack.Push(NewCellItem(c))
	return nil
}

func popBuilder(eng *Engine) (*cell.Builder, *Exception) {
	v, exc := eng.stack.Pop()
	if exc != nil {
		return nil, exc
	}
	return v.Builder()
}

func execSti(eng *Engine) *Exception {
	n, exc := readOperandByte(eng)
	if exc != nil {
		return exc
	}
	bld, exc := popBuilder(eng)
	if exc != nil {
		return exc
	}
	x, exc := eng.stack.PopInt()
	if exc != nil {
		return exc
	}
	if !x.FitsSigned(n) {
		return NewExceptionCode(RangeCheck)
	}
	if err := bld.StoreInt(x.BigInt(), n); err != nil {
		return NewExceptionCode(CellOverflow)
	}
	eng.stack.Push(NewBuilderItem(bld))
	return nil
}

func execStu(eng *Engine) *Exception {
	n, exc := readOperandByte(eng)
	if exc != nil {
		return exc
	}
	bld, exc := popBuilder(eng)
	if exc != nil {
		return exc
	}
	x, exc := eng.stack.PopInt()
	if exc != nil {
		return exc
	}
	if !x.FitsUnsigned(n) {
		return NewExceptionCode(RangeCheck)
	}
	if u, ok := x.ToUint256(); ok && n <= 256 {
		if err := bld.StoreUint256(u, n); err != nil {
			return NewExceptionCode(CellOverflow)
		}
	} else if err := bld.StoreInt(x.BigInt(), n); err != nil {
		return NewExceptionCode(CellOverflow)
	}
	eng.stack.Push(NewBuilderItem(bld))
	return nil
}

func execStref(eng *Engine) *Exception {
	bld, exc := popBuilder(eng)
	if exc != nil {
		return exc
	}
	c, exc := eng.stack.Pop()
	if exc != nil {
		return exc
	}
	cv, exc := c.Cell()
	if exc != nil {
		return exc
	}
	if err := bld.StoreRef(cv); err != nil {
		return NewExceptionCode(CellOverflow)
	}
	eng.stack.Push(NewBuilderItem(bld))
	return nil
}

func execStslice(eng *Engine) *Exception {
	bld, exc := popBuilder(eng)
	if exc != nil {
		return exc
	}
	s, exc := eng.stack.Pop()
	if exc != nil {
		return exc
	}
	sv, exc := s.Slice()
	if exc != nil {
		return exc
	}
	if err := bld.StoreSlice(sv); err != nil {
		return NewExceptionCode(CellOverflow)
	}
	eng.stack.Push(NewBuilderItem(bld))
	return nil
}

func (eng *Engine) chargeCellLoad(c *cell.Cell) *Exception {
	first := eng.cache.Touch(c)
	return eng.gas.ConsumeLoadCell(first)
}

func execCtos(eng *Engine) *Exception {
	v, exc := eng.stack.Pop()
	if exc != nil {
		return exc
	}
	c, exc := v.Cell()
	if exc != nil {
		return exc
	}
	if gexc := eng.chargeCellLoad(c); gexc != nil {
		return gexc
	}
	eng.stack.Push(NewSliceItem(c.BeginParse()))
	return nil
}

func popSlice(eng *Engine) (*cell.Slice, *Exception) {
	v, exc := eng.stack.Pop()
	if exc != nil {
		return nil, exc
	}
	return v.Slice()
}

func execLdi(eng *Engine) *Exception {
	n, exc := readOperandByte(eng)
	if exc != nil {
		return exc
	}
	s, exc := popSlice(eng)
	if exc != nil {
		return exc
	}
	v, err := s.LoadInt(n)
	if err != nil {
		return NewExceptionCode(CellUnderflow)
	}
	eng.stack.Push(NewIntItem(NewIntFromBig(v)))
	eng.stack.Push(NewSliceItem(s))
	return nil
}

func execLdu(eng *Engine) *Exception {
	n, exc := readOperandByte(eng)
	if exc != nil {
		return exc
	}
	s, exc := popSlice(eng)
	if exc != nil {
		return exc
	}
	if n <= 256 {
		v, err := s.LoadUint256(n)
		if err != nil {
			return NewExceptionCode(CellUnderflow)
		}
		eng.stack.Push(NewIntItem(NewIntFromUint256(v)))
	} else {
		v, err := s.LoadInt(n)
		if err != nil {
			return NewExceptionCode(CellUnderflow)
		}
		eng.stack.Push(NewIntItem(NewIntFromBig(v)))
	}
	eng.stack.Push(NewSliceItem(s))
	return nil
}

func execLdref(eng *Engine) *Exception {
	s, exc := popSlice(eng)
	if exc != nil {
		return exc
	}
	r, err := s.LoadRef()
	if err != nil {
		return NewExceptionCode(CellUnderflow)
	}
	eng.stack.Push(NewCellItem(r))
	eng.stack.Push(NewSliceItem(s))
	return nil
}

func execLdslice(eng *Engine) *Exception {
	n, exc := readOperandByte(eng)
	if exc != nil {
		return exc
	}
	s, exc := popSlice(eng)
	if exc != nil {
		return exc
	}
	sub, err := s.LoadSlice(n)
	if err != nil {
		return NewExceptionCode(CellUnderflow)
	}
	eng.stack.Push(NewSliceItem(sub))
	eng.stack.Push(NewSliceItem(s))
	return nil
}

func execPldi(eng *Engine) *Exception {
	n, exc := readOperandByte(eng)
	if exc != nil {
		return exc
	}
	s, exc := popSlice(eng)
	if exc != nil {
		return exc
	}
	cl := s.Clone()
	v, err := cl.LoadInt(n)
	if err != nil {
		return NewExceptionCode(CellUnderflow)
	}
	eng.stack.Push(NewIntItem(NewIntFromBig(v)))
	return nil
}

func execPldu(eng *Engine) *Exception {
	n, exc := readOperandByte(eng)
	if exc != nil {
		return exc
	}
	s, exc := popSlice(eng)
	if exc != nil {
		return exc
	}
	if n > 64 {
		cl := s.Clone()
		bv, err := cl.LoadUint256(n)
		if err != nil {
			return NewExceptionCode(CellUnderflow)
		}
		eng.stack.Push(NewIntItem(NewIntFromUint256(bv)))
		return nil
	}
	v, err := s.PreloadUint(n)
	if err != nil {
		return NewExceptionCode(CellUnderflow)
	}
	eng.stack.Push(NewIntItem(NewIntFromInt64(int64(v))))
	return nil
}

func execEnds(eng *Engine) *Exception {
	s, exc := popSlice(eng)
	if exc != nil {
		return exc
	}
	if !s.Empty() {
		return NewExceptionCode(CellUnderflow)
	}
	return nil
}

// execSdbegins tests and skips a short literal bit prefix embedded in the
// instruction stream (n <= 64 bits; longer prefixes are a bulkier encoding
// this implementation does not need, §4.5).
func execSdbegins(eng *Engine) *Exception {
	n, exc := readOperandByte(eng)
	if exc != nil {
		return exc
	}
	want, err := eng.cc.Code.LoadUint(n)
	if err != nil {
		return NewExceptionCode(InvalidOpcode)
	}
	s, exc := popSlice(eng)
	if exc != nil {
		return exc
	}
	got, err := s.LoadUint(n)
	if err != nil || got != want {
		return NewExceptionCode(CellUnderflow)
	}
	eng.stack.Push(NewSliceItem(s))
	return nil
}

func execSchkbitsq(eng *Engine) *Exception {
	n, exc := readOperandByte(eng)
	if exc != nil {
		return exc
	}
	s, exc := popSlice(eng)
	if exc != nil {
		return exc
	}
	pushBool(eng, s.RemainingBits() >= n)
	return nil
}

func execDatasize(eng *Engine) *Exception {
	v, exc := eng.stack.Pop()
	if exc != nil {
		return exc
	}
	c, exc := v.Cell()
	if exc != nil {
		return exc
	}
	cells, bits, refs := measureCell(c, map[cell.Hash]bool{})
	eng.stack.Push(NewIntItem(NewIntFromInt64(int64(cells))))
	eng.stack.Push(NewIntItem(NewIntFromInt64(int64(bits))))
	eng.stack.Push(NewIntItem(NewIntFromInt64(int64(refs))))
	return nil
}

func execCdatasize(eng *Engine) *Exception { return execDatasize(eng) }

func measureCell(c *cell.Cell, seen map[cell.Hash]bool) (cells, bits, refs int) {
	h := c.Hash()
	if seen[h] {
		return 0, 0, 0
	}
	seen[h] = true
	cells, bits, refs = 1, c.BitLen(), c.RefCount()
	for i := 0; i < c.RefCount(); i++ {
		ch, _ := c.Ref(i)
		cc, cb, cr := measureCell(ch, seen)
		cells += cc
		bits += cb
		refs += cr
	}
	return
}

func execXload(eng *Engine) *Exception {
	v, exc := eng.stack.Pop()
	if exc != nil {
		return exc
	}
	c, exc := v.Cell()
	if exc != nil {
		return exc
	}
	if gexc := eng.chargeCellLoad(c); gexc != nil {
		return gexc
	}
	eng.stack.Push(NewIntItem(NewIntFromInt64(int64(c.Type()))))
	return nil
}

func execEndxc(eng *Engine) *Exception {
	typTag, exc := readOperandByte(eng)
	if exc != nil {
		return exc
	}
	b, exc := popBuilder(eng)
	if exc != nil {
		return exc
	}
	b.SetExotic(cell.Type(typTag))
	c, err := b.EndCell()
	if err != nil {
		return NewExceptionCode(CellOverflow)
	}
	eng.stack.Push(NewCellItem(c))
	return nil
}
