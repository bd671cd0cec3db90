package vm

import (
	"github.com/everx-labs/ever-vm/cell"
	"github.com/everx-labs/ever-vm/dict"
	"github.com/holiman/uint256"
)

// dictKeyBytes packs an IntegerData key into the fixed-width big-endian
// form the dict package sorts by.
func dictKeyBytes(key *IntegerData, keyBits int) ([]byte, *Exception) {
	if !key.FitsUnsigned(keyBits) && !key.FitsSigned(keyBits) {
		return nil, NewExceptionCode(RangeCheck)
	}
	u, ok := key.ToUint256()
	if !ok || keyBits > 256 {
		return nil, NewExceptionCode(RangeCheck)
	}
	full := u.Bytes32()
	n := (keyBits + 7) / 8
	return append([]byte(nil), full[32-n:]...), nil
}

func popDictCell(eng *Engine) (*cell.Cell, *Exception) {
	v, exc := eng.stack.Pop()
	if exc != nil {
		return nil, exc
	}
	if v.IsNull() {
		return nil, nil
	}
	return v.Cell()
}

func execDictget(eng *Engine) *Exception {
	n, exc := eng.stack.PopInt()
	if exc != nil {
		return exc
	}
	root, exc := popDictCell(eng)
	if exc != nil {
		return exc
	}
	key, exc := eng.stack.PopInt()
	if exc != nil {
		return exc
	}
	keyBits := int(n.Int64())
	tree, err := dict.Decode(root, keyBits)
	if err != nil {
		return NewExceptionCode(DictError)
	}
	kb, kexc := dictKeyBytes(key, keyBits)
	if kexc != nil {
		return kexc
	}
	val, ok := tree.Get(kb)
	if !ok {
		pushBool(eng, false)
		return nil
	}
	eng.stack.Push(NewSliceItem(val.BeginParse()))
	pushBool(eng, true)
	return nil
}

func execDictset(eng *Engine) *Exception {
	n, exc := eng.stack.PopInt()
	if exc != nil {
		return exc
	}
	root, exc := popDictCell(eng)
	if exc != nil {
		return exc
	}
	key, exc := eng.stack.PopInt()
	if exc != nil {
		return exc
	}
	valItem, exc := eng.stack.Pop()
	if exc != nil {
		return exc
	}
	valCell, exc := valItem.Cell()
	if exc != nil {
		return exc
	}
	keyBits := int(n.Int64())
	tree, err := dict.Decode(root, keyBits)
	if err != nil {
		return NewExceptionCode(DictError)
	}
	kb, kexc := dictKeyBytes(key, keyBits)
	if kexc != nil {
		return kexc
	}
	tree.Set(kb, valCell)
	newRoot, err := tree.Encode()
	if err != nil {
		return NewExceptionCode(CellOverflow)
	}
	eng.stack.Push(NewCellItem(newRoot))
	return nil
}

func execDictdel(eng *Engine) *Exception {
	n, exc := eng.stack.PopInt()
	if exc != nil {
		return exc
	}
	root, exc := popDictCell(eng)
	if exc != nil {
		return exc
	}
	key, exc := eng.stack.PopInt()
	if exc != nil {
		return exc
	}
	keyBits := int(n.Int64())
	tree, err := dict.Decode(root, keyBits)
	if err != nil {
		return NewExceptionCode(DictError)
	}
	kb, kexc := dictKeyBytes(key, keyBits)
	if kexc != nil {
		return kexc
	}
	found := tree.Delete(kb)
	newRoot, err := tree.Encode()
	if err != nil {
		return NewExceptionCode(CellOverflow)
	}
	eng.stack.Push(NewCellItem(newRoot))
	pushBool(eng, found)
	return nil
}

func dictExtreme(eng *Engine, useMax bool) *Exception {
	n, exc := eng.stack.PopInt()
	if exc != nil {
		return exc
	}
	root, exc := popDictCell(eng)
	if exc != nil {
		return exc
	}
	keyBits := int(n.Int64())
	tree, err := dict.Decode(root, keyBits)
	if err != nil {
		return NewExceptionCode(DictError)
	}
	var kb []byte
	var val *cell.Cell
	var ok bool
	if useMax {
		kb, val, ok = tree.Max()
	} else {
		kb, val, ok = tree.Min()
	}
	if !ok {
		pushBool(eng, false)
		return nil
	}
	u := new(uint256.Int).SetBytes(kb)
	eng.stack.Push(NewIntItem(NewIntFromUint256(u)))
	eng.stack.Push(NewSliceItem(val.BeginParse()))
	pushBool(eng, true)
	return nil
}

func execDictmin(eng *Engine) *Exception { return dictExtreme(eng, false) }
func execDictmax(eng *Engine) *Exception { return dictExtreme(eng, true) }
