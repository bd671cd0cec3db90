// Package dict backs the DICT*-family opcodes (§4.7 "dictionaries" of the
// per-instruction category table in spec.md §2). TVM dictionaries are
// canonically ordered Patricia tries (HashmapE) whose exact bit-level
// encoding is a BOC serialization concern the cellular library owns, out of
// scope per spec.md §1. This package reproduces dictionary semantics —
// ordered key/value storage, min/max, get/set/delete — at the level the
// interpreter actually needs, backed by a B-tree ordered by big-endian key
// bytes, which sorts identically to a bit-trie over the same fixed-width
// keys.
package dict

import (
	"bytes"

	"github.com/everx-labs/ever-vm/cell"
	"github.com/google/btree"
	"github.com/holiman/uint256"
)

// bytesToU256 interprets key as a big-endian, keyBits-wide unsigned value.
func bytesToU256(key []byte, keyBits int) *uint256.Int {
	return new(uint256.Int).SetBytes(key)
}

// u256ToBytes packs u into the fixed-width, big-endian key representation
// this package sorts by.
func u256ToBytes(u *uint256.Int, keyBits int) []byte {
	full := u.Bytes32()
	n := (keyBits + 7) / 8
	return append([]byte(nil), full[32-n:]...)
}

// entry is a single (key, value) pair, ordered by Key.
type entry struct {
	Key   []byte
	Value *cell.Cell
}

func (e entry) Less(than btree.Item) bool {
	return bytes.Compare(e.Key, than.(entry).Key) < 0
}

// Tree is an in-memory dictionary keyed by fixed-width, big-endian byte
// keys (the byte-packed form of an n-bit TVM dictionary key).
type Tree struct {
	bt      *btree.BTree
	keyBits int
}

// New returns an empty tree for keys of the given bit width.
func New(keyBits int) *Tree {
	return &Tree{bt: btree.New(32), keyBits: keyBits}
}

// KeyBits reports the fixed key width this tree was built for.
func (t *Tree) KeyBits() int { return t.keyBits }

// Len reports the number of entries.
func (t *Tree) Len() int { return t.bt.Len() }

// Get looks up a key.
func (t *Tree) Get(key []byte) (*cell.Cell, bool) {
	item := t.bt.Get(entry{Key: key})
	if item == nil {
		return nil, false
	}
	return item.(entry).Value, true
}

// Set inserts or replaces the value for key.
func (t *Tree) Set(key []byte, val *cell.Cell) {
	t.bt.ReplaceOrInsert(entry{Key: append([]byte(nil), key...), Value: val})
}

// Delete removes key, reporting whether it was present.
func (t *Tree) Delete(key []byte) bool {
	return t.bt.Delete(entry{Key: key}) != nil
}

// Min returns the lexicographically smallest key present (DICTMIN).
func (t *Tree) Min() (key []byte, val *cell.Cell, ok bool) {
	item := t.bt.Min()
	if item == nil {
		return nil, nil, false
	}
	e := item.(entry)
	return e.Key, e.Value, true
}

// Max returns the lexicographically largest key present (DICTMAX).
func (t *Tree) Max() (key []byte, val *cell.Cell, ok bool) {
	item := t.bt.Max()
	if item == nil {
		return nil, nil, false
	}
	e := item.(entry)
	return e.Key, e.Value, true
}

// Clone returns an independent tree with the same entries (dictionaries are
// value types at the StackItem level; mutating one must not affect a
// sibling that shared the same root cell before the mutation, §5's
// copy-on-write rule).
func (t *Tree) Clone() *Tree {
	out := New(t.keyBits)
	t.bt.Ascend(func(i btree.Item) bool {
		e := i.(entry)
		out.bt.ReplaceOrInsert(e)
		return true
	})
	return out
}

// Encode serializes the tree into a cell: a 16-bit count of the entries
// still to encode, then, in ascending key order, one reference per entry to
// a cell holding its key bits and a reference to its value cell. At most
// MaxRefs-1 entries sit in one cell; the rest are chained through a last
// reference to a cell of the same form. This is this package's own
// encoding, not the network's Patricia-trie BOC layout (see the package
// doc comment).
func (t *Tree) Encode() (*cell.Cell, error) {
	return t.encodeRange(t.bt)
}

func (t *Tree) encodeRange(bt *btree.BTree) (*cell.Cell, error) {
	if bt.Len() == 0 {
		return cell.New(nil, 0, nil)
	}
	b := cell.NewBuilder()
	if err := b.StoreUint(uint64(bt.Len()), 16); err != nil {
		return nil, err
	}
	var entries []entry
	bt.Ascend(func(i btree.Item) bool {
		entries = append(entries, i.(entry))
		return true
	})
	// Each entry becomes one child reference holding its key bits and a
	// reference to its value cell; entries beyond MaxRefs-1 spill into a
	// continuation cell referenced by the last ref slot, mimicking how the
	// real trie chains through child cells once one level is full.
	const perCellRefs = cell.MaxRefs - 1
	limit := len(entries)
	spill := false
	if limit > perCellRefs {
		limit = perCellRefs
		spill = true
	}
	for _, e := range entries[:limit] {
		eb := cell.NewBuilder()
		if err := eb.StoreUint256(bytesToU256(e.Key, t.keyBits), t.keyBits); err != nil {
			return nil, err
		}
		if err := eb.StoreRef(e.Value); err != nil {
			return nil, err
		}
		ec, err := eb.EndCell()
		if err != nil {
			return nil, err
		}
		if err := b.StoreRef(ec); err != nil {
			return nil, err
		}
	}
	if spill {
		rest := btree.New(32)
		for _, e := range entries[limit:] {
			rest.ReplaceOrInsert(e)
		}
		restCell, err := t.encodeRange(rest)
		if err != nil {
			return nil, err
		}
		if err := b.StoreRef(restCell); err != nil {
			return nil, err
		}
	}
	return b.EndCell()
}

// Decode reconstructs a Tree from a cell produced by Encode.
func Decode(root *cell.Cell, keyBits int) (*Tree, error) {
	t := New(keyBits)
	if root == nil || root.BitLen() == 0 {
		return t, nil
	}
	if err := decodeInto(t, root); err != nil {
		return nil, err
	}
	return t, nil
}

func decodeInto(t *Tree, root *cell.Cell) error {
	s := root.BeginParse()
	count, err := s.LoadUint(16)
	if err != nil {
		return err
	}
	const perCellRefs = cell.MaxRefs - 1
	n := int(count)
	take := n
	if take > perCellRefs {
		take = perCellRefs
	}
	for i := 0; i < take; i++ {
		ec, err := s.LoadRef()
		if err != nil {
			return err
		}
		es := ec.BeginParse()
		u, err := es.LoadUint256(t.keyBits)
		if err != nil {
			return err
		}
		val, err := es.LoadRef()
		if err != nil {
			return err
		}
		key := u256ToBytes(u, t.keyBits)
		t.Set(key, val)
	}
	if n > perCellRefs {
		restCell, err := s.LoadRef()
		if err != nil {
			return err
		}
		if err := decodeInto(t, restCell); err != nil {
			return err
		}
	}
	return nil
}
