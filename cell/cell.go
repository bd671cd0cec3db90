// Package cell implements the cellular data model the VM executes against:
// immutable, content-addressed cells with a bounded number of data bits and
// child references, read cursors (slices) over them, and append-only
// accumulators (builders) that serialize into new cells.
//
// This is a minimal stand-in for the network's real BOC-backed cell library,
// which spec.md §6.1 treats as an external collaborator specified only by
// the operations the VM needs from it.
package cell

import (
	"fmt"

	"lukechampine.com/blake3"
)

const (
	// MaxBits is the maximum number of data bits a single cell may hold.
	MaxBits = 1023
	// MaxRefs is the maximum number of child references a single cell may hold.
	MaxRefs = 4
)

// Type distinguishes ordinary cells from the exotic cell kinds the VM must
// recognize when following references (§3.1).
type Type byte

const (
	Ordinary Type = iota
	PrunedBranch
	LibraryReference
	MerkleProof
	MerkleUpdate
)

func (t Type) String() string {
	switch t {
	case Ordinary:
		return "ordinary"
	case PrunedBranch:
		return "pruned-branch"
	case LibraryReference:
		return "library-reference"
	case MerkleProof:
		return "merkle-proof"
	case MerkleUpdate:
		return "merkle-update"
	default:
		return fmt.Sprintf("Type(%d)", t)
	}
}

// Hash content-addresses a cell. It stands in for the network's per-cell
// hashing rule; see DESIGN.md for why blake3 is used here instead of the
// two-level SHA-256 scheme the real network uses.
type Hash [32]byte

func (h Hash) String() string {
	const alphabet = "0123456789abcdef"
	out := make([]byte, 64)
	for i, b := range h {
		out[2*i] = alphabet[b>>4]
		out[2*i+1] = alphabet[b&0xf]
	}
	return string(out)
}

// Cell is an immutable node of up to MaxBits data bits and up to MaxRefs
// child references.
type Cell struct {
	bits *bitBuf
	refs []*Cell
	typ  Type

	hash    Hash
	hashSet bool
}

// New constructs an ordinary cell from packed, MSB-first data bits and
// child references. It does not validate exotic-cell layout invariants
// beyond bit/ref counts; callers building exotic cells use NewExotic.
func New(bits []byte, bitLen int, refs []*Cell) (*Cell, error) {
	return NewExotic(Ordinary, bits, bitLen, refs)
}

// NewExotic builds a cell of the given type. Library references and pruned
// branches are opaque payloads to this package; in the VM, CTOS parses them
// like any other cell and XLOAD reports their type tag (instructions_cell.go).
func NewExotic(typ Type, bits []byte, bitLen int, refs []*Cell) (*Cell, error) {
	if bitLen < 0 || bitLen > MaxBits {
		return nil, fmt.Errorf("cell: bit length %d exceeds %d", bitLen, MaxBits)
	}
	if len(refs) > MaxRefs {
		return nil, fmt.Errorf("cell: ref count %d exceeds %d", len(refs), MaxRefs)
	}
	buf := &bitBuf{bytes: append([]byte(nil), bits...), nbits: bitLen}
	return &Cell{bits: buf, refs: append([]*Cell(nil), refs...), typ: typ}, nil
}

// BitLen returns the number of data bits stored in the cell.
func (c *Cell) BitLen() int { return c.bits.nbits }

// RefCount returns the number of child references.
func (c *Cell) RefCount() int { return len(c.refs) }

// Ref returns the i'th child reference.
func (c *Cell) Ref(i int) (*Cell, error) {
	if i < 0 || i >= len(c.refs) {
		return nil, fmt.Errorf("cell: ref index %d out of range [0,%d)", i, len(c.refs))
	}
	return c.refs[i], nil
}

// Type reports whether the cell is ordinary or one of the exotic kinds.
func (c *Cell) Type() Type { return c.typ }

// IsExotic reports whether the cell carries a non-ordinary type tag.
func (c *Cell) IsExotic() bool { return c.typ != Ordinary }

// RawBits returns the packed, MSB-first bit data. Callers must not mutate
// the returned slice.
func (c *Cell) RawBits() []byte { return c.bits.bytes }

// BeginParse returns a fresh read cursor positioned at the start of the cell.
func (c *Cell) BeginParse() *Slice {
	return &Slice{cell: c, bitEnd: c.bits.nbits, refEnd: len(c.refs)}
}

// Hash returns the content address of the cell: a Merkle hash over its own
// bits, type tag, and the hashes of its children, computed once and cached.
func (c *Cell) Hash() Hash {
	if c.hashSet {
		return c.hash
	}
	h := blake3.New(32, nil)
	h.Write([]byte{byte(c.typ)})
	var lenBuf [4]byte
	lenBuf[0] = byte(c.bits.nbits >> 24)
	lenBuf[1] = byte(c.bits.nbits >> 16)
	lenBuf[2] = byte(c.bits.nbits >> 8)
	lenBuf[3] = byte(c.bits.nbits)
	h.Write(lenBuf[:])
	h.Write(c.bits.bytes)
	for _, r := range c.refs {
		rh := r.Hash()
		h.Write(rh[:])
	}
	sum := h.Sum(nil)
	copy(c.hash[:], sum)
	c.hashSet = true
	return c.hash
}

// Equal reports whether two cells are structurally identical, by hash.
func (c *Cell) Equal(other *Cell) bool {
	if c == other {
		return true
	}
	if c == nil || other == nil {
		return false
	}
	return c.Hash() == other.Hash()
}
