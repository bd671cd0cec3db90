package cell

import (
	"errors"
	"math/big"

	"github.com/holiman/uint256"
)

// ErrOverflow is returned when a store would exceed MaxBits or MaxRefs.
var ErrOverflow = errors.New("cell: builder overflow")

// Builder is an append-only accumulator that serializes into a Cell via
// EndCell. It mirrors the operations §4.5 lists for STI/STU/STREF/STSLICE.
type Builder struct {
	bits *bitBuf
	refs []*Cell
	typ  Type
}

// NewBuilder returns an empty ordinary-cell builder.
func NewBuilder() *Builder {
	return &Builder{bits: &bitBuf{}}
}

// BitsUsed returns the number of data bits stored so far.
func (b *Builder) BitsUsed() int { return b.bits.nbits }

// RefsUsed returns the number of references stored so far.
func (b *Builder) RefsUsed() int { return len(b.refs) }

// BitsFree and RefsFree report remaining capacity, used by SCHKBITSQ-style
// capacity queries.
func (b *Builder) BitsFree() int { return MaxBits - b.bits.nbits }
func (b *Builder) RefsFree() int { return MaxRefs - len(b.refs) }

// SetExotic marks the cell under construction as an exotic cell of the
// given type; ENDXC uses this after appending the exotic payload.
func (b *Builder) SetExotic(t Type) { b.typ = t }

func (b *Builder) checkBits(n int) error {
	if n < 0 || b.bits.nbits+n > MaxBits {
		return ErrOverflow
	}
	return nil
}

// StoreUint appends the low n bits of v, MSB-first (n in [0,64]).
func (b *Builder) StoreUint(v uint64, n int) error {
	if n < 0 || n > 64 {
		return errors.New("cell: StoreUint width out of range")
	}
	if err := b.checkBits(n); err != nil {
		return err
	}
	b.bits.appendBits(uintToBits(v, n), n)
	return nil
}

// StoreUint256 appends the low n bits of v, MSB-first (n in [0,256]). This
// is the fast path used by IntegerData for values fitting a machine word.
func (b *Builder) StoreUint256(v *uint256.Int, n int) error {
	if n < 0 || n > 256 {
		return errors.New("cell: StoreUint256 width out of range")
	}
	if err := b.checkBits(n); err != nil {
		return err
	}
	full := v.Bytes32() // big-endian, 32 bytes
	// left-align the low n bits of the 256-bit value within an n-bit window
	full32 := full[:]
	bitOffset := 256 - n
	packed := make([]byte, (n+7)/8)
	for i := 0; i < n; i++ {
		srcBit := bitOffset + i
		v := (full32[srcBit/8] >> uint(7-srcBit%8)) & 1
		if v != 0 {
			packed[i/8] |= 1 << uint(7-i%8)
		}
	}
	b.bits.appendBits(packed, n)
	return nil
}

// StoreInt appends a signed two's-complement n-bit representation of v.
// It accepts any width up to MaxBits, including widths beyond 256 bits
// (IntegerData's 257th bit) where the uint256 fast path cannot apply.
func (b *Builder) StoreInt(v *big.Int, n int) error {
	if n < 0 || n > MaxBits {
		return errors.New("cell: StoreInt width out of range")
	}
	if err := b.checkBits(n); err != nil {
		return err
	}
	packed := twosComplementBits(v, n)
	b.bits.appendBits(packed, n)
	return nil
}

// StoreSlice appends the remaining bits and references of s.
func (b *Builder) StoreSlice(s *Slice) error {
	n := s.RemainingBits()
	if err := b.checkBits(n); err != nil {
		return err
	}
	if len(b.refs)+s.RemainingRefs() > MaxRefs {
		return ErrOverflow
	}
	bits := s.cell.bits.slice(s.bitOffset, n)
	b.bits.appendBits(bits, n)
	for i := s.refOffset; i < s.refEnd; i++ {
		b.refs = append(b.refs, s.cell.refs[i])
	}
	return nil
}

// StoreBuilder appends the contents of another, still-open builder.
func (b *Builder) StoreBuilder(other *Builder) error {
	if err := b.checkBits(other.bits.nbits); err != nil {
		return err
	}
	if len(b.refs)+len(other.refs) > MaxRefs {
		return ErrOverflow
	}
	bits := other.bits.slice(0, other.bits.nbits)
	b.bits.appendBits(bits, other.bits.nbits)
	b.refs = append(b.refs, other.refs...)
	return nil
}

// StoreRef appends a child reference.
func (b *Builder) StoreRef(c *Cell) error {
	if len(b.refs) >= MaxRefs {
		return ErrOverflow
	}
	b.refs = append(b.refs, c)
	return nil
}

// EndCell finalizes the builder into an immutable Cell (ENDC).
func (b *Builder) EndCell() (*Cell, error) {
	return NewExotic(b.typ, b.bits.slice(0, b.bits.nbits), b.bits.nbits, b.refs)
}

func twosComplementBits(v *big.Int, n int) []byte {
	if n == 0 {
		return nil
	}
	mod := new(big.Int).Lsh(big.NewInt(1), uint(n))
	m := new(big.Int).Mod(v, mod)
	if m.Sign() < 0 {
		m.Add(m, mod)
	}
	be := m.Bytes()
	full := make([]byte, (n+7)/8)
	copy(full[len(full)-len(be):], be)
	// full now holds n bits worth of two's-complement in a byte-aligned
	// buffer; re-pack MSB-first starting at the correct bit offset.
	pad := len(full)*8 - n
	if pad == 0 {
		return full
	}
	out := make([]byte, (n+7)/8)
	for i := 0; i < n; i++ {
		srcBit := pad + i
		bit := (full[srcBit/8] >> uint(7-srcBit%8)) & 1
		if bit != 0 {
			out[i/8] |= 1 << uint(7-i%8)
		}
	}
	return out
}
