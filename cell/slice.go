package cell

import (
	"errors"
	"math/big"

	"github.com/holiman/uint256"
)

// ErrUnderflow is returned when a load demands more bits or refs than remain.
var ErrUnderflow = errors.New("cell: slice underflow")

// Slice is a read cursor over a Cell: independent bit and ref ranges so
// LDI/LDREF-style reads can advance bits and refs at different rates.
type Slice struct {
	cell      *Cell
	bitOffset int
	bitEnd    int
	refOffset int
	refEnd    int
}

// RemainingBits reports unread data bits.
func (s *Slice) RemainingBits() int { return s.bitEnd - s.bitOffset }

// RemainingRefs reports unread child references.
func (s *Slice) RemainingRefs() int { return s.refEnd - s.refOffset }

// Empty reports whether both bits and refs are exhausted (ENDS uses this).
func (s *Slice) Empty() bool { return s.RemainingBits() == 0 && s.RemainingRefs() == 0 }

// Clone returns an independent copy of the cursor over the same cell.
func (s *Slice) Clone() *Slice {
	c := *s
	return &c
}

func (s *Slice) takeBits(n int) ([]byte, error) {
	if n < 0 || n > s.RemainingBits() {
		return nil, ErrUnderflow
	}
	return s.cell.bits.slice(s.bitOffset, n), nil
}

// LoadUint consumes and returns n bits (n in [0,64]) as an unsigned integer.
func (s *Slice) LoadUint(n int) (uint64, error) {
	v, err := s.PreloadUint(n)
	if err != nil {
		return 0, err
	}
	s.bitOffset += n
	return v, nil
}

// PreloadUint peeks n bits without consuming them (PLDU/PLDI family).
func (s *Slice) PreloadUint(n int) (uint64, error) {
	if n < 0 || n > 64 {
		return 0, errors.New("cell: PreloadUint width out of range")
	}
	bits, err := s.takeBits(n)
	if err != nil {
		return 0, err
	}
	return bitsToUint(bits, n), nil
}

// LoadUint256 consumes and returns n bits (n in [0,256]) as an unsigned
// fixed-width integer; the fast path shared with IntegerData.
func (s *Slice) LoadUint256(n int) (*uint256.Int, error) {
	if n < 0 || n > 256 {
		return nil, errors.New("cell: LoadUint256 width out of range")
	}
	bits, err := s.takeBits(n)
	if err != nil {
		return nil, err
	}
	s.bitOffset += n
	var full [32]byte
	bitOffset := 256 - n
	for i := 0; i < n; i++ {
		bit := (bits[i/8] >> uint(7-i%8)) & 1
		dst := bitOffset + i
		if bit != 0 {
			full[dst/8] |= 1 << uint(7-dst%8)
		}
	}
	return new(uint256.Int).SetBytes(full[:]), nil
}

// LoadInt consumes n bits as a signed two's-complement integer of arbitrary
// width, including widths above 256 (e.g. IntegerData's 257th bit).
func (s *Slice) LoadInt(n int) (*big.Int, error) {
	bits, err := s.takeBits(n)
	if err != nil {
		return nil, err
	}
	s.bitOffset += n
	return signedFromBits(bits, n), nil
}

// LoadBytes consumes n bits and returns them as a byte-aligned, big-endian,
// unsigned buffer (used for signatures and hashes wider than 256 bits,
// where the value is opaque bytes rather than an arithmetic quantity).
func (s *Slice) LoadBytes(n int) ([]byte, error) {
	bits, err := s.takeBits(n)
	if err != nil {
		return nil, err
	}
	s.bitOffset += n
	return padToBytes(bits, n), nil
}

// LoadRef consumes and returns the next child reference (LDREF).
func (s *Slice) LoadRef() (*Cell, error) {
	c, err := s.PreloadRef()
	if err != nil {
		return nil, err
	}
	s.refOffset++
	return c, nil
}

// PreloadRef peeks the next child reference without consuming it.
func (s *Slice) PreloadRef() (*Cell, error) {
	if s.RemainingRefs() == 0 {
		return nil, ErrUnderflow
	}
	return s.cell.refs[s.refOffset], nil
}

// LoadSlice carves off n bits as an independent slice sharing this cell,
// used by LDSLICE.
func (s *Slice) LoadSlice(n int) (*Slice, error) {
	if n < 0 || n > s.RemainingBits() {
		return nil, ErrUnderflow
	}
	sub := &Slice{cell: s.cell, bitOffset: s.bitOffset, bitEnd: s.bitOffset + n}
	s.bitOffset += n
	return sub, nil
}

// SkipBits advances the cursor by n bits without returning them.
func (s *Slice) SkipBits(n int) error {
	if n < 0 || n > s.RemainingBits() {
		return ErrUnderflow
	}
	s.bitOffset += n
	return nil
}

// BeginsWith reports whether the next n bits equal prefix (SDBEGINS's
// prefix test), consuming them if and only if they match.
func (s *Slice) BeginsWith(prefix []byte, n int) bool {
	bits, err := s.takeBits(n)
	if err != nil {
		return false
	}
	for i := 0; i < (n+7)/8; i++ {
		if bits[i] != prefix[i] {
			return false
		}
	}
	s.bitOffset += n
	return true
}

// Cell exposes the underlying cell (needed by CTOS-adjacent handlers that
// must inspect exotic type tags).
func (s *Slice) Cell() *Cell { return s.cell }

func signedFromBits(bits []byte, n int) *big.Int {
	u := new(big.Int).SetBytes(padToBytes(bits, n))
	if n == 0 {
		return u
	}
	signBit := (bits[0] >> 7) & 1
	if signBit == 0 {
		return u
	}
	mod := new(big.Int).Lsh(big.NewInt(1), uint(n))
	return u.Sub(u, mod)
}

// padToBytes converts an n-bit, MSB-first, left-aligned bit string into a
// byte-aligned big-endian buffer suitable for big.Int.SetBytes.
func padToBytes(bits []byte, n int) []byte {
	out := make([]byte, (n+7)/8)
	for i := 0; i < n; i++ {
		bit := (bits[i/8] >> uint(7-i%8)) & 1
		dst := len(out)*8 - n + i
		if bit != 0 {
			out[dst/8] |= 1 << uint(7-dst%8)
		}
	}
	return out
}
