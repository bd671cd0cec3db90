package vm

import (
	"crypto/sha256"
	"math/big"

	"github.com/cloudflare/circl/sign/ed25519"

	"github.com/everx-labs/ever-vm/cell"
)

func bytesToUnsignedBig(b []byte) *big.Int {
	return new(big.Int).SetBytes(b)
}

// pubkeyBytes packs a 256-bit IntegerData into the 32-byte form
// ed25519.Verify expects.
func pubkeyBytes(i *IntegerData) ([]byte, *Exception) {
	u, ok := i.ToUint256()
	if !ok {
		return nil, NewExceptionCode(RangeCheck)
	}
	b := u.Bytes32()
	return b[:], nil
}

// popSigAndKey pops the pubkey and signature slice off the top of the
// stack, in that order (k s ... - ... with k on top), leaving whatever
// data or hash argument sits underneath for the caller to pop next.
func popSigAndKey(eng *Engine) (sig []byte, pub []byte, exc *Exception) {
	pk, exc := eng.stack.PopInt()
	if exc != nil {
		return nil, nil, exc
	}
	sigSlice, exc := popSlice(eng)
	if exc != nil {
		return nil, nil, exc
	}
	sig, err := sigSlice.LoadBytes(512)
	if err != nil {
		return nil, nil, NewExceptionCode(CellUnderflow)
	}
	pub, exc = pubkeyBytes(pk)
	if exc != nil {
		return nil, nil, exc
	}
	return sig, pub, nil
}

func verifySignature(eng *Engine, message, sig, pub []byte) *Exception {
	if eng.config.Modifiers.ChksigAlwaysSucceed {
		pushBool(eng, true)
		return nil
	}
	pushBool(eng, ed25519.Verify(ed25519.PublicKey(pub), message, sig))
	return nil
}

// execChksigns implements CHKSIGNS (d, s, k): verify a signature over the
// raw bytes of a data slice (hashed with SHA-256 first, per the
// well-known convention this opcode uses). k is on top of the stack, s
// below it, d at the bottom.
func execChksigns(eng *Engine) *Exception {
	sig, pub, exc := popSigAndKey(eng)
	if exc != nil {
		return exc
	}
	dataSlice, exc := popSlice(eng)
	if exc != nil {
		return exc
	}
	data, err := dataSlice.LoadBytes(dataSlice.RemainingBits())
	if err != nil {
		return NewExceptionCode(CellUnderflow)
	}
	sum := sha256.Sum256(data)
	return verifySignature(eng, sum[:], sig, pub)
}

// execChksignu implements CHKSIGNU (h, s, k): verify a signature over an
// already-hashed 256-bit integer, k on top, s below it, h at the bottom.
func execChksignu(eng *Engine) *Exception {
	sig, pub, exc := popSigAndKey(eng)
	if exc != nil {
		return exc
	}
	hashInt, exc := eng.stack.PopInt()
	if exc != nil {
		return exc
	}
	u, ok := hashInt.ToUint256()
	if !ok {
		return NewExceptionCode(RangeCheck)
	}
	b := u.Bytes32()
	return verifySignature(eng, b[:], sig, pub)
}

func execHashcu(eng *Engine) *Exception {
	v, exc := eng.stack.Pop()
	if exc != nil {
		return exc
	}
	c, exc := v.Cell()
	if exc != nil {
		return exc
	}
	h := c.Hash()
	eng.stack.Push(NewIntItem(hashToInt(h)))
	return nil
}

func execHashsu(eng *Engine) *Exception {
	s, exc := popSlice(eng)
	if exc != nil {
		return exc
	}
	data, err := s.LoadBytes(s.RemainingBits())
	if err != nil {
		return NewExceptionCode(CellUnderflow)
	}
	sum := sha256.Sum256(data)
	var h cell.Hash
	copy(h[:], sum[:])
	eng.stack.Push(NewIntItem(hashToInt(h)))
	return nil
}

func hashToInt(h cell.Hash) *IntegerData {
	b := h
	return NewIntFromBig(bytesToUnsignedBig(b[:]))
}
