package vm

import (
	"crypto/sha256"
	"math/big"
	"testing"

	"github.com/cloudflare/circl/sign/ed25519"
	"github.com/stretchr/testify/require"

	"github.com/everx-labs/ever-vm/cell"
)

func sliceOfBytes(t *testing.T, b []byte) *cell.Slice {
	bld := cell.NewBuilder()
	require.NoError(t, bld.StoreInt(new(big.Int).SetBytes(b), len(b)*8))
	c, err := bld.EndCell()
	require.NoError(t, err)
	return c.BeginParse()
}

// TestChksignuValidSignature checks CHKSIGNU's stack order (h, s, k with
// k on top): a signature produced over a given hash must verify against
// the matching public key regardless of which operand each helper reads
// first, which is exactly the ordering execChksignu got backwards before
// being fixed to pop k, then s, then h.
func TestChksignuValidSignature(t *testing.T) {
	seed := make([]byte, ed25519.SeedSize)
	for i := range seed {
		seed[i] = byte(i + 1)
	}
	priv := ed25519.NewKeyFromSeed(seed)
	pub := priv.Public().(ed25519.PublicKey)

	hash := sha256.Sum256([]byte("payload"))
	sig := ed25519.Sign(priv, hash[:])
	require.Len(t, sig, ed25519.SignatureSize)

	eng := newTestEngine(t, newAsm().cell(t), 1_000_000)
	eng.Stack().Push(NewIntItem(NewIntFromBig(new(big.Int).SetBytes(hash[:]))))
	eng.Stack().Push(NewSliceItem(sliceOfBytes(t, sig)))
	eng.Stack().Push(NewIntItem(NewIntFromBig(new(big.Int).SetBytes(pub))))

	exc := execChksignu(eng)
	require.Nil(t, exc)
	ok, xerr := eng.Stack().Pop()
	require.Nil(t, xerr)
	b, xerr := ok.AsBool()
	require.Nil(t, xerr)
	require.True(t, b)
}

// TestChksignuWrongKeyFails checks the negative path still reads its
// operands off the correct stack slots: a signature checked against an
// unrelated public key must report failure, not a type error, since a
// swapped pop order would either panic or misreport the message bytes.
func TestChksignuWrongKeyFails(t *testing.T) {
	seed1 := make([]byte, ed25519.SeedSize)
	seed2 := make([]byte, ed25519.SeedSize)
	for i := range seed1 {
		seed1[i] = byte(i + 1)
		seed2[i] = byte(200 - i)
	}
	priv1 := ed25519.NewKeyFromSeed(seed1)
	pub2 := ed25519.NewKeyFromSeed(seed2).Public().(ed25519.PublicKey)

	hash := sha256.Sum256([]byte("payload"))
	sig := ed25519.Sign(priv1, hash[:])

	eng := newTestEngine(t, newAsm().cell(t), 1_000_000)
	eng.Stack().Push(NewIntItem(NewIntFromBig(new(big.Int).SetBytes(hash[:]))))
	eng.Stack().Push(NewSliceItem(sliceOfBytes(t, sig)))
	eng.Stack().Push(NewIntItem(NewIntFromBig(new(big.Int).SetBytes(pub2))))

	exc := execChksignu(eng)
	require.Nil(t, exc)
	ok, xerr := eng.Stack().Pop()
	require.Nil(t, xerr)
	b, xerr := ok.AsBool()
	require.Nil(t, xerr)
	require.False(t, b)
}

// TestChksignsHashesDataFirst checks CHKSIGNS hashes the data slice at
// the bottom of its three operands, not whichever one happens to be
// popped first.
func TestChksignsHashesDataFirst(t *testing.T) {
	seed := make([]byte, ed25519.SeedSize)
	for i := range seed {
		seed[i] = byte(i + 7)
	}
	priv := ed25519.NewKeyFromSeed(seed)
	pub := priv.Public().(ed25519.PublicKey)

	data := []byte("hello ever-vm")
	sum := sha256.Sum256(data)
	sig := ed25519.Sign(priv, sum[:])

	eng := newTestEngine(t, newAsm().cell(t), 1_000_000)
	eng.Stack().Push(NewSliceItem(sliceOfBytes(t, data)))
	eng.Stack().Push(NewSliceItem(sliceOfBytes(t, sig)))
	eng.Stack().Push(NewIntItem(NewIntFromBig(new(big.Int).SetBytes(pub))))

	exc := execChksigns(eng)
	require.Nil(t, exc)
	ok, xerr := eng.Stack().Pop()
	require.Nil(t, xerr)
	b, xerr := ok.AsBool()
	require.Nil(t, xerr)
	require.True(t, b)
}
