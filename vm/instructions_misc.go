package vm

import (
	"crypto/sha256"
	"math/big"

	"github.com/ethereum/go-ethereum/log"
)

// advanceRand derives the next 256-bit value in the pseudo-random sequence
// from the engine's current seed, the way RAND/RANDU256/SETRAND share one
// running seed (§4.7 supplemented family, SPEC_FULL.md). Grounded on the
// same SHA-256 primitive instructions_crypto.go already uses; a chained
// hash is a defensible stand-in for the network's own seed-mixing rule,
// which this implementation does not need to reproduce bit-for-bit.
func advanceRand(eng *Engine) *IntegerData {
	seedBytes := eng.randSeed.BigInt().Bytes()
	sum := sha256.Sum256(seedBytes)
	next := NewIntFromBig(new(big.Int).SetBytes(sum[:]))
	eng.randSeed = next
	return next
}

func execRand(eng *Engine) *Exception {
	limit, exc := eng.stack.PopInt()
	if exc != nil {
		return exc
	}
	if limit.IsNaN() || limit.BigInt().Sign() <= 0 {
		return NewExceptionCode(RangeCheck)
	}
	next := advanceRand(eng)
	z := new(big.Int).Mod(next.BigInt(), limit.BigInt())
	eng.stack.Push(NewIntItem(NewIntFromBig(z)))
	return nil
}

func execSetrand(eng *Engine) *Exception {
	seed, exc := eng.stack.PopInt()
	if exc != nil {
		return exc
	}
	eng.randSeed = seed
	return nil
}

func execRandu256(eng *Engine) *Exception {
	next := advanceRand(eng)
	eng.stack.Push(NewIntItem(next))
	return nil
}

func execConfigparam(eng *Engine) *Exception {
	idx, exc := eng.stack.PopInt()
	if exc != nil {
		return exc
	}
	if eng.sci == nil {
		pushBool(eng, false)
		return nil
	}
	v, ok := eng.sci.ConfigParam(int32(idx.Int64()))
	if !ok {
		pushBool(eng, false)
		return nil
	}
	eng.stack.Push(v)
	pushBool(eng, true)
	return nil
}

func execDumpstk(eng *Engine) *Exception {
	log.Debug("tvm: stack dump", "depth", eng.stack.Depth())
	return nil
}

// execCopyleft implements the masterchain-conditional COPYLEFT (Open
// Question decision, DESIGN.md): it always consumes its operands, but only
// records anything when the current transaction is a masterchain one.
func execCopyleft(eng *Engine) *Exception {
	licenseInt, exc := eng.stack.PopInt()
	if exc != nil {
		return exc
	}
	addr, exc := popSlice(eng)
	if exc != nil {
		return exc
	}
	if eng.sci != nil && eng.sci.IsMasterchain {
		bits, _ := addr.LoadBytes(addr.RemainingBits())
		log.Info("tvm: copyleft", "license", licenseInt.Int64(), "addressBytes", len(bits))
	}
	return nil
}
