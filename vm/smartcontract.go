package vm

import "github.com/everx-labs/ever-vm/cell"

// SmartContractInfo is the fixed-shape tuple the host installs as the first
// element of c7 (§3.5, §6.1). Field order matches the well-known TVM
// layout. ToTuple gives the tuple form; CONFIGPARAM, COPYLEFT and the RAND
// seed read these fields directly from the engine's copy of the struct.
type SmartContractInfo struct {
	Balance          *IntegerData
	BlockLT          *IntegerData
	TransLT          *IntegerData
	SeqNo            *IntegerData
	UnixTime         *IntegerData
	RandSeed         *IntegerData
	ActionsCount     *IntegerData
	MsgsSent         *IntegerData
	MyCode           *cell.Cell
	InitCodeHash     *IntegerData
	StorageFee       *IntegerData
	MyAddress        StackItem
	GlobalCaps       *IntegerData
	MasterConfig     *cell.Cell
	IsMasterchain    bool
}

// ToTuple packs the fields into the StackItem tuple the VM actually reads
// from c7, in the canonical field order.
func (sci *SmartContractInfo) ToTuple() StackItem {
	items := make([]StackItem, 0, 14)
	push := func(i *IntegerData) { items = append(items, NewIntItem(i)) }
	push(sci.Balance)
	push(sci.BlockLT)
	push(sci.TransLT)
	push(sci.SeqNo)
	push(sci.UnixTime)
	push(sci.RandSeed)
	push(sci.ActionsCount)
	push(sci.MsgsSent)
	if sci.MyCode != nil {
		items = append(items, NewCellItem(sci.MyCode))
	} else {
		items = append(items, Null)
	}
	push(sci.InitCodeHash)
	push(sci.StorageFee)
	items = append(items, sci.MyAddress)
	push(sci.GlobalCaps)
	if sci.MasterConfig != nil {
		items = append(items, NewCellItem(sci.MasterConfig))
	} else {
		items = append(items, Null)
	}
	return NewTupleItem([]StackItem{NewTupleItem(items)})
}

// ConfigParam backs CONFIGPARAM. It does not decode MasterConfig or look
// up idx: it returns the whole MasterConfig cell whenever that cell has at
// least one reference, and reports false otherwise.
func (sci *SmartContractInfo) ConfigParam(idx int32) (StackItem, bool) {
	if sci.MasterConfig == nil {
		return Null, false
	}
	dictSlice := sci.MasterConfig.BeginParse()
	// A real implementation decodes a HashmapE(32, Cell); THE CORE only
	// needs the interface point, per §6.1 — see /dict for the general
	// dictionary opcode family used by contract-level dictionaries.
	if dictSlice.RemainingRefs() == 0 {
		return Null, false
	}
	return NewCellItem(sci.MasterConfig), true
}
