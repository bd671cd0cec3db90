// Command tvmrun is a thin fixture-driven host harness around the vm
// package: it builds an Engine from a JSON description of code, initial
// stack, gas limit and capabilities, runs it to completion, and prints the
// exit code, gas used and resulting stack. It exists to exercise the
// Host->Engine->Host boundary end to end, not as a production node
// component (§6.1's host contract lives entirely in the vm package; this
// is just a caller of it).
package main

import (
	"encoding/hex"
	"encoding/json"
	"flag"
	"fmt"
	"math/big"
	"os"

	"github.com/ethereum/go-ethereum/log"

	"github.com/everx-labs/ever-vm/cell"
	"github.com/everx-labs/ever-vm/vm"
)

// fixture is the on-disk shape a caller supplies: code as a hex string of
// raw opcode bytes (no ref cells, matching the simple test bytecode
// spec.md's own examples use), an initial stack of decimal integers, a gas
// limit, and an optional capability mask.
type fixture struct {
	CodeHex      string   `json:"code"`
	Stack        []string `json:"stack"`
	GasLimit     int64    `json:"gasLimit"`
	GasMax       int64    `json:"gasMax"`
	GasPrice     int64    `json:"gasPrice"`
	Capabilities uint64   `json:"capabilities"`
}

type result struct {
	ExitCode int32    `json:"exitCode"`
	GasUsed  int64    `json:"gasUsed"`
	Stack    []string `json:"stack"`
}

func main() {
	var (
		fixturePath = flag.String("fixture", "", "path to a JSON fixture (see fixture struct)")
		verbose     = flag.Bool("v", false, "enable debug logging")
	)
	flag.Parse()

	if *verbose {
		log.SetDefault(log.NewLogger(log.NewTerminalHandlerWithLevel(os.Stderr, log.LevelDebug, true)))
	}

	if *fixturePath == "" {
		fmt.Fprintln(os.Stderr, "usage: tvmrun -fixture <path.json>")
		os.Exit(2)
	}

	raw, err := os.ReadFile(*fixturePath)
	if err != nil {
		log.Crit("tvmrun: reading fixture", "err", err)
	}

	var fx fixture
	if err := json.Unmarshal(raw, &fx); err != nil {
		log.Crit("tvmrun: parsing fixture", "err", err)
	}

	res, err := runFixture(&fx)
	if err != nil {
		log.Crit("tvmrun: run failed", "err", err)
	}

	out, err := json.MarshalIndent(res, "", "  ")
	if err != nil {
		log.Crit("tvmrun: encoding result", "err", err)
	}
	fmt.Println(string(out))
}

func runFixture(fx *fixture) (*result, error) {
	codeBytes, err := hex.DecodeString(fx.CodeHex)
	if err != nil {
		return nil, fmt.Errorf("decoding code hex: %w", err)
	}
	codeRoot, err := cell.New(codeBytes, len(codeBytes)*8, nil)
	if err != nil {
		return nil, fmt.Errorf("building code cell: %w", err)
	}

	gasLimit := fx.GasLimit
	if gasLimit <= 0 {
		gasLimit = 1_000_000
	}
	gasPrice := fx.GasPrice
	if gasPrice <= 0 {
		gasPrice = 1
	}
	gas := vm.NewGas(gasLimit, 0, fx.GasMax, gasPrice)

	config := &vm.Config{
		Capabilities: vm.Capabilities(fx.Capabilities),
	}

	ctrls := vm.NewControlRegs()
	cache := cell.NewLoadCache(1024)
	eng := vm.NewEngine(codeRoot, ctrls, gas, config, cache, nil)

	for _, s := range fx.Stack {
		n, ok := new(big.Int).SetString(s, 10)
		if !ok {
			return nil, fmt.Errorf("parsing stack integer %q", s)
		}
		eng.Stack().Push(vm.NewIntItem(vm.NewIntFromBig(n)))
	}

	exitCode := int32(0)
	if exc := eng.Run(); exc != nil {
		exitCode = int32(exc.Code)
	}

	items := eng.Stack().Items()
	stackOut := make([]string, len(items))
	for i, it := range items {
		stackOut[i] = it.String()
	}

	return &result{
		ExitCode: exitCode,
		GasUsed:  eng.Gas().Used(),
		Stack:    stackOut,
	}, nil
}
