package vm

import "github.com/ethereum/go-ethereum/metrics"

// Metrics mirrors core/vm's own metrics.go: a small set of package-level
// counters and a histogram, registered once, updated from the hot path
// without allocating.
var (
	opcodeDispatchCounter = metrics.NewRegisteredCounter("tvm/opcode/dispatch", nil)
	exceptionCounter      = metrics.NewRegisteredCounter("tvm/exception/raised", nil)
	outOfGasCounter       = metrics.NewRegisteredCounter("tvm/gas/exhausted", nil)
	gasUsedHistogram      = metrics.NewRegisteredHistogram("tvm/gas/used", nil, metrics.NewExpDecaySample(1028, 0.015))
)

// recordRun updates the run-level histograms once execution finishes; the
// per-opcode counter is bumped inline in the driver loop instead, since
// that path runs far more often than a full run completes.
func recordRun(eng *Engine) {
	gasUsedHistogram.Update(eng.gas.Used())
}
