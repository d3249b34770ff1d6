package ui

// Unicode symbols for status indicators.
const (
	SymbolSuccess     = "✓" // operation completed
	SymbolFail        = "✗" // operation or node failed
	SymbolPending     = "○" // not started
	SymbolComplete    = "●" // node answered
	SymbolUnreachable = "◔" // node did not answer the probe
	SymbolDown        = "◌" // service reported down
)
