// =============================
// File: internal/dex/pumpfun/slippage.go
// =============================
package pumpfun

// DefaultSlippageBasisPoints is applied when a caller does not pick a tolerance (5%).
const DefaultSlippageBasisPoints uint64 = 500

// CalculateWithSlippageBuy returns the most SOL a buyer should accept to pay for a quote:
// quote + quote*bps/10000.
func CalculateWithSlippageBuy(quotedSolCost, slippageBasisPoints uint64) (uint64, error) {
	extra, err := MulDiv(quotedSolCost, slippageBasisPoints, BasisPointsDenominator)
	if err != nil {
		return 0, opError("CalculateWithSlippageBuy", err)
	}
	bound, err := checkedAdd(quotedSolCost, extra)
	if err != nil {
		return 0, opError("CalculateWithSlippageBuy", err)
	}
	return bound, nil
}

// CalculateWithSlippageSell returns the least SOL a seller should accept for a quote.
//
// At least one lamport is always deducted, and the result never drops below 1:
// a zero minimum output would disable the on-chain slippage check entirely.
func CalculateWithSlippageSell(quotedSolOutput, slippageBasisPoints uint64) uint64 {
	// quote*bps/10000 cannot overflow for bps <= 10000; larger tolerances saturate to the whole quote.
	reduction, err := MulDiv(quotedSolOutput, slippageBasisPoints, BasisPointsDenominator)
	if err != nil {
		reduction = quotedSolOutput
	}
	reduction = max(reduction, 1)
	if reduction >= quotedSolOutput {
		return 1
	}
	return quotedSolOutput - reduction
}
