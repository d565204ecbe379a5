// =============================
// File: internal/dex/pumpfun/amm.go
// =============================
package pumpfun

// TradeResult is what a simulated trade actually moved.
type TradeResult struct {
	TokenAmount uint64
	SolAmount   uint64
}

// AMM is a local projection of a bonding curve used to chain what-if trades.
//
// It is a plain value: copying an AMM forks the simulation. An AMM is not safe
// for concurrent mutation; concurrent simulations must each own an instance.
// The completion flag of the real curve is not mirrored here.
type AMM struct {
	VirtualSolReserves          uint64
	VirtualTokenReserves        uint64
	RealSolReserves             uint64
	RealTokenReserves           uint64
	InitialVirtualTokenReserves uint64
}

// NewAMMFromGlobal starts a simulation from a curve that has not traded yet.
func NewAMMFromGlobal(g GlobalAccount) AMM {
	return AMM{
		VirtualSolReserves:          g.InitialVirtualSolReserves,
		VirtualTokenReserves:        g.InitialVirtualTokenReserves,
		RealSolReserves:             0,
		RealTokenReserves:           g.InitialRealTokenReserves,
		InitialVirtualTokenReserves: g.InitialVirtualTokenReserves,
	}
}

// NewAMMFromBondingCurve starts a simulation from a live curve snapshot.
// initialVirtualTokenReserves usually comes from the GlobalAccount of the curve family.
func NewAMMFromBondingCurve(bc BondingCurve, initialVirtualTokenReserves uint64) AMM {
	return AMM{
		VirtualSolReserves:          bc.VirtualSolReserves,
		VirtualTokenReserves:        bc.VirtualTokenReserves,
		RealSolReserves:             bc.RealSolReserves,
		RealTokenReserves:           bc.RealTokenReserves,
		InitialVirtualTokenReserves: initialVirtualTokenReserves,
	}
}

// BuyPrice quotes the SOL needed for tokens without touching the reserves.
func (a *AMM) BuyPrice(tokens uint64) (uint64, error) {
	if tokens == 0 {
		return 0, nil
	}
	sol, err := solForTokens(a.VirtualSolReserves, a.VirtualTokenReserves, tokens)
	if err != nil {
		return 0, opError("BuyPrice", err)
	}
	return sol, nil
}

// SellPrice quotes the SOL paid for tokens against the current reserves.
//
// The token share is scaled by InitialVirtualTokenReserves rather than the live
// virtual reserve so that chains of buys and sells keep one fixed reference.
// The result is capped at RealSolReserves.
func (a *AMM) SellPrice(tokens uint64) (uint64, error) {
	if tokens == 0 {
		return 0, nil
	}
	sol, err := scaledSellPrice(a.VirtualSolReserves, a.VirtualTokenReserves, a.RealSolReserves, a.InitialVirtualTokenReserves, tokens)
	if err != nil {
		return 0, opError("SellPrice", err)
	}
	return sol, nil
}

// ApplyBuy buys up to tokenAmount tokens (capped at RealTokenReserves) and moves the reserves.
// A zero amount is a no-op. On error the AMM is left unchanged.
func (a *AMM) ApplyBuy(tokenAmount uint64) (TradeResult, error) {
	tokens := min(tokenAmount, a.RealTokenReserves)
	if tokens == 0 {
		return TradeResult{}, nil
	}

	sol, err := solForTokens(a.VirtualSolReserves, a.VirtualTokenReserves, tokens)
	if err != nil {
		return TradeResult{}, opError("ApplyBuy", err)
	}
	next := *a
	if next.VirtualSolReserves, err = checkedAdd(next.VirtualSolReserves, sol); err != nil {
		return TradeResult{}, opError("ApplyBuy", err)
	}
	if next.RealSolReserves, err = checkedAdd(next.RealSolReserves, sol); err != nil {
		return TradeResult{}, opError("ApplyBuy", err)
	}
	next.VirtualTokenReserves -= tokens
	next.RealTokenReserves -= tokens

	*a = next
	return TradeResult{TokenAmount: tokens, SolAmount: sol}, nil
}

// ApplySell returns tokenAmount tokens to the pool and pays out SOL.
// Tokens are added before pricing, matching the program. A zero amount is a no-op.
// On error the AMM is left unchanged.
func (a *AMM) ApplySell(tokenAmount uint64) (TradeResult, error) {
	if tokenAmount == 0 {
		return TradeResult{}, nil
	}

	next := *a
	var err error
	if next.VirtualTokenReserves, err = checkedAdd(next.VirtualTokenReserves, tokenAmount); err != nil {
		return TradeResult{}, opError("ApplySell", err)
	}
	if next.RealTokenReserves, err = checkedAdd(next.RealTokenReserves, tokenAmount); err != nil {
		return TradeResult{}, opError("ApplySell", err)
	}
	sol, err := scaledSellPrice(next.VirtualSolReserves, next.VirtualTokenReserves, next.RealSolReserves, next.InitialVirtualTokenReserves, tokenAmount)
	if err != nil {
		return TradeResult{}, opError("ApplySell", err)
	}
	// sol is capped at RealSolReserves, which never exceeds VirtualSolReserves on a consistent curve.
	if next.VirtualSolReserves, err = checkedSub(next.VirtualSolReserves, sol); err != nil {
		return TradeResult{}, opError("ApplySell", err)
	}
	next.RealSolReserves -= sol

	*a = next
	return TradeResult{TokenAmount: tokenAmount, SolAmount: sol}, nil
}

// Snapshot returns the simulated reserves as a BondingCurve so the pure pricing methods
// (market cap, quotes) can be evaluated on a projected state.
func (a *AMM) Snapshot(tokenTotalSupply uint64) BondingCurve {
	return BondingCurve{
		VirtualTokenReserves: a.VirtualTokenReserves,
		VirtualSolReserves:   a.VirtualSolReserves,
		RealTokenReserves:    a.RealTokenReserves,
		RealSolReserves:      a.RealSolReserves,
		TokenTotalSupply:     tokenTotalSupply,
	}
}

func scaledSellPrice(virtualSol, virtualTokens, realSol, scale, tokens uint64) (uint64, error) {
	proportion, err := MulDiv(tokens, scale, virtualTokens)
	if err != nil {
		return 0, err
	}
	sol, err := MulDiv(virtualSol, proportion, scale)
	if err != nil {
		return 0, err
	}
	return min(sol, realSol), nil
}
