// ==============================================
// File: internal/dex/pumpfun/bonding_curve.go
// ==============================================
package pumpfun

import (
	"fmt"
)

// BondingCurve is a snapshot of one market's reserves as last read from its account.
//
// Virtual reserves define the constant product used for pricing, real reserves are
// what the curve can actually deliver. Once Complete is set the curve has migrated
// and every pricing method fails with ErrCurveComplete.
type BondingCurve struct {
	Discriminator        [8]byte
	VirtualTokenReserves uint64
	VirtualSolReserves   uint64
	RealTokenReserves    uint64
	RealSolReserves      uint64
	TokenTotalSupply     uint64
	Complete             bool
}

// Validate checks that the real token reserve stays within the virtual one.
func (bc BondingCurve) Validate() error {
	if bc.RealTokenReserves > bc.VirtualTokenReserves {
		return opError("Validate", fmt.Errorf("%w: real token reserves %d exceed virtual token reserves %d",
			ErrInsufficientLiquidity, bc.RealTokenReserves, bc.VirtualTokenReserves))
	}
	return nil
}

func (bc BondingCurve) checkActive(op string) error {
	if bc.Complete {
		return opError(op, ErrCurveComplete)
	}
	return nil
}

// GetBuyPrice returns the SOL (lamports) needed to receive tokensOut tokens.
// tokensOut is first capped at RealTokenReserves, the amount the curve can deliver.
func (bc BondingCurve) GetBuyPrice(tokensOut uint64) (uint64, error) {
	if err := bc.checkActive("GetBuyPrice"); err != nil {
		return 0, err
	}
	if tokensOut == 0 {
		return 0, nil
	}
	tokens := min(tokensOut, bc.RealTokenReserves)
	if tokens == 0 {
		return 0, nil
	}
	sol, err := solForTokens(bc.VirtualSolReserves, bc.VirtualTokenReserves, tokens)
	if err != nil {
		return 0, opError("GetBuyPrice", err)
	}
	return sol, nil
}

// GetBuyTokenAmount returns the tokens delivered for solIn lamports, capped at RealTokenReserves.
func (bc BondingCurve) GetBuyTokenAmount(solIn uint64) (uint64, error) {
	if err := bc.checkActive("GetBuyTokenAmount"); err != nil {
		return 0, err
	}
	if solIn == 0 {
		return 0, nil
	}
	tokens, err := tokensForSol(bc.VirtualSolReserves, bc.VirtualTokenReserves, solIn)
	if err != nil {
		return 0, opError("GetBuyTokenAmount", err)
	}
	return min(tokens, bc.RealTokenReserves), nil
}

// GetSellPrice returns the lamports received for tokensIn tokens after the protocol fee.
// Unlike the buy side there is no +1 adjustment: the seller gets the floored proportional share.
func (bc BondingCurve) GetSellPrice(tokensIn, feeBasisPoints uint64) (uint64, error) {
	if err := bc.checkActive("GetSellPrice"); err != nil {
		return 0, err
	}
	if tokensIn == 0 {
		return 0, nil
	}
	out, err := sellProceeds(bc.VirtualSolReserves, bc.VirtualTokenReserves, tokensIn, feeBasisPoints)
	if err != nil {
		return 0, opError("GetSellPrice", err)
	}
	return out, nil
}

// GetMarketCapSOL returns TokenTotalSupply valued at the current virtual price, in lamports.
// An uninitialized curve (no virtual tokens) is worth 0.
func (bc BondingCurve) GetMarketCapSOL() (uint64, error) {
	if err := bc.checkActive("GetMarketCapSOL"); err != nil {
		return 0, err
	}
	if bc.VirtualTokenReserves == 0 {
		return 0, nil
	}
	mc, err := MulDiv(bc.TokenTotalSupply, bc.VirtualSolReserves, bc.VirtualTokenReserves)
	if err != nil {
		return 0, opError("GetMarketCapSOL", err)
	}
	return mc, nil
}

// GetBuyOutPrice returns the SOL needed to buy the whole curve (or tokenAmount when larger), fee included.
//
// The token base is max(tokenAmount, VirtualTokenReserves), so the divisor
// VirtualTokenReserves-base is zero for every amount up to the virtual reserve and the
// call fails with ErrDivisionByZero; a base above the reserve fails with ErrInsufficientLiquidity.
func (bc BondingCurve) GetBuyOutPrice(tokenAmount, feeBasisPoints uint64) (uint64, error) {
	if err := bc.checkActive("GetBuyOutPrice"); err != nil {
		return 0, err
	}
	if tokenAmount == 0 {
		return 0, nil
	}
	price, err := buyOutPrice(bc, tokenAmount, feeBasisPoints)
	if err != nil {
		return 0, opError("GetBuyOutPrice", err)
	}
	return price, nil
}

func buyOutPrice(bc BondingCurve, tokenAmount, feeBasisPoints uint64) (uint64, error) {
	solTokens := max(tokenAmount, bc.VirtualTokenReserves)
	if solTokens > bc.VirtualTokenReserves {
		return 0, ErrInsufficientLiquidity
	}
	value, err := mulDivPlusOne(solTokens, bc.VirtualSolReserves, bc.VirtualTokenReserves-solTokens)
	if err != nil {
		return 0, err
	}
	fee, err := ApplyFeeBasisPoints(value, feeBasisPoints)
	if err != nil {
		return 0, err
	}
	return checkedAdd(value, fee)
}

// GetFinalMarketCapSOL projects the market cap right after the remaining real tokens are bought out.
func (bc BondingCurve) GetFinalMarketCapSOL(feeBasisPoints uint64) (uint64, error) {
	if err := bc.checkActive("GetFinalMarketCapSOL"); err != nil {
		return 0, err
	}
	var totalSellValue uint64
	if bc.RealTokenReserves > 0 {
		var err error
		if totalSellValue, err = buyOutPrice(bc, bc.RealTokenReserves, feeBasisPoints); err != nil {
			return 0, opError("GetFinalMarketCapSOL", err)
		}
	}
	totalVirtualValue, err := checkedAdd(bc.VirtualSolReserves, totalSellValue)
	if err != nil {
		return 0, opError("GetFinalMarketCapSOL", err)
	}
	totalVirtualTokens, err := checkedSub(bc.VirtualTokenReserves, bc.RealTokenReserves)
	if err != nil {
		return 0, opError("GetFinalMarketCapSOL", err)
	}
	if totalVirtualTokens == 0 {
		return 0, nil
	}
	mc, err := MulDiv(bc.TokenTotalSupply, totalVirtualValue, totalVirtualTokens)
	if err != nil {
		return 0, opError("GetFinalMarketCapSOL", err)
	}
	return mc, nil
}

// ApplyTradeEvent refreshes the snapshot from the reserves reported after a trade.
func (bc *BondingCurve) ApplyTradeEvent(ev TradeEvent) {
	bc.VirtualSolReserves = ev.VirtualSolReserves
	bc.VirtualTokenReserves = ev.VirtualTokenReserves
	bc.RealSolReserves = ev.RealSolReserves
	bc.RealTokenReserves = ev.RealTokenReserves
}

// ApplyCompleteEvent marks the curve as migrated.
func (bc *BondingCurve) ApplyCompleteEvent(CompleteEvent) {
	bc.Complete = true
}

// solForTokens is the token-out side of the constant product:
// the SOL reserve after the trade is k/(tokens-out)+1, the difference is charged.
func solForTokens(virtualSol, virtualTokens, tokensOut uint64) (uint64, error) {
	if tokensOut >= virtualTokens {
		return 0, ErrInsufficientLiquidity
	}
	newSol, err := mulDivPlusOne(virtualSol, virtualTokens, virtualTokens-tokensOut)
	if err != nil {
		return 0, err
	}
	if newSol <= virtualSol {
		return 0, nil
	}
	return newSol - virtualSol, nil
}

func sellProceeds(virtualSol, virtualTokens, tokensIn, feeBasisPoints uint64) (uint64, error) {
	denominator, err := checkedAdd(virtualTokens, tokensIn)
	if err != nil {
		return 0, err
	}
	gross, err := MulDiv(tokensIn, virtualSol, denominator)
	if err != nil {
		return 0, err
	}
	fee, err := ApplyFeeBasisPoints(gross, feeBasisPoints)
	if err != nil {
		return 0, err
	}
	return gross - fee, nil
}
