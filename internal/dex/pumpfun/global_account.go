// =============================================
// File: internal/dex/pumpfun/global_account.go
// =============================================
package pumpfun

import (
	"fmt"

	"github.com/gagliardetto/solana-go"
)

// GlobalAccount represents the structure of the PumpFun global account data.
// It carries the parameters shared by every curve of the family and is read once per session.
type GlobalAccount struct {
	Discriminator               [8]byte
	Initialized                 bool
	Authority                   solana.PublicKey
	FeeRecipient                solana.PublicKey
	InitialVirtualTokenReserves uint64
	InitialVirtualSolReserves   uint64
	InitialRealTokenReserves    uint64
	TokenTotalSupply            uint64
	FeeBasisPoints              uint64
}

// Validate checks the invariants every curve family must satisfy.
func (g GlobalAccount) Validate() error {
	if g.InitialVirtualTokenReserves <= g.InitialRealTokenReserves {
		return opError("Validate", fmt.Errorf("%w: initial virtual token reserves %d must exceed initial real token reserves %d",
			ErrInvalidAmount, g.InitialVirtualTokenReserves, g.InitialRealTokenReserves))
	}
	if g.FeeBasisPoints > BasisPointsDenominator {
		return opError("Validate", fmt.Errorf("%w: fee basis points %d above %d",
			ErrInvalidAmount, g.FeeBasisPoints, BasisPointsDenominator))
	}
	return nil
}

// GetInitialBuyPrice returns how many tokens solAmount buys on a freshly created curve,
// before its first trade. The result never exceeds InitialRealTokenReserves.
func (g GlobalAccount) GetInitialBuyPrice(solAmount uint64) (uint64, error) {
	if solAmount == 0 {
		return 0, nil
	}
	tokens, err := tokensForSol(g.InitialVirtualSolReserves, g.InitialVirtualTokenReserves, solAmount)
	if err != nil {
		return 0, opError("GetInitialBuyPrice", err)
	}
	return min(tokens, g.InitialRealTokenReserves), nil
}

// ApplySetParams обновляет параметры семейства кривых из события SetParams.
func (g *GlobalAccount) ApplySetParams(ev SetParamsEvent) {
	g.FeeRecipient = ev.FeeRecipient
	g.InitialVirtualTokenReserves = ev.InitialVirtualTokenReserves
	g.InitialVirtualSolReserves = ev.InitialVirtualSolReserves
	g.InitialRealTokenReserves = ev.InitialRealTokenReserves
	g.TokenTotalSupply = ev.TokenTotalSupply
	g.FeeBasisPoints = ev.FeeBasisPoints
}

// tokensForSol is the SOL-in side of the constant product:
// the token reserve after the trade is k/(sol+solIn)+1, the difference is delivered.
func tokensForSol(virtualSol, virtualTokens, solIn uint64) (uint64, error) {
	newSol, err := checkedAdd(virtualSol, solIn)
	if err != nil {
		return 0, err
	}
	newTokens, err := mulDivPlusOne(virtualSol, virtualTokens, newSol)
	if err != nil {
		return 0, err
	}
	if newTokens >= virtualTokens {
		return 0, nil
	}
	return virtualTokens - newTokens, nil
}
