// internal/dex/pumpfun/token_calc.go
package pumpfun

import (
	"github.com/shopspring/decimal"
)

const (
	// Стандартные десятичные знаки для SOL и токенов Pump.fun
	SolDecimals   = 9
	TokenDecimals = 6
)

// LamportsToSOL переводит lamports в SOL без потери точности.
func LamportsToSOL(lamports uint64) decimal.Decimal {
	return decimal.NewFromUint64(lamports).Shift(-SolDecimals)
}

// SOLToLamports converts a SOL amount to lamports, truncating sub-lamport dust.
func SOLToLamports(sol decimal.Decimal) (uint64, error) {
	return toBaseUnits(sol, SolDecimals)
}

// TokenUnitsToUI переводит минимальные единицы токена в человекочитаемое значение.
func TokenUnitsToUI(units uint64) decimal.Decimal {
	return decimal.NewFromUint64(units).Shift(-TokenDecimals)
}

// UIToTokenUnits converts a human token amount to raw units, truncating dust.
func UIToTokenUnits(amount decimal.Decimal) (uint64, error) {
	return toBaseUnits(amount, TokenDecimals)
}

func toBaseUnits(amount decimal.Decimal, decimals int32) (uint64, error) {
	if amount.IsNegative() {
		return 0, ErrInvalidAmount
	}
	raw := amount.Shift(decimals).Truncate(0).BigInt()
	if !raw.IsUint64() {
		return 0, ErrOverflow
	}
	return raw.Uint64(), nil
}

// SpotPrice returns the current price of one whole token in SOL, from the virtual reserves ratio.
// Формула: Price = (VirtualSolReserves / 10^9) / (VirtualTokenReserves / 10^6)
func (bc BondingCurve) SpotPrice() (decimal.Decimal, error) {
	if err := bc.checkActive("SpotPrice"); err != nil {
		return decimal.Zero, err
	}
	if bc.VirtualTokenReserves == 0 {
		return decimal.Zero, opError("SpotPrice", ErrDivisionByZero)
	}
	return LamportsToSOL(bc.VirtualSolReserves).Div(TokenUnitsToUI(bc.VirtualTokenReserves)), nil
}
