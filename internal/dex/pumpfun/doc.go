// Package pumpfun implements pricing for the Pump.fun constant-product bonding curve.
//
// This package provides:
// - Buy and sell quotes, market cap and buyout projections on a BondingCurve snapshot.
// - The initial buy quote of a curve family from its GlobalAccount.
// - An AMM value type that applies chains of simulated buys and sells.
// - Slippage bounds for the max cost of a buy and the min output of a sell.
// - Decoding of the Global and BondingCurve account layouts and of program events.
//
// All amounts are raw integer units (lamports, token base units). Products of two
// reserves are computed with 128-bit intermediates, and no function panics on bad input:
// failures are reported with the sentinel errors in errors.go.
//
// Detailed information can be found in the respective source files:
//   - math.go: MulDiv and basis-point fee arithmetic.
//   - bonding_curve.go: BondingCurve pricing methods.
//   - global_account.go: GlobalAccount and the initial buy quote.
//   - amm.go: AMM simulator.
//   - slippage.go: CalculateWithSlippageBuy, CalculateWithSlippageSell.
//   - accounts.go: account layout decoding.
//   - events.go: program events.
//   - token_calc.go: lamport/SOL and token unit conversions.
//
// Usage example:
//
//	curve, err := pumpfun.DecodeBondingCurve(data)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	cost, err := curve.GetBuyPrice(1_000_000_000)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	maxCost, err := pumpfun.CalculateWithSlippageBuy(cost, pumpfun.DefaultSlippageBasisPoints)
package pumpfun
