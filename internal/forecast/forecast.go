// Package forecast projects chains of trades against a bonding curve without touching
// the on-chain state. Each scenario runs on its own AMM copy, so scenarios can be
// evaluated concurrently.
package forecast

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/rovshanmuradov/pumpcurve/internal/dex/pumpfun"
	"github.com/rovshanmuradov/pumpcurve/internal/types"
)

// Side is the direction of a simulated trade.
type Side string

const (
	SideBuy  Side = "buy"
	SideSell Side = "sell"
)

// ParseSide accepts "buy" or "sell" in any case.
func ParseSide(s string) (Side, error) {
	switch Side(strings.ToLower(strings.TrimSpace(s))) {
	case SideBuy:
		return SideBuy, nil
	case SideSell:
		return SideSell, nil
	default:
		return "", fmt.Errorf("unknown trade side %q", s)
	}
}

// Step is one simulated trade. Amount is always in raw token units.
type Step struct {
	Side   Side
	Amount uint64
}

// Scenario describes a chain of trades starting from either a fresh curve of the
// family (Curve == nil) or a live snapshot.
type Scenario struct {
	Name     string
	Global   pumpfun.GlobalAccount
	Curve    *pumpfun.BondingCurve
	Steps    []Step
	Slippage types.SlippageConfig
}

// StepResult is the realized outcome of one step and the reserves right after it.
type StepResult struct {
	Index       int    `json:"index"`
	Side        Side   `json:"side"`
	Requested   uint64 `json:"requested"`
	TokenAmount uint64 `json:"token_amount"`
	SolAmount   uint64 `json:"sol_amount"`
	Fee         uint64 `json:"fee"`
	// Bound is the max SOL cost for buys and the min SOL output for sells.
	Bound                uint64 `json:"bound"`
	VirtualSolReserves   uint64 `json:"virtual_sol_reserves"`
	VirtualTokenReserves uint64 `json:"virtual_token_reserves"`
	RealSolReserves      uint64 `json:"real_sol_reserves"`
	RealTokenReserves    uint64 `json:"real_token_reserves"`
	MarketCapSOL         uint64 `json:"market_cap_sol"`
}

// Report summarizes one scenario. Err is set when the scenario stopped early;
// Steps then holds the steps that completed.
type Report struct {
	Scenario     string               `json:"scenario"`
	Steps        []StepResult         `json:"steps"`
	Final        pumpfun.BondingCurve `json:"final"`
	MarketCapSOL uint64               `json:"market_cap_sol"`
	SpotPrice    decimal.Decimal      `json:"spot_price"`
	Err          string               `json:"error,omitempty"`
}

// Failed reports whether the scenario stopped before its last step.
func (r Report) Failed() bool {
	return r.Err != ""
}

// Simulate runs one scenario to completion. The context is checked between steps.
func Simulate(ctx context.Context, s Scenario) (Report, error) {
	report := Report{Scenario: s.Name}

	amm, err := startingAMM(s)
	if err != nil {
		return report, err
	}
	supply := s.Global.TokenTotalSupply
	if s.Curve != nil {
		supply = s.Curve.TokenTotalSupply
	}

	for i, step := range s.Steps {
		if err := ctx.Err(); err != nil {
			return report, err
		}
		res, err := applyStep(&amm, step, s.Global.FeeBasisPoints, s.Slippage)
		if err != nil {
			return report, fmt.Errorf("step %d (%s %d): %w", i, step.Side, step.Amount, err)
		}
		res.Index = i

		snapshot := amm.Snapshot(supply)
		res.VirtualSolReserves = snapshot.VirtualSolReserves
		res.VirtualTokenReserves = snapshot.VirtualTokenReserves
		res.RealSolReserves = snapshot.RealSolReserves
		res.RealTokenReserves = snapshot.RealTokenReserves
		if res.MarketCapSOL, err = snapshot.GetMarketCapSOL(); err != nil {
			return report, fmt.Errorf("step %d: market cap: %w", i, err)
		}
		report.Steps = append(report.Steps, res)
	}

	report.Final = amm.Snapshot(supply)
	if report.MarketCapSOL, err = report.Final.GetMarketCapSOL(); err != nil {
		return report, fmt.Errorf("final market cap: %w", err)
	}
	if report.Final.VirtualTokenReserves > 0 {
		if report.SpotPrice, err = report.Final.SpotPrice(); err != nil {
			return report, fmt.Errorf("final spot price: %w", err)
		}
	}
	return report, nil
}

func startingAMM(s Scenario) (pumpfun.AMM, error) {
	if s.Curve == nil {
		if err := s.Global.Validate(); err != nil {
			return pumpfun.AMM{}, err
		}
		return pumpfun.NewAMMFromGlobal(s.Global), nil
	}
	if s.Curve.Complete {
		return pumpfun.AMM{}, fmt.Errorf("scenario %q: %w", s.Name, pumpfun.ErrCurveComplete)
	}
	if err := s.Curve.Validate(); err != nil {
		return pumpfun.AMM{}, err
	}
	return pumpfun.NewAMMFromBondingCurve(*s.Curve, s.Global.InitialVirtualTokenReserves), nil
}

// applyStep moves the AMM by one trade and wraps the realized amount with its fee and slippage bound.
// The fee is charged on top of the curve price for buys and deducted from proceeds for sells.
func applyStep(amm *pumpfun.AMM, step Step, feeBasisPoints uint64, slippage types.SlippageConfig) (StepResult, error) {
	res := StepResult{Side: step.Side, Requested: step.Amount}

	// Работаем с копией, чтобы ошибка в расчете комиссии или границы не оставила AMM в промежуточном состоянии.
	next := *amm
	var (
		trade pumpfun.TradeResult
		err   error
	)
	switch step.Side {
	case SideBuy:
		trade, err = next.ApplyBuy(step.Amount)
	case SideSell:
		trade, err = next.ApplySell(step.Amount)
	default:
		return res, fmt.Errorf("unknown trade side %q", step.Side)
	}
	if err != nil {
		return res, err
	}
	res.TokenAmount = trade.TokenAmount
	res.SolAmount = trade.SolAmount

	if res.Fee, err = pumpfun.ApplyFeeBasisPoints(trade.SolAmount, feeBasisPoints); err != nil {
		return res, err
	}

	if trade.SolAmount > 0 {
		if step.Side == SideBuy {
			cost := trade.SolAmount + res.Fee
			if cost < trade.SolAmount {
				return res, pumpfun.ErrOverflow
			}
			if res.Bound, err = types.CalculateMaxAmountIn(cost, slippage); err != nil {
				return res, err
			}
		} else {
			res.Bound = types.CalculateMinAmountOut(trade.SolAmount-res.Fee, slippage)
		}
	}

	*amm = next
	return res, nil
}

// Runner evaluates scenarios concurrently.
type Runner struct {
	logger  *zap.Logger
	workers int
}

// NewRunner creates a runner; workers <= 0 means one goroutine per scenario.
func NewRunner(logger *zap.Logger, workers int) *Runner {
	return &Runner{logger: logger.Named("forecast"), workers: workers}
}

// Run simulates every scenario and returns the reports in input order.
// A failing scenario is recorded in its Report and does not stop the others;
// only context cancellation aborts the run.
func (r *Runner) Run(ctx context.Context, scenarios []Scenario) ([]Report, error) {
	reports := make([]Report, len(scenarios))

	g, gctx := errgroup.WithContext(ctx)
	if r.workers > 0 {
		g.SetLimit(r.workers)
	}

	for i, sc := range scenarios {
		i, sc := i, sc // per-iteration copies (go 1.21 loop semantics)
		g.Go(func() error {
			log := r.logger.With(zap.String("scenario", sc.Name))
			log.Debug("Simulating scenario", zap.Int("steps", len(sc.Steps)))

			report, err := Simulate(gctx, sc)
			if err != nil {
				if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
					return err
				}
				log.Warn("Scenario stopped early",
					zap.Int("completed_steps", len(report.Steps)),
					zap.Error(err))
				report.Err = err.Error()
			} else {
				log.Info("Scenario simulated",
					zap.Int("steps", len(report.Steps)),
					zap.Uint64("market_cap_lamports", report.MarketCapSOL),
					zap.String("spot_price_sol", report.SpotPrice.String()))
			}
			reports[i] = report
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("forecast run aborted: %w", err)
	}
	return reports, nil
}
