// internal/types/slippage.go
package types

import (
	"fmt"
	"math"

	"github.com/rovshanmuradov/pumpcurve/internal/dex/pumpfun"
)

// SlippageType определяет тип политики проскальзывания
type SlippageType string

const (
	// SlippageBasisPoints ограничивает сделку допуском в базисных пунктах (500 = 5%)
	SlippageBasisPoints SlippageType = "bps"
	// SlippagePercent использует процент от ожидаемого выхода (1.0 = 1%)
	SlippagePercent SlippageType = "percent"
	// SlippageFixed использует фиксированное значение границы
	SlippageFixed SlippageType = "fixed"
	// SlippageNone не использует ограничение: для покупки без лимита, для продажи минимум 1
	SlippageNone SlippageType = "none"
)

// SlippageConfig конфигурирует политику проскальзывания
type SlippageConfig struct {
	// Type определяет тип политики проскальзывания
	Type SlippageType `json:"type" mapstructure:"type"`
	// Value содержит значение для выбранной политики:
	// - для SlippageBasisPoints: допуск в базисных пунктах
	// - для SlippagePercent: процент допустимого проскальзывания
	// - для SlippageFixed: точное значение границы
	// - для SlippageNone: игнорируется
	Value float64 `json:"value" mapstructure:"value"`
}

// DefaultSlippageConfig returns the 500 bps tolerance used when nothing is configured.
func DefaultSlippageConfig() SlippageConfig {
	return SlippageConfig{Type: SlippageBasisPoints, Value: float64(pumpfun.DefaultSlippageBasisPoints)}
}

// twoTo64 is the smallest float64 that no longer fits in a uint64.
const twoTo64 = float64(1 << 64)

// Validate rejects negative, non-finite or out-of-range tolerances and unknown policies.
func (c SlippageConfig) Validate() error {
	if math.IsNaN(c.Value) || math.IsInf(c.Value, 0) || c.Value < 0 {
		return fmt.Errorf("%w: slippage value %v", pumpfun.ErrInvalidAmount, c.Value)
	}
	switch c.Type {
	case SlippageBasisPoints, SlippageFixed:
		if c.Value >= twoTo64 {
			return fmt.Errorf("%w: slippage value %v does not fit in 64 bits", pumpfun.ErrInvalidAmount, c.Value)
		}
	case SlippagePercent:
		if math.Round(c.Value*100) >= twoTo64 {
			return fmt.Errorf("%w: slippage percent %v does not fit in 64 bits", pumpfun.ErrInvalidAmount, c.Value)
		}
	case SlippageNone:
	default:
		return fmt.Errorf("unknown slippage type %q", c.Type)
	}
	return nil
}

// BasisPoints переводит политику в базисные пункты для процентных типов.
func (c SlippageConfig) BasisPoints() uint64 {
	switch c.Type {
	case SlippageBasisPoints:
		return floatToUint64(c.Value)
	case SlippagePercent:
		return floatToUint64(math.Round(c.Value * 100))
	default:
		return 0
	}
}

// floatToUint64 truncates v, saturating at 0 and math.MaxUint64.
func floatToUint64(v float64) uint64 {
	switch {
	case math.IsNaN(v) || v <= 0:
		return 0
	case v >= twoTo64:
		return math.MaxUint64
	default:
		return uint64(v)
	}
}

// CalculateMaxAmountIn вычисляет максимальную стоимость покупки по котировке.
func CalculateMaxAmountIn(quotedSolCost uint64, config SlippageConfig) (uint64, error) {
	switch config.Type {
	case SlippageFixed:
		return floatToUint64(config.Value), nil
	case SlippageNone:
		return math.MaxUint64, nil
	default:
		return pumpfun.CalculateWithSlippageBuy(quotedSolCost, config.BasisPoints())
	}
}

// CalculateMinAmountOut вычисляет minAmountOut на основе политики проскальзывания.
// Результат никогда не равен 0.
func CalculateMinAmountOut(quotedSolOutput uint64, config SlippageConfig) uint64 {
	switch config.Type {
	case SlippageFixed:
		return max(floatToUint64(config.Value), 1)
	case SlippageNone:
		// Возвращаем 1 как минимальное значение для прохождения валидации
		return 1
	default:
		return pumpfun.CalculateWithSlippageSell(quotedSolOutput, config.BasisPoints())
	}
}
