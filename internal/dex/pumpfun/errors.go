// =============================
// File: internal/dex/pumpfun/errors.go
// =============================
package pumpfun

import (
	"errors"
	"fmt"
)

// Ошибки ценообразования bonding curve. Сравнивать через errors.Is.
var (
	// ErrCurveComplete is returned for any pricing call on a migrated curve.
	ErrCurveComplete = errors.New("curve is complete")
	// ErrInsufficientLiquidity is returned when a trade needs more than the reserves hold.
	ErrInsufficientLiquidity = errors.New("insufficient liquidity")
	// ErrDivisionByZero is returned for degenerate reserve states.
	ErrDivisionByZero = errors.New("division by zero")
	// ErrOverflow is returned when a result does not fit in 64 bits.
	ErrOverflow = errors.New("arithmetic overflow")
	// ErrInvalidAmount is returned for out-of-domain inputs.
	ErrInvalidAmount = errors.New("invalid amount")
)

// CurveError привязывает ошибку к операции, в которой она возникла.
type CurveError struct {
	Op  string
	Err error
}

func (e *CurveError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *CurveError) Unwrap() error {
	return e.Err
}

func opError(op string, err error) error {
	if err == nil {
		return nil
	}
	return &CurveError{Op: op, Err: err}
}
