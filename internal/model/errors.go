package model

import (
	"errors"
	"fmt"
	"math"
)

// Calculation errors. Every failure in the estimation core wraps one of these.
var (
	ErrInvalidProfile     = errors.New("invalid profile")
	ErrInvalidClimateData = errors.New("invalid climate data")
	ErrUndefinedBaseline  = errors.New("undefined baseline")
	ErrInvalidBill        = errors.New("invalid bill")
)

// ValidationError names the input field that failed a check.
type ValidationError struct {
	Field string
	Value float64
	Err   error
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%v: %s = %v", e.Err, e.Field, e.Value)
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

func invalid(kind error, field string, value float64) error {
	return &ValidationError{Field: field, Value: value, Err: kind}
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
