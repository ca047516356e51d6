package vesting

import "errors"

var (
	// ErrOverflow indicates a scaled amount does not fit in 64 bits.
	ErrOverflow = errors.New("vesting: arithmetic overflow")

	// ErrDivideByZero indicates a zero divisor was passed to MulDiv.
	ErrDivideByZero = errors.New("vesting: divide by zero")
)
