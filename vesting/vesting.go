package vesting

import (
	"math/big"
	"math/bits"
	"time"

	"github.com/shopspring/decimal"
)

// Schedule is a linear release of Total over Duration starting at Start.
// A Duration below one second releases everything at Start.
type Schedule struct {
	Total    uint64
	Start    time.Time
	Duration time.Duration
}

// VestedAmount returns how much of total has unlocked at now.
//
// Durations and elapsed time are counted in whole seconds. The result is
// floor(total * elapsed / duration) inside the window, 0 before it and total
// once it has ended.
func VestedAmount(total uint64, start time.Time, duration time.Duration, now time.Time) uint64 {
	secs := durationSeconds(duration)
	if secs == 0 {
		return total
	}
	since := now.Sub(start)
	if since < time.Second {
		return 0
	}
	elapsed := uint64(since / time.Second)
	if elapsed >= secs {
		return total
	}
	// elapsed < secs, so the quotient is below total and always fits.
	hi, lo := bits.Mul64(total, elapsed)
	q, _ := bits.Div64(hi, lo, secs)
	return q
}

// MulDiv returns floor(a * b / d) using a 128-bit intermediate product.
func MulDiv(a, b, d uint64) (uint64, error) {
	if d == 0 {
		return 0, ErrDivideByZero
	}
	hi, lo := bits.Mul64(a, b)
	if hi >= d {
		return 0, ErrOverflow
	}
	q, _ := bits.Div64(hi, lo, d)
	return q, nil
}

func durationSeconds(d time.Duration) uint64 {
	if d <= 0 {
		return 0
	}
	return uint64(d / time.Second)
}

// VestedAt returns the amount of the schedule unlocked at now.
func (s Schedule) VestedAt(now time.Time) uint64 {
	return VestedAmount(s.Total, s.Start, s.Duration, now)
}

// IsInstant reports whether the schedule is fully vested from its start.
func (s Schedule) IsInstant() bool {
	return durationSeconds(s.Duration) == 0
}

// End returns the moment the schedule becomes fully vested.
func (s Schedule) End() time.Time {
	return s.Start.Add(time.Duration(durationSeconds(s.Duration)) * time.Second)
}

// Progress returns the vested fraction in [0, 1]. Display only; payouts never
// go through decimal arithmetic.
func (s Schedule) Progress(now time.Time) decimal.Decimal {
	if s.Total == 0 {
		if now.Before(s.End()) {
			return decimal.Zero
		}
		return decimal.NewFromInt(1)
	}
	vested := decimal.NewFromBigInt(new(big.Int).SetUint64(s.VestedAt(now)), 0)
	total := decimal.NewFromBigInt(new(big.Int).SetUint64(s.Total), 0)
	return vested.DivRound(total, 8)
}
