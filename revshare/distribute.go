package revshare

import (
	"math/big"

	"github.com/shopspring/decimal"

	"github.com/bitfsorg/splitvest-go/vesting"
)

// Entitled returns a beneficiary's portion of a vested amount:
// floor(vested * share / TotalShareUnit).
//
// Shares are capped at TotalShareUnit by validation, so the quotient never
// exceeds vested and cannot overflow.
func Entitled(vested, share uint64) uint64 {
	amount, err := vesting.MulDiv(vested, share, TotalShareUnit)
	if err != nil {
		// Only reachable for shares above TotalShareUnit.
		return vested
	}
	return amount
}

// Split calculates every beneficiary's entitlement against amount.
// Rounding dust is left undistributed rather than handed to any entry, so no
// beneficiary ever receives more than its exact proportion.
func Split(amount uint64, entries []Entry) ([]Distribution, error) {
	if len(entries) == 0 {
		return nil, ErrNoEntries
	}
	distributions := make([]Distribution, len(entries))
	for i, entry := range entries {
		distributions[i] = Distribution{
			Address: entry.Address,
			Amount:  Entitled(amount, entry.Share),
		}
	}
	return distributions, nil
}

// SharePercent renders a share as a percentage, e.g. 30000000 -> 30.
func SharePercent(share uint64) decimal.Decimal {
	return decimal.NewFromBigInt(new(big.Int).SetUint64(share), -6)
}
