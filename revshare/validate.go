package revshare

import "fmt"

// ValidateAccounts checks a replacement beneficiary set. It does not check
// that shares add up to TotalShareUnit; see ValidateShareTotal.
func ValidateAccounts(addrs []Address, shares []uint64) error {
	if len(addrs) != len(shares) {
		return fmt.Errorf("%w: %d addresses, %d shares", ErrLengthMismatch, len(addrs), len(shares))
	}
	if len(addrs) == 0 {
		return ErrNoEntries
	}

	seen := make(map[Address]struct{}, len(addrs))
	for i, addr := range addrs {
		switch {
		case addr.IsZero():
			return fmt.Errorf("%w: entry %d", ErrZeroAddress, i)
		case shares[i] == 0:
			return fmt.Errorf("%w: entry %d", ErrZeroShares, i)
		case shares[i] > TotalShareUnit:
			return fmt.Errorf("%w: entry %d has %d", ErrShareTooLarge, i, shares[i])
		}
		if _, ok := seen[addr]; ok {
			return fmt.Errorf("%w: %s", ErrDuplicateAddress, addr)
		}
		seen[addr] = struct{}{}
	}
	return nil
}

// ValidateShareTotal checks that entries add up to exactly TotalShareUnit.
func ValidateShareTotal(entries []Entry) error {
	if total := sumShares(entries); total != TotalShareUnit {
		return fmt.Errorf("%w: got %d, want %d", ErrShareTotalMismatch, total, TotalShareUnit)
	}
	return nil
}
