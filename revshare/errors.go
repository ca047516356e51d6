package revshare

import "errors"

var (
	// ErrInvalidRegistryData indicates the persisted registry is malformed.
	ErrInvalidRegistryData = errors.New("revshare: invalid registry data")

	// ErrLengthMismatch indicates the address and share lists differ in length.
	ErrLengthMismatch = errors.New("revshare: addresses and shares length mismatch")

	// ErrNoEntries indicates the registry has no beneficiaries.
	ErrNoEntries = errors.New("revshare: no beneficiary entries")

	// ErrTooManyEntries indicates the beneficiary list cannot be encoded.
	ErrTooManyEntries = errors.New("revshare: too many beneficiary entries")

	// ErrZeroShares indicates a share amount of zero.
	ErrZeroShares = errors.New("revshare: zero share amount")

	// ErrShareTooLarge indicates a single share exceeds TotalShareUnit.
	ErrShareTooLarge = errors.New("revshare: share exceeds total share unit")

	// ErrZeroAddress indicates an unset beneficiary address.
	ErrZeroAddress = errors.New("revshare: zero beneficiary address")

	// ErrDuplicateAddress indicates the same beneficiary appears twice.
	ErrDuplicateAddress = errors.New("revshare: duplicate beneficiary address")

	// ErrShareTotalMismatch indicates the shares do not add up to TotalShareUnit.
	ErrShareTotalMismatch = errors.New("revshare: shares do not sum to total share unit")

	// ErrInvalidAddress indicates an address string could not be parsed.
	ErrInvalidAddress = errors.New("revshare: invalid address")

	// ErrNetworkMismatch indicates a base58 address belongs to the other network.
	ErrNetworkMismatch = errors.New("revshare: address network mismatch")
)
