package ledger

import "errors"

var (
	// ErrInvalidAmount indicates a zero-value deposit.
	ErrInvalidAmount = errors.New("ledger: invalid deposit amount")

	// ErrInvalidDuration indicates a negative vesting duration.
	ErrInvalidDuration = errors.New("ledger: invalid vesting duration")

	// ErrDepositNotFound indicates the deposit id is out of range for its asset.
	ErrDepositNotFound = errors.New("ledger: deposit not found")

	// ErrOverdraw indicates a credit would pay out more than the deposit holds.
	ErrOverdraw = errors.New("ledger: withdrawals exceed deposit amount")

	// ErrOverRefund indicates a refund larger than the beneficiary's credit.
	ErrOverRefund = errors.New("ledger: refund exceeds withdrawn amount")

	// ErrRegistryNotFound indicates no beneficiary registry has been stored yet.
	ErrRegistryNotFound = errors.New("ledger: registry not found")

	// ErrNilParam indicates a required parameter is nil.
	ErrNilParam = errors.New("ledger: required parameter is nil")

	// ErrInvalidAsset indicates an asset string could not be parsed.
	ErrInvalidAsset = errors.New("ledger: invalid asset")
)
