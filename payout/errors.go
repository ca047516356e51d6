package payout

import "errors"

var (
	// ErrUnauthorized indicates the caller may not perform the operation:
	// a non-owner updating accounts or a non-beneficiary withdrawing.
	ErrUnauthorized = errors.New("payout: unauthorized")

	// ErrNothingDue indicates the caller has already withdrawn everything
	// vested for them on the deposit.
	ErrNothingDue = errors.New("payout: nothing due")

	// ErrWithdrawInProgress indicates the same beneficiary is already
	// withdrawing from the same deposit.
	ErrWithdrawInProgress = errors.New("payout: withdrawal already in progress")

	// ErrTransferFailed indicates the external transfer collaborator rejected
	// a payout or a token pull.
	ErrTransferFailed = errors.New("payout: transfer failed")

	// ErrInvalidAsset indicates a token operation was given the native asset.
	ErrInvalidAsset = errors.New("payout: invalid token asset")

	// ErrNilParam indicates a required constructor argument is nil.
	ErrNilParam = errors.New("payout: required parameter is nil")
)
