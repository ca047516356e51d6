package payout

import (
	"context"

	"github.com/bitfsorg/splitvest-go/ledger"
	"github.com/bitfsorg/splitvest-go/revshare"
)

// Transferer moves value out of the ledger. For the native asset this is a
// plain value transfer; for tokens it is a transfer from the ledger's balance.
type Transferer interface {
	// Transfer sends amount of asset to the given address. A nil error is the
	// only signal of success.
	Transfer(ctx context.Context, asset ledger.Asset, to revshare.Address, amount uint64) error
}

// TokenPuller moves approved tokens from a depositor into the ledger.
type TokenPuller interface {
	// TransferFrom pulls amount of asset from the depositor to the ledger address.
	TransferFrom(ctx context.Context, asset ledger.Asset, from, to revshare.Address, amount uint64) error
}

// Authorizer decides whether a caller may replace the beneficiary set.
type Authorizer interface {
	IsOwner(caller revshare.Address) bool
}

// OwnerAuthorizer grants ownership to a single fixed address.
// A zero Owner authorizes nobody.
type OwnerAuthorizer struct {
	Owner revshare.Address
}

// IsOwner reports whether caller is the configured owner.
func (a OwnerAuthorizer) IsOwner(caller revshare.Address) bool {
	return !a.Owner.IsZero() && caller == a.Owner
}

// AuthorizerFunc adapts a function to the Authorizer interface.
type AuthorizerFunc func(caller revshare.Address) bool

// IsOwner calls f(caller).
func (f AuthorizerFunc) IsOwner(caller revshare.Address) bool { return f(caller) }
