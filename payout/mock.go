package payout

import (
	"context"

	"github.com/bitfsorg/splitvest-go/ledger"
	"github.com/bitfsorg/splitvest-go/revshare"
)

// MockTransferer is a test double for Transferer.
// TransferFn must be set before Transfer is called.
type MockTransferer struct {
	TransferFn func(ctx context.Context, asset ledger.Asset, to revshare.Address, amount uint64) error
}

func (m *MockTransferer) Transfer(ctx context.Context, asset ledger.Asset, to revshare.Address, amount uint64) error {
	return m.TransferFn(ctx, asset, to, amount)
}

// MockTokenPuller is a test double for TokenPuller.
// TransferFromFn must be set before TransferFrom is called.
type MockTokenPuller struct {
	TransferFromFn func(ctx context.Context, asset ledger.Asset, from, to revshare.Address, amount uint64) error
}

func (m *MockTokenPuller) TransferFrom(ctx context.Context, asset ledger.Asset, from, to revshare.Address, amount uint64) error {
	return m.TransferFromFn(ctx, asset, from, to, amount)
}
