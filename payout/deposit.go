package payout

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/bitfsorg/splitvest-go/ledger"
	"github.com/bitfsorg/splitvest-go/revshare"
)

// Deposit records amount of the native asset, already received with the
// call, as a new deposit vesting over duration. Zero duration vests at once.
func (e *Engine) Deposit(depositor revshare.Address, amount uint64, duration time.Duration) (uint64, error) {
	return e.record(depositor, ledger.Native, amount, duration)
}

// DepositToken pulls amount of a token from the depositor and records it as a
// new deposit of that token. No record is created if the pull fails, and the
// tokens are sent back if the record cannot be written.
func (e *Engine) DepositToken(ctx context.Context, depositor revshare.Address, asset ledger.Asset, amount uint64, duration time.Duration) (uint64, error) {
	if asset.IsNative() {
		return 0, fmt.Errorf("%w: native asset passed as token", ErrInvalidAsset)
	}
	if e.tokens == nil {
		return 0, fmt.Errorf("%w: token deposits are not enabled", ErrTransferFailed)
	}
	switch {
	case amount == 0:
		return 0, ledger.ErrInvalidAmount
	case duration < 0:
		return 0, fmt.Errorf("%w: %s", ledger.ErrInvalidDuration, duration)
	}

	// No store lock is held while the puller runs.
	if err := e.tokens.TransferFrom(ctx, asset, depositor, e.self, amount); err != nil {
		return 0, fmt.Errorf("%w: pull %d of %s from %s: %w", ErrTransferFailed, amount, asset, depositor, err)
	}

	id, err := e.record(depositor, asset, amount, duration)
	if err == nil {
		return id, nil
	}
	if rerr := e.bank.Transfer(ctx, asset, depositor, amount); rerr != nil {
		e.log.Error("pulled tokens neither recorded nor returned",
			zap.Stringer("asset", asset),
			e.addrField("depositor", depositor),
			zap.Uint64("amount", amount),
			zap.NamedError("record_error", err),
			zap.Error(rerr),
		)
		return 0, fmt.Errorf("%w; return pulled tokens: %w", err, rerr)
	}
	return 0, err
}

func (e *Engine) record(depositor revshare.Address, asset ledger.Asset, amount uint64, duration time.Duration) (uint64, error) {
	dep := &ledger.Deposit{
		Asset:     asset,
		Depositor: depositor,
		Amount:    amount,
		Start:     e.clock.Now(),
		Duration:  duration,
	}
	id, err := e.store.Append(dep)
	if err != nil {
		e.log.Debug("deposit rejected",
			zap.Stringer("asset", asset),
			e.addrField("depositor", depositor),
			zap.Uint64("amount", amount),
			zap.Error(err),
		)
		return 0, err
	}

	e.log.Info("deposit recorded",
		zap.Stringer("asset", asset),
		zap.Uint64("id", id),
		e.addrField("depositor", depositor),
		zap.Uint64("amount", amount),
		zap.Duration("duration", duration),
	)
	return id, nil
}
