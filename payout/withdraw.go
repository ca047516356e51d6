package payout

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/bitfsorg/splitvest-go/ledger"
	"github.com/bitfsorg/splitvest-go/revshare"
	"github.com/bitfsorg/splitvest-go/vesting"
)

// Withdraw pays the caller everything vested and unclaimed for them on a
// native deposit and returns the amount paid.
func (e *Engine) Withdraw(ctx context.Context, caller revshare.Address, id uint64) (uint64, error) {
	return e.withdraw(ctx, caller, ledger.Native, id)
}

// WithdrawToken is Withdraw for a token deposit.
func (e *Engine) WithdrawToken(ctx context.Context, caller revshare.Address, id uint64, asset ledger.Asset) (uint64, error) {
	if asset.IsNative() {
		return 0, fmt.Errorf("%w: native asset passed as token", ErrInvalidAsset)
	}
	return e.withdraw(ctx, caller, asset, id)
}

func (e *Engine) withdraw(ctx context.Context, caller revshare.Address, asset ledger.Asset, id uint64) (uint64, error) {
	// One snapshot for the whole call, so a concurrent registry swap cannot
	// mix old and new shares.
	share := e.registry.Load().ShareOf(caller)
	if share == 0 {
		return 0, fmt.Errorf("%w: %s is not a beneficiary", ErrUnauthorized, caller)
	}

	key := claimKey{asset: asset, id: id, who: caller}
	if !e.claim(key) {
		return 0, fmt.Errorf("%w: %s on %s/%d", ErrWithdrawInProgress, caller, asset, id)
	}
	defer e.unclaim(key)

	now := e.clock.Now()
	var progress decimal.Decimal
	owed, err := e.store.Settle(asset, id, caller, func(dep *ledger.Deposit) (uint64, error) {
		owed := owedAt(dep, caller, share, now)
		if owed == 0 {
			return 0, fmt.Errorf("%w: %s on %s/%d", ErrNothingDue, caller, asset, id)
		}
		// Shares summing above the unit must not pay out other members' funds.
		if rem := dep.Remaining(); owed > rem {
			return 0, fmt.Errorf("%w: %s owed %d on %s/%d, %d left",
				ledger.ErrOverdraw, caller, owed, asset, id, rem)
		}
		progress = dep.Schedule().Progress(now)
		return owed, nil
	})
	if err != nil {
		e.log.Debug("withdraw rejected",
			zap.Stringer("asset", asset),
			zap.Uint64("id", id),
			e.addrField("beneficiary", caller),
			zap.Error(err),
		)
		return 0, err
	}

	// The credit is recorded before the transfer and no store lock is held
	// while it runs, so the collaborator may call back into the engine.
	if err := e.bank.Transfer(ctx, asset, caller, owed); err != nil {
		err = fmt.Errorf("%w: pay %d of %s to %s: %w", ErrTransferFailed, owed, asset, caller, err)
		if rerr := e.store.Refund(asset, id, caller, owed); rerr != nil {
			e.log.Error("failed payout still recorded as withdrawn",
				zap.Stringer("asset", asset),
				zap.Uint64("id", id),
				e.addrField("beneficiary", caller),
				zap.Uint64("amount", owed),
				zap.NamedError("transfer_error", err),
				zap.Error(rerr),
			)
			return 0, fmt.Errorf("%w; refund credit: %w", err, rerr)
		}
		e.log.Debug("withdraw failed",
			zap.Stringer("asset", asset),
			zap.Uint64("id", id),
			e.addrField("beneficiary", caller),
			zap.Error(err),
		)
		return 0, err
	}

	e.log.Info("withdrawal paid",
		zap.Stringer("asset", asset),
		zap.Uint64("id", id),
		e.addrField("beneficiary", caller),
		zap.Uint64("amount", owed),
		zap.Stringer("vested_fraction", progress),
	)
	return owed, nil
}

// claimKey identifies one beneficiary's withdrawal from one deposit.
type claimKey struct {
	asset ledger.Asset
	id    uint64
	who   revshare.Address
}

// claim marks key as in flight. It fails if a withdrawal for the same key,
// including a re-entrant one from the Transferer, has not finished.
func (e *Engine) claim(key claimKey) bool {
	e.claimMu.Lock()
	defer e.claimMu.Unlock()
	if _, busy := e.claims[key]; busy {
		return false
	}
	e.claims[key] = struct{}{}
	return true
}

func (e *Engine) unclaim(key claimKey) {
	e.claimMu.Lock()
	defer e.claimMu.Unlock()
	delete(e.claims, key)
}

// owedAt returns share's entitlement to the vested part of dep at now, less
// what who has already withdrawn. A beneficiary whose share shrank after an
// earlier withdrawal is owed nothing until vesting catches up.
func owedAt(dep *ledger.Deposit, who revshare.Address, share uint64, now time.Time) uint64 {
	vested := vesting.VestedAmount(dep.Amount, dep.Start, dep.Duration, now)
	entitled := revshare.Entitled(vested, share)
	withdrawn := dep.WithdrawnBy(who)
	if entitled <= withdrawn {
		return 0
	}
	return entitled - withdrawn
}

// GetDeposit returns a copy of a deposit record.
func (e *Engine) GetDeposit(asset ledger.Asset, id uint64) (*ledger.Deposit, error) {
	return e.store.Get(asset, id)
}

// DepositCount returns the number of deposits recorded for asset.
func (e *Engine) DepositCount(asset ledger.Asset) (uint64, error) {
	return e.store.Count(asset)
}

// Vested returns how much of a deposit has unlocked so far.
func (e *Engine) Vested(asset ledger.Asset, id uint64) (uint64, error) {
	dep, err := e.store.Get(asset, id)
	if err != nil {
		return 0, err
	}
	return dep.Schedule().VestedAt(e.clock.Now()), nil
}

// Withdrawable returns what addr could withdraw from a deposit right now.
// It is zero for addresses outside the current registry.
func (e *Engine) Withdrawable(addr revshare.Address, asset ledger.Asset, id uint64) (uint64, error) {
	return e.WithdrawableFor(revshare.Entry{Address: addr, Share: e.ShareOf(addr)}, asset, id)
}

// WithdrawableFor computes the unclaimed entitlement of an arbitrary entry,
// for example a beneficiary from an earlier registry version. Only current
// beneficiaries can actually withdraw it.
func (e *Engine) WithdrawableFor(entry revshare.Entry, asset ledger.Asset, id uint64) (uint64, error) {
	dep, err := e.store.Get(asset, id)
	if err != nil {
		return 0, err
	}
	if entry.Share == 0 {
		return 0, nil
	}
	return owedAt(dep, entry.Address, entry.Share, e.clock.Now()), nil
}

// Preview returns every current beneficiary's withdrawable amount on a deposit.
func (e *Engine) Preview(asset ledger.Asset, id uint64) ([]revshare.Distribution, error) {
	dep, err := e.store.Get(asset, id)
	if err != nil {
		return nil, err
	}
	vested := dep.Schedule().VestedAt(e.clock.Now())
	dists, err := revshare.Split(vested, e.registry.Load().Entries())
	if err != nil {
		return nil, err
	}
	for i := range dists {
		withdrawn := dep.WithdrawnBy(dists[i].Address)
		if dists[i].Amount <= withdrawn {
			dists[i].Amount = 0
			continue
		}
		dists[i].Amount -= withdrawn
	}
	return dists, nil
}
