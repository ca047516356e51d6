package payout

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/bitfsorg/splitvest-go/revshare"
)

// UpdateAccounts replaces the whole beneficiary set. Only the owner may call
// it. Past withdrawals are untouched; future withdrawals use the new shares.
func (e *Engine) UpdateAccounts(caller revshare.Address, addrs []revshare.Address, shares []uint64) error {
	if !e.auth.IsOwner(caller) {
		return fmt.Errorf("%w: %s is not the owner", ErrUnauthorized, caller)
	}

	e.regMu.Lock()
	defer e.regMu.Unlock()

	cur := e.registry.Load()
	next, err := revshare.NewRegistry(cur.Version+1, addrs, shares)
	if err != nil {
		return err
	}
	if err := e.checkShareTotal(next); err != nil {
		return err
	}
	if err := e.store.PutRegistry(next); err != nil {
		return fmt.Errorf("persist registry: %w", err)
	}
	e.registry.Store(next)

	e.log.Info("beneficiary registry replaced",
		zap.Uint64("version", next.Version),
		zap.Int("accounts", next.Count()),
		zap.Int("previous_accounts", cur.Count()),
	)
	for _, entry := range next.Entries() {
		e.log.Debug("beneficiary",
			e.addrField("address", entry.Address),
			zap.Stringer("percent", revshare.SharePercent(entry.Share)),
		)
	}
	return nil
}

// ShareOf returns addr's current share, or zero if it is not a beneficiary.
func (e *Engine) ShareOf(addr revshare.Address) uint64 {
	return e.registry.Load().ShareOf(addr)
}

// AccountCount returns the number of current beneficiaries.
func (e *Engine) AccountCount() int {
	return e.registry.Load().Count()
}

// Accounts returns the current beneficiaries in registry order.
func (e *Engine) Accounts() []revshare.Entry {
	return e.registry.Load().Entries()
}

// Registry returns the current registry snapshot.
func (e *Engine) Registry() *revshare.Registry {
	return e.registry.Load()
}
