// Package payout releases vesting deposits to the current beneficiary set.
//
// An Engine ties together the ledger store, the share registry and the
// external collaborators that actually move value. Withdrawals pay each
// beneficiary floor(vested * share / TotalShareUnit) minus what they already
// received for that deposit, and the payout is recorded only if the transfer
// succeeds.
package payout

import (
	"errors"
	"fmt"
	"io"
	"sync"
	"sync/atomic"

	"github.com/jonboulle/clockwork"
	"go.uber.org/zap"

	"github.com/bitfsorg/splitvest-go/ledger"
	"github.com/bitfsorg/splitvest-go/revshare"
)

// Engine is the deposit, vesting and withdrawal coordinator.
// It is safe for concurrent use.
type Engine struct {
	store  ledger.Store
	auth   Authorizer
	bank   Transferer
	tokens TokenPuller

	self   revshare.Address
	clock  clockwork.Clock
	closer io.Closer
	log    *zap.Logger
	strict bool

	// Log fields render addresses in base58 for this network when set.
	base58  bool
	mainnet bool

	initAddrs  []revshare.Address
	initShares []uint64

	// regMu serializes registry replacement; readers use the atomic pointer.
	regMu    sync.Mutex
	registry atomic.Pointer[revshare.Registry]

	claimMu sync.Mutex
	claims  map[claimKey]struct{}
}

// Opt configures an Engine.
type Opt func(*Engine)

// WithClock overrides the wall clock used for deposit start times and vesting.
func WithClock(clock clockwork.Clock) Opt {
	return func(e *Engine) {
		e.clock = clock
	}
}

// WithLogger sets the logger for deposits, withdrawals and registry changes.
func WithLogger(logger *zap.Logger) Opt {
	return func(e *Engine) {
		e.log = logger
	}
}

// WithTokenPuller enables token deposits.
func WithTokenPuller(p TokenPuller) Opt {
	return func(e *Engine) {
		e.tokens = p
	}
}

// WithLedgerAddress sets the address token deposits are pulled into.
func WithLedgerAddress(addr revshare.Address) Opt {
	return func(e *Engine) {
		e.self = addr
	}
}

// WithInitialAccounts sets the beneficiary set used when the store holds no
// registry yet. A stored registry always wins.
func WithInitialAccounts(addrs []revshare.Address, shares []uint64) Opt {
	return func(e *Engine) {
		e.initAddrs = addrs
		e.initShares = shares
	}
}

// WithAddressNetwork renders addresses in log fields as base58 for mainnet or
// testnet instead of hex.
func WithAddressNetwork(mainnet bool) Opt {
	return func(e *Engine) {
		e.base58 = true
		e.mainnet = mainnet
	}
}

// WithStrictShareTotal rejects beneficiary sets whose shares do not add up to
// revshare.TotalShareUnit instead of only logging a warning.
func WithStrictShareTotal() Opt {
	return func(e *Engine) {
		e.strict = true
	}
}

// New creates an Engine over store. The registry is loaded from the store, or
// created from WithInitialAccounts and persisted when the store is empty.
func New(store ledger.Store, auth Authorizer, bank Transferer, opts ...Opt) (*Engine, error) {
	switch {
	case store == nil:
		return nil, fmt.Errorf("%w: store", ErrNilParam)
	case auth == nil:
		return nil, fmt.Errorf("%w: authorizer", ErrNilParam)
	case bank == nil:
		return nil, fmt.Errorf("%w: transferer", ErrNilParam)
	}

	e := &Engine{
		store:  store,
		auth:   auth,
		bank:   bank,
		clock:  clockwork.NewRealClock(),
		log:    zap.NewNop(),
		claims: make(map[claimKey]struct{}),
	}
	for _, opt := range opts {
		opt(e)
	}

	reg, err := store.GetRegistry()
	switch {
	case err == nil:
		if e.initAddrs != nil {
			e.log.Info("stored registry takes precedence over initial accounts",
				zap.Uint64("version", reg.Version),
				zap.Int("accounts", reg.Count()),
			)
		}
	case errors.Is(err, ledger.ErrRegistryNotFound):
		reg, err = revshare.NewRegistry(0, e.initAddrs, e.initShares)
		if err != nil {
			return nil, fmt.Errorf("initial accounts: %w", err)
		}
		if err := e.checkShareTotal(reg); err != nil {
			return nil, fmt.Errorf("initial accounts: %w", err)
		}
		if err := store.PutRegistry(reg); err != nil {
			return nil, fmt.Errorf("persist initial registry: %w", err)
		}
	default:
		return nil, fmt.Errorf("load registry: %w", err)
	}

	e.registry.Store(reg)
	return e, nil
}

// checkShareTotal warns, or fails in strict mode, when shares do not add up
// to the total unit. Such a set over- or under-allocates every deposit.
func (e *Engine) checkShareTotal(reg *revshare.Registry) error {
	err := revshare.ValidateShareTotal(reg.Entries())
	if err == nil {
		return nil
	}
	if e.strict {
		return err
	}
	e.log.Warn("beneficiary shares do not sum to total unit",
		zap.Uint64("version", reg.Version),
		zap.Uint64("total", reg.TotalShares()),
		zap.Uint64("want", revshare.TotalShareUnit),
	)
	return nil
}

func (e *Engine) addrField(key string, addr revshare.Address) zap.Field {
	if !e.base58 {
		return zap.Stringer(key, addr)
	}
	return zap.String(key, addr.Display(e.mainnet))
}
