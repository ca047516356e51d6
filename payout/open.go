package payout

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/bitfsorg/splitvest-go/config"
	"github.com/bitfsorg/splitvest-go/ledger"
)

// Open validates cfg, opens the bbolt ledger under cfg.DataDir and returns an
// Engine owned by cfg.Owner. Log fields render addresses for cfg.Network.
// Options in opts are applied after the ones derived from cfg. The caller
// must Close the engine.
func Open(cfg config.Config, bank Transferer, opts ...Opt) (*Engine, error) {
	if err := config.ValidateConfig(cfg); err != nil {
		return nil, err
	}
	owner, err := cfg.OwnerAddress()
	if err != nil {
		return nil, err
	}
	logger, err := config.NewLogger(cfg)
	if err != nil {
		return nil, err
	}
	path := config.LedgerPath(cfg.DataDir)

	store, err := ledger.OpenBoltStore(path)
	if err != nil {
		logger.Error("ledger open failed", zap.String("path", path), zap.Error(err))
		_ = logger.Sync()
		return nil, err
	}

	all := []Opt{WithLogger(logger), WithAddressNetwork(cfg.Mainnet())}
	if cfg.StrictShares {
		all = append(all, WithStrictShareTotal())
	}
	all = append(all, opts...)

	e, err := New(store, OwnerAuthorizer{Owner: owner}, bank, all...)
	if err != nil {
		logger.Error("ledger open failed", zap.String("path", path), zap.Error(err))
		_ = logger.Sync()
		_ = store.Close()
		return nil, fmt.Errorf("open engine: %w", err)
	}
	e.closer = store

	assets, err := store.Assets()
	if err != nil {
		_ = e.Close()
		return nil, err
	}
	fields := []zap.Field{
		zap.String("path", path),
		zap.Uint64("registry_version", e.Registry().Version),
		zap.Int("assets", len(assets)),
	}
	if owner.IsZero() {
		fields = append(fields, zap.Bool("immutable_registry", true))
	} else {
		fields = append(fields, e.addrField("owner", owner))
	}
	e.log.Info("ledger opened", fields...)
	return e, nil
}

// Close releases the store opened by Open. Engines built with New leave
// their store to the caller and Close is a no-op.
func (e *Engine) Close() error {
	if e.closer == nil {
		return nil
	}
	_ = e.log.Sync()
	return e.closer.Close()
}
