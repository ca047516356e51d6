package ledger

import (
	"fmt"
	"sort"
	"sync"

	"github.com/bitfsorg/splitvest-go/revshare"
)

// Store persists deposit sequences, their withdrawal counters and the current
// beneficiary registry. Every mutation is atomic: either all of it becomes
// visible or none of it does.
type Store interface {
	// Append records dep as the next deposit of dep.Asset and returns its id.
	Append(dep *Deposit) (uint64, error)

	// Get returns a copy of the deposit with the given id.
	Get(asset Asset, id uint64) (*Deposit, error)

	// Count returns the length of the asset's deposit sequence.
	Count(asset Asset) (uint64, error)

	// Assets lists every asset with at least one deposit.
	Assets() ([]Asset, error)

	// Settle runs settle with exclusive access to the deposit and adds the
	// amount it returns to who's withdrawn counter. Nothing changes when
	// settle fails. settle runs under the store's write lock and must not
	// block or call back into the store.
	Settle(asset Asset, id uint64, who revshare.Address, settle func(dep *Deposit) (uint64, error)) (uint64, error)

	// Refund subtracts amount from who's withdrawn counter, undoing a Settle
	// whose payout never happened.
	Refund(asset Asset, id uint64, who revshare.Address, amount uint64) error

	// PutRegistry replaces the stored beneficiary registry.
	PutRegistry(r *revshare.Registry) error

	// GetRegistry returns the stored beneficiary registry.
	GetRegistry() (*revshare.Registry, error)

	// Close releases the store.
	Close() error
}

// MemStore is an in-memory Store. Writers are serialized by a single mutex.
type MemStore struct {
	mu       sync.RWMutex
	deposits map[Asset][]*Deposit
	registry []byte
}

// Compile-time interface check.
var _ Store = (*MemStore)(nil)

// NewMemStore creates a new in-memory deposit store.
func NewMemStore() *MemStore {
	return &MemStore{
		deposits: make(map[Asset][]*Deposit),
	}
}

// Append records a new deposit.
func (s *MemStore) Append(dep *Deposit) (uint64, error) {
	if err := validateDeposit(dep); err != nil {
		return 0, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	id := uint64(len(s.deposits[dep.Asset]))

	rec := dep.clone()
	rec.ID = id
	rec.Withdrawn = make(map[revshare.Address]uint64)
	s.deposits[dep.Asset] = append(s.deposits[dep.Asset], rec)
	return id, nil
}

// Get retrieves a deposit by asset and id.
func (s *MemStore) Get(asset Asset, id uint64) (*Deposit, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	dep, err := s.lookup(asset, id)
	if err != nil {
		return nil, err
	}
	return dep.clone(), nil
}

func (s *MemStore) lookup(asset Asset, id uint64) (*Deposit, error) {
	seq := s.deposits[asset]
	if id >= uint64(len(seq)) {
		return nil, fmt.Errorf("%w: %s/%d", ErrDepositNotFound, asset, id)
	}
	return seq[id], nil
}

// Count returns the number of deposits recorded for asset.
func (s *MemStore) Count(asset Asset) (uint64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return uint64(len(s.deposits[asset])), nil
}

// Assets lists assets with deposits, native first then by address.
func (s *MemStore) Assets() ([]Asset, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]Asset, 0, len(s.deposits))
	for a := range s.deposits {
		result = append(result, a)
	}
	sortAssets(result)
	return result, nil
}

// Settle credits who against a deposit under the write lock.
func (s *MemStore) Settle(asset Asset, id uint64, who revshare.Address, settle func(dep *Deposit) (uint64, error)) (uint64, error) {
	if settle == nil {
		return 0, fmt.Errorf("%w: settle func", ErrNilParam)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	dep, err := s.lookup(asset, id)
	if err != nil {
		return 0, err
	}
	amount, err := settle(dep.clone())
	if err != nil {
		return 0, err
	}
	if err := dep.checkCredit(who, amount); err != nil {
		return 0, err
	}
	if dep.Withdrawn == nil {
		dep.Withdrawn = make(map[revshare.Address]uint64)
	}
	dep.Withdrawn[who] += amount
	return amount, nil
}

// Refund reverses part of who's credit on a deposit.
func (s *MemStore) Refund(asset Asset, id uint64, who revshare.Address, amount uint64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	dep, err := s.lookup(asset, id)
	if err != nil {
		return err
	}
	if err := dep.checkRefund(who, amount); err != nil {
		return err
	}
	if dep.Withdrawn[who] == amount {
		delete(dep.Withdrawn, who)
		return nil
	}
	dep.Withdrawn[who] -= amount
	return nil
}

// PutRegistry stores an encoded copy of r.
func (s *MemStore) PutRegistry(r *revshare.Registry) error {
	if r == nil {
		return fmt.Errorf("%w: registry", ErrNilParam)
	}
	data, err := revshare.SerializeRegistry(r)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.registry = data
	return nil
}

// GetRegistry decodes the stored registry.
func (s *MemStore) GetRegistry() (*revshare.Registry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.registry == nil {
		return nil, ErrRegistryNotFound
	}
	return revshare.DeserializeRegistry(s.registry)
}

// Close is a no-op for the in-memory store.
func (s *MemStore) Close() error { return nil }

func sortAssets(assets []Asset) {
	sort.Slice(assets, func(i, j int) bool {
		return string(assets[i][:]) < string(assets[j][:])
	})
}
