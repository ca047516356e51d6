package ledger

import (
	"bytes"
	"encoding/binary"
	"encoding/gob"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"go.etcd.io/bbolt"

	"github.com/bitfsorg/splitvest-go/revshare"
)

var (
	bucketDeposits  = []byte("deposits")
	bucketWithdrawn = []byte("withdrawn")
	bucketMeta      = []byte("meta")

	keyRegistry = []byte("registry")
)

const withdrawnKeySize = 48 // asset(20) + id(8) + beneficiary(20)

// BoltStore persists the ledger in a bbolt database. bbolt admits a single
// read-write transaction at a time, so every Append and Settle is linearized.
type BoltStore struct {
	db *bbolt.DB
}

// Compile-time interface check.
var _ Store = (*BoltStore)(nil)

// depositRecord is the immutable part of a Deposit as stored on disk.
type depositRecord struct {
	Depositor revshare.Address
	Amount    uint64
	Start     time.Time
	Duration  time.Duration
}

// OpenBoltStore opens or creates the bbolt database at dbPath.
// The parent directory is created if it does not exist.
func OpenBoltStore(dbPath string) (*BoltStore, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0700); err != nil {
		return nil, fmt.Errorf("ledger: create directory: %w", err)
	}
	db, err := bbolt.Open(dbPath, 0600, &bbolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("ledger: open bolt db: %w", err)
	}

	err = db.Update(func(tx *bbolt.Tx) error {
		for _, name := range [][]byte{bucketDeposits, bucketWithdrawn, bucketMeta} {
			if _, err := tx.CreateBucketIfNotExists(name); err != nil {
				return fmt.Errorf("boltstore: create bucket %q: %w", name, err)
			}
		}
		return nil
	})
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ledger: create buckets: %w", err)
	}

	return &BoltStore{db: db}, nil
}

// Close closes the underlying database.
func (s *BoltStore) Close() error { return s.db.Close() }

// idKey encodes a deposit id as an 8-byte big-endian key for sorted storage.
func idKey(id uint64) []byte {
	k := make([]byte, 8)
	binary.BigEndian.PutUint64(k, id)
	return k
}

// withdrawnPrefix is the key prefix shared by all counters of one deposit.
func withdrawnPrefix(asset Asset, id uint64) []byte {
	k := make([]byte, 0, withdrawnKeySize)
	k = append(k, asset[:]...)
	return append(k, idKey(id)...)
}

func withdrawnKey(asset Asset, id uint64, who revshare.Address) []byte {
	return append(withdrawnPrefix(asset, id), who[:]...)
}

// encodeGob serializes a value using gob encoding.
func encodeGob(v interface{}) ([]byte, error) {
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(v); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// decodeGob deserializes gob-encoded data into a value.
func decodeGob(data []byte, v interface{}) error {
	return gob.NewDecoder(bytes.NewReader(data)).Decode(v)
}

// Append records a new deposit in the asset's sub-bucket.
func (s *BoltStore) Append(dep *Deposit) (uint64, error) {
	if err := validateDeposit(dep); err != nil {
		return 0, err
	}

	var id uint64
	err := s.db.Update(func(tx *bbolt.Tx) error {
		b, err := tx.Bucket(bucketDeposits).CreateBucketIfNotExists(dep.Asset[:])
		if err != nil {
			return fmt.Errorf("boltstore: create asset bucket: %w", err)
		}
		seq, err := b.NextSequence()
		if err != nil {
			return fmt.Errorf("boltstore: next deposit id: %w", err)
		}
		id = seq - 1

		data, err := encodeGob(depositRecord{
			Depositor: dep.Depositor,
			Amount:    dep.Amount,
			Start:     dep.Start,
			Duration:  dep.Duration,
		})
		if err != nil {
			return fmt.Errorf("encode deposit: %w", err)
		}
		if err := b.Put(idKey(id), data); err != nil {
			return fmt.Errorf("boltstore: put deposit: %w", err)
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return id, nil
}

// Get retrieves a deposit together with its withdrawn counters.
func (s *BoltStore) Get(asset Asset, id uint64) (*Deposit, error) {
	var dep *Deposit
	err := s.db.View(func(tx *bbolt.Tx) error {
		var err error
		dep, err = loadDeposit(tx, asset, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	return dep, nil
}

func loadDeposit(tx *bbolt.Tx, asset Asset, id uint64) (*Deposit, error) {
	b := tx.Bucket(bucketDeposits).Bucket(asset[:])
	if b == nil {
		return nil, fmt.Errorf("%w: %s/%d", ErrDepositNotFound, asset, id)
	}
	data := b.Get(idKey(id))
	if data == nil {
		return nil, fmt.Errorf("%w: %s/%d", ErrDepositNotFound, asset, id)
	}
	var rec depositRecord
	if err := decodeGob(data, &rec); err != nil {
		return nil, fmt.Errorf("boltstore: decode deposit: %w", err)
	}

	dep := &Deposit{
		Asset:     asset,
		ID:        id,
		Depositor: rec.Depositor,
		Amount:    rec.Amount,
		Start:     rec.Start,
		Duration:  rec.Duration,
		Withdrawn: make(map[revshare.Address]uint64),
	}

	prefix := withdrawnPrefix(asset, id)
	c := tx.Bucket(bucketWithdrawn).Cursor()
	for k, v := c.Seek(prefix); k != nil && bytes.HasPrefix(k, prefix); k, v = c.Next() {
		if len(k) != withdrawnKeySize || len(v) != 8 {
			return nil, fmt.Errorf("boltstore: malformed withdrawn entry for %s/%d", asset, id)
		}
		var who revshare.Address
		copy(who[:], k[len(prefix):])
		dep.Withdrawn[who] = binary.BigEndian.Uint64(v)
	}
	return dep, nil
}

// Count returns the number of deposits recorded for asset.
func (s *BoltStore) Count(asset Asset) (uint64, error) {
	var count uint64
	err := s.db.View(func(tx *bbolt.Tx) error {
		if b := tx.Bucket(bucketDeposits).Bucket(asset[:]); b != nil {
			count = b.Sequence()
		}
		return nil
	})
	return count, err
}

// Assets lists every asset with a deposit sub-bucket.
func (s *BoltStore) Assets() ([]Asset, error) {
	var assets []Asset
	err := s.db.View(func(tx *bbolt.Tx) error {
		return tx.Bucket(bucketDeposits).ForEachBucket(func(k []byte) error {
			if len(k) != len(Asset{}) {
				return fmt.Errorf("boltstore: malformed asset key %x", k)
			}
			var a Asset
			copy(a[:], k)
			assets = append(assets, a)
			return nil
		})
	})
	if err != nil {
		return nil, fmt.Errorf("boltstore: list assets: %w", err)
	}
	sortAssets(assets)
	return assets, nil
}

// Settle runs settle inside a read-write transaction and persists the credit
// only if settle succeeds.
func (s *BoltStore) Settle(asset Asset, id uint64, who revshare.Address, settle func(dep *Deposit) (uint64, error)) (uint64, error) {
	if settle == nil {
		return 0, fmt.Errorf("%w: settle func", ErrNilParam)
	}

	var amount uint64
	err := s.db.Update(func(tx *bbolt.Tx) error {
		dep, err := loadDeposit(tx, asset, id)
		if err != nil {
			return err
		}
		amount, err = settle(dep)
		if err != nil {
			return err
		}
		if err := dep.checkCredit(who, amount); err != nil {
			return err
		}
		v := make([]byte, 8)
		binary.BigEndian.PutUint64(v, dep.Withdrawn[who]+amount)
		if err := tx.Bucket(bucketWithdrawn).Put(withdrawnKey(asset, id, who), v); err != nil {
			return fmt.Errorf("boltstore: put withdrawn: %w", err)
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return amount, nil
}

// Refund lowers who's withdrawn counter, deleting it when it reaches zero.
func (s *BoltStore) Refund(asset Asset, id uint64, who revshare.Address, amount uint64) error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		dep, err := loadDeposit(tx, asset, id)
		if err != nil {
			return err
		}
		if err := dep.checkRefund(who, amount); err != nil {
			return err
		}
		b := tx.Bucket(bucketWithdrawn)
		key := withdrawnKey(asset, id, who)
		left := dep.Withdrawn[who] - amount
		if left == 0 {
			return b.Delete(key)
		}
		v := make([]byte, 8)
		binary.BigEndian.PutUint64(v, left)
		if err := b.Put(key, v); err != nil {
			return fmt.Errorf("boltstore: put withdrawn: %w", err)
		}
		return nil
	})
}

// PutRegistry replaces the stored registry.
func (s *BoltStore) PutRegistry(r *revshare.Registry) error {
	if r == nil {
		return fmt.Errorf("%w: registry", ErrNilParam)
	}
	data, err := revshare.SerializeRegistry(r)
	if err != nil {
		return err
	}
	return s.db.Update(func(tx *bbolt.Tx) error {
		if err := tx.Bucket(bucketMeta).Put(keyRegistry, data); err != nil {
			return fmt.Errorf("boltstore: put registry: %w", err)
		}
		return nil
	})
}

// GetRegistry retrieves the stored registry.
func (s *BoltStore) GetRegistry() (*revshare.Registry, error) {
	var r *revshare.Registry
	err := s.db.View(func(tx *bbolt.Tx) error {
		data := tx.Bucket(bucketMeta).Get(keyRegistry)
		if data == nil {
			return ErrRegistryNotFound
		}
		var err error
		r, err = revshare.DeserializeRegistry(data)
		return err
	})
	if err != nil {
		return nil, err
	}
	return r, nil
}
