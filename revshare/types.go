package revshare

import "encoding/hex"

// TotalShareUnit is the sum every registry's shares should add up to.
// One unit is a millionth of a percent.
const TotalShareUnit uint64 = 100_000_000

// Address is a P2PKH public key hash identifying a beneficiary or caller.
type Address [20]byte

// String returns the hex encoding of the hash.
func (a Address) String() string {
	return hex.EncodeToString(a[:])
}

// IsZero reports whether the address is unset.
func (a Address) IsZero() bool {
	return a == Address{}
}

// Entry is one beneficiary of a registry.
type Entry struct {
	Address Address // Beneficiary hash
	Share   uint64  // Out of TotalShareUnit
}

// Distribution is a beneficiary's entitlement against a given amount.
type Distribution struct {
	Address Address
	Amount  uint64
}

// Registry is an immutable snapshot of the beneficiary set.
// A new Registry with a higher Version replaces it wholesale.
type Registry struct {
	Version uint64
	entries []Entry
	index   map[Address]uint64
}

// ShareOf returns the share held by addr, or zero if addr is not a beneficiary.
func (r *Registry) ShareOf(addr Address) uint64 {
	if r == nil {
		return 0
	}
	return r.index[addr]
}

// Contains reports whether addr holds a non-zero share.
func (r *Registry) Contains(addr Address) bool {
	return r.ShareOf(addr) != 0
}

// Count returns the number of beneficiaries.
func (r *Registry) Count() int {
	if r == nil {
		return 0
	}
	return len(r.entries)
}

// Entries returns a copy of the ordered beneficiary list.
func (r *Registry) Entries() []Entry {
	if r == nil {
		return nil
	}
	out := make([]Entry, len(r.entries))
	copy(out, r.entries)
	return out
}

// TotalShares sums the shares of every entry.
func (r *Registry) TotalShares() uint64 {
	if r == nil {
		return 0
	}
	return sumShares(r.entries)
}

func sumShares(entries []Entry) uint64 {
	var total uint64
	for _, e := range entries {
		total += e.Share
	}
	return total
}
