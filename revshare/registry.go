package revshare

import (
	"encoding/binary"
	"fmt"
	"math"
)

const (
	registryHeaderSize = 12 // version(8) + num_entries(4)
	registryEntrySize  = 28 // address(20) + share(8)
)

// NewRegistry validates the parallel address and share lists and builds a
// snapshot with the given version.
func NewRegistry(version uint64, addrs []Address, shares []uint64) (*Registry, error) {
	if err := ValidateAccounts(addrs, shares); err != nil {
		return nil, err
	}
	entries := make([]Entry, len(addrs))
	for i := range addrs {
		entries[i] = Entry{Address: addrs[i], Share: shares[i]}
	}
	return newRegistry(version, entries), nil
}

// NewRegistryFromEntries is NewRegistry for an already paired entry list.
func NewRegistryFromEntries(version uint64, entries []Entry) (*Registry, error) {
	addrs := make([]Address, len(entries))
	shares := make([]uint64, len(entries))
	for i, e := range entries {
		addrs[i] = e.Address
		shares[i] = e.Share
	}
	return NewRegistry(version, addrs, shares)
}

func newRegistry(version uint64, entries []Entry) *Registry {
	r := &Registry{
		Version: version,
		entries: entries,
		index:   make(map[Address]uint64, len(entries)),
	}
	for _, e := range entries {
		r.index[e.Address] = e.Share
	}
	return r
}

// SerializeRegistry serializes a Registry to binary format.
func SerializeRegistry(r *Registry) ([]byte, error) {
	if uint64(len(r.entries)) > math.MaxUint32 {
		return nil, fmt.Errorf("%w: %d entries", ErrTooManyEntries, len(r.entries))
	}
	buf := make([]byte, registryHeaderSize+registryEntrySize*len(r.entries))
	offset := 0

	binary.BigEndian.PutUint64(buf[offset:offset+8], r.Version)
	offset += 8

	binary.BigEndian.PutUint32(buf[offset:offset+4], uint32(len(r.entries)))
	offset += 4

	for _, entry := range r.entries {
		copy(buf[offset:offset+20], entry.Address[:])
		offset += 20
		binary.BigEndian.PutUint64(buf[offset:offset+8], entry.Share)
		offset += 8
	}
	return buf, nil
}

// DeserializeRegistry decodes binary data into a Registry. Entries are
// re-validated so a corrupted record cannot yield a duplicate or empty set.
func DeserializeRegistry(data []byte) (*Registry, error) {
	if len(data) < registryHeaderSize {
		return nil, fmt.Errorf("%w: too short (%d bytes)", ErrInvalidRegistryData, len(data))
	}
	offset := 0

	version := binary.BigEndian.Uint64(data[offset : offset+8])
	offset += 8

	numEntries := int(binary.BigEndian.Uint32(data[offset : offset+4]))
	offset += 4

	expectedSize := registryHeaderSize + registryEntrySize*numEntries
	if len(data) != expectedSize {
		return nil, fmt.Errorf("%w: expected %d bytes for %d entries, got %d",
			ErrInvalidRegistryData, expectedSize, numEntries, len(data))
	}

	entries := make([]Entry, numEntries)
	for i := 0; i < numEntries; i++ {
		copy(entries[i].Address[:], data[offset:offset+20])
		offset += 20
		entries[i].Share = binary.BigEndian.Uint64(data[offset : offset+8])
		offset += 8
	}

	r, err := NewRegistryFromEntries(version, entries)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidRegistryData, err)
	}
	return r, nil
}
