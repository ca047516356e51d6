package revshare

import (
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/bsv-blockchain/go-sdk/script"
)

// ParseAddress accepts a base58 P2PKH address of either network or a
// 40-character hex hash.
func ParseAddress(s string) (Address, error) {
	addr, _, err := parseAddress(s)
	return addr, err
}

// ParseNetworkAddress is ParseAddress that also rejects a base58 address
// encoded for the other network. Hex hashes carry no network and are
// always accepted.
func ParseNetworkAddress(s string, mainnet bool) (Address, error) {
	addr, encoded, err := parseAddress(s)
	if err != nil || !encoded {
		return addr, err
	}
	want, err := addr.Encode(mainnet)
	if err != nil {
		return Address{}, err
	}
	if want != strings.TrimSpace(s) {
		return Address{}, fmt.Errorf("%w: %q is not a %s address", ErrNetworkMismatch, s, networkName(mainnet))
	}
	return addr, nil
}

// parseAddress reports whether s was base58 encoded.
func parseAddress(s string) (Address, bool, error) {
	var addr Address
	s = strings.TrimSpace(s)
	if s == "" {
		return addr, false, fmt.Errorf("%w: empty", ErrInvalidAddress)
	}

	if len(s) == 2*len(addr) {
		if raw, err := hex.DecodeString(s); err == nil {
			copy(addr[:], raw)
			return addr, false, nil
		}
	}

	// NewAddressFromString does not verify the checksum.
	if ok, err := script.ValidateAddress(s); !ok || err != nil {
		return addr, false, fmt.Errorf("%w: %q: %v", ErrInvalidAddress, s, err)
	}
	parsed, err := script.NewAddressFromString(s)
	if err != nil {
		return addr, false, fmt.Errorf("%w: %q: %w", ErrInvalidAddress, s, err)
	}
	pkh := []byte(parsed.PublicKeyHash)
	if len(pkh) != len(addr) {
		return addr, false, fmt.Errorf("%w: %q: hash is %d bytes", ErrInvalidAddress, s, len(pkh))
	}
	copy(addr[:], pkh)
	return addr, true, nil
}

// Encode renders the address in base58 P2PKH form for the given network.
func (a Address) Encode(mainnet bool) (string, error) {
	parsed, err := script.NewAddressFromPublicKeyHash(a[:], mainnet)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrInvalidAddress, err)
	}
	return parsed.AddressString, nil
}

// Display returns the base58 form for the network, falling back to hex.
func (a Address) Display(mainnet bool) string {
	s, err := a.Encode(mainnet)
	if err != nil {
		return a.String()
	}
	return s
}

func networkName(mainnet bool) string {
	if mainnet {
		return "mainnet"
	}
	return "testnet"
}
