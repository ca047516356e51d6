package ledger

import (
	"encoding/hex"
	"fmt"
	"strings"
	"time"

	"github.com/bitfsorg/splitvest-go/revshare"
	"github.com/bitfsorg/splitvest-go/vesting"
)

// Asset identifies a deposit sequence. The zero value is the native asset;
// any other value is a token contract address.
type Asset [20]byte

// Native is the base value asset.
var Native Asset

// IsNative reports whether a is the base asset.
func (a Asset) IsNative() bool {
	return a == Native
}

// String returns "native" or the hex token address.
func (a Asset) String() string {
	if a.IsNative() {
		return "native"
	}
	return hex.EncodeToString(a[:])
}

// ParseAsset is the inverse of Asset.String.
func ParseAsset(s string) (Asset, error) {
	var a Asset
	s = strings.TrimSpace(s)
	if s == "" || s == "native" {
		return Native, nil
	}
	raw, err := hex.DecodeString(s)
	if err != nil || len(raw) != len(a) {
		return a, fmt.Errorf("%w: %q", ErrInvalidAsset, s)
	}
	copy(a[:], raw)
	return a, nil
}

// Deposit is one vesting schedule for one asset. Only Withdrawn changes after
// the record is appended, and its values never decrease.
type Deposit struct {
	Asset     Asset
	ID        uint64
	Depositor revshare.Address
	Amount    uint64
	Start     time.Time
	Duration  time.Duration
	Withdrawn map[revshare.Address]uint64
}

// Schedule returns the vesting schedule of the deposit.
func (d *Deposit) Schedule() vesting.Schedule {
	return vesting.Schedule{Total: d.Amount, Start: d.Start, Duration: d.Duration}
}

// WithdrawnBy returns the amount already paid to addr.
func (d *Deposit) WithdrawnBy(addr revshare.Address) uint64 {
	return d.Withdrawn[addr]
}

// TotalWithdrawn returns the amount paid out to all beneficiaries.
func (d *Deposit) TotalWithdrawn() uint64 {
	var total uint64
	for _, v := range d.Withdrawn {
		total += v
	}
	return total
}

// Remaining returns the part of Amount not yet paid to anyone.
func (d *Deposit) Remaining() uint64 {
	total := d.TotalWithdrawn()
	if total >= d.Amount {
		return 0
	}
	return d.Amount - total
}

// clone deep-copies the record so callers never share the withdrawn map.
func (d *Deposit) clone() *Deposit {
	cpy := *d
	cpy.Withdrawn = make(map[revshare.Address]uint64, len(d.Withdrawn))
	for k, v := range d.Withdrawn {
		cpy.Withdrawn[k] = v
	}
	return &cpy
}

// checkCredit verifies that paying amount more to anyone keeps the deposit
// within its total and that the per-beneficiary counter does not wrap.
func (d *Deposit) checkCredit(who revshare.Address, amount uint64) error {
	total := d.TotalWithdrawn()
	if amount > d.Amount || total > d.Amount-amount {
		return fmt.Errorf("%w: deposit %s/%d has %d of %d paid, credit %d",
			ErrOverdraw, d.Asset, d.ID, total, d.Amount, amount)
	}
	if d.Withdrawn[who]+amount < d.Withdrawn[who] {
		return fmt.Errorf("%w: counter overflow for %s", ErrOverdraw, who)
	}
	return nil
}

func (d *Deposit) checkRefund(who revshare.Address, amount uint64) error {
	if amount == 0 || amount > d.Withdrawn[who] {
		return fmt.Errorf("%w: %d of %d withdrawn by %s on %s/%d",
			ErrOverRefund, amount, d.Withdrawn[who], who, d.Asset, d.ID)
	}
	return nil
}

func validateDeposit(dep *Deposit) error {
	if dep == nil {
		return fmt.Errorf("%w: deposit", ErrNilParam)
	}
	if dep.Amount == 0 {
		return ErrInvalidAmount
	}
	if dep.Duration < 0 {
		return fmt.Errorf("%w: %s", ErrInvalidDuration, dep.Duration)
	}
	return nil
}
