package splits

import (
	"errors"

	"github.com/pk910/pg-onchain-weights/internal/shared/identity"
)

// TotalPpm is the fixed-point denominator for allocation shares:
// 1,000,000 parts per million = 100%.
const TotalPpm = 1_000_000

// MaxIncentiveBps caps the distribution incentive at 6.5%.
const MaxIncentiveBps = 650

var (
	ErrShareOverflow      = errors.New("splits: shares exceed 1000000 ppm")
	ErrIncentiveTooLarge  = errors.New("splits: distribution incentive above 650 bps")
	ErrEmptyAllocationSet = errors.New("splits: allocation set is empty")
	ErrZeroAddressEntry   = errors.New("splits: zero address entry")
)

// Entry is one (identity, ppm share) pair of an allocation set.
type Entry struct {
	Address identity.Address `json:"address"`
	Ppm     uint32           `json:"ppm"`
}

// AllocationSet is an ordered list of shares summing to at most TotalPpm,
// annotated with the incentive paid to whoever executes a payout.
// Sets are produced fresh on every recomputation and persisted only inside
// the allocation object of each ledger.
type AllocationSet struct {
	Entries      []Entry `json:"entries"`
	IncentiveBps uint32  `json:"incentive_bps"`
}

func (s AllocationSet) Validate() error {
	if len(s.Entries) == 0 {
		return ErrEmptyAllocationSet
	}
	if s.IncentiveBps > MaxIncentiveBps {
		return ErrIncentiveTooLarge
	}
	total := uint64(0)
	for _, entry := range s.Entries {
		if entry.Address.IsZero() {
			return ErrZeroAddressEntry
		}
		total += uint64(entry.Ppm)
	}
	if total > TotalPpm {
		return ErrShareOverflow
	}
	return nil
}

func (s AllocationSet) TotalShares() uint64 {
	total := uint64(0)
	for _, entry := range s.Entries {
		total += uint64(entry.Ppm)
	}
	return total
}

// Equal reports whether two sets carry the same entries in the same order
// with the same incentive. Applying equal sets must converge on the same
// allocation object state.
func (s AllocationSet) Equal(other AllocationSet) bool {
	if s.IncentiveBps != other.IncentiveBps || len(s.Entries) != len(other.Entries) {
		return false
	}
	for i := range s.Entries {
		if s.Entries[i] != other.Entries[i] {
			return false
		}
	}
	return true
}
