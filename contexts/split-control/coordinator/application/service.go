package application

import (
	"context"
	"log/slog"
	"math/bits"

	domainerrors "github.com/pk910/pg-onchain-weights/contexts/split-control/coordinator/domain/errors"
	"github.com/pk910/pg-onchain-weights/contexts/split-control/coordinator/ports"
	"github.com/pk910/pg-onchain-weights/internal/shared/identity"
	"github.com/pk910/pg-onchain-weights/internal/shared/splits"
)

// Service is the single control point for allocation changes. It pulls a
// fresh allocation set from the weight source, applies it to the primary
// ledger's allocation object and fans the same set out to every registered
// bridge adapter in registration order.
type Service struct {
	Weights         ports.WeightSource
	Primary         ports.AllocationObject
	Bridges         ports.BridgeRegistry
	Owner           identity.Address
	Self            identity.Address
	PrimaryLedgerID string
	Logger          *slog.Logger
}

func (s Service) authorize(caller identity.Address) error {
	if caller.IsZero() || caller != s.Owner {
		return domainerrors.ErrNotAuthorized
	}
	return nil
}

// UpdateSplitShares recomputes allocations for the cutoff period and pushes
// the result to the primary ledger plus all registered bridges. One failing
// ledger never blocks delivery to the remaining ones; per-ledger outcomes
// are returned for inspection.
func (s Service) UpdateSplitShares(ctx context.Context, caller identity.Address, cutoffYear uint16, cutoffMonth uint8, incentiveBps uint32) ([]ports.LedgerOutcome, error) {
	if err := s.authorize(caller); err != nil {
		return nil, err
	}
	set, err := s.computeSet(ctx, cutoffYear, cutoffMonth, incentiveBps)
	if err != nil {
		return nil, err
	}
	return s.applyEverywhere(ctx, set)
}

// UpdateSplitSharesOn recomputes allocations and updates a single ledger,
// either the primary one or exactly one registered bridge.
func (s Service) UpdateSplitSharesOn(ctx context.Context, caller identity.Address, cutoffYear uint16, cutoffMonth uint8, incentiveBps uint32, ledgerID string) error {
	if err := s.authorize(caller); err != nil {
		return err
	}
	set, err := s.computeSet(ctx, cutoffYear, cutoffMonth, incentiveBps)
	if err != nil {
		return err
	}
	return s.applyOne(ctx, ledgerID, set)
}

// UpdateSplitFromList bypasses tenure tracking: the caller supplies raw
// weights which are normalized to shares over their sum. Zero addresses and
// zero weights are rejected before anything is touched.
func (s Service) UpdateSplitFromList(ctx context.Context, caller identity.Address, entries []ports.WeightedEntry, incentiveBps uint32) ([]ports.LedgerOutcome, error) {
	if err := s.authorize(caller); err != nil {
		return nil, err
	}
	set, err := normalizeList(entries, incentiveBps)
	if err != nil {
		return nil, err
	}
	return s.applyEverywhere(ctx, set)
}

// UpdateSplitFromListOn normalizes a caller-supplied weight list and updates
// a single ledger.
func (s Service) UpdateSplitFromListOn(ctx context.Context, caller identity.Address, entries []ports.WeightedEntry, incentiveBps uint32, ledgerID string) error {
	if err := s.authorize(caller); err != nil {
		return err
	}
	set, err := normalizeList(entries, incentiveBps)
	if err != nil {
		return err
	}
	return s.applyOne(ctx, ledgerID, set)
}

// AddL2Module registers a bridge adapter for a dependent ledger. The adapter
// must self-report the same ledger id it is being registered under.
func (s Service) AddL2Module(ctx context.Context, caller identity.Address, ledgerID string, adapter ports.BridgeAdapter) error {
	if err := s.authorize(caller); err != nil {
		return err
	}
	if adapter == nil || adapter.LedgerID() != ledgerID {
		return domainerrors.ErrLedgerMismatch
	}
	if err := s.Bridges.Register(ctx, ledgerID, adapter); err != nil {
		return err
	}
	s.Logger.Info("bridge adapter registered",
		"event", "coordinator.bridge_added",
		"module", "coordinator",
		"layer", "application",
		"ledger_id", ledgerID,
	)
	return nil
}

// RemoveL2Module drops the adapter for a ledger; later updates skip it.
func (s Service) RemoveL2Module(ctx context.Context, caller identity.Address, ledgerID string) error {
	if err := s.authorize(caller); err != nil {
		return err
	}
	if err := s.Bridges.Remove(ctx, ledgerID); err != nil {
		return err
	}
	s.Logger.Info("bridge adapter removed",
		"event", "coordinator.bridge_removed",
		"module", "coordinator",
		"layer", "application",
		"ledger_id", ledgerID,
	)
	return nil
}

// Distribute forwards a distribution trigger to one ledger.
func (s Service) Distribute(ctx context.Context, caller identity.Address, ledgerID string, cmd splits.DistributeCommand) error {
	if err := s.authorize(caller); err != nil {
		return err
	}
	if s.isPrimary(ledgerID) {
		if s.Primary == nil {
			return domainerrors.ErrPrimaryObjectNotSet
		}
		return s.Primary.Distribute(ctx, cmd)
	}
	adapter, err := s.Bridges.Get(ctx, ledgerID)
	if err != nil {
		return err
	}
	return adapter.Distribute(ctx, s.Self, cmd)
}

// ExecCalls forwards an opaque call batch to one ledger.
func (s Service) ExecCalls(ctx context.Context, caller identity.Address, ledgerID string, calls []byte) error {
	if err := s.authorize(caller); err != nil {
		return err
	}
	if s.isPrimary(ledgerID) {
		if s.Primary == nil {
			return domainerrors.ErrPrimaryObjectNotSet
		}
		return s.Primary.ExecCalls(ctx, calls)
	}
	adapter, err := s.Bridges.Get(ctx, ledgerID)
	if err != nil {
		return err
	}
	return adapter.ExecCalls(ctx, s.Self, calls)
}

// SetPaused toggles the pause flag of one ledger's allocation object.
func (s Service) SetPaused(ctx context.Context, caller identity.Address, ledgerID string, paused bool) error {
	if err := s.authorize(caller); err != nil {
		return err
	}
	if s.isPrimary(ledgerID) {
		if s.Primary == nil {
			return domainerrors.ErrPrimaryObjectNotSet
		}
		return s.Primary.SetPaused(ctx, paused)
	}
	adapter, err := s.Bridges.Get(ctx, ledgerID)
	if err != nil {
		return err
	}
	return adapter.SetPaused(ctx, s.Self, paused)
}

// TransferOwnership hands one ledger's allocation object to a new owner.
// This is the escape hatch that detaches a ledger from the coordinator.
func (s Service) TransferOwnership(ctx context.Context, caller identity.Address, ledgerID string, newOwner identity.Address) error {
	if err := s.authorize(caller); err != nil {
		return err
	}
	if s.isPrimary(ledgerID) {
		if s.Primary == nil {
			return domainerrors.ErrPrimaryObjectNotSet
		}
		return s.Primary.TransferOwnership(ctx, newOwner)
	}
	adapter, err := s.Bridges.Get(ctx, ledgerID)
	if err != nil {
		return err
	}
	return adapter.TransferOwnership(ctx, s.Self, newOwner)
}

func (s Service) isPrimary(ledgerID string) bool {
	return ledgerID == s.PrimaryLedgerID
}

func (s Service) computeSet(ctx context.Context, cutoffYear uint16, cutoffMonth uint8, incentiveBps uint32) (splits.AllocationSet, error) {
	if s.Weights == nil {
		return splits.AllocationSet{}, domainerrors.ErrRegistryNotSet
	}
	if incentiveBps > splits.MaxIncentiveBps {
		return splits.AllocationSet{}, splits.ErrIncentiveTooLarge
	}
	set, err := s.Weights.ComputeAllocations(ctx, cutoffYear, cutoffMonth)
	if err != nil {
		return splits.AllocationSet{}, err
	}
	if len(set.Entries) == 0 {
		return splits.AllocationSet{}, domainerrors.ErrEmptyWeights
	}
	set.IncentiveBps = incentiveBps
	return set, nil
}

func (s Service) applyEverywhere(ctx context.Context, set splits.AllocationSet) ([]ports.LedgerOutcome, error) {
	if s.Primary == nil {
		return nil, domainerrors.ErrPrimaryObjectNotSet
	}
	if err := s.Primary.ApplyAllocations(ctx, set); err != nil {
		return nil, err
	}
	outcomes := []ports.LedgerOutcome{{LedgerID: s.PrimaryLedgerID}}

	registrations, err := s.Bridges.List(ctx)
	if err != nil {
		return outcomes, err
	}
	for _, reg := range registrations {
		outcome := ports.LedgerOutcome{LedgerID: reg.LedgerID}
		if err := reg.Adapter.UpdateSplit(ctx, s.Self, set); err != nil {
			outcome.Err = err
			s.Logger.Warn("bridge update failed",
				"event", "coordinator.bridge_update_failed",
				"module", "coordinator",
				"layer", "application",
				"ledger_id", reg.LedgerID,
				"error", err,
			)
		}
		outcomes = append(outcomes, outcome)
	}
	s.Logger.Info("allocation set applied",
		"event", "coordinator.split_updated",
		"module", "coordinator",
		"layer", "application",
		"entries", len(set.Entries),
		"incentive_bps", set.IncentiveBps,
		"ledgers", len(outcomes),
	)
	return outcomes, nil
}

func (s Service) applyOne(ctx context.Context, ledgerID string, set splits.AllocationSet) error {
	if s.isPrimary(ledgerID) {
		if s.Primary == nil {
			return domainerrors.ErrPrimaryObjectNotSet
		}
		return s.Primary.ApplyAllocations(ctx, set)
	}
	adapter, err := s.Bridges.Get(ctx, ledgerID)
	if err != nil {
		return domainerrors.ErrUnknownTarget
	}
	return adapter.UpdateSplit(ctx, s.Self, set)
}

// normalizeList converts raw weights to ppm shares over their sum. Shares
// are floored; the rounding remainder goes to the last entry so the set
// still sums to exactly one million.
func normalizeList(entries []ports.WeightedEntry, incentiveBps uint32) (splits.AllocationSet, error) {
	if incentiveBps > splits.MaxIncentiveBps {
		return splits.AllocationSet{}, splits.ErrIncentiveTooLarge
	}
	if len(entries) == 0 {
		return splits.AllocationSet{}, domainerrors.ErrEmptyWeights
	}
	var total uint64
	for _, entry := range entries {
		if entry.Address.IsZero() || entry.Weight == 0 {
			return splits.AllocationSet{}, domainerrors.ErrInvalidEntry
		}
		sum, carry := bits.Add64(total, entry.Weight, 0)
		if carry != 0 {
			return splits.AllocationSet{}, domainerrors.ErrWeightOverflow
		}
		total = sum
	}

	set := splits.AllocationSet{
		Entries:      make([]splits.Entry, 0, len(entries)),
		IncentiveBps: incentiveBps,
	}
	var assigned uint32
	for i, entry := range entries {
		// 128-bit product: raw weights are wei scale, weight*10^6 does not
		// fit in uint64. weight <= total keeps the quotient under 10^6.
		hi, lo := bits.Mul64(entry.Weight, splits.TotalPpm)
		quo, _ := bits.Div64(hi, lo, total)
		share := uint32(quo)
		if i == len(entries)-1 {
			share = splits.TotalPpm - assigned
		}
		assigned += share
		set.Entries = append(set.Entries, splits.Entry{Address: entry.Address, Ppm: share})
	}
	return set, nil
}
