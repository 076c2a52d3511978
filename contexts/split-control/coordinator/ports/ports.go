package ports

import (
	"context"

	"github.com/pk910/pg-onchain-weights/internal/shared/identity"
	"github.com/pk910/pg-onchain-weights/internal/shared/splits"
)

// WeightSource computes a fresh allocation set for one cutoff period.
type WeightSource interface {
	ComputeAllocations(ctx context.Context, cutoffYear uint16, cutoffMonth uint8) (splits.AllocationSet, error)
}

// AllocationObject is the payout primitive on one ledger. Applying the same
// allocation set twice must converge on the same state.
type AllocationObject interface {
	ApplyAllocations(ctx context.Context, set splits.AllocationSet) error
	Distribute(ctx context.Context, cmd splits.DistributeCommand) error
	ExecCalls(ctx context.Context, calls []byte) error
	SetPaused(ctx context.Context, paused bool) error
	TransferOwnership(ctx context.Context, newOwner identity.Address) error
}

// BridgeAdapter forwards coordinator commands to one dependent ledger.
// The command surface is identical across both transport classes.
type BridgeAdapter interface {
	LedgerID() string
	UpdateSplit(ctx context.Context, caller identity.Address, set splits.AllocationSet) error
	Distribute(ctx context.Context, caller identity.Address, cmd splits.DistributeCommand) error
	ExecCalls(ctx context.Context, caller identity.Address, calls []byte) error
	SetPaused(ctx context.Context, caller identity.Address, paused bool) error
	TransferOwnership(ctx context.Context, caller identity.Address, newOwner identity.Address) error
}

// Registration pairs a ledger id with its adapter; at most one adapter per
// ledger, listed in registration order for deterministic fan-out.
type Registration struct {
	LedgerID string
	Adapter  BridgeAdapter
}

type BridgeRegistry interface {
	Register(ctx context.Context, ledgerID string, adapter BridgeAdapter) error
	Remove(ctx context.Context, ledgerID string) error
	Get(ctx context.Context, ledgerID string) (BridgeAdapter, error)
	List(ctx context.Context) ([]Registration, error)
}

// WeightedEntry is one caller-supplied raw weight used when tenure tracking
// is bypassed entirely.
type WeightedEntry struct {
	Address identity.Address
	Weight  uint64
}

// LedgerOutcome is the per-ledger result of a fan-out; failures on one
// ledger never block delivery to the others.
type LedgerOutcome struct {
	LedgerID string
	Err      error
}
