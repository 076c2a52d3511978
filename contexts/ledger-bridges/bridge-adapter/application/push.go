package application

import (
	"context"
	"log/slog"
	"sync"

	domainerrors "github.com/pk910/pg-onchain-weights/contexts/ledger-bridges/bridge-adapter/domain/errors"
	"github.com/pk910/pg-onchain-weights/contexts/ledger-bridges/bridge-adapter/ports"
	"github.com/pk910/pg-onchain-weights/internal/shared/identity"
	"github.com/pk910/pg-onchain-weights/internal/shared/splits"
)

// PushAdapter is the fee-free bridge class. Every command crosses with a
// fixed gas ceiling, no funding is held and nothing can be refunded, so
// there is no balance, no fee params and no resend queue.
type PushAdapter struct {
	Transport ports.PushTransport
	Ledger    string
	// Address is the adapter's own identity; the remote receiver relays it
	// as the reported sender.
	Address    identity.Address
	Owner      identity.Address
	GasCeiling uint64
	Logger     *slog.Logger

	mu          sync.RWMutex
	coordinator identity.Address
}

func NewPushAdapter(transport ports.PushTransport, ledgerID string, address, owner identity.Address, gasCeiling uint64, logger *slog.Logger) *PushAdapter {
	return &PushAdapter{
		Transport:  transport,
		Ledger:     ledgerID,
		Address:    address,
		Owner:      owner,
		GasCeiling: gasCeiling,
		Logger:     ResolveLogger(logger),
	}
}

func (a *PushAdapter) LedgerID() string { return a.Ledger }

// RegisterCoordinator binds the coordinator endpoint. Write-once: a bound
// coordinator can never be swapped out.
func (a *PushAdapter) RegisterCoordinator(_ context.Context, caller, coordinator identity.Address) error {
	if caller.IsZero() || caller != a.Owner {
		return domainerrors.ErrNotOwner
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	if !a.coordinator.IsZero() {
		return domainerrors.ErrCoordinatorAlreadySet
	}
	a.coordinator = coordinator
	return nil
}

func (a *PushAdapter) authorize(caller identity.Address) error {
	a.mu.RLock()
	coordinator := a.coordinator
	a.mu.RUnlock()
	if caller.IsZero() {
		return domainerrors.ErrNotAuthorized
	}
	if caller == coordinator || caller == a.Owner {
		return nil
	}
	return domainerrors.ErrNotAuthorized
}

func (a *PushAdapter) UpdateSplit(ctx context.Context, caller identity.Address, set splits.AllocationSet) error {
	return a.forward(ctx, caller, splits.CommandUpdateSplit, splits.UpdateSplitCommand{Allocations: set})
}

func (a *PushAdapter) Distribute(ctx context.Context, caller identity.Address, cmd splits.DistributeCommand) error {
	return a.forward(ctx, caller, splits.CommandDistribute, cmd)
}

func (a *PushAdapter) ExecCalls(ctx context.Context, caller identity.Address, calls []byte) error {
	return a.forward(ctx, caller, splits.CommandExecCalls, splits.ExecCallsCommand{Calls: calls})
}

func (a *PushAdapter) SetPaused(ctx context.Context, caller identity.Address, paused bool) error {
	return a.forward(ctx, caller, splits.CommandSetPaused, splits.SetPausedCommand{Paused: paused})
}

func (a *PushAdapter) TransferOwnership(ctx context.Context, caller identity.Address, newOwner identity.Address) error {
	return a.forward(ctx, caller, splits.CommandTransferOwnership, splits.TransferOwnershipCommand{NewOwner: newOwner})
}

func (a *PushAdapter) forward(ctx context.Context, caller identity.Address, eventType string, payload any) error {
	if err := a.authorize(caller); err != nil {
		return err
	}
	envelope, err := newEnvelope(eventType, payload)
	if err != nil {
		return err
	}
	if err := a.Transport.Submit(ctx, envelope, a.Address, a.GasCeiling); err != nil {
		a.Logger.Warn("push submission failed",
			"event", "bridge.push_submit_failed",
			"module", "bridge-adapter",
			"layer", "application",
			"ledger_id", a.Ledger,
			"command", eventType,
			"error", err,
		)
		return err
	}
	a.Logger.Info("command pushed",
		"event", "bridge.push_submitted",
		"module", "bridge-adapter",
		"layer", "application",
		"ledger_id", a.Ledger,
		"command", eventType,
		"gas_limit", a.GasCeiling,
	)
	return nil
}
