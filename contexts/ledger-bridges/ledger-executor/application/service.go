package application

import (
	"context"
	"encoding/json"
	"log/slog"
	"math/big"
	"sync"

	domainerrors "github.com/pk910/pg-onchain-weights/contexts/ledger-bridges/ledger-executor/domain/errors"
	"github.com/pk910/pg-onchain-weights/contexts/ledger-bridges/ledger-executor/domain/services"
	"github.com/pk910/pg-onchain-weights/contexts/ledger-bridges/ledger-executor/ports"
	"github.com/pk910/pg-onchain-weights/internal/platform/messaging"
	"github.com/pk910/pg-onchain-weights/internal/shared/identity"
	"github.com/pk910/pg-onchain-weights/internal/shared/splits"
)

// ResolveLogger returns the provided logger or the process default.
func ResolveLogger(logger *slog.Logger) *slog.Logger {
	if logger != nil {
		return logger
	}
	return slog.Default()
}

// Service executes bridge deliveries against the local split wallet.
// Authentication is transport-level origin only; a delivery that fails the
// origin check changes nothing, value included. Plain value transfers are
// accepted from anyone and accumulate until swept.
type Service struct {
	Wallet   ports.SplitWallet
	Verifier services.OriginVerifier
	Sink     ports.ValueSink
	LedgerID string
	// Address is the executor's own identity, reported as sweep origin.
	Address identity.Address
	Owner   identity.Address
	// SweepThreshold triggers automatic refund forwarding once crossed.
	// Nil or zero disables auto-sweeping.
	SweepThreshold *big.Int
	Logger         *slog.Logger

	mu      sync.Mutex
	refunds *big.Int
}

func NewService(wallet ports.SplitWallet, verifier services.OriginVerifier, sink ports.ValueSink, ledgerID string, address, owner identity.Address, sweepThreshold *big.Int, logger *slog.Logger) *Service {
	return &Service{
		Wallet:         wallet,
		Verifier:       verifier,
		Sink:           sink,
		LedgerID:       ledgerID,
		Address:        address,
		Owner:          owner,
		SweepThreshold: sweepThreshold,
		Logger:         ResolveLogger(logger),
		refunds:        big.NewInt(0),
	}
}

// HandleDelivery is the bus handler for this executor's ledger topic.
func (s *Service) HandleDelivery(ctx context.Context, delivery messaging.Delivery) error {
	eventType := delivery.Envelope.EventType
	if eventType == "" || eventType == splits.BridgeRefund {
		return s.acceptValue(ctx, delivery)
	}

	if err := s.Verifier.Verify(delivery.Caller, delivery.ReportedSender); err != nil {
		s.Logger.Warn("delivery origin rejected",
			"event", "executor.origin_rejected",
			"module", "ledger-executor",
			"layer", "application",
			"ledger_id", s.LedgerID,
			"command", eventType,
			"caller", delivery.Caller.Hex(),
		)
		return err
	}
	if delivery.Value != nil && delivery.Value.Sign() > 0 {
		s.credit(ctx, delivery.Value)
	}
	return s.execute(ctx, delivery)
}

func (s *Service) execute(ctx context.Context, delivery messaging.Delivery) error {
	data := delivery.Envelope.Data
	switch delivery.Envelope.EventType {
	case splits.CommandUpdateSplit:
		var cmd splits.UpdateSplitCommand
		if err := json.Unmarshal(data, &cmd); err != nil {
			return domainerrors.ErrBadPayload
		}
		return s.updateSplit(ctx, cmd.Allocations)
	case splits.CommandDistribute:
		var cmd splits.DistributeCommand
		if err := json.Unmarshal(data, &cmd); err != nil {
			return domainerrors.ErrBadPayload
		}
		return s.Wallet.Distribute(ctx, cmd)
	case splits.CommandExecCalls:
		var cmd splits.ExecCallsCommand
		if err := json.Unmarshal(data, &cmd); err != nil {
			return domainerrors.ErrBadPayload
		}
		return s.Wallet.ExecCalls(ctx, cmd.Calls)
	case splits.CommandSetPaused:
		var cmd splits.SetPausedCommand
		if err := json.Unmarshal(data, &cmd); err != nil {
			return domainerrors.ErrBadPayload
		}
		return s.Wallet.SetPaused(ctx, cmd.Paused)
	case splits.CommandTransferOwnership:
		var cmd splits.TransferOwnershipCommand
		if err := json.Unmarshal(data, &cmd); err != nil {
			return domainerrors.ErrBadPayload
		}
		return s.Wallet.TransferOwnership(ctx, cmd.NewOwner)
	case splits.BridgeNoop:
		return s.forwardRefunds(ctx)
	default:
		return domainerrors.ErrUnknownCommand
	}
}

// updateSplit is idempotent: re-delivering the currently applied set is a
// logged no-op, so duplicated bridge traffic cannot thrash the wallet.
func (s *Service) updateSplit(ctx context.Context, set splits.AllocationSet) error {
	current, err := s.Wallet.CurrentAllocations(ctx)
	if err == nil && current.Equal(set) {
		s.Logger.Info("allocation set already applied",
			"event", "executor.update_noop",
			"module", "ledger-executor",
			"layer", "application",
			"ledger_id", s.LedgerID,
			"entries", len(set.Entries),
		)
		return nil
	}
	return s.Wallet.ApplyAllocations(ctx, set)
}

func (s *Service) acceptValue(ctx context.Context, delivery messaging.Delivery) error {
	if delivery.Value == nil || delivery.Value.Sign() <= 0 {
		return nil
	}
	s.Logger.Info("value accepted",
		"event", "executor.value_accepted",
		"module", "ledger-executor",
		"layer", "application",
		"ledger_id", s.LedgerID,
		"from", delivery.Caller.Hex(),
		"amount", delivery.Value.String(),
	)
	s.credit(ctx, delivery.Value)
	return nil
}

func (s *Service) credit(ctx context.Context, amount *big.Int) {
	s.mu.Lock()
	s.refunds.Add(s.refunds, amount)
	balance := new(big.Int).Set(s.refunds)
	threshold := s.SweepThreshold
	s.mu.Unlock()

	if threshold != nil && threshold.Sign() > 0 && balance.Cmp(threshold) >= 0 {
		if err := s.sweep(ctx, "executor.refunds_auto_forwarded"); err != nil {
			s.Logger.Error("automatic refund forward failed",
				"event", "executor.auto_forward_failed",
				"module", "ledger-executor",
				"layer", "application",
				"ledger_id", s.LedgerID,
				"error", err,
			)
		}
	}
}

// forwardRefunds handles the administrative no-op: sweep whatever has
// accumulated, doing nothing when the balance is empty.
func (s *Service) forwardRefunds(ctx context.Context) error {
	s.mu.Lock()
	empty := s.refunds.Sign() == 0
	s.mu.Unlock()
	if empty {
		return nil
	}
	return s.sweep(ctx, "executor.refunds_forwarded")
}

// SweepRefunds is the manual escape hatch for the executor owner.
func (s *Service) SweepRefunds(ctx context.Context, caller identity.Address) error {
	if caller.IsZero() || caller != s.Owner {
		return domainerrors.ErrNotOwner
	}
	s.mu.Lock()
	empty := s.refunds.Sign() == 0
	s.mu.Unlock()
	if empty {
		return domainerrors.ErrZeroSweep
	}
	return s.sweep(ctx, "executor.refunds_swept")
}

func (s *Service) sweep(ctx context.Context, event string) error {
	if s.Sink == nil {
		return domainerrors.ErrSweepTargetNotSet
	}
	s.mu.Lock()
	amount := new(big.Int).Set(s.refunds)
	s.refunds.SetInt64(0)
	s.mu.Unlock()
	if amount.Sign() == 0 {
		return nil
	}
	if err := s.Sink.Receive(ctx, s.Address, amount); err != nil {
		s.mu.Lock()
		s.refunds.Add(s.refunds, amount)
		s.mu.Unlock()
		return err
	}
	s.Logger.Info("refunds forwarded",
		"event", event,
		"module", "ledger-executor",
		"layer", "application",
		"ledger_id", s.LedgerID,
		"amount", amount.String(),
	)
	return nil
}

// RefundBalance returns a copy of the accumulated refund balance.
func (s *Service) RefundBalance() *big.Int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return new(big.Int).Set(s.refunds)
}
