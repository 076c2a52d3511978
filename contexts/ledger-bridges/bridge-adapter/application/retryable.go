package application

import (
	"context"
	"encoding/json"
	"log/slog"
	"math/big"
	"sync"

	domainerrors "github.com/pk910/pg-onchain-weights/contexts/ledger-bridges/bridge-adapter/domain/errors"
	"github.com/pk910/pg-onchain-weights/contexts/ledger-bridges/bridge-adapter/ports"
	"github.com/pk910/pg-onchain-weights/internal/platform/messaging"
	"github.com/pk910/pg-onchain-weights/internal/shared/events"
	"github.com/pk910/pg-onchain-weights/internal/shared/identity"
	"github.com/pk910/pg-onchain-weights/internal/shared/outbox"
	"github.com/pk910/pg-onchain-weights/internal/shared/splits"
)

// retryBumpPct raises the per-gas fee by this percentage on every resend.
const retryBumpPct = 25

// RetryableAdapter is the fee-funded bridge class. It holds a fee balance,
// prices every submission up front and records rejected submissions as
// tickets for the resend worker. Unconsumed fees are refunded on the remote
// ledger to the paired executor, never back to this side.
type RetryableAdapter struct {
	Transport ports.RetryableTransport
	Tickets   ports.TicketStore
	Ledger    string
	// Address is the adapter's own identity; the remote ledger observes it
	// shifted by the aliasing offset.
	Address         identity.Address
	Owner           identity.Address
	DefaultGasLimit uint64
	Logger          *slog.Logger

	mu          sync.Mutex
	coordinator identity.Address
	executor    identity.Address
	balance     *big.Int
	fees        ports.FeeParams
	defaultFees ports.FeeParams
}

func NewRetryableAdapter(transport ports.RetryableTransport, tickets ports.TicketStore, ledgerID string, address, owner identity.Address, gasLimit uint64, defaults ports.FeeParams, logger *slog.Logger) *RetryableAdapter {
	return &RetryableAdapter{
		Transport:       transport,
		Tickets:         tickets,
		Ledger:          ledgerID,
		Address:         address,
		Owner:           owner,
		DefaultGasLimit: gasLimit,
		Logger:          ResolveLogger(logger),
		balance:         big.NewInt(0),
		fees:            defaults,
		defaultFees:     defaults,
	}
}

func (a *RetryableAdapter) LedgerID() string { return a.Ledger }

// RegisterCoordinator binds the coordinator endpoint. Write-once.
func (a *RetryableAdapter) RegisterCoordinator(_ context.Context, caller, coordinator identity.Address) error {
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

// RegisterExecutor binds the remote executor that receives fee refunds.
// Write-once.
func (a *RetryableAdapter) RegisterExecutor(_ context.Context, caller, executor identity.Address) error {
	if caller.IsZero() || caller != a.Owner {
		return domainerrors.ErrNotOwner
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	if !a.executor.IsZero() {
		return domainerrors.ErrExecutorAlreadySet
	}
	a.executor = executor
	return nil
}

// Fund credits the fee balance. Anyone may fund the adapter.
func (a *RetryableAdapter) Fund(_ context.Context, amount *big.Int) error {
	if amount == nil || amount.Sign() <= 0 {
		return domainerrors.ErrInvalidAmount
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	a.balance.Add(a.balance, amount)
	return nil
}

// Withdraw debits the fee balance. Recovery owner only.
func (a *RetryableAdapter) Withdraw(_ context.Context, caller identity.Address, amount *big.Int) error {
	if caller.IsZero() || caller != a.Owner {
		return domainerrors.ErrNotOwner
	}
	if amount == nil || amount.Sign() <= 0 {
		return domainerrors.ErrInvalidAmount
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.balance.Cmp(amount) < 0 {
		return domainerrors.ErrInsufficientBalance
	}
	a.balance.Sub(a.balance, amount)
	return nil
}

// Balance returns a copy of the current fee balance.
func (a *RetryableAdapter) Balance() *big.Int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return new(big.Int).Set(a.balance)
}

// SetFeeParams overrides the submission pricing. Recovery owner only.
func (a *RetryableAdapter) SetFeeParams(_ context.Context, caller identity.Address, params ports.FeeParams) error {
	if caller.IsZero() || caller != a.Owner {
		return domainerrors.ErrNotOwner
	}
	if !params.Valid() {
		return domainerrors.ErrInvalidFeeParams
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	a.fees = params
	return nil
}

// ResetFeeParams restores the construction-time pricing defaults.
func (a *RetryableAdapter) ResetFeeParams(_ context.Context, caller identity.Address) error {
	if caller.IsZero() || caller != a.Owner {
		return domainerrors.ErrNotOwner
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	a.fees = a.defaultFees
	return nil
}

func (a *RetryableAdapter) authorize(caller identity.Address) error {
	a.mu.Lock()
	coordinator := a.coordinator
	a.mu.Unlock()
	if caller.IsZero() {
		return domainerrors.ErrNotAuthorized
	}
	if caller == coordinator || caller == a.Owner {
		return nil
	}
	return domainerrors.ErrNotAuthorized
}

func (a *RetryableAdapter) UpdateSplit(ctx context.Context, caller identity.Address, set splits.AllocationSet) error {
	return a.forward(ctx, caller, splits.CommandUpdateSplit, splits.UpdateSplitCommand{Allocations: set})
}

func (a *RetryableAdapter) Distribute(ctx context.Context, caller identity.Address, cmd splits.DistributeCommand) error {
	return a.forward(ctx, caller, splits.CommandDistribute, cmd)
}

func (a *RetryableAdapter) ExecCalls(ctx context.Context, caller identity.Address, calls []byte) error {
	return a.forward(ctx, caller, splits.CommandExecCalls, splits.ExecCallsCommand{Calls: calls})
}

func (a *RetryableAdapter) SetPaused(ctx context.Context, caller identity.Address, paused bool) error {
	return a.forward(ctx, caller, splits.CommandSetPaused, splits.SetPausedCommand{Paused: paused})
}

func (a *RetryableAdapter) TransferOwnership(ctx context.Context, caller identity.Address, newOwner identity.Address) error {
	return a.forward(ctx, caller, splits.CommandTransferOwnership, splits.TransferOwnershipCommand{NewOwner: newOwner})
}

// ForwardRefunds crosses an administrative no-op whose only effect is to
// trigger refund forwarding on the remote executor.
func (a *RetryableAdapter) ForwardRefunds(ctx context.Context, caller identity.Address) error {
	return a.forward(ctx, caller, splits.BridgeNoop, struct{}{})
}

func (a *RetryableAdapter) forward(ctx context.Context, caller identity.Address, eventType string, payload any) error {
	if err := a.authorize(caller); err != nil {
		return err
	}
	envelope, err := newEnvelope(eventType, payload)
	if err != nil {
		return err
	}
	return a.submit(ctx, envelope, a.currentFees(), 0)
}

// Resend replays a recorded ticket with the per-gas fee bumped for every
// retry already burned.
func (a *RetryableAdapter) Resend(ctx context.Context, ticket outbox.Ticket) error {
	var envelope events.Envelope
	if err := json.Unmarshal(ticket.Payload, &envelope); err != nil {
		return err
	}
	return a.submit(ctx, envelope, a.bumpedFees(ticket.RetryCount+1), ticket.RetryCount+1)
}

// submit prices the message, debits the balance and only then contacts the
// transport. An underfunded adapter never reaches the transport at all.
func (a *RetryableAdapter) submit(ctx context.Context, envelope events.Envelope, fees ports.FeeParams, attempt int) error {
	required := fees.RequiredFee(a.DefaultGasLimit)

	a.mu.Lock()
	executor := a.executor
	if executor.IsZero() {
		a.mu.Unlock()
		return domainerrors.ErrExecutorNotSet
	}
	if a.balance.Cmp(required) < 0 {
		a.mu.Unlock()
		a.Logger.Warn("submission underfunded",
			"event", "bridge.submit_underfunded",
			"module", "bridge-adapter",
			"layer", "application",
			"ledger_id", a.Ledger,
			"command", envelope.EventType,
			"required_fee", required.String(),
		)
		return domainerrors.ErrInsufficientFee
	}
	a.balance.Sub(a.balance, required)
	a.mu.Unlock()

	refund, err := a.Transport.Submit(ctx, messaging.RetryableSubmission{
		Envelope:  envelope,
		Sender:    a.Address,
		GasLimit:  a.DefaultGasLimit,
		FeeBudget: required,
		RefundTo:  executor,
	})
	if err != nil {
		a.mu.Lock()
		a.balance.Add(a.balance, required)
		a.mu.Unlock()
		if attempt == 0 {
			a.recordTicket(ctx, envelope)
		}
		a.Logger.Warn("retryable submission failed",
			"event", "bridge.submit_failed",
			"module", "bridge-adapter",
			"layer", "application",
			"ledger_id", a.Ledger,
			"command", envelope.EventType,
			"attempt", attempt,
			"error", err,
		)
		return err
	}
	a.Logger.Info("command submitted",
		"event", "bridge.submitted",
		"module", "bridge-adapter",
		"layer", "application",
		"ledger_id", a.Ledger,
		"command", envelope.EventType,
		"fee_paid", required.String(),
		"refund", refund.String(),
		"attempt", attempt,
	)
	return nil
}

func (a *RetryableAdapter) recordTicket(ctx context.Context, envelope events.Envelope) {
	if a.Tickets == nil {
		return
	}
	payload, err := json.Marshal(envelope)
	if err != nil {
		return
	}
	ticket := outbox.Ticket{
		ID:        envelope.EventID,
		LedgerID:  a.Ledger,
		EventType: envelope.EventType,
		Payload:   payload,
		Status:    outbox.StatusPending,
	}
	if err := a.Tickets.Append(ctx, ticket); err != nil {
		a.Logger.Error("ticket append failed",
			"event", "bridge.ticket_append_failed",
			"module", "bridge-adapter",
			"layer", "application",
			"ledger_id", a.Ledger,
			"event_id", envelope.EventID,
			"error", err,
		)
	}
}

func (a *RetryableAdapter) currentFees() ports.FeeParams {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.fees
}

func (a *RetryableAdapter) bumpedFees(retries int) ports.FeeParams {
	fees := a.currentFees()
	if fees.MaxFeePerGas == nil || retries <= 0 {
		return fees
	}
	pct := big.NewInt(int64(100 + retryBumpPct*retries))
	bumped := new(big.Int).Mul(fees.MaxFeePerGas, pct)
	bumped.Div(bumped, big.NewInt(100))
	return ports.FeeParams{SubmissionCost: fees.SubmissionCost, MaxFeePerGas: bumped}
}
