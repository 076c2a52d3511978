package messaging

import (
	"context"
	"errors"
	"log/slog"
	"math/big"

	"github.com/pk910/pg-onchain-weights/internal/shared/events"
	"github.com/pk910/pg-onchain-weights/internal/shared/identity"
)

var (
	ErrTransportNotConfigured = errors.New("messaging: transport endpoint not configured")
	ErrFeeBudgetTooLow        = errors.New("messaging: fee budget below submission cost")
)

// PushTransport is the fee-free transport class. Its local receiver on the
// dependent ledger calls the executor directly and relays the original remote
// sender, so deliveries carry both Caller and ReportedSender.
type PushTransport struct {
	Bus      *Bus
	LedgerID string
	// Receiver is the transport's local endpoint address on the dependent
	// ledger; it becomes the direct caller of the executor.
	Receiver identity.Address
	Logger   *slog.Logger
}

func (t PushTransport) Submit(ctx context.Context, envelope events.Envelope, sender identity.Address, gasLimit uint64) error {
	if t.Bus == nil || t.Receiver.IsZero() {
		return ErrTransportNotConfigured
	}
	envelope.LedgerID = t.LedgerID
	envelope.Sender = sender.Hex()
	return t.Bus.Publish(ctx, Topic(t.LedgerID), Delivery{
		Envelope:       envelope,
		Caller:         t.Receiver,
		ReportedSender: sender,
		GasLimit:       gasLimit,
	})
}

// RetryableSubmission is one fee-funded handoff. RefundTo receives whatever
// part of the fee budget the delivery does not consume, plus the call value
// should execution fail downstream.
type RetryableSubmission struct {
	Envelope  events.Envelope
	Sender    identity.Address
	GasLimit  uint64
	FeeBudget *big.Int
	CallValue *big.Int
	RefundTo  identity.Address
}

// RetryableTransport is the fee-funded transport class. It exposes no remote
// sender field; the dependent ledger observes the submitting address shifted
// by the public aliasing offset.
type RetryableTransport struct {
	Bus      *Bus
	LedgerID string
	// SubmissionCost is charged per message regardless of execution.
	SubmissionCost *big.Int
	// ExecutionFeeRate is charged per gas unit on delivery.
	ExecutionFeeRate *big.Int
	Logger           *slog.Logger
}

// Submit hands one message to the transport and returns the fee refund sent
// back to the submission's refund address.
func (t RetryableTransport) Submit(ctx context.Context, sub RetryableSubmission) (*big.Int, error) {
	if t.Bus == nil {
		return nil, ErrTransportNotConfigured
	}
	budget := big.NewInt(0)
	if sub.FeeBudget != nil {
		budget = new(big.Int).Set(sub.FeeBudget)
	}
	consumed := t.consumedFee(sub.GasLimit)
	if budget.Cmp(consumed) < 0 {
		return nil, ErrFeeBudgetTooLow
	}

	sub.Envelope.LedgerID = t.LedgerID
	delivery := Delivery{
		Envelope: sub.Envelope,
		Caller:   sub.Sender.Alias(),
		GasLimit: sub.GasLimit,
	}
	if sub.CallValue != nil && sub.CallValue.Sign() > 0 {
		delivery.Value = new(big.Int).Set(sub.CallValue)
	}
	if err := t.Bus.Publish(ctx, Topic(t.LedgerID), delivery); err != nil {
		return nil, err
	}

	refund := new(big.Int).Sub(budget, consumed)
	if refund.Sign() > 0 && !sub.RefundTo.IsZero() {
		refundEnvelope := events.Envelope{
			EventID:       sub.Envelope.EventID + ":refund",
			EventType:     "bridge.refund",
			OccurredAt:    sub.Envelope.OccurredAt,
			SourceService: sub.Envelope.SourceService,
			TraceID:       sub.Envelope.TraceID,
			SchemaVersion: sub.Envelope.SchemaVersion,
			LedgerID:      t.LedgerID,
		}
		if err := t.Bus.Publish(ctx, Topic(t.LedgerID), Delivery{
			Envelope: refundEnvelope,
			Caller:   sub.Sender.Alias(),
			Value:    refund,
		}); err != nil {
			return nil, err
		}
	}
	return refund, nil
}

func (t RetryableTransport) consumedFee(gasLimit uint64) *big.Int {
	consumed := big.NewInt(0)
	if t.SubmissionCost != nil {
		consumed.Add(consumed, t.SubmissionCost)
	}
	if t.ExecutionFeeRate != nil {
		gas := new(big.Int).SetUint64(gasLimit)
		consumed.Add(consumed, gas.Mul(gas, t.ExecutionFeeRate))
	}
	return consumed
}
