package ports

import (
	"context"
	"math/big"

	"github.com/pk910/pg-onchain-weights/internal/platform/messaging"
	"github.com/pk910/pg-onchain-weights/internal/shared/events"
	"github.com/pk910/pg-onchain-weights/internal/shared/identity"
	"github.com/pk910/pg-onchain-weights/internal/shared/outbox"
)

// PushTransport is the fee-free transport endpoint: the message is carried
// without funding and the receiver relays the original sender.
type PushTransport interface {
	Submit(ctx context.Context, envelope events.Envelope, sender identity.Address, gasLimit uint64) error
}

// RetryableTransport is the fee-funded transport endpoint. Submit returns
// the part of the fee budget refunded to the submission's refund address.
type RetryableTransport interface {
	Submit(ctx context.Context, sub messaging.RetryableSubmission) (*big.Int, error)
}

// TicketStore keeps submissions that the transport rejected so the resend
// worker can retry them with bumped fees.
type TicketStore interface {
	Append(ctx context.Context, ticket outbox.Ticket) error
	Pending(ctx context.Context) ([]outbox.Ticket, error)
	MarkDelivered(ctx context.Context, id string) error
	MarkFailed(ctx context.Context, id string) error
	IncrementRetry(ctx context.Context, id string) error
}

// FeeParams price one fee-funded submission:
// required fee = SubmissionCost + gasLimit * MaxFeePerGas.
type FeeParams struct {
	SubmissionCost *big.Int
	MaxFeePerGas   *big.Int
}

func (p FeeParams) Valid() bool {
	return p.SubmissionCost != nil && p.MaxFeePerGas != nil &&
		p.SubmissionCost.Sign() >= 0 && p.MaxFeePerGas.Sign() >= 0
}

// RequiredFee computes the up-front funding for one submission.
func (p FeeParams) RequiredFee(gasLimit uint64) *big.Int {
	fee := big.NewInt(0)
	if p.SubmissionCost != nil {
		fee.Add(fee, p.SubmissionCost)
	}
	if p.MaxFeePerGas != nil {
		gas := new(big.Int).SetUint64(gasLimit)
		fee.Add(fee, gas.Mul(gas, p.MaxFeePerGas))
	}
	return fee
}
