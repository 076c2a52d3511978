package application

import (
	"context"
	"errors"
	"math/big"
	"testing"

	memoryadapter "github.com/pk910/pg-onchain-weights/contexts/ledger-bridges/bridge-adapter/adapters/memory"
	domainerrors "github.com/pk910/pg-onchain-weights/contexts/ledger-bridges/bridge-adapter/domain/errors"
	"github.com/pk910/pg-onchain-weights/contexts/ledger-bridges/bridge-adapter/ports"
	"github.com/pk910/pg-onchain-weights/internal/platform/messaging"
	"github.com/pk910/pg-onchain-weights/internal/shared/outbox"
	"github.com/pk910/pg-onchain-weights/internal/shared/splits"
)

type fakeRetryableTransport struct {
	subs   []messaging.RetryableSubmission
	fail   error
	refund *big.Int
}

func (f *fakeRetryableTransport) Submit(_ context.Context, sub messaging.RetryableSubmission) (*big.Int, error) {
	if f.fail != nil {
		return nil, f.fail
	}
	f.subs = append(f.subs, sub)
	if f.refund != nil {
		return new(big.Int).Set(f.refund), nil
	}
	return big.NewInt(0), nil
}

func testFees() ports.FeeParams {
	return ports.FeeParams{
		SubmissionCost: big.NewInt(1_000),
		MaxFeePerGas:   big.NewInt(2),
	}
}

// gas limit 100000 * 2 per gas + 1000 submission cost = 201000
const requiredFee = 201_000

func newRetryable(transport ports.RetryableTransport, tickets ports.TicketStore) *RetryableAdapter {
	adapter := NewRetryableAdapter(transport, tickets, "42161", testAddr(0x10), bridgeOwner, 100_000, testFees(), nil)
	ctx := context.Background()
	if err := adapter.RegisterCoordinator(ctx, bridgeOwner, coordinator); err != nil {
		panic(err)
	}
	if err := adapter.RegisterExecutor(ctx, bridgeOwner, testAddr(0x20)); err != nil {
		panic(err)
	}
	return adapter
}

func TestRetryableRegistrationsAreWriteOnce(t *testing.T) {
	adapter := NewRetryableAdapter(&fakeRetryableTransport{}, nil, "42161", testAddr(0x10), bridgeOwner, 100_000, testFees(), nil)
	ctx := context.Background()

	if err := adapter.RegisterExecutor(ctx, intruder, testAddr(0x20)); !errors.Is(err, domainerrors.ErrNotOwner) {
		t.Fatalf("executor registration must be owner gated, got %v", err)
	}
	if err := adapter.RegisterExecutor(ctx, bridgeOwner, testAddr(0x20)); err != nil {
		t.Fatalf("executor registration failed: %v", err)
	}
	if err := adapter.RegisterExecutor(ctx, bridgeOwner, testAddr(0x21)); !errors.Is(err, domainerrors.ErrExecutorAlreadySet) {
		t.Fatalf("second executor registration must be rejected, got %v", err)
	}
	if err := adapter.RegisterCoordinator(ctx, bridgeOwner, coordinator); err != nil {
		t.Fatalf("coordinator registration failed: %v", err)
	}
	if err := adapter.RegisterCoordinator(ctx, bridgeOwner, intruder); !errors.Is(err, domainerrors.ErrCoordinatorAlreadySet) {
		t.Fatalf("second coordinator registration must be rejected, got %v", err)
	}
}

func TestRetryableUnderfundedNeverReachesTransport(t *testing.T) {
	transport := &fakeRetryableTransport{}
	adapter := newRetryable(transport, nil)
	ctx := context.Background()

	if err := adapter.Fund(ctx, big.NewInt(requiredFee-1)); err != nil {
		t.Fatalf("fund failed: %v", err)
	}
	if err := adapter.SetPaused(ctx, coordinator, true); !errors.Is(err, domainerrors.ErrInsufficientFee) {
		t.Fatalf("expected fee rejection, got %v", err)
	}
	if len(transport.subs) != 0 {
		t.Fatalf("underfunded submission must not contact the transport")
	}
	if adapter.Balance().Int64() != requiredFee-1 {
		t.Fatalf("rejected submission must not burn balance, got %s", adapter.Balance())
	}
}

func TestRetryableSubmitDeductsFeeAndRefundsToExecutor(t *testing.T) {
	transport := &fakeRetryableTransport{refund: big.NewInt(500)}
	adapter := newRetryable(transport, nil)
	ctx := context.Background()

	if err := adapter.Fund(ctx, big.NewInt(requiredFee+10)); err != nil {
		t.Fatalf("fund failed: %v", err)
	}
	set := splits.AllocationSet{Entries: []splits.Entry{{Address: testAddr(7), Ppm: splits.TotalPpm}}}
	if err := adapter.UpdateSplit(ctx, coordinator, set); err != nil {
		t.Fatalf("update failed: %v", err)
	}

	if adapter.Balance().Int64() != 10 {
		t.Fatalf("required fee must be deducted, balance %s", adapter.Balance())
	}
	sub := transport.subs[0]
	if sub.FeeBudget.Int64() != requiredFee {
		t.Fatalf("fee budget must equal the required fee, got %s", sub.FeeBudget)
	}
	if sub.RefundTo != testAddr(0x20) {
		t.Fatalf("refunds must always target the paired executor, got %s", sub.RefundTo.Hex())
	}
	if sub.Sender != adapter.Address {
		t.Fatalf("submission sender must be the adapter, got %s", sub.Sender.Hex())
	}
}

func TestRetryableTransportFailureRecreditsAndRecordsTicket(t *testing.T) {
	transport := &fakeRetryableTransport{fail: errors.New("sequencer down")}
	tickets := memoryadapter.NewTicketStore()
	adapter := newRetryable(transport, tickets)
	ctx := context.Background()

	if err := adapter.Fund(ctx, big.NewInt(requiredFee)); err != nil {
		t.Fatalf("fund failed: %v", err)
	}
	if err := adapter.SetPaused(ctx, coordinator, true); err == nil {
		t.Fatalf("transport failure must surface")
	}
	if adapter.Balance().Int64() != requiredFee {
		t.Fatalf("failed submission must re-credit the balance, got %s", adapter.Balance())
	}
	pending, err := tickets.Pending(ctx)
	if err != nil || len(pending) != 1 {
		t.Fatalf("expected 1 pending ticket, got %d (%v)", len(pending), err)
	}
	if pending[0].EventType != splits.CommandSetPaused || pending[0].Status != outbox.StatusPending {
		t.Fatalf("unexpected ticket %+v", pending[0])
	}
}

func TestRetryableWithdrawIsOwnerGated(t *testing.T) {
	adapter := newRetryable(&fakeRetryableTransport{}, nil)
	ctx := context.Background()

	if err := adapter.Fund(ctx, big.NewInt(1_000)); err != nil {
		t.Fatalf("fund failed: %v", err)
	}
	if err := adapter.Withdraw(ctx, coordinator, big.NewInt(100)); !errors.Is(err, domainerrors.ErrNotOwner) {
		t.Fatalf("withdraw must be owner only, got %v", err)
	}
	if err := adapter.Withdraw(ctx, bridgeOwner, big.NewInt(2_000)); !errors.Is(err, domainerrors.ErrInsufficientBalance) {
		t.Fatalf("expected balance rejection, got %v", err)
	}
	if err := adapter.Withdraw(ctx, bridgeOwner, big.NewInt(400)); err != nil {
		t.Fatalf("withdraw failed: %v", err)
	}
	if adapter.Balance().Int64() != 600 {
		t.Fatalf("unexpected balance %s", adapter.Balance())
	}
}

func TestRetryableFeeParamsSetAndReset(t *testing.T) {
	transport := &fakeRetryableTransport{}
	adapter := newRetryable(transport, nil)
	ctx := context.Background()

	if err := adapter.SetFeeParams(ctx, intruder, testFees()); !errors.Is(err, domainerrors.ErrNotOwner) {
		t.Fatalf("fee params must be owner gated, got %v", err)
	}
	if err := adapter.SetFeeParams(ctx, bridgeOwner, ports.FeeParams{}); !errors.Is(err, domainerrors.ErrInvalidFeeParams) {
		t.Fatalf("nil fee params must be rejected, got %v", err)
	}

	raised := ports.FeeParams{SubmissionCost: big.NewInt(5_000), MaxFeePerGas: big.NewInt(10)}
	if err := adapter.SetFeeParams(ctx, bridgeOwner, raised); err != nil {
		t.Fatalf("set fee params failed: %v", err)
	}
	// 5000 + 100000*10
	if err := adapter.Fund(ctx, big.NewInt(1_005_000)); err != nil {
		t.Fatalf("fund failed: %v", err)
	}
	if err := adapter.ForwardRefunds(ctx, bridgeOwner); err != nil {
		t.Fatalf("forward refunds failed: %v", err)
	}
	if adapter.Balance().Int64() != 0 {
		t.Fatalf("raised pricing must be charged, balance %s", adapter.Balance())
	}
	if transport.subs[0].Envelope.EventType != splits.BridgeNoop {
		t.Fatalf("forward refunds must cross as a no-op, got %s", transport.subs[0].Envelope.EventType)
	}

	if err := adapter.ResetFeeParams(ctx, bridgeOwner); err != nil {
		t.Fatalf("reset failed: %v", err)
	}
	if err := adapter.Fund(ctx, big.NewInt(requiredFee)); err != nil {
		t.Fatalf("fund failed: %v", err)
	}
	if err := adapter.ForwardRefunds(ctx, coordinator); err != nil {
		t.Fatalf("forward refunds at default pricing failed: %v", err)
	}
	if adapter.Balance().Int64() != 0 {
		t.Fatalf("default pricing must apply after reset, balance %s", adapter.Balance())
	}
}
