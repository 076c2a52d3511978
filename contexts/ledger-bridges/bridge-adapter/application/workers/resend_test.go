package workers

import (
	"context"
	"encoding/json"
	"errors"
	"math/big"
	"testing"

	memoryadapter "github.com/pk910/pg-onchain-weights/contexts/ledger-bridges/bridge-adapter/adapters/memory"
	"github.com/pk910/pg-onchain-weights/contexts/ledger-bridges/bridge-adapter/application"
	"github.com/pk910/pg-onchain-weights/contexts/ledger-bridges/bridge-adapter/ports"
	"github.com/pk910/pg-onchain-weights/internal/platform/messaging"
	"github.com/pk910/pg-onchain-weights/internal/shared/events"
	"github.com/pk910/pg-onchain-weights/internal/shared/identity"
	"github.com/pk910/pg-onchain-weights/internal/shared/outbox"
	"github.com/pk910/pg-onchain-weights/internal/shared/splits"
)

type flakyTransport struct {
	failures int
	subs     []messaging.RetryableSubmission
}

func (f *flakyTransport) Submit(_ context.Context, sub messaging.RetryableSubmission) (*big.Int, error) {
	if f.failures > 0 {
		f.failures--
		return nil, errors.New("sequencer down")
	}
	f.subs = append(f.subs, sub)
	return big.NewInt(0), nil
}

func workerAddr(suffix byte) identity.Address {
	var a identity.Address
	a[19] = suffix
	return a
}

func seedTicket(t *testing.T, tickets ports.TicketStore, id string) outbox.Ticket {
	t.Helper()
	payload, err := json.Marshal(events.Envelope{
		EventID:   id,
		EventType: splits.CommandSetPaused,
		Data:      json.RawMessage(`{"paused":true}`),
	})
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}
	ticket := outbox.Ticket{
		ID:        id,
		LedgerID:  "42161",
		EventType: splits.CommandSetPaused,
		Payload:   payload,
		Status:    outbox.StatusPending,
	}
	if err := tickets.Append(context.Background(), ticket); err != nil {
		t.Fatalf("append failed: %v", err)
	}
	return ticket
}

func newWorkerFixture(t *testing.T, transport ports.RetryableTransport, maxRetries int) (ResendWorker, *application.RetryableAdapter, *memoryadapter.TicketStore) {
	t.Helper()
	tickets := memoryadapter.NewTicketStore()
	owner := workerAddr(0x01)
	fees := ports.FeeParams{SubmissionCost: big.NewInt(1_000), MaxFeePerGas: big.NewInt(100)}
	adapter := application.NewRetryableAdapter(transport, tickets, "42161", workerAddr(0x10), owner, 100_000, fees, nil)
	ctx := context.Background()
	if err := adapter.RegisterCoordinator(ctx, owner, workerAddr(0x02)); err != nil {
		t.Fatalf("coordinator registration failed: %v", err)
	}
	if err := adapter.RegisterExecutor(ctx, owner, workerAddr(0x20)); err != nil {
		t.Fatalf("executor registration failed: %v", err)
	}
	return ResendWorker{Adapter: adapter, Tickets: tickets, MaxRetries: maxRetries}, adapter, tickets
}

func TestSweepDeliversPendingWithBumpedFee(t *testing.T) {
	transport := &flakyTransport{}
	worker, adapter, tickets := newWorkerFixture(t, transport, 5)
	ctx := context.Background()

	seedTicket(t, tickets, "ticket-1")
	if err := tickets.IncrementRetry(ctx, "ticket-1"); err != nil {
		t.Fatalf("retry bump failed: %v", err)
	}
	// base fee 1000 + 100000*100; retry 2 bumps per-gas fee by 50%
	if err := adapter.Fund(ctx, big.NewInt(1_000+100_000*150)); err != nil {
		t.Fatalf("fund failed: %v", err)
	}

	worker.Sweep(ctx)

	if len(transport.subs) != 1 {
		t.Fatalf("expected resubmission, got %d", len(transport.subs))
	}
	if got := transport.subs[0].FeeBudget.Int64(); got != 1_000+100_000*150 {
		t.Fatalf("expected bumped fee budget, got %d", got)
	}
	pending, _ := tickets.Pending(ctx)
	if len(pending) != 0 {
		t.Fatalf("delivered ticket must leave the pending queue")
	}
}

func TestSweepParksTicketAfterRetryBudget(t *testing.T) {
	transport := &flakyTransport{failures: 10}
	worker, adapter, tickets := newWorkerFixture(t, transport, 2)
	ctx := context.Background()

	seedTicket(t, tickets, "ticket-1")
	if err := adapter.Fund(ctx, big.NewInt(100_000_000)); err != nil {
		t.Fatalf("fund failed: %v", err)
	}

	worker.Sweep(ctx)
	pending, _ := tickets.Pending(ctx)
	if len(pending) != 1 || pending[0].RetryCount != 1 {
		t.Fatalf("first failure must keep the ticket pending with one retry, got %+v", pending)
	}

	worker.Sweep(ctx)
	pending, _ = tickets.Pending(ctx)
	if len(pending) != 0 {
		t.Fatalf("exhausted ticket must be parked as failed")
	}
}
