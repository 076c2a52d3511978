package application

import (
	"context"
	"encoding/json"
	"errors"
	"math/big"
	"testing"

	memoryadapter "github.com/pk910/pg-onchain-weights/contexts/ledger-bridges/ledger-executor/adapters/memory"
	domainerrors "github.com/pk910/pg-onchain-weights/contexts/ledger-bridges/ledger-executor/domain/errors"
	"github.com/pk910/pg-onchain-weights/contexts/ledger-bridges/ledger-executor/domain/services"
	"github.com/pk910/pg-onchain-weights/internal/platform/messaging"
	"github.com/pk910/pg-onchain-weights/internal/shared/events"
	"github.com/pk910/pg-onchain-weights/internal/shared/identity"
	"github.com/pk910/pg-onchain-weights/internal/shared/splits"
)

var (
	remoteAdapter = execAddr(0x01)
	receiver      = execAddr(0x02)
	executorOwner = execAddr(0x03)
	randomSender  = execAddr(0x04)
)

func execAddr(suffix byte) identity.Address {
	var a identity.Address
	a[19] = suffix
	return a
}

type countingWallet struct {
	memoryadapter.Wallet
	applies int
}

func (w *countingWallet) ApplyAllocations(ctx context.Context, set splits.AllocationSet) error {
	w.applies++
	return w.Wallet.ApplyAllocations(ctx, set)
}

func aliasedVerifier() services.OriginVerifier {
	return services.OriginVerifier{Mode: services.VerifyAliased, RemoteAdapter: remoteAdapter}
}

func pushVerifier() services.OriginVerifier {
	return services.OriginVerifier{Mode: services.VerifyPush, RemoteAdapter: remoteAdapter, Receiver: receiver}
}

func commandDelivery(t *testing.T, eventType string, payload any, caller identity.Address) messaging.Delivery {
	t.Helper()
	data, err := json.Marshal(payload)
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}
	return messaging.Delivery{
		Envelope: events.Envelope{EventID: "evt-1", EventType: eventType, Data: data},
		Caller:   caller,
	}
}

func allocationSet() splits.AllocationSet {
	return splits.AllocationSet{Entries: []splits.Entry{
		{Address: execAddr(0x10), Ppm: splits.TotalPpm},
	}}
}

func TestAliasedDeliveryExecutes(t *testing.T) {
	wallet := &countingWallet{}
	service := NewService(wallet, aliasedVerifier(), nil, "42161", execAddr(0x30), executorOwner, nil, nil)

	delivery := commandDelivery(t, splits.CommandUpdateSplit, splits.UpdateSplitCommand{Allocations: allocationSet()}, remoteAdapter.Alias())
	if err := service.HandleDelivery(context.Background(), delivery); err != nil {
		t.Fatalf("delivery failed: %v", err)
	}
	current, _ := wallet.CurrentAllocations(context.Background())
	if !current.Equal(allocationSet()) {
		t.Fatalf("allocations not applied: %+v", current)
	}
}

func TestUnaliasedCallerIsRejectedWithoutStateChange(t *testing.T) {
	wallet := &countingWallet{}
	service := NewService(wallet, aliasedVerifier(), nil, "42161", execAddr(0x30), executorOwner, nil, nil)

	delivery := commandDelivery(t, splits.CommandUpdateSplit, splits.UpdateSplitCommand{Allocations: allocationSet()}, remoteAdapter)
	if err := service.HandleDelivery(context.Background(), delivery); !errors.Is(err, domainerrors.ErrNotAuthorized) {
		t.Fatalf("expected origin rejection, got %v", err)
	}
	if wallet.applies != 0 {
		t.Fatalf("rejected delivery must not touch the wallet")
	}
}

func TestPushDeliveryChecksCallerAndReportedSender(t *testing.T) {
	wallet := &countingWallet{}
	service := NewService(wallet, pushVerifier(), nil, "10", execAddr(0x30), executorOwner, nil, nil)
	ctx := context.Background()

	delivery := commandDelivery(t, splits.CommandSetPaused, splits.SetPausedCommand{Paused: true}, receiver)
	delivery.ReportedSender = remoteAdapter
	if err := service.HandleDelivery(ctx, delivery); err != nil {
		t.Fatalf("valid push delivery failed: %v", err)
	}
	if !wallet.Paused() {
		t.Fatalf("pause not applied")
	}

	spoofed := commandDelivery(t, splits.CommandSetPaused, splits.SetPausedCommand{Paused: false}, receiver)
	spoofed.ReportedSender = randomSender
	if err := service.HandleDelivery(ctx, spoofed); !errors.Is(err, domainerrors.ErrNotAuthorized) {
		t.Fatalf("spoofed sender must be rejected, got %v", err)
	}
	if !wallet.Paused() {
		t.Fatalf("rejected delivery must not change wallet state")
	}
}

func TestRedeliveredUpdateIsIdempotent(t *testing.T) {
	wallet := &countingWallet{}
	service := NewService(wallet, aliasedVerifier(), nil, "42161", execAddr(0x30), executorOwner, nil, nil)
	ctx := context.Background()

	delivery := commandDelivery(t, splits.CommandUpdateSplit, splits.UpdateSplitCommand{Allocations: allocationSet()}, remoteAdapter.Alias())
	if err := service.HandleDelivery(ctx, delivery); err != nil {
		t.Fatalf("first delivery failed: %v", err)
	}
	if err := service.HandleDelivery(ctx, delivery); err != nil {
		t.Fatalf("redelivery failed: %v", err)
	}
	if wallet.applies != 1 {
		t.Fatalf("duplicate delivery must not reapply, applies=%d", wallet.applies)
	}
}

func TestUnsolicitedValueAccumulates(t *testing.T) {
	service := NewService(&countingWallet{}, aliasedVerifier(), nil, "42161", execAddr(0x30), executorOwner, nil, nil)
	ctx := context.Background()

	refund := messaging.Delivery{
		Envelope: events.Envelope{EventID: "r1", EventType: splits.BridgeRefund},
		Caller:   randomSender,
		Value:    big.NewInt(700),
	}
	if err := service.HandleDelivery(ctx, refund); err != nil {
		t.Fatalf("refund delivery failed: %v", err)
	}
	plain := messaging.Delivery{Caller: randomSender, Value: big.NewInt(300)}
	if err := service.HandleDelivery(ctx, plain); err != nil {
		t.Fatalf("plain transfer failed: %v", err)
	}
	if service.RefundBalance().Int64() != 1_000 {
		t.Fatalf("expected 1000 accumulated, got %s", service.RefundBalance())
	}
}

func TestAutoSweepAtThreshold(t *testing.T) {
	sink := memoryadapter.NewAccount()
	service := NewService(&countingWallet{}, aliasedVerifier(), sink, "42161", execAddr(0x30), executorOwner, big.NewInt(1_000), nil)
	ctx := context.Background()

	first := messaging.Delivery{Caller: randomSender, Value: big.NewInt(999)}
	if err := service.HandleDelivery(ctx, first); err != nil {
		t.Fatalf("transfer failed: %v", err)
	}
	if sink.Balance().Sign() != 0 {
		t.Fatalf("sweep must not fire below threshold")
	}

	second := messaging.Delivery{Caller: randomSender, Value: big.NewInt(1)}
	if err := service.HandleDelivery(ctx, second); err != nil {
		t.Fatalf("transfer failed: %v", err)
	}
	if sink.Balance().Int64() != 1_000 {
		t.Fatalf("threshold sweep must forward the whole balance, got %s", sink.Balance())
	}
	if service.RefundBalance().Sign() != 0 {
		t.Fatalf("swept balance must reset, got %s", service.RefundBalance())
	}
}

func TestForwardRefundsNoopSweeps(t *testing.T) {
	sink := memoryadapter.NewAccount()
	service := NewService(&countingWallet{}, aliasedVerifier(), sink, "42161", execAddr(0x30), executorOwner, nil, nil)
	ctx := context.Background()

	// empty balance: the no-op does nothing
	noop := commandDelivery(t, splits.BridgeNoop, struct{}{}, remoteAdapter.Alias())
	if err := service.HandleDelivery(ctx, noop); err != nil {
		t.Fatalf("empty no-op failed: %v", err)
	}

	transfer := messaging.Delivery{Caller: randomSender, Value: big.NewInt(450)}
	if err := service.HandleDelivery(ctx, transfer); err != nil {
		t.Fatalf("transfer failed: %v", err)
	}
	if err := service.HandleDelivery(ctx, noop); err != nil {
		t.Fatalf("no-op sweep failed: %v", err)
	}
	if sink.Balance().Int64() != 450 {
		t.Fatalf("no-op must forward accumulated refunds, got %s", sink.Balance())
	}
}

func TestManualSweepIsOwnerGatedAndRejectsZero(t *testing.T) {
	sink := memoryadapter.NewAccount()
	service := NewService(&countingWallet{}, aliasedVerifier(), sink, "42161", execAddr(0x30), executorOwner, nil, nil)
	ctx := context.Background()

	if err := service.SweepRefunds(ctx, randomSender); !errors.Is(err, domainerrors.ErrNotOwner) {
		t.Fatalf("sweep must be owner gated, got %v", err)
	}
	if err := service.SweepRefunds(ctx, executorOwner); !errors.Is(err, domainerrors.ErrZeroSweep) {
		t.Fatalf("zero balance sweep must fail, got %v", err)
	}

	transfer := messaging.Delivery{Caller: randomSender, Value: big.NewInt(120)}
	if err := service.HandleDelivery(ctx, transfer); err != nil {
		t.Fatalf("transfer failed: %v", err)
	}
	if err := service.SweepRefunds(ctx, executorOwner); err != nil {
		t.Fatalf("manual sweep failed: %v", err)
	}
	if sink.Balance().Int64() != 120 {
		t.Fatalf("manual sweep must forward the balance, got %s", sink.Balance())
	}
}

func TestUnknownAndMalformedCommands(t *testing.T) {
	service := NewService(&countingWallet{}, aliasedVerifier(), nil, "42161", execAddr(0x30), executorOwner, nil, nil)
	ctx := context.Background()

	unknown := commandDelivery(t, "split.destroy", struct{}{}, remoteAdapter.Alias())
	if err := service.HandleDelivery(ctx, unknown); !errors.Is(err, domainerrors.ErrUnknownCommand) {
		t.Fatalf("expected unknown command error, got %v", err)
	}

	malformed := messaging.Delivery{
		Envelope: events.Envelope{EventID: "m1", EventType: splits.CommandUpdateSplit, Data: json.RawMessage(`{`)},
		Caller:   remoteAdapter.Alias(),
	}
	if err := service.HandleDelivery(ctx, malformed); !errors.Is(err, domainerrors.ErrBadPayload) {
		t.Fatalf("expected payload error, got %v", err)
	}
}
