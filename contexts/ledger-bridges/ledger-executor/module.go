package ledgerexecutor

import (
	"context"
	"log/slog"
	"math/big"

	"github.com/pk910/pg-onchain-weights/contexts/ledger-bridges/ledger-executor/adapters/memory"
	"github.com/pk910/pg-onchain-weights/contexts/ledger-bridges/ledger-executor/application"
	"github.com/pk910/pg-onchain-weights/contexts/ledger-bridges/ledger-executor/domain/services"
	"github.com/pk910/pg-onchain-weights/contexts/ledger-bridges/ledger-executor/ports"
	"github.com/pk910/pg-onchain-weights/internal/platform/messaging"
	"github.com/pk910/pg-onchain-weights/internal/shared/identity"
)

const consumerGroup = "ledger-executor"

// Module wires one ledger's executor with its split wallet.
type Module struct {
	Service *application.Service
	Wallet  ports.SplitWallet
}

type Dependencies struct {
	Wallet         ports.SplitWallet
	Verifier       services.OriginVerifier
	Sink           ports.ValueSink
	LedgerID       string
	Address        identity.Address
	Owner          identity.Address
	SweepThreshold *big.Int
	Logger         *slog.Logger
}

func NewModule(deps Dependencies) Module {
	wallet := deps.Wallet
	if wallet == nil {
		wallet = memory.NewWallet(deps.Owner)
	}
	sink := deps.Sink
	if sink == nil {
		// Refunds drain only into the allocation object itself.
		sink, _ = wallet.(ports.ValueSink)
	}
	service := application.NewService(wallet, deps.Verifier, sink, deps.LedgerID, deps.Address, deps.Owner, deps.SweepThreshold, deps.Logger)
	return Module{Service: service, Wallet: wallet}
}

// Attach subscribes the executor to its ledger's delivery topic.
func (m Module) Attach(ctx context.Context, bus *messaging.Bus) error {
	return bus.Subscribe(ctx, messaging.Topic(m.Service.LedgerID), consumerGroup, m.Service.HandleDelivery)
}
