package bridgeadapter

import (
	"log/slog"
	"time"

	"github.com/pk910/pg-onchain-weights/contexts/ledger-bridges/bridge-adapter/adapters/memory"
	"github.com/pk910/pg-onchain-weights/contexts/ledger-bridges/bridge-adapter/application"
	"github.com/pk910/pg-onchain-weights/contexts/ledger-bridges/bridge-adapter/application/workers"
	"github.com/pk910/pg-onchain-weights/contexts/ledger-bridges/bridge-adapter/ports"
	"github.com/pk910/pg-onchain-weights/internal/shared/identity"
)

// PushDependencies wire the fee-free bridge class.
type PushDependencies struct {
	Transport  ports.PushTransport
	LedgerID   string
	Address    identity.Address
	Owner      identity.Address
	GasCeiling uint64
	Logger     *slog.Logger
}

func NewPushModule(deps PushDependencies) *application.PushAdapter {
	return application.NewPushAdapter(deps.Transport, deps.LedgerID, deps.Address, deps.Owner, deps.GasCeiling, deps.Logger)
}

// RetryableDependencies wire the fee-funded bridge class and its resend
// worker.
type RetryableDependencies struct {
	Transport      ports.RetryableTransport
	Tickets        ports.TicketStore
	LedgerID       string
	Address        identity.Address
	Owner          identity.Address
	GasLimit       uint64
	DefaultFees    ports.FeeParams
	ResendInterval time.Duration
	MaxRetries     int
	Logger         *slog.Logger
}

type RetryableModule struct {
	Adapter *application.RetryableAdapter
	Tickets ports.TicketStore
	Resend  workers.ResendWorker
}

func NewRetryableModule(deps RetryableDependencies) RetryableModule {
	tickets := deps.Tickets
	if tickets == nil {
		tickets = memory.NewTicketStore()
	}
	adapter := application.NewRetryableAdapter(deps.Transport, tickets, deps.LedgerID, deps.Address, deps.Owner, deps.GasLimit, deps.DefaultFees, deps.Logger)
	return RetryableModule{
		Adapter: adapter,
		Tickets: tickets,
		Resend: workers.ResendWorker{
			Adapter:    adapter,
			Tickets:    tickets,
			Interval:   deps.ResendInterval,
			MaxRetries: deps.MaxRetries,
			Logger:     deps.Logger,
		},
	}
}
