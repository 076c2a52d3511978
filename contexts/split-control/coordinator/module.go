package coordinator

import (
	"log/slog"

	"github.com/pk910/pg-onchain-weights/contexts/split-control/coordinator/adapters/memory"
	"github.com/pk910/pg-onchain-weights/contexts/split-control/coordinator/application"
	"github.com/pk910/pg-onchain-weights/contexts/split-control/coordinator/ports"
	"github.com/pk910/pg-onchain-weights/internal/shared/identity"
)

// Module wires the coordinator service with its bridge registry.
type Module struct {
	Service  application.Service
	Registry ports.BridgeRegistry
}

type Dependencies struct {
	Weights         ports.WeightSource
	Primary         ports.AllocationObject
	Bridges         ports.BridgeRegistry
	Owner           identity.Address
	Self            identity.Address
	PrimaryLedgerID string
	Logger          *slog.Logger
}

func NewModule(deps Dependencies) Module {
	logger := application.ResolveLogger(deps.Logger)
	bridges := deps.Bridges
	if bridges == nil {
		bridges = memory.NewRegistry()
	}
	return Module{
		Service: application.Service{
			Weights:         deps.Weights,
			Primary:         deps.Primary,
			Bridges:         bridges,
			Owner:           deps.Owner,
			Self:            deps.Self,
			PrimaryLedgerID: deps.PrimaryLedgerID,
			Logger:          logger,
		},
		Registry: bridges,
	}
}
