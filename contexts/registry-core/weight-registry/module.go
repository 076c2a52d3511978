package weightregistry

import (
	"log/slog"

	httpadapter "github.com/pk910/pg-onchain-weights/contexts/registry-core/weight-registry/adapters/http"
	"github.com/pk910/pg-onchain-weights/contexts/registry-core/weight-registry/adapters/memory"
	"github.com/pk910/pg-onchain-weights/contexts/registry-core/weight-registry/application"
	"github.com/pk910/pg-onchain-weights/contexts/registry-core/weight-registry/ports"
	"github.com/pk910/pg-onchain-weights/internal/shared/identity"
)

type Module struct {
	Service application.Service
	Handler httpadapter.Handler
	Store   *memory.Store
}

type Dependencies struct {
	Repository ports.Repository
	Owner      identity.Address
	Clock      ports.Clock
	Logger     *slog.Logger
}

func NewModule(deps Dependencies) Module {
	service := application.Service{
		Repo:   deps.Repository,
		Owner:  deps.Owner,
		Clock:  deps.Clock,
		Logger: deps.Logger,
	}
	return Module{
		Service: service,
		Handler: httpadapter.Handler{
			Service: service,
			Logger:  deps.Logger,
		},
	}
}

func NewInMemoryModule(owner identity.Address, logger *slog.Logger) Module {
	store := memory.NewStore()
	module := NewModule(Dependencies{
		Repository: store,
		Owner:      owner,
		Clock:      memory.SystemClock{},
		Logger:     logger,
	})
	module.Store = store
	return module
}
