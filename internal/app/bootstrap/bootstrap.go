package bootstrap

import (
	"context"
	"crypto/sha256"
	"fmt"
	"log/slog"
	"math/big"
	"strings"

	"golang.org/x/sync/errgroup"

	bridgeadapter "github.com/pk910/pg-onchain-weights/contexts/ledger-bridges/bridge-adapter"
	bridgeworkers "github.com/pk910/pg-onchain-weights/contexts/ledger-bridges/bridge-adapter/application/workers"
	adapterports "github.com/pk910/pg-onchain-weights/contexts/ledger-bridges/bridge-adapter/ports"
	ledgerexecutor "github.com/pk910/pg-onchain-weights/contexts/ledger-bridges/ledger-executor"
	execmemory "github.com/pk910/pg-onchain-weights/contexts/ledger-bridges/ledger-executor/adapters/memory"
	execservices "github.com/pk910/pg-onchain-weights/contexts/ledger-bridges/ledger-executor/domain/services"
	weightregistry "github.com/pk910/pg-onchain-weights/contexts/registry-core/weight-registry"
	registrymemory "github.com/pk910/pg-onchain-weights/contexts/registry-core/weight-registry/adapters/memory"
	registrypostgres "github.com/pk910/pg-onchain-weights/contexts/registry-core/weight-registry/adapters/postgres"
	coordinator "github.com/pk910/pg-onchain-weights/contexts/split-control/coordinator"
	"github.com/pk910/pg-onchain-weights/internal/platform/config"
	"github.com/pk910/pg-onchain-weights/internal/platform/db"
	"github.com/pk910/pg-onchain-weights/internal/platform/httpserver"
	"github.com/pk910/pg-onchain-weights/internal/platform/messaging"
	"github.com/pk910/pg-onchain-weights/internal/shared/identity"
	"github.com/pk910/pg-onchain-weights/internal/shared/splits"

	execapp "github.com/pk910/pg-onchain-weights/contexts/ledger-bridges/ledger-executor/application"
)

// Package bootstrap is the composition root.
// Keep construction/wiring here so module code stays framework-agnostic.

type APIApp struct {
	server    *httpserver.Server
	postgres  *db.Postgres
	bus       *messaging.Bus
	executors []ledgerexecutor.Module
	resenders []bridgeworkers.ResendWorker
	logger    *slog.Logger
}

// registryWeightSource adapts the registry service to the coordinator's
// weight source port.
type registryWeightSource struct {
	registry weightregistry.Module
}

func (s registryWeightSource) ComputeAllocations(ctx context.Context, cutoffYear uint16, cutoffMonth uint8) (splits.AllocationSet, error) {
	result, err := s.registry.Service.GetAllWeights(ctx, cutoffYear, cutoffMonth)
	if err != nil {
		return splits.AllocationSet{}, err
	}
	return result.Allocations, nil
}

// endpointAddress derives deterministic endpoint identities per ledger until
// real key material is configured.
func endpointAddress(ledgerID, role string) identity.Address {
	sum := sha256.Sum256([]byte("bridge/" + ledgerID + "/" + role))
	var addr identity.Address
	copy(addr[:], sum[:20])
	return addr
}

func BuildAPI() (*APIApp, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	logger := slog.Default().With("service", cfg.ServiceName, "process", "api")

	owner, err := identity.ParseAddress(cfg.OwnerAddress)
	if err != nil {
		return nil, fmt.Errorf("parse OWNER_ADDRESS: %w", err)
	}
	self, err := identity.ParseAddress(cfg.CoordinatorAddress)
	if err != nil {
		return nil, fmt.Errorf("parse COORDINATOR_ADDRESS: %w", err)
	}

	var pg *db.Postgres
	var registryModule weightregistry.Module
	if strings.TrimSpace(cfg.PostgresDSN) != "" {
		pg, err = db.Connect(cfg.PostgresDSN)
		if err != nil {
			return nil, err
		}
		repo := registrypostgres.NewRepository(pg.DB, logger)
		if err := registrypostgres.Migrate(pg.DB); err != nil {
			return nil, err
		}
		registryModule = weightregistry.NewModule(weightregistry.Dependencies{
			Repository: repo,
			Owner:      owner,
			Clock:      registrymemory.SystemClock{},
			Logger:     logger,
		})
	} else {
		registryModule = weightregistry.NewInMemoryModule(owner, logger)
	}

	bus := messaging.NewBus(logger)
	primaryWallet := execmemory.NewWallet(owner)

	coordModule := coordinator.NewModule(coordinator.Dependencies{
		Weights:         registryWeightSource{registry: registryModule},
		Primary:         primaryWallet,
		Owner:           owner,
		Self:            self,
		PrimaryLedgerID: cfg.PrimaryLedgerID,
		Logger:          logger,
	})

	app := &APIApp{
		postgres: pg,
		bus:      bus,
		logger:   logger,
	}
	executors := make(map[string]*execapp.Service)
	ctx := context.Background()

	for _, ledgerID := range cfg.PushLedgerIDs {
		adapterAddr := endpointAddress(ledgerID, "adapter")
		receiverAddr := endpointAddress(ledgerID, "receiver")
		executorAddr := endpointAddress(ledgerID, "executor")

		execModule := ledgerexecutor.NewModule(ledgerexecutor.Dependencies{
			Verifier: execservices.OriginVerifier{
				Mode:          execservices.VerifyPush,
				RemoteAdapter: adapterAddr,
				Receiver:      receiverAddr,
			},
			LedgerID:       ledgerID,
			Address:        executorAddr,
			Owner:          owner,
			SweepThreshold: big.NewInt(cfg.SweepThreshold),
			Logger:         logger,
		})
		app.executors = append(app.executors, execModule)
		executors[ledgerID] = execModule.Service

		pushAdapter := bridgeadapter.NewPushModule(bridgeadapter.PushDependencies{
			Transport: messaging.PushTransport{
				Bus:      bus,
				LedgerID: ledgerID,
				Receiver: receiverAddr,
				Logger:   logger,
			},
			LedgerID:   ledgerID,
			Address:    adapterAddr,
			Owner:      owner,
			GasCeiling: cfg.PushGasCeiling,
			Logger:     logger,
		})
		if err := pushAdapter.RegisterCoordinator(ctx, owner, self); err != nil {
			return nil, err
		}
		if err := coordModule.Service.AddL2Module(ctx, owner, ledgerID, pushAdapter); err != nil {
			return nil, err
		}
	}

	for _, ledgerID := range cfg.RetryableLedgerIDs {
		adapterAddr := endpointAddress(ledgerID, "adapter")
		executorAddr := endpointAddress(ledgerID, "executor")

		execModule := ledgerexecutor.NewModule(ledgerexecutor.Dependencies{
			Verifier: execservices.OriginVerifier{
				Mode:          execservices.VerifyAliased,
				RemoteAdapter: adapterAddr,
			},
			LedgerID:       ledgerID,
			Address:        executorAddr,
			Owner:          owner,
			SweepThreshold: big.NewInt(cfg.SweepThreshold),
			Logger:         logger,
		})
		app.executors = append(app.executors, execModule)
		executors[ledgerID] = execModule.Service

		retryableModule := bridgeadapter.NewRetryableModule(bridgeadapter.RetryableDependencies{
			Transport: messaging.RetryableTransport{
				Bus:              bus,
				LedgerID:         ledgerID,
				SubmissionCost:   big.NewInt(cfg.SubmissionCost),
				ExecutionFeeRate: big.NewInt(cfg.ExecutionFee),
				Logger:           logger,
			},
			LedgerID: ledgerID,
			Address:  adapterAddr,
			Owner:    owner,
			GasLimit: cfg.BridgeGasLimit,
			DefaultFees: adapterports.FeeParams{
				SubmissionCost: big.NewInt(cfg.SubmissionCost),
				MaxFeePerGas:   big.NewInt(cfg.MaxFeePerGas),
			},
			ResendInterval: cfg.ResendInterval,
			MaxRetries:     cfg.ResendMaxRetry,
			Logger:         logger,
		})
		if err := retryableModule.Adapter.RegisterCoordinator(ctx, owner, self); err != nil {
			return nil, err
		}
		if err := retryableModule.Adapter.RegisterExecutor(ctx, owner, executorAddr); err != nil {
			return nil, err
		}
		if err := coordModule.Service.AddL2Module(ctx, owner, ledgerID, retryableModule.Adapter); err != nil {
			return nil, err
		}
		app.resenders = append(app.resenders, retryableModule.Resend)
	}

	app.server = httpserver.New(registryModule, coordModule.Service, executors, logger, normalizeAddr(cfg.HTTPPort))
	return app, nil
}

// Run attaches the executors to the bus, starts the resend workers and
// serves HTTP. The resend workers live in-process with the adapters whose
// ticket stores they drain.
func (a *APIApp) Run(ctx context.Context) error {
	for _, executor := range a.executors {
		if err := executor.Attach(ctx, a.bus); err != nil {
			return err
		}
	}
	a.logger.Info("api app started",
		"event", "bootstrap_api_started",
		"module", "internal/app/bootstrap",
		"layer", "platform",
		"resenders", len(a.resenders),
	)
	group, ctx := errgroup.WithContext(ctx)
	for _, resender := range a.resenders {
		resender := resender
		group.Go(func() error {
			return resender.Run(ctx)
		})
	}
	group.Go(a.server.Start)
	return group.Wait()
}

func (a *APIApp) Close() error {
	return a.postgres.Close()
}

func normalizeAddr(port string) string {
	port = strings.TrimSpace(port)
	if port == "" {
		return ":8080"
	}
	if strings.HasPrefix(port, ":") {
		return port
	}
	return ":" + port
}
