package config

import (
	"time"

	"github.com/caarlos0/env/v11"
)

// Config is centralized process configuration.
// Keep infra values here and pass typed config into builders.
type Config struct {
	ServiceName string `env:"SERVICE_NAME" envDefault:"pg-onchain-weights"`
	HTTPPort    string `env:"HTTP_PORT" envDefault:"8080"`
	PostgresDSN string `env:"POSTGRES_DSN"`

	// OwnerAddress controls every mutating operation across the registry,
	// the coordinator and the bridge adapters.
	OwnerAddress string `env:"OWNER_ADDRESS" envDefault:"0x00000000000000000000000000000000000000aa"`
	// CoordinatorAddress is the identity the coordinator presents to bridge
	// adapters.
	CoordinatorAddress string `env:"COORDINATOR_ADDRESS" envDefault:"0x00000000000000000000000000000000000000c0"`
	PrimaryLedgerID    string `env:"PRIMARY_LEDGER_ID" envDefault:"1"`

	// PushLedgerIDs run the fee-free transport class; RetryableLedgerIDs the
	// fee-funded one.
	PushLedgerIDs      []string `env:"PUSH_LEDGER_IDS" envSeparator:"," envDefault:"10"`
	RetryableLedgerIDs []string `env:"RETRYABLE_LEDGER_IDS" envSeparator:"," envDefault:"42161"`

	PushGasCeiling uint64        `env:"PUSH_GAS_CEILING" envDefault:"400000"`
	BridgeGasLimit uint64        `env:"BRIDGE_GAS_LIMIT" envDefault:"1000000"`
	SubmissionCost int64         `env:"BRIDGE_SUBMISSION_COST" envDefault:"1400000000000"`
	MaxFeePerGas   int64         `env:"BRIDGE_MAX_FEE_PER_GAS" envDefault:"100000000"`
	ExecutionFee   int64         `env:"TRANSPORT_EXECUTION_FEE" envDefault:"50000000"`
	SweepThreshold int64         `env:"EXECUTOR_SWEEP_THRESHOLD" envDefault:"1000000000000000"`
	ResendInterval time.Duration `env:"BRIDGE_RESEND_INTERVAL" envDefault:"30s"`
	ResendMaxRetry int           `env:"BRIDGE_RESEND_MAX_RETRIES" envDefault:"5"`
}

func Load() (Config, error) {
	return env.ParseAs[Config]()
}
