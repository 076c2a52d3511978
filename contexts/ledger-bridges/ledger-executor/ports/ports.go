package ports

import (
	"context"
	"math/big"

	"github.com/pk910/pg-onchain-weights/internal/shared/identity"
	"github.com/pk910/pg-onchain-weights/internal/shared/splits"
)

// SplitWallet is the local allocation object the executor proxies commands
// into.
type SplitWallet interface {
	ApplyAllocations(ctx context.Context, set splits.AllocationSet) error
	CurrentAllocations(ctx context.Context) (splits.AllocationSet, error)
	Distribute(ctx context.Context, cmd splits.DistributeCommand) error
	ExecCalls(ctx context.Context, calls []byte) error
	SetPaused(ctx context.Context, paused bool) error
	TransferOwnership(ctx context.Context, newOwner identity.Address) error
}

// ValueSink receives swept refunds.
type ValueSink interface {
	Receive(ctx context.Context, from identity.Address, amount *big.Int) error
}
