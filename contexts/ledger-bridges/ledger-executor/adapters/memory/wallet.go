package memory

import (
	"context"
	"math/big"
	"sync"

	domainerrors "github.com/pk910/pg-onchain-weights/contexts/ledger-bridges/ledger-executor/domain/errors"
	"github.com/pk910/pg-onchain-weights/contexts/ledger-bridges/ledger-executor/ports"
	"github.com/pk910/pg-onchain-weights/internal/shared/identity"
	"github.com/pk910/pg-onchain-weights/internal/shared/splits"
)

// Wallet is an in-memory split wallet: the allocation object living on one
// ledger. The same type backs the primary ledger object and the per-ledger
// executor targets.
type Wallet struct {
	mu       sync.Mutex
	set      splits.AllocationSet
	paused   bool
	owner    identity.Address
	execLog  [][]byte
	payouts  []splits.DistributeCommand
	received *big.Int
}

func NewWallet(owner identity.Address) *Wallet {
	return &Wallet{owner: owner, received: big.NewInt(0)}
}

var (
	_ ports.SplitWallet = (*Wallet)(nil)
	_ ports.ValueSink   = (*Wallet)(nil)
)

func (w *Wallet) ApplyAllocations(_ context.Context, set splits.AllocationSet) error {
	if err := set.Validate(); err != nil {
		return err
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	stored := splits.AllocationSet{
		Entries:      append([]splits.Entry(nil), set.Entries...),
		IncentiveBps: set.IncentiveBps,
	}
	w.set = stored
	return nil
}

func (w *Wallet) CurrentAllocations(_ context.Context) (splits.AllocationSet, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	return splits.AllocationSet{
		Entries:      append([]splits.Entry(nil), w.set.Entries...),
		IncentiveBps: w.set.IncentiveBps,
	}, nil
}

// Distribute releases held assets. The caller must present the currently
// applied allocation set; a stale or wrong set is rejected.
func (w *Wallet) Distribute(_ context.Context, cmd splits.DistributeCommand) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.paused {
		return domainerrors.ErrWalletPaused
	}
	if !w.set.Equal(cmd.Allocations) {
		return domainerrors.ErrAllocationMismatch
	}
	w.payouts = append(w.payouts, cmd)
	return nil
}

func (w *Wallet) ExecCalls(_ context.Context, calls []byte) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.execLog = append(w.execLog, append([]byte(nil), calls...))
	return nil
}

func (w *Wallet) SetPaused(_ context.Context, paused bool) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.paused = paused
	return nil
}

func (w *Wallet) TransferOwnership(_ context.Context, newOwner identity.Address) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.owner = newOwner
	return nil
}

func (w *Wallet) Paused() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.paused
}

func (w *Wallet) Owner() identity.Address {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.owner
}

func (w *Wallet) Payouts() []splits.DistributeCommand {
	w.mu.Lock()
	defer w.mu.Unlock()
	return append([]splits.DistributeCommand(nil), w.payouts...)
}

func (w *Wallet) ExecLog() [][]byte {
	w.mu.Lock()
	defer w.mu.Unlock()
	return append([][]byte(nil), w.execLog...)
}

// Receive makes the wallet its own sweep destination: accumulated refunds
// drain into the allocation object they fund.
func (w *Wallet) Receive(_ context.Context, _ identity.Address, amount *big.Int) error {
	if amount == nil || amount.Sign() <= 0 {
		return nil
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.received == nil {
		w.received = new(big.Int)
	}
	w.received.Add(w.received, amount)
	return nil
}

func (w *Wallet) Received() *big.Int {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.received == nil {
		return new(big.Int)
	}
	return new(big.Int).Set(w.received)
}

// Account is an in-memory value sink used as sweep destination.
type Account struct {
	mu      sync.Mutex
	balance *big.Int
}

func NewAccount() *Account {
	return &Account{balance: big.NewInt(0)}
}

var _ ports.ValueSink = (*Account)(nil)

func (a *Account) Receive(_ context.Context, _ identity.Address, amount *big.Int) error {
	if amount == nil || amount.Sign() <= 0 {
		return nil
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	a.balance.Add(a.balance, amount)
	return nil
}

func (a *Account) Balance() *big.Int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return new(big.Int).Set(a.balance)
}
