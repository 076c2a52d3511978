package memory

import (
	"context"
	"sync"

	domainerrors "github.com/pk910/pg-onchain-weights/contexts/split-control/coordinator/domain/errors"
	"github.com/pk910/pg-onchain-weights/contexts/split-control/coordinator/ports"
)

// Registry is an in-memory bridge registry. Registration order is preserved
// so fan-outs hit ledgers deterministically.
type Registry struct {
	mu      sync.RWMutex
	order   []string
	entries map[string]ports.BridgeAdapter
}

func NewRegistry() *Registry {
	return &Registry{entries: make(map[string]ports.BridgeAdapter)}
}

var _ ports.BridgeRegistry = (*Registry)(nil)

func (r *Registry) Register(_ context.Context, ledgerID string, adapter ports.BridgeAdapter) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.entries[ledgerID]; ok {
		return domainerrors.ErrBridgeExists
	}
	r.entries[ledgerID] = adapter
	r.order = append(r.order, ledgerID)
	return nil
}

func (r *Registry) Remove(_ context.Context, ledgerID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.entries[ledgerID]; !ok {
		return domainerrors.ErrBridgeNotFound
	}
	delete(r.entries, ledgerID)
	for i, id := range r.order {
		if id == ledgerID {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	return nil
}

func (r *Registry) Get(_ context.Context, ledgerID string) (ports.BridgeAdapter, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	adapter, ok := r.entries[ledgerID]
	if !ok {
		return nil, domainerrors.ErrBridgeNotFound
	}
	return adapter, nil
}

func (r *Registry) List(_ context.Context) ([]ports.Registration, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	registrations := make([]ports.Registration, 0, len(r.order))
	for _, id := range r.order {
		registrations = append(registrations, ports.Registration{LedgerID: id, Adapter: r.entries[id]})
	}
	return registrations, nil
}
