package memory

import (
	"context"
	"sync"

	domainerrors "github.com/pk910/pg-onchain-weights/contexts/ledger-bridges/bridge-adapter/domain/errors"
	"github.com/pk910/pg-onchain-weights/contexts/ledger-bridges/bridge-adapter/ports"
	"github.com/pk910/pg-onchain-weights/internal/shared/outbox"
)

// TicketStore is an in-memory resend queue preserving append order.
type TicketStore struct {
	mu      sync.Mutex
	order   []string
	tickets map[string]*outbox.Ticket
}

func NewTicketStore() *TicketStore {
	return &TicketStore{tickets: make(map[string]*outbox.Ticket)}
}

var _ ports.TicketStore = (*TicketStore)(nil)

func (s *TicketStore) Append(_ context.Context, ticket outbox.Ticket) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.tickets[ticket.ID]; ok {
		return nil
	}
	stored := ticket
	s.tickets[ticket.ID] = &stored
	s.order = append(s.order, ticket.ID)
	return nil
}

func (s *TicketStore) Pending(_ context.Context) ([]outbox.Ticket, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	pending := make([]outbox.Ticket, 0)
	for _, id := range s.order {
		if ticket := s.tickets[id]; ticket.Status == outbox.StatusPending {
			pending = append(pending, *ticket)
		}
	}
	return pending, nil
}

func (s *TicketStore) MarkDelivered(_ context.Context, id string) error {
	return s.setStatus(id, outbox.StatusDelivered)
}

func (s *TicketStore) MarkFailed(_ context.Context, id string) error {
	return s.setStatus(id, outbox.StatusFailed)
}

func (s *TicketStore) IncrementRetry(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	ticket, ok := s.tickets[id]
	if !ok {
		return domainerrors.ErrTicketNotFound
	}
	ticket.RetryCount++
	return nil
}

func (s *TicketStore) setStatus(id, status string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	ticket, ok := s.tickets[id]
	if !ok {
		return domainerrors.ErrTicketNotFound
	}
	ticket.Status = status
	return nil
}
