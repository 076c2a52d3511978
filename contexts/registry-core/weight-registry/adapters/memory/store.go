package memory

import (
	"context"
	"sync"
	"time"

	"github.com/pk910/pg-onchain-weights/contexts/registry-core/weight-registry/domain/entities"
	domainerrors "github.com/pk910/pg-onchain-weights/contexts/registry-core/weight-registry/domain/errors"
	"github.com/pk910/pg-onchain-weights/internal/shared/identity"
)

// Store keeps records in an arena slice plus an address-to-index map.
// Deletion moves the last element into the freed slot and updates its map
// entry, then shrinks the arena, keeping removal O(1).
type Store struct {
	mu sync.RWMutex

	members     []entities.MemberRecord
	memberIndex map[identity.Address]int

	orgs     []entities.OrgRecord
	orgIndex map[identity.Address]int
}

func NewStore() *Store {
	return &Store{
		memberIndex: make(map[identity.Address]int),
		orgIndex:    make(map[identity.Address]int),
	}
}

type SystemClock struct{}

func (SystemClock) Now() time.Time {
	return time.Now().UTC()
}

func (s *Store) AddMember(_ context.Context, record entities.MemberRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.memberIndex[record.Address]; exists {
		return domainerrors.ErrMemberExists
	}
	s.memberIndex[record.Address] = len(s.members)
	s.members = append(s.members, record)
	return nil
}

func (s *Store) AddMembers(_ context.Context, records []entities.MemberRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	seen := make(map[identity.Address]bool, len(records))
	for _, record := range records {
		if _, exists := s.memberIndex[record.Address]; exists {
			return domainerrors.ErrMemberExists
		}
		if seen[record.Address] {
			return domainerrors.ErrMemberExists
		}
		seen[record.Address] = true
	}
	for _, record := range records {
		s.memberIndex[record.Address] = len(s.members)
		s.members = append(s.members, record)
	}
	return nil
}

func (s *Store) GetMember(_ context.Context, address identity.Address) (entities.MemberRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	index, ok := s.memberIndex[address]
	if !ok {
		return entities.MemberRecord{}, domainerrors.ErrMemberNotFound
	}
	return s.members[index], nil
}

func (s *Store) UpdateMember(_ context.Context, record entities.MemberRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	index, ok := s.memberIndex[record.Address]
	if !ok {
		return domainerrors.ErrMemberNotFound
	}
	s.members[index] = record
	return nil
}

func (s *Store) DeleteMember(_ context.Context, address identity.Address) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	index, ok := s.memberIndex[address]
	if !ok {
		return domainerrors.ErrMemberNotFound
	}
	last := len(s.members) - 1
	if index != last {
		moved := s.members[last]
		s.members[index] = moved
		s.memberIndex[moved.Address] = index
	}
	s.members = s.members[:last]
	delete(s.memberIndex, address)
	return nil
}

func (s *Store) ListMembers(_ context.Context) ([]entities.MemberRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return append([]entities.MemberRecord(nil), s.members...), nil
}

func (s *Store) AddOrg(_ context.Context, record entities.OrgRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.orgIndex[record.Address]; exists {
		return domainerrors.ErrOrgExists
	}
	s.orgIndex[record.Address] = len(s.orgs)
	s.orgs = append(s.orgs, record)
	return nil
}

func (s *Store) GetOrg(_ context.Context, address identity.Address) (entities.OrgRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	index, ok := s.orgIndex[address]
	if !ok {
		return entities.OrgRecord{}, domainerrors.ErrOrgNotFound
	}
	return s.orgs[index], nil
}

func (s *Store) UpdateOrg(_ context.Context, record entities.OrgRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	index, ok := s.orgIndex[record.Address]
	if !ok {
		return domainerrors.ErrOrgNotFound
	}
	s.orgs[index] = record
	return nil
}

func (s *Store) DeleteOrg(_ context.Context, address identity.Address) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	index, ok := s.orgIndex[address]
	if !ok {
		return domainerrors.ErrOrgNotFound
	}
	last := len(s.orgs) - 1
	if index != last {
		moved := s.orgs[last]
		s.orgs[index] = moved
		s.orgIndex[moved.Address] = index
	}
	s.orgs = s.orgs[:last]
	delete(s.orgIndex, address)
	return nil
}

func (s *Store) ListOrgs(_ context.Context) ([]entities.OrgRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return append([]entities.OrgRecord(nil), s.orgs...), nil
}
