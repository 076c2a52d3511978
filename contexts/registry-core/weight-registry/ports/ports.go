package ports

import (
	"context"
	"time"

	"github.com/pk910/pg-onchain-weights/contexts/registry-core/weight-registry/domain/entities"
	"github.com/pk910/pg-onchain-weights/internal/shared/identity"
	"github.com/pk910/pg-onchain-weights/internal/shared/splits"
)

type AddMemberInput struct {
	Address        identity.Address
	JoinYear       uint16
	JoinMonth      uint8
	PartTimeFactor uint8
	MonthsOnBreak  uint16
	Active         bool
}

// UpdateMemberInput mutates status fields only; the join date and part-time
// factor are immutable after creation.
type UpdateMemberInput struct {
	Address       identity.Address
	MonthsOnBreak uint16
	Active        bool
}

type AddOrgInput struct {
	Address       identity.Address
	AllocationPpm uint32
	Active        bool
}

type UpdateOrgInput struct {
	Address       identity.Address
	AllocationPpm uint32
	Active        bool
}

// WeightResult is one computed allocation set plus the metered cost of the
// computation for observability.
type WeightResult struct {
	Allocations splits.AllocationSet
	CostUnits   uint64
	ComputedAt  time.Time
}

// Repository stores member and org records. List order is insertion order;
// deletion reuses the freed slot via swap-with-last, so listings after a
// delete show the moved record at the deleted record's position.
type Repository interface {
	AddMember(ctx context.Context, record entities.MemberRecord) error
	AddMembers(ctx context.Context, records []entities.MemberRecord) error
	GetMember(ctx context.Context, address identity.Address) (entities.MemberRecord, error)
	UpdateMember(ctx context.Context, record entities.MemberRecord) error
	DeleteMember(ctx context.Context, address identity.Address) error
	ListMembers(ctx context.Context) ([]entities.MemberRecord, error)

	AddOrg(ctx context.Context, record entities.OrgRecord) error
	GetOrg(ctx context.Context, address identity.Address) (entities.OrgRecord, error)
	UpdateOrg(ctx context.Context, record entities.OrgRecord) error
	DeleteOrg(ctx context.Context, address identity.Address) error
	ListOrgs(ctx context.Context) ([]entities.OrgRecord, error)
}

type Clock interface {
	Now() time.Time
}
