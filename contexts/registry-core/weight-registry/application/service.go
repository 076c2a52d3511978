package application

import (
	"context"
	"log/slog"
	"time"

	"github.com/pk910/pg-onchain-weights/contexts/registry-core/weight-registry/domain/entities"
	domainerrors "github.com/pk910/pg-onchain-weights/contexts/registry-core/weight-registry/domain/errors"
	"github.com/pk910/pg-onchain-weights/contexts/registry-core/weight-registry/domain/services"
	"github.com/pk910/pg-onchain-weights/contexts/registry-core/weight-registry/ports"
	"github.com/pk910/pg-onchain-weights/internal/shared/identity"
)

const (
	minJoinYear = 1970
	maxJoinYear = 2100
)

// Service owns member and org records and derives allocation sets on demand.
// Mutations are restricted to the registry owner; the caller identity is
// passed explicitly into every operation.
type Service struct {
	Repo   ports.Repository
	Owner  identity.Address
	Clock  ports.Clock
	Logger *slog.Logger
}

func (s Service) authorize(caller identity.Address) error {
	if caller.IsZero() || caller != s.Owner {
		return domainerrors.ErrNotAuthorized
	}
	return nil
}

func (s Service) AddMember(ctx context.Context, caller identity.Address, input ports.AddMemberInput) error {
	if err := s.authorize(caller); err != nil {
		return err
	}
	if err := validateMemberInput(input); err != nil {
		return err
	}
	if err := s.Repo.AddMember(ctx, entities.MemberRecord{
		Address:        input.Address,
		JoinYear:       input.JoinYear,
		JoinMonth:      input.JoinMonth,
		PartTimeFactor: input.PartTimeFactor,
		MonthsOnBreak:  input.MonthsOnBreak,
		Active:         input.Active,
	}); err != nil {
		return err
	}
	ResolveLogger(s.Logger).Info("member added",
		"event", "weight_registry_member_added",
		"module", "registry-core/weight-registry",
		"layer", "application",
		"member", input.Address.Hex(),
		"join_year", input.JoinYear,
		"join_month", input.JoinMonth,
	)
	return nil
}

// ImportMembers decodes a fixed-width binary record stream and registers
// every record, failing the whole batch when any record is malformed or
// out of range. A failing batch leaves prior state untouched.
func (s Service) ImportMembers(ctx context.Context, caller identity.Address, payload []byte) (int, error) {
	if err := s.authorize(caller); err != nil {
		return 0, err
	}
	records, err := services.DecodeMemberRecords(payload)
	if err != nil {
		return 0, err
	}
	for _, record := range records {
		if err := validateMemberInput(ports.AddMemberInput{
			Address:        record.Address,
			JoinYear:       record.JoinYear,
			JoinMonth:      record.JoinMonth,
			PartTimeFactor: record.PartTimeFactor,
			MonthsOnBreak:  record.MonthsOnBreak,
			Active:         record.Active,
		}); err != nil {
			return 0, err
		}
	}
	if err := s.Repo.AddMembers(ctx, records); err != nil {
		return 0, err
	}
	ResolveLogger(s.Logger).Info("member batch imported",
		"event", "weight_registry_members_imported",
		"module", "registry-core/weight-registry",
		"layer", "application",
		"count", len(records),
	)
	return len(records), nil
}

func (s Service) UpdateMember(ctx context.Context, caller identity.Address, input ports.UpdateMemberInput) error {
	if err := s.authorize(caller); err != nil {
		return err
	}
	current, err := s.Repo.GetMember(ctx, input.Address)
	if err != nil {
		return err
	}
	current.MonthsOnBreak = input.MonthsOnBreak
	current.Active = input.Active
	if err := s.Repo.UpdateMember(ctx, current); err != nil {
		return err
	}
	ResolveLogger(s.Logger).Info("member updated",
		"event", "weight_registry_member_updated",
		"module", "registry-core/weight-registry",
		"layer", "application",
		"member", input.Address.Hex(),
		"months_on_break", input.MonthsOnBreak,
		"active", input.Active,
	)
	return nil
}

func (s Service) DeleteMember(ctx context.Context, caller identity.Address, address identity.Address) error {
	if err := s.authorize(caller); err != nil {
		return err
	}
	if err := s.Repo.DeleteMember(ctx, address); err != nil {
		return err
	}
	ResolveLogger(s.Logger).Info("member deleted",
		"event", "weight_registry_member_deleted",
		"module", "registry-core/weight-registry",
		"layer", "application",
		"member", address.Hex(),
	)
	return nil
}

func (s Service) AddOrgMember(ctx context.Context, caller identity.Address, input ports.AddOrgInput) error {
	if err := s.authorize(caller); err != nil {
		return err
	}
	if err := validateOrgInput(input.Address, input.AllocationPpm); err != nil {
		return err
	}
	if err := s.checkOrgHeadroom(ctx, input.Address, input.AllocationPpm, input.Active); err != nil {
		return err
	}
	if err := s.Repo.AddOrg(ctx, entities.OrgRecord{
		Address:       input.Address,
		AllocationPpm: input.AllocationPpm,
		Active:        input.Active,
	}); err != nil {
		return err
	}
	ResolveLogger(s.Logger).Info("org member added",
		"event", "weight_registry_org_added",
		"module", "registry-core/weight-registry",
		"layer", "application",
		"org", input.Address.Hex(),
		"allocation_ppm", input.AllocationPpm,
	)
	return nil
}

func (s Service) UpdateOrgMember(ctx context.Context, caller identity.Address, input ports.UpdateOrgInput) error {
	if err := s.authorize(caller); err != nil {
		return err
	}
	if err := validateOrgInput(input.Address, input.AllocationPpm); err != nil {
		return err
	}
	current, err := s.Repo.GetOrg(ctx, input.Address)
	if err != nil {
		return err
	}
	if err := s.checkOrgHeadroom(ctx, input.Address, input.AllocationPpm, input.Active); err != nil {
		return err
	}
	current.AllocationPpm = input.AllocationPpm
	current.Active = input.Active
	if err := s.Repo.UpdateOrg(ctx, current); err != nil {
		return err
	}
	ResolveLogger(s.Logger).Info("org member updated",
		"event", "weight_registry_org_updated",
		"module", "registry-core/weight-registry",
		"layer", "application",
		"org", input.Address.Hex(),
		"allocation_ppm", input.AllocationPpm,
		"active", input.Active,
	)
	return nil
}

func (s Service) DeleteOrgMember(ctx context.Context, caller identity.Address, address identity.Address) error {
	if err := s.authorize(caller); err != nil {
		return err
	}
	if err := s.Repo.DeleteOrg(ctx, address); err != nil {
		return err
	}
	ResolveLogger(s.Logger).Info("org member deleted",
		"event", "weight_registry_org_deleted",
		"module", "registry-core/weight-registry",
		"layer", "application",
		"org", address.Hex(),
	)
	return nil
}

func (s Service) GetMember(ctx context.Context, address identity.Address) (entities.MemberRecord, error) {
	return s.Repo.GetMember(ctx, address)
}

func (s Service) ListMembers(ctx context.Context) ([]entities.MemberRecord, error) {
	return s.Repo.ListMembers(ctx)
}

func (s Service) ListOrgs(ctx context.Context) ([]entities.OrgRecord, error) {
	return s.Repo.ListOrgs(ctx)
}

// GetAllWeights computes the complete allocation set for one cutoff period:
// active org entries first at their fixed ppm, then member entries sized by
// tenure weight against the remaining ppm.
func (s Service) GetAllWeights(ctx context.Context, cutoffYear uint16, cutoffMonth uint8) (ports.WeightResult, error) {
	if cutoffYear < minJoinYear || cutoffYear > maxJoinYear || cutoffMonth < 1 || cutoffMonth > 12 {
		return ports.WeightResult{}, domainerrors.ErrInvalidCutoff
	}
	members, err := s.Repo.ListMembers(ctx)
	if err != nil {
		return ports.WeightResult{}, err
	}
	orgs, err := s.Repo.ListOrgs(ctx)
	if err != nil {
		return ports.WeightResult{}, err
	}

	allocations, costUnits, err := services.ComputeAllocations(members, orgs, cutoffYear, cutoffMonth)
	if err != nil {
		return ports.WeightResult{}, err
	}

	now := time.Now().UTC()
	if s.Clock != nil {
		now = s.Clock.Now().UTC()
	}
	ResolveLogger(s.Logger).Info("weights computed",
		"event", "weight_registry_weights_computed",
		"module", "registry-core/weight-registry",
		"layer", "application",
		"cutoff_year", cutoffYear,
		"cutoff_month", cutoffMonth,
		"entries", len(allocations.Entries),
		"cost_units", costUnits,
	)
	return ports.WeightResult{
		Allocations: allocations,
		CostUnits:   costUnits,
		ComputedAt:  now,
	}, nil
}

func (s Service) checkOrgHeadroom(ctx context.Context, address identity.Address, allocationPpm uint32, active bool) error {
	if !active {
		return nil
	}
	orgs, err := s.Repo.ListOrgs(ctx)
	if err != nil {
		return err
	}
	total := uint64(allocationPpm)
	for _, org := range orgs {
		if org.Address == address || !org.Active {
			continue
		}
		total += uint64(org.AllocationPpm)
	}
	if total > 1_000_000 {
		return domainerrors.ErrOrgAllocationOverflow
	}
	return nil
}

func validateMemberInput(input ports.AddMemberInput) error {
	if input.Address.IsZero() {
		return domainerrors.ErrInvalidMemberInput
	}
	if input.JoinYear < minJoinYear || input.JoinYear > maxJoinYear {
		return domainerrors.ErrInvalidMemberInput
	}
	if input.JoinMonth < 1 || input.JoinMonth > 12 {
		return domainerrors.ErrInvalidMemberInput
	}
	if input.PartTimeFactor < 1 || input.PartTimeFactor > 100 {
		return domainerrors.ErrInvalidMemberInput
	}
	return nil
}

func validateOrgInput(address identity.Address, allocationPpm uint32) error {
	if address.IsZero() || allocationPpm > 1_000_000 {
		return domainerrors.ErrInvalidOrgInput
	}
	return nil
}
