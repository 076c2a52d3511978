package services

import (
	"testing"

	"github.com/pk910/pg-onchain-weights/contexts/registry-core/weight-registry/domain/entities"
	domainerrors "github.com/pk910/pg-onchain-weights/contexts/registry-core/weight-registry/domain/errors"
	"github.com/pk910/pg-onchain-weights/internal/shared/identity"
	"github.com/pk910/pg-onchain-weights/internal/shared/splits"
)

func testAddress(t *testing.T, suffix byte) identity.Address {
	t.Helper()
	var addr identity.Address
	addr[19] = suffix
	addr[0] = 0x10
	return addr
}

func TestSqrtTableMatchesBabylonianPath(t *testing.T) {
	for months := uint64(1); months <= 100; months++ {
		table := WeightForMonths(months, nil)
		iterative := babylonianSqrt(months*weightScaleSquared, nil)
		if table != iterative {
			t.Fatalf("paths disagree at %d months: table=%d iterative=%d", months, table, iterative)
		}
	}
}

func TestWeightForMonthsAboveTable(t *testing.T) {
	// 144 months: sqrt(144 * 10^12) = 12 * 10^6 exactly
	if got := WeightForMonths(144, nil); got != 12_000_000 {
		t.Fatalf("expected 12000000, got %d", got)
	}
	if got := WeightForMonths(0, nil); got != 0 {
		t.Fatalf("expected 0 weight for 0 months, got %d", got)
	}
}

func TestIterativePathChargesMoreThanTable(t *testing.T) {
	tableMeter := &CostMeter{}
	WeightForMonths(50, tableMeter)
	iterMeter := &CostMeter{}
	WeightForMonths(500, iterMeter)
	if tableMeter.Units != 1 {
		t.Fatalf("table hit must charge one unit, got %d", tableMeter.Units)
	}
	if iterMeter.Units == 0 {
		t.Fatalf("expected the iterative path to charge cost units")
	}
	if iterMeter.Units <= tableMeter.Units {
		t.Fatalf("iterative path must cost more: table=%d iterative=%d", tableMeter.Units, iterMeter.Units)
	}
}

func TestMonthsSinceJoinClampsBeforeJoin(t *testing.T) {
	if got := MonthsSinceJoin(2030, 1, 2025, 11); got != 0 {
		t.Fatalf("cutoff before join must clamp to 0, got %d", got)
	}
	if got := MonthsSinceJoin(2022, 3, 2025, 11); got != 44 {
		t.Fatalf("expected 44 months, got %d", got)
	}
}

func TestMemberWeightReferenceScenario(t *testing.T) {
	// joined 2022-03, full time, 6 months on break, cutoff 2025-11:
	// 44 months since join, 38 active, weight = sqrt(38 * 10^12)
	member := entities.MemberRecord{
		Address:        testAddress(t, 1),
		JoinYear:       2022,
		JoinMonth:      3,
		PartTimeFactor: 100,
		MonthsOnBreak:  6,
		Active:         true,
	}
	if got := MemberWeight(member, 2025, 11, nil); got != 6164414 {
		t.Fatalf("expected weight 6164414, got %d", got)
	}
}

func TestMemberWeightFloorsPartTimeCredit(t *testing.T) {
	member := entities.MemberRecord{
		Address:        testAddress(t, 2),
		JoinYear:       2025,
		JoinMonth:      1,
		PartTimeFactor: 50,
		Active:         true,
	}
	// 10 active months at 50% -> 5 weighted months
	if got := MemberWeight(member, 2025, 11, nil); got != 2236067 {
		t.Fatalf("expected weight 2236067, got %d", got)
	}
	// 9 active months at 50% -> floor(4.5) = 4 weighted months
	if got := MemberWeight(member, 2025, 10, nil); got != 2000000 {
		t.Fatalf("expected weight 2000000, got %d", got)
	}
}

func TestComputeAllocationsSoleMemberGetsEverything(t *testing.T) {
	members := []entities.MemberRecord{{
		Address:        testAddress(t, 1),
		JoinYear:       2022,
		JoinMonth:      3,
		PartTimeFactor: 100,
		MonthsOnBreak:  6,
		Active:         true,
	}}
	set, cost, err := ComputeAllocations(members, nil, 2025, 11)
	if err != nil {
		t.Fatalf("compute failed: %v", err)
	}
	if len(set.Entries) != 1 || set.Entries[0].Ppm != splits.TotalPpm {
		t.Fatalf("sole member must hold 1000000 ppm, got %+v", set.Entries)
	}
	if cost == 0 {
		t.Fatalf("expected nonzero cost units")
	}
}

func TestComputeAllocationsOrgCarveOut(t *testing.T) {
	members := []entities.MemberRecord{{
		Address:        testAddress(t, 1),
		JoinYear:       2022,
		JoinMonth:      3,
		PartTimeFactor: 100,
		Active:         true,
	}}
	orgs := []entities.OrgRecord{{
		Address:       testAddress(t, 9),
		AllocationPpm: 50_000,
		Active:        true,
	}}
	set, _, err := ComputeAllocations(members, orgs, 2025, 11)
	if err != nil {
		t.Fatalf("compute failed: %v", err)
	}
	if len(set.Entries) != 2 {
		t.Fatalf("expected org + member entries, got %d", len(set.Entries))
	}
	if set.Entries[0].Ppm != 50_000 {
		t.Fatalf("org share must stay exactly 50000, got %d", set.Entries[0].Ppm)
	}
	if set.Entries[1].Ppm != 950_000 {
		t.Fatalf("member share must be 950000, got %d", set.Entries[1].Ppm)
	}
}

func TestComputeAllocationsSumsToTotalPpm(t *testing.T) {
	members := make([]entities.MemberRecord, 0, 7)
	for i := byte(1); i <= 7; i++ {
		members = append(members, entities.MemberRecord{
			Address:        testAddress(t, i),
			JoinYear:       2015 + uint16(i),
			JoinMonth:      uint8(i),
			PartTimeFactor: 100,
			Active:         true,
		})
	}
	set, _, err := ComputeAllocations(members, nil, 2025, 11)
	if err != nil {
		t.Fatalf("compute failed: %v", err)
	}
	if total := set.TotalShares(); total != splits.TotalPpm {
		t.Fatalf("rounding dust not assigned, total=%d", total)
	}
}

func TestComputeAllocationsNoTenure(t *testing.T) {
	members := []entities.MemberRecord{{
		Address:        testAddress(t, 1),
		JoinYear:       2030,
		JoinMonth:      1,
		PartTimeFactor: 100,
		Active:         true,
	}}
	orgs := []entities.OrgRecord{{
		Address:       testAddress(t, 9),
		AllocationPpm: 70_000,
		Active:        true,
	}}
	set, _, err := ComputeAllocations(members, orgs, 2025, 11)
	if err != nil {
		t.Fatalf("compute failed: %v", err)
	}
	if len(set.Entries) != 1 || set.Entries[0].Ppm != 70_000 {
		t.Fatalf("expected org-only entries with zero total weight, got %+v", set.Entries)
	}
}

func TestComputeAllocationsOrgOverflow(t *testing.T) {
	orgs := []entities.OrgRecord{
		{Address: testAddress(t, 8), AllocationPpm: 600_000, Active: true},
		{Address: testAddress(t, 9), AllocationPpm: 500_000, Active: true},
	}
	if _, _, err := ComputeAllocations(nil, orgs, 2025, 11); err != domainerrors.ErrOrgAllocationOverflow {
		t.Fatalf("expected org overflow error, got %v", err)
	}
}

func TestComputeAllocationsSkipsInactiveRecords(t *testing.T) {
	members := []entities.MemberRecord{
		{Address: testAddress(t, 1), JoinYear: 2020, JoinMonth: 1, PartTimeFactor: 100, Active: true},
		{Address: testAddress(t, 2), JoinYear: 2020, JoinMonth: 1, PartTimeFactor: 100, Active: false},
	}
	orgs := []entities.OrgRecord{
		{Address: testAddress(t, 9), AllocationPpm: 900_000, Active: false},
	}
	set, _, err := ComputeAllocations(members, orgs, 2025, 11)
	if err != nil {
		t.Fatalf("compute failed: %v", err)
	}
	if len(set.Entries) != 1 {
		t.Fatalf("inactive records must not appear, got %+v", set.Entries)
	}
	if set.Entries[0].Address != members[0].Address || set.Entries[0].Ppm != splits.TotalPpm {
		t.Fatalf("active member must take the full split, got %+v", set.Entries[0])
	}
}
