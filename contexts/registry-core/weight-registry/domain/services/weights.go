package services

import (
	domainerrors "github.com/pk910/pg-onchain-weights/contexts/registry-core/weight-registry/domain/errors"
	"github.com/pk910/pg-onchain-weights/contexts/registry-core/weight-registry/domain/entities"
	"github.com/pk910/pg-onchain-weights/internal/shared/splits"
)

// Weights are sqrt(weightedMonths * 10^12), i.e. the square root of the
// tenure months scaled to six decimal places.
const weightScaleSquared = 1_000_000_000_000

// Cost units per weight derivation. Table hits are flat; the iterative path
// pays per Babylonian step, which is what makes the table worth carrying on
// cost-metered targets.
const (
	costTableLookup   = 1
	costIterationStep = 9
)

// CostMeter tracks the bounded-cost budget of one weight computation.
type CostMeter struct {
	Units uint64
}

func (m *CostMeter) charge(units uint64) {
	if m != nil {
		m.Units += units
	}
}

// sqrtTable holds floor(sqrt(n * 10^12)) for n in [1,100]. Values are exact;
// the iterative path must agree with every entry.
var sqrtTable = [100]uint64{
	1000000, 1414213, 1732050, 2000000, 2236067,
	2449489, 2645751, 2828427, 3000000, 3162277,
	3316624, 3464101, 3605551, 3741657, 3872983,
	4000000, 4123105, 4242640, 4358898, 4472135,
	4582575, 4690415, 4795831, 4898979, 5000000,
	5099019, 5196152, 5291502, 5385164, 5477225,
	5567764, 5656854, 5744562, 5830951, 5916079,
	6000000, 6082762, 6164414, 6244997, 6324555,
	6403124, 6480740, 6557438, 6633249, 6708203,
	6782329, 6855654, 6928203, 7000000, 7071067,
	7141428, 7211102, 7280109, 7348469, 7416198,
	7483314, 7549834, 7615773, 7681145, 7745966,
	7810249, 7874007, 7937253, 8000000, 8062257,
	8124038, 8185352, 8246211, 8306623, 8366600,
	8426149, 8485281, 8544003, 8602325, 8660254,
	8717797, 8774964, 8831760, 8888194, 8944271,
	9000000, 9055385, 9110433, 9165151, 9219544,
	9273618, 9327379, 9380831, 9433981, 9486832,
	9539392, 9591663, 9643650, 9695359, 9746794,
	9797958, 9848857, 9899494, 9949874, 10000000,
}

// WeightForMonths maps weighted tenure months to the fixed-point weight.
func WeightForMonths(weightedMonths uint64, meter *CostMeter) uint64 {
	if weightedMonths == 0 {
		return 0
	}
	if weightedMonths <= uint64(len(sqrtTable)) {
		meter.charge(costTableLookup)
		return sqrtTable[weightedMonths-1]
	}
	return babylonianSqrt(weightedMonths*weightScaleSquared, meter)
}

// babylonianSqrt is the integer Newton iteration z' = (x/z + z) / 2,
// stopping once z no longer decreases.
func babylonianSqrt(x uint64, meter *CostMeter) uint64 {
	if x == 0 {
		return 0
	}
	z := x
	next := (x/z + z) / 2
	for next < z {
		meter.charge(costIterationStep)
		z = next
		next = (x/z + z) / 2
	}
	return z
}

// MonthsSinceJoin counts whole months between the join date and the cutoff,
// clamped to zero when the cutoff precedes the join.
func MonthsSinceJoin(joinYear uint16, joinMonth uint8, cutoffYear uint16, cutoffMonth uint8) uint64 {
	months := (int(cutoffYear)-int(joinYear))*12 + (int(cutoffMonth) - int(joinMonth))
	if months < 0 {
		return 0
	}
	return uint64(months)
}

// MemberWeight derives the weight of one member at the given cutoff.
func MemberWeight(member entities.MemberRecord, cutoffYear uint16, cutoffMonth uint8, meter *CostMeter) uint64 {
	months := MonthsSinceJoin(member.JoinYear, member.JoinMonth, cutoffYear, cutoffMonth)
	if months <= uint64(member.MonthsOnBreak) {
		return 0
	}
	activeMonths := months - uint64(member.MonthsOnBreak)
	// floor division by 100 before the root; sub-integer part-time precision
	// is intentionally discarded to match the on-chain computation.
	weightedMonths := activeMonths * uint64(member.PartTimeFactor) / 100
	return WeightForMonths(weightedMonths, meter)
}

// ComputeAllocations produces the full allocation set for one cutoff period:
// active org entries first at their fixed ppm, then member entries sized by
// weight against the ppm remaining after orgs. Rounding dust from the floor
// divisions is assigned to the last weighted member so the set sums to
// exactly TotalPpm whenever any member carries weight.
func ComputeAllocations(
	members []entities.MemberRecord,
	orgs []entities.OrgRecord,
	cutoffYear uint16,
	cutoffMonth uint8,
) (splits.AllocationSet, uint64, error) {
	meter := &CostMeter{}

	orgSum := uint64(0)
	entries := make([]splits.Entry, 0, len(orgs)+len(members))
	for _, org := range orgs {
		if !org.Active {
			continue
		}
		orgSum += uint64(org.AllocationPpm)
		entries = append(entries, splits.Entry{Address: org.Address, Ppm: org.AllocationPpm})
	}
	if orgSum > splits.TotalPpm {
		return splits.AllocationSet{}, meter.Units, domainerrors.ErrOrgAllocationOverflow
	}
	remaining := uint64(splits.TotalPpm) - orgSum

	weights := make([]uint64, 0, len(members))
	weighted := make([]entities.MemberRecord, 0, len(members))
	totalWeight := uint64(0)
	for _, member := range members {
		if !member.Active {
			continue
		}
		weight := MemberWeight(member, cutoffYear, cutoffMonth, meter)
		if weight == 0 {
			continue
		}
		weights = append(weights, weight)
		weighted = append(weighted, member)
		totalWeight += weight
	}

	if totalWeight == 0 {
		// no tenure at all: org entries only
		return splits.AllocationSet{Entries: entries}, meter.Units, nil
	}

	distributed := uint64(0)
	for i, member := range weighted {
		share := weights[i] * remaining / totalWeight
		if i == len(weighted)-1 {
			share = remaining - distributed
		}
		distributed += share
		entries = append(entries, splits.Entry{Address: member.Address, Ppm: uint32(share)})
	}

	return splits.AllocationSet{Entries: entries}, meter.Units, nil
}
