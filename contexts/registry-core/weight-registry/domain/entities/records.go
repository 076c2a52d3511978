package entities

import "github.com/pk910/pg-onchain-weights/internal/shared/identity"

// MemberRecord is one tenured member. The join date is immutable after
// creation; only break months and the active flag change afterwards.
type MemberRecord struct {
	Address        identity.Address
	JoinYear       uint16
	JoinMonth      uint8
	PartTimeFactor uint8 // percent of full tenure credit, 1-100
	MonthsOnBreak  uint16
	Active         bool
}

// OrgRecord is a fixed allocation carved out before member weights are
// applied. AllocationPpm is parts per million of the total split.
type OrgRecord struct {
	Address       identity.Address
	AllocationPpm uint32
	Active        bool
}
