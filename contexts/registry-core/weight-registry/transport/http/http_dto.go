package http

import "time"

type AddMemberRequest struct {
	Address        string `json:"address"`
	JoinYear       int    `json:"join_year"`
	JoinMonth      int    `json:"join_month"`
	PartTimeFactor int    `json:"part_time_factor"`
	MonthsOnBreak  int    `json:"months_on_break"`
	Active         bool   `json:"active"`
}

type UpdateMemberRequest struct {
	Address       string `json:"address"`
	MonthsOnBreak int    `json:"months_on_break"`
	Active        bool   `json:"active"`
}

// ImportMembersRequest carries the concatenated fixed-width records as a
// 0x-prefixed hex payload, one 27-byte record per member.
type ImportMembersRequest struct {
	Payload string `json:"payload"`
}

type ImportMembersResponse struct {
	Imported int `json:"imported"`
}

type AddOrgRequest struct {
	Address       string `json:"address"`
	AllocationPpm uint32 `json:"allocation_ppm"`
	Active        bool   `json:"active"`
}

type UpdateOrgRequest struct {
	Address       string `json:"address"`
	AllocationPpm uint32 `json:"allocation_ppm"`
	Active        bool   `json:"active"`
}

type MemberResponse struct {
	Address        string `json:"address"`
	JoinYear       int    `json:"join_year"`
	JoinMonth      int    `json:"join_month"`
	PartTimeFactor int    `json:"part_time_factor"`
	MonthsOnBreak  int    `json:"months_on_break"`
	Active         bool   `json:"active"`
}

type OrgResponse struct {
	Address       string `json:"address"`
	AllocationPpm uint32 `json:"allocation_ppm"`
	Active        bool   `json:"active"`
}

type ListMembersResponse struct {
	Data []MemberResponse `json:"data"`
}

type ListOrgsResponse struct {
	Data []OrgResponse `json:"data"`
}

type WeightEntry struct {
	Address string `json:"address"`
	Ppm     uint32 `json:"ppm"`
}

type WeightsResponse struct {
	Entries    []WeightEntry `json:"entries"`
	TotalPpm   uint64        `json:"total_ppm"`
	CostUnits  uint64        `json:"cost_units"`
	ComputedAt time.Time     `json:"computed_at"`
}
