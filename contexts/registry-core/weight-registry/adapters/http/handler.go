package httpadapter

import (
	"context"
	"encoding/hex"
	"log/slog"
	"strings"

	"github.com/pk910/pg-onchain-weights/contexts/registry-core/weight-registry/application"
	domainerrors "github.com/pk910/pg-onchain-weights/contexts/registry-core/weight-registry/domain/errors"
	"github.com/pk910/pg-onchain-weights/contexts/registry-core/weight-registry/ports"
	httptransport "github.com/pk910/pg-onchain-weights/contexts/registry-core/weight-registry/transport/http"
	"github.com/pk910/pg-onchain-weights/internal/shared/identity"
)

type Handler struct {
	Service application.Service
	Logger  *slog.Logger
}

func (h Handler) AddMemberHandler(ctx context.Context, caller string, req httptransport.AddMemberRequest) error {
	callerAddr, err := identity.ParseAddress(caller)
	if err != nil {
		return domainerrors.ErrNotAuthorized
	}
	address, err := identity.ParseAddress(req.Address)
	if err != nil {
		return domainerrors.ErrInvalidMemberInput
	}
	if req.JoinYear < 0 || req.JoinYear > 65535 || req.JoinMonth < 0 || req.JoinMonth > 255 ||
		req.PartTimeFactor < 0 || req.PartTimeFactor > 255 || req.MonthsOnBreak < 0 || req.MonthsOnBreak > 65535 {
		return domainerrors.ErrInvalidMemberInput
	}
	return h.Service.AddMember(ctx, callerAddr, ports.AddMemberInput{
		Address:        address,
		JoinYear:       uint16(req.JoinYear),
		JoinMonth:      uint8(req.JoinMonth),
		PartTimeFactor: uint8(req.PartTimeFactor),
		MonthsOnBreak:  uint16(req.MonthsOnBreak),
		Active:         req.Active,
	})
}

func (h Handler) ImportMembersHandler(ctx context.Context, caller string, req httptransport.ImportMembersRequest) (httptransport.ImportMembersResponse, error) {
	callerAddr, err := identity.ParseAddress(caller)
	if err != nil {
		return httptransport.ImportMembersResponse{}, domainerrors.ErrNotAuthorized
	}
	raw := strings.TrimPrefix(strings.TrimSpace(req.Payload), "0x")
	payload, err := hex.DecodeString(raw)
	if err != nil {
		return httptransport.ImportMembersResponse{}, domainerrors.ErrMalformedImportBatch
	}
	imported, err := h.Service.ImportMembers(ctx, callerAddr, payload)
	if err != nil {
		return httptransport.ImportMembersResponse{}, err
	}
	return httptransport.ImportMembersResponse{Imported: imported}, nil
}

func (h Handler) UpdateMemberHandler(ctx context.Context, caller string, req httptransport.UpdateMemberRequest) error {
	callerAddr, err := identity.ParseAddress(caller)
	if err != nil {
		return domainerrors.ErrNotAuthorized
	}
	address, err := identity.ParseAddress(req.Address)
	if err != nil {
		return domainerrors.ErrInvalidMemberInput
	}
	if req.MonthsOnBreak < 0 || req.MonthsOnBreak > 65535 {
		return domainerrors.ErrInvalidMemberInput
	}
	return h.Service.UpdateMember(ctx, callerAddr, ports.UpdateMemberInput{
		Address:       address,
		MonthsOnBreak: uint16(req.MonthsOnBreak),
		Active:        req.Active,
	})
}

func (h Handler) DeleteMemberHandler(ctx context.Context, caller string, rawAddress string) error {
	callerAddr, err := identity.ParseAddress(caller)
	if err != nil {
		return domainerrors.ErrNotAuthorized
	}
	address, err := identity.ParseAddress(rawAddress)
	if err != nil {
		return domainerrors.ErrInvalidMemberInput
	}
	return h.Service.DeleteMember(ctx, callerAddr, address)
}

func (h Handler) AddOrgHandler(ctx context.Context, caller string, req httptransport.AddOrgRequest) error {
	callerAddr, err := identity.ParseAddress(caller)
	if err != nil {
		return domainerrors.ErrNotAuthorized
	}
	address, err := identity.ParseAddress(req.Address)
	if err != nil {
		return domainerrors.ErrInvalidOrgInput
	}
	return h.Service.AddOrgMember(ctx, callerAddr, ports.AddOrgInput{
		Address:       address,
		AllocationPpm: req.AllocationPpm,
		Active:        req.Active,
	})
}

func (h Handler) UpdateOrgHandler(ctx context.Context, caller string, req httptransport.UpdateOrgRequest) error {
	callerAddr, err := identity.ParseAddress(caller)
	if err != nil {
		return domainerrors.ErrNotAuthorized
	}
	address, err := identity.ParseAddress(req.Address)
	if err != nil {
		return domainerrors.ErrInvalidOrgInput
	}
	return h.Service.UpdateOrgMember(ctx, callerAddr, ports.UpdateOrgInput{
		Address:       address,
		AllocationPpm: req.AllocationPpm,
		Active:        req.Active,
	})
}

func (h Handler) DeleteOrgHandler(ctx context.Context, caller string, rawAddress string) error {
	callerAddr, err := identity.ParseAddress(caller)
	if err != nil {
		return domainerrors.ErrNotAuthorized
	}
	address, err := identity.ParseAddress(rawAddress)
	if err != nil {
		return domainerrors.ErrInvalidOrgInput
	}
	return h.Service.DeleteOrgMember(ctx, callerAddr, address)
}

func (h Handler) ListMembersHandler(ctx context.Context) (httptransport.ListMembersResponse, error) {
	members, err := h.Service.ListMembers(ctx)
	if err != nil {
		return httptransport.ListMembersResponse{}, err
	}
	resp := httptransport.ListMembersResponse{Data: make([]httptransport.MemberResponse, 0, len(members))}
	for _, member := range members {
		resp.Data = append(resp.Data, httptransport.MemberResponse{
			Address:        member.Address.Hex(),
			JoinYear:       int(member.JoinYear),
			JoinMonth:      int(member.JoinMonth),
			PartTimeFactor: int(member.PartTimeFactor),
			MonthsOnBreak:  int(member.MonthsOnBreak),
			Active:         member.Active,
		})
	}
	return resp, nil
}

func (h Handler) ListOrgsHandler(ctx context.Context) (httptransport.ListOrgsResponse, error) {
	orgs, err := h.Service.ListOrgs(ctx)
	if err != nil {
		return httptransport.ListOrgsResponse{}, err
	}
	resp := httptransport.ListOrgsResponse{Data: make([]httptransport.OrgResponse, 0, len(orgs))}
	for _, org := range orgs {
		resp.Data = append(resp.Data, httptransport.OrgResponse{
			Address:       org.Address.Hex(),
			AllocationPpm: org.AllocationPpm,
			Active:        org.Active,
		})
	}
	return resp, nil
}

func (h Handler) GetAllWeightsHandler(ctx context.Context, cutoffYear int, cutoffMonth int) (httptransport.WeightsResponse, error) {
	if cutoffYear < 0 || cutoffYear > 65535 || cutoffMonth < 0 || cutoffMonth > 255 {
		return httptransport.WeightsResponse{}, domainerrors.ErrInvalidCutoff
	}
	result, err := h.Service.GetAllWeights(ctx, uint16(cutoffYear), uint8(cutoffMonth))
	if err != nil {
		return httptransport.WeightsResponse{}, err
	}
	resp := httptransport.WeightsResponse{
		Entries:    make([]httptransport.WeightEntry, 0, len(result.Allocations.Entries)),
		TotalPpm:   result.Allocations.TotalShares(),
		CostUnits:  result.CostUnits,
		ComputedAt: result.ComputedAt,
	}
	for _, entry := range result.Allocations.Entries {
		resp.Entries = append(resp.Entries, httptransport.WeightEntry{
			Address: entry.Address.Hex(),
			Ppm:     entry.Ppm,
		})
	}
	return resp, nil
}
