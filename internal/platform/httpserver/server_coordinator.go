package httpserver

import (
	"encoding/hex"
	"errors"
	"net/http"
	"strings"

	coorderrors "github.com/pk910/pg-onchain-weights/contexts/split-control/coordinator/domain/errors"
	coordports "github.com/pk910/pg-onchain-weights/contexts/split-control/coordinator/ports"
	"github.com/pk910/pg-onchain-weights/internal/shared/identity"
	"github.com/pk910/pg-onchain-weights/internal/shared/splits"
)

type updateSplitRequest struct {
	CutoffYear   uint16 `json:"cutoff_year"`
	CutoffMonth  uint8  `json:"cutoff_month"`
	IncentiveBps uint32 `json:"incentive_bps"`
	// Target restricts the update to one ledger; empty updates everything.
	Target string `json:"target,omitempty"`
}

type listEntryRequest struct {
	Address string `json:"address"`
	Weight  uint64 `json:"weight"`
}

type updateSplitFromListRequest struct {
	Entries      []listEntryRequest `json:"entries"`
	IncentiveBps uint32             `json:"incentive_bps"`
	Target       string             `json:"target,omitempty"`
}

type ledgerOutcomeResponse struct {
	LedgerID string `json:"ledger_id"`
	Error    string `json:"error,omitempty"`
}

type updateSplitResponse struct {
	Ledgers []ledgerOutcomeResponse `json:"ledgers"`
}

type distributeRequest struct {
	LedgerID           string               `json:"ledger_id"`
	Allocations        splits.AllocationSet `json:"allocations"`
	AssetID            string               `json:"asset_id"`
	IncentiveRecipient string               `json:"incentive_recipient"`
}

type setPausedRequest struct {
	LedgerID string `json:"ledger_id"`
	Paused   bool   `json:"paused"`
}

type execCallsRequest struct {
	LedgerID string `json:"ledger_id"`
	Calls    string `json:"calls"`
}

type transferOwnershipRequest struct {
	LedgerID string `json:"ledger_id"`
	NewOwner string `json:"new_owner"`
}

func (s *Server) caller(w http.ResponseWriter, r *http.Request) (identity.Address, bool) {
	caller, err := identity.ParseAddress(r.Header.Get(CallerHeader))
	if err != nil {
		writeError(w, http.StatusForbidden, "not_authorized", "caller address missing or malformed")
		return identity.Address{}, false
	}
	return caller, true
}

// handleUpdateSplit godoc
// @Summary Recompute allocations and push them to every ledger
// @Tags coordinator
// @Router /api/coordinator/v1/split/update [post]
func (s *Server) handleUpdateSplit(w http.ResponseWriter, r *http.Request) {
	caller, ok := s.caller(w, r)
	if !ok {
		return
	}
	var req updateSplitRequest
	if !decodeBody(w, r, &req) {
		return
	}

	if req.Target != "" {
		if err := s.coordinator.UpdateSplitSharesOn(r.Context(), caller, req.CutoffYear, req.CutoffMonth, req.IncentiveBps, req.Target); err != nil {
			writeCoordinatorError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, updateSplitResponse{Ledgers: []ledgerOutcomeResponse{{LedgerID: req.Target}}})
		return
	}
	outcomes, err := s.coordinator.UpdateSplitShares(r.Context(), caller, req.CutoffYear, req.CutoffMonth, req.IncentiveBps)
	if err != nil {
		writeCoordinatorError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toUpdateResponse(outcomes))
}

func (s *Server) handleUpdateSplitFromList(w http.ResponseWriter, r *http.Request) {
	caller, ok := s.caller(w, r)
	if !ok {
		return
	}
	var req updateSplitFromListRequest
	if !decodeBody(w, r, &req) {
		return
	}
	entries := make([]coordports.WeightedEntry, 0, len(req.Entries))
	for _, entry := range req.Entries {
		address, err := identity.ParseAddress(entry.Address)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_entry", "entry address malformed")
			return
		}
		entries = append(entries, coordports.WeightedEntry{Address: address, Weight: entry.Weight})
	}

	if req.Target != "" {
		if err := s.coordinator.UpdateSplitFromListOn(r.Context(), caller, entries, req.IncentiveBps, req.Target); err != nil {
			writeCoordinatorError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, updateSplitResponse{Ledgers: []ledgerOutcomeResponse{{LedgerID: req.Target}}})
		return
	}
	outcomes, err := s.coordinator.UpdateSplitFromList(r.Context(), caller, entries, req.IncentiveBps)
	if err != nil {
		writeCoordinatorError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toUpdateResponse(outcomes))
}

func (s *Server) handleDistribute(w http.ResponseWriter, r *http.Request) {
	caller, ok := s.caller(w, r)
	if !ok {
		return
	}
	var req distributeRequest
	if !decodeBody(w, r, &req) {
		return
	}
	cmd := splits.DistributeCommand{
		Allocations: req.Allocations,
		AssetID:     req.AssetID,
	}
	if req.IncentiveRecipient != "" {
		recipient, err := identity.ParseAddress(req.IncentiveRecipient)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_recipient", "incentive recipient malformed")
			return
		}
		cmd.IncentiveRecipient = recipient
	}
	if err := s.coordinator.Distribute(r.Context(), caller, req.LedgerID, cmd); err != nil {
		writeCoordinatorError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, nil)
}

func (s *Server) handleSetPaused(w http.ResponseWriter, r *http.Request) {
	caller, ok := s.caller(w, r)
	if !ok {
		return
	}
	var req setPausedRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if err := s.coordinator.SetPaused(r.Context(), caller, req.LedgerID, req.Paused); err != nil {
		writeCoordinatorError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, nil)
}

func (s *Server) handleExecCalls(w http.ResponseWriter, r *http.Request) {
	caller, ok := s.caller(w, r)
	if !ok {
		return
	}
	var req execCallsRequest
	if !decodeBody(w, r, &req) {
		return
	}
	calls, err := hex.DecodeString(strings.TrimPrefix(req.Calls, "0x"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_calls", "calls must be hex encoded")
		return
	}
	if err := s.coordinator.ExecCalls(r.Context(), caller, req.LedgerID, calls); err != nil {
		writeCoordinatorError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, nil)
}

func (s *Server) handleTransferOwnership(w http.ResponseWriter, r *http.Request) {
	caller, ok := s.caller(w, r)
	if !ok {
		return
	}
	var req transferOwnershipRequest
	if !decodeBody(w, r, &req) {
		return
	}
	newOwner, err := identity.ParseAddress(req.NewOwner)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_owner", "new owner address malformed")
		return
	}
	if err := s.coordinator.TransferOwnership(r.Context(), caller, req.LedgerID, newOwner); err != nil {
		writeCoordinatorError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, nil)
}

func (s *Server) handleRemoveBridge(w http.ResponseWriter, r *http.Request) {
	caller, ok := s.caller(w, r)
	if !ok {
		return
	}
	if err := s.coordinator.RemoveL2Module(r.Context(), caller, r.PathValue("ledger_id")); err != nil {
		writeCoordinatorError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, nil)
}

func toUpdateResponse(outcomes []coordports.LedgerOutcome) updateSplitResponse {
	resp := updateSplitResponse{Ledgers: make([]ledgerOutcomeResponse, 0, len(outcomes))}
	for _, outcome := range outcomes {
		entry := ledgerOutcomeResponse{LedgerID: outcome.LedgerID}
		if outcome.Err != nil {
			entry.Error = outcome.Err.Error()
		}
		resp.Ledgers = append(resp.Ledgers, entry)
	}
	return resp
}

func writeCoordinatorError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, coorderrors.ErrNotAuthorized):
		writeError(w, http.StatusForbidden, "not_authorized", err.Error())
	case errors.Is(err, coorderrors.ErrBridgeNotFound), errors.Is(err, coorderrors.ErrUnknownTarget):
		writeError(w, http.StatusNotFound, "unknown_ledger", err.Error())
	case errors.Is(err, coorderrors.ErrBridgeExists):
		writeError(w, http.StatusConflict, "already_exists", err.Error())
	case errors.Is(err, coorderrors.ErrEmptyWeights),
		errors.Is(err, coorderrors.ErrInvalidEntry),
		errors.Is(err, coorderrors.ErrLedgerMismatch),
		errors.Is(err, splits.ErrIncentiveTooLarge):
		writeError(w, http.StatusBadRequest, "invalid_input", err.Error())
	default:
		writeError(w, http.StatusInternalServerError, "internal_error", "unexpected failure")
	}
}
