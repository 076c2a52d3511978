package httpserver

import (
	"errors"
	"net/http"

	execerrors "github.com/pk910/pg-onchain-weights/contexts/ledger-bridges/ledger-executor/domain/errors"
)

type refundBalanceResponse struct {
	LedgerID string `json:"ledger_id"`
	Balance  string `json:"balance"`
}

// handleRefundBalance godoc
// @Summary Accumulated refund balance of one ledger executor
// @Tags executors
// @Router /api/executors/v1/{ledger_id}/refunds [get]
func (s *Server) handleRefundBalance(w http.ResponseWriter, r *http.Request) {
	ledgerID := r.PathValue("ledger_id")
	executor, ok := s.executors[ledgerID]
	if !ok {
		writeError(w, http.StatusNotFound, "unknown_ledger", "no executor for ledger")
		return
	}
	writeJSON(w, http.StatusOK, refundBalanceResponse{
		LedgerID: ledgerID,
		Balance:  executor.RefundBalance().String(),
	})
}

func (s *Server) handleSweepRefunds(w http.ResponseWriter, r *http.Request) {
	caller, ok := s.caller(w, r)
	if !ok {
		return
	}
	executor, found := s.executors[r.PathValue("ledger_id")]
	if !found {
		writeError(w, http.StatusNotFound, "unknown_ledger", "no executor for ledger")
		return
	}
	if err := executor.SweepRefunds(r.Context(), caller); err != nil {
		writeExecutorError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, nil)
}

func writeExecutorError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, execerrors.ErrNotOwner), errors.Is(err, execerrors.ErrNotAuthorized):
		writeError(w, http.StatusForbidden, "not_authorized", err.Error())
	case errors.Is(err, execerrors.ErrZeroSweep):
		writeError(w, http.StatusUnprocessableEntity, "zero_sweep", err.Error())
	case errors.Is(err, execerrors.ErrSweepTargetNotSet):
		writeError(w, http.StatusConflict, "sweep_target_not_set", err.Error())
	default:
		writeError(w, http.StatusInternalServerError, "internal_error", "unexpected failure")
	}
}
