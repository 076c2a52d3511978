package httpserver

import (
	"errors"
	"net/http"
	"strconv"

	registryerrors "github.com/pk910/pg-onchain-weights/contexts/registry-core/weight-registry/domain/errors"
	registryhttp "github.com/pk910/pg-onchain-weights/contexts/registry-core/weight-registry/transport/http"
)

// handleAddMember godoc
// @Summary Add a registry member
// @Tags registry
// @Router /api/registry/v1/members [post]
func (s *Server) handleAddMember(w http.ResponseWriter, r *http.Request) {
	var req registryhttp.AddMemberRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if err := s.registry.Handler.AddMemberHandler(r.Context(), r.Header.Get(CallerHeader), req); err != nil {
		writeRegistryError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, nil)
}

func (s *Server) handleImportMembers(w http.ResponseWriter, r *http.Request) {
	var req registryhttp.ImportMembersRequest
	if !decodeBody(w, r, &req) {
		return
	}
	resp, err := s.registry.Handler.ImportMembersHandler(r.Context(), r.Header.Get(CallerHeader), req)
	if err != nil {
		writeRegistryError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleUpdateMember(w http.ResponseWriter, r *http.Request) {
	var req registryhttp.UpdateMemberRequest
	if !decodeBody(w, r, &req) {
		return
	}
	req.Address = r.PathValue("address")
	if err := s.registry.Handler.UpdateMemberHandler(r.Context(), r.Header.Get(CallerHeader), req); err != nil {
		writeRegistryError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, nil)
}

func (s *Server) handleDeleteMember(w http.ResponseWriter, r *http.Request) {
	if err := s.registry.Handler.DeleteMemberHandler(r.Context(), r.Header.Get(CallerHeader), r.PathValue("address")); err != nil {
		writeRegistryError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, nil)
}

func (s *Server) handleListMembers(w http.ResponseWriter, r *http.Request) {
	resp, err := s.registry.Handler.ListMembersHandler(r.Context())
	if err != nil {
		writeRegistryError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleAddOrg(w http.ResponseWriter, r *http.Request) {
	var req registryhttp.AddOrgRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if err := s.registry.Handler.AddOrgHandler(r.Context(), r.Header.Get(CallerHeader), req); err != nil {
		writeRegistryError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, nil)
}

func (s *Server) handleUpdateOrg(w http.ResponseWriter, r *http.Request) {
	var req registryhttp.UpdateOrgRequest
	if !decodeBody(w, r, &req) {
		return
	}
	req.Address = r.PathValue("address")
	if err := s.registry.Handler.UpdateOrgHandler(r.Context(), r.Header.Get(CallerHeader), req); err != nil {
		writeRegistryError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, nil)
}

func (s *Server) handleDeleteOrg(w http.ResponseWriter, r *http.Request) {
	if err := s.registry.Handler.DeleteOrgHandler(r.Context(), r.Header.Get(CallerHeader), r.PathValue("address")); err != nil {
		writeRegistryError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, nil)
}

func (s *Server) handleListOrgs(w http.ResponseWriter, r *http.Request) {
	resp, err := s.registry.Handler.ListOrgsHandler(r.Context())
	if err != nil {
		writeRegistryError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// handleGetAllWeights godoc
// @Summary Compute allocation shares for a cutoff period
// @Tags registry
// @Router /api/registry/v1/weights [get]
func (s *Server) handleGetAllWeights(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	year, err := strconv.Atoi(query.Get("cutoff_year"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_cutoff", "cutoff_year must be an integer")
		return
	}
	month, err := strconv.Atoi(query.Get("cutoff_month"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_cutoff", "cutoff_month must be an integer")
		return
	}
	resp, err := s.registry.Handler.GetAllWeightsHandler(r.Context(), year, month)
	if err != nil {
		writeRegistryError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func writeRegistryError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, registryerrors.ErrNotAuthorized):
		writeError(w, http.StatusForbidden, "not_authorized", err.Error())
	case errors.Is(err, registryerrors.ErrMemberNotFound), errors.Is(err, registryerrors.ErrOrgNotFound):
		writeError(w, http.StatusNotFound, "not_found", err.Error())
	case errors.Is(err, registryerrors.ErrMemberExists), errors.Is(err, registryerrors.ErrOrgExists):
		writeError(w, http.StatusConflict, "already_exists", err.Error())
	case errors.Is(err, registryerrors.ErrOrgAllocationOverflow):
		writeError(w, http.StatusUnprocessableEntity, "allocation_overflow", err.Error())
	case errors.Is(err, registryerrors.ErrInvalidMemberInput),
		errors.Is(err, registryerrors.ErrInvalidOrgInput),
		errors.Is(err, registryerrors.ErrMalformedImportBatch),
		errors.Is(err, registryerrors.ErrInvalidCutoff):
		writeError(w, http.StatusBadRequest, "invalid_input", err.Error())
	default:
		writeError(w, http.StatusInternalServerError, "internal_error", "unexpected failure")
	}
}
