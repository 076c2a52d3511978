package httpserver

import (
	"encoding/json"
	"log/slog"
	"net/http"

	httpSwagger "github.com/swaggo/http-swagger"

	weightregistry "github.com/pk910/pg-onchain-weights/contexts/registry-core/weight-registry"
	coordapp "github.com/pk910/pg-onchain-weights/contexts/split-control/coordinator/application"
	execapp "github.com/pk910/pg-onchain-weights/contexts/ledger-bridges/ledger-executor/application"
	_ "github.com/pk910/pg-onchain-weights/internal/platform/httpserver/docs"
)

// CallerHeader carries the authenticated caller identity. Upstream gateway
// authentication is out of scope here; handlers pass the address through and
// the services decide.
const CallerHeader = "X-Caller-Address"

type Server struct {
	mux         *http.ServeMux
	logger      *slog.Logger
	addr        string
	registry    weightregistry.Module
	coordinator coordapp.Service
	executors   map[string]*execapp.Service
}

func New(
	registry weightregistry.Module,
	coordinator coordapp.Service,
	executors map[string]*execapp.Service,
	logger *slog.Logger,
	addr string,
) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	if addr == "" {
		addr = ":8080"
	}

	s := &Server{
		mux:         http.NewServeMux(),
		logger:      logger,
		addr:        addr,
		registry:    registry,
		coordinator: coordinator,
		executors:   executors,
	}
	s.registerRoutes()
	return s
}

func (s *Server) Start() error {
	s.logger.Info("http server starting",
		"event", "http_server_starting",
		"module", "internal/platform/httpserver",
		"layer", "platform",
		"addr", s.addr,
	)
	return http.ListenAndServe(s.addr, s.mux)
}

// Handler exposes the routed mux, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.mux
}

func (s *Server) registerRoutes() {
	s.mux.Handle("/swagger/", httpSwagger.Handler(
		httpSwagger.URL("/swagger/doc.json"),
	))

	s.mux.HandleFunc("POST /api/registry/v1/members", s.handleAddMember)
	s.mux.HandleFunc("POST /api/registry/v1/members/import", s.handleImportMembers)
	s.mux.HandleFunc("PUT /api/registry/v1/members/{address}", s.handleUpdateMember)
	s.mux.HandleFunc("DELETE /api/registry/v1/members/{address}", s.handleDeleteMember)
	s.mux.HandleFunc("GET /api/registry/v1/members", s.handleListMembers)
	s.mux.HandleFunc("POST /api/registry/v1/orgs", s.handleAddOrg)
	s.mux.HandleFunc("PUT /api/registry/v1/orgs/{address}", s.handleUpdateOrg)
	s.mux.HandleFunc("DELETE /api/registry/v1/orgs/{address}", s.handleDeleteOrg)
	s.mux.HandleFunc("GET /api/registry/v1/orgs", s.handleListOrgs)
	s.mux.HandleFunc("GET /api/registry/v1/weights", s.handleGetAllWeights)

	s.mux.HandleFunc("POST /api/coordinator/v1/split/update", s.handleUpdateSplit)
	s.mux.HandleFunc("POST /api/coordinator/v1/split/update-list", s.handleUpdateSplitFromList)
	s.mux.HandleFunc("POST /api/coordinator/v1/split/distribute", s.handleDistribute)
	s.mux.HandleFunc("POST /api/coordinator/v1/split/pause", s.handleSetPaused)
	s.mux.HandleFunc("POST /api/coordinator/v1/split/exec", s.handleExecCalls)
	s.mux.HandleFunc("POST /api/coordinator/v1/split/transfer-ownership", s.handleTransferOwnership)
	s.mux.HandleFunc("DELETE /api/coordinator/v1/bridges/{ledger_id}", s.handleRemoveBridge)

	s.mux.HandleFunc("GET /api/executors/v1/{ledger_id}/refunds", s.handleRefundBalance)
	s.mux.HandleFunc("POST /api/executors/v1/{ledger_id}/refunds/sweep", s.handleSweepRefunds)
}

type errorBody struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload != nil {
		_ = json.NewEncoder(w).Encode(payload)
	}
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, errorBody{Error: code, Message: message})
}

func decodeBody(w http.ResponseWriter, r *http.Request, target any) bool {
	if err := json.NewDecoder(r.Body).Decode(target); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_body", "request body does not decode")
		return false
	}
	return true
}
