package httpserver

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	execapp "github.com/pk910/pg-onchain-weights/contexts/ledger-bridges/ledger-executor/application"
	execmemory "github.com/pk910/pg-onchain-weights/contexts/ledger-bridges/ledger-executor/adapters/memory"
	execservices "github.com/pk910/pg-onchain-weights/contexts/ledger-bridges/ledger-executor/domain/services"
	weightregistry "github.com/pk910/pg-onchain-weights/contexts/registry-core/weight-registry"
	registryhttp "github.com/pk910/pg-onchain-weights/contexts/registry-core/weight-registry/transport/http"
	coordinator "github.com/pk910/pg-onchain-weights/contexts/split-control/coordinator"
	"github.com/pk910/pg-onchain-weights/internal/shared/identity"
	"github.com/pk910/pg-onchain-weights/internal/shared/splits"
)

const (
	ownerHex    = "0x00000000000000000000000000000000000000aa"
	strangerHex = "0x00000000000000000000000000000000000000bb"
	memberHex   = "0x2000000000000000000000000000000000000001"
)

type registrySource struct {
	registry weightregistry.Module
}

func (s registrySource) ComputeAllocations(ctx context.Context, cutoffYear uint16, cutoffMonth uint8) (splits.AllocationSet, error) {
	result, err := s.registry.Service.GetAllWeights(ctx, cutoffYear, cutoffMonth)
	if err != nil {
		return splits.AllocationSet{}, err
	}
	return result.Allocations, nil
}

func newTestServer(t *testing.T) (*Server, *execapp.Service) {
	t.Helper()
	owner, err := identity.ParseAddress(ownerHex)
	if err != nil {
		t.Fatalf("parse owner: %v", err)
	}

	registry := weightregistry.NewInMemoryModule(owner, nil)
	primary := execmemory.NewWallet(owner)
	coordModule := coordinator.NewModule(coordinator.Dependencies{
		Weights:         registrySource{registry: registry},
		Primary:         primary,
		Owner:           owner,
		Self:            owner,
		PrimaryLedgerID: "1",
	})
	executor := execapp.NewService(
		execmemory.NewWallet(owner),
		execservices.OriginVerifier{Mode: execservices.VerifyAliased, RemoteAdapter: owner},
		execmemory.NewAccount(),
		"42161",
		owner,
		owner,
		nil,
		nil,
	)
	executors := map[string]*execapp.Service{"42161": executor}
	return New(registry, coordModule.Service, executors, nil, ""), executor
}

func doRequest(t *testing.T, server *Server, method, path, caller string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader *strings.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		reader = strings.NewReader(string(encoded))
	} else {
		reader = strings.NewReader("")
	}
	req := httptest.NewRequest(method, path, reader)
	if caller != "" {
		req.Header.Set(CallerHeader, caller)
	}
	recorder := httptest.NewRecorder()
	server.Handler().ServeHTTP(recorder, req)
	return recorder
}

func addMemberBody() registryhttp.AddMemberRequest {
	return registryhttp.AddMemberRequest{
		Address:        memberHex,
		JoinYear:       2022,
		JoinMonth:      3,
		PartTimeFactor: 100,
		MonthsOnBreak:  6,
		Active:         true,
	}
}

func TestAddMemberEndpoint(t *testing.T) {
	server, _ := newTestServer(t)

	if resp := doRequest(t, server, http.MethodPost, "/api/registry/v1/members", strangerHex, addMemberBody()); resp.Code != http.StatusForbidden {
		t.Fatalf("stranger must get 403, got %d", resp.Code)
	}
	if resp := doRequest(t, server, http.MethodPost, "/api/registry/v1/members", "", addMemberBody()); resp.Code != http.StatusForbidden {
		t.Fatalf("missing caller must get 403, got %d", resp.Code)
	}
	if resp := doRequest(t, server, http.MethodPost, "/api/registry/v1/members", ownerHex, addMemberBody()); resp.Code != http.StatusCreated {
		t.Fatalf("owner add must get 201, got %d: %s", resp.Code, resp.Body.String())
	}
	if resp := doRequest(t, server, http.MethodPost, "/api/registry/v1/members", ownerHex, addMemberBody()); resp.Code != http.StatusConflict {
		t.Fatalf("duplicate must get 409, got %d", resp.Code)
	}
}

func TestWeightsEndpoint(t *testing.T) {
	server, _ := newTestServer(t)

	if resp := doRequest(t, server, http.MethodPost, "/api/registry/v1/members", ownerHex, addMemberBody()); resp.Code != http.StatusCreated {
		t.Fatalf("seed member failed: %d", resp.Code)
	}

	resp := doRequest(t, server, http.MethodGet, "/api/registry/v1/weights?cutoff_year=2025&cutoff_month=11", "", nil)
	if resp.Code != http.StatusOK {
		t.Fatalf("weights must get 200, got %d: %s", resp.Code, resp.Body.String())
	}
	var body registryhttp.WeightsResponse
	if err := json.Unmarshal(resp.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode weights: %v", err)
	}
	if len(body.Entries) != 1 || body.Entries[0].Ppm != splits.TotalPpm {
		t.Fatalf("sole member must own the full million, got %+v", body.Entries)
	}

	if resp := doRequest(t, server, http.MethodGet, "/api/registry/v1/weights?cutoff_year=2025&cutoff_month=13", "", nil); resp.Code != http.StatusBadRequest {
		t.Fatalf("bad cutoff must get 400, got %d", resp.Code)
	}
}

func TestUpdateSplitEndpoint(t *testing.T) {
	server, _ := newTestServer(t)

	if resp := doRequest(t, server, http.MethodPost, "/api/registry/v1/members", ownerHex, addMemberBody()); resp.Code != http.StatusCreated {
		t.Fatalf("seed member failed: %d", resp.Code)
	}

	update := updateSplitRequest{CutoffYear: 2025, CutoffMonth: 11, IncentiveBps: 100}
	if resp := doRequest(t, server, http.MethodPost, "/api/coordinator/v1/split/update", strangerHex, update); resp.Code != http.StatusForbidden {
		t.Fatalf("stranger update must get 403, got %d", resp.Code)
	}

	resp := doRequest(t, server, http.MethodPost, "/api/coordinator/v1/split/update", ownerHex, update)
	if resp.Code != http.StatusOK {
		t.Fatalf("owner update must get 200, got %d: %s", resp.Code, resp.Body.String())
	}
	var body updateSplitResponse
	if err := json.Unmarshal(resp.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(body.Ledgers) != 1 || body.Ledgers[0].LedgerID != "1" {
		t.Fatalf("expected primary outcome, got %+v", body.Ledgers)
	}

	tooHigh := updateSplitRequest{CutoffYear: 2025, CutoffMonth: 11, IncentiveBps: 651}
	if resp := doRequest(t, server, http.MethodPost, "/api/coordinator/v1/split/update", ownerHex, tooHigh); resp.Code != http.StatusBadRequest {
		t.Fatalf("excessive incentive must get 400, got %d", resp.Code)
	}
}

func TestExecutorEndpoints(t *testing.T) {
	server, _ := newTestServer(t)

	if resp := doRequest(t, server, http.MethodGet, "/api/executors/v1/999/refunds", "", nil); resp.Code != http.StatusNotFound {
		t.Fatalf("unknown ledger must get 404, got %d", resp.Code)
	}

	resp := doRequest(t, server, http.MethodGet, "/api/executors/v1/42161/refunds", "", nil)
	if resp.Code != http.StatusOK {
		t.Fatalf("refund balance must get 200, got %d", resp.Code)
	}
	var body refundBalanceResponse
	if err := json.Unmarshal(resp.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode balance: %v", err)
	}
	if body.Balance != "0" {
		t.Fatalf("fresh executor must report zero, got %s", body.Balance)
	}

	if resp := doRequest(t, server, http.MethodPost, "/api/executors/v1/42161/refunds/sweep", strangerHex, nil); resp.Code != http.StatusForbidden {
		t.Fatalf("stranger sweep must get 403, got %d", resp.Code)
	}
	if resp := doRequest(t, server, http.MethodPost, "/api/executors/v1/42161/refunds/sweep", ownerHex, nil); resp.Code != http.StatusUnprocessableEntity {
		t.Fatalf("zero sweep must get 422, got %d", resp.Code)
	}
}
