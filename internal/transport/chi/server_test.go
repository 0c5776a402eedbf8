package chi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"go.uber.org/zap"

	"github.com/rescuelink/emsearch/internal/domain"
	healthuc "github.com/rescuelink/emsearch/internal/usecase/health"
)

type stubSearcher struct {
	result domain.RankedResult
	err    error
	lastQ  domain.Query
}

func (s *stubSearcher) Search(_ context.Context, q domain.Query) (domain.RankedResult, error) {
	s.lastQ = q
	return s.result, s.err
}

type stubHealth struct {
	report healthuc.Report
}

func (s *stubHealth) Check(context.Context) healthuc.Report {
	return s.report
}

func newTestServer(search *stubSearcher) *Server {
	return NewServer(search, &stubHealth{report: healthuc.Report{Status: healthuc.Healthy}}, zap.NewNop())
}

func doSearch(t *testing.T, srv *Server, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest("POST", "/v1/search", strings.NewReader(body))
	rr := httptest.NewRecorder()
	srv.SearchProtocols(rr, req)
	return rr
}

func TestSearchProtocols_OK(t *testing.T) {
	search := &stubSearcher{result: domain.RankedResult{Items: []domain.RankedItem{
		{Candidate: domain.Candidate{ChunkID: "c1", Score: 0.9, Title: "Cardiac Arrest"}, Composite: 0.9, Rank: 1},
	}}}
	srv := newTestServer(search)

	rr := doSearch(t, srv, `{"query":"epi dose for peds arrest","agency_id":"denver-ems","state_code":"co"}`)

	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d (body %s)", rr.Code, http.StatusOK, rr.Body.String())
	}

	var resp searchResponse
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Total != 1 || len(resp.Items) != 1 || resp.Items[0].ChunkID != "c1" {
		t.Errorf("unexpected response: %+v", resp)
	}

	if search.lastQ.Scope.AgencyID != "denver-ems" {
		t.Errorf("agency_id = %q", search.lastQ.Scope.AgencyID)
	}
	if search.lastQ.Scope.StateCode != "CO" {
		t.Errorf("state_code not normalized: %q", search.lastQ.Scope.StateCode)
	}
}

func TestSearchProtocols_NoQuery(t *testing.T) {
	search := &stubSearcher{result: domain.RankedResult{NoQuery: true}}
	srv := newTestServer(search)

	rr := doSearch(t, srv, `{"query":"   "}`)

	if rr.Code != http.StatusOK {
		t.Fatalf("no-query must be 200, got %d", rr.Code)
	}

	var resp searchResponse
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if !resp.NoQuery {
		t.Error("no_query flag missing")
	}
	if resp.Items == nil || len(resp.Items) != 0 {
		t.Errorf("items should be an empty array, got %v", resp.Items)
	}
}

func TestSearchProtocols_InvalidBody(t *testing.T) {
	srv := newTestServer(&stubSearcher{})

	rr := doSearch(t, srv, `{"query":`)

	if rr.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want %d", rr.Code, http.StatusBadRequest)
	}

	var errResp errorResponse
	if err := json.NewDecoder(rr.Body).Decode(&errResp); err != nil {
		t.Fatalf("decode error response: %v", err)
	}
	if errResp.Code != codeInvalidInput {
		t.Errorf("code = %q, want %q", errResp.Code, codeInvalidInput)
	}
}

func TestSearchProtocols_QueryTooLong(t *testing.T) {
	srv := newTestServer(&stubSearcher{})

	long := strings.Repeat("a", maxQueryLen+1)
	rr := doSearch(t, srv, `{"query":"`+long+`"}`)

	if rr.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want %d", rr.Code, http.StatusBadRequest)
	}
}

func TestSearchProtocols_ErrorMapping(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
	}{
		{"invalid input", domain.ErrInvalidInput, http.StatusBadRequest, codeInvalidInput},
		{"provider down", domain.ErrProviderUnavailable, http.StatusBadGateway, codeProviderUnavailable},
		{"retrieval failed", domain.ErrRetrievalFailed, http.StatusBadGateway, codeRetrievalFailed},
		{"timeout", domain.ErrTimeout, http.StatusGatewayTimeout, codeTimeout},
		{"unknown", errors.New("boom"), http.StatusInternalServerError, codeInternalError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := newTestServer(&stubSearcher{err: tt.err})

			rr := doSearch(t, srv, `{"query":"epi dose"}`)

			if rr.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d", rr.Code, tt.wantStatus)
			}

			var errResp errorResponse
			if err := json.NewDecoder(rr.Body).Decode(&errResp); err != nil {
				t.Fatalf("decode error response: %v", err)
			}
			if errResp.Code != tt.wantCode {
				t.Errorf("code = %q, want %q", errResp.Code, tt.wantCode)
			}
		})
	}
}

func TestSearchProtocols_WrappedSentinel(t *testing.T) {
	wrapped := errors.Join(errors.New("sub-query 1"), domain.ErrProviderUnavailable)
	srv := newTestServer(&stubSearcher{err: wrapped})

	rr := doSearch(t, srv, `{"query":"epi dose"}`)

	if rr.Code != http.StatusBadGateway {
		t.Fatalf("wrapped sentinel status = %d, want %d", rr.Code, http.StatusBadGateway)
	}
}

func TestHealthCheck(t *testing.T) {
	tests := []struct {
		name       string
		report     healthuc.Report
		wantStatus int
	}{
		{
			"healthy",
			healthuc.Report{Status: healthuc.Healthy, Checks: map[string]healthuc.CheckResult{"vector_store": healthuc.CheckOK}},
			http.StatusOK,
		},
		{
			"degraded",
			healthuc.Report{Status: healthuc.Degraded, Checks: map[string]healthuc.CheckResult{"vector_store": healthuc.CheckError}},
			http.StatusServiceUnavailable,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := NewServer(&stubSearcher{}, &stubHealth{report: tt.report}, zap.NewNop())

			req := httptest.NewRequest("GET", "/healthz", http.NoBody)
			rr := httptest.NewRecorder()
			srv.HealthCheck(rr, req)

			if rr.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", rr.Code, tt.wantStatus)
			}
		})
	}
}
