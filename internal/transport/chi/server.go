// Package chi is the HTTP transport: request decoding, domain error
// mapping and response encoding. Domain errors cross into HTTP status
// codes here and nowhere else.
package chi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/rescuelink/emsearch/internal/domain"
	healthuc "github.com/rescuelink/emsearch/internal/usecase/health"
)

const maxQueryLen = 512

// errorHandler tries to handle a domain error. Returns true if handled.
type errorHandler func(w http.ResponseWriter, err error) bool

// Searcher is the search use case boundary consumed by the transport.
type Searcher interface {
	Search(ctx context.Context, q domain.Query) (domain.RankedResult, error)
}

// HealthReporter reports backend health as named checks.
type HealthReporter interface {
	Check(ctx context.Context) healthuc.Report
}

// Server handles the search API.
type Server struct {
	search        Searcher
	health        HealthReporter
	logger        *zap.Logger
	errorHandlers []errorHandler
}

// NewServer creates an HTTP API server.
func NewServer(search Searcher, health HealthReporter, logger *zap.Logger) *Server {
	s := &Server{
		search: search,
		health: health,
		logger: logger,
	}
	s.errorHandlers = []errorHandler{
		sentinelHandler(domain.ErrInvalidInput, http.StatusBadRequest, codeInvalidInput),
		sentinelHandler(domain.ErrProviderUnavailable, http.StatusBadGateway, codeProviderUnavailable),
		sentinelHandler(domain.ErrRetrievalFailed, http.StatusBadGateway, codeRetrievalFailed),
		sentinelHandler(domain.ErrTimeout, http.StatusGatewayTimeout, codeTimeout),
	}
	return s
}

// Routes mounts the API onto a chi router.
func (s *Server) Routes(r chi.Router) {
	r.Post("/v1/search", s.SearchProtocols)
	r.Get("/healthz", s.HealthCheck)
	r.Get("/metrics", s.Metrics)
}

// searchRequest is the POST /v1/search body.
type searchRequest struct {
	Query     string `json:"query"`
	AgencyID  string `json:"agency_id,omitempty"`
	StateCode string `json:"state_code,omitempty"`
	Voice     bool   `json:"voice,omitempty"`
}

// searchResponse is the POST /v1/search body on success.
type searchResponse struct {
	Items   []domain.RankedItem `json:"items"`
	Total   int                 `json:"total"`
	NoQuery bool                `json:"no_query,omitempty"`
}

// SearchProtocols handles POST /v1/search.
func (s *Server) SearchProtocols(w http.ResponseWriter, r *http.Request) {
	var req searchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, codeInvalidInput, "Invalid request body: "+err.Error())
		return
	}

	if len(req.Query) > maxQueryLen {
		writeError(w, http.StatusBadRequest, codeInvalidInput, "query too long")
		return
	}

	result, err := s.search.Search(r.Context(), domain.Query{
		Raw: req.Query,
		Scope: domain.Scope{
			AgencyID:  strings.TrimSpace(req.AgencyID),
			StateCode: strings.ToUpper(strings.TrimSpace(req.StateCode)),
		},
		VoiceOrigin: req.Voice,
	})
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	items := result.Items
	if items == nil {
		items = []domain.RankedItem{}
	}
	writeJSON(w, http.StatusOK, searchResponse{
		Items:   items,
		Total:   len(items),
		NoQuery: result.NoQuery,
	})
}

// HealthCheck handles GET /healthz.
func (s *Server) HealthCheck(w http.ResponseWriter, r *http.Request) {
	report := s.health.Check(r.Context())

	httpStatus := http.StatusOK
	if report.Status != healthuc.Healthy {
		httpStatus = http.StatusServiceUnavailable
	}

	writeJSON(w, httpStatus, map[string]any{
		"status": report.Status,
		"checks": report.Checks,
	})
}

// Metrics handles GET /metrics.
func (s *Server) Metrics(w http.ResponseWriter, r *http.Request) {
	promhttp.Handler().ServeHTTP(w, r)
}

// Error codes on the wire.
const (
	codeInvalidInput        = "invalid_input"
	codeProviderUnavailable = "provider_unavailable"
	codeRetrievalFailed     = "retrieval_failed"
	codeTimeout             = "timeout"
	codeInternalError       = "internal_error"
	codeUnauthorized        = "unauthorized"
)

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, errorResponse{
		Code:    code,
		Message: message,
	})
}

// safeDomainMessage returns a sentinel error message for the client without exposing internals.
func safeDomainMessage(err error) string {
	sentinels := []error{
		domain.ErrInvalidInput,
		domain.ErrProviderUnavailable,
		domain.ErrRetrievalFailed,
		domain.ErrTimeout,
	}
	for _, s := range sentinels {
		if errors.Is(err, s) {
			return s.Error()
		}
	}
	return "internal error"
}

// sentinelHandler returns an errorHandler that matches a single sentinel error.
func sentinelHandler(sentinel error, status int, code string) errorHandler {
	return func(w http.ResponseWriter, err error) bool {
		if !errors.Is(err, sentinel) {
			return false
		}
		writeError(w, status, code, safeDomainMessage(err))
		return true
	}
}

func (s *Server) handleDomainError(w http.ResponseWriter, err error) {
	s.logger.Warn("domain error", zap.Error(err))
	for _, h := range s.errorHandlers {
		if h(w, err) {
			return
		}
	}
	s.logger.Error("internal error", zap.Error(err))
	writeError(w, http.StatusInternalServerError, codeInternalError, "internal error")
}
