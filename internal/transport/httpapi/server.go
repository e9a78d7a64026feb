// Package httpapi exposes the capture and search services over a chi
// router with bearer-JWT owner identity.
package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/keepson/keepson/internal/domain"
	healthuc "github.com/keepson/keepson/internal/usecase/health"
	recorduc "github.com/keepson/keepson/internal/usecase/record"
	searchuc "github.com/keepson/keepson/internal/usecase/search"
	usageuc "github.com/keepson/keepson/internal/usecase/usage"
)

const defaultMaxUploadBytes = 25 << 20

// Server handles the HTTP API.
type Server struct {
	records        *recorduc.Service
	search         *searchuc.Service
	usage          *usageuc.Service
	health         *healthuc.Service
	logger         *zap.Logger
	maxUploadBytes int64
	errorHandlers  []errorHandler
}

// NewServer creates an HTTP API server.
func NewServer(
	records *recorduc.Service,
	search *searchuc.Service,
	usage *usageuc.Service,
	health *healthuc.Service,
	logger *zap.Logger,
) *Server {
	s := &Server{
		records:        records,
		search:         search,
		usage:          usage,
		health:         health,
		logger:         logger,
		maxUploadBytes: defaultMaxUploadBytes,
	}
	s.errorHandlers = []errorHandler{
		fileTooLargeHandler,
		sentinelHandler(domain.ErrInvalidInput, http.StatusBadRequest, codeValidationFailed),
		sentinelHandler(domain.ErrUnauthorized, http.StatusUnauthorized, codeUnauthorized),
		sentinelHandler(domain.ErrForbidden, http.StatusForbidden, codeForbidden),
		sentinelHandler(domain.ErrRecordNotFound, http.StatusNotFound, codeRecordNotFound),
		sentinelHandler(domain.ErrFileNotFound, http.StatusNotFound, codeFileNotFound),
		sentinelHandler(domain.ErrNotFound, http.StatusNotFound, codeNotFound),
		sentinelHandler(domain.ErrOracleUnavailable, http.StatusBadGateway, codeOracleUnavailable),
		sentinelHandler(domain.ErrSummaryUnavailable, http.StatusBadGateway, codeSummaryUnavailable),
	}
	return s
}

// WithUploadLimit caps multipart upload size in bytes.
func (s *Server) WithUploadLimit(maxBytes int64) *Server {
	if maxBytes > 0 {
		s.maxUploadBytes = maxBytes
	}
	return s
}

// Routes builds the router. auth guards /api/v1; health and metrics
// stay open for probes and scrapes.
func (s *Server) Routes(auth func(http.Handler) http.Handler) chi.Router {
	r := chi.NewRouter()

	r.Get("/health", s.handleHealth)
	r.Get("/metrics", promhttp.Handler().ServeHTTP)

	r.Route("/api/v1", func(api chi.Router) {
		api.Use(auth)

		api.Route("/records", func(rr chi.Router) {
			rr.Post("/", s.handleCreateRecord)
			rr.Get("/", s.handleListRecords)
			rr.Route("/{recordID}", func(one chi.Router) {
				one.Get("/", s.handleGetRecord)
				one.Patch("/", s.handleUpdateRecord)
				one.Delete("/", s.handleDeleteRecord)
				one.Get("/file", s.handleDownloadFile)
			})
		})

		api.Get("/search", s.handleSearch)
		api.Post("/search/advanced", s.handleAdvancedSearch)

		api.Get("/usage", s.handleUsage)
	})

	return r
}

// handleHealth handles GET /health.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	report := s.health.Check(r.Context())

	checks := make(map[string]string, len(report.Checks))
	for k, v := range report.Checks {
		checks[k] = string(v)
	}

	status := http.StatusOK
	if report.Status != healthuc.Healthy {
		status = http.StatusServiceUnavailable
	}

	writeJSON(w, status, healthResponse{
		Status: string(report.Status),
		Checks: checks,
	})
}
