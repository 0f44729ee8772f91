package server

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/pfrederiksen/tm-roles/internal/logger"
	"github.com/pfrederiksen/tm-roles/internal/metrics"
	"github.com/pfrederiksen/tm-roles/internal/service"
)

const shutdownTimeout = 10 * time.Second

// Options configures the HTTP surface
type Options struct {
	// AllowedOrigins lists CORS origins; "*" allows any
	AllowedOrigins []string
	// Club names the calendar export
	Club string
}

// Server serves the HTTP API
type Server struct {
	svc     *service.Service
	metrics *metrics.Collector
	opts    Options
	mux     *http.ServeMux
	handler http.Handler
	now     func() time.Time
}

// New builds the router. collector may be nil, in which case /metrics is not served.
func New(svc *service.Service, collector *metrics.Collector, opts Options) *Server {
	s := &Server{
		svc:     svc,
		metrics: collector,
		opts:    opts,
		mux:     http.NewServeMux(),
		now:     time.Now,
	}
	s.routes()
	s.handler = s.cors(s.mux)
	return s
}

func (s *Server) routes() {
	s.handle("GET /sync_agendas", s.handleSync)
	s.handle("POST /sync_agendas", s.handleSync)
	s.handle("POST /assignments", s.handleSaveAssignment)
	s.handle("POST /assignments/bulk", s.handleSaveAssignmentsBulk)
	s.handle("GET /assignments", s.handleAssignments)
	s.handle("GET /assignments.ics", s.handleAssignmentsICS)
	s.handle("GET /suggestions", s.handleSuggestions)
	s.handle("GET /agendas", s.handleAgendas)
	s.handle("GET /members", s.handleMembers)
	s.handle("POST /members", s.handleAddMembers)
	s.handle("GET /health", s.handleHealth)

	if s.metrics != nil {
		s.mux.Handle("GET /metrics", s.metrics.Handler())
	}
}

// handle registers h under pattern, recording request metrics by route
func (s *Server) handle(pattern string, h http.HandlerFunc) {
	route := pattern[strings.Index(pattern, " ")+1:]
	s.mux.Handle(pattern, s.instrument(route, h))
}

// ServeHTTP applies CORS and dispatches to the router
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.handler.ServeHTTP(w, r)
}

// ListenAndServe serves on addr until ctx is cancelled, then shuts down gracefully
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("HTTP server listening", logger.Fields{"addr": addr})
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	logger.Info("HTTP server shutting down", nil)
	return srv.Shutdown(shutdownCtx)
}
