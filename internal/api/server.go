// Package api serves the coverage dashboard over HTTP.
package api

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"time"

	"AdapterScout/internal/dashboard"
	"AdapterScout/internal/model"
	"AdapterScout/internal/recorder"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Dashboard answers view queries over the committed snapshot.
type Dashboard interface {
	View(fs model.FilterState) (*dashboard.View, error)
	Snapshot() (*dashboard.Snapshot, error)
}

// Refresher runs a full fetch cycle on demand.
type Refresher interface {
	Refresh(ctx context.Context) (*dashboard.Snapshot, error)
}

// Server is the HTTP API in front of the dashboard service.
type Server struct {
	addr       string
	dash       Dashboard
	refresher  Refresher
	history    recorder.Recorder
	gatherer   prometheus.Gatherer
	router     *mux.Router
	httpServer *http.Server
}

// NewServer wires the routes. gatherer may be nil to omit /metrics.
func NewServer(addr string, dash Dashboard, refresher Refresher, history recorder.Recorder, gatherer prometheus.Gatherer) *Server {
	s := &Server{
		addr:      addr,
		dash:      dash,
		refresher: refresher,
		history:   history,
		gatherer:  gatherer,
	}
	s.setupRouter()
	return s
}

func (s *Server) setupRouter() {
	r := mux.NewRouter()
	r.Use(loggingMiddleware)
	r.Use(recoveryMiddleware)

	api := r.PathPrefix("/api/v1").Subrouter()
	api.HandleFunc("/health", s.health).Methods(http.MethodGet)
	api.HandleFunc("/options", s.options).Methods(http.MethodGet)
	api.HandleFunc("/protocols", s.protocols).Methods(http.MethodGet)
	api.HandleFunc("/facets", s.facets).Methods(http.MethodGet)
	api.HandleFunc("/stats", s.stats).Methods(http.MethodGet)
	api.HandleFunc("/history", s.historyCycles).Methods(http.MethodGet)
	api.HandleFunc("/refresh", s.refresh).Methods(http.MethodPost)

	if s.gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{}))
	}
	s.router = r
}

// Start listens until Stop is called.
func (s *Server) Start() error {
	s.httpServer = &http.Server{
		Addr:         s.addr,
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 90 * time.Second, // POST /refresh waits for a full cycle
		IdleTimeout:  60 * time.Second,
	}
	log.Printf("[INFO] http server listening on %s", s.addr)
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("http server: %w", err)
	}
	return nil
}

// Stop shuts the server down gracefully.
func (s *Server) Stop(ctx context.Context) error {
	if s.httpServer == nil {
		return nil
	}
	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("http server shutdown: %w", err)
	}
	log.Println("[INFO] http server stopped")
	return nil
}

// Router returns the router for tests.
func (s *Server) Router() *mux.Router {
	return s.router
}
