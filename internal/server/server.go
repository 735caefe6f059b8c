// Package server exposes the pseudonymization pipeline, journal, and storage
// diagnostics over HTTP, plus a WebSocket feed of operation events.
package server

import (
	"context"
	"fmt"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/MaitreJV/pseudoshield/internal/config"
	"github.com/MaitreJV/pseudoshield/internal/journal"
	"github.com/MaitreJV/pseudoshield/internal/logger"
	"github.com/MaitreJV/pseudoshield/internal/pipeline"
	"github.com/MaitreJV/pseudoshield/internal/privacy"
	"github.com/MaitreJV/pseudoshield/internal/pseudonym"
	"github.com/MaitreJV/pseudoshield/internal/quota"
	"github.com/MaitreJV/pseudoshield/internal/store"
	"github.com/MaitreJV/pseudoshield/internal/websocket"
	"github.com/gorilla/mux"
	"go.uber.org/zap"
)

// Server wires the detection pipeline to its HTTP surface
type Server struct {
	config   *config.Config
	logger   *logger.Logger
	detector *privacy.Detector
	engine   *pseudonym.Engine
	pipeline *pipeline.Pipeline
	journal  *journal.Journal
	governor *quota.Governor
	kv       store.KV
	router   *mux.Router
	server   *http.Server
	wsHub    *websocket.Hub

	startTime time.Time
	totalOps  atomic.Int64
}

// New creates a server over the given key-value store
func New(cfg *config.Config, kv store.KV, log *logger.Logger) (*Server, error) {
	detector, err := privacy.New(cfg.Privacy, log.WithComponent("privacy"))
	if err != nil {
		return nil, fmt.Errorf("failed to create detector: %w", err)
	}

	governor := quota.New(kv, quota.Config{
		TotalBytes:   cfg.Storage.QuotaBytes,
		MinRetention: cfg.Journal.MinRetention,
	}, log.WithComponent("quota").Logger)

	engine := pseudonym.New(kv, governor, log.WithComponent("pseudonym").Logger)

	wsHub := websocket.NewHub(&websocket.HubConfig{
		BroadcastDetections:  cfg.WebSocket.BroadcastDetections,
		BroadcastQuota:       cfg.WebSocket.BroadcastQuota,
		BroadcastSystem:      true,
		BroadcastConnections: true,
		MaxConnections:       cfg.WebSocket.MaxConnections,
	}, log.WithComponent("websocket").Logger)

	s := &Server{
		config:    cfg,
		logger:    log.WithComponent("server"),
		detector:  detector,
		engine:    engine,
		pipeline:  pipeline.New(detector, engine, cfg.Pseudonym.BracketOutput, log.WithComponent("pipeline")),
		journal:   journal.New(kv, governor, log),
		governor:  governor,
		kv:        kv,
		router:    mux.NewRouter(),
		wsHub:     wsHub,
		startTime: time.Now(),
	}

	s.setupRoutes()

	s.server = &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      s.router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	return s, nil
}

// setupRoutes configures all HTTP routes
func (s *Server) setupRoutes() {
	s.router.HandleFunc("/health", s.handleHealth).Methods("GET")
	s.router.HandleFunc("/info", s.handleInfo).Methods("GET")

	if s.config.WebSocket.Enabled {
		s.router.HandleFunc("/ws", s.wsHub.HandleWebSocket).Methods("GET")
	}

	api := s.router.PathPrefix("/v1").Subrouter()
	api.Use(s.loggingMiddleware)
	if s.config.Server.RateLimit.Enabled {
		api.Use(s.rateLimitMiddleware)
	}

	api.HandleFunc("/process", s.handleProcess).Methods("POST")

	api.HandleFunc("/journal", s.handleJournalList).Methods("GET")
	api.HandleFunc("/journal", s.handleJournalPurge).Methods("DELETE")
	api.HandleFunc("/journal/export", s.handleJournalExport).Methods("GET")
	api.HandleFunc("/journal/stats", s.handleJournalStats).Methods("GET")

	api.HandleFunc("/pseudonyms/stats", s.handlePseudonymStats).Methods("GET")
	api.HandleFunc("/pseudonyms/reveal", s.handleReveal).Methods("POST")
	api.HandleFunc("/pseudonyms", s.handlePseudonymReset).Methods("DELETE")

	api.HandleFunc("/quota", s.handleQuota).Methods("GET")
	api.HandleFunc("/quota/cleanup", s.handleQuotaCleanup).Methods("POST")

	api.HandleFunc("/rules", s.handleRules).Methods("GET")
}

// Start starts the HTTP server, blocking until shutdown
func (s *Server) Start() error {
	s.logger.Info("Starting PseudoShield server",
		zap.Int("port", s.config.Server.Port),
		zap.String("storage_backend", s.config.Storage.Backend),
		zap.Bool("journal_enabled", s.config.Journal.Enabled),
		zap.String("session_id", s.journal.SessionID()),
	)

	if s.config.WebSocket.Enabled {
		go s.wsHub.Run()
	}

	return s.server.ListenAndServe()
}

// Stop gracefully stops the HTTP server
func (s *Server) Stop(ctx context.Context) error {
	s.logger.Info("Stopping PseudoShield server")
	return s.server.Shutdown(ctx)
}

// Router exposes the handler tree, primarily for tests
func (s *Server) Router() http.Handler {
	return s.router
}
