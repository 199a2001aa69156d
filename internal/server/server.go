// Package server exposes the demo catalog and ad-hoc grouped reports
// over HTTP and WebSocket. It is a teaching tool for exploring rollup
// and cube subtotals, so it serves a fixed built-in dataset and does
// not authenticate callers.
package server

import (
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/FocuswithJustin/TallyBook/internal/demos"
	"github.com/FocuswithJustin/TallyBook/internal/logging"
)

// Server serves the demo catalog over HTTP.
type Server struct {
	cfg       Config
	env       *demos.Env
	hub       *Hub
	startTime time.Time
}

// New creates a server with a fresh evaluation environment.
func New(cfg Config) *Server {
	return &Server{
		cfg:       cfg,
		env:       demos.NewEnv(),
		hub:       NewHub(),
		startTime: time.Now(),
	}
}

// Handler returns the complete HTTP handler: routes wrapped in the
// security header, CORS, and request logging middleware.
func (s *Server) Handler() http.Handler {
	mux := s.routes()

	var handler http.Handler = securityHeadersMiddleware(mux)
	handler = corsMiddleware(s.cfg.AllowedOrigins, handler)
	return logging.CombinedMiddleware(handler)
}

// Start runs the hub and listens until the server fails.
func (s *Server) Start() error {
	if s.cfg.TLS.Enabled {
		if s.cfg.TLS.CertFile == "" || s.cfg.TLS.KeyFile == "" {
			return fmt.Errorf("TLS enabled but cert or key file not specified")
		}
		if _, err := os.Stat(s.cfg.TLS.CertFile); err != nil {
			return fmt.Errorf("TLS cert file not found: %w", err)
		}
		if _, err := os.Stat(s.cfg.TLS.KeyFile); err != nil {
			return fmt.Errorf("TLS key file not found: %w", err)
		}
	}

	go s.hub.Run()

	protocol := "http"
	wsProtocol := "ws"
	if s.cfg.TLS.Enabled {
		protocol = "https"
		wsProtocol = "wss"
		logging.Info("TLS enabled", "cert_file", s.cfg.TLS.CertFile)
	}
	logging.ServerStartup("tally_api", protocol, s.cfg.Port,
		"websocket_protocol", wsProtocol,
		"demos", len(demos.List()))

	if len(s.cfg.AllowedOrigins) > 0 {
		logging.SecurityEvent("cors_configured", "server",
			"mode", "restricted",
			"allowed_origins_count", len(s.cfg.AllowedOrigins))
	} else {
		logging.SecurityEvent("cors_configured", "server",
			"mode", "permissive",
			"note", "allowing all origins (*)")
	}

	addr := fmt.Sprintf(":%d", s.cfg.Port)
	if s.cfg.TLS.Enabled {
		return http.ListenAndServeTLS(addr, s.cfg.TLS.CertFile, s.cfg.TLS.KeyFile, s.Handler())
	}
	return http.ListenAndServe(addr, s.Handler())
}

// routes configures all HTTP routes.
func (s *Server) routes() *http.ServeMux {
	mux := http.NewServeMux()

	mux.HandleFunc("/", s.handleRoot)
	mux.HandleFunc("/healthz", s.handleHealth)
	mux.HandleFunc("/api/v1/demos", s.handleDemos)
	mux.HandleFunc("/api/v1/demos/", s.handleDemoByID)
	mux.HandleFunc("/api/v1/tally", s.handleTally)
	mux.HandleFunc("/ws", s.handleWebSocket)

	return mux
}
