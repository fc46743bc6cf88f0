// Package server exposes the build pipeline over HTTP: component submission,
// health checks, and a websocket stream of pipeline progress events.
package server

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/coder/websocket"

	"github.com/previewlab/forge/internal/config"
	"github.com/previewlab/forge/internal/logging"
	"github.com/previewlab/forge/internal/pipeline"
)

// Builder runs one build and returns the deployment URL. Implemented by
// *pipeline.Pipeline; an interface so handler tests can stub it.
type Builder interface {
	Run(ctx context.Context, encodedSource string) (string, error)
}

// BuildServer serves the build-and-deploy API.
type BuildServer struct {
	cfg    *config.Config
	logger logging.Logger

	builder Builder
	// buildSlots bounds concurrent pipelines; nil means unlimited.
	buildSlots chan struct{}

	httpServer  *http.Server
	serverMutex sync.RWMutex

	clients      map[*websocket.Conn]chan []byte
	clientsMutex sync.RWMutex
	broadcast    chan []byte

	shutdownOnce sync.Once
}

// New creates a build server around builder.
func New(cfg *config.Config, builder Builder, logger logging.Logger) *BuildServer {
	if logger == nil {
		logger = logging.NewLogger(nil)
	}

	var slots chan struct{}
	if cfg.Build.MaxConcurrent > 0 {
		slots = make(chan struct{}, cfg.Build.MaxConcurrent)
	}

	return &BuildServer{
		cfg:        cfg,
		logger:     logger.WithComponent("server"),
		builder:    builder,
		buildSlots: slots,
		clients:    make(map[*websocket.Conn]chan []byte),
		broadcast:  make(chan []byte, 64),
	}
}

// SetBuilder wires the pipeline after construction. The server publishes
// progress events the pipeline emits, so the two reference each other; the
// server is built first with a nil builder, then completed here before Start.
func (s *BuildServer) SetBuilder(builder Builder) {
	s.builder = builder
}

// PublishEvent broadcasts a pipeline progress event to websocket clients.
// Wire it as the pipeline's observer.
func (s *BuildServer) PublishEvent(event pipeline.Event) {
	data, err := marshalEvent(event)
	if err != nil {
		s.logger.Warn(context.Background(), err, "failed to marshal progress event")
		return
	}
	select {
	case s.broadcast <- data:
	default:
		// Nobody is draining the hub fast enough; drop instead of blocking
		// the pipeline.
	}
}

// Handler returns the routed HTTP handler with middleware applied.
func (s *BuildServer) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/build", s.handleBuild)
	mux.HandleFunc("/health", s.handleHealth)
	mux.HandleFunc("/ws", s.handleWebSocket)
	return s.addMiddleware(mux)
}

// Start runs the websocket hub and the HTTP server until ctx is cancelled or
// the server fails.
func (s *BuildServer) Start(ctx context.Context) error {
	go s.runHub(ctx)

	addr := fmt.Sprintf("%s:%d", s.cfg.Server.Host, s.cfg.Server.Port)

	s.serverMutex.Lock()
	s.httpServer = &http.Server{
		Addr:    addr,
		Handler: s.Handler(),
		BaseContext: func(net.Listener) context.Context {
			return ctx
		},
	}
	server := s.httpServer
	s.serverMutex.Unlock()

	s.logger.Info(ctx, "server listening", "addr", addr)

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("server error: %w", err)
	}
	return nil
}

// Shutdown gracefully shuts down the server and closes websocket clients.
func (s *BuildServer) Shutdown(ctx context.Context) error {
	var shutdownErr error

	s.shutdownOnce.Do(func() {
		s.logger.Info(ctx, "shutting down server")

		s.clientsMutex.Lock()
		for conn, send := range s.clients {
			close(send)
			conn.Close(websocket.StatusNormalClosure, "")
		}
		s.clients = make(map[*websocket.Conn]chan []byte)
		s.clientsMutex.Unlock()

		s.serverMutex.RLock()
		server := s.httpServer
		s.serverMutex.RUnlock()

		if server != nil {
			shutdownErr = server.Shutdown(ctx)
		}
	})

	return shutdownErr
}

// acquireBuildSlot reserves a pipeline slot, returning false when the
// concurrent build limit is reached.
func (s *BuildServer) acquireBuildSlot() bool {
	if s.buildSlots == nil {
		return true
	}
	select {
	case s.buildSlots <- struct{}{}:
		return true
	default:
		return false
	}
}

func (s *BuildServer) releaseBuildSlot() {
	if s.buildSlots != nil {
		<-s.buildSlots
	}
}

// addMiddleware wraps handler with CORS and request logging.
func (s *BuildServer) addMiddleware(handler http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")
		if s.isAllowedOrigin(origin) {
			w.Header().Set("Access-Control-Allow-Origin", origin)
		} else if s.cfg.Server.Environment == "development" {
			// Only allow wildcard in development
			w.Header().Set("Access-Control-Allow-Origin", "*")
		}
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		start := time.Now()
		handler.ServeHTTP(w, r)
		s.logger.Debug(r.Context(), "request handled",
			"method", r.Method, "path", r.URL.Path, "duration", time.Since(start).String())
	})
}

// isAllowedOrigin checks if the origin is in the allowed origins list
func (s *BuildServer) isAllowedOrigin(origin string) bool {
	if origin == "" {
		return false
	}
	for _, allowed := range s.cfg.Server.AllowedOrigins {
		if origin == allowed {
			return true
		}
	}
	return false
}
