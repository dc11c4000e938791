// Package ws serves the step stream over WebSocket together with a small
// JSON API describing the server.
package ws

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/ezDecode/SortVisualiser/internal/config"
	"github.com/ezDecode/SortVisualiser/internal/session"
	"github.com/ezDecode/SortVisualiser/internal/sortalgo"
	"github.com/ezDecode/SortVisualiser/internal/stats"
)

// TokenHeader carries the auth token for clients that cannot set a query
// parameter.
const TokenHeader = "X-Sortviz-Token"

type Server struct {
	config         *config.Config
	store          *session.Store
	hub            *Hub
	registry       *sortalgo.Registry
	log            *zap.SugaredLogger
	allowedOrigins map[string]bool
	allowedHosts   map[string]bool
	authToken      string
	tracker        *stats.Tracker
	events         chan<- session.Event
	startedAt      time.Time
	nextID         atomic.Uint64

	// ctx outlives individual requests; runs are cancelled through it on
	// shutdown.
	ctx    context.Context
	cancel context.CancelFunc
}

func NewServer(cfg *config.Config, store *session.Store, hub *Hub, registry *sortalgo.Registry, log *zap.SugaredLogger) *Server {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	ctx, cancel := context.WithCancel(context.Background())
	s := &Server{
		config:         cfg,
		store:          store,
		hub:            hub,
		registry:       registry,
		log:            log,
		allowedOrigins: make(map[string]bool),
		allowedHosts:   make(map[string]bool),
		authToken:      cfg.Server.AuthToken,
		startedAt:      time.Now(),
		ctx:            ctx,
		cancel:         cancel,
	}

	for _, origin := range cfg.Server.AllowedOrigins {
		trimmed := strings.TrimSpace(origin)
		if trimmed == "" {
			continue
		}
		s.allowedOrigins[trimmed] = true
		if parsed, err := url.Parse(trimmed); err == nil && parsed.Host != "" {
			s.allowedHosts[parsed.Host] = true
		}
	}

	return s
}

// SetStatsTracker wires run events into tracker and enables /api/stats.
// Must be called before SetupRoutes.
func (s *Server) SetStatsTracker(tracker *stats.Tracker, events chan<- session.Event) {
	s.tracker = tracker
	s.events = events
}

func (s *Server) SetupRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/ws", s.handleWS)
	mux.HandleFunc("/api/algorithms", s.handleAlgorithms)
	mux.HandleFunc("/api/sessions", s.handleSessions)
	mux.HandleFunc("/api/stats", s.handleStats)
	mux.HandleFunc("/api/health", s.handleHealth)
}

// Handler returns the routed mux wrapped with the security headers.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	s.SetupRoutes(mux)
	return securityHeaders(mux)
}

// Close cancels every run and closes every connection.
func (s *Server) Close() {
	s.cancel()
	s.hub.CloseAll()
}

func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	if !s.authorize(r) {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	upgrader := websocket.Upgrader{
		CheckOrigin: s.checkOrigin,
	}

	wsConn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.Warnw("ws upgrade failed", "remote", r.RemoteAddr, "error", err)
		return
	}

	conn, err := s.hub.Add(wsConn)
	if err != nil {
		s.log.Warnw("rejecting connection", "remote", r.RemoteAddr, "error", err)
		wsConn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseTryAgainLater, err.Error()),
			time.Now().Add(time.Second))
		wsConn.Close()
		return
	}

	id := "c" + strconv.FormatUint(s.nextID.Add(1), 10)
	coord := session.NewCoordinator(conn, session.Options{
		ID:             id,
		RemoteAddr:     r.RemoteAddr,
		Registry:       s.registry,
		Delay:          s.config.SpeedDelay,
		MaxArrayLength: s.config.Sort.MaxArrayLength,
		Store:          s.store,
		Events:         s.events,
		Logger:         s.log,
	})
	s.log.Infow("client connected", "session", id, "remote", r.RemoteAddr)

	go func() {
		defer func() {
			// Closing first unblocks a run waiting on a full send buffer.
			s.hub.Remove(conn)
			coord.HandleDisconnect()
			s.log.Infow("client disconnected", "session", id, "remote", r.RemoteAddr)
		}()
		conn.readPump(s.ctx, coord.Handle)
	}()
}

// AlgorithmsResponse is the body of GET /api/algorithms.
type AlgorithmsResponse struct {
	Algorithms []string         `json:"algorithms"`
	Speeds     map[string]int64 `json:"speeds"` // milliseconds
}

func (s *Server) handleAlgorithms(w http.ResponseWriter, r *http.Request) {
	if !s.authorize(r) {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	speeds := make(map[string]int64, len(s.config.Sort.Speeds))
	for name, d := range s.config.Sort.Speeds {
		speeds[name] = d.Milliseconds()
	}
	writeJSON(w, AlgorithmsResponse{
		Algorithms: s.registry.Names(),
		Speeds:     speeds,
	})
}

func (s *Server) handleSessions(w http.ResponseWriter, r *http.Request) {
	if !s.authorize(r) {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}
	writeJSON(w, s.store.GetAll())
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	if !s.authorize(r) {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	if s.tracker == nil {
		http.Error(w, "stats not available", http.StatusServiceUnavailable)
		return
	}
	writeJSON(w, s.tracker.Stats())
}

// handleHealth is unauthenticated so liveness probes need no token.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, s.health())
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(v)
}

func (s *Server) authorize(r *http.Request) bool {
	if s.authToken == "" {
		return true
	}

	if r.URL.Query().Get("token") == s.authToken {
		return true
	}

	if r.Header.Get(TokenHeader) == s.authToken {
		return true
	}

	auth := r.Header.Get("Authorization")
	if strings.HasPrefix(auth, "Bearer ") && strings.TrimPrefix(auth, "Bearer ") == s.authToken {
		return true
	}

	return false
}

func (s *Server) checkOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" {
		return true
	}

	if len(s.allowedOrigins) > 0 {
		if s.allowedOrigins[origin] {
			return true
		}
		if parsed, err := url.Parse(origin); err == nil && parsed.Host != "" {
			return s.allowedHosts[parsed.Host]
		}
		return false
	}

	parsed, err := url.Parse(origin)
	if err != nil {
		return false
	}

	host := parsed.Host
	if host == "" {
		return false
	}

	if host == r.Host {
		return true
	}

	switch parsed.Hostname() {
	case "localhost", "127.0.0.1", "::1":
		return true
	}
	return false
}

func securityHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h := w.Header()
		h.Set("X-Content-Type-Options", "nosniff")
		h.Set("X-Frame-Options", "DENY")
		h.Set("X-XSS-Protection", "1; mode=block")
		h.Set("Content-Security-Policy", "default-src 'self'")
		next.ServeHTTP(w, r)
	})
}

// ListenAndServe serves handler on host:port until ctx is cancelled, then
// shuts down gracefully.
func ListenAndServe(ctx context.Context, host string, port int, handler http.Handler, log *zap.SugaredLogger) error {
	addr := fmt.Sprintf("%s:%d", host, port)
	srv := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Infow("server listening", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
