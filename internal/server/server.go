// Package server exposes blackjack tables over websockets. Every connection
// plays its own single-player game.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/lox/blackjack/internal/game"
)

// Server represents the WebSocket server
type Server struct {
	addr        string
	upgrader    websocket.Upgrader
	gameOptions []game.Option
	connections map[*Connection]bool
	register    chan *Connection
	unregister  chan *Connection
	logger      *log.Logger
	mu          sync.RWMutex
	ctx         context.Context
	cancel      context.CancelFunc
	runOnce     sync.Once
}

// NewServer creates a new WebSocket server. gameOptions are applied to the
// game created for each connection.
func NewServer(addr string, logger *log.Logger, gameOptions ...game.Option) *Server {
	ctx, cancel := context.WithCancel(context.Background())

	return &Server{
		addr: addr,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
		gameOptions: gameOptions,
		connections: make(map[*Connection]bool),
		register:    make(chan *Connection),
		unregister:  make(chan *Connection),
		logger:      logger.WithPrefix("server"),
		ctx:         ctx,
		cancel:      cancel,
	}
}

// Handler returns the HTTP handler serving /ws and /health
func (s *Server) Handler() http.Handler {
	s.runOnce.Do(func() { go s.run() })

	mux := http.NewServeMux()
	mux.HandleFunc("/ws", s.handleWebSocket)
	mux.HandleFunc("/health", s.handleHealth)
	return mux
}

// Start serves until ctx is cancelled or the listener fails
func (s *Server) Start(ctx context.Context) error {
	httpServer := &http.Server{
		Addr:              s.addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = httpServer.Shutdown(shutdownCtx)
		_ = s.Stop()
	}()

	s.logger.Info("Starting WebSocket server", "addr", s.addr)
	if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("listen on %s: %w", s.addr, err)
	}
	return nil
}

// Stop closes every connection and stops the connection registry
func (s *Server) Stop() error {
	s.cancel()

	s.mu.Lock()
	for conn := range s.connections {
		_ = conn.Close()
	}
	s.mu.Unlock()

	return nil
}

// ConnectionCount returns the number of live connections
func (s *Server) ConnectionCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.connections)
}

// run handles connection lifecycle
func (s *Server) run() {
	for {
		select {
		case conn := <-s.register:
			s.mu.Lock()
			s.connections[conn] = true
			total := len(s.connections)
			s.mu.Unlock()
			s.logger.Info("Client connected", "total", total)

		case conn := <-s.unregister:
			s.mu.Lock()
			delete(s.connections, conn)
			total := len(s.connections)
			s.mu.Unlock()
			s.logger.Info("Client disconnected", "total", total)

		case <-s.ctx.Done():
			return
		}
	}
}

// handleWebSocket upgrades the request and starts a new game for it
func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Error("Failed to upgrade connection", "error", err)
		return
	}

	logger := s.logger.With("session", uuid.NewString()[:8])
	opts := append([]game.Option{game.WithLogger(logger)}, s.gameOptions...)
	client := NewConnection(conn, logger, game.New(opts...))

	select {
	case s.register <- client:
	case <-s.ctx.Done():
		_ = client.Close()
		return
	}
	client.Start()

	go func() {
		<-client.Done()
		select {
		case s.unregister <- client:
		case <-s.ctx.Done():
		}
	}()
}

// handleHealth handles health check requests
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = fmt.Fprintf(w, "OK")
}
