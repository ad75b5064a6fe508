package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"
	"github.com/gorilla/websocket"
	"github.com/lox/caribbeanpoker/internal/protocol"
	"github.com/lox/caribbeanpoker/internal/randutil"
	"golang.org/x/sync/errgroup"
)

const shutdownTimeout = 5 * time.Second

// Server represents the WebSocket server
type Server struct {
	addr      string
	upgrader  websocket.Upgrader
	rooms     map[string]*Room
	roomOrder []string
	logger    *log.Logger
	clock     quartz.Clock
	seeds     randutil.Source
}

// Option configures a Server.
type Option func(*Server)

// WithClock sets the clock every room uses for phase timers.
func WithClock(clock quartz.Clock) Option {
	return func(s *Server) { s.clock = clock }
}

// WithSeedSource sets the dealer seed source shared by every room.
func WithSeedSource(src randutil.Source) Option {
	return func(s *Server) { s.seeds = src }
}

// NewServer creates a server with one room per configured table.
func NewServer(cfg *ServerConfig, logger *log.Logger, opts ...Option) (*Server, error) {
	s := &Server{
		addr: cfg.GetServerAddress(),
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				// Browser clients are served from other origins
				return true
			},
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
		rooms:  make(map[string]*Room, len(cfg.Tables)),
		logger: logger.WithPrefix("server"),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.clock == nil {
		s.clock = quartz.NewReal()
	}
	if s.seeds == nil {
		if cfg.Server.Seed != 0 {
			s.seeds = randutil.NewSource(cfg.Server.Seed)
		} else {
			s.seeds = randutil.NewRandomSource()
		}
	}

	for _, t := range cfg.Tables {
		room, err := NewRoom(RoomConfig{
			Name:   t.Name,
			Table:  t,
			Clock:  s.clock,
			Seeds:  s.seeds,
			Logger: logger,
		})
		if err != nil {
			return nil, fmt.Errorf("table %s: %w", t.Name, err)
		}
		s.rooms[t.Name] = room
		s.roomOrder = append(s.roomOrder, t.Name)
	}
	if len(s.roomOrder) == 0 {
		return nil, errors.New("no tables configured")
	}
	return s, nil
}

// Room returns a room by name.
func (s *Server) Room(name string) (*Room, bool) {
	r, ok := s.rooms[name]
	return r, ok
}

// Handler returns the HTTP routes: /ws, /health and /tables.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", s.handleWebSocket)
	mux.HandleFunc("/health", s.handleHealth)
	mux.HandleFunc("/tables", s.handleTables)
	return mux
}

// RunRooms runs every room loop until ctx is cancelled.
func (s *Server) RunRooms(ctx context.Context) error {
	g, gctx := errgroup.WithContext(ctx)
	for _, name := range s.roomOrder {
		room := s.rooms[name]
		g.Go(func() error { return room.Run(gctx) })
	}
	return g.Wait()
}

// Run serves HTTP on the configured address and runs the rooms until ctx is
// cancelled.
func (s *Server) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.addr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", s.addr, err)
	}
	return s.Serve(ctx, ln)
}

// Serve is Run on an existing listener.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	httpServer := &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return s.RunRooms(gctx) })
	g.Go(func() error {
		s.logger.Info("Starting WebSocket server", "addr", ln.Addr().String(), "tables", len(s.roomOrder))
		if err := httpServer.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		s.logger.Info("Shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return httpServer.Shutdown(shutdownCtx)
	})
	return g.Wait()
}

// handleWebSocket handles WebSocket upgrade requests
func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	name := r.URL.Query().Get("room")
	if name == "" {
		name = s.roomOrder[0]
	}
	room, ok := s.rooms[name]
	if !ok {
		http.Error(w, "unknown room", http.StatusNotFound)
		return
	}

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Error("Failed to upgrade connection", "error", err)
		return
	}

	client := NewConnection(conn, room, s.logger)
	if err := room.Connect(r.Context(), client); err != nil {
		s.logger.Warn("Client refused", "room", name, "error", err)
		code := protocol.ErrCodeUnavailable
		if errors.Is(err, ErrRoomFull) {
			code = protocol.ErrCodeRoomFull
		}
		client.Reject(code, err.Error())
		return
	}
	client.Start()

	// Connection cleanup is handled by the connection itself
	go func() {
		<-client.Done()
		room.Disconnect(client.ID())
	}()
}

// handleHealth handles health check requests
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = fmt.Fprintf(w, "OK") // Ignore write errors for health check
}

// handleTables lists rooms with their occupancy
func (s *Server) handleTables(w http.ResponseWriter, r *http.Request) {
	tables := make([]protocol.TableInfo, 0, len(s.roomOrder))
	for _, name := range s.roomOrder {
		info, err := s.rooms[name].Info(r.Context())
		if err != nil {
			http.Error(w, err.Error(), http.StatusServiceUnavailable)
			return
		}
		tables = append(tables, info)
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(tables) // Ignore write errors for listings
}
