// Package server publishes the Style Map to the rendering surface over HTTP
// and WebSocket, and exposes the preference store and the live edge
// registry to it.
package server

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"sync/atomic"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/teranos/graphstyle/am"
	"github.com/teranos/graphstyle/errors"
	"github.com/teranos/graphstyle/graph"
	"github.com/teranos/graphstyle/logger"
	"github.com/teranos/graphstyle/prefs"
	"github.com/teranos/graphstyle/style"
)

// Config wires the server to the engine, the preference store and the
// live edge registry
type Config struct {
	Engine   *style.Engine
	Store    *prefs.Store
	Registry *graph.EdgeRegistry

	AllowedOrigins     []string // prefix matched; empty = localhost only
	MutationsPerSecond float64  // 0 = unlimited

	Logger *zap.SugaredLogger
}

// Server is the style publication server
type Server struct {
	engine   *style.Engine
	store    *prefs.Store
	registry *graph.EdgeRegistry
	origins  []string
	limiter  *rate.Limiter // nil = unlimited
	logger   *zap.SugaredLogger

	clients    map[*Client]bool
	register   chan *Client
	unregister chan *Client
	published  chan struct{} // coalesced "engine published" signal
	mu         sync.RWMutex

	mux        *http.ServeMux
	handler    http.Handler
	httpServer *http.Server

	ctx            context.Context
	cancel         context.CancelFunc
	wg             sync.WaitGroup
	broadcastDrops atomic.Int64
	state          atomic.Int32
	stopOnce       sync.Once
}

// New creates a server. Call Run (or Start) to begin publishing.
func New(cfg Config) (*Server, error) {
	if cfg.Engine == nil {
		return nil, errors.New("server requires a style engine")
	}
	if cfg.Store == nil {
		return nil, errors.New("server requires a preference store")
	}
	if cfg.Registry == nil {
		cfg.Registry = graph.NewEdgeRegistry()
	}
	if cfg.Logger == nil {
		cfg.Logger = logger.ComponentLogger("server")
	}
	if len(cfg.AllowedOrigins) == 0 {
		cfg.AllowedOrigins = (&am.Config{}).GetServerAllowedOrigins()
	}

	ctx, cancel := context.WithCancel(context.Background())
	s := &Server{
		engine:     cfg.Engine,
		store:      cfg.Store,
		registry:   cfg.Registry,
		origins:    cfg.AllowedOrigins,
		logger:     cfg.Logger,
		clients:    make(map[*Client]bool),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		published:  make(chan struct{}, 1),
		ctx:        ctx,
		cancel:     cancel,
	}
	if cfg.MutationsPerSecond > 0 {
		burst := int(cfg.MutationsPerSecond)
		if burst < 1 {
			burst = 1
		}
		s.limiter = rate.NewLimiter(rate.Limit(cfg.MutationsPerSecond), burst)
	}
	s.setupHTTPRoutes()
	return s, nil
}

// Handler returns the HTTP handler serving every route
func (s *Server) Handler() http.Handler {
	return s.handler
}

// Registry returns the live edge registry fed by the rendering surface
func (s *Server) Registry() *graph.EdgeRegistry {
	return s.registry
}

// Run is the hub event loop. It owns client registration and pushes every
// map the engine publishes. Returns when the server is stopped.
func (s *Server) Run() {
	unsubscribe := s.engine.Subscribe(func(*style.StyleMap) {
		// The engine holds its publication lock here, so never block.
		select {
		case s.published <- struct{}{}:
		default:
		}
	})
	defer unsubscribe()

	for {
		select {
		case <-s.ctx.Done():
			s.logger.Debugw("Server hub stopping due to context cancellation")
			return
		case client := <-s.register:
			s.handleClientRegister(client)
		case client := <-s.unregister:
			s.handleClientUnregister(client)
		case <-s.published:
			s.broadcastStyles(s.engine.Current())
		}
	}
}

// handleClientRegister adds a client and sends it the current map
func (s *Server) handleClientRegister(client *Client) {
	s.mu.Lock()
	if len(s.clients) >= MaxClients {
		s.mu.Unlock()
		s.logger.Warnw("Max clients reached, rejecting connection",
			logger.FieldClientID, client.id,
			"max_clients", MaxClients)
		client.close()
		return
	}
	s.clients[client] = true
	total := len(s.clients)
	s.mu.Unlock()

	s.logger.Infow("Client connected",
		logger.FieldClientID, client.id,
		"total_clients", total)

	current := s.engine.Current()
	if current.Generation() == 0 {
		return
	}
	if msg, err := encodeStyles(current); err == nil {
		s.sendTo(client, msg)
	}
}

// handleClientUnregister removes a client and closes its queue
func (s *Server) handleClientUnregister(client *Client) {
	s.mu.Lock()
	_, ok := s.clients[client]
	if ok {
		delete(s.clients, client)
	}
	total := len(s.clients)
	s.mu.Unlock()

	if !ok {
		return
	}
	client.close()
	s.logger.Infow("Client disconnected",
		logger.FieldClientID, client.id,
		"total_clients", total)
}

// broadcastStyles encodes m once and queues it for every client
func (s *Server) broadcastStyles(m *style.StyleMap) {
	msg, err := encodeStyles(m)
	if err != nil {
		s.logger.Errorw("Failed to encode style map",
			logger.FieldGeneration, m.Generation(),
			logger.FieldError, err)
		return
	}

	s.mu.RLock()
	clients := make([]*Client, 0, len(s.clients))
	for client := range s.clients {
		clients = append(clients, client)
	}
	s.mu.RUnlock()

	for _, client := range clients {
		s.sendTo(client, msg)
	}

	s.logger.Debugw("Broadcast style map",
		logger.FieldGeneration, m.Generation(),
		logger.FieldCount, len(clients))
}

// sendTo queues msg for client, dropping a client that cannot keep up.
// Only called from the hub goroutine, which is the only sender.
func (s *Server) sendTo(client *Client, msg []byte) {
	select {
	case client.send <- msg:
	default:
		s.broadcastDrops.Add(1)
		s.removeSlowClient(client)
	}
}

func (s *Server) removeSlowClient(client *Client) {
	s.mu.Lock()
	if _, ok := s.clients[client]; !ok {
		s.mu.Unlock()
		return
	}
	delete(s.clients, client)
	s.mu.Unlock()

	client.close()
	s.logger.Warnw("Client send queue full, removing client",
		logger.FieldClientID, client.id,
		"total_drops", s.broadcastDrops.Load())
}

// ClientCount returns the number of connected WebSocket clients
func (s *Server) ClientCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.clients)
}

func encodeStyles(m *style.StyleMap) ([]byte, error) {
	return json.Marshal(StylesMessage{
		Type:       "styles",
		Generation: m.Generation(),
		Styles:     m,
	})
}
