package server

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/teranos/graphstyle/logger"
	"github.com/teranos/graphstyle/style"
	"github.com/teranos/graphstyle/version"
)

// HandleWebSocket upgrades the connection and registers a client that
// receives every published Style Map
func (s *Server) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	if ServerState(s.state.Load()) != ServerStateRunning {
		writeError(w, http.StatusServiceUnavailable, "Server is shutting down")
		return
	}

	upgrader := s.upgrader()
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warnw("WebSocket upgrade failed",
			logger.FieldAddress, r.RemoteAddr,
			logger.FieldError, err)
		return
	}

	client := &Client{
		server: s,
		conn:   conn,
		id:     uuid.New().String(),
		send:   make(chan []byte, MaxClientMessageQueueSize),
		reply:  make(chan []byte, MaxClientMessageQueueSize),
	}

	select {
	case s.register <- client:
	case <-s.ctx.Done():
		conn.Close()
		return
	}

	s.wg.Add(2)
	go func() {
		defer s.wg.Done()
		client.readPump()
	}()
	go func() {
		defer s.wg.Done()
		client.writePump()
	}()
}

// HandleHealth serves the health check with version info
func (s *Server) HandleHealth(w http.ResponseWriter, r *http.Request) {
	info := version.Get()
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":      "ok",
		"state":       ServerState(s.state.Load()).String(),
		"version":     info.Version,
		"commit":      info.CommitHash,
		"build_time":  info.BuildTime,
		"clients":     s.ClientCount(),
		"generation":  s.engine.Current().Generation(),
		"preferences": s.store.State().String(),
	})
}

// HandleStyles serves the current Style Map
func (s *Server) HandleStyles(w http.ResponseWriter, r *http.Request) {
	current := s.engine.Current()
	writeJSON(w, http.StatusOK, StylesMessage{
		Type:       "styles",
		Generation: current.Generation(),
		Styles:     current,
	})
}

// HandleRecompute starts a resolution pass without waiting for a catalog
// or override change. The pass outlives the request.
func (s *Server) HandleRecompute(w http.ResponseWriter, r *http.Request) {
	current := s.engine.Current().Generation()
	s.engine.Trigger(s.ctx)
	logger.LoggerFromContext(r.Context(), s.logger).Infow("Style recompute requested",
		logger.FieldGeneration, current,
		logger.FieldAddress, r.RemoteAddr)
	writeJSON(w, http.StatusAccepted, map[string]interface{}{
		"status":     "recomputing",
		"generation": current,
	})
}

// HandleStyleLabel evaluates the deferred label of one rendered edge:
// GET /api/styles/label?edge=<renderedID>[&type=<edgeType>]
func (s *Server) HandleStyleLabel(w http.ResponseWriter, r *http.Request) {
	edge := r.URL.Query().Get("edge")
	if edge == "" {
		writeError(w, http.StatusBadRequest, "Missing required query parameter: edge")
		return
	}
	writeJSON(w, http.StatusOK, s.resolveLabel(edge, r.URL.Query().Get("type")))
}

// resolveLabel reads the live registry on every call. When edgeType is
// empty it is taken from the registry.
func (s *Server) resolveLabel(renderedID, edgeType string) LabelResponse {
	resp := LabelResponse{Edge: renderedID, EdgeType: edgeType, Label: style.MissingLabel}
	if resp.EdgeType == "" {
		if d, ok := s.registry.ResolveDisplayEdge(renderedID); ok {
			resp.EdgeType = d.Type
		}
	}
	if resp.EdgeType == "" {
		return resp
	}
	if label, ok := s.engine.Current().EdgeLabel(resp.EdgeType, renderedID); ok {
		resp.Label = label
	}
	return resp
}
