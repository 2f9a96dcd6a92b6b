package server

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/teranos/graphstyle/logger"
	"github.com/teranos/graphstyle/prefs"
)

// RequestIDHeader carries the request id in both directions
const RequestIDHeader = "X-Request-ID"

// maxRequestIDLen bounds client supplied ids before they reach the logs
const maxRequestIDLen = 128

// setupHTTPRoutes configures all HTTP handlers
func (s *Server) setupHTTPRoutes() {
	mux := http.NewServeMux()

	mux.HandleFunc("/ws", s.HandleWebSocket)
	mux.HandleFunc("GET /health", s.HandleHealth)

	mux.HandleFunc("GET /api/styles", s.HandleStyles)
	mux.HandleFunc("GET /api/styles/label", s.HandleStyleLabel)
	mux.HandleFunc("POST /api/styles/recompute", s.rateLimit(s.HandleRecompute))

	// Type ids may be URIs, so the trailing wildcard keeps their slashes
	mux.HandleFunc("GET /api/preferences", s.withStore(s.HandlePreferences))
	mux.HandleFunc("GET /api/preferences/edges/{type...}", s.withStore(s.HandleGetEdgePreference))
	mux.HandleFunc("PUT /api/preferences/edges/{type...}", s.rateLimit(s.withStore(s.HandlePutEdgePreference)))
	mux.HandleFunc("DELETE /api/preferences/edges/{type...}", s.rateLimit(s.withStore(s.HandleDeleteEdgePreference)))
	mux.HandleFunc("POST /api/preferences/flush", s.rateLimit(s.withStore(s.HandleFlushPreferences)))

	mux.HandleFunc("GET /api/edges", s.withComponent("edges", s.HandleListEdges))
	mux.HandleFunc("PUT /api/edges", s.rateLimit(s.withComponent("edges", s.HandleReplaceEdges)))
	mux.HandleFunc("GET /api/edges/{id...}", s.withComponent("edges", s.HandleGetEdge))
	mux.HandleFunc("PUT /api/edges/{id...}", s.rateLimit(s.withComponent("edges", s.HandlePutEdge)))
	mux.HandleFunc("DELETE /api/edges/{id...}", s.rateLimit(s.withComponent("edges", s.HandleDeleteEdge)))

	// CORS wraps the whole mux so preflights never reach method routes
	s.mux = mux
	s.handler = s.requestID(s.corsMiddleware(mux.ServeHTTP))
}

// corsMiddleware adds CORS headers for allowed origins and answers preflights
func (s *Server) corsMiddleware(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")
		if origin != "" && s.checkOrigin(r) {
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Set("Access-Control-Allow-Credentials", "true")
		}
		w.Header().Set("Access-Control-Allow-Methods", "GET, PUT, POST, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, "+RequestIDHeader)
		w.Header().Set("Access-Control-Expose-Headers", RequestIDHeader)

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		next(w, r)
	}
}

// requestID tags each request with the caller's X-Request-ID, or a fresh
// one, echoes it back and carries it in the context for logging
func (s *Server) requestID(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(RequestIDHeader)
		if id == "" || len(id) > maxRequestIDLen {
			id = uuid.New().String()
		}
		w.Header().Set(RequestIDHeader, id)
		next(w, r.WithContext(logger.WithRequestID(r.Context(), id)))
	}
}

// withComponent names the component handling the request in its logs
func (s *Server) withComponent(component string, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		next(w, r.WithContext(logger.WithComponent(r.Context(), component)))
	}
}

// withStore scopes the preference store to the request context
func (s *Server) withStore(next http.HandlerFunc) http.HandlerFunc {
	return s.withComponent("preferences", func(w http.ResponseWriter, r *http.Request) {
		next(w, r.WithContext(prefs.WithStore(r.Context(), s.store)))
	})
}

// rateLimit rejects mutations beyond server.mutations_per_second
func (s *Server) rateLimit(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if s.limiter != nil && !s.limiter.Allow() {
			w.Header().Set("Retry-After", "1")
			writeError(w, http.StatusTooManyRequests, "Too many style changes, slow down")
			return
		}
		next(w, r)
	}
}
