package server

import (
	"net/http"
	"strings"

	"github.com/gorilla/websocket"
)

// upgrader uses the same origin check as the CORS middleware
func (s *Server) upgrader() websocket.Upgrader {
	return websocket.Upgrader{
		ReadBufferSize:  2048,
		WriteBufferSize: 2048,
		CheckOrigin:     s.checkOrigin,
	}
}

// checkOrigin prefix-matches the Origin header against the allowed origins,
// so any port of an allowed host passes
func (s *Server) checkOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")

	// Direct clients (tests, CLI tools) send no origin
	if origin == "" {
		return true
	}

	for _, allowed := range s.origins {
		if strings.HasPrefix(origin, allowed) {
			return true
		}
	}
	return false
}
