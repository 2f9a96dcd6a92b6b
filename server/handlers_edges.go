package server

import (
	"net/http"

	"github.com/teranos/graphstyle/graph"
	"github.com/teranos/graphstyle/logger"
)

// HandleListEdges serves every registered display edge
func (s *Server) HandleListEdges(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.registry.List())
}

// HandleReplaceEdges replaces the whole registry with the body's edges
func (s *Server) HandleReplaceEdges(w http.ResponseWriter, r *http.Request) {
	var edges []graph.DisplayEdge
	if err := readJSON(w, r, &edges); err != nil {
		return
	}
	for _, e := range edges {
		if e.ID == "" {
			writeError(w, http.StatusBadRequest, "Every edge needs an id")
			return
		}
	}
	s.registry.Replace(edges)

	logger.LoggerFromContext(r.Context(), s.logger).Debugw("Edge registry replaced", logger.FieldCount, len(edges))
	writeJSON(w, http.StatusOK, map[string]int{"count": s.registry.Len()})
}

// HandleGetEdge serves one display edge by logical id
func (s *Server) HandleGetEdge(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	e, ok := s.registry.Get(id)
	if !ok {
		writeError(w, http.StatusNotFound, "Unknown edge "+id)
		return
	}
	writeJSON(w, http.StatusOK, e)
}

// HandlePutEdge creates or replaces one display edge
func (s *Server) HandlePutEdge(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "Missing edge id")
		return
	}

	var e graph.DisplayEdge
	if err := readJSON(w, r, &e); err != nil {
		return
	}
	if e.ID != "" && e.ID != id {
		writeError(w, http.StatusBadRequest, "Body id "+e.ID+" does not match path id "+id)
		return
	}
	e.ID = id
	s.registry.Put(e)
	logger.LoggerFromContext(r.Context(), s.logger).Debugw("Edge registered",
		logger.FieldType, e.Type,
		"edge", id)
	writeJSON(w, http.StatusOK, e)
}

// HandleDeleteEdge removes one display edge
func (s *Server) HandleDeleteEdge(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if !s.registry.Remove(id) {
		writeError(w, http.StatusNotFound, "Unknown edge "+id)
		return
	}
	logger.LoggerFromContext(r.Context(), s.logger).Debugw("Edge removed", "edge", id)
	w.WriteHeader(http.StatusNoContent)
}
