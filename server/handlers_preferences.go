package server

import (
	"net/http"

	"github.com/teranos/graphstyle/graph"
	"github.com/teranos/graphstyle/logger"
	"github.com/teranos/graphstyle/prefs"
)

// HandlePreferences serves every edge override and the store state
func (s *Server) HandlePreferences(w http.ResponseWriter, r *http.Request) {
	store := prefs.MustFromContext(r.Context())
	writeJSON(w, http.StatusOK, PreferencesResponse{
		State: store.State().String(),
		Edges: store.Overrides(),
	})
}

// HandleGetEdgePreference serves the override of one edge type
func (s *Server) HandleGetEdgePreference(w http.ResponseWriter, r *http.Request) {
	store := prefs.MustFromContext(r.Context())
	typeID := r.PathValue("type")
	o, found := store.Get(typeID)
	if !found {
		writeError(w, http.StatusNotFound, "No override for edge type "+typeID)
		return
	}
	writeJSON(w, http.StatusOK, o)
}

// HandlePutEdgePreference merges a partial override into an edge type.
// Fields absent from the body keep their current value.
func (s *Server) HandlePutEdgePreference(w http.ResponseWriter, r *http.Request) {
	store := prefs.MustFromContext(r.Context())
	typeID := r.PathValue("type")
	if typeID == "" {
		writeError(w, http.StatusBadRequest, "Missing edge type")
		return
	}

	var partial graph.EdgeOverride
	if err := readJSON(w, r, &partial); err != nil {
		return
	}
	if partial.Type != "" && partial.Type != typeID {
		writeError(w, http.StatusBadRequest, "Body type "+partial.Type+" does not match path type "+typeID)
		return
	}
	if partial.IsEmpty() {
		writeError(w, http.StatusBadRequest, "Override sets no style field")
		return
	}

	merged, err := store.Upsert(typeID, partial)
	if err != nil {
		writeErr(w, err)
		return
	}

	logger.LoggerFromContext(r.Context(), s.logger).Infow("Edge override updated",
		logger.FieldType, typeID,
		logger.FieldAddress, r.RemoteAddr)
	writeJSON(w, http.StatusOK, merged)
}

// HandleDeleteEdgePreference resets an edge type to its configured style
func (s *Server) HandleDeleteEdgePreference(w http.ResponseWriter, r *http.Request) {
	store := prefs.MustFromContext(r.Context())
	typeID := r.PathValue("type")
	store.Reset(typeID)

	logger.LoggerFromContext(r.Context(), s.logger).Infow("Edge override reset",
		logger.FieldType, typeID,
		logger.FieldAddress, r.RemoteAddr)
	w.WriteHeader(http.StatusNoContent)
}

// HandleFlushPreferences writes the current record and reports the outcome
func (s *Server) HandleFlushPreferences(w http.ResponseWriter, r *http.Request) {
	store := prefs.MustFromContext(r.Context())
	if err := store.Flush(r.Context()); err != nil {
		logger.LoggerFromContext(r.Context(), s.logger).Errorw("Preference flush failed", logger.FieldError, err)
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "flushed"})
}
