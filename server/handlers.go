package server

import (
	"encoding/json"
	"net/http"
	"sort"
)

// HandleSessions returns the commitment and reservation state of every
// connected session
func (s *Server) HandleSessions(w http.ResponseWriter, r *http.Request) {
	// Enable CORS for cross-origin requests
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("Content-Type", "application/json")

	sessions := s.Sessions()
	sort.Slice(sessions, func(i, j int) bool {
		return sessions[i].Connected.Before(sessions[j].Connected)
	})

	response := map[string]interface{}{
		"total":    len(sessions),
		"strategy": s.cfg.Name,
		"sessions": sessions,
	}

	if err := json.NewEncoder(w).Encode(response); err != nil {
		s.log.WithError(err).Warn("encode sessions failed")
	}
}

// HandleSchema publishes the JSON schema of host messages
func (s *Server) HandleSchema(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("Content-Type", "application/schema+json")

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(ProtocolSchema()); err != nil {
		s.log.WithError(err).Warn("encode schema failed")
	}
}

// HandleHealth reports liveness
func HandleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("OK"))
}
