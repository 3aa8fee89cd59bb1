package api

import (
	"encoding/json"
	"net/http"
)

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	if s.counts == nil {
		jsonError(w, "counter unavailable", http.StatusServiceUnavailable)
		return
	}
	n, err := s.counts.Value()
	if err != nil {
		s.log.Error("read counter", "error", err)
		jsonError(w, "counter unavailable", http.StatusServiceUnavailable)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{
		"generated": n,
		"render":    s.generator.Stats().Snapshot(),
	})
}
