package server

import (
	"net/http"
)

func (s *Service) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":    "ok",
		"backend":   s.config.StoreBackend,
		"demo_mode": !s.pipeline.HasStore(),
		"vapi":      s.calls != nil,
		"archive":   s.recordings != nil,
	})
}
