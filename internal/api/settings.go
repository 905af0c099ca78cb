package api

import (
	"net/http"
	"strings"
)

// settingsRequest is the body for PUT /settings. Empty fields are left
// unchanged.
type settingsRequest struct {
	APIKey string `json:"api_key,omitempty"`
	Model  string `json:"model,omitempty"`
}

func (s *Server) handleGetSettings(w http.ResponseWriter, r *http.Request) {
	// The key itself never leaves the daemon.
	respondJSON(w, http.StatusOK, map[string]any{
		"ai_ready": s.aiService.Ready(),
	})
}

func (s *Server) handleUpdateSettings(w http.ResponseWriter, r *http.Request) {
	var req settingsRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	apiKey := strings.TrimSpace(req.APIKey)
	model := strings.TrimSpace(req.Model)
	if apiKey == "" && model == "" {
		respondError(w, http.StatusBadRequest, "nothing to update")
		return
	}

	if apiKey != "" {
		s.aiService.UpdateCredential(apiKey)
	}
	if model != "" {
		s.aiService.UpdateModel(model)
	}

	if s.onConfigChange != nil {
		s.onConfigChange(apiKey, model)
	}

	respondJSON(w, http.StatusOK, map[string]any{
		"ai_ready": s.aiService.Ready(),
	})
}
