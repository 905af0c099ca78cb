package api

import (
	"net/http"

	"github.com/prody/prody/internal/core"
)

// chatRequest is the body for POST /chat
type chatRequest struct {
	Message string             `json:"message"`
	Persona core.PersonaMode   `json:"persona,omitempty"`
	History []core.ChatMessage `json:"history,omitempty"`
}

func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	var req chatRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Message == "" {
		respondError(w, http.StatusBadRequest, "message is required")
		return
	}

	userCtx := s.buildUserContext(r.Context())

	result, err := s.aiService.Chat(r.Context(), req.Persona, userCtx, req.History, req.Message)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	// A chat session is worth a little XP. Failures only cost the grant.
	if _, err := s.rewardService.Grant(core.RewardChatSession, "Had a chat session"); err != nil {
		s.log.Warn("chat reward grant failed: %v", err)
	}

	respondJSON(w, http.StatusOK, result)
}

func (s *Server) handleDailyWisdom(w http.ResponseWriter, r *http.Request) {
	persona := core.PersonaMode(r.URL.Query().Get("persona"))
	userCtx := s.buildUserContext(r.Context())

	wisdom, err := s.aiService.GenerateDailyWisdom(r.Context(), userCtx, persona)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, wisdom)
}
