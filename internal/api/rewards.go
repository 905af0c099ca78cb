package api

import (
	"net/http"
)

func (s *Server) handleRewardSummary(w http.ResponseWriter, r *http.Request) {
	summary, err := s.rewardService.Summary()
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, summary)
}

func (s *Server) handleBadges(w http.ResponseWriter, r *http.Request) {
	badges, err := s.rewardService.Badges()
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{"badges": badges})
}
