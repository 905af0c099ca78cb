package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/prody/prody/internal/core"
	"github.com/prody/prody/internal/letters"
)

func (s *Server) handleListLetters(w http.ResponseWriter, r *http.Request) {
	var delivered *bool
	if q := r.URL.Query().Get("delivered"); q != "" {
		b := q == "true"
		delivered = &b
	}

	list, err := s.letterManager.List(r.Context(), delivered, parseLimit(r))
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{
		"letters": list,
		"count":   len(list),
	})
}

func (s *Server) handleCreateLetter(w http.ResponseWriter, r *http.Request) {
	var req letters.CreateRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	letter, err := s.letterManager.Create(r.Context(), req)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, letter)
}

func (s *Server) handleGetLetter(w http.ResponseWriter, r *http.Request) {
	id := core.LetterID(chi.URLParam(r, "id"))

	letter, err := s.letterManager.Get(r.Context(), id)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, letter)
}

// handleViewLetter opens a delivered letter. The first view triggers the
// reward and the background AI reflection.
func (s *Server) handleViewLetter(w http.ResponseWriter, r *http.Request) {
	id := core.LetterID(chi.URLParam(r, "id"))

	letter, err := s.letterManager.View(r.Context(), id)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, letter)
}
