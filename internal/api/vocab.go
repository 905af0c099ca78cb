package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/prody/prody/internal/core"
	"github.com/prody/prody/internal/vocab"
)

func (s *Server) handleListWords(w http.ResponseWriter, r *http.Request) {
	words, err := s.vocabService.List(r.Context(), parseLimit(r))
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{
		"words": words,
		"count": len(words),
	})
}

func (s *Server) handleAddWord(w http.ResponseWriter, r *http.Request) {
	var req vocab.AddRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	word, err := s.vocabService.Add(r.Context(), req)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, word)
}

func (s *Server) handleGetWord(w http.ResponseWriter, r *http.Request) {
	id := core.WordID(chi.URLParam(r, "id"))

	word, err := s.vocabService.Get(r.Context(), id)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, word)
}

func (s *Server) handleEnhanceWord(w http.ResponseWriter, r *http.Request) {
	id := core.WordID(chi.URLParam(r, "id"))

	word, err := s.vocabService.Enhance(r.Context(), id)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, word)
}

func (s *Server) handleMarkWordLearned(w http.ResponseWriter, r *http.Request) {
	id := core.WordID(chi.URLParam(r, "id"))

	word, err := s.vocabService.MarkLearned(r.Context(), id)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, word)
}
