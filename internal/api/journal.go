package api

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/prody/prody/internal/core"
	"github.com/prody/prody/internal/journal"
)

func parseLimit(r *http.Request) int {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	return limit
}

func (s *Server) handleListEntries(w http.ResponseWriter, r *http.Request) {
	entries, err := s.journalService.List(r.Context(), parseLimit(r))
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{
		"entries": entries,
		"count":   len(entries),
	})
}

func (s *Server) handleCreateEntry(w http.ResponseWriter, r *http.Request) {
	var req journal.CreateRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	entry, err := s.journalService.Create(r.Context(), req)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, entry)
}

func (s *Server) handleGetEntry(w http.ResponseWriter, r *http.Request) {
	id := core.EntryID(chi.URLParam(r, "id"))

	entry, err := s.journalService.Get(r.Context(), id)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, entry)
}

func (s *Server) handleAnalyzeEntry(w http.ResponseWriter, r *http.Request) {
	id := core.EntryID(chi.URLParam(r, "id"))

	var req struct {
		Persona core.PersonaMode `json:"persona,omitempty"`
	}
	// The body is optional.
	decodeJSON(r, &req)

	entry, err := s.journalService.Analyze(r.Context(), id, req.Persona)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, entry)
}

func (s *Server) handleJournalStreak(w http.ResponseWriter, r *http.Request) {
	streak, err := s.journalService.Streak(r.Context())
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]int{"streak": streak})
}
