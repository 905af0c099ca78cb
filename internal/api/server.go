// Package api provides the HTTP API server for Prody.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/prody/prody/internal/ai"
	"github.com/prody/prody/internal/core"
	"github.com/prody/prody/internal/journal"
	"github.com/prody/prody/internal/letters"
	"github.com/prody/prody/internal/logging"
	"github.com/prody/prody/internal/notifications"
	"github.com/prody/prody/internal/rewards"
	"github.com/prody/prody/internal/storage"
	"github.com/prody/prody/internal/vocab"
)

// Server is the HTTP API server
type Server struct {
	router     *chi.Mux
	httpServer *http.Server
	log        *logging.Logger

	db    *storage.DB
	wsHub *WebSocketHub

	aiService      *ai.Service
	letterManager  *letters.Manager
	journalService *journal.Service
	vocabService   *vocab.Service
	rewardService  *rewards.Service
	notifyService  *notifications.Service

	onConfigChange func(apiKey, model string)
}

// Config for the server
type Config struct {
	Host string
	Port int

	DB             *storage.DB
	AIService      *ai.Service
	LetterManager  *letters.Manager
	JournalService *journal.Service
	VocabService   *vocab.Service
	RewardService  *rewards.Service
	NotifyService  *notifications.Service

	// Called after credentials change through the settings endpoint, so the
	// daemon can persist them.
	OnConfigChange func(apiKey, model string)
}

// New creates a new API server
func New(cfg Config) *Server {
	s := &Server{
		log:            logging.Named("api"),
		db:             cfg.DB,
		wsHub:          NewWebSocketHub(),
		aiService:      cfg.AIService,
		letterManager:  cfg.LetterManager,
		journalService: cfg.JournalService,
		vocabService:   cfg.VocabService,
		rewardService:  cfg.RewardService,
		notifyService:  cfg.NotifyService,
		onConfigChange: cfg.OnConfigChange,
	}

	s.setupRouter()

	host := cfg.Host
	if host == "" {
		host = "localhost"
	}
	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf("%s:%d", host, cfg.Port),
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 120 * time.Second, // AI calls can be slow
		IdleTimeout:  60 * time.Second,
	}

	// Push new notifications out over WebSocket.
	if s.notifyService != nil {
		s.notifyService.Subscribe(newHubSubscriber(s.wsHub))
	}

	return s
}

// setupRouter configures all routes
func (s *Server) setupRouter() {
	r := chi.NewRouter()

	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/health", s.handleHealth)
		r.Get("/stats", s.handleGetStats)

		r.Get("/personas", s.handleGetPersonas)
		r.Get("/moods", s.handleGetMoods)

		r.Post("/chat", s.handleChat)
		r.Get("/wisdom", s.handleDailyWisdom)

		r.Route("/letters", func(r chi.Router) {
			r.Get("/", s.handleListLetters)
			r.Post("/", s.handleCreateLetter)
			r.Get("/{id}", s.handleGetLetter)
			r.Post("/{id}/view", s.handleViewLetter)
		})

		r.Route("/journal", func(r chi.Router) {
			r.Get("/", s.handleListEntries)
			r.Post("/", s.handleCreateEntry)
			r.Get("/streak", s.handleJournalStreak)
			r.Get("/{id}", s.handleGetEntry)
			r.Post("/{id}/analyze", s.handleAnalyzeEntry)
		})

		r.Route("/vocab", func(r chi.Router) {
			r.Get("/", s.handleListWords)
			r.Post("/", s.handleAddWord)
			r.Get("/{id}", s.handleGetWord)
			r.Post("/{id}/enhance", s.handleEnhanceWord)
			r.Post("/{id}/learned", s.handleMarkWordLearned)
		})

		r.Route("/rewards", func(r chi.Router) {
			r.Get("/", s.handleRewardSummary)
			r.Get("/badges", s.handleBadges)
		})

		r.Route("/notifications", func(r chi.Router) {
			r.Get("/", s.handleListNotifications)
			r.Get("/stats", s.handleNotificationStats)
			r.Post("/read-all", s.handleMarkAllNotificationsRead)
			r.Post("/{id}/read", s.handleMarkNotificationRead)
		})

		r.Get("/settings", s.handleGetSettings)
		r.Put("/settings", s.handleUpdateSettings)
	})

	r.Get("/ws", s.handleWebSocket)

	s.router = r
}

// Handler returns the router, used by tests
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start starts the HTTP server
func (s *Server) Start() error {
	go s.wsHub.Run()

	s.log.Info("listening on http://%s", s.httpServer.Addr)
	return s.httpServer.ListenAndServe()
}

// Stop gracefully stops the server
func (s *Server) Stop(ctx context.Context) error {
	s.wsHub.Close()
	return s.httpServer.Shutdown(ctx)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]any{
		"status":   "ok",
		"ai_ready": s.aiService.Ready(),
	})
}

func (s *Server) handleGetStats(w http.ResponseWriter, r *http.Request) {
	progress, err := s.rewardService.Progress()
	if err != nil {
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	streak, err := s.journalService.Streak(r.Context())
	if err != nil {
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	wordsLearned, err := s.vocabService.LearnedCount(r.Context())
	if err != nil {
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{
		"total_xp":      progress.TotalXP,
		"level":         progress.Level,
		"streak":        streak,
		"words_learned": wordsLearned,
	})
}

func (s *Server) handleGetPersonas(w http.ResponseWriter, r *http.Request) {
	type personaResponse struct {
		Mode  core.PersonaMode `json:"mode"`
		Label string           `json:"label"`
		Emoji string           `json:"emoji"`
	}

	list := make([]personaResponse, 0, len(core.Personas))
	for mode, info := range core.Personas {
		list = append(list, personaResponse{Mode: mode, Label: info.Label, Emoji: info.Emoji})
	}

	respondJSON(w, http.StatusOK, map[string]any{
		"personas": list,
		"default":  core.DefaultPersona,
	})
}

func (s *Server) handleGetMoods(w http.ResponseWriter, r *http.Request) {
	type moodResponse struct {
		Mood  core.Mood `json:"mood"`
		Label string    `json:"label"`
		Emoji string    `json:"emoji"`
	}

	list := make([]moodResponse, 0, len(core.Moods))
	for mood, info := range core.Moods {
		list = append(list, moodResponse{Mood: mood, Label: info.Label, Emoji: info.Emoji})
	}

	respondJSON(w, http.StatusOK, map[string]any{"moods": list})
}

// buildUserContext assembles the optional context block for AI prompts from
// whatever signals are available. Failures just leave fields absent.
func (s *Server) buildUserContext(ctx context.Context) *core.UserContext {
	userCtx := &core.UserContext{}

	if streak, err := s.journalService.Streak(ctx); err == nil && streak > 0 {
		userCtx.Streak = &streak
	}
	if learned, err := s.vocabService.LearnedCount(ctx); err == nil && learned > 0 {
		userCtx.WordsLearned = &learned
	}
	if mood, ok, err := s.journalService.RecentMood(ctx); err == nil && ok {
		m := string(mood)
		userCtx.RecentMood = &m
	}
	if summary, ok, err := s.journalService.RecentSummary(ctx); err == nil && ok {
		userCtx.JournalSummary = &summary
	}

	return userCtx
}

func respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}

// respondServiceError maps domain errors to HTTP statuses
func respondServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, core.ErrLetterNotFound),
		errors.Is(err, core.ErrEntryNotFound),
		errors.Is(err, core.ErrWordNotFound),
		errors.Is(err, core.ErrRecordNotFound):
		respondError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, core.ErrInvalidInput),
		errors.Is(err, core.ErrMissingRequired):
		respondError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, core.ErrLetterNotDelivered):
		respondError(w, http.StatusConflict, err.Error())
	case errors.Is(err, core.ErrAPIKeyNotConfigured):
		respondError(w, http.StatusServiceUnavailable, err.Error())
	default:
		respondError(w, http.StatusInternalServerError, err.Error())
	}
}

func decodeJSON(r *http.Request, dst any) error {
	defer r.Body.Close()
	return json.NewDecoder(r.Body).Decode(dst)
}
