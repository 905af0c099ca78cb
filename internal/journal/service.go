// Package journal implements journaling with on-demand AI analysis.
package journal

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/prody/prody/internal/ai"
	"github.com/prody/prody/internal/core"
	"github.com/prody/prody/internal/logging"
	"github.com/prody/prody/internal/rewards"
	"github.com/prody/prody/internal/storage"
)

// Service manages journal entries.
type Service struct {
	store   *storage.JournalStore
	ai      *ai.Service
	rewards *rewards.Service
	log     *logging.Logger

	now func() time.Time
}

// NewService creates a journal service
func NewService(store *storage.JournalStore, aiSvc *ai.Service, rewardSvc *rewards.Service) *Service {
	return &Service{
		store:   store,
		ai:      aiSvc,
		rewards: rewardSvc,
		log:     logging.Named("journal"),
		now:     func() time.Time { return time.Now().UTC() },
	}
}

// CreateRequest carries the fields for a new entry.
type CreateRequest struct {
	Content string    `json:"content"`
	Mood    core.Mood `json:"mood,omitempty"`
}

// Create persists a new entry and grants the journaling reward.
func (s *Service) Create(ctx context.Context, req CreateRequest) (*core.JournalEntry, error) {
	if strings.TrimSpace(req.Content) == "" {
		return nil, fmt.Errorf("entry content is required: %w", core.ErrMissingRequired)
	}
	if req.Mood != "" && !req.Mood.Valid() {
		return nil, fmt.Errorf("unknown mood %q: %w", req.Mood, core.ErrInvalidInput)
	}

	entry := &core.JournalEntry{
		ID:      core.EntryID(uuid.New().String()),
		Content: req.Content,
		Mood:    req.Mood,
	}

	if err := s.store.Create(entry); err != nil {
		return nil, fmt.Errorf("save entry: %w", err)
	}

	if _, err := s.rewards.Grant(core.RewardJournalEntry, "Wrote a journal entry"); err != nil {
		s.log.Warn("reward grant failed for entry %s: %v", entry.ID, err)
	}

	return entry, nil
}

// Get returns one entry by ID
func (s *Service) Get(ctx context.Context, id core.EntryID) (*core.JournalEntry, error) {
	return s.store.GetByID(id)
}

// List returns entries newest first
func (s *Service) List(ctx context.Context, limit int) ([]*core.JournalEntry, error) {
	return s.store.List(limit)
}

// Analyze runs the AI analysis for an entry in the given persona's voice and
// stores the result. Re-running replaces the previous analysis.
func (s *Service) Analyze(ctx context.Context, id core.EntryID, persona core.PersonaMode) (*core.JournalEntry, error) {
	entry, err := s.store.GetByID(id)
	if err != nil {
		return nil, err
	}

	analysis, err := s.ai.AnalyzeJournal(ctx, entry.Content, entry.Mood, persona)
	if err != nil {
		return nil, err
	}

	update := &core.JournalEntry{
		Summary:    analysis.Summary,
		Reflection: analysis.Reflection,
		Suggestion: analysis.Suggestion,
		Sentiment:  analysis.Sentiment,
		Themes:     analysis.Themes,
	}
	if err := s.store.SetAnalysis(id, update); err != nil {
		return nil, fmt.Errorf("store analysis: %w", err)
	}

	return s.store.GetByID(id)
}

// Streak returns the current run of consecutive days with at least one
// entry, counting back from today or yesterday.
func (s *Service) Streak(ctx context.Context) (int, error) {
	days, err := s.store.EntryDays(365)
	if err != nil {
		return 0, err
	}
	if len(days) == 0 {
		return 0, nil
	}

	today := s.now().Truncate(24 * time.Hour)
	latest, err := time.Parse("2006-01-02", days[0])
	if err != nil {
		return 0, fmt.Errorf("parse entry day %q: %w", days[0], err)
	}

	// A streak survives until a full day is missed.
	if today.Sub(latest) > 24*time.Hour {
		return 0, nil
	}

	streak := 1
	prev := latest
	for _, day := range days[1:] {
		d, err := time.Parse("2006-01-02", day)
		if err != nil {
			return 0, fmt.Errorf("parse entry day %q: %w", day, err)
		}
		if prev.Sub(d) != 24*time.Hour {
			break
		}
		streak++
		prev = d
	}

	return streak, nil
}

// RecentMood returns the mood of the newest entry that has one.
func (s *Service) RecentMood(ctx context.Context) (core.Mood, bool, error) {
	entries, err := s.store.List(10)
	if err != nil {
		return "", false, err
	}
	for _, entry := range entries {
		if entry.Mood != "" {
			return entry.Mood, true, nil
		}
	}
	return "", false, nil
}

// RecentSummary returns the newest stored AI summary, if any.
func (s *Service) RecentSummary(ctx context.Context) (string, bool, error) {
	entries, err := s.store.List(10)
	if err != nil {
		return "", false, err
	}
	for _, entry := range entries {
		if entry.Summary != "" {
			return entry.Summary, true, nil
		}
	}
	return "", false, nil
}
