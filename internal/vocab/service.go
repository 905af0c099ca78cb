// Package vocab implements vocabulary learning with AI mnemonics.
package vocab

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/prody/prody/internal/ai"
	"github.com/prody/prody/internal/core"
	"github.com/prody/prody/internal/logging"
	"github.com/prody/prody/internal/rewards"
	"github.com/prody/prody/internal/storage"
)

// Service manages the vocabulary list.
type Service struct {
	store   *storage.VocabStore
	ai      *ai.Service
	rewards *rewards.Service
	log     *logging.Logger
}

// NewService creates a vocab service
func NewService(store *storage.VocabStore, aiSvc *ai.Service, rewardSvc *rewards.Service) *Service {
	return &Service{
		store:   store,
		ai:      aiSvc,
		rewards: rewardSvc,
		log:     logging.Named("vocab"),
	}
}

// AddRequest carries the fields for a new word.
type AddRequest struct {
	Word    string `json:"word"`
	Meaning string `json:"meaning"`
	Type    string `json:"type,omitempty"`
}

// Add persists a new word. Words are unique; adding a duplicate is an error.
func (s *Service) Add(ctx context.Context, req AddRequest) (*core.VocabWord, error) {
	word := strings.TrimSpace(req.Word)
	meaning := strings.TrimSpace(req.Meaning)
	if word == "" || meaning == "" {
		return nil, fmt.Errorf("word and meaning are required: %w", core.ErrMissingRequired)
	}

	record := &core.VocabWord{
		ID:      core.WordID(uuid.New().String()),
		Word:    word,
		Meaning: meaning,
		Type:    strings.TrimSpace(req.Type),
	}

	if err := s.store.Create(record); err != nil {
		return nil, fmt.Errorf("save word %q: %w", word, err)
	}

	return record, nil
}

// Get returns one word by ID
func (s *Service) Get(ctx context.Context, id core.WordID) (*core.VocabWord, error) {
	return s.store.GetByID(id)
}

// List returns words newest first
func (s *Service) List(ctx context.Context, limit int) ([]*core.VocabWord, error) {
	return s.store.List(limit)
}

// Enhance asks the AI for a mnemonic and usage notes and stores them.
func (s *Service) Enhance(ctx context.Context, id core.WordID) (*core.VocabWord, error) {
	word, err := s.store.GetByID(id)
	if err != nil {
		return nil, err
	}

	insight, err := s.ai.EnhanceVocabulary(ctx, word.Word, word.Meaning, word.Type)
	if err != nil {
		return nil, err
	}

	if err := s.store.SetEnhancement(id, insight.Mnemonic, insight.UsageNotes); err != nil {
		return nil, fmt.Errorf("store enhancement: %w", err)
	}

	return s.store.GetByID(id)
}

// MarkLearned marks a word as learned and grants the learning reward on the
// first call only.
func (s *Service) MarkLearned(ctx context.Context, id core.WordID) (*core.VocabWord, error) {
	flipped, err := s.store.MarkLearned(id)
	if err != nil {
		return nil, err
	}

	if flipped {
		word, err := s.store.GetByID(id)
		if err != nil {
			return nil, err
		}
		desc := fmt.Sprintf("Learned the word %q", word.Word)
		if _, err := s.rewards.Grant(core.RewardWordLearned, desc); err != nil {
			s.log.Warn("reward grant failed for word %s: %v", id, err)
		}
		return word, nil
	}

	// Already learned, or unknown. GetByID sorts out which.
	return s.store.GetByID(id)
}

// LearnedCount returns the number of learned words
func (s *Service) LearnedCount(ctx context.Context) (int, error) {
	return s.store.CountLearned()
}
