package ai

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/prody/prody/internal/core"
)

// Generator is the remote generative-text call the orchestrator depends on.
// *llm.Client implements it; tests substitute call-counting stubs.
type Generator interface {
	Generate(ctx context.Context, apiKey, model, prompt string) (string, error)
}

// Service is the AI orchestrator. It owns the active model configuration and
// exposes one operation per task type. Configuration updates are safe to call
// concurrently with in-flight requests: each operation snapshots the
// credential and model at invocation time, and a rotation mid-call does not
// affect the call already in flight.
type Service struct {
	mu     sync.RWMutex
	apiKey string
	model  string

	gen Generator
}

// NewService creates the orchestrator with its initial configuration.
func NewService(gen Generator, apiKey, model string) *Service {
	return &Service{
		gen:    gen,
		apiKey: apiKey,
		model:  model,
	}
}

// UpdateCredential replaces the API key used for subsequent calls.
func (s *Service) UpdateCredential(apiKey string) {
	s.mu.Lock()
	s.apiKey = apiKey
	s.mu.Unlock()
}

// UpdateModel replaces the model identifier used for subsequent calls.
func (s *Service) UpdateModel(model string) {
	s.mu.Lock()
	s.model = model
	s.mu.Unlock()
}

// Ready reports whether a non-blank credential is configured.
func (s *Service) Ready() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return strings.TrimSpace(s.apiKey) != ""
}

// snapshot returns the configuration as of now. The error is the fixed
// configuration error when the credential is blank.
func (s *Service) snapshot() (apiKey, model string, err error) {
	s.mu.RLock()
	apiKey, model = s.apiKey, s.model
	s.mu.RUnlock()

	if strings.TrimSpace(apiKey) == "" {
		return "", "", core.ErrAPIKeyNotConfigured
	}
	return apiKey, model, nil
}

// generate performs the single remote call shared by all operations: no
// retry, empty text is an error, transport faults are wrapped and surfaced.
func (s *Service) generate(ctx context.Context, prompt string) (string, error) {
	apiKey, model, err := s.snapshot()
	if err != nil {
		return "", err
	}

	text, err := s.gen.Generate(ctx, apiKey, model, prompt)
	if err != nil {
		return "", fmt.Errorf("AI request failed: %w", err)
	}
	if strings.TrimSpace(text) == "" {
		return "", core.ErrEmptyResponse
	}
	return text, nil
}

// -----------------------------------------------------------------------------
// Typed results - one payload shape per task type
// -----------------------------------------------------------------------------

// ChatResult is the payload of a successful chat call.
type ChatResult struct {
	Reply     string `json:"reply"`
	ElapsedMs int64  `json:"elapsed_ms"`
	WordCount int    `json:"word_count"` // Whitespace-split approximation, not exact tokens
}

// JournalAnalysis is the payload of a successful journal analysis.
type JournalAnalysis struct {
	Summary    string   `json:"summary"`
	Reflection string   `json:"reflection"`
	Suggestion string   `json:"suggestion"`
	Sentiment  string   `json:"sentiment"`
	Themes     []string `json:"themes"`
}

// LetterReflection is the payload of a successful letter analysis.
type LetterReflection struct {
	Analysis      string `json:"analysis"`
	Encouragement string `json:"encouragement"`
}

// VocabInsight is the payload of a successful vocabulary enhancement.
type VocabInsight struct {
	Mnemonic   string `json:"mnemonic"`
	UsageNotes string `json:"usage_notes"`
}

// DailyWisdom is the payload of a successful daily wisdom call. The message
// is consumed as one literal string.
type DailyWisdom struct {
	Message string `json:"message"`
}

// -----------------------------------------------------------------------------
// Operations
// -----------------------------------------------------------------------------

// Chat sends a persona chat message. Elapsed wall-clock time and an
// approximate word count are measured for this operation only.
func (s *Service) Chat(ctx context.Context, persona core.PersonaMode, userCtx *core.UserContext, history []core.ChatMessage, message string) (*ChatResult, error) {
	prompt := BuildChatPrompt(persona, userCtx, history, message)

	start := time.Now()
	text, err := s.generate(ctx, prompt)
	if err != nil {
		return nil, err
	}

	return &ChatResult{
		Reply:     text,
		ElapsedMs: time.Since(start).Milliseconds(),
		WordCount: len(strings.Fields(text)),
	}, nil
}

// AnalyzeJournal analyzes a journal entry in the given persona's voice.
func (s *Service) AnalyzeJournal(ctx context.Context, content string, mood core.Mood, persona core.PersonaMode) (*JournalAnalysis, error) {
	prompt := BuildJournalAnalysisPrompt(content, mood, persona)

	text, err := s.generate(ctx, prompt)
	if err != nil {
		return nil, err
	}

	return parseJournalAnalysis(text), nil
}

// AnalyzeLetter produces a reflection on a future-self letter being opened
// daysAgo days after it was written.
func (s *Service) AnalyzeLetter(ctx context.Context, content string, daysAgo int, goals string) (*LetterReflection, error) {
	prompt := BuildLetterReflectionPrompt(content, daysAgo, goals)

	text, err := s.generate(ctx, prompt)
	if err != nil {
		return nil, err
	}

	return parseLetterReflection(text), nil
}

// EnhanceVocabulary produces a mnemonic and usage notes for a word.
func (s *Service) EnhanceVocabulary(ctx context.Context, word, meaning, wordType string) (*VocabInsight, error) {
	prompt := BuildVocabularyPrompt(word, meaning, wordType)

	text, err := s.generate(ctx, prompt)
	if err != nil {
		return nil, err
	}

	return parseVocabInsight(text), nil
}

// GenerateDailyWisdom produces the short unstructured daily message.
func (s *Service) GenerateDailyWisdom(ctx context.Context, userCtx *core.UserContext, persona core.PersonaMode) (*DailyWisdom, error) {
	prompt := BuildDailyWisdomPrompt(userCtx, persona)

	text, err := s.generate(ctx, prompt)
	if err != nil {
		return nil, err
	}

	return &DailyWisdom{Message: strings.TrimSpace(text)}, nil
}
