package ai

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/prody/prody/internal/core"
)

// stubGenerator counts calls and returns a canned response or error.
type stubGenerator struct {
	mu         sync.Mutex
	calls      int
	lastKey    string
	lastModel  string
	lastPrompt string
	response   string
	err        error
}

func (g *stubGenerator) Generate(ctx context.Context, apiKey, model, prompt string) (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.calls++
	g.lastKey = apiKey
	g.lastModel = model
	g.lastPrompt = prompt
	return g.response, g.err
}

func (g *stubGenerator) callCount() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.calls
}

// =============================================================================
// Precondition: blank credential fails fast, no remote call
// =============================================================================

func TestService_NotConfigured_AllOperations(t *testing.T) {
	tests := []struct {
		name string
		call func(s *Service) error
	}{
		{"chat", func(s *Service) error {
			_, err := s.Chat(context.Background(), core.PersonaBuddha, nil, nil, "hi")
			return err
		}},
		{"analyze journal", func(s *Service) error {
			_, err := s.AnalyzeJournal(context.Background(), "entry", core.MoodCalm, core.PersonaBuddha)
			return err
		}},
		{"analyze letter", func(s *Service) error {
			_, err := s.AnalyzeLetter(context.Background(), "letter", 3, "")
			return err
		}},
		{"enhance vocabulary", func(s *Service) error {
			_, err := s.EnhanceVocabulary(context.Background(), "word", "meaning", "noun")
			return err
		}},
		{"daily wisdom", func(s *Service) error {
			_, err := s.GenerateDailyWisdom(context.Background(), nil, core.PersonaBuddha)
			return err
		}},
	}

	for _, blank := range []string{"", "   "} {
		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				gen := &stubGenerator{response: "should never be returned"}
				svc := NewService(gen, blank, "gemini-1.5-flash")

				err := tt.call(svc)
				if !errors.Is(err, core.ErrAPIKeyNotConfigured) {
					t.Errorf("error = %v, want ErrAPIKeyNotConfigured", err)
				}
				if gen.callCount() != 0 {
					t.Errorf("remote call count = %d, want 0", gen.callCount())
				}
			})
		}
	}
}

func TestService_Ready(t *testing.T) {
	svc := NewService(&stubGenerator{}, "", "m")
	if svc.Ready() {
		t.Error("Ready() = true with blank key")
	}

	svc.UpdateCredential("key")
	if !svc.Ready() {
		t.Error("Ready() = false after credential update")
	}

	svc.UpdateCredential("  ")
	if svc.Ready() {
		t.Error("Ready() = true with whitespace key")
	}
}

// =============================================================================
// Configuration updates
// =============================================================================

func TestService_UpdatesPickedUpAtCallTime(t *testing.T) {
	gen := &stubGenerator{response: "ok"}
	svc := NewService(gen, "key-1", "model-1")

	if _, err := svc.GenerateDailyWisdom(context.Background(), nil, core.PersonaBuddha); err != nil {
		t.Fatalf("first call: %v", err)
	}
	if gen.lastKey != "key-1" || gen.lastModel != "model-1" {
		t.Errorf("first call used %s/%s", gen.lastKey, gen.lastModel)
	}

	svc.UpdateCredential("key-2")
	svc.UpdateModel("model-2")

	if _, err := svc.GenerateDailyWisdom(context.Background(), nil, core.PersonaBuddha); err != nil {
		t.Fatalf("second call: %v", err)
	}
	if gen.lastKey != "key-2" || gen.lastModel != "model-2" {
		t.Errorf("second call used %s/%s, want rotated config", gen.lastKey, gen.lastModel)
	}
}

func TestService_ConcurrentUpdates(t *testing.T) {
	gen := &stubGenerator{response: "ok"}
	svc := NewService(gen, "key", "model")

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			svc.UpdateCredential("rotated")
			svc.Chat(context.Background(), core.PersonaBuddha, nil, nil, "hi")
			svc.UpdateModel("other")
		}()
	}
	wg.Wait()
}

// =============================================================================
// Operations
// =============================================================================

func TestService_Chat(t *testing.T) {
	gen := &stubGenerator{response: "Breathe in.  Breathe out.\nBe here now."}
	svc := NewService(gen, "key", "model")

	result, err := svc.Chat(context.Background(), core.PersonaZen, nil, nil, "help me focus")
	if err != nil {
		t.Fatalf("Chat() error = %v", err)
	}

	if result.Reply != gen.response {
		t.Errorf("Reply = %q", result.Reply)
	}
	if result.WordCount != 7 {
		t.Errorf("WordCount = %d, want 7 (whitespace split)", result.WordCount)
	}
	if result.ElapsedMs < 0 {
		t.Errorf("ElapsedMs = %d, want >= 0", result.ElapsedMs)
	}
	if gen.callCount() != 1 {
		t.Errorf("remote calls = %d, want exactly 1", gen.callCount())
	}
	if !strings.Contains(gen.lastPrompt, "help me focus") {
		t.Error("prompt missing user message")
	}
}

func TestService_Chat_EmptyResponse(t *testing.T) {
	for _, response := range []string{"", "   \n\t"} {
		gen := &stubGenerator{response: response}
		svc := NewService(gen, "key", "model")

		_, err := svc.Chat(context.Background(), core.PersonaBuddha, nil, nil, "hi")
		if !errors.Is(err, core.ErrEmptyResponse) {
			t.Errorf("error = %v, want ErrEmptyResponse for %q", err, response)
		}
	}
}

func TestService_TransportFaultPassedThrough(t *testing.T) {
	gen := &stubGenerator{err: errors.New("quota exceeded")}
	svc := NewService(gen, "key", "model")

	_, err := svc.AnalyzeJournal(context.Background(), "entry", "", core.PersonaBuddha)
	if err == nil || !strings.Contains(err.Error(), "quota exceeded") {
		t.Errorf("error = %v, want fault message passed through", err)
	}
	if gen.callCount() != 1 {
		t.Errorf("remote calls = %d, want 1 (no retry)", gen.callCount())
	}
}

func TestService_AnalyzeLetter(t *testing.T) {
	gen := &stubGenerator{response: "ANALYSIS: good reflection\n\nENCOURAGEMENT: keep going"}
	svc := NewService(gen, "key", "model")

	result, err := svc.AnalyzeLetter(context.Background(), "dear future me", 30, "learn go")
	if err != nil {
		t.Fatalf("AnalyzeLetter() error = %v", err)
	}

	if result.Analysis != "good reflection" {
		t.Errorf("Analysis = %q", result.Analysis)
	}
	if result.Encouragement != "keep going" {
		t.Errorf("Encouragement = %q", result.Encouragement)
	}
	if !strings.Contains(gen.lastPrompt, "30 days ago") {
		t.Error("prompt missing elapsed days")
	}
}

func TestService_AnalyzeJournal(t *testing.T) {
	gen := &stubGenerator{response: "SUMMARY: s\nREFLECTION: r\nSUGGESTION: g\nSENTIMENT: positive\nTHEMES: growth"}
	svc := NewService(gen, "key", "model")

	result, err := svc.AnalyzeJournal(context.Background(), "a good day", core.MoodHappy, core.PersonaBuddha)
	if err != nil {
		t.Fatalf("AnalyzeJournal() error = %v", err)
	}
	if result.Sentiment != "positive" {
		t.Errorf("Sentiment = %q", result.Sentiment)
	}
	if len(result.Themes) != 1 || result.Themes[0] != "growth" {
		t.Errorf("Themes = %v", result.Themes)
	}
}

func TestService_EnhanceVocabulary(t *testing.T) {
	gen := &stubGenerator{response: "MNEMONIC: mayfly\nUSAGE: short-lived things"}
	svc := NewService(gen, "key", "model")

	result, err := svc.EnhanceVocabulary(context.Background(), "ephemeral", "short-lived", "adjective")
	if err != nil {
		t.Fatalf("EnhanceVocabulary() error = %v", err)
	}
	if result.Mnemonic != "mayfly" || result.UsageNotes != "short-lived things" {
		t.Errorf("result = %+v", result)
	}
}

func TestService_GenerateDailyWisdom(t *testing.T) {
	gen := &stubGenerator{response: "  Today, begin again.\n\nWhat will you let go of?  "}
	svc := NewService(gen, "key", "model")

	result, err := svc.GenerateDailyWisdom(context.Background(), nil, core.PersonaBuddha)
	if err != nil {
		t.Fatalf("GenerateDailyWisdom() error = %v", err)
	}
	if result.Message != "Today, begin again.\n\nWhat will you let go of?" {
		t.Errorf("Message = %q, want trimmed literal text", result.Message)
	}
}
