package vocab

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/prody/prody/internal/ai"
	"github.com/prody/prody/internal/core"
	"github.com/prody/prody/internal/rewards"
	"github.com/prody/prody/internal/storage"
)

type stubGenerator struct {
	mu       sync.Mutex
	response string
	err      error
}

func (g *stubGenerator) Generate(ctx context.Context, apiKey, model, prompt string) (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.response, g.err
}

type fixture struct {
	service *Service
	rewards *rewards.Service
	gen     *stubGenerator
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	db, err := storage.Open(storage.Config{InMemory: true})
	if err != nil {
		t.Fatalf("open database: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	if err := db.Migrate(); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	gen := &stubGenerator{
		response: "MNEMONIC: Sonder sounds like wonder at other lives.\n\n" +
			"USAGE: Best in reflective writing, rarely in speech.",
	}
	rewardSvc := rewards.NewService(storage.NewRewardStore(db))
	svc := NewService(storage.NewVocabStore(db), ai.NewService(gen, "key", "model"), rewardSvc)

	return &fixture{service: svc, rewards: rewardSvc, gen: gen}
}

func TestAddValidation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	cases := []AddRequest{
		{Word: "", Meaning: "something"},
		{Word: "sonder", Meaning: "  "},
	}
	for _, req := range cases {
		if _, err := f.service.Add(ctx, req); !errors.Is(err, core.ErrMissingRequired) {
			t.Errorf("Add(%+v) err = %v, want ErrMissingRequired", req, err)
		}
	}
}

func TestAddTrimsAndStores(t *testing.T) {
	f := newFixture(t)

	word, err := f.service.Add(context.Background(), AddRequest{
		Word:    "  sonder ",
		Meaning: " the realization of other lives ",
		Type:    " noun ",
	})
	if err != nil {
		t.Fatalf("add: %v", err)
	}
	if word.Word != "sonder" || word.Type != "noun" {
		t.Errorf("word = %q type = %q, want trimmed values", word.Word, word.Type)
	}
}

func TestAddDuplicate(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	if _, err := f.service.Add(ctx, AddRequest{Word: "ataraxia", Meaning: "calm"}); err != nil {
		t.Fatalf("add: %v", err)
	}
	if _, err := f.service.Add(ctx, AddRequest{Word: "ataraxia", Meaning: "calm again"}); !errors.Is(err, core.ErrInvalidInput) {
		t.Errorf("duplicate err = %v, want ErrInvalidInput", err)
	}
}

func TestEnhance(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	word, err := f.service.Add(ctx, AddRequest{Word: "sonder", Meaning: "other lives", Type: "noun"})
	if err != nil {
		t.Fatalf("add: %v", err)
	}

	enhanced, err := f.service.Enhance(ctx, word.ID)
	if err != nil {
		t.Fatalf("enhance: %v", err)
	}
	if enhanced.Mnemonic != "Sonder sounds like wonder at other lives." {
		t.Errorf("mnemonic = %q", enhanced.Mnemonic)
	}
	if enhanced.UsageNotes != "Best in reflective writing, rarely in speech." {
		t.Errorf("usage notes = %q", enhanced.UsageNotes)
	}
	if enhanced.EnhancedAt == nil {
		t.Error("enhanced word should carry a timestamp")
	}
}

func TestEnhancePropagatesAIFailure(t *testing.T) {
	f := newFixture(t)
	f.gen.err = errors.New("model overloaded")
	ctx := context.Background()

	word, err := f.service.Add(ctx, AddRequest{Word: "sonder", Meaning: "other lives"})
	if err != nil {
		t.Fatalf("add: %v", err)
	}

	if _, err := f.service.Enhance(ctx, word.ID); err == nil {
		t.Error("enhance should surface AI failures")
	}
}

func TestMarkLearnedRewardsOnce(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	word, err := f.service.Add(ctx, AddRequest{Word: "sonder", Meaning: "other lives"})
	if err != nil {
		t.Fatalf("add: %v", err)
	}

	learned, err := f.service.MarkLearned(ctx, word.ID)
	if err != nil {
		t.Fatalf("mark learned: %v", err)
	}
	if !learned.Learned {
		t.Error("word should be learned")
	}

	// Second call changes nothing and grants nothing.
	if _, err := f.service.MarkLearned(ctx, word.ID); err != nil {
		t.Fatalf("second mark learned: %v", err)
	}

	progress, err := f.rewards.Progress()
	if err != nil {
		t.Fatalf("progress: %v", err)
	}
	if progress.TotalXP != rewards.XPWordLearned {
		t.Errorf("total xp = %d, want %d", progress.TotalXP, rewards.XPWordLearned)
	}

	count, err := f.service.LearnedCount(ctx)
	if err != nil {
		t.Fatalf("learned count: %v", err)
	}
	if count != 1 {
		t.Errorf("learned count = %d, want 1", count)
	}
}

func TestMarkLearnedMissingWord(t *testing.T) {
	f := newFixture(t)

	_, err := f.service.MarkLearned(context.Background(), "no-such-word")
	if !errors.Is(err, core.ErrWordNotFound) {
		t.Errorf("err = %v, want ErrWordNotFound", err)
	}
}
