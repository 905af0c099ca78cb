package letters

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/prody/prody/internal/ai"
	"github.com/prody/prody/internal/core"
	"github.com/prody/prody/internal/notifications"
	"github.com/prody/prody/internal/rewards"
	"github.com/prody/prody/internal/storage"
)

type stubGenerator struct {
	mu       sync.Mutex
	calls    int
	response string
	err      error
}

func (g *stubGenerator) Generate(ctx context.Context, apiKey, model, prompt string) (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.calls++
	return g.response, g.err
}

func (g *stubGenerator) callCount() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.calls
}

type fixture struct {
	manager *Manager
	store   *storage.LetterStore
	rewards *rewards.Service
	notify  *notifications.Service
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
		response: "ANALYSIS: You were hopeful then.\n\nENCOURAGEMENT: Keep tending that hope.",
	}
	aiSvc := ai.NewService(gen, "test-key", "test-model")
	rewardSvc := rewards.NewService(storage.NewRewardStore(db))
	notifySvc := notifications.NewService(db)
	store := storage.NewLetterStore(db)

	return &fixture{
		manager: NewManager(store, aiSvc, rewardSvc, notifySvc),
		store:   store,
		rewards: rewardSvc,
		notify:  notifySvc,
		gen:     gen,
	}
}

func TestCreateValidation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	tests := []struct {
		name string
		req  CreateRequest
		want error
	}{
		{"empty content", CreateRequest{Content: "   ", DaysFromNow: 7}, core.ErrMissingRequired},
		{"negative days", CreateRequest{Content: "hi", DaysFromNow: -1}, core.ErrInvalidInput},
		{"unknown mood", CreateRequest{Content: "hi", Mood: "ecstatic", DaysFromNow: 7}, core.ErrInvalidInput},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.manager.Create(ctx, tt.req)
			if !errors.Is(err, tt.want) {
				t.Errorf("err = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestCreateGrantsWritingReward(t *testing.T) {
	f := newFixture(t)

	letter, err := f.manager.Create(context.Background(), CreateRequest{
		Content:     "Dear future me",
		Subject:     "Checking in",
		Mood:        core.MoodHappy,
		DaysFromNow: DeliverInAWeek,
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	if letter.Delivered || letter.Opened {
		t.Error("new letter should be pending")
	}

	wantDelivery := time.Now().UTC().AddDate(0, 0, 7)
	if diff := letter.DeliveryAt.Sub(wantDelivery); diff < -time.Minute || diff > time.Minute {
		t.Errorf("delivery at = %v, want about %v", letter.DeliveryAt, wantDelivery)
	}

	progress, err := f.rewards.Progress()
	if err != nil {
		t.Fatalf("progress: %v", err)
	}
	if progress.TotalXP != rewards.XPLetterWritten {
		t.Errorf("total xp = %d, want %d", progress.TotalXP, rewards.XPLetterWritten)
	}
}

func TestCreateDefaultsMood(t *testing.T) {
	f := newFixture(t)

	letter, err := f.manager.Create(context.Background(), CreateRequest{
		Content:     "no mood given",
		DaysFromNow: 1,
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if letter.Mood != core.MoodNeutral {
		t.Errorf("mood = %q, want %q", letter.Mood, core.MoodNeutral)
	}
}

func TestProcessDeliveriesFiresOnce(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	letter, err := f.manager.Create(ctx, CreateRequest{Content: "due now", DaysFromNow: 0})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	delivered, err := f.manager.ProcessDeliveries(ctx)
	if err != nil {
		t.Fatalf("process deliveries: %v", err)
	}
	if delivered != 1 {
		t.Fatalf("delivered = %d, want 1", delivered)
	}

	list, err := f.notify.List(ctx, false, 10)
	if err != nil {
		t.Fatalf("list notifications: %v", err)
	}
	if len(list) != 1 {
		t.Fatalf("notifications = %d, want 1", len(list))
	}
	if list[0].Type != notifications.NotifyLetterDelivered {
		t.Errorf("notification type = %q", list[0].Type)
	}
	if list[0].LetterID != letter.ID {
		t.Errorf("notification letter = %s, want %s", list[0].LetterID, letter.ID)
	}

	// Re-running the sweep must not deliver or notify again.
	delivered, err = f.manager.ProcessDeliveries(ctx)
	if err != nil {
		t.Fatalf("second sweep: %v", err)
	}
	if delivered != 0 {
		t.Errorf("second sweep delivered = %d, want 0", delivered)
	}

	list, err = f.notify.List(ctx, false, 10)
	if err != nil {
		t.Fatalf("list notifications: %v", err)
	}
	if len(list) != 1 {
		t.Errorf("notifications after second sweep = %d, want 1", len(list))
	}
}

func TestProcessDeliveriesSkipsFutureLetters(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	if _, err := f.manager.Create(ctx, CreateRequest{Content: "later", DaysFromNow: 30}); err != nil {
		t.Fatalf("create: %v", err)
	}

	delivered, err := f.manager.ProcessDeliveries(ctx)
	if err != nil {
		t.Fatalf("process deliveries: %v", err)
	}
	if delivered != 0 {
		t.Errorf("delivered = %d, want 0", delivered)
	}
}

func TestViewBeforeDelivery(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	letter, err := f.manager.Create(ctx, CreateRequest{Content: "patience", DaysFromNow: 30})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	_, err = f.manager.View(ctx, letter.ID)
	if !errors.Is(err, core.ErrLetterNotDelivered) {
		t.Errorf("err = %v, want ErrLetterNotDelivered", err)
	}
}

func TestViewMissingLetter(t *testing.T) {
	f := newFixture(t)

	_, err := f.manager.View(context.Background(), "no-such-letter")
	if !errors.Is(err, core.ErrLetterNotFound) {
		t.Errorf("err = %v, want ErrLetterNotFound", err)
	}
}

func TestViewOpensOnceAndReflects(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	letter, err := f.manager.Create(ctx, CreateRequest{Content: "hello future", DaysFromNow: 0})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := f.manager.ProcessDeliveries(ctx); err != nil {
		t.Fatalf("process deliveries: %v", err)
	}

	viewed, err := f.manager.View(ctx, letter.ID)
	if err != nil {
		t.Fatalf("view: %v", err)
	}
	if !viewed.Opened {
		t.Error("first view should open the letter")
	}

	f.manager.WaitForReflections()

	got, err := f.manager.Get(ctx, letter.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Analysis != "You were hopeful then." {
		t.Errorf("analysis = %q", got.Analysis)
	}
	if got.Encouragement != "Keep tending that hope." {
		t.Errorf("encouragement = %q", got.Encouragement)
	}

	wantXP := rewards.XPLetterWritten + rewards.XPLetterReflected
	progress, err := f.rewards.Progress()
	if err != nil {
		t.Fatalf("progress: %v", err)
	}
	if progress.TotalXP != wantXP {
		t.Errorf("total xp = %d, want %d", progress.TotalXP, wantXP)
	}

	// Repeat view: no new reward, no new reflection call.
	callsBefore := f.gen.callCount()
	if _, err := f.manager.View(ctx, letter.ID); err != nil {
		t.Fatalf("second view: %v", err)
	}
	f.manager.WaitForReflections()

	if f.gen.callCount() != callsBefore {
		t.Error("repeat view should not trigger another reflection")
	}
	progress, err = f.rewards.Progress()
	if err != nil {
		t.Fatalf("progress after second view: %v", err)
	}
	if progress.TotalXP != wantXP {
		t.Errorf("total xp after second view = %d, want %d", progress.TotalXP, wantXP)
	}
}

func TestViewSurvivesReflectionFailure(t *testing.T) {
	f := newFixture(t)
	f.gen.err = errors.New("model overloaded")
	ctx := context.Background()

	letter, err := f.manager.Create(ctx, CreateRequest{Content: "fragile", DaysFromNow: 0})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := f.manager.ProcessDeliveries(ctx); err != nil {
		t.Fatalf("process deliveries: %v", err)
	}

	viewed, err := f.manager.View(ctx, letter.ID)
	if err != nil {
		t.Fatalf("view should not fail with the AI: %v", err)
	}
	if !viewed.Opened {
		t.Error("letter should still open")
	}

	f.manager.WaitForReflections()

	got, err := f.manager.Get(ctx, letter.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Analysis != "" || got.Encouragement != "" {
		t.Errorf("failed reflection should leave fields empty, got %q / %q", got.Analysis, got.Encouragement)
	}
}

func TestListFilters(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	if _, err := f.manager.Create(ctx, CreateRequest{Content: "due", DaysFromNow: 0}); err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := f.manager.Create(ctx, CreateRequest{Content: "later", DaysFromNow: 30}); err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := f.manager.ProcessDeliveries(ctx); err != nil {
		t.Fatalf("process deliveries: %v", err)
	}

	all, err := f.manager.List(ctx, nil, 10)
	if err != nil {
		t.Fatalf("list all: %v", err)
	}
	if len(all) != 2 {
		t.Errorf("all letters = %d, want 2", len(all))
	}

	deliveredOnly := true
	delivered, err := f.manager.List(ctx, &deliveredOnly, 10)
	if err != nil {
		t.Fatalf("list delivered: %v", err)
	}
	if len(delivered) != 1 || delivered[0].Content != "due" {
		t.Errorf("delivered letters = %+v", delivered)
	}

	pendingOnly := false
	pending, err := f.manager.List(ctx, &pendingOnly, 10)
	if err != nil {
		t.Fatalf("list pending: %v", err)
	}
	if len(pending) != 1 || pending[0].Content != "later" {
		t.Errorf("pending letters = %+v", pending)
	}
}
