package rewards

import (
	"errors"
	"testing"

	"github.com/prody/prody/internal/core"
	"github.com/prody/prody/internal/storage"
)

func testService(t *testing.T) *Service {
	t.Helper()

	db, err := storage.Open(storage.Config{InMemory: true})
	if err != nil {
		t.Fatalf("open database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	if err := db.Migrate(); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	return NewService(storage.NewRewardStore(db))
}

func TestGrantUsesFixedAmounts(t *testing.T) {
	svc := testService(t)

	grant, err := svc.Grant(core.RewardLetterWritten, "wrote a letter")
	if err != nil {
		t.Fatalf("grant: %v", err)
	}
	if grant.Amount != XPLetterWritten {
		t.Errorf("amount = %d, want %d", grant.Amount, XPLetterWritten)
	}
	if grant.ID == "" {
		t.Error("grant should carry an ID")
	}
	if grant.GrantedAt.IsZero() {
		t.Error("grant should carry a timestamp")
	}
}

func TestGrantUnknownSource(t *testing.T) {
	svc := testService(t)

	_, err := svc.Grant(core.RewardSource("mystery"), "")
	if !errors.Is(err, core.ErrInvalidInput) {
		t.Errorf("err = %v, want ErrInvalidInput", err)
	}
}

func TestLevelThresholds(t *testing.T) {
	tests := []struct {
		totalXP int
		level   int
	}{
		{0, 1},
		{99, 1},
		{100, 2},
		{299, 2},
		{300, 3},
		{599, 3},
		{600, 4},
	}

	for _, tt := range tests {
		if got := levelFor(tt.totalXP); got != tt.level {
			t.Errorf("levelFor(%d) = %d, want %d", tt.totalXP, got, tt.level)
		}
	}
}

func TestProgress(t *testing.T) {
	svc := testService(t)

	// 7 letters written = 105 XP, just into level 2.
	for i := 0; i < 7; i++ {
		if _, err := svc.Grant(core.RewardLetterWritten, ""); err != nil {
			t.Fatalf("grant: %v", err)
		}
	}

	progress, err := svc.Progress()
	if err != nil {
		t.Fatalf("progress: %v", err)
	}
	if progress.TotalXP != 105 {
		t.Errorf("total xp = %d, want 105", progress.TotalXP)
	}
	if progress.Level != 2 {
		t.Errorf("level = %d, want 2", progress.Level)
	}
	if progress.LevelXP != 5 {
		t.Errorf("level xp = %d, want 5", progress.LevelXP)
	}
	if progress.NextLevelXP != 200 {
		t.Errorf("next level xp = %d, want 200", progress.NextLevelXP)
	}
}

func TestBadges(t *testing.T) {
	svc := testService(t)

	if _, err := svc.Grant(core.RewardLetterWritten, ""); err != nil {
		t.Fatalf("grant: %v", err)
	}
	for i := 0; i < 3; i++ {
		if _, err := svc.Grant(core.RewardJournalEntry, ""); err != nil {
			t.Fatalf("grant: %v", err)
		}
	}

	badges, err := svc.Badges()
	if err != nil {
		t.Fatalf("badges: %v", err)
	}

	byID := make(map[string]Badge)
	for _, b := range badges {
		byID[b.ID] = b
	}

	if !byID["first-letter"].Earned {
		t.Error("first-letter should be earned after one letter")
	}
	if byID["steady-scribe"].Earned {
		t.Error("steady-scribe should not be earned after three entries")
	}
	if byID["steady-scribe"].Progress != 3 {
		t.Errorf("steady-scribe progress = %d, want 3", byID["steady-scribe"].Progress)
	}
}

func TestSummary(t *testing.T) {
	svc := testService(t)

	if _, err := svc.Grant(core.RewardJournalEntry, "morning pages"); err != nil {
		t.Fatalf("grant: %v", err)
	}
	if _, err := svc.Grant(core.RewardWordLearned, "learned sonder"); err != nil {
		t.Fatalf("grant: %v", err)
	}

	summary, err := svc.Summary()
	if err != nil {
		t.Fatalf("summary: %v", err)
	}
	if summary.Progress.TotalXP != XPJournalEntry+XPWordLearned {
		t.Errorf("total xp = %d", summary.Progress.TotalXP)
	}
	if summary.BySource[core.RewardJournalEntry] != XPJournalEntry {
		t.Errorf("journal xp = %d", summary.BySource[core.RewardJournalEntry])
	}
	if len(summary.Recent) != 2 {
		t.Errorf("recent grants = %d, want 2", len(summary.Recent))
	}
	if len(summary.Badges) != len(badgeRules) {
		t.Errorf("badges = %d, want %d", len(summary.Badges), len(badgeRules))
	}
}
