// Package rewards implements the XP ledger for Prody.
//
// Every rewarded action appends one immutable grant. Totals, levels and
// badges are always derived from the ledger, never stored, so the ledger is
// the single source of truth for progress.
package rewards

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/prody/prody/internal/core"
	"github.com/prody/prody/internal/storage"
)

// Fixed XP amounts per reward source.
const (
	XPLetterWritten   = 15
	XPLetterReflected = 25
	XPJournalEntry    = 10
	XPWordLearned     = 5
	XPChatSession     = 2
	XPDailyWisdom     = 3
)

var amounts = map[core.RewardSource]int{
	core.RewardLetterWritten:   XPLetterWritten,
	core.RewardLetterReflected: XPLetterReflected,
	core.RewardJournalEntry:    XPJournalEntry,
	core.RewardWordLearned:     XPWordLearned,
	core.RewardChatSession:     XPChatSession,
	core.RewardDailyWisdom:     XPDailyWisdom,
}

// Service grants XP and reports progress.
type Service struct {
	store *storage.RewardStore
}

// NewService creates a rewards service
func NewService(store *storage.RewardStore) *Service {
	return &Service{store: store}
}

// Grant appends one grant for the given source using its fixed amount.
func (s *Service) Grant(source core.RewardSource, description string) (*core.RewardGrant, error) {
	amount, ok := amounts[source]
	if !ok {
		return nil, fmt.Errorf("unknown reward source %q: %w", source, core.ErrInvalidInput)
	}

	grant := &core.RewardGrant{
		ID:          uuid.New().String(),
		Amount:      amount,
		Source:      source,
		Description: description,
	}

	if err := s.store.Append(grant); err != nil {
		return nil, fmt.Errorf("append grant: %w", err)
	}

	return grant, nil
}

// Progress is the derived XP state.
type Progress struct {
	TotalXP     int `json:"total_xp"`
	Level       int `json:"level"`
	LevelXP     int `json:"level_xp"`      // XP earned inside the current level
	NextLevelXP int `json:"next_level_xp"` // XP needed to finish the current level
}

// Progress derives the current level from total XP.
func (s *Service) Progress() (*Progress, error) {
	total, err := s.store.TotalXP()
	if err != nil {
		return nil, fmt.Errorf("total xp: %w", err)
	}

	level := levelFor(total)
	floor := levelThreshold(level)
	ceil := levelThreshold(level + 1)

	return &Progress{
		TotalXP:     total,
		Level:       level,
		LevelXP:     total - floor,
		NextLevelXP: ceil - floor,
	}, nil
}

// levelThreshold returns the total XP at which a level begins. Level 1
// begins at 0 and each level costs 50 XP more than the previous one.
func levelThreshold(level int) int {
	if level <= 1 {
		return 0
	}
	n := level - 1
	return 50 * n * (n + 1)
}

func levelFor(totalXP int) int {
	level := 1
	for levelThreshold(level+1) <= totalXP {
		level++
	}
	return level
}

// Badge is a milestone derived from grant counts.
type Badge struct {
	ID       string `json:"id"`
	Label    string `json:"label"`
	Emoji    string `json:"emoji"`
	Earned   bool   `json:"earned"`
	Progress int    `json:"progress"`
	Target   int    `json:"target"`
}

type badgeRule struct {
	id     string
	label  string
	emoji  string
	source core.RewardSource
	target int
}

var badgeRules = []badgeRule{
	{"first-letter", "Time Capsule", "✉️", core.RewardLetterWritten, 1},
	{"faithful-reader", "Faithful Reader", "📬", core.RewardLetterReflected, 5},
	{"steady-scribe", "Steady Scribe", "📓", core.RewardJournalEntry, 10},
	{"wordsmith", "Wordsmith", "📖", core.RewardWordLearned, 25},
	{"good-company", "Good Company", "💬", core.RewardChatSession, 20},
}

// Badges reports every badge with its current progress.
func (s *Service) Badges() ([]Badge, error) {
	badges := make([]Badge, 0, len(badgeRules))
	for _, rule := range badgeRules {
		count, err := s.store.CountBySource(rule.source)
		if err != nil {
			return nil, fmt.Errorf("count %s grants: %w", rule.source, err)
		}
		if count > rule.target {
			count = rule.target
		}
		badges = append(badges, Badge{
			ID:       rule.id,
			Label:    rule.label,
			Emoji:    rule.emoji,
			Earned:   count >= rule.target,
			Progress: count,
			Target:   rule.target,
		})
	}
	return badges, nil
}

// Summary bundles progress, per-source totals and recent grants.
type Summary struct {
	Progress *Progress                `json:"progress"`
	BySource map[core.RewardSource]int `json:"by_source"`
	Recent   []*core.RewardGrant      `json:"recent"`
	Badges   []Badge                  `json:"badges"`
}

// Summary builds the full derived view of the ledger.
func (s *Service) Summary() (*Summary, error) {
	progress, err := s.Progress()
	if err != nil {
		return nil, err
	}

	bySource, err := s.store.TotalBySource()
	if err != nil {
		return nil, fmt.Errorf("totals by source: %w", err)
	}

	recent, err := s.store.Recent(10)
	if err != nil {
		return nil, fmt.Errorf("recent grants: %w", err)
	}

	badges, err := s.Badges()
	if err != nil {
		return nil, err
	}

	return &Summary{
		Progress: progress,
		BySource: bySource,
		Recent:   recent,
		Badges:   badges,
	}, nil
}
