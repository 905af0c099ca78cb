// Package letters manages future-self letters through their lifecycle.
//
// A letter moves Pending -> Delivered -> Opened, in that order only. Each
// transition happens at most once, enforced by conditional updates in the
// store rather than by locks here, so a concurrent sweep and view cannot
// double-fire rewards or notifications.
package letters

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/prody/prody/internal/ai"
	"github.com/prody/prody/internal/core"
	"github.com/prody/prody/internal/logging"
	"github.com/prody/prody/internal/notifications"
	"github.com/prody/prody/internal/rewards"
	"github.com/prody/prody/internal/storage"
)

// Delivery day presets offered by the clients. Any non-negative day count is
// accepted; these are just the common choices.
const (
	DeliverInAWeek     = 7
	DeliverInAMonth    = 30
	DeliverInSixMonths = 182
	DeliverInAYear     = 365
)

// Manager orchestrates the letter lifecycle.
type Manager struct {
	store   *storage.LetterStore
	ai      *ai.Service
	rewards *rewards.Service
	notify  *notifications.Service
	log     *logging.Logger

	now func() time.Time

	// Tracks in-flight background reflections so tests and shutdown can
	// wait for them.
	reflections sync.WaitGroup
}

// NewManager creates a letter manager. The notifications service may be nil
// when no delivery feed is wanted.
func NewManager(store *storage.LetterStore, aiSvc *ai.Service, rewardSvc *rewards.Service, notify *notifications.Service) *Manager {
	return &Manager{
		store:   store,
		ai:      aiSvc,
		rewards: rewardSvc,
		notify:  notify,
		log:     logging.Named("letters"),
		now:     func() time.Time { return time.Now().UTC() },
	}
}

// CreateRequest carries the fields for a new letter.
type CreateRequest struct {
	Content     string    `json:"content"`
	Subject     string    `json:"subject,omitempty"`
	Mood        core.Mood `json:"mood,omitempty"`
	DaysFromNow int       `json:"days_from_now"`
}

// Create persists a new pending letter and grants the writing reward once.
func (m *Manager) Create(ctx context.Context, req CreateRequest) (*core.FutureSelfLetter, error) {
	if strings.TrimSpace(req.Content) == "" {
		return nil, fmt.Errorf("letter content is required: %w", core.ErrMissingRequired)
	}
	if req.DaysFromNow < 0 {
		return nil, fmt.Errorf("delivery days must not be negative: %w", core.ErrInvalidInput)
	}

	mood := req.Mood
	if mood == "" {
		mood = core.MoodNeutral
	}
	if !mood.Valid() {
		return nil, fmt.Errorf("unknown mood %q: %w", req.Mood, core.ErrInvalidInput)
	}

	now := m.now()
	letter := &core.FutureSelfLetter{
		ID:         core.LetterID(uuid.New().String()),
		Content:    req.Content,
		Subject:    req.Subject,
		Mood:       mood,
		DeliveryAt: now.AddDate(0, 0, req.DaysFromNow),
	}

	if err := m.store.Create(letter); err != nil {
		return nil, fmt.Errorf("save letter: %w", err)
	}

	if _, err := m.rewards.Grant(core.RewardLetterWritten, "Wrote a letter to your future self"); err != nil {
		m.log.Warn("reward grant failed for letter %s: %v", letter.ID, err)
	}

	m.log.Info("letter %s created, delivery in %d days", letter.ID, req.DaysFromNow)
	return letter, nil
}

// Get returns one letter by ID
func (m *Manager) Get(ctx context.Context, id core.LetterID) (*core.FutureSelfLetter, error) {
	return m.store.GetByID(id)
}

// List returns letters, optionally filtered to delivered or pending only.
func (m *Manager) List(ctx context.Context, delivered *bool, limit int) ([]*core.FutureSelfLetter, error) {
	if delivered == nil {
		return m.store.ListAll(limit)
	}
	return m.store.ListByState(*delivered, limit)
}

// ProcessDeliveries flips every due pending letter to Delivered and fires
// the delivery notification once per actual transition. Safe to call from
// overlapping sweeps.
func (m *Manager) ProcessDeliveries(ctx context.Context) (int, error) {
	due, err := m.store.ListDue(m.now())
	if err != nil {
		return 0, fmt.Errorf("list due letters: %w", err)
	}

	delivered := 0
	for _, letter := range due {
		flipped, err := m.store.MarkDelivered(letter.ID)
		if err != nil {
			return delivered, fmt.Errorf("deliver letter %s: %w", letter.ID, err)
		}
		if !flipped {
			// Another sweep won the race.
			continue
		}

		delivered++
		m.onDelivered(ctx, letter)
	}

	if delivered > 0 {
		m.log.Info("delivered %d letters", delivered)
	}
	return delivered, nil
}

func (m *Manager) onDelivered(ctx context.Context, letter *core.FutureSelfLetter) {
	if m.notify == nil {
		return
	}

	title := "A letter from your past self arrived"
	if letter.Subject != "" {
		title = fmt.Sprintf("A letter arrived: %s", letter.Subject)
	}

	_, err := m.notify.Create(ctx, notifications.CreateRequest{
		Type:     notifications.NotifyLetterDelivered,
		Title:    title,
		Body:     "Open it when you are ready to meet who you were.",
		LetterID: letter.ID,
	})
	if err != nil {
		m.log.Warn("delivery notification failed for letter %s: %v", letter.ID, err)
	}
}

// View returns a delivered letter, marking it opened on first view. The
// first view grants the reflection reward and starts a background AI
// reflection. Viewing an undelivered letter is an error. Repeat views just
// return the letter.
func (m *Manager) View(ctx context.Context, id core.LetterID) (*core.FutureSelfLetter, error) {
	letter, err := m.store.GetByID(id)
	if err != nil {
		return nil, err
	}
	if !letter.Delivered {
		return nil, fmt.Errorf("letter %s has not been delivered yet: %w", id, core.ErrLetterNotDelivered)
	}

	opened, err := m.store.MarkOpened(id)
	if err != nil {
		return nil, fmt.Errorf("open letter %s: %w", id, err)
	}
	if !opened {
		// Already opened earlier. Nothing left to trigger.
		return letter, nil
	}
	letter.Opened = true

	if _, err := m.rewards.Grant(core.RewardLetterReflected, "Opened a letter from your past self"); err != nil {
		m.log.Warn("reward grant failed for letter %s: %v", id, err)
	}

	m.startReflection(letter)

	return letter, nil
}

// startReflection asks the AI for a reflection in the background. Failures
// are logged and dropped so the read path never waits on or fails with the
// AI.
func (m *Manager) startReflection(letter *core.FutureSelfLetter) {
	daysAgo := letter.DaysSinceWritten(m.now())

	m.reflections.Add(1)
	go func() {
		defer m.reflections.Done()

		ctx, cancel := context.WithTimeout(context.Background(), 90*time.Second)
		defer cancel()

		reflection, err := m.ai.AnalyzeLetter(ctx, letter.Content, daysAgo, "")
		if err != nil {
			m.log.Warn("reflection failed for letter %s: %v", letter.ID, err)
			return
		}

		if err := m.store.SetReflection(letter.ID, reflection.Analysis, reflection.Encouragement); err != nil {
			m.log.Warn("storing reflection failed for letter %s: %v", letter.ID, err)
		}
	}()
}

// WaitForReflections blocks until all in-flight reflections finish.
func (m *Manager) WaitForReflections() {
	m.reflections.Wait()
}
