package notifications

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

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

	return NewService(db)
}

type testSubscriber struct {
	id string

	mu       sync.Mutex
	received []Notification
	ch       chan struct{}
}

func newTestSubscriber(id string) *testSubscriber {
	return &testSubscriber{id: id, ch: make(chan struct{}, 16)}
}

func (s *testSubscriber) Send(n Notification) error {
	s.mu.Lock()
	s.received = append(s.received, n)
	s.mu.Unlock()
	s.ch <- struct{}{}
	return nil
}

func (s *testSubscriber) ID() string { return s.id }

func (s *testSubscriber) wait(t *testing.T) Notification {
	t.Helper()
	select {
	case <-s.ch:
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for notification")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.received[len(s.received)-1]
}

func TestCreatePersistsAndBroadcasts(t *testing.T) {
	svc := testService(t)
	sub := newTestSubscriber("sub-1")
	svc.Subscribe(sub)

	created, err := svc.Create(context.Background(), CreateRequest{
		Type:     NotifyLetterDelivered,
		Title:    "A letter from your past self arrived",
		Body:     "Open it when you are ready.",
		LetterID: core.LetterID("letter-1"),
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	got := sub.wait(t)
	if got.ID != created.ID {
		t.Errorf("broadcast id = %s, want %s", got.ID, created.ID)
	}
	if got.LetterID != "letter-1" {
		t.Errorf("letter id = %s, want letter-1", got.LetterID)
	}

	list, err := svc.List(context.Background(), false, 10)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(list) != 1 {
		t.Fatalf("notifications = %d, want 1", len(list))
	}
	if list[0].Read {
		t.Error("new notification should be unread")
	}
}

func TestUnsubscribeStopsDelivery(t *testing.T) {
	svc := testService(t)
	sub := newTestSubscriber("sub-1")
	svc.Subscribe(sub)
	svc.Unsubscribe("sub-1")

	if svc.SubscriberCount() != 0 {
		t.Fatalf("subscribers = %d, want 0", svc.SubscriberCount())
	}

	_, err := svc.Create(context.Background(), CreateRequest{
		Type:  NotifyReminder,
		Title: "Evening journal",
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	select {
	case <-sub.ch:
		t.Error("unsubscribed subscriber should not receive notifications")
	case <-time.After(100 * time.Millisecond):
	}
}

func TestMarkRead(t *testing.T) {
	svc := testService(t)
	ctx := context.Background()

	n, err := svc.Create(ctx, CreateRequest{Type: NotifyReminder, Title: "hi"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	if err := svc.MarkRead(ctx, n.ID); err != nil {
		t.Fatalf("mark read: %v", err)
	}

	// Marking again is a no-op, not an error.
	if err := svc.MarkRead(ctx, n.ID); err != nil {
		t.Fatalf("second mark read: %v", err)
	}

	if err := svc.MarkRead(ctx, "no-such-id"); !errors.Is(err, core.ErrRecordNotFound) {
		t.Errorf("err = %v, want ErrRecordNotFound", err)
	}

	unread, err := svc.List(ctx, true, 10)
	if err != nil {
		t.Fatalf("list unread: %v", err)
	}
	if len(unread) != 0 {
		t.Errorf("unread = %d, want 0", len(unread))
	}
}

func TestMarkAllReadAndStats(t *testing.T) {
	svc := testService(t)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		if _, err := svc.Create(ctx, CreateRequest{Type: NotifyDailyWisdom, Title: "wisdom"}); err != nil {
			t.Fatalf("create: %v", err)
		}
	}

	stats, err := svc.Stats(ctx)
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	if stats.Total != 3 || stats.Unread != 3 {
		t.Errorf("stats = %+v, want total 3 unread 3", stats)
	}

	marked, err := svc.MarkAllRead(ctx)
	if err != nil {
		t.Fatalf("mark all read: %v", err)
	}
	if marked != 3 {
		t.Errorf("marked = %d, want 3", marked)
	}

	stats, err = svc.Stats(ctx)
	if err != nil {
		t.Fatalf("stats after: %v", err)
	}
	if stats.Unread != 0 {
		t.Errorf("unread = %d, want 0", stats.Unread)
	}
}
