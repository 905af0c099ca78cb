package notifications

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/prody/prody/internal/core"
	"github.com/prody/prody/internal/storage"
)

// Subscriber receives notifications in real-time
type Subscriber interface {
	Send(notification Notification) error
	ID() string
}

// Service manages the notification feed and its live subscribers.
type Service struct {
	db          *storage.DB
	subscribers map[string]Subscriber
	mu          sync.RWMutex
}

// NewService creates a new notification service
func NewService(db *storage.DB) *Service {
	return &Service{
		db:          db,
		subscribers: make(map[string]Subscriber),
	}
}

// Subscribe adds a subscriber for real-time notifications
func (s *Service) Subscribe(sub Subscriber) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.subscribers[sub.ID()] = sub
}

// Unsubscribe removes a subscriber
func (s *Service) Unsubscribe(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.subscribers, id)
}

// SubscriberCount returns the number of live subscribers
func (s *Service) SubscriberCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.subscribers)
}

// Create persists a notification and broadcasts it to all subscribers
func (s *Service) Create(ctx context.Context, req CreateRequest) (*Notification, error) {
	notification := &Notification{
		ID:        uuid.New().String(),
		Type:      req.Type,
		Title:     req.Title,
		Body:      req.Body,
		LetterID:  req.LetterID,
		Read:      false,
		CreatedAt: time.Now().UTC(),
	}

	_, err := s.db.Conn().ExecContext(ctx, `
		INSERT INTO notifications (id, type, title, body, letter_id, read, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, notification.ID, notification.Type, notification.Title, notification.Body,
		notification.LetterID, notification.Read, notification.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("save notification: %w", err)
	}

	s.broadcast(*notification)

	return notification, nil
}

// broadcast sends notification to all subscribers
func (s *Service) broadcast(n Notification) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, sub := range s.subscribers {
		go func(subscriber Subscriber) {
			subscriber.Send(n)
		}(sub)
	}
}

// List returns notifications newest first, optionally unread only
func (s *Service) List(ctx context.Context, unreadOnly bool, limit int) ([]*Notification, error) {
	if limit <= 0 {
		limit = 50
	}

	query := `
		SELECT id, type, title, body, letter_id, read, created_at, read_at
		FROM notifications
	`
	if unreadOnly {
		query += " WHERE read = FALSE"
	}
	query += " ORDER BY created_at DESC LIMIT ?"

	rows, err := s.db.Conn().QueryContext(ctx, query, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var list []*Notification
	for rows.Next() {
		n := &Notification{}
		var body, letterID sql.NullString
		var readAt sql.NullTime

		err := rows.Scan(&n.ID, &n.Type, &n.Title, &body, &letterID,
			&n.Read, &n.CreatedAt, &readAt)
		if err != nil {
			return nil, err
		}

		n.Body = body.String
		n.LetterID = core.LetterID(letterID.String)
		if readAt.Valid {
			t := readAt.Time
			n.ReadAt = &t
		}
		list = append(list, n)
	}
	return list, rows.Err()
}

// MarkRead flips one notification to read
func (s *Service) MarkRead(ctx context.Context, id string) error {
	result, err := s.db.Conn().ExecContext(ctx, `
		UPDATE notifications SET read = TRUE, read_at = ?
		WHERE id = ? AND read = FALSE
	`, time.Now().UTC(), id)
	if err != nil {
		return err
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		// Already read or unknown. Distinguish the two.
		var exists int
		err := s.db.Conn().QueryRowContext(ctx,
			"SELECT COUNT(*) FROM notifications WHERE id = ?", id).Scan(&exists)
		if err != nil {
			return err
		}
		if exists == 0 {
			return core.ErrRecordNotFound
		}
	}
	return nil
}

// MarkAllRead flips every unread notification to read
func (s *Service) MarkAllRead(ctx context.Context) (int, error) {
	result, err := s.db.Conn().ExecContext(ctx, `
		UPDATE notifications SET read = TRUE, read_at = ?
		WHERE read = FALSE
	`, time.Now().UTC())
	if err != nil {
		return 0, err
	}

	affected, err := result.RowsAffected()
	return int(affected), err
}

// Stats returns feed totals
func (s *Service) Stats(ctx context.Context) (*Stats, error) {
	stats := &Stats{}

	err := s.db.Conn().QueryRowContext(ctx,
		"SELECT COUNT(*) FROM notifications").Scan(&stats.Total)
	if err != nil {
		return nil, err
	}

	err = s.db.Conn().QueryRowContext(ctx,
		"SELECT COUNT(*) FROM notifications WHERE read = FALSE").Scan(&stats.Unread)
	if err != nil {
		return nil, err
	}

	return stats, nil
}
