// Package notifications implements the in-app notification feed for Prody.
package notifications

import (
	"time"

	"github.com/prody/prody/internal/core"
)

// NotificationType represents the kind of notification
type NotificationType string

const (
	NotifyLetterDelivered NotificationType = "letter.delivered"
	NotifyDailyWisdom     NotificationType = "daily.wisdom"
	NotifyBadgeEarned     NotificationType = "badge.earned"
	NotifyReminder        NotificationType = "reminder"
)

// Notification represents one feed item
type Notification struct {
	ID        string           `json:"id"`
	Type      NotificationType `json:"type"`
	Title     string           `json:"title"`
	Body      string           `json:"body,omitempty"`
	LetterID  core.LetterID    `json:"letter_id,omitempty"`
	Read      bool             `json:"read"`
	CreatedAt time.Time        `json:"created_at"`
	ReadAt    *time.Time       `json:"read_at,omitempty"`
}

// CreateRequest for creating new notifications
type CreateRequest struct {
	Type     NotificationType `json:"type"`
	Title    string           `json:"title"`
	Body     string           `json:"body,omitempty"`
	LetterID core.LetterID    `json:"letter_id,omitempty"`
}

// Stats summarizes the feed
type Stats struct {
	Total  int `json:"total"`
	Unread int `json:"unread"`
}
