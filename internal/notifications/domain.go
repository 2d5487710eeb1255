package notifications

import "time"

// Notification is one dashboard alert addressed to a single user.
type Notification struct {
	ID        string     `json:"id"`
	UserID    int64      `json:"user_id"`
	Kind      string     `json:"kind"`
	Title     string     `json:"title"`
	Body      string     `json:"body"`
	Ref       string     `json:"ref,omitempty"`
	ReadAt    *time.Time `json:"read_at,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
}

// PublishInput carries the fields needed to emit a notification.
type PublishInput struct {
	UserID int64
	Kind   string
	Title  string
	Body   string
	Ref    string
}
