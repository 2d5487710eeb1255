package notifications

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// Service publishes and serves notifications. The unread count is mirrored in
// Redis so the badge poll never touches Postgres.
type Service struct {
	repo   Repository
	client *redis.Client
}

// NewService builds a notification Service. The Redis client may be nil, in
// which case unread counts fall back to the database.
func NewService(repo Repository, client *redis.Client) *Service {
	return &Service{repo: repo, client: client}
}

func unreadKey(userID int64) string {
	return fmt.Sprintf("notifications:unread:%d", userID)
}

// Publish stores a notification and bumps the recipient's unread counter.
func (s *Service) Publish(ctx context.Context, input PublishInput) (*Notification, error) {
	n := Notification{
		ID:        uuid.NewString(),
		UserID:    input.UserID,
		Kind:      input.Kind,
		Title:     input.Title,
		Body:      input.Body,
		Ref:       input.Ref,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.repo.Insert(ctx, n); err != nil {
		return nil, fmt.Errorf("insert notification: %w", err)
	}
	if s.client != nil {
		_ = s.client.Incr(ctx, unreadKey(input.UserID)).Err()
	}
	return &n, nil
}

// ListForUser returns the most recent notifications for a user.
func (s *Service) ListForUser(ctx context.Context, userID int64, limit int) ([]Notification, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	return s.repo.ListForUser(ctx, userID, limit)
}

// UnreadCount serves the badge counter, preferring the Redis mirror.
func (s *Service) UnreadCount(ctx context.Context, userID int64) (int64, error) {
	if s.client != nil {
		count, err := s.client.Get(ctx, unreadKey(userID)).Int64()
		if err == nil {
			return count, nil
		}
		if err != redis.Nil {
			return 0, err
		}
	}
	count, err := s.repo.CountUnread(ctx, userID)
	if err != nil {
		return 0, err
	}
	if s.client != nil {
		_ = s.client.Set(ctx, unreadKey(userID), count, 0).Err()
	}
	return count, nil
}

// MarkRead flags one notification as read and refreshes the counter.
func (s *Service) MarkRead(ctx context.Context, userID int64, id string) error {
	if err := s.repo.MarkRead(ctx, userID, id); err != nil {
		return err
	}
	return s.resyncCounter(ctx, userID)
}

// MarkAllRead clears the whole unread set for a user.
func (s *Service) MarkAllRead(ctx context.Context, userID int64) error {
	if err := s.repo.MarkAllRead(ctx, userID); err != nil {
		return err
	}
	if s.client != nil {
		return s.client.Set(ctx, unreadKey(userID), 0, 0).Err()
	}
	return nil
}

func (s *Service) resyncCounter(ctx context.Context, userID int64) error {
	if s.client == nil {
		return nil
	}
	count, err := s.repo.CountUnread(ctx, userID)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, unreadKey(userID), count, 0).Err()
}
