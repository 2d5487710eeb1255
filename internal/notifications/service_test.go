package notifications

import (
	"context"
	"sort"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

type memoryRepo struct {
	byID map[string]*Notification
}

func newMemoryRepo() *memoryRepo {
	return &memoryRepo{byID: map[string]*Notification{}}
}

func (m *memoryRepo) Insert(_ context.Context, n Notification) error {
	clone := n
	m.byID[n.ID] = &clone
	return nil
}

func (m *memoryRepo) ListForUser(_ context.Context, userID int64, limit int) ([]Notification, error) {
	var out []Notification
	for _, n := range m.byID {
		if n.UserID == userID {
			out = append(out, *n)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (m *memoryRepo) MarkRead(_ context.Context, userID int64, id string) error {
	n, ok := m.byID[id]
	if !ok || n.UserID != userID {
		return ErrNotFound
	}
	if n.ReadAt == nil {
		now := time.Now()
		n.ReadAt = &now
	}
	return nil
}

func (m *memoryRepo) MarkAllRead(_ context.Context, userID int64) error {
	now := time.Now()
	for _, n := range m.byID {
		if n.UserID == userID && n.ReadAt == nil {
			n.ReadAt = &now
		}
	}
	return nil
}

func (m *memoryRepo) CountUnread(_ context.Context, userID int64) (int64, error) {
	var count int64
	for _, n := range m.byID {
		if n.UserID == userID && n.ReadAt == nil {
			count++
		}
	}
	return count, nil
}

func newTestService(t *testing.T) (*Service, *memoryRepo) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	repo := newMemoryRepo()
	return NewService(repo, client), repo
}

func TestPublishAndUnreadCount(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	n, err := svc.Publish(ctx, PublishInput{UserID: 7, Kind: "quotation.sent", Title: "Quotation sent"})
	require.NoError(t, err)
	require.NotEmpty(t, n.ID)
	require.Equal(t, int64(7), n.UserID)

	_, err = svc.Publish(ctx, PublishInput{UserID: 7, Kind: "quotation.accepted", Title: "Quotation accepted"})
	require.NoError(t, err)
	_, err = svc.Publish(ctx, PublishInput{UserID: 8, Kind: "quotation.sent", Title: "Other user"})
	require.NoError(t, err)

	count, err := svc.UnreadCount(ctx, 7)
	require.NoError(t, err)
	require.Equal(t, int64(2), count)

	count, err = svc.UnreadCount(ctx, 8)
	require.NoError(t, err)
	require.Equal(t, int64(1), count)
}

func TestMarkReadUpdatesCounter(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	first, err := svc.Publish(ctx, PublishInput{UserID: 7, Kind: "k", Title: "one"})
	require.NoError(t, err)
	_, err = svc.Publish(ctx, PublishInput{UserID: 7, Kind: "k", Title: "two"})
	require.NoError(t, err)

	require.NoError(t, svc.MarkRead(ctx, 7, first.ID))

	count, err := svc.UnreadCount(ctx, 7)
	require.NoError(t, err)
	require.Equal(t, int64(1), count)
}

func TestMarkReadWrongUser(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	n, err := svc.Publish(ctx, PublishInput{UserID: 7, Kind: "k", Title: "one"})
	require.NoError(t, err)

	err = svc.MarkRead(ctx, 8, n.ID)
	require.ErrorIs(t, err, ErrNotFound)
}

func TestMarkAllRead(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		_, err := svc.Publish(ctx, PublishInput{UserID: 7, Kind: "k", Title: "n"})
		require.NoError(t, err)
	}

	require.NoError(t, svc.MarkAllRead(ctx, 7))

	count, err := svc.UnreadCount(ctx, 7)
	require.NoError(t, err)
	require.Zero(t, count)
}

func TestListForUserLimits(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		_, err := svc.Publish(ctx, PublishInput{UserID: 7, Kind: "k", Title: "n"})
		require.NoError(t, err)
	}

	list, err := svc.ListForUser(ctx, 7, 3)
	require.NoError(t, err)
	require.Len(t, list, 3)

	// Out-of-range limits fall back to the default.
	list, err = svc.ListForUser(ctx, 7, -1)
	require.NoError(t, err)
	require.Len(t, list, 5)
}

func TestUnreadCountRebuildsFromRepo(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	repo := newMemoryRepo()
	svc := NewService(repo, client)
	ctx := context.Background()

	_, err := svc.Publish(ctx, PublishInput{UserID: 7, Kind: "k", Title: "n"})
	require.NoError(t, err)

	// Simulate counter loss; the next read repopulates it from Postgres.
	mr.FlushAll()

	count, err := svc.UnreadCount(ctx, 7)
	require.NoError(t, err)
	require.Equal(t, int64(1), count)
	require.True(t, mr.Exists("notifications:unread:7"))
}
