package auth

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/skyfalke/backoffice/internal/shared"
)

const tokenKeyPrefix = "auth:token:"

// TokenStore keeps opaque bearer tokens in Redis with a TTL.
type TokenStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewTokenStore constructs a TokenStore.
func NewTokenStore(client *redis.Client, ttl time.Duration) *TokenStore {
	return &TokenStore{client: client, ttl: ttl}
}

type tokenRecord struct {
	UserID int64  `json:"user_id"`
	Email  string `json:"email"`
}

// Issue creates a new token for the user and stores it with the configured TTL.
func (s *TokenStore) Issue(ctx context.Context, user *User) (string, time.Time, error) {
	token := uuid.NewString()
	raw, err := json.Marshal(tokenRecord{UserID: user.ID, Email: user.Email})
	if err != nil {
		return "", time.Time{}, err
	}
	if err := s.client.Set(ctx, tokenKeyPrefix+token, raw, s.ttl).Err(); err != nil {
		return "", time.Time{}, fmt.Errorf("auth: store token: %w", err)
	}
	return token, time.Now().Add(s.ttl), nil
}

// Resolve returns the identity bound to the token, or shared.ErrNotFound.
func (s *TokenStore) Resolve(ctx context.Context, token string) (shared.Identity, error) {
	raw, err := s.client.Get(ctx, tokenKeyPrefix+token).Bytes()
	if err == redis.Nil {
		return shared.Identity{}, shared.ErrNotFound
	}
	if err != nil {
		return shared.Identity{}, fmt.Errorf("auth: resolve token: %w", err)
	}
	var rec tokenRecord
	if err := json.Unmarshal(raw, &rec); err != nil {
		return shared.Identity{}, err
	}
	return shared.Identity{UserID: rec.UserID, Email: rec.Email}, nil
}

// Revoke deletes the token.
func (s *TokenStore) Revoke(ctx context.Context, token string) error {
	return s.client.Del(ctx, tokenKeyPrefix+token).Err()
}

// TTL exposes the configured token lifetime.
func (s *TokenStore) TTL() time.Duration {
	return s.ttl
}
