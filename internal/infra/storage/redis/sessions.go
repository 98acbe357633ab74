package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"vendibook/internal/app/policies"
	"vendibook/internal/domain/checkout"
)

// SessionStore persists checkout snapshots in redis with a sliding TTL, so
// abandoned carts expire on their own.
type SessionStore struct {
	client *redis.Client
	ttl    time.Duration
}

func NewSessionStore(client *redis.Client, ttl time.Duration) *SessionStore {
	if ttl <= 0 {
		ttl = 2 * time.Hour
	}
	return &SessionStore{client: client, ttl: ttl}
}

func (s *SessionStore) Load(ctx context.Context, id string) (checkout.Snapshot, error) {
	raw, err := s.client.Get(ctx, sessionKey(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return checkout.Snapshot{}, policies.ErrSessionNotFound
	}
	if err != nil {
		return checkout.Snapshot{}, fmt.Errorf("redis: load session: %w", err)
	}
	var snap checkout.Snapshot
	if err := json.Unmarshal(raw, &snap); err != nil {
		return checkout.Snapshot{}, fmt.Errorf("redis: decode session: %w", err)
	}
	return snap, nil
}

func (s *SessionStore) Save(ctx context.Context, snap checkout.Snapshot) error {
	raw, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("redis: encode session: %w", err)
	}
	if err := s.client.Set(ctx, sessionKey(snap.ID), raw, s.ttl).Err(); err != nil {
		return fmt.Errorf("redis: save session: %w", err)
	}
	return nil
}

func (s *SessionStore) Delete(ctx context.Context, id string) error {
	if err := s.client.Del(ctx, sessionKey(id)).Err(); err != nil {
		return fmt.Errorf("redis: delete session: %w", err)
	}
	return nil
}

func sessionKey(id string) string {
	return "checkout:session:" + id
}

var _ policies.SessionStore = (*SessionStore)(nil)
