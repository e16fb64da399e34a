package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/shindakun/orderdesk/internal/models"
)

const redisSessionPrefix = "orderdesk:session:"

// RedisSessions keeps session records in Redis with a TTL matching their expiry
type RedisSessions struct {
	client redis.UniversalClient
}

// NewRedisSessions returns a session repository backed by client
func NewRedisSessions(client redis.UniversalClient) *RedisSessions {
	return &RedisSessions{client: client}
}

func redisSessionKey(id string) string {
	return redisSessionPrefix + id
}

// Save stores the session; records already past expiry are not written
func (s *RedisSessions) Save(ctx context.Context, session *models.Session) error {
	ttl := time.Until(session.ExpiresAt)
	if ttl <= 0 {
		return fmt.Errorf("session %s already expired", session.ID)
	}

	payload, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("failed to encode session: %w", err)
	}

	if err := s.client.Set(ctx, redisSessionKey(session.ID), payload, ttl).Err(); err != nil {
		return fmt.Errorf("failed to save session to redis: %w", err)
	}
	return nil
}

// Get returns the session with the given id, or ErrNotFound
func (s *RedisSessions) Get(ctx context.Context, id string) (*models.Session, error) {
	payload, err := s.client.Get(ctx, redisSessionKey(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve session from redis: %w", err)
	}

	var session models.Session
	if err := json.Unmarshal(payload, &session); err != nil {
		return nil, fmt.Errorf("failed to decode session: %w", err)
	}
	return &session, nil
}

// Delete removes a session record
func (s *RedisSessions) Delete(ctx context.Context, id string) error {
	if err := s.client.Del(ctx, redisSessionKey(id)).Err(); err != nil {
		return fmt.Errorf("failed to delete session from redis: %w", err)
	}
	return nil
}

// DeleteExpired is a no-op: Redis evicts records on their own TTL
func (s *RedisSessions) DeleteExpired(context.Context, time.Time) (int64, error) {
	return 0, nil
}
