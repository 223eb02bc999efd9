// README: Assistant history snapshots backed by Redis.
package assistant

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const historyKeyFormat = "assistant:session:%s:history"

// RedisStore keeps one JSON snapshot per session, expiring after ttl of inactivity.
type RedisStore struct {
	redis *redis.Client
	ttl   time.Duration
}

func NewRedisStore(client *redis.Client, ttl time.Duration) *RedisStore {
	if ttl <= 0 {
		ttl = DefaultSessionTTL
	}
	return &RedisStore{redis: client, ttl: ttl}
}

// HistoryKey returns the Redis key holding a session snapshot.
func HistoryKey(sessionID string) string {
	return fmt.Sprintf(historyKeyFormat, sessionID)
}

func (s *RedisStore) Load(ctx context.Context, sessionID string) ([]Turn, error) {
	data, err := s.redis.Get(ctx, HistoryKey(sessionID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrSessionNotFound
	}
	if err != nil {
		return nil, err
	}
	var history []Turn
	if err := json.Unmarshal(data, &history); err != nil {
		return nil, fmt.Errorf("decode session %s: %w", sessionID, err)
	}
	return history, nil
}

func (s *RedisStore) Save(ctx context.Context, sessionID string, history []Turn) error {
	data, err := json.Marshal(history)
	if err != nil {
		return err
	}
	return s.redis.Set(ctx, HistoryKey(sessionID), data, s.ttl).Err()
}

func (s *RedisStore) Delete(ctx context.Context, sessionID string) error {
	return s.redis.Del(ctx, HistoryKey(sessionID)).Err()
}
