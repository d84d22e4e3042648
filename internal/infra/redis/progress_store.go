package redis

import (
	"context"
	"log"

	"github.com/redis/go-redis/v9"
)

// ProgressStore persists progress records as JSON strings in Redis, one key
// per device. Read failures degrade to "absent" so callers fall back to the
// default record; write failures are surfaced to the service, which logs and
// keeps going.
type ProgressStore struct {
	client *redis.Client
}

func NewProgressStore(client *redis.Client) *ProgressStore {
	return &ProgressStore{client: client}
}

func (s *ProgressStore) Get(ctx context.Context, deviceID string) (string, bool) {
	raw, err := s.client.Get(ctx, s.key(deviceID)).Result()
	if err == redis.Nil {
		return "", false
	}
	if err != nil {
		log.Printf("read progress for %s: %v", deviceID, err)
		return "", false
	}
	return raw, true
}

func (s *ProgressStore) Set(ctx context.Context, deviceID string, raw string) error {
	// No expiry: the record is durable history, not a session.
	return s.client.Set(ctx, s.key(deviceID), raw, 0).Err()
}

func (s *ProgressStore) key(deviceID string) string {
	return "quiz:progress:" + deviceID
}
