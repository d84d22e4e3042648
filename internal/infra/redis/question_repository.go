package redis

import (
	"context"
	"encoding/json"
	"time"

	"daily-quiz-service/internal/domain"
	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"
)

// QuestionLoader fetches question content from a backing store (e.g., Postgres).
type QuestionLoader interface {
	LoadQuestion(ctx context.Context, date string) (domain.Question, error)
}

// QuestionRepository caches each date's question as a JSON blob in Redis
// (SET quiz:question:{date}) and falls back to the loader on cache miss.
type QuestionRepository struct {
	client *redis.Client
	loader QuestionLoader
	ttl    time.Duration
	sf     singleflight.Group
}

func NewQuestionRepository(client *redis.Client, loader QuestionLoader, ttl time.Duration) *QuestionRepository {
	return &QuestionRepository{client: client, loader: loader, ttl: ttl}
}

func (r *QuestionRepository) QuestionOfDay(ctx context.Context, date string) (domain.Question, error) {
	key := r.key(date)

	if question, ok := r.fromCache(ctx, key); ok {
		return question, nil
	}

	result, err, _ := r.sf.Do(date, func() (interface{}, error) {
		// Re-check cache in case another goroutine filled it.
		if question, ok := r.fromCache(ctx, key); ok {
			return question, nil
		}

		question, err := r.loader.LoadQuestion(ctx, date)
		if err != nil {
			return domain.Question{}, err
		}

		if raw, err := json.Marshal(question); err == nil {
			_ = r.client.Set(ctx, key, raw, r.ttl).Err()
		}
		return question, nil
	})
	if err != nil {
		return domain.Question{}, err
	}
	return result.(domain.Question), nil
}

func (r *QuestionRepository) fromCache(ctx context.Context, key string) (domain.Question, bool) {
	raw, err := r.client.Get(ctx, key).Bytes()
	if err != nil {
		return domain.Question{}, false
	}
	var question domain.Question
	if err := json.Unmarshal(raw, &question); err != nil {
		return domain.Question{}, false
	}
	return question, true
}

func (r *QuestionRepository) key(date string) string {
	return "quiz:question:" + date
}
