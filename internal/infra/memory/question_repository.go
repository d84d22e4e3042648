package memory

import (
	"context"
	"sync"
	"time"

	"daily-quiz-service/internal/domain"
	"golang.org/x/sync/singleflight"
)

// QuestionLoader fetches question content from a backing store (e.g., Postgres).
type QuestionLoader interface {
	LoadQuestion(ctx context.Context, date string) (domain.Question, error)
}

// QuestionRepository caches the question of each date with TTL to avoid
// repeated backing-store hits.
type QuestionRepository struct {
	loader QuestionLoader
	ttl    time.Duration
	clock  func() time.Time
	sf     singleflight.Group

	mu    sync.RWMutex
	cache map[string]cachedQuestion
}

type cachedQuestion struct {
	question  domain.Question
	expiresAt time.Time
}

func NewQuestionRepository(loader QuestionLoader, ttl time.Duration) *QuestionRepository {
	return &QuestionRepository{
		loader: loader,
		ttl:    ttl,
		clock:  time.Now,
		cache:  make(map[string]cachedQuestion),
	}
}

func (r *QuestionRepository) QuestionOfDay(ctx context.Context, date string) (domain.Question, error) {
	now := r.clock()

	r.mu.RLock()
	if entry, ok := r.cache[date]; ok && entry.expiresAt.After(now) {
		r.mu.RUnlock()
		return entry.question, nil
	}
	r.mu.RUnlock()

	result, err, _ := r.sf.Do(date, func() (interface{}, error) {
		now := r.clock()
		r.mu.RLock()
		if entry, ok := r.cache[date]; ok && entry.expiresAt.After(now) {
			r.mu.RUnlock()
			return entry.question, nil
		}
		r.mu.RUnlock()

		question, err := r.loader.LoadQuestion(ctx, date)
		if err != nil {
			return domain.Question{}, err
		}

		r.mu.Lock()
		r.cache[date] = cachedQuestion{
			question:  question,
			expiresAt: now.Add(r.ttl),
		}
		r.mu.Unlock()
		return question, nil
	})
	if err != nil {
		return domain.Question{}, err
	}
	return result.(domain.Question), nil
}

// StaticQuestionLoader is a simple loader backed by an in-memory map keyed by
// date (useful for tests/demos).
type StaticQuestionLoader struct {
	questions map[string]domain.Question
}

func NewStaticQuestionLoader(questions map[string]domain.Question) *StaticQuestionLoader {
	return &StaticQuestionLoader{questions: questions}
}

func (l *StaticQuestionLoader) LoadQuestion(_ context.Context, date string) (domain.Question, error) {
	if question, ok := l.questions[date]; ok {
		return question, nil
	}
	return domain.Question{}, domain.ErrQuestionNotFound
}
