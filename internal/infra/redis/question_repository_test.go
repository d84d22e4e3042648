package redis

import (
	"context"
	"testing"
	"time"

	"daily-quiz-service/internal/domain"
	"daily-quiz-service/internal/infra/memory"
	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func TestQuestionRepositoryCachesInRedis(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	defer mr.Close()

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})

	loader := &countingLoader{
		QuestionLoader: memory.NewStaticQuestionLoader(map[string]domain.Question{
			"2024-01-11": sampleQuestion("2024-01-11"),
		}),
	}
	repo := NewQuestionRepository(client, loader, time.Minute)

	question, err := repo.QuestionOfDay(context.Background(), "2024-01-11")
	if err != nil {
		t.Fatalf("get question: %v", err)
	}
	if question.ID != "q1" {
		t.Fatalf("unexpected question %+v", question)
	}
	if loader.calls != 1 {
		t.Fatalf("expected loader called once, got %d", loader.calls)
	}
	if !mr.Exists("quiz:question:2024-01-11") {
		t.Fatalf("expected cached blob in redis")
	}

	// Second call should hit cache, loader not incremented.
	cached, err := repo.QuestionOfDay(context.Background(), "2024-01-11")
	if err != nil {
		t.Fatalf("get question 2: %v", err)
	}
	if loader.calls != 1 {
		t.Fatalf("expected cache hit, loader calls=%d", loader.calls)
	}
	if len(cached.Options) != len(question.Options) {
		t.Fatalf("cache lost options: %+v", cached)
	}
}

type countingLoader struct {
	memory.QuestionLoader
	calls int
}

func (l *countingLoader) LoadQuestion(ctx context.Context, date string) (domain.Question, error) {
	l.calls++
	return l.QuestionLoader.LoadQuestion(ctx, date)
}

func sampleQuestion(date string) domain.Question {
	return domain.Question{
		ID:     "q1",
		Date:   date,
		Prompt: "What is 2 + 2?",
		Options: []domain.Option{
			{ID: "o1", Text: "3", Correct: false},
			{ID: "o2", Text: "4", Correct: true},
		},
		Points: 10,
	}
}
