package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"daily-quiz-service/internal/domain"
	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"
)

// QuestionLoader loads daily-question JSONB from Postgres.
type QuestionLoader struct {
	pool *pgxpool.Pool
}

func NewQuestionLoader(pool *pgxpool.Pool) *QuestionLoader {
	return &QuestionLoader{pool: pool}
}

func (l *QuestionLoader) LoadQuestion(ctx context.Context, date string) (domain.Question, error) {
	var raw []byte
	err := l.pool.QueryRow(ctx, `SELECT data FROM daily_questions WHERE quiz_date=$1`, date).Scan(&raw)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Question{}, domain.ErrQuestionNotFound
	}
	if err != nil {
		return domain.Question{}, fmt.Errorf("load question: %w", err)
	}
	var question domain.Question
	if err := json.Unmarshal(raw, &question); err != nil {
		return domain.Question{}, fmt.Errorf("unmarshal question: %w", err)
	}
	if question.Date == "" {
		question.Date = date
	}
	return question, nil
}
