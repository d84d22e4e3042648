package app

import (
	"context"
	"time"

	"daily-quiz-service/internal/domain"
)

// QuestionRepository loads the question assigned to a calendar date (from
// cache/backing store).
type QuestionRepository interface {
	QuestionOfDay(ctx context.Context, date string) (domain.Question, error)
}

// DailyQuizService ties the daily question content to the progress records:
// it serves today's question and turns validated submissions into recorded
// answers.
type DailyQuizService struct {
	questions QuestionRepository
	progress  *ProgressService
	now       func() time.Time
}

func NewDailyQuizService(questions QuestionRepository, progress *ProgressService) *DailyQuizService {
	return NewDailyQuizServiceWithClock(questions, progress, time.Now)
}

// NewDailyQuizServiceWithClock allows deterministic dates in tests.
func NewDailyQuizServiceWithClock(questions QuestionRepository, progress *ProgressService, now func() time.Time) *DailyQuizService {
	return &DailyQuizService{questions: questions, progress: progress, now: now}
}

// QuestionOfDay returns today's question with answer information stripped.
func (s *DailyQuizService) QuestionOfDay(ctx context.Context) (domain.QuestionView, error) {
	question, err := s.questions.QuestionOfDay(ctx, domain.DateOf(s.now()))
	if err != nil {
		return domain.QuestionView{}, err
	}
	return question.View(), nil
}

// SubmitAnswer validates the submission against today's question, awards the
// question's points when correct, and records the answer against the
// device's progress. Answering repeatedly on the same day keeps incrementing
// the counters but never the streak.
func (s *DailyQuizService) SubmitAnswer(ctx context.Context, deviceID string, submission domain.AnswerSubmission) (domain.AnswerResult, domain.Progress, error) {
	question, err := s.questions.QuestionOfDay(ctx, domain.DateOf(s.now()))
	if err != nil {
		return domain.AnswerResult{}, domain.Progress{}, err
	}

	correct, points, err := scoreSubmission(question, submission)
	if err != nil {
		return domain.AnswerResult{}, domain.Progress{}, err
	}

	awarded := 0
	if correct {
		awarded = points
	}
	progress := s.progress.RecordAnswer(ctx, deviceID, awarded, correct)

	return domain.AnswerResult{
		QuestionID: question.ID,
		Correct:    correct,
		Awarded:    awarded,
	}, progress, nil
}

// scoreSubmission validates the answer against the question and returns
// (correct, points).
func scoreSubmission(question domain.Question, submission domain.AnswerSubmission) (bool, int, error) {
	if submission.QuestionID != question.ID {
		return false, 0, domain.ErrWrongQuestion
	}

	var selected *domain.Option
	for i := range question.Options {
		if question.Options[i].ID == submission.OptionID {
			selected = &question.Options[i]
			break
		}
	}
	if selected == nil {
		return false, 0, domain.ErrOptionNotFound
	}

	points := question.Points
	if points == 0 {
		points = domain.DefaultPoints
	}
	if selected.Correct {
		return true, points, nil
	}
	return false, 0, nil
}
