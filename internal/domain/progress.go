package domain

import "math"

// Progress is the per-device quiz history record. It is persisted as a JSON
// blob under a single namespaced key; field names are part of the stored
// format and must not change.
type Progress struct {
	TotalPoints       int    `json:"totalPoints"`
	CurrentStreak     int    `json:"currentStreak"`
	LongestStreak     int    `json:"longestStreak"`
	LastPlayedDate    string `json:"lastPlayedDate"`
	QuestionsAnswered int    `json:"questionsAnswered"`
	CorrectAnswers    int    `json:"correctAnswers"`
}

// DefaultProgress is the all-zero record used before first play and whenever
// a persisted record is absent or malformed.
func DefaultProgress() Progress {
	return Progress{}
}

// Accuracy returns the percentage of answered questions that were correct,
// rounded to the nearest integer. Zero when nothing has been answered.
func (p Progress) Accuracy() int {
	if p.QuestionsAnswered == 0 {
		return 0
	}
	return int(math.Round(float64(p.CorrectAnswers) / float64(p.QuestionsAnswered) * 100))
}

// HasPlayedOn reports whether the record's last play happened on the given
// local calendar date.
func (p Progress) HasPlayedOn(date string) bool {
	return p.LastPlayedDate != "" && p.LastPlayedDate == date
}

// Valid reports whether the record satisfies the stored-format invariants.
// Records that fail this check are treated the same as unparseable ones.
func (p Progress) Valid() bool {
	if p.TotalPoints < 0 || p.CurrentStreak < 0 || p.LongestStreak < 0 ||
		p.QuestionsAnswered < 0 || p.CorrectAnswers < 0 {
		return false
	}
	if p.CorrectAnswers > p.QuestionsAnswered {
		return false
	}
	if p.LongestStreak < p.CurrentStreak {
		return false
	}
	if p.LastPlayedDate != "" && !ValidDate(p.LastPlayedDate) {
		return false
	}
	return true
}

// ProgressSnapshot is the client-facing view of a record, including the
// derived values that are computed on read rather than persisted.
type ProgressSnapshot struct {
	Progress
	Accuracy       int  `json:"accuracy"`
	HasPlayedToday bool `json:"hasPlayedToday"`
}

// SnapshotAt derives the client view of a record for the given local date.
func SnapshotAt(p Progress, today string) ProgressSnapshot {
	return ProgressSnapshot{
		Progress:       p,
		Accuracy:       p.Accuracy(),
		HasPlayedToday: p.HasPlayedOn(today),
	}
}

// SessionGate decides which affordance a client should present. Exactly one
// of the two fields is true.
type SessionGate struct {
	ShowStart   bool `json:"showStart"`
	ShowResults bool `json:"showResults"`
}

// GateAt derives the gate for a record on the given local date.
func GateAt(p Progress, today string) SessionGate {
	played := p.HasPlayedOn(today)
	return SessionGate{ShowStart: !played, ShowResults: played}
}
