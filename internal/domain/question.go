package domain

// Option represents a possible answer for a question.
type Option struct {
	ID      string `json:"id"`
	Text    string `json:"text"`
	Correct bool   `json:"correct"`
}

// Question models the MCQ assigned to a calendar date, with exactly one
// correct option.
type Question struct {
	ID      string   `json:"id"`
	Date    string   `json:"date"`
	Prompt  string   `json:"prompt"`
	Options []Option `json:"options"`
	Points  int      `json:"points"` // defaults to 10 if zero
}

// DefaultPoints is awarded for a correct answer when the question carries no
// explicit point value.
const DefaultPoints = 10

// OptionView is an option with the correct flag stripped for clients.
type OptionView struct {
	ID   string `json:"id"`
	Text string `json:"text"`
}

// QuestionView is the client-safe form of a question.
type QuestionView struct {
	ID      string       `json:"id"`
	Date    string       `json:"date"`
	Prompt  string       `json:"prompt"`
	Options []OptionView `json:"options"`
	Points  int          `json:"points"`
}

// View strips answer information from the question.
func (q Question) View() QuestionView {
	options := make([]OptionView, len(q.Options))
	for i, opt := range q.Options {
		options[i] = OptionView{ID: opt.ID, Text: opt.Text}
	}
	points := q.Points
	if points == 0 {
		points = DefaultPoints
	}
	return QuestionView{ID: q.ID, Date: q.Date, Prompt: q.Prompt, Options: options, Points: points}
}

// AnswerSubmission models the scoring signal from clients.
type AnswerSubmission struct {
	QuestionID string
	OptionID   string
}

// AnswerResult summarizes the outcome of a submission.
type AnswerResult struct {
	QuestionID string `json:"questionId"`
	Correct    bool   `json:"correct"`
	Awarded    int    `json:"awarded"`
}
