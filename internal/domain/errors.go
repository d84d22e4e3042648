package domain

import "errors"

var (
	// ErrQuestionNotFound indicates no question is assigned to the requested date.
	ErrQuestionNotFound = errors.New("question not found")
	// ErrWrongQuestion indicates a submission for a question other than today's.
	ErrWrongQuestion = errors.New("submission does not match today's question")
	// ErrOptionNotFound indicates a submitted option ID is invalid.
	ErrOptionNotFound = errors.New("option not found")
)
