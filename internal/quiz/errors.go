package quiz

import (
	"errors"
	"fmt"

	"github.com/pavelanni/quizzer/internal/model"
)

var (
	ErrInvalidTransition  = errors.New("invalid state transition")
	ErrAlreadyAnswered    = errors.New("question already answered")
	ErrEvaluationInFlight = errors.New("evaluation in progress")
	ErrNotInSummary       = errors.New("quiz is not finished")
	ErrNoResult           = errors.New("evaluator returned no result")

	ErrChapterNotFound = errors.New("chapter not found")
	ErrNoQuestions     = errors.New("no questions available")
)

// SelectionError is returned by StartQuiz when the selection cannot start a session.
// Kind is ErrChapterNotFound or ErrNoQuestions.
type SelectionError struct {
	Kind       error
	Subject    string
	Chapter    string
	Difficulty model.Difficulty
}

func (e *SelectionError) Error() string {
	return fmt.Sprintf("%v: %s / %s / %s", e.Kind, e.Subject, e.Chapter, e.Difficulty)
}

func (e *SelectionError) Unwrap() error { return e.Kind }

// EvaluationError reports that an answer could not be graded. The session has
// already recorded a zero-score result for the question.
type EvaluationError struct {
	QuestionID string
	Err        error
}

func (e *EvaluationError) Error() string {
	return fmt.Sprintf("evaluate question %s: %v", e.QuestionID, e.Err)
}

func (e *EvaluationError) Unwrap() error { return e.Err }
