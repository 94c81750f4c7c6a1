package model

import (
	"fmt"
	"strings"
)

// CorrectThreshold is the share of MaxMarks an answer needs to count as correct.
const CorrectThreshold = 0.75

// Difficulty represents question difficulty level.
type Difficulty string

const (
	DifficultyBasic     Difficulty = "basic"
	DifficultyMedium    Difficulty = "medium"
	DifficultyDifficult Difficulty = "difficult"
)

// Difficulties lists the known difficulty levels in display order.
var Difficulties = []Difficulty{DifficultyBasic, DifficultyMedium, DifficultyDifficult}

// ParseDifficulty accepts a difficulty name in any letter case.
func ParseDifficulty(s string) (Difficulty, error) {
	d := Difficulty(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range Difficulties {
		if d == known {
			return d, nil
		}
	}
	return "", fmt.Errorf("unknown difficulty %q", s)
}

// Question is a single quiz question with its reference answer.
type Question struct {
	ID              string `json:"id"`
	Prompt          string `json:"prompt"`
	CanonicalAnswer string `json:"answer"`
	MaxMarks        int    `json:"max_marks"`
}

// Chapter groups questions of one topic by difficulty.
type Chapter struct {
	Name      string                    `json:"name"`
	Questions map[Difficulty][]Question `json:"questions"`
}

// Subject is a named, ordered list of chapters.
type Subject struct {
	Name     string    `json:"name"`
	Chapters []Chapter `json:"chapters"`
}

// EvaluationResult is the graded outcome of one submitted answer.
type EvaluationResult struct {
	Score                  int      `json:"score"`
	Feedback               string   `json:"feedback"`
	IsCorrect              bool     `json:"isCorrect"`
	MissingConcepts        []string `json:"missingConcepts"`
	TerminologyCorrections []string `json:"terminologyCorrections"`
	ModelAnswerImprovement string   `json:"modelAnswerImprovement"`
}

// MeetsThreshold reports whether score reaches CorrectThreshold of maxMarks.
func MeetsThreshold(score, maxMarks int) bool {
	if maxMarks <= 0 {
		return false
	}
	return float64(score) >= CorrectThreshold*float64(maxMarks)
}

// SessionAnswer pairs a question with what the student submitted and how it was graded.
type SessionAnswer struct {
	Question      Question          `json:"question"`
	StudentAnswer string            `json:"student_answer"`
	Result        *EvaluationResult `json:"result"`
	Skipped       bool              `json:"skipped,omitempty"`
	Failed        bool              `json:"failed,omitempty"`
}

// State is the quiz state machine phase.
type State string

const (
	StateSetup   State = "setup"
	StateQuiz    State = "quiz"
	StateSummary State = "summary"
)

// Summary aggregates a finished session.
type Summary struct {
	SessionID  string          `json:"session_id"`
	Subject    string          `json:"subject"`
	Chapter    string          `json:"chapter"`
	Difficulty Difficulty      `json:"difficulty"`
	Answers    []SessionAnswer `json:"answers"`
	TotalScore int             `json:"total_score"`
	MaxScore   int             `json:"max_score"`
	Percentage int             `json:"percentage"`
	Streak     int             `json:"streak"`
}

// QuizConfig holds runtime quiz parameters set via CLI flags.
type QuizConfig struct {
	SessionSize   int    // --session-size; 0 means the whole pool (quiz.WholePool), unlike quiz.Options
	PromptVariant string // grading prompt variant (strict, standard, lenient)
	Lang          string // UI language (en, ru)
}
