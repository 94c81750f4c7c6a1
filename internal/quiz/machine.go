package quiz

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"math/rand/v2"
	"sync"

	"github.com/google/uuid"

	"github.com/pavelanni/quizzer/internal/bank"
	"github.com/pavelanni/quizzer/internal/model"
)

const (
	// FailureFeedback is recorded when an answer could not be graded.
	FailureFeedback = "Your answer could not be evaluated right now, so it scored zero. You can continue with the next question."
	// SkippedFeedback is recorded for a question advanced past without an answer.
	SkippedFeedback = "skipped"
)

// PoolSource looks up the question pool for a selection. *bank.Bank implements it.
type PoolSource interface {
	Pool(subject, chapter string, d model.Difficulty) ([]model.Question, error)
}

// Evaluator grades one answer. *llm.Evaluator implements it.
type Evaluator interface {
	Evaluate(ctx context.Context, q model.Question, answer string) (*model.EvaluationResult, error)
}

// WholePool as Options.SessionSize asks every question in the pool.
const WholePool = -1

// Options tune a Machine. Zero values select defaults.
//
// SessionSize 0 means DefaultSessionSize, not the whole pool; callers whose
// own zero means "all questions" (the --session-size flag) must pass WholePool.
type Options struct {
	SessionSize int // questions per session; 0 means DefaultSessionSize, negative (WholePool) means the whole pool
	Rand        *rand.Rand
	Logger      *slog.Logger
}

// Machine is the quiz session state machine: setup, quiz, summary.
// It is safe for concurrent use; the evaluation call runs without the lock
// and at most one evaluation may be outstanding.
type Machine struct {
	pool      PoolSource
	evaluator Evaluator
	streak    *Streak
	size      int
	rng       *rand.Rand
	log       *slog.Logger

	mu         sync.Mutex
	state      model.State
	sessionID  string
	subject    string
	chapter    string
	difficulty model.Difficulty
	questions  []model.Question
	index      int
	score      int
	answers    []model.SessionAnswer
	lastResult *model.EvaluationResult
	inFlight   bool
}

// NewMachine creates a Machine in the setup state.
func NewMachine(pool PoolSource, evaluator Evaluator, streak *Streak, opts Options) *Machine {
	size := opts.SessionSize
	if size == 0 {
		size = DefaultSessionSize
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Machine{
		pool:      pool,
		evaluator: evaluator,
		streak:    streak,
		size:      size,
		rng:       opts.Rand,
		log:       logger,
		state:     model.StateSetup,
	}
}

// StartQuiz samples a new session for the selection and enters the quiz state.
// The streak carries over from earlier sessions.
func (m *Machine) StartQuiz(ctx context.Context, subject, chapter string, d model.Difficulty) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.state != model.StateSetup {
		return fmt.Errorf("%w: cannot start a quiz from %s", ErrInvalidTransition, m.state)
	}

	selErr := &SelectionError{Subject: subject, Chapter: chapter, Difficulty: d}
	pool, err := m.pool.Pool(subject, chapter, d)
	if err != nil {
		if errors.Is(err, bank.ErrNotFound) {
			selErr.Kind = ErrChapterNotFound
			return selErr
		}
		return fmt.Errorf("look up question pool: %w", err)
	}

	size := m.size
	if size < 0 {
		size = 0
	}
	questions, err := Sample(pool, size, m.rng)
	if err != nil {
		selErr.Kind = ErrNoQuestions
		return selErr
	}

	m.sessionID = uuid.NewString()
	m.subject, m.chapter, m.difficulty = subject, chapter, d
	m.questions = questions
	m.index = 0
	m.score = 0
	m.answers = make([]model.SessionAnswer, 0, len(questions))
	m.lastResult = nil
	m.state = model.StateQuiz

	m.log.InfoContext(ctx, "quiz started",
		"session_id", m.sessionID,
		"subject", subject,
		"chapter", chapter,
		"difficulty", d,
		"questions", len(questions),
		"pool", len(pool),
	)
	return nil
}

// SubmitAnswer grades the answer to the current question and records the
// outcome. It does not advance. When grading fails the question is recorded
// with a zero-score result, the streak resets, and that synthetic result is
// returned together with an *EvaluationError.
func (m *Machine) SubmitAnswer(ctx context.Context, text string) (*model.EvaluationResult, error) {
	m.mu.Lock()
	if m.state != model.StateQuiz {
		m.mu.Unlock()
		return nil, fmt.Errorf("%w: cannot submit an answer in %s", ErrInvalidTransition, m.state)
	}
	if m.inFlight {
		m.mu.Unlock()
		return nil, ErrEvaluationInFlight
	}
	if m.answeredLocked() {
		m.mu.Unlock()
		return nil, ErrAlreadyAnswered
	}
	q := m.questions[m.index]
	sessionID := m.sessionID
	m.inFlight = true
	m.mu.Unlock()

	result, evalErr := m.evaluator.Evaluate(ctx, q, text)
	if result == nil && evalErr == nil {
		evalErr = ErrNoResult
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.inFlight = false

	answer := model.SessionAnswer{Question: q, StudentAnswer: text}
	if evalErr != nil {
		m.log.WarnContext(ctx, "evaluation failed",
			"session_id", sessionID,
			"question_id", q.ID,
			"error", evalErr,
		)
		result = failureResult()
		answer.Failed = true
	}
	answer.Result = result
	m.recordLocked(ctx, answer)

	if evalErr != nil {
		return result, &EvaluationError{QuestionID: q.ID, Err: evalErr}
	}
	m.log.InfoContext(ctx, "answer evaluated",
		"session_id", sessionID,
		"question_id", q.ID,
		"score", result.Score,
		"max_marks", q.MaxMarks,
		"correct", result.IsCorrect,
	)
	return result, nil
}

// Advance moves to the next question, or to the summary after the last one.
// A question without a recorded answer is recorded as skipped, whatever
// wasAnswered says.
func (m *Machine) Advance(wasAnswered bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.state != model.StateQuiz {
		return fmt.Errorf("%w: cannot advance in %s", ErrInvalidTransition, m.state)
	}
	if m.inFlight {
		return ErrEvaluationInFlight
	}

	if !m.answeredLocked() {
		if wasAnswered {
			m.log.Warn("advance reported an answer but none was recorded; treating as skipped",
				"session_id", m.sessionID,
				"index", m.index,
			)
		}
		m.recordLocked(context.Background(), model.SessionAnswer{
			Question: m.questions[m.index],
			Result:   skippedResult(),
			Skipped:  true,
		})
	}

	if m.index+1 < len(m.questions) {
		m.index++
		m.lastResult = nil
		return nil
	}

	m.state = model.StateSummary
	m.log.Info("quiz finished",
		"session_id", m.sessionID,
		"score", m.score,
		"max_score", maxScore(m.questions),
		"streak", m.streak.Value(),
	)
	return nil
}

// Restart discards the session and returns to setup. The streak is kept.
func (m *Machine) Restart() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.state == model.StateQuiz {
		return fmt.Errorf("%w: cannot restart during a quiz", ErrInvalidTransition)
	}
	m.resetLocked()
	return nil
}

// Abandon ends a quiz early and returns to setup. Answers given so far are
// discarded; the streak already reflects them.
func (m *Machine) Abandon() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.state != model.StateQuiz {
		return fmt.Errorf("%w: no quiz to abandon in %s", ErrInvalidTransition, m.state)
	}
	if m.inFlight {
		return ErrEvaluationInFlight
	}
	m.log.Info("quiz abandoned", "session_id", m.sessionID, "answered", len(m.answers), "total", len(m.questions))
	m.resetLocked()
	return nil
}

// State returns the current phase.
func (m *Machine) State() model.State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// Current returns the current question and its zero-based index.
// ok is false outside the quiz state.
func (m *Machine) Current() (q model.Question, index int, ok bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.state != model.StateQuiz {
		return model.Question{}, 0, false
	}
	return m.questions[m.index], m.index, true
}

// LastResult returns the result recorded for the current question, if any.
func (m *Machine) LastResult() *model.EvaluationResult {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.lastResult
}

// Score returns the cumulative score of the current session.
func (m *Machine) Score() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.score
}

// Streak returns the cross-session streak.
func (m *Machine) Streak() int {
	return m.streak.Value()
}

// QuestionView is a question as shown to the student: no reference answer.
type QuestionView struct {
	ID       string `json:"id"`
	Prompt   string `json:"prompt"`
	MaxMarks int    `json:"max_marks"`
}

// Snapshot is everything a presentation layer needs to render the machine.
type Snapshot struct {
	State      model.State             `json:"state"`
	SessionID  string                  `json:"session_id,omitempty"`
	Subject    string                  `json:"subject,omitempty"`
	Chapter    string                  `json:"chapter,omitempty"`
	Difficulty model.Difficulty        `json:"difficulty,omitempty"`
	Question   *QuestionView           `json:"question,omitempty"`
	Index      int                     `json:"index"`
	Total      int                     `json:"total"`
	Answered   bool                    `json:"answered"`
	Evaluating bool                    `json:"evaluating"`
	Score      int                     `json:"score"`
	MaxScore   int                     `json:"max_score"`
	Streak     int                     `json:"streak"`
	LastResult *model.EvaluationResult `json:"last_result,omitempty"`
}

// Snapshot returns a consistent copy of the presentation state.
func (m *Machine) Snapshot() Snapshot {
	m.mu.Lock()
	defer m.mu.Unlock()

	s := Snapshot{
		State:      m.state,
		SessionID:  m.sessionID,
		Subject:    m.subject,
		Chapter:    m.chapter,
		Difficulty: m.difficulty,
		Index:      m.index,
		Total:      len(m.questions),
		Evaluating: m.inFlight,
		Score:      m.score,
		MaxScore:   maxScore(m.questions),
		Streak:     m.streak.Value(),
		LastResult: m.lastResult,
	}
	if m.state == model.StateQuiz {
		q := m.questions[m.index]
		s.Question = &QuestionView{ID: q.ID, Prompt: q.Prompt, MaxMarks: q.MaxMarks}
		s.Answered = m.answeredLocked()
	}
	return s
}

// Summary aggregates the finished session.
func (m *Machine) Summary() (model.Summary, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.state != model.StateSummary {
		return model.Summary{}, ErrNotInSummary
	}
	total := 0
	for _, a := range m.answers {
		if a.Result != nil {
			total += a.Result.Score
		}
	}
	possible := maxScore(m.questions)
	answers := make([]model.SessionAnswer, len(m.answers))
	copy(answers, m.answers)

	return model.Summary{
		SessionID:  m.sessionID,
		Subject:    m.subject,
		Chapter:    m.chapter,
		Difficulty: m.difficulty,
		Answers:    answers,
		TotalScore: total,
		MaxScore:   possible,
		Percentage: Percentage(total, possible),
		Streak:     m.streak.Value(),
	}, nil
}

// Percentage is round(100 * total / possible), or 0 when possible is 0.
func Percentage(total, possible int) int {
	if possible <= 0 {
		return 0
	}
	return int(math.Round(100 * float64(total) / float64(possible)))
}

// answeredLocked reports whether the current question already has a result.
func (m *Machine) answeredLocked() bool {
	return len(m.answers) > m.index
}

func (m *Machine) recordLocked(ctx context.Context, a model.SessionAnswer) {
	m.answers = append(m.answers, a)
	m.score += a.Result.Score
	m.lastResult = a.Result
	m.streak.Record(ctx, a.Result.IsCorrect)
}

func (m *Machine) resetLocked() {
	m.state = model.StateSetup
	m.sessionID = ""
	m.subject, m.chapter, m.difficulty = "", "", ""
	m.questions = nil
	m.index = 0
	m.score = 0
	m.answers = nil
	m.lastResult = nil
}

func maxScore(questions []model.Question) int {
	total := 0
	for _, q := range questions {
		total += q.MaxMarks
	}
	return total
}

func failureResult() *model.EvaluationResult {
	return &model.EvaluationResult{
		Score:                  0,
		Feedback:               FailureFeedback,
		IsCorrect:              false,
		MissingConcepts:        []string{},
		TerminologyCorrections: []string{},
	}
}

func skippedResult() *model.EvaluationResult {
	return &model.EvaluationResult{
		Score:                  0,
		Feedback:               SkippedFeedback,
		IsCorrect:              false,
		MissingConcepts:        []string{},
		TerminologyCorrections: []string{},
	}
}
