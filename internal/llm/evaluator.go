package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"math"

	"github.com/pavelanni/quizzer/internal/llm/prompts"
	"github.com/pavelanni/quizzer/internal/model"
)

const (
	evalMaxTokens   = 1024
	evalTemperature = 0.3
)

// EvaluationSchema is the structured output the grader must return.
var EvaluationSchema = &Schema{
	Name:        "evaluation-result",
	Description: "Graded assessment of a student's answer to one question",
	Definition: map[string]any{
		"type": "object",
		"properties": map[string]any{
			"score":     map[string]any{"type": "number"},
			"feedback":  map[string]any{"type": "string"},
			"isCorrect": map[string]any{"type": "boolean"},
			"missingConcepts": map[string]any{
				"type":  "array",
				"items": map[string]any{"type": "string"},
			},
			"terminologyCorrections": map[string]any{
				"type":  "array",
				"items": map[string]any{"type": "string"},
			},
			"modelAnswerImprovement": map[string]any{"type": "string"},
		},
		"required": []any{
			"score", "feedback", "isCorrect",
			"missingConcepts", "terminologyCorrections", "modelAnswerImprovement",
		},
		"additionalProperties": false,
	},
}

// gradeResponse mirrors EvaluationSchema; score may arrive as a fraction.
type gradeResponse struct {
	Score                  float64  `json:"score"`
	Feedback               string   `json:"feedback"`
	IsCorrect              bool     `json:"isCorrect"`
	MissingConcepts        []string `json:"missingConcepts"`
	TerminologyCorrections []string `json:"terminologyCorrections"`
	ModelAnswerImprovement string   `json:"modelAnswerImprovement"`
}

// Evaluator grades one (question, answer) pair through a Provider.
type Evaluator struct {
	provider Provider
	variant  prompts.PromptVariant
}

// NewEvaluator creates an Evaluator using the given grading prompt variant.
func NewEvaluator(p Provider, variant string) (*Evaluator, error) {
	if !prompts.IsValidVariant(variant) {
		return nil, fmt.Errorf("invalid prompt variant %q", variant)
	}
	if err := prompts.Load(); err != nil {
		return nil, fmt.Errorf("load prompts: %w", err)
	}
	return &Evaluator{provider: p, variant: prompts.PromptVariant(variant)}, nil
}

// Evaluate sends the student's answer for grading. Empty answers are sent
// as-is (marked) and are expected to score zero. Every returned error
// matches ErrEvaluationFailed.
func (e *Evaluator) Evaluate(ctx context.Context, q model.Question, answer string) (*model.EvaluationResult, error) {
	system, err := prompts.BuildEvalPrompt(e.variant, q)
	if err != nil {
		return nil, fmt.Errorf("%w: build prompt: %w", ErrEvaluationFailed, err)
	}

	resp, err := e.provider.Generate(ctx, Request{
		System:      system,
		Messages:    []Message{{Role: RoleUser, Content: prompts.WrapAnswer(answer)}},
		Schema:      EvaluationSchema,
		MaxTokens:   evalMaxTokens,
		Temperature: evalTemperature,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrEvaluationFailed, err)
	}

	if resp.StopReason == StopMaxTokens {
		err := &ErrInvalidResponse{Content: resp.Content, Err: errors.New("reply truncated at token limit")}
		slog.Warn("rejected evaluation response", "question_id", q.ID, "error", err)
		return nil, fmt.Errorf("%w: %w", ErrEvaluationFailed, err)
	}

	result, err := parseEvaluation(resp.Content, q.MaxMarks)
	if err != nil {
		slog.Warn("rejected evaluation response", "question_id", q.ID, "error", err)
		return nil, fmt.Errorf("%w: %w", ErrEvaluationFailed, err)
	}
	return result, nil
}

// parseEvaluation validates raw against EvaluationSchema and normalises the
// score into [0, maxMarks]. IsCorrect is taken as reported.
func parseEvaluation(raw json.RawMessage, maxMarks int) (*model.EvaluationResult, error) {
	if err := EvaluationSchema.Validate(raw); err != nil {
		return nil, err
	}

	var gr gradeResponse
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&gr); err != nil {
		return nil, &ErrInvalidResponse{Content: raw, Err: fmt.Errorf("decode: %w", err)}
	}

	score := clampScore(gr.Score, maxMarks)
	if gr.IsCorrect != model.MeetsThreshold(score, maxMarks) {
		slog.Warn("isCorrect disagrees with threshold",
			"reported_score", gr.Score,
			"score", score,
			"max_marks", maxMarks,
			"is_correct", gr.IsCorrect,
		)
	}

	return &model.EvaluationResult{
		Score:                  score,
		Feedback:               gr.Feedback,
		IsCorrect:              gr.IsCorrect,
		MissingConcepts:        nonNil(gr.MissingConcepts),
		TerminologyCorrections: nonNil(gr.TerminologyCorrections),
		ModelAnswerImprovement: gr.ModelAnswerImprovement,
	}, nil
}

func clampScore(raw float64, maxMarks int) int {
	if math.IsNaN(raw) {
		return 0
	}
	s := math.Round(raw)
	switch {
	case s < 0:
		return 0
	case s > float64(maxMarks):
		return maxMarks
	}
	return int(s)
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
