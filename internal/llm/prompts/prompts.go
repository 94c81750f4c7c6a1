package prompts

import (
	"bytes"
	"embed"
	"errors"
	"fmt"
	"math"
	"regexp"
	"strings"
	"sync"
	"text/template"
	"unicode/utf8"

	"github.com/pavelanni/quizzer/internal/model"
)

//go:embed templates/*.tmpl
var templateFS embed.FS

var (
	studentAnswerRegex      = regexp.MustCompile(`(?i)</?\s*student-answer\b[^>]*>`)
	systemInstructionsRegex = regexp.MustCompile(`(?i)</?\s*system-instructions\b[^>]*>`)
)

// maxAnswerRunes caps the student answer sent to the grader.
const maxAnswerRunes = 10000

// NoAnswerMarker replaces an empty or whitespace-only answer.
const NoAnswerMarker = "[No answer provided]"

// PromptVariant represents a grading prompt variant.
type PromptVariant string

const (
	// PromptStrict grades terminology and completeness harshly.
	PromptStrict PromptVariant = "strict"
	// PromptStandard is the default grading variant.
	PromptStandard PromptVariant = "standard"
	// PromptLenient gives more credit for partially correct ideas.
	PromptLenient PromptVariant = "lenient"
)

var validVariants = map[PromptVariant]bool{
	PromptStrict:   true,
	PromptStandard: true,
	PromptLenient:  true,
}

// IsValidVariant checks if a prompt variant name is valid.
func IsValidVariant(v string) bool {
	return validVariants[PromptVariant(v)]
}

// Criterion is one weighted part of the grading rubric.
type Criterion struct {
	Name    string
	Percent int
}

// Rubric is the fixed grading rubric. Weights sum to 100.
var Rubric = []Criterion{
	{Name: "Conceptual accuracy", Percent: 50},
	{Name: "Completeness", Percent: 25},
	{Name: "Terminology precision", Percent: 15},
	{Name: "Clarity and structure", Percent: 10},
}

var (
	loadOnce      sync.Once
	loadErr       error
	evalTemplates map[PromptVariant]*template.Template
)

// EvalData holds template data for evaluation prompts.
type EvalData struct {
	QuestionText     string
	CanonicalAnswer  string
	MaxMarks         int
	Rubric           []Criterion
	ThresholdPercent int
	ThresholdMarks   int
}

// Load parses the embedded prompt templates once.
func Load() error {
	loadOnce.Do(func() {
		evalTemplates = make(map[PromptVariant]*template.Template)
		for v := range validVariants {
			name := "templates/eval_" + string(v) + ".tmpl"
			content, err := templateFS.ReadFile(name)
			if err != nil {
				loadErr = fmt.Errorf("read prompt file %s: %w", name, err)
				return
			}
			tmpl, err := template.New("eval").Parse(string(content))
			if err != nil {
				loadErr = fmt.Errorf("parse prompt template %s: %w", name, err)
				return
			}
			evalTemplates[v] = tmpl
		}
	})
	return loadErr
}

// BuildEvalPrompt renders the grading system prompt for one question.
func BuildEvalPrompt(variant PromptVariant, q model.Question) (string, error) {
	if err := Load(); err != nil {
		return "", err
	}
	tmpl, ok := evalTemplates[variant]
	if !ok {
		return "", errors.New("invalid prompt variant: " + string(variant))
	}

	data := EvalData{
		QuestionText:     q.Prompt,
		CanonicalAnswer:  q.CanonicalAnswer,
		MaxMarks:         q.MaxMarks,
		Rubric:           Rubric,
		ThresholdPercent: int(model.CorrectThreshold * 100),
		ThresholdMarks:   int(math.Ceil(model.CorrectThreshold * float64(q.MaxMarks))),
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// SanitizeAnswer strips prompt delimiter tags, trims, truncates and marks empty answers.
func SanitizeAnswer(answer string) string {
	answer = studentAnswerRegex.ReplaceAllString(answer, "")
	answer = systemInstructionsRegex.ReplaceAllString(answer, "")
	answer = strings.TrimSpace(answer)

	if answer == "" {
		return NoAnswerMarker
	}

	if utf8.RuneCountInString(answer) > maxAnswerRunes {
		runes := []rune(answer)
		answer = string(runes[:maxAnswerRunes]) + "\n\n[Answer truncated due to length]"
	}
	return answer
}

// WrapAnswer places a sanitized answer between delimiter tags for the user message.
func WrapAnswer(answer string) string {
	return "<student-answer>\n" + SanitizeAnswer(answer) + "\n</student-answer>"
}
