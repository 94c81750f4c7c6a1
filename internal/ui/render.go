package ui

import (
	"context"
	"fmt"
	"strings"

	"charm.land/lipgloss/v2"

	"github.com/pavelanni/quizzer/internal/i18n"
	"github.com/pavelanni/quizzer/internal/model"
	"github.com/pavelanni/quizzer/internal/quiz"
)

const cardWidth = 72

// Menu renders a numbered list of options under a title.
func Menu(title string, options []string) string {
	var b strings.Builder
	b.WriteString(headerStyle.Render(title))
	b.WriteString("\n")
	for i, o := range options {
		b.WriteString(fmt.Sprintf("  %s %s\n", hintStyle.Render(fmt.Sprintf("%d)", i+1)), bodyStyle.Render(o)))
	}
	return b.String()
}

// Question renders the current question card with score and streak.
func Question(ctx context.Context, s quiz.Snapshot) string {
	if s.Question == nil {
		return ""
	}
	var b strings.Builder
	b.WriteString(headerStyle.Render(i18n.Td(ctx, "QuestionHeader", map[string]any{
		"Index": s.Index + 1,
		"Total": s.Total,
	})))
	b.WriteString("  ")
	b.WriteString(hintStyle.Render(i18n.Tp(ctx, "Marks", s.Question.MaxMarks)))
	b.WriteString("\n")
	b.WriteString(cardStyle.Width(cardWidth).Render(bodyStyle.Render(s.Question.Prompt)))
	b.WriteString("\n")
	b.WriteString(Status(ctx, s.Score, s.MaxScore, s.Streak))
	return b.String()
}

// Status renders the running score and streak line.
func Status(ctx context.Context, score, maxScore, streak int) string {
	line := hintStyle.Render(i18n.Td(ctx, "ScoreLine", map[string]any{"Score": score, "Max": maxScore}))
	if streak > 0 {
		line += "  " + streakStyle.Render(i18n.Tp(ctx, "Streak", streak))
	}
	return line
}

// Result renders the feedback for one graded, failed or skipped answer.
func Result(ctx context.Context, a model.SessionAnswer) string {
	res := a.Result
	if res == nil {
		return ""
	}
	var b strings.Builder
	switch {
	case a.Skipped:
		b.WriteString(hintStyle.Render(i18n.T(ctx, "Skipped")))
	case a.Failed:
		b.WriteString(incorrectStyle.Render(i18n.T(ctx, "EvaluationFailedNotice")))
	case res.IsCorrect:
		b.WriteString(correctStyle.Render(i18n.T(ctx, "Correct")))
	default:
		b.WriteString(incorrectStyle.Render(i18n.T(ctx, "Incorrect")))
	}
	if !a.Skipped && !a.Failed {
		b.WriteString("  ")
		b.WriteString(bodyStyle.Render(fmt.Sprintf("%d/%d", res.Score, a.Question.MaxMarks)))
		b.WriteString("\n")
		b.WriteString(lipgloss.NewStyle().Width(cardWidth).Render(bodyStyle.Render(res.Feedback)))
	}
	b.WriteString("\n")

	writeList(ctx, &b, "MissingConcepts", res.MissingConcepts)
	writeList(ctx, &b, "TerminologyCorrections", res.TerminologyCorrections)
	if res.ModelAnswerImprovement != "" {
		b.WriteString(headerStyle.Render(i18n.T(ctx, "Improvement")))
		b.WriteString("\n")
		b.WriteString(lipgloss.NewStyle().Width(cardWidth).PaddingLeft(2).Render(res.ModelAnswerImprovement))
		b.WriteString("\n")
	}
	return b.String()
}

func writeList(ctx context.Context, b *strings.Builder, msgID string, items []string) {
	if len(items) == 0 {
		return
	}
	b.WriteString(headerStyle.Render(i18n.T(ctx, msgID)))
	b.WriteString("\n")
	for _, it := range items {
		b.WriteString("  - ")
		b.WriteString(it)
		b.WriteString("\n")
	}
}

// Summary renders the end-of-quiz report.
func Summary(ctx context.Context, sum model.Summary) string {
	var b strings.Builder
	b.WriteString(titleStyle.Render(i18n.T(ctx, "SummaryTitle")))
	b.WriteString("\n")
	b.WriteString(hintStyle.Render(fmt.Sprintf("%s / %s / %s", sum.Subject, sum.Chapter, sum.Difficulty)))
	b.WriteString("\n\n")
	for i, a := range sum.Answers {
		mark := correctStyle.Render("✓")
		if a.Result == nil || !a.Result.IsCorrect {
			mark = incorrectStyle.Render("✗")
		}
		score := 0
		if a.Result != nil {
			score = a.Result.Score
		}
		b.WriteString(fmt.Sprintf("%s %d. %s %s\n",
			mark, i+1,
			bodyStyle.Render(truncate(a.Question.Prompt, 50)),
			hintStyle.Render(fmt.Sprintf("(%d/%d)", score, a.Question.MaxMarks)),
		))
	}
	b.WriteString("\n")
	b.WriteString(headerStyle.Render(i18n.Td(ctx, "SummaryScore", map[string]any{
		"Total":   sum.TotalScore,
		"Max":     sum.MaxScore,
		"Percent": sum.Percentage,
	})))
	b.WriteString("\n")
	b.WriteString(ProgressBar(float64(sum.Percentage)/100, 40))
	b.WriteString("\n")
	if sum.Streak > 0 {
		b.WriteString(streakStyle.Render(i18n.Tp(ctx, "Streak", sum.Streak)))
		b.WriteString("\n")
	}
	return b.String()
}

// ProgressBar renders a horizontal bar filled to percent (0..1), coloured by grade band.
func ProgressBar(percent float64, width int) string {
	if width < 4 {
		width = 4
	}
	filled := int(float64(width) * percent)
	if filled > width {
		filled = width
	}
	if filled < 0 {
		filled = 0
	}
	return bandStyle(int(percent*100+0.5)).Render(strings.Repeat(" ", filled)) +
		progressEmpty.Render(strings.Repeat(" ", width-filled))
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
