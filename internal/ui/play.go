package ui

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/pavelanni/quizzer/internal/bank"
	"github.com/pavelanni/quizzer/internal/i18n"
	"github.com/pavelanni/quizzer/internal/model"
	"github.com/pavelanni/quizzer/internal/quiz"
)

// Commands understood at the answer prompt.
const (
	CmdSkip = ":skip"
	CmdQuit = ":quit"
)

var errQuit = errors.New("quit")

// Selection is a subject/chapter/difficulty choice. Empty fields are asked for.
type Selection struct {
	Subject    string
	Chapter    string
	Difficulty model.Difficulty
}

func (s Selection) complete() bool {
	return s.Subject != "" && s.Chapter != "" && s.Difficulty != ""
}

// Player runs quizzes on a line-oriented terminal.
type Player struct {
	machine *quiz.Machine
	bank    *bank.Bank
	in      *bufio.Scanner
	out     io.Writer
}

// NewPlayer creates a Player reading answers from in and writing to out.
func NewPlayer(m *quiz.Machine, b *bank.Bank, in io.Reader, out io.Writer) *Player {
	return &Player{machine: m, bank: b, in: bufio.NewScanner(in), out: out}
}

// Run plays quizzes until the user declines another round, types :quit, or
// input ends. A selection given up front that cannot start a quiz is returned
// as an error; an interactive one is asked for again.
func (p *Player) Run(ctx context.Context, preset Selection) error {
	p.println(titleStyle.Render(i18n.T(ctx, "AppTitle")))

	for {
		sel := preset
		err := p.start(ctx, &sel, preset.complete())
		if errors.Is(err, errQuit) {
			return nil
		}
		if err != nil {
			return err
		}

		finished, err := p.playRound(ctx)
		if err != nil {
			return err
		}
		if !finished {
			p.println(i18n.T(ctx, "Goodbye"))
			return nil
		}

		sum, err := p.machine.Summary()
		if err != nil {
			return err
		}
		p.println(Summary(ctx, sum))

		if err := p.machine.Restart(); err != nil {
			return err
		}
		again, ok := p.prompt(i18n.T(ctx, "PlayAgain"))
		if !ok || !isYes(again) {
			p.println(i18n.T(ctx, "Goodbye"))
			return nil
		}
		preset = Selection{}
	}
}

// start asks for any missing selection fields and starts the quiz.
func (p *Player) start(ctx context.Context, sel *Selection, fixed bool) error {
	for {
		err := p.choose(ctx, sel)
		if err == nil {
			err = p.machine.StartQuiz(ctx, sel.Subject, sel.Chapter, sel.Difficulty)
		}
		if err == nil {
			return nil
		}
		var selErr *quiz.SelectionError
		if !errors.As(err, &selErr) || fixed {
			return err
		}
		if errors.Is(err, quiz.ErrNoQuestions) {
			p.println(incorrectStyle.Render(i18n.T(ctx, "ErrNoQuestions")))
		} else {
			p.println(incorrectStyle.Render(i18n.T(ctx, "ErrChapterNotFound")))
		}
		*sel = Selection{}
	}
}

// choose fills in the missing fields of sel. A preset subject or chapter
// that is not in the bank yields a *quiz.SelectionError.
func (p *Player) choose(ctx context.Context, sel *Selection) error {
	catalog := p.bank.Catalog()
	if len(catalog) == 0 {
		return quiz.ErrNoQuestions
	}
	notFound := func() error {
		return &quiz.SelectionError{Kind: quiz.ErrChapterNotFound, Subject: sel.Subject, Chapter: sel.Chapter, Difficulty: sel.Difficulty}
	}

	if sel.Subject == "" {
		names := make([]string, len(catalog))
		for i, s := range catalog {
			names[i] = s.Name
		}
		i, err := p.pick(ctx, i18n.T(ctx, "ChooseSubject"), names)
		if err != nil {
			return err
		}
		sel.Subject = names[i]
	}

	var chapters []bank.ChapterInfo
	for _, s := range catalog {
		if s.Name == sel.Subject {
			chapters = s.Chapters
		}
	}
	if len(chapters) == 0 {
		return notFound()
	}

	var counts map[model.Difficulty]int
	if sel.Chapter == "" {
		names := make([]string, len(chapters))
		for i, c := range chapters {
			names[i] = c.Name
		}
		i, err := p.pick(ctx, i18n.T(ctx, "ChooseChapter"), names)
		if err != nil {
			return err
		}
		sel.Chapter = names[i]
	}
	for _, c := range chapters {
		if c.Name == sel.Chapter {
			counts = c.Counts
		}
	}
	if counts == nil {
		return notFound()
	}

	if sel.Difficulty == "" {
		options := make([]string, len(model.Difficulties))
		for i, d := range model.Difficulties {
			options[i] = fmt.Sprintf("%s (%s)", d, i18n.Tp(ctx, "QuestionsAvailable", counts[d]))
		}
		i, err := p.pick(ctx, i18n.T(ctx, "ChooseDifficulty"), options)
		if err != nil {
			return err
		}
		sel.Difficulty = model.Difficulties[i]
	}
	return nil
}

// pick shows a menu and returns the chosen index. Input may be the option
// number or its text.
func (p *Player) pick(ctx context.Context, title string, options []string) (int, error) {
	for {
		p.print(Menu(title, options))
		line, ok := p.prompt("> ")
		if !ok || line == CmdQuit {
			return 0, errQuit
		}
		if n, err := strconv.Atoi(line); err == nil && n >= 1 && n <= len(options) {
			return n - 1, nil
		}
		for i, o := range options {
			if strings.EqualFold(o, line) || strings.HasPrefix(strings.ToLower(o), strings.ToLower(line)+" ") {
				return i, nil
			}
		}
		p.println(incorrectStyle.Render(i18n.T(ctx, "InvalidChoice")))
	}
}

// playRound asks every question of the started quiz. It reports false when
// the user quit before the summary.
func (p *Player) playRound(ctx context.Context) (bool, error) {
	for p.machine.State() == model.StateQuiz {
		snap := p.machine.Snapshot()
		q, _, _ := p.machine.Current()
		p.println("")
		p.println(Question(ctx, snap))

		line, ok := p.prompt(i18n.T(ctx, "AnswerPrompt") + "\n> ")
		switch {
		case !ok || line == CmdQuit:
			if err := p.machine.Abandon(); err != nil {
				return false, err
			}
			return false, nil
		case line == CmdSkip:
			if err := p.machine.Advance(false); err != nil {
				return false, err
			}
			p.println(hintStyle.Render(i18n.T(ctx, "Skipped")))
			continue
		case line == "":
			p.println(hintStyle.Render(i18n.T(ctx, "ErrEmptyAnswer")))
			continue
		}

		p.println(hintStyle.Render(i18n.T(ctx, "Evaluating")))
		res, err := p.machine.SubmitAnswer(ctx, line)
		var evalErr *quiz.EvaluationError
		failed := errors.As(err, &evalErr)
		if err != nil && !failed {
			return false, err
		}
		p.println(Result(ctx, model.SessionAnswer{Question: q, StudentAnswer: line, Result: res, Failed: failed}))
		p.println(Status(ctx, p.machine.Score(), snap.MaxScore, p.machine.Streak()))

		if err := p.machine.Advance(true); err != nil {
			return false, err
		}
	}
	return true, nil
}

// prompt prints label and reads one trimmed line. ok is false at end of input.
func (p *Player) prompt(label string) (string, bool) {
	p.print(label + " ")
	if !p.in.Scan() {
		p.println("")
		return "", false
	}
	return strings.TrimSpace(p.in.Text()), true
}

func (p *Player) print(s string) {
	fmt.Fprint(p.out, s)
}

func (p *Player) println(s string) {
	fmt.Fprintln(p.out, s)
}

func isYes(s string) bool {
	switch strings.ToLower(s) {
	case "y", "yes", "д", "да":
		return true
	}
	return false
}
