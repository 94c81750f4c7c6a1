package bank

import (
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path"
	"sort"

	"github.com/pavelanni/quizzer/internal/model"
)

//go:embed data/*.json
var defaultFS embed.FS

// ErrNotFound is returned when a subject or chapter is missing from the bank.
var ErrNotFound = errors.New("chapter not found")

// Bank is the read-only question bank. It is safe for concurrent reads.
type Bank struct {
	subjects []model.Subject
}

// SubjectImport is the on-disk shape of one subject.
type SubjectImport struct {
	Name     string          `json:"name"`
	Chapters []ChapterImport `json:"chapters"`
}

// ChapterImport is the on-disk shape of one chapter.
type ChapterImport struct {
	Name      string                      `json:"name"`
	Questions map[string][]model.Question `json:"questions"`
}

// LoadDefault loads the bank shipped with the binary, then merges any extra files.
func LoadDefault(paths ...string) (*Bank, error) {
	b := &Bank{}
	entries, err := fs.ReadDir(defaultFS, "data")
	if err != nil {
		return nil, fmt.Errorf("read embedded bank: %w", err)
	}
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		name := path.Join("data", e.Name())
		data, err := defaultFS.ReadFile(name)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", name, err)
		}
		if err := b.merge(name, data); err != nil {
			return nil, err
		}
	}
	for _, p := range paths {
		data, err := os.ReadFile(p)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", p, err)
		}
		if err := b.merge(p, data); err != nil {
			return nil, err
		}
	}
	return b, nil
}

// Parse builds a bank from raw JSON documents, in order.
func Parse(docs ...[]byte) (*Bank, error) {
	b := &Bank{}
	for i, data := range docs {
		if err := b.merge(fmt.Sprintf("document %d", i), data); err != nil {
			return nil, err
		}
	}
	return b, nil
}

func (b *Bank) merge(source string, data []byte) error {
	var subjects []SubjectImport
	if err := json.Unmarshal(data, &subjects); err != nil {
		return fmt.Errorf("parse %s: %w", source, err)
	}

	count := 0
	for _, si := range subjects {
		if si.Name == "" {
			return fmt.Errorf("%s: subject without a name", source)
		}
		subj := b.subject(si.Name)
		for _, ci := range si.Chapters {
			if ci.Name == "" {
				return fmt.Errorf("%s: subject %q has a chapter without a name", source, si.Name)
			}
			ch := b.chapter(subj, ci.Name)
			for key, questions := range ci.Questions {
				d, err := model.ParseDifficulty(key)
				if err != nil {
					return fmt.Errorf("%s: %s/%s: %w", source, si.Name, ci.Name, err)
				}
				pool := append(ch.Questions[d], questions...)
				if err := validatePool(pool); err != nil {
					return fmt.Errorf("%s: %s/%s/%s: %w", source, si.Name, ci.Name, d, err)
				}
				ch.Questions[d] = pool
				count += len(questions)
			}
		}
	}
	slog.Info("loaded question bank", "source", source, "subjects", len(subjects), "questions", count)
	return nil
}

func (b *Bank) subject(name string) *model.Subject {
	for i := range b.subjects {
		if b.subjects[i].Name == name {
			return &b.subjects[i]
		}
	}
	b.subjects = append(b.subjects, model.Subject{Name: name})
	return &b.subjects[len(b.subjects)-1]
}

func (b *Bank) chapter(s *model.Subject, name string) *model.Chapter {
	for i := range s.Chapters {
		if s.Chapters[i].Name == name {
			return &s.Chapters[i]
		}
	}
	s.Chapters = append(s.Chapters, model.Chapter{
		Name:      name,
		Questions: make(map[model.Difficulty][]model.Question),
	})
	return &s.Chapters[len(s.Chapters)-1]
}

func validatePool(pool []model.Question) error {
	seen := make(map[string]bool, len(pool))
	for _, q := range pool {
		switch {
		case q.ID == "":
			return errors.New("question without an id")
		case q.Prompt == "":
			return fmt.Errorf("question %q has an empty prompt", q.ID)
		case q.MaxMarks <= 0:
			return fmt.Errorf("question %q: max_marks must be positive, got %d", q.ID, q.MaxMarks)
		case seen[q.ID]:
			return fmt.Errorf("duplicate question id %q", q.ID)
		}
		seen[q.ID] = true
	}
	return nil
}

// Subjects returns the subjects in load order.
func (b *Bank) Subjects() []model.Subject {
	return b.subjects
}

// Pool returns the ordered question pool for the given selection.
// A known chapter with no questions at that difficulty yields an empty pool, not an error.
func (b *Bank) Pool(subject, chapter string, d model.Difficulty) ([]model.Question, error) {
	for _, s := range b.subjects {
		if s.Name != subject {
			continue
		}
		for _, c := range s.Chapters {
			if c.Name == chapter {
				return c.Questions[d], nil
			}
		}
	}
	return nil, fmt.Errorf("%w: %s/%s", ErrNotFound, subject, chapter)
}

// ChapterInfo summarises one chapter for listing.
type ChapterInfo struct {
	Name   string                   `json:"name"`
	Counts map[model.Difficulty]int `json:"counts"`
}

// SubjectInfo summarises one subject for listing.
type SubjectInfo struct {
	Name     string        `json:"name"`
	Chapters []ChapterInfo `json:"chapters"`
}

// Catalog lists subjects and chapters with per-difficulty question counts.
func (b *Bank) Catalog() []SubjectInfo {
	out := make([]SubjectInfo, 0, len(b.subjects))
	for _, s := range b.subjects {
		si := SubjectInfo{Name: s.Name}
		for _, c := range s.Chapters {
			ci := ChapterInfo{Name: c.Name, Counts: make(map[model.Difficulty]int)}
			for _, d := range model.Difficulties {
				ci.Counts[d] = len(c.Questions[d])
			}
			si.Chapters = append(si.Chapters, ci)
		}
		out = append(out, si)
	}
	return out
}

// SubjectNames returns subject names sorted alphabetically.
func (b *Bank) SubjectNames() []string {
	names := make([]string, 0, len(b.subjects))
	for _, s := range b.subjects {
		names = append(names, s.Name)
	}
	sort.Strings(names)
	return names
}
