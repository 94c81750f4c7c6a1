package quiz

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
)

// StreakStore persists the streak counter between runs.
type StreakStore interface {
	Load(ctx context.Context) (int, error)
	Save(ctx context.Context, n int) error
}

// Streak counts consecutive correct answers across sessions. It is loaded
// once from its store and written back on every change.
type Streak struct {
	mu    sync.Mutex
	store StreakStore
	value int
}

// NewStreak loads the persisted streak.
func NewStreak(ctx context.Context, store StreakStore) (*Streak, error) {
	n, err := store.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("load streak: %w", err)
	}
	if n < 0 {
		n = 0
	}
	return &Streak{store: store, value: n}, nil
}

// Value returns the current streak.
func (s *Streak) Value() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.value
}

// Record increments the streak for a correct answer and resets it otherwise.
// It returns the new value. A failed save is logged and the in-memory value kept.
func (s *Streak) Record(ctx context.Context, correct bool) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	prev := s.value
	if correct {
		s.value++
	} else {
		s.value = 0
	}
	if s.value != prev {
		// The answer is already recorded; a cancelled request must not lose the write.
		if err := s.store.Save(context.WithoutCancel(ctx), s.value); err != nil {
			slog.Error("failed to save streak", "streak", s.value, "error", err)
		}
	}
	return s.value
}
