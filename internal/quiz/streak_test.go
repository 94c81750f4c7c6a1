package quiz

import (
	"context"
	"errors"
	"sync"
	"testing"
)

type fakeStreakStore struct {
	mu      sync.Mutex
	value   int
	saves   []int
	loadErr error
	saveErr error
}

func (f *fakeStreakStore) Load(context.Context) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.value, f.loadErr
}

func (f *fakeStreakStore) Save(_ context.Context, n int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.saves = append(f.saves, n)
	if f.saveErr != nil {
		return f.saveErr
	}
	f.value = n
	return nil
}

func (f *fakeStreakStore) saved() []int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]int(nil), f.saves...)
}

func newTestStreak(t *testing.T, store *fakeStreakStore) *Streak {
	t.Helper()
	s, err := NewStreak(context.Background(), store)
	if err != nil {
		t.Fatalf("NewStreak: %v", err)
	}
	return s
}

func TestStreakLoadsPersistedValue(t *testing.T) {
	s := newTestStreak(t, &fakeStreakStore{value: 3})
	if s.Value() != 3 {
		t.Errorf("Value() = %d, want 3", s.Value())
	}
}

func TestStreakLoadError(t *testing.T) {
	_, err := NewStreak(context.Background(), &fakeStreakStore{loadErr: errors.New("disk gone")})
	if err == nil {
		t.Fatal("expected load error")
	}
}

func TestStreakRecord(t *testing.T) {
	store := &fakeStreakStore{value: 1}
	s := newTestStreak(t, store)
	ctx := context.Background()

	if got := s.Record(ctx, true); got != 2 {
		t.Errorf("after correct: %d, want 2", got)
	}
	if got := s.Record(ctx, true); got != 3 {
		t.Errorf("after correct: %d, want 3", got)
	}
	if got := s.Record(ctx, false); got != 0 {
		t.Errorf("after incorrect: %d, want 0", got)
	}
	// Already zero: nothing changes, nothing written.
	s.Record(ctx, false)

	want := []int{2, 3, 0}
	got := store.saved()
	if len(got) != len(want) {
		t.Fatalf("saves = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("saves = %v, want %v", got, want)
		}
	}
}

func TestStreakSaveErrorKeepsValue(t *testing.T) {
	store := &fakeStreakStore{saveErr: errors.New("read-only")}
	s := newTestStreak(t, store)
	if got := s.Record(context.Background(), true); got != 1 {
		t.Errorf("Record() = %d, want 1 despite save failure", got)
	}
	if s.Value() != 1 {
		t.Errorf("Value() = %d, want 1", s.Value())
	}
}

func TestStreakSavesWithCancelledContext(t *testing.T) {
	store := &fakeStreakStore{}
	s := newTestStreak(t, store)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	s.Record(ctx, true)
	if len(store.saved()) != 1 {
		t.Error("expected the streak to be saved even after the request was cancelled")
	}
}
