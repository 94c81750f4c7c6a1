package store

import (
	"context"
	"path/filepath"
	"strings"
	"testing"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := New(":memory:")
	if err != nil {
		t.Fatalf("newTestStore: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestStreakRoundTrip(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	// Nothing saved yet.
	n, err := s.Load(ctx)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if n != 0 {
		t.Fatalf("expected 0 on empty store, got %d", n)
	}

	for _, want := range []int{1, 2, 0, 7} {
		if err := s.Save(ctx, want); err != nil {
			t.Fatalf("Save(%d): %v", want, err)
		}
		got, err := s.Load(ctx)
		if err != nil {
			t.Fatalf("Load: %v", err)
		}
		if got != want {
			t.Errorf("Load() = %d, want %d", got, want)
		}
	}
}

func TestKV(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	v, err := s.Get(ctx, "missing")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if v != "" {
		t.Errorf("expected empty value for missing key, got %q", v)
	}

	if err := s.Set(ctx, "lang", "en"); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if err := s.Set(ctx, "lang", "ru"); err != nil {
		t.Fatalf("Set (update): %v", err)
	}
	v, err = s.Get(ctx, "lang")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if v != "ru" {
		t.Errorf("expected upserted value 'ru', got %q", v)
	}
}

func TestLoadCorruptStreak(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	for _, bad := range []string{"abc", "-3"} {
		if err := s.Set(ctx, StreakKey, bad); err != nil {
			t.Fatal(err)
		}
		if _, err := s.Load(ctx); err == nil {
			t.Errorf("expected error for stored streak %q", bad)
		}
	}
}

func TestStreakPersistsAcrossReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "quizzer.db")
	ctx := context.Background()

	s, err := New(path)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if err := s.Save(ctx, 5); err != nil {
		t.Fatalf("Save: %v", err)
	}
	s.Close()

	s, err = New(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer s.Close()
	n, err := s.Load(ctx)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if n != 5 {
		t.Errorf("Load() after reopen = %d, want 5", n)
	}
}

func TestMemory(t *testing.T) {
	m := NewMemory(3)
	ctx := context.Background()
	if n, _ := m.Load(ctx); n != 3 {
		t.Errorf("Load() = %d, want 3", n)
	}
	m.Save(ctx, 4)
	if n, _ := m.Load(ctx); n != 4 {
		t.Errorf("Load() = %d, want 4", n)
	}
}

func TestOpen(t *testing.T) {
	ctx := context.Background()
	tests := []struct {
		name    string
		cfg     Config
		wantErr string
	}{
		{"sqlite", Config{Backend: BackendSQLite, DBPath: filepath.Join(t.TempDir(), "sub", "q.db")}, ""},
		{"default backend", Config{DBPath: ":memory:"}, ""},
		{"memory", Config{Backend: BackendMemory}, ""},
		{"sqlite without path", Config{Backend: BackendSQLite}, "database path"},
		{"redis without url", Config{Backend: BackendRedis}, "redis URL"},
		{"redis bad url", Config{Backend: BackendRedis, RedisURL: "http://nope"}, "parse redis URL"},
		{"unknown", Config{Backend: "etcd"}, "unknown streak store"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := Open(ctx, tt.cfg)
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("Open: %v", err)
				}
				defer s.Close()
				if err := s.Save(ctx, 2); err != nil {
					t.Fatalf("Save: %v", err)
				}
				if n, _ := s.Load(ctx); n != 2 {
					t.Errorf("Load() = %d, want 2", n)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Fatalf("Open error = %v, want containing %q", err, tt.wantErr)
			}
		})
	}
}
