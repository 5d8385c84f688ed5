package session

import (
	"context"
	"errors"
	"sort"
	"sync"
	"testing"
)

func TestSelection_Toggle(t *testing.T) {
	s := NewSelection()

	s.Toggle("a")
	if !s.IsSelected("a") {
		t.Error("a not selected after toggle")
	}
	s.Toggle("a")
	if s.IsSelected("a") {
		t.Error("a still selected after second toggle")
	}

	s.Toggle("a")
	s.Toggle("b")
	if s.Count() != 2 {
		t.Errorf("Count() = %d, want 2", s.Count())
	}
}

func TestSelection_ToggleMode_ClearsSelection(t *testing.T) {
	s := NewSelection()
	s.ToggleMode()
	if !s.Active() {
		t.Fatal("Active() = false after ToggleMode")
	}
	s.Toggle("a")

	s.ToggleMode()
	if s.Active() {
		t.Error("Active() = true after second ToggleMode")
	}
	if s.Count() != 0 {
		t.Errorf("Count() = %d, want 0", s.Count())
	}
}

func TestSelection_Commit_EmptyIsNoop(t *testing.T) {
	s := NewSelection()
	s.ToggleMode()

	called := false
	err := s.Commit(context.Background(),
		func(ctx context.Context, id string) error { called = true; return nil },
		func(ctx context.Context) error { called = true; return nil },
	)
	if err != nil {
		t.Fatalf("Commit() error = %v", err)
	}
	if called {
		t.Error("Commit() with empty selection made calls")
	}
	if !s.Active() {
		t.Error("select mode exited on no-op commit")
	}
}

func TestSelection_Commit_Success(t *testing.T) {
	s := NewSelection()
	s.ToggleMode()
	s.Toggle("a")
	s.Toggle("b")

	var mu sync.Mutex
	var toggled []string
	reloaded := false

	err := s.Commit(context.Background(),
		func(ctx context.Context, id string) error {
			mu.Lock()
			defer mu.Unlock()
			toggled = append(toggled, id)
			return nil
		},
		func(ctx context.Context) error {
			mu.Lock()
			defer mu.Unlock()
			// All toggles must settle before the reload runs.
			if len(toggled) != 2 {
				t.Errorf("reload ran with %d toggles settled, want 2", len(toggled))
			}
			reloaded = true
			return nil
		},
	)
	if err != nil {
		t.Fatalf("Commit() error = %v", err)
	}
	if !reloaded {
		t.Error("reload not called")
	}
	if s.Active() {
		t.Error("select mode still active after successful commit")
	}
	if s.Count() != 0 {
		t.Errorf("Count() = %d, want 0 after commit", s.Count())
	}
}

func TestSelection_Commit_PartialFailure(t *testing.T) {
	s := NewSelection()
	s.ToggleMode()
	for _, id := range []string{"a", "b", "c"} {
		s.Toggle(id)
	}

	var mu sync.Mutex
	var applied []string
	reloaded := false

	err := s.Commit(context.Background(),
		func(ctx context.Context, id string) error {
			if id == "b" {
				return errors.New("toggle failed")
			}
			mu.Lock()
			defer mu.Unlock()
			applied = append(applied, id)
			return nil
		},
		func(ctx context.Context) error {
			reloaded = true
			return nil
		},
	)

	var bulkErr *BulkError
	if !errors.As(err, &bulkErr) {
		t.Fatalf("Commit() error = %v, want *BulkError", err)
	}
	if got := bulkErr.Failed(); len(got) != 1 || got[0] != "b" {
		t.Errorf("Failed() = %v, want [b]", got)
	}

	// Successful toggles are not rolled back.
	sort.Strings(applied)
	if len(applied) != 2 || applied[0] != "a" || applied[1] != "c" {
		t.Errorf("applied = %v, want [a c]", applied)
	}

	// Reload still runs so the lists reflect the partially-applied state.
	if !reloaded {
		t.Error("reload not called after partial failure")
	}

	// Selection UI stays engaged so the user can retry.
	if !s.Active() {
		t.Error("select mode exited after failure")
	}
	if s.Count() != 3 {
		t.Errorf("Count() = %d, want 3 (selection retained)", s.Count())
	}
}

func TestSelection_Commit_ReloadFailure(t *testing.T) {
	s := NewSelection()
	s.ToggleMode()
	s.Toggle("a")

	err := s.Commit(context.Background(),
		func(ctx context.Context, id string) error { return nil },
		func(ctx context.Context) error { return errors.New("reload failed") },
	)
	if err == nil {
		t.Fatal("Commit() error = nil, want reload error")
	}
	if !s.Active() {
		t.Error("select mode exited despite reload failure")
	}
}
