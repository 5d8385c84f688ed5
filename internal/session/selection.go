package session

import (
	"context"
	"sync"
)

// Selection is the bulk archive/restore workflow: a mode toggle switches the
// list from browse (click loads) to select (click toggles membership), and
// Commit applies one remote toggle per selected id in parallel.
type Selection struct {
	mu       sync.Mutex
	active   bool
	selected map[string]struct{}
}

func NewSelection() *Selection {
	return &Selection{selected: make(map[string]struct{})}
}

func (s *Selection) Active() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.active
}

// ToggleMode flips between browse and select mode, clearing the selection.
func (s *Selection) ToggleMode() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.active = !s.active
	s.selected = make(map[string]struct{})
}

// Toggle adds or removes an id; repeated toggles alternate membership.
func (s *Selection) Toggle(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.selected[id]; ok {
		delete(s.selected, id)
	} else {
		s.selected[id] = struct{}{}
	}
}

func (s *Selection) IsSelected(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.selected[id]
	return ok
}

func (s *Selection) Selected() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	ids := make([]string, 0, len(s.selected))
	for id := range s.selected {
		ids = append(ids, id)
	}
	return ids
}

func (s *Selection) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.selected)
}

// Commit issues toggle once per selected id, all in parallel, and waits for
// every call to settle before running reload. An empty selection is a no-op.
// On full success the selection is cleared and select mode exits; any
// failure returns a BulkError and leaves the selection engaged so the user
// can retry. Already-applied toggles are not rolled back, and the reload
// reflects whatever partially-applied state the backend now holds.
func (s *Selection) Commit(ctx context.Context, toggle func(ctx context.Context, id string) error, reload func(ctx context.Context) error) error {
	ids := s.Selected()
	if len(ids) == 0 {
		return nil
	}

	outcomes := make([]Outcome, len(ids))
	var wg sync.WaitGroup
	for i, id := range ids {
		wg.Add(1)
		go func(i int, id string) {
			defer wg.Done()
			outcomes[i] = Outcome{ID: id, Err: toggle(ctx, id)}
		}(i, id)
	}
	wg.Wait()

	// Reload runs after all calls settle regardless of outcome, so the
	// lists reflect whatever actually applied.
	reloadErr := reload(ctx)

	anyFailed := false
	for _, o := range outcomes {
		if o.Err != nil {
			anyFailed = true
			break
		}
	}

	if anyFailed {
		return &BulkError{Outcomes: outcomes}
	}
	if reloadErr != nil {
		return reloadErr
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.active = false
	s.selected = make(map[string]struct{})
	return nil
}
