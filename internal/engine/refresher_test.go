package engine

import (
	"context"
	"errors"
	"sync"
	"testing"

	"plat-tracker/internal/wfm"
)

// concurrentSource tracks peak in-flight fetches to verify the pool bound.
type concurrentSource struct {
	mu       sync.Mutex
	inFlight int
	peak     int
	fail     map[string]bool
}

func (s *concurrentSource) Orders(slug string) ([]wfm.Order, error) {
	s.mu.Lock()
	s.inFlight++
	if s.inFlight > s.peak {
		s.peak = s.inFlight
	}
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		s.inFlight--
		s.mu.Unlock()
	}()

	if s.fail[slug] {
		return nil, errors.New("boom")
	}
	return arcaneBook(10, 150), nil
}

func TestRefresher_RefreshAll(t *testing.T) {
	source := &concurrentSource{}
	store := newMemStore()
	r := &Refresher{
		Resolver: &Resolver{Source: source, Store: store},
		Workers:  2,
	}

	slugs := []string{"a", "b", "c", "d", "e"}
	records := r.RefreshAll(context.Background(), slugs)

	if len(records) != len(slugs) {
		t.Fatalf("RefreshAll returned %d records, want %d", len(records), len(slugs))
	}
	if source.peak > 2 {
		t.Fatalf("peak concurrency = %d, want <= 2", source.peak)
	}
	for _, slug := range slugs {
		if _, ok := store.GetPrice(slug); !ok {
			t.Errorf("no record written for %s", slug)
		}
	}
}

func TestRefresher_SkipsFailedSlugs(t *testing.T) {
	source := &concurrentSource{fail: map[string]bool{"b": true}}
	r := &Refresher{
		Resolver: &Resolver{Source: source, Store: newMemStore()},
	}

	records := r.RefreshAll(context.Background(), []string{"a", "b", "c"})
	if len(records) != 2 {
		t.Fatalf("RefreshAll returned %d records, want 2 (one failure skipped)", len(records))
	}
}

func TestRefresher_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	r := &Refresher{
		Resolver: &Resolver{Source: &concurrentSource{}, Store: newMemStore()},
	}
	records := r.RefreshAll(ctx, []string{"a", "b"})
	if len(records) != 0 {
		t.Fatalf("RefreshAll on cancelled context returned %d records, want 0", len(records))
	}
}
