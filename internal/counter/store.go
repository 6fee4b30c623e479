// Package counter implements the click counter service: persistent stores
// behind the /api endpoints, a client for those endpoints, and the display
// formatting shared by both sides.
package counter

import (
	"context"
	"errors"
	"sort"
	"sync"

	"awesomearcade/internal/db"
)

// ErrUnknownRepo is returned when a repo is not part of the catalog.
var ErrUnknownRepo = errors.New("unknown repo")

// Store persists click counts.
type Store interface {
	// Increment adds one click to repo and returns the new total.
	Increment(ctx context.Context, repo string) (int64, error)
	// All returns every known counter.
	All(ctx context.Context) (map[string]int64, error)
	// Ensure creates zero counters for repos that have none.
	Ensure(ctx context.Context, repos []string) error
}

// PostgresStore keeps counters in the click_counts table.
type PostgresStore struct {
	db *db.DB
}

// NewPostgresStore creates a store backed by database.
func NewPostgresStore(database *db.DB) *PostgresStore {
	return &PostgresStore{db: database}
}

// Increment implements Store.
func (s *PostgresStore) Increment(ctx context.Context, repo string) (int64, error) {
	return s.db.IncrementClickCount(ctx, repo)
}

// All implements Store.
func (s *PostgresStore) All(ctx context.Context) (map[string]int64, error) {
	rows, err := s.db.GetAllClickCounts(ctx)
	if err != nil {
		return nil, err
	}
	out := make(map[string]int64, len(rows))
	for _, r := range rows {
		out[r.Repo] = r.Count
	}
	return out, nil
}

// Ensure implements Store.
func (s *PostgresStore) Ensure(ctx context.Context, repos []string) error {
	return s.db.EnsureClickCounts(ctx, repos)
}

// MemoryStore keeps counters in process memory. Counts are lost on restart;
// it is meant for development and tests.
type MemoryStore struct {
	mu     sync.Mutex
	counts map[string]int64
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{counts: make(map[string]int64)}
}

// Increment implements Store.
func (s *MemoryStore) Increment(_ context.Context, repo string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.counts[repo]++
	return s.counts[repo], nil
}

// All implements Store.
func (s *MemoryStore) All(_ context.Context) (map[string]int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[string]int64, len(s.counts))
	for k, v := range s.counts {
		out[k] = v
	}
	return out, nil
}

// Ensure implements Store.
func (s *MemoryStore) Ensure(_ context.Context, repos []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, r := range repos {
		if _, ok := s.counts[r]; !ok {
			s.counts[r] = 0
		}
	}
	return nil
}

// SortedRepos returns the keys of counts in lexical order.
func SortedRepos(counts map[string]int64) []string {
	repos := make([]string, 0, len(counts))
	for r := range counts {
		repos = append(repos, r)
	}
	sort.Strings(repos)
	return repos
}
