package store

import (
	"context"
	"sort"
	"sync"

	"github.com/preston-bernstein/football-elo-service/internal/domain/matches"
)

type entry struct {
	seq   int
	match matches.Match
}

// MemoryStore keeps a thread-safe match ledger in memory.
type MemoryStore struct {
	mu      sync.RWMutex
	matches map[string]entry
	nextSeq int
}

// NewMemoryStore constructs an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		matches: make(map[string]entry),
	}
}

// ListMatches returns a chronological copy of the ledger, keeping insertion order within a day.
func (s *MemoryStore) ListMatches(ctx context.Context) ([]matches.Match, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	entries := make([]entry, 0, len(s.matches))
	for _, e := range s.matches {
		entries = append(entries, e)
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].match.Date != entries[j].match.Date {
			return entries[i].match.Date < entries[j].match.Date
		}
		return entries[i].seq < entries[j].seq
	})

	result := make([]matches.Match, len(entries))
	for i, e := range entries {
		result[i] = copyMatch(e.match)
	}
	return result, nil
}

// GetMatch retrieves a match by key.
func (s *MemoryStore) GetMatch(key string) (matches.Match, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	e, ok := s.matches[key]
	return copyMatch(e.match), ok
}

// UpsertMatches inserts new matches and replaces existing ones by key.
// Replaced matches keep their original position within the day.
func (s *MemoryStore) UpsertMatches(ctx context.Context, ms []matches.Match) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, m := range ms {
		key := m.Key()
		e, ok := s.matches[key]
		if !ok {
			e.seq = s.nextSeq
			s.nextSeq++
		}
		e.match = copyMatch(m)
		s.matches[key] = e
	}
	return nil
}

// Len returns the number of stored matches.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.matches)
}

func copyMatch(m matches.Match) matches.Match {
	if m.HomeRating != nil {
		v := *m.HomeRating
		m.HomeRating = &v
	}
	if m.AwayRating != nil {
		v := *m.AwayRating
		m.AwayRating = &v
	}
	return m
}

var _ matches.Store = (*MemoryStore)(nil)
