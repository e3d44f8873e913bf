package rating

import (
	"sort"
)

// HistoryEntry records a team's rating after a match on a given date.
type HistoryEntry struct {
	Date   string `json:"date"`
	Rating int    `json:"elo"`
}

// Store holds current ratings and rating history per team.
// It is owned by a single Engine and carries no locking of its own.
type Store struct {
	defaultRating int
	ratings       map[string]int
	history       map[string][]HistoryEntry
}

// NewStore constructs an empty Store seeding unknown teams at defaultRating.
func NewStore(defaultRating int) *Store {
	if defaultRating <= 0 {
		defaultRating = DefaultRating
	}
	return &Store{
		defaultRating: defaultRating,
		ratings:       make(map[string]int),
		history:       make(map[string][]HistoryEntry),
	}
}

// Seed loads a persisted snapshot and history, replacing existing entries for the same teams.
func (s *Store) Seed(ratings map[string]int, history map[string][]HistoryEntry) {
	for team, r := range ratings {
		s.ratings[team] = r
	}
	for team, entries := range history {
		copied := make([]HistoryEntry, len(entries))
		copy(copied, entries)
		s.history[team] = copied
	}
}

// DefaultRating returns the placeholder rating for unseen teams.
func (s *Store) DefaultRating() int {
	return s.defaultRating
}

// Rating returns the current rating for team, or the default when unknown.
func (s *Store) Rating(team string) int {
	if r, ok := s.ratings[team]; ok {
		return r
	}
	return s.defaultRating
}

// Has reports whether team has a committed rating.
func (s *Store) Has(team string) bool {
	_, ok := s.ratings[team]
	return ok
}

// Len returns the number of rated teams.
func (s *Store) Len() int {
	return len(s.ratings)
}

func (s *Store) set(team string, rating int) {
	s.ratings[team] = rating
}

func (s *Store) appendHistory(team string, entry HistoryEntry) {
	s.history[team] = append(s.history[team], entry)
}

// Ratings returns a copy of the current ratings.
func (s *Store) Ratings() map[string]int {
	out := make(map[string]int, len(s.ratings))
	for team, r := range s.ratings {
		out[team] = r
	}
	return out
}

// History returns a date-sorted copy of a team's history.
func (s *Store) History(team string) []HistoryEntry {
	return sortedHistory(s.history[team])
}

// AllHistory returns date-sorted copies of every team's history.
func (s *Store) AllHistory() map[string][]HistoryEntry {
	out := make(map[string][]HistoryEntry, len(s.history))
	for team, entries := range s.history {
		out[team] = sortedHistory(entries)
	}
	return out
}

// LastDate returns the most recent history date for team.
func (s *Store) LastDate(team string) (string, bool) {
	entries := s.history[team]
	if len(entries) == 0 {
		return "", false
	}
	last := entries[0].Date
	for _, e := range entries[1:] {
		if e.Date > last {
			last = e.Date
		}
	}
	return last, true
}

// LatestDate returns the most recent history date across all teams.
func (s *Store) LatestDate() string {
	var latest string
	for team := range s.history {
		if d, ok := s.LastDate(team); ok && d > latest {
			latest = d
		}
	}
	return latest
}

// Teams returns every team with a rating or history, sorted by name.
func (s *Store) Teams() []string {
	seen := make(map[string]struct{}, len(s.ratings))
	for team := range s.ratings {
		seen[team] = struct{}{}
	}
	for team := range s.history {
		seen[team] = struct{}{}
	}
	teams := make([]string, 0, len(seen))
	for team := range seen {
		teams = append(teams, team)
	}
	sort.Strings(teams)
	return teams
}

func sortedHistory(entries []HistoryEntry) []HistoryEntry {
	out := make([]HistoryEntry, len(entries))
	copy(out, entries)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Date < out[j].Date
	})
	return out
}
