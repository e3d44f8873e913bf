package snapshots

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strconv"

	"github.com/preston-bernstein/football-elo-service/internal/bands"
	"github.com/preston-bernstein/football-elo-service/internal/calibration"
	"github.com/preston-bernstein/football-elo-service/internal/domain/matches"
	"github.com/preston-bernstein/football-elo-service/internal/rating"
)

// ErrSnapshotMissing is returned when a snapshot file does not exist yet.
var ErrSnapshotMissing = errors.New("snapshot missing")

// Store defines how persisted state is loaded.
type Store interface {
	LoadRatings() (map[string]int, error)
	LoadHistory() (map[string][]rating.HistoryEntry, error)
	LoadBands(count int) (bands.Table, error)
	LoadCalibration() (calibration.Result, error)
	LoadMatches() ([]matches.Match, error)
}

// FSStore loads snapshots from the filesystem.
type FSStore struct {
	basePath string
}

// NewFSStore constructs an FS-backed snapshot store rooted at basePath.
func NewFSStore(basePath string) *FSStore {
	return &FSStore{basePath: basePath}
}

// LoadRatings reads current_elo.json. Both {team: rating} and {team: {elo, rank}} are accepted.
func (s *FSStore) LoadRatings() (map[string]int, error) {
	var raw map[string]json.RawMessage
	if err := s.decodeFile(FileRatings, &raw); err != nil {
		return nil, err
	}

	out := make(map[string]int, len(raw))
	for team, value := range raw {
		var flat int
		if err := json.Unmarshal(value, &flat); err == nil {
			out[team] = flat
			continue
		}
		var enriched struct {
			Elo *int `json:"elo"`
		}
		if err := json.Unmarshal(value, &enriched); err != nil || enriched.Elo == nil {
			return nil, fmt.Errorf("%s: team %q has no numeric rating", FileRatings, team)
		}
		out[team] = *enriched.Elo
	}
	return out, nil
}

// LoadHistory reads elo_history.json.
func (s *FSStore) LoadHistory() (map[string][]rating.HistoryEntry, error) {
	var history map[string][]rating.HistoryEntry
	if err := s.decodeFile(FileHistory, &history); err != nil {
		return nil, err
	}
	for team, entries := range history {
		for _, e := range entries {
			if e.Date == "" {
				return nil, fmt.Errorf("%s: team %q has an entry without a date", FileHistory, team)
			}
		}
	}
	return history, nil
}

// LoadBands reads elo_bands.json and validates every entry. The file may be an
// object keyed by band number or a list of band objects.
func (s *FSStore) LoadBands(count int) (bands.Table, error) {
	var raw json.RawMessage
	if err := s.decodeFile(FileBands, &raw); err != nil {
		return bands.Table{}, err
	}

	if trimmed := bytes.TrimSpace(raw); len(trimmed) > 0 && trimmed[0] == '[' {
		var list []bandRecord
		if err := json.Unmarshal(trimmed, &list); err != nil {
			return bands.Table{}, fmt.Errorf("decode %s: %w", FileBands, err)
		}
		entries := make([]bands.Band, 0, len(list))
		for _, rec := range list {
			entries = append(entries, rec.band())
		}
		return bands.NewTable(entries, count)
	}

	var file bandsFile
	if err := json.Unmarshal(raw, &file); err != nil {
		return bands.Table{}, fmt.Errorf("decode %s: %w", FileBands, err)
	}
	entries := make([]bands.Band, 0, len(file))
	for key, b := range file {
		n, err := strconv.Atoi(key)
		if err != nil {
			return bands.Table{}, fmt.Errorf("%w: key %q is not a band number", bands.ErrInvalidBand, key)
		}
		if b.Band == 0 {
			b.Band = n
		}
		if b.Band != n {
			return bands.Table{}, fmt.Errorf("%w: key %q holds band %d", bands.ErrInvalidBand, key, b.Band)
		}
		entries = append(entries, b)
	}
	return bands.NewTable(entries, count)
}

// LoadCalibration reads venue_adjustment.json.
func (s *FSStore) LoadCalibration() (calibration.Result, error) {
	var result calibration.Result
	if err := s.decodeFile(FileCalibration, &result); err != nil {
		return calibration.Result{}, err
	}
	return result, nil
}

// LoadMatches reads the match ledger from matches_data.json.
func (s *FSStore) LoadMatches() ([]matches.Match, error) {
	var records []matchRecord
	if err := s.decodeFile(FileMatches, &records); err != nil {
		return nil, err
	}
	out := make([]matches.Match, 0, len(records))
	for i, rec := range records {
		m := rec.Match
		id, err := matchID(rec.ID)
		if err != nil {
			return nil, fmt.Errorf("%s: entry %d: %w", FileMatches, i, err)
		}
		m.ID = id
		if err := m.Validate(); err != nil {
			return nil, fmt.Errorf("%s: entry %d: %w", FileMatches, i, err)
		}
		out = append(out, m)
	}
	matches.SortChronological(out)
	return out, nil
}

func matchID(raw json.RawMessage) (string, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return "", nil
	}
	if raw[0] == '"' {
		var id string
		err := json.Unmarshal(raw, &id)
		return id, err
	}
	var n json.Number
	if err := json.Unmarshal(raw, &n); err != nil {
		return "", fmt.Errorf("match_id %s is neither string nor number", raw)
	}
	return n.String(), nil
}

func (s *FSStore) decodeFile(name string, payload any) error {
	if s == nil {
		return errors.New("snapshot store not configured")
	}
	f, err := os.Open(Path(s.basePath, name))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("%w: %s", ErrSnapshotMissing, name)
		}
		return err
	}
	defer f.Close()

	if err := json.NewDecoder(f).Decode(payload); err != nil {
		return fmt.Errorf("decode %s: %w", name, err)
	}
	return nil
}

var _ Store = (*FSStore)(nil)
