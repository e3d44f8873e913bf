package snapshots

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"time"

	"github.com/preston-bernstein/football-elo-service/internal/bands"
	"github.com/preston-bernstein/football-elo-service/internal/timeutil"
)

const defaultRetentionDays = 30

// WriteResult reports which files changed on disk.
type WriteResult struct {
	Written   []string
	Unchanged []string
}

// Writer persists snapshot files, the dated rankings archive and the manifest.
type Writer struct {
	basePath      string
	retentionDays int
	now           func() time.Time
}

// NewWriter constructs a writer rooted at basePath; rankings archives older than
// retentionDays are pruned.
func NewWriter(basePath string, retentionDays int) *Writer {
	if retentionDays <= 0 {
		retentionDays = defaultRetentionDays
	}
	return &Writer{
		basePath:      basePath,
		retentionDays: retentionDays,
		now:           func() time.Time { return time.Now().UTC() },
	}
}

// WithClock overrides the writer clock.
func (w *Writer) WithClock(now func() time.Time) *Writer {
	if w != nil && now != nil {
		w.now = now
	}
	return w
}

// BasePath exposes the writer root path.
func (w *Writer) BasePath() string {
	if w == nil {
		return ""
	}
	return w.basePath
}

// WriteBundle writes every populated part of b. Files whose content is unchanged are not rewritten.
func (w *Writer) WriteBundle(b Bundle) (WriteResult, error) {
	if w == nil {
		return WriteResult{}, fmt.Errorf("snapshot writer not configured")
	}
	if err := os.MkdirAll(w.basePath, 0o755); err != nil {
		return WriteResult{}, err
	}

	now := w.now()
	m, _ := readManifest(Path(w.basePath, FileManifest), w.retentionDays)
	var res WriteResult

	ratings := RatingsFile(b.Rankings)
	files := []struct {
		name    string
		payload any
		entries int
		skip    bool
	}{
		{FileRatings, ratings, len(ratings), false},
		{FileHistory, b.History, len(b.History), b.History == nil},
		{FileBands, toBandsFile(b.Bands), len(b.Bands), len(b.Bands) == 0},
		{FileCalibration, b.Calibration, 1, b.Calibration == nil},
		{FileMatches, b.Matches, len(b.Matches), b.Matches == nil},
	}
	for _, f := range files {
		if f.skip {
			continue
		}
		changed, err := w.writeJSON(Path(w.basePath, f.name), f.payload)
		if err != nil {
			return res, fmt.Errorf("write %s: %w", f.name, err)
		}
		meta := m.Files[f.name]
		meta.Entries = f.entries
		meta.LastChecked = now
		if changed || meta.LastWritten.IsZero() {
			meta.LastWritten = now
		}
		if changed {
			res.Written = append(res.Written, f.name)
		} else {
			res.Unchanged = append(res.Unchanged, f.name)
		}
		m.Files[f.name] = meta
	}

	date := timeutil.FormatDate(now)
	if _, err := w.writeJSON(RankingsArchivePath(w.basePath, date), ratings); err != nil {
		return res, fmt.Errorf("write rankings archive: %w", err)
	}
	dates, err := w.listArchiveDates()
	if err != nil {
		return res, err
	}
	m.Rankings.Dates = w.pruneArchive(dates, now)
	m.Retention.RankingsDays = w.retentionDays

	if err := writeManifest(w.basePath, m, now); err != nil {
		return res, fmt.Errorf("write manifest: %w", err)
	}
	return res, nil
}

func toBandsFile(entries []bands.Band) bandsFile {
	out := make(bandsFile, len(entries))
	for _, b := range entries {
		out[strconv.Itoa(b.Band)] = b
	}
	return out
}

func (w *Writer) writeJSON(target string, payload any) (bool, error) {
	data, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		return false, err
	}
	return writeAtomic(target, data)
}

// writeAtomic writes data via tmp+rename and reports whether the file changed.
func writeAtomic(target string, data []byte) (bool, error) {
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return false, err
	}
	if existing, err := os.ReadFile(target); err == nil && bytes.Equal(existing, data) {
		return false, nil
	}

	tmp := target + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return false, err
	}
	if err := os.Rename(tmp, target); err != nil {
		return false, err
	}
	return true, nil
}

func (w *Writer) listArchiveDates() ([]string, error) {
	dir := filepath.Join(w.basePath, rankingsDir)
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return []string{}, nil
		}
		return nil, err
	}
	var dates []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		name := e.Name()
		if filepath.Ext(name) != ".json" {
			continue
		}
		dates = append(dates, name[:len(name)-len(".json")])
	}
	sort.Strings(dates)
	return dates, nil
}

func (w *Writer) pruneArchive(dates []string, now time.Time) []string {
	cutoff := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC).AddDate(0, 0, -w.retentionDays)
	keep := []string{}
	for _, d := range dates {
		parsed, err := timeutil.ParseDate(d)
		if err != nil {
			keep = append(keep, d)
			continue
		}
		if parsed.Before(cutoff) {
			_ = os.Remove(RankingsArchivePath(w.basePath, d))
			continue
		}
		keep = append(keep, d)
	}
	return keep
}
