package feed

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/preston-bernstein/football-elo-service/internal/domain/matches"
	"github.com/preston-bernstein/football-elo-service/internal/logging"
	"github.com/preston-bernstein/football-elo-service/internal/timeutil"
)

// ErrMissingColumn is returned when a required header is absent.
var ErrMissingColumn = errors.New("missing required column")

var dateLayouts = []string{
	timeutil.DateLayout,
	"02/01/2006",
	"02/01/06",
	time.RFC3339,
	"2006-01-02 15:04:05",
}

const (
	colDate      = "date"
	colHomeTeam  = "home_team"
	colAwayTeam  = "away_team"
	colHomeGoals = "home_goals"
	colAwayGoals = "away_goals"
	colID        = "id"
	colMatchID   = "match_id"
	colHomeElo   = "home_elo"
	colAwayElo   = "away_elo"
)

var requiredColumns = []string{colDate, colHomeTeam, colAwayTeam, colHomeGoals, colAwayGoals}

// RowError describes a skipped row.
type RowError struct {
	Line int
	Err  error
}

func (e RowError) Error() string {
	return fmt.Sprintf("line %d: %v", e.Line, e.Err)
}

// Result holds the imported matches and the rows that were skipped.
type Result struct {
	Matches []matches.Match
	Skipped []RowError
}

// Importer reads historical results from CSV exports.
type Importer struct {
	normalizer *Normalizer
	logger     *slog.Logger
}

// NewImporter constructs an importer. A nil normalizer uses DefaultAliases.
func NewImporter(normalizer *Normalizer, logger *slog.Logger) *Importer {
	if normalizer == nil {
		normalizer = NewNormalizer(nil)
	}
	return &Importer{normalizer: normalizer, logger: logger}
}

// ReadFile imports the CSV file at path.
func (im *Importer) ReadFile(path string) (Result, error) {
	f, err := os.Open(path)
	if err != nil {
		return Result{}, err
	}
	defer f.Close()

	res, err := im.Read(f)
	if err != nil {
		return res, fmt.Errorf("%s: %w", path, err)
	}
	logging.Info(im.logger, "imported matches from csv",
		logging.FieldFile, path,
		logging.FieldCount, len(res.Matches),
		logging.FieldSkipped, len(res.Skipped),
	)
	return res, nil
}

// Read imports matches from r. Rows that fail validation are skipped and reported;
// unplayed fixtures (empty goals) are skipped too.
func (im *Importer) Read(r io.Reader) (Result, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return Result{}, fmt.Errorf("%w: empty file", ErrMissingColumn)
		}
		return Result{}, err
	}
	cols := indexColumns(header)
	for _, c := range requiredColumns {
		if _, ok := cols[c]; !ok {
			return Result{}, fmt.Errorf("%w: %s", ErrMissingColumn, c)
		}
	}

	var res Result
	line := 1
	for {
		record, err := reader.Read()
		line++
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			res.Skipped = append(res.Skipped, RowError{Line: line, Err: err})
			continue
		}
		m, err := im.parseRow(cols, record)
		if err != nil {
			res.Skipped = append(res.Skipped, RowError{Line: line, Err: err})
			logging.Warn(im.logger, "skipping csv row", "line", line, "error", err)
			continue
		}
		res.Matches = append(res.Matches, m)
	}
	return res, nil
}

func (im *Importer) parseRow(cols map[string]int, record []string) (matches.Match, error) {
	get := func(name string) string {
		idx, ok := cols[name]
		if !ok || idx >= len(record) {
			return ""
		}
		return strings.TrimSpace(record[idx])
	}

	date, err := ParseDate(get(colDate))
	if err != nil {
		return matches.Match{}, err
	}
	homeGoals, err := parseGoals(get(colHomeGoals))
	if err != nil {
		return matches.Match{}, err
	}
	awayGoals, err := parseGoals(get(colAwayGoals))
	if err != nil {
		return matches.Match{}, err
	}

	m := matches.Match{
		ID:        firstNonEmpty(get(colID), get(colMatchID)),
		Date:      date,
		HomeTeam:  im.normalizer.Normalize(get(colHomeTeam)),
		AwayTeam:  im.normalizer.Normalize(get(colAwayTeam)),
		HomeGoals: homeGoals,
		AwayGoals: awayGoals,
	}
	if home, ok := parseRating(get(colHomeElo)); ok {
		if away, ok := parseRating(get(colAwayElo)); ok {
			m = m.WithRatings(home, away)
		}
	}
	if err := m.Validate(); err != nil {
		return matches.Match{}, err
	}
	return m, nil
}

// ParseDate accepts ISO, DD/MM/YYYY and DD/MM/YY dates and returns YYYY-MM-DD.
func ParseDate(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return timeutil.FormatDate(t), nil
		}
	}
	return "", fmt.Errorf("%w: unrecognised date %q", matches.ErrInvalidMatch, raw)
}

func parseGoals(raw string) (int, error) {
	if raw == "" {
		return 0, fmt.Errorf("%w: fixture not played", matches.ErrInvalidMatch)
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil || f != math.Trunc(f) {
		return 0, fmt.Errorf("%w: goals %q", matches.ErrInvalidMatch, raw)
	}
	return int(f), nil
}

func parseRating(raw string) (int, bool) {
	if raw == "" {
		return 0, false
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) || f <= 0 {
		return 0, false
	}
	return int(math.Round(f)), true
}

func indexColumns(header []string) map[string]int {
	cols := make(map[string]int, len(header))
	for i, h := range header {
		key := strings.ToLower(strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")))
		if _, dup := cols[key]; !dup {
			cols[key] = i
		}
	}
	return cols
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
