package feed

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/preston-bernstein/football-elo-service/internal/domain/matches"
)

func TestNormalize(t *testing.T) {
	n := NewNormalizer(nil)
	cases := map[string]string{
		"Manchester United":            "Man Utd",
		"manchester united":            "Man Utd",
		"Tottenham Hotspur":            "Spurs",
		"Tottenham Hotspur FC":         "Spurs",
		"Nottingham Forest":            "Nott'm Forest",
		"Brighton & Hove Albion":       "Brighton",
		"  Wolverhampton   Wanderers ": "Wolves",
		"Arsenal":                      "Arsenal",
		"Man Utd":                      "Man Utd",
		"":                             "",
	}
	for in, want := range cases {
		assert.Equal(t, want, n.Normalize(in), "input %q", in)
	}
}

func TestNormalizeCustomAliases(t *testing.T) {
	n := NewNormalizer([]Alias{{From: "Inter", To: "Internazionale"}})
	assert.Equal(t, "Internazionale", n.Normalize("Inter Milan"))
	assert.Equal(t, "Man City", NewNormalizer(nil).Normalize("Manchester City"))
	assert.Equal(t, "Manchester City", n.Normalize("Manchester City"))
}

func TestParseDate(t *testing.T) {
	cases := map[string]string{
		"2024-08-17":           "2024-08-17",
		"17/08/2024":           "2024-08-17",
		"17/08/24":             "2024-08-17",
		"2024-08-17T15:00:00Z": "2024-08-17",
		"2024-08-17 15:00:00":  "2024-08-17",
	}
	for in, want := range cases {
		got, err := ParseDate(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got)
	}

	_, err := ParseDate("Sat 17 Aug")
	assert.ErrorIs(t, err, matches.ErrInvalidMatch)
}

func TestReadImportsAndSkips(t *testing.T) {
	data := strings.Join([]string{
		"ID,Date,Home_Team,Away_Team,Home_Goals,Away_Goals,Home_Elo,Away_Elo",
		"1,17/08/2024,Manchester United,Fulham,1,0,1780.4,1650",
		"2,17/08/2024,Ipswich Town,Liverpool,0,2,,",
		"3,18/08/2024,Chelsea,Manchester City,,,",
		"4,18/08/2024,Arsenal,Arsenal,1,1,,",
		"5,not-a-date,Everton,Brighton,0,3,,",
		"6,19/08/2024,Wolves,Leeds United,2.0,-1,,",
	}, "\n")

	res, err := NewImporter(nil, nil).Read(strings.NewReader(data))
	require.NoError(t, err)

	require.Len(t, res.Matches, 2)
	first := res.Matches[0]
	assert.Equal(t, "1", first.ID)
	assert.Equal(t, "2024-08-17", first.Date)
	assert.Equal(t, "Man Utd", first.HomeTeam)
	require.True(t, first.Rated())
	assert.Equal(t, 1780, *first.HomeRating)
	assert.Equal(t, 1650, *first.AwayRating)

	second := res.Matches[1]
	assert.Equal(t, "Ipswich", second.HomeTeam)
	assert.False(t, second.Rated())

	require.Len(t, res.Skipped, 4)
	assert.Equal(t, 4, res.Skipped[0].Line)
	for _, s := range res.Skipped {
		assert.True(t, errors.Is(s.Err, matches.ErrInvalidMatch), "line %d: %v", s.Line, s.Err)
	}
}

func TestReadRequiresColumns(t *testing.T) {
	_, err := NewImporter(nil, nil).Read(strings.NewReader("Date,Home_Team,Away_Team,Home_Goals\n"))
	assert.ErrorIs(t, err, ErrMissingColumn)

	_, err = NewImporter(nil, nil).Read(strings.NewReader(""))
	assert.ErrorIs(t, err, ErrMissingColumn)
}

func TestReadHeaderIsCaseInsensitive(t *testing.T) {
	data := "\ufeffdate,home_team,away_team,home_goals,away_goals,match_id\n2024-08-17,Arsenal,Wolves,2,0,abc\n"
	res, err := NewImporter(nil, nil).Read(strings.NewReader(data))
	require.NoError(t, err)
	require.Len(t, res.Matches, 1)
	assert.Equal(t, "abc", res.Matches[0].ID)
}

func TestReadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "matches.csv")
	require.NoError(t, os.WriteFile(path, []byte("Date,Home_Team,Away_Team,Home_Goals,Away_Goals\n2024-08-17,Arsenal,Wolves,2,0\n"), 0o644))

	res, err := NewImporter(nil, nil).ReadFile(path)
	require.NoError(t, err)
	assert.Len(t, res.Matches, 1)

	_, err = NewImporter(nil, nil).ReadFile(filepath.Join(t.TempDir(), "missing.csv"))
	assert.Error(t, err)
}

func TestFileSourceMatches(t *testing.T) {
	path := filepath.Join(t.TempDir(), "matches.csv")
	require.NoError(t, os.WriteFile(path, []byte("date,home_team,away_team,home_goals,away_goals\n2024-08-17,Manchester United,Fulham,1,0\n2024-08-24,Fulham,Leicester,,\n"), 0o644))

	src := NewFileSource(path, nil)
	assert.Equal(t, path, src.Path())
	ms, err := src.Matches(context.Background())
	require.NoError(t, err)
	require.Len(t, ms, 1)
	assert.Equal(t, "Man Utd", ms[0].HomeTeam)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = src.Matches(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}
