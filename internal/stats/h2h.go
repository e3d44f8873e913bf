package stats

import (
	"fmt"

	"github.com/preston-bernstein/football-elo-service/internal/domain/matches"
)

// HeadToHead is the record between two teams. TeamA sorts before TeamB.
type HeadToHead struct {
	TeamA      string `json:"team_a"`
	TeamB      string `json:"team_b"`
	TotalGames int    `json:"total_games"`
	TeamAWins  int    `json:"team_a_wins"`
	TeamBWins  int    `json:"team_b_wins"`
	Draws      int    `json:"draws"`
	LastResult string `json:"last_result,omitempty"`
	LastDate   string `json:"last_date,omitempty"`
}

// Between tallies every meeting of the two teams in ms, regardless of venue.
func Between(ms []matches.Match, teamA, teamB string) HeadToHead {
	if teamB < teamA {
		teamA, teamB = teamB, teamA
	}
	h := HeadToHead{TeamA: teamA, TeamB: teamB}

	var last *matches.Match
	for i := range ms {
		m := ms[i]
		if !(m.HomeTeam == teamA && m.AwayTeam == teamB) && !(m.HomeTeam == teamB && m.AwayTeam == teamA) {
			continue
		}
		h.TotalGames++
		switch winner := winnerOf(m); winner {
		case "":
			h.Draws++
		case teamA:
			h.TeamAWins++
		default:
			h.TeamBWins++
		}
		if last == nil || m.Date >= last.Date {
			last = &ms[i]
		}
	}

	if last != nil {
		h.LastDate = last.Date
		h.LastResult = fmt.Sprintf("%s %d-%d %s", last.HomeTeam, last.HomeGoals, last.AwayGoals, last.AwayTeam)
	}
	return h
}

func winnerOf(m matches.Match) string {
	switch {
	case m.HomeGoals > m.AwayGoals:
		return m.HomeTeam
	case m.AwayGoals > m.HomeGoals:
		return m.AwayTeam
	default:
		return ""
	}
}
