package snapshot

import (
	"slices"
	"time"

	"github.com/riskibarqy/camp-scoreboard/internal/domain/round"
	"github.com/riskibarqy/camp-scoreboard/internal/domain/scoring"
	"github.com/riskibarqy/camp-scoreboard/internal/domain/standing"
	"github.com/riskibarqy/camp-scoreboard/internal/domain/team"
)

// Build computes the ranking payload for day from every entry on or before
// it. Entries of later days and of unknown teams are ignored. Every team is
// listed, including teams without entries.
func Build(day round.Day, teams []team.Team, entries []scoring.EntryView, now time.Time) Payload {
	type tally struct {
		total   int64
		dayOnly int64
		players map[string]*standing.PlayerPoints
		order   []string
	}

	tallies := make(map[string]*tally, len(teams))
	for _, t := range teams {
		tallies[t.ID] = &tally{players: make(map[string]*standing.PlayerPoints)}
	}

	for _, e := range entries {
		if e.Day.Compare(day) > 0 {
			continue
		}
		acc, ok := tallies[e.TeamID]
		if !ok {
			continue
		}
		acc.total += e.Points
		if e.Day != day {
			continue
		}
		acc.dayOnly += e.Points
		if e.PlayerID == "" {
			continue
		}
		p, ok := acc.players[e.PlayerID]
		if !ok {
			p = &standing.PlayerPoints{PlayerID: e.PlayerID, Name: e.PlayerName}
			acc.players[e.PlayerID] = p
			acc.order = append(acc.order, e.PlayerID)
		}
		p.Points += e.Points
	}

	results := make([]TeamResult, 0, len(teams))
	for _, t := range teams {
		acc := tallies[t.ID]
		players := make([]standing.PlayerPoints, 0, len(acc.order))
		for _, id := range acc.order {
			players = append(players, *acc.players[id])
		}
		results = append(results, TeamResult{
			TeamID:              t.ID,
			Name:                t.Name,
			Color:               t.Color,
			AvatarURL:           t.AvatarURL,
			DayPoints:           acc.dayOnly,
			TotalPointsAfterDay: acc.total,
			TopPlayers:          playerLines(standing.TopPlayers(players, standing.TopPlayersLimit)),
		})
	}

	slices.SortStableFunc(results, func(a, b TeamResult) int {
		return standing.Compare(a.TotalPointsAfterDay, a.Name, a.TeamID, b.TotalPointsAfterDay, b.Name, b.TeamID)
	})

	return Payload{
		Day:          day,
		OrderedTeams: results,
		CreatedAt:    now.UTC(),
	}
}
