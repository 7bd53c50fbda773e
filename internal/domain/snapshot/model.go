package snapshot

import (
	"time"

	"github.com/riskibarqy/camp-scoreboard/internal/domain/round"
	"github.com/riskibarqy/camp-scoreboard/internal/domain/standing"
)

// DailySnapshot is the immutable ranking of a revealed day. Its existence
// is the day lock.
type DailySnapshot struct {
	ID        string
	Day       round.Day
	Payload   Payload
	LockedBy  string
	CreatedAt time.Time
}

type Payload struct {
	Day          round.Day    `json:"day"`
	OrderedTeams []TeamResult `json:"ordered_teams"`
	CreatedAt    time.Time    `json:"created_at"`
}

type TeamResult struct {
	TeamID              string       `json:"team_id"`
	Name                string       `json:"name"`
	Color               string       `json:"color"`
	AvatarURL           string       `json:"avatar_url"`
	DayPoints           int64        `json:"day_points"`
	TotalPointsAfterDay int64        `json:"total_points_after_day"`
	TopPlayers          []PlayerLine `json:"top_players"`
}

type PlayerLine struct {
	PlayerID string `json:"player_id"`
	Name     string `json:"name"`
	Points   int64  `json:"points"`
}

func playerLines(items []standing.PlayerPoints) []PlayerLine {
	out := make([]PlayerLine, 0, len(items))
	for _, item := range items {
		out = append(out, PlayerLine{PlayerID: item.PlayerID, Name: item.Name, Points: item.Points})
	}
	return out
}
