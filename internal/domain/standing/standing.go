// Package standing holds the ordering rules shared by the live leaderboard,
// per-game standings and day snapshots.
package standing

import (
	"cmp"
	"slices"
	"strings"
)

// TopPlayersLimit is how many players are listed under each team.
const TopPlayersLimit = 3

type PlayerPoints struct {
	PlayerID string
	Name     string
	Points   int64
}

// Row is one ranked team line.
type Row struct {
	TeamID     string
	Name       string
	Color      string
	AvatarURL  string
	Points     int64
	Rank       int
	TopPlayers []PlayerPoints
}

// Compare orders by points descending, then name ascending, then id
// ascending, so equal totals always rank the same way.
func Compare(aPoints int64, aName, aID string, bPoints int64, bName, bID string) int {
	if c := cmp.Compare(bPoints, aPoints); c != 0 {
		return c
	}
	if c := strings.Compare(aName, bName); c != 0 {
		return c
	}
	return strings.Compare(aID, bID)
}

// Rank sorts rows in place and assigns 1-based ranks by position.
func Rank(rows []Row) []Row {
	slices.SortStableFunc(rows, func(a, b Row) int {
		return Compare(a.Points, a.Name, a.TeamID, b.Points, b.Name, b.TeamID)
	})
	for i := range rows {
		rows[i].Rank = i + 1
	}
	return rows
}

// TopPlayers returns at most limit players with non-zero points, best first.
func TopPlayers(items []PlayerPoints, limit int) []PlayerPoints {
	out := make([]PlayerPoints, 0, len(items))
	for _, item := range items {
		if item.Points == 0 {
			continue
		}
		out = append(out, item)
	}
	slices.SortStableFunc(out, func(a, b PlayerPoints) int {
		return Compare(a.Points, a.Name, a.PlayerID, b.Points, b.Name, b.PlayerID)
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}
