package memory

import (
	"github.com/riskibarqy/camp-scoreboard/internal/domain/aggregate"
	"github.com/riskibarqy/camp-scoreboard/internal/domain/game"
	"github.com/riskibarqy/camp-scoreboard/internal/domain/player"
	"github.com/riskibarqy/camp-scoreboard/internal/domain/team"
)

// Seed is the reference data a Store starts with. Every team gets a zero
// aggregate unless SkipAggregates lists it.
type Seed struct {
	Teams          []team.Team
	Players        []player.Player
	Games          []game.Game
	SkipAggregates []string
}

func (s Seed) apply(d *dataset) {
	skip := make(map[string]struct{}, len(s.SkipAggregates))
	for _, teamID := range s.SkipAggregates {
		skip[teamID] = struct{}{}
	}
	for _, item := range s.Teams {
		d.teams[item.ID] = item
		if _, ok := skip[item.ID]; ok {
			continue
		}
		d.aggregates[item.ID] = aggregate.TeamAggregate{TeamID: item.ID}
	}
	for _, item := range s.Players {
		d.players[item.ID] = item
	}
	for _, item := range s.Games {
		d.games[item.ID] = item
	}
}

const (
	TeamIDBlue   = "team-blue"
	TeamIDRed    = "team-red"
	TeamIDGreen  = "team-green"
	TeamIDYellow = "team-yellow"
)

// DefaultSeed is the demo camp used when no database is configured.
func DefaultSeed() Seed {
	return Seed{
		Teams: []team.Team{
			{ID: TeamIDBlue, Name: "Blue", Color: "#2563eb"},
			{ID: TeamIDGreen, Name: "Green", Color: "#16a34a"},
			{ID: TeamIDRed, Name: "Red", Color: "#dc2626"},
			{ID: TeamIDYellow, Name: "Yellow", Color: "#ca8a04"},
		},
		Players: []player.Player{
			{ID: "player-bima", TeamID: TeamIDBlue, Name: "Bima"},
			{ID: "player-bunga", TeamID: TeamIDBlue, Name: "Bunga"},
			{ID: "player-bayu", TeamID: TeamIDBlue, Name: "Bayu"},
			{ID: "player-raka", TeamID: TeamIDRed, Name: "Raka"},
			{ID: "player-rina", TeamID: TeamIDRed, Name: "Rina"},
			{ID: "player-gilang", TeamID: TeamIDGreen, Name: "Gilang"},
			{ID: "player-gita", TeamID: TeamIDGreen, Name: "Gita"},
			{ID: "player-yoga", TeamID: TeamIDYellow, Name: "Yoga"},
			{ID: "player-yuni", TeamID: TeamIDYellow, Name: "Yuni"},
		},
		Games: []game.Game{
			{ID: "game-tug-of-war", Slug: "tug-of-war", Title: "Tug of War"},
			{ID: "game-relay", Slug: "relay", Title: "Relay Race"},
			{ID: "game-quiz", Slug: "quiz", Title: "Campfire Quiz"},
		},
	}
}
