package memory

import (
	"cmp"
	"context"
	"slices"

	"github.com/riskibarqy/camp-scoreboard/internal/domain/game"
	"github.com/riskibarqy/camp-scoreboard/internal/domain/team"
)

type TeamRepository struct {
	store *Store
}

func (r *TeamRepository) List(ctx context.Context) ([]team.Team, error) {
	var out []team.Team
	r.store.read(ctx, func(d *dataset) {
		out = make([]team.Team, 0, len(d.teams))
		for _, item := range d.teams {
			out = append(out, item)
		}
	})
	slices.SortFunc(out, func(a, b team.Team) int {
		return cmp.Or(cmp.Compare(a.Name, b.Name), cmp.Compare(a.ID, b.ID))
	})
	return out, nil
}

func (r *TeamRepository) GetByID(ctx context.Context, teamID string) (team.Team, bool, error) {
	var (
		item team.Team
		ok   bool
	)
	r.store.read(ctx, func(d *dataset) {
		item, ok = d.teams[teamID]
	})
	return item, ok, nil
}

type GameRepository struct {
	store *Store
}

func (r *GameRepository) List(ctx context.Context) ([]game.Game, error) {
	var out []game.Game
	r.store.read(ctx, func(d *dataset) {
		out = make([]game.Game, 0, len(d.games))
		for _, item := range d.games {
			out = append(out, item)
		}
	})
	slices.SortFunc(out, func(a, b game.Game) int {
		return cmp.Or(cmp.Compare(a.Title, b.Title), cmp.Compare(a.ID, b.ID))
	})
	return out, nil
}

func (r *GameRepository) GetByID(ctx context.Context, gameID string) (game.Game, bool, error) {
	var (
		item game.Game
		ok   bool
	)
	r.store.read(ctx, func(d *dataset) {
		item, ok = d.games[gameID]
	})
	return item, ok, nil
}
