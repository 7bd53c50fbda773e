package memory

import (
	"cmp"
	"context"
	"slices"

	"github.com/riskibarqy/camp-scoreboard/internal/domain/player"
)

type PlayerRepository struct {
	store *Store
}

func (r *PlayerRepository) GetByID(ctx context.Context, playerID string) (player.Player, bool, error) {
	var (
		item player.Player
		ok   bool
	)
	r.store.read(ctx, func(d *dataset) {
		item, ok = d.players[playerID]
	})
	return item, ok, nil
}

func (r *PlayerRepository) GetByIDs(ctx context.Context, playerIDs []string) ([]player.Player, error) {
	out := make([]player.Player, 0, len(playerIDs))
	r.store.read(ctx, func(d *dataset) {
		for _, playerID := range playerIDs {
			if item, ok := d.players[playerID]; ok {
				out = append(out, item)
			}
		}
	})
	return out, nil
}

func (r *PlayerRepository) ListByTeam(ctx context.Context, teamID string) ([]player.Player, error) {
	var out []player.Player
	r.store.read(ctx, func(d *dataset) {
		for _, item := range d.players {
			if item.TeamID == teamID {
				out = append(out, item)
			}
		}
	})
	slices.SortFunc(out, func(a, b player.Player) int {
		return cmp.Or(cmp.Compare(a.Name, b.Name), cmp.Compare(a.ID, b.ID))
	})
	return out, nil
}
