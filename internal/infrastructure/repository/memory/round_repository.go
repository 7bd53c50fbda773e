package memory

import (
	"context"
	"fmt"

	"github.com/riskibarqy/camp-scoreboard/internal/domain/round"
)

type RoundRepository struct {
	store *Store
}

func (r *RoundRepository) Ensure(ctx context.Context, candidate round.Round) (round.Round, error) {
	var out round.Round
	err := r.store.write(ctx, func(d *dataset) error {
		if _, ok := d.games[candidate.GameID]; !ok {
			return fmt.Errorf("insert round: game %s does not exist", candidate.GameID)
		}
		key := roundKey{gameID: candidate.GameID, day: candidate.Day, number: candidate.RoundNumber}
		if existingID, ok := d.roundKeys[key]; ok {
			out = d.rounds[existingID]
			return nil
		}
		d.rounds[candidate.ID] = candidate
		d.roundKeys[key] = candidate.ID
		out = candidate
		return nil
	})
	return out, err
}

func (r *RoundRepository) GetByID(ctx context.Context, roundID string) (round.Round, bool, error) {
	var (
		item round.Round
		ok   bool
	)
	r.store.read(ctx, func(d *dataset) {
		item, ok = d.rounds[roundID]
	})
	return item, ok, nil
}
