package memory

import (
	"cmp"
	"context"
	"slices"
	"time"

	"github.com/riskibarqy/camp-scoreboard/internal/domain/aggregate"
)

type AggregateRepository struct {
	store *Store
}

func (r *AggregateRepository) Increment(ctx context.Context, teamID string, delta int64, at time.Time) (int64, bool, error) {
	var (
		total int64
		ok    bool
	)
	err := r.store.write(ctx, func(d *dataset) error {
		item, found := d.aggregates[teamID]
		if !found {
			return nil
		}
		item.TotalPoints += delta
		item.LastUpdated = at
		d.aggregates[teamID] = item
		total, ok = item.TotalPoints, true
		return nil
	})
	return total, ok, err
}

func (r *AggregateRepository) GetByTeam(ctx context.Context, teamID string) (aggregate.TeamAggregate, bool, error) {
	var (
		item aggregate.TeamAggregate
		ok   bool
	)
	r.store.read(ctx, func(d *dataset) {
		item, ok = d.aggregates[teamID]
	})
	return item, ok, nil
}

// LockByTeam needs no row lock here because transactions are serialized.
func (r *AggregateRepository) LockByTeam(ctx context.Context, teamID string) (aggregate.TeamAggregate, bool, error) {
	return r.GetByTeam(ctx, teamID)
}

func (r *AggregateRepository) List(ctx context.Context) ([]aggregate.TeamAggregate, error) {
	var out []aggregate.TeamAggregate
	r.store.read(ctx, func(d *dataset) {
		out = make([]aggregate.TeamAggregate, 0, len(d.aggregates))
		for _, item := range d.aggregates {
			out = append(out, item)
		}
	})
	slices.SortFunc(out, func(a, b aggregate.TeamAggregate) int {
		return cmp.Compare(a.TeamID, b.TeamID)
	})
	return out, nil
}

func (r *AggregateRepository) Set(ctx context.Context, teamID string, total int64, at time.Time) error {
	return r.store.write(ctx, func(d *dataset) error {
		d.aggregates[teamID] = aggregate.TeamAggregate{TeamID: teamID, TotalPoints: total, LastUpdated: at}
		return nil
	})
}

// Drop removes the aggregate row of a team. It exists to simulate a
// damaged aggregate table.
func (r *AggregateRepository) Drop(ctx context.Context, teamID string) error {
	return r.store.write(ctx, func(d *dataset) error {
		delete(d.aggregates, teamID)
		return nil
	})
}
