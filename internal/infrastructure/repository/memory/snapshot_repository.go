package memory

import (
	"context"
	"slices"

	"github.com/riskibarqy/camp-scoreboard/internal/domain/round"
	"github.com/riskibarqy/camp-scoreboard/internal/domain/snapshot"
)

type SnapshotRepository struct {
	store *Store
}

// LockDay is a no-op: transactions on a Store never overlap.
func (r *SnapshotRepository) LockDay(context.Context, round.Day, snapshot.LockMode) error {
	return nil
}

func (r *SnapshotRepository) Exists(ctx context.Context, day round.Day) (bool, error) {
	var ok bool
	r.store.read(ctx, func(d *dataset) {
		_, ok = d.snapshots[day]
	})
	return ok, nil
}

func (r *SnapshotRepository) Insert(ctx context.Context, s snapshot.DailySnapshot) (bool, error) {
	var inserted bool
	err := r.store.write(ctx, func(d *dataset) error {
		if _, exists := d.snapshots[s.Day]; exists {
			return nil
		}
		d.snapshots[s.Day] = s
		inserted = true
		return nil
	})
	return inserted, err
}

func (r *SnapshotRepository) GetByDay(ctx context.Context, day round.Day) (snapshot.DailySnapshot, bool, error) {
	var (
		item snapshot.DailySnapshot
		ok   bool
	)
	r.store.read(ctx, func(d *dataset) {
		item, ok = d.snapshots[day]
	})
	return item, ok, nil
}

func (r *SnapshotRepository) List(ctx context.Context) ([]snapshot.DailySnapshot, error) {
	var out []snapshot.DailySnapshot
	r.store.read(ctx, func(d *dataset) {
		out = make([]snapshot.DailySnapshot, 0, len(d.snapshots))
		for _, item := range d.snapshots {
			out = append(out, item)
		}
	})
	slices.SortFunc(out, func(a, b snapshot.DailySnapshot) int {
		return a.Day.Compare(b.Day)
	})
	return out, nil
}
