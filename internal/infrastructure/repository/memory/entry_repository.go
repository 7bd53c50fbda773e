package memory

import (
	"cmp"
	"context"
	"fmt"
	"slices"

	"github.com/riskibarqy/camp-scoreboard/internal/domain/round"
	"github.com/riskibarqy/camp-scoreboard/internal/domain/scoring"
)

type EntryRepository struct {
	store *Store
}

func (r *EntryRepository) Insert(ctx context.Context, entries ...scoring.Entry) error {
	if len(entries) == 0 {
		return nil
	}
	return r.store.write(ctx, func(d *dataset) error {
		for _, e := range entries {
			if e.Points == 0 {
				return fmt.Errorf("insert score entry %s: points must be non-zero", e.ID)
			}
			if _, dup := d.entryIndex[e.ID]; dup {
				return fmt.Errorf("insert score entry %s: duplicate id", e.ID)
			}
			if _, ok := d.rounds[e.RoundID]; !ok {
				return fmt.Errorf("insert score entry %s: round %s does not exist", e.ID, e.RoundID)
			}
			if _, ok := d.teams[e.TeamID]; !ok {
				return fmt.Errorf("insert score entry %s: team %s does not exist", e.ID, e.TeamID)
			}
			if e.IsReversal() {
				if _, ok := d.entryIndex[e.ReversalOf]; !ok {
					return fmt.Errorf("insert score entry %s: reversed entry %s does not exist", e.ID, e.ReversalOf)
				}
				if _, taken := d.reversals[e.ReversalOf]; taken {
					return fmt.Errorf("insert score entry %s: %w", e.ID, scoring.ErrAlreadyReversed)
				}
				d.reversals[e.ReversalOf] = e.ID
			}
			d.entryIndex[e.ID] = len(d.entries)
			d.entries = append(d.entries, storedEntry{entry: e, seq: len(d.entries)})
		}
		return nil
	})
}

func (r *EntryRepository) GetByID(ctx context.Context, entryID string) (scoring.EntryView, bool, error) {
	var (
		item scoring.EntryView
		ok   bool
	)
	r.store.read(ctx, func(d *dataset) {
		idx, found := d.entryIndex[entryID]
		if !found {
			return
		}
		item, ok = d.view(d.entries[idx].entry), true
	})
	return item, ok, nil
}

func (r *EntryRepository) GetReversalOf(ctx context.Context, entryID string) (scoring.Entry, bool, error) {
	var (
		item scoring.Entry
		ok   bool
	)
	r.store.read(ctx, func(d *dataset) {
		reversalID, found := d.reversals[entryID]
		if !found {
			return
		}
		item, ok = d.entries[d.entryIndex[reversalID]].entry, true
	})
	return item, ok, nil
}

func (r *EntryRepository) ListRecent(ctx context.Context, limit int) ([]scoring.EntryView, error) {
	var rows []storedEntry
	var out []scoring.EntryView
	r.store.read(ctx, func(d *dataset) {
		rows = append(rows, d.entries...)
		slices.SortFunc(rows, func(a, b storedEntry) int {
			return cmp.Or(b.entry.CreatedAt.Compare(a.entry.CreatedAt), cmp.Compare(b.seq, a.seq))
		})
		if limit > 0 && len(rows) > limit {
			rows = rows[:limit]
		}
		out = make([]scoring.EntryView, 0, len(rows))
		for _, row := range rows {
			out = append(out, d.view(row.entry))
		}
	})
	return out, nil
}

func (r *EntryRepository) ListThroughDay(ctx context.Context, day round.Day) ([]scoring.EntryView, error) {
	var out []scoring.EntryView
	r.store.read(ctx, func(d *dataset) {
		for _, row := range d.entries {
			v := d.view(row.entry)
			if v.Day.Compare(day) <= 0 {
				out = append(out, v)
			}
		}
	})
	return out, nil
}

func (r *EntryRepository) SumByTeam(ctx context.Context, teamIDs []string) (map[string]int64, error) {
	wanted := make(map[string]struct{}, len(teamIDs))
	for _, teamID := range teamIDs {
		wanted[teamID] = struct{}{}
	}
	out := make(map[string]int64, len(teamIDs))
	r.store.read(ctx, func(d *dataset) {
		for _, row := range d.entries {
			if _, ok := wanted[row.entry.TeamID]; ok {
				out[row.entry.TeamID] += row.entry.Points
			}
		}
	})
	return out, nil
}

func (r *EntryRepository) SumByTeamForGame(ctx context.Context, gameID string) (map[string]int64, error) {
	out := make(map[string]int64)
	r.store.read(ctx, func(d *dataset) {
		for _, row := range d.entries {
			if d.rounds[row.entry.RoundID].GameID == gameID {
				out[row.entry.TeamID] += row.entry.Points
			}
		}
	})
	return out, nil
}

func (r *EntryRepository) SumByPlayer(ctx context.Context) ([]scoring.PlayerTotal, error) {
	type key struct{ playerID, teamID string }
	var out []scoring.PlayerTotal
	r.store.read(ctx, func(d *dataset) {
		index := make(map[key]int)
		for _, row := range d.entries {
			e := row.entry
			if e.PlayerID == "" {
				continue
			}
			k := key{playerID: e.PlayerID, teamID: e.TeamID}
			i, ok := index[k]
			if !ok {
				i = len(out)
				index[k] = i
				out = append(out, scoring.PlayerTotal{
					PlayerID:   e.PlayerID,
					TeamID:     e.TeamID,
					PlayerName: d.players[e.PlayerID].Name,
				})
			}
			out[i].Points += e.Points
		}
	})
	return out, nil
}

func (d *dataset) view(e scoring.Entry) scoring.EntryView {
	r := d.rounds[e.RoundID]
	t := d.teams[e.TeamID]
	return scoring.EntryView{
		Entry:      e,
		GameID:     r.GameID,
		Day:        r.Day,
		TeamName:   t.Name,
		TeamColor:  t.Color,
		PlayerName: d.players[e.PlayerID].Name,
	}
}
