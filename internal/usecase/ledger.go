package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/riskibarqy/camp-scoreboard/internal/domain/aggregate"
	"github.com/riskibarqy/camp-scoreboard/internal/domain/round"
	"github.com/riskibarqy/camp-scoreboard/internal/domain/scoring"
	"github.com/riskibarqy/camp-scoreboard/internal/domain/snapshot"
	"github.com/riskibarqy/camp-scoreboard/internal/platform/logging"
)

// ledgerWriter appends entries of one team and applies their sum to the
// team aggregate. It must run inside a transaction.
type ledgerWriter struct {
	snapshotRepo  snapshot.Repository
	entryRepo     scoring.Repository
	aggregateRepo aggregate.Repository
	logger        *logging.Logger
}

// guardDay holds the day open for writing until the transaction ends and
// fails when the day already has a snapshot.
func (w ledgerWriter) guardDay(ctx context.Context, day round.Day) error {
	if err := w.snapshotRepo.LockDay(ctx, day, snapshot.LockShared); err != nil {
		return fmt.Errorf("lock day: %w", err)
	}
	locked, err := w.snapshotRepo.Exists(ctx, day)
	if err != nil {
		return fmt.Errorf("check day lock: %w", err)
	}
	if locked {
		return &DayLockedError{Day: day}
	}
	return nil
}

// append inserts entries, all of teamID, and returns the new team total.
func (w ledgerWriter) append(ctx context.Context, teamID string, entries []scoring.Entry, at time.Time) (int64, error) {
	if err := w.entryRepo.Insert(ctx, entries...); err != nil {
		return 0, fmt.Errorf("insert score entries: %w", err)
	}

	var delta int64
	for _, e := range entries {
		delta += e.Points
	}

	total, ok, err := w.aggregateRepo.Increment(ctx, teamID, delta, at)
	if err != nil || !ok {
		inconsistency := &AggregateInconsistencyError{TeamID: teamID, Delta: delta, Cause: err}
		w.logger.ErrorContext(ctx, "team aggregate increment failed, write rolled back",
			"team_id", teamID,
			"delta", delta,
			"entry_count", len(entries),
			"aggregate_missing", err == nil,
			"error", inconsistency,
		)
		return 0, inconsistency
	}
	return total, nil
}

func entryIDs(entries []scoring.Entry) []string {
	out := make([]string, 0, len(entries))
	for _, e := range entries {
		out = append(out, e.ID)
	}
	return out
}
