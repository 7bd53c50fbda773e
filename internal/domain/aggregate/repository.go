package aggregate

import (
	"context"
	"time"
)

type Repository interface {
	// Increment atomically adds delta to the team's total and returns the new
	// total. ok is false when the team has no aggregate row.
	Increment(ctx context.Context, teamID string, delta int64, at time.Time) (total int64, ok bool, err error)
	GetByTeam(ctx context.Context, teamID string) (TeamAggregate, bool, error)
	// LockByTeam reads the row and holds it against concurrent increments
	// until the surrounding transaction ends.
	LockByTeam(ctx context.Context, teamID string) (TeamAggregate, bool, error)
	List(ctx context.Context) ([]TeamAggregate, error)
	// Set overwrites the total, creating the row when missing.
	Set(ctx context.Context, teamID string, total int64, at time.Time) error
}
