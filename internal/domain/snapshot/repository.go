package snapshot

import (
	"context"

	"github.com/riskibarqy/camp-scoreboard/internal/domain/round"
)

type LockMode int

const (
	// LockShared is held by writers of a day; many may hold it at once.
	LockShared LockMode = iota
	// LockExclusive is held by the reveal of a day.
	LockExclusive
)

type Repository interface {
	// LockDay serializes writers and the reveal of one day for the rest of
	// the surrounding transaction.
	LockDay(ctx context.Context, day round.Day, mode LockMode) error
	Exists(ctx context.Context, day round.Day) (bool, error)
	// Insert stores the snapshot. inserted is false when the day already has
	// one; the existing snapshot is left untouched.
	Insert(ctx context.Context, s DailySnapshot) (inserted bool, err error)
	GetByDay(ctx context.Context, day round.Day) (DailySnapshot, bool, error)
	List(ctx context.Context) ([]DailySnapshot, error)
}
