package scoring

import (
	"context"

	"github.com/riskibarqy/camp-scoreboard/internal/domain/round"
)

// Repository is append-only: entries are inserted and read, never changed.
type Repository interface {
	// Insert stores entries. A second compensating entry for the same
	// original fails with an error matching ErrAlreadyReversed.
	Insert(ctx context.Context, entries ...Entry) error
	GetByID(ctx context.Context, entryID string) (EntryView, bool, error)
	GetReversalOf(ctx context.Context, entryID string) (Entry, bool, error)

	// ListRecent returns newest entries first.
	ListRecent(ctx context.Context, limit int) ([]EntryView, error)
	// ListThroughDay returns every entry whose round day is on or before day.
	ListThroughDay(ctx context.Context, day round.Day) ([]EntryView, error)

	SumByTeam(ctx context.Context, teamIDs []string) (map[string]int64, error)
	SumByTeamForGame(ctx context.Context, gameID string) (map[string]int64, error)
	SumByPlayer(ctx context.Context) ([]PlayerTotal, error)
}
