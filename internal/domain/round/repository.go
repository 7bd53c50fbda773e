package round

import "context"

type Repository interface {
	// Ensure returns the round for (candidate.GameID, candidate.Day,
	// candidate.RoundNumber), inserting candidate when none exists. Concurrent
	// callers observe the same row.
	Ensure(ctx context.Context, candidate Round) (Round, error)
	GetByID(ctx context.Context, roundID string) (Round, bool, error)
}
