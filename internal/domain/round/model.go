package round

import "time"

// DefaultRoundNumber is the round number used when a round is resolved
// implicitly for a (game, day) pair.
const DefaultRoundNumber = 1

// Round is one instance of a game on a calendar day.
type Round struct {
	ID          string
	GameID      string
	Day         Day
	RoundNumber int
	CreatedAt   time.Time
}
