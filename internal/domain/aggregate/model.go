package aggregate

import "time"

// TeamAggregate is the cached running total of a team's ledger entries.
type TeamAggregate struct {
	TeamID      string
	TotalPoints int64
	LastUpdated time.Time
}
