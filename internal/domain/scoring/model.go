package scoring

import (
	"errors"
	"fmt"
	"time"
	"unicode/utf8"

	"github.com/riskibarqy/camp-scoreboard/internal/domain/round"
)

const (
	DefaultReason = "participation"
	MVPReason     = "MVP award"
)

// ErrAlreadyReversed is reported by repositories when a compensating entry
// for the same original already exists.
var ErrAlreadyReversed = errors.New("entry already reversed")

// Entry is an immutable ledger row. PlayerID is empty for team-level
// awards. ReversalOf is set only on compensating entries and references
// the entry they cancel.
type Entry struct {
	ID         string
	RoundID    string
	TeamID     string
	PlayerID   string
	Points     int64
	Reason     string
	CreatedBy  string
	ReversalOf string
	CreatedAt  time.Time
}

func (e Entry) IsReversal() bool {
	return e.ReversalOf != ""
}

// Reversal builds the compensating entry for e.
func (e Entry) Reversal(id, createdBy string, at time.Time) Entry {
	return Entry{
		ID:         id,
		RoundID:    e.RoundID,
		TeamID:     e.TeamID,
		PlayerID:   e.PlayerID,
		Points:     -e.Points,
		Reason:     fmt.Sprintf("UNDO: %s - %s", e.ID, e.Reason),
		CreatedBy:  createdBy,
		ReversalOf: e.ID,
		CreatedAt:  at,
	}
}

// ClipReason cuts reason to at most maxRunes characters. A non-positive
// maxRunes leaves it unchanged.
func ClipReason(reason string, maxRunes int) string {
	if maxRunes <= 0 || utf8.RuneCountInString(reason) <= maxRunes {
		return reason
	}
	return string([]rune(reason)[:maxRunes])
}

// EntryView is an entry joined with its round, team and player for reads.
type EntryView struct {
	Entry
	GameID     string
	Day        round.Day
	TeamName   string
	TeamColor  string
	PlayerName string
}

// PlayerTotal is the net ledger sum for one player.
type PlayerTotal struct {
	PlayerID   string
	TeamID     string
	PlayerName string
	Points     int64
}
