package usecase

import (
	"errors"
	"fmt"

	"github.com/riskibarqy/camp-scoreboard/internal/domain/round"
)

var (
	ErrInvalidInput          = errors.New("invalid input")
	ErrNotFound              = errors.New("resource not found")
	ErrUnauthorized          = errors.New("unauthorized")
	ErrDependencyUnavailable = errors.New("dependency unavailable")

	ErrDayLocked             = errors.New("day is locked")
	ErrAlreadyLocked         = errors.New("day already locked")
	ErrAlreadyUndone         = errors.New("entry already undone")
	ErrAggregateInconsistent = errors.New("team aggregate inconsistent")
)

// DayLockedError reports a write or undo against a revealed day.
type DayLockedError struct {
	Day round.Day
}

func (e *DayLockedError) Error() string {
	return fmt.Sprintf("cannot change scores: day %s is locked", e.Day)
}

func (e *DayLockedError) Unwrap() error { return ErrDayLocked }

// AlreadyLockedError reports a second reveal of the same day.
type AlreadyLockedError struct {
	Day round.Day
}

func (e *AlreadyLockedError) Error() string {
	return fmt.Sprintf("day %s already has a snapshot", e.Day)
}

func (e *AlreadyLockedError) Unwrap() error { return ErrAlreadyLocked }

// AlreadyUndoneError reports a second undo of the same entry. ReversalID is
// empty when the conflict was detected by storage at insert time.
type AlreadyUndoneError struct {
	EntryID    string
	ReversalID string
}

func (e *AlreadyUndoneError) Error() string {
	if e.ReversalID == "" {
		return fmt.Sprintf("entry %s already undone", e.EntryID)
	}
	return fmt.Sprintf("entry %s already undone by %s", e.EntryID, e.ReversalID)
}

func (e *AlreadyUndoneError) Unwrap() error { return ErrAlreadyUndone }

// AggregateInconsistencyError reports a failed atomic increment. The
// enclosing transaction is rolled back, so no ledger row was kept either.
type AggregateInconsistencyError struct {
	TeamID string
	Delta  int64
	Cause  error
}

func (e *AggregateInconsistencyError) Error() string {
	if e.Cause == nil {
		return fmt.Sprintf("aggregate for team %s missing while applying %+d", e.TeamID, e.Delta)
	}
	return fmt.Sprintf("aggregate for team %s failed while applying %+d: %v", e.TeamID, e.Delta, e.Cause)
}

func (e *AggregateInconsistencyError) Unwrap() []error {
	if e.Cause == nil {
		return []error{ErrAggregateInconsistent}
	}
	return []error{ErrAggregateInconsistent, e.Cause}
}
