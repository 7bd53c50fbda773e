package usecase

import (
	"errors"
	"testing"
)

func TestStructuredErrorsMatchSentinels(t *testing.T) {
	t.Parallel()

	cause := errors.New("connection reset")
	cases := []struct {
		err  error
		want error
	}{
		{err: &DayLockedError{Day: "2025-07-01"}, want: ErrDayLocked},
		{err: &AlreadyLockedError{Day: "2025-07-01"}, want: ErrAlreadyLocked},
		{err: &AlreadyUndoneError{EntryID: "e-1"}, want: ErrAlreadyUndone},
		{err: &AggregateInconsistencyError{TeamID: "blue", Delta: 5}, want: ErrAggregateInconsistent},
		{err: &AggregateInconsistencyError{TeamID: "blue", Delta: 5, Cause: cause}, want: cause},
	}

	for _, tc := range cases {
		wrapped := errors.Join(errors.New("outer"), tc.err)
		if !errors.Is(wrapped, tc.want) {
			t.Fatalf("expected %v to match %v", tc.err, tc.want)
		}
	}

	var locked *DayLockedError
	if !errors.As(&DayLockedError{Day: "2025-07-02"}, &locked) || locked.Day != "2025-07-02" {
		t.Fatalf("expected DayLockedError to carry the day")
	}
}
