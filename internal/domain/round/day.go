package round

import (
	"fmt"
	"strings"
	"time"
)

const dayLayout = "2006-01-02"

// Day is a calendar date without time zone, the unit of locking.
// The zero value is not a valid day.
type Day string

func ParseDay(value string) (Day, error) {
	value = strings.TrimSpace(value)
	t, err := time.Parse(dayLayout, value)
	if err != nil {
		return "", fmt.Errorf("parse day %q: expected YYYY-MM-DD", value)
	}
	return Day(t.Format(dayLayout)), nil
}

// DayOf returns the calendar day of t in t's location.
func DayOf(t time.Time) Day {
	return Day(t.Format(dayLayout))
}

func (d Day) String() string {
	return string(d)
}

func (d Day) IsZero() bool {
	return d == ""
}

// Compare orders days chronologically. Canonical days compare correctly
// as strings because the layout is fixed width.
func (d Day) Compare(other Day) int {
	return strings.Compare(string(d), string(other))
}

func (d Day) Time() time.Time {
	t, _ := time.Parse(dayLayout, string(d))
	return t
}
