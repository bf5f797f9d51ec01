package domain

import (
	"errors"
	"fmt"
	"time"
)

var ErrInvalidDay = errors.New("invalid calendar day (must be YYYY-MM-DD)")

const DayLayout = "2006-01-02"

// Day is a local calendar date encoded as YYYY-MM-DD, so lexical order equals date order.
type Day string

func DayOf(t time.Time) Day {
	return Day(t.Local().Format(DayLayout))
}

func ParseDay(raw string) (Day, error) {
	t, err := time.ParseInLocation(DayLayout, raw, time.Local)
	if err != nil {
		return "", fmt.Errorf("%w: %q", ErrInvalidDay, raw)
	}
	return Day(t.Format(DayLayout)), nil
}

func (d Day) Time() time.Time {
	t, err := time.ParseInLocation(DayLayout, string(d), time.Local)
	if err != nil {
		return time.Time{}
	}
	return t
}

// AddDays steps by calendar days, not by 24h, so DST shifts never skip or repeat a date.
func (d Day) AddDays(n int) Day {
	t := d.Time()
	if t.IsZero() {
		return d
	}
	return Day(t.AddDate(0, 0, n).Format(DayLayout))
}

func (d Day) Prev() Day {
	return d.AddDays(-1)
}

func (d Day) String() string {
	return string(d)
}
