package schedule

import (
	"time"

	"studiobook/internal/domain"
)

// Window is the effective open interval for one day at an address, already
// anchored to concrete instants in the address timezone.
type Window struct {
	Open   time.Time
	Close  time.Time
	Is24x7 bool
}

// Resolve picks the effective window for a date out of an address's operating
// entries. Precedence is strict: a 24/7 entry short-circuits everything, a
// day-specific entry overrides the fixed daily schedule, and no matching
// entry means the studio is closed (nil).
func Resolve(entries []domain.OperatingEntry, date time.Time, loc *time.Location) *Window {
	day := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, loc)

	for _, e := range entries {
		if e.Mode == domain.ModeAlwaysOpen {
			return &Window{
				Open:   day,
				Close:  day.Add(24 * time.Hour),
				Is24x7: true,
			}
		}
	}

	for _, e := range entries {
		if !e.MatchesDay(day) {
			continue
		}
		if e.IsClosed {
			return nil
		}
		return windowFromEntry(e, day, loc)
	}

	for _, e := range entries {
		if e.Mode == domain.ModeFixedDaily {
			if e.IsClosed {
				return nil
			}
			return windowFromEntry(e, day, loc)
		}
	}

	return nil
}

func windowFromEntry(e domain.OperatingEntry, day time.Time, loc *time.Location) *Window {
	if e.OpenTime == nil || e.CloseTime == nil {
		return nil
	}
	open, err := atWallClock(day, *e.OpenTime, loc)
	if err != nil {
		return nil
	}
	close, err := atWallClock(day, *e.CloseTime, loc)
	if err != nil {
		return nil
	}
	if !close.After(open) {
		return nil
	}
	return &Window{Open: open, Close: close}
}

func atWallClock(day time.Time, hhmm string, loc *time.Location) (time.Time, error) {
	t, err := time.Parse("15:04", hhmm)
	if err != nil {
		return time.Time{}, err
	}
	return time.Date(day.Year(), day.Month(), day.Day(), t.Hour(), t.Minute(), 0, 0, loc), nil
}
