package schedule

import (
	"time"

	"studiobook/internal/domain"
)

// TimeSlot is a candidate booking boundary. Never cached: always derived
// fresh from the window and the bookings snapshot.
type TimeSlot struct {
	Time string `json:"time"`       // "15:04" wall clock
	ISO  string `json:"iso_string"` // RFC3339 in the address timezone
}

const slotStep = time.Hour

// MaxOpenEndedSpan caps a single booking at 24/7 addresses to a 3-day
// horizon. Product policy, not a derived value.
const MaxOpenEndedSpan = 72 * time.Hour

// AvailableStartTimes lists the bookable start boundaries for a day at
// 1-hour granularity. A candidate is unavailable when it falls inside an
// active booking's [start, end) interval. For the current day the open
// boundary is pushed to the next full hour after now.
func AvailableStartTimes(w *Window, bookings []domain.Booking, date time.Time, now time.Time) []TimeSlot {
	slots := make([]TimeSlot, 0)
	if w == nil {
		return slots
	}

	open := w.Open
	if sameDay(date, now.In(w.Open.Location())) {
		if ceil := ceilToNextHour(now.In(w.Open.Location())); ceil.After(open) {
			open = ceil
		}
	}

	close := w.Close
	if w.Is24x7 {
		close = w.Open.Add(24 * time.Hour)
	}

	for t := open; t.Before(close); t = t.Add(slotStep) {
		if occupied(t, bookings) {
			continue
		}
		slots = append(slots, newSlot(t))
	}
	return slots
}

// AvailableEndTimes lists the bookable end boundaries for a booking starting
// at start. Candidates run from start+1h to the close boundary (or the 72h
// horizon at 24/7 addresses) and stop at the first conflict: a booking
// interval is contiguous and cannot jump over an occupied slot. A start
// already behind now is rejected, same as one outside the window.
func AvailableEndTimes(w *Window, bookings []domain.Booking, start time.Time, now time.Time) ([]TimeSlot, error) {
	if w == nil {
		return nil, ErrOutsideOperatingHours
	}
	if start.Before(now) {
		return nil, ErrOutsideOperatingHours
	}
	if !w.Is24x7 && (start.Before(w.Open) || !start.Before(w.Close)) {
		return nil, ErrOutsideOperatingHours
	}

	limit := w.Close
	if w.Is24x7 {
		limit = start.Add(MaxOpenEndedSpan)
	}

	slots := make([]TimeSlot, 0)
	for t := start.Add(slotStep); !t.After(limit); t = t.Add(slotStep) {
		if conflicts(start, t, bookings) {
			break
		}
		slots = append(slots, newSlot(t))
	}
	return slots, nil
}

func newSlot(t time.Time) TimeSlot {
	return TimeSlot{
		Time: t.Format("15:04"),
		ISO:  t.Format(time.RFC3339),
	}
}

func occupied(t time.Time, bookings []domain.Booking) bool {
	for i := range bookings {
		b := &bookings[i]
		if !b.Status.Active() {
			continue
		}
		if !t.Before(b.StartAt) && t.Before(b.EndAt) {
			return true
		}
	}
	return false
}

func conflicts(start, end time.Time, bookings []domain.Booking) bool {
	for i := range bookings {
		b := &bookings[i]
		if !b.Status.Active() {
			continue
		}
		if b.Overlaps(start, end) {
			return true
		}
	}
	return false
}

func ceilToNextHour(t time.Time) time.Time {
	if t.Minute() == 0 && t.Second() == 0 && t.Nanosecond() == 0 {
		return t
	}
	return time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), 0, 0, 0, t.Location()).Add(time.Hour)
}

func sameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}
