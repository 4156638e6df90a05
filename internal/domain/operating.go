package domain

import "time"

// OperatingMode is the tagged schedule kind for an address. Exactly one
// ALWAYS_OPEN or one FIXED_DAILY entry may exist per address, or up to seven
// VARIABLE_BY_DAY entries (one per weekday); the set is replaced wholesale
// when an owner saves hours.
type OperatingMode string

const (
	ModeAlwaysOpen    OperatingMode = "always_open"
	ModeFixedDaily    OperatingMode = "fixed_daily"
	ModeVariableByDay OperatingMode = "variable_by_day"
)

type OperatingEntry struct {
	ID        int64         `json:"id"`
	AddressID int64         `json:"address_id"`
	Mode      OperatingMode `json:"mode"`
	// DayOfWeek is 0=Sunday..6=Saturday and only meaningful for variable_by_day.
	DayOfWeek *int    `json:"day_of_week,omitempty"`
	OpenTime  *string `json:"open_time,omitempty"`  // wall clock "15:04"
	CloseTime *string `json:"close_time,omitempty"` // wall clock "15:04"
	IsClosed  bool    `json:"is_closed"`

	CreatedAt time.Time `json:"created_at"`
}

// MatchesDay reports whether a variable_by_day entry applies to the weekday
// of the given date.
func (e *OperatingEntry) MatchesDay(date time.Time) bool {
	return e.Mode == ModeVariableByDay && e.DayOfWeek != nil && *e.DayOfWeek == int(date.Weekday())
}
