package schedule

import "errors"

var (
	ErrInvalidDate           = errors.New("invalid date")
	ErrInvalidTime           = errors.New("invalid time")
	ErrOutsideOperatingHours = errors.New("start time outside operating hours")
	ErrInvalidHoursConfig    = errors.New("invalid operating hours configuration")
	ErrNotFound              = errors.New("not found")
	ErrForbidden             = errors.New("forbidden")
)
