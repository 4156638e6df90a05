package schedule

import (
	"context"
	"errors"
	"time"

	"studiobook/internal/domain"

	"gorm.io/gorm"
)

type Service struct {
	entries  OperatingEntryRepository
	bookings BookingQuery
	rooms    RoomResolver
	owners   OwnerResolver

	now func() time.Time
}

func NewService(entries OperatingEntryRepository, bookings BookingQuery, rooms RoomResolver, owners OwnerResolver) *Service {
	return &Service{
		entries:  entries,
		bookings: bookings,
		rooms:    rooms,
		owners:   owners,
		now:      time.Now,
	}
}

// StartTimes computes the bookable start boundaries for a room on a date.
// An empty list is a valid result (closed day, fully booked, or past hours).
func (s *Service) StartTimes(ctx context.Context, roomID int64, dateStr string) ([]TimeSlot, error) {
	addr, day, err := s.resolveDay(ctx, roomID, dateStr)
	if err != nil {
		return nil, err
	}
	loc := addr.Location()

	entries, err := s.entries.ListByAddress(ctx, addr.ID)
	if err != nil {
		return nil, err
	}

	w := Resolve(entries, day, loc)
	if w == nil {
		return []TimeSlot{}, nil
	}

	bookings, err := s.bookings.ListActiveForRoomOn(ctx, roomID, day)
	if err != nil {
		return nil, err
	}

	return AvailableStartTimes(w, bookings, day, s.now()), nil
}

// EndTimes computes the bookable end boundaries for a booking starting at
// startStr ("15:04") on the given date.
func (s *Service) EndTimes(ctx context.Context, roomID int64, dateStr, startStr string) ([]TimeSlot, error) {
	addr, day, err := s.resolveDay(ctx, roomID, dateStr)
	if err != nil {
		return nil, err
	}
	loc := addr.Location()

	start, err := atWallClock(day, startStr, loc)
	if err != nil {
		return nil, ErrInvalidTime
	}

	entries, err := s.entries.ListByAddress(ctx, addr.ID)
	if err != nil {
		return nil, err
	}

	w := Resolve(entries, day, loc)

	// Fetch from the start forward so a multi-day horizon sees later bookings.
	bookings, err := s.bookings.ListActiveForRoomFrom(ctx, roomID, start)
	if err != nil {
		return nil, err
	}

	return AvailableEndTimes(w, bookings, start, s.now())
}

// ReplaceHours replaces an address's operating entries wholesale. Only the
// studio owner may do this.
func (s *Service) ReplaceHours(ctx context.Context, addressID, actingUserID int64, entries []domain.OperatingEntry) error {
	owner, err := s.owners.GetOwner(ctx, addressID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		return err
	}
	if owner == nil || owner.UserID != actingUserID {
		return ErrForbidden
	}

	if err := validateEntrySet(entries); err != nil {
		return err
	}

	for i := range entries {
		entries[i].AddressID = addressID
	}
	return s.entries.ReplaceForAddress(ctx, addressID, entries)
}

// validateEntrySet enforces the schedule-shape invariant: one always_open
// entry, or one fixed_daily entry, or up to seven variable_by_day entries
// with distinct weekdays. The modes never mix.
func validateEntrySet(entries []domain.OperatingEntry) error {
	if len(entries) == 0 {
		return ErrInvalidHoursConfig
	}

	var alwaysOpen, fixedDaily, variable int
	seenDays := map[int]bool{}

	for _, e := range entries {
		switch e.Mode {
		case domain.ModeAlwaysOpen:
			alwaysOpen++
		case domain.ModeFixedDaily:
			fixedDaily++
			if err := validateEntryTimes(e); err != nil {
				return err
			}
		case domain.ModeVariableByDay:
			variable++
			if e.DayOfWeek == nil || *e.DayOfWeek < 0 || *e.DayOfWeek > 6 {
				return ErrInvalidHoursConfig
			}
			if seenDays[*e.DayOfWeek] {
				return ErrInvalidHoursConfig
			}
			seenDays[*e.DayOfWeek] = true
			if err := validateEntryTimes(e); err != nil {
				return err
			}
		default:
			return ErrInvalidHoursConfig
		}
	}

	switch {
	case alwaysOpen == 1 && fixedDaily == 0 && variable == 0:
		return nil
	case alwaysOpen == 0 && fixedDaily == 1 && variable == 0:
		return nil
	case alwaysOpen == 0 && fixedDaily == 0 && variable >= 1 && variable <= 7:
		return nil
	}
	return ErrInvalidHoursConfig
}

func validateEntryTimes(e domain.OperatingEntry) error {
	if e.IsClosed {
		return nil
	}
	if e.OpenTime == nil || e.CloseTime == nil {
		return ErrInvalidHoursConfig
	}
	open, err := time.Parse("15:04", *e.OpenTime)
	if err != nil {
		return ErrInvalidHoursConfig
	}
	close, err := time.Parse("15:04", *e.CloseTime)
	if err != nil {
		return ErrInvalidHoursConfig
	}
	if !close.After(open) {
		return ErrInvalidHoursConfig
	}
	return nil
}

func (s *Service) resolveDay(ctx context.Context, roomID int64, dateStr string) (*domain.Address, time.Time, error) {
	addr, err := s.rooms.GetAddressForRoom(ctx, roomID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, time.Time{}, ErrNotFound
		}
		return nil, time.Time{}, err
	}

	loc := addr.Location()
	day, err := time.ParseInLocation("2006-01-02", dateStr, loc)
	if err != nil {
		return nil, time.Time{}, ErrInvalidDate
	}
	return addr, day, nil
}
