package domain

import "time"

type BookingStatus string

const (
	BookingPending   BookingStatus = "pending"
	BookingPaid      BookingStatus = "paid"
	BookingCancelled BookingStatus = "cancelled"
	BookingExpired   BookingStatus = "expired"
)

// Wire codes kept stable for legacy clients of the original API.
var bookingStatusCodes = map[BookingStatus]int{
	BookingPending:   1,
	BookingPaid:      2,
	BookingCancelled: 3,
	BookingExpired:   4,
}

func (s BookingStatus) Code() int {
	return bookingStatusCodes[s]
}

// Active reports whether the booking still occupies its time slot.
// Cancelled and expired bookings free the slot but stay in the table for history.
func (s BookingStatus) Active() bool {
	return s == BookingPending || s == BookingPaid
}

type Booking struct {
	ID     int64         `json:"id"`
	RoomID int64         `json:"room_id" validate:"required"`
	UserID int64         `json:"user_id" validate:"required"`
	Status BookingStatus `json:"status"`

	// Date is the booking day (midnight in the studio's timezone). StartAt and
	// EndAt are the concrete boundaries; EndDate is set only for multi-day
	// bookings at 24/7 addresses, so a booking crossing midnight never relies
	// on wraparound arithmetic.
	Date    time.Time  `json:"date"`
	StartAt time.Time  `json:"start_time" validate:"required"`
	EndAt   time.Time  `json:"end_time" validate:"required"`
	EndDate *time.Time `json:"end_date,omitempty"`

	TotalPrice float64 `json:"total_price" validate:"gte=0"`

	PaymentLink          string     `json:"payment_link,omitempty"`
	PaymentLinkExpiresAt *time.Time `json:"payment_link_expires_at,omitempty"`
	PaymentRef           string     `json:"payment_ref,omitempty"`

	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
	CancelledAt *time.Time `json:"cancelled_at,omitempty"`

	User *User `json:"user,omitempty" gorm:"foreignKey:UserID"`
	Room *Room `json:"room,omitempty" gorm:"foreignKey:RoomID"`
}

// Covers reports whether the booking occupies any part of the given day
// (midnight-aligned). Multi-day bookings cover every day from Date through
// EndDate inclusive.
func (b *Booking) Covers(day time.Time) bool {
	end := b.Date
	if b.EndDate != nil {
		end = *b.EndDate
	}
	return !day.Before(b.Date) && !day.After(end)
}

// Overlaps reports whether [start, end) intersects the booking's interval.
func (b *Booking) Overlaps(start, end time.Time) bool {
	return start.Before(b.EndAt) && b.StartAt.Before(end)
}
