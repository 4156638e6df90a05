package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestBookingStatusCodes(t *testing.T) {
	assert.Equal(t, 1, BookingPending.Code())
	assert.Equal(t, 2, BookingPaid.Code())
	assert.Equal(t, 3, BookingCancelled.Code())
	assert.Equal(t, 4, BookingExpired.Code())
}

func TestBookingStatusActive(t *testing.T) {
	assert.True(t, BookingPending.Active())
	assert.True(t, BookingPaid.Active())
	assert.False(t, BookingCancelled.Active())
	assert.False(t, BookingExpired.Active())
}

func TestBookingOverlaps(t *testing.T) {
	loc := time.UTC
	b := &Booking{
		StartAt: time.Date(2025, 6, 4, 10, 0, 0, 0, loc),
		EndAt:   time.Date(2025, 6, 4, 12, 0, 0, 0, loc),
	}

	at := func(h int) time.Time { return time.Date(2025, 6, 4, h, 0, 0, 0, loc) }

	assert.True(t, b.Overlaps(at(11), at(13)))
	assert.True(t, b.Overlaps(at(9), at(11)))
	assert.True(t, b.Overlaps(at(10), at(12)))
	// Touching boundaries do not overlap: intervals are half-open.
	assert.False(t, b.Overlaps(at(8), at(10)))
	assert.False(t, b.Overlaps(at(12), at(14)))
}

func TestBookingCovers(t *testing.T) {
	loc := time.UTC
	day := func(d int) time.Time { return time.Date(2025, 6, d, 0, 0, 0, 0, loc) }

	single := &Booking{Date: day(4)}
	assert.True(t, single.Covers(day(4)))
	assert.False(t, single.Covers(day(5)))

	end := day(6)
	multi := &Booking{Date: day(4), EndDate: &end}
	assert.True(t, multi.Covers(day(4)))
	assert.True(t, multi.Covers(day(5)))
	assert.True(t, multi.Covers(day(6)))
	assert.False(t, multi.Covers(day(3)))
	assert.False(t, multi.Covers(day(7)))
}

func TestAddressLocationFallsBackToUTC(t *testing.T) {
	assert.Equal(t, time.UTC, (&Address{}).Location())
	assert.Equal(t, time.UTC, (&Address{Timezone: "Not/AZone"}).Location())

	loc := (&Address{Timezone: "Asia/Almaty"}).Location()
	assert.Equal(t, "Asia/Almaty", loc.String())
}
