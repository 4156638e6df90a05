package notification

import (
	"context"

	"studiobook/internal/modules/booking"

	"github.com/rs/zerolog"
)

// LogSender records booking lifecycle notifications in the structured log.
// It stands in for an email/push provider; the booking flow treats delivery
// as best effort either way.
type LogSender struct {
	log zerolog.Logger
}

var _ booking.NotificationSender = (*LogSender)(nil)

func NewLogSender(log zerolog.Logger) *LogSender {
	return &LogSender{log: log}
}

func (s *LogSender) NotifyBookingCreated(ctx context.Context, userID, bookingID int64) error {
	s.event("booking_created", userID, bookingID).Msg("notification")
	return nil
}

func (s *LogSender) NotifyBookingPaid(ctx context.Context, userID, bookingID int64) error {
	s.event("booking_paid", userID, bookingID).Msg("notification")
	return nil
}

func (s *LogSender) NotifyBookingCancelled(ctx context.Context, userID, bookingID int64, reason string) error {
	s.event("booking_cancelled", userID, bookingID).Str("reason", reason).Msg("notification")
	return nil
}

func (s *LogSender) NotifyBookingExpired(ctx context.Context, userID, bookingID int64) error {
	s.event("booking_expired", userID, bookingID).Msg("notification")
	return nil
}

func (s *LogSender) event(kind string, userID, bookingID int64) *zerolog.Event {
	return s.log.Info().
		Str("event", kind).
		Int64("user_id", userID).
		Int64("booking_id", bookingID)
}
