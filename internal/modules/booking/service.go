package booking

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"studiobook/internal/domain"
	"studiobook/internal/metrics"
	"studiobook/internal/modules/schedule"
	"studiobook/internal/repository"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/rs/zerolog"
	"gorm.io/gorm"
)

// Service drives the booking lifecycle: pending → paid → cancelled, and
// pending → expired via the sweeper.
// Postgres SQLSTATE codes the create path maps to a conflict: 23P01 is what
// the idx_no_overbooking exclusion constraint raises, 23505 covers a plain
// unique-index variant of the same guard.
const (
	pgExclusionViolation = "23P01"
	pgUniqueViolation    = "23505"
)

type Service struct {
	bookings BookingRepository
	rooms    RoomRepository
	hours    OperatingHoursLister
	owners   OwnerResolver
	gateway  PaymentGateway
	notifs   NotificationSender
	log      zerolog.Logger

	feePercent     float64
	cancelCutoff   time.Duration
	paymentLinkTTL time.Duration

	now func() time.Time
}

func NewService(
	bookings BookingRepository,
	rooms RoomRepository,
	hours OperatingHoursLister,
	owners OwnerResolver,
	gateway PaymentGateway,
	notifs NotificationSender,
	log zerolog.Logger,
	feePercent float64,
	cancelCutoff time.Duration,
	paymentLinkTTL time.Duration,
) *Service {
	return &Service{
		bookings:       bookings,
		rooms:          rooms,
		hours:          hours,
		owners:         owners,
		gateway:        gateway,
		notifs:         notifs,
		log:            log,
		feePercent:     feePercent,
		cancelCutoff:   cancelCutoff,
		paymentLinkTTL: paymentLinkTTL,
		now:            time.Now,
	}
}

// CreateBooking inserts a pending booking and issues a payment link. The
// availability listing is only a snapshot; the authoritative collision guard
// is the overlap re-check inside the insert transaction plus the
// no-overbooking constraint.
func (s *Service) CreateBooking(ctx context.Context, req CreateBookingRequest) (*domain.Booking, error) {
	room, err := s.rooms.GetByID(ctx, req.RoomID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	addr, err := s.rooms.GetAddressForRoom(ctx, req.RoomID)
	if err != nil {
		return nil, err
	}
	loc := addr.Location()

	day, err := time.ParseInLocation("2006-01-02", req.Date, loc)
	if err != nil {
		return nil, ErrValidation
	}
	startAt, err := combine(day, req.StartTime, loc)
	if err != nil {
		return nil, ErrValidation
	}

	endDay := day
	var endDate *time.Time
	if req.EndDate != "" {
		d, err := time.ParseInLocation("2006-01-02", req.EndDate, loc)
		if err != nil {
			return nil, ErrValidation
		}
		endDay = d
		endDate = &d
	}
	endAt, err := combine(endDay, req.EndTime, loc)
	if err != nil {
		return nil, ErrValidation
	}

	if !endAt.After(startAt) {
		return nil, ErrValidation
	}
	if startAt.Before(s.now()) {
		return nil, ErrValidation
	}
	if err := s.checkOperatingWindow(ctx, addr.ID, day, startAt, endAt, req.EndDate != "", loc); err != nil {
		return nil, err
	}

	hours := endAt.Sub(startAt).Hours()
	total := math.Round(hours*room.PricePerHour*100) / 100

	b := &domain.Booking{
		RoomID:     req.RoomID,
		UserID:     req.UserID,
		Status:     domain.BookingPending,
		Date:       day,
		StartAt:    startAt,
		EndAt:      endAt,
		EndDate:    endDate,
		TotalPrice: total,
	}

	if err := s.bookings.Create(ctx, b); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.ConstraintName == "idx_no_overbooking" &&
			(pgErr.Code == pgExclusionViolation || pgErr.Code == pgUniqueViolation) {
			return nil, ErrOverbooking
		}
		if errors.Is(err, repository.ErrOverlappingBooking) {
			return nil, ErrNotAvailable
		}
		return nil, err
	}

	session, err := s.gateway.CreateSession(ctx, b.ID, total, fmt.Sprintf("Booking #%d, %s", b.ID, room.Name))
	if err != nil {
		s.log.Error().Err(err).Int64("booking_id", b.ID).Msg("payment session creation failed")
		return nil, fmt.Errorf("%w: %v", ErrPaymentFailed, err)
	}
	if err := s.bookings.SetPaymentLink(ctx, b.ID, session.URL, session.Ref, session.ExpiresAt); err != nil {
		return nil, err
	}
	b.PaymentLink = session.URL
	b.PaymentRef = session.Ref
	b.PaymentLinkExpiresAt = &session.ExpiresAt

	metrics.IncBookingTransition(string(domain.BookingPending))
	if s.notifs != nil {
		if err := s.notifs.NotifyBookingCreated(ctx, b.UserID, b.ID); err != nil {
			s.log.Warn().Err(err).Int64("booking_id", b.ID).Msg("booking created notification failed")
		}
	}
	return b, nil
}

// ConfirmPayment transitions a pending booking to paid after the gateway
// confirms the session completed. The status change and the studio balance
// credit (total minus the platform service fee) commit in one transaction.
// Replayed confirmations for an already-paid booking are a no-op.
func (s *Service) ConfirmPayment(ctx context.Context, bookingID int64, paymentRef string) (*domain.Booking, error) {
	b, err := s.bookings.GetByID(ctx, bookingID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if b.Status == domain.BookingPaid {
		return b, nil
	}
	if b.Status != domain.BookingPending {
		return nil, ErrInvalidStatusTransition
	}

	status, err := s.gateway.VerifySession(ctx, paymentRef)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPaymentFailed, err)
	}
	if status.Expired {
		return nil, fmt.Errorf("%w: payment session expired", ErrPaymentFailed)
	}
	if !status.Completed {
		reason := status.Reason
		if reason == "" {
			reason = "payment session not completed"
		}
		return nil, fmt.Errorf("%w: %s", ErrPaymentFailed, reason)
	}

	addr, err := s.rooms.GetAddressForRoom(ctx, b.RoomID)
	if err != nil {
		return nil, err
	}
	credit := s.netAmount(b.TotalPrice)

	updated, err := s.bookings.MarkPaid(ctx, b.ID, paymentRef, addr.ID, credit)
	if err != nil {
		if errors.Is(err, repository.ErrStaleStatus) {
			return nil, ErrInvalidStatusTransition
		}
		return nil, err
	}

	metrics.IncBookingTransition(string(domain.BookingPaid))
	s.log.Info().
		Int64("booking_id", b.ID).
		Float64("credit", credit).
		Msg("booking paid")

	if s.notifs != nil {
		if err := s.notifs.NotifyBookingPaid(ctx, updated.UserID, updated.ID); err != nil {
			s.log.Warn().Err(err).Int64("booking_id", updated.ID).Msg("booking paid notification failed")
		}
	}
	return updated, nil
}

// Cancel cancels a paid booking. The customer may cancel up to the
// configured cutoff before the start (evaluated in the studio's timezone);
// the studio owner may cancel at any time. The refund runs first: if it
// fails the booking stays paid and the call is safe to retry.
func (s *Service) Cancel(ctx context.Context, bookingID, actingUserID int64) (*domain.Booking, float64, error) {
	b, err := s.bookings.GetByID(ctx, bookingID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, 0, ErrNotFound
		}
		return nil, 0, err
	}

	addr, err := s.rooms.GetAddressForRoom(ctx, b.RoomID)
	if err != nil {
		return nil, 0, err
	}

	owner, err := s.owners.GetOwner(ctx, addr.ID)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, 0, err
	}
	isOwner := owner != nil && owner.UserID == actingUserID
	isCustomer := b.UserID == actingUserID
	if !isOwner && !isCustomer {
		return nil, 0, ErrUnauthorized
	}

	if b.Status != domain.BookingPaid {
		return nil, 0, ErrInvalidStatusTransition
	}

	if isCustomer && !isOwner {
		now := s.now().In(addr.Location())
		if b.StartAt.Sub(now) < s.cancelCutoff {
			return nil, 0, ErrCancellationTooLate
		}
	}

	refund := b.TotalPrice
	if err := s.gateway.Refund(ctx, b.PaymentRef, refund); err != nil {
		s.log.Error().Err(err).Int64("booking_id", b.ID).Msg("refund failed, booking stays paid")
		return nil, 0, fmt.Errorf("%w: %v", ErrRefundFailed, err)
	}

	updated, err := s.bookings.CancelAndDebit(ctx, b.ID, addr.ID, refund)
	if err != nil {
		if errors.Is(err, repository.ErrStaleStatus) {
			return nil, 0, ErrInvalidStatusTransition
		}
		return nil, 0, err
	}

	metrics.IncBookingTransition(string(domain.BookingCancelled))
	s.log.Info().
		Int64("booking_id", b.ID).
		Int64("acting_user_id", actingUserID).
		Bool("by_owner", isOwner).
		Float64("refunded", refund).
		Msg("booking cancelled")

	if s.notifs != nil {
		if err := s.notifs.NotifyBookingCancelled(ctx, updated.UserID, updated.ID, "refund issued"); err != nil {
			s.log.Warn().Err(err).Int64("booking_id", updated.ID).Msg("cancellation notification failed")
		}
	}
	return updated, refund, nil
}

// ExpireIfStale transitions a pending booking whose payment link has lapsed
// to expired. Idempotent: anything already expired or not pending returns
// false with no state change. Payment-link data is kept for audit.
func (s *Service) ExpireIfStale(ctx context.Context, b *domain.Booking) (bool, error) {
	if b.Status != domain.BookingPending {
		return false, nil
	}
	if b.PaymentLinkExpiresAt == nil || b.PaymentLinkExpiresAt.After(s.now().UTC()) {
		return false, nil
	}

	changed, err := s.bookings.MarkExpired(ctx, b.ID)
	if err != nil {
		return false, err
	}
	if changed {
		metrics.IncBookingTransition(string(domain.BookingExpired))
	}
	return changed, nil
}

// GetByID retrieves a booking by ID.
func (s *Service) GetByID(ctx context.Context, bookingID int64) (*domain.Booking, error) {
	b, err := s.bookings.GetByID(ctx, bookingID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return b, nil
}

// checkOperatingWindow rejects intervals outside the resolved window for the
// start day. Multi-day bookings are only valid at 24/7 addresses, capped at
// the same horizon the end-time listing offers.
func (s *Service) checkOperatingWindow(ctx context.Context, addressID int64, day, startAt, endAt time.Time, multiDay bool, loc *time.Location) error {
	entries, err := s.hours.ListByAddress(ctx, addressID)
	if err != nil {
		return err
	}

	w := schedule.Resolve(entries, day, loc)
	if w == nil {
		return ErrOutsideOperatingHours
	}
	if w.Is24x7 {
		if endAt.Sub(startAt) > schedule.MaxOpenEndedSpan {
			return ErrValidation
		}
		return nil
	}
	if multiDay {
		return ErrValidation
	}
	if startAt.Before(w.Open) || endAt.After(w.Close) {
		return ErrOutsideOperatingHours
	}
	return nil
}

func (s *Service) netAmount(total float64) float64 {
	return math.Round(total*(100-s.feePercent)) / 100
}

func combine(day time.Time, hhmm string, loc *time.Location) (time.Time, error) {
	t, err := time.Parse("15:04", hhmm)
	if err != nil {
		return time.Time{}, err
	}
	return time.Date(day.Year(), day.Month(), day.Day(), t.Hour(), t.Minute(), 0, 0, loc), nil
}
