package booking

import (
	"context"
	"time"

	"studiobook/internal/domain"
)

// BookingRepository is the persistence collaborator. The mutating methods
// are transactional: status transition and balance change commit together or
// not at all.
type BookingRepository interface {
	// Create inserts a pending booking. The overlap check is re-run inside
	// the insert transaction; the no-overbooking constraint is the last line
	// of defence against concurrent inserts.
	Create(ctx context.Context, b *domain.Booking) error
	GetByID(ctx context.Context, id int64) (*domain.Booking, error)
	SetPaymentLink(ctx context.Context, bookingID int64, link, ref string, expiresAt time.Time) error
	// MarkPaid transitions pending→paid and credits the address balance in
	// one transaction (balance row locked FOR UPDATE).
	MarkPaid(ctx context.Context, bookingID int64, paymentRef string, addressID int64, credit float64) (*domain.Booking, error)
	// CancelAndDebit transitions paid→cancelled and debits the address
	// balance in one transaction.
	CancelAndDebit(ctx context.Context, bookingID int64, addressID int64, debit float64) (*domain.Booking, error)
	// MarkExpired transitions pending→expired. Returns false without error
	// when the booking was no longer pending (idempotent).
	MarkExpired(ctx context.Context, bookingID int64) (bool, error)
}

type RoomRepository interface {
	GetByID(ctx context.Context, id int64) (*domain.Room, error)
	GetAddressForRoom(ctx context.Context, roomID int64) (*domain.Address, error)
}

// OperatingHoursLister fetches the operating entries the create path checks
// the requested interval against.
type OperatingHoursLister interface {
	ListByAddress(ctx context.Context, addressID int64) ([]domain.OperatingEntry, error)
}

// OwnerResolver maps an address to its studio owner in a single lookup.
type OwnerResolver interface {
	GetOwner(ctx context.Context, addressID int64) (*domain.Owner, error)
}

// PaymentSession is a hosted checkout session issued for a pending booking.
type PaymentSession struct {
	Ref       string
	URL       string
	ExpiresAt time.Time
}

// PaymentSessionStatus is the gateway's verdict on a session.
type PaymentSessionStatus struct {
	Completed bool
	Expired   bool
	Reason    string
}

// PaymentGateway is the injected payment capability. Refund is idempotent on
// the gateway side, so a failed cancellation is safe to retry.
type PaymentGateway interface {
	CreateSession(ctx context.Context, bookingID int64, amount float64, description string) (*PaymentSession, error)
	VerifySession(ctx context.Context, ref string) (*PaymentSessionStatus, error)
	Refund(ctx context.Context, ref string, amount float64) error
}

// NotificationSender delivers booking events. Best-effort: callers log
// failures and move on.
type NotificationSender interface {
	NotifyBookingCreated(ctx context.Context, userID, bookingID int64) error
	NotifyBookingPaid(ctx context.Context, userID, bookingID int64) error
	NotifyBookingCancelled(ctx context.Context, userID, bookingID int64, reason string) error
	NotifyBookingExpired(ctx context.Context, userID, bookingID int64) error
}
