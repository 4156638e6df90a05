package repository

import (
	"context"
	"errors"
	"time"

	"studiobook/internal/domain"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ErrOverlappingBooking is returned when the transactional re-check at insert
// time finds a conflicting active booking.
var ErrOverlappingBooking = errors.New("overlapping booking")

// ErrStaleStatus is returned when a guarded transition matched no row
// (the booking was no longer in the expected status).
var ErrStaleStatus = errors.New("booking status changed concurrently")

type BookingRepository struct {
	db *gorm.DB
}

func NewBookingRepository(db *gorm.DB) *BookingRepository {
	return &BookingRepository{db: db}
}

type bookingModel struct {
	ID                   int64      `gorm:"column:id;primaryKey"`
	RoomID               int64      `gorm:"column:room_id"`
	UserID               int64      `gorm:"column:user_id"`
	Status               string     `gorm:"column:status"`
	Date                 time.Time  `gorm:"column:date"`
	StartAt              time.Time  `gorm:"column:start_at"`
	EndAt                time.Time  `gorm:"column:end_at"`
	EndDate              *time.Time `gorm:"column:end_date"`
	TotalPrice           float64    `gorm:"column:total_price"`
	PaymentLink          *string    `gorm:"column:payment_link"`
	PaymentLinkExpiresAt *time.Time `gorm:"column:payment_link_expires_at"`
	PaymentRef           *string    `gorm:"column:payment_ref"`
	CreatedAt            time.Time  `gorm:"column:created_at"`
	UpdatedAt            time.Time  `gorm:"column:updated_at"`
	CancelledAt          *time.Time `gorm:"column:cancelled_at"`
}

func (bookingModel) TableName() string { return "bookings" }

func toDomainBooking(m bookingModel) *domain.Booking {
	b := &domain.Booking{
		ID:                   m.ID,
		RoomID:               m.RoomID,
		UserID:               m.UserID,
		Status:               domain.BookingStatus(m.Status),
		Date:                 m.Date,
		StartAt:              m.StartAt,
		EndAt:                m.EndAt,
		EndDate:              m.EndDate,
		TotalPrice:           m.TotalPrice,
		PaymentLinkExpiresAt: m.PaymentLinkExpiresAt,
		CreatedAt:            m.CreatedAt,
		UpdatedAt:            m.UpdatedAt,
		CancelledAt:          m.CancelledAt,
	}
	if m.PaymentLink != nil {
		b.PaymentLink = *m.PaymentLink
	}
	if m.PaymentRef != nil {
		b.PaymentRef = *m.PaymentRef
	}
	return b
}

func toBookingModel(b *domain.Booking) bookingModel {
	m := bookingModel{
		ID:                   b.ID,
		RoomID:               b.RoomID,
		UserID:               b.UserID,
		Status:               string(b.Status),
		Date:                 b.Date,
		StartAt:              b.StartAt,
		EndAt:                b.EndAt,
		EndDate:              b.EndDate,
		TotalPrice:           b.TotalPrice,
		PaymentLinkExpiresAt: b.PaymentLinkExpiresAt,
		CreatedAt:            b.CreatedAt,
		UpdatedAt:            b.UpdatedAt,
		CancelledAt:          b.CancelledAt,
	}
	if b.PaymentLink != "" {
		v := b.PaymentLink
		m.PaymentLink = &v
	}
	if b.PaymentRef != "" {
		v := b.PaymentRef
		m.PaymentRef = &v
	}
	return m
}

// Create inserts a pending booking, re-checking for overlaps inside the same
// transaction. The room row is locked first so concurrent inserts for the
// same room serialize and cannot both pass the count at READ COMMITTED; the
// idx_no_overbooking exclusion constraint (migrations/0001_init.sql) is the
// backstop on Postgres.
func (r *BookingRepository) Create(ctx context.Context, b *domain.Booking) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := lockRoom(tx, b.RoomID); err != nil {
			return err
		}

		var cnt int64
		q := `
SELECT COUNT(1)
FROM bookings
WHERE room_id = ?
  AND status IN ('pending', 'paid')
  AND start_at < ?
  AND end_at > ?
`
		if err := tx.Raw(q, b.RoomID, b.EndAt, b.StartAt).Scan(&cnt).Error; err != nil {
			return err
		}
		if cnt > 0 {
			return ErrOverlappingBooking
		}

		m := toBookingModel(b)
		if err := tx.Create(&m).Error; err != nil {
			return err
		}
		*b = *toDomainBooking(m)
		return nil
	})
}

func (r *BookingRepository) GetByID(ctx context.Context, id int64) (*domain.Booking, error) {
	var m bookingModel
	if err := r.db.WithContext(ctx).First(&m, id).Error; err != nil {
		return nil, err
	}
	return toDomainBooking(m), nil
}

func (r *BookingRepository) SetPaymentLink(ctx context.Context, bookingID int64, link, ref string, expiresAt time.Time) error {
	return r.db.WithContext(ctx).
		Model(&bookingModel{}).
		Where("id = ?", bookingID).
		Updates(map[string]interface{}{
			"payment_link":            link,
			"payment_ref":             ref,
			"payment_link_expires_at": expiresAt,
		}).Error
}

// MarkPaid flips pending→paid and credits the address balance atomically.
// The address row is locked first so concurrent confirms and refunds on the
// same studio serialize.
func (r *BookingRepository) MarkPaid(ctx context.Context, bookingID int64, paymentRef string, addressID int64, credit float64) (*domain.Booking, error) {
	var m bookingModel
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := lockAddress(tx, addressID); err != nil {
			return err
		}

		res := tx.Model(&bookingModel{}).
			Where("id = ? AND status = ?", bookingID, string(domain.BookingPending)).
			Updates(map[string]interface{}{
				"status":      string(domain.BookingPaid),
				"payment_ref": paymentRef,
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrStaleStatus
		}

		if err := adjustBalance(tx, addressID, credit); err != nil {
			return err
		}
		return tx.First(&m, bookingID).Error
	})
	if err != nil {
		return nil, err
	}
	return toDomainBooking(m), nil
}

// CancelAndDebit flips paid→cancelled and debits the address balance
// atomically.
func (r *BookingRepository) CancelAndDebit(ctx context.Context, bookingID int64, addressID int64, debit float64) (*domain.Booking, error) {
	var m bookingModel
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := lockAddress(tx, addressID); err != nil {
			return err
		}

		now := time.Now().UTC()
		res := tx.Model(&bookingModel{}).
			Where("id = ? AND status = ?", bookingID, string(domain.BookingPaid)).
			Updates(map[string]interface{}{
				"status":       string(domain.BookingCancelled),
				"cancelled_at": now,
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrStaleStatus
		}

		if err := adjustBalance(tx, addressID, -debit); err != nil {
			return err
		}
		return tx.First(&m, bookingID).Error
	})
	if err != nil {
		return nil, err
	}
	return toDomainBooking(m), nil
}

// MarkExpired flips pending→expired. The status guard in the WHERE clause
// makes repeat calls a no-op; payment-link columns are left untouched for
// audit.
func (r *BookingRepository) MarkExpired(ctx context.Context, bookingID int64) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&bookingModel{}).
		Where("id = ? AND status = ?", bookingID, string(domain.BookingPending)).
		Update("status", string(domain.BookingExpired))
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

// ListActiveForRoomOn returns active bookings occupying any part of the given
// day, including multi-day bookings spanning it.
func (r *BookingRepository) ListActiveForRoomOn(ctx context.Context, roomID int64, day time.Time) ([]domain.Booking, error) {
	var ms []bookingModel
	q := `
SELECT *
FROM bookings
WHERE room_id = ?
  AND status IN ('pending', 'paid')
  AND date <= ?
  AND COALESCE(end_date, date) >= ?
ORDER BY start_at
`
	if err := r.db.WithContext(ctx).Raw(q, roomID, day, day).Scan(&ms).Error; err != nil {
		return nil, err
	}
	return toDomainBookings(ms), nil
}

// ListActiveForRoomFrom returns active bookings ending after the given
// instant, bounding the forward search for end-time candidates.
func (r *BookingRepository) ListActiveForRoomFrom(ctx context.Context, roomID int64, from time.Time) ([]domain.Booking, error) {
	var ms []bookingModel
	q := `
SELECT *
FROM bookings
WHERE room_id = ?
  AND status IN ('pending', 'paid')
  AND end_at > ?
ORDER BY start_at
`
	if err := r.db.WithContext(ctx).Raw(q, roomID, from).Scan(&ms).Error; err != nil {
		return nil, err
	}
	return toDomainBookings(ms), nil
}

// ListStalePending returns pending bookings whose payment link lapsed before
// the given instant.
func (r *BookingRepository) ListStalePending(ctx context.Context, before time.Time) ([]domain.Booking, error) {
	var ms []bookingModel
	err := r.db.WithContext(ctx).
		Where("status = ? AND payment_link_expires_at IS NOT NULL AND payment_link_expires_at < ?",
			string(domain.BookingPending), before).
		Order("id").
		Find(&ms).Error
	if err != nil {
		return nil, err
	}
	return toDomainBookings(ms), nil
}

// ExpireBatch transitions the given pending bookings to expired in a single
// transaction: the batch commits whole or rolls back whole.
func (r *BookingRepository) ExpireBatch(ctx context.Context, ids []int64) error {
	if len(ids) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&bookingModel{}).
			Where("id IN ? AND status = ?", ids, string(domain.BookingPending)).
			Update("status", string(domain.BookingExpired))
		return res.Error
	})
}

func toDomainBookings(ms []bookingModel) []domain.Booking {
	out := make([]domain.Booking, 0, len(ms))
	for _, m := range ms {
		out = append(out, *toDomainBooking(m))
	}
	return out
}

func lockRoom(tx *gorm.DB, roomID int64) error {
	var locked struct {
		ID int64 `gorm:"column:id"`
	}
	return tx.Table("rooms").
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ?", roomID).
		Take(&locked).Error
}

func lockAddress(tx *gorm.DB, addressID int64) error {
	var locked struct {
		ID int64 `gorm:"column:id"`
	}
	return tx.Table("addresses").
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ?", addressID).
		Take(&locked).Error
}

func adjustBalance(tx *gorm.DB, addressID int64, delta float64) error {
	return tx.Table("addresses").
		Where("id = ?", addressID).
		Update("available_balance", gorm.Expr("available_balance + ?", delta)).Error
}
