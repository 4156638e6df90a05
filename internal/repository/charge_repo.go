package repository

import (
	"context"
	"time"

	"gorm.io/gorm"
)

// Charge statuses. A charge is the payment record backing a booking's
// hosted checkout session; rows are never deleted.
const (
	ChargeCreated  = "created"
	ChargePaid     = "paid"
	ChargeRefunded = "refunded"
	ChargeFailed   = "failed"
)

type Charge struct {
	ID        string     `gorm:"column:id;primaryKey"`
	BookingID int64      `gorm:"column:booking_id"`
	Amount    float64    `gorm:"column:amount"`
	Status    string     `gorm:"column:status"`
	PayURL    string     `gorm:"column:pay_url"`
	Signature string     `gorm:"column:signature"`
	ExpiresAt time.Time  `gorm:"column:expires_at"`
	RawBody   *string    `gorm:"column:raw_body"`
	PaidAt    *time.Time `gorm:"column:paid_at"`
	CreatedAt time.Time  `gorm:"column:created_at"`
	UpdatedAt time.Time  `gorm:"column:updated_at"`
}

func (Charge) TableName() string { return "charges" }

type ChargeRepository struct {
	db *gorm.DB
}

func NewChargeRepository(db *gorm.DB) *ChargeRepository {
	return &ChargeRepository{db: db}
}

func (r *ChargeRepository) Create(ctx context.Context, c *Charge) error {
	return r.db.WithContext(ctx).Create(c).Error
}

func (r *ChargeRepository) GetByID(ctx context.Context, id string) (*Charge, error) {
	var c Charge
	if err := r.db.WithContext(ctx).First(&c, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &c, nil
}

// MarkPaidIdempotent flips created→paid, storing the provider callback body
// for audit. Returns false when the charge was already paid, so replayed
// webhooks are harmless.
func (r *ChargeRepository) MarkPaidIdempotent(ctx context.Context, id string, rawBody string, paidAt time.Time) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&Charge{}).
		Where("id = ? AND status = ?", id, ChargeCreated).
		Updates(map[string]interface{}{
			"status":   ChargePaid,
			"raw_body": rawBody,
			"paid_at":  paidAt,
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

// MarkRefunded flips paid→refunded. Already-refunded charges are a no-op,
// which keeps the booking cancel path safe to retry.
func (r *ChargeRepository) MarkRefunded(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).
		Model(&Charge{}).
		Where("id = ? AND status = ?", id, ChargePaid).
		Update("status", ChargeRefunded).Error
}

func (r *ChargeRepository) MarkFailed(ctx context.Context, id string, rawBody string) error {
	return r.db.WithContext(ctx).
		Model(&Charge{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"status":   ChargeFailed,
			"raw_body": rawBody,
		}).Error
}
