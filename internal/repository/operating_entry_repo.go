package repository

import (
	"context"
	"time"

	"studiobook/internal/domain"

	"gorm.io/gorm"
)

type OperatingEntryRepository struct {
	db *gorm.DB
}

func NewOperatingEntryRepository(db *gorm.DB) *OperatingEntryRepository {
	return &OperatingEntryRepository{db: db}
}

type operatingEntryModel struct {
	ID        int64     `gorm:"column:id;primaryKey"`
	AddressID int64     `gorm:"column:address_id"`
	Mode      string    `gorm:"column:mode"`
	DayOfWeek *int      `gorm:"column:day_of_week"`
	OpenTime  *string   `gorm:"column:open_time"`
	CloseTime *string   `gorm:"column:close_time"`
	IsClosed  bool      `gorm:"column:is_closed"`
	CreatedAt time.Time `gorm:"column:created_at"`
}

func (operatingEntryModel) TableName() string { return "operating_entries" }

func (r *OperatingEntryRepository) ListByAddress(ctx context.Context, addressID int64) ([]domain.OperatingEntry, error) {
	var ms []operatingEntryModel
	err := r.db.WithContext(ctx).
		Where("address_id = ?", addressID).
		Order("id").
		Find(&ms).Error
	if err != nil {
		return nil, err
	}

	out := make([]domain.OperatingEntry, 0, len(ms))
	for _, m := range ms {
		out = append(out, domain.OperatingEntry{
			ID:        m.ID,
			AddressID: m.AddressID,
			Mode:      domain.OperatingMode(m.Mode),
			DayOfWeek: m.DayOfWeek,
			OpenTime:  m.OpenTime,
			CloseTime: m.CloseTime,
			IsClosed:  m.IsClosed,
			CreatedAt: m.CreatedAt,
		})
	}
	return out, nil
}

// ReplaceForAddress swaps an address's schedule wholesale: old entries are
// deleted and the new set inserted in one transaction, so readers never see
// a partially saved schedule.
func (r *OperatingEntryRepository) ReplaceForAddress(ctx context.Context, addressID int64, entries []domain.OperatingEntry) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("address_id = ?", addressID).Delete(&operatingEntryModel{}).Error; err != nil {
			return err
		}

		for _, e := range entries {
			m := operatingEntryModel{
				AddressID: addressID,
				Mode:      string(e.Mode),
				DayOfWeek: e.DayOfWeek,
				OpenTime:  e.OpenTime,
				CloseTime: e.CloseTime,
				IsClosed:  e.IsClosed,
			}
			if err := tx.Create(&m).Error; err != nil {
				return err
			}
		}
		return nil
	})
}
