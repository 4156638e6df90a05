package repository

import (
	"context"
	"time"

	"studiobook/internal/domain"

	"gorm.io/gorm"
)

type RoomRepository struct {
	db *gorm.DB
}

func NewRoomRepository(db *gorm.DB) *RoomRepository {
	return &RoomRepository{db: db}
}

type roomModel struct {
	ID           int64     `gorm:"column:id;primaryKey"`
	AddressID    int64     `gorm:"column:address_id"`
	Name         string    `gorm:"column:name"`
	Description  *string   `gorm:"column:description"`
	AreaSqm      int       `gorm:"column:area_sqm"`
	Capacity     int       `gorm:"column:capacity"`
	PricePerHour float64   `gorm:"column:price_per_hour"`
	IsActive     bool      `gorm:"column:is_active"`
	CreatedAt    time.Time `gorm:"column:created_at"`
	UpdatedAt    time.Time `gorm:"column:updated_at"`
}

func (roomModel) TableName() string { return "rooms" }

func (r *RoomRepository) GetByID(ctx context.Context, id int64) (*domain.Room, error) {
	var m roomModel
	if err := r.db.WithContext(ctx).First(&m, id).Error; err != nil {
		return nil, err
	}

	room := &domain.Room{
		ID:           m.ID,
		AddressID:    m.AddressID,
		Name:         m.Name,
		AreaSqm:      m.AreaSqm,
		Capacity:     m.Capacity,
		PricePerHour: m.PricePerHour,
		IsActive:     m.IsActive,
		CreatedAt:    m.CreatedAt,
		UpdatedAt:    m.UpdatedAt,
	}
	if m.Description != nil {
		room.Description = *m.Description
	}
	return room, nil
}

// GetAddressForRoom resolves the owning address (timezone and balance
// holder) for a room.
func (r *RoomRepository) GetAddressForRoom(ctx context.Context, roomID int64) (*domain.Address, error) {
	var row struct {
		ID               int64   `gorm:"column:id"`
		CompanyID        int64   `gorm:"column:company_id"`
		Street           string  `gorm:"column:street"`
		City             string  `gorm:"column:city"`
		Timezone         *string `gorm:"column:timezone"`
		AvailableBalance float64 `gorm:"column:available_balance"`
	}
	q := `
SELECT a.id, a.company_id, a.street, a.city, a.timezone, a.available_balance
FROM addresses a
JOIN rooms r ON r.address_id = a.id
WHERE r.id = ?
`
	tx := r.db.WithContext(ctx).Raw(q, roomID).Scan(&row)
	if tx.Error != nil {
		return nil, tx.Error
	}
	if tx.RowsAffected == 0 {
		return nil, gorm.ErrRecordNotFound
	}

	addr := &domain.Address{
		ID:               row.ID,
		CompanyID:        row.CompanyID,
		Street:           row.Street,
		City:             row.City,
		AvailableBalance: row.AvailableBalance,
	}
	if row.Timezone != nil {
		addr.Timezone = *row.Timezone
	}
	return addr, nil
}
