package domain

import "time"

type Room struct {
	ID           int64   `json:"id"`
	AddressID    int64   `json:"address_id"`
	Name         string  `json:"name" validate:"required"`
	Description  string  `json:"description,omitempty"`
	AreaSqm      int     `json:"area_sqm"`
	Capacity     int     `json:"capacity"`
	PricePerHour float64 `json:"price_per_hour" validate:"required,gte=0"`
	IsActive     bool    `json:"is_active"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Address *Address `json:"address,omitempty" gorm:"foreignKey:AddressID"`
}
