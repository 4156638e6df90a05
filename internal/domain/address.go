package domain

import "time"

// Company is the legal entity a studio owner operates under. The owning user
// is linked through company_admins and resolved via OwnerRepository.
type Company struct {
	ID        int64      `json:"id"`
	Name      string     `json:"name" validate:"required"`
	City      string     `json:"city"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
	DeletedAt *time.Time `json:"-"`
}

// Address is a physical studio location. Operating entries, rooms and the
// running payout balance hang off the address.
type Address struct {
	ID        int64  `json:"id"`
	CompanyID int64  `json:"company_id"`
	Street    string `json:"street"`
	City      string `json:"city"`
	// Timezone is an IANA name; slot boundaries and the cancellation cutoff
	// are evaluated in this zone. Empty means UTC.
	Timezone string `json:"timezone"`
	// AvailableBalance is the studio's running payout balance. Mutated only
	// inside the confirm/cancel transactions, under a row lock.
	AvailableBalance float64 `json:"available_balance"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Rooms          []Room           `json:"rooms,omitempty"`
	OperatingHours []OperatingEntry `json:"operating_hours,omitempty" gorm:"foreignKey:AddressID"`
}

// Location resolves the address timezone, falling back to UTC.
func (a *Address) Location() *time.Location {
	if a.Timezone == "" {
		return time.UTC
	}
	loc, err := time.LoadLocation(a.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// Owner is the resolved studio owner for an address: the admin user of the
// company that owns it.
type Owner struct {
	UserID    int64  `json:"user_id"`
	CompanyID int64  `json:"company_id"`
	Email     string `json:"email"`
	Name      string `json:"name"`
}
