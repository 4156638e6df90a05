package repository

import (
	"context"

	"studiobook/internal/domain"

	"gorm.io/gorm"
)

// OwnerRepository resolves the studio owner for an address in one query,
// instead of walking address→company→company_admins→users hop by hop in
// service code.
type OwnerRepository struct {
	db *gorm.DB
}

func NewOwnerRepository(db *gorm.DB) *OwnerRepository {
	return &OwnerRepository{db: db}
}

func (r *OwnerRepository) GetOwner(ctx context.Context, addressID int64) (*domain.Owner, error) {
	var row struct {
		UserID    int64  `gorm:"column:user_id"`
		CompanyID int64  `gorm:"column:company_id"`
		Email     string `gorm:"column:email"`
		Name      string `gorm:"column:name"`
	}
	q := `
SELECT u.id AS user_id, c.id AS company_id, u.email, u.name
FROM addresses a
JOIN companies c ON c.id = a.company_id
JOIN company_admins ca ON ca.company_id = c.id
JOIN users u ON u.id = ca.user_id
WHERE a.id = ?
LIMIT 1
`
	tx := r.db.WithContext(ctx).Raw(q, addressID).Scan(&row)
	if tx.Error != nil {
		return nil, tx.Error
	}
	if tx.RowsAffected == 0 {
		return nil, gorm.ErrRecordNotFound
	}

	return &domain.Owner{
		UserID:    row.UserID,
		CompanyID: row.CompanyID,
		Email:     row.Email,
		Name:      row.Name,
	}, nil
}
