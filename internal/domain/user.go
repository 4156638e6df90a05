package domain

import "time"

type Role string

const (
	RoleClient      Role = "client"
	RoleStudioOwner Role = "studio_owner"
	RoleAdmin       Role = "admin"
)

type User struct {
	ID           int64  `json:"id"`
	Email        string `json:"email" validate:"required,email"`
	PasswordHash string `json:"-"`
	Name         string `json:"name"`
	Phone        string `json:"phone,omitempty"`
	Role         Role   `json:"role"`

	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
	DeletedAt *time.Time `json:"-"`
}
