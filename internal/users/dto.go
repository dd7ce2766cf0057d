package users

import (
	"time"

	"github.com/google/uuid"

	"github.com/mkcamara/graniteledger-backend/pkg/db/models"
)

// UserDTO is the account payload returned to clients. The password hash
// never leaves the service layer.
type UserDTO struct {
	ID           uuid.UUID  `json:"id"`
	Email        string     `json:"email"`
	FullName     string     `json:"full_name"`
	Role         string     `json:"role"`
	Active       bool       `json:"active"`
	MustChangePW bool       `json:"must_change_password"`
	LastLoginAt  *time.Time `json:"last_login_at,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
}

// FromModel maps the persisted user onto the response payload.
func FromModel(u *models.User) UserDTO {
	return UserDTO{
		ID:           u.ID,
		Email:        u.Email,
		FullName:     u.FullName,
		Role:         string(u.Role),
		Active:       u.Active,
		MustChangePW: u.MustChangePW,
		LastLoginAt:  u.LastLoginAt,
		CreatedAt:    u.CreatedAt,
	}
}
