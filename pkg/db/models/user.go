package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/mkcamara/graniteledger-backend/pkg/enums"
)

// User is an operator account. Agents record their own deliveries; admins see
// everything and manage settings and accounts.
type User struct {
	ID           uuid.UUID      `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Email        string         `gorm:"column:email;not null;uniqueIndex"`
	PasswordHash string         `gorm:"column:password_hash;not null"`
	FullName     string         `gorm:"column:full_name;not null"`
	Role         enums.UserRole `gorm:"column:role;type:text;not null;default:'agent'"`
	Active       bool           `gorm:"column:active;not null;default:true"`
	MustChangePW bool           `gorm:"column:must_change_pw;not null;default:false"`
	LastLoginAt  *time.Time     `gorm:"column:last_login_at"`
	CreatedAt    time.Time      `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt    time.Time      `gorm:"column:updated_at;autoUpdateTime"`
}
