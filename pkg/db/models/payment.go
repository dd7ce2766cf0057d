package models

import (
	"time"

	"github.com/google/uuid"
)

// Payment is a partial or full settlement against a delivery's gross amount.
// Payments are never mutated in place; a correction is a delete plus re-add.
// Storage does not reject over-payment.
type Payment struct {
	ID          uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	DeliveryID  uuid.UUID `gorm:"column:delivery_id;type:uuid;not null;index"`
	Amount      float64   `gorm:"column:amount;not null"`
	PaymentDate time.Time `gorm:"column:payment_date;not null"`
	Method      string    `gorm:"column:method;not null"`
	Reference   *string   `gorm:"column:reference"`
	Notes       *string   `gorm:"column:notes"`
	CreatedAt   time.Time `gorm:"column:created_at;autoCreateTime"`
}
