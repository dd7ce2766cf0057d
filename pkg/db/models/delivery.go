package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/mkcamara/graniteledger-backend/pkg/enums"
)

// Delivery is one shipment. The financial fields are derived once at
// create/edit time and persisted verbatim; reads never recompute them.
//
// Which derived fields are authoritative depends on Scheme: granite_split
// records use the three-way split columns, legacy_commission records predate
// the split and use commission_amount/net_amount.
type Delivery struct {
	ID     uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	UserID uuid.UUID `gorm:"column:user_id;type:uuid;not null;index"`

	DeliveryDate time.Time             `gorm:"column:delivery_date;not null;index"`
	Client       string                `gorm:"column:client;not null"`
	SandType     string                `gorm:"column:sand_type;not null"`
	TruckNumber  string                `gorm:"column:truck_number"`
	Notes        *string               `gorm:"column:notes"`
	Scheme       enums.FinancialScheme `gorm:"column:scheme;type:text;not null;default:'granite_split'"`

	// Raw inputs.
	Volume         float64 `gorm:"column:volume;not null"`
	UnitPrice      float64 `gorm:"column:unit_price;not null"`
	CommissionRate float64 `gorm:"column:commission_rate;not null"`
	OtherFees      float64 `gorm:"column:other_fees;not null;default:0"`

	// Derived outputs, granite_split scheme.
	GrossAmount     float64 `gorm:"column:gross_amount;not null"`
	ManagementShare float64 `gorm:"column:management_share;not null;default:0"`
	PartnerShare    float64 `gorm:"column:partner_share;not null;default:0"`
	AgentCommission float64 `gorm:"column:agent_commission;not null;default:0"`
	ManagementNet   float64 `gorm:"column:management_net;not null;default:0"`
	TruckCount      int     `gorm:"column:truck_count;not null;default:1"`

	// Derived outputs, legacy_commission scheme.
	CommissionAmount float64 `gorm:"column:commission_amount;not null;default:0"`
	NetAmount        float64 `gorm:"column:net_amount;not null;default:0"`

	Payments []Payment `gorm:"foreignKey:DeliveryID;constraint:OnDelete:CASCADE"`

	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}
