package models

import (
	"time"

	"github.com/mkcamara/graniteledger-backend/pkg/db/types"
)

// AppSettingsID pins the single settings row.
const AppSettingsID = 1

// AppSettings is the tenant-wide configuration singleton. The form layer reads
// it to populate defaults and to resolve a unit price from a sand type; the
// computational core never touches it.
type AppSettings struct {
	ID                    int              `gorm:"column:id;primaryKey"`
	DefaultCommissionRate float64          `gorm:"column:default_commission_rate;not null;default:35"`
	DefaultOtherFees      float64          `gorm:"column:default_other_fees;not null;default:0"`
	CurrencyCode          string           `gorm:"column:currency_code;not null;default:'GNF'"`
	SandTypes             types.StringList `gorm:"column:sand_types;type:jsonb;serializer:json"`
	GranitePrices         types.PriceMap   `gorm:"column:granite_prices;type:jsonb;serializer:json"`
	PaymentMethods        types.StringList `gorm:"column:payment_methods;type:jsonb;serializer:json"`
	UpdatedAt             time.Time        `gorm:"column:updated_at;autoUpdateTime"`
}

// DefaultAppSettings returns the row seeded on first read when no settings
// have been persisted yet.
func DefaultAppSettings() AppSettings {
	return AppSettings{
		ID:                    AppSettingsID,
		DefaultCommissionRate: 35,
		DefaultOtherFees:      0,
		CurrencyCode:          "GNF",
		SandTypes:             types.StringList{},
		GranitePrices:         types.PriceMap{},
		PaymentMethods:        types.StringList{},
	}
}
