package reports

import (
	"time"

	"github.com/google/uuid"
)

// StatementRow is one delivery line in the chronological account statement.
// RunningBalance accumulates the authoritative net of every row up to and
// including this one.
type StatementRow struct {
	DeliveryID       uuid.UUID `json:"delivery_id"`
	DeliveryDate     time.Time `json:"delivery_date"`
	Client           string    `json:"client"`
	SandType         string    `json:"sand_type,omitempty"`
	Scheme           string    `json:"scheme"`
	Volume           float64   `json:"volume"`
	GrossAmount      float64   `json:"gross_amount"`
	Commission       float64   `json:"commission"`
	NetAmount        float64   `json:"net_amount"`
	TotalPaid        float64   `json:"total_paid"`
	RemainingBalance float64   `json:"remaining_balance"`
	RunningBalance   float64   `json:"running_balance"`
}

// StatementDTO is the full statement payload.
type StatementDTO struct {
	Rows   []StatementRow `json:"rows"`
	Totals StatsDTO       `json:"totals"`
}

// StatsDTO mirrors the dashboard stat cards.
type StatsDTO struct {
	TotalGross        float64 `json:"total_gross"`
	TotalPartnerShare float64 `json:"total_partner_share"`
	TotalCommission   float64 `json:"total_commission"`
	TotalNet          float64 `json:"total_net"`
	TotalCollected    float64 `json:"total_collected"`
	TotalOutstanding  float64 `json:"total_outstanding"`
	InvoiceCount      int     `json:"invoice_count"`
	CurrencyCode      string  `json:"currency_code"`
}
