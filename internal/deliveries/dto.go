package deliveries

import (
	"time"

	"github.com/google/uuid"

	"github.com/mkcamara/graniteledger-backend/internal/finance"
	"github.com/mkcamara/graniteledger-backend/pkg/db/models"
)

// DeliveryDTO is the delivery payload returned to clients, annotated with
// the reconciliation figures the list and detail views render.
type DeliveryDTO struct {
	ID           uuid.UUID `json:"id"`
	UserID       uuid.UUID `json:"user_id"`
	DeliveryDate time.Time `json:"delivery_date"`
	Client       string    `json:"client"`
	SandType     string    `json:"sand_type"`
	TruckNumber  string    `json:"truck_number,omitempty"`
	Notes        *string   `json:"notes,omitempty"`
	Scheme       string    `json:"scheme"`

	Volume         float64 `json:"volume"`
	UnitPrice      float64 `json:"unit_price"`
	CommissionRate float64 `json:"commission_rate"`
	OtherFees      float64 `json:"other_fees"`

	GrossAmount     float64 `json:"gross_amount"`
	ManagementShare float64 `json:"management_share"`
	PartnerShare    float64 `json:"partner_share"`
	AgentCommission float64 `json:"agent_commission"`
	ManagementNet   float64 `json:"management_net"`
	TruckCount      int     `json:"truck_count"`

	CommissionAmount float64 `json:"commission_amount"`
	NetAmount        float64 `json:"net_amount"`

	TotalPaid        float64 `json:"total_paid"`
	RemainingBalance float64 `json:"remaining_balance"`
	Outstanding      float64 `json:"outstanding"`
	PaymentProgress  float64 `json:"payment_progress"`

	Payments []PaymentDTO `json:"payments"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// PaymentDTO represents one recorded payment.
type PaymentDTO struct {
	ID          uuid.UUID `json:"id"`
	DeliveryID  uuid.UUID `json:"delivery_id"`
	Amount      float64   `json:"amount"`
	PaymentDate time.Time `json:"payment_date"`
	Method      string    `json:"method,omitempty"`
	Reference   *string   `json:"reference,omitempty"`
	Notes       *string   `json:"notes,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// ListResult pairs a page of deliveries with the next cursor.
type ListResult struct {
	Deliveries []*DeliveryDTO `json:"deliveries"`
	NextCursor string         `json:"next_cursor,omitempty"`
}

// NewDeliveryDTO builds a DTO from the persisted model, deriving the
// reconciliation figures from its loaded payments.
func NewDeliveryDTO(d *models.Delivery) *DeliveryDTO {
	dto := &DeliveryDTO{
		ID:           d.ID,
		UserID:       d.UserID,
		DeliveryDate: d.DeliveryDate,
		Client:       d.Client,
		SandType:     d.SandType,
		TruckNumber:  d.TruckNumber,
		Notes:        d.Notes,
		Scheme:       string(d.Scheme),

		Volume:         d.Volume,
		UnitPrice:      d.UnitPrice,
		CommissionRate: d.CommissionRate,
		OtherFees:      d.OtherFees,

		GrossAmount:     d.GrossAmount,
		ManagementShare: d.ManagementShare,
		PartnerShare:    d.PartnerShare,
		AgentCommission: d.AgentCommission,
		ManagementNet:   d.ManagementNet,
		TruckCount:      d.TruckCount,

		CommissionAmount: d.CommissionAmount,
		NetAmount:        d.NetAmount,

		TotalPaid:        finance.TotalPaid(d),
		RemainingBalance: finance.RemainingBalance(d),
		Outstanding:      finance.OutstandingBalance(d),
		PaymentProgress:  finance.PaymentProgress(d),

		Payments: make([]PaymentDTO, len(d.Payments)),

		CreatedAt: d.CreatedAt,
		UpdatedAt: d.UpdatedAt,
	}
	for i, p := range d.Payments {
		dto.Payments[i] = NewPaymentDTO(&p)
	}
	return dto
}

// NewPaymentDTO builds a payment DTO from the persisted model.
func NewPaymentDTO(p *models.Payment) PaymentDTO {
	return PaymentDTO{
		ID:          p.ID,
		DeliveryID:  p.DeliveryID,
		Amount:      p.Amount,
		PaymentDate: p.PaymentDate,
		Method:      p.Method,
		Reference:   p.Reference,
		Notes:       p.Notes,
		CreatedAt:   p.CreatedAt,
	}
}
