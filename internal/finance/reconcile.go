package finance

import (
	"math"
	"sort"

	"github.com/mkcamara/graniteledger-backend/pkg/db/models"
	"github.com/mkcamara/graniteledger-backend/pkg/enums"
)

// TotalPaid sums the payments recorded against a delivery.
func TotalPaid(d *models.Delivery) float64 {
	var paid float64
	for _, p := range d.Payments {
		paid += p.Amount
	}
	return paid
}

// RemainingBalance is gross minus paid. Negative when a delivery is
// over-paid; callers that want a debt figure use OutstandingBalance.
func RemainingBalance(d *models.Delivery) float64 {
	return d.GrossAmount - TotalPaid(d)
}

// OutstandingBalance is the remaining balance clamped at zero.
func OutstandingBalance(d *models.Delivery) float64 {
	return math.Max(0, RemainingBalance(d))
}

// PaymentProgress reports collection progress in [0, 1]. A zero-gross
// delivery reports 0 rather than dividing by zero, and over-payment caps
// at 1.
func PaymentProgress(d *models.Delivery) float64 {
	if d.GrossAmount == 0 {
		return 0
	}
	return math.Min(TotalPaid(d)/d.GrossAmount, 1)
}

// CommissionFor returns the commission column that is authoritative for the
// record's scheme.
func CommissionFor(d *models.Delivery) float64 {
	if d.Scheme == enums.FinancialSchemeLegacyCommission {
		return d.CommissionAmount
	}
	return d.AgentCommission
}

// NetFor returns the net column that is authoritative for the record's
// scheme: management_net for split records, net_amount for legacy ones.
func NetFor(d *models.Delivery) float64 {
	if d.Scheme == enums.FinancialSchemeLegacyCommission {
		return d.NetAmount
	}
	return d.ManagementNet
}

// BalanceRow pairs a delivery with the running net balance up to and
// including it.
type BalanceRow struct {
	Delivery       *models.Delivery
	RunningBalance float64
}

// CumulativeBalances orders deliveries by delivery date ascending and
// accumulates each record's authoritative net into a running balance.
// The sort is stable, so same-day deliveries keep their input order.
// The input slice is not modified.
func CumulativeBalances(deliveries []*models.Delivery) []BalanceRow {
	sorted := make([]*models.Delivery, len(deliveries))
	copy(sorted, deliveries)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].DeliveryDate.Before(sorted[j].DeliveryDate)
	})

	rows := make([]BalanceRow, len(sorted))
	var total float64
	for i, d := range sorted {
		total += NetFor(d)
		rows[i] = BalanceRow{Delivery: d, RunningBalance: total}
	}
	return rows
}

// Summary aggregates a set of deliveries for the dashboard.
type Summary struct {
	TotalGross        float64
	TotalPartnerShare float64
	TotalCommission   float64
	TotalNet          float64
	TotalCollected    float64
	TotalOutstanding  float64
	InvoiceCount      int
}

// Totals folds the per-record primitives over a delivery set. Outstanding
// counts only positive remainders so over-paid deliveries never reduce the
// debt figure.
func Totals(deliveries []*models.Delivery) Summary {
	var s Summary
	for _, d := range deliveries {
		s.TotalGross += d.GrossAmount
		s.TotalPartnerShare += d.PartnerShare
		s.TotalCommission += CommissionFor(d)
		s.TotalNet += NetFor(d)
		s.TotalCollected += TotalPaid(d)
		s.TotalOutstanding += OutstandingBalance(d)
	}
	s.InvoiceCount = len(deliveries)
	return s
}
