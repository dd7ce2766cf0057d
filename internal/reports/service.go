package reports

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/mkcamara/graniteledger-backend/internal/deliveries"
	"github.com/mkcamara/graniteledger-backend/internal/finance"
	"github.com/mkcamara/graniteledger-backend/pkg/db/models"
	pkgerrors "github.com/mkcamara/graniteledger-backend/pkg/errors"
	"github.com/mkcamara/graniteledger-backend/pkg/visibility"
)

// Service exposes the statement and dashboard read models.
type Service interface {
	Statement(ctx context.Context, actor visibility.Actor, filters deliveries.ListFilters) (*StatementDTO, error)
	Dashboard(ctx context.Context, actor visibility.Actor) (*StatsDTO, error)
	ExportStatement(ctx context.Context, actor visibility.Actor, filters deliveries.ListFilters) ([]byte, string, error)
}

type deliveryLister interface {
	ListAll(ctx context.Context, ownerID *uuid.UUID, filters deliveries.ListFilters) ([]*models.Delivery, error)
}

type settingsReader interface {
	GetSettings(ctx context.Context) (*models.AppSettings, error)
}

type service struct {
	deliveries deliveryLister
	settings   settingsReader
}

// NewService constructs a reports service instance.
func NewService(deliveryRepo deliveryLister, settings settingsReader) (Service, error) {
	if deliveryRepo == nil {
		return nil, fmt.Errorf("delivery repository required")
	}
	if settings == nil {
		return nil, fmt.Errorf("settings service required")
	}
	return &service{deliveries: deliveryRepo, settings: settings}, nil
}

// Statement builds the chronological running-balance view over the
// deliveries visible to the actor.
func (s *service) Statement(ctx context.Context, actor visibility.Actor, filters deliveries.ListFilters) (*StatementDTO, error) {
	rows, currency, err := s.load(ctx, actor, filters)
	if err != nil {
		return nil, err
	}

	balances := finance.CumulativeBalances(rows)
	out := &StatementDTO{
		Rows:   make([]StatementRow, len(balances)),
		Totals: newStatsDTO(finance.Totals(rows), currency),
	}
	for i, row := range balances {
		d := row.Delivery
		out.Rows[i] = StatementRow{
			DeliveryID:       d.ID,
			DeliveryDate:     d.DeliveryDate,
			Client:           d.Client,
			SandType:         d.SandType,
			Scheme:           string(d.Scheme),
			Volume:           d.Volume,
			GrossAmount:      d.GrossAmount,
			Commission:       finance.CommissionFor(d),
			NetAmount:        finance.NetFor(d),
			TotalPaid:        finance.TotalPaid(d),
			RemainingBalance: finance.RemainingBalance(d),
			RunningBalance:   row.RunningBalance,
		}
	}
	return out, nil
}

// Dashboard aggregates the stat cards over everything visible to the actor.
func (s *service) Dashboard(ctx context.Context, actor visibility.Actor) (*StatsDTO, error) {
	rows, currency, err := s.load(ctx, actor, deliveries.ListFilters{})
	if err != nil {
		return nil, err
	}
	stats := newStatsDTO(finance.Totals(rows), currency)
	return &stats, nil
}

func (s *service) load(ctx context.Context, actor visibility.Actor, filters deliveries.ListFilters) ([]*models.Delivery, string, error) {
	rows, err := s.deliveries.ListAll(ctx, visibility.OwnerFilter(actor), filters)
	if err != nil {
		return nil, "", pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading deliveries")
	}
	cfg, err := s.settings.GetSettings(ctx)
	if err != nil {
		return nil, "", pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading settings")
	}
	return rows, cfg.CurrencyCode, nil
}

func newStatsDTO(s finance.Summary, currency string) StatsDTO {
	return StatsDTO{
		TotalGross:        s.TotalGross,
		TotalPartnerShare: s.TotalPartnerShare,
		TotalCommission:   s.TotalCommission,
		TotalNet:          s.TotalNet,
		TotalCollected:    s.TotalCollected,
		TotalOutstanding:  s.TotalOutstanding,
		InvoiceCount:      s.InvoiceCount,
		CurrencyCode:      currency,
	}
}
