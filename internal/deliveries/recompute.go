package deliveries

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/multierr"

	"github.com/mkcamara/graniteledger-backend/internal/finance"
	"github.com/mkcamara/graniteledger-backend/pkg/db/models"
	"github.com/mkcamara/graniteledger-backend/pkg/enums"
	"github.com/mkcamara/graniteledger-backend/pkg/logger"
)

type recomputeStore interface {
	ListAll(ctx context.Context, ownerID *uuid.UUID, filters ListFilters) ([]*models.Delivery, error)
	Update(ctx context.Context, d *models.Delivery) error
}

// Recomputer rewrites the persisted financial columns from the raw inputs.
// Run it after the split rules change so stored rows match what a fresh
// create would produce.
type Recomputer struct {
	repo recomputeStore
	logg *logger.Logger
}

// NewRecomputer constructs the backfill runner.
func NewRecomputer(repo recomputeStore, logg *logger.Logger) (*Recomputer, error) {
	if repo == nil {
		return nil, fmt.Errorf("delivery repository required")
	}
	return &Recomputer{repo: repo, logg: logg}, nil
}

// Run recomputes every split-scheme delivery and reports how many rows
// changed. Legacy commission records are left untouched; a failed row does
// not stop the pass.
func (r *Recomputer) Run(ctx context.Context) (int, error) {
	rows, err := r.repo.ListAll(ctx, nil, ListFilters{})
	if err != nil {
		return 0, fmt.Errorf("listing deliveries: %w", err)
	}

	updated := 0
	var errs error
	for _, d := range rows {
		if d.Scheme != enums.FinancialSchemeGraniteSplit {
			continue
		}
		b := finance.ComputeFinances(d.Volume, d.UnitPrice, d.CommissionRate, d.OtherFees)
		if !breakdownStale(d, b) {
			continue
		}
		applyBreakdown(d, b)
		if err := r.repo.Update(ctx, d); err != nil {
			errs = multierr.Append(errs, fmt.Errorf("delivery %s: %w", d.ID, err))
			continue
		}
		updated++
		if r.logg != nil {
			logCtx := r.logg.WithFields(ctx, map[string]any{"delivery_id": d.ID.String()})
			r.logg.Info(logCtx, "delivery financials recomputed")
		}
	}
	return updated, errs
}

func breakdownStale(d *models.Delivery, b finance.Breakdown) bool {
	return d.GrossAmount != b.GrossAmount ||
		d.ManagementShare != b.ManagementShare ||
		d.PartnerShare != b.PartnerShare ||
		d.AgentCommission != b.AgentCommission ||
		d.ManagementNet != b.ManagementNet ||
		d.TruckCount != b.TruckCount
}
