package settings

import (
	"context"
	"fmt"
	"strings"

	"github.com/mkcamara/graniteledger-backend/pkg/db/models"
	pkgerrors "github.com/mkcamara/graniteledger-backend/pkg/errors"
)

// Service exposes the tenant configuration singleton.
type Service interface {
	GetSettings(ctx context.Context) (*models.AppSettings, error)
	UpdateSettings(ctx context.Context, input UpdateSettingsInput) (*models.AppSettings, error)
	ResolveUnitPrice(ctx context.Context, sandType string) (float64, bool, error)
}

// UpdateSettingsInput holds optional mutation values for the settings row.
type UpdateSettingsInput struct {
	DefaultCommissionRate *float64
	DefaultOtherFees      *float64
	CurrencyCode          *string
	SandTypes             *[]string
	GranitePrices         *map[string]float64
	PaymentMethods        *[]string
}

type settingsStore interface {
	Get(ctx context.Context) (*models.AppSettings, error)
	Save(ctx context.Context, s *models.AppSettings) error
}

type service struct {
	repo settingsStore
}

// NewService constructs a settings service instance.
func NewService(repo settingsStore) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("settings repository required")
	}
	return &service{repo: repo}, nil
}

// GetSettings returns the current settings, seeding defaults when absent.
func (s *service) GetSettings(ctx context.Context) (*models.AppSettings, error) {
	return s.repo.Get(ctx)
}

// UpdateSettings applies the provided fields and persists the row.
func (s *service) UpdateSettings(ctx context.Context, input UpdateSettingsInput) (*models.AppSettings, error) {
	current, err := s.repo.Get(ctx)
	if err != nil {
		return nil, err
	}

	if input.DefaultCommissionRate != nil {
		rate := *input.DefaultCommissionRate
		if rate < 0 || rate > 100 {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "default_commission_rate must be between 0 and 100")
		}
		current.DefaultCommissionRate = rate
	}
	if input.DefaultOtherFees != nil {
		if *input.DefaultOtherFees < 0 {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "default_other_fees cannot be negative")
		}
		current.DefaultOtherFees = *input.DefaultOtherFees
	}
	if input.CurrencyCode != nil {
		code := strings.TrimSpace(*input.CurrencyCode)
		if code == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "currency_code cannot be empty")
		}
		current.CurrencyCode = code
	}
	if input.SandTypes != nil {
		current.SandTypes = normalizeList(*input.SandTypes)
	}
	if input.GranitePrices != nil {
		prices := map[string]float64{}
		for sandType, price := range *input.GranitePrices {
			key := strings.TrimSpace(sandType)
			if key == "" {
				continue
			}
			if price < 0 {
				return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("price for %q cannot be negative", key))
			}
			prices[key] = price
		}
		current.GranitePrices = prices
	}
	if input.PaymentMethods != nil {
		current.PaymentMethods = normalizeList(*input.PaymentMethods)
	}

	if err := s.repo.Save(ctx, current); err != nil {
		return nil, err
	}
	return current, nil
}

// ResolveUnitPrice looks up the configured unit price for a sand type.
// The second return reports whether a price is configured.
func (s *service) ResolveUnitPrice(ctx context.Context, sandType string) (float64, bool, error) {
	current, err := s.repo.Get(ctx)
	if err != nil {
		return 0, false, err
	}
	price, ok := current.GranitePrices[strings.TrimSpace(sandType)]
	return price, ok, nil
}

func normalizeList(values []string) []string {
	out := make([]string, 0, len(values))
	seen := map[string]bool{}
	for _, v := range values {
		v = strings.TrimSpace(v)
		if v == "" || seen[v] {
			continue
		}
		seen[v] = true
		out = append(out, v)
	}
	return out
}
