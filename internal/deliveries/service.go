package deliveries

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/mkcamara/graniteledger-backend/internal/finance"
	"github.com/mkcamara/graniteledger-backend/pkg/db/models"
	"github.com/mkcamara/graniteledger-backend/pkg/enums"
	pkgerrors "github.com/mkcamara/graniteledger-backend/pkg/errors"
	"github.com/mkcamara/graniteledger-backend/pkg/pagination"
	"github.com/mkcamara/graniteledger-backend/pkg/visibility"
)

// Service exposes delivery management operations.
type Service interface {
	CreateDelivery(ctx context.Context, actor visibility.Actor, input CreateDeliveryInput) (*DeliveryDTO, error)
	UpdateDelivery(ctx context.Context, actor visibility.Actor, deliveryID uuid.UUID, input UpdateDeliveryInput) (*DeliveryDTO, error)
	DeleteDelivery(ctx context.Context, actor visibility.Actor, deliveryID uuid.UUID) error
	GetDelivery(ctx context.Context, actor visibility.Actor, deliveryID uuid.UUID) (*DeliveryDTO, error)
	ListDeliveries(ctx context.Context, actor visibility.Actor, filters ListFilters, page pagination.Params) (*ListResult, error)
}

// CreateDeliveryInput holds the validated payload to create a delivery.
// Nil pricing fields fall back to the tenant settings.
type CreateDeliveryInput struct {
	DeliveryDate   time.Time
	Client         string
	SandType       string
	TruckNumber    string
	Notes          *string
	Volume         float64
	UnitPrice      *float64
	CommissionRate *float64
	OtherFees      *float64
	InitialPayment *InitialPaymentInput
}

// InitialPaymentInput records a payment taken at delivery time. The payment
// date defaults to the delivery date.
type InitialPaymentInput struct {
	Amount      float64
	PaymentDate *time.Time
	Method      string
	Reference   *string
	Notes       *string
}

// UpdateDeliveryInput is a full replacement of the delivery's editable
// fields; the derived financials are recomputed from scratch.
type UpdateDeliveryInput struct {
	DeliveryDate   time.Time
	Client         string
	SandType       string
	TruckNumber    string
	Notes          *string
	Volume         float64
	UnitPrice      *float64
	CommissionRate *float64
	OtherFees      *float64
}

type deliveryStore interface {
	Create(ctx context.Context, d *models.Delivery) error
	Update(ctx context.Context, d *models.Delivery) error
	Delete(ctx context.Context, id uuid.UUID) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.Delivery, error)
	List(ctx context.Context, query ListQuery) ([]*models.Delivery, error)
}

type settingsReader interface {
	GetSettings(ctx context.Context) (*models.AppSettings, error)
}

type service struct {
	repo     deliveryStore
	settings settingsReader
}

// NewService constructs a delivery service instance.
func NewService(repo deliveryStore, settings settingsReader) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("delivery repository required")
	}
	if settings == nil {
		return nil, fmt.Errorf("settings service required")
	}
	return &service{repo: repo, settings: settings}, nil
}

// CreateDelivery validates the form payload, derives the financial split
// once, and persists everything (initial payment included) atomically.
func (s *service) CreateDelivery(ctx context.Context, actor visibility.Actor, input CreateDeliveryInput) (*DeliveryDTO, error) {
	pricing, err := s.resolvePricing(ctx, input.SandType, input.UnitPrice, input.CommissionRate, input.OtherFees)
	if err != nil {
		return nil, err
	}
	if err := validateForm(input.DeliveryDate, input.Client, input.Volume, pricing); err != nil {
		return nil, err
	}

	breakdown := finance.ComputeFinances(input.Volume, pricing.unitPrice, pricing.commissionRate, pricing.otherFees)

	d := &models.Delivery{
		UserID:       actor.UserID,
		DeliveryDate: input.DeliveryDate,
		Client:       strings.TrimSpace(input.Client),
		SandType:     strings.TrimSpace(input.SandType),
		TruckNumber:  strings.TrimSpace(input.TruckNumber),
		Notes:        input.Notes,
		Scheme:       enums.FinancialSchemeGraniteSplit,

		Volume:         input.Volume,
		UnitPrice:      pricing.unitPrice,
		CommissionRate: pricing.commissionRate,
		OtherFees:      pricing.otherFees,
	}
	applyBreakdown(d, breakdown)

	if input.InitialPayment != nil {
		payment, err := buildInitialPayment(*input.InitialPayment, input.DeliveryDate)
		if err != nil {
			return nil, err
		}
		d.Payments = []models.Payment{payment}
	}

	if err := s.repo.Create(ctx, d); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "creating delivery")
	}
	return NewDeliveryDTO(d), nil
}

// UpdateDelivery replaces the editable fields and recomputes the split.
// Recorded payments are untouched.
func (s *service) UpdateDelivery(ctx context.Context, actor visibility.Actor, deliveryID uuid.UUID, input UpdateDeliveryInput) (*DeliveryDTO, error) {
	d, err := s.loadVisible(ctx, actor, deliveryID)
	if err != nil {
		return nil, err
	}

	pricing, err := s.resolvePricing(ctx, input.SandType, input.UnitPrice, input.CommissionRate, input.OtherFees)
	if err != nil {
		return nil, err
	}
	if err := validateForm(input.DeliveryDate, input.Client, input.Volume, pricing); err != nil {
		return nil, err
	}

	breakdown := finance.ComputeFinances(input.Volume, pricing.unitPrice, pricing.commissionRate, pricing.otherFees)

	d.DeliveryDate = input.DeliveryDate
	d.Client = strings.TrimSpace(input.Client)
	d.SandType = strings.TrimSpace(input.SandType)
	d.TruckNumber = strings.TrimSpace(input.TruckNumber)
	d.Notes = input.Notes
	d.Volume = input.Volume
	d.UnitPrice = pricing.unitPrice
	d.CommissionRate = pricing.commissionRate
	d.OtherFees = pricing.otherFees
	// Editing migrates legacy records onto the split scheme.
	d.Scheme = enums.FinancialSchemeGraniteSplit
	applyBreakdown(d, breakdown)

	if err := s.repo.Update(ctx, d); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "updating delivery")
	}
	return NewDeliveryDTO(d), nil
}

// DeleteDelivery removes the delivery and its payments.
func (s *service) DeleteDelivery(ctx context.Context, actor visibility.Actor, deliveryID uuid.UUID) error {
	if _, err := s.loadVisible(ctx, actor, deliveryID); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, deliveryID); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "deleting delivery")
	}
	return nil
}

// GetDelivery loads one delivery with its payments and balances.
func (s *service) GetDelivery(ctx context.Context, actor visibility.Actor, deliveryID uuid.UUID) (*DeliveryDTO, error) {
	d, err := s.loadVisible(ctx, actor, deliveryID)
	if err != nil {
		return nil, err
	}
	return NewDeliveryDTO(d), nil
}

// ListDeliveries pages through deliveries visible to the actor.
func (s *service) ListDeliveries(ctx context.Context, actor visibility.Actor, filters ListFilters, page pagination.Params) (*ListResult, error) {
	limit := pagination.NormalizeLimit(page.Limit)
	rows, err := s.repo.List(ctx, ListQuery{
		OwnerID:    visibility.OwnerFilter(actor),
		Filters:    filters,
		Pagination: pagination.Params{Limit: limit, Cursor: page.Cursor},
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "listing deliveries")
	}

	result := &ListResult{}
	if len(rows) > limit {
		last := rows[limit-1]
		result.NextCursor = pagination.EncodeCursor(pagination.Cursor{
			CreatedAt: last.CreatedAt,
			ID:        last.ID,
		})
		rows = rows[:limit]
	}

	result.Deliveries = make([]*DeliveryDTO, len(rows))
	for i, d := range rows {
		result.Deliveries[i] = NewDeliveryDTO(d)
	}
	return result, nil
}

func (s *service) loadVisible(ctx context.Context, actor visibility.Actor, deliveryID uuid.UUID) (*models.Delivery, error) {
	d, err := s.repo.FindByID(ctx, deliveryID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading delivery")
	}
	if err := visibility.EnsureDeliveryVisible(actor, d); err != nil {
		return nil, err
	}
	return d, nil
}

type resolvedPricing struct {
	unitPrice      float64
	unitPriceKnown bool
	commissionRate float64
	otherFees      float64
}

// resolvePricing merges the explicit form values with the tenant settings:
// an omitted unit price resolves from the sand type price list, omitted rate
// and fees fall back to the configured defaults.
func (s *service) resolvePricing(ctx context.Context, sandType string, unitPrice, commissionRate, otherFees *float64) (resolvedPricing, error) {
	cfg, err := s.settings.GetSettings(ctx)
	if err != nil {
		return resolvedPricing{}, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading settings")
	}

	pricing := resolvedPricing{
		commissionRate: cfg.DefaultCommissionRate,
		otherFees:      cfg.DefaultOtherFees,
	}

	if unitPrice != nil {
		pricing.unitPrice = *unitPrice
		pricing.unitPriceKnown = true
	} else if price, ok := cfg.GranitePrices[strings.TrimSpace(sandType)]; ok {
		pricing.unitPrice = price
		pricing.unitPriceKnown = true
	}
	if commissionRate != nil {
		pricing.commissionRate = *commissionRate
	}
	if otherFees != nil {
		pricing.otherFees = *otherFees
	}
	return pricing, nil
}

func validateForm(date time.Time, client string, volume float64, pricing resolvedPricing) error {
	if date.IsZero() {
		return pkgerrors.New(pkgerrors.CodeValidation, "delivery_date is required")
	}
	if strings.TrimSpace(client) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "client is required")
	}
	if volume < finance.MinDeliveryVolumeM3 {
		return pkgerrors.New(pkgerrors.CodeValidation,
			fmt.Sprintf("volume must be at least %g m3", finance.MinDeliveryVolumeM3))
	}
	if !pricing.unitPriceKnown {
		return pkgerrors.New(pkgerrors.CodeValidation, "unit_price is required when no price is configured for the sand type")
	}
	if pricing.unitPrice <= 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "unit_price must be positive")
	}
	if pricing.commissionRate < 0 || pricing.commissionRate > 100 {
		return pkgerrors.New(pkgerrors.CodeValidation, "commission_rate must be between 0 and 100")
	}
	if pricing.otherFees < 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "other_fees cannot be negative")
	}
	return nil
}

func buildInitialPayment(input InitialPaymentInput, deliveryDate time.Time) (models.Payment, error) {
	if input.Amount <= 0 {
		return models.Payment{}, pkgerrors.New(pkgerrors.CodeValidation, "initial payment amount must be positive")
	}
	paymentDate := deliveryDate
	if input.PaymentDate != nil {
		paymentDate = *input.PaymentDate
	}
	return models.Payment{
		Amount:      input.Amount,
		PaymentDate: paymentDate,
		Method:      strings.TrimSpace(input.Method),
		Reference:   input.Reference,
		Notes:       input.Notes,
	}, nil
}

func applyBreakdown(d *models.Delivery, b finance.Breakdown) {
	d.GrossAmount = b.GrossAmount
	d.ManagementShare = b.ManagementShare
	d.PartnerShare = b.PartnerShare
	d.AgentCommission = b.AgentCommission
	d.ManagementNet = b.ManagementNet
	d.TruckCount = b.TruckCount
	// Legacy columns mirror the split figures so old reports keep working.
	d.CommissionAmount = b.AgentCommission
	d.NetAmount = b.ManagementNet
}
