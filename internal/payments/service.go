package payments

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/mkcamara/graniteledger-backend/internal/deliveries"
	"github.com/mkcamara/graniteledger-backend/pkg/db/models"
	pkgerrors "github.com/mkcamara/graniteledger-backend/pkg/errors"
	"github.com/mkcamara/graniteledger-backend/pkg/visibility"
)

// Service exposes payment recording against deliveries.
type Service interface {
	AddPayment(ctx context.Context, actor visibility.Actor, deliveryID uuid.UUID, input AddPaymentInput) (*deliveries.DeliveryDTO, error)
	DeletePayment(ctx context.Context, actor visibility.Actor, deliveryID, paymentID uuid.UUID) (*deliveries.DeliveryDTO, error)
	ListPayments(ctx context.Context, actor visibility.Actor, deliveryID uuid.UUID) ([]deliveries.PaymentDTO, error)
}

// AddPaymentInput holds the validated payload to record a payment.
type AddPaymentInput struct {
	Amount      float64
	PaymentDate *time.Time
	Method      string
	Reference   *string
	Notes       *string
}

type paymentStore interface {
	Create(ctx context.Context, p *models.Payment) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.Payment, error)
	Delete(ctx context.Context, id uuid.UUID) error
	ListByDelivery(ctx context.Context, deliveryID uuid.UUID) ([]models.Payment, error)
}

type deliveryReader interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Delivery, error)
}

type settingsReader interface {
	GetSettings(ctx context.Context) (*models.AppSettings, error)
}

type service struct {
	repo       paymentStore
	deliveries deliveryReader
	settings   settingsReader
}

// NewService constructs a payment service instance.
func NewService(repo paymentStore, deliveryRepo deliveryReader, settings settingsReader) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("payment repository required")
	}
	if deliveryRepo == nil {
		return nil, fmt.Errorf("delivery repository required")
	}
	if settings == nil {
		return nil, fmt.Errorf("settings service required")
	}
	return &service{repo: repo, deliveries: deliveryRepo, settings: settings}, nil
}

// AddPayment records a payment against the delivery and returns the
// reconciled delivery. Over-payment is allowed; the balance simply goes
// negative and the UI surfaces it.
func (s *service) AddPayment(ctx context.Context, actor visibility.Actor, deliveryID uuid.UUID, input AddPaymentInput) (*deliveries.DeliveryDTO, error) {
	d, err := s.loadVisible(ctx, actor, deliveryID)
	if err != nil {
		return nil, err
	}

	if input.Amount <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "amount must be positive")
	}
	method := strings.TrimSpace(input.Method)
	if err := s.ensureMethodAllowed(ctx, method); err != nil {
		return nil, err
	}

	paymentDate := time.Now().UTC().Truncate(24 * time.Hour)
	if input.PaymentDate != nil {
		paymentDate = *input.PaymentDate
	}

	payment := &models.Payment{
		DeliveryID:  d.ID,
		Amount:      input.Amount,
		PaymentDate: paymentDate,
		Method:      method,
		Reference:   input.Reference,
		Notes:       input.Notes,
	}
	if err := s.repo.Create(ctx, payment); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "recording payment")
	}

	return s.reloadDTO(ctx, d.ID)
}

// DeletePayment removes a payment. Corrections are modeled as delete plus
// re-add, never as an in-place edit.
func (s *service) DeletePayment(ctx context.Context, actor visibility.Actor, deliveryID, paymentID uuid.UUID) (*deliveries.DeliveryDTO, error) {
	d, err := s.loadVisible(ctx, actor, deliveryID)
	if err != nil {
		return nil, err
	}

	payment, err := s.repo.FindByID(ctx, paymentID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading payment")
	}
	if payment == nil || payment.DeliveryID != d.ID {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "payment not found")
	}

	if err := s.repo.Delete(ctx, paymentID); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "deleting payment")
	}

	return s.reloadDTO(ctx, d.ID)
}

// ListPayments returns the delivery's payments in chronological order.
func (s *service) ListPayments(ctx context.Context, actor visibility.Actor, deliveryID uuid.UUID) ([]deliveries.PaymentDTO, error) {
	d, err := s.loadVisible(ctx, actor, deliveryID)
	if err != nil {
		return nil, err
	}

	rows, err := s.repo.ListByDelivery(ctx, d.ID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "listing payments")
	}

	out := make([]deliveries.PaymentDTO, len(rows))
	for i, p := range rows {
		out[i] = deliveries.NewPaymentDTO(&p)
	}
	return out, nil
}

func (s *service) loadVisible(ctx context.Context, actor visibility.Actor, deliveryID uuid.UUID) (*models.Delivery, error) {
	d, err := s.deliveries.FindByID(ctx, deliveryID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading delivery")
	}
	if err := visibility.EnsureDeliveryVisible(actor, d); err != nil {
		return nil, err
	}
	return d, nil
}

// ensureMethodAllowed checks the method against the configured labels.
// An empty configured list accepts any free-form method.
func (s *service) ensureMethodAllowed(ctx context.Context, method string) error {
	cfg, err := s.settings.GetSettings(ctx)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading settings")
	}
	if len(cfg.PaymentMethods) == 0 {
		return nil
	}
	for _, allowed := range cfg.PaymentMethods {
		if strings.EqualFold(allowed, method) {
			return nil
		}
	}
	return pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("payment method %q is not configured", method))
}

func (s *service) reloadDTO(ctx context.Context, deliveryID uuid.UUID) (*deliveries.DeliveryDTO, error) {
	d, err := s.deliveries.FindByID(ctx, deliveryID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "reloading delivery")
	}
	if d == nil {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "delivery not found")
	}
	return deliveries.NewDeliveryDTO(d), nil
}
