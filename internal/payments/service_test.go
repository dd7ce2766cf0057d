package payments

import (
	"context"
	"math"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/mkcamara/graniteledger-backend/pkg/db/models"
	"github.com/mkcamara/graniteledger-backend/pkg/enums"
	pkgerrors "github.com/mkcamara/graniteledger-backend/pkg/errors"
	"github.com/mkcamara/graniteledger-backend/pkg/visibility"
)

type fakePaymentStore struct {
	byID map[uuid.UUID]*models.Payment
}

func newFakePaymentStore() *fakePaymentStore {
	return &fakePaymentStore{byID: map[uuid.UUID]*models.Payment{}}
}

func (f *fakePaymentStore) Create(ctx context.Context, p *models.Payment) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	p.CreatedAt = time.Now()
	clone := *p
	f.byID[p.ID] = &clone
	return nil
}

func (f *fakePaymentStore) FindByID(ctx context.Context, id uuid.UUID) (*models.Payment, error) {
	return f.byID[id], nil
}

func (f *fakePaymentStore) Delete(ctx context.Context, id uuid.UUID) error {
	delete(f.byID, id)
	return nil
}

func (f *fakePaymentStore) ListByDelivery(ctx context.Context, deliveryID uuid.UUID) ([]models.Payment, error) {
	var out []models.Payment
	for _, p := range f.byID {
		if p.DeliveryID == deliveryID {
			out = append(out, *p)
		}
	}
	return out, nil
}

type fakeDeliveryReader struct {
	store    *fakePaymentStore
	delivery *models.Delivery
}

func (f *fakeDeliveryReader) FindByID(ctx context.Context, id uuid.UUID) (*models.Delivery, error) {
	if f.delivery == nil || f.delivery.ID != id {
		return nil, nil
	}
	clone := *f.delivery
	clone.Payments = nil
	rows, _ := f.store.ListByDelivery(ctx, id)
	clone.Payments = rows
	return &clone, nil
}

type fakeSettings struct {
	methods []string
}

func (f *fakeSettings) GetSettings(ctx context.Context) (*models.AppSettings, error) {
	return &models.AppSettings{
		ID:             models.AppSettingsID,
		PaymentMethods: f.methods,
	}, nil
}

type fixture struct {
	svc      Service
	store    *fakePaymentStore
	delivery *models.Delivery
	owner    visibility.Actor
}

func newFixture(t *testing.T, methods ...string) *fixture {
	t.Helper()
	owner := visibility.Actor{UserID: uuid.New(), Role: enums.UserRoleAgent}
	delivery := &models.Delivery{
		ID:          uuid.New(),
		UserID:      owner.UserID,
		GrossAmount: 1000000,
		Scheme:      enums.FinancialSchemeGraniteSplit,
	}
	store := newFakePaymentStore()
	svc, err := NewService(store, &fakeDeliveryReader{store: store, delivery: delivery}, &fakeSettings{methods: methods})
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}
	return &fixture{svc: svc, store: store, delivery: delivery, owner: owner}
}

func approx(t *testing.T, name string, got, want float64) {
	t.Helper()
	if math.Abs(got-want) > 1e-6 {
		t.Errorf("%s = %v, want %v", name, got, want)
	}
}

func TestAddPaymentReconciles(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	dto, err := f.svc.AddPayment(ctx, f.owner, f.delivery.ID, AddPaymentInput{Amount: 300000, Method: "cash"})
	if err != nil {
		t.Fatalf("AddPayment: %v", err)
	}
	approx(t, "paid", dto.TotalPaid, 300000)

	dto, err = f.svc.AddPayment(ctx, f.owner, f.delivery.ID, AddPaymentInput{Amount: 400000, Method: "cash"})
	if err != nil {
		t.Fatalf("AddPayment: %v", err)
	}
	approx(t, "paid", dto.TotalPaid, 700000)
	approx(t, "remaining", dto.RemainingBalance, 300000)
	approx(t, "progress", dto.PaymentProgress, 0.7)
}

func TestAddPaymentAllowsOverPayment(t *testing.T) {
	f := newFixture(t)

	dto, err := f.svc.AddPayment(context.Background(), f.owner, f.delivery.ID, AddPaymentInput{Amount: 1500000})
	if err != nil {
		t.Fatalf("AddPayment: %v", err)
	}
	approx(t, "remaining", dto.RemainingBalance, -500000)
	approx(t, "progress", dto.PaymentProgress, 1)
}

func TestAddPaymentValidation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	if _, err := f.svc.AddPayment(ctx, f.owner, f.delivery.ID, AddPaymentInput{Amount: 0}); pkgerrors.As(err).Code() != pkgerrors.CodeValidation {
		t.Errorf("zero amount: expected validation error, got %v", err)
	}
	if _, err := f.svc.AddPayment(ctx, f.owner, f.delivery.ID, AddPaymentInput{Amount: -10}); pkgerrors.As(err).Code() != pkgerrors.CodeValidation {
		t.Errorf("negative amount: expected validation error, got %v", err)
	}
}

func TestAddPaymentMethodList(t *testing.T) {
	f := newFixture(t, "cash", "orange money")
	ctx := context.Background()

	if _, err := f.svc.AddPayment(ctx, f.owner, f.delivery.ID, AddPaymentInput{Amount: 100, Method: "Cash"}); err != nil {
		t.Errorf("configured method should pass case-insensitively: %v", err)
	}
	if _, err := f.svc.AddPayment(ctx, f.owner, f.delivery.ID, AddPaymentInput{Amount: 100, Method: "cheque"}); pkgerrors.As(err).Code() != pkgerrors.CodeValidation {
		t.Errorf("unconfigured method: expected validation error, got %v", err)
	}

	// With no configured list, any label is accepted.
	open := newFixture(t)
	if _, err := open.svc.AddPayment(ctx, open.owner, open.delivery.ID, AddPaymentInput{Amount: 100, Method: "anything"}); err != nil {
		t.Errorf("free-form method should pass: %v", err)
	}
}

func TestAddPaymentDateDefaults(t *testing.T) {
	f := newFixture(t)

	dto, err := f.svc.AddPayment(context.Background(), f.owner, f.delivery.ID, AddPaymentInput{Amount: 100})
	if err != nil {
		t.Fatalf("AddPayment: %v", err)
	}
	if len(dto.Payments) != 1 {
		t.Fatalf("payments = %d, want 1", len(dto.Payments))
	}
	if dto.Payments[0].PaymentDate.IsZero() {
		t.Error("payment date must default when omitted")
	}

	explicit := time.Date(2025, 6, 10, 0, 0, 0, 0, time.UTC)
	dto, err = f.svc.AddPayment(context.Background(), f.owner, f.delivery.ID, AddPaymentInput{Amount: 100, PaymentDate: &explicit})
	if err != nil {
		t.Fatalf("AddPayment: %v", err)
	}
	found := false
	for _, p := range dto.Payments {
		if p.PaymentDate.Equal(explicit) {
			found = true
		}
	}
	if !found {
		t.Error("explicit payment date must be stored")
	}
}

func TestDeletePayment(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	dto, err := f.svc.AddPayment(ctx, f.owner, f.delivery.ID, AddPaymentInput{Amount: 250000})
	if err != nil {
		t.Fatalf("AddPayment: %v", err)
	}
	paymentID := dto.Payments[0].ID

	dto, err = f.svc.DeletePayment(ctx, f.owner, f.delivery.ID, paymentID)
	if err != nil {
		t.Fatalf("DeletePayment: %v", err)
	}
	approx(t, "paid after delete", dto.TotalPaid, 0)

	if _, err := f.svc.DeletePayment(ctx, f.owner, f.delivery.ID, uuid.New()); pkgerrors.As(err).Code() != pkgerrors.CodeNotFound {
		t.Errorf("unknown payment: expected not found, got %v", err)
	}
}

func TestPaymentVisibility(t *testing.T) {
	f := newFixture(t)
	intruder := visibility.Actor{UserID: uuid.New(), Role: enums.UserRoleAgent}

	if _, err := f.svc.AddPayment(context.Background(), intruder, f.delivery.ID, AddPaymentInput{Amount: 100}); pkgerrors.As(err).Code() != pkgerrors.CodeNotFound {
		t.Errorf("expected not found for foreign agent, got %v", err)
	}
	if _, err := f.svc.ListPayments(context.Background(), intruder, f.delivery.ID); pkgerrors.As(err).Code() != pkgerrors.CodeNotFound {
		t.Errorf("expected not found for foreign agent, got %v", err)
	}
}
