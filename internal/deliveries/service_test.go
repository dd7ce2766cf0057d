package deliveries

import (
	"context"
	"math"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/mkcamara/graniteledger-backend/pkg/db/models"
	"github.com/mkcamara/graniteledger-backend/pkg/enums"
	pkgerrors "github.com/mkcamara/graniteledger-backend/pkg/errors"
	"github.com/mkcamara/graniteledger-backend/pkg/pagination"
	"github.com/mkcamara/graniteledger-backend/pkg/visibility"
)

type fakeDeliveryStore struct {
	byID    map[uuid.UUID]*models.Delivery
	listOut []*models.Delivery
	lastQ   ListQuery
	deleted []uuid.UUID
}

func newFakeDeliveryStore() *fakeDeliveryStore {
	return &fakeDeliveryStore{byID: map[uuid.UUID]*models.Delivery{}}
}

func (f *fakeDeliveryStore) Create(ctx context.Context, d *models.Delivery) error {
	if d.ID == uuid.Nil {
		d.ID = uuid.New()
	}
	d.CreatedAt = time.Now()
	f.byID[d.ID] = d
	return nil
}

func (f *fakeDeliveryStore) Update(ctx context.Context, d *models.Delivery) error {
	f.byID[d.ID] = d
	return nil
}

func (f *fakeDeliveryStore) Delete(ctx context.Context, id uuid.UUID) error {
	delete(f.byID, id)
	f.deleted = append(f.deleted, id)
	return nil
}

func (f *fakeDeliveryStore) FindByID(ctx context.Context, id uuid.UUID) (*models.Delivery, error) {
	return f.byID[id], nil
}

func (f *fakeDeliveryStore) List(ctx context.Context, query ListQuery) ([]*models.Delivery, error) {
	f.lastQ = query
	return f.listOut, nil
}

type fakeSettings struct {
	settings models.AppSettings
}

func (f *fakeSettings) GetSettings(ctx context.Context) (*models.AppSettings, error) {
	s := f.settings
	return &s, nil
}

func defaultSettings() *fakeSettings {
	return &fakeSettings{settings: models.AppSettings{
		ID:                    models.AppSettingsID,
		DefaultCommissionRate: 35,
		DefaultOtherFees:      0,
		CurrencyCode:          "GNF",
		GranitePrices:         map[string]float64{"Granite 0/5": 220000},
	}}
}

func newDeliveryService(t *testing.T, store *fakeDeliveryStore, settings *fakeSettings) Service {
	t.Helper()
	svc, err := NewService(store, settings)
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}
	return svc
}

func approx(t *testing.T, name string, got, want float64) {
	t.Helper()
	if math.Abs(got-want) > 1e-6 {
		t.Errorf("%s = %v, want %v", name, got, want)
	}
}

func agentActor() visibility.Actor {
	return visibility.Actor{UserID: uuid.New(), Role: enums.UserRoleAgent}
}

func fptr(v float64) *float64 { return &v }

func TestCreateDeliveryComputesSplit(t *testing.T) {
	store := newFakeDeliveryStore()
	svc := newDeliveryService(t, store, defaultSettings())
	actor := agentActor()

	dto, err := svc.CreateDelivery(context.Background(), actor, CreateDeliveryInput{
		DeliveryDate:   time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC),
		Client:         "  Entreprise Diallo  ",
		SandType:       "Granite 0/5",
		Volume:         45,
		UnitPrice:      fptr(220000),
		CommissionRate: fptr(35),
		OtherFees:      fptr(10000),
	})
	if err != nil {
		t.Fatalf("CreateDelivery: %v", err)
	}

	if dto.Client != "Entreprise Diallo" {
		t.Errorf("client = %q, want trimmed", dto.Client)
	}
	if dto.UserID != actor.UserID {
		t.Error("delivery must be owned by the actor")
	}
	if dto.Scheme != string(enums.FinancialSchemeGraniteSplit) {
		t.Errorf("scheme = %q, want granite_split", dto.Scheme)
	}
	if dto.TruckCount != 2 {
		t.Errorf("truck count = %d, want 2", dto.TruckCount)
	}
	approx(t, "gross", dto.GrossAmount, 9900000)
	approx(t, "management share", dto.ManagementShare, 1320000)
	approx(t, "partner share", dto.PartnerShare, 8580000)
	approx(t, "agent commission", dto.AgentCommission, 458500)
	approx(t, "management net", dto.ManagementNet, 851500)
	approx(t, "remaining", dto.RemainingBalance, 9900000)
}

func TestCreateDeliveryResolvesPriceFromSettings(t *testing.T) {
	store := newFakeDeliveryStore()
	svc := newDeliveryService(t, store, defaultSettings())

	dto, err := svc.CreateDelivery(context.Background(), agentActor(), CreateDeliveryInput{
		DeliveryDate: time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC),
		Client:       "Client A",
		SandType:     "Granite 0/5",
		Volume:       30,
	})
	if err != nil {
		t.Fatalf("CreateDelivery: %v", err)
	}
	approx(t, "unit price", dto.UnitPrice, 220000)
	// Settings defaults applied.
	approx(t, "commission rate", dto.CommissionRate, 35)
	approx(t, "gross", dto.GrossAmount, 6600000)
}

func TestCreateDeliveryWithInitialPayment(t *testing.T) {
	store := newFakeDeliveryStore()
	svc := newDeliveryService(t, store, defaultSettings())
	deliveryDate := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)

	dto, err := svc.CreateDelivery(context.Background(), agentActor(), CreateDeliveryInput{
		DeliveryDate:   deliveryDate,
		Client:         "Client A",
		Volume:         30,
		UnitPrice:      fptr(200000),
		InitialPayment: &InitialPaymentInput{Amount: 1000000, Method: "cash"},
	})
	if err != nil {
		t.Fatalf("CreateDelivery: %v", err)
	}

	if len(dto.Payments) != 1 {
		t.Fatalf("payments = %d, want 1", len(dto.Payments))
	}
	if !dto.Payments[0].PaymentDate.Equal(deliveryDate) {
		t.Error("initial payment date must default to the delivery date")
	}
	approx(t, "total paid", dto.TotalPaid, 1000000)
	approx(t, "remaining", dto.RemainingBalance, 5000000)
	approx(t, "progress", dto.PaymentProgress, 1000000.0/6000000.0)
}

func TestCreateDeliveryValidation(t *testing.T) {
	store := newFakeDeliveryStore()
	svc := newDeliveryService(t, store, defaultSettings())
	date := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)

	cases := []struct {
		name  string
		input CreateDeliveryInput
	}{
		{"missing date", CreateDeliveryInput{Client: "A", Volume: 30, UnitPrice: fptr(1000)}},
		{"missing client", CreateDeliveryInput{DeliveryDate: date, Volume: 30, UnitPrice: fptr(1000)}},
		{"volume below 10", CreateDeliveryInput{DeliveryDate: date, Client: "A", Volume: 9.9, UnitPrice: fptr(1000)}},
		{"no resolvable price", CreateDeliveryInput{DeliveryDate: date, Client: "A", SandType: "Unknown", Volume: 30}},
		{"zero price", CreateDeliveryInput{DeliveryDate: date, Client: "A", Volume: 30, UnitPrice: fptr(0)}},
		{"rate above 100", CreateDeliveryInput{DeliveryDate: date, Client: "A", Volume: 30, UnitPrice: fptr(1000), CommissionRate: fptr(101)}},
		{"negative fees", CreateDeliveryInput{DeliveryDate: date, Client: "A", Volume: 30, UnitPrice: fptr(1000), OtherFees: fptr(-1)}},
		{"bad initial payment", CreateDeliveryInput{DeliveryDate: date, Client: "A", Volume: 30, UnitPrice: fptr(1000),
			InitialPayment: &InitialPaymentInput{Amount: 0}}},
	}
	for _, tc := range cases {
		if _, err := svc.CreateDelivery(context.Background(), agentActor(), tc.input); pkgerrors.As(err).Code() != pkgerrors.CodeValidation {
			t.Errorf("%s: expected validation error, got %v", tc.name, err)
		}
	}
	if len(store.byID) != 0 {
		t.Fatal("nothing should have been persisted")
	}
}

func TestUpdateDeliveryRecomputesAndMigratesScheme(t *testing.T) {
	store := newFakeDeliveryStore()
	svc := newDeliveryService(t, store, defaultSettings())
	actor := agentActor()

	legacy := &models.Delivery{
		ID:               uuid.New(),
		UserID:           actor.UserID,
		DeliveryDate:     time.Date(2025, 1, 10, 0, 0, 0, 0, time.UTC),
		Client:           "Old Client",
		Scheme:           enums.FinancialSchemeLegacyCommission,
		Volume:           20,
		UnitPrice:        100000,
		CommissionRate:   35,
		GrossAmount:      2000000,
		CommissionAmount: 700000,
		NetAmount:        1300000,
	}
	store.byID[legacy.ID] = legacy

	dto, err := svc.UpdateDelivery(context.Background(), actor, legacy.ID, UpdateDeliveryInput{
		DeliveryDate: time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC),
		Client:       "Old Client",
		Volume:       30,
		UnitPrice:    fptr(200000),
		OtherFees:    fptr(0),
	})
	if err != nil {
		t.Fatalf("UpdateDelivery: %v", err)
	}

	if dto.Scheme != string(enums.FinancialSchemeGraniteSplit) {
		t.Errorf("scheme = %q, editing must migrate to the split model", dto.Scheme)
	}
	approx(t, "gross", dto.GrossAmount, 6000000)
	approx(t, "management share", dto.ManagementShare, 600000)
	approx(t, "partner share", dto.PartnerShare, 5400000)
	approx(t, "agent commission", dto.AgentCommission, 210000)
	approx(t, "management net", dto.ManagementNet, 390000)
}

func TestVisibilityBlocksOtherAgents(t *testing.T) {
	store := newFakeDeliveryStore()
	svc := newDeliveryService(t, store, defaultSettings())

	owner := agentActor()
	d := &models.Delivery{ID: uuid.New(), UserID: owner.UserID, GrossAmount: 100}
	store.byID[d.ID] = d

	intruder := agentActor()
	if _, err := svc.GetDelivery(context.Background(), intruder, d.ID); pkgerrors.As(err).Code() != pkgerrors.CodeNotFound {
		t.Errorf("get: expected not found, got %v", err)
	}
	if err := svc.DeleteDelivery(context.Background(), intruder, d.ID); pkgerrors.As(err).Code() != pkgerrors.CodeNotFound {
		t.Errorf("delete: expected not found, got %v", err)
	}

	admin := visibility.Actor{UserID: uuid.New(), Role: enums.UserRoleAdmin}
	if _, err := svc.GetDelivery(context.Background(), admin, d.ID); err != nil {
		t.Errorf("admin get: %v", err)
	}
}

func TestListDeliveriesScopesAndPaginates(t *testing.T) {
	store := newFakeDeliveryStore()
	svc := newDeliveryService(t, store, defaultSettings())
	actor := agentActor()

	for i := 0; i < 3; i++ {
		store.listOut = append(store.listOut, &models.Delivery{
			ID:        uuid.New(),
			UserID:    actor.UserID,
			CreatedAt: time.Now().Add(-time.Duration(i) * time.Hour),
		})
	}

	result, err := svc.ListDeliveries(context.Background(), actor, ListFilters{}, pagination.Params{Limit: 2})
	if err != nil {
		t.Fatalf("ListDeliveries: %v", err)
	}

	if store.lastQ.OwnerID == nil || *store.lastQ.OwnerID != actor.UserID {
		t.Error("agent queries must be scoped to the owner")
	}
	if len(result.Deliveries) != 2 {
		t.Fatalf("page size = %d, want 2", len(result.Deliveries))
	}
	if result.NextCursor == "" {
		t.Fatal("expected a next cursor with a third row available")
	}
	cursor, err := pagination.ParseCursor(result.NextCursor)
	if err != nil || cursor.ID != store.listOut[1].ID {
		t.Fatalf("cursor should point at the last returned row, err=%v", err)
	}

	admin := visibility.Actor{UserID: uuid.New(), Role: enums.UserRoleAdmin}
	if _, err := svc.ListDeliveries(context.Background(), admin, ListFilters{}, pagination.Params{}); err != nil {
		t.Fatalf("admin list: %v", err)
	}
	if store.lastQ.OwnerID != nil {
		t.Error("admin queries must not be owner scoped")
	}
}
