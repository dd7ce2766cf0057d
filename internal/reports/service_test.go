package reports

import (
	"bytes"
	"context"
	"math"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/xuri/excelize/v2"

	"github.com/mkcamara/graniteledger-backend/internal/deliveries"
	"github.com/mkcamara/graniteledger-backend/pkg/db/models"
	"github.com/mkcamara/graniteledger-backend/pkg/enums"
	"github.com/mkcamara/graniteledger-backend/pkg/visibility"
)

type fakeLister struct {
	rows      []*models.Delivery
	lastOwner *uuid.UUID
}

func (f *fakeLister) ListAll(ctx context.Context, ownerID *uuid.UUID, filters deliveries.ListFilters) ([]*models.Delivery, error) {
	f.lastOwner = ownerID
	return f.rows, nil
}

type fakeSettings struct{}

func (fakeSettings) GetSettings(ctx context.Context) (*models.AppSettings, error) {
	return &models.AppSettings{ID: models.AppSettingsID, CurrencyCode: "GNF"}, nil
}

func day(s string) time.Time {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return t
}

func testDeliveries() []*models.Delivery {
	first := &models.Delivery{
		ID:              uuid.New(),
		DeliveryDate:    day("2025-06-01"),
		Client:          "Client A",
		Scheme:          enums.FinancialSchemeGraniteSplit,
		Volume:          30,
		GrossAmount:     6000000,
		PartnerShare:    5400000,
		AgentCommission: 210000,
		ManagementNet:   390000,
		Payments: []models.Payment{
			{ID: uuid.New(), Amount: 2000000, PaymentDate: day("2025-06-02")},
		},
	}
	second := &models.Delivery{
		ID:               uuid.New(),
		DeliveryDate:     day("2025-05-20"),
		Client:           "Client B",
		Scheme:           enums.FinancialSchemeLegacyCommission,
		Volume:           20,
		GrossAmount:      2000000,
		CommissionAmount: 700000,
		NetAmount:        1300000,
	}
	return []*models.Delivery{first, second}
}

func newReportsService(t *testing.T, lister *fakeLister) Service {
	t.Helper()
	svc, err := NewService(lister, fakeSettings{})
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}
	return svc
}

func almost(a, b float64) bool {
	return math.Abs(a-b) < 1e-6
}

func adminActor() visibility.Actor {
	return visibility.Actor{UserID: uuid.New(), Role: enums.UserRoleAdmin}
}

func TestStatementOrdersAndAccumulates(t *testing.T) {
	lister := &fakeLister{rows: testDeliveries()}
	svc := newReportsService(t, lister)

	got, err := svc.Statement(context.Background(), adminActor(), deliveries.ListFilters{})
	if err != nil {
		t.Fatalf("Statement: %v", err)
	}
	if len(got.Rows) != 2 {
		t.Fatalf("rows = %d, want 2", len(got.Rows))
	}

	// Legacy delivery from May comes first and uses its legacy net.
	if got.Rows[0].Client != "Client B" {
		t.Errorf("first row = %q, want the earlier delivery", got.Rows[0].Client)
	}
	if !almost(got.Rows[0].NetAmount, 1300000) {
		t.Errorf("legacy net = %v, want 1300000", got.Rows[0].NetAmount)
	}
	if !almost(got.Rows[0].RunningBalance, 1300000) {
		t.Errorf("running[0] = %v, want 1300000", got.Rows[0].RunningBalance)
	}
	if !almost(got.Rows[1].RunningBalance, 1690000) {
		t.Errorf("running[1] = %v, want 1690000", got.Rows[1].RunningBalance)
	}
	if !almost(got.Rows[1].RemainingBalance, 4000000) {
		t.Errorf("remaining = %v, want 4000000", got.Rows[1].RemainingBalance)
	}

	if !almost(got.Totals.TotalGross, 8000000) {
		t.Errorf("total gross = %v, want 8000000", got.Totals.TotalGross)
	}
	if !almost(got.Totals.TotalCommission, 910000) {
		t.Errorf("total commission = %v, want 910000", got.Totals.TotalCommission)
	}
	if got.Totals.InvoiceCount != 2 {
		t.Errorf("invoice count = %d, want 2", got.Totals.InvoiceCount)
	}
	if got.Totals.CurrencyCode != "GNF" {
		t.Errorf("currency = %q, want GNF", got.Totals.CurrencyCode)
	}
}

func TestDashboardScopesToActor(t *testing.T) {
	lister := &fakeLister{rows: testDeliveries()}
	svc := newReportsService(t, lister)

	agent := visibility.Actor{UserID: uuid.New(), Role: enums.UserRoleAgent}
	if _, err := svc.Dashboard(context.Background(), agent); err != nil {
		t.Fatalf("Dashboard: %v", err)
	}
	if lister.lastOwner == nil || *lister.lastOwner != agent.UserID {
		t.Error("agent dashboards must be owner scoped")
	}

	if _, err := svc.Dashboard(context.Background(), adminActor()); err != nil {
		t.Fatalf("Dashboard: %v", err)
	}
	if lister.lastOwner != nil {
		t.Error("admin dashboards must not be owner scoped")
	}
}

func TestExportStatement(t *testing.T) {
	lister := &fakeLister{rows: testDeliveries()}
	svc := newReportsService(t, lister)

	data, filename, err := svc.ExportStatement(context.Background(), adminActor(), deliveries.ListFilters{})
	if err != nil {
		t.Fatalf("ExportStatement: %v", err)
	}
	if filename == "" {
		t.Fatal("filename must be suggested")
	}

	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("exported bytes must be a readable workbook: %v", err)
	}
	defer func() { _ = f.Close() }()

	rows, err := f.GetRows(statementSheetName)
	if err != nil {
		t.Fatalf("GetRows: %v", err)
	}
	// Header + two deliveries + blank + totals footer.
	if len(rows) < 4 {
		t.Fatalf("rows = %d, want at least 4", len(rows))
	}
	if rows[0][0] != "date" {
		t.Errorf("header[0] = %q, want date", rows[0][0])
	}
	if rows[1][1] != "Client B" {
		t.Errorf("first data row client = %q, want Client B", rows[1][1])
	}
}
