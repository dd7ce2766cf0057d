package settings

import (
	"context"
	"testing"

	"github.com/mkcamara/graniteledger-backend/pkg/db/models"
	pkgerrors "github.com/mkcamara/graniteledger-backend/pkg/errors"
)

type fakeSettingsStore struct {
	row   *models.AppSettings
	saved bool
}

func (f *fakeSettingsStore) Get(ctx context.Context) (*models.AppSettings, error) {
	if f.row == nil {
		seeded := models.DefaultAppSettings()
		f.row = &seeded
	}
	return f.row, nil
}

func (f *fakeSettingsStore) Save(ctx context.Context, s *models.AppSettings) error {
	f.row = s
	f.saved = true
	return nil
}

func newTestService(t *testing.T) (Service, *fakeSettingsStore) {
	t.Helper()
	store := &fakeSettingsStore{}
	svc, err := NewService(store)
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}
	return svc, store
}

func floatPtr(v float64) *float64 { return &v }

func strPtr(v string) *string { return &v }

func listPtr(v []string) *[]string { return &v }

func TestGetSettingsSeedsDefaults(t *testing.T) {
	svc, _ := newTestService(t)

	got, err := svc.GetSettings(context.Background())
	if err != nil {
		t.Fatalf("GetSettings: %v", err)
	}
	if got.DefaultCommissionRate != 35 {
		t.Errorf("default rate = %v, want 35", got.DefaultCommissionRate)
	}
	if got.CurrencyCode != "GNF" {
		t.Errorf("currency = %q, want GNF", got.CurrencyCode)
	}
}

func TestUpdateSettingsAppliesFields(t *testing.T) {
	svc, store := newTestService(t)

	prices := map[string]float64{"Granite 0/5": 220000, " ": 1}
	got, err := svc.UpdateSettings(context.Background(), UpdateSettingsInput{
		DefaultCommissionRate: floatPtr(40),
		CurrencyCode:          strPtr(" GNF "),
		SandTypes:             listPtr([]string{"Granite 0/5", "Granite 0/5", "", "Sable fin"}),
		GranitePrices:         &prices,
	})
	if err != nil {
		t.Fatalf("UpdateSettings: %v", err)
	}
	if !store.saved {
		t.Fatal("expected row to be saved")
	}
	if got.DefaultCommissionRate != 40 {
		t.Errorf("rate = %v, want 40", got.DefaultCommissionRate)
	}
	if got.CurrencyCode != "GNF" {
		t.Errorf("currency = %q, want trimmed GNF", got.CurrencyCode)
	}
	if len(got.SandTypes) != 2 {
		t.Errorf("sand types = %v, want deduplicated pair", got.SandTypes)
	}
	if _, ok := got.GranitePrices[" "]; ok {
		t.Error("blank sand type keys must be dropped")
	}
}

func TestUpdateSettingsRejectsBadValues(t *testing.T) {
	svc, _ := newTestService(t)

	cases := []UpdateSettingsInput{
		{DefaultCommissionRate: floatPtr(101)},
		{DefaultCommissionRate: floatPtr(-1)},
		{DefaultOtherFees: floatPtr(-5)},
		{CurrencyCode: strPtr("   ")},
		{GranitePrices: &map[string]float64{"Granite": -100}},
	}
	for i, input := range cases {
		_, err := svc.UpdateSettings(context.Background(), input)
		if pkgerrors.As(err).Code() != pkgerrors.CodeValidation {
			t.Errorf("case %d: expected validation error, got %v", i, err)
		}
	}
}

func TestResolveUnitPrice(t *testing.T) {
	svc, store := newTestService(t)
	seeded := models.DefaultAppSettings()
	seeded.GranitePrices = map[string]float64{"Granite 0/5": 220000}
	store.row = &seeded

	price, ok, err := svc.ResolveUnitPrice(context.Background(), " Granite 0/5 ")
	if err != nil {
		t.Fatalf("ResolveUnitPrice: %v", err)
	}
	if !ok || price != 220000 {
		t.Fatalf("price = %v ok = %v, want 220000 true", price, ok)
	}

	_, ok, err = svc.ResolveUnitPrice(context.Background(), "Unknown")
	if err != nil {
		t.Fatalf("ResolveUnitPrice: %v", err)
	}
	if ok {
		t.Fatal("unknown sand type must not resolve")
	}
}
