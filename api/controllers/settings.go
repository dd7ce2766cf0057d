package controllers

import (
	"net/http"

	"github.com/mkcamara/graniteledger-backend/api/responses"
	"github.com/mkcamara/graniteledger-backend/api/validators"
	settingssvc "github.com/mkcamara/graniteledger-backend/internal/settings"
	pkgerrors "github.com/mkcamara/graniteledger-backend/pkg/errors"
	"github.com/mkcamara/graniteledger-backend/pkg/logger"
)

// GetSettings returns the tenant configuration row.
func GetSettings(svc settingssvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "settings service unavailable"))
			return
		}

		settings, err := svc.GetSettings(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, settings)
	}
}

// UpdateSettings applies a partial update to the tenant configuration.
func UpdateSettings(svc settingssvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "settings service unavailable"))
			return
		}

		var payload updateSettingsRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		settings, err := svc.UpdateSettings(r.Context(), settingssvc.UpdateSettingsInput{
			DefaultCommissionRate: payload.DefaultCommissionRate,
			DefaultOtherFees:      payload.DefaultOtherFees,
			CurrencyCode:          payload.CurrencyCode,
			SandTypes:             payload.SandTypes,
			GranitePrices:         payload.GranitePrices,
			PaymentMethods:        payload.PaymentMethods,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, settings)
	}
}

type updateSettingsRequest struct {
	DefaultCommissionRate *float64            `json:"default_commission_rate,omitempty" validate:"omitempty,gte=0,lte=100"`
	DefaultOtherFees      *float64            `json:"default_other_fees,omitempty" validate:"omitempty,gte=0"`
	CurrencyCode          *string             `json:"currency_code,omitempty"`
	SandTypes             *[]string           `json:"sand_types,omitempty"`
	GranitePrices         *map[string]float64 `json:"granite_prices,omitempty"`
	PaymentMethods        *[]string           `json:"payment_methods,omitempty"`
}
