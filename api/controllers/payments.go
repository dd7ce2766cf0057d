package controllers

import (
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/mkcamara/graniteledger-backend/api/middleware"
	"github.com/mkcamara/graniteledger-backend/api/responses"
	"github.com/mkcamara/graniteledger-backend/api/validators"
	paymentsvc "github.com/mkcamara/graniteledger-backend/internal/payments"
	pkgerrors "github.com/mkcamara/graniteledger-backend/pkg/errors"
	"github.com/mkcamara/graniteledger-backend/pkg/logger"
)

// AddPayment records a payment against a delivery and returns the refreshed
// delivery balance.
func AddPayment(svc paymentsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "payment service unavailable"))
			return
		}

		actor, err := middleware.ActorFromContext(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		deliveryID, err := validators.ParsePathUUID(chi.URLParam(r, "deliveryID"), "deliveryID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload addPaymentRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input, err := payload.toInput()
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		delivery, err := svc.AddPayment(r.Context(), actor, deliveryID, input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, delivery)
	}
}

// ListPayments returns the payments of a delivery in chronological order.
func ListPayments(svc paymentsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "payment service unavailable"))
			return
		}

		actor, err := middleware.ActorFromContext(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		deliveryID, err := validators.ParsePathUUID(chi.URLParam(r, "deliveryID"), "deliveryID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		payments, err := svc.ListPayments(r.Context(), actor, deliveryID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, payments)
	}
}

// DeletePayment removes a payment; corrections are delete plus re-add.
func DeletePayment(svc paymentsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "payment service unavailable"))
			return
		}

		actor, err := middleware.ActorFromContext(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		deliveryID, err := validators.ParsePathUUID(chi.URLParam(r, "deliveryID"), "deliveryID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		paymentID, err := validators.ParsePathUUID(chi.URLParam(r, "paymentID"), "paymentID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		delivery, err := svc.DeletePayment(r.Context(), actor, deliveryID, paymentID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, delivery)
	}
}

type addPaymentRequest struct {
	Amount      float64 `json:"amount" validate:"required,gt=0"`
	PaymentDate *string `json:"payment_date,omitempty"`
	Method      string  `json:"method,omitempty"`
	Reference   *string `json:"reference,omitempty"`
	Notes       *string `json:"notes,omitempty"`
}

func (p addPaymentRequest) toInput() (paymentsvc.AddPaymentInput, error) {
	input := paymentsvc.AddPaymentInput{
		Amount:    p.Amount,
		Method:    strings.TrimSpace(p.Method),
		Reference: p.Reference,
		Notes:     p.Notes,
	}
	if p.PaymentDate != nil {
		paid, err := time.Parse("2006-01-02", strings.TrimSpace(*p.PaymentDate))
		if err != nil {
			return paymentsvc.AddPaymentInput{}, pkgerrors.New(pkgerrors.CodeValidation, "must be a YYYY-MM-DD date").WithDetails(map[string]any{"field": "payment_date"})
		}
		input.PaymentDate = &paid
	}
	return input, nil
}
