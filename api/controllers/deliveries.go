package controllers

import (
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/mkcamara/graniteledger-backend/api/middleware"
	"github.com/mkcamara/graniteledger-backend/api/responses"
	"github.com/mkcamara/graniteledger-backend/api/validators"
	deliverysvc "github.com/mkcamara/graniteledger-backend/internal/deliveries"
	pkgerrors "github.com/mkcamara/graniteledger-backend/pkg/errors"
	"github.com/mkcamara/graniteledger-backend/pkg/logger"
	"github.com/mkcamara/graniteledger-backend/pkg/pagination"
)

// CreateDelivery records a new delivery and its computed financials.
func CreateDelivery(svc deliverysvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "delivery service unavailable"))
			return
		}

		actor, err := middleware.ActorFromContext(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload deliveryRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input, err := payload.toCreateInput()
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		delivery, err := svc.CreateDelivery(r.Context(), actor, input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, delivery)
	}
}

// UpdateDelivery replaces the editable fields and recomputes the split.
func UpdateDelivery(svc deliverysvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "delivery service unavailable"))
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

		var payload deliveryRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input, err := payload.toUpdateInput()
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		delivery, err := svc.UpdateDelivery(r.Context(), actor, deliveryID, input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, delivery)
	}
}

// DeleteDelivery removes a delivery and its payments.
func DeleteDelivery(svc deliverysvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "delivery service unavailable"))
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

		if err := svc.DeleteDelivery(r.Context(), actor, deliveryID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]string{"status": "deleted"})
	}
}

// GetDelivery returns a single delivery with its payments and balance.
func GetDelivery(svc deliverysvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "delivery service unavailable"))
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

		delivery, err := svc.GetDelivery(r.Context(), actor, deliveryID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, delivery)
	}
}

// ListDeliveries returns a filtered, cursor-paginated page of deliveries.
func ListDeliveries(svc deliverysvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "delivery service unavailable"))
			return
		}

		actor, err := middleware.ActorFromContext(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		filters, err := parseListFilters(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		limit, err := validators.ParseQueryInt(r, "limit", pagination.DefaultLimit, 1, pagination.MaxLimit)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		page := pagination.Params{
			Limit:  limit,
			Cursor: strings.TrimSpace(r.URL.Query().Get("cursor")),
		}

		result, err := svc.ListDeliveries(r.Context(), actor, filters, page)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, result)
	}
}

func parseListFilters(r *http.Request) (deliverysvc.ListFilters, error) {
	from, err := validators.ParseQueryDate(r, "from")
	if err != nil {
		return deliverysvc.ListFilters{}, err
	}
	to, err := validators.ParseQueryDate(r, "to")
	if err != nil {
		return deliverysvc.ListFilters{}, err
	}
	return deliverysvc.ListFilters{
		From:     from,
		To:       to,
		Client:   strings.TrimSpace(r.URL.Query().Get("client")),
		SandType: strings.TrimSpace(r.URL.Query().Get("sand_type")),
	}, nil
}

type deliveryRequest struct {
	DeliveryDate   string                 `json:"delivery_date" validate:"required"`
	Client         string                 `json:"client" validate:"required"`
	SandType       string                 `json:"sand_type" validate:"required"`
	TruckNumber    string                 `json:"truck_number,omitempty"`
	Notes          *string                `json:"notes,omitempty"`
	Volume         float64                `json:"volume_m3" validate:"required,gt=0"`
	UnitPrice      *float64               `json:"unit_price,omitempty" validate:"omitempty,gt=0"`
	CommissionRate *float64               `json:"commission_rate,omitempty" validate:"omitempty,gte=0,lte=100"`
	OtherFees      *float64               `json:"other_fees,omitempty" validate:"omitempty,gte=0"`
	InitialPayment *initialPaymentRequest `json:"initial_payment,omitempty"`
}

type initialPaymentRequest struct {
	Amount      float64 `json:"amount" validate:"required,gt=0"`
	PaymentDate *string `json:"payment_date,omitempty"`
	Method      string  `json:"method,omitempty"`
	Reference   *string `json:"reference,omitempty"`
	Notes       *string `json:"notes,omitempty"`
}

func (p deliveryRequest) toCreateInput() (deliverysvc.CreateDeliveryInput, error) {
	date, err := parseDate(p.DeliveryDate, "delivery_date")
	if err != nil {
		return deliverysvc.CreateDeliveryInput{}, err
	}

	input := deliverysvc.CreateDeliveryInput{
		DeliveryDate:   date,
		Client:         strings.TrimSpace(p.Client),
		SandType:       strings.TrimSpace(p.SandType),
		TruckNumber:    strings.TrimSpace(p.TruckNumber),
		Notes:          p.Notes,
		Volume:         p.Volume,
		UnitPrice:      p.UnitPrice,
		CommissionRate: p.CommissionRate,
		OtherFees:      p.OtherFees,
	}

	if p.InitialPayment != nil {
		payment := deliverysvc.InitialPaymentInput{
			Amount:    p.InitialPayment.Amount,
			Method:    strings.TrimSpace(p.InitialPayment.Method),
			Reference: p.InitialPayment.Reference,
			Notes:     p.InitialPayment.Notes,
		}
		if p.InitialPayment.PaymentDate != nil {
			paid, err := parseDate(*p.InitialPayment.PaymentDate, "payment_date")
			if err != nil {
				return deliverysvc.CreateDeliveryInput{}, err
			}
			payment.PaymentDate = &paid
		}
		input.InitialPayment = &payment
	}

	return input, nil
}

func (p deliveryRequest) toUpdateInput() (deliverysvc.UpdateDeliveryInput, error) {
	if p.InitialPayment != nil {
		return deliverysvc.UpdateDeliveryInput{}, pkgerrors.New(pkgerrors.CodeValidation, "initial_payment is only accepted on creation")
	}
	date, err := parseDate(p.DeliveryDate, "delivery_date")
	if err != nil {
		return deliverysvc.UpdateDeliveryInput{}, err
	}
	return deliverysvc.UpdateDeliveryInput{
		DeliveryDate:   date,
		Client:         strings.TrimSpace(p.Client),
		SandType:       strings.TrimSpace(p.SandType),
		TruckNumber:    strings.TrimSpace(p.TruckNumber),
		Notes:          p.Notes,
		Volume:         p.Volume,
		UnitPrice:      p.UnitPrice,
		CommissionRate: p.CommissionRate,
		OtherFees:      p.OtherFees,
	}, nil
}

func parseDate(raw, field string) (time.Time, error) {
	t, err := time.Parse("2006-01-02", strings.TrimSpace(raw))
	if err != nil {
		return time.Time{}, pkgerrors.New(pkgerrors.CodeValidation, "must be a YYYY-MM-DD date").WithDetails(map[string]any{"field": field})
	}
	return t, nil
}
