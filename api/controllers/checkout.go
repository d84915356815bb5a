package controllers

import (
	"context"
	"net/http"

	"github.com/aesthetikoase/checkout-backend/api/responses"
	"github.com/aesthetikoase/checkout-backend/api/validators"
	checkoutsvc "github.com/aesthetikoase/checkout-backend/internal/checkout"
	pkgerrors "github.com/aesthetikoase/checkout-backend/pkg/errors"
	"github.com/aesthetikoase/checkout-backend/pkg/logger"
)

type CheckoutService interface {
	CreateSession(ctx context.Context, input checkoutsvc.Input) (*checkoutsvc.Result, error)
}

type checkoutRequest struct {
	Items    []checkoutsvc.ItemInput    `json:"items" validate:"required,min=1"`
	Shipping *checkoutsvc.ShippingInput `json:"shipping"`
}

type checkoutResponse struct {
	URL         string `json:"url"`
	SessionID   string `json:"session_id"`
	OrderNumber string `json:"order_number"`
}

// CreateCheckout handles cart submissions from the storefront. The request
// origin (falling back to the referer) picks the credential environment.
func CreateCheckout(svc CheckoutService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeConfiguration, "checkout service unavailable"))
			return
		}

		var payload checkoutRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		result, err := svc.CreateSession(ctx, checkoutsvc.Input{
			Items:    payload.Items,
			Shipping: payload.Shipping,
			Origin:   requestOrigin(r),
		})
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		responses.WriteSuccess(w, checkoutResponse{
			URL:         result.URL,
			SessionID:   result.SessionID,
			OrderNumber: result.OrderNumber,
		})
	}
}

func requestOrigin(r *http.Request) string {
	if origin := r.Header.Get("Origin"); origin != "" {
		return origin
	}
	return r.Header.Get("Referer")
}
