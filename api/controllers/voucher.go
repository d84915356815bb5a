package controllers

import (
	"context"
	"net/http"

	"github.com/shopspring/decimal"

	"github.com/aesthetikoase/checkout-backend/api/responses"
	"github.com/aesthetikoase/checkout-backend/api/validators"
	checkoutsvc "github.com/aesthetikoase/checkout-backend/internal/checkout"
	pkgerrors "github.com/aesthetikoase/checkout-backend/pkg/errors"
	"github.com/aesthetikoase/checkout-backend/pkg/logger"
)

type VoucherService interface {
	CreateVoucherSession(ctx context.Context, input checkoutsvc.VoucherInput) (*checkoutsvc.VoucherResult, error)
}

type voucherRequest struct {
	Service      string                       `json:"service" validate:"required"`
	ServiceName  string                       `json:"serviceName"`
	Price        decimal.Decimal              `json:"price" validate:"required"`
	Recipient    checkoutsvc.VoucherRecipient `json:"recipient" validate:"required"`
	BuyerEmail   string                       `json:"buyerEmail" validate:"omitempty,email"`
	GreetingText string                       `json:"greetingText"`
}

type voucherResponse struct {
	URL         string `json:"url"`
	SessionID   string `json:"session_id"`
	VoucherCode string `json:"voucher_code"`
}

// CreateVoucherCheckout handles gift-voucher orders. Field names mirror the
// storefront's camelCase payload, which predates this service.
func CreateVoucherCheckout(svc VoucherService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeConfiguration, "voucher service unavailable"))
			return
		}

		var payload voucherRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		result, err := svc.CreateVoucherSession(ctx, checkoutsvc.VoucherInput{
			Service:      payload.Service,
			ServiceName:  payload.ServiceName,
			Price:        payload.Price,
			Recipient:    payload.Recipient,
			BuyerEmail:   payload.BuyerEmail,
			GreetingText: payload.GreetingText,
			Origin:       requestOrigin(r),
		})
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		responses.WriteSuccess(w, voucherResponse{
			URL:         result.URL,
			SessionID:   result.SessionID,
			VoucherCode: result.VoucherCode,
		})
	}
}
