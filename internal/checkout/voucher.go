package checkout

import (
	"context"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/stripe/stripe-go/v84"

	pkgerrors "github.com/aesthetikoase/checkout-backend/pkg/errors"
)

// VoucherRecipient is the person the gift voucher is shipped to.
type VoucherRecipient struct {
	Name   string `json:"name" validate:"required"`
	Street string `json:"street" validate:"required"`
	Zip    string `json:"zip" validate:"required"`
	City   string `json:"city" validate:"required"`
}

// VoucherInput is one gift-voucher order.
type VoucherInput struct {
	Service      string           `json:"service"`
	ServiceName  string           `json:"service_name"`
	Price        decimal.Decimal  `json:"price"`
	Recipient    VoucherRecipient `json:"recipient"`
	BuyerEmail   string           `json:"buyer_email"`
	GreetingText string           `json:"greeting_text"`
	Origin       string           `json:"-"`
}

// VoucherResult extends the session result with the generated voucher code.
type VoucherResult struct {
	Result
	VoucherCode string
}

// CreateVoucherSession builds a single-line voucher checkout: one voucher
// item plus the nominal gift-box shipping charge. The voucher code doubles
// as the provider's client reference.
func (s *Service) CreateVoucherSession(ctx context.Context, input VoucherInput) (*VoucherResult, error) {
	env := s.environmentFor(input.Origin)
	target := s.targetFor(env)
	ctx = s.logCtx(ctx, env)

	if err := validateVoucher(input); err != nil {
		s.metrics.IncSessionFailed(string(pkgerrors.CodeValidation))
		return nil, err
	}

	code := s.voucherReference()
	ctx = s.withOrderNumber(ctx, code)

	giftBox := ShippingLine{
		AmountMinor: toMinorUnits(s.shipping.nominalFee),
		Description: giftBoxDescription,
	}
	lineItems := []*stripe.CheckoutSessionCreateLineItemParams{
		{
			PriceData: &stripe.CheckoutSessionCreateLineItemPriceDataParams{
				Currency:   stripe.String(s.checkout.Currency),
				UnitAmount: stripe.Int64(toMinorUnits(input.Price)),
				ProductData: &stripe.CheckoutSessionCreateLineItemPriceDataProductDataParams{
					Name:        stripe.String(fmt.Sprintf("🎁 Geschenkgutschein: %s", input.ServiceName)),
					Description: stripe.String(fmt.Sprintf("Gutschein-Code: %s | Empfänger: %s", code, input.Recipient.Name)),
					Metadata: map[string]string{
						"type":           "voucher",
						"voucher_code":   code,
						"service":        input.Service,
						"recipient_name": input.Recipient.Name,
					},
				},
			},
			Quantity: stripe.Int64(1),
		},
		shippingLineItem(giftBox, s.checkout.Currency),
	}

	params := s.sessionParams(code, lineItems)
	params.SuccessURL = stripe.String(fmt.Sprintf("%s%s?session_id={CHECKOUT_SESSION_ID}&voucher=%s", target.base, s.checkout.SuccessPath, code))
	params.CancelURL = stripe.String(target.base + s.checkout.VoucherCancel + "?cancelled=true")
	params.Metadata = map[string]string{
		"type":             "voucher",
		"voucher_code":     code,
		"service":          input.Service,
		"service_name":     input.ServiceName,
		"service_price":    input.Price.String(),
		"recipient_name":   input.Recipient.Name,
		"recipient_street": input.Recipient.Street,
		"recipient_zip":    input.Recipient.Zip,
		"recipient_city":   input.Recipient.City,
		"buyer_email":      input.BuyerEmail,
		"greeting_text":    input.GreetingText,
		"environment":      string(env),
		"created_at":       s.now().UTC().Format("2006-01-02T15:04:05Z07:00"),
	}

	session, err := s.provider.CreateSession(ctx, env, params)
	if err != nil {
		s.metrics.IncSessionFailed(string(pkgerrors.As(err).Code()))
		if s.logg != nil {
			s.logg.Error(ctx, "checkout.voucher.create failed", err)
		}
		return nil, err
	}

	s.metrics.IncSessionCreated(string(env))
	if s.logg != nil {
		ctx = s.logg.WithSessionID(ctx, session.ID)
		s.logg.Info(ctx, "checkout.voucher.created")
	}

	return &VoucherResult{
		Result: Result{
			URL:         session.URL,
			SessionID:   session.ID,
			OrderNumber: code,
			Environment: env,
		},
		VoucherCode: code,
	}, nil
}

func validateVoucher(input VoucherInput) error {
	if strings.TrimSpace(input.Service) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "voucher service required")
	}
	if !input.Price.IsPositive() {
		return pkgerrors.New(pkgerrors.CodeValidation, "voucher price must be positive")
	}
	if strings.TrimSpace(input.Recipient.Name) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "voucher recipient required")
	}
	return nil
}
