package checkout

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stripe/stripe-go/v84"

	"github.com/aesthetikoase/checkout-backend/internal/cart"
	"github.com/aesthetikoase/checkout-backend/pkg/config"
	pkgerrors "github.com/aesthetikoase/checkout-backend/pkg/errors"
	"github.com/aesthetikoase/checkout-backend/pkg/logger"
	"github.com/aesthetikoase/checkout-backend/pkg/metrics"
	stripeclient "github.com/aesthetikoase/checkout-backend/pkg/stripe"
)

// Provider is the slice of the Stripe client the session builder calls.
type Provider interface {
	CreateSession(ctx context.Context, env stripeclient.Environment, params *stripe.CheckoutSessionCreateParams) (*stripe.CheckoutSession, error)
	RetrieveSession(ctx context.Context, env stripeclient.Environment, sessionID string) (*stripe.CheckoutSession, error)
}

// ItemInput is one cart line as submitted by the storefront. Price is in
// currency units (CHF), not minor units.
type ItemInput struct {
	Name     string          `json:"name"`
	Price    decimal.Decimal `json:"price"`
	Quantity int             `json:"quantity"`
}

// ShippingInput is the caller-supplied shipping override. Amount is already
// in minor units on the wire and is used verbatim when positive.
type ShippingInput struct {
	Amount      int64  `json:"amount"`
	Description string `json:"description"`
}

// Input carries one checkout submission.
type Input struct {
	Items    []ItemInput
	Shipping *ShippingInput
	Origin   string
}

// Result is the successful outcome of one session creation.
type Result struct {
	URL         string
	SessionID   string
	OrderNumber string
	Environment stripeclient.Environment
}

// ServiceParams wires the session builder's dependencies. Now and RandDigits
// default to the real clock and math/rand and exist for tests.
type ServiceParams struct {
	Provider   Provider
	Checkout   config.CheckoutConfig
	Shipping   config.ShippingConfig
	Logger     *logger.Logger
	Metrics    *metrics.CheckoutMetrics
	Now        func() time.Time
	RandDigits func(width int) string
}

// Service builds payment sessions. Stateless: every call re-derives pricing
// and generates a fresh order reference, so concurrent submissions need no
// coordination.
type Service struct {
	provider   Provider
	checkout   config.CheckoutConfig
	shipping   shippingResolver
	logg       *logger.Logger
	metrics    *metrics.CheckoutMetrics
	now        func() time.Time
	randDigits func(width int) string
}

func NewService(params ServiceParams) (*Service, error) {
	if params.Provider == nil {
		return nil, pkgerrors.New(pkgerrors.CodeConfiguration, "payment provider required")
	}
	now := params.Now
	if now == nil {
		now = time.Now
	}
	randDigits := params.RandDigits
	if randDigits == nil {
		randDigits = randomDigits
	}
	return &Service{
		provider:   params.Provider,
		checkout:   params.Checkout,
		shipping:   newShippingResolver(params.Shipping),
		logg:       params.Logger,
		metrics:    params.Metrics,
		now:        now,
		randDigits: randDigits,
	}, nil
}

// CreateSession validates the submitted cart, resolves shipping, generates
// an order reference, and creates the provider session exactly once. A
// failed provider call is terminal; resubmitting generates a new reference.
func (s *Service) CreateSession(ctx context.Context, input Input) (*Result, error) {
	env := s.environmentFor(input.Origin)
	target := s.targetFor(env)
	ctx = s.logCtx(ctx, env)

	if err := validateItems(input.Items); err != nil {
		s.metrics.IncSessionFailed(string(pkgerrors.CodeValidation))
		return nil, err
	}

	orderNumber := s.orderReference()
	ctx = s.withOrderNumber(ctx, orderNumber)

	subtotal := decimal.Zero
	for _, item := range input.Items {
		subtotal = subtotal.Add(item.Price.Mul(decimal.NewFromInt(int64(item.Quantity))))
	}
	shippingLine := s.shipping.Resolve(subtotal, input.Shipping)

	lineItems := make([]*stripe.CheckoutSessionCreateLineItemParams, 0, len(input.Items)+1)
	for _, item := range input.Items {
		lineItems = append(lineItems, productLine(item, s.checkout.Currency))
	}
	if shippingLine != nil {
		lineItems = append(lineItems, shippingLineItem(*shippingLine, s.checkout.Currency))
	}

	params := s.sessionParams(orderNumber, lineItems)
	params.SuccessURL = stripe.String(target.successURL(orderNumber))
	params.CancelURL = stripe.String(target.base + s.checkout.CancelPath)
	params.Metadata = map[string]string{
		"order_number": orderNumber,
		"item_count":   strconv.Itoa(len(input.Items)),
		"environment":  string(env),
		"has_shipping": strconv.FormatBool(shippingLine != nil),
	}

	session, err := s.provider.CreateSession(ctx, env, params)
	if err != nil {
		s.metrics.IncSessionFailed(string(pkgerrors.As(err).Code()))
		if s.logg != nil {
			s.logg.Error(ctx, "checkout.session.create failed", err)
		}
		return nil, err
	}

	s.metrics.IncSessionCreated(string(env))
	if s.logg != nil {
		ctx = s.logg.WithSessionID(ctx, session.ID)
		s.logg.Info(ctx, "checkout.session.created")
	}

	return &Result{
		URL:         session.URL,
		SessionID:   session.ID,
		OrderNumber: orderNumber,
		Environment: env,
	}, nil
}

// SessionDetails is the buyer-entered data read back after redirect.
type SessionDetails struct {
	CustomerDetails   *stripe.CheckoutSessionCustomerDetails `json:"customer_details"`
	ClientReferenceID string                                 `json:"client_reference_id"`
	AmountTotal       int64                                  `json:"amount_total"`
	Currency          string                                 `json:"currency"`
}

// RetrieveSession fetches a session from the environment the origin selects.
func (s *Service) RetrieveSession(ctx context.Context, origin, sessionID string) (*SessionDetails, error) {
	if strings.TrimSpace(sessionID) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "session id required")
	}
	env := s.environmentFor(origin)
	session, err := s.provider.RetrieveSession(s.logCtx(ctx, env), env, sessionID)
	if err != nil {
		return nil, err
	}
	return &SessionDetails{
		CustomerDetails:   session.CustomerDetails,
		ClientReferenceID: session.ClientReferenceID,
		AmountTotal:       session.AmountTotal,
		Currency:          string(session.Currency),
	}, nil
}

// environmentFor classifies the request origin. Hosts under the configured
// test suffix (Webflow staging) hit the test credential; everything else is
// live.
func (s *Service) environmentFor(origin string) stripeclient.Environment {
	host := strings.ToLower(strings.TrimSpace(origin))
	if parsed, err := url.Parse(host); err == nil && parsed.Host != "" {
		host = parsed.Hostname()
	}
	if strings.HasSuffix(host, strings.ToLower(s.checkout.TestOriginSuffix)) {
		return stripeclient.EnvironmentTest
	}
	return stripeclient.EnvironmentLive
}

type target struct {
	base        string
	successPath string
}

func (t target) successURL(orderNumber string) string {
	return fmt.Sprintf("%s%s?session_id={CHECKOUT_SESSION_ID}&order=%s", t.base, t.successPath, orderNumber)
}

func (s *Service) targetFor(env stripeclient.Environment) target {
	base := s.checkout.LiveBaseURL
	if env == stripeclient.EnvironmentTest {
		base = s.checkout.TestBaseURL
	}
	return target{base: base, successPath: s.checkout.SuccessPath}
}

func (s *Service) sessionParams(reference string, lineItems []*stripe.CheckoutSessionCreateLineItemParams) *stripe.CheckoutSessionCreateParams {
	params := &stripe.CheckoutSessionCreateParams{
		Mode:                     stripe.String(string(stripe.CheckoutSessionModePayment)),
		LineItems:                lineItems,
		ClientReferenceID:        stripe.String(reference),
		BillingAddressCollection: stripe.String(string(stripe.CheckoutSessionBillingAddressCollectionRequired)),
		ShippingAddressCollection: &stripe.CheckoutSessionCreateShippingAddressCollectionParams{
			AllowedCountries: stripe.StringSlice(s.checkout.AllowedCountries),
		},
		PaymentMethodTypes: stripe.StringSlice(s.checkout.PaymentMethods),
	}
	if s.checkout.SessionExpiry > 0 {
		// Absolute wall-clock deadline, not a sliding window.
		params.ExpiresAt = stripe.Int64(s.now().Add(s.checkout.SessionExpiry).Unix())
	}
	return params
}

func (s *Service) logCtx(ctx context.Context, env stripeclient.Environment) context.Context {
	if s.logg == nil {
		return ctx
	}
	return s.logg.WithEnvironment(ctx, string(env))
}

func (s *Service) withOrderNumber(ctx context.Context, orderNumber string) context.Context {
	if s.logg == nil {
		return ctx
	}
	return s.logg.WithOrderNumber(ctx, orderNumber)
}

func validateItems(items []ItemInput) error {
	if len(items) == 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "cart is empty")
	}
	for i, item := range items {
		if !cart.ValidName(item.Name) {
			return pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("item %d: invalid name", i)).
				WithDetails(map[string]any{"name": item.Name})
		}
		if !item.Price.IsPositive() {
			return pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("item %d: price must be positive", i))
		}
		if item.Quantity < 1 {
			return pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("item %d: quantity must be at least 1", i))
		}
	}
	return nil
}

func productLine(item ItemInput, currency string) *stripe.CheckoutSessionCreateLineItemParams {
	return &stripe.CheckoutSessionCreateLineItemParams{
		PriceData: &stripe.CheckoutSessionCreateLineItemPriceDataParams{
			Currency:   stripe.String(currency),
			UnitAmount: stripe.Int64(toMinorUnits(item.Price)),
			ProductData: &stripe.CheckoutSessionCreateLineItemPriceDataProductDataParams{
				Name:     stripe.String(item.Name),
				Metadata: map[string]string{"type": "product"},
			},
		},
		Quantity: stripe.Int64(int64(item.Quantity)),
	}
}

func shippingLineItem(line ShippingLine, currency string) *stripe.CheckoutSessionCreateLineItemParams {
	return &stripe.CheckoutSessionCreateLineItemParams{
		PriceData: &stripe.CheckoutSessionCreateLineItemPriceDataParams{
			Currency:   stripe.String(currency),
			UnitAmount: stripe.Int64(line.AmountMinor),
			ProductData: &stripe.CheckoutSessionCreateLineItemPriceDataProductDataParams{
				Name:     stripe.String(line.Description),
				Metadata: map[string]string{"type": "shipping"},
			},
		},
		Quantity: stripe.Int64(1),
	}
}

// toMinorUnits converts a currency-unit price to integer minor units,
// rounding half away from zero.
func toMinorUnits(amount decimal.Decimal) int64 {
	return amount.Shift(2).Round(0).IntPart()
}
