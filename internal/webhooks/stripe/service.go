package stripewebhook

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/stripe/stripe-go/v84"

	"github.com/aesthetikoase/checkout-backend/internal/notify"
	pkgerrors "github.com/aesthetikoase/checkout-backend/pkg/errors"
	"github.com/aesthetikoase/checkout-backend/pkg/logger"
	"github.com/aesthetikoase/checkout-backend/pkg/metrics"
)

// Dispatcher is the notification fan-out the service triggers after a paid
// checkout.
type Dispatcher interface {
	DispatchAsync(event notify.OrderEvent)
}

type ServiceParams struct {
	Dispatcher Dispatcher
	Logger     *logger.Logger
	Metrics    *metrics.CheckoutMetrics
}

// Service reacts to Stripe events. Only completed checkouts trigger work;
// everything else is acknowledged and ignored.
type Service struct {
	dispatcher Dispatcher
	logg       *logger.Logger
	metrics    *metrics.CheckoutMetrics
}

func NewService(params ServiceParams) (*Service, error) {
	if params.Dispatcher == nil {
		return nil, pkgerrors.New(pkgerrors.CodeConfiguration, "notification dispatcher required")
	}
	return &Service{
		dispatcher: params.Dispatcher,
		logg:       params.Logger,
		metrics:    params.Metrics,
	}, nil
}

func (s *Service) HandleEvent(ctx context.Context, event *stripe.Event) error {
	if event == nil || event.Data == nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "stripe event data required")
	}

	s.metrics.IncWebhookEvent(string(event.Type))

	if event.Type != stripe.EventTypeCheckoutSessionCompleted {
		return nil
	}

	var session stripe.CheckoutSession
	if err := json.Unmarshal(event.Data.Raw, &session); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeValidation, err, "decode checkout session event")
	}

	orderEvent := orderEventFromSession(&session)
	if s.logg != nil {
		logCtx := s.logg.WithFields(ctx, map[string]any{
			"order_number": orderEvent.OrderNumber,
			"amount":       orderEvent.Amount.StringFixed(2),
			"currency":     orderEvent.Currency,
		})
		s.logg.Info(logCtx, "webhook.payment completed")
	}

	// Channels run after the acknowledgment; their failures never reach
	// Stripe, which would otherwise redeliver the event.
	s.dispatcher.DispatchAsync(orderEvent)
	return nil
}

func orderEventFromSession(session *stripe.CheckoutSession) notify.OrderEvent {
	event := notify.OrderEvent{
		OrderNumber: session.ClientReferenceID,
		Amount:      decimal.New(session.AmountTotal, -2),
		Currency:    strings.ToUpper(string(session.Currency)),
	}
	if session.CustomerDetails != nil {
		event.CustomerName = session.CustomerDetails.Name
		event.CustomerEmail = session.CustomerDetails.Email
	}
	if event.CustomerName == "" {
		event.CustomerName = "Unbekannt"
	}
	return event
}
