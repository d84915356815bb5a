package stripewebhook

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stripe/stripe-go/v84"

	"github.com/aesthetikoase/checkout-backend/internal/notify"
	pkgerrors "github.com/aesthetikoase/checkout-backend/pkg/errors"
)

type stubDispatcher struct {
	events []notify.OrderEvent
}

func (d *stubDispatcher) DispatchAsync(event notify.OrderEvent) {
	d.events = append(d.events, event)
}

func completedEvent(t *testing.T, session stripe.CheckoutSession) *stripe.Event {
	t.Helper()
	raw, err := json.Marshal(session)
	if err != nil {
		t.Fatalf("marshal session: %v", err)
	}
	return &stripe.Event{
		ID:   "evt_123",
		Type: stripe.EventTypeCheckoutSessionCompleted,
		Data: &stripe.EventData{Raw: raw},
	}
}

func TestHandleEventDispatchesCompletedCheckout(t *testing.T) {
	t.Parallel()

	dispatcher := &stubDispatcher{}
	svc, err := NewService(ServiceParams{Dispatcher: dispatcher})
	if err != nil {
		t.Fatalf("new service: %v", err)
	}

	event := completedEvent(t, stripe.CheckoutSession{
		ClientReferenceID: "AO-28082026-0042",
		AmountTotal:       11850,
		Currency:          stripe.CurrencyCHF,
		CustomerDetails:   &stripe.CheckoutSessionCustomerDetails{Name: "Anna Muster", Email: "anna@example.com"},
	})
	if err := svc.HandleEvent(context.Background(), event); err != nil {
		t.Fatalf("handle event: %v", err)
	}

	if len(dispatcher.events) != 1 {
		t.Fatalf("dispatched %d events, want 1", len(dispatcher.events))
	}
	got := dispatcher.events[0]
	if got.OrderNumber != "AO-28082026-0042" {
		t.Fatalf("order number = %s", got.OrderNumber)
	}
	if !got.Amount.Equal(decimal.RequireFromString("118.50")) {
		t.Fatalf("amount = %s, want 118.50", got.Amount)
	}
	if got.Currency != "CHF" {
		t.Fatalf("currency = %s", got.Currency)
	}
	if got.CustomerName != "Anna Muster" || got.CustomerEmail != "anna@example.com" {
		t.Fatalf("customer = %q <%s>", got.CustomerName, got.CustomerEmail)
	}
}

func TestHandleEventDefaultsCustomerName(t *testing.T) {
	t.Parallel()

	dispatcher := &stubDispatcher{}
	svc, _ := NewService(ServiceParams{Dispatcher: dispatcher})

	event := completedEvent(t, stripe.CheckoutSession{
		ClientReferenceID: "AO-28082026-0001",
		AmountTotal:       5000,
		Currency:          stripe.CurrencyCHF,
	})
	if err := svc.HandleEvent(context.Background(), event); err != nil {
		t.Fatalf("handle event: %v", err)
	}
	if dispatcher.events[0].CustomerName != "Unbekannt" {
		t.Fatalf("customer name = %q", dispatcher.events[0].CustomerName)
	}
}

func TestHandleEventIgnoresOtherTypes(t *testing.T) {
	t.Parallel()

	dispatcher := &stubDispatcher{}
	svc, _ := NewService(ServiceParams{Dispatcher: dispatcher})

	event := &stripe.Event{
		ID:   "evt_456",
		Type: stripe.EventTypePaymentIntentCreated,
		Data: &stripe.EventData{Raw: json.RawMessage(`{}`)},
	}
	if err := svc.HandleEvent(context.Background(), event); err != nil {
		t.Fatalf("unrelated event types must be acknowledged, got %v", err)
	}
	if len(dispatcher.events) != 0 {
		t.Fatal("unrelated event must not dispatch notifications")
	}
}

func TestHandleEventRejectsEmptyEvent(t *testing.T) {
	t.Parallel()

	svc, _ := NewService(ServiceParams{Dispatcher: &stubDispatcher{}})

	for _, event := range []*stripe.Event{nil, {ID: "evt_789", Type: stripe.EventTypeCheckoutSessionCompleted}} {
		err := svc.HandleEvent(context.Background(), event)
		typed := pkgerrors.As(err)
		if typed == nil || typed.Code() != pkgerrors.CodeValidation {
			t.Fatalf("err = %v, want validation error", err)
		}
	}
}

func TestHandleEventRejectsMalformedPayload(t *testing.T) {
	t.Parallel()

	svc, _ := NewService(ServiceParams{Dispatcher: &stubDispatcher{}})

	event := &stripe.Event{
		ID:   "evt_bad",
		Type: stripe.EventTypeCheckoutSessionCompleted,
		Data: &stripe.EventData{Raw: json.RawMessage(`{"amount_total": "not a number"`)},
	}
	err := svc.HandleEvent(context.Background(), event)
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("err = %v, want validation error", err)
	}
}

func TestNewServiceRequiresDispatcher(t *testing.T) {
	t.Parallel()

	if _, err := NewService(ServiceParams{}); err == nil {
		t.Fatal("expected configuration error without dispatcher")
	}
}
