// Package notify fans a completed payment out to independent notification
// channels. A channel failure is logged and counted, never propagated: the
// webhook acknowledgment must not depend on any of them.
package notify

import (
	"context"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/aesthetikoase/checkout-backend/pkg/logger"
	"github.com/aesthetikoase/checkout-backend/pkg/metrics"
)

// OrderEvent is the payload every channel receives for a paid order.
type OrderEvent struct {
	OrderNumber   string
	CustomerName  string
	CustomerEmail string
	Amount        decimal.Decimal
	Currency      string
}

// Channel is one notification target with uniform error semantics.
type Channel interface {
	Name() string
	Notify(ctx context.Context, event OrderEvent) error
}

// Dispatcher runs every channel for an event, isolating failures per
// channel.
type Dispatcher struct {
	channels []Channel
	logg     *logger.Logger
	metrics  *metrics.CheckoutMetrics
	timeout  time.Duration

	wg sync.WaitGroup
}

func NewDispatcher(channels []Channel, logg *logger.Logger, m *metrics.CheckoutMetrics, timeout time.Duration) *Dispatcher {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Dispatcher{
		channels: channels,
		logg:     logg,
		metrics:  m,
		timeout:  timeout,
	}
}

// Dispatch notifies every channel synchronously. Each channel gets its own
// deadline and its error is swallowed after logging.
func (d *Dispatcher) Dispatch(ctx context.Context, event OrderEvent) {
	for _, channel := range d.channels {
		d.notifyOne(ctx, channel, event)
	}
}

// DispatchAsync runs the fan-out on a detached context so the caller can
// acknowledge the webhook first. The provider's retry, not the caller, is
// the redelivery mechanism.
func (d *Dispatcher) DispatchAsync(event OrderEvent) {
	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		d.Dispatch(context.Background(), event)
	}()
}

// Wait blocks until all in-flight async dispatches finish. Used on shutdown
// and in tests.
func (d *Dispatcher) Wait() {
	d.wg.Wait()
}

func (d *Dispatcher) notifyOne(ctx context.Context, channel Channel, event OrderEvent) {
	notifyCtx, cancel := context.WithTimeout(ctx, d.timeout)
	defer cancel()

	if err := channel.Notify(notifyCtx, event); err != nil {
		d.metrics.IncNotificationFailure(channel.Name())
		if d.logg != nil {
			logCtx := d.logg.WithFields(ctx, map[string]any{
				"channel":      channel.Name(),
				"order_number": event.OrderNumber,
			})
			d.logg.Error(logCtx, "notify.channel failed", err)
		}
		return
	}
	if d.logg != nil {
		logCtx := d.logg.WithFields(ctx, map[string]any{
			"channel":      channel.Name(),
			"order_number": event.OrderNumber,
		})
		d.logg.Info(logCtx, "notify.channel delivered")
	}
}
