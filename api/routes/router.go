package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/aesthetikoase/checkout-backend/api/controllers"
	webhookcontrollers "github.com/aesthetikoase/checkout-backend/api/controllers/webhooks"
	"github.com/aesthetikoase/checkout-backend/api/middleware"
	stripewebhook "github.com/aesthetikoase/checkout-backend/internal/webhooks/stripe"
	"github.com/aesthetikoase/checkout-backend/pkg/logger"
	stripeclient "github.com/aesthetikoase/checkout-backend/pkg/stripe"
)

// RouterParams collects everything the HTTP surface depends on. The guard
// and gatherer are optional.
type RouterParams struct {
	Logger        *logger.Logger
	CheckoutSvc   controllers.CheckoutService
	VoucherSvc    controllers.VoucherService
	SessionReader controllers.SessionReader
	WebhookSvc    webhookcontrollers.StripeWebhookService
	StripeClient  *stripeclient.Client
	WebhookGuard  *stripewebhook.IdempotencyGuard
	Gatherer      prometheus.Gatherer
}

func NewRouter(params RouterParams) http.Handler {
	logg := params.Logger

	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(),
	)

	r.Get("/healthz", controllers.Health())
	if params.Gatherer != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(params.Gatherer, promhttp.HandlerOpts{}))
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/checkout", controllers.CreateCheckout(params.CheckoutSvc, logg))
		r.Post("/checkout/voucher", controllers.CreateVoucherCheckout(params.VoucherSvc, logg))
		r.Post("/session", controllers.SessionDetails(params.SessionReader, logg))
		r.Post("/cart/reconstruct", controllers.ReconstructCart(logg))
		// Guard may be nil when redis is not configured; the controller then
		// processes every delivery.
		var guard webhookcontrollers.StripeWebhookGuard
		if params.WebhookGuard != nil {
			guard = params.WebhookGuard
		}
		r.Post("/webhooks/stripe", webhookcontrollers.StripeWebhook(params.WebhookSvc, params.StripeClient, guard, logg))
	})

	return r
}
