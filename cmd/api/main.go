package main

import (
	"context"
	"net/http"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/aesthetikoase/checkout-backend/api/routes"
	checkoutsvc "github.com/aesthetikoase/checkout-backend/internal/checkout"
	"github.com/aesthetikoase/checkout-backend/internal/notify"
	stripewebhook "github.com/aesthetikoase/checkout-backend/internal/webhooks/stripe"
	"github.com/aesthetikoase/checkout-backend/pkg/config"
	"github.com/aesthetikoase/checkout-backend/pkg/env"
	"github.com/aesthetikoase/checkout-backend/pkg/logger"
	"github.com/aesthetikoase/checkout-backend/pkg/metrics"
	"github.com/aesthetikoase/checkout-backend/pkg/redis"
	stripeclient "github.com/aesthetikoase/checkout-backend/pkg/stripe"
)

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	registry := prometheus.NewRegistry()
	checkoutMetrics := metrics.NewCheckoutMetrics(registry)

	stripeCl, err := stripeclient.NewClient(context.Background(), cfg.Stripe, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to initialize stripe client", err)
		os.Exit(1)
	}

	checkoutService, err := checkoutsvc.NewService(checkoutsvc.ServiceParams{
		Provider: stripeCl,
		Checkout: cfg.Checkout,
		Shipping: cfg.Shipping,
		Logger:   logg,
		Metrics:  checkoutMetrics,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create checkout service", err)
		os.Exit(1)
	}

	dispatcher := notify.NewDispatcher(
		buildChannels(cfg.Notify),
		logg,
		checkoutMetrics,
		time.Duration(cfg.Notify.RequestTimeoutSec)*time.Second,
	)
	defer dispatcher.Wait()

	webhookService, err := stripewebhook.NewService(stripewebhook.ServiceParams{
		Dispatcher: dispatcher,
		Logger:     logg,
		Metrics:    checkoutMetrics,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create webhook service", err)
		os.Exit(1)
	}

	var webhookGuard *stripewebhook.IdempotencyGuard
	if cfg.Redis.Enabled() {
		redisClient, err := redis.New(context.Background(), cfg.Redis, logg)
		if err != nil {
			logg.Error(context.Background(), "failed to bootstrap redis", err)
			os.Exit(1)
		}
		defer func() {
			if err := redisClient.Close(); err != nil {
				logg.Error(context.Background(), "error closing redis", err)
			}
		}()
		webhookGuard, err = stripewebhook.NewIdempotencyGuard(redisClient, cfg.Webhook.EventTTL, "stripe-webhook")
		if err != nil {
			logg.Error(context.Background(), "failed to create webhook guard", err)
			os.Exit(1)
		}
	} else {
		logg.Warn(context.Background(), "redis not configured, webhook deliveries are not deduplicated")
	}

	addr := ":" + env.Get("PORT", cfg.App.Port)
	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":  cfg.App.Env,
		"addr": addr,
	})
	logg.Info(ctx, "starting api server")

	server := &http.Server{
		Addr: addr,
		Handler: routes.NewRouter(routes.RouterParams{
			Logger:        logg,
			CheckoutSvc:   checkoutService,
			VoucherSvc:    checkoutService,
			SessionReader: checkoutService,
			WebhookSvc:    webhookService,
			StripeClient:  stripeCl,
			WebhookGuard:  webhookGuard,
			Gatherer:      registry,
		}),
	}

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logg.Error(ctx, "api server stopped unexpectedly", err)
		os.Exit(1)
	}
}

func buildChannels(cfg config.NotifyConfig) []notify.Channel {
	var channels []notify.Channel
	if cfg.SendgridAPIKey != "" {
		channels = append(channels, notify.NewEmailChannel(cfg.SendgridAPIKey, cfg.SendgridFrom, nil))
	}
	if cfg.MailchimpAPIKey != "" && cfg.MailchimpListID != "" {
		channels = append(channels, notify.NewMailchimpChannel(cfg.MailchimpAPIKey, cfg.MailchimpListID, cfg.MailchimpDC, nil))
	}
	if cfg.OwnerWebhookURL != "" {
		channels = append(channels, notify.NewOwnerChannel(cfg.OwnerWebhookURL, nil))
	}
	return channels
}
