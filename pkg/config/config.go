package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
	"github.com/shopspring/decimal"
)

const EnvPrefix = ""

type Config struct {
	App      AppConfig
	Stripe   StripeConfig
	Checkout CheckoutConfig
	Shipping ShippingConfig
	Redis    RedisConfig
	Webhook  WebhookConfig
	Notify   NotifyConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.Shipping.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"AO_APP_ENV" default:"dev"`
	Port         string `envconfig:"AO_APP_PORT" default:"8080"`
	LogLevel     string `envconfig:"AO_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"AO_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, "dev")
}

// StripeConfig carries one secret key per checkout environment plus the
// webhook signing secret. Either key may be absent; the session builder
// fails fast when the branch a request selects has no credential.
type StripeConfig struct {
	TestAPIKey    string `envconfig:"AO_STRIPE_TEST_KEY"`
	LiveAPIKey    string `envconfig:"AO_STRIPE_LIVE_KEY"`
	WebhookSecret string `envconfig:"AO_STRIPE_WEBHOOK_SECRET"`
}

type CheckoutConfig struct {
	Currency         string        `envconfig:"AO_CHECKOUT_CURRENCY" default:"chf"`
	OrderPrefix      string        `envconfig:"AO_CHECKOUT_ORDER_PREFIX" default:"AO"`
	VoucherPrefix    string        `envconfig:"AO_CHECKOUT_VOUCHER_PREFIX" default:"GS"`
	TestOriginSuffix string        `envconfig:"AO_CHECKOUT_TEST_ORIGIN_SUFFIX" default:".webflow.io"`
	TestBaseURL      string        `envconfig:"AO_CHECKOUT_TEST_BASE_URL" default:"https://aesthetikoase.webflow.io"`
	LiveBaseURL      string        `envconfig:"AO_CHECKOUT_LIVE_BASE_URL" default:"https://aesthetikoase.ch"`
	SuccessPath      string        `envconfig:"AO_CHECKOUT_SUCCESS_PATH" default:"/bestellung-erfolgreich"`
	CancelPath       string        `envconfig:"AO_CHECKOUT_CANCEL_PATH" default:"/warenkorb"`
	VoucherCancel    string        `envconfig:"AO_CHECKOUT_VOUCHER_CANCEL_PATH" default:"/gutschein"`
	AllowedCountries []string      `envconfig:"AO_CHECKOUT_ALLOWED_COUNTRIES" default:"CH,DE,AT"`
	PaymentMethods   []string      `envconfig:"AO_CHECKOUT_PAYMENT_METHODS" default:"twint,card,paypal,klarna"`
	SessionExpiry    time.Duration `envconfig:"AO_CHECKOUT_SESSION_EXPIRY" default:"30m"`
}

// ShippingConfig holds the tiered shipping policy as decimal strings so the
// amounts survive env round-trips without float drift.
type ShippingConfig struct {
	FreeThreshold string `envconfig:"AO_SHIPPING_FREE_THRESHOLD" default:"150"`
	StandardFee   string `envconfig:"AO_SHIPPING_STANDARD_FEE" default:"8.50"`
	NominalFee    string `envconfig:"AO_SHIPPING_NOMINAL_FEE" default:"0.10"`
}

func (s ShippingConfig) validate() error {
	for name, raw := range map[string]string{
		"AO_SHIPPING_FREE_THRESHOLD": s.FreeThreshold,
		"AO_SHIPPING_STANDARD_FEE":   s.StandardFee,
		"AO_SHIPPING_NOMINAL_FEE":    s.NominalFee,
	} {
		if _, err := decimal.NewFromString(raw); err != nil {
			return fmt.Errorf("%s: %w", name, err)
		}
	}
	return nil
}

func (s ShippingConfig) FreeThresholdAmount() decimal.Decimal {
	return mustDecimal(s.FreeThreshold)
}

func (s ShippingConfig) StandardFeeAmount() decimal.Decimal {
	return mustDecimal(s.StandardFee)
}

func (s ShippingConfig) NominalFeeAmount() decimal.Decimal {
	return mustDecimal(s.NominalFee)
}

func mustDecimal(raw string) decimal.Decimal {
	d, err := decimal.NewFromString(raw)
	if err != nil {
		panic(fmt.Sprintf("config decimal %q: %v", raw, err))
	}
	return d
}

// RedisConfig backs the webhook idempotency guard. Optional: with no URL the
// guard is skipped and every webhook delivery is processed.
type RedisConfig struct {
	URL          string        `envconfig:"AO_REDIS_URL"`
	DialTimeout  time.Duration `envconfig:"AO_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"AO_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"AO_REDIS_WRITE_TIMEOUT" default:"5s"`
}

func (r RedisConfig) Enabled() bool {
	return strings.TrimSpace(r.URL) != ""
}

type WebhookConfig struct {
	EventTTL time.Duration `envconfig:"AO_WEBHOOK_EVENT_TTL" default:"720h"`
}

// NotifyConfig configures the post-payment notification channels. Every
// channel is optional and disables itself when its credential is empty.
type NotifyConfig struct {
	SendgridAPIKey    string `envconfig:"AO_SENDGRID_API_KEY"`
	SendgridFrom      string `envconfig:"AO_SENDGRID_FROM_EMAIL" default:"bestellung@aesthetikoase.ch"`
	MailchimpAPIKey   string `envconfig:"AO_MAILCHIMP_API_KEY"`
	MailchimpListID   string `envconfig:"AO_MAILCHIMP_LIST_ID"`
	MailchimpDC       string `envconfig:"AO_MAILCHIMP_DC" default:"us1"`
	OwnerWebhookURL   string `envconfig:"AO_OWNER_WEBHOOK_URL"`
	RequestTimeoutSec int    `envconfig:"AO_NOTIFY_TIMEOUT_SECONDS" default:"10"`
}
