package stripe

import (
	"context"
	"fmt"
	"strings"

	"github.com/stripe/stripe-go/v84"

	"github.com/aesthetikoase/checkout-backend/pkg/config"
	pkgerrors "github.com/aesthetikoase/checkout-backend/pkg/errors"
	"github.com/aesthetikoase/checkout-backend/pkg/logger"
)

// Environment names the credential branch a checkout request resolved to.
type Environment string

const (
	EnvironmentTest Environment = "test"
	EnvironmentLive Environment = "live"
)

// Client holds one Stripe API client per environment. Either branch may be
// absent; selecting an unconfigured branch is a configuration error the
// session builder surfaces without retrying.
type Client struct {
	test          *stripe.Client
	live          *stripe.Client
	signingSecret string
}

// NewClient initializes the configured Stripe credential branches once.
func NewClient(ctx context.Context, cfg config.StripeConfig, logg *logger.Logger) (*Client, error) {
	c := &Client{signingSecret: strings.TrimSpace(cfg.WebhookSecret)}

	if key := strings.TrimSpace(cfg.TestAPIKey); key != "" {
		if err := validateAPIKey(EnvironmentTest, key); err != nil {
			return nil, err
		}
		c.test = stripe.NewClient(key)
	}
	if key := strings.TrimSpace(cfg.LiveAPIKey); key != "" {
		if err := validateAPIKey(EnvironmentLive, key); err != nil {
			return nil, err
		}
		c.live = stripe.NewClient(key)
	}
	if c.test == nil && c.live == nil {
		return nil, pkgerrors.New(pkgerrors.CodeConfiguration, "no stripe api key configured")
	}

	if logg != nil {
		logg.Info(ctx, fmt.Sprintf("stripe client initialized (test=%t live=%t)", c.test != nil, c.live != nil))
	}
	return c, nil
}

// CreateSession creates a Checkout session on the selected branch.
func (c *Client) CreateSession(ctx context.Context, env Environment, params *stripe.CheckoutSessionCreateParams) (*stripe.CheckoutSession, error) {
	api, err := c.apiFor(env)
	if err != nil {
		return nil, err
	}
	session, err := api.V1CheckoutSessions.Create(ctx, params)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeProvider, err, "create checkout session")
	}
	return session, nil
}

// RetrieveSession fetches a Checkout session, used by the post-redirect
// customer-data endpoint.
func (c *Client) RetrieveSession(ctx context.Context, env Environment, sessionID string) (*stripe.CheckoutSession, error) {
	api, err := c.apiFor(env)
	if err != nil {
		return nil, err
	}
	session, err := api.V1CheckoutSessions.Retrieve(ctx, sessionID, &stripe.CheckoutSessionRetrieveParams{})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeProvider, err, "retrieve checkout session")
	}
	return session, nil
}

// SigningSecret returns the webhook signing secret, empty when unsigned
// payloads are accepted (test mode).
func (c *Client) SigningSecret() string {
	if c == nil {
		return ""
	}
	return c.signingSecret
}

func (c *Client) apiFor(env Environment) (*stripe.Client, error) {
	switch env {
	case EnvironmentTest:
		if c == nil || c.test == nil {
			return nil, pkgerrors.New(pkgerrors.CodeConfiguration, "stripe test credential not configured")
		}
		return c.test, nil
	case EnvironmentLive:
		if c == nil || c.live == nil {
			return nil, pkgerrors.New(pkgerrors.CodeConfiguration, "stripe live credential not configured")
		}
		return c.live, nil
	default:
		return nil, pkgerrors.New(pkgerrors.CodeConfiguration, fmt.Sprintf("unknown stripe environment %q", env))
	}
}

func validateAPIKey(env Environment, key string) error {
	switch env {
	case EnvironmentTest:
		if strings.HasPrefix(key, "sk_test") || strings.HasPrefix(key, "rk_test") {
			return nil
		}
		return pkgerrors.New(pkgerrors.CodeConfiguration, "test branch requires a test secret key (sk_test/rk_test)")
	case EnvironmentLive:
		if strings.HasPrefix(key, "sk_live") || strings.HasPrefix(key, "rk_live") {
			return nil
		}
		return pkgerrors.New(pkgerrors.CodeConfiguration, "live branch requires a live secret key (sk_live/rk_live)")
	default:
		return pkgerrors.New(pkgerrors.CodeConfiguration, fmt.Sprintf("unknown stripe environment %q", env))
	}
}
