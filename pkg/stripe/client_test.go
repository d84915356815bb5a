package stripe

import (
	"context"
	"testing"

	"github.com/aesthetikoase/checkout-backend/pkg/config"
	pkgerrors "github.com/aesthetikoase/checkout-backend/pkg/errors"
)

func TestNewClientRequiresAKey(t *testing.T) {
	t.Parallel()

	_, err := NewClient(context.Background(), config.StripeConfig{}, nil)
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeConfiguration {
		t.Fatalf("err = %v, want configuration error", err)
	}
}

func TestNewClientValidatesKeyPrefixes(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name string
		cfg  config.StripeConfig
		ok   bool
	}{
		{"test secret key", config.StripeConfig{TestAPIKey: "sk_test_abc"}, true},
		{"test restricted key", config.StripeConfig{TestAPIKey: "rk_test_abc"}, true},
		{"live secret key", config.StripeConfig{LiveAPIKey: "sk_live_abc"}, true},
		{"both branches", config.StripeConfig{TestAPIKey: "sk_test_abc", LiveAPIKey: "sk_live_abc"}, true},
		{"live key on test branch", config.StripeConfig{TestAPIKey: "sk_live_abc"}, false},
		{"test key on live branch", config.StripeConfig{LiveAPIKey: "sk_test_abc"}, false},
		{"publishable key", config.StripeConfig{TestAPIKey: "pk_test_abc"}, false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := NewClient(context.Background(), tc.cfg, nil)
			if tc.ok && err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !tc.ok && err == nil {
				t.Fatal("expected a configuration error")
			}
		})
	}
}

func TestUnconfiguredBranchIsConfigurationError(t *testing.T) {
	t.Parallel()

	client, err := NewClient(context.Background(), config.StripeConfig{TestAPIKey: "sk_test_abc"}, nil)
	if err != nil {
		t.Fatalf("new client: %v", err)
	}

	_, err = client.CreateSession(context.Background(), EnvironmentLive, nil)
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeConfiguration {
		t.Fatalf("err = %v, want configuration error for the missing live branch", err)
	}

	_, err = client.RetrieveSession(context.Background(), Environment("staging"), "cs_1")
	typed = pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeConfiguration {
		t.Fatalf("err = %v, want configuration error for an unknown environment", err)
	}
}

func TestSigningSecret(t *testing.T) {
	t.Parallel()

	client, err := NewClient(context.Background(), config.StripeConfig{
		TestAPIKey:    "sk_test_abc",
		WebhookSecret: " whsec_xyz ",
	}, nil)
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	if client.SigningSecret() != "whsec_xyz" {
		t.Fatalf("signing secret = %q", client.SigningSecret())
	}

	var nilClient *Client
	if nilClient.SigningSecret() != "" {
		t.Fatal("nil client must report no secret")
	}
}
