package notify

import (
	"context"
	"fmt"
	"net/http"
)

// OwnerChannel pings the shop owner's incoming webhook (Slack-compatible
// payload) about a new paid order.
type OwnerChannel struct {
	webhookURL string
	client     *http.Client
}

func NewOwnerChannel(webhookURL string, client *http.Client) *OwnerChannel {
	if client == nil {
		client = http.DefaultClient
	}
	return &OwnerChannel{webhookURL: webhookURL, client: client}
}

func (c *OwnerChannel) Name() string { return "owner" }

func (c *OwnerChannel) Notify(ctx context.Context, event OrderEvent) error {
	payload := map[string]string{
		"text": fmt.Sprintf(
			"Neue Bestellung #%s von %s — %s %s",
			event.OrderNumber, event.CustomerName, event.Amount.StringFixed(2), event.Currency,
		),
	}
	return postJSON(ctx, c.client, c.webhookURL, payload, nil)
}
