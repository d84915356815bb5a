package notify

import (
	"context"
	"fmt"
	"net/http"
	"strings"
)

// MailchimpChannel subscribes the buyer to the shop's audience list.
type MailchimpChannel struct {
	apiKey  string
	listID  string
	client  *http.Client
	baseURL string
}

func NewMailchimpChannel(apiKey, listID, dc string, client *http.Client) *MailchimpChannel {
	if client == nil {
		client = http.DefaultClient
	}
	return &MailchimpChannel{
		apiKey:  apiKey,
		listID:  listID,
		client:  client,
		baseURL: fmt.Sprintf("https://%s.api.mailchimp.com/3.0", dc),
	}
}

func (c *MailchimpChannel) Name() string { return "mailchimp" }

func (c *MailchimpChannel) Notify(ctx context.Context, event OrderEvent) error {
	if strings.TrimSpace(event.CustomerEmail) == "" {
		return fmt.Errorf("no customer email on order %s", event.OrderNumber)
	}

	payload := map[string]any{
		"email_address": event.CustomerEmail,
		"status":        "subscribed",
		"merge_fields": map[string]string{
			"FNAME": event.CustomerName,
			"ORDER": event.OrderNumber,
		},
	}

	url := fmt.Sprintf("%s/lists/%s/members", c.baseURL, c.listID)
	return postJSON(ctx, c.client, url, payload, func(req *http.Request) {
		req.SetBasicAuth("anystring", c.apiKey)
	})
}
