package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
)

const sendgridSendURL = "https://api.sendgrid.com/v3/mail/send"

// EmailChannel sends the buyer an order confirmation through the SendGrid
// v3 mail API.
type EmailChannel struct {
	apiKey  string
	from    string
	client  *http.Client
	baseURL string
}

func NewEmailChannel(apiKey, from string, client *http.Client) *EmailChannel {
	if client == nil {
		client = http.DefaultClient
	}
	return &EmailChannel{
		apiKey:  apiKey,
		from:    from,
		client:  client,
		baseURL: sendgridSendURL,
	}
}

func (c *EmailChannel) Name() string { return "email" }

func (c *EmailChannel) Notify(ctx context.Context, event OrderEvent) error {
	if strings.TrimSpace(event.CustomerEmail) == "" {
		return fmt.Errorf("no customer email on order %s", event.OrderNumber)
	}

	payload := map[string]any{
		"personalizations": []map[string]any{{
			"to": []map[string]string{{"email": event.CustomerEmail, "name": event.CustomerName}},
		}},
		"from":    map[string]string{"email": c.from},
		"subject": fmt.Sprintf("Bestellbestätigung #%s", event.OrderNumber),
		"content": []map[string]string{{
			"type": "text/plain",
			"value": fmt.Sprintf(
				"Hallo %s, vielen Dank für Ihre Bestellung #%s über %s %s.",
				event.CustomerName, event.OrderNumber, event.Amount.StringFixed(2), event.Currency,
			),
		}},
	}

	return postJSON(ctx, c.client, c.baseURL, payload, func(req *http.Request) {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	})
}

func postJSON(ctx context.Context, client *http.Client, url string, payload any, decorate func(*http.Request)) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encode payload: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if decorate != nil {
		decorate(req)
	}

	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("unexpected status %d: %s", resp.StatusCode, strings.TrimSpace(string(snippet)))
	}
	return nil
}
