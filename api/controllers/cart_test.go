package controllers

import (
	"encoding/json"
	"net/http"
	"testing"
)

func TestReconstructCartFromNodes(t *testing.T) {
	t.Parallel()

	handler := ReconstructCart(nil)
	body := `{
		"nodes": [
			{"tag": "innerHTML.product-name", "text": "Serum A"},
			{"tag": "innerHTML.product-name", "text": "Serum B"},
			{"tag": "innerHTML.item-count", "text": "1"},
			{"tag": "innerHTML.item-count", "text": "2"},
			{"tag": "innerHTML.item-price", "text": "CHF 50.00"},
			{"tag": "innerHTML.item-price", "text": "CHF 30.00"}
		],
		"total_text": "CHF 110.00"
	}`
	rec := postJSON(t, handler, body, nil)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body)
	}
	var resp struct {
		Items []struct {
			Name     string `json:"name"`
			Quantity int    `json:"quantity"`
		} `json:"items"`
		Subtotal   string `json:"subtotal"`
		GrandTotal string `json:"grand_total"`
		Fallback   bool   `json:"fallback"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Fallback {
		t.Fatal("valid nodes must not fall back")
	}
	if len(resp.Items) != 2 || resp.Items[1].Quantity != 2 {
		t.Fatalf("items = %+v", resp.Items)
	}
	if resp.Subtotal != "110" {
		t.Fatalf("subtotal = %s", resp.Subtotal)
	}
	if resp.GrandTotal != "110" {
		t.Fatalf("grand total = %s", resp.GrandTotal)
	}
}

func TestReconstructCartFromHTML(t *testing.T) {
	t.Parallel()

	html := `<div><span data-wf-bindings="innerHTML.product-name">Serum A</span>` +
		`<span data-wf-bindings="innerHTML.item-count">1</span>` +
		`<span data-wf-bindings="innerHTML.item-price">CHF 50.00</span></div>`
	payload, _ := json.Marshal(map[string]string{"html": html})

	handler := ReconstructCart(nil)
	rec := postJSON(t, handler, string(payload), nil)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body)
	}
	var resp struct {
		Items    []struct{ Name string } `json:"items"`
		Fallback bool                    `json:"fallback"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Fallback || len(resp.Items) != 1 {
		t.Fatalf("unexpected response %s", rec.Body)
	}
}

func TestReconstructCartRequiresInput(t *testing.T) {
	t.Parallel()

	handler := ReconstructCart(nil)
	rec := postJSON(t, handler, `{}`, nil)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestReconstructCartFallsBackOnGarbage(t *testing.T) {
	t.Parallel()

	handler := ReconstructCart(nil)
	body := `{"nodes":[{"tag":"innerHTML.product-name","text":"x"}],"total_text":"CHF 75.50"}`
	rec := postJSON(t, handler, body, nil)

	if rec.Code != http.StatusOK {
		t.Fatalf("fallback is still a 200, got %d", rec.Code)
	}
	var resp struct {
		Fallback bool `json:"fallback"`
		Items    []struct {
			Price string `json:"price"`
		} `json:"items"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if !resp.Fallback || len(resp.Items) != 1 {
		t.Fatalf("unexpected response %s", rec.Body)
	}
	if resp.Items[0].Price != "75.5" {
		t.Fatalf("fallback price = %s", resp.Items[0].Price)
	}
}
